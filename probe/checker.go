package probe

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Checker performs one reachability attempt.
type Checker interface {
	Check(ctx context.Context, locator string) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, locator string) error

func (f CheckerFunc) Check(ctx context.Context, locator string) error {
	return f(ctx, locator)
}

// ErrNoRoute is returned when no checker handles a locator's scheme.
// The prober answers it with its fail-open policy instead of retrying.
var ErrNoRoute = errors.New("no checker for locator")

// StatusError is an HTTP answer of 400 or above.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d %s", e.Code, http.StatusText(e.Code))
}

// HTTPChecker reaches a locator with a HEAD request. Servers refusing HEAD
// are asked for their first byte instead.
type HTTPChecker struct {
	Client *http.Client
	// Timeout bounds a single attempt. Zero means the client's own timeout.
	Timeout time.Duration
}

func (h HTTPChecker) Check(ctx context.Context, locator string) error {
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	code, err := h.status(ctx, http.MethodHead, locator)
	if err != nil {
		return err
	}

	if code == http.StatusMethodNotAllowed || code == http.StatusNotImplemented {
		if code, err = h.status(ctx, http.MethodGet, locator); err != nil {
			return err
		}
	}

	if code >= http.StatusBadRequest {
		return &StatusError{Code: code}
	}
	return nil
}

func (h HTTPChecker) status(ctx context.Context, method, locator string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, method, locator, nil)
	if err != nil {
		return 0, err
	}
	if method == http.MethodGet {
		req.Header.Set("Range", "bytes=0-0")
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 512))
	return resp.StatusCode, nil
}

// MagnetChecker validates a magnet link without contacting any peer.
type MagnetChecker struct{}

func (MagnetChecker) Check(_ context.Context, locator string) error {
	u, err := url.Parse(locator)
	if err != nil {
		return err
	}
	if !strings.EqualFold(u.Scheme, "magnet") {
		return fmt.Errorf("not a magnet link: %q", locator)
	}

	for _, xt := range u.Query()["xt"] {
		hash, ok := strings.CutPrefix(strings.ToLower(xt), "urn:btih:")
		if ok && validInfoHash(hash) {
			return nil
		}
	}

	return fmt.Errorf("magnet link %q has no btih info hash", locator)
}

func validInfoHash(hash string) bool {
	switch len(hash) {
	case 40:
		_, err := hex.DecodeString(hash)
		return err == nil
	case 32:
		return strings.Trim(hash, "abcdefghijklmnopqrstuvwxyz234567") == ""
	default:
		return false
	}
}

// SchemeChecker routes a locator to the checker registered for its scheme.
type SchemeChecker map[string]Checker

func (s SchemeChecker) Check(ctx context.Context, locator string) error {
	u, err := url.Parse(locator)
	if err != nil {
		return err
	}

	checker, ok := s[strings.ToLower(u.Scheme)]
	if !ok {
		return fmt.Errorf("%w: scheme %q", ErrNoRoute, u.Scheme)
	}
	return checker.Check(ctx, locator)
}
