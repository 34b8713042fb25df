// Package probe decides whether a source locator is reachable.
//
// Probing never fails the caller: Probe answers with a boolean after a
// bounded number of attempts, doubling the wait between them.
package probe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cinesrc/cinesrc/config"
	"github.com/cinesrc/cinesrc/key"
	"github.com/cinesrc/cinesrc/log"
	"github.com/cinesrc/cinesrc/network"
	"github.com/cinesrc/cinesrc/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultAttempts    = 3
	DefaultBaseDelay   = 200 * time.Millisecond
	DefaultConcurrency = 8
)

// ErrNoChecker is reported by a prober without a checker.
var ErrNoChecker = errors.New("no checker configured")

// ReachabilityError describes a locator that could not be reached.
type ReachabilityError struct {
	Locator  string
	Attempts int
	Err      error
}

func (e *ReachabilityError) Error() string {
	return fmt.Sprintf("%s unreachable after %s: %v", e.Locator, util.Quantify(e.Attempts, "attempt", "attempts"), e.Err)
}

func (e *ReachabilityError) Unwrap() error {
	return e.Err
}

// Prober retries a Checker with exponential backoff.
type Prober struct {
	Checker   Checker
	Attempts  int
	BaseDelay time.Duration
	// FailOpen is the answer for locators no checker can handle.
	FailOpen    bool
	Concurrency int

	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures a Prober.
type Option func(*Prober)

func WithAttempts(n int) Option {
	return func(p *Prober) { p.Attempts = n }
}

func WithBaseDelay(d time.Duration) Option {
	return func(p *Prober) { p.BaseDelay = d }
}

func WithFailOpen(open bool) Option {
	return func(p *Prober) { p.FailOpen = open }
}

func WithConcurrency(n int) Option {
	return func(p *Prober) { p.Concurrency = n }
}

// New returns a fail-open prober making three attempts 200ms apart, then 400ms.
func New(checker Checker, opts ...Option) *Prober {
	p := &Prober{
		Checker:     checker,
		Attempts:    DefaultAttempts,
		BaseDelay:   DefaultBaseDelay,
		FailOpen:    true,
		Concurrency: DefaultConcurrency,
		sleep:       sleep,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// NewFromConfig returns a prober for http, https and magnet locators
// configured from the probe.* keys.
func NewFromConfig() *Prober {
	client := network.Client
	if viper.GetBool(key.ProbeTLSFingerprint) {
		client = network.TLSClient
	}

	web := HTTPChecker{Client: client, Timeout: config.Millis(key.ProbeTimeout)}
	checker := SchemeChecker{
		"http":   web,
		"https":  web,
		"magnet": MagnetChecker{},
	}

	return New(
		checker,
		WithAttempts(viper.GetInt(key.ProbeAttempts)),
		WithBaseDelay(config.Millis(key.ProbeBaseDelay)),
		WithFailOpen(viper.GetBool(key.ProbeFailOpen)),
		WithConcurrency(viper.GetInt(key.ProbeConcurrency)),
	)
}

// Probe reports whether locator is reachable. It never panics.
func (p *Prober) Probe(ctx context.Context, locator string) bool {
	err := p.Check(ctx, locator)
	if err == nil {
		return true
	}

	entry := log.With(logrus.Fields{"locator": locator})
	if p.exhausted(err) {
		entry.Warn(err)
	} else {
		entry.Debug(err)
	}
	return false
}

// exhausted reports whether err ends a run that used every attempt.
func (p *Prober) exhausted(err error) bool {
	var reach *ReachabilityError
	if !errors.As(err, &reach) || reach.Attempts < max(p.Attempts, 1) {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Check is Probe with the reason of a failure. It returns nil or a *ReachabilityError.
func (p *Prober) Check(ctx context.Context, locator string) error {
	if p.Checker == nil {
		return p.unrouted(locator, ErrNoChecker)
	}

	attempts := max(p.Attempts, 1)
	delay := p.BaseDelay
	wait := p.sleep
	if wait == nil {
		wait = sleep
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return &ReachabilityError{Locator: locator, Attempts: attempt - 1, Err: err}
		}

		err := safeCheck(ctx, p.Checker, locator)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrNoRoute) {
			return p.unrouted(locator, err)
		}

		last = err
		log.Tracef("probe %s: attempt %d/%d: %s", locator, attempt, attempts, err)

		if attempt == attempts {
			break
		}
		if err := wait(ctx, delay); err != nil {
			return &ReachabilityError{Locator: locator, Attempts: attempt, Err: err}
		}
		delay *= 2
	}

	return &ReachabilityError{Locator: locator, Attempts: attempts, Err: last}
}

func (p *Prober) unrouted(locator string, err error) error {
	if p.FailOpen {
		return nil
	}
	return &ReachabilityError{Locator: locator, Err: err}
}

// ProbeAll probes every locator concurrently, at most Concurrency at a time.
func (p *Prober) ProbeAll(ctx context.Context, locators []string) map[string]bool {
	results := make([]bool, len(locators))

	var g errgroup.Group
	g.SetLimit(max(p.Concurrency, 1))
	for i, locator := range locators {
		g.Go(func() error {
			results[i] = p.Probe(ctx, locator)
			return nil
		})
	}
	_ = g.Wait()

	reachable := make(map[string]bool, len(locators))
	for i, locator := range locators {
		reachable[locator] = results[i]
	}
	return reachable
}

func safeCheck(ctx context.Context, checker Checker, locator string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("checker panicked: %v", r)
		}
	}()
	return checker.Check(ctx, locator)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
