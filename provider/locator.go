package provider

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"text/template"

	"github.com/cinesrc/cinesrc/content"
)

// ErrUnsupportedKind is returned for a content kind the provider has no template for.
var ErrUnsupportedKind = errors.New("content kind not supported by provider")

// templateData is what locator templates are executed against.
type templateData struct {
	Kind    content.Kind
	ID      int
	Season  int
	Episode int
	Series  bool
	Key     string
}

var templateFuncs = template.FuncMap{
	// btih derives a stable torrent info-hash placeholder from a content key.
	"btih": func(key string) string {
		sum := sha1.Sum([]byte(key))
		return hex.EncodeToString(sum[:])
	},
	"pad": func(n int) string {
		return fmt.Sprintf("%02d", n)
	},
	"query": url.QueryEscape,
}

func parseTemplate(name, text string) (*template.Template, error) {
	if text == "" {
		return nil, nil
	}
	return template.New(name).Funcs(templateFuncs).Option("missingkey=error").Parse(text)
}

// BuildLocator maps a provider and a content identity to a fully qualified locator.
// It performs no I/O and is deterministic: params are appended in key order.
func BuildLocator(p *Provider, identity content.Identity) (string, error) {
	if err := identity.Validate(); err != nil {
		return "", err
	}

	tmpl := p.movie
	if identity.IsSeries() {
		tmpl = p.series
	}
	if tmpl == nil {
		return "", fmt.Errorf("%s: %w: %s", p.ID, ErrUnsupportedKind, identity.Kind)
	}

	var b strings.Builder
	err := tmpl.Execute(&b, templateData{
		Kind:    identity.Kind,
		ID:      identity.ID,
		Season:  identity.Season,
		Episode: identity.Episode,
		Series:  identity.IsSeries(),
		Key:     identity.Key(),
	})
	if err != nil {
		return "", fmt.Errorf("%s: render locator: %w", p.ID, err)
	}

	return WithParams(strings.TrimSpace(b.String()), p.Params)
}

// WithParams merges params into the query of locator. The resulting query is
// sorted by key; params override query values already present.
func WithParams(locator string, params map[string]string) (string, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("parse locator %q: %w", locator, err)
	}

	if u.Scheme == "" {
		return "", fmt.Errorf("locator %q has no scheme", locator)
	}

	if len(params) == 0 {
		return u.String(), nil
	}

	query := u.Query()
	for k, v := range params {
		query.Set(k, v)
	}

	u.RawQuery = query.Encode()
	return u.String(), nil
}
