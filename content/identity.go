// Package content defines the identity of a movie or a series episode.
package content

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind is the kind of content being retrieved.
type Kind string

const (
	Movie  Kind = "movie"
	Series Kind = "series"
)

// Kinds lists every known kind.
func Kinds() []Kind {
	return []Kind{Movie, Series}
}

// ParseKind resolves a kind, accepting "tv" and "show" for series.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "film":
		return Movie, nil
	case "series", "tv", "show":
		return Series, nil
	default:
		return "", fmt.Errorf("unknown content kind %q", s)
	}
}

// ErrInvalidIdentity is wrapped by every error returned from Identity.Validate.
var ErrInvalidIdentity = errors.New("invalid content identity")

// Identity is what is being retrieved. Season and Episode only matter for series.
type Identity struct {
	Kind    Kind `json:"kind"`
	ID      int  `json:"id"`
	Season  int  `json:"season,omitempty"`
	Episode int  `json:"episode,omitempty"`
}

// NewMovie returns the identity of a movie.
func NewMovie(id int) Identity {
	return Identity{Kind: Movie, ID: id}
}

// NewEpisode returns the identity of a series episode.
func NewEpisode(id, season, episode int) Identity {
	return Identity{Kind: Series, ID: id, Season: season, Episode: episode}
}

// Parse builds an identity from command-line shaped input.
func Parse(kind, id string, season, episode int) (Identity, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return Identity{}, err
	}

	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return Identity{}, fmt.Errorf("%w: id %q is not a number", ErrInvalidIdentity, id)
	}

	identity := Identity{Kind: k, ID: n}
	if k == Series {
		identity.Season, identity.Episode = season, episode
	}

	return identity, identity.Validate()
}

// Validate reports the first offending field.
func (i Identity) Validate() error {
	switch i.Kind {
	case Movie, Series:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidIdentity, i.Kind)
	}

	if i.ID <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrInvalidIdentity, i.ID)
	}

	if i.Kind == Series {
		if i.Season < 1 {
			return fmt.Errorf("%w: season must be at least 1, got %d", ErrInvalidIdentity, i.Season)
		}
		if i.Episode < 1 {
			return fmt.Errorf("%w: episode must be at least 1, got %d", ErrInvalidIdentity, i.Episode)
		}
	}

	return nil
}

// IsSeries reports whether i identifies an episode.
func (i Identity) IsSeries() bool {
	return i.Kind == Series
}

// Key is the canonical string form, stable across runs.
// Season and episode of a movie identity are ignored.
func (i Identity) Key() string {
	if i.Kind == Series {
		return fmt.Sprintf("%s/%d/s%de%d", i.Kind, i.ID, i.Season, i.Episode)
	}
	return fmt.Sprintf("%s/%d", i.Kind, i.ID)
}

func (i Identity) String() string {
	if i.Kind == Series {
		return fmt.Sprintf("series %d S%02dE%02d", i.ID, i.Season, i.Episode)
	}
	return fmt.Sprintf("movie %d", i.ID)
}
