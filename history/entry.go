package history

import (
	"fmt"
	"time"

	"github.com/cinesrc/cinesrc/content"
	"github.com/cinesrc/cinesrc/lifecycle"
	"github.com/cinesrc/cinesrc/source"
)

// Entry is a retrieval that reached completion at least once.
type Entry struct {
	Content     content.Identity `json:"content"`
	SourceID    string           `json:"source_id"`
	SourceName  string           `json:"source_name"`
	Locator     string           `json:"locator"`
	Variant     source.Variant   `json:"variant"`
	Quality     source.Quality   `json:"quality"`
	Progress    int              `json:"progress"`
	Completions int              `json:"completions"`
	AttemptID   string           `json:"attempt_id"`
	CompletedAt time.Time        `json:"completed_at"`
}

func (e *Entry) encode() string {
	return fmt.Sprintf("%s (%s)", e.Content.Key(), e.SourceID)
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s : %s [%s] %d%%", e.Content, e.SourceName, e.Quality, e.Progress)
}

func newEntry(c lifecycle.Completion) *Entry {
	return &Entry{
		Content:     c.Identity,
		SourceID:    c.Source.ID,
		SourceName:  c.Source.Name,
		Locator:     c.Source.Locator,
		Variant:     c.Variant,
		Quality:     c.Source.Quality,
		Progress:    c.Progress,
		Completions: 1,
		AttemptID:   c.AttemptID,
		CompletedAt: c.CompletedAt,
	}
}
