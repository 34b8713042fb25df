package lifecycle

import (
	"time"

	"github.com/cinesrc/cinesrc/content"
)

// Key identifies a retrieval: one source of one content item.
type Key struct {
	Content  string `json:"content"`
	SourceID string `json:"source_id"`
}

// KeyOf returns the key of sourceID retrieved for identity.
func KeyOf(identity content.Identity, sourceID string) Key {
	return Key{Content: identity.Key(), SourceID: sourceID}
}

func (k Key) String() string {
	return k.Content + "#" + k.SourceID
}

// Snapshot is an immutable view of a retrieval.
type Snapshot struct {
	Key Key `json:"key"`
	// AttemptID changes on every start and retry.
	AttemptID          string    `json:"attempt_id,omitempty"`
	Status             Status    `json:"status"`
	Progress           int       `json:"progress"`
	SpeedLabel         string    `json:"speed"`
	TimeRemainingLabel string    `json:"time_remaining"`
	Message            string    `json:"message,omitempty"`
	UpdatedAt          time.Time `json:"updated_at"`
	// Seq orders snapshots across the whole manager.
	Seq uint64 `json:"seq"`
}

func notStarted(key Key) Snapshot {
	return Snapshot{Key: key, Status: NotStarted, SpeedLabel: idleSpeed, TimeRemainingLabel: unknownRemaining}
}
