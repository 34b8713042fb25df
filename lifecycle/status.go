package lifecycle

import (
	"fmt"
	"strings"
)

// Status is the state of a retrieval.
type Status int

const (
	NotStarted Status = iota
	Downloading
	Paused
	Completed
	Error
)

var statusNames = map[Status]string{
	NotStarted:  "not-started",
	Downloading: "downloading",
	Paused:      "paused",
	Completed:   "completed",
	Error:       "error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Active reports whether the retrieval has started and not yet ended.
func (s Status) Active() bool {
	return s == Downloading || s == Paused
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(b)))
	for status, n := range statusNames {
		if n == name {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", b)
}
