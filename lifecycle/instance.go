package lifecycle

import (
	"fmt"
	"sync"
	"time"

	"github.com/cinesrc/cinesrc/content"
	"github.com/cinesrc/cinesrc/log"
	"github.com/cinesrc/cinesrc/source"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// instance is the state machine of one retrieval.
//
// Every transition happens under mu. Leaving Downloading bumps gen, so a
// tick scheduled before the transition finds a stale generation and is
// dropped; the caller then waits for the driver goroutine to exit.
type instance struct {
	m        *Manager
	identity content.Identity
	item     source.Item

	mu   sync.Mutex
	snap Snapshot
	gen  uint64
	stop chan struct{}
	done chan struct{}
}

func newInstance(m *Manager, key Key, identity content.Identity, item source.Item) *instance {
	in := &instance{m: m, identity: identity, item: item, snap: notStarted(key)}
	in.snap.UpdatedAt = m.now()
	in.snap.Seq = m.seq.Add(1)
	return in
}

func (in *instance) snapshot() Snapshot {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.snap
}

func (in *instance) fields() logrus.Fields {
	return logrus.Fields{"retrieval": in.snap.Key.String(), "attempt": in.snap.AttemptID}
}

// setLocked applies a change and publishes the resulting snapshot.
func (in *instance) setLocked(change func(s *Snapshot)) {
	change(&in.snap)
	in.snap.UpdatedAt = in.m.now()
	in.snap.Seq = in.m.seq.Add(1)
	in.m.hub.publish(in.snap)
}

func (in *instance) quality() source.Quality {
	return in.item.Base().Quality
}

// begin moves to Downloading and starts a driver.
func (in *instance) beginLocked(newAttempt bool) {
	expected := in.m.expectedIncrement()
	in.setLocked(func(s *Snapshot) {
		s.Status = Downloading
		s.Message = ""
		if newAttempt {
			s.AttemptID = uuid.NewString()
		}
		s.SpeedLabel = speedLabel(in.quality(), expected, in.m.labelInterval())
		s.TimeRemainingLabel = remainingLabel(s.Progress, expected, in.m.labelInterval())
	})
	in.startDriverLocked()
	log.With(in.fields()).Infof("%s at %d%%", Downloading, in.snap.Progress)
}

func (in *instance) startDriverLocked() {
	in.gen++
	if in.m.interval <= 0 {
		return
	}

	stop, done := make(chan struct{}), make(chan struct{})
	in.stop, in.done = stop, done
	go in.drive(in.gen, stop, done)
}

// haltLocked invalidates pending ticks and signals the driver to exit.
// The returned channel is closed once it has; callers wait on it after
// releasing mu.
func (in *instance) haltLocked() <-chan struct{} {
	in.gen++
	if in.stop != nil {
		close(in.stop)
		in.stop = nil
	}

	done := in.done
	in.done = nil
	return done
}

func (in *instance) drive(gen uint64, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(in.m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if keep, _ := in.step(gen); !keep {
				return
			}
		}
	}
}

// step advances progress once if gen is still current and the retrieval is
// downloading. It reports whether ticking should go on. When the step ended
// the retrieval, stopped is the channel of the driver that has to exit.
func (in *instance) step(gen uint64) (keep bool, stopped <-chan struct{}) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if gen != in.gen || in.snap.Status != Downloading {
		return false, nil
	}

	defer func() {
		if r := recover(); r != nil {
			fault := &Fault{Key: in.snap.Key, Message: fmt.Sprintf("tick panicked: %v", r), Recovered: r}
			log.With(in.fields()).Error(fault)
			stopped = in.failLocked(fault.Message)
			keep = false
		}
	}()

	increment := max(in.m.increment(), 0)
	progress := min(in.snap.Progress+increment, 100)

	if progress >= 100 {
		return false, in.completeLocked()
	}

	in.setLocked(func(s *Snapshot) {
		s.Progress = progress
		s.SpeedLabel = speedLabel(in.quality(), increment, in.m.labelInterval())
		s.TimeRemainingLabel = remainingLabel(progress, max(increment, 1), in.m.labelInterval())
	})
	return true, nil
}

func (in *instance) completeLocked() <-chan struct{} {
	in.setLocked(func(s *Snapshot) {
		s.Status = Completed
		s.Progress = 100
		s.SpeedLabel = idleSpeed
		s.TimeRemainingLabel = doneRemaining
	})
	log.With(in.fields()).Info(Completed)

	in.m.record(Completion{
		Key:         in.snap.Key,
		AttemptID:   in.snap.AttemptID,
		Identity:    in.identity,
		Source:      in.item.Base(),
		Variant:     in.item.Variant(),
		Progress:    in.snap.Progress,
		CompletedAt: in.snap.UpdatedAt,
	})

	return in.haltLocked()
}

func (in *instance) failLocked(message string) <-chan struct{} {
	in.setLocked(func(s *Snapshot) {
		s.Status = Error
		s.Message = message
		s.SpeedLabel = idleSpeed
		s.TimeRemainingLabel = unknownRemaining
	})
	log.With(in.fields()).Warn(message)
	return in.haltLocked()
}

// The transitions below return the resulting snapshot and, when a driver
// was stopped, the channel to wait on. Illegal transitions change nothing.

func (in *instance) start() Snapshot {
	in.mu.Lock()
	defer in.mu.Unlock()

	switch in.snap.Status {
	case NotStarted, Error:
		in.beginLocked(true)
	}
	return in.snap
}

func (in *instance) pause() (Snapshot, <-chan struct{}) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.snap.Status != Downloading {
		return in.snap, nil
	}

	stopped := in.haltLocked()
	in.setLocked(func(s *Snapshot) {
		s.Status = Paused
		s.SpeedLabel = idleSpeed
	})
	log.With(in.fields()).Infof("%s at %d%%", Paused, in.snap.Progress)
	return in.snap, stopped
}

func (in *instance) resume() Snapshot {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.snap.Status == Paused {
		in.beginLocked(false)
	}
	return in.snap
}

// retry restarts a failed retrieval from its last progress.
func (in *instance) retry() Snapshot {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.snap.Status == Error {
		in.beginLocked(true)
	}
	return in.snap
}

func (in *instance) fail(message string) (Snapshot, <-chan struct{}) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if !in.snap.Status.Active() {
		return in.snap, nil
	}

	stopped := in.failLocked(message)
	return in.snap, stopped
}

func (in *instance) tick() (Snapshot, <-chan struct{}) {
	in.mu.Lock()
	gen := in.gen
	in.mu.Unlock()

	_, stopped := in.step(gen)
	return in.snapshot(), stopped
}

func (in *instance) discard() <-chan struct{} {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.haltLocked()
}

func wait(stopped <-chan struct{}) {
	if stopped != nil {
		<-stopped
	}
}
