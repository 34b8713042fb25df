// Package lifecycle drives retrievals through their states.
//
// Each retrieval is keyed by content and source id and owns one ticker
// goroutine while downloading. A retrieval never affects another: several
// sources of the same content may run at once.
package lifecycle

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cinesrc/cinesrc/config"
	"github.com/cinesrc/cinesrc/content"
	"github.com/cinesrc/cinesrc/key"
	"github.com/cinesrc/cinesrc/log"
	"github.com/cinesrc/cinesrc/probe"
	"github.com/cinesrc/cinesrc/source"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

const (
	DefaultInterval     = 500 * time.Millisecond
	DefaultIncrementMin = 2
	DefaultIncrementMax = 8
)

// Completion is reported once a retrieval reaches 100%.
type Completion struct {
	Key         Key
	AttemptID   string
	Identity    content.Identity
	Source      source.Descriptor
	Variant     source.Variant
	Progress    int
	CompletedAt time.Time
}

// Recorder persists completions. It is called from its own goroutine;
// errors are logged.
type Recorder interface {
	Record(Completion) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(Completion) error

func (f RecorderFunc) Record(c Completion) error {
	return f(c)
}

// Manager owns every retrieval instance.
type Manager struct {
	interval     time.Duration
	incrementMin int
	incrementMax int
	increment    func() int
	prober       *probe.Prober
	recorder     Recorder
	now          func() time.Time

	seq        atomic.Uint64
	hub        *hub
	recordings sync.WaitGroup

	mu        sync.Mutex
	closed    bool
	instances map[Key]*instance
}

// Option configures a Manager.
type Option func(*Manager)

// WithInterval sets the tick period. Zero disables automatic ticking;
// progress then only advances through Tick.
func WithInterval(d time.Duration) Option {
	return func(m *Manager) { m.interval = d }
}

// WithIncrements bounds the random progress added by each tick.
func WithIncrements(low, high int) Option {
	return func(m *Manager) { m.incrementMin, m.incrementMax = low, high }
}

// WithIncrementFunc replaces the random increment.
func WithIncrementFunc(f func() int) Option {
	return func(m *Manager) { m.increment = f }
}

// WithProber makes StartChecked probe sources before starting them.
func WithProber(p *probe.Prober) Option {
	return func(m *Manager) { m.prober = p }
}

func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a manager ticking every 500ms by 2 to 8 percent.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		interval:     DefaultInterval,
		incrementMin: DefaultIncrementMin,
		incrementMax: DefaultIncrementMax,
		now:          time.Now,
		hub:          newHub(),
		instances:    make(map[Key]*instance),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.incrementMin = max(m.incrementMin, 0)
	m.incrementMax = max(m.incrementMax, m.incrementMin)
	if m.increment == nil {
		low, span := m.incrementMin, m.incrementMax-m.incrementMin+1
		m.increment = func() int { return low + rand.IntN(span) }
	}

	return m
}

// NewFromConfig returns a manager configured from the lifecycle.* keys.
// Later options override the configuration.
func NewFromConfig(opts ...Option) *Manager {
	base := []Option{
		WithInterval(config.Millis(key.LifecycleTickInterval)),
		WithIncrements(viper.GetInt(key.LifecycleIncrementMin), viper.GetInt(key.LifecycleIncrementMax)),
	}
	if viper.GetBool(key.LifecycleProbeOnStart) {
		base = append(base, WithProber(probe.NewFromConfig()))
	}
	return NewManager(append(base, opts...)...)
}

func (m *Manager) expectedIncrement() int {
	return (m.incrementMin + m.incrementMax + 1) / 2
}

// labelInterval is the period labels are computed for. Manually ticked
// managers assume the default period.
func (m *Manager) labelInterval() time.Duration {
	if m.interval > 0 {
		return m.interval
	}
	return DefaultInterval
}

func (m *Manager) record(c Completion) {
	if m.recorder == nil {
		return
	}

	m.recordings.Add(1)
	go func() {
		defer m.recordings.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("recording %s panicked: %v", c.Key, r)
			}
		}()

		if err := m.recorder.Record(c); err != nil {
			log.Errorf("recording %s: %s", c.Key, err)
		}
	}()
}

func (m *Manager) lookup(k Key) *instance {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.instances[k]
}

func admit(action string, identity content.Identity, item source.Item) (Key, error) {
	if item == nil {
		return Key{Content: identity.Key()}, &InvalidActionError{Action: action, Err: errNoItem}
	}

	k := KeyOf(identity, item.Base().ID)
	if err := identity.Validate(); err != nil {
		return k, &InvalidActionError{Action: action, Key: k, Err: err}
	}
	if err := item.Validate(); err != nil {
		return k, &InvalidActionError{Action: action, Key: k, Err: err}
	}
	return k, nil
}

func (m *Manager) obtain(k Key, identity content.Identity, item source.Item) (*instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, &InvalidActionError{Action: "start", Key: k, Err: ErrClosed}
	}

	in, ok := m.instances[k]
	if !ok {
		in = newInstance(m, k, identity, item)
		m.instances[k] = in
	}
	return in, nil
}

// Start begins retrieving item. A structurally invalid item is rejected
// without any transition. Starting a failed retrieval retries it; starting
// one that is downloading, paused or completed changes nothing.
func (m *Manager) Start(identity content.Identity, item source.Item) (Snapshot, error) {
	k, err := admit("start", identity, item)
	if err != nil {
		return notStarted(k), err
	}

	in, err := m.obtain(k, identity, item)
	if err != nil {
		return notStarted(k), err
	}
	return in.start(), nil
}

// StartChecked is Start preceded by an availability probe of the item's
// locator when a prober is configured. An unreachable source is rejected
// with ErrUnreachable and nothing is created.
func (m *Manager) StartChecked(ctx context.Context, identity content.Identity, item source.Item) (Snapshot, error) {
	k, err := admit("start", identity, item)
	if err != nil {
		return notStarted(k), err
	}

	current := m.Snapshot(k)
	if m.prober != nil && (current.Status == NotStarted || current.Status == Error) {
		if err := m.prober.Check(ctx, item.Base().Locator); err != nil {
			return current, &InvalidActionError{Action: "start", Key: k, Err: fmt.Errorf("%w: %w", ErrUnreachable, err)}
		}
	}

	return m.Start(identity, item)
}

// Pause stops ticking a downloading retrieval. No tick runs after it returns.
func (m *Manager) Pause(k Key) Snapshot {
	in := m.lookup(k)
	if in == nil {
		return notStarted(k)
	}

	snap, stopped := in.pause()
	wait(stopped)
	return snap
}

// Resume continues a paused retrieval.
func (m *Manager) Resume(k Key) Snapshot {
	in := m.lookup(k)
	if in == nil {
		return notStarted(k)
	}
	return in.resume()
}

// Retry restarts a failed retrieval. Progress is kept.
func (m *Manager) Retry(k Key) Snapshot {
	in := m.lookup(k)
	if in == nil {
		return notStarted(k)
	}
	return in.retry()
}

// Tick advances a downloading retrieval once, as its driver would.
func (m *Manager) Tick(k Key) Snapshot {
	in := m.lookup(k)
	if in == nil {
		return notStarted(k)
	}

	snap, stopped := in.tick()
	wait(stopped)
	return snap
}

// Fail moves an active retrieval to Error with message.
func (m *Manager) Fail(k Key, message string) Snapshot {
	in := m.lookup(k)
	if in == nil {
		return notStarted(k)
	}

	snap, stopped := in.fail(message)
	wait(stopped)
	return snap
}

// Acknowledge forgets a completed retrieval. It reports whether one was.
func (m *Manager) Acknowledge(k Key) bool {
	m.mu.Lock()
	in, ok := m.instances[k]
	if !ok || in.snapshot().Status != Completed {
		m.mu.Unlock()
		return false
	}
	delete(m.instances, k)
	m.mu.Unlock()

	m.forget(in)
	return true
}

// Discard stops and forgets a retrieval in any state.
func (m *Manager) Discard(k Key) bool {
	m.mu.Lock()
	in, ok := m.instances[k]
	delete(m.instances, k)
	m.mu.Unlock()

	if !ok {
		return false
	}

	m.forget(in)
	return true
}

func (m *Manager) forget(in *instance) {
	wait(in.discard())

	reset := notStarted(in.snapshot().Key)
	reset.UpdatedAt = m.now()
	reset.Seq = m.seq.Add(1)
	m.hub.publish(reset)
}

// Snapshot returns the state of a retrieval, NotStarted if unknown.
func (m *Manager) Snapshot(k Key) Snapshot {
	in := m.lookup(k)
	if in == nil {
		return notStarted(k)
	}
	return in.snapshot()
}

// Snapshots returns every retrieval ordered by key.
func (m *Manager) Snapshots() []Snapshot {
	m.mu.Lock()
	instances := lo.Values(m.instances)
	m.mu.Unlock()

	snaps := lo.Map(instances, func(in *instance, _ int) Snapshot { return in.snapshot() })
	slices.SortFunc(snaps, func(a, b Snapshot) int {
		return strings.Compare(a.Key.String(), b.Key.String())
	})
	return snaps
}

// Subscribe calls fn with every new snapshot of k, from a dedicated
// goroutine. A slow subscriber only misses intermediate snapshots. The
// current snapshot is delivered first if the retrieval exists.
func (m *Manager) Subscribe(k Key, fn func(Snapshot)) (cancel func()) {
	box, cancel := m.hub.subscribe(k, fn)
	if in := m.lookup(k); in != nil {
		box.put(in.snapshot())
	}
	return cancel
}

// Close stops every retrieval, waits for pending completions to be
// recorded and ends all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	instances := lo.Values(m.instances)
	clear(m.instances)
	m.mu.Unlock()

	for _, in := range instances {
		wait(in.discard())
	}

	m.recordings.Wait()
	m.hub.close()
}
