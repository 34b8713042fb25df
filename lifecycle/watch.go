package lifecycle

import (
	"sync"

	"github.com/cinesrc/cinesrc/log"
)

// mailbox delivers snapshots to one subscriber from its own goroutine.
// It keeps only the latest undelivered snapshot, so a slow subscriber
// skips intermediate states and never holds up the retrieval.
type mailbox struct {
	fn func(Snapshot)

	mu      sync.Mutex
	seq     uint64
	pending *Snapshot

	signal chan struct{}
	quit   chan struct{}
	once   sync.Once
}

func newMailbox(fn func(Snapshot)) *mailbox {
	b := &mailbox{
		fn:     fn,
		signal: make(chan struct{}, 1),
		quit:   make(chan struct{}),
	}
	go b.run()
	return b
}

// put never blocks. Snapshots older than one already accepted are dropped.
func (b *mailbox) put(s Snapshot) {
	b.mu.Lock()
	if s.Seq <= b.seq {
		b.mu.Unlock()
		return
	}
	b.seq = s.Seq
	b.pending = &s
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

func (b *mailbox) run() {
	for {
		select {
		case <-b.quit:
			return
		case <-b.signal:
		}

		s := b.take()
		if s == nil {
			continue
		}

		select {
		case <-b.quit:
			return
		default:
		}

		// A snapshot accepted after take supersedes s. It is pending
		// and the signal is already set, so s is dropped.
		if b.current(*s) {
			b.deliver(*s)
		}
	}
}

func (b *mailbox) take() *Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.pending
	b.pending = nil
	return s
}

// current reports whether s is still the newest accepted snapshot.
func (b *mailbox) current(s Snapshot) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.seq == s.Seq
}

func (b *mailbox) deliver(s Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("subscriber of %s panicked: %v", s.Key, r)
		}
	}()
	b.fn(s)
}

func (b *mailbox) close() {
	b.once.Do(func() { close(b.quit) })
}

// hub routes snapshots to the mailboxes subscribed to their key.
// Subscriptions outlive instances: a discarded and restarted retrieval
// keeps its subscribers.
type hub struct {
	mu     sync.Mutex
	nextID uint64
	boxes  map[Key]map[uint64]*mailbox
}

func newHub() *hub {
	return &hub{boxes: make(map[Key]map[uint64]*mailbox)}
}

func (h *hub) subscribe(key Key, fn func(Snapshot)) (*mailbox, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	id := h.nextID
	box := newMailbox(fn)

	if h.boxes[key] == nil {
		h.boxes[key] = make(map[uint64]*mailbox)
	}
	h.boxes[key][id] = box

	return box, func() {
		h.mu.Lock()
		delete(h.boxes[key], id)
		if len(h.boxes[key]) == 0 {
			delete(h.boxes, key)
		}
		h.mu.Unlock()
		box.close()
	}
}

func (h *hub) publish(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, box := range h.boxes[s.Key] {
		box.put(s)
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for key, boxes := range h.boxes {
		for _, box := range boxes {
			box.close()
		}
		delete(h.boxes, key)
	}
}
