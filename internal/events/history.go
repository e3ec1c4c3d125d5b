package events

import (
	"sync"
	"time"

	"github.com/vadiminshakov/redbet/internal/domain"
)

// ChangeKind names what happened to the ledger.
type ChangeKind string

const (
	// ChangeSettled is published after a pending wager reaches a terminal state.
	ChangeSettled ChangeKind = "settled"
	// ChangeCleared is published after a full history clear.
	ChangeCleared ChangeKind = "cleared"
)

// Change is a ledger change notification for UI consumers. Record is set for
// settlements and nil for clears.
type Change struct {
	Kind      ChangeKind          `json:"kind"`
	Record    *domain.WagerRecord `json:"record,omitempty"`
	Timestamp time.Time           `json:"ts"`
}

// Broadcaster fans out ledger changes to all subscribers via buffered
// channels. It keeps the API intentionally small so call sites can stay
// straightforward.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[chan Change]struct{}
	buffer int
}

// NewBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewBroadcaster(buffer int) *Broadcaster {
	if buffer < 1 {
		buffer = 64
	}
	return &Broadcaster{
		subs:   make(map[chan Change]struct{}),
		buffer: buffer,
	}
}

// Publish sends the change to all subscribers, dropping if a reader is slow.
func (b *Broadcaster) Publish(c Change) {
	if c.Timestamp.IsZero() {
		c.Timestamp = time.Now()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- c:
		default:
			// drop slow consumer
		}
	}
}

// Subscribe returns a channel that receives changes until Unsubscribe is called.
func (b *Broadcaster) Subscribe() chan Change {
	ch := make(chan Change, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (b *Broadcaster) Unsubscribe(ch chan Change) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}
