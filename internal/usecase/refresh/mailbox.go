package refresh

import (
	"context"
	"sync"

	"CoinBoard/internal/domain/models"
)

// Mailbox holds the latest published snapshot. Publishing never blocks;
// readers either take the current value or wait for a newer one.
type Mailbox struct {
	mu      sync.Mutex
	seq     uint64
	snap    models.Snapshot
	has     bool
	changed chan struct{}
}

func NewMailbox() *Mailbox {
	return &Mailbox{changed: make(chan struct{})}
}

// Publish replaces the held snapshot, stamping it with the next sequence number.
func (m *Mailbox) Publish(s models.Snapshot) models.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	s.Seq = m.seq
	m.snap = s
	m.has = true
	close(m.changed)
	m.changed = make(chan struct{})
	return s
}

// Latest returns the held snapshot, if any.
func (m *Mailbox) Latest() (models.Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap, m.has
}

// Changed returns a channel closed on the next Publish.
func (m *Mailbox) Changed() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.changed
}

// Wait blocks until a snapshot with Seq > after is available or ctx ends.
// On cancellation it returns the latest snapshot along with ctx.Err().
func (m *Mailbox) Wait(ctx context.Context, after uint64) (models.Snapshot, error) {
	for {
		m.mu.Lock()
		s, has, ch := m.snap, m.has, m.changed
		m.mu.Unlock()
		if has && s.Seq > after {
			return s, nil
		}
		select {
		case <-ctx.Done():
			return s, ctx.Err()
		case <-ch:
		}
	}
}
