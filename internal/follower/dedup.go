package follower

import (
	"sync"
	"time"
)

// dedup suppresses whale trade events that reappear within a TTL window.
// Feeds can deliver the same trade more than once (reconnects, overlapping
// polls); the ledger rejects duplicates too, but catching them here avoids
// pointless notification and execution work.
type dedup struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
}

func newDedup(ttl time.Duration) *dedup {
	return &dedup{seen: make(map[string]time.Time), ttl: ttl}
}

// observe records the event id and reports whether it was already seen
// within the TTL window.
func (d *dedup) observe(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if last, ok := d.seen[id]; ok && now.Sub(last) < d.ttl {
		return true
	}
	d.seen[id] = now
	return false
}

// sweep drops expired entries. Called periodically from the follower loop to
// bound memory.
func (d *dedup) sweep() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	for id, ts := range d.seen {
		if now.Sub(ts) >= d.ttl {
			delete(d.seen, id)
		}
	}
}
