// Package dedup drops repeated message deliveries. QoS 1 redeliveries carry
// the same payload, so consumers key entries by a payload hash.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

const (
	defaultTTL = 10 * time.Minute
	defaultCap = 10000
)

// Deduper remembers recently seen identifiers for a TTL, bounded in size.
type Deduper struct {
	mu   sync.Mutex
	ttl  time.Duration
	max  int
	seen map[string]time.Time
}

// New builds a deduper with the given entry TTL and capacity; non-positive
// arguments fall back to defaults.
func New(ttl time.Duration, max int) *Deduper {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if max <= 0 {
		max = defaultCap
	}
	return &Deduper{ttl: ttl, max: max, seen: make(map[string]time.Time, max)}
}

// Key hashes a payload into a dedup identifier.
func Key(payload []byte) string {
	h := sha256.Sum256(payload)
	return hex.EncodeToString(h[:])
}

// ShouldProcess reports whether this identifier is new (or expired) and
// records it. Empty identifiers always pass.
func (d *Deduper) ShouldProcess(id string) bool {
	if id == "" {
		return true
	}
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[id]; ok && now.Before(exp) {
		return false
	}
	d.seen[id] = now.Add(d.ttl)
	if len(d.seen) > d.max {
		d.prune(now)
	}
	return true
}

// Len returns the number of tracked identifiers, expired ones included.
func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}

// prune evicts expired entries first, then the entries closest to expiry
// until the map fits the cap. Caller holds mu.
func (d *Deduper) prune(now time.Time) {
	for id, exp := range d.seen {
		if now.After(exp) {
			delete(d.seen, id)
		}
	}
	for len(d.seen) > d.max {
		var oldestID string
		var oldest time.Time
		for id, exp := range d.seen {
			if oldestID == "" || exp.Before(oldest) {
				oldestID, oldest = id, exp
			}
		}
		delete(d.seen, oldestID)
	}
}
