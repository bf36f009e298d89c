package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Fingerprint identifies one underlying bank notification across repeated
// deliveries: source app, whitespace-normalized lowercased text, and the
// timestamp rounded to the dedup window.
func Fingerprint(sourceAppID, text string, ts time.Time, window time.Duration) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(text)), " ")
	h := sha256.New()
	h.Write([]byte(sourceAppID))
	h.Write([]byte{0})
	h.Write([]byte(normalized))
	h.Write([]byte{0})
	h.Write([]byte(ts.Truncate(window).UTC().Format(time.RFC3339)))
	return hex.EncodeToString(h.Sum(nil))
}

// Deduper is an in-memory TTL set of recently seen fingerprints.
type Deduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	window time.Duration
}

// NewDeduper keeps fingerprints for twice the rounding window, so an event
// landing just after a window boundary still collides with its duplicate.
func NewDeduper(window time.Duration) *Deduper {
	if window <= 0 {
		window = 2 * time.Minute
	}
	return &Deduper{
		seen:   make(map[string]time.Time),
		ttl:    2 * window,
		window: window,
	}
}

// Window returns the rounding window fingerprints are computed with.
func (d *Deduper) Window() time.Duration {
	return d.window
}

// Seen reports whether the fingerprint is already present and unexpired. It
// does not record anything: a sighting only counts once the event reached a
// terminal outcome, so redelivery after a processing failure is not mistaken
// for a duplicate.
func (d *Deduper) Seen(fingerprint string) bool {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	for fp, at := range d.seen {
		if now.Sub(at) > d.ttl {
			delete(d.seen, fp)
		}
	}

	at, ok := d.seen[fingerprint]
	return ok && now.Sub(at) <= d.ttl
}

// Record marks the fingerprint as processed.
func (d *Deduper) Record(fingerprint string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seen[fingerprint] = time.Now()
}
