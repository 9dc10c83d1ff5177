package station

import "time"

// defaultRetentionWindow bounds the dedup memory. It tolerates realistic
// delivery jitter and broker retries while keeping the seen set small
// under continuous traffic.
const defaultRetentionWindow = 10 * time.Second

// packetIdentity is the dedup key: what the message claims to be, not
// what bytes it arrived in. The same logical reading may legitimately
// arrive on multiple nested message wrappers.
type packetIdentity struct {
	timestamp   string
	model       string
	deviceID    string
	messageType string
}

// seenSet tracks recently observed packet identities together with the
// wall-clock time each was first seen.
//
// Not safe for concurrent use; it is touched only from the consumer
// context.
type seenSet struct {
	ttl     time.Duration
	entries map[packetIdentity]time.Time
}

func newSeenSet(ttl time.Duration) *seenSet {
	if ttl <= 0 {
		ttl = defaultRetentionWindow
	}
	return &seenSet{
		ttl:     ttl,
		entries: make(map[packetIdentity]time.Time),
	}
}

// prune removes every entry first seen before now minus the retention
// window. Pruning always compares against the wall clock, never against
// a message's own declared timestamp, so stale device clocks cannot
// inflate the set.
func (s *seenSet) prune(now time.Time) {
	cutoff := now.Add(-s.ttl)
	for id, firstSeen := range s.entries {
		if firstSeen.Before(cutoff) {
			delete(s.entries, id)
		}
	}
}

// observe prunes, then reports whether id was already present. A new
// identity is recorded with the current time.
func (s *seenSet) observe(id packetIdentity, now time.Time) bool {
	s.prune(now)
	if _, dup := s.entries[id]; dup {
		return true
	}
	s.entries[id] = now
	return false
}

// size returns the current number of tracked identities.
func (s *seenSet) size() int {
	return len(s.entries)
}
