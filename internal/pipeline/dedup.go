package pipeline

import "strings"

// fingerprintLen is the number of title characters the dedup heuristic
// considers. Titles that diverge only after this point collide; titles that
// diverge before it are treated as distinct even when they describe the
// same story. Accepted imprecision.
const fingerprintLen = 50

// Fingerprint is the dedup key for a title: its lower-cased first 50
// characters.
func Fingerprint(title string) string {
	lower := strings.ToLower(strings.TrimSpace(title))
	runes := []rune(lower)
	if len(runes) > fingerprintLen {
		runes = runes[:fingerprintLen]
	}
	return string(runes)
}

// Deduplicator admits the first occurrence of each title fingerprint within
// one batch. Arrival order in the merged batch decides the winner.
type Deduplicator struct {
	seen map[string]struct{}
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[string]struct{})}
}

// Admit reports whether the fingerprint is new to this batch and records it.
func (d *Deduplicator) Admit(fingerprint string) bool {
	if _, ok := d.seen[fingerprint]; ok {
		return false
	}
	d.seen[fingerprint] = struct{}{}
	return true
}
