// Package seq provides the staleness guard shared by every list-fetching
// service: a monotonic request token is taken when a fetch starts, and the
// result is committed only if no newer fetch has started since. Late results
// from superseded requests are discarded, never applied.
package seq

import "sync/atomic"

// Tracker hands out monotonically increasing request tokens.
type Tracker struct {
	latest atomic.Uint64
}

// Begin marks the start of a new request and returns its token. Any token
// issued earlier is now stale.
func (t *Tracker) Begin() uint64 {
	return t.latest.Add(1)
}

// IsLatest reports whether the token still identifies the newest request.
func (t *Tracker) IsLatest(token uint64) bool {
	return t.latest.Load() == token
}

// Commit invokes apply only if the token is still the newest, and reports
// whether it did. There is no rollback: a stale completion is simply dropped.
func (t *Tracker) Commit(token uint64, apply func()) bool {
	if !t.IsLatest(token) {
		return false
	}
	apply()
	return true
}
