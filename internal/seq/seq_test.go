package seq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokensAreMonotonic(t *testing.T) {
	var tr Tracker
	first := tr.Begin()
	second := tr.Begin()
	assert.Greater(t, second, first)
}

func TestOnlyLatestTokenCommits(t *testing.T) {
	var tr Tracker
	slow := tr.Begin()
	fast := tr.Begin()

	applied := ""
	// The newer request completes first and wins.
	assert.True(t, tr.Commit(fast, func() { applied = "fast" }))
	// The older request completes late and must be dropped.
	assert.False(t, tr.Commit(slow, func() { applied = "slow" }))
	assert.Equal(t, "fast", applied)
}

func TestCommitOrderIndependent(t *testing.T) {
	var tr Tracker
	a := tr.Begin()
	b := tr.Begin()

	var got string
	tr.Commit(a, func() { got = "a" })
	tr.Commit(b, func() { got = "b" })
	assert.Equal(t, "b", got)
}
