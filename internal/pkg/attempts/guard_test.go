package attempts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestGuard(max int) *Guard {
	return &Guard{counters: make(map[string]*counter), max: max}
}

func TestConsume_WithinBound(t *testing.T) {
	g := newTestGuard(5)
	for i := 0; i < 5; i++ {
		assert.True(t, g.Consume("a@b.com"), "attempt %d should be allowed", i+1)
	}
}

func TestConsume_SixthRejected(t *testing.T) {
	g := newTestGuard(5)
	for i := 0; i < 5; i++ {
		g.Consume("a@b.com")
	}
	assert.False(t, g.Consume("a@b.com"))
	assert.False(t, g.Consume("a@b.com"), "stays rejected until reset")
}

func TestReset_ReopensKey(t *testing.T) {
	g := newTestGuard(5)
	for i := 0; i < 6; i++ {
		g.Consume("a@b.com")
	}
	assert.False(t, g.Consume("a@b.com"))

	g.Reset("a@b.com")
	assert.True(t, g.Consume("a@b.com"))
}

func TestConsume_KeysAreIndependent(t *testing.T) {
	g := newTestGuard(1)
	assert.True(t, g.Consume("a@b.com"))
	assert.False(t, g.Consume("a@b.com"))
	assert.True(t, g.Consume("c@d.com"))
}

func TestReset_UnknownKeyIsNoop(t *testing.T) {
	g := newTestGuard(1)
	g.Reset("never-seen")
	assert.True(t, g.Consume("never-seen"))
}
