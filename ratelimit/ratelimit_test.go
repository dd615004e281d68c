package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestLimiter() (*Limiter, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return New(10, time.Minute).WithClock(c.now), c
}

func TestAllowUpToMax(t *testing.T) {
	l, _ := newTestLimiter()
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("alice"), "request %d", i)
	}
	assert.False(t, l.Allow("alice"))
	assert.True(t, l.Allow("bob"))
}

func TestAllowanceRefills(t *testing.T) {
	l, c := newTestLimiter()
	for i := 0; i < 10; i++ {
		l.Allow("alice")
	}
	assert.False(t, l.Allow("alice"))

	c.t = c.t.Add(6 * time.Second)
	assert.True(t, l.Allow("alice"))
	assert.False(t, l.Allow("alice"))

	c.t = c.t.Add(time.Minute)
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("alice"))
	}
}

func TestReset(t *testing.T) {
	l, _ := newTestLimiter()
	for i := 0; i < 10; i++ {
		l.Allow("alice")
	}
	l.Reset("alice")
	assert.True(t, l.Allow("alice"))
}

func TestCleanup(t *testing.T) {
	l, c := newTestLimiter()
	l.Allow("alice")
	c.t = c.t.Add(30 * time.Second)
	l.Allow("bob")
	assert.Equal(t, 2, l.Tracked())

	c.t = c.t.Add(31 * time.Second)
	assert.Equal(t, 1, l.Cleanup())
	assert.Equal(t, 1, l.Tracked())
}

func TestDefaults(t *testing.T) {
	l := New(0, 0)
	assert.Equal(t, DefaultMaxRequests, l.max)
	assert.Equal(t, DefaultWindow, l.window)
}
