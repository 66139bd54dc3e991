package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStore_SetGet(t *testing.T) {
	s := New(time.Hour)

	s.Set("AAPL", 42)

	val, ok := s.Get("AAPL")
	assert.True(t, ok)
	assert.Equal(t, 42, val)
}

func TestStore_MissingKey(t *testing.T) {
	s := New(time.Hour)

	_, ok := s.Get("MSFT")
	assert.False(t, ok)
}

func TestStore_Expiry(t *testing.T) {
	s := New(time.Hour)

	current := time.Now()
	s.now = func() time.Time { return current }

	s.Set("AAPL", "forecast")

	// Still valid just inside the window
	current = current.Add(59 * time.Minute)
	_, ok := s.Get("AAPL")
	assert.True(t, ok)

	// Expired past the window
	current = current.Add(2 * time.Minute)
	_, ok = s.Get("AAPL")
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestStore_Sweep(t *testing.T) {
	s := New(time.Hour)

	current := time.Now()
	s.now = func() time.Time { return current }

	s.Set("AAPL", 1)
	s.Set("MSFT", 2)

	current = current.Add(30 * time.Minute)
	s.Set("GOOGL", 3)

	// AAPL and MSFT expire, GOOGL survives
	current = current.Add(45 * time.Minute)
	evicted := s.Sweep()

	assert.Equal(t, 2, evicted)
	assert.Equal(t, 1, s.Len())

	_, ok := s.Get("GOOGL")
	assert.True(t, ok)
}

func TestStore_Overwrite(t *testing.T) {
	s := New(time.Hour)

	s.Set("AAPL", 1)
	s.Set("AAPL", 2)

	val, ok := s.Get("AAPL")
	assert.True(t, ok)
	assert.Equal(t, 2, val)
	assert.Equal(t, 1, s.Len())
}
