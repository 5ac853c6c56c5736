package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreHandsOutCopies(t *testing.T) {
	m := NewMemoryStore()
	orig := &Session{Questions: []string{"q1", "q2"}}
	m.Put("u1", orig)

	orig.Questions[0] = "changed"
	got, ok := m.Get("u1")
	require.True(t, ok)
	assert.Equal(t, "q1", got.Questions[0])

	got.Results = append(got.Results, Result{Index: 0})
	got.CurrentIndex = 1
	again, _ := m.Get("u1")
	assert.Empty(t, again.Results)
	assert.Zero(t, again.CurrentIndex)
}

func TestMemoryStoreDelete(t *testing.T) {
	m := NewMemoryStore()
	m.Put("u1", &Session{Questions: []string{"q"}})
	m.Put("u2", &Session{Questions: []string{"q"}})
	assert.Equal(t, 2, m.Len())

	m.Delete("u1")
	m.Delete("missing")
	_, ok := m.Get("u1")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Len())
}

func TestSessionDone(t *testing.T) {
	s := &Session{Questions: []string{"a", "b"}}
	assert.False(t, s.Done())
	s.CurrentIndex = 2
	assert.True(t, s.Done())
}
