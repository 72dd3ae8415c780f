package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddGetList(t *testing.T) {
	s := NewStore()

	older := NewRecord(sampleRequest())
	older.createdAt = time.Now().Add(-time.Minute)
	newer := NewRecord(sampleRequest())

	s.Add(older)
	s.Add(newer)

	got, err := s.Get(older.ID())
	require.NoError(t, err)
	assert.Same(t, older, got)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	list := s.List()
	require.Len(t, list, 2)
	assert.Same(t, newer, list[0])
	assert.Same(t, older, list[1])
	assert.Equal(t, 2, s.Len())
}
