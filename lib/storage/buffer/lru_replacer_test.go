package buffer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRUReplacerVictimOrder(t *testing.T) {
	lru := NewLRUReplacer()

	lru.Insert(FrameID(1))
	lru.Insert(FrameID(2))
	lru.Insert(FrameID(3))
	lru.Insert(FrameID(4))
	require.Equal(t, uint32(4), lru.Size())

	// victims come out least recently inserted first
	for _, expected := range []FrameID{1, 2, 3, 4} {
		victim := lru.Victim()
		require.NotNil(t, victim)
		require.Equal(t, expected, *victim)
	}
	require.Nil(t, lru.Victim())
	require.Equal(t, uint32(0), lru.Size())
}

func TestLRUReplacerErase(t *testing.T) {
	lru := NewLRUReplacer()

	for i := 1; i <= 4; i++ {
		lru.Insert(FrameID(i))
	}

	require.True(t, lru.Erase(FrameID(2)))
	require.False(t, lru.Erase(FrameID(2)))
	require.Equal(t, uint32(3), lru.Size())

	for _, expected := range []FrameID{1, 3, 4} {
		victim := lru.Victim()
		require.NotNil(t, victim)
		require.Equal(t, expected, *victim)
	}
	require.Nil(t, lru.Victim())
}

func TestLRUReplacerReinsertMovesToHead(t *testing.T) {
	lru := NewLRUReplacer()

	lru.Insert(FrameID(1))
	lru.Insert(FrameID(2))
	lru.Insert(FrameID(3))

	// reinsertion refreshes frame 1: it is now the most recent
	lru.Insert(FrameID(1))

	for _, expected := range []FrameID{2, 3, 1} {
		victim := lru.Victim()
		require.NotNil(t, victim)
		require.Equal(t, expected, *victim)
	}
}
