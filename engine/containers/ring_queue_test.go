package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueueFIFO(t *testing.T) {
	rq := NewRingQueue[int](3)
	require.True(t, rq.IsEmpty())

	require.NoError(t, rq.Enqueue(1))
	require.NoError(t, rq.Enqueue(2))
	require.NoError(t, rq.Enqueue(3))
	assert.True(t, rq.IsFull())
	assert.ErrorIs(t, rq.Enqueue(4), ErrQueueFull)

	v, err := rq.Peek()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	for _, want := range []int{1, 2, 3} {
		got, err := rq.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err = rq.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)
}

func TestRingQueueGrowKeepsOrder(t *testing.T) {
	rq := NewRingQueue[int](3)
	require.NoError(t, rq.Enqueue(1))
	require.NoError(t, rq.Enqueue(2))
	_, _ = rq.Dequeue()
	require.NoError(t, rq.Enqueue(3))
	require.NoError(t, rq.Enqueue(4))
	require.True(t, rq.IsFull())

	rq.Grow(6)
	assert.Equal(t, 6, rq.Cap())
	require.NoError(t, rq.Enqueue(5))
	for _, want := range []int{2, 3, 4, 5} {
		got, err := rq.Dequeue()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	rq.Grow(2)
	assert.Equal(t, 6, rq.Cap(), "never shrinks")
}

func TestRingQueueWrapsAround(t *testing.T) {
	rq := NewRingQueue[string](2)
	for i := 0; i < 5; i++ {
		require.NoError(t, rq.Enqueue("a"))
		require.NoError(t, rq.Enqueue("b"))
		a, _ := rq.Dequeue()
		b, _ := rq.Dequeue()
		assert.Equal(t, "a", a)
		assert.Equal(t, "b", b)
	}
	assert.Equal(t, 0, rq.Len())
}
