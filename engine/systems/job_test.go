package systems

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobSystemValidation(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)
}

func TestJobSystemRunsEveryJob(t *testing.T) {
	js, err := NewJobSystem(4, 8)
	require.NoError(t, err)

	var (
		done     atomic.Int32
		failed   atomic.Int32
		finished sync.WaitGroup
	)
	for i := 0; i < 100; i++ {
		i := i
		finished.Add(1)
		js.Submit(JobTask{
			OnStart: func() error {
				if i%10 == 0 {
					return errors.New("boom")
				}
				return nil
			},
			OnComplete:           func() { done.Add(1) },
			OnFailure:            func(error) { failed.Add(1) },
			OnCompletionCallback: finished.Done,
		})
	}
	finished.Wait()
	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())

	assert.Equal(t, int32(90), done.Load())
	assert.Equal(t, int32(10), failed.Load())
}

func TestJobSystemRecoversPanics(t *testing.T) {
	js, err := NewJobSystem(1, 0)
	require.NoError(t, err)
	defer js.Shutdown()

	errCh := make(chan error, 1)
	js.Submit(JobTask{
		OnStart:   func() error { panic("bad work-item") },
		OnFailure: func(err error) { errCh <- err },
	})
	assert.ErrorContains(t, <-errCh, "bad work-item")
}
