package shutdown

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatorWaitsForAllTasks(t *testing.T) {
	coordinator := New()

	started := make(chan struct{}, 3)
	for i := 0; i < 3; i++ {
		done := coordinator.Register()
		go func() {
			started <- struct{}{}
			<-coordinator.Context().Done()
			done()
		}()
	}

	for i := 0; i < 3; i++ {
		<-started
	}

	coordinator.Shutdown()
	assert.True(t, coordinator.Wait(time.Second))
}

func TestCoordinatorTimesOutOnStuckTask(t *testing.T) {
	coordinator := New()

	// Registered but never reports done.
	_ = coordinator.Register()

	coordinator.Shutdown()
	assert.False(t, coordinator.Wait(20*time.Millisecond))
}

func TestCoordinatorDoneIsIdempotent(t *testing.T) {
	coordinator := New()

	done := coordinator.Register()
	done()
	require.NotPanics(t, done)

	coordinator.Shutdown()
	assert.True(t, coordinator.Wait(time.Second))
}

func TestCoordinatorWaitCoversTaskRegisteredDuringShutdown(t *testing.T) {
	coordinator := New()

	// First task finishes immediately once the context is cancelled; the
	// second is registered in the shutdown path itself, like a teardown step
	// that only starts after the signal arrives.
	fastDone := coordinator.Register()
	go func() {
		<-coordinator.Context().Done()
		fastDone()
	}()

	teardownRan := make(chan struct{})
	go func() {
		lateDone := coordinator.Register()
		coordinator.Shutdown()

		time.Sleep(50 * time.Millisecond)
		close(teardownRan)
		lateDone()
	}()

	require.True(t, coordinator.Wait(time.Second))

	select {
	case <-teardownRan:
	default:
		t.Fatal("Wait returned before the late-registered task finished")
	}
}

func TestCoordinatorShutdownIsIdempotent(t *testing.T) {
	coordinator := New()

	coordinator.Shutdown()
	assert.NotPanics(t, coordinator.Shutdown)

	select {
	case <-coordinator.Context().Done():
	default:
		t.Fatal("context should be cancelled after Shutdown")
	}
}
