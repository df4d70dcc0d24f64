package runner

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	go l.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return l, cancel
}

func TestLoop_RunsTasksInOrder(t *testing.T) {
	l, _ := startLoop(t)

	var got []int
	for i := range 50 {
		l.Post(func() { got = append(got, i) })
	}
	require.NoError(t, l.Do(context.Background(), func() {}))

	want := make([]int, 50)
	for i := range want {
		want[i] = i
	}
	assert.Equal(t, want, got)
}

func TestLoop_PostFromInsideTask(t *testing.T) {
	l, _ := startLoop(t)

	var order []string
	inner := make(chan struct{})
	l.Post(func() {
		order = append(order, "outer")
		l.Post(func() {
			order = append(order, "inner")
			close(inner)
		})
	})

	select {
	case <-inner:
	case <-time.After(time.Second):
		t.Fatal("task posted from the loop never ran")
	}
	require.NoError(t, l.Do(context.Background(), func() {}))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestLoop_ConcurrentPostersAreSerialised(t *testing.T) {
	l, _ := startLoop(t)

	counter := 0
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				l.Post(func() { counter++ })
			}
		}()
	}
	wg.Wait()
	require.NoError(t, l.Do(context.Background(), func() {}))
	assert.Equal(t, 800, counter)
}

func TestLoop_PanicDoesNotStopLoop(t *testing.T) {
	l, _ := startLoop(t)

	l.Post(func() { panic("boom") })
	ran := false
	require.NoError(t, l.Do(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestLoop_DoAfterClose(t *testing.T) {
	l := NewLoop()
	l.Close()

	err := l.Do(context.Background(), func() { t.Error("task ran after close") })
	assert.ErrorIs(t, err, ErrLoopClosed)

	select {
	case <-l.Done():
	default:
		t.Fatal("Done not closed after Close on an idle loop")
	}
	assert.NoError(t, l.Run(context.Background()))
}

func TestLoop_DoRespectsContext(t *testing.T) {
	l := NewLoop() // never run

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Do(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoop_CloseReleasesWaiters(t *testing.T) {
	l, _ := startLoop(t)

	block := make(chan struct{})
	l.Post(func() { <-block })

	errc := make(chan error, 1)
	go func() { errc <- l.Do(context.Background(), func() {}) }()

	// Give Do a moment to enqueue behind the blocking task.
	time.Sleep(10 * time.Millisecond)
	l.Close()
	close(block)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrLoopClosed)
	case <-time.After(time.Second):
		t.Fatal("Do did not return after Close")
	}
}

func TestLoop_RunTwice(t *testing.T) {
	l, _ := startLoop(t)
	require.NoError(t, l.Do(context.Background(), func() {}))
	assert.Error(t, l.Run(context.Background()))
}
