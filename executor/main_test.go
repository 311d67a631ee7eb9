package executor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/go-unistate/internal/goroutineid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMain(t *testing.T) *Main {
	t.Helper()
	m, err := NewMain()
	require.NoError(t, err)
	return m
}

// runMain starts m on a new goroutine, returning a function that stops it.
func runMain(t *testing.T, m *Main) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()
	require.Eventually(t, m.Running, 5*time.Second, time.Millisecond)
	return func() {
		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Error(`timed out waiting for Run to return`)
		}
	}
}

func TestMain_queuedWhileNotRunning(t *testing.T) {
	m := newTestMain(t)

	var got []int
	for i := range 5 {
		m.Execute(func() { got = append(got, i) })
	}
	assert.Empty(t, got)
	assert.Equal(t, 5, m.Pending())

	n, err := m.Drain()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.Equal(t, 0, m.Pending())
	assert.False(t, m.Running())
}

func TestMain_Run_executesOnDesignatedGoroutine(t *testing.T) {
	m := newTestMain(t)
	stop := runMain(t, m)
	defer stop()

	ids := make(chan uint64, 2)
	m.Execute(func() { ids <- goroutineid.Get() })
	m.Execute(func() { ids <- goroutineid.Get() })

	a, b := <-ids, <-ids
	assert.Equal(t, a, b)
	assert.NotEqual(t, goroutineid.Get(), a)
}

func TestMain_Run_fifoFromManyGoroutines(t *testing.T) {
	m := newTestMain(t)
	stop := runMain(t, m)
	defer stop()

	const (
		producers = 8
		perProd   = 200
	)

	var (
		mu  sync.Mutex
		got = make(map[int][]int)
		wg  sync.WaitGroup
	)
	wg.Add(producers * perProd)
	for p := range producers {
		go func() {
			for i := range perProd {
				m.Execute(func() {
					defer wg.Done()
					mu.Lock()
					got[p] = append(got[p], i)
					mu.Unlock()
				})
			}
		}()
	}
	wg.Wait()

	for p := range producers {
		require.Len(t, got[p], perProd)
		for i, v := range got[p] {
			require.Equal(t, i, v, `producer %d out of order`, p)
		}
	}
}

func TestMain_nestedFromQueuedWorkIsQueued(t *testing.T) {
	m := newTestMain(t)
	var trace []string
	m.Execute(func() {
		trace = append(trace, `outer:start`)
		m.Execute(func() { trace = append(trace, `inner`) })
		trace = append(trace, `outer:end`)
	})

	n, err := m.Drain()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{`outer:start`, `outer:end`, `inner`}, trace)
}

func TestMain_Run_nestedFromQueuedWorkIsQueued(t *testing.T) {
	m := newTestMain(t)
	stop := runMain(t, m)
	defer stop()

	trace := make(chan string, 3)
	m.Execute(func() {
		trace <- `outer:start`
		m.Execute(func() { trace <- `inner` })
		trace <- `outer:end`
	})
	assert.Equal(t, `outer:start`, <-trace)
	assert.Equal(t, `outer:end`, <-trace)
	assert.Equal(t, `inner`, <-trace)
}

func TestMain_inlineOnBoundGoroutine(t *testing.T) {
	m := newTestMain(t)
	release, err := m.Bind()
	require.NoError(t, err)
	defer release()
	assert.True(t, m.Running())

	var trace []string
	// bound, nothing in flight, nothing queued: runs inline
	m.Execute(func() {
		trace = append(trace, `outer:start`)
		// nested within work: always queued
		m.Execute(func() { trace = append(trace, `nested`) })
		trace = append(trace, `outer:end`)
	})
	assert.Equal(t, []string{`outer:start`, `outer:end`}, trace)
	assert.Equal(t, 1, m.Pending())

	n, err := m.Drain()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{`outer:start`, `outer:end`, `nested`}, trace)

	release()
	release()
	assert.False(t, m.Running())
}

func TestMain_inlineRespectsQueuedWork(t *testing.T) {
	m := newTestMain(t)
	release, err := m.Bind()
	require.NoError(t, err)
	defer release()

	var trace []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		// not the designated goroutine: queued
		m.Execute(func() { trace = append(trace, `a`) })
	}()
	<-done

	// a is queued already, so b must not overtake it
	m.Execute(func() { trace = append(trace, `b`) })
	assert.Empty(t, trace)

	_, err = m.Drain()
	require.NoError(t, err)
	assert.Equal(t, []string{`a`, `b`}, trace)
}

func TestMain_Bind_errors(t *testing.T) {
	m := newTestMain(t)
	release, err := m.Bind()
	require.NoError(t, err)

	_, err = m.Bind()
	assert.ErrorIs(t, err, ErrReentrantRun)
	assert.ErrorIs(t, m.Run(context.Background()), ErrReentrantRun)

	errs := make(chan error, 3)
	go func() {
		_, err := m.Bind()
		errs <- err
		_, err = m.Drain()
		errs <- err
		errs <- m.Run(context.Background())
	}()
	for range 3 {
		assert.ErrorIs(t, <-errs, ErrMainAlreadyRunning)
	}

	m.Execute(func() {
		_, err := m.Drain()
		errs <- err
	})
	assert.ErrorIs(t, <-errs, ErrReentrantRun)

	release()
	_, err = m.Drain()
	assert.NoError(t, err)
}

func TestMain_Run_alreadyRunning(t *testing.T) {
	m := newTestMain(t)
	stop := runMain(t, m)
	defer stop()

	assert.ErrorIs(t, m.Run(context.Background()), ErrMainAlreadyRunning)
	_, err := m.Drain()
	assert.ErrorIs(t, err, ErrMainAlreadyRunning)
}

func TestMain_Run_reentrant(t *testing.T) {
	m := newTestMain(t)
	stop := runMain(t, m)
	defer stop()

	errs := make(chan error, 2)
	m.Execute(func() {
		errs <- m.Run(context.Background())
		_, err := m.Drain()
		errs <- err
	})
	assert.ErrorIs(t, <-errs, ErrReentrantRun)
	assert.ErrorIs(t, <-errs, ErrReentrantRun)
}

func TestMain_Run_retainsWorkAcrossRuns(t *testing.T) {
	m := newTestMain(t)
	stop := runMain(t, m)
	stop()

	done := make(chan struct{})
	m.Execute(func() { close(done) })
	assert.Equal(t, 1, m.Pending())

	stop = runMain(t, m)
	defer stop()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal(`queued work was not run`)
	}
}

func TestMain_recoversPanic(t *testing.T) {
	m := newTestMain(t)
	var ran bool
	m.Execute(func() { panic(`boom`) })
	m.Execute(func() { ran = true })
	n, err := m.Drain()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, ran)
}

func TestMain_nilWork(t *testing.T) {
	m := newTestMain(t)
	assert.Panics(t, func() { m.Execute(nil) })
}
