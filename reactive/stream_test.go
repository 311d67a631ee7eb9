package reactive

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/joeycumines/go-unistate/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_liveOnly(t *testing.T) {
	s := NewStream[string]()
	s.Send(`before`)

	var got []string
	sub := s.Subscribe(executor.Immediate, func(v string) { got = append(got, v) })
	s.Send(`a`)
	s.Send(`b`)
	sub.Unsubscribe()
	s.Send(`after`)

	assert.Equal(t, []string{`a`, `b`}, got)
	assert.Equal(t, 0, s.Len())
}

func TestStream_zeroValue(t *testing.T) {
	var s Stream[int]
	var got []int
	s.Subscribe(executor.Immediate, func(v int) { got = append(got, v) })
	s.Send(1)
	assert.Equal(t, []int{1}, got)
}

func TestStream_unsubscribeFromObserver(t *testing.T) {
	s := NewStream[int]()
	var (
		got []int
		sub *Subscription
	)
	sub = s.Subscribe(executor.Immediate, func(v int) {
		got = append(got, v)
		sub.Unsubscribe()
	})
	s.Send(1)
	s.Send(2)
	assert.Equal(t, []int{1}, got)
}

func TestStream_subscribeFromObserver(t *testing.T) {
	s := NewStream[int]()
	var inner []int
	var once sync.Once
	s.Subscribe(executor.Immediate, func(v int) {
		once.Do(func() {
			s.Subscribe(executor.Immediate, func(v int) { inner = append(inner, v) })
		})
	})
	s.Send(1)
	s.Send(2)
	assert.Equal(t, []int{2}, inner)
}

func TestStream_concurrentSend(t *testing.T) {
	const (
		senders = 8
		each    = 250
	)
	s := NewStream[int]()
	var a, b atomic.Int64
	s.Subscribe(executor.Immediate, func(v int) { a.Add(int64(v)) })
	s.Subscribe(executor.Immediate, func(v int) { b.Add(1) })

	var wg sync.WaitGroup
	for range senders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range each {
				s.Send(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(senders*each), a.Load())
	require.Equal(t, int64(senders*each), b.Load())
}

func TestStream_executor(t *testing.T) {
	m, err := executor.NewMain()
	require.NoError(t, err)

	s := NewStream[int]()
	var got []int
	s.Subscribe(m, func(v int) { got = append(got, v) })
	s.Send(1)
	s.Send(2)
	assert.Empty(t, got)

	_, err = m.Drain()
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)
}
