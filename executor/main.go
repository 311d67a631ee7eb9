package executor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-unistate/internal/goroutineid"
	"github.com/joeycumines/go-unistate/internal/logging"
	"github.com/joeycumines/go-unistate/syncx"
)

var (
	// ErrMainAlreadyRunning is returned when Run or Drain is called on a Main
	// that is already being run.
	ErrMainAlreadyRunning = errors.New("executor: main executor is already running")

	// ErrReentrantRun is returned when Run, Drain or Bind is called from within
	// work executing on the designated goroutine, or Run or Bind is called by
	// a bound goroutine.
	ErrReentrantRun = errors.New("executor: cannot call Run from the designated goroutine")
)

// mainState models the lifecycle of a Main.
//
//	mainIdle (0) → mainRunning (1)   [Run(), Drain(), Bind()]
//	mainRunning (1) → mainIdle (0)   [return from Run(), Drain(), release from Bind()]
type mainState = uint32

const (
	mainIdle    mainState = 0
	mainRunning mainState = 1
)

// Main is an [Executor] that serializes all work onto a single designated
// goroutine: the goroutine currently calling [Main.Run] or [Main.Drain], or
// bound via [Main.Bind].
//
// Work submitted from the designated goroutine runs inline, if and only if
// the designated goroutine is not already executing work (the reentrancy
// counter was zero immediately before increment) and nothing is queued. All
// other work, including nested (reentrant) submissions from within any work,
// inline or queued, is appended to a FIFO queue, which preserves ordering
// relative to already-queued work. In practice, inline execution only occurs
// for code on a bound goroutine, that is not itself running as work.
//
// Work submitted while Run is not active is retained, and processed by the
// next call to Run or Drain. It is never dropped.
type Main struct { // betteralign:ignore
	// Prevent copying
	_ [0]func()

	logger *logging.Logger

	pending syncx.Mutex[[]func()]

	// wake is signalled (non-blocking) after work is enqueued
	wake chan struct{}

	// goroutine is the designated goroutine's ID, or 0 if not running
	goroutine atomic.Uint64

	// depth counts executions (inline or queued) in flight, only modified on
	// the designated goroutine
	depth atomic.Int32

	state atomic.Uint32
}

// NewMain creates a new Main executor. It does nothing until [Main.Run] is
// called.
func NewMain(opts ...Option) (*Main, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Main{
		logger: cfg.logger,
		wake:   make(chan struct{}, 1),
	}, nil
}

// Execute runs work on the designated goroutine, see [Main] for details.
// Work must not be nil.
func (x *Main) Execute(work func()) {
	if work == nil {
		panic(`executor: nil work`)
	}

	if x.isDesignated() {
		if x.depth.Add(1) == 1 && x.Pending() == 0 {
			defer x.depth.Add(-1)
			safeExecute(x.logger, work)
			return
		}
		x.depth.Add(-1)
	}

	x.pending.Modify(func(pending *[]func()) {
		*pending = append(*pending, work)
	})

	select {
	case x.wake <- struct{}{}:
	default:
	}
}

// Run binds the calling goroutine as the designated goroutine, then processes
// queued work, in FIFO order, until ctx is done. It returns ctx.Err(), or an
// error if the Main is already running.
func (x *Main) Run(ctx context.Context) error {
	if x.isDesignated() {
		return ErrReentrantRun
	}
	if !x.state.CompareAndSwap(mainIdle, mainRunning) {
		return ErrMainAlreadyRunning
	}
	x.goroutine.Store(goroutineid.Get())
	defer x.release()

	for {
		x.drain(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-x.wake:
		}
	}
}

// Drain runs all queued work on the calling goroutine, including any work
// queued by that work, returning the number of work functions run. It is
// intended for use when no goroutine is dedicated to Run, e.g. in tests, at
// shutdown, or periodically by a goroutine bound via [Main.Bind].
func (x *Main) Drain() (int, error) {
	if x.isDesignated() {
		if x.depth.Load() != 0 {
			return 0, ErrReentrantRun
		}
		// bound goroutine
		return x.drain(context.Background()), nil
	}
	if !x.state.CompareAndSwap(mainIdle, mainRunning) {
		return 0, ErrMainAlreadyRunning
	}
	x.goroutine.Store(goroutineid.Get())
	defer x.release()
	return x.drain(context.Background()), nil
}

// Bind designates the calling goroutine, until release is called, without
// processing queued work. This is for hosts that run their own code on the
// designated goroutine (e.g. a UI thread): work they submit runs inline,
// subject to the rules described by [Main], and they should call
// [Main.Drain] to process queued work. The release function must be called
// from the bound goroutine, and is idempotent.
func (x *Main) Bind() (release func(), err error) {
	if x.isDesignated() {
		return nil, ErrReentrantRun
	}
	if !x.state.CompareAndSwap(mainIdle, mainRunning) {
		return nil, ErrMainAlreadyRunning
	}
	x.goroutine.Store(goroutineid.Get())
	var once sync.Once
	return func() { once.Do(x.release) }, nil
}

// Pending returns the number of queued work functions.
func (x *Main) Pending() int {
	return syncx.Synchronized(&x.pending, func(pending []func()) int { return len(pending) })
}

// Running returns true if a goroutine is currently designated.
func (x *Main) Running() bool {
	return x.state.Load() == mainRunning
}

func (x *Main) release() {
	x.goroutine.Store(0)
	x.state.Store(mainIdle)
}

func (x *Main) drain(ctx context.Context) (n int) {
	for ctx.Err() == nil {
		work, ok := x.pop()
		if !ok {
			break
		}
		x.depth.Add(1)
		safeExecute(x.logger, work)
		x.depth.Add(-1)
		n++
	}
	return n
}

func (x *Main) pop() (work func(), ok bool) {
	x.pending.Modify(func(pending *[]func()) {
		if len(*pending) == 0 {
			return
		}
		work, ok = (*pending)[0], true
		(*pending)[0] = nil
		*pending = (*pending)[1:]
	})
	return work, ok
}

// isDesignated checks if we're on the designated goroutine.
func (x *Main) isDesignated() bool {
	id := x.goroutine.Load()
	if id == 0 {
		return false
	}
	return goroutineid.Get() == id
}
