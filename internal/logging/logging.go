// Package logging holds the package-level structured logger shared by every
// package in this module.
//
// Logging is a cross-cutting concern, and stores, streams and executors share
// the same semantics, so a single package-level logger is used (set via
// unistate.SetLogger), with per-component overrides where a component accepts
// its own logger. A nil logger is valid, and disables logging.
package logging

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

// Logger is the concrete logger type accepted throughout the module.
type Logger = logiface.Logger[logiface.Event]

// Log categories, used as structured fields and as rate limit buckets.
const (
	CategoryExecutor = "executor"
	CategoryReactive = "reactive"
	CategoryStore    = "store"
	CategoryRegistry = "registry"
)

var (
	global atomic.Pointer[Logger]

	// recovered panics are potentially very noisy (e.g. an observer that
	// always panics, on a hot path), so they are limited per category
	panicLimiter = catrate.NewLimiter(map[time.Duration]int{
		time.Second: 5,
		time.Minute: 60,
	})
)

// Set replaces the package-level logger. Passing nil disables logging.
func Set(logger *Logger) {
	global.Store(logger)
}

// Get returns the package-level logger, which may be nil.
func Get() *Logger {
	return global.Load()
}

// Or returns logger if it is non-nil, otherwise the package-level logger.
func Or(logger *Logger) *Logger {
	if logger != nil {
		return logger
	}
	return Get()
}

// Recovered reports a recovered panic value, at error level, subject to a
// per-category rate limit.
func Recovered(logger *Logger, category string, value any) {
	logger = Or(logger)
	if logger == nil {
		return
	}
	if _, ok := panicLimiter.Allow(category); !ok {
		return
	}
	logger.Err().
		Str(`category`, category).
		Err(PanicError{Value: value}).
		Str(`stack`, string(debug.Stack())).
		Log(`recovered panic`)
}

// PanicError wraps a recovered panic value.
type PanicError struct {
	Value any
}

func (e PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value, if it is an error.
func (e PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
