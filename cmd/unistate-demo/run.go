package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/joeycumines/go-eventloop"
	"github.com/joeycumines/go-unistate"
	"github.com/joeycumines/go-unistate/executor"
	"github.com/joeycumines/go-unistate/reactive"
	"golang.org/x/sync/errgroup"
)

// result is the final state of a store.
type result struct {
	Name    string
	State   counter
	Commits uint64
}

// run replays the script, from each of cfg.Workers goroutines, then waits
// for every action to be applied.
func run(ctx context.Context, cfg config, s *script, logger *unistate.Logger, out io.Writer) ([]result, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	// background holds goroutines that run until the script completes, e.g.
	// the designated goroutine of the main executor
	background, backgroundCtx := errgroup.WithContext(ctx)
	backgroundCtx, stop := context.WithCancel(backgroundCtx)
	defer func() {
		stop()
		_ = background.Wait()
	}()

	exec, err := newExecutor(backgroundCtx, background, cfg.Executor, logger)
	if err != nil {
		return nil, err
	}

	registry, err := unistate.NewRegistry(unistate.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	var scope reactive.Scope
	defer scope.Dispose()

	stores := make(map[string]*unistate.Store[counter, counterAction], len(s.Stores))
	for _, name := range s.Stores {
		store, err := unistate.NewStore(counter{}, mutateCounter,
			unistate.WithRegistry(registry),
			unistate.WithExecutor(exec),
			unistate.WithLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		stores[name] = store

		reactive.Bind[int](unistate.Select(store, func(state counter) int { return state.Count }), executor.Immediate, &scope, func(count int) {
			logger.Debug().Str(`store`, name).Int(`count`, count).Log(`count changed`)
		})
	}
	shared := unistate.SharedActions[counter, counterAction](registry)

	var workers errgroup.Group
	for i := range cfg.Workers {
		workers.Go(func() error {
			for _, st := range s.Steps {
				action, err := st.counterAction()
				if err != nil {
					return err
				}
				actions := shared
				if !st.Shared {
					actions = stores[st.Store].Actions()
				}
				for range st.Repeat {
					if err := ctx.Err(); err != nil {
						return err
					}
					actions.Dispatch(action)
				}
			}
			logger.Debug().Int(`worker`, i).Log(`worker done`)
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return nil, err
	}

	expected := s.commits() * uint64(cfg.Workers)
	if err := waitForCommits(ctx, expected, stores); err != nil {
		return nil, err
	}

	results := make([]result, 0, len(s.Stores))
	for _, name := range s.Stores {
		store := stores[name]
		results = append(results, result{Name: name, State: store.Value(), Commits: store.Commits()})
		_, _ = fmt.Fprintf(out, "%s: count=%d updates=%d\n", name, store.Value().Count, store.Value().Updates)
	}
	logger.Info().
		Str(`executor`, cfg.Executor).
		Int(`workers`, cfg.Workers).
		Uint64(`commits`, expected).
		Log(`script complete`)
	return results, nil
}

func waitForCommits(ctx context.Context, expected uint64, stores map[string]*unistate.Store[counter, counterAction]) error {
	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()
	for {
		var n uint64
		for _, store := range stores {
			n += store.Commits()
		}
		if n >= expected {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for %d commits, got %d: %w", expected, n, ctx.Err())
		case <-ticker.C:
		}
	}
}

// newExecutor creates the named executor, starting any goroutines it
// requires in g, which must stop when ctx is done.
func newExecutor(ctx context.Context, g *errgroup.Group, name string, logger *unistate.Logger) (executor.Executor, error) {
	switch name {
	case execImmediate:
		return executor.Immediate, nil

	case execGo:
		return executor.Go, nil

	case execMain:
		m, err := executor.NewMain(executor.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			if err := m.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		return m, nil

	case execLoop:
		loop, err := eventloop.New()
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			defer loop.Close()
			if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		q, err := executor.NewQueue(loop, executor.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		return q, nil

	default:
		return nil, fmt.Errorf("invalid executor: %s", name)
	}
}
