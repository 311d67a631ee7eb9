package unistate

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/joeycumines/go-unistate/internal/logging"
	"github.com/joeycumines/go-unistate/syncx"
)

// Registry holds the shared [Dispatcher] for each [Kind]. A shared
// dispatcher is created on first use, and retained for the lifetime of the
// registry.
//
// Stores that should be able to observe each other's shared actions must use
// the same registry.
type Registry struct { // betteralign:ignore
	// Prevent copying
	_ [0]func()

	logger *logging.Logger

	// values are *Dispatcher[A], for the action type of the kind
	dispatchers syncx.Mutex[map[Kind]any]
}

// NewRegistry returns a new, empty Registry.
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	cfg, err := resolveRegistryOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Registry{logger: cfg.logger}, nil
}

// SharedDispatcher returns the shared dispatcher for kind, creating it if
// necessary. Every call with the same registry and kind returns the same
// instance. It panics if the dispatcher for kind was created with a
// different action type, which is a programming error.
func SharedDispatcher[A any](r *Registry, kind Kind) *Dispatcher[A] {
	if r == nil {
		panic(`unistate: nil registry`)
	}
	var created bool
	d := syncx.Modify(&r.dispatchers, func(m *map[Kind]any) *Dispatcher[A] {
		if v, ok := (*m)[kind]; ok {
			d, ok := v.(*Dispatcher[A])
			if !ok {
				panic(fmt.Sprintf(`unistate: kind %q: requested %T but registered %T`, kind, (*Dispatcher[A])(nil), v))
			}
			return d
		}
		if *m == nil {
			*m = make(map[Kind]any)
		}
		d := NewDispatcher[A]()
		d.setLogger(r.logger)
		(*m)[kind] = d
		created = true
		return d
	})
	if created {
		logging.Or(r.logger).Debug().
			Str(`category`, logging.CategoryRegistry).
			Str(`kind`, string(kind)).
			Str(`action`, reflect.TypeFor[A]().String()).
			Log(`created shared dispatcher`)
	}
	return d
}

// Kinds returns the kinds that have a shared dispatcher, sorted.
func (r *Registry) Kinds() []Kind {
	return syncx.Synchronized(&r.dispatchers, func(m map[Kind]any) []Kind {
		return slices.Sorted(maps.Keys(m))
	})
}
