package unistate

import (
	"reflect"
)

// Kind identifies a logical kind of state, which determines the shared
// [Dispatcher] used by stores of that kind. See also [KindOf].
type Kind string

// KindOf returns the default [Kind] for stores with state type S, which is
// the fully-qualified name of S (e.g. "example.com/app/counter.State").
func KindOf[S any]() Kind {
	t := reflect.TypeFor[S]()
	if t.Name() == `` || t.PkgPath() == `` {
		// unnamed or predeclared types
		return Kind(t.String())
	}
	return Kind(t.PkgPath() + `.` + t.Name())
}
