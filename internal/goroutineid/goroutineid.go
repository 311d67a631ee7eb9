// Package goroutineid identifies the calling goroutine.
//
// The runtime deliberately hides goroutine identity. It is recovered here by
// parsing the header of [runtime.Stack], which is slow (~1µs) but stable, and
// is only used to decide whether a caller is already running on a designated
// goroutine.
package goroutineid

import (
	"runtime"
)

// Get returns the current goroutine's ID. IDs are never zero.
func Get() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
