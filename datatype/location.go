package datatype

import (
	"fmt"
)

// Location identifies one source line reported by a profiler. The file name
// is an opaque identifier and is never resolved against a source tree.
// Comparable by value, usable as a map key.
type Location struct {
	File string
	Line int
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}
