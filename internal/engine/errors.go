package engine

import "errors"

// ErrCycle is returned by Connect when the new edge would make a step depend
// on itself, directly or transitively.
var ErrCycle = errors.New("edge would create a dependency cycle")
