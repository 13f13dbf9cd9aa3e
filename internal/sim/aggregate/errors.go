package aggregate

import "errors"

var (
	// ErrInvalidParameter reports a stickiness outside [0, 1].
	ErrInvalidParameter = errors.New("aggregate: invalid parameter")

	// ErrInvalidTopology reports an attractor kind that does not fit the
	// aggregate's dimension, or an illegal attractor size.
	ErrInvalidTopology = errors.New("aggregate: invalid topology")
)
