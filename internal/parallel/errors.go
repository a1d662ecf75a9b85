package parallel

import "errors"

// ErrPoolClosed is returned when work is submitted after Close.
var ErrPoolClosed = errors.New("parallel: pool is closed")
