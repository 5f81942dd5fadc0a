package metrics

import (
	"errors"
)

// ErrRegister wraps collector registration failures from NewManager.
var ErrRegister = errors.New("metrics register failed")
