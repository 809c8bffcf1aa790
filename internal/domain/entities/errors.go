package entities

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSymbol = errors.New("invalid symbol")
	ErrInvalidPrice  = errors.New("invalid price")
	ErrInvalidVolume = errors.New("invalid volume")
	ErrInvalidAsset  = errors.New("invalid asset")
)

// LoadError reports a failed snapshot fetch. It is recoverable and
// user-visible; prior store contents stay untouched.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
