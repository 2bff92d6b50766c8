package relay

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateNonce = errors.New("transaction with the same signer and nonce already stored")
	ErrNotStarted     = errors.New("server not started")
	ErrNotReady       = errors.New("relay not ready")
)

// FatalError is an inconsistency the server cannot recover from and must stop on.
type FatalError struct {
	err error
}

func NewFatalError(err error) *FatalError {
	return &FatalError{err: err}
}

func NewFatalErrorf(format string, args ...interface{}) *FatalError {
	return &FatalError{err: fmt.Errorf(format, args...)}
}

func (e *FatalError) Error() string {
	return "fatal: " + e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}
