package jwtstrategy

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTokenMissing is reported when no token could be extracted
	// from the request.
	ErrTokenMissing = errors.New("auth token missing")

	// ErrAuthFailed is reported when a token was present but the
	// authentication attempt ended in a failure outcome.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrKeyProviderTimeout tags errors produced when the key provider
	// does not complete within the configured timeout. Match with
	// errors.Is.
	ErrKeyProviderTimeout = errors.New("key provider timed out")

	// ErrKeyProviderReturn is reported when a callback-style key
	// provider returns a value synchronously instead of completing
	// through its callback. Literal return values are never treated
	// as keys.
	ErrKeyProviderReturn = errors.New("key provider returned a value instead of completing through its callback")

	// ErrClaimsNotFound is returned when claims cannot be retrieved
	// from a context.
	ErrClaimsNotFound = errors.New("claims not found in context")
)

// Fixed failure messages surfaced through Failure outcomes.
const (
	MsgNoAuthToken   = "No auth token"
	MsgNoKeyReturned = "Provider did not return a key."
	MsgInvalidToken  = "invalid token"
)

// TimeoutError is the concrete error produced when key resolution is
// cut off by the configured timeout. It supports equality to
// ErrKeyProviderTimeout through errors.Is.
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("key provider did not complete within %s", e.Timeout)
}

// Is allows the error to support equality to ErrKeyProviderTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrKeyProviderTimeout
}

// failedError wraps a failure outcome's info with the concrete error
// ErrAuthFailed so HTTP error handlers can classify it. Not exported;
// the Is and Unwrap methods give callers all they need.
type failedError struct {
	info any
}

// Is allows the error to support equality to ErrAuthFailed.
func (e failedError) Is(target error) bool {
	return target == ErrAuthFailed
}

func (e failedError) Error() string {
	return fmt.Sprintf("%s: %v", ErrAuthFailed, e.info)
}

// PanicError carries a non-error value recovered from a panicking
// verify callback.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("verify callback panicked: %v", e.Value)
}

// recoveredError normalizes a recovered panic value into an error,
// preserving the original value when it already is one.
func recoveredError(value any) error {
	if err, ok := value.(error); ok {
		return err
	}
	return &PanicError{Value: value}
}
