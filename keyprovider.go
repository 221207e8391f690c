package jwtstrategy

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// KeyProvider supplies the verification key for one authentication
// attempt. Implementations may block; the engine runs ProvideKey on
// its own goroutine and races it against the configured timeout.
//
// Returning a nil key with a nil error means the provider had no key
// for this request, which surfaces as a failure outcome. A non-nil
// error surfaces as an error outcome carrying it unmodified.
type KeyProvider interface {
	ProvideKey(ctx context.Context, r *http.Request, token string) (any, error)
}

// ProviderFunc adapts a plain function to the KeyProvider interface.
type ProviderFunc func(ctx context.Context, r *http.Request, token string) (any, error)

func (f ProviderFunc) ProvideKey(ctx context.Context, r *http.Request, token string) (any, error) {
	return f(ctx, r, token)
}

// KeyDoneFunc completes a callback-style key resolution. Only the
// first invocation is honored; later calls are no-ops.
type KeyDoneFunc func(err error, key any)

// KeyProviderFunc is the callback-style provider shape. The provider
// must complete through done, synchronously or later from another
// goroutine, and must return nil. A non-nil return value is rejected
// as a configuration mistake rather than treated as a key, so a
// provider that forgets to use the callback is detected instead of
// silently verifying against the wrong material.
type KeyProviderFunc func(r *http.Request, token string, done KeyDoneFunc) any

// keyResolution is the result of one key resolution attempt: either a
// usable key or a terminal outcome that short-circuits the attempt.
type keyResolution struct {
	key     any
	outcome *Outcome
}

func resolvedKey(key any) keyResolution {
	return keyResolution{key: key}
}

func terminal(out Outcome) keyResolution {
	return keyResolution{outcome: &out}
}

// resolveKey produces the verification key for this attempt, or a
// terminal outcome when resolution fails. With a static key it is
// immediate. With a provider it races the provider's completion
// against the configured timeout; whichever arrives second is
// discarded without side effects.
func (s *Strategy) resolveKey(ctx context.Context, r *http.Request, token string) (any, *Outcome) {
	if s.keyProvider == nil && s.keyProviderFunc == nil {
		return s.key, nil
	}

	results := make(chan keyResolution, 1)
	var once sync.Once
	deliver := func(res keyResolution) {
		once.Do(func() { results <- res })
	}

	if s.keyProviderFunc != nil {
		go s.runProviderFunc(r, token, deliver)
	} else {
		go s.runProvider(ctx, r, token, deliver)
	}

	var timeout <-chan time.Time
	if s.keyProviderTimeout > 0 {
		timer := time.NewTimer(s.keyProviderTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case res := <-results:
		return res.key, res.outcome
	case <-timeout:
		s.logWarn("key provider timed out", "timeout", s.keyProviderTimeout)
		out := Errored(&TimeoutError{Timeout: s.keyProviderTimeout})
		return nil, &out
	case <-ctx.Done():
		out := Errored(ctx.Err())
		return nil, &out
	}
}

// runProviderFunc drives a callback-style provider. An error through
// the callback becomes a failure carrying exactly that error's
// message; a nil key becomes the fixed no-key failure; a synchronous
// return value is a type mismatch.
func (s *Strategy) runProviderFunc(r *http.Request, token string, deliver func(keyResolution)) {
	returned := s.keyProviderFunc(r, token, func(err error, key any) {
		switch {
		case err != nil:
			deliver(terminal(Fail(err.Error())))
		case key == nil:
			deliver(terminal(Fail(MsgNoKeyReturned)))
		default:
			deliver(resolvedKey(key))
		}
	})

	if returned != nil {
		deliver(terminal(Errored(fmt.Errorf("%w: got %T", ErrKeyProviderReturn, returned))))
	}
}

// runProvider drives an interface-style provider.
func (s *Strategy) runProvider(ctx context.Context, r *http.Request, token string, deliver func(keyResolution)) {
	key, err := s.keyProvider.ProvideKey(ctx, r, token)
	switch {
	case err != nil:
		deliver(terminal(Errored(err)))
	case key == nil:
		deliver(terminal(Fail(MsgNoKeyReturned)))
	default:
		deliver(resolvedKey(key))
	}
}
