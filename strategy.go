package jwtstrategy

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bearerauth/jwtstrategy/driver"
)

// DoneFunc completes the verify callback's authorization decision.
// Only the first invocation is honored; later calls are no-ops.
//
//   - done(err, _, _) with a non-nil err produces an error outcome
//     carrying exactly err.
//   - done(nil, user, info) with a truthy user (non-nil and not false)
//     produces a success outcome.
//   - done(nil, nil, info) or done(nil, false, info) produces a
//     failure outcome carrying info unmodified.
type DoneFunc func(err error, user any, info any)

// VerifyFunc is the integrator-supplied authorization callback. It
// receives the decoded token payload and reports its decision through
// done, synchronously or from another goroutine.
type VerifyFunc func(payload any, done DoneFunc)

// VerifyRequestFunc is the request-aware verify callback shape. The
// request passed is the identical value given to Authenticate.
type VerifyRequestFunc func(r *http.Request, payload any, done DoneFunc)

// Strategy authenticates HTTP requests carrying a JWT. It extracts the
// token, resolves the verification key, hands both to the verification
// driver and delegates the final authorization decision to the verify
// callback. A Strategy holds no per-request state and is safe for
// concurrent use.
type Strategy struct {
	extractor          TokenExtractor
	key                any
	keyProvider        KeyProvider
	keyProviderFunc    KeyProviderFunc
	keyProviderTimeout time.Duration
	driver             driver.Driver
	verify             VerifyFunc
	verifyRequest      VerifyRequestFunc

	logger  Logger
	metrics Metrics
	tracer  tracer

	// HTTP middleware behavior
	errorHandler        ErrorHandler
	credentialsOptional bool
	validateOnOptions   bool
	exclusionURLHandler func(r *http.Request) bool

	// Held until construction finishes, see option.go.
	verifyOptions    *driver.VerifyOptions
	driverConfigured bool
}

// Authenticate runs one authentication attempt for the request and
// returns its terminal outcome. Exactly one outcome is produced per
// call; every collaborator error is caught at its call boundary and
// translated rather than propagated.
func (s *Strategy) Authenticate(ctx context.Context, r *http.Request) Outcome {
	start := time.Now()
	ctx, span := s.tracer.start(ctx)

	outcome := s.authenticate(ctx, r)

	span.SetAttributes(attribute.String("auth.outcome", outcome.Status.String()))
	span.End()

	tags := map[string]string{"outcome": outcome.Status.String()}
	s.metrics.IncCounter(metricAuthenticationsTotal, tags)
	s.metrics.ObserveHistogram(metricAuthenticateDuration, time.Since(start).Seconds(), tags)

	return outcome
}

func (s *Strategy) authenticate(ctx context.Context, r *http.Request) Outcome {
	token, err := s.extractor(r)
	if err != nil {
		// An extractor error means a token was presented in a form the
		// extractor could not work with, not that it was missing.
		s.logError("failed to extract token from request", "error", err)
		return Errored(fmt.Errorf("error extracting token: %w", err))
	}
	if token == "" {
		s.logDebug("no token found in request")
		return Fail(MsgNoAuthToken)
	}

	key, out := s.resolveKey(ctx, r, token)
	if out != nil {
		return *out
	}

	result := s.validateToken(ctx, token, key)
	if !result.Success {
		message := result.Message
		if message == "" {
			message = MsgInvalidToken
		}
		s.logWarn("token verification failed", "message", message)
		return Fail(message)
	}

	s.logDebug("token verified, invoking verify callback")
	return s.invokeVerify(ctx, r, result.Payload)
}

// validateToken calls the driver, containing any panic at the
// boundary. A panicking driver surfaces as a failure carrying the
// panic's message, never as a crash.
func (s *Strategy) validateToken(ctx context.Context, token string, key any) (result driver.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logError("verification driver panicked", "panic", rec)
			result = driver.Reject(fmt.Sprint(rec))
		}
	}()
	return s.driver.Validate(ctx, token, key)
}

// invokeVerify hands the decoded payload to the verify callback and
// waits for its single-fire completion. A synchronous panic in the
// callback is recovered into an error outcome carrying the panic
// value.
func (s *Strategy) invokeVerify(ctx context.Context, r *http.Request, payload any) Outcome {
	results := make(chan Outcome, 1)
	var once sync.Once
	deliver := func(out Outcome) {
		once.Do(func() { results <- out })
	}

	done := DoneFunc(func(err error, user, info any) {
		switch {
		case err != nil:
			deliver(Errored(err))
		case truthy(user):
			out := Success(user, info)
			out.Claims = payload
			deliver(out)
		default:
			deliver(Fail(info))
		}
	})

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				deliver(Errored(recoveredError(rec)))
			}
		}()
		if s.verifyRequest != nil {
			s.verifyRequest(r, payload, done)
		} else {
			s.verify(payload, done)
		}
	}()

	select {
	case out := <-results:
		return out
	case <-ctx.Done():
		return Errored(ctx.Err())
	}
}

// truthy reports whether the verify callback accepted a user. nil and
// false both decline.
func truthy(user any) bool {
	return user != nil && user != false
}

func (s *Strategy) logDebug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *Strategy) logWarn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Strategy) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
