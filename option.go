package jwtstrategy

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/bearerauth/jwtstrategy/driver"
	"github.com/bearerauth/jwtstrategy/driver/jwtgo"
)

// Option configures the Strategy. Options return errors so that
// misconfiguration fails construction instead of surfacing per
// request.
type Option func(*Strategy) error

// Sentinel errors for configuration validation.
var (
	ErrExtractorNil          = errors.New("token extractor is required (use WithExtractor)")
	ErrVerifyNil             = errors.New("a verify callback is required (use WithVerify or WithVerifyRequest)")
	ErrVerifyConflict        = errors.New("only one of WithVerify and WithVerifyRequest may be used")
	ErrKeyMissing            = errors.New("a verification key or key provider is required (use WithKey, WithKeyProvider or WithKeyProviderFunc)")
	ErrKeyConflict           = errors.New("only one of WithKey, WithKeyProvider and WithKeyProviderFunc may be used")
	ErrDriverNil             = errors.New("driver cannot be nil")
	ErrVerifyOptionsConflict = errors.New("WithVerifyOptions applies to the default driver only and cannot be combined with WithDriver")
	ErrErrorHandlerNil       = errors.New("errorHandler cannot be nil")
	ErrLoggerNil             = errors.New("logger cannot be nil")
	ErrMetricsNil            = errors.New("metrics cannot be nil")
	ErrExclusionURLsEmpty    = errors.New("exclusion URLs list cannot be empty")
)

// New constructs a new Strategy with the supplied options. A token
// extractor, a verify callback and exactly one key source are
// required; everything else has defaults.
//
// Example:
//
//	strategy, err := jwtstrategy.New(
//	    jwtstrategy.WithExtractor(jwtstrategy.AuthHeaderTokenExtractor),
//	    jwtstrategy.WithKey("my-signing-secret"),
//	    jwtstrategy.WithVerify(func(payload any, done jwtstrategy.DoneFunc) {
//	        done(nil, lookupUser(payload), nil)
//	    }),
//	)
//	if err != nil {
//	    log.Fatalf("failed to create strategy: %v", err)
//	}
func New(opts ...Option) (*Strategy, error) {
	s := &Strategy{
		// Validate OPTIONS requests by default.
		validateOnOptions: true,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid strategy configuration: %w", err)
	}

	if err := s.applyDefaults(); err != nil {
		return nil, err
	}

	return s, nil
}

// validate ensures the required configuration is present and mutually
// exclusive settings do not collide.
func (s *Strategy) validate() error {
	if s.extractor == nil {
		return ErrExtractorNil
	}

	verifiers := 0
	if s.verify != nil {
		verifiers++
	}
	if s.verifyRequest != nil {
		verifiers++
	}
	if verifiers == 0 {
		return ErrVerifyNil
	}
	if verifiers > 1 {
		return ErrVerifyConflict
	}

	keySources := 0
	if s.key != nil {
		keySources++
	}
	if s.keyProvider != nil {
		keySources++
	}
	if s.keyProviderFunc != nil {
		keySources++
	}
	if keySources == 0 {
		return ErrKeyMissing
	}
	if keySources > 1 {
		return ErrKeyConflict
	}

	if s.verifyOptions != nil && s.driverConfigured {
		return ErrVerifyOptionsConflict
	}

	return nil
}

// applyDefaults fills in the optional collaborators, building the
// default jwtgo driver when none was configured.
func (s *Strategy) applyDefaults() error {
	if !s.driverConfigured {
		var verifyOpts driver.VerifyOptions
		if s.verifyOptions != nil {
			verifyOpts = *s.verifyOptions
		}
		d, err := jwtgo.New(jwtgo.WithVerifyOptions(verifyOpts))
		if err != nil {
			return fmt.Errorf("failed to create default driver: %w", err)
		}
		s.driver = d
	}
	if s.errorHandler == nil {
		s.errorHandler = DefaultErrorHandler
	}
	if s.metrics == nil {
		s.metrics = &NoopMetrics{}
	}
	if s.tracer.isZero() {
		s.tracer = newTracer()
	}
	return nil
}

// WithExtractor sets the function that derives the raw token from the
// request (REQUIRED). See extractor.go for stock extractors.
func WithExtractor(e TokenExtractor) Option {
	return func(s *Strategy) error {
		if e == nil {
			return ErrExtractorNil
		}
		s.extractor = e
		return nil
	}
}

// WithVerify sets the authorization callback invoked with the decoded
// token payload. Exactly one of WithVerify and WithVerifyRequest is
// required.
func WithVerify(f VerifyFunc) Option {
	return func(s *Strategy) error {
		if f == nil {
			return ErrVerifyNil
		}
		s.verify = f
		return nil
	}
}

// WithVerifyRequest sets a request-aware authorization callback. The
// callback's first argument is the identical request value passed to
// Authenticate.
func WithVerifyRequest(f VerifyRequestFunc) Option {
	return func(s *Strategy) error {
		if f == nil {
			return ErrVerifyNil
		}
		s.verifyRequest = f
		return nil
	}
}

// WithKey sets a static verification key shared by all requests.
// Exactly one of WithKey, WithKeyProvider and WithKeyProviderFunc is
// required. The default driver treats string keys as HMAC secrets.
func WithKey(key any) Option {
	return func(s *Strategy) error {
		if key == nil {
			return ErrKeyMissing
		}
		s.key = key
		return nil
	}
}

// WithKeyProvider sets a per-request key provider.
func WithKeyProvider(p KeyProvider) Option {
	return func(s *Strategy) error {
		if p == nil {
			return ErrKeyMissing
		}
		s.keyProvider = p
		return nil
	}
}

// WithKeyProviderFunc sets a callback-style per-request key provider.
// See KeyProviderFunc for the completion contract.
func WithKeyProviderFunc(f KeyProviderFunc) Option {
	return func(s *Strategy) error {
		if f == nil {
			return ErrKeyMissing
		}
		s.keyProviderFunc = f
		return nil
	}
}

// WithKeyProviderTimeout bounds how long a key provider may take to
// complete. When the timer fires first the attempt ends in an error
// outcome tagged with ErrKeyProviderTimeout and any later completion
// is discarded.
//
// Default: no timeout.
func WithKeyProviderTimeout(d time.Duration) Option {
	return func(s *Strategy) error {
		if d < 0 {
			return errors.New("key provider timeout cannot be negative")
		}
		s.keyProviderTimeout = d
		return nil
	}
}

// WithDriver replaces the default jwtgo verification driver.
func WithDriver(d driver.Driver) Option {
	return func(s *Strategy) error {
		if d == nil {
			return ErrDriverNil
		}
		s.driver = d
		s.driverConfigured = true
		return nil
	}
}

// WithVerifyOptions configures the claim checks of the default driver
// (permitted algorithms, issuer, audience, expiry handling, clock
// tolerance). Cannot be combined with WithDriver; configure a custom
// driver directly instead.
func WithVerifyOptions(opts driver.VerifyOptions) Option {
	return func(s *Strategy) error {
		s.verifyOptions = &opts
		return nil
	}
}

// WithErrorHandler sets the handler invoked by the HTTP middleware
// when an attempt does not succeed. See the ErrorHandler type.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(s *Strategy) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		s.errorHandler = h
		return nil
	}
}

// WithCredentialsOptional makes the HTTP middleware pass requests
// without a token through to the next handler instead of rejecting
// them. Authenticate itself still reports such requests as failures.
//
// Default: false (credentials required)
func WithCredentialsOptional(value bool) Option {
	return func(s *Strategy) error {
		s.credentialsOptional = value
		return nil
	}
}

// WithValidateOnOptions sets whether OPTIONS requests go through
// authentication in the HTTP middleware.
//
// Default: true
func WithValidateOnOptions(value bool) Option {
	return func(s *Strategy) error {
		s.validateOnOptions = value
		return nil
	}
}

// WithExclusionURLs configures URL patterns the HTTP middleware skips
// authentication for. Entries match either the full URL or the path.
func WithExclusionURLs(exclusions []string) Option {
	return func(s *Strategy) error {
		if len(exclusions) == 0 {
			return ErrExclusionURLsEmpty
		}
		s.exclusionURLHandler = func(r *http.Request) bool {
			fullURL := r.URL.String()
			path := r.URL.Path
			for _, exclusion := range exclusions {
				if fullURL == exclusion || path == exclusion {
					return true
				}
			}
			return false
		}
		return nil
	}
}

// WithLogger sets an optional logger used throughout the
// authentication flow. The interface is compatible with log/slog;
// adapters for logrus, zap and zerolog live in logger.go.
func WithLogger(logger Logger) Option {
	return func(s *Strategy) error {
		if logger == nil {
			return ErrLoggerNil
		}
		s.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics sink for outcome counts and attempt
// durations.
//
// Default: NoopMetrics
func WithMetrics(m Metrics) Option {
	return func(s *Strategy) error {
		if m == nil {
			return ErrMetricsNil
		}
		s.metrics = m
		return nil
	}
}

// WithTracer sets the OpenTelemetry tracer used to span each
// authentication attempt.
//
// Default: the global tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *Strategy) error {
		if t == nil {
			return errors.New("tracer cannot be nil")
		}
		s.tracer = tracer{t: t}
		return nil
	}
}
