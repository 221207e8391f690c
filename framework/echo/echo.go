// Package jwtecho adapts the jwtstrategy engine to echo. The
// middleware authenticates each request and stores the accepted user
// and decoded claims in the echo context.
package jwtecho

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bearerauth/jwtstrategy"
)

const (
	// DefaultClaimsKey is the echo context key the decoded claims are
	// stored under.
	DefaultClaimsKey = "jwt"

	// DefaultUserKey is the echo context key the authenticated user is
	// stored under.
	DefaultUserKey = "jwt_user"
)

// Option configures the echo middleware.
type Option func(*middlewareConfig)

type middlewareConfig struct {
	errorHandler func(echo.Context, error) error
	claimsKey    string
	userKey      string
}

// WithErrorHandler replaces the default error handler.
func WithErrorHandler(h func(echo.Context, error) error) Option {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithClaimsKey sets the echo context key the decoded claims are
// stored under.
func WithClaimsKey(key string) Option {
	return func(c *middlewareConfig) {
		if key != "" {
			c.claimsKey = key
		}
	}
}

// WithUserKey sets the echo context key the authenticated user is
// stored under.
func WithUserKey(key string) Option {
	return func(c *middlewareConfig) {
		if key != "" {
			c.userKey = key
		}
	}
}

// NewMiddleware creates an echo middleware from a configured
// strategy.
func NewMiddleware(strategy *jwtstrategy.Strategy, opts ...Option) echo.MiddlewareFunc {
	config := &middlewareConfig{
		errorHandler: defaultErrorHandler,
		claimsKey:    DefaultClaimsKey,
		userKey:      DefaultUserKey,
	}

	for _, opt := range opts {
		opt(config)
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			outcome := strategy.Authenticate(c.Request().Context(), c.Request())

			switch outcome.Status {
			case jwtstrategy.StatusSuccess:
				c.Set(config.claimsKey, outcome.Claims)
				c.Set(config.userKey, outcome.User)
				return next(c)

			case jwtstrategy.StatusFailure:
				if outcome.Info == jwtstrategy.MsgNoAuthToken {
					return config.errorHandler(c, jwtstrategy.ErrTokenMissing)
				}
				return config.errorHandler(c, failureError{info: outcome.Info})

			default:
				return config.errorHandler(c, outcome.Err)
			}
		}
	}
}

type failureError struct{ info any }

func (e failureError) Error() string {
	return "authentication failed"
}

func (e failureError) Is(target error) bool {
	return target == jwtstrategy.ErrAuthFailed
}

func defaultErrorHandler(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, jwtstrategy.ErrTokenMissing):
		status = http.StatusBadRequest
	case errors.Is(err, jwtstrategy.ErrAuthFailed):
		status = http.StatusUnauthorized
	}
	return c.JSON(status, map[string]string{"message": err.Error()})
}
