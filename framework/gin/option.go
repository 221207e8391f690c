package jwtgin

import "github.com/gin-gonic/gin"

// Option configures the gin middleware.
type Option func(*middlewareConfig)

type middlewareConfig struct {
	errorHandler func(*gin.Context, error)
	claimsKey    string
	userKey      string
}

// WithErrorHandler replaces the default error handler.
func WithErrorHandler(h func(*gin.Context, error)) Option {
	return func(c *middlewareConfig) {
		if h != nil {
			c.errorHandler = h
		}
	}
}

// WithClaimsKey sets the gin context key the decoded claims are
// stored under.
func WithClaimsKey(key string) Option {
	return func(c *middlewareConfig) {
		if key != "" {
			c.claimsKey = key
		}
	}
}

// WithUserKey sets the gin context key the authenticated user is
// stored under.
func WithUserKey(key string) Option {
	return func(c *middlewareConfig) {
		if key != "" {
			c.userKey = key
		}
	}
}
