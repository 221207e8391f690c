// Package jwtgin adapts the jwtstrategy engine to gin. The middleware
// authenticates each request and stores the accepted user and decoded
// claims in the gin context.
package jwtgin

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bearerauth/jwtstrategy"
)

const (
	// DefaultClaimsKey is the gin context key the decoded claims are
	// stored under.
	DefaultClaimsKey = "jwt"

	// DefaultUserKey is the gin context key the authenticated user is
	// stored under.
	DefaultUserKey = "jwt_user"
)

// NewMiddleware creates a gin middleware from a configured strategy.
// Authentication outcomes map onto responses through the error
// handler; the default one answers 400 for a missing token, 401 for a
// failed attempt and 500 for errors.
func NewMiddleware(strategy *jwtstrategy.Strategy, opts ...Option) gin.HandlerFunc {
	config := &middlewareConfig{
		errorHandler: defaultErrorHandler,
		claimsKey:    DefaultClaimsKey,
		userKey:      DefaultUserKey,
	}

	for _, opt := range opts {
		opt(config)
	}

	return func(c *gin.Context) {
		outcome := strategy.Authenticate(c.Request.Context(), c.Request)

		switch outcome.Status {
		case jwtstrategy.StatusSuccess:
			c.Set(config.claimsKey, outcome.Claims)
			c.Set(config.userKey, outcome.User)
			c.Next()

		case jwtstrategy.StatusFailure:
			if outcome.Info == jwtstrategy.MsgNoAuthToken {
				config.errorHandler(c, jwtstrategy.ErrTokenMissing)
				return
			}
			config.errorHandler(c, failureError{info: outcome.Info})

		case jwtstrategy.StatusError:
			config.errorHandler(c, outcome.Err)
		}
	}
}

// failureError wraps a failure outcome's info so handlers can match it
// against jwtstrategy.ErrAuthFailed.
type failureError struct{ info any }

func (e failureError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.info)
}

func (e failureError) Is(target error) bool {
	return target == jwtstrategy.ErrAuthFailed
}

func defaultErrorHandler(c *gin.Context, err error) {
	switch {
	case errors.Is(err, jwtstrategy.ErrTokenMissing):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "Auth token is missing."})
	case errors.Is(err, jwtstrategy.ErrAuthFailed):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication failed."})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Something went wrong while authenticating."})
	}
}

// GetClaims retrieves the decoded claims stored by the middleware.
func GetClaims[T any](c *gin.Context, claimsKey string) (T, bool) {
	var zero T
	value, exists := c.Get(claimsKey)
	if !exists {
		return zero, false
	}
	claims, ok := value.(T)
	if !ok {
		return zero, false
	}
	return claims, true
}
