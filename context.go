package jwtstrategy

import "context"

// contextKey is an unexported type for context keys to prevent
// collisions with other packages.
type contextKey int

const (
	claimsContextKey contextKey = iota
	userContextKey
)

// SetClaims stores the decoded token payload in the context. The HTTP
// middleware and framework adapters call this after a successful
// attempt.
func SetClaims(ctx context.Context, claims any) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// SetUser stores the user accepted by the verify callback in the
// context.
func SetUser(ctx context.Context, user any) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetClaims retrieves the decoded token payload from the context with
// type safety using generics.
//
// Example:
//
//	claims, err := jwtstrategy.GetClaims[jwt.MapClaims](r.Context())
//	if err != nil {
//	    http.Error(w, "failed to get claims", http.StatusInternalServerError)
//	    return
//	}
func GetClaims[T any](ctx context.Context) (T, error) {
	return fromContext[T](ctx, claimsContextKey)
}

// GetUser retrieves the authenticated user from the context with type
// safety using generics.
func GetUser[T any](ctx context.Context) (T, error) {
	return fromContext[T](ctx, userContextKey)
}

// HasClaims checks if claims exist in the context without retrieving
// them.
func HasClaims(ctx context.Context) bool {
	return ctx.Value(claimsContextKey) != nil
}

func fromContext[T any](ctx context.Context, key contextKey) (T, error) {
	var zero T

	val := ctx.Value(key)
	if val == nil {
		return zero, ErrClaimsNotFound
	}

	typed, ok := val.(T)
	if !ok {
		return zero, ErrClaimsNotFound
	}

	return typed, nil
}
