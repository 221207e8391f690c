package jwtstrategy

import (
	"errors"
	"net/http"
)

// ErrorHandler is called by the HTTP middleware whenever an
// authentication attempt does not end in success. The err can be
// checked against ErrTokenMissing and ErrAuthFailed to distinguish a
// missing token and a failed attempt from internal errors. The default
// handler returns 400 for ErrTokenMissing, 401 for ErrAuthFailed and
// 500 for everything else. A custom handler MUST take these error
// types into account or the middleware will not respond as intended.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler is the error handler used when none is
// configured through WithErrorHandler.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case errors.Is(err, ErrTokenMissing):
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Auth token is missing."}`))
	case errors.Is(err, ErrAuthFailed):
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Authentication failed."}`))
	default:
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Something went wrong while authenticating."}`))
	}
}
