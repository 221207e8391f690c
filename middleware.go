package jwtstrategy

import "net/http"

// CheckJWT wraps next with request authentication. On success the
// authenticated user and decoded claims are stored in the request
// context and next is called. Failures and errors are routed through
// the configured ErrorHandler.
func (s *Strategy) CheckJWT(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.exclusionURLHandler != nil && s.exclusionURLHandler(r) {
			s.logDebug("skipping authentication for excluded URL",
				"method", r.Method,
				"path", r.URL.Path)
			next.ServeHTTP(w, r)
			return
		}

		// If we don't validate on OPTIONS and this is OPTIONS
		// then continue onto next without authenticating.
		if !s.validateOnOptions && r.Method == http.MethodOptions {
			s.logDebug("skipping authentication for OPTIONS request")
			next.ServeHTTP(w, r)
			return
		}

		outcome := s.Authenticate(r.Context(), r)

		switch outcome.Status {
		case StatusSuccess:
			ctx := SetUser(r.Context(), outcome.User)
			ctx = SetClaims(ctx, outcome.Claims)
			next.ServeHTTP(w, r.Clone(ctx))

		case StatusFailure:
			if outcome.Info == MsgNoAuthToken {
				if s.credentialsOptional {
					s.logDebug("no credentials provided, continuing without claims (credentials optional)")
					next.ServeHTTP(w, r)
					return
				}
				s.errorHandler(w, r, ErrTokenMissing)
				return
			}
			s.logWarn("request authentication failed",
				"info", outcome.Info,
				"method", r.Method,
				"path", r.URL.Path)
			s.errorHandler(w, r, failedError{info: outcome.Info})

		case StatusError:
			s.logError("request authentication errored",
				"error", outcome.Err,
				"method", r.Method,
				"path", r.URL.Path)
			s.errorHandler(w, r, outcome.Err)
		}
	})
}
