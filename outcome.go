package jwtstrategy

// Status classifies the terminal result of one authentication attempt.
type Status int

const (
	// StatusSuccess means the token verified and the verify callback
	// accepted a user.
	StatusSuccess Status = iota

	// StatusFailure means the request could not be authenticated: no
	// token, no key, a rejected signature, or a verify callback that
	// declined the user.
	StatusFailure

	// StatusError means something went wrong while authenticating:
	// a provider or callback error, a timeout, or a panic.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailure:
		return "failure"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of one authentication attempt.
// Exactly one Outcome is produced per Authenticate call. User and Info
// are set on success; Info alone on failure; Err on error.
type Outcome struct {
	Status Status
	User   any
	Info   any
	Err    error

	// Claims holds the decoded token payload on success so transport
	// adapters can store it alongside the user.
	Claims any
}

// Success builds a success outcome carrying the authenticated user and
// any additional info the verify callback supplied.
func Success(user, info any) Outcome {
	return Outcome{Status: StatusSuccess, User: user, Info: info}
}

// Fail builds a failure outcome. Info is typically a string message
// but passes through unmodified whatever the caller supplied.
func Fail(info any) Outcome {
	return Outcome{Status: StatusFailure, Info: info}
}

// Errored builds an error outcome carrying err.
func Errored(err error) Outcome {
	return Outcome{Status: StatusError, Err: err}
}
