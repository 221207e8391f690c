// Package driver defines the verification driver abstraction used by the
// strategy engine. A Driver wraps a single underlying JWT verification
// library and reports every outcome, including internal failures, as a
// Result value. Drivers never return Go errors from Validate; anything
// that goes wrong during verification must be folded into an
// unsuccessful Result so that the engine can translate it into an
// authentication failure rather than an internal error.
package driver

import (
	"context"
	"time"
)

// Result is the outcome of one verification attempt. When Success is
// true, Payload holds the decoded claims. When Success is false,
// Message describes why verification failed.
type Result struct {
	Success bool
	Payload any
	Message string
}

// Driver validates a raw token against a resolved key.
//
// Implementations must be safe for concurrent use; the engine shares a
// single Driver across all requests.
type Driver interface {
	Validate(ctx context.Context, token string, key any) Result
}

// Func adapts a plain function to the Driver interface.
type Func func(ctx context.Context, token string, key any) Result

func (f Func) Validate(ctx context.Context, token string, key any) Result {
	return f(ctx, token, key)
}

// Ok builds a successful Result carrying the decoded payload.
func Ok(payload any) Result {
	return Result{Success: true, Payload: payload}
}

// Reject builds an unsuccessful Result with the given message.
func Reject(message string) Result {
	return Result{Success: false, Message: message}
}

// VerifyOptions enumerates the claim checks a driver applies on top of
// signature verification. The zero value checks nothing beyond the
// signature and expiry.
type VerifyOptions struct {
	// Algorithms restricts the permitted signature algorithms. Drivers
	// default this when empty; callers override by setting it.
	Algorithms []string

	// Issuer, when non-empty, must match the token's iss claim.
	Issuer string

	// Audience, when non-empty, requires at least one entry to appear
	// in the token's aud claim.
	Audience []string

	// IgnoreExpiration skips the exp check. Signature verification
	// still applies.
	IgnoreExpiration bool

	// ClockTolerance is the leeway allowed on time-based claims.
	ClockTolerance time.Duration
}

// Merge overlays the caller-supplied options onto defaults. Fields the
// caller set take precedence; unset fields keep the default.
func Merge(defaults, overrides VerifyOptions) VerifyOptions {
	merged := defaults
	if len(overrides.Algorithms) > 0 {
		merged.Algorithms = overrides.Algorithms
	}
	if overrides.Issuer != "" {
		merged.Issuer = overrides.Issuer
	}
	if len(overrides.Audience) > 0 {
		merged.Audience = overrides.Audience
	}
	if overrides.IgnoreExpiration {
		merged.IgnoreExpiration = true
	}
	if overrides.ClockTolerance != 0 {
		merged.ClockTolerance = overrides.ClockTolerance
	}
	return merged
}
