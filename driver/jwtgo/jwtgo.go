// Package jwtgo implements the verification driver on top of the
// github.com/golang-jwt/jwt/v5 package. It is the driver the strategy
// uses when none is configured explicitly.
package jwtgo

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/bearerauth/jwtstrategy/driver"
)

// DefaultAlgorithm is the signature algorithm permitted when the
// verify options do not name any.
const DefaultAlgorithm = "HS256"

// ParseFunc is the verification primitive the driver is built on. It
// matches the signature of jwt.ParseWithClaims.
type ParseFunc func(token string, claims jwt.Claims, keyFunc jwt.Keyfunc, opts ...jwt.ParserOption) (*jwt.Token, error)

// Option is how options for the Driver are set up.
type Option func(*Driver) error

// WithVerifyOptions sets the claim checks applied on top of signature
// verification. Unset fields keep the driver defaults.
func WithVerifyOptions(opts driver.VerifyOptions) Option {
	return func(d *Driver) error {
		d.opts = driver.Merge(d.opts, opts)
		return nil
	}
}

// WithParseFunc replaces the underlying verification primitive. Useful
// for wrapping the parse call; the supplied function must not be nil.
func WithParseFunc(f ParseFunc) Option {
	return func(d *Driver) error {
		if f == nil {
			return errors.New("parse function cannot be nil")
		}
		d.parse = f
		return nil
	}
}

// Driver validates JWTs using the golang-jwt/jwt/v5 package.
type Driver struct {
	parse ParseFunc
	opts  driver.VerifyOptions
}

// New sets up a new Driver. The default configuration permits only
// HS256 and applies no issuer or audience checks.
func New(opts ...Option) (*Driver, error) {
	d := &Driver{
		parse: jwt.ParseWithClaims,
		opts:  driver.VerifyOptions{Algorithms: []string{DefaultAlgorithm}},
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return d, nil
}

// Validate verifies the token signature and claims against the
// resolved key. Every failure mode is reported through the Result;
// Validate never panics on malformed input.
func (d *Driver) Validate(ctx context.Context, token string, key any) driver.Result {
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(d.opts.Algorithms),
	}
	if d.opts.ClockTolerance > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(d.opts.ClockTolerance))
	}

	claims := jwt.MapClaims{}
	parsed, err := d.parse(token, claims, func(*jwt.Token) (any, error) {
		return verificationKey(key), nil
	}, parserOpts...)

	if err != nil && !d.expiredButIgnored(err, parsed) {
		return driver.Reject(fmt.Sprintf("could not parse the token: %s", err))
	}

	if err := d.checkIssuer(claims); err != nil {
		return driver.Reject(err.Error())
	}
	if err := d.checkAudience(claims); err != nil {
		return driver.Reject(err.Error())
	}

	return driver.Ok(claims)
}

// expiredButIgnored reports whether the only reason parsing failed is
// an expired token while expiry checking is disabled. The signature
// has already been verified by the time claim validation runs, so the
// parsed token remains usable.
func (d *Driver) expiredButIgnored(err error, parsed *jwt.Token) bool {
	if !d.opts.IgnoreExpiration || parsed == nil {
		return false
	}
	return errors.Is(err, jwt.ErrTokenExpired) &&
		!errors.Is(err, jwt.ErrTokenNotValidYet) &&
		!errors.Is(err, jwt.ErrTokenUsedBeforeIssued)
}

func (d *Driver) checkIssuer(claims jwt.MapClaims) error {
	if d.opts.Issuer == "" {
		return nil
	}
	issuer, err := claims.GetIssuer()
	if err != nil || issuer != d.opts.Issuer {
		return fmt.Errorf("token issuer is not %q", d.opts.Issuer)
	}
	return nil
}

func (d *Driver) checkAudience(claims jwt.MapClaims) error {
	if len(d.opts.Audience) == 0 {
		return nil
	}
	audience, err := claims.GetAudience()
	if err != nil {
		return errors.New("token has no audience claim")
	}
	for _, want := range d.opts.Audience {
		for _, have := range audience {
			if have == want {
				return nil
			}
		}
	}
	return errors.New("token audience is not expected")
}

// verificationKey converts the resolved key into the form the jwt
// package expects. Secret strings become byte slices for the HMAC
// family; everything else passes through untouched.
func verificationKey(key any) any {
	if s, ok := key.(string); ok {
		return []byte(s)
	}
	return key
}
