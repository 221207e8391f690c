// Package jwx implements the verification driver on top of the
// github.com/lestrrat-go/jwx/v2 packages. Unlike the default driver it
// understands jwk.Key and jwk.Set keys directly, which makes it the
// natural pairing for the jwks key provider.
package jwx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/bearerauth/jwtstrategy/driver"
)

// DefaultAlgorithm is the signature algorithm permitted when the
// verify options do not name any.
const DefaultAlgorithm = "HS256"

// ParseFunc is the verification primitive the driver is built on. It
// matches the signature of jwt.Parse.
type ParseFunc func(payload []byte, opts ...jwt.ParseOption) (jwt.Token, error)

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

// WithParseFunc replaces the underlying verification primitive. The
// supplied function must not be nil.
func WithParseFunc(f ParseFunc) Option {
	return func(d *Driver) error {
		if f == nil {
			return errors.New("parse function cannot be nil")
		}
		d.parse = f
		return nil
	}
}

// Driver validates JWTs using the lestrrat-go/jwx/v2 packages.
type Driver struct {
	parse ParseFunc
	opts  driver.VerifyOptions
	now   func() time.Time
}

// New sets up a new Driver. The default configuration permits only
// HS256 and applies no issuer or audience checks.
func New(opts ...Option) (*Driver, error) {
	d := &Driver{
		parse: jwt.Parse,
		opts:  driver.VerifyOptions{Algorithms: []string{DefaultAlgorithm}},
		now:   time.Now,
	}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return d, nil
}

// Validate verifies the token signature and claims against the
// resolved key.
func (d *Driver) Validate(ctx context.Context, token string, key any) driver.Result {
	alg, err := d.tokenAlgorithm(token)
	if err != nil {
		return driver.Reject(err.Error())
	}

	keyOpt, err := keyOption(alg, key)
	if err != nil {
		return driver.Reject(err.Error())
	}

	parsed, err := d.parse([]byte(token), keyOpt, jwt.WithValidate(false), jwt.WithContext(ctx))
	if err != nil {
		return driver.Reject(fmt.Sprintf("could not parse the token: %s", err))
	}

	if err := d.checkClaims(parsed); err != nil {
		return driver.Reject(err.Error())
	}

	payload, err := parsed.AsMap(ctx)
	if err != nil {
		return driver.Reject(fmt.Sprintf("could not decode token claims: %s", err))
	}

	return driver.Ok(payload)
}

// tokenAlgorithm reads the alg header and checks it against the
// permitted set before any cryptographic work happens.
func (d *Driver) tokenAlgorithm(token string) (jwa.SignatureAlgorithm, error) {
	msg, err := jws.ParseString(token)
	if err != nil {
		return "", fmt.Errorf("could not parse the token: %s", err)
	}

	signatures := msg.Signatures()
	if len(signatures) == 0 {
		return "", errors.New("token carries no signature")
	}

	alg := signatures[0].ProtectedHeaders().Algorithm()
	for _, permitted := range d.opts.Algorithms {
		if string(alg) == permitted {
			return alg, nil
		}
	}
	return "", fmt.Errorf("token specified disallowed %q signing algorithm", alg)
}

// checkClaims applies the time, issuer and audience checks with the
// configured clock tolerance.
func (d *Driver) checkClaims(token jwt.Token) error {
	now := d.now()
	leeway := d.opts.ClockTolerance

	if !d.opts.IgnoreExpiration {
		if exp := token.Expiration(); !exp.IsZero() && now.Add(-leeway).After(exp) {
			return errors.New("token is expired")
		}
	}
	if nbf := token.NotBefore(); !nbf.IsZero() && now.Add(leeway).Before(nbf) {
		return errors.New("token is not valid yet")
	}

	if d.opts.Issuer != "" && token.Issuer() != d.opts.Issuer {
		return fmt.Errorf("token issuer is not %q", d.opts.Issuer)
	}

	if len(d.opts.Audience) == 0 {
		return nil
	}
	for _, want := range d.opts.Audience {
		for _, have := range token.Audience() {
			if have == want {
				return nil
			}
		}
	}
	return errors.New("token audience is not expected")
}

// keyOption turns the resolved key into the appropriate jwt parse
// option. jwk.Set values let the library pick the key by kid.
func keyOption(alg jwa.SignatureAlgorithm, key any) (jwt.ParseOption, error) {
	switch k := key.(type) {
	case jwk.Set:
		return jwt.WithKeySet(k, jws.WithInferAlgorithmFromKey(true)), nil
	case jwk.Key:
		return jwt.WithKey(alg, k), nil
	case string:
		return jwt.WithKey(alg, []byte(k)), nil
	case nil:
		return nil, errors.New("no verification key supplied")
	default:
		return jwt.WithKey(alg, k), nil
	}
}
