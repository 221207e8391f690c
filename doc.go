// Package jwtstrategy implements a bearer-token request authentication
// strategy: it extracts a JWT from an incoming HTTP request, resolves
// the verification key (statically or through a per-request provider),
// verifies the token through a pluggable driver and delegates the
// final authorization decision to an integrator-supplied verify
// callback. Every attempt ends in exactly one of three outcomes:
// success, failure or error.
//
// The verification driver defaults to the golang-jwt based
// implementation in driver/jwtgo; driver/jwx provides an alternative
// built on lestrrat-go/jwx that pairs with the jwks key provider.
// Transport adapters for net/http (CheckJWT), gin, echo and gRPC live
// in this package and under framework/.
package jwtstrategy
