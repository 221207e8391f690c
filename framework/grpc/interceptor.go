// Package jwtgrpc adapts the jwtstrategy engine to gRPC servers.
// Incoming metadata is presented to the strategy as request headers,
// so a strategy configured with AuthHeaderTokenExtractor authenticates
// "authorization: Bearer <token>" metadata without changes.
package jwtgrpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bearerauth/jwtstrategy"
)

// Interceptor provides JWT authentication for gRPC servers.
type Interceptor struct {
	strategy        *jwtstrategy.Strategy
	excludedMethods map[string]bool
}

// Option configures the Interceptor.
type Option func(*Interceptor)

// WithExcludedMethods skips authentication for the given full method
// names (e.g. "/package.Service/Method").
func WithExcludedMethods(methods ...string) Option {
	return func(i *Interceptor) {
		for _, m := range methods {
			i.excludedMethods[m] = true
		}
	}
}

// New creates a new gRPC interceptor around a configured strategy.
func New(strategy *jwtstrategy.Strategy, opts ...Option) (*Interceptor, error) {
	if strategy == nil {
		return nil, fmt.Errorf("strategy is required")
	}

	i := &Interceptor{
		strategy:        strategy,
		excludedMethods: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that
// authenticates requests and makes the user and claims available in
// the handler context.
func (i *Interceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if i.excludedMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		authedCtx, err := i.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(authedCtx, req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor that
// authenticates streams and makes the user and claims available in the
// stream context.
func (i *Interceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if i.excludedMethods[info.FullMethod] {
			return handler(srv, ss)
		}

		authedCtx, err := i.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &wrappedStream{ServerStream: ss, ctx: authedCtx})
	}
}

// authenticate runs one attempt and maps its outcome to a gRPC status:
// failures become Unauthenticated, errors become Internal.
func (i *Interceptor) authenticate(ctx context.Context, fullMethod string) (context.Context, error) {
	r := requestFromMetadata(ctx, fullMethod)

	outcome := i.strategy.Authenticate(ctx, r)
	switch outcome.Status {
	case jwtstrategy.StatusSuccess:
		ctx = jwtstrategy.SetUser(ctx, outcome.User)
		ctx = jwtstrategy.SetClaims(ctx, outcome.Claims)
		return ctx, nil
	case jwtstrategy.StatusFailure:
		return nil, status.Errorf(codes.Unauthenticated, "%v", outcome.Info)
	default:
		return nil, status.Error(codes.Internal, "authentication error")
	}
}

// wrappedStream overrides the stream context with the authenticated
// one.
type wrappedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedStream) Context() context.Context {
	return w.ctx
}
