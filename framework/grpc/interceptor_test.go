package jwtgrpc

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/bearerauth/jwtstrategy"
)

const secret = "grpc-test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newStrategy(t *testing.T) *jwtstrategy.Strategy {
	t.Helper()
	s, err := jwtstrategy.New(
		jwtstrategy.WithExtractor(jwtstrategy.AuthHeaderTokenExtractor),
		jwtstrategy.WithKey(secret),
		jwtstrategy.WithVerify(func(payload any, done jwtstrategy.DoneFunc) {
			claims := payload.(jwt.MapClaims)
			sub, _ := claims.GetSubject()
			done(nil, sub, nil)
		}),
	)
	require.NoError(t, err)
	return s
}

func authedContext(t *testing.T, claims jwt.MapClaims) context.Context {
	t.Helper()
	md := metadata.Pairs("authorization", "Bearer "+signToken(t, claims))
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestBearerToken(t *testing.T) {
	testCases := []struct {
		name        string
		md          metadata.MD
		expectToken string
		expectError error
	}{
		{
			name:        "valid bearer",
			md:          metadata.Pairs("authorization", "Bearer abc123"),
			expectToken: "abc123",
		},
		{
			name:        "lowercase scheme",
			md:          metadata.Pairs("authorization", "bearer abc123"),
			expectToken: "abc123",
		},
		{
			name: "missing metadata",
		},
		{
			name: "missing entry",
			md:   metadata.Pairs("other", "value"),
		},
		{
			name:        "multiple entries",
			md:          metadata.Pairs("authorization", "Bearer one", "authorization", "Bearer two"),
			expectError: ErrMultipleAuthHeaders,
		},
		{
			name:        "wrong scheme",
			md:          metadata.Pairs("authorization", "Basic abc123"),
			expectError: ErrInvalidAuthFormat,
		},
		{
			name:        "no token",
			md:          metadata.Pairs("authorization", "Bearer"),
			expectError: ErrInvalidAuthFormat,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := context.Background()
			if testCase.md != nil {
				ctx = metadata.NewIncomingContext(ctx, testCase.md)
			}

			token, err := BearerToken(ctx)

			assert.Equal(t, testCase.expectToken, token)
			assert.ErrorIs(t, err, testCase.expectError)
		})
	}
}

func TestUnaryInterceptor(t *testing.T) {
	interceptor, err := New(newStrategy(t))
	require.NoError(t, err)

	unary := interceptor.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/Method"}

	t.Run("authenticated", func(t *testing.T) {
		ctx := authedContext(t, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		resp, err := unary(ctx, "request", info, func(ctx context.Context, req any) (any, error) {
			user, err := jwtstrategy.GetUser[string](ctx)
			require.NoError(t, err)
			claims, err := jwtstrategy.GetClaims[jwt.MapClaims](ctx)
			require.NoError(t, err)
			sub, _ := claims.GetSubject()
			return fmt.Sprintf("%s/%s", user, sub), nil
		})

		require.NoError(t, err)
		assert.Equal(t, "user-1/user-1", resp)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := unary(context.Background(), "request", info, func(ctx context.Context, req any) (any, error) {
			t.Fatal("handler must not run without credentials")
			return nil, nil
		})

		require.Error(t, err)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
		assert.Contains(t, err.Error(), "No auth token")
	})

	t.Run("invalid token", func(t *testing.T) {
		md := metadata.Pairs("authorization", "Bearer not.a.token")
		ctx := metadata.NewIncomingContext(context.Background(), md)

		_, err := unary(ctx, "request", info, func(ctx context.Context, req any) (any, error) {
			t.Fatal("handler must not run with an invalid token")
			return nil, nil
		})

		require.Error(t, err)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})

	t.Run("extractor error is internal", func(t *testing.T) {
		md := metadata.Pairs("authorization", "NoScheme")
		ctx := metadata.NewIncomingContext(context.Background(), md)

		_, err := unary(ctx, "request", info, func(ctx context.Context, req any) (any, error) {
			t.Fatal("handler must not run")
			return nil, nil
		})

		require.Error(t, err)
		assert.Equal(t, codes.Internal, status.Code(err))
	})
}

func TestUnaryInterceptorExcludedMethod(t *testing.T) {
	interceptor, err := New(newStrategy(t), WithExcludedMethods("/test.Service/Health"))
	require.NoError(t, err)

	unary := interceptor.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/test.Service/Health"}

	resp, err := unary(context.Background(), "request", info, func(ctx context.Context, req any) (any, error) {
		return "healthy", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "healthy", resp)
}

func TestStreamInterceptor(t *testing.T) {
	interceptor, err := New(newStrategy(t))
	require.NoError(t, err)

	stream := interceptor.StreamServerInterceptor()
	info := &grpc.StreamServerInfo{FullMethod: "/test.Service/Stream"}

	t.Run("authenticated", func(t *testing.T) {
		ctx := authedContext(t, jwt.MapClaims{
			"sub": "user-1",
			"exp": time.Now().Add(time.Hour).Unix(),
		})

		err := stream(nil, &fakeServerStream{ctx: ctx}, info, func(srv any, ss grpc.ServerStream) error {
			user, err := jwtstrategy.GetUser[string](ss.Context())
			require.NoError(t, err)
			assert.Equal(t, "user-1", user)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("missing token", func(t *testing.T) {
		err := stream(nil, &fakeServerStream{ctx: context.Background()}, info, func(srv any, ss grpc.ServerStream) error {
			t.Fatal("handler must not run without credentials")
			return nil
		})

		require.Error(t, err)
		assert.Equal(t, codes.Unauthenticated, status.Code(err))
	})
}

func TestNewRequiresStrategy(t *testing.T) {
	_, err := New(nil)
	assert.EqualError(t, err, "strategy is required")
}

type fakeServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *fakeServerStream) Context() context.Context {
	return s.ctx
}
