package jwtgrpc

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/grpc/metadata"
)

// Extractor errors.
var (
	// ErrMultipleAuthHeaders indicates multiple authorization metadata
	// entries were provided.
	ErrMultipleAuthHeaders = errors.New("multiple authorization metadata entries are not allowed")

	// ErrInvalidAuthFormat indicates the authorization metadata format
	// is invalid.
	ErrInvalidAuthFormat = errors.New("invalid authorization metadata format, expected: Bearer <token>")
)

// BearerToken extracts the JWT from the "authorization" metadata key.
// It supports the "Bearer <token>" format; a missing entry is not an
// error, only a malformed one.
//
// gRPC normalizes incoming metadata keys to lowercase, so only the
// lowercase "authorization" key is checked.
func BearerToken(ctx context.Context) (string, error) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return "", nil
	}

	authHeaders := md.Get("authorization")
	if len(authHeaders) == 0 {
		return "", nil
	}
	if len(authHeaders) > 1 {
		return "", ErrMultipleAuthHeaders
	}

	parts := strings.Fields(authHeaders[0])
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrInvalidAuthFormat
	}

	return parts[1], nil
}

// requestFromMetadata synthesizes the opaque request value the
// strategy pipeline carries through extraction, key resolution and the
// verify callback. Incoming metadata is exposed as headers so the
// strategy's standard extractors work unchanged.
func requestFromMetadata(ctx context.Context, fullMethod string) *http.Request {
	header := http.Header{}
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		for key, values := range md {
			for _, value := range values {
				header.Add(key, value)
			}
		}
	}

	r := &http.Request{
		Method: http.MethodPost,
		URL:    &url.URL{Path: fullMethod},
		Header: header,
	}
	return r.WithContext(ctx)
}
