// Package jwks provides a key provider that resolves verification
// keys from a remote JSON Web Key Set. It implements the strategy's
// KeyProvider interface and returns jwk.Set values, which the jwx
// driver consumes directly, selecting the signing key by the token's
// kid header.
package jwks

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
)

// FetchFunc retrieves a key set from the given URI. It matches the
// signature of jwk.Fetch.
type FetchFunc func(ctx context.Context, uri string, opts ...jwk.FetchOption) (jwk.Set, error)

// Provider fetches a JWKS from a fixed URI and caches it for a
// configurable TTL. It is safe for concurrent use; concurrent misses
// on an expired cache collapse into a single fetch.
type Provider struct {
	jwksURI  *url.URL
	client   *http.Client
	cacheTTL time.Duration
	fetch    FetchFunc

	mu        sync.Mutex
	cached    jwk.Set
	refreshed time.Time
}

// NewProvider builds and returns a new *Provider.
//
// Required options:
//   - WithJWKSURI: the key set endpoint
//
// Optional options:
//   - WithClient: custom HTTP client (default 30s timeout)
//   - WithCacheTTL: how long a fetched set is reused (default 1m)
func NewProvider(opts ...ProviderOption) (*Provider, error) {
	p := &Provider{
		client:   &http.Client{Timeout: 30 * time.Second},
		cacheTTL: time.Minute,
		fetch:    jwk.Fetch,
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if p.jwksURI == nil {
		return nil, fmt.Errorf("JWKS URI is required (use WithJWKSURI)")
	}

	return p, nil
}

// ProvideKey implements the strategy's KeyProvider interface. The
// request and token are not consulted; every request for the same
// provider resolves against the same key set endpoint.
func (p *Provider) ProvideKey(ctx context.Context, _ *http.Request, _ string) (any, error) {
	return p.KeySet(ctx)
}

// KeySet returns the cached key set, refreshing it when the TTL has
// lapsed.
func (p *Provider) KeySet(ctx context.Context) (jwk.Set, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil && time.Since(p.refreshed) < p.cacheTTL {
		return p.cached, nil
	}

	set, err := p.fetch(ctx, p.jwksURI.String(), jwk.WithHTTPClient(p.client))
	if err != nil {
		if p.cached != nil {
			// Serve the stale set rather than failing the request.
			return p.cached, nil
		}
		return nil, fmt.Errorf("could not fetch JWKS from %q: %w", p.jwksURI, err)
	}

	p.cached = set
	p.refreshed = time.Now()
	return set, nil
}
