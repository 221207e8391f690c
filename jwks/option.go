package jwks

import (
	"errors"
	"net/http"
	"net/url"
	"time"
)

// ProviderOption configures a Provider. Options return errors to
// enable validation during construction.
type ProviderOption func(*Provider) error

// WithJWKSURI sets the key set endpoint (REQUIRED).
func WithJWKSURI(uri *url.URL) ProviderOption {
	return func(p *Provider) error {
		if uri == nil {
			return errors.New("JWKS URI cannot be nil")
		}
		p.jwksURI = uri
		return nil
	}
}

// WithClient sets the HTTP client used to fetch the key set.
func WithClient(client *http.Client) ProviderOption {
	return func(p *Provider) error {
		if client == nil {
			return errors.New("client cannot be nil")
		}
		p.client = client
		return nil
	}
}

// WithCacheTTL sets how long a fetched key set is reused before being
// refreshed.
func WithCacheTTL(ttl time.Duration) ProviderOption {
	return func(p *Provider) error {
		if ttl <= 0 {
			return errors.New("cache TTL must be positive")
		}
		p.cacheTTL = ttl
		return nil
	}
}

// WithFetchFunc replaces the fetch primitive. The supplied function
// must not be nil.
func WithFetchFunc(f FetchFunc) ProviderOption {
	return func(p *Provider) error {
		if f == nil {
			return errors.New("fetch function cannot be nil")
		}
		p.fetch = f
		return nil
	}
}
