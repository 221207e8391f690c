package jwtstrategy

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "middleware-test-secret"

func signTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

var authedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, "authenticated")
})

func newMiddlewareStrategy(t *testing.T, opts ...Option) *Strategy {
	t.Helper()
	base := []Option{
		WithExtractor(AuthHeaderTokenExtractor),
		WithKey(testSecret),
		WithVerify(func(payload any, done DoneFunc) {
			claims, ok := payload.(jwt.MapClaims)
			if !ok {
				done(fmt.Errorf("unexpected payload type %T", payload), nil, nil)
				return
			}
			sub, _ := claims.GetSubject()
			done(nil, sub, nil)
		}),
	}
	return newTestStrategy(t, append(base, opts...)...)
}

func Test_CheckJWT_Defaults(t *testing.T) {
	validToken := signTestToken(t, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	testCases := []struct {
		name             string
		method           string
		authHeader       string
		expectStatusCode int
		expectBody       string
	}{
		{
			name:             "happy path",
			method:           http.MethodGet,
			authHeader:       "Bearer " + validToken,
			expectStatusCode: http.StatusOK,
			expectBody:       "authenticated",
		},
		{
			name:             "validate on options",
			method:           http.MethodOptions,
			authHeader:       "Bearer " + validToken,
			expectStatusCode: http.StatusOK,
			expectBody:       "authenticated",
		},
		{
			name:             "missing token",
			method:           http.MethodGet,
			expectStatusCode: http.StatusBadRequest,
			expectBody:       `{"message":"Auth token is missing."}`,
		},
		{
			name:             "bad token format",
			method:           http.MethodGet,
			authHeader:       validToken,
			expectStatusCode: http.StatusInternalServerError,
			expectBody:       `{"message":"Something went wrong while authenticating."}`,
		},
		{
			name:             "invalid token",
			method:           http.MethodGet,
			authHeader:       "Bearer not.a.token",
			expectStatusCode: http.StatusUnauthorized,
			expectBody:       `{"message":"Authentication failed."}`,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			s := newMiddlewareStrategy(t)
			ts := httptest.NewServer(s.CheckJWT(authedHandler))
			defer ts.Close()

			req, _ := http.NewRequest(testCase.method, ts.URL, nil)
			if testCase.authHeader != "" {
				req.Header.Set("Authorization", testCase.authHeader)
			}

			res, err := ts.Client().Do(req)
			if err != nil {
				t.Fatal(err)
			}
			body, err := io.ReadAll(res.Body)
			res.Body.Close()
			if err != nil {
				t.Fatal(err)
			}

			if res.StatusCode != testCase.expectStatusCode {
				t.Fatalf("expected status code %d, but it was %d", testCase.expectStatusCode, res.StatusCode)
			}
			if string(body) != testCase.expectBody {
				t.Fatalf("expected body: %q, got: %q", testCase.expectBody, body)
			}
		})
	}
}

func Test_CheckJWT_SetsClaimsAndUser(t *testing.T) {
	validToken := signTestToken(t, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !HasClaims(r.Context()) {
			t.Error("claims must be present in the handler context")
		}
		claims, err := GetClaims[jwt.MapClaims](r.Context())
		if err != nil {
			t.Errorf("failed to get claims: %v", err)
		}
		if sub, _ := claims.GetSubject(); sub != "user-42" {
			t.Errorf("unexpected sub claim: %q", sub)
		}
		user, err := GetUser[string](r.Context())
		if err != nil || user != "user-42" {
			t.Errorf("unexpected user: %v / %v", user, err)
		}
		fmt.Fprint(w, "ok")
	})

	s := newMiddlewareStrategy(t)
	ts := httptest.NewServer(s.CheckJWT(handler))
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodGet, ts.URL, nil)
	req.Header.Set("Authorization", "Bearer "+validToken)

	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
}

func Test_CheckJWT_CredentialsOptional(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if HasClaims(r.Context()) {
			t.Error("no claims expected without credentials")
		}
		fmt.Fprint(w, "anonymous")
	})

	s := newMiddlewareStrategy(t, WithCredentialsOptional(true))
	ts := httptest.NewServer(s.CheckJWT(handler))
	defer ts.Close()

	res, err := ts.Client().Get(ts.URL)
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()

	if res.StatusCode != http.StatusOK || string(body) != "anonymous" {
		t.Fatalf("expected anonymous pass-through, got %d %q", res.StatusCode, body)
	}
}

func Test_CheckJWT_SkipsOptionsWhenConfigured(t *testing.T) {
	s := newMiddlewareStrategy(t, WithValidateOnOptions(false))
	ts := httptest.NewServer(s.CheckJWT(authedHandler))
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodOptions, ts.URL, nil)
	res, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected OPTIONS to skip authentication, got %d", res.StatusCode)
	}
}

func Test_CheckJWT_ExclusionURLs(t *testing.T) {
	s := newMiddlewareStrategy(t, WithExclusionURLs([]string{"/health"}))
	ts := httptest.NewServer(s.CheckJWT(authedHandler))
	defer ts.Close()

	res, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected excluded URL to pass, got %d", res.StatusCode)
	}

	res, err = ts.Client().Get(ts.URL + "/private")
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected non-excluded URL to require a token, got %d", res.StatusCode)
	}
}
