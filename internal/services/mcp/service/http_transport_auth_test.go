package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type fakeRequestAuthorizer struct {
	calls int
	err   error
}

func (f *fakeRequestAuthorizer) Authorize(*http.Request) error {
	f.calls++
	return f.err
}

type fakeRateLimiter struct {
	calls int
	err   error
}

func (f *fakeRateLimiter) Allow(*http.Request) error {
	f.calls++
	return f.err
}

func TestApplyConfigUsesCustomRequestAuthorizer(t *testing.T) {
	transport := NewHTTPTransport("localhost:8081")
	customAuthorizer := &fakeRequestAuthorizer{}
	rateLimiter := &fakeRateLimiter{}
	transport.applyConfig(Config{
		AuthToken:         "ignored-token",
		RequestAuthorizer: customAuthorizer,
		RateLimiter:       rateLimiter,
		RateLimit:         5,
	})

	if transport.requestAuthz != customAuthorizer {
		t.Fatalf("expected custom request authorizer to be used")
	}
	if transport.rateLimiter != rateLimiter {
		t.Fatalf("expected custom rate limiter to be used")
	}
}

func TestApplyConfigBuildsBearerAuthorizer(t *testing.T) {
	transport := NewHTTPTransport("localhost:8081")
	transport.applyConfig(Config{AuthToken: " api-token ", JWTSecret: "jwt-secret", RateLimit: 2})

	authz, ok := transport.requestAuthz.(*bearerAuthorizer)
	if !ok {
		t.Fatalf("expected bearerAuthorizer, got %T", transport.requestAuthz)
	}
	if authz.apiToken != "api-token" || string(authz.jwtSecret) != "jwt-secret" {
		t.Fatalf("authorizer = %+v", authz)
	}
	if _, ok := transport.rateLimiter.(*tokenBucketLimiter); !ok {
		t.Fatalf("expected tokenBucketLimiter, got %T", transport.rateLimiter)
	}
}

func TestApplyConfigWithoutCredentialsDisablesAuth(t *testing.T) {
	transport := NewHTTPTransport("localhost:8081")
	transport.requestAuthz = &fakeRequestAuthorizer{}
	transport.applyConfig(Config{})

	if transport.requestAuthz != nil {
		t.Fatalf("expected no authorizer, got %T", transport.requestAuthz)
	}
	if transport.rateLimiter != nil {
		t.Fatalf("expected no rate limiter, got %T", transport.rateLimiter)
	}
}

func TestAuthorizeRequestRespectsRateLimiter(t *testing.T) {
	transport := NewHTTPTransport("localhost:8081")
	limiter := &fakeRateLimiter{err: errors.New("rate exceeded")}
	authorizer := &fakeRequestAuthorizer{}
	transport.applyConfig(Config{
		RequestAuthorizer: authorizer,
		RateLimiter:       limiter,
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	if transport.authorizeRequest(w, req) {
		t.Fatal("expected authorizeRequest to reject when rate limiter returns error")
	}
	if limiter.calls != 1 {
		t.Fatalf("expected 1 rate limiter call, got %d", limiter.calls)
	}
	if authorizer.calls != 0 {
		t.Fatalf("expected authorizer to be skipped when rate limiter rejects request")
	}
	if got := w.Result().StatusCode; got != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, got)
	}
}

func TestAuthorizeRequestWithoutAuthorizer(t *testing.T) {
	transport := NewHTTPTransport("localhost:8081")
	w := httptest.NewRecorder()
	if !transport.authorizeRequest(w, httptest.NewRequest(http.MethodPost, "/", nil)) {
		t.Fatal("expected request to pass without an authorizer")
	}
}

func signToken(t *testing.T, method jwt.SigningMethod, secret string, expires time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   "analyst",
		ExpiresAt: jwt.NewNumericDate(expires),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestBearerAuthorizer(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	authz := newBearerAuthorizer("api-token", "jwt-secret")
	authz.now = func() time.Time { return now }

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{name: "static token", header: "Bearer api-token"},
		{name: "valid jwt", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, "jwt-secret", now.Add(time.Hour))},
		{name: "missing header", wantErr: errMissingBearer},
		{name: "empty bearer", header: "Bearer ", wantErr: errMissingBearer},
		{name: "basic auth", header: "Basic dXNlcjpwYXNz", wantErr: errMissingBearer},
		{name: "wrong token", header: "Bearer nope", wantErr: errInvalidToken},
		{name: "expired jwt", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, "jwt-secret", now.Add(-time.Minute)), wantErr: errInvalidToken},
		{name: "wrong secret", header: "Bearer " + signToken(t, jwt.SigningMethodHS256, "other", now.Add(time.Hour)), wantErr: errInvalidToken},
		{name: "wrong algorithm", header: "Bearer " + signToken(t, jwt.SigningMethodHS512, "jwt-secret", now.Add(time.Hour)), wantErr: errInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if err := authz.Authorize(req); !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authorize() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBearerAuthorizerWithoutJWTSecret(t *testing.T) {
	authz := newBearerAuthorizer("api-token", "")
	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, "x", time.Now().Add(time.Hour)))
	if err := authz.Authorize(req); !errors.Is(err, errInvalidToken) {
		t.Fatalf("Authorize() = %v, want invalid token", err)
	}
}

func TestTokenBucketLimiter(t *testing.T) {
	limiter := newTokenBucketLimiter(0.001, 1)
	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	if err := limiter.Allow(req); err != nil {
		t.Fatalf("first request: %v", err)
	}
	if err := limiter.Allow(req); !errors.Is(err, errRateLimited) {
		t.Fatalf("second request = %v, want rate limited", err)
	}
}
