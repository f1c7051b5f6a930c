package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cbta/cbta-mcp/internal/platform/timeouts"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RequestAuthorizer admits or rejects an HTTP request.
type RequestAuthorizer interface {
	Authorize(*http.Request) error
}

// RequestRateLimiter rejects requests over budget.
type RequestRateLimiter interface {
	Allow(*http.Request) error
}

var (
	errMissingBearer = errors.New("authorization required")
	errInvalidToken  = errors.New("invalid access token")
	errRateLimited   = errors.New("rate limit exceeded")
)

// validateLocalRequest enforces host access to mitigate DNS rebinding.
// It checks Host and Origin headers against allowed hosts per MCP guidance so
// remote web pages cannot reach a local server via rebinding.
func (t *HTTPTransport) validateLocalRequest(r *http.Request) error {
	if r == nil {
		return fmt.Errorf("invalid request")
	}
	if t.allowAnyHost {
		return nil
	}

	if !t.isAllowedHostHeader(r.Host) {
		return fmt.Errorf("invalid host")
	}

	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return nil
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin")
	}

	originHost := parsed.Host
	if originHost == "" {
		return fmt.Errorf("invalid origin")
	}

	if !t.isAllowedHostHeader(originHost) {
		return fmt.Errorf("invalid origin")
	}

	return nil
}

// isAllowedHostHeader reports whether a Host/Origin header resolves to an allowed host.
// The default posture is local-only unless explicit hosts are configured.
func (t *HTTPTransport) isAllowedHostHeader(host string) bool {
	resolvedHost, ok := normalizeHost(host)
	if !ok {
		return false
	}

	if isLoopbackHost(resolvedHost) {
		return true
	}

	allowed := t.allowedHosts
	if len(allowed) == 0 {
		return false
	}

	_, ok = allowed[strings.ToLower(resolvedHost)]
	return ok
}

// isLoopbackHost reports whether a host resolves to loopback.
func isLoopbackHost(host string) bool {
	host = strings.ToLower(strings.TrimSpace(host))
	switch host {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}

// parseAllowedHosts parses the configured allow list. The second result
// reports whether "*" was present.
func parseAllowedHosts(hosts []string) (map[string]struct{}, bool) {
	result := make(map[string]struct{}, len(hosts))
	wildcard := false
	for _, entry := range hosts {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		if trimmed == anyHost {
			wildcard = true
			continue
		}
		result[strings.ToLower(trimmed)] = struct{}{}
	}
	return result, wildcard
}

// normalizeHost extracts the hostname portion from Host/Origin headers.
func normalizeHost(host string) (string, bool) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", false
	}

	if strings.HasPrefix(host, "[") {
		if splitHost, _, err := net.SplitHostPort(host); err == nil {
			return splitHost, true
		}
		if strings.HasSuffix(host, "]") {
			return strings.TrimSuffix(strings.TrimPrefix(host, "["), "]"), true
		}
		return "", false
	}

	if strings.Count(host, ":") > 1 {
		return host, true
	}

	if strings.Contains(host, ":") {
		splitHost, _, err := net.SplitHostPort(host)
		if err != nil {
			return "", false
		}
		return splitHost, true
	}

	return host, true
}

// handleHealth handles GET /mcp/health. It answers 503 when storage does not
// respond to a ping.
func (t *HTTPTransport) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := t.validateLocalRequest(r); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if t.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping)
		defer cancel()
		if err := t.health(ctx); err != nil {
			t.logger.Warn("health check failed", zap.Error(err))
			http.Error(w, "storage unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		t.logger.Warn("write health response", zap.Error(err))
	}
}

// authorizeRequest applies the rate limiter and then the authorizer. Either
// may be unset.
func (t *HTTPTransport) authorizeRequest(w http.ResponseWriter, r *http.Request) bool {
	if t.rateLimiter != nil {
		if err := t.rateLimiter.Allow(r); err != nil {
			http.Error(w, err.Error(), http.StatusTooManyRequests)
			return false
		}
	}
	if t.requestAuthz == nil {
		return true
	}
	if err := t.requestAuthz.Authorize(r); err != nil {
		t.writeUnauthorized(w, err.Error())
		return false
	}
	return true
}

func (t *HTTPTransport) writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="`+serverName+`"`)
	http.Error(w, message, http.StatusUnauthorized)
}

// bearerAuthorizer accepts a static API token or an HS256-signed JWT.
type bearerAuthorizer struct {
	apiToken  string
	jwtSecret []byte
	now       func() time.Time
}

func newBearerAuthorizer(apiToken, jwtSecret string) *bearerAuthorizer {
	authz := &bearerAuthorizer{apiToken: apiToken, now: time.Now}
	if jwtSecret != "" {
		authz.jwtSecret = []byte(jwtSecret)
	}
	return authz
}

// Authorize checks the static token first so JWT parsing is skipped for it.
func (a *bearerAuthorizer) Authorize(r *http.Request) error {
	token, err := bearerToken(r)
	if err != nil {
		return err
	}
	if a.apiToken != "" && subtle.ConstantTimeCompare([]byte(token), []byte(a.apiToken)) == 1 {
		return nil
	}
	if len(a.jwtSecret) == 0 {
		return errInvalidToken
	}
	return a.validateJWT(token)
}

func (a *bearerAuthorizer) validateJWT(raw string) error {
	now := a.now
	if now == nil {
		now = time.Now
	}
	token, err := jwt.Parse(raw, func(*jwt.Token) (any, error) {
		return a.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	if err != nil || !token.Valid {
		return errInvalidToken
	}
	return nil
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", errMissingBearer
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		return "", errMissingBearer
	}
	return token, nil
}

// tokenBucketLimiter is a process-wide token bucket.
type tokenBucketLimiter struct {
	limiter *rate.Limiter
}

func newTokenBucketLimiter(perSecond float64, burst int) *tokenBucketLimiter {
	if burst <= 0 {
		burst = max(1, int(perSecond))
	}
	return &tokenBucketLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (l *tokenBucketLimiter) Allow(*http.Request) error {
	if !l.limiter.Allow() {
		return errRateLimited
	}
	return nil
}
