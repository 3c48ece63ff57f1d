package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	jwt "github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/familyjustice/orders-api/internal/platform/httpx"
	"github.com/familyjustice/orders-api/internal/platform/requestctx"
)

const (
	serviceAuthHeader  = "ServiceAuthorization"
	defaultKeyValidity = 15 * time.Minute
)

var (
	// ErrKeyNotFound is returned when the token's key ID is absent from the JWKS document.
	ErrKeyNotFound = errors.New("auth: signing key not found")
	// ErrJWKSUnavailable wraps transport or decoding failures while refreshing keys.
	ErrJWKSUnavailable = errors.New("auth: jwks unavailable")
)

// KeySet caches the signing keys published by the service identity provider,
// refreshing on expiry or on an unknown key ID.
type KeySet struct {
	url      string
	client   *http.Client
	now      func() time.Time
	validity time.Duration

	mu     sync.RWMutex
	keys   map[string]jose.JSONWebKey
	expiry time.Time

	refreshMu sync.Mutex
}

// KeySetOption customises KeySet behaviour.
type KeySetOption func(*KeySet)

// WithHTTPClient overrides the HTTP client used for JWKS fetches.
func WithHTTPClient(client *http.Client) KeySetOption {
	return func(k *KeySet) {
		if client != nil {
			k.client = client
		}
	}
}

// WithKeyValidity overrides how long a fetched key set is trusted.
func WithKeyValidity(d time.Duration) KeySetOption {
	return func(k *KeySet) {
		if d > 0 {
			k.validity = d
		}
	}
}

// WithClock injects a custom time source (useful for tests).
func WithClock(now func() time.Time) KeySetOption {
	return func(k *KeySet) {
		if now != nil {
			k.now = now
		}
	}
}

// NewKeySet constructs a key cache for the given JWKS endpoint.
func NewKeySet(url string, opts ...KeySetOption) *KeySet {
	keySet := &KeySet{
		url:      url,
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
		validity: defaultKeyValidity,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(keySet)
		}
	}
	return keySet
}

// Keyfunc adapts the key set to the jwt parser. Only RS256 is accepted.
func (k *KeySet) Keyfunc(ctx context.Context) jwt.Keyfunc {
	return func(token *jwt.Token) (any, error) {
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("auth: token missing kid header")
		}
		if token.Method == nil || token.Method.Alg() != jwt.SigningMethodRS256.Alg() {
			return nil, fmt.Errorf("auth: unexpected signing method %v", token.Method)
		}
		return k.key(ctx, kid)
	}
}

func (k *KeySet) key(ctx context.Context, kid string) (any, error) {
	if key, ok := k.cachedKey(kid); ok && !k.expired() {
		return key, nil
	}
	if err := k.refresh(ctx); err != nil {
		return nil, err
	}
	if key, ok := k.cachedKey(kid); ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
}

func (k *KeySet) cachedKey(kid string) (any, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	jwk, ok := k.keys[kid]
	if !ok {
		return nil, false
	}
	return jwk.Key, true
}

func (k *KeySet) expired() bool {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.keys) == 0 || !k.now().Before(k.expiry)
}

func (k *KeySet) refresh(ctx context.Context) error {
	k.refreshMu.Lock()
	defer k.refreshMu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, k.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrJWKSUnavailable, err)
	}
	resp, err := k.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrJWKSUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrJWKSUnavailable, resp.StatusCode)
	}

	var set jose.JSONWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&set); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrJWKSUnavailable, err)
	}

	keys := make(map[string]jose.JSONWebKey, len(set.Keys))
	for _, jwk := range set.Keys {
		if jwk.KeyID == "" || !jwk.Valid() {
			continue
		}
		keys[jwk.KeyID] = jwk
	}
	if len(keys) == 0 {
		return fmt.Errorf("%w: empty key set", ErrJWKSUnavailable)
	}

	k.mu.Lock()
	k.keys = keys
	k.expiry = k.now().Add(k.validity)
	k.mu.Unlock()
	return nil
}

// ServiceIdentity names the verified calling service.
type ServiceIdentity struct {
	Service  string
	Issuer   string
	Audience string
}

type serviceIdentityKey struct{}

// WithServiceIdentity attaches the verified caller identity to the context.
func WithServiceIdentity(ctx context.Context, identity *ServiceIdentity) context.Context {
	if identity == nil {
		return ctx
	}
	return context.WithValue(ctx, serviceIdentityKey{}, identity)
}

// ServiceIdentityFromContext retrieves the identity stored by the middleware.
func ServiceIdentityFromContext(ctx context.Context) (*ServiceIdentity, bool) {
	identity, ok := ctx.Value(serviceIdentityKey{}).(*ServiceIdentity)
	return identity, ok && identity != nil
}

// RequireServiceToken enforces a valid RS256 service token on every request.
// The token is read from the ServiceAuthorization header, falling back to a
// standard Authorization bearer token.
func RequireServiceToken(keys *KeySet, issuer, audience string) func(http.Handler) http.Handler {
	issuer = strings.TrimSpace(issuer)
	audience = strings.TrimSpace(audience)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			tokenStr := extractServiceToken(r)
			if tokenStr == "" {
				httpx.WriteError(ctx, w, httpx.NewError("unauthenticated", "service token missing", http.StatusUnauthorized))
				return
			}
			if keys == nil {
				httpx.WriteError(ctx, w, httpx.NewError("verification_unavailable", "service token verification unavailable", http.StatusServiceUnavailable))
				return
			}

			parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
			claims := jwt.MapClaims{}
			if _, err := parser.ParseWithClaims(tokenStr, claims, keys.Keyfunc(ctx)); err != nil {
				status := http.StatusUnauthorized
				code := "invalid_token"
				if errors.Is(err, ErrJWKSUnavailable) {
					status = http.StatusServiceUnavailable
					code = "verification_unavailable"
				}
				requestctx.Logger(ctx).Warn("service token rejected", zap.Error(err))
				httpx.WriteError(ctx, w, httpx.NewError(code, "service token verification failed", status))
				return
			}

			if issuer != "" {
				if got, _ := claims["iss"].(string); got != issuer {
					requestctx.Logger(ctx).Warn("service token issuer mismatch", zap.String("issuer", fmt.Sprint(claims["iss"])))
					httpx.WriteError(ctx, w, httpx.NewError("invalid_token", "service token issuer mismatch", http.StatusUnauthorized))
					return
				}
			}
			if audience != "" && !claims.VerifyAudience(audience, true) {
				httpx.WriteError(ctx, w, httpx.NewError("invalid_token", "service token audience mismatch", http.StatusUnauthorized))
				return
			}

			subject, _ := claims["sub"].(string)
			identity := &ServiceIdentity{
				Service:  subject,
				Issuer:   issuer,
				Audience: audience,
			}
			next.ServeHTTP(w, r.WithContext(WithServiceIdentity(ctx, identity)))
		})
	}
}

func extractServiceToken(r *http.Request) string {
	if raw := strings.TrimSpace(r.Header.Get(serviceAuthHeader)); raw != "" {
		return strings.TrimSpace(strings.TrimPrefix(raw, "Bearer "))
	}
	if raw := strings.TrimSpace(r.Header.Get("Authorization")); raw != "" {
		if token, ok := strings.CutPrefix(raw, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return ""
}
