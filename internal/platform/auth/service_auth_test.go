package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	jwt "github.com/golang-jwt/jwt/v4"
)

const (
	testIssuer   = "http://service-auth.local"
	testAudience = "orders-api"
)

func newSigningKey(t *testing.T) (*rsa.PrivateKey, *httptest.Server) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	set := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
		Key:       key.Public(),
		KeyID:     "test-key",
		Algorithm: "RS256",
		Use:       "sig",
	}}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(server.Close)
	return key, server
}

func signToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = "test-key"
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func protectedHandler(keys *KeySet) http.Handler {
	mw := RequireServiceToken(keys, testIssuer, testAudience)
	return mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := ServiceIdentityFromContext(r.Context())
		if !ok {
			http.Error(w, "no identity", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(identity.Service))
	}))
}

func TestRequireServiceTokenAcceptsValidToken(t *testing.T) {
	key, jwks := newSigningKey(t)
	keys := NewKeySet(jwks.URL)

	token := signToken(t, key, jwt.MapClaims{
		"iss": testIssuer,
		"aud": testAudience,
		"sub": "case-orchestration",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodPost, "/cases/1234/orders:draft", nil)
	req.Header.Set("ServiceAuthorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protectedHandler(keys).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != "case-orchestration" {
		t.Errorf("identity = %q, want case-orchestration", rec.Body.String())
	}
}

func TestRequireServiceTokenMissingToken(t *testing.T) {
	_, jwks := newSigningKey(t)
	keys := NewKeySet(jwks.URL)

	req := httptest.NewRequest(http.MethodPost, "/cases/1234/orders:draft", nil)
	rec := httptest.NewRecorder()
	protectedHandler(keys).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireServiceTokenRejectsWrongAudience(t *testing.T) {
	key, jwks := newSigningKey(t)
	keys := NewKeySet(jwks.URL)

	token := signToken(t, key, jwt.MapClaims{
		"iss": testIssuer,
		"aud": "another-service",
		"sub": "case-orchestration",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodPost, "/cases/1234/orders:draft", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protectedHandler(keys).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireServiceTokenRejectsExpiredToken(t *testing.T) {
	key, jwks := newSigningKey(t)
	keys := NewKeySet(jwks.URL)

	token := signToken(t, key, jwt.MapClaims{
		"iss": testIssuer,
		"aud": testAudience,
		"sub": "case-orchestration",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodPost, "/cases/1234/orders:draft", nil)
	req.Header.Set("ServiceAuthorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protectedHandler(keys).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireServiceTokenJWKSUnavailable(t *testing.T) {
	key, jwks := newSigningKey(t)
	jwks.Close()
	keys := NewKeySet(jwks.URL)

	token := signToken(t, key, jwt.MapClaims{
		"iss": testIssuer,
		"aud": testAudience,
		"sub": "case-orchestration",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodPost, "/cases/1234/orders:draft", nil)
	req.Header.Set("ServiceAuthorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	protectedHandler(keys).ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestKeySetRefreshesOnUnknownKid(t *testing.T) {
	key, jwks := newSigningKey(t)
	keys := NewKeySet(jwks.URL, WithClock(time.Now), WithKeyValidity(time.Minute))

	token := signToken(t, key, jwt.MapClaims{
		"iss": testIssuer,
		"aud": testAudience,
		"sub": "case-orchestration",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	// First request populates the cache; second is served from it.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/cases/1234/orders:amend", nil)
		req.Header.Set("ServiceAuthorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protectedHandler(keys).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
}
