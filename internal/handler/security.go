package handler

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/quickparts/storefront/internal/domain/auth"
)

type apiKeyCtx struct{}

// SecurityHandler authenticates admin requests via HMAC-SHA256 hashed API
// keys carried in the api_key header.
type SecurityHandler struct {
	apikeys auth.Repository
	pepper  []byte
}

// NewSecurityHandler creates a SecurityHandler with the given API key
// repository and HMAC pepper.
func NewSecurityHandler(apikeys auth.Repository, pepper []byte) *SecurityHandler {
	return &SecurityHandler{
		apikeys: apikeys,
		pepper:  pepper,
	}
}

// Require wraps next, rejecting requests that do not carry a valid API key.
// The authenticated key info is placed on the request context.
func (s *SecurityHandler) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get("api_key")
		if key == "" {
			writeError(w, http.StatusUnauthorized, "missing api key")
			return
		}

		info, err := s.authenticate(r.Context(), key)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), apiKeyCtx{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate computes the HMAC-SHA256 of the provided API key, looks it up
// in the repository, and performs a constant-time comparison against the
// stored hash.
func (s *SecurityHandler) authenticate(ctx context.Context, key string) (*auth.APIKeyInfo, error) {
	mac := hmac.New(sha256.New, s.pepper)
	mac.Write([]byte(key))
	hash := mac.Sum(nil)

	info, err := s.apikeys.FindByHash(ctx, hex.EncodeToString(hash))
	if err != nil {
		return nil, err
	}

	stored, err := hex.DecodeString(info.KeyHash)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare(hash, stored) != 1 {
		return nil, errors.New("unauthorized")
	}
	return info, nil
}

// KeyInfo returns the authenticated API key info stored on ctx by Require,
// or nil outside an authenticated request.
func KeyInfo(ctx context.Context) *auth.APIKeyInfo {
	info, _ := ctx.Value(apiKeyCtx{}).(*auth.APIKeyInfo)
	return info
}
