package middleware

import (
	"crypto/subtle"
	"net/http"
)

const apiKeyHeader = "X-API-KEY"

// AuthConfig holds the set of API keys accepted for mutating requests.
// An empty key set disables write protection entirely.
type AuthConfig struct {
	keys []string
}

func NewAuthConfigWithKeys(keys []string) *AuthConfig {
	return &AuthConfig{keys: keys}
}

func (c *AuthConfig) Enabled() bool {
	return len(c.keys) > 0
}

func (c *AuthConfig) Valid(key string) bool {
	for _, k := range c.keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			return true
		}
	}
	return false
}

// WriteProtect requires a valid X-API-KEY header on mutating methods.
// Safe methods always pass.
func WriteProtect(config *AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled() || safeMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			if !config.Valid(r.Header.Get(apiKeyHeader)) {
				http.Error(w, "invalid or missing API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteProtectAuth is a convenience wrapper for route wiring.
func WriteProtectAuth(keys []string) func(http.Handler) http.Handler {
	return WriteProtect(NewAuthConfigWithKeys(keys))
}

func safeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
