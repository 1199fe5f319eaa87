package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestWriteProtect_ReadMethodsPassWithoutKey(t *testing.T) {
	config := NewAuthConfigWithKeys([]string{"secret"})
	handler := WriteProtect(config)(okHandler())

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		req := httptest.NewRequest(method, "/api/v1/games", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s without key: status = %d, want %d", method, w.Code, http.StatusOK)
		}
	}
}

func TestWriteProtect_MutatingMethods(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want int
	}{
		{name: "no key", key: "", want: http.StatusUnauthorized},
		{name: "wrong key", key: "wrong", want: http.StatusUnauthorized},
		{name: "valid key", key: "secret", want: http.StatusOK},
		{name: "second valid key", key: "other", want: http.StatusOK},
	}

	config := NewAuthConfigWithKeys([]string{"secret", "other"})
	handler := WriteProtect(config)(okHandler())
	methods := []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, method := range methods {
				req := httptest.NewRequest(method, "/api/v1/seeds", nil)
				if tt.key != "" {
					req.Header.Set("X-API-KEY", tt.key)
				}
				w := httptest.NewRecorder()
				handler.ServeHTTP(w, req)

				if w.Code != tt.want {
					t.Errorf("%s: status = %d, want %d", method, w.Code, tt.want)
				}
			}
		})
	}
}

func TestWriteProtect_Disabled_PassesAll(t *testing.T) {
	config := NewAuthConfigWithKeys(nil)
	handler := WriteProtect(config)(okHandler())

	methods := []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete}
	for _, method := range methods {
		req := httptest.NewRequest(method, "/api/v1/seeds", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s with auth disabled: status = %d, want %d", method, w.Code, http.StatusOK)
		}
	}
}
