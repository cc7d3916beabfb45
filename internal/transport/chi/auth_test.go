package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveAuth(keys []string, header string) *httptest.ResponseRecorder {
	handler := BearerAuthMiddleware(keys)(okHandler())
	req := httptest.NewRequest("POST", "/api/v1/document/ranks/rebuild", http.NoBody)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestAuthMiddleware_NoKeys_Rejects(t *testing.T) {
	rr := serveAuth(nil, "Bearer anything")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no keys: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_EmptyStringKeys_Rejects(t *testing.T) {
	rr := serveAuth([]string{"", ""}, "Bearer ")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("empty string keys: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_MissingHeader_401(t *testing.T) {
	rr := serveAuth([]string{"secret"}, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}

	var errResp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != codeUnauthorized {
		t.Errorf("code = %q, want %q", errResp.Code, codeUnauthorized)
	}
}

func TestAuthMiddleware_WrongScheme_401(t *testing.T) {
	rr := serveAuth([]string{"secret"}, "Basic c2VjcmV0")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong scheme: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_InvalidKey_401(t *testing.T) {
	rr := serveAuth([]string{"secret"}, "Bearer wrong")
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("invalid key: got %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddleware_ValidKey_200(t *testing.T) {
	rr := serveAuth([]string{"other", "secret"}, "Bearer secret")
	if rr.Code != http.StatusOK {
		t.Errorf("valid key: got %d, want %d", rr.Code, http.StatusOK)
	}
}
