package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAuthMiddlewareExtractsUserID(t *testing.T) {
	var gotID int64
	var gotOK bool
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, gotOK = UserIDFromContext(r.Context())
	}), AuthMiddleware(testSecret))

	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": float64(9),
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/me/consumption", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !gotOK || gotID != 9 {
		t.Fatalf("user id = %d (%v), want 9", gotID, gotOK)
	}
}

func TestAuthMiddlewareStringUserID(t *testing.T) {
	var gotID int64
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = UserIDFromContext(r.Context())
	}), AuthMiddleware(testSecret))

	token := signToken(t, testSecret, jwt.MapClaims{"user_id": "9"})

	req := httptest.NewRequest(http.MethodGet, "/api/me/consumption", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if gotID != 9 {
		t.Fatalf("user id = %d, want 9", gotID)
	}
}

func TestAuthMiddlewareRejects(t *testing.T) {
	handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached with invalid credentials")
	}), AuthMiddleware(testSecret))

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"malformed header", "Token abc"},
		{"wrong secret", "Bearer " + signToken(t, "other-secret", jwt.MapClaims{"user_id": float64(9)})},
		{"no user id", "Bearer " + signToken(t, testSecret, jwt.MapClaims{"sub": "9"})},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/me/consumption", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", tc.name, rr.Code)
		}
	}
}
