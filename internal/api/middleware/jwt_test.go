package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, userID uint, email string, ttl time.Duration) string {
	t.Helper()
	claims := customClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		Email: email,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func newAuthRouter(secret string) (*gin.Engine, *struct {
	userID uint
	email  string
}) {
	gin.SetMode(gin.TestMode)
	seen := &struct {
		userID uint
		email  string
	}{}
	r := gin.New()
	r.GET("/protected", AuthMiddleware(secret), func(c *gin.Context) {
		seen.userID = c.GetUint("userID")
		seen.email = c.GetString("email")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r, seen
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	r, seen := newAuthRouter(testSecret)
	token := signToken(t, testSecret, 42, "a@x.com", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if seen.userID != 42 {
		t.Fatalf("expected userID 42, got %d", seen.userID)
	}
	if seen.email != "a@x.com" {
		t.Fatalf("expected email a@x.com, got %q", seen.email)
	}
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	r, _ := newAuthRouter(testSecret)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthMiddlewareBadScheme(t *testing.T) {
	r, _ := newAuthRouter(testSecret)
	token := signToken(t, testSecret, 1, "a@x.com", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	r, _ := newAuthRouter(testSecret)
	token := signToken(t, testSecret, 1, "a@x.com", -time.Minute)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for expired token, got %d", w.Code)
	}
}

func TestAuthMiddlewareTamperedToken(t *testing.T) {
	r, _ := newAuthRouter(testSecret)
	token := signToken(t, testSecret, 1, "a@x.com", time.Hour)

	// Flip one character of the signature segment.
	mutated := []byte(token)
	last := len(mutated) - 1
	if mutated[last] == 'A' {
		mutated[last] = 'B'
	} else {
		mutated[last] = 'A'
	}

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+string(mutated))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for tampered token, got %d", w.Code)
	}
}

func TestAuthMiddlewareWrongKey(t *testing.T) {
	r, _ := newAuthRouter(testSecret)
	token := signToken(t, "some-other-secret", 1, "a@x.com", time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong signing key, got %d", w.Code)
	}
}
