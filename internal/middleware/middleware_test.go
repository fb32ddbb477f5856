package middleware

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/onlinexam-backend/internal/model"
	"github.com/stemsi/onlinexam-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubValidator map[string]*service.Claims

func (s stubValidator) ValidateToken(token string) (*service.Claims, error) {
	if token == "expired" {
		return nil, service.ErrTokenExpired
	}
	if c, ok := s[token]; ok {
		return c, nil
	}
	return nil, errors.New("bad token")
}

func TestRequireJWTAndRole(t *testing.T) {
	v := stubValidator{
		"admin": {UserID: 1, Role: model.RoleAdmin},
		"user":  {UserID: 2, Role: model.RoleUser},
	}

	r := gin.New()
	r.GET("/me", RequireJWT(v), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", GetClaims(c).UserID)
	})
	r.GET("/admin", RequireJWT(v), RequireRole(model.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name     string
		path     string
		header   string
		wantCode int
		wantBody string
	}{
		{name: "no header", path: "/me", wantCode: http.StatusUnauthorized, wantBody: "TOKEN_REQUIRED"},
		{name: "not bearer", path: "/me", header: "Basic abc", wantCode: http.StatusUnauthorized, wantBody: "TOKEN_INVALID"},
		{name: "expired", path: "/me", header: "Bearer expired", wantCode: http.StatusUnauthorized, wantBody: "TOKEN_EXPIRED"},
		{name: "valid user", path: "/me", header: "Bearer user", wantCode: http.StatusOK, wantBody: "2"},
		{name: "user on admin route", path: "/admin", header: "Bearer user", wantCode: http.StatusForbidden, wantBody: "ADMIN_ACCESS_ONLY"},
		{name: "admin on admin route", path: "/admin", header: "bearer admin", wantCode: http.StatusNoContent},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantCode, w.Body.String())
			}
			if !strings.Contains(w.Body.String(), tc.wantBody) {
				t.Fatalf("body = %s, want %q", w.Body.String(), tc.wantBody)
			}
		})
	}
}

func TestRequireWSAuthReadsQuery(t *testing.T) {
	v := stubValidator{"user": {UserID: 2}}
	r := gin.New()
	r.GET("/ws", RequireWSAuth(v), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token=user", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d", w.Code)
	}
}

func TestRateLimiterLocalBucket(t *testing.T) {
	rl := NewRateLimiter("login", 2, time.Minute, nil, zerolog.Nop())
	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
		last = w
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Fatal("Retry-After header missing")
	}
}

func TestBrotliCompressesLargeBodies(t *testing.T) {
	large := strings.Repeat("exam ", 1000)

	r := gin.New()
	r.Use(Brotli())
	r.GET("/small", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/large", func(c *gin.Context) { c.String(http.StatusOK, large) })

	req := httptest.NewRequest(http.MethodGet, "/small", nil)
	req.Header.Set("Accept-Encoding", "gzip, br")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != "ok" {
		t.Fatalf("small body: encoding %q body %q", w.Header().Get("Content-Encoding"), w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/large", nil)
	req.Header.Set("Accept-Encoding", "br")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "br" {
		t.Fatalf("large body not compressed")
	}
	plain, err := io.ReadAll(brotli.NewReader(bytes.NewReader(w.Body.Bytes())))
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(plain) != large {
		t.Fatalf("round trip mismatch: %d bytes", len(plain))
	}
}

func TestNoStore(t *testing.T) {
	r := gin.New()
	r.GET("/x", NoStore(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Fatalf("Cache-Control = %q", got)
	}
}
