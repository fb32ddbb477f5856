package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		page, perPage, total int
		wantPages            int
	}{
		{page: 1, perPage: 10, total: 0, wantPages: 0},
		{page: 1, perPage: 10, total: 10, wantPages: 1},
		{page: 2, perPage: 10, total: 11, wantPages: 2},
		{page: 1, perPage: 0, total: 5, wantPages: 0},
	}
	for _, tc := range tests {
		p := NewPagination(tc.page, tc.perPage, tc.total)
		if p.TotalPages != tc.wantPages || p.TotalItems != tc.total {
			t.Fatalf("NewPagination(%d,%d,%d) = %+v", tc.page, tc.perPage, tc.total, p)
		}
	}
}

func TestFailCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) {
		Fail(c, http.StatusNotFound, ErrNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var body Response
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error == nil || body.Error.Code != ErrNotFound {
		t.Fatalf("error = %+v", body.Error)
	}
	if body.Metadata.RequestID != "req-123" {
		t.Fatalf("request id = %q", body.Metadata.RequestID)
	}
}

func TestRequestIDReplacesUnusableHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{name: "plain", header: "abc-123", keep: true},
		{name: "empty", header: "", keep: false},
		{name: "spaces", header: "a b", keep: false},
		{name: "too long", header: strings.Repeat("x", 65), keep: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("X-Request-ID", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Body.String()
			if got == "" || w.Header().Get("X-Request-ID") != got {
				t.Fatalf("body %q header %q", got, w.Header().Get("X-Request-ID"))
			}
			if (got == tc.header) != tc.keep {
				t.Fatalf("header %q became %q, keep=%v", tc.header, got, tc.keep)
			}
		})
	}
}
