package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestAccessLogWritesJSONLine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := New(&buf, "info", "json")

	r := gin.New()
	r.Use(AccessLog(log))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if line["level"] != "warn" || line["path"] != "/missing" || line["status"] != float64(404) {
		t.Fatalf("log line = %v", line)
	}
}

func TestNewFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "verbose", "json")

	log.Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at fallback level: %s", buf.String())
	}
}
