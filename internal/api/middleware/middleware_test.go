package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/ytgrab/internal/config"
	"github.com/denisAlshanov/ytgrab/internal/models"
	"github.com/denisAlshanov/ytgrab/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func corsConfig(origins ...string) *config.CORSConfig {
	return &config.CORSConfig{
		Enabled:        true,
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         600,
	}
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	engine := gin.New()
	engine.Use(handlers...)
	engine.POST("/api/download", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return engine
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	engine := newEngine(CORSMiddleware(corsConfig("*")))

	req := httptest.NewRequest(http.MethodPost, "/api/download", nil)
	req.Header.Set("Origin", "https://somewhere.example")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected wildcard origin, got %q", got)
	}
	if got := rec.Header().Get("Access-Control-Expose-Headers"); got != "Content-Disposition" {
		t.Errorf("expected exposed headers, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	engine := newEngine(CORSMiddleware(corsConfig("*")))

	req := httptest.NewRequest(http.MethodOptions, "/api/download", nil)
	req.Header.Set("Origin", "https://somewhere.example")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, PUT, OPTIONS" {
		t.Errorf("unexpected allowed methods %q", got)
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "600" {
		t.Errorf("unexpected max age %q", got)
	}
}

func TestCORSRestrictedOrigins(t *testing.T) {
	engine := newEngine(CORSMiddleware(corsConfig("https://app.example")))

	testCases := []struct {
		name           string
		method         string
		origin         string
		expectedStatus int
		expectedOrigin string
	}{
		{name: "Listed origin", method: http.MethodPost, origin: "https://app.example", expectedStatus: http.StatusOK, expectedOrigin: "https://app.example"},
		{name: "Unlisted origin", method: http.MethodPost, origin: "https://evil.example", expectedStatus: http.StatusOK},
		{name: "Unlisted preflight", method: http.MethodOptions, origin: "https://evil.example", expectedStatus: http.StatusForbidden},
		{name: "No origin", method: http.MethodPost, expectedStatus: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/download", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)

			if rec.Code != tc.expectedStatus {
				t.Errorf("expected %d, got %d", tc.expectedStatus, rec.Code)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.expectedOrigin {
				t.Errorf("expected origin %q, got %q", tc.expectedOrigin, got)
			}
		})
	}
}

func TestCorrelationIDMiddleware(t *testing.T) {
	var seen string
	engine := gin.New()
	engine.Use(CorrelationIDMiddleware())
	engine.GET("/live", func(c *gin.Context) {
		seen = utils.GetCorrelationID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set("X-Correlation-ID", "corr-123")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if seen != "corr-123" {
		t.Errorf("expected correlation ID in request context, got %q", seen)
	}
	if rec.Header().Get("X-Correlation-ID") != "corr-123" {
		t.Error("expected correlation ID echoed in response")
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("expected a generated request ID")
	}
}

// A relay that drops the connection mid-body still leaves a completion line behind.
func TestCorrelationLogsAbortedRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := utils.GetLogger()
	out := logger.Out
	logger.SetOutput(&buf)
	defer logger.SetOutput(out)

	engine := gin.New()
	engine.Use(CorrelationIDMiddleware())
	engine.PUT("/api/download", func(c *gin.Context) {
		c.Writer.WriteString("partial")
		c.Writer.Flush()
		panic(http.ErrAbortHandler)
	})

	func() {
		defer func() {
			if rec := recover(); rec != http.ErrAbortHandler {
				t.Errorf("expected ErrAbortHandler to propagate, got %v", rec)
			}
		}()
		engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPut, "/api/download", nil))
	}()

	var record map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err == nil && entry["message"] == "Request failed" {
			record = entry
		}
	}
	if record == nil {
		t.Fatalf("expected a completion log line, got %q", buf.String())
	}
	if record["aborted"] != true || record["level"] != "warning" {
		t.Errorf("expected aborted warning, got %v", record)
	}
	if record["bytes_written"] != float64(len("partial")) {
		t.Errorf("expected bytes written to be logged, got %v", record["bytes_written"])
	}
}

func TestRecoveryUsesRegisteredFailure(t *testing.T) {
	engine := gin.New()
	engine.Use(RecoveryMiddleware())
	engine.PUT("/api/download", func(c *gin.Context) {
		c.Set(utils.FailureErrorKey, utils.NewStreamError(nil))
		c.Header("Content-Disposition", `attachment; filename="x.mp4"`)
		panic("boom")
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/download", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Error != utils.MessageDownloadFailed {
		t.Errorf("expected %q, got %q", utils.MessageDownloadFailed, body.Error)
	}
	if rec.Header().Get("Content-Disposition") != "" {
		t.Error("expected download headers to be dropped")
	}
}

func TestRecoveryDefaultsToInternalError(t *testing.T) {
	engine := gin.New()
	engine.Use(RecoveryMiddleware())
	engine.GET("/boom", func(c *gin.Context) {
		var m map[string]int
		m["x"]++
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if want := `{"error":"An unexpected error occurred"}`; rec.Body.String() != want {
		t.Errorf("expected %s, got %s", want, rec.Body.String())
	}
}

func TestRecoveryPassesAbortThrough(t *testing.T) {
	engine := gin.New()
	engine.Use(RecoveryMiddleware())
	engine.GET("/abort", func(c *gin.Context) {
		panic(http.ErrAbortHandler)
	})

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("expected http.ErrAbortHandler to propagate, got %v", rec)
		}
	}()

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/abort", nil))
	t.Error("expected panic")
}
