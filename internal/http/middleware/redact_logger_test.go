package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// captureLogger points the global logger at a buffer for the test.
func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

// accessLines decodes the http_request lines written to buf.
func accessLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("log line %q: %v", line, err)
		}
		if m["message"] == "http_request" {
			out = append(out, m)
		}
	}
	return out
}

func TestRedactingLogger_ScrubsQueryAndHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{MaskHeaders: []string{" x-api-key "}}))
	r.GET("/users/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	id := "9b2f3c1d-8e7a-4b6c-9d5e-0f1a2b3c4d5e"
	req := httptest.NewRequest(http.MethodGet,
		"/users/"+id+"?email=guest@party.example&phone=+30-210-555-1234&ref="+id, nil)
	req.Header.Set("Authorization", "Bearer t0k3n")
	req.Header.Set("Cookie", "session=abc")
	req.Header.Set("X-Api-Key", "k")
	req.Header.Set("X-Note", "host host@party.example "+id)
	req.Header.Set(requestIDHeader, "rid-users")
	r.ServeHTTP(httptest.NewRecorder(), req)

	lines := accessLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("access lines = %d", len(lines))
	}
	got := lines[0]
	if got["level"] != "info" || got["path"] != "/users/:id" || got["request_id"] != "rid-users" {
		t.Fatalf("line = %v", got)
	}

	q, _ := got["query"].(string)
	if strings.Contains(q, "guest@") || strings.Contains(q, id) || strings.Contains(q, "555") {
		t.Fatalf("query leaked: %q", q)
	}
	for _, marker := range []string{"[REDACTED:email]", "[REDACTED:phone]", "[REDACTED:id]"} {
		if !strings.Contains(q, marker) {
			t.Fatalf("query %q lacks %s", q, marker)
		}
	}

	hdr, _ := got["headers"].(map[string]any)
	for _, name := range []string{"Authorization", "Cookie", "X-Api-Key"} {
		if hdr[name] != "[REDACTED]" {
			t.Fatalf("%s = %v", name, hdr[name])
		}
	}
	if hdr["X-Note"] != "host [REDACTED:email] [REDACTED:id]" {
		t.Fatalf("X-Note = %v", hdr["X-Note"])
	}
}

func TestRedactingLogger_LevelFollowsStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/gifts/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.POST("/seed", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	r.DELETE("/events/:id", func(c *gin.Context) {
		_ = c.Error(http.ErrAbortHandler)
		c.Status(http.StatusNoContent)
	})

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/gifts/g1"},
		{http.MethodPost, "/seed"},
		{http.MethodDelete, "/events/e1"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		req.Header.Set(requestIDHeader, "rid-"+tc.method)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	lines := accessLines(t, buf)
	if len(lines) != 3 {
		t.Fatalf("access lines = %d", len(lines))
	}
	want := []struct{ level, rid string }{
		{"warn", "rid-GET"},
		{"error", "rid-POST"},
		{"error", "rid-DELETE"},
	}
	for i, w := range want {
		// Without RequestID installed a well-formed header is still logged.
		if lines[i]["level"] != w.level || lines[i]["request_id"] != w.rid {
			t.Fatalf("line %d = %v", i, lines[i])
		}
	}
	if lines[2]["errors"] == nil {
		t.Fatalf("handler errors not logged: %v", lines[2])
	}
}

func TestRedactingLogger_KeepIDsAndMaskQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{KeepIDs: true, MaskQuery: []string{"Name"}}))
	r.GET("/gifts", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("listing")
		c.Status(http.StatusOK)
	})

	id := "123e4567-e89b-42d3-a456-426614174000"
	req := httptest.NewRequest(http.MethodGet, "/gifts?event_id="+id+"&name=Ada+Lovelace&phone=212-555-1212", nil)
	req.Header.Set("X-Request-ID", "rid-keep")
	r.ServeHTTP(httptest.NewRecorder(), req)

	logs := buf.String()
	if !strings.Contains(logs, "event_id="+id) {
		t.Fatalf("IDs must be kept, got: %s", logs)
	}
	if !strings.Contains(logs, "name=[REDACTED]") || strings.Contains(logs, "Lovelace") {
		t.Fatalf("masked query param leaked: %s", logs)
	}
	if !strings.Contains(logs, "phone=[REDACTED:phone]") {
		t.Fatalf("phone outside IDs must still be scrubbed: %s", logs)
	}
	if !strings.Contains(logs, `"message":"listing"`) || strings.Count(logs, `"request_id":"rid-keep"`) < 2 {
		t.Fatalf("handler log must carry the request id: %s", logs)
	}
}

func TestReplaceOutside(t *testing.T) {
	id := "123e4567-e89b-42d3-a456-426614174000"
	got := replaceOutside("call 212-555-1212 about "+id, uuidRE, phoneRE, "P")
	if got != "call P about "+id {
		t.Fatalf("replaceOutside = %q", got)
	}
	if got := replaceOutside("no ids 212-555-1212", uuidRE, phoneRE, "P"); got != "no ids P" {
		t.Fatalf("replaceOutside without ids = %q", got)
	}
}
