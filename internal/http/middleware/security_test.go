package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestSecurityHeaders_Baseline(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), SecurityHeaders(SecurityOptions{}))
	r.GET("/api/gifts", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/gifts", nil))
	h := w.Header()

	want := map[string]string{
		"X-Content-Type-Options":            "nosniff",
		"X-Frame-Options":                   "DENY",
		"Referrer-Policy":                   "no-referrer",
		"Access-Control-Expose-Headers":     "X-Request-ID, X-Total-Count, X-Total-Pages, Idempotent-Replay",
		"Permissions-Policy":                "",
		"X-Permitted-Cross-Domain-Policies": "",
		"Cache-Control":                     "",
		"Strict-Transport-Security":         "",
	}
	for name, v := range want {
		if got := h.Get(name); got != v {
			t.Errorf("%s = %q; want %q", name, got, v)
		}
	}
}

func TestSecurityHeaders_ExposeMergesExisting(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, tc := range []struct{ pre, want string }{
		{"Link", "Link, X-Request-ID, X-Total-Count, X-Total-Pages, Idempotent-Replay"},
		{"X-Request-ID, Link", "X-Request-ID, Link, X-Total-Count, X-Total-Pages, Idempotent-Replay"},
	} {
		r := gin.New()
		pre := tc.pre
		r.Use(func(c *gin.Context) { c.Header("Access-Control-Expose-Headers", pre); c.Next() })
		r.Use(SecurityHeaders(SecurityOptions{}))
		r.GET("/api/events", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))
		if got := w.Header().Get("Access-Control-Expose-Headers"); got != tc.want {
			t.Fatalf("pre %q: got %q", tc.pre, got)
		}
	}
}

func TestSecurityHeaders_PolicyNoStoreAndHSTS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders(SecurityOptions{
		EnableHSTS:   true,
		HSTSMaxAge:   24 * time.Hour,
		NoStore:      true,
		EnablePolicy: true,
	}))
	r.GET("/api/gifts", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		name string
		prep func(*http.Request)
		hsts string
	}{
		{"plain http", func(*http.Request) {}, ""},
		{"tls", func(r *http.Request) { r.TLS = &tls.ConnectionState{} }, "max-age=86400; includeSubDomains; preload"},
		{"forwarded https", func(r *http.Request) { r.Header.Set("X-Forwarded-Proto", "https") }, "max-age=86400; includeSubDomains; preload"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/gifts", nil)
			tc.prep(req)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			h := w.Header()

			if h.Get("Strict-Transport-Security") != tc.hsts {
				t.Fatalf("HSTS = %q", h.Get("Strict-Transport-Security"))
			}
			if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
				t.Fatalf("cache headers = %v", h)
			}
			if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
				t.Fatalf("policy headers = %v", h)
			}
		})
	}
}

func TestSecurityHeaders_DefaultHSTSMaxAge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders(SecurityOptions{EnableHSTS: true}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.TLS = &tls.ConnectionState{}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=15552000; includeSubDomains; preload" {
		t.Fatalf("HSTS = %q", got)
	}
}

func Test_isHTTPS(t *testing.T) {
	// http
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if isHTTPS(req) {
		t.Fatalf("plain HTTP should not be https")
	}
	// via TLS
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.TLS = &tls.ConnectionState{}
	if !isHTTPS(req2) {
		t.Fatalf("TLS request should be https")
	}
	// via header
	req3 := httptest.NewRequest(http.MethodGet, "/", nil)
	req3.Header.Set("X-Forwarded-Proto", "https")
	if !isHTTPS(req3) {
		t.Fatalf("X-Forwarded-Proto=https should be https")
	}
}

func Test_exposeHeaders(t *testing.T) {
	cases := []struct {
		cur  string
		want string
	}{
		{"", "X-Request-ID, X-Total-Count, X-Total-Pages, Idempotent-Replay"},
		{"Foo", "Foo, X-Request-ID, X-Total-Count, X-Total-Pages, Idempotent-Replay"},
		{"x-total-count, X-Request-ID", "x-total-count, X-Request-ID, X-Total-Pages, Idempotent-Replay"},
	}
	for _, tc := range cases {
		h := http.Header{}
		if tc.cur != "" {
			h.Set("Access-Control-Expose-Headers", tc.cur)
		}
		exposeHeaders(h, exposed...)
		if got := h.Get("Access-Control-Expose-Headers"); got != tc.want {
			t.Fatalf("exposeHeaders(%q) = %q, want %q", tc.cur, got, tc.want)
		}
	}
}

func TestSecurityHeaders_NoStoreForWritesAndPersonalRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders(SecurityOptions{NoStorePaths: []string{"/api/users"}}))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.GET("/api/gifts", ok)
	r.POST("/api/gifts", ok)
	r.GET("/api/users", ok)
	r.GET("/api/users/:id", ok)
	r.GET("/api/usersx", ok)

	cases := []struct {
		method, path string
		noStore      bool
	}{
		{http.MethodGet, "/api/gifts", false},
		{http.MethodPost, "/api/gifts", true},
		{http.MethodGet, "/api/users", true},
		{http.MethodGet, "/api/users/42", true},
		{http.MethodGet, "/api/usersx", false},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		got := w.Header().Get("Cache-Control") == "no-store"
		if got != tc.noStore {
			t.Fatalf("%s %s: no-store=%v; want %v", tc.method, tc.path, got, tc.noStore)
		}
	}
}

func Test_hasRoutePrefix(t *testing.T) {
	if hasRoutePrefix("", []string{"/"}) {
		t.Fatalf("unmatched route must not match")
	}
	if !hasRoutePrefix("/api/seed", []string{"/api/seed/"}) {
		t.Fatalf("trailing slash prefix should match exact route")
	}
}
