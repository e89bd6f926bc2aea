// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the access logger of the service. It
// scrubs obvious PII from request metadata before emitting logs and attaches a
// request-scoped zerolog.Logger that handlers retrieve with LoggerFrom.
//
// Bodies are never logged. Emails and phone numbers in the query string and
// header values are replaced by markers, UUIDs too unless KeepIDs is set.
// Authorization, Cookie and Set-Cookie are always masked.
//
// Usage:
//
//	r := gin.New()
//	r.Use(middleware.RequestID())
//	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
//	    MaskHeaders: []string{"X-Api-Key"},
//	    MaskQuery:   []string{"email"},
//	    KeepIDs:     true,
//	}))
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
type RedactOptions struct {
	// MaskHeaders lists extra header names whose values are replaced with
	// "[REDACTED]". Matching is case-insensitive and merged with
	// Authorization, Cookie and Set-Cookie.
	MaskHeaders []string
	// MaskQuery lists query parameter names whose values are replaced with
	// "[REDACTED]" regardless of their content.
	MaskQuery []string
	// KeepIDs disables UUID redaction. Registry record IDs are not personal
	// data and are needed to correlate list requests.
	KeepIDs bool
}

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits-only phone pattern (prevents matching hex characters from UUIDs).
	// Examples matched: "+1 212-555-1212", "212 555 1212", "(212) 555-1212".
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

type redactor struct {
	keepIDs bool
	headers map[string]struct{}
	query   map[string]struct{}
}

func newRedactor(opts RedactOptions) *redactor {
	r := &redactor{
		keepIDs: opts.KeepIDs,
		headers: map[string]struct{}{
			"authorization": {},
			"cookie":        {},
			"set-cookie":    {},
		},
		query: map[string]struct{}{},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			r.headers[h] = struct{}{}
		}
	}
	for _, q := range opts.MaskQuery {
		if q = strings.ToLower(strings.TrimSpace(q)); q != "" {
			r.query[q] = struct{}{}
		}
	}
	return r
}

// text scrubs free text. UUIDs go before phone numbers so the phone pattern
// cannot match the digit groups of an ID.
func (r *redactor) text(s string) string {
	if s == "" {
		return s
	}
	if !r.keepIDs {
		s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	}
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	if r.keepIDs {
		// Keep IDs intact by scrubbing phones only outside them.
		return replaceOutside(s, uuidRE, phoneRE, "[REDACTED:phone]")
	}
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

// rawQuery scrubs a raw query string pair by pair, preserving order.
func (r *redactor) rawQuery(q string) string {
	if q == "" {
		return q
	}
	pairs := strings.Split(q, "&")
	for i, p := range pairs {
		k, _, _ := strings.Cut(p, "=")
		if _, ok := r.query[strings.ToLower(k)]; ok {
			pairs[i] = k + "=[REDACTED]"
			continue
		}
		pairs[i] = r.text(p)
	}
	return strings.Join(pairs, "&")
}

func (r *redactor) header(name string, values []string) string {
	if _, ok := r.headers[strings.ToLower(name)]; ok {
		return "[REDACTED]"
	}
	return r.text(strings.Join(values, ", "))
}

// replaceOutside applies repl to the spans of s not matched by keep.
func replaceOutside(s string, keep, re *regexp.Regexp, repl string) string {
	locs := keep.FindAllStringIndex(s, -1)
	if len(locs) == 0 {
		return re.ReplaceAllString(s, repl)
	}
	var b strings.Builder
	prev := 0
	for _, l := range locs {
		b.WriteString(re.ReplaceAllString(s[prev:l[0]], repl))
		b.WriteString(s[l[0]:l[1]])
		prev = l[1]
	}
	b.WriteString(re.ReplaceAllString(s[prev:], repl))
	return b.String()
}

// RedactingLogger returns a Gin middleware that logs HTTP requests and
// responses with sensitive values scrubbed.
//
// Behavior:
//   - Stores a request-scoped logger (request_id, method, route) in the Gin
//     context for LoggerFrom.
//   - Logs method, route, scrubbed query string, status, response size,
//     latency and scrubbed request headers.
//   - Logs at INFO by default, WARN for 4xx and ERROR for 5xx or when
//     handlers attached errors to the Gin context.
//
// Place it after RequestID so the correlation ID is known.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	red := newRedactor(opts)

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		safeQuery := red.rawQuery(c.Request.URL.RawQuery)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			safeHeaders[k] = red.header(k, vv)
		}

		reqID := RequestIDFrom(c)
		if h := c.GetHeader(requestIDHeader); reqID == "" && validRequestID(h) {
			reqID = h
		}
		l := log.With().
			Str("request_id", reqID).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(loggerKey, &l)

		c.Next()

		status := c.Writer.Status()
		ev := l.Info()
		switch {
		case status >= 500 || len(c.Errors) > 0:
			ev = l.Error()
			if len(c.Errors) > 0 {
				ev = ev.Str("errors", c.Errors.String())
			}
		case status >= 400:
			ev = l.Warn()
		}

		ev.
			Str("query", truncate(safeQuery, maxQueryLogLength)).
			Str("remote_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
