// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file validates the Idempotency-Key header on unsafe requests and
// records in the context whether a stored response exists for it. Storage
// stays outside this package: handlers read the key and scope, serve the
// stored response on replay and save new ones themselves.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey carries the client's key for a retry-safe operation.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemScope  = "idem.scope"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"

	defaultKeyMaxLen = 200
	// maxScopeLen matches the width of the stored scope column.
	maxScopeLen = 64
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key, if the request carried one.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	s := asStringValue(c, ctxKeyIdemKey)
	return s, s != ""
}

// GetIdempotencyScope returns the namespace the key was validated under.
// Keys are unique per scope, so one key may be reused on another route.
func GetIdempotencyScope(c *gin.Context) string {
	if s := asStringValue(c, ctxKeyIdemScope); s != "" {
		return s
	}
	return RouteScope(c)
}

// IsReplay reports whether a stored response exists for this request's key.
func IsReplay(c *gin.Context) bool {
	v, _ := c.Get(ctxKeyIdemReplay)
	b, _ := v.(bool)
	return b
}

// RouteScope is the default scope, the method plus the registered route,
// e.g. "POST /api/seed". It is cut to the stored column width.
func RouteScope(c *gin.Context) string {
	if c.Request == nil {
		return ""
	}
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	scope := c.Request.Method + " " + path
	if len(scope) > maxScopeLen {
		scope = scope[:maxScopeLen]
	}
	return scope
}

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the key length; <= 0 means 200.
	MaxLen int
	// Pattern restricts the key alphabet; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
	// Scope derives the key namespace; nil means RouteScope.
	Scope func(*gin.Context) string
}

// IdempotencyLookup reports whether a still-valid stored response exists for
// (scope, key) at now. A lookup error is treated as "no record".
type IdempotencyLookup func(ctx context.Context, scope, key string, now time.Time) (bool, error)

// IdempotencyValidator checks the Idempotency-Key header of POST, PUT, PATCH
// and DELETE requests. Safe methods ignore the header. A malformed key is
// rejected with 400 "bad_idempotency_key". When lookup finds a stored
// response the request is marked as a replay and skips rate limiting.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = defaultKeyMaxLen
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}
	scopeFn := opts.Scope
	if scopeFn == nil {
		scopeFn = RouteScope
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || isSafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}

		scope := scopeFn(c)
		c.Set(ctxKeyIdemKey, key)
		c.Set(ctxKeyIdemScope, scope)

		if lookup != nil {
			exists, err := lookup(c.Request.Context(), scope, key, time.Now().UTC())
			if err != nil {
				LoggerFrom(c).Warn().Err(err).Str("scope", scope).Msg("idempotency lookup failed")
			}
			if exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

func asStringValue(c *gin.Context, key string) string {
	v, _ := c.Get(key)
	return asString(v)
}
