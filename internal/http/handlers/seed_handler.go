// Seed HTTP handler.
//
// POST /seed runs one seed pass and answers with its report. With an
// Idempotency-Key header the report is stored, and retries within the
// replay window receive the stored response without running the pass again.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-gift-registry/internal/http/middleware"
)

// HeaderIdempotentReplay marks responses served from the idempotency store.
const HeaderIdempotentReplay = middleware.HeaderIdempotentReplay

// SeedResponse documents the seed report for Swagger.
type SeedResponse struct {
	Accepted         map[string]int `json:"accepted"`
	Dropped          map[string]int `json:"dropped"`
	Inserted         map[string]int `json:"inserted"`
	ReusedCategories int            `json:"reused_categories" example:"0"`
}

// RunSeed godoc
// @ID          runSeed
// @Summary     Seed the registry
// @Description Generates and inserts the demo dataset: users, an event, categories, giftlists, default and derived gifts and a wishlist. Categories are reused by name.
// @Tags        Seed
// @Produce     json
// @Param       Idempotency-Key  header    string  false  "Replay key for safe retries"
// @Success     201  {object}  handlers.SeedResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid Idempotency-Key"
// @Failure     409  {object}  handlers.ErrorResponse  "A seed pass is already running"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /seed [post]
func (h *Handlers) RunSeed(c *gin.Context) {
	ctx := c.Request.Context()
	key, hasKey := middleware.GetIdempotencyKey(c)
	scope := middleware.GetIdempotencyScope(c)

	if hasKey && middleware.IsReplay(c) && h.svc.Idempotency != nil {
		if rec, err := h.svc.Idempotency.Lookup(ctx, scope, key); err == nil {
			c.Header(HeaderIdempotentReplay, "true")
			c.Data(rec.Status, "application/json; charset=utf-8", rec.Body)
			return
		}
	}

	report, err := h.svc.Seeder.Run(ctx)
	if err != nil {
		failErr(c, err)
		return
	}
	body, err := json.Marshal(report)
	if err != nil {
		failErr(c, err)
		return
	}

	if hasKey && h.svc.Idempotency != nil {
		if err := h.svc.Idempotency.Save(ctx, scope, key, http.StatusCreated, body); err != nil {
			lg := middleware.LoggerFrom(c)
			lg.Warn().Err(err).Str("scope", scope).Msg("idempotency record not stored")
		}
	}
	c.Data(http.StatusCreated, "application/json; charset=utf-8", body)
}
