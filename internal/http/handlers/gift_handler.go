// Gift HTTP handlers.
//
// This file exposes REST endpoints for gifts:
//   - POST   /gifts       (create)
//   - GET    /gifts       (list by event, filtered, paginated)
//   - GET    /gifts/{id}  (read)
//   - PUT    /gifts/{id}  (replace)
//   - DELETE /gifts/{id}  (delete)
//
// Giftlist and wishlist totals follow every write; see services.GiftService.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/query"
)

// GiftRequest is the JSON payload for creating or replacing a gift.
type GiftRequest struct {
	Name         string          `json:"name" example:"Espresso machine"`
	Description  string          `json:"description" example:"Dual boiler, stainless"`
	Price        decimal.Decimal `json:"price" swaggertype:"string" example:"249.90"`
	ImageURL     string          `json:"image_url" example:"https://img.example.com/espresso.png"`
	IsDefault    bool            `json:"is_default"`
	CategoryID   *string         `json:"category_id"`
	EventID      *string         `json:"event_id"`
	GiftlistID   *string         `json:"giftlist_id"`
	SourceGiftID *string         `json:"source_gift_id"`
}

func (r *GiftRequest) apply(g *domain.Gift) {
	g.Name = r.Name
	g.Description = r.Description
	g.Price = r.Price
	g.ImageURL = r.ImageURL
	g.IsDefault = r.IsDefault
	g.CategoryID = ref(r.CategoryID)
	g.EventID = ref(r.EventID)
	g.GiftlistID = ref(r.GiftlistID)
	g.SourceGiftID = ref(r.SourceGiftID)
}

// GiftListQuery holds the filters of GET /gifts. event_id is mandatory;
// min_price and max_price bound the price inclusively.
type GiftListQuery struct {
	PageQuery
	EventID      string  `form:"event_id"       binding:"required,uuid"`
	IsDefault    *bool   `form:"is_default"`
	GiftlistID   *string `form:"giftlist_id"    binding:"omitempty,uuid"`
	CategoryID   *string `form:"category_id"    binding:"omitempty,uuid"`
	SourceGiftID *string `form:"source_gift_id" binding:"omitempty,uuid"`
	Name         *string `form:"name"           binding:"omitempty,max=255"`
	MinPrice     *string `form:"min_price"`
	MaxPrice     *string `form:"max_price"`
}

// CreateGift godoc
// @ID          createGift
// @Summary     Create a gift
// @Description Creates a gift and refreshes the totals of its giftlist.
// @Tags        Gifts
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.GiftRequest  true  "Gift payload"
// @Success     201   {object}  domain.Gift
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed or unknown reference"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /gifts [post]
func (h *Handlers) CreateGift(c *gin.Context) {
	var req GiftRequest
	if !bindJSON(c, &req) {
		return
	}
	var g domain.Gift
	req.apply(&g)
	out, err := h.svc.Gifts.Create(c.Request.Context(), &g)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, out)
}

// ListGifts godoc
// @ID          listGifts
// @Summary     List gifts of an event
// @Description Lists gifts filtered by event and optional predicates. Sets X-Total-Count, and X-Total-Pages when paginated.
// @Tags        Gifts
// @Produce     json
// @Param       event_id        query  string  true   "Event ID"
// @Param       page            query  int     false  "Page (1-based)"
// @Param       itemsPerPage    query  int     false  "Page size"
// @Param       is_default      query  bool    false  "Default (template) gifts only"
// @Param       giftlist_id     query  string  false  "Giftlist ID"
// @Param       category_id     query  string  false  "Category ID"
// @Param       source_gift_id  query  string  false  "Template gift ID"
// @Param       name            query  string  false  "Case-insensitive substring of the name"
// @Param       min_price       query  string  false  "Lowest price, inclusive"
// @Param       max_price       query  string  false  "Highest price, inclusive"
// @Success     200  {array}   domain.Gift
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid filters"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /gifts [get]
func (h *Handlers) ListGifts(c *gin.Context) {
	var q GiftListQuery
	if !bindQuery(c, &q) {
		return
	}
	fields := map[string]string{}
	prices := parseDecimals(fields, map[string]*string{"min_price": q.MinPrice, "max_price": q.MaxPrice})
	if len(fields) > 0 {
		failFields(c, http.StatusBadRequest, ErrCodeBadRequest, "validation failed", fields)
		return
	}

	page, size := h.window(q.PageQuery)
	items, total, err := h.svc.Gifts.ListByEvent(c.Request.Context(), q.EventID,
		query.Equals("is_default", q.IsDefault),
		query.Equals("giftlist_id", q.GiftlistID),
		query.Equals("category_id", q.CategoryID),
		query.Equals("source_gift_id", q.SourceGiftID),
		query.Contains("name", q.Name),
		query.Between("price", prices["min_price"], prices["max_price"]),
		page,
	)
	if err != nil {
		failErr(c, err)
		return
	}
	writeList(c, items, total, size)
}

// GetGift godoc
// @ID          getGift
// @Summary     Get a gift
// @Tags        Gifts
// @Produce     json
// @Param       id   path      string  true  "Gift ID"
// @Success     200  {object}  domain.Gift
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid id"
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /gifts/{id} [get]
func (h *Handlers) GetGift(c *gin.Context) { getOne[domain.Gift](c, h.svc.Gifts) }

// UpdateGift godoc
// @ID          updateGift
// @Summary     Replace a gift
// @Description Replaces the mutable fields of a gift. Totals of the old and new giftlist and of linked wishlists are refreshed.
// @Tags        Gifts
// @Accept      json
// @Produce     json
// @Param       id    path      string                true  "Gift ID"
// @Param       body  body      handlers.GiftRequest  true  "Gift payload"
// @Success     200   {object}  domain.Gift
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     404   {object}  handlers.ErrorResponse  "Not found"
// @Router      /gifts/{id} [put]
func (h *Handlers) UpdateGift(c *gin.Context) {
	updateOne[domain.Gift](c, h.svc.Gifts, &GiftRequest{})
}

// DeleteGift godoc
// @ID          deleteGift
// @Summary     Delete a gift
// @Tags        Gifts
// @Param       id   path  string  true  "Gift ID"
// @Success     204
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /gifts/{id} [delete]
func (h *Handlers) DeleteGift(c *gin.Context) { deleteOne[domain.Gift](c, h.svc.Gifts) }
