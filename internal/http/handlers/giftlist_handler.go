// Giftlist HTTP handlers: CRUD under /giftlists. Totals are derived from
// the gifts of a giftlist and cannot be written by clients.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/query"
)

// GiftlistRequest is the JSON payload for creating or replacing a giftlist.
type GiftlistRequest struct {
	Name        string  `json:"name" example:"Kitchen"`
	Description string  `json:"description"`
	IsDefault   bool    `json:"is_default"`
	CategoryID  *string `json:"category_id"`
	EventID     string  `json:"event_id"`
}

func (r *GiftlistRequest) apply(gl *domain.Giftlist) {
	gl.Name = r.Name
	gl.Description = r.Description
	gl.IsDefault = r.IsDefault
	gl.CategoryID = ref(r.CategoryID)
	gl.EventID = r.EventID
}

// GiftlistListQuery holds the filters of GET /giftlists.
type GiftlistListQuery struct {
	PageQuery
	IsDefault  *bool   `form:"is_default"`
	CategoryID *string `form:"category_id" binding:"omitempty,uuid"`
	EventID    *string `form:"event_id"    binding:"omitempty,uuid"`
	Name       *string `form:"name"        binding:"omitempty,max=255"`
}

// CreateGiftlist godoc
// @ID          createGiftlist
// @Summary     Create a giftlist
// @Tags        Giftlists
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.GiftlistRequest  true  "Giftlist payload"
// @Success     201   {object}  domain.Giftlist
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed or unknown reference"
// @Router      /giftlists [post]
func (h *Handlers) CreateGiftlist(c *gin.Context) {
	var req GiftlistRequest
	if !bindJSON(c, &req) {
		return
	}
	var gl domain.Giftlist
	req.apply(&gl)
	out, err := h.svc.Giftlists.Create(c.Request.Context(), &gl)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, out)
}

// ListGiftlists godoc
// @ID          listGiftlists
// @Summary     List giftlists
// @Tags        Giftlists
// @Produce     json
// @Param       page          query  int     false  "Page (1-based)"
// @Param       itemsPerPage  query  int     false  "Page size"
// @Param       is_default    query  bool    false  "Default giftlists only"
// @Param       category_id   query  string  false  "Category ID"
// @Param       event_id      query  string  false  "Event ID"
// @Param       name          query  string  false  "Case-insensitive substring of the name"
// @Success     200  {array}   domain.Giftlist
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid filters"
// @Router      /giftlists [get]
func (h *Handlers) ListGiftlists(c *gin.Context) {
	var q GiftlistListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, size := h.window(q.PageQuery)
	spec := query.Build(
		query.Equals("is_default", q.IsDefault),
		query.Equals("category_id", q.CategoryID),
		query.Equals("event_id", q.EventID),
		query.Contains("name", q.Name),
		page,
	)
	items, total, err := h.svc.Giftlists.List(c.Request.Context(), spec)
	if err != nil {
		failErr(c, err)
		return
	}
	writeList(c, items, total, size)
}

// GetGiftlist godoc
// @ID          getGiftlist
// @Summary     Get a giftlist
// @Tags        Giftlists
// @Produce     json
// @Param       id   path      string  true  "Giftlist ID"
// @Success     200  {object}  domain.Giftlist
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /giftlists/{id} [get]
func (h *Handlers) GetGiftlist(c *gin.Context) { getOne[domain.Giftlist](c, h.svc.Giftlists) }

// UpdateGiftlist godoc
// @ID          updateGiftlist
// @Summary     Replace a giftlist
// @Tags        Giftlists
// @Accept      json
// @Produce     json
// @Param       id    path      string                    true  "Giftlist ID"
// @Param       body  body      handlers.GiftlistRequest  true  "Giftlist payload"
// @Success     200   {object}  domain.Giftlist
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     404   {object}  handlers.ErrorResponse  "Not found"
// @Router      /giftlists/{id} [put]
func (h *Handlers) UpdateGiftlist(c *gin.Context) {
	updateOne[domain.Giftlist](c, h.svc.Giftlists, &GiftlistRequest{})
}

// DeleteGiftlist godoc
// @ID          deleteGiftlist
// @Summary     Delete a giftlist
// @Description Deletes a giftlist. Its gifts stay and lose the giftlist reference.
// @Tags        Giftlists
// @Param       id   path  string  true  "Giftlist ID"
// @Success     204
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /giftlists/{id} [delete]
func (h *Handlers) DeleteGiftlist(c *gin.Context) { deleteOne[domain.Giftlist](c, h.svc.Giftlists) }
