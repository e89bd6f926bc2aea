// Wishlist HTTP handlers.
//
// This file exposes REST endpoints for wishlists:
//   - POST   /wishlists             (create)
//   - GET    /wishlists             (list by event)
//   - GET    /wishlists/gifts       (gifts of a wishlist)
//   - GET    /wishlists/{id}        (read)
//   - PUT    /wishlists/{id}        (replace description)
//   - DELETE /wishlists/{id}        (delete)
//   - POST   /wishlists/{id}/gifts  (link gifts)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/query"
)

// WishlistRequest is the JSON payload for creating or replacing a
// wishlist. The event of an existing wishlist cannot change.
type WishlistRequest struct {
	Description string `json:"description" example:"Our honeymoon picks"`
	EventID     string `json:"event_id"`
}

func (r *WishlistRequest) apply(w *domain.Wishlist) {
	w.Description = r.Description
	if w.EventID == "" {
		w.EventID = r.EventID
	}
}

// AddWishlistGiftsRequest links gifts to a wishlist. event_id defaults to
// the wishlist's event.
type AddWishlistGiftsRequest struct {
	EventID string   `json:"event_id" binding:"omitempty,uuid"`
	GiftIDs []string `json:"giftIds"  binding:"required,min=1,dive,omitempty,uuid"`
}

// WishlistListQuery holds the filters of GET /wishlists.
type WishlistListQuery struct {
	EventID string `form:"event_id" binding:"required,uuid"`
}

// WishlistGiftsQuery holds the filters of GET /wishlists/gifts.
type WishlistGiftsQuery struct {
	PageQuery
	WishlistID string  `form:"wishlist_id" binding:"required,uuid"`
	EventID    string  `form:"event_id"    binding:"required,uuid"`
	Name       *string `form:"name"        binding:"omitempty,max=255"`
}

// CreateWishlist godoc
// @ID          createWishlist
// @Summary     Create a wishlist
// @Tags        Wishlists
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.WishlistRequest  true  "Wishlist payload"
// @Success     201   {object}  domain.Wishlist
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed or unknown event"
// @Router      /wishlists [post]
func (h *Handlers) CreateWishlist(c *gin.Context) {
	var req WishlistRequest
	if !bindJSON(c, &req) {
		return
	}
	var w domain.Wishlist
	req.apply(&w)
	out, err := h.svc.Wishlists.Create(c.Request.Context(), &w)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, out)
}

// ListWishlists godoc
// @ID          listWishlists
// @Summary     List the wishlists of an event
// @Tags        Wishlists
// @Produce     json
// @Param       event_id  query  string  true  "Event ID"
// @Success     200  {array}   domain.Wishlist
// @Failure     400  {object}  handlers.ErrorResponse  "event_id missing"
// @Router      /wishlists [get]
func (h *Handlers) ListWishlists(c *gin.Context) {
	var q WishlistListQuery
	if !bindQuery(c, &q) {
		return
	}
	items, total, err := h.svc.Wishlists.ListByEvent(c.Request.Context(), q.EventID)
	if err != nil {
		failErr(c, err)
		return
	}
	writeList(c, items, total, 0)
}

// ListWishlistGifts godoc
// @ID          listWishlistGifts
// @Summary     List the gifts of a wishlist
// @Tags        Wishlists
// @Produce     json
// @Param       wishlist_id   query  string  true   "Wishlist ID"
// @Param       event_id      query  string  true   "Event ID"
// @Param       page          query  int     false  "Page (1-based)"
// @Param       itemsPerPage  query  int     false  "Page size"
// @Param       name          query  string  false  "Case-insensitive substring of the gift name"
// @Success     200  {array}   domain.Gift
// @Failure     400  {object}  handlers.ErrorResponse  "Missing filters"
// @Router      /wishlists/gifts [get]
func (h *Handlers) ListWishlistGifts(c *gin.Context) {
	var q WishlistGiftsQuery
	if !bindQuery(c, &q) {
		return
	}
	page, size := h.window(q.PageQuery)
	items, total, err := h.svc.Wishlists.ListGifts(c.Request.Context(), q.WishlistID, q.EventID,
		query.Contains("name", q.Name), page)
	if err != nil {
		failErr(c, err)
		return
	}
	writeList(c, items, total, size)
}

// AddWishlistGifts godoc
// @ID          addWishlistGifts
// @Summary     Link gifts to a wishlist
// @Description Inserts wishlist-gift associations in one transaction and refreshes the wishlist totals. Repeated IDs in the request are ignored; a gift already on the wishlist answers 409 and nothing is written.
// @Tags        Wishlists
// @Accept      json
// @Produce     json
// @Param       id    path      string                            true  "Wishlist ID"
// @Param       body  body      handlers.AddWishlistGiftsRequest  true  "Gift IDs"
// @Success     201   {array}   domain.WishlistGift
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed, event mismatch or unknown gift"
// @Failure     404   {object}  handlers.ErrorResponse  "Wishlist not found"
// @Failure     409   {object}  handlers.ErrorResponse  "Gift already on the wishlist"
// @Router      /wishlists/{id}/gifts [post]
func (h *Handlers) AddWishlistGifts(c *gin.Context) {
	id, valid := bindID(c)
	if !valid {
		return
	}
	var req AddWishlistGiftsRequest
	if !bindJSON(c, &req) {
		return
	}
	links, err := h.svc.Wishlists.AddGifts(c.Request.Context(), id, req.EventID, req.GiftIDs)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, links)
}

// GetWishlist godoc
// @ID          getWishlist
// @Summary     Get a wishlist
// @Tags        Wishlists
// @Produce     json
// @Param       id   path      string  true  "Wishlist ID"
// @Success     200  {object}  domain.Wishlist
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /wishlists/{id} [get]
func (h *Handlers) GetWishlist(c *gin.Context) { getOne[domain.Wishlist](c, h.svc.Wishlists) }

// UpdateWishlist godoc
// @ID          updateWishlist
// @Summary     Replace a wishlist
// @Tags        Wishlists
// @Accept      json
// @Produce     json
// @Param       id    path      string                    true  "Wishlist ID"
// @Param       body  body      handlers.WishlistRequest  true  "Wishlist payload"
// @Success     200   {object}  domain.Wishlist
// @Failure     404   {object}  handlers.ErrorResponse  "Not found"
// @Router      /wishlists/{id} [put]
func (h *Handlers) UpdateWishlist(c *gin.Context) {
	updateOne[domain.Wishlist](c, h.svc.Wishlists, &WishlistRequest{})
}

// DeleteWishlist godoc
// @ID          deleteWishlist
// @Summary     Delete a wishlist
// @Tags        Wishlists
// @Param       id   path  string  true  "Wishlist ID"
// @Success     204
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /wishlists/{id} [delete]
func (h *Handlers) DeleteWishlist(c *gin.Context) { deleteOne[domain.Wishlist](c, h.svc.Wishlists) }
