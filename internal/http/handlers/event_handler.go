// Event HTTP handlers: CRUD under /events. An event always keeps at least
// one owner; requests that would leave it ownerless fail with
// invariant_violation.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/query"
)

// EventRequest is the JSON payload for creating or replacing an event.
type EventRequest struct {
	Name            string     `json:"name" example:"Anna & Luca"`
	Date            *time.Time `json:"date" example:"2026-06-20T16:00:00Z"`
	Location        string     `json:"location" example:"Lisbon"`
	URL             string     `json:"url" example:"https://registry.example.com/anna-luca"`
	Country         string     `json:"country" example:"PT"`
	EventType       string     `json:"event_type" example:"WEDDING"`
	PrimaryUserID   *string    `json:"primary_user_id"`
	SecondaryUserID *string    `json:"secondary_user_id"`
}

func (r *EventRequest) apply(e *domain.Event) {
	e.Name = r.Name
	e.Date = r.Date
	e.Location = r.Location
	e.URL = r.URL
	e.Country = r.Country
	e.EventType = r.EventType
	if e.EventType == "" {
		e.EventType = domain.DefaultEventType
	}
	e.PrimaryUserID = ref(r.PrimaryUserID)
	e.SecondaryUserID = ref(r.SecondaryUserID)
}

// EventListQuery holds the filters of GET /events.
type EventListQuery struct {
	PageQuery
	PrimaryUserID   *string `form:"primary_user_id"   binding:"omitempty,uuid"`
	SecondaryUserID *string `form:"secondary_user_id" binding:"omitempty,uuid"`
	Country         *string `form:"country"           binding:"omitempty,max=128"`
	EventType       *string `form:"event_type"        binding:"omitempty,max=32"`
	Name            *string `form:"name"              binding:"omitempty,max=255"`
}

// CreateEvent godoc
// @ID          createEvent
// @Summary     Create an event
// @Description Creates an event. At least one of primary_user_id and secondary_user_id is required.
// @Tags        Events
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.EventRequest  true  "Event payload"
// @Success     201   {object}  domain.Event
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed, invariant violation or unknown user"
// @Router      /events [post]
func (h *Handlers) CreateEvent(c *gin.Context) {
	var req EventRequest
	if !bindJSON(c, &req) {
		return
	}
	var e domain.Event
	req.apply(&e)
	out, err := h.svc.Events.Create(c.Request.Context(), e)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, out)
}

// ListEvents godoc
// @ID          listEvents
// @Summary     List events
// @Tags        Events
// @Produce     json
// @Param       page               query  int     false  "Page (1-based)"
// @Param       itemsPerPage       query  int     false  "Page size"
// @Param       primary_user_id    query  string  false  "Primary owner"
// @Param       secondary_user_id  query  string  false  "Secondary owner"
// @Param       country            query  string  false  "Country"
// @Param       event_type         query  string  false  "Event type"
// @Param       name               query  string  false  "Case-insensitive substring of the name"
// @Success     200  {array}   domain.Event
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid filters"
// @Router      /events [get]
func (h *Handlers) ListEvents(c *gin.Context) {
	var q EventListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, size := h.window(q.PageQuery)
	spec := query.Build(
		query.Equals("primary_user_id", q.PrimaryUserID),
		query.Equals("secondary_user_id", q.SecondaryUserID),
		query.Equals("country", q.Country),
		query.Equals("event_type", q.EventType),
		query.Contains("name", q.Name),
		page,
	)
	items, total, err := h.svc.Events.List(c.Request.Context(), spec)
	if err != nil {
		failErr(c, err)
		return
	}
	writeList(c, items, total, size)
}

// GetEvent godoc
// @ID          getEvent
// @Summary     Get an event
// @Tags        Events
// @Produce     json
// @Param       id   path      string  true  "Event ID"
// @Success     200  {object}  domain.Event
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /events/{id} [get]
func (h *Handlers) GetEvent(c *gin.Context) { getOne[domain.Event](c, h.svc.Events) }

// UpdateEvent godoc
// @ID          updateEvent
// @Summary     Replace an event
// @Tags        Events
// @Accept      json
// @Produce     json
// @Param       id    path      string                 true  "Event ID"
// @Param       body  body      handlers.EventRequest  true  "Event payload"
// @Success     200   {object}  domain.Event
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed or invariant violation"
// @Failure     404   {object}  handlers.ErrorResponse  "Not found"
// @Router      /events/{id} [put]
func (h *Handlers) UpdateEvent(c *gin.Context) {
	updateOne[domain.Event](c, h.svc.Events, &EventRequest{})
}

// DeleteEvent godoc
// @ID          deleteEvent
// @Summary     Delete an event
// @Description Deletes an event with its giftlists, gifts and wishlists.
// @Tags        Events
// @Param       id   path  string  true  "Event ID"
// @Success     204
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /events/{id} [delete]
func (h *Handlers) DeleteEvent(c *gin.Context) { deleteOne[domain.Event](c, h.svc.Events) }
