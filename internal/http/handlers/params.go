package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/http/middleware"
	"github.com/tbourn/go-gift-registry/internal/query"
	"github.com/tbourn/go-gift-registry/internal/utils"
)

// Listing response headers.
const (
	HeaderTotalCount = middleware.HeaderTotalCount
	HeaderTotalPages = "X-Total-Pages"
)

// PageQuery carries the optional pagination inputs shared by list
// endpoints. A window applies only when both are present.
type PageQuery struct {
	Page         *int `form:"page"         binding:"omitempty,min=1" example:"1"`
	ItemsPerPage *int `form:"itemsPerPage" binding:"omitempty,min=1" example:"30"`
}

// IDPath binds the :id route parameter.
type IDPath struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// window turns q into a query option, capping the page size. size is 0
// when no window applies.
func (h *Handlers) window(q PageQuery) (opt query.Option, size int) {
	per := q.ItemsPerPage
	if per != nil {
		capped := utils.ClampPageSize(*per, h.maxPageSize)
		per = &capped
	}
	if q.Page != nil && per != nil {
		size = *per
	}
	return query.Page(q.Page, per), size
}

// writeList writes items with the total-count headers.
func writeList[T any](c *gin.Context, items []T, total int64, size int) {
	c.Header(HeaderTotalCount, strconv.FormatInt(total, 10))
	if size > 0 {
		c.Header(HeaderTotalPages, strconv.Itoa(utils.TotalPages(total, size)))
	}
	if items == nil {
		items = []T{}
	}
	ok(c, http.StatusOK, items)
}

// bindQuery binds query parameters into dst, answering 400 on failure.
func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		failBinding(c, err, "invalid query parameters")
		return false
	}
	return true
}

// bindJSON binds the request body into dst, answering 400 on failure.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		failBinding(c, err, "invalid JSON body")
		return false
	}
	return true
}

// bindID binds and validates the :id route parameter.
func bindID(c *gin.Context) (string, bool) {
	var p IDPath
	if err := c.ShouldBindUri(&p); err != nil {
		failBinding(c, err, "invalid id")
		return "", false
	}
	return p.ID, true
}

func failBinding(c *gin.Context, err error, msg string) {
	var ves validator.ValidationErrors
	if errors.As(err, &ves) {
		failFields(c, http.StatusBadRequest, ErrCodeBadRequest, "validation failed", domain.FieldErrors(ves))
		return
	}
	fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg)
}

// parseDecimals parses optional decimal query values. Reasons for
// unparsable inputs are collected in fields under their parameter name.
func parseDecimals(fields map[string]string, in map[string]*string) map[string]*decimal.Decimal {
	out := make(map[string]*decimal.Decimal, len(in))
	for name, raw := range in {
		if raw == nil || *raw == "" {
			continue
		}
		d, err := decimal.NewFromString(*raw)
		if err != nil {
			fields[name] = "must be a decimal number"
			continue
		}
		out[name] = &d
	}
	return out
}
