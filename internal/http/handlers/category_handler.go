// Category HTTP handlers: CRUD under /categories. Names are unique after
// case folding, so duplicates answer 409.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/query"
)

// CategoryRequest is the JSON payload for creating or renaming a category.
type CategoryRequest struct {
	Name string `json:"name" example:"Home Decor"`
}

// CategoryListQuery holds the filters of GET /categories.
type CategoryListQuery struct {
	PageQuery
	Name *string `form:"name" binding:"omitempty,max=255"`
}

// CreateCategory godoc
// @ID          createCategory
// @Summary     Create a category
// @Tags        Categories
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.CategoryRequest  true  "Category payload"
// @Success     201   {object}  domain.Category
// @Failure     400   {object}  handlers.ErrorResponse  "Blank name"
// @Failure     409   {object}  handlers.ErrorResponse  "Name already taken"
// @Router      /categories [post]
func (h *Handlers) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.svc.Categories.Create(c.Request.Context(), req.Name)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, out)
}

// ListCategories godoc
// @ID          listCategories
// @Summary     List categories
// @Tags        Categories
// @Produce     json
// @Param       page          query  int     false  "Page (1-based)"
// @Param       itemsPerPage  query  int     false  "Page size"
// @Param       name          query  string  false  "Case-insensitive substring of the name"
// @Success     200  {array}   domain.Category
// @Router      /categories [get]
func (h *Handlers) ListCategories(c *gin.Context) {
	var q CategoryListQuery
	if !bindQuery(c, &q) {
		return
	}
	page, size := h.window(q.PageQuery)
	items, total, err := h.svc.Categories.List(c.Request.Context(),
		query.Build(query.Contains("name", q.Name), page))
	if err != nil {
		failErr(c, err)
		return
	}
	writeList(c, items, total, size)
}

// GetCategory godoc
// @ID          getCategory
// @Summary     Get a category
// @Tags        Categories
// @Produce     json
// @Param       id   path      string  true  "Category ID"
// @Success     200  {object}  domain.Category
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /categories/{id} [get]
func (h *Handlers) GetCategory(c *gin.Context) { getOne[domain.Category](c, h.svc.Categories) }

// UpdateCategory godoc
// @ID          updateCategory
// @Summary     Rename a category
// @Tags        Categories
// @Accept      json
// @Produce     json
// @Param       id    path      string                    true  "Category ID"
// @Param       body  body      handlers.CategoryRequest  true  "Category payload"
// @Success     200   {object}  domain.Category
// @Failure     404   {object}  handlers.ErrorResponse  "Not found"
// @Failure     409   {object}  handlers.ErrorResponse  "Name already taken"
// @Router      /categories/{id} [put]
func (h *Handlers) UpdateCategory(c *gin.Context) {
	id, valid := bindID(c)
	if !valid {
		return
	}
	var req CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.svc.Categories.Rename(c.Request.Context(), id, req.Name)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// DeleteCategory godoc
// @ID          deleteCategory
// @Summary     Delete a category
// @Tags        Categories
// @Param       id   path  string  true  "Category ID"
// @Success     204
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /categories/{id} [delete]
func (h *Handlers) DeleteCategory(c *gin.Context) { deleteOne[domain.Category](c, h.svc.Categories) }
