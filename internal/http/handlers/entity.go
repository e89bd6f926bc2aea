package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-gift-registry/internal/domain"
)

// getOne answers GET /<kind>/:id.
func getOne[T any](c *gin.Context, svc EntityService[T]) {
	id, valid := bindID(c)
	if !valid {
		return
	}
	rec, err := svc.Get(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, rec)
}

// updateOne answers PUT /<kind>/:id. The body replaces the mutable fields
// of the stored record.
func updateOne[T any, R interface{ apply(*T) }](c *gin.Context, svc EntityService[T], req R) {
	id, valid := bindID(c)
	if !valid || !bindJSON(c, req) {
		return
	}
	rec, err := svc.Update(c.Request.Context(), id, req.apply)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, rec)
}

// deleteOne answers DELETE /<kind>/:id.
func deleteOne[T any](c *gin.Context, svc EntityService[T]) {
	id, valid := bindID(c)
	if !valid {
		return
	}
	if err := svc.Delete(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}

// ref normalizes an optional reference from a request body: blank means
// absent.
func ref(p *string) *string {
	if p == nil {
		return nil
	}
	return domain.Ref(*p)
}
