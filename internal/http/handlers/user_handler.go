// User HTTP handlers: CRUD under /users. Passwords are accepted on write
// and never returned.
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/query"
)

// UserRequest is the JSON payload for creating or replacing a user. On
// replace, an empty password keeps the stored one.
type UserRequest struct {
	Name             string      `json:"name" example:"Anna"`
	LastName         string      `json:"last_name" example:"Rossi"`
	Email            string      `json:"email" example:"anna@example.com"`
	Password         string      `json:"password" example:"s3cret"`
	EmailVerified    *time.Time  `json:"email_verified"`
	Image            string      `json:"image"`
	Role             domain.Role `json:"role" example:"COUPLE"`
	IsOnboarded      bool        `json:"is_onboarded"`
	HasPybankAccount bool        `json:"has_pybank_account"`
	OnboardingStep   string      `json:"onboarding_step" example:"1"`
	IsMagicLinkLogin bool        `json:"is_magic_link_login"`
}

func (r *UserRequest) apply(u *domain.User) {
	u.Name = r.Name
	u.LastName = r.LastName
	u.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Password != "" {
		u.Password = r.Password
	}
	u.EmailVerified = r.EmailVerified
	u.Image = r.Image
	u.Role = r.Role
	if u.Role == "" {
		u.Role = domain.RoleCouple
	}
	u.IsOnboarded = r.IsOnboarded
	u.HasPybankAccount = r.HasPybankAccount
	if r.OnboardingStep != "" {
		u.OnboardingStep = r.OnboardingStep
	}
	u.IsMagicLinkLogin = r.IsMagicLinkLogin
}

// UserListQuery holds the filters of GET /users.
type UserListQuery struct {
	PageQuery
	Role  *string `form:"role"  binding:"omitempty,oneof=COUPLE"`
	Email *string `form:"email" binding:"omitempty,max=255"`
	Name  *string `form:"name"  binding:"omitempty,max=255"`
}

// CreateUser godoc
// @ID          createUser
// @Summary     Create a user
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.UserRequest  true  "User payload"
// @Success     201   {object}  domain.User
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     409   {object}  handlers.ErrorResponse  "Email already registered"
// @Router      /users [post]
func (h *Handlers) CreateUser(c *gin.Context) {
	var req UserRequest
	if !bindJSON(c, &req) {
		return
	}
	var u domain.User
	req.apply(&u)
	out, err := h.svc.Users.Create(c.Request.Context(), &u)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusCreated, out)
}

// ListUsers godoc
// @ID          listUsers
// @Summary     List users
// @Tags        Users
// @Produce     json
// @Param       page          query  int     false  "Page (1-based)"
// @Param       itemsPerPage  query  int     false  "Page size"
// @Param       role          query  string  false  "Role"
// @Param       email         query  string  false  "Exact email"
// @Param       name          query  string  false  "Case-insensitive substring of the first name"
// @Success     200  {array}   domain.User
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	var q UserListQuery
	if !bindQuery(c, &q) {
		return
	}
	if q.Email != nil {
		e := strings.ToLower(strings.TrimSpace(*q.Email))
		q.Email = &e
	}
	page, size := h.window(q.PageQuery)
	spec := query.Build(
		query.Equals("role", q.Role),
		query.Equals("email", q.Email),
		query.Contains("name", q.Name),
		page,
	)
	items, total, err := h.svc.Users.List(c.Request.Context(), spec)
	if err != nil {
		failErr(c, err)
		return
	}
	writeList(c, items, total, size)
}

// GetUser godoc
// @ID          getUser
// @Summary     Get a user
// @Tags        Users
// @Produce     json
// @Param       id   path      string  true  "User ID"
// @Success     200  {object}  domain.User
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) { getOne[domain.User](c, h.svc.Users) }

// UpdateUser godoc
// @ID          updateUser
// @Summary     Replace a user
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       id    path      string                true  "User ID"
// @Param       body  body      handlers.UserRequest  true  "User payload"
// @Success     200   {object}  domain.User
// @Failure     400   {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     404   {object}  handlers.ErrorResponse  "Not found"
// @Router      /users/{id} [put]
func (h *Handlers) UpdateUser(c *gin.Context) {
	updateOne[domain.User](c, h.svc.Users, &UserRequest{})
}

// DeleteUser godoc
// @ID          deleteUser
// @Summary     Delete a user
// @Description Deletes a user. Events they own lose that owner reference.
// @Tags        Users
// @Param       id   path  string  true  "User ID"
// @Success     204
// @Failure     404  {object}  handlers.ErrorResponse  "Not found"
// @Router      /users/{id} [delete]
func (h *Handlers) DeleteUser(c *gin.Context) { deleteOne[domain.User](c, h.svc.Users) }
