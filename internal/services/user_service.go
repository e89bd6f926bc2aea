package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/go-gift-registry/internal/domain"
)

// UserService manages registry accounts.
type UserService struct {
	Entity[domain.User]
}

// NewUserService constructs a UserService.
func NewUserService(db *gorm.DB, r Store[domain.User]) *UserService {
	return &UserService{Entity: Entity[domain.User]{DB: db, Repo: r, NotFound: ErrUserNotFound}}
}

// Create inserts u with the onboarding defaults of a new account: role
// COUPLE and step "1". Emails are stored lower-cased.
func (s *UserService) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = domain.RoleCouple
	}
	if u.OnboardingStep == "" {
		u.OnboardingStep = "1"
	}
	return s.Entity.Create(ctx, u)
}
