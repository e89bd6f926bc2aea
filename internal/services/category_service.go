package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-gift-registry/internal/domain"
)

// CategoryRepo defines the repository contract required by CategoryService.
type CategoryRepo interface {
	Store[domain.Category]

	// GetCategoryByName looks a category up by its folded natural key.
	GetCategoryByName(ctx context.Context, db *gorm.DB, name string) (*domain.Category, error)
}

// CategoryService manages categories. Names are unique after folding, so
// "Home Decor" and " home  decor" collide with ErrConflict.
type CategoryService struct {
	Entity[domain.Category]
	repo CategoryRepo
}

// NewCategoryService constructs a CategoryService.
func NewCategoryService(db *gorm.DB, r CategoryRepo) *CategoryService {
	return &CategoryService{
		Entity: Entity[domain.Category]{DB: db, Repo: r, NotFound: ErrCategoryNotFound},
		repo:   r,
	}
}

// Create inserts a category named name.
func (s *CategoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	c, err := domain.NewCategory(name)
	if err != nil {
		return nil, err
	}
	return s.Entity.Create(ctx, c)
}

// Rename changes a category's display name and natural key.
func (s *CategoryService) Rename(ctx context.Context, id, name string) (*domain.Category, error) {
	return s.Update(ctx, id, func(c *domain.Category) {
		c.Name = name
		c.NameKey = domain.CategoryKey(name)
	})
}

// GetByName returns the category whose name folds to the same key as name.
func (s *CategoryService) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	c, err := s.repo.GetCategoryByName(ctx, s.DB, name)
	if err != nil {
		return nil, translate(err, ErrCategoryNotFound)
	}
	return c, nil
}
