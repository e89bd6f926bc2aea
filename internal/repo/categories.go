package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-gift-registry/internal/domain"
)

// ListAllCategories returns every category, oldest first.
func ListAllCategories(ctx context.Context, db *gorm.DB) ([]domain.Category, error) {
	var out []domain.Category
	if err := db.WithContext(ctx).Order(defaultOrder).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetCategoryByName looks a category up by its natural key, so "Kitchen"
// and " kitchen" resolve to the same row.
func GetCategoryByName(ctx context.Context, db *gorm.DB, name string) (*domain.Category, error) {
	var c domain.Category
	err := db.WithContext(ctx).First(&c, "name_key = ?", domain.CategoryKey(name)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
