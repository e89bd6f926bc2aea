package services

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-gift-registry/internal/domain"
)

// GiftlistService manages giftlists. Their totals are derived from the
// gifts they hold and are never taken from callers.
type GiftlistService struct {
	Entity[domain.Giftlist]
}

// NewGiftlistService constructs a GiftlistService.
func NewGiftlistService(db *gorm.DB, r Store[domain.Giftlist]) *GiftlistService {
	return &GiftlistService{Entity: Entity[domain.Giftlist]{DB: db, Repo: r, NotFound: ErrGiftlistNotFound}}
}

// Create inserts an empty giftlist.
func (s *GiftlistService) Create(ctx context.Context, gl *domain.Giftlist) (*domain.Giftlist, error) {
	gl.TotalGifts = 0
	gl.TotalPrice = decimal.Zero
	return s.Entity.Create(ctx, gl)
}
