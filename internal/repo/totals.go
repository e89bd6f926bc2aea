package repo

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-gift-registry/internal/domain"
)

type aggregate struct {
	N     int64
	Total decimal.Decimal
}

// RefreshGiftlistTotals recomputes total_gifts and total_price of a giftlist
// from the gifts that reference it.
func RefreshGiftlistTotals(ctx context.Context, db *gorm.DB, giftlistID string) error {
	var agg aggregate
	err := db.WithContext(ctx).Model(&domain.Gift{}).
		Select("COUNT(*) AS n, COALESCE(SUM(price), 0) AS total").
		Where("giftlist_id = ?", giftlistID).
		Scan(&agg).Error
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Model(&domain.Giftlist{}).
		Where("id = ?", giftlistID).
		Updates(map[string]any{"total_gifts": agg.N, "total_price": agg.Total.Round(2)}).Error
}

// RefreshWishlistTotals recomputes total_gifts and total_price of a wishlist
// from its associated gifts.
func RefreshWishlistTotals(ctx context.Context, db *gorm.DB, wishlistID string) error {
	var agg aggregate
	err := db.WithContext(ctx).Table("gifts").
		Select("COUNT(*) AS n, COALESCE(SUM(gifts.price), 0) AS total").
		Joins("JOIN wishlist_gifts ON wishlist_gifts.gift_id = gifts.id").
		Where("wishlist_gifts.wishlist_id = ?", wishlistID).
		Scan(&agg).Error
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Model(&domain.Wishlist{}).
		Where("id = ?", wishlistID).
		Updates(map[string]any{"total_gifts": agg.N, "total_price": agg.Total.Round(2)}).Error
}
