package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/query"
)

// ListWishlistGifts returns the gifts associated with a wishlist. The filter
// is applied over the join, so wishlist_id, event_id and name filter on
// WishlistGiftColumns.
func ListWishlistGifts(ctx context.Context, db *gorm.DB, spec query.FilterSpec) ([]domain.Gift, int64, error) {
	base := func() *gorm.DB {
		return db.WithContext(ctx).Model(&domain.Gift{}).
			Joins("JOIN wishlist_gifts ON wishlist_gifts.gift_id = gifts.id")
	}
	return listFrom[domain.Gift](base, WishlistGiftColumns, spec, "wishlist_gifts.created_at ASC, gifts.id ASC", "gifts.*")
}

// AddWishlistGifts links giftIDs to a wishlist within one transaction and
// refreshes the wishlist totals. The wishlist must exist; a gift already on
// the wishlist yields ErrDuplicate and nothing is written.
func AddWishlistGifts(ctx context.Context, db *gorm.DB, wishlistID, eventID string, giftIDs []string) ([]domain.WishlistGift, error) {
	links := make([]domain.WishlistGift, 0, len(giftIDs))
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := Get[domain.Wishlist](ctx, tx, wishlistID); err != nil {
			return err
		}
		for _, gid := range giftIDs {
			links = append(links, domain.WishlistGift{
				ID:         uuid.NewString(),
				WishlistID: wishlistID,
				GiftID:     gid,
				EventID:    eventID,
			})
		}
		if err := CreateBatch(ctx, tx, links, 100); err != nil {
			return err
		}
		return RefreshWishlistTotals(ctx, tx, wishlistID)
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// WishlistIDsForGift returns the wishlists that currently hold giftID.
func WishlistIDsForGift(ctx context.Context, db *gorm.DB, giftID string) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).Model(&domain.WishlistGift{}).
		Where("gift_id = ?", giftID).
		Distinct().
		Pluck("wishlist_id", &ids).Error
	return ids, err
}
