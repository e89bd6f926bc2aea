package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/query"
)

// Table binds the generic CRUD functions to one model and its filterable
// columns, giving services a method-set repository.
type Table[T any] struct {
	Cols query.Columns
}

func (t Table[T]) Create(ctx context.Context, db *gorm.DB, rec *T) error {
	return Create(ctx, db, rec)
}

func (t Table[T]) Get(ctx context.Context, db *gorm.DB, id string) (*T, error) {
	return Get[T](ctx, db, id)
}

func (t Table[T]) Save(ctx context.Context, db *gorm.DB, rec *T) error {
	return Save(ctx, db, rec)
}

func (t Table[T]) Delete(ctx context.Context, db *gorm.DB, id string) error {
	return Delete[T](ctx, db, id)
}

func (t Table[T]) List(ctx context.Context, db *gorm.DB, spec query.FilterSpec) ([]T, int64, error) {
	return List[T](ctx, db, t.Cols, spec)
}

// Per-entity tables.
var (
	Users     = Table[domain.User]{Cols: UserColumns}
	Events    = Table[domain.Event]{Cols: EventColumns}
	Giftlists = Table[domain.Giftlist]{Cols: GiftlistColumns}
)

// GiftTable adds the totals maintenance gifts need.
type GiftTable struct{ Table[domain.Gift] }

// Gifts is the gift repository.
var Gifts = GiftTable{Table[domain.Gift]{Cols: GiftColumns}}

func (GiftTable) RefreshGiftlistTotals(ctx context.Context, db *gorm.DB, id string) error {
	return RefreshGiftlistTotals(ctx, db, id)
}

func (GiftTable) RefreshWishlistTotals(ctx context.Context, db *gorm.DB, id string) error {
	return RefreshWishlistTotals(ctx, db, id)
}

func (GiftTable) WishlistIDsForGift(ctx context.Context, db *gorm.DB, giftID string) ([]string, error) {
	return WishlistIDsForGift(ctx, db, giftID)
}

// CategoryTable adds lookup by natural key.
type CategoryTable struct{ Table[domain.Category] }

// Categories is the category repository.
var Categories = CategoryTable{Table[domain.Category]{Cols: CategoryColumns}}

func (CategoryTable) GetCategoryByName(ctx context.Context, db *gorm.DB, name string) (*domain.Category, error) {
	return GetCategoryByName(ctx, db, name)
}

// WishlistTable adds the wishlist-gift association.
type WishlistTable struct{ Table[domain.Wishlist] }

// Wishlists is the wishlist repository.
var Wishlists = WishlistTable{Table[domain.Wishlist]{Cols: WishlistColumns}}

func (WishlistTable) AddWishlistGifts(ctx context.Context, db *gorm.DB, wishlistID, eventID string, giftIDs []string) ([]domain.WishlistGift, error) {
	return AddWishlistGifts(ctx, db, wishlistID, eventID, giftIDs)
}

func (WishlistTable) ListWishlistGifts(ctx context.Context, db *gorm.DB, spec query.FilterSpec) ([]domain.Gift, int64, error) {
	return ListWishlistGifts(ctx, db, spec)
}
