package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/query"
)

// WishlistRepo defines the repository contract required by WishlistService.
type WishlistRepo interface {
	Store[domain.Wishlist]

	// AddWishlistGifts links gifts to a wishlist and refreshes its totals.
	AddWishlistGifts(ctx context.Context, db *gorm.DB, wishlistID, eventID string, giftIDs []string) ([]domain.WishlistGift, error)

	// ListWishlistGifts lists gifts through the wishlist_gifts association.
	ListWishlistGifts(ctx context.Context, db *gorm.DB, spec query.FilterSpec) ([]domain.Gift, int64, error)
}

// WishlistService manages wishlists and their gift associations.
type WishlistService struct {
	Entity[domain.Wishlist]
	repo WishlistRepo
}

// NewWishlistService constructs a WishlistService.
func NewWishlistService(db *gorm.DB, r WishlistRepo) *WishlistService {
	return &WishlistService{
		Entity: Entity[domain.Wishlist]{DB: db, Repo: r, NotFound: ErrWishlistNotFound},
		repo:   r,
	}
}

// Create inserts w. Totals start at zero and are only changed by AddGifts.
func (s *WishlistService) Create(ctx context.Context, w *domain.Wishlist) (*domain.Wishlist, error) {
	w.TotalGifts = 0
	w.TotalPrice = decimal.Zero
	return s.Entity.Create(ctx, w)
}

// ListByEvent lists the wishlists of an event. eventID is mandatory.
func (s *WishlistService) ListByEvent(ctx context.Context, eventID string) ([]domain.Wishlist, int64, error) {
	if eventID == "" {
		return nil, 0, &domain.ValidationError{Fields: map[string]string{"event_id": "is required"}}
	}
	return s.List(ctx, query.Build(query.Equals("event_id", &eventID)))
}

// AddGifts links giftIDs to the wishlist under eventID. Blank and repeated
// IDs are ignored; the wishlist must belong to eventID.
func (s *WishlistService) AddGifts(ctx context.Context, wishlistID, eventID string, giftIDs []string) ([]domain.WishlistGift, error) {
	ids := dedupe(giftIDs)
	if len(ids) == 0 {
		return nil, ErrEmptyGiftIDs
	}
	w, err := s.Get(ctx, wishlistID)
	if err != nil {
		return nil, err
	}
	if eventID == "" {
		eventID = w.EventID
	}
	if eventID != w.EventID {
		return nil, ErrEventMismatch
	}
	links, err := s.repo.AddWishlistGifts(ctx, s.DB, wishlistID, eventID, ids)
	if err != nil {
		return nil, translate(err, ErrWishlistNotFound)
	}
	return links, nil
}

// ListGifts lists the gifts of a wishlist within an event. Both IDs are
// mandatory; opts narrow the result further.
func (s *WishlistService) ListGifts(ctx context.Context, wishlistID, eventID string, opts ...query.Option) ([]domain.Gift, int64, error) {
	fields := map[string]string{}
	if wishlistID == "" {
		fields["wishlist_id"] = "is required"
	}
	if eventID == "" {
		fields["event_id"] = "is required"
	}
	if len(fields) > 0 {
		return nil, 0, &domain.ValidationError{Fields: fields}
	}
	opts = append([]query.Option{
		query.Equals("wishlist_id", &wishlistID),
		query.Equals("event_id", &eventID),
	}, opts...)
	return s.repo.ListWishlistGifts(ctx, s.DB, query.Build(opts...))
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
