// Package services – GiftService
//
// Gifts carry prices that feed the denormalized totals of their giftlist and
// of every wishlist that holds them. GiftService writes a gift and refreshes
// those totals in the same transaction, so readers never see a giftlist whose
// total_price disagrees with its gifts.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/query"
)

// GiftRepo defines the repository contract required by GiftService.
type GiftRepo interface {
	Store[domain.Gift]

	// RefreshGiftlistTotals recomputes total_gifts and total_price of a giftlist.
	RefreshGiftlistTotals(ctx context.Context, db *gorm.DB, giftlistID string) error

	// RefreshWishlistTotals recomputes total_gifts and total_price of a wishlist.
	RefreshWishlistTotals(ctx context.Context, db *gorm.DB, wishlistID string) error

	// WishlistIDsForGift lists the wishlists that hold a gift.
	WishlistIDsForGift(ctx context.Context, db *gorm.DB, giftID string) ([]string, error)
}

// GiftService manages gifts and keeps derived totals current.
type GiftService struct {
	Entity[domain.Gift]
	repo GiftRepo
}

// NewGiftService constructs a GiftService.
func NewGiftService(db *gorm.DB, r GiftRepo) *GiftService {
	return &GiftService{
		Entity: Entity[domain.Gift]{DB: db, Repo: r, NotFound: ErrGiftNotFound},
		repo:   r,
	}
}

// Create inserts g and refreshes the totals of its giftlist.
func (s *GiftService) Create(ctx context.Context, g *domain.Gift) (*domain.Gift, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.create(ctx, tx, g); err != nil {
			return err
		}
		return s.refresh(ctx, tx, g.GiftlistID, nil, nil)
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Update modifies a gift and refreshes the totals of the giftlist it left,
// the giftlist it joined and every wishlist holding it.
func (s *GiftService) Update(ctx context.Context, id string, apply func(*domain.Gift)) (*domain.Gift, error) {
	var out *domain.Gift
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		before, err := s.repo.Get(ctx, tx, id)
		if err != nil {
			return translate(err, ErrGiftNotFound)
		}
		prev := before.GiftlistID

		g, err := s.update(ctx, tx, id, apply)
		if err != nil {
			return err
		}
		if err := s.checkSourceChain(ctx, tx, g); err != nil {
			return err
		}
		out = g

		wishlists, err := s.repo.WishlistIDsForGift(ctx, tx, id)
		if err != nil {
			return err
		}
		return s.refresh(ctx, tx, g.GiftlistID, prev, wishlists)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a gift. Its wishlist links go with it and the affected
// totals are recomputed.
func (s *GiftService) Delete(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g, err := s.repo.Get(ctx, tx, id)
		if err != nil {
			return translate(err, ErrGiftNotFound)
		}
		wishlists, err := s.repo.WishlistIDsForGift(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return translate(err, ErrGiftNotFound)
		}
		return s.refresh(ctx, tx, g.GiftlistID, nil, wishlists)
	})
}

// ListByEvent lists the gifts of an event. eventID is mandatory.
func (s *GiftService) ListByEvent(ctx context.Context, eventID string, opts ...query.Option) ([]domain.Gift, int64, error) {
	if eventID == "" {
		return nil, 0, &domain.ValidationError{Fields: map[string]string{"event_id": "is required"}}
	}
	opts = append([]query.Option{query.Equals("event_id", &eventID)}, opts...)
	return s.List(ctx, query.Build(opts...))
}

// checkSourceChain follows source gift links from g's source and fails with
// domain.ErrGiftSourceCycle when they lead back to g.
func (s *GiftService) checkSourceChain(ctx context.Context, tx *gorm.DB, g *domain.Gift) error {
	seen := map[string]bool{}
	for next := g.SourceGiftID; next != nil && !seen[*next]; {
		if *next == g.ID {
			return domain.ErrGiftSourceCycle
		}
		seen[*next] = true
		src, err := s.repo.Get(ctx, tx, *next)
		if err != nil {
			return err
		}
		next = src.SourceGiftID
	}
	return nil
}

func (s *GiftService) refresh(ctx context.Context, tx *gorm.DB, giftlist, prevGiftlist *string, wishlists []string) error {
	if giftlist != nil {
		if err := s.repo.RefreshGiftlistTotals(ctx, tx, *giftlist); err != nil {
			return err
		}
	}
	if prevGiftlist != nil && (giftlist == nil || *prevGiftlist != *giftlist) {
		if err := s.repo.RefreshGiftlistTotals(ctx, tx, *prevGiftlist); err != nil {
			return err
		}
	}
	for _, id := range wishlists {
		if err := s.repo.RefreshWishlistTotals(ctx, tx, id); err != nil {
			return err
		}
	}
	return nil
}
