// Package handlers exposes the registry REST endpoints.
//
// Handlers are transport-thin: they bind and validate input, call
// application services, and translate results into HTTP responses.
package handlers

import (
	"context"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/query"
	"github.com/tbourn/go-gift-registry/internal/seed"
)

//
// Service contracts (context-aware)
//

// EntityService is the lookup, update and delete surface shared by every
// registry service. Update loads the record, applies the mutation and
// persists it; implementations keep the record's ID.
type EntityService[T any] interface {
	Get(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, id string, apply func(*T)) (*T, error)
	Delete(ctx context.Context, id string) error
}

// GiftService manages gifts. ListByEvent requires an event ID.
type GiftService interface {
	EntityService[domain.Gift]
	Create(ctx context.Context, g *domain.Gift) (*domain.Gift, error)
	ListByEvent(ctx context.Context, eventID string, opts ...query.Option) ([]domain.Gift, int64, error)
}

// GiftlistService manages giftlists.
type GiftlistService interface {
	EntityService[domain.Giftlist]
	Create(ctx context.Context, gl *domain.Giftlist) (*domain.Giftlist, error)
	List(ctx context.Context, spec query.FilterSpec) ([]domain.Giftlist, int64, error)
}

// EventService manages events.
type EventService interface {
	EntityService[domain.Event]
	Create(ctx context.Context, e domain.Event) (*domain.Event, error)
	List(ctx context.Context, spec query.FilterSpec) ([]domain.Event, int64, error)
}

// CategoryService manages categories.
type CategoryService interface {
	EntityService[domain.Category]
	Create(ctx context.Context, name string) (*domain.Category, error)
	Rename(ctx context.Context, id, name string) (*domain.Category, error)
	List(ctx context.Context, spec query.FilterSpec) ([]domain.Category, int64, error)
}

// UserService manages users.
type UserService interface {
	EntityService[domain.User]
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	List(ctx context.Context, spec query.FilterSpec) ([]domain.User, int64, error)
}

// WishlistService manages wishlists and their gift associations.
type WishlistService interface {
	EntityService[domain.Wishlist]
	Create(ctx context.Context, w *domain.Wishlist) (*domain.Wishlist, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.Wishlist, int64, error)
	AddGifts(ctx context.Context, wishlistID, eventID string, giftIDs []string) ([]domain.WishlistGift, error)
	ListGifts(ctx context.Context, wishlistID, eventID string, opts ...query.Option) ([]domain.Gift, int64, error)
}

// Seeder runs one seed pass.
type Seeder interface {
	Run(ctx context.Context) (*seed.Report, error)
}

// IdempotencyStore persists replayable responses keyed by (scope, key).
// Lookup returns an error for missing or expired records.
type IdempotencyStore interface {
	Lookup(ctx context.Context, scope, key string) (*domain.Idempotency, error)
	Save(ctx context.Context, scope, key string, status int, body []byte) error
}

//
// Handler wiring
//

// Services bundles the dependencies of Handlers.
type Services struct {
	Gifts       GiftService
	Giftlists   GiftlistService
	Events      EventService
	Categories  CategoryService
	Users       UserService
	Wishlists   WishlistService
	Seeder      Seeder
	Idempotency IdempotencyStore
}

// Handlers groups the registry endpoints.
type Handlers struct {
	svc         Services
	maxPageSize int
}

// New constructs Handlers. maxPageSize caps itemsPerPage; values below 1
// disable the cap.
func New(svc Services, maxPageSize int) *Handlers {
	return &Handlers{svc: svc, maxPageSize: maxPageSize}
}
