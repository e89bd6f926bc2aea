package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-gift-registry/internal/domain"
)

// EventService manages events. Every event keeps at least one owning user;
// creation goes through domain.NewEvent and updates through the model's
// BeforeSave hook.
type EventService struct {
	Entity[domain.Event]
}

// NewEventService constructs an EventService.
func NewEventService(db *gorm.DB, r Store[domain.Event]) *EventService {
	return &EventService{Entity: Entity[domain.Event]{DB: db, Repo: r, NotFound: ErrEventNotFound}}
}

// Create normalizes e and inserts it. An event without owners fails with
// domain.ErrEventWithoutUser.
func (s *EventService) Create(ctx context.Context, e domain.Event) (*domain.Event, error) {
	ev, err := domain.NewEvent(e)
	if err != nil {
		return nil, err
	}
	return s.Entity.Create(ctx, ev)
}
