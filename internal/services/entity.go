package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/query"
)

// Store is the repository contract shared by every entity service.
// Implementations persist one record type and must honor ctx.
type Store[T any] interface {
	// Create inserts rec.
	Create(ctx context.Context, db *gorm.DB, rec *T) error
	// Get loads a record by primary key.
	Get(ctx context.Context, db *gorm.DB, id string) (*T, error)
	// Save writes every column of rec.
	Save(ctx context.Context, db *gorm.DB, rec *T) error
	// Delete removes a record by primary key.
	Delete(ctx context.Context, db *gorm.DB, id string) error
	// List returns the records matching spec and the total before paging.
	List(ctx context.Context, db *gorm.DB, spec query.FilterSpec) ([]T, int64, error)
}

// Entity implements create, read, update, delete and list for one record
// type. The typed services embed it and add their own rules.
type Entity[T any] struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the repository used by this service.
	Repo Store[T]
	// NotFound is returned when a lookup misses.
	NotFound error
}

// Create assigns an ID when rec has none, validates rec and inserts it.
func (s *Entity[T]) Create(ctx context.Context, rec *T) (*T, error) {
	if err := s.create(ctx, s.DB, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Entity[T]) create(ctx context.Context, tx *gorm.DB, rec *T) error {
	if p := idOf(rec); p != nil && *p == "" {
		*p = uuid.NewString()
	}
	if err := domain.Validate(rec); err != nil {
		return err
	}
	return translate(s.Repo.Create(ctx, tx, rec), s.NotFound)
}

// Get returns the record with the given id.
func (s *Entity[T]) Get(ctx context.Context, id string) (*T, error) {
	rec, err := s.Repo.Get(ctx, s.DB, id)
	if err != nil {
		return nil, translate(err, s.NotFound)
	}
	return rec, nil
}

// Update loads the record, lets apply modify it, then validates and saves
// the result. The primary key cannot be changed by apply.
func (s *Entity[T]) Update(ctx context.Context, id string, apply func(*T)) (*T, error) {
	var out *T
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.update(ctx, tx, id, apply)
		out = rec
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Entity[T]) update(ctx context.Context, tx *gorm.DB, id string, apply func(*T)) (*T, error) {
	rec, err := s.Repo.Get(ctx, tx, id)
	if err != nil {
		return nil, translate(err, s.NotFound)
	}
	apply(rec)
	if p := idOf(rec); p != nil {
		*p = id
	}
	if err := domain.Validate(rec); err != nil {
		return nil, err
	}
	if err := s.Repo.Save(ctx, tx, rec); err != nil {
		return nil, translate(err, s.NotFound)
	}
	return rec, nil
}

// Delete removes the record with the given id.
func (s *Entity[T]) Delete(ctx context.Context, id string) error {
	return translate(s.Repo.Delete(ctx, s.DB, id), s.NotFound)
}

// List returns the records matching spec and their total count.
func (s *Entity[T]) List(ctx context.Context, spec query.FilterSpec) ([]T, int64, error) {
	items, total, err := s.Repo.List(ctx, s.DB, spec)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// idOf returns the address of rec's primary key.
func idOf(rec any) *string {
	switch r := rec.(type) {
	case *domain.User:
		return &r.ID
	case *domain.Event:
		return &r.ID
	case *domain.Category:
		return &r.ID
	case *domain.Giftlist:
		return &r.ID
	case *domain.Gift:
		return &r.ID
	case *domain.Wishlist:
		return &r.ID
	}
	return nil
}
