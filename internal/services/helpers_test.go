package services

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/repo"
)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// seedEvent creates a user and an event owned by that user.
func seedEvent(t *testing.T, db *gorm.DB) (domain.User, domain.Event) {
	t.Helper()
	ctx := context.Background()
	users := NewUserService(db, repo.Users)
	u, err := users.Create(ctx, &domain.User{
		Name: "Ada", LastName: "Lovelace", Email: uuid.NewString() + "@Example.com", Password: "pw",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	ev, err := NewEventService(db, repo.Events).Create(ctx, domain.Event{
		URL: "https://example.com/wedding", PrimaryUserID: &u.ID,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return *u, *ev
}

func ptr[T any](v T) *T { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }
