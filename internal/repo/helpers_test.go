package repo

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-gift-registry/internal/domain"
)

// newRepoDB opens a private in-memory database with foreign keys enforced
// on every pooled connection, and migrates the full schema unless bare.
func newRepoDB(t *testing.T, bare ...bool) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if len(bare) == 0 || !bare[0] {
		if err := AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

type fixture struct {
	User  domain.User
	Event domain.Event
}

func newFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()
	ctx := context.Background()
	u := domain.User{
		ID: uuid.NewString(), Name: "Grace", LastName: "Hopper",
		Email: uuid.NewString() + "@example.com", Password: "pw",
		Role: domain.RoleCouple, OnboardingStep: "1",
	}
	if err := Create(ctx, db, &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	ev, err := domain.NewEvent(domain.Event{URL: "https://example.com/e", PrimaryUserID: &u.ID})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	if err := Create(ctx, db, ev); err != nil {
		t.Fatalf("create event: %v", err)
	}
	return fixture{User: u, Event: *ev}
}

func newGift(t *testing.T, db *gorm.DB, name, price string, mut ...func(*domain.Gift)) domain.Gift {
	t.Helper()
	g := domain.Gift{ID: uuid.NewString(), Name: name, Price: decimal.RequireFromString(price)}
	for _, m := range mut {
		m(&g)
	}
	if err := Create(context.Background(), db, &g); err != nil {
		t.Fatalf("create gift %q: %v", name, err)
	}
	return g
}
