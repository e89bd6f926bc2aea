package domain

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:domain_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		User{}.TableName():         "users",
		Event{}.TableName():        "events",
		Category{}.TableName():     "categories",
		Giftlist{}.TableName():     "giftlists",
		Gift{}.TableName():         "gifts",
		Wishlist{}.TableName():     "wishlists",
		WishlistGift{}.TableName(): "wishlist_gifts",
		Idempotency{}.TableName():  "idempotency",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func seedOwner(t *testing.T, db *gorm.DB) (User, Event) {
	t.Helper()
	u := User{
		ID: uuid.NewString(), Name: "Ada", LastName: "Lovelace",
		Email: uuid.NewString() + "@example.com", Password: "secret",
		Role: RoleCouple, OnboardingStep: "1",
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("insert user: %v", err)
	}
	ev, err := NewEvent(Event{URL: "https://example.com/w", PrimaryUserID: &u.ID})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	if err := db.Create(ev).Error; err != nil {
		t.Fatalf("insert event: %v", err)
	}
	return u, *ev
}

func TestMigrations_Indexes(t *testing.T) {
	db := newDomainDB(t)
	m := db.Migrator()

	for _, tbl := range All() {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	if !m.HasIndex(&Category{}, "ux_categories_name_key") {
		t.Fatalf("expected unique index ux_categories_name_key")
	}
	if !m.HasIndex(&WishlistGift{}, "ux_wishlist_gift") {
		t.Fatalf("expected unique index ux_wishlist_gift")
	}
	if !m.HasIndex(&User{}, "ux_users_email") {
		t.Fatalf("expected unique index ux_users_email")
	}
}

func TestCategory_NameKeyUnique(t *testing.T) {
	db := newDomainDB(t)

	c1, err := NewCategory("Home Decor")
	if err != nil {
		t.Fatalf("NewCategory: %v", err)
	}
	if err := db.Create(c1).Error; err != nil {
		t.Fatalf("insert c1: %v", err)
	}

	// Different spelling, same natural key.
	c2 := &Category{ID: uuid.NewString(), Name: "  HOME   decor "}
	if err := db.Create(c2).Error; err == nil {
		t.Fatalf("expected unique violation for duplicate category key")
	}
	if c2.Name != "HOME   decor" {
		t.Fatalf("BeforeSave should trim name, got %q", c2.Name)
	}
}

func TestEvent_BeforeSaveRejectsOwnerless(t *testing.T) {
	db := newDomainDB(t)

	ev := &Event{ID: uuid.NewString(), URL: "https://example.com"}
	err := db.Create(ev).Error
	if err == nil || !IsInvariant(err) {
		t.Fatalf("expected ErrEventWithoutUser from hook, got %v", err)
	}

	_, saved := seedOwner(t, db)
	saved.PrimaryUserID = nil
	if err := db.Save(&saved).Error; !IsInvariant(err) {
		t.Fatalf("update clearing owner should fail, got %v", err)
	}
}

func TestGift_SelfReferenceRejected(t *testing.T) {
	db := newDomainDB(t)
	id := uuid.NewString()
	g := &Gift{ID: id, Name: "Vase", Price: decimal.RequireFromString("10.00"), SourceGiftID: &id}
	if err := db.Create(g).Error; !IsInvariant(err) {
		t.Fatalf("expected self-reference invariant, got %v", err)
	}
}

func TestWishlistGift_UniqueAndCascade(t *testing.T) {
	db := newDomainDB(t)
	_, ev := seedOwner(t, db)
	now := time.Now().UTC()

	gift := &Gift{ID: uuid.NewString(), Name: "Lamp", Price: decimal.NewFromInt(30), EventID: &ev.ID, CreatedAt: now}
	if err := db.Create(gift).Error; err != nil {
		t.Fatalf("insert gift: %v", err)
	}
	wl := &Wishlist{ID: uuid.NewString(), EventID: ev.ID}
	if err := db.Create(wl).Error; err != nil {
		t.Fatalf("insert wishlist: %v", err)
	}
	link := &WishlistGift{ID: uuid.NewString(), WishlistID: wl.ID, GiftID: gift.ID, EventID: ev.ID}
	if err := db.Create(link).Error; err != nil {
		t.Fatalf("insert link: %v", err)
	}
	dup := &WishlistGift{ID: uuid.NewString(), WishlistID: wl.ID, GiftID: gift.ID, EventID: ev.ID}
	if err := db.Create(dup).Error; err == nil {
		t.Fatalf("expected unique violation on (wishlist_id, gift_id)")
	}

	// Deleting the event cascades to wishlists and links.
	if err := db.Delete(&Event{}, "id = ?", ev.ID).Error; err != nil {
		t.Fatalf("delete event: %v", err)
	}
	var n int64
	db.Model(&WishlistGift{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected links to cascade, got %d", n)
	}
	db.Model(&Wishlist{}).Count(&n)
	if n != 0 {
		t.Fatalf("expected wishlists to cascade, got %d", n)
	}
}

func TestGift_PriceRoundTrip(t *testing.T) {
	db := newDomainDB(t)
	g := &Gift{ID: uuid.NewString(), Name: "Kettle", Price: decimal.RequireFromString("49.95")}
	if err := db.Create(g).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	var got Gift
	if err := db.First(&got, "id = ?", g.ID).Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if !got.Price.Equal(decimal.RequireFromString("49.95")) {
		t.Fatalf("price = %s; want 49.95", got.Price)
	}
}
