package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/query"
)

func TestWishlistService_AddGifts(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	a := r.gift(t, "Blender", "40", nil)
	b := r.gift(t, "Mixer", "60.5", nil)
	w, err := r.wishlists.Create(ctx, &domain.Wishlist{EventID: r.event.ID, TotalGifts: 99})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if w.TotalGifts != 0 {
		t.Fatalf("caller totals must be ignored, got %d", w.TotalGifts)
	}

	links, err := r.wishlists.AddGifts(ctx, w.ID, "", []string{a.ID, " ", b.ID, a.ID})
	if err != nil {
		t.Fatalf("AddGifts: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("links = %d, want 2", len(links))
	}
	got, _ := r.wishlists.Get(ctx, w.ID)
	if got.TotalGifts != 2 || !got.TotalPrice.Equal(dec("100.5")) {
		t.Fatalf("totals = %d / %s", got.TotalGifts, got.TotalPrice)
	}

	items, total, err := r.wishlists.ListGifts(ctx, w.ID, r.event.ID, query.Contains("name", ptr("mix")))
	if err != nil {
		t.Fatalf("ListGifts: %v", err)
	}
	if total != 1 || items[0].ID != b.ID {
		t.Fatalf("ListGifts = %v (%d)", items, total)
	}
}

func TestWishlistService_AddGiftsErrors(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	g := r.gift(t, "Candle", "3", nil)
	w, err := r.wishlists.Create(ctx, &domain.Wishlist{EventID: r.event.ID})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := r.wishlists.AddGifts(ctx, w.ID, r.event.ID, []string{g.ID}); err != nil {
		t.Fatalf("AddGifts: %v", err)
	}

	cases := []struct {
		name     string
		wishlist string
		event    string
		ids      []string
		want     error
	}{
		{"no ids", w.ID, r.event.ID, []string{"", "  "}, ErrEmptyGiftIDs},
		{"missing wishlist", "33333333-3333-3333-3333-333333333333", r.event.ID, []string{g.ID}, ErrWishlistNotFound},
		{"other event", w.ID, "44444444-4444-4444-4444-444444444444", []string{g.ID}, ErrEventMismatch},
		{"already linked", w.ID, r.event.ID, []string{g.ID}, ErrConflict},
		{"unknown gift", w.ID, r.event.ID, []string{"55555555-5555-5555-5555-555555555555"}, ErrInvalidReference},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := r.wishlists.AddGifts(ctx, tc.wishlist, tc.event, tc.ids); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	got, _ := r.wishlists.Get(ctx, w.ID)
	if got.TotalGifts != 1 {
		t.Fatalf("failed insertions must not change totals, got %d", got.TotalGifts)
	}
}

func TestWishlistService_RequiredFilters(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	_, _, err := r.wishlists.ListGifts(ctx, "", "")
	var ve *domain.ValidationError
	if !errors.As(err, &ve) || ve.Fields["wishlist_id"] == "" || ve.Fields["event_id"] == "" {
		t.Fatalf("err = %v, want both fields", err)
	}
	if _, _, err := r.wishlists.ListByEvent(ctx, ""); !errors.As(err, &ve) {
		t.Fatalf("ListByEvent err = %v", err)
	}

	if _, err := r.wishlists.Create(ctx, &domain.Wishlist{EventID: r.event.ID}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	items, total, err := r.wishlists.ListByEvent(ctx, r.event.ID)
	if err != nil || total != 1 || len(items) != 1 {
		t.Fatalf("ListByEvent = %v, %d, %v", items, total, err)
	}
}
