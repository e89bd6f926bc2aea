package services

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/query"
	"github.com/tbourn/go-gift-registry/internal/repo"
)

type registry struct {
	gifts     *GiftService
	giftlists *GiftlistService
	wishlists *WishlistService
	event     domain.Event
}

func newRegistry(t *testing.T) registry {
	t.Helper()
	db := newServiceDB(t)
	_, ev := seedEvent(t, db)
	return registry{
		gifts:     NewGiftService(db, repo.Gifts),
		giftlists: NewGiftlistService(db, repo.Giftlists),
		wishlists: NewWishlistService(db, repo.Wishlists),
		event:     ev,
	}
}

func (r registry) giftlist(t *testing.T, name string) *domain.Giftlist {
	t.Helper()
	gl, err := r.giftlists.Create(context.Background(), &domain.Giftlist{Name: name, EventID: r.event.ID})
	if err != nil {
		t.Fatalf("create giftlist: %v", err)
	}
	return gl
}

func (r registry) gift(t *testing.T, name, price string, giftlist *domain.Giftlist) *domain.Gift {
	t.Helper()
	g := &domain.Gift{Name: name, Price: dec(price), EventID: &r.event.ID}
	if giftlist != nil {
		g.GiftlistID = &giftlist.ID
	}
	out, err := r.gifts.Create(context.Background(), g)
	if err != nil {
		t.Fatalf("create gift: %v", err)
	}
	return out
}

func TestGiftService_CreateRefreshesGiftlistTotals(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	gl := r.giftlist(t, "Kitchen")
	r.gift(t, "Kettle", "19.99", gl)
	r.gift(t, "Toaster", "30.01", gl)

	got, err := r.giftlists.Get(ctx, gl.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TotalGifts != 2 || !got.TotalPrice.Equal(dec("50.00")) {
		t.Fatalf("totals = %d / %s, want 2 / 50.00", got.TotalGifts, got.TotalPrice)
	}
}

func TestGiftService_UpdateMovesBetweenGiftlists(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	a, b := r.giftlist(t, "A"), r.giftlist(t, "B")
	g := r.gift(t, "Lamp", "12.50", a)

	if _, err := r.gifts.Update(ctx, g.ID, func(x *domain.Gift) {
		x.GiftlistID = &b.ID
		x.Price = dec("20")
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	ga, _ := r.giftlists.Get(ctx, a.ID)
	gb, _ := r.giftlists.Get(ctx, b.ID)
	if ga.TotalGifts != 0 || !ga.TotalPrice.IsZero() {
		t.Fatalf("old giftlist totals = %d / %s", ga.TotalGifts, ga.TotalPrice)
	}
	if gb.TotalGifts != 1 || !gb.TotalPrice.Equal(dec("20")) {
		t.Fatalf("new giftlist totals = %d / %s", gb.TotalGifts, gb.TotalPrice)
	}
}

func TestGiftService_PriceChangeReachesWishlist(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	g := r.gift(t, "Vase", "10", nil)
	w, err := r.wishlists.Create(ctx, &domain.Wishlist{EventID: r.event.ID})
	if err != nil {
		t.Fatalf("create wishlist: %v", err)
	}
	if _, err := r.wishlists.AddGifts(ctx, w.ID, r.event.ID, []string{g.ID}); err != nil {
		t.Fatalf("AddGifts: %v", err)
	}

	if _, err := r.gifts.Update(ctx, g.ID, func(x *domain.Gift) { x.Price = dec("15.25") }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := r.wishlists.Get(ctx, w.ID)
	if got.TotalGifts != 1 || !got.TotalPrice.Equal(dec("15.25")) {
		t.Fatalf("wishlist totals = %d / %s", got.TotalGifts, got.TotalPrice)
	}

	if err := r.gifts.Delete(ctx, g.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, _ = r.wishlists.Get(ctx, w.ID)
	if got.TotalGifts != 0 || !got.TotalPrice.IsZero() {
		t.Fatalf("wishlist totals after delete = %d / %s", got.TotalGifts, got.TotalPrice)
	}
}

func TestGiftService_SelfReferenceRejected(t *testing.T) {
	r := newRegistry(t)
	g := r.gift(t, "Mug", "5", nil)
	_, err := r.gifts.Update(context.Background(), g.ID, func(x *domain.Gift) { x.SourceGiftID = &g.ID })
	if !errors.Is(err, domain.ErrGiftSelfReference) {
		t.Fatalf("err = %v, want ErrGiftSelfReference", err)
	}
}

func TestGiftService_SourceCycleRejected(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	a, b, c := r.gift(t, "A", "1", nil), r.gift(t, "B", "1", nil), r.gift(t, "C", "1", nil)

	setSource := func(id string, src *string) error {
		_, err := r.gifts.Update(ctx, id, func(x *domain.Gift) { x.SourceGiftID = src })
		return err
	}
	if err := setSource(a.ID, &b.ID); err != nil {
		t.Fatalf("A -> B: %v", err)
	}
	if err := setSource(b.ID, &c.ID); err != nil {
		t.Fatalf("B -> C: %v", err)
	}

	cases := []struct {
		name string
		id   string
		src  *string
	}{
		{"two gifts", b.ID, &a.ID},
		{"three gifts", c.ID, &a.ID},
	}
	for _, tc := range cases {
		err := setSource(tc.id, tc.src)
		if !errors.Is(err, domain.ErrGiftSourceCycle) || !domain.IsInvariant(err) {
			t.Fatalf("%s: err = %v, want ErrGiftSourceCycle", tc.name, err)
		}
	}

	// The rejected update is rolled back.
	got, err := r.gifts.Get(ctx, c.ID)
	if err != nil || got.SourceGiftID != nil {
		t.Fatalf("C after rejected update = %+v, %v", got, err)
	}
	// A chain that does not loop back is still accepted.
	if err := setSource(c.ID, nil); err != nil {
		t.Fatalf("clear C: %v", err)
	}
	d := r.gift(t, "D", "1", nil)
	if err := setSource(d.ID, &a.ID); err != nil {
		t.Fatalf("D -> A -> B -> C: %v", err)
	}
}

func TestGiftService_UnknownReference(t *testing.T) {
	r := newRegistry(t)
	missing := "11111111-1111-1111-1111-111111111111"
	_, err := r.gifts.Create(context.Background(), &domain.Gift{Name: "Ghost", GiftlistID: &missing})
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("err = %v, want ErrInvalidReference", err)
	}
}

func TestGiftService_DeleteMissing(t *testing.T) {
	r := newRegistry(t)
	if err := r.gifts.Delete(context.Background(), "22222222-2222-2222-2222-222222222222"); !errors.Is(err, ErrGiftNotFound) {
		t.Fatalf("err = %v, want ErrGiftNotFound", err)
	}
}

func TestGiftService_ListByEvent(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()
	gl := r.giftlist(t, "Garden")
	r.gift(t, "Rake", "9", gl)
	r.gift(t, "Hose", "25", gl)
	r.gift(t, "Watering can", "14", nil)

	if _, _, err := r.gifts.ListByEvent(ctx, ""); err == nil {
		t.Fatal("missing event_id must fail")
	} else {
		var ve *domain.ValidationError
		if !errors.As(err, &ve) || ve.Fields["event_id"] == "" {
			t.Fatalf("err = %v, want event_id field error", err)
		}
	}

	items, total, err := r.gifts.ListByEvent(ctx, r.event.ID,
		query.Between("price", ptr(dec("10")), ptr(dec("30"))),
		query.Contains("name", ptr("E")),
	)
	if err != nil {
		t.Fatalf("ListByEvent: %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Fatalf("got %d/%d items, want 2", len(items), total)
	}
}
