package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/http/middleware"
	"github.com/tbourn/go-gift-registry/internal/query"
	"github.com/tbourn/go-gift-registry/internal/seed"
)

const testID = "0b5f2f7e-3c1d-4a8e-9f10-2b3c4d5e6f70"

// ---------- stubs ----------

type stubGifts struct {
	spec    query.FilterSpec
	eventID string
	updated *domain.Gift
	err     error
}

func (s *stubGifts) Get(_ context.Context, id string) (*domain.Gift, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Gift{ID: id, Name: "Kettle"}, nil
}

func (s *stubGifts) Update(_ context.Context, id string, apply func(*domain.Gift)) (*domain.Gift, error) {
	g := &domain.Gift{ID: id, Name: "old", Price: decimal.NewFromInt(1)}
	apply(g)
	s.updated = g
	return g, s.err
}

func (s *stubGifts) Delete(context.Context, string) error { return s.err }

func (s *stubGifts) Create(_ context.Context, g *domain.Gift) (*domain.Gift, error) {
	return g, s.err
}

func (s *stubGifts) ListByEvent(_ context.Context, eventID string, opts ...query.Option) ([]domain.Gift, int64, error) {
	s.eventID = eventID
	s.spec = query.Build(opts...)
	return nil, 45, s.err
}

type stubWishlists struct {
	WishlistService
	ids []string
	err error
}

func (s *stubWishlists) AddGifts(_ context.Context, _, _ string, ids []string) ([]domain.WishlistGift, error) {
	s.ids = ids
	return []domain.WishlistGift{}, s.err
}

type stubSeeder struct{ runs int }

func (s *stubSeeder) Run(context.Context) (*seed.Report, error) {
	s.runs++
	return &seed.Report{Inserted: map[seed.Kind]int{seed.KindUser: 2}}, nil
}

// ---------- helpers ----------

func newEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		domain.Configure(v)
	}
	return gin.New()
}

func serve(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ---------- tests ----------

func TestListGifts_BuildsFilterAndHeaders(t *testing.T) {
	r := newEngine(t)
	gifts := &stubGifts{}
	h := New(Services{Gifts: gifts}, 20)
	r.GET("/gifts", h.ListGifts)

	w := serve(r, http.MethodGet, "/gifts?event_id="+testID+"&page=2&itemsPerPage=500&name=%20&min_price=5.5&is_default=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w.Body.String() != "[]" {
		t.Fatalf("empty list must encode as [], got %s", w.Body.String())
	}
	if gifts.eventID != testID {
		t.Fatalf("event id = %q", gifts.eventID)
	}
	// page size capped at 20: 45 rows → 3 pages
	if got := w.Header().Get(HeaderTotalCount); got != "45" {
		t.Fatalf("total count = %q", got)
	}
	if got := w.Header().Get(HeaderTotalPages); got != "3" {
		t.Fatalf("total pages = %q", got)
	}
	win, ok := gifts.spec.Window()
	if !ok || win.Start != 20 || win.End != 39 {
		t.Fatalf("window = %+v, %v", win, ok)
	}

	// blank name adds nothing; is_default and the lower price bound do
	preds := gifts.spec.Predicates()
	if len(preds) != 2 {
		t.Fatalf("predicates = %+v", preds)
	}
	if preds[0].Field != "is_default" || preds[0].Value != true {
		t.Fatalf("first predicate = %+v", preds[0])
	}
	lo, _ := preds[1].Min.(decimal.Decimal)
	if preds[1].Field != "price" || !lo.Equal(decimal.RequireFromString("5.5")) || preds[1].Max != nil {
		t.Fatalf("price predicate = %+v", preds[1])
	}
}

func TestListGifts_NoWindowWithoutBothInputs(t *testing.T) {
	r := newEngine(t)
	gifts := &stubGifts{}
	r.GET("/gifts", New(Services{Gifts: gifts}, 0).ListGifts)

	w := serve(r, http.MethodGet, "/gifts?event_id="+testID+"&page=3", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if _, ok := gifts.spec.Window(); ok {
		t.Fatalf("page alone must not set a window")
	}
	if w.Header().Get(HeaderTotalPages) != "" {
		t.Fatalf("unpaginated list must not report pages")
	}
}

func TestListGifts_InvalidInputs(t *testing.T) {
	r := newEngine(t)
	r.GET("/gifts", New(Services{Gifts: &stubGifts{}}, 0).ListGifts)

	cases := []struct {
		path  string
		field string
	}{
		{"/gifts", "event_id"},
		{"/gifts?event_id=nope", "event_id"},
		{"/gifts?event_id=" + testID + "&page=0", "page"},
		{"/gifts?event_id=" + testID + "&max_price=x", "max_price"},
	}
	for _, tc := range cases {
		w := serve(r, http.MethodGet, tc.path, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status=%d", tc.path, w.Code)
		}
		var er ErrorResponse
		_ = json.Unmarshal(w.Body.Bytes(), &er)
		if er.Fields[tc.field] == "" {
			t.Fatalf("%s: missing field %q in %+v", tc.path, tc.field, er)
		}
	}
}

func TestUpdateGift_ReplacesFields(t *testing.T) {
	r := newEngine(t)
	gifts := &stubGifts{}
	r.PUT("/gifts/:id", New(Services{Gifts: gifts}, 0).UpdateGift)

	w := serve(r, http.MethodPut, "/gifts/"+testID, map[string]any{
		"name": "Toaster", "price": "12.30", "giftlist_id": "  ",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	g := gifts.updated
	if g.ID != testID || g.Name != "Toaster" || !g.Price.Equal(decimal.RequireFromString("12.3")) {
		t.Fatalf("updated = %+v", g)
	}
	if g.GiftlistID != nil {
		t.Fatalf("blank reference must clear, got %q", *g.GiftlistID)
	}
}

func TestGetGift_NotFoundAndBadID(t *testing.T) {
	r := newEngine(t)
	r.GET("/gifts/:id", New(Services{Gifts: &stubGifts{err: errors.New("db down")}}, 0).GetGift)

	if w := serve(r, http.MethodGet, "/gifts/abc", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d", w.Code)
	}
	if w := serve(r, http.MethodGet, "/gifts/"+testID, nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("store failure status=%d", w.Code)
	}
}

func TestAddWishlistGifts_Binding(t *testing.T) {
	r := newEngine(t)
	wl := &stubWishlists{}
	r.POST("/wishlists/:id/gifts", New(Services{Wishlists: wl}, 0).AddWishlistGifts)

	w := serve(r, http.MethodPost, "/wishlists/"+testID+"/gifts", map[string]any{"giftIds": []string{}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty ids status=%d", w.Code)
	}
	w = serve(r, http.MethodPost, "/wishlists/"+testID+"/gifts", map[string]any{"giftIds": []string{"not-a-uuid"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad id status=%d", w.Code)
	}
	w = serve(r, http.MethodPost, "/wishlists/"+testID+"/gifts", map[string]any{"giftIds": []string{testID, ""}})
	if w.Code != http.StatusCreated || len(wl.ids) != 2 {
		t.Fatalf("status=%d ids=%v", w.Code, wl.ids)
	}
}

func TestRunSeed_WithoutKeyAlwaysRuns(t *testing.T) {
	r := newEngine(t)
	s := &stubSeeder{}
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))
	r.POST("/seed", New(Services{Seeder: s}, 0).RunSeed)

	for i := 0; i < 2; i++ {
		w := serve(r, http.MethodPost, "/seed", nil)
		if w.Code != http.StatusCreated {
			t.Fatalf("status=%d", w.Code)
		}
		var rep map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &rep); err != nil || rep["inserted"] == nil {
			t.Fatalf("report = %s (%v)", w.Body.String(), err)
		}
	}
	if s.runs != 2 {
		t.Fatalf("runs = %d", s.runs)
	}
}
