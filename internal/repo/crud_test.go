package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/tbourn/go-gift-registry/internal/domain"
	"github.com/tbourn/go-gift-registry/internal/query"
)

func ptr[T any](v T) *T { return &v }

func TestCreate_Error_NoTable(t *testing.T) {
	db := newRepoDB(t, true)
	g := &domain.Gift{ID: uuid.NewString(), Name: "x"}
	if err := Create(context.Background(), db, g); err == nil {
		t.Fatalf("expected error creating without table")
	}
}

func TestGet_SaveDelete(t *testing.T) {
	ctx := context.Background()
	db := newRepoDB(t)
	g := newGift(t, db, "Teapot", "19.99")

	got, err := Get[domain.Gift](ctx, db, g.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Teapot" {
		t.Fatalf("name = %q", got.Name)
	}

	got.Name = "Kettle"
	if err := Save(ctx, db, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	again, _ := Get[domain.Gift](ctx, db, g.ID)
	if again.Name != "Kettle" {
		t.Fatalf("update not persisted: %q", again.Name)
	}

	if err := Delete[domain.Gift](ctx, db, g.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := Get[domain.Gift](ctx, db, g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound after delete, got %v", err)
	}
	if err := Delete[domain.Gift](ctx, db, g.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestCreate_DuplicateAndInvalidReference(t *testing.T) {
	ctx := context.Background()
	db := newRepoDB(t)

	c1, _ := domain.NewCategory("Garden")
	if err := Create(ctx, db, c1); err != nil {
		t.Fatalf("create c1: %v", err)
	}
	c2, _ := domain.NewCategory("GARDEN")
	if err := Create(ctx, db, c2); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}

	missing := uuid.NewString()
	g := &domain.Gift{ID: uuid.NewString(), Name: "Orphan", GiftlistID: &missing}
	if err := Create(ctx, db, g); !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("want ErrInvalidReference, got %v", err)
	}
}

func TestCreate_HookInvariantPassesThrough(t *testing.T) {
	db := newRepoDB(t)
	ev := &domain.Event{ID: uuid.NewString(), URL: "https://example.com"}
	if err := Create(context.Background(), db, ev); !errors.Is(err, domain.ErrEventWithoutUser) {
		t.Fatalf("want ErrEventWithoutUser, got %v", err)
	}
}

func TestList_FiltersCountAndWindow(t *testing.T) {
	ctx := context.Background()
	db := newRepoDB(t)
	fx := newFixture(t, db)

	other := newFixture(t, db)
	for i := 0; i < 12; i++ {
		newGift(t, db, "Mug", "5.00", func(g *domain.Gift) { g.EventID = &fx.Event.ID })
	}
	newGift(t, db, "Plate", "50.00", func(g *domain.Gift) { g.EventID = &fx.Event.ID })
	newGift(t, db, "Mug", "5.00", func(g *domain.Gift) { g.EventID = &other.Event.ID })

	spec := query.Build(
		query.Equals("event_id", &fx.Event.ID),
		query.Contains("name", ptr("mug")),
		query.Page(ptr(2), ptr(5)),
	)
	rows, total, err := List[domain.Gift](ctx, db, GiftColumns, spec)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 12 {
		t.Fatalf("total = %d; want 12", total)
	}
	if len(rows) != 5 {
		t.Fatalf("rows = %d; want 5", len(rows))
	}

	rows, total, err = List[domain.Gift](ctx, db, GiftColumns, query.Build(query.Page(ptr(3), ptr(5)), query.Equals("event_id", &fx.Event.ID)))
	if err != nil || total != 13 || len(rows) != 3 {
		t.Fatalf("page 3: rows=%d total=%d err=%v; want 3/13", len(rows), total, err)
	}
}

func TestList_EmptyResultIsNonNil(t *testing.T) {
	db := newRepoDB(t)
	rows, total, err := List[domain.Category](context.Background(), db, CategoryColumns, query.Build())
	if err != nil || total != 0 || rows == nil {
		t.Fatalf("rows=%v total=%d err=%v", rows, total, err)
	}
}

func TestList_UnknownFieldSurfaces(t *testing.T) {
	db := newRepoDB(t)
	_, _, err := List[domain.User](context.Background(), db, UserColumns, query.Build(query.Equals("password", ptr("x"))))
	if !errors.Is(err, query.ErrUnknownField) {
		t.Fatalf("want ErrUnknownField, got %v", err)
	}
}

func TestCreateBatch(t *testing.T) {
	ctx := context.Background()
	db := newRepoDB(t)
	if err := CreateBatch[domain.Category](ctx, db, nil, 10); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	var cats []domain.Category
	for _, n := range []string{"A", "B", "C"} {
		c, _ := domain.NewCategory(n)
		cats = append(cats, *c)
	}
	if err := CreateBatch(ctx, db, cats, 2); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}
	all, err := ListAllCategories(ctx, db)
	if err != nil || len(all) != 3 {
		t.Fatalf("ListAllCategories = %d, %v", len(all), err)
	}
	c, err := GetCategoryByName(ctx, db, "  b ")
	if err != nil || c.Name != "B" {
		t.Fatalf("GetCategoryByName: %+v %v", c, err)
	}
	if _, err := GetCategoryByName(ctx, db, "zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
