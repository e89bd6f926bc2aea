package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestIdempotency_SchemaAndUniqueness(t *testing.T) {
	db := newDomainDB(t)
	m := db.Migrator()

	if !m.HasTable(&Idempotency{}) {
		t.Fatalf("expected table %q to exist", Idempotency{}.TableName())
	}
	if !m.HasIndex(&Idempotency{}, "ux_idem_scope_key") {
		t.Fatalf("expected composite index ux_idem_scope_key to exist")
	}

	now := time.Now().UTC()
	rec := &Idempotency{
		ID:        uuid.NewString(),
		Scope:     "seed",
		Key:       "k1",
		Status:    201,
		Body:      []byte(`{"ok":true}`),
		ExpiresAt: now.Add(time.Hour),
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("insert valid: %v", err)
	}

	var got Idempotency
	if err := db.First(&got, "id = ?", rec.ID).Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.Scope != "seed" || got.Key != "k1" || got.Status != 201 || string(got.Body) != `{"ok":true}` {
		t.Fatalf("unexpected row: %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt should be set by autoCreateTime")
	}

	// Same key in the same scope is rejected.
	dup := &Idempotency{ID: uuid.NewString(), Scope: "seed", Key: "k1", Status: 201, Body: []byte("{}"), ExpiresAt: now}
	if err := db.Create(dup).Error; err == nil {
		t.Fatalf("expected UNIQUE constraint violation on (scope, key)")
	}

	// Same key in another scope is fine.
	other := &Idempotency{ID: uuid.NewString(), Scope: "other", Key: "k1", Status: 200, Body: []byte("{}"), ExpiresAt: now}
	if err := db.Create(other).Error; err != nil {
		t.Fatalf("insert other scope: %v", err)
	}
}

func TestIdempotency_Expired(t *testing.T) {
	now := time.Now()
	rec := Idempotency{ExpiresAt: now.Add(time.Minute)}
	if rec.Expired(now) {
		t.Fatalf("record should be live before ExpiresAt")
	}
	if !rec.Expired(now.Add(time.Minute)) {
		t.Fatalf("record should expire at ExpiresAt")
	}
}
