// This file holds the generic persistence helpers shared by every entity.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - Missing rows yield ErrNotFound (gorm.ErrRecordNotFound).
//   - Unique and foreign-key violations are wrapped as ErrDuplicate and
//     ErrInvalidReference.
//   - Any other DB error is propagated unchanged.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/go-gift-registry/internal/query"
)

// defaultOrder keeps listings and pagination windows stable.
const defaultOrder = "created_at ASC, id ASC"

// Create inserts rec.
func Create[T any](ctx context.Context, db *gorm.DB, rec *T) error {
	return classify(db.WithContext(ctx).Create(rec).Error)
}

// CreateBatch inserts recs in chunks of size. Empty input is a no-op.
func CreateBatch[T any](ctx context.Context, db *gorm.DB, recs []T, size int) error {
	if len(recs) == 0 {
		return nil
	}
	return classify(db.WithContext(ctx).CreateInBatches(recs, size).Error)
}

// Get fetches a row by primary key, or ErrNotFound.
func Get[T any](ctx context.Context, db *gorm.DB, id string) (*T, error) {
	var rec T
	err := db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Save writes every column of a previously loaded rec.
func Save[T any](ctx context.Context, db *gorm.DB, rec *T) error {
	return classify(db.WithContext(ctx).Save(rec).Error)
}

// Delete removes the row with the given id, or returns ErrNotFound.
func Delete[T any](ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns the rows of T matching spec (window included) and the total
// number of matches ignoring the window. Rows are ordered by creation time.
func List[T any](ctx context.Context, db *gorm.DB, cols query.Columns, spec query.FilterSpec) ([]T, int64, error) {
	base := func() *gorm.DB { return db.WithContext(ctx).Model(new(T)) }
	return listFrom[T](base, cols, spec, defaultOrder, "")
}

// listFrom runs the count and the windowed select against two fresh
// statements produced by base. sel, when set, only applies to the select.
func listFrom[T any](base func() *gorm.DB, cols query.Columns, spec query.FilterSpec, order, sel string) ([]T, int64, error) {
	var total int64
	countQ := query.Apply(query.NewGormQuery(base(), cols), spec.WithoutWindow())
	if err := query.Unwrap(countQ).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := make([]T, 0)
	if total == 0 {
		return rows, 0, nil
	}
	stmt := base().Order(order)
	if sel != "" {
		stmt = stmt.Select(sel)
	}
	listQ := query.Apply(query.NewGormQuery(stmt, cols), spec)
	if err := query.Unwrap(listQ).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
