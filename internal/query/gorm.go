package query

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrUnknownField is recorded on the statement when a predicate names a
// field outside the column allow-list.
var ErrUnknownField = errors.New("query: unknown filter field")

// Columns maps public filter field names to SQL column expressions.
type Columns map[string]string

// GormQuery is a Queryable over a *gorm.DB statement. Only fields listed in
// its Columns can be filtered. Narrowed values share the statement they were
// derived from, so build one chain per execution.
type GormQuery struct {
	db   *gorm.DB
	cols Columns
}

// NewGormQuery wraps db (typically db.WithContext(ctx).Model(&T{})).
func NewGormQuery(db *gorm.DB, cols Columns) *GormQuery {
	return &GormQuery{db: db, cols: cols}
}

// DB returns the underlying statement for execution.
func (q *GormQuery) DB() *gorm.DB { return q.db }

// Unwrap returns the *gorm.DB behind a Queryable produced by Apply on a
// GormQuery, or nil for other implementations.
func Unwrap(q Queryable) *gorm.DB {
	if g, ok := q.(*GormQuery); ok {
		return g.db
	}
	return nil
}

func (q *GormQuery) with(db *gorm.DB) *GormQuery {
	return &GormQuery{db: db, cols: q.cols}
}

func (q *GormQuery) column(field string) (string, bool) {
	col, ok := q.cols[field]
	if !ok {
		_ = q.db.AddError(fmt.Errorf("%w: %q", ErrUnknownField, field))
	}
	return col, ok
}

// FilterEquals adds col = value.
func (q *GormQuery) FilterEquals(field string, value any) Queryable {
	col, ok := q.column(field)
	if !ok {
		return q
	}
	return q.with(q.db.Where(col+" = ?", value))
}

// FilterContains adds a case-insensitive, unanchored substring match with
// LIKE wildcards in substring matched literally. Postgres compares with
// ILIKE; SQLite folds both sides through FoldFunc.
func (q *GormQuery) FilterContains(field, substring string) Queryable {
	col, ok := q.column(field)
	if !ok {
		return q
	}
	if q.db.Dialector != nil && q.db.Dialector.Name() == "postgres" {
		return q.with(q.db.Where(col+" ILIKE ? ESCAPE '\\'", "%"+escapeLike(substring)+"%"))
	}
	pattern := "%" + escapeLike(Fold(substring)) + "%"
	return q.with(q.db.Where(FoldFunc+"("+col+") LIKE ? ESCAPE '\\'", pattern))
}

// FilterRange adds col >= min and col <= max for each present bound.
func (q *GormQuery) FilterRange(field string, lo, hi any) Queryable {
	col, ok := q.column(field)
	if !ok {
		return q
	}
	db := q.db
	if lo != nil {
		db = db.Where(col+" >= ?", lo)
	}
	if hi != nil {
		db = db.Where(col+" <= ?", hi)
	}
	return q.with(db)
}

// Range limits the result to rows [start, endInclusive] of the ordered set.
func (q *GormQuery) Range(start, endInclusive int) Queryable {
	if start < 0 || endInclusive < start {
		return q.with(q.db.Limit(0))
	}
	return q.with(q.db.Offset(start).Limit(endInclusive - start + 1))
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
