// Package query composes declarative list filters. A FilterSpec is built
// from optional inputs (absent inputs contribute nothing), then applied to
// a store request through the Queryable interface. Predicates are ANDed and
// order-independent; the pagination window is always applied last.
package query

import "math"

// Mode is the kind of comparison a predicate performs.
type Mode int

const (
	// ModeEquals matches field == value.
	ModeEquals Mode = iota + 1
	// ModeContains matches a case-insensitive, unanchored substring.
	ModeContains
	// ModeRange matches min <= field <= max; either bound may be absent.
	ModeRange
)

func (m Mode) String() string {
	switch m {
	case ModeEquals:
		return "equals"
	case ModeContains:
		return "contains"
	case ModeRange:
		return "range"
	default:
		return "unknown"
	}
}

// FieldPredicate is one condition on one field. Value is used by equals and
// contains; Min and Max by range (nil = unbounded).
type FieldPredicate struct {
	Field string
	Mode  Mode
	Value any
	Min   any
	Max   any
}

// Window is an inclusive row range [Start, End], zero-based.
type Window struct {
	Start int
	End   int
}

// Size is the number of rows the window spans.
func (w Window) Size() int { return w.End - w.Start + 1 }

// PageWindow maps a 1-based page and a page size to [(page-1)*size, page*size-1].
// It reports false when either input is below 1. Pages whose offset would
// overflow int map to the last representable window, which selects no rows.
func PageWindow(page, size int) (Window, bool) {
	if page < 1 || size < 1 {
		return Window{}, false
	}
	if page-1 > (math.MaxInt-size+1)/size {
		return Window{Start: math.MaxInt - size + 1, End: math.MaxInt}, true
	}
	start := (page - 1) * size
	return Window{Start: start, End: start + size - 1}, true
}

// FilterSpec is an immutable set of predicates plus an optional window.
// The zero value matches everything.
type FilterSpec struct {
	preds  []FieldPredicate
	window *Window
}

// Predicates returns a copy of the predicates in build order.
func (s FilterSpec) Predicates() []FieldPredicate {
	out := make([]FieldPredicate, len(s.preds))
	copy(out, s.preds)
	return out
}

// Window returns the pagination window, if any.
func (s FilterSpec) Window() (Window, bool) {
	if s.window == nil {
		return Window{}, false
	}
	return *s.window, true
}

// WithoutWindow returns the same predicates with no window, for counting.
func (s FilterSpec) WithoutWindow() FilterSpec {
	return FilterSpec{preds: s.preds}
}

// Option contributes at most one predicate or the window to a FilterSpec.
type Option func(*FilterSpec)

// Build assembles a FilterSpec from opts. It never fails: options whose
// input is absent contribute nothing.
func Build(opts ...Option) FilterSpec {
	var s FilterSpec
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	return s
}

func (s *FilterSpec) add(p FieldPredicate) {
	s.preds = append(s.preds, p)
}

// Equals filters field == *v when v is non-nil.
func Equals[T any](field string, v *T) Option {
	return func(s *FilterSpec) {
		if v == nil {
			return
		}
		s.add(FieldPredicate{Field: field, Mode: ModeEquals, Value: *v})
	}
}

// Contains filters on a case-insensitive substring when v is non-nil and
// not blank.
func Contains(field string, v *string) Option {
	return func(s *FilterSpec) {
		if v == nil || isBlank(*v) {
			return
		}
		s.add(FieldPredicate{Field: field, Mode: ModeContains, Value: *v})
	}
}

// Between filters min <= field <= max. Each bound is optional; with both
// absent nothing is added.
func Between[T any](field string, lo, hi *T) Option {
	return func(s *FilterSpec) {
		if lo == nil && hi == nil {
			return
		}
		p := FieldPredicate{Field: field, Mode: ModeRange}
		if lo != nil {
			p.Min = *lo
		}
		if hi != nil {
			p.Max = *hi
		}
		s.add(p)
	}
}

// Page sets the pagination window. Both page and size must be present and
// at least 1; otherwise no window applies.
func Page(page, size *int) Option {
	return func(s *FilterSpec) {
		if page == nil || size == nil {
			return
		}
		if w, ok := PageWindow(*page, *size); ok {
			s.window = &w
		}
	}
}

func isBlank(v string) bool {
	for _, r := range v {
		switch r {
		case ' ', '\t', '\n', '\r', '\v', '\f':
		default:
			return false
		}
	}
	return true
}
