package query

// Queryable is a store request under construction. Each method returns the
// narrowed request; implementations must not execute anything.
type Queryable interface {
	FilterEquals(field string, value any) Queryable
	FilterContains(field string, substring string) Queryable
	FilterRange(field string, min, max any) Queryable
	Range(start, endInclusive int) Queryable
}

// Apply narrows q by every predicate of spec, then applies the window.
// It adds no behavior of its own: store errors surface when the caller
// executes the returned request.
func Apply(q Queryable, spec FilterSpec) Queryable {
	for _, p := range spec.preds {
		switch p.Mode {
		case ModeEquals:
			q = q.FilterEquals(p.Field, p.Value)
		case ModeContains:
			sub, _ := p.Value.(string)
			q = q.FilterContains(p.Field, sub)
		case ModeRange:
			q = q.FilterRange(p.Field, p.Min, p.Max)
		}
	}
	if w, ok := spec.Window(); ok {
		q = q.Range(w.Start, w.End)
	}
	return q
}
