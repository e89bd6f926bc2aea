// Package seed generates a foreign-key consistent sample graph (users, an
// event, categories, giftlists, default and derived gifts, a wishlist) and
// writes it to the store in dependency order.
package seed

// Pool is an insertion-ordered collection of entities keyed by a natural
// key. Entries registered with Seed came from the store; entries produced
// by GetOrCreate's factory are new and reported by Created.
//
// A Pool is owned by one generation pass and is not safe for concurrent use.
type Pool[T any] struct {
	norm    func(string) string
	index   map[string]int
	entries []poolEntry[T]
}

type poolEntry[T any] struct {
	key     string
	val     T
	created bool
}

// NewPool returns an empty pool. norm normalizes keys before lookup; nil
// uses keys as given.
func NewPool[T any](norm func(string) string) *Pool[T] {
	if norm == nil {
		norm = func(s string) string { return s }
	}
	return &Pool[T]{norm: norm, index: make(map[string]int)}
}

// Seed registers a pre-existing entity. A key already present is left
// untouched.
func (p *Pool[T]) Seed(key string, v T) {
	k := p.norm(key)
	if _, ok := p.index[k]; ok {
		return
	}
	p.index[k] = len(p.entries)
	p.entries = append(p.entries, poolEntry[T]{key: k, val: v})
}

// GetOrCreate returns the entity under key, or calls factory, registers its
// result and returns it with created = true. A factory error is returned
// as is and nothing is registered.
func (p *Pool[T]) GetOrCreate(key string, factory func() (T, error)) (T, bool, error) {
	k := p.norm(key)
	if i, ok := p.index[k]; ok {
		return p.entries[i].val, false, nil
	}
	v, err := factory()
	if err != nil {
		var zero T
		return zero, false, err
	}
	p.index[k] = len(p.entries)
	p.entries = append(p.entries, poolEntry[T]{key: k, val: v, created: true})
	return v, true, nil
}

// Values returns every entity in insertion order.
func (p *Pool[T]) Values() []T {
	out := make([]T, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, e.val)
	}
	return out
}

// Created returns the entities produced by factories, in insertion order.
func (p *Pool[T]) Created() []T {
	out := make([]T, 0, len(p.entries))
	for _, e := range p.entries {
		if e.created {
			out = append(out, e.val)
		}
	}
	return out
}

// Len is the number of registered keys.
func (p *Pool[T]) Len() int { return len(p.entries) }
