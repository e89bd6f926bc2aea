package query

import (
	"fmt"
	"reflect"
	"testing"
)

// recorder is a Queryable that logs the calls it receives.
type recorder struct{ calls []string }

func (r *recorder) FilterEquals(f string, v any) Queryable {
	r.calls = append(r.calls, fmt.Sprintf("eq %s %v", f, v))
	return r
}

func (r *recorder) FilterContains(f, s string) Queryable {
	r.calls = append(r.calls, fmt.Sprintf("contains %s %s", f, s))
	return r
}

func (r *recorder) FilterRange(f string, lo, hi any) Queryable {
	r.calls = append(r.calls, fmt.Sprintf("range %s %v %v", f, lo, hi))
	return r
}

func (r *recorder) Range(a, b int) Queryable {
	r.calls = append(r.calls, fmt.Sprintf("window %d %d", a, b))
	return r
}

func TestApply_WindowLast(t *testing.T) {
	// Page option placed first still lands after every predicate.
	s := Build(
		Page(ptr(3), ptr(10)),
		Equals("event_id", ptr("e1")),
		Contains("name", ptr("cup")),
		Between("price", ptr(5), ptr(50)),
	)
	r := &recorder{}
	Apply(r, s)
	want := []string{
		"eq event_id e1",
		"contains name cup",
		"range price 5 50",
		"window 20 29",
	}
	if !reflect.DeepEqual(r.calls, want) {
		t.Fatalf("calls = %v; want %v", r.calls, want)
	}
}

func TestApply_EmptySpecNoCalls(t *testing.T) {
	r := &recorder{}
	Apply(r, Build())
	if len(r.calls) != 0 {
		t.Fatalf("expected no calls, got %v", r.calls)
	}
}
