package utils

import "testing"

func TestClampPageSize(t *testing.T) {
	cases := []struct{ n, max, want int }{
		{30, 100, 30},
		{100, 100, 100},
		{500, 100, 100},
		{500, 0, 500},
		{7, -1, 7},
	}
	for _, tc := range cases {
		if got := ClampPageSize(tc.n, tc.max); got != tc.want {
			t.Errorf("ClampPageSize(%d, %d) = %d; want %d", tc.n, tc.max, got, tc.want)
		}
	}
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total int64
		size  int
		want  int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{555, 30, 19},
		{5, 0, 0},
		{5, -3, 0},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.size); got != tc.want {
			t.Errorf("TotalPages(%d, %d) = %d; want %d", tc.total, tc.size, got, tc.want)
		}
	}
}
