package calendar

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, defaultPageSize},
		{-3, 5, 1, 5},
		{2, 1000, 2, maxPageSize},
		{4, 10, 4, 10},
	}
	for _, tc := range cases {
		p, s := Normalize(tc.page, tc.size)
		if p != tc.wantPage || s != tc.wantSize {
			t.Fatalf("Normalize(%d,%d) = %d,%d; want %d,%d", tc.page, tc.size, p, s, tc.wantPage, tc.wantSize)
		}
	}
	if got := Offset(3, 10); got != 20 {
		t.Fatalf("Offset(3,10) = %d", got)
	}
	if got := Offset(0, 0); got != 0 {
		t.Fatalf("Offset(0,0) = %d", got)
	}
}

func TestNewPage(t *testing.T) {
	p := NewPage([]int{3, 4}, 2, 2, 5)
	if !p.HasNext || !p.HasPrev || p.Total != 5 {
		t.Fatalf("unexpected meta: %+v", p)
	}

	last := NewPage([]int{5}, 3, 2, 5)
	if last.HasNext || !last.HasPrev {
		t.Fatalf("last page = %+v", last)
	}

	beyond := NewPage([]int{}, 10, 2, 5)
	if beyond.HasNext || len(beyond.Items) != 0 {
		t.Fatalf("beyond range = %+v", beyond)
	}

	first := NewPage([]int{1, 2}, 0, 0, 2)
	if first.Page != 1 || first.PageSize != defaultPageSize || first.HasPrev || first.HasNext {
		t.Fatalf("defaults = %+v", first)
	}
}
