package pagination

import "testing"

func TestNormalizeDefaults(t *testing.T) {
	p := Params{}.Normalize()
	if p.Page != 1 {
		t.Fatalf("expected page 1, got %d", p.Page)
	}
	if p.Limit != DefaultLimit {
		t.Fatalf("expected default limit, got %d", p.Limit)
	}
}

func TestNormalizeCapsLimit(t *testing.T) {
	p := Params{Page: 3, Limit: 10_000}.Normalize()
	if p.Limit != MaxLimit {
		t.Fatalf("expected max limit, got %d", p.Limit)
	}
	if p.Page != 3 {
		t.Fatalf("page should be untouched, got %d", p.Page)
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 1, Limit: 50}).Offset(); got != 0 {
		t.Fatalf("expected offset 0, got %d", got)
	}
	if got := (Params{Page: 4, Limit: 25}).Offset(); got != 75 {
		t.Fatalf("expected offset 75, got %d", got)
	}
	if got := (Params{Page: -2, Limit: 50}).Offset(); got != 0 {
		t.Fatalf("negative page should normalize, got %d", got)
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 50, 0},
		{1, 50, 1},
		{50, 50, 1},
		{51, 50, 2},
		{150, 50, 3},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := PageCount(tt.total, tt.limit); got != tt.want {
			t.Fatalf("PageCount(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}
