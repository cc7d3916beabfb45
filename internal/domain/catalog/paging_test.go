package catalog

import "testing"

func TestNewPaging_Clamps(t *testing.T) {
	tests := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{1, 20, 1, 20},
		{0, 20, 1, 20},
		{-3, 0, 1, 1},
		{2, 101, 2, 100},
		{5, 100, 5, 100},
	}
	for _, tc := range tests {
		p := NewPaging(tc.page, tc.size)
		if p.Page != tc.wantPage || p.Size != tc.wantSize {
			t.Errorf("NewPaging(%d, %d) = %+v, want {%d %d}", tc.page, tc.size, p, tc.wantPage, tc.wantSize)
		}
	}
}

func TestPaging_Offset(t *testing.T) {
	if got := NewPaging(3, 20).Offset(); got != 40 {
		t.Errorf("Offset = %d, want 40", got)
	}
	if got := NewPaging(1, 50).Offset(); got != 0 {
		t.Errorf("Offset = %d, want 0", got)
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct{ total, size, want int }{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{1001, 50, 21},
		{10, 0, 0},
	}
	for _, tc := range tests {
		if got := TotalPages(tc.total, tc.size); got != tc.want {
			t.Errorf("TotalPages(%d, %d) = %d, want %d", tc.total, tc.size, got, tc.want)
		}
	}
}

func TestMaxSnapshotPage(t *testing.T) {
	tests := []struct{ size, want int }{
		{50, 20},
		{20, 50},
		{30, 33},
		{100, 10},
		{1, 1000},
	}
	for _, tc := range tests {
		if got := MaxSnapshotPage(SnapshotSize, tc.size); got != tc.want {
			t.Errorf("MaxSnapshotPage(%d) = %d, want %d", tc.size, got, tc.want)
		}
	}
}

func TestNewListing(t *testing.T) {
	l := NewListing(nil, 45, 2, 20)
	if l.TotalPages != 3 || !l.HasNext || !l.HasPrev {
		t.Errorf("unexpected %+v", l)
	}
	l = NewListing(nil, 0, 1, 20)
	if l.TotalPages != 0 || l.HasNext || l.HasPrev {
		t.Errorf("unexpected empty listing %+v", l)
	}
}
