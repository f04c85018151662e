package document

import "testing"

// TestParseRange tests A1 reference parsing across single cells,
// rectangles, sheet qualifiers and multi-area selections.
func TestParseRange(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		sheet   string
		areas   []Area
		wantErr bool
	}{
		{
			name:  "single cell",
			ref:   "B3",
			areas: []Area{{StartCol: 2, StartRow: 3, EndCol: 2, EndRow: 3}},
		},
		{
			name:  "rectangle",
			ref:   "A1:C10",
			areas: []Area{{StartCol: 1, StartRow: 1, EndCol: 3, EndRow: 10}},
		},
		{
			name:  "absolute markers",
			ref:   "$A$1:$C$10",
			areas: []Area{{StartCol: 1, StartRow: 1, EndCol: 3, EndRow: 10}},
		},
		{
			name:  "sheet qualified",
			ref:   "Sales!A1:B2",
			sheet: "Sales",
			areas: []Area{{StartCol: 1, StartRow: 1, EndCol: 2, EndRow: 2}},
		},
		{
			name:  "quoted sheet with space",
			ref:   "'Q3 Sales'!D4",
			sheet: "Q3 Sales",
			areas: []Area{{StartCol: 4, StartRow: 4, EndCol: 4, EndRow: 4}},
		},
		{
			name:  "multi area",
			ref:   "A1:B2,D4:E5",
			areas: []Area{
				{StartCol: 1, StartRow: 1, EndCol: 2, EndRow: 2},
				{StartCol: 4, StartRow: 4, EndCol: 5, EndRow: 5},
			},
		},
		{
			name:  "double letter column",
			ref:   "AA1:AB2",
			areas: []Area{{StartCol: 27, StartRow: 1, EndCol: 28, EndRow: 2}},
		},
		{name: "empty", ref: "", wantErr: true},
		{name: "whitespace only", ref: "   ", wantErr: true},
		{name: "inverted columns", ref: "C1:A10", wantErr: true},
		{name: "inverted rows", ref: "A10:C1", wantErr: true},
		{name: "row zero", ref: "A0", wantErr: true},
		{name: "not a range", ref: "Orders", wantErr: true},
		{name: "three corners", ref: "A1:B2:C3", wantErr: true},
		{name: "trailing comma", ref: "A1:B2,", wantErr: true},
		{name: "empty sheet qualifier", ref: "!A1", wantErr: true},
		{name: "four letter column", ref: "AAAA1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(tt.ref)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRange(%q) = %+v, want error", tt.ref, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRange(%q) failed: %v", tt.ref, err)
			}
			if got.Sheet != tt.sheet {
				t.Errorf("sheet = %q, want %q", got.Sheet, tt.sheet)
			}
			if len(got.Areas) != len(tt.areas) {
				t.Fatalf("areas = %d, want %d", len(got.Areas), len(tt.areas))
			}
			for i, want := range tt.areas {
				if got.Areas[i] != want {
					t.Errorf("area %d = %+v, want %+v", i, got.Areas[i], want)
				}
			}
		})
	}
}

// TestRangeRefContiguity tests the single-rectangle predicate and the
// cell count across areas.
func TestRangeRefContiguity(t *testing.T) {
	single, err := ParseRange("A1:B5")
	if err != nil {
		t.Fatalf("ParseRange failed: %v", err)
	}
	if !single.Contiguous() {
		t.Error("A1:B5 reported non-contiguous")
	}
	if single.Cells() != 10 {
		t.Errorf("A1:B5 cells = %d, want 10", single.Cells())
	}

	multi, err := ParseRange("A1:B2,D1:D4")
	if err != nil {
		t.Fatalf("ParseRange failed: %v", err)
	}
	if multi.Contiguous() {
		t.Error("multi-area reported contiguous")
	}
	if multi.Cells() != 8 {
		t.Errorf("multi-area cells = %d, want 8", multi.Cells())
	}
	if _, ok := multi.Bounds(); ok {
		t.Error("Bounds returned an area for a multi-area reference")
	}
}

// TestAreaOverlaps tests rectangle intersection.
func TestAreaOverlaps(t *testing.T) {
	base := Area{StartCol: 2, StartRow: 2, EndCol: 4, EndRow: 10}
	tests := []struct {
		name string
		b    Area
		want bool
	}{
		{"identical", base, true},
		{"corner touch", Area{StartCol: 4, StartRow: 10, EndCol: 6, EndRow: 12}, true},
		{"contained", Area{StartCol: 3, StartRow: 3, EndCol: 3, EndRow: 3}, true},
		{"right of", Area{StartCol: 5, StartRow: 2, EndCol: 7, EndRow: 10}, false},
		{"below", Area{StartCol: 2, StartRow: 11, EndCol: 4, EndRow: 12}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestColumnNames tests the index/name round trip at the letter
// rollover boundaries.
func TestColumnNames(t *testing.T) {
	cases := map[string]int{"A": 1, "Z": 26, "AA": 27, "AZ": 52, "BA": 53, "ZZ": 702, "AAA": 703}
	for name, index := range cases {
		if got := ColumnIndex(name); got != index {
			t.Errorf("ColumnIndex(%q) = %d, want %d", name, got, index)
		}
		if got := ColumnName(index); got != name {
			t.Errorf("ColumnName(%d) = %q, want %q", index, got, name)
		}
	}
}

// TestLooksLikeCellRef tests the defined-name collision check.
func TestLooksLikeCellRef(t *testing.T) {
	collides := []string{"A1", "ZZ99", "$B$2", "R1C1", "RC", "r2c3"}
	for _, name := range collides {
		if !LooksLikeCellRef(name) {
			t.Errorf("LooksLikeCellRef(%q) = false, want true", name)
		}
	}
	free := []string{"TaxRate", "Orders", "Q3_Total", "A1B"}
	for _, name := range free {
		if LooksLikeCellRef(name) {
			t.Errorf("LooksLikeCellRef(%q) = true, want false", name)
		}
	}
}
