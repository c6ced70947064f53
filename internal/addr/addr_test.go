package addr

import (
	"errors"
	"testing"
)

func TestColumnNameEncoding(t *testing.T) {
	cases := map[int]string{
		0:     "A",
		25:    "Z",
		26:    "AA",
		27:    "AB",
		51:    "AZ",
		52:    "BA",
		701:   "ZZ",
		702:   "AAA",
		16383: "XFD",
	}
	for index, want := range cases {
		got, err := ColumnName(index)
		if err != nil {
			t.Fatalf("ColumnName(%d): %v", index, err)
		}
		if got != want {
			t.Fatalf("ColumnName(%d) = %q, want %q", index, got, want)
		}
	}
}

func TestColumnRoundTrip(t *testing.T) {
	for n := 0; n <= 16383; n++ {
		name, err := ColumnName(n)
		if err != nil {
			t.Fatalf("ColumnName(%d): %v", n, err)
		}
		back, err := ColumnIndex(name)
		if err != nil {
			t.Fatalf("ColumnIndex(%q): %v", name, err)
		}
		if back != n {
			t.Fatalf("round trip %d -> %q -> %d", n, name, back)
		}
	}
}

func TestColumnIndexRejectsNonLetters(t *testing.T) {
	for _, input := range []string{"", "A1", "$A", "A B", "-"} {
		if _, err := ColumnIndex(input); !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("ColumnIndex(%q): expected ErrInvalidAddress, got %v", input, err)
		}
	}
}

func TestParseRange(t *testing.T) {
	cases := []struct {
		input string
		want  Range
	}{
		{"A1", Range{Anchor: Cell{0, 0}, Rows: 1, Cols: 1}},
		{"B5", Range{Anchor: Cell{1, 4}, Rows: 1, Cols: 1}},
		{"A1:D10", Range{Anchor: Cell{0, 0}, Rows: 10, Cols: 4}},
		{"Sheet2!A1:B5", Range{Sheet: "Sheet2", Anchor: Cell{0, 0}, Rows: 5, Cols: 2}},
		{"'My Sheet'!C3", Range{Sheet: "My Sheet", Anchor: Cell{2, 2}, Rows: 1, Cols: 1}},
		{"$A$1:$B$2", Range{Anchor: Cell{0, 0}, Rows: 2, Cols: 2}},
	}
	for _, tc := range cases {
		got, err := ParseRange(tc.input)
		if err != nil {
			t.Fatalf("ParseRange(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseRange(%q) = %+v, want %+v", tc.input, got, tc.want)
		}
	}
}

func TestParseRangeNormalizesReversed(t *testing.T) {
	got, err := ParseRange("D10:A1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := Range{Anchor: Cell{0, 0}, Rows: 10, Cols: 4}
	if got != want {
		t.Fatalf("expected normalized range %+v, got %+v", want, got)
	}
}

func TestParseRangeRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "1A", "A", "A0", "A1:B", "!A1", "'Open!A1", "A1:B2:C3x"} {
		if _, err := ParseRange(input); !errors.Is(err, ErrInvalidAddress) {
			t.Fatalf("ParseRange(%q): expected ErrInvalidAddress, got %v", input, err)
		}
	}
}

func TestAbsoluteMarkers(t *testing.T) {
	cases := map[string]Markers{
		"B5":          {},
		"$B5":         {ColAbsolute: true},
		"B$5":         {RowAbsolute: true},
		"$B$5":        {ColAbsolute: true, RowAbsolute: true},
		"Sheet2!$A1":  {ColAbsolute: true},
		"'A B'!C$9":   {RowAbsolute: true},
	}
	for token, want := range cases {
		if got := AbsoluteMarkers(token); got != want {
			t.Fatalf("AbsoluteMarkers(%q) = %+v, want %+v", token, got, want)
		}
	}
}

func TestRangeString(t *testing.T) {
	rng := Range{Sheet: "My Sheet", Anchor: Cell{Col: 24, Row: 4}, Rows: 3, Cols: 2}
	if got := rng.String(); got != "'My Sheet'!Y5:Z7" {
		t.Fatalf("unexpected render %q", got)
	}
	cell := Range{Anchor: Cell{Col: 26, Row: 0}, Rows: 1, Cols: 1}
	if got := cell.String(); got != "AA1" {
		t.Fatalf("unexpected render %q", got)
	}
}

func TestRangeContains(t *testing.T) {
	rng := Range{Anchor: Cell{1, 1}, Rows: 2, Cols: 2}
	if !rng.Contains(Cell{2, 2}) || rng.Contains(Cell{3, 1}) || rng.Contains(Cell{0, 1}) {
		t.Fatalf("containment check failed")
	}
}
