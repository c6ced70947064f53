package formula

import "testing"

func TestDistributeAnchorIdentity(t *testing.T) {
	grid, err := Distribute("=SUM($A$1:B2)*3", 4, 3)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if grid[0][0] != "=SUM($A$1:B2)*3" {
		t.Fatalf("anchor formula changed: %q", grid[0][0])
	}
	if len(grid) != 4 || len(grid[0]) != 3 {
		t.Fatalf("unexpected grid shape %dx%d", len(grid), len(grid[0]))
	}
}

func TestDistributeSingleCell(t *testing.T) {
	grid, err := Distribute("=A1+B1", 1, 1)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if len(grid) != 1 || len(grid[0]) != 1 || grid[0][0] != "=A1+B1" {
		t.Fatalf("single-cell target must return the formula untouched, got %+v", grid)
	}
}

func TestDistributeMixedMarkersDown(t *testing.T) {
	grid, err := Distribute("=B$5+C5", 3, 1)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	want := []string{"=B$5+C5", "=B$5+C6", "=B$5+C7"}
	for r, expect := range want {
		if grid[r][0] != expect {
			t.Fatalf("row %d: got %q, want %q", r, grid[r][0], expect)
		}
	}
}

func TestDistributeAbsoluteInvariance(t *testing.T) {
	grid, err := Distribute("=$A1+B$2+$C$3", 3, 3)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	want := [][]string{
		{"=$A1+B$2+$C$3", "=$A1+C$2+$C$3", "=$A1+D$2+$C$3"},
		{"=$A2+B$2+$C$3", "=$A2+C$2+$C$3", "=$A2+D$2+$C$3"},
		{"=$A3+B$2+$C$3", "=$A3+C$2+$C$3", "=$A3+D$2+$C$3"},
	}
	for r := range want {
		for c := range want[r] {
			if grid[r][c] != want[r][c] {
				t.Fatalf("cell (%d,%d): got %q, want %q", r, c, grid[r][c], want[r][c])
			}
		}
	}
}

func TestDistributeMultiLetterCrossing(t *testing.T) {
	grid, err := Distribute("=Y1", 1, 4)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	want := []string{"=Y1", "=Z1", "=AA1", "=AB1"}
	for c, expect := range want {
		if grid[0][c] != expect {
			t.Fatalf("col %d: got %q, want %q", c, grid[0][c], expect)
		}
	}
}

func TestDistributeNoReferences(t *testing.T) {
	grid, err := Distribute(`=TODAY()`, 2, 2)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	for r := range grid {
		for c := range grid[r] {
			if grid[r][c] != "=TODAY()" {
				t.Fatalf("cell (%d,%d) mutated: %q", r, c, grid[r][c])
			}
		}
	}
}

func TestDistributeSheetQualifierUntouched(t *testing.T) {
	grid, err := Distribute("=Sheet2!A1+'My Sheet'!$B$2", 2, 2)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if grid[1][1] != "=Sheet2!B2+'My Sheet'!$B$2" {
		t.Fatalf("unexpected rewrite: %q", grid[1][1])
	}
}

func TestTokenizeSkipsStringsAndFunctions(t *testing.T) {
	tokens := Tokenize(`=IF(LOG10(B2)>1,"see A1",C3)`)
	if len(tokens) != 2 {
		t.Fatalf("expected 2 tokens, got %d: %+v", len(tokens), tokens)
	}
	if tokens[0].Col != "B" || tokens[0].Row != 2 {
		t.Fatalf("unexpected first token %+v", tokens[0])
	}
	if tokens[1].Col != "C" || tokens[1].Row != 3 {
		t.Fatalf("unexpected second token %+v", tokens[1])
	}
}

func TestShift(t *testing.T) {
	out, err := Shift("=A1+$B$2", 2, 1)
	if err != nil {
		t.Fatalf("shift: %v", err)
	}
	if out != "=B3+$B$2" {
		t.Fatalf("unexpected shift result %q", out)
	}
}

func TestDistributeRejectsInvalidExtent(t *testing.T) {
	if _, err := Distribute("=A1", 0, 3); err == nil {
		t.Fatalf("expected error for zero-row extent")
	}
}
