// Package formula rewrites cell references when one formula is distributed
// across a destination range. The pipeline is tokenize -> shift -> reassemble:
// references are located with their per-axis $ markers, relative axes are
// shifted by the target cell's offset from the anchor, and everything that is
// not a reference is copied through verbatim.
package formula

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sheetwright/engine/internal/addr"
)

// Token is one cell-reference occurrence inside a formula string.
type Token struct {
	Start int    // byte offset of the reference (including sheet qualifier)
	End   int    // byte offset one past the reference
	Sheet string // qualifier verbatim, including the trailing '!', or ""
	Col   string // column letters as written
	Row   int    // 1-based row as written
	addr.Markers
}

// Tokenize locates the cell references in a formula. References inside
// double-quoted string literals are ignored, as are identifiers that are part
// of a longer word or are immediately called like a function (LOG10(...)).
func Tokenize(f string) []Token {
	var tokens []Token
	quoted := stringSpans(f)
	for _, m := range refPattern.FindAllStringSubmatchIndex(f, -1) {
		start, end := m[0], m[1]
		if inSpans(quoted, start) {
			continue
		}
		if start > 0 && isWordByte(f[start-1]) {
			continue
		}
		if end < len(f) && (f[end] == '(' || isWordByte(f[end])) {
			continue
		}
		tok := Token{Start: start, End: end}
		if m[2] >= 0 {
			tok.Sheet = f[m[2]:m[3]]
		}
		tok.ColAbsolute = m[5] > m[4]
		tok.Col = f[m[6]:m[7]]
		tok.RowAbsolute = m[9] > m[8]
		tok.Row, _ = strconv.Atoi(f[m[10]:m[11]])
		tokens = append(tokens, tok)
	}
	return tokens
}

// Distribute produces the rows x cols grid of formulas for a multi-cell
// target. Cell (0,0) is the anchor formula unchanged; cell (r,c) has every
// relative reference shifted by +c columns and +r rows. Absolute axes never
// move, and formulas with no references replicate unchanged.
func Distribute(f string, rows, cols int) ([][]string, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("invalid distribution extent %dx%d", rows, cols)
	}
	if rows == 1 && cols == 1 {
		return [][]string{{f}}, nil
	}
	tokens := Tokenize(f)
	grid := make([][]string, rows)
	for r := 0; r < rows; r++ {
		grid[r] = make([]string, cols)
		for c := 0; c < cols; c++ {
			if r == 0 && c == 0 {
				grid[0][0] = f
				continue
			}
			shifted, err := reassemble(f, tokens, r, c)
			if err != nil {
				return nil, err
			}
			grid[r][c] = shifted
		}
	}
	return grid, nil
}

// Shift rewrites a single formula by a row/column offset, the same transform
// Distribute applies per target cell. Used by the fill handlers.
func Shift(f string, dr, dc int) (string, error) {
	if dr == 0 && dc == 0 {
		return f, nil
	}
	return reassemble(f, Tokenize(f), dr, dc)
}

func reassemble(f string, tokens []Token, dr, dc int) (string, error) {
	var b strings.Builder
	b.Grow(len(f) + 8)
	last := 0
	for _, tok := range tokens {
		b.WriteString(f[last:tok.Start])
		b.WriteString(tok.Sheet)
		if tok.ColAbsolute {
			b.WriteByte('$')
			b.WriteString(tok.Col)
		} else {
			index, err := addr.ColumnIndex(tok.Col)
			if err != nil {
				return "", err
			}
			name, err := addr.ColumnName(index + dc)
			if err != nil {
				return "", fmt.Errorf("reference %s%d shifted out of the grid", tok.Col, tok.Row)
			}
			b.WriteString(name)
		}
		if tok.RowAbsolute {
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(tok.Row))
		} else {
			row := tok.Row + dr
			if row < 1 {
				return "", fmt.Errorf("reference %s%d shifted above row 1", tok.Col, tok.Row)
			}
			b.WriteString(strconv.Itoa(row))
		}
		last = tok.End
	}
	b.WriteString(f[last:])
	return b.String(), nil
}

// stringSpans returns the [start,end) spans of double-quoted literals.
// Doubled quotes inside a literal ("") stay inside the span naturally because
// the closing quote immediately reopens one.
func stringSpans(f string) [][2]int {
	var spans [][2]int
	open := -1
	for i := 0; i < len(f); i++ {
		if f[i] != '"' {
			continue
		}
		if open < 0 {
			open = i
		} else {
			spans = append(spans, [2]int{open, i + 1})
			open = -1
		}
	}
	if open >= 0 {
		spans = append(spans, [2]int{open, len(f)})
	}
	return spans
}

func inSpans(spans [][2]int, pos int) bool {
	for _, span := range spans {
		if pos >= span[0] && pos < span[1] {
			return true
		}
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' || b == '$' || b == '.' ||
		(b >= '0' && b <= '9') || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// Sheet qualifiers match either the quoted form ('My Sheet'!) or a bare
// identifier (Sheet2!). Column letters cap at three (XFD is the last column).
var refPattern = regexp.MustCompile(`('[^']+'!|[A-Za-z_][A-Za-z0-9_.]*!)?(\$?)([A-Za-z]{1,3})(\$?)([0-9]+)`)
