// Package addr implements the A1 address model: column-letter arithmetic,
// range parsing, and absolute-marker detection. Columns and rows are
// zero-based internally; the textual form is standard A1 notation.
package addr

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidAddress = errors.New("invalid address")

// Cell is a single grid coordinate. Col 0 is column A, Row 0 is row 1.
type Cell struct {
	Col int
	Row int
}

// Range is a rectangular block anchored at its top-left cell. Rows and Cols
// are always >= 1; a 1x1 range is a single cell.
type Range struct {
	Sheet  string
	Anchor Cell
	Rows   int
	Cols   int
}

// Markers reports the per-axis $ flags of a reference token. The two axes are
// independent: B$5 pins the row only, $B5 the column only.
type Markers struct {
	ColAbsolute bool
	RowAbsolute bool
}

// ColumnName encodes a zero-based column index as letters: 0 -> A, 25 -> Z,
// 26 -> AA. The encoding is bijective base-26 with no zero digit.
func ColumnName(n int) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("%w: negative column %d", ErrInvalidAddress, n)
	}
	var buf [8]byte
	i := len(buf)
	for n >= 0 {
		i--
		buf[i] = byte('A' + n%26)
		n = n/26 - 1
	}
	return string(buf[i:]), nil
}

// ColumnIndex is the inverse of ColumnName. Input is case-insensitive and
// must be letters only.
func ColumnIndex(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: empty column", ErrInvalidAddress)
	}
	n := 0
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch >= 'a' && ch <= 'z' {
			ch -= 'a' - 'A'
		}
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("%w: column %q", ErrInvalidAddress, s)
		}
		n = n*26 + int(ch-'A') + 1
	}
	return n - 1, nil
}

// ParseCell parses a single A1 cell like "B5", "$B$5" or "Sheet2!C3".
// Absolute markers are accepted and discarded.
func ParseCell(s string) (Cell, string, error) {
	sheet, body, err := splitSheet(s)
	if err != nil {
		return Cell{}, "", err
	}
	cell, err := parseCellBody(body)
	if err != nil {
		return Cell{}, "", err
	}
	return cell, sheet, nil
}

// ParseRange parses "A1", "A1:D10" or a sheet-qualified form like
// "Sheet2!A1:B5" and "'My Sheet'!A1". Reversed ranges ("D10:A1") are
// normalized so the anchor is always the top-left cell.
func ParseRange(s string) (Range, error) {
	sheet, body, err := splitSheet(s)
	if err != nil {
		return Range{}, err
	}
	if body == "" {
		return Range{}, fmt.Errorf("%w: empty range", ErrInvalidAddress)
	}
	first, rest, hasColon := strings.Cut(body, ":")
	start, err := parseCellBody(first)
	if err != nil {
		return Range{}, err
	}
	end := start
	if hasColon {
		end, err = parseCellBody(rest)
		if err != nil {
			return Range{}, err
		}
	}
	anchor := Cell{Col: min(start.Col, end.Col), Row: min(start.Row, end.Row)}
	return Range{
		Sheet:  sheet,
		Anchor: anchor,
		Rows:   max(start.Row, end.Row) - anchor.Row + 1,
		Cols:   max(start.Col, end.Col) - anchor.Col + 1,
	}, nil
}

// AbsoluteMarkers inspects a reference token ("$B5", "B$5", "Sheet2!$A$1")
// and reports which axes are pinned. The sheet qualifier is ignored.
func AbsoluteMarkers(token string) Markers {
	if _, body, err := splitSheet(token); err == nil {
		token = body
	}
	var m Markers
	if strings.HasPrefix(token, "$") {
		m.ColAbsolute = true
		token = token[1:]
	}
	for i := 0; i < len(token); i++ {
		if token[i] == '$' {
			m.RowAbsolute = true
			break
		}
	}
	return m
}

// Name renders the cell in A1 notation.
func (c Cell) Name() string {
	col, err := ColumnName(c.Col)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s%d", col, c.Row+1)
}

// End is the bottom-right cell of the range.
func (r Range) End() Cell {
	return Cell{Col: r.Anchor.Col + r.Cols - 1, Row: r.Anchor.Row + r.Rows - 1}
}

// IsCell reports whether the range covers exactly one cell.
func (r Range) IsCell() bool {
	return r.Rows == 1 && r.Cols == 1
}

// String renders the range in A1 notation, sheet-qualified when a sheet is
// set. Single-cell ranges render without the colon form.
func (r Range) String() string {
	body := r.Anchor.Name()
	if !r.IsCell() {
		body += ":" + r.End().Name()
	}
	if r.Sheet == "" {
		return body
	}
	return quoteSheet(r.Sheet) + "!" + body
}

// Contains reports whether the cell lies inside the range.
func (r Range) Contains(c Cell) bool {
	end := r.End()
	return c.Col >= r.Anchor.Col && c.Col <= end.Col &&
		c.Row >= r.Anchor.Row && c.Row <= end.Row
}

func splitSheet(s string) (sheet, body string, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", fmt.Errorf("%w: empty address", ErrInvalidAddress)
	}
	if strings.HasPrefix(s, "'") {
		close := strings.Index(s[1:], "'")
		if close < 0 || len(s) < close+3 || s[close+2] != '!' {
			return "", "", fmt.Errorf("%w: unterminated sheet quote in %q", ErrInvalidAddress, s)
		}
		return s[1 : close+1], s[close+3:], nil
	}
	if idx := strings.IndexByte(s, '!'); idx >= 0 {
		if idx == 0 {
			return "", "", fmt.Errorf("%w: empty sheet name in %q", ErrInvalidAddress, s)
		}
		return s[:idx], s[idx+1:], nil
	}
	return "", s, nil
}

func parseCellBody(s string) (Cell, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "$") {
		s = s[1:]
	}
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	if i == 0 {
		return Cell{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	letters := s[:i]
	rest := s[i:]
	if strings.HasPrefix(rest, "$") {
		rest = rest[1:]
	}
	if rest == "" {
		return Cell{}, fmt.Errorf("%w: missing row in %q", ErrInvalidAddress, s)
	}
	row := 0
	for j := 0; j < len(rest); j++ {
		if rest[j] < '0' || rest[j] > '9' {
			return Cell{}, fmt.Errorf("%w: row %q", ErrInvalidAddress, rest)
		}
		row = row*10 + int(rest[j]-'0')
		if row > 1048576 {
			return Cell{}, fmt.Errorf("%w: row out of range in %q", ErrInvalidAddress, s)
		}
	}
	if row == 0 {
		return Cell{}, fmt.Errorf("%w: row 0 in %q", ErrInvalidAddress, s)
	}
	col, err := ColumnIndex(letters)
	if err != nil {
		return Cell{}, err
	}
	return Cell{Col: col, Row: row - 1}, nil
}

func quoteSheet(name string) string {
	if strings.ContainsAny(name, " !'") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
