package action

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sheetwright/engine/internal/addr"
	"sheetwright/engine/internal/errinfo"
	"sheetwright/engine/internal/formula"
	"sheetwright/engine/internal/grid"
)

func replicate(value string, rows, cols int) [][]string {
	out := make([][]string, rows)
	for r := range out {
		out[r] = make([]string, cols)
		for c := range out[r] {
			out[r][c] = value
		}
	}
	return out
}

func isFormula(text string) bool {
	return strings.HasPrefix(text, "=")
}

// copyBlock moves or copies a block. Clearing the source before the
// destination write keeps overlapping moves correct.
func copyBlock(ctx context.Context, store grid.Store, src, dest addr.Range, shiftRefs, clearSource bool) error {
	data, err := store.ReadRange(ctx, src)
	if err != nil {
		return err
	}
	out := make([][]string, src.Rows)
	dr := dest.Anchor.Row - src.Anchor.Row
	dc := dest.Anchor.Col - src.Anchor.Col
	for r := range out {
		out[r] = make([]string, src.Cols)
		for c := range out[r] {
			text := data.Formulas[r][c]
			if shiftRefs && isFormula(text) {
				shifted, err := formula.Shift(text, dr, dc)
				if err != nil {
					return errinfo.InvalidTarget(errinfo.PhaseApply,
						fmt.Sprintf("shift %s: %v", text, err))
				}
				text = shifted
			}
			out[r][c] = text
		}
	}
	if clearSource {
		if err := store.ClearRange(ctx, src, true); err != nil {
			return err
		}
	}
	return store.WriteFormulas(ctx, dest, out)
}

// transposeBlock writes the source's computed values, not its formulas;
// transposing formulas would scramble their references.
func transposeBlock(ctx context.Context, store grid.Store, src, dest addr.Range) error {
	data, err := store.ReadRange(ctx, src)
	if err != nil {
		return err
	}
	out := make([][]string, src.Cols)
	for r := range out {
		out[r] = make([]string, src.Rows)
		for c := range out[r] {
			out[r][c] = data.Values[c][r]
		}
	}
	return store.WriteFormulas(ctx, dest, out)
}

// fillFromEdge seeds from the range's first row (down) or first column
// (right) and distributes across the rest. With series detection on, a
// numeric pair in the first two rows continues as an arithmetic series.
func fillFromEdge(ctx context.Context, store grid.Store, rng addr.Range, down, series bool) error {
	data, err := store.ReadRange(ctx, rng)
	if err != nil {
		return err
	}
	out := make([][]string, rng.Rows)
	for r := range out {
		out[r] = make([]string, rng.Cols)
	}
	if down {
		for c := 0; c < rng.Cols; c++ {
			if series && rng.Rows > 2 {
				first, ok1 := parseNumber(data.Values[0][c])
				second, ok2 := parseNumber(data.Values[1][c])
				if ok1 && ok2 && !isFormula(data.Formulas[0][c]) && !isFormula(data.Formulas[1][c]) {
					step := second - first
					for r := 0; r < rng.Rows; r++ {
						out[r][c] = formatNumber(first + step*float64(r))
					}
					continue
				}
			}
			// Only formulas get their references shifted. A literal like
			// "Q1 2024" merely looks like it contains a cell ref.
			src := data.Formulas[0][c]
			if !isFormula(src) {
				for r := 0; r < rng.Rows; r++ {
					out[r][c] = src
				}
				continue
			}
			column, err := formula.Distribute(src, rng.Rows, 1)
			if err != nil {
				return errinfo.InvalidTarget(errinfo.PhaseApply, err.Error())
			}
			for r := 0; r < rng.Rows; r++ {
				out[r][c] = column[r][0]
			}
		}
	} else {
		for r := 0; r < rng.Rows; r++ {
			src := data.Formulas[r][0]
			if !isFormula(src) {
				for c := 0; c < rng.Cols; c++ {
					out[r][c] = src
				}
				continue
			}
			row, err := formula.Distribute(src, 1, rng.Cols)
			if err != nil {
				return errinfo.InvalidTarget(errinfo.PhaseApply, err.Error())
			}
			out[r] = row[0]
		}
	}
	return store.WriteFormulas(ctx, rng, out)
}

func parseNumber(text string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	return n, err == nil && text != ""
}

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// sortRows reorders whole rows by one column, numeric-aware, stable.
func sortRows(ctx context.Context, store grid.Store, rng addr.Range, p sortPayload) error {
	data, err := store.ReadRange(ctx, rng)
	if err != nil {
		return err
	}
	start := 0
	if p.HasHeader {
		start = 1
	}
	indices := make([]int, 0, rng.Rows-start)
	for r := start; r < rng.Rows; r++ {
		indices = append(indices, r)
	}
	sort.SliceStable(indices, func(i, j int) bool {
		less := compareCells(data.Values[indices[i]][p.Column], data.Values[indices[j]][p.Column]) < 0
		if p.Descending {
			return !less
		}
		return less
	})
	out := make([][]string, rng.Rows)
	for r := 0; r < start; r++ {
		out[r] = data.Formulas[r]
	}
	for i, idx := range indices {
		out[start+i] = data.Formulas[idx]
	}
	return store.WriteFormulas(ctx, rng, out)
}

func compareCells(a, b string) int {
	an, aok := parseNumber(a)
	bn, bok := parseNumber(b)
	switch {
	case aok && bok:
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	case aok:
		// Numbers sort before text, like a spreadsheet does.
		return -1
	case bok:
		return 1
	}
	return strings.Compare(a, b)
}

func removeDuplicateRows(ctx context.Context, store grid.Store, rng addr.Range, keyColumns []int) error {
	data, err := store.ReadRange(ctx, rng)
	if err != nil {
		return err
	}
	if len(keyColumns) == 0 {
		for c := 0; c < rng.Cols; c++ {
			keyColumns = append(keyColumns, c)
		}
	}
	seen := make(map[string]bool)
	out := make([][]string, 0, rng.Rows)
	for r := 0; r < rng.Rows; r++ {
		parts := make([]string, len(keyColumns))
		for i, c := range keyColumns {
			parts[i] = data.Values[r][c]
		}
		key := strings.Join(parts, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, data.Formulas[r])
	}
	// Kept rows move up; the freed tail is blanked.
	for len(out) < rng.Rows {
		out = append(out, make([]string, rng.Cols))
	}
	return store.WriteFormulas(ctx, rng, out)
}

func findReplaceRows(ctx context.Context, store grid.Store, rng addr.Range, p findReplacePayload) error {
	data, err := store.ReadRange(ctx, rng)
	if err != nil {
		return err
	}
	out := make([][]string, rng.Rows)
	for r := range out {
		out[r] = make([]string, rng.Cols)
		for c := range out[r] {
			out[r][c] = replaceCell(data.Formulas[r][c], p)
		}
	}
	return store.WriteFormulas(ctx, rng, out)
}

func replaceCell(text string, p findReplacePayload) string {
	if p.EntireCell {
		if p.MatchCase && text == p.Find {
			return p.Replace
		}
		if !p.MatchCase && strings.EqualFold(text, p.Find) {
			return p.Replace
		}
		return text
	}
	if p.MatchCase {
		return strings.ReplaceAll(text, p.Find, p.Replace)
	}
	return replaceFold(text, p.Find, p.Replace)
}

// replaceFold is a case-insensitive ReplaceAll. Matching is rune-based:
// lowercasing the haystack and indexing with byte offsets breaks on runes
// whose case mapping changes byte length.
func replaceFold(text, find, replace string) string {
	if find == "" {
		return text
	}
	var b strings.Builder
	for i := 0; i < len(text); {
		if n, ok := foldPrefixLen(text[i:], find); ok {
			b.WriteString(replace)
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		b.WriteString(text[i : i+size])
		i += size
	}
	return b.String()
}

// foldPrefixLen reports the byte length of the prefix of text that case-folds
// to find, if there is one. Simple folding maps rune to rune, so the prefix
// spans exactly as many runes as find.
func foldPrefixLen(text, find string) (int, bool) {
	n := 0
	for range find {
		if n >= len(text) {
			return 0, false
		}
		_, size := utf8.DecodeRuneInString(text[n:])
		n += size
	}
	if strings.EqualFold(text[:n], find) {
		return n, true
	}
	return 0, false
}

// splitFirstColumn splits the first column's text into the range's columns.
// Parts beyond the range width are dropped so the write stays inside the
// target, which keeps undo capture correct.
func splitFirstColumn(ctx context.Context, store grid.Store, rng addr.Range, p splitPayload) error {
	delimiter := p.Delimiter
	if delimiter == "" {
		delimiter = ","
	}
	limit := rng.Cols
	if p.Limit > 0 && p.Limit < limit {
		limit = p.Limit
	}
	data, err := store.ReadRange(ctx, rng)
	if err != nil {
		return err
	}
	out := make([][]string, rng.Rows)
	for r := range out {
		out[r] = make([]string, rng.Cols)
		parts := strings.SplitN(data.Values[r][0], delimiter, limit)
		for c, part := range parts {
			if c >= rng.Cols {
				break
			}
			out[r][c] = strings.TrimSpace(part)
		}
	}
	return store.WriteValues(ctx, rng, out)
}

// mapLiterals applies fn to literal cells and leaves formula cells alone.
func mapLiterals(ctx context.Context, store grid.Store, rng addr.Range, fn func(string) string) error {
	data, err := store.ReadRange(ctx, rng)
	if err != nil {
		return err
	}
	out := make([][]string, rng.Rows)
	for r := range out {
		out[r] = make([]string, rng.Cols)
		for c := range out[r] {
			text := data.Formulas[r][c]
			if isFormula(text) {
				out[r][c] = text
			} else {
				out[r][c] = fn(text)
			}
		}
	}
	return store.WriteFormulas(ctx, rng, out)
}

func trimCell(text string) string {
	return strings.TrimSpace(text)
}

func caseMapper(mode string) func(string) string {
	switch mode {
	case "upper":
		return strings.ToUpper
	case "lower":
		return strings.ToLower
	default:
		caser := cases.Title(language.English)
		return caser.String
	}
}

const (
	minAutoFitWidth = 8
	maxAutoFitWidth = 80
)

func autoFitColumns(ctx context.Context, store grid.Store, rng addr.Range) error {
	data, err := store.ReadRange(ctx, rng)
	if err != nil {
		return err
	}
	for c := 0; c < rng.Cols; c++ {
		longest := 0
		for r := 0; r < rng.Rows; r++ {
			if n := utf8.RuneCountInString(data.Values[r][c]); n > longest {
				longest = n
			}
		}
		width := float64(longest + 2)
		if width < minAutoFitWidth {
			width = minAutoFitWidth
		}
		if width > maxAutoFitWidth {
			width = maxAutoFitWidth
		}
		if err := store.SetColumnWidth(ctx, rng.Sheet, rng.Anchor.Col+c, 1, width); err != nil {
			return err
		}
	}
	return nil
}
