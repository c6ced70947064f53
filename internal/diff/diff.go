// Package diff renders before/after views of grid ranges as line diffs for
// change previews.
package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"sheetwright/engine/internal/grid"
)

type Line struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	OldLine int    `json:"old_line,omitempty"`
	NewLine int    `json:"new_line,omitempty"`
}

type Hunk struct {
	Lines []Line `json:"lines"`
}

const (
	LineContext = "context"
	LineAdded   = "added"
	LineRemoved = "removed"
)

// TextDiff diffs two multi-line strings line by line.
func TextDiff(before, after string) []Hunk {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []Line
	oldLine := 1
	newLine := 1
	for _, diff := range diffs {
		chunkLines := strings.Split(diff.Text, "\n")
		if len(chunkLines) > 0 && chunkLines[len(chunkLines)-1] == "" {
			chunkLines = chunkLines[:len(chunkLines)-1]
		}
		for _, line := range chunkLines {
			switch diff.Type {
			case diffmatchpatch.DiffEqual:
				lines = append(lines, Line{Type: LineContext, Text: line, OldLine: oldLine, NewLine: newLine})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				lines = append(lines, Line{Type: LineRemoved, Text: line, OldLine: oldLine})
				oldLine++
			case diffmatchpatch.DiffInsert:
				lines = append(lines, Line{Type: LineAdded, Text: line, NewLine: newLine})
				newLine++
			}
		}
	}
	return []Hunk{{Lines: lines}}
}

// MaxPreviewLines caps how large a range preview may get before it is
// truncated rather than diffed.
const MaxPreviewLines = 5000

// RangeDiff diffs two snapshots of the same range. The boolean reports
// whether the preview was skipped for exceeding maxLines.
func RangeDiff(before, after *grid.RangeData, maxLines int) ([]Hunk, bool) {
	if maxLines <= 0 {
		maxLines = MaxPreviewLines
	}
	beforeText := GridText(before)
	afterText := GridText(after)
	if lineCount(beforeText)+lineCount(afterText) > maxLines {
		return nil, true
	}
	return TextDiff(beforeText, afterText), false
}

// GridText renders a range snapshot one row per line, cells tab-separated
// and prefixed with the sheet row number. Formula cells render their
// formula text.
func GridText(data *grid.RangeData) string {
	if data == nil {
		return ""
	}
	var b strings.Builder
	for r, row := range data.Formulas {
		fmt.Fprintf(&b, "%d\t", data.Address.Anchor.Row+r+1)
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

// ChangeCount tallies added and removed lines across hunks.
func ChangeCount(hunks []Hunk) int {
	n := 0
	for _, hunk := range hunks {
		for _, line := range hunk.Lines {
			if line.Type != LineContext {
				n++
			}
		}
	}
	return n
}

func lineCount(value string) int {
	if value == "" {
		return 0
	}
	return strings.Count(value, "\n") + 1
}
