package action

import (
	"fmt"
	"strconv"

	"sheetwright/engine/internal/addr"
)

// Payload structs are decoded and validated once, at dispatch. Handlers never
// see raw JSON.

type emptyPayload struct{}

func (emptyPayload) validate() error { return nil }

type setValuePayload struct {
	Value string `json:"value"`
}

func (setValuePayload) validate() error { return nil }

type setValuesPayload struct {
	Values [][]string `json:"values"`
}

func (p setValuesPayload) validate() error { return checkGrid(p.Values, "values") }

func checkGrid(grid [][]string, field string) error {
	if len(grid) == 0 {
		return fmt.Errorf("%s must not be empty", field)
	}
	width := len(grid[0])
	if width == 0 {
		return fmt.Errorf("%s rows must not be empty", field)
	}
	for i, row := range grid {
		if len(row) != width {
			return fmt.Errorf("%s row %d has %d cells, row 0 has %d", field, i, len(row), width)
		}
	}
	return nil
}

type setFormulaPayload struct {
	Formula string `json:"formula"`
}

func (p setFormulaPayload) validate() error {
	if len(p.Formula) < 2 || p.Formula[0] != '=' {
		return fmt.Errorf("formula must start with '='")
	}
	return nil
}

type setFormulasPayload struct {
	Formulas [][]string `json:"formulas"`
}

func (p setFormulasPayload) validate() error { return checkGrid(p.Formulas, "formulas") }

// destinationPayload serves copyRange, moveRange and transposeRange. The
// destination anchors a block whose extent derives from the source range.
type destinationPayload struct {
	Destination string `json:"destination"`
	// Transpose swaps the destination extent; set by transposeRange only.
	Transpose bool `json:"-"`
}

func (p destinationPayload) validate() error {
	if p.Destination == "" {
		return fmt.Errorf("destination is required")
	}
	if _, err := addr.ParseRange(p.Destination); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	return nil
}

// destRange computes the block the destination write covers.
func (p destinationPayload) destRange(source addr.Range) addr.Range {
	dest, _ := addr.ParseRange(p.Destination)
	rows, cols := source.Rows, source.Cols
	if p.Transpose {
		rows, cols = cols, rows
	}
	out := addr.Range{Sheet: dest.Sheet, Anchor: dest.Anchor, Rows: rows, Cols: cols}
	if out.Sheet == "" {
		out.Sheet = source.Sheet
	}
	return out
}

func (p destinationPayload) extraSnapshots(target addr.Range) []addr.Range {
	return []addr.Range{p.destRange(target)}
}

type transposePayload struct {
	Destination string `json:"destination"`
}

func (p transposePayload) validate() error {
	return destinationPayload{Destination: p.Destination}.validate()
}

func (p transposePayload) extraSnapshots(target addr.Range) []addr.Range {
	return destinationPayload{Destination: p.Destination, Transpose: true}.extraSnapshots(target)
}

type appendValuesPayload struct {
	Values [][]string `json:"values"`
}

func (p appendValuesPayload) validate() error { return checkGrid(p.Values, "values") }

func (p appendValuesPayload) extraSnapshots(target addr.Range) []addr.Range {
	return []addr.Range{{
		Sheet:  target.Sheet,
		Anchor: addr.Cell{Col: target.Anchor.Col, Row: target.End().Row + 1},
		Rows:   len(p.Values),
		Cols:   len(p.Values[0]),
	}}
}

type sortPayload struct {
	Column     int  `json:"column"`
	Descending bool `json:"descending,omitempty"`
	HasHeader  bool `json:"hasHeader,omitempty"`
}

func (p sortPayload) validate() error {
	if p.Column < 0 {
		return fmt.Errorf("column must not be negative")
	}
	return nil
}

type dedupePayload struct {
	Columns []int `json:"columns,omitempty"`
}

func (p dedupePayload) validate() error {
	for _, c := range p.Columns {
		if c < 0 {
			return fmt.Errorf("column index must not be negative")
		}
	}
	return nil
}

type findReplacePayload struct {
	Find       string `json:"find"`
	Replace    string `json:"replace"`
	MatchCase  bool   `json:"matchCase,omitempty"`
	EntireCell bool   `json:"entireCell,omitempty"`
}

func (p findReplacePayload) validate() error {
	if p.Find == "" {
		return fmt.Errorf("find must not be empty")
	}
	return nil
}

type splitPayload struct {
	Delimiter string `json:"delimiter,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

func (p splitPayload) validate() error {
	if p.Limit < 0 {
		return fmt.Errorf("limit must not be negative")
	}
	return nil
}

type changeCasePayload struct {
	Mode string `json:"mode"`
}

func (p changeCasePayload) validate() error {
	switch p.Mode {
	case "upper", "lower", "title":
		return nil
	}
	return fmt.Errorf("mode must be upper, lower or title, got %q", p.Mode)
}

// Formatting payloads.

type togglePayload struct {
	Enabled *bool `json:"enabled,omitempty"`
}

func (togglePayload) validate() error { return nil }

// on defaults the toggle to true when the payload omits it.
func (p togglePayload) on() bool {
	return p.Enabled == nil || *p.Enabled
}

type numberFormatPayload struct {
	Format string `json:"format"`
}

func (p numberFormatPayload) validate() error {
	if p.Format == "" {
		return fmt.Errorf("format must not be empty")
	}
	return nil
}

type fontSizePayload struct {
	Size float64 `json:"size"`
}

func (p fontSizePayload) validate() error {
	if p.Size < 1 || p.Size > 409 {
		return fmt.Errorf("size must be between 1 and 409, got %v", p.Size)
	}
	return nil
}

type fontNamePayload struct {
	Name string `json:"name"`
}

func (p fontNamePayload) validate() error {
	if p.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	return nil
}

type colorPayload struct {
	Color string `json:"color"`
}

func (p colorPayload) validate() error { return checkColor(p.Color) }

func checkColor(color string) error {
	if len(color) != 7 || color[0] != '#' {
		return fmt.Errorf("color must be #RRGGBB, got %q", color)
	}
	if _, err := strconv.ParseUint(color[1:], 16, 32); err != nil {
		return fmt.Errorf("color must be #RRGGBB, got %q", color)
	}
	return nil
}

type bordersPayload struct {
	Style string `json:"style,omitempty"`
}

func (p bordersPayload) validate() error {
	switch p.Style {
	case "", "all", "none":
		return nil
	}
	return fmt.Errorf("style must be all or none, got %q", p.Style)
}

type alignmentPayload struct {
	Horizontal string `json:"horizontal"`
}

func (p alignmentPayload) validate() error {
	switch p.Horizontal {
	case "left", "center", "right", "fill", "justify":
		return nil
	}
	return fmt.Errorf("horizontal must be left, center, right, fill or justify, got %q", p.Horizontal)
}

type verticalAlignmentPayload struct {
	Vertical string `json:"vertical"`
}

func (p verticalAlignmentPayload) validate() error {
	switch p.Vertical {
	case "top", "center", "bottom":
		return nil
	}
	return fmt.Errorf("vertical must be top, center or bottom, got %q", p.Vertical)
}

type rotationPayload struct {
	Degrees int `json:"degrees"`
}

func (p rotationPayload) validate() error {
	if p.Degrees < -90 || p.Degrees > 90 {
		return fmt.Errorf("degrees must be between -90 and 90, got %d", p.Degrees)
	}
	return nil
}

type conditionalPayload struct {
	Type     string `json:"type,omitempty"`
	Criteria string `json:"criteria,omitempty"`
	Value    string `json:"value,omitempty"`
	Value2   string `json:"value2,omitempty"`
	Color    string `json:"color,omitempty"`
}

func (p conditionalPayload) validate() error {
	switch p.Type {
	case "", "cellIs":
		if p.Criteria == "" {
			return fmt.Errorf("criteria is required for cell rules")
		}
	case "colorScale", "dataBar":
	default:
		return fmt.Errorf("type must be cellIs, colorScale or dataBar, got %q", p.Type)
	}
	if p.Color != "" {
		return checkColor(p.Color)
	}
	return nil
}

type validationPayload struct {
	Type    string   `json:"type"`
	Minimum string   `json:"minimum,omitempty"`
	Maximum string   `json:"maximum,omitempty"`
	List    []string `json:"list,omitempty"`
	Prompt  string   `json:"prompt,omitempty"`
}

func (p validationPayload) validate() error {
	switch p.Type {
	case "list":
		if len(p.List) == 0 {
			return fmt.Errorf("list must not be empty")
		}
	case "whole", "decimal":
		for _, bound := range []string{p.Minimum, p.Maximum} {
			if _, err := strconv.ParseFloat(bound, 64); err != nil {
				return fmt.Errorf("minimum and maximum must be numeric")
			}
		}
	default:
		return fmt.Errorf("type must be list, whole or decimal, got %q", p.Type)
	}
	return nil
}

type commentPayload struct {
	Author string `json:"author,omitempty"`
	Text   string `json:"text"`
}

func (p commentPayload) validate() error {
	if p.Text == "" {
		return fmt.Errorf("text must not be empty")
	}
	return nil
}

type hyperlinkPayload struct {
	URL     string `json:"url"`
	Display string `json:"display,omitempty"`
}

func (p hyperlinkPayload) validate() error {
	if p.URL == "" {
		return fmt.Errorf("url must not be empty")
	}
	return nil
}

type sparklinePayload struct {
	DataRange string `json:"dataRange"`
	Type      string `json:"type,omitempty"`
}

func (p sparklinePayload) validate() error {
	if p.DataRange == "" {
		return fmt.Errorf("dataRange must not be empty")
	}
	switch p.Type {
	case "", "line", "column", "win_loss":
		return nil
	}
	return fmt.Errorf("type must be line, column or win_loss, got %q", p.Type)
}

type checkboxPayload struct {
	Label   string `json:"label,omitempty"`
	Checked bool   `json:"checked,omitempty"`
}

func (checkboxPayload) validate() error { return nil }

// Structural payloads.

type countPayload struct {
	Count int `json:"count,omitempty"`
}

func (p countPayload) validate() error {
	if p.Count < 0 {
		return fmt.Errorf("count must not be negative")
	}
	return nil
}

type levelPayload struct {
	Level int `json:"level,omitempty"`
}

func (p levelPayload) validate() error {
	if p.Level < 0 || p.Level > 7 {
		return fmt.Errorf("level must be between 0 and 7, got %d", p.Level)
	}
	return nil
}

type widthPayload struct {
	Width float64 `json:"width"`
}

func (p widthPayload) validate() error {
	if p.Width <= 0 || p.Width > 255 {
		return fmt.Errorf("width must be between 0 and 255, got %v", p.Width)
	}
	return nil
}

type heightPayload struct {
	Height float64 `json:"height"`
}

func (p heightPayload) validate() error {
	if p.Height <= 0 || p.Height > 409 {
		return fmt.Errorf("height must be between 0 and 409, got %v", p.Height)
	}
	return nil
}

// Logical-name payloads.

type tablePayload struct {
	Range      string `json:"range"`
	HasHeaders *bool  `json:"hasHeaders,omitempty"`
	Style      string `json:"style,omitempty"`
}

func (p tablePayload) validate() error {
	if p.Range == "" {
		return fmt.Errorf("range must not be empty")
	}
	if _, err := addr.ParseRange(p.Range); err != nil {
		return fmt.Errorf("range: %w", err)
	}
	return nil
}

type chartPayload struct {
	Type          string `json:"type"`
	DataRange     string `json:"dataRange"`
	CategoryRange string `json:"categoryRange,omitempty"`
	Sheet         string `json:"sheet,omitempty"`
	Anchor        string `json:"anchor"`
	Title         string `json:"title,omitempty"`
}

func (p chartPayload) validate() error {
	if p.Type == "" {
		return fmt.Errorf("type must not be empty")
	}
	if p.DataRange == "" {
		return fmt.Errorf("dataRange must not be empty")
	}
	return checkAnchor(p.Anchor)
}

func checkAnchor(anchor string) error {
	if anchor == "" {
		return fmt.Errorf("anchor must not be empty")
	}
	if _, _, err := addr.ParseCell(anchor); err != nil {
		return fmt.Errorf("anchor: %w", err)
	}
	return nil
}

type anchorPayload struct {
	Sheet  string `json:"sheet,omitempty"`
	Anchor string `json:"anchor"`
}

func (p anchorPayload) validate() error { return checkAnchor(p.Anchor) }

type pivotPayload struct {
	DataRange   string   `json:"dataRange"`
	TargetRange string   `json:"targetRange"`
	Rows        []string `json:"rows,omitempty"`
	Columns     []string `json:"columns,omitempty"`
	Values      []string `json:"values"`
	Aggregate   string   `json:"aggregate,omitempty"`
}

func (p pivotPayload) validate() error {
	if p.DataRange == "" || p.TargetRange == "" {
		return fmt.Errorf("dataRange and targetRange must not be empty")
	}
	if len(p.Values) == 0 {
		return fmt.Errorf("values must not be empty")
	}
	return nil
}

type slicerPayload struct {
	Sheet   string `json:"sheet,omitempty"`
	Column  string `json:"column"`
	Cell    string `json:"cell"`
	Caption string `json:"caption,omitempty"`
}

func (p slicerPayload) validate() error {
	if p.Column == "" {
		return fmt.Errorf("column must not be empty")
	}
	return checkAnchor(p.Cell)
}

type namedRangePayload struct {
	Range string `json:"range"`
	Scope string `json:"scope,omitempty"`
}

func (p namedRangePayload) validate() error {
	if p.Range == "" {
		return fmt.Errorf("range must not be empty")
	}
	if _, err := addr.ParseRange(p.Range); err != nil {
		return fmt.Errorf("range: %w", err)
	}
	return nil
}

type scopePayload struct {
	Scope string `json:"scope,omitempty"`
}

func (scopePayload) validate() error { return nil }

type renamePayload struct {
	NewName string `json:"newName"`
}

func (p renamePayload) validate() error {
	if p.NewName == "" {
		return fmt.Errorf("newName must not be empty")
	}
	return nil
}

type passwordPayload struct {
	Password string `json:"password,omitempty"`
}

func (passwordPayload) validate() error { return nil }

type zoomPayload struct {
	Scale float64 `json:"scale"`
}

func (p zoomPayload) validate() error {
	if p.Scale < 10 || p.Scale > 400 {
		return fmt.Errorf("scale must be between 10 and 400, got %v", p.Scale)
	}
	return nil
}

type headerFooterPayload struct {
	Header string `json:"header,omitempty"`
	Footer string `json:"footer,omitempty"`
}

func (headerFooterPayload) validate() error { return nil }

type orientationPayload struct {
	Orientation string `json:"orientation"`
}

func (p orientationPayload) validate() error {
	switch p.Orientation {
	case "portrait", "landscape":
		return nil
	}
	return fmt.Errorf("orientation must be portrait or landscape, got %q", p.Orientation)
}

type marginsPayload struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

func (p marginsPayload) validate() error {
	for _, m := range []float64{p.Left, p.Right, p.Top, p.Bottom} {
		if m < 0 || m > 5 {
			return fmt.Errorf("margins must be between 0 and 5 inches")
		}
	}
	return nil
}

type imagePayload struct {
	Sheet  string `json:"sheet,omitempty"`
	Anchor string `json:"anchor"`
	Path   string `json:"path"`
}

func (p imagePayload) validate() error {
	if p.Path == "" {
		return fmt.Errorf("path must not be empty")
	}
	return checkAnchor(p.Anchor)
}

type shapePayload struct {
	Sheet  string `json:"sheet,omitempty"`
	Anchor string `json:"anchor"`
	Type   string `json:"type,omitempty"`
	Text   string `json:"text,omitempty"`
	Width  uint   `json:"width,omitempty"`
	Height uint   `json:"height,omitempty"`
}

func (p shapePayload) validate() error { return checkAnchor(p.Anchor) }
