package grid

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"sheetwright/engine/internal/addr"
)

// Workbook is the production grid store, backed by an xlsx file via excelize.
// All addresses arriving from the engine are zero-based; conversion to the
// 1-based excelize coordinate space happens here and nowhere else.
type Workbook struct {
	file *excelize.File
	path string
}

func OpenWorkbook(path string) (*Workbook, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Workbook{file: file, path: path}, nil
}

func NewWorkbook(path string) *Workbook {
	return NewWorkbookSheet(path, "")
}

// NewWorkbookSheet creates an empty workbook whose initial sheet is named
// sheet. An empty name keeps excelize's default, Sheet1.
func NewWorkbookSheet(path, sheet string) *Workbook {
	file := excelize.NewFile()
	if sheet != "" && sheet != "Sheet1" {
		file.SetSheetName("Sheet1", sheet)
	}
	return &Workbook{file: file, path: path}
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) Commit(ctx context.Context) error {
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func (w *Workbook) sheetOf(name string) string {
	if name != "" {
		return name
	}
	list := w.file.GetSheetList()
	if len(list) == 0 {
		return "Sheet1"
	}
	return list[0]
}

func cellName(c addr.Cell) string {
	name, err := excelize.CoordinatesToCellName(c.Col+1, c.Row+1)
	if err != nil {
		return ""
	}
	return name
}

func rangeRef(rng addr.Range) string {
	if rng.IsCell() {
		return cellName(rng.Anchor)
	}
	return cellName(rng.Anchor) + ":" + cellName(rng.End())
}

// absRef renders a fully absolute sheet-qualified reference, as defined
// names require.
func absRef(rng addr.Range, sheet string) string {
	start, _ := excelize.CoordinatesToCellName(rng.Anchor.Col+1, rng.Anchor.Row+1, true)
	end, _ := excelize.CoordinatesToCellName(rng.End().Col+1, rng.End().Row+1, true)
	return fmt.Sprintf("'%s'!%s:%s", sheet, start, end)
}

func (w *Workbook) ReadRange(ctx context.Context, rng addr.Range) (*RangeData, error) {
	sheet := w.sheetOf(rng.Sheet)
	data := &RangeData{
		Address:  rng,
		Values:   make([][]string, rng.Rows),
		Formulas: make([][]string, rng.Rows),
	}
	for r := 0; r < rng.Rows; r++ {
		data.Values[r] = make([]string, rng.Cols)
		data.Formulas[r] = make([]string, rng.Cols)
		for c := 0; c < rng.Cols; c++ {
			name := cellName(addr.Cell{Col: rng.Anchor.Col + c, Row: rng.Anchor.Row + r})
			value, err := w.file.GetCellValue(sheet, name)
			if err != nil {
				return nil, fmt.Errorf("read %s!%s: %w", sheet, name, err)
			}
			formula, err := w.file.GetCellFormula(sheet, name)
			if err != nil {
				return nil, fmt.Errorf("read formula %s!%s: %w", sheet, name, err)
			}
			data.Values[r][c] = value
			if formula != "" {
				data.Formulas[r][c] = "=" + formula
			} else {
				data.Formulas[r][c] = value
			}
		}
	}
	return data, nil
}

func (w *Workbook) WriteValues(ctx context.Context, rng addr.Range, values [][]string) error {
	if err := checkExtent(rng, values); err != nil {
		return err
	}
	sheet := w.sheetOf(rng.Sheet)
	for r := range values {
		for c := range values[r] {
			name := cellName(addr.Cell{Col: rng.Anchor.Col + c, Row: rng.Anchor.Row + r})
			if err := w.file.SetCellValue(sheet, name, parseLiteral(values[r][c])); err != nil {
				return fmt.Errorf("write %s!%s: %w", sheet, name, err)
			}
		}
	}
	return nil
}

func (w *Workbook) WriteFormulas(ctx context.Context, rng addr.Range, formulas [][]string) error {
	if err := checkExtent(rng, formulas); err != nil {
		return err
	}
	sheet := w.sheetOf(rng.Sheet)
	for r := range formulas {
		for c := range formulas[r] {
			name := cellName(addr.Cell{Col: rng.Anchor.Col + c, Row: rng.Anchor.Row + r})
			text := formulas[r][c]
			var err error
			if strings.HasPrefix(text, "=") {
				err = w.file.SetCellFormula(sheet, name, strings.TrimPrefix(text, "="))
			} else {
				// Clearing any stale formula first keeps the cell from
				// rendering the old cached result.
				if err = w.file.SetCellFormula(sheet, name, ""); err == nil {
					err = w.file.SetCellValue(sheet, name, parseLiteral(text))
				}
			}
			if err != nil {
				return fmt.Errorf("write formula %s!%s: %w", sheet, name, err)
			}
		}
	}
	return nil
}

func (w *Workbook) ClearRange(ctx context.Context, rng addr.Range, contentsOnly bool) error {
	sheet := w.sheetOf(rng.Sheet)
	for r := 0; r < rng.Rows; r++ {
		for c := 0; c < rng.Cols; c++ {
			name := cellName(addr.Cell{Col: rng.Anchor.Col + c, Row: rng.Anchor.Row + r})
			if err := w.file.SetCellFormula(sheet, name, ""); err != nil {
				return err
			}
			if err := w.file.SetCellValue(sheet, name, nil); err != nil {
				return err
			}
		}
	}
	if !contentsOnly {
		return w.ClearFormats(ctx, rng)
	}
	return nil
}

// parseLiteral keeps numbers numeric in the workbook instead of storing
// everything as shared strings.
func parseLiteral(text string) any {
	trimmed := strings.TrimSpace(text)
	if trimmed != "" && trimmed == text {
		if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return f
		}
		if trimmed == "TRUE" || trimmed == "FALSE" {
			return trimmed == "TRUE"
		}
	}
	if text == "" {
		return nil
	}
	return text
}

func (w *Workbook) SetStyle(ctx context.Context, rng addr.Range, style StyleDelta) error {
	sheet := w.sheetOf(rng.Sheet)
	spec := &excelize.Style{}
	font := &excelize.Font{}
	fontSet := false
	if style.Bold != nil {
		font.Bold = *style.Bold
		fontSet = true
	}
	if style.Italic != nil {
		font.Italic = *style.Italic
		fontSet = true
	}
	if style.Underline != nil && *style.Underline {
		font.Underline = "single"
		fontSet = true
	}
	if style.Strikethrough != nil {
		font.Strike = *style.Strikethrough
		fontSet = true
	}
	if style.FontSize != nil {
		font.Size = *style.FontSize
		fontSet = true
	}
	if style.FontName != nil {
		font.Family = *style.FontName
		fontSet = true
	}
	if style.FontColor != nil {
		font.Color = *style.FontColor
		fontSet = true
	}
	if fontSet {
		spec.Font = font
	}
	if style.FillColor != nil {
		spec.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{*style.FillColor}}
	}
	if style.NumberFormat != nil {
		spec.CustomNumFmt = style.NumberFormat
	}
	if style.Borders != nil && *style.Borders != "none" {
		sides := []string{"left", "right", "top", "bottom"}
		for _, side := range sides {
			spec.Border = append(spec.Border, excelize.Border{Type: side, Color: "000000", Style: 1})
		}
	}
	alignment := &excelize.Alignment{}
	alignSet := false
	if style.HAlign != nil {
		alignment.Horizontal = *style.HAlign
		alignSet = true
	}
	if style.VAlign != nil {
		alignment.Vertical = *style.VAlign
		alignSet = true
	}
	if style.WrapText != nil {
		alignment.WrapText = *style.WrapText
		alignSet = true
	}
	if style.TextRotation != nil {
		alignment.TextRotation = *style.TextRotation
		alignSet = true
	}
	if alignSet {
		spec.Alignment = alignment
	}
	styleID, err := w.file.NewStyle(spec)
	if err != nil {
		return fmt.Errorf("build style: %w", err)
	}
	return w.file.SetCellStyle(sheet, cellName(rng.Anchor), cellName(rng.End()), styleID)
}

func (w *Workbook) ClearFormats(ctx context.Context, rng addr.Range) error {
	sheet := w.sheetOf(rng.Sheet)
	return w.file.SetCellStyle(sheet, cellName(rng.Anchor), cellName(rng.End()), 0)
}

func (w *Workbook) MergeCells(ctx context.Context, rng addr.Range) error {
	return w.file.MergeCell(w.sheetOf(rng.Sheet), cellName(rng.Anchor), cellName(rng.End()))
}

func (w *Workbook) UnmergeCells(ctx context.Context, rng addr.Range) error {
	return w.file.UnmergeCell(w.sheetOf(rng.Sheet), cellName(rng.Anchor), cellName(rng.End()))
}

func (w *Workbook) AddConditionalFormat(ctx context.Context, rng addr.Range, rule ConditionalRule) error {
	sheet := w.sheetOf(rng.Sheet)
	var opts []excelize.ConditionalFormatOptions
	switch rule.Type {
	case "colorScale":
		opts = []excelize.ConditionalFormatOptions{{
			Type:     "2_color_scale",
			Criteria: "=",
			MinType:  "min",
			MaxType:  "max",
			MinColor: "#FFFFFF",
			MaxColor: defaultColor(rule.Color, "#63BE7B"),
		}}
	case "dataBar":
		opts = []excelize.ConditionalFormatOptions{{
			Type:     "data_bar",
			Criteria: "=",
			MinType:  "min",
			MaxType:  "max",
			BarColor: defaultColor(rule.Color, "#638EC6"),
		}}
	default:
		fill := defaultColor(rule.Color, "#FFC7CE")
		styleID, err := w.file.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
		})
		if err != nil {
			return fmt.Errorf("build conditional style: %w", err)
		}
		opt := excelize.ConditionalFormatOptions{
			Type:     "cell",
			Criteria: rule.Criteria,
			Value:    rule.Value,
			Format:   &styleID,
		}
		if rule.Criteria == "between" {
			opt.MinValue = rule.Value
			opt.MaxValue = rule.Value2
		}
		opts = []excelize.ConditionalFormatOptions{opt}
	}
	return w.file.SetConditionalFormat(sheet, rangeRef(rng), opts)
}

func defaultColor(color, fallback string) string {
	if color == "" {
		return fallback
	}
	return color
}

func (w *Workbook) ClearConditionalFormats(ctx context.Context, rng addr.Range) error {
	return w.file.UnsetConditionalFormat(w.sheetOf(rng.Sheet), rangeRef(rng))
}

func (w *Workbook) AddDataValidation(ctx context.Context, rng addr.Range, v Validation) error {
	sheet := w.sheetOf(rng.Sheet)
	dv := excelize.NewDataValidation(true)
	dv.Sqref = rangeRef(rng)
	switch v.Type {
	case "list":
		if err := dv.SetDropList(v.List); err != nil {
			return fmt.Errorf("validation list: %w", err)
		}
	case "whole", "decimal":
		vtype := excelize.DataValidationTypeWhole
		if v.Type == "decimal" {
			vtype = excelize.DataValidationTypeDecimal
		}
		minimum, err := strconv.ParseFloat(v.Minimum, 64)
		if err != nil {
			return fmt.Errorf("validation minimum %q: %w", v.Minimum, err)
		}
		maximum, err := strconv.ParseFloat(v.Maximum, 64)
		if err != nil {
			return fmt.Errorf("validation maximum %q: %w", v.Maximum, err)
		}
		if err := dv.SetRange(minimum, maximum, vtype, excelize.DataValidationOperatorBetween); err != nil {
			return fmt.Errorf("validation range: %w", err)
		}
	default:
		return fmt.Errorf("%w: validation type %q", ErrUnsupported, v.Type)
	}
	if v.Prompt != "" {
		dv.SetInput("", v.Prompt)
	}
	return w.file.AddDataValidation(sheet, dv)
}

func (w *Workbook) ClearDataValidation(ctx context.Context, rng addr.Range) error {
	return w.file.DeleteDataValidation(w.sheetOf(rng.Sheet), rangeRef(rng))
}

func (w *Workbook) AddComment(ctx context.Context, cell addr.Range, author, text string) error {
	sheet := w.sheetOf(cell.Sheet)
	return w.file.AddComment(sheet, excelize.Comment{
		Cell:      cellName(cell.Anchor),
		Author:    author,
		Paragraph: []excelize.RichTextRun{{Text: text}},
	})
}

func (w *Workbook) ClearComments(ctx context.Context, rng addr.Range) error {
	sheet := w.sheetOf(rng.Sheet)
	for r := 0; r < rng.Rows; r++ {
		for c := 0; c < rng.Cols; c++ {
			name := cellName(addr.Cell{Col: rng.Anchor.Col + c, Row: rng.Anchor.Row + r})
			if err := w.file.DeleteComment(sheet, name); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Workbook) SetHyperlink(ctx context.Context, cell addr.Range, url, display string) error {
	sheet := w.sheetOf(cell.Sheet)
	name := cellName(cell.Anchor)
	if err := w.file.SetCellHyperLink(sheet, name, url, "External"); err != nil {
		return err
	}
	if display != "" {
		return w.file.SetCellValue(sheet, name, display)
	}
	return nil
}

// ClearHyperlinks is unsupported on xlsx files: excelize only knows the
// "External" and "Location" link types and has no removal call.
func (w *Workbook) ClearHyperlinks(ctx context.Context, rng addr.Range) error {
	return fmt.Errorf("%w: clearing hyperlinks", ErrUnsupported)
}

func (w *Workbook) AddSparkline(ctx context.Context, location addr.Range, dataRange, kind string) error {
	sheet := w.sheetOf(location.Sheet)
	if kind == "" {
		kind = "line"
	}
	return w.file.AddSparkline(sheet, &excelize.SparklineOptions{
		Location: []string{cellName(location.Anchor)},
		Range:    []string{dataRange},
		Type:     kind,
		Style:    18,
	})
}

func (w *Workbook) AddCheckbox(ctx context.Context, cell addr.Range, label string, checked bool) error {
	sheet := w.sheetOf(cell.Sheet)
	return w.file.AddFormControl(sheet, excelize.FormControl{
		Cell:    cellName(cell.Anchor),
		Type:    excelize.FormControlCheckBox,
		Text:    label,
		Checked: checked,
	})
}

func (w *Workbook) InsertRows(ctx context.Context, sheet string, row, count int) error {
	return w.file.InsertRows(w.sheetOf(sheet), row+1, count)
}

func (w *Workbook) InsertColumns(ctx context.Context, sheet string, col, count int) error {
	name, err := addr.ColumnName(col)
	if err != nil {
		return err
	}
	return w.file.InsertCols(w.sheetOf(sheet), name, count)
}

func (w *Workbook) DeleteRows(ctx context.Context, sheet string, row, count int) error {
	target := w.sheetOf(sheet)
	for i := 0; i < count; i++ {
		if err := w.file.RemoveRow(target, row+1); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workbook) DeleteColumns(ctx context.Context, sheet string, col, count int) error {
	target := w.sheetOf(sheet)
	name, err := addr.ColumnName(col)
	if err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		if err := w.file.RemoveCol(target, name); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workbook) DuplicateRow(ctx context.Context, sheet string, row int) error {
	return w.file.DuplicateRow(w.sheetOf(sheet), row+1)
}

func (w *Workbook) SetRowsVisible(ctx context.Context, sheet string, row, count int, visible bool) error {
	target := w.sheetOf(sheet)
	for i := 0; i < count; i++ {
		if err := w.file.SetRowVisible(target, row+1+i, visible); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workbook) SetColumnsVisible(ctx context.Context, sheet string, col, count int, visible bool) error {
	span, err := columnSpan(col, count)
	if err != nil {
		return err
	}
	return w.file.SetColVisible(w.sheetOf(sheet), span, visible)
}

func (w *Workbook) OutlineRows(ctx context.Context, sheet string, row, count int, level uint8) error {
	target := w.sheetOf(sheet)
	for i := 0; i < count; i++ {
		if err := w.file.SetRowOutlineLevel(target, row+1+i, level); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workbook) OutlineColumns(ctx context.Context, sheet string, col, count int, level uint8) error {
	target := w.sheetOf(sheet)
	for i := 0; i < count; i++ {
		name, err := addr.ColumnName(col + i)
		if err != nil {
			return err
		}
		if err := w.file.SetColOutlineLevel(target, name, level); err != nil {
			return err
		}
	}
	return nil
}

func (w *Workbook) SetColumnWidth(ctx context.Context, sheet string, col, count int, width float64) error {
	start, err := addr.ColumnName(col)
	if err != nil {
		return err
	}
	end, err := addr.ColumnName(col + count - 1)
	if err != nil {
		return err
	}
	return w.file.SetColWidth(w.sheetOf(sheet), start, end, width)
}

func (w *Workbook) SetRowHeight(ctx context.Context, sheet string, row, count int, height float64) error {
	target := w.sheetOf(sheet)
	for i := 0; i < count; i++ {
		if err := w.file.SetRowHeight(target, row+1+i, height); err != nil {
			return err
		}
	}
	return nil
}

func columnSpan(col, count int) (string, error) {
	start, err := addr.ColumnName(col)
	if err != nil {
		return "", err
	}
	if count <= 1 {
		return start, nil
	}
	end, err := addr.ColumnName(col + count - 1)
	if err != nil {
		return "", err
	}
	return start + ":" + end, nil
}

func (w *Workbook) FreezePanes(ctx context.Context, sheet string, split addr.Cell) error {
	return w.file.SetPanes(w.sheetOf(sheet), &excelize.Panes{
		Freeze:      true,
		XSplit:      split.Col,
		YSplit:      split.Row,
		TopLeftCell: cellName(split),
		ActivePane:  "bottomRight",
	})
}

func (w *Workbook) UnfreezePanes(ctx context.Context, sheet string) error {
	return w.file.SetPanes(w.sheetOf(sheet), &excelize.Panes{Freeze: false, Split: false})
}

func (w *Workbook) SetAutoFilter(ctx context.Context, rng addr.Range) error {
	return w.file.AutoFilter(w.sheetOf(rng.Sheet), rangeRef(rng), nil)
}

func (w *Workbook) ClearAutoFilter(ctx context.Context, sheet string) error {
	return fmt.Errorf("%w: clearing an auto filter", ErrUnsupported)
}

func (w *Workbook) SetPrintArea(ctx context.Context, rng addr.Range) error {
	sheet := w.sheetOf(rng.Sheet)
	return w.file.SetDefinedName(&excelize.DefinedName{
		Name:     "_xlnm.Print_Area",
		RefersTo: absRef(rng, sheet),
		Scope:    sheet,
	})
}

func (w *Workbook) AddSheet(ctx context.Context, name string) error {
	_, err := w.file.NewSheet(name)
	return err
}

func (w *Workbook) DeleteSheet(ctx context.Context, name string) error {
	return w.file.DeleteSheet(name)
}

func (w *Workbook) RenameSheet(ctx context.Context, oldName, newName string) error {
	return w.file.SetSheetName(oldName, newName)
}

func (w *Workbook) SetSheetVisible(ctx context.Context, name string, visible bool) error {
	return w.file.SetSheetVisible(name, visible)
}

func (w *Workbook) SetTabColor(ctx context.Context, name, rgb string) error {
	color := strings.TrimPrefix(rgb, "#")
	return w.file.SetSheetProps(name, &excelize.SheetPropsOptions{TabColorRGB: &color})
}

func (w *Workbook) ActivateSheet(ctx context.Context, name string) error {
	index, err := w.file.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if index < 0 {
		return fmt.Errorf("sheet %q not found", name)
	}
	w.file.SetActiveSheet(index)
	return nil
}

func (w *Workbook) ClearSheet(ctx context.Context, name string) error {
	rows, err := w.file.GetRows(name)
	if err != nil {
		return err
	}
	for r, row := range rows {
		for c := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := w.file.SetCellFormula(name, cell, ""); err != nil {
				return err
			}
			if err := w.file.SetCellValue(name, cell, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Workbook) ProtectSheet(ctx context.Context, name, password string) error {
	return w.file.ProtectSheet(name, &excelize.SheetProtectionOptions{
		Password:            password,
		SelectLockedCells:   true,
		SelectUnlockedCells: true,
		EditScenarios:       true,
	})
}

func (w *Workbook) UnprotectSheet(ctx context.Context, name string) error {
	return w.file.UnprotectSheet(name)
}

func (w *Workbook) ProtectWorkbook(ctx context.Context, password string) error {
	return w.file.ProtectWorkbook(&excelize.WorkbookProtectionOptions{
		Password:      password,
		LockStructure: true,
	})
}

func (w *Workbook) UnprotectWorkbook(ctx context.Context) error {
	return w.file.UnprotectWorkbook()
}

func (w *Workbook) SetGridlines(ctx context.Context, name string, show bool) error {
	return w.file.SetSheetView(name, 0, &excelize.ViewOptions{ShowGridLines: &show})
}

func (w *Workbook) SetZoom(ctx context.Context, name string, scale float64) error {
	return w.file.SetSheetView(name, 0, &excelize.ViewOptions{ZoomScale: &scale})
}

func (w *Workbook) SetHeaderFooter(ctx context.Context, name, header, footer string) error {
	return w.file.SetHeaderFooter(name, &excelize.HeaderFooterOptions{
		OddHeader: header,
		OddFooter: footer,
	})
}

func (w *Workbook) SetPageOrientation(ctx context.Context, name, orientation string) error {
	return w.file.SetPageLayout(name, &excelize.PageLayoutOptions{Orientation: &orientation})
}

func (w *Workbook) SetPageMargins(ctx context.Context, name string, m Margins) error {
	return w.file.SetPageMargins(name, &excelize.PageLayoutMarginsOptions{
		Left:   &m.Left,
		Right:  &m.Right,
		Top:    &m.Top,
		Bottom: &m.Bottom,
	})
}

func (w *Workbook) Sheets(ctx context.Context) ([]string, error) {
	return w.file.GetSheetList(), nil
}

func (w *Workbook) AddTable(ctx context.Context, rng addr.Range, name string, hasHeaders bool, styleName string) error {
	sheet := w.sheetOf(rng.Sheet)
	if styleName == "" {
		styleName = "TableStyleMedium9"
	}
	showHeader := hasHeaders
	return w.file.AddTable(sheet, &excelize.Table{
		Range:         rangeRef(rng),
		Name:          name,
		StyleName:     styleName,
		ShowHeaderRow: &showHeader,
	})
}

func (w *Workbook) DeleteTable(ctx context.Context, name string) error {
	return w.file.DeleteTable(name)
}

var chartTypes = map[string]excelize.ChartType{
	"column":   excelize.Col,
	"bar":      excelize.Bar,
	"line":     excelize.Line,
	"pie":      excelize.Pie,
	"area":     excelize.Area,
	"scatter":  excelize.Scatter,
	"doughnut": excelize.Doughnut,
	"radar":    excelize.Radar,
}

func (w *Workbook) AddChart(ctx context.Context, sheet string, at addr.Cell, spec ChartSpec) error {
	chartType, ok := chartTypes[spec.Type]
	if !ok {
		return fmt.Errorf("%w: chart type %q", ErrUnsupported, spec.Type)
	}
	chart := &excelize.Chart{
		Type: chartType,
		Series: []excelize.ChartSeries{{
			Name:       spec.Title,
			Categories: spec.CatRange,
			Values:     spec.DataRange,
		}},
	}
	if spec.Title != "" {
		chart.Title = []excelize.RichTextRun{{Text: spec.Title}}
	}
	return w.file.AddChart(w.sheetOf(sheet), cellName(at), chart)
}

func (w *Workbook) DeleteChart(ctx context.Context, sheet string, at addr.Cell) error {
	return w.file.DeleteChart(w.sheetOf(sheet), cellName(at))
}

func (w *Workbook) AddPivotTable(ctx context.Context, spec PivotSpec) error {
	opts := &excelize.PivotTableOptions{
		DataRange:       spec.DataRange,
		PivotTableRange: spec.TargetRange,
		RowGrandTotals:  true,
		ColGrandTotals:  true,
	}
	for _, field := range spec.Rows {
		opts.Rows = append(opts.Rows, excelize.PivotTableField{Data: field})
	}
	for _, field := range spec.Columns {
		opts.Columns = append(opts.Columns, excelize.PivotTableField{Data: field})
	}
	aggregate := spec.Aggregate
	if aggregate == "" {
		aggregate = "Sum"
	}
	for _, field := range spec.Values {
		opts.Data = append(opts.Data, excelize.PivotTableField{Data: field, Subtotal: aggregate})
	}
	return w.file.AddPivotTable(opts)
}

func (w *Workbook) AddSlicer(ctx context.Context, sheet string, spec SlicerSpec) error {
	caption := spec.Caption
	if caption == "" {
		caption = spec.Column
	}
	return w.file.AddSlicer(w.sheetOf(sheet), &excelize.SlicerOptions{
		Name:       spec.Column,
		Cell:       spec.Cell,
		TableSheet: w.sheetOf(spec.TableSheet),
		TableName:  spec.TableName,
		Caption:    caption,
	})
}

func (w *Workbook) SetDefinedName(ctx context.Context, name, refersTo, scope string) error {
	dn := &excelize.DefinedName{Name: name, RefersTo: refersTo}
	if scope != "" {
		dn.Scope = scope
	}
	return w.file.SetDefinedName(dn)
}

func (w *Workbook) DeleteDefinedName(ctx context.Context, name, scope string) error {
	dn := &excelize.DefinedName{Name: name}
	if scope != "" {
		dn.Scope = scope
	}
	return w.file.DeleteDefinedName(dn)
}

func (w *Workbook) AddImage(ctx context.Context, sheet string, at addr.Cell, path string) error {
	return w.file.AddPicture(w.sheetOf(sheet), cellName(at), path, nil)
}

func (w *Workbook) AddShape(ctx context.Context, sheet string, at addr.Cell, spec ShapeSpec) error {
	shapeType := spec.Type
	if shapeType == "" {
		shapeType = "rect"
	}
	width := spec.Width
	if width == 0 {
		width = 160
	}
	height := spec.Height
	if height == 0 {
		height = 60
	}
	return w.file.AddShape(w.sheetOf(sheet), &excelize.Shape{
		Cell:      cellName(at),
		Type:      shapeType,
		Paragraph: []excelize.RichTextRun{{Text: spec.Text}},
		Width:     width,
		Height:    height,
	})
}
