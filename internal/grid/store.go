// Package grid defines the grid-store collaborator contract the action
// handlers run against, plus the two implementations: an excelize-backed
// workbook store and an in-memory store.
package grid

import (
	"context"
	"errors"

	"sheetwright/engine/internal/addr"
)

// ErrUnsupported is returned by stores for operations the backing host cannot
// perform. Handlers surface it as a host failure.
var ErrUnsupported = errors.New("operation not supported by grid store")

// RangeData is a snapshot of a range. The Formulas grid carries the literal
// cell text for cells without a formula, so writing Formulas back restores
// plain values as well. Undo depends on that contract.
type RangeData struct {
	Address  addr.Range
	Values   [][]string
	Formulas [][]string
}

// StyleDelta is a partial style update; nil fields are left untouched.
type StyleDelta struct {
	Bold          *bool
	Italic        *bool
	Underline     *bool
	Strikethrough *bool
	FontSize      *float64
	FontName      *string
	FontColor     *string
	FillColor     *string
	NumberFormat  *string
	Borders       *string // "all", "outline", "none"
	HAlign        *string
	VAlign        *string
	WrapText      *bool
	TextRotation  *int
}

// ConditionalRule describes one conditional-format rule for a range.
type ConditionalRule struct {
	Type     string // "cellIs", "colorScale", "dataBar"
	Criteria string // for cellIs: ">", "<", "between", ...
	Value    string
	Value2   string
	Color    string
}

// Validation describes a data-validation rule.
type Validation struct {
	Type     string // "list", "whole", "decimal"
	Operator string // "between", ">", ...
	Minimum  string
	Maximum  string
	List     []string
	Prompt   string
}

// ChartSpec describes a chart to insert at a cell.
type ChartSpec struct {
	Type      string // "column", "bar", "line", "pie", "area", "scatter", "doughnut", "radar"
	DataRange string // sheet-qualified A1 range of series values
	CatRange  string // optional category axis range
	Title     string
}

// PivotSpec describes a pivot table.
type PivotSpec struct {
	DataRange   string // sheet-qualified source
	TargetRange string // sheet-qualified destination block
	Rows        []string
	Columns     []string
	Values      []string
	Aggregate   string // "Sum", "Count", "Average", ...
}

// SlicerSpec describes a table slicer.
type SlicerSpec struct {
	TableSheet string
	TableName  string
	Column     string
	Cell       string
	Caption    string
}

// ShapeSpec describes a drawing shape anchored at a cell.
type ShapeSpec struct {
	Type   string // "rect", "oval", ...
	Text   string
	Width  uint
	Height uint
}

// Margins are page margins in inches.
type Margins struct {
	Left   float64
	Right  float64
	Top    float64
	Bottom float64
}

// RangeAccess covers value and formula IO on resolvable ranges.
type RangeAccess interface {
	ReadRange(ctx context.Context, rng addr.Range) (*RangeData, error)
	WriteValues(ctx context.Context, rng addr.Range, values [][]string) error
	WriteFormulas(ctx context.Context, rng addr.Range, formulas [][]string) error
	ClearRange(ctx context.Context, rng addr.Range, contentsOnly bool) error
}

// RangeFormat covers presentation state attached to ranges.
type RangeFormat interface {
	SetStyle(ctx context.Context, rng addr.Range, style StyleDelta) error
	ClearFormats(ctx context.Context, rng addr.Range) error
	MergeCells(ctx context.Context, rng addr.Range) error
	UnmergeCells(ctx context.Context, rng addr.Range) error
	AddConditionalFormat(ctx context.Context, rng addr.Range, rule ConditionalRule) error
	ClearConditionalFormats(ctx context.Context, rng addr.Range) error
	AddDataValidation(ctx context.Context, rng addr.Range, v Validation) error
	ClearDataValidation(ctx context.Context, rng addr.Range) error
	AddComment(ctx context.Context, cell addr.Range, author, text string) error
	ClearComments(ctx context.Context, rng addr.Range) error
	SetHyperlink(ctx context.Context, cell addr.Range, url, display string) error
	ClearHyperlinks(ctx context.Context, rng addr.Range) error
	AddSparkline(ctx context.Context, location addr.Range, dataRange, kind string) error
	AddCheckbox(ctx context.Context, cell addr.Range, label string, checked bool) error
}

// Structural covers row/column and sheet-layout mutations addressed by range.
type Structural interface {
	InsertRows(ctx context.Context, sheet string, row, count int) error
	InsertColumns(ctx context.Context, sheet string, col, count int) error
	DeleteRows(ctx context.Context, sheet string, row, count int) error
	DeleteColumns(ctx context.Context, sheet string, col, count int) error
	DuplicateRow(ctx context.Context, sheet string, row int) error
	SetRowsVisible(ctx context.Context, sheet string, row, count int, visible bool) error
	SetColumnsVisible(ctx context.Context, sheet string, col, count int, visible bool) error
	OutlineRows(ctx context.Context, sheet string, row, count int, level uint8) error
	OutlineColumns(ctx context.Context, sheet string, col, count int, level uint8) error
	SetColumnWidth(ctx context.Context, sheet string, col, count int, width float64) error
	SetRowHeight(ctx context.Context, sheet string, row, count int, height float64) error
	FreezePanes(ctx context.Context, sheet string, split addr.Cell) error
	UnfreezePanes(ctx context.Context, sheet string) error
	SetAutoFilter(ctx context.Context, rng addr.Range) error
	ClearAutoFilter(ctx context.Context, sheet string) error
	SetPrintArea(ctx context.Context, rng addr.Range) error
}

// SheetOps covers whole-sheet and workbook-level operations addressed by name.
type SheetOps interface {
	AddSheet(ctx context.Context, name string) error
	DeleteSheet(ctx context.Context, name string) error
	RenameSheet(ctx context.Context, oldName, newName string) error
	SetSheetVisible(ctx context.Context, name string, visible bool) error
	SetTabColor(ctx context.Context, name, rgb string) error
	ActivateSheet(ctx context.Context, name string) error
	ClearSheet(ctx context.Context, name string) error
	ProtectSheet(ctx context.Context, name, password string) error
	UnprotectSheet(ctx context.Context, name string) error
	ProtectWorkbook(ctx context.Context, password string) error
	UnprotectWorkbook(ctx context.Context) error
	SetGridlines(ctx context.Context, name string, show bool) error
	SetZoom(ctx context.Context, name string, scale float64) error
	SetHeaderFooter(ctx context.Context, name, header, footer string) error
	SetPageOrientation(ctx context.Context, name, orientation string) error
	SetPageMargins(ctx context.Context, name string, m Margins) error
	Sheets(ctx context.Context) ([]string, error)
}

// Objects covers tables, charts, pivots and other named artifacts.
type Objects interface {
	AddTable(ctx context.Context, rng addr.Range, name string, hasHeaders bool, styleName string) error
	DeleteTable(ctx context.Context, name string) error
	AddChart(ctx context.Context, sheet string, at addr.Cell, spec ChartSpec) error
	DeleteChart(ctx context.Context, sheet string, at addr.Cell) error
	AddPivotTable(ctx context.Context, spec PivotSpec) error
	AddSlicer(ctx context.Context, sheet string, spec SlicerSpec) error
	SetDefinedName(ctx context.Context, name, refersTo, scope string) error
	DeleteDefinedName(ctx context.Context, name, scope string) error
	AddImage(ctx context.Context, sheet string, at addr.Cell, path string) error
	AddShape(ctx context.Context, sheet string, at addr.Cell, spec ShapeSpec) error
}

// Store is the full grid-store collaborator. The engine treats every call as
// a suspension point and never issues calls concurrently; Commit flushes any
// buffered mutations to the backing host.
type Store interface {
	RangeAccess
	RangeFormat
	Structural
	SheetOps
	Objects
	Commit(ctx context.Context) error
}
