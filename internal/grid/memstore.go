package grid

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"sheetwright/engine/internal/addr"
)

type memCell struct {
	value   string
	formula string
}

// MemStore is an in-memory grid store. It keeps real value/formula state so
// snapshot capture and undo behave like the workbook store, and records every
// structural call it receives. Dry runs and tests use it in place of a
// workbook.
type MemStore struct {
	mu       sync.Mutex
	sheets   map[string]map[addr.Cell]memCell
	order    []string
	ops      []string
	failures map[string]error
}

func NewMemStore(sheets ...string) *MemStore {
	if len(sheets) == 0 {
		sheets = []string{"Sheet1"}
	}
	s := &MemStore{
		sheets:   make(map[string]map[addr.Cell]memCell),
		failures: make(map[string]error),
	}
	for _, name := range sheets {
		s.sheets[name] = make(map[addr.Cell]memCell)
		s.order = append(s.order, name)
	}
	return s
}

// FailWith makes the next call of the named operation return err.
func (s *MemStore) FailWith(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// Ops returns the recorded operation log.
func (s *MemStore) Ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.ops))
	copy(out, s.ops)
	return out
}

// CallCount reports how many store calls were recorded. With an op name it
// counts only that operation.
func (s *MemStore) CallCount(op ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(op) == 0 {
		return len(s.ops)
	}
	n := 0
	for _, entry := range s.ops {
		if entry == op[0] || strings.HasPrefix(entry, op[0]+" ") {
			n++
		}
	}
	return n
}

// Cell returns the stored value and formula for one cell.
func (s *MemStore) Cell(sheet string, cell addr.Cell) (value, formula string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.sheets[s.sheetKey(sheet)][cell]
	return c.value, c.formula
}

// SetCell seeds a cell directly, bypassing the operation log.
func (s *MemStore) SetCell(sheet string, cell addr.Cell, value, formula string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.sheetKey(sheet)
	if s.sheets[key] == nil {
		s.sheets[key] = make(map[addr.Cell]memCell)
		s.order = append(s.order, key)
	}
	s.sheets[key][cell] = memCell{value: value, formula: formula}
}

func (s *MemStore) sheetKey(sheet string) string {
	if sheet == "" && len(s.order) > 0 {
		return s.order[0]
	}
	return sheet
}

func (s *MemStore) record(op string, detail ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := op
	if len(detail) > 0 {
		parts := make([]string, len(detail))
		for i, d := range detail {
			parts[i] = fmt.Sprint(d)
		}
		entry = op + " " + strings.Join(parts, " ")
	}
	s.ops = append(s.ops, entry)
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

func (s *MemStore) ReadRange(ctx context.Context, rng addr.Range) (*RangeData, error) {
	if err := s.record("readRange", rng); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cells := s.sheets[s.sheetKey(rng.Sheet)]
	data := &RangeData{
		Address:  rng,
		Values:   make([][]string, rng.Rows),
		Formulas: make([][]string, rng.Rows),
	}
	for r := 0; r < rng.Rows; r++ {
		data.Values[r] = make([]string, rng.Cols)
		data.Formulas[r] = make([]string, rng.Cols)
		for c := 0; c < rng.Cols; c++ {
			cell := cells[addr.Cell{Col: rng.Anchor.Col + c, Row: rng.Anchor.Row + r}]
			data.Values[r][c] = cell.value
			if cell.formula != "" {
				data.Formulas[r][c] = cell.formula
			} else {
				data.Formulas[r][c] = cell.value
			}
		}
	}
	return data, nil
}

func (s *MemStore) WriteValues(ctx context.Context, rng addr.Range, values [][]string) error {
	if err := checkExtent(rng, values); err != nil {
		return err
	}
	if err := s.record("writeValues", rng); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cells := s.ensureSheet(rng.Sheet)
	for r := range values {
		for c := range values[r] {
			cells[addr.Cell{Col: rng.Anchor.Col + c, Row: rng.Anchor.Row + r}] = memCell{value: values[r][c]}
		}
	}
	return nil
}

func (s *MemStore) WriteFormulas(ctx context.Context, rng addr.Range, formulas [][]string) error {
	if err := checkExtent(rng, formulas); err != nil {
		return err
	}
	if err := s.record("writeFormulas", rng); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cells := s.ensureSheet(rng.Sheet)
	for r := range formulas {
		for c := range formulas[r] {
			key := addr.Cell{Col: rng.Anchor.Col + c, Row: rng.Anchor.Row + r}
			text := formulas[r][c]
			if strings.HasPrefix(text, "=") {
				cells[key] = memCell{formula: text}
			} else {
				cells[key] = memCell{value: text}
			}
		}
	}
	return nil
}

func (s *MemStore) ClearRange(ctx context.Context, rng addr.Range, contentsOnly bool) error {
	if err := s.record("clearRange", rng); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cells := s.sheets[s.sheetKey(rng.Sheet)]
	for key := range cells {
		if rng.Contains(key) {
			delete(cells, key)
		}
	}
	return nil
}

func (s *MemStore) ensureSheet(sheet string) map[addr.Cell]memCell {
	key := s.sheetKey(sheet)
	if s.sheets[key] == nil {
		s.sheets[key] = make(map[addr.Cell]memCell)
		s.order = append(s.order, key)
	}
	return s.sheets[key]
}

func checkExtent(rng addr.Range, grid [][]string) error {
	if len(grid) != rng.Rows {
		return fmt.Errorf("grid has %d rows, range %s has %d", len(grid), rng, rng.Rows)
	}
	for _, row := range grid {
		if len(row) != rng.Cols {
			return fmt.Errorf("grid has %d cols, range %s has %d", len(row), rng, rng.Cols)
		}
	}
	return nil
}

func (s *MemStore) SetStyle(ctx context.Context, rng addr.Range, style StyleDelta) error {
	return s.record("setStyle", rng)
}

func (s *MemStore) ClearFormats(ctx context.Context, rng addr.Range) error {
	return s.record("clearFormats", rng)
}

func (s *MemStore) MergeCells(ctx context.Context, rng addr.Range) error {
	return s.record("mergeCells", rng)
}

func (s *MemStore) UnmergeCells(ctx context.Context, rng addr.Range) error {
	return s.record("unmergeCells", rng)
}

func (s *MemStore) AddConditionalFormat(ctx context.Context, rng addr.Range, rule ConditionalRule) error {
	return s.record("addConditionalFormat", rng, rule.Type)
}

func (s *MemStore) ClearConditionalFormats(ctx context.Context, rng addr.Range) error {
	return s.record("clearConditionalFormats", rng)
}

func (s *MemStore) AddDataValidation(ctx context.Context, rng addr.Range, v Validation) error {
	return s.record("addDataValidation", rng, v.Type)
}

func (s *MemStore) ClearDataValidation(ctx context.Context, rng addr.Range) error {
	return s.record("clearDataValidation", rng)
}

func (s *MemStore) AddComment(ctx context.Context, cell addr.Range, author, text string) error {
	return s.record("addComment", cell)
}

func (s *MemStore) ClearComments(ctx context.Context, rng addr.Range) error {
	return s.record("clearComments", rng)
}

func (s *MemStore) SetHyperlink(ctx context.Context, cell addr.Range, url, display string) error {
	return s.record("setHyperlink", cell, url)
}

func (s *MemStore) ClearHyperlinks(ctx context.Context, rng addr.Range) error {
	return s.record("clearHyperlinks", rng)
}

func (s *MemStore) AddSparkline(ctx context.Context, location addr.Range, dataRange, kind string) error {
	return s.record("addSparkline", location, dataRange)
}

func (s *MemStore) AddCheckbox(ctx context.Context, cell addr.Range, label string, checked bool) error {
	return s.record("addCheckbox", cell, label)
}

func (s *MemStore) InsertRows(ctx context.Context, sheet string, row, count int) error {
	return s.record("insertRows", sheet, row, count)
}

func (s *MemStore) InsertColumns(ctx context.Context, sheet string, col, count int) error {
	return s.record("insertColumns", sheet, col, count)
}

func (s *MemStore) DeleteRows(ctx context.Context, sheet string, row, count int) error {
	return s.record("deleteRows", sheet, row, count)
}

func (s *MemStore) DeleteColumns(ctx context.Context, sheet string, col, count int) error {
	return s.record("deleteColumns", sheet, col, count)
}

func (s *MemStore) DuplicateRow(ctx context.Context, sheet string, row int) error {
	return s.record("duplicateRow", sheet, row)
}

func (s *MemStore) SetRowsVisible(ctx context.Context, sheet string, row, count int, visible bool) error {
	return s.record("setRowsVisible", sheet, row, count, visible)
}

func (s *MemStore) SetColumnsVisible(ctx context.Context, sheet string, col, count int, visible bool) error {
	return s.record("setColumnsVisible", sheet, col, count, visible)
}

func (s *MemStore) OutlineRows(ctx context.Context, sheet string, row, count int, level uint8) error {
	return s.record("outlineRows", sheet, row, count, level)
}

func (s *MemStore) OutlineColumns(ctx context.Context, sheet string, col, count int, level uint8) error {
	return s.record("outlineColumns", sheet, col, count, level)
}

func (s *MemStore) SetColumnWidth(ctx context.Context, sheet string, col, count int, width float64) error {
	return s.record("setColumnWidth", sheet, col, count, width)
}

func (s *MemStore) SetRowHeight(ctx context.Context, sheet string, row, count int, height float64) error {
	return s.record("setRowHeight", sheet, row, count, height)
}

func (s *MemStore) FreezePanes(ctx context.Context, sheet string, split addr.Cell) error {
	return s.record("freezePanes", sheet, split.Name())
}

func (s *MemStore) UnfreezePanes(ctx context.Context, sheet string) error {
	return s.record("unfreezePanes", sheet)
}

func (s *MemStore) SetAutoFilter(ctx context.Context, rng addr.Range) error {
	return s.record("setAutoFilter", rng)
}

func (s *MemStore) ClearAutoFilter(ctx context.Context, sheet string) error {
	return s.record("clearAutoFilter", sheet)
}

func (s *MemStore) SetPrintArea(ctx context.Context, rng addr.Range) error {
	return s.record("setPrintArea", rng)
}

func (s *MemStore) AddSheet(ctx context.Context, name string) error {
	if err := s.record("addSheet", name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sheets[name] == nil {
		s.sheets[name] = make(map[addr.Cell]memCell)
		s.order = append(s.order, name)
	}
	return nil
}

func (s *MemStore) DeleteSheet(ctx context.Context, name string) error {
	if err := s.record("deleteSheet", name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sheets, name)
	for i, existing := range s.order {
		if existing == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemStore) RenameSheet(ctx context.Context, oldName, newName string) error {
	if err := s.record("renameSheet", oldName, newName); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cells, ok := s.sheets[oldName]; ok {
		delete(s.sheets, oldName)
		s.sheets[newName] = cells
		for i, existing := range s.order {
			if existing == oldName {
				s.order[i] = newName
			}
		}
	}
	return nil
}

func (s *MemStore) SetSheetVisible(ctx context.Context, name string, visible bool) error {
	return s.record("setSheetVisible", name, visible)
}

func (s *MemStore) SetTabColor(ctx context.Context, name, rgb string) error {
	return s.record("setTabColor", name, rgb)
}

func (s *MemStore) ActivateSheet(ctx context.Context, name string) error {
	return s.record("activateSheet", name)
}

func (s *MemStore) ClearSheet(ctx context.Context, name string) error {
	if err := s.record("clearSheet", name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sheets[name]; ok {
		s.sheets[name] = make(map[addr.Cell]memCell)
	}
	return nil
}

func (s *MemStore) ProtectSheet(ctx context.Context, name, password string) error {
	return s.record("protectSheet", name)
}

func (s *MemStore) UnprotectSheet(ctx context.Context, name string) error {
	return s.record("unprotectSheet", name)
}

func (s *MemStore) ProtectWorkbook(ctx context.Context, password string) error {
	return s.record("protectWorkbook")
}

func (s *MemStore) UnprotectWorkbook(ctx context.Context) error {
	return s.record("unprotectWorkbook")
}

func (s *MemStore) SetGridlines(ctx context.Context, name string, show bool) error {
	return s.record("setGridlines", name, show)
}

func (s *MemStore) SetZoom(ctx context.Context, name string, scale float64) error {
	return s.record("setZoom", name, scale)
}

func (s *MemStore) SetHeaderFooter(ctx context.Context, name, header, footer string) error {
	return s.record("setHeaderFooter", name)
}

func (s *MemStore) SetPageOrientation(ctx context.Context, name, orientation string) error {
	return s.record("setPageOrientation", name, orientation)
}

func (s *MemStore) SetPageMargins(ctx context.Context, name string, m Margins) error {
	return s.record("setPageMargins", name)
}

func (s *MemStore) Sheets(ctx context.Context) ([]string, error) {
	if err := s.record("sheets"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out, nil
}

func (s *MemStore) AddTable(ctx context.Context, rng addr.Range, name string, hasHeaders bool, styleName string) error {
	return s.record("addTable", rng, name)
}

func (s *MemStore) DeleteTable(ctx context.Context, name string) error {
	return s.record("deleteTable", name)
}

func (s *MemStore) AddChart(ctx context.Context, sheet string, at addr.Cell, spec ChartSpec) error {
	return s.record("addChart", sheet, at.Name(), spec.Type)
}

func (s *MemStore) DeleteChart(ctx context.Context, sheet string, at addr.Cell) error {
	return s.record("deleteChart", sheet, at.Name())
}

func (s *MemStore) AddPivotTable(ctx context.Context, spec PivotSpec) error {
	return s.record("addPivotTable", spec.DataRange, spec.TargetRange)
}

func (s *MemStore) AddSlicer(ctx context.Context, sheet string, spec SlicerSpec) error {
	return s.record("addSlicer", sheet, spec.TableName, spec.Column)
}

func (s *MemStore) SetDefinedName(ctx context.Context, name, refersTo, scope string) error {
	return s.record("setDefinedName", name, refersTo)
}

func (s *MemStore) DeleteDefinedName(ctx context.Context, name, scope string) error {
	return s.record("deleteDefinedName", name)
}

func (s *MemStore) AddImage(ctx context.Context, sheet string, at addr.Cell, path string) error {
	return s.record("addImage", sheet, at.Name(), path)
}

func (s *MemStore) AddShape(ctx context.Context, sheet string, at addr.Cell, spec ShapeSpec) error {
	return s.record("addShape", sheet, at.Name(), spec.Type)
}

func (s *MemStore) Commit(ctx context.Context) error {
	return s.record("commit")
}

// SortedCells lists the populated cells of a sheet in row-major order, for
// inspection in tests.
func (s *MemStore) SortedCells(sheet string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cells := s.sheets[s.sheetKey(sheet)]
	keys := make([]addr.Cell, 0, len(cells))
	for key := range cells {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Row != keys[j].Row {
			return keys[i].Row < keys[j].Row
		}
		return keys[i].Col < keys[j].Col
	})
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		cell := cells[key]
		text := cell.value
		if cell.formula != "" {
			text = cell.formula
		}
		out = append(out, fmt.Sprintf("%s=%s", key.Name(), text))
	}
	return out
}
