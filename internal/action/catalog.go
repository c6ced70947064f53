package action

import (
	"context"
	"fmt"

	"sheetwright/engine/internal/addr"
	"sheetwright/engine/internal/errinfo"
	"sheetwright/engine/internal/formula"
	"sheetwright/engine/internal/grid"
)

// NewRegistry builds the full action catalog. The catalog is static: the set
// of kinds is fixed at compile time and registration happens once.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]CatalogEntry)}
	registerValueKinds(r)
	registerFormatKinds(r)
	registerStructuralKinds(r)
	registerNameKinds(r)
	return r
}

// Value and formula kinds. These mutate cell content and are undo-capable.
func registerValueKinds(r *Registry) {
	register(r, "setValue", TargetRange, true,
		"Fill every cell of the target range with one literal value.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p setValuePayload) error {
			return store.WriteValues(ctx, rng, replicate(p.Value, rng.Rows, rng.Cols))
		})

	register(r, "setValues", TargetRange, true,
		"Write a grid of literal values matching the target extent.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p setValuesPayload) error {
			if err := matchExtent(rng, p.Values); err != nil {
				return err
			}
			return store.WriteValues(ctx, rng, p.Values)
		})

	register(r, "setFormula", TargetRange, true,
		"Write a formula to the anchor and distribute it across the range with relative references shifted.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p setFormulaPayload) error {
			distributed, err := formula.Distribute(p.Formula, rng.Rows, rng.Cols)
			if err != nil {
				return errinfo.InvalidPayload(errinfo.PhaseApply, err.Error())
			}
			return store.WriteFormulas(ctx, rng, distributed)
		})

	register(r, "setFormulas", TargetRange, true,
		"Write a grid of formulas matching the target extent, without distribution.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p setFormulasPayload) error {
			if err := matchExtent(rng, p.Formulas); err != nil {
				return err
			}
			return store.WriteFormulas(ctx, rng, p.Formulas)
		})

	register(r, "clearContents", TargetRange, true,
		"Clear values and formulas, keeping formatting.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.ClearRange(ctx, rng, true)
		})

	register(r, "clearAll", TargetRange, true,
		"Clear values, formulas and formatting.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.ClearRange(ctx, rng, false)
		})

	register(r, "copyRange", TargetRange, true,
		"Copy the target block to a destination anchor, shifting relative references.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p destinationPayload) error {
			return copyBlock(ctx, store, rng, p.destRange(rng), true, false)
		})

	register(r, "moveRange", TargetRange, true,
		"Move the target block to a destination anchor, preserving references.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p destinationPayload) error {
			return copyBlock(ctx, store, rng, p.destRange(rng), false, true)
		})

	register(r, "transposeRange", TargetRange, true,
		"Write the target block's values to a destination with rows and columns swapped.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p transposePayload) error {
			return transposeBlock(ctx, store, rng,
				destinationPayload{Destination: p.Destination, Transpose: true}.destRange(rng))
		})

	register(r, "fillDown", TargetRange, true,
		"Distribute the first row of the range downward.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return fillFromEdge(ctx, store, rng, true, false)
		})

	register(r, "fillRight", TargetRange, true,
		"Distribute the first column of the range rightward.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return fillFromEdge(ctx, store, rng, false, false)
		})

	register(r, "autoFill", TargetRange, true,
		"Extend the first row downward, continuing numeric series.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return fillFromEdge(ctx, store, rng, true, true)
		})

	register(r, "sortRange", TargetRange, true,
		"Sort the range's rows by one of its columns.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p sortPayload) error {
			if p.Column >= rng.Cols {
				return errinfo.InvalidPayload(errinfo.PhaseApply,
					fmt.Sprintf("sort column %d outside range with %d columns", p.Column, rng.Cols))
			}
			return sortRows(ctx, store, rng, p)
		})

	register(r, "removeDuplicates", TargetRange, true,
		"Drop duplicate rows, keeping the first occurrence.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p dedupePayload) error {
			for _, c := range p.Columns {
				if c >= rng.Cols {
					return errinfo.InvalidPayload(errinfo.PhaseApply,
						fmt.Sprintf("key column %d outside range with %d columns", c, rng.Cols))
				}
			}
			return removeDuplicateRows(ctx, store, rng, p.Columns)
		})

	register(r, "findReplace", TargetRange, true,
		"Replace text in cell contents across the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p findReplacePayload) error {
			return findReplaceRows(ctx, store, rng, p)
		})

	register(r, "textToColumns", TargetRange, true,
		"Split the range's first column by a delimiter into the range's columns.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p splitPayload) error {
			return splitFirstColumn(ctx, store, rng, p)
		})

	register(r, "splitColumn", TargetRange, true,
		"Split the range's first column by a delimiter into the range's columns.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p splitPayload) error {
			return splitFirstColumn(ctx, store, rng, p)
		})

	register(r, "appendValues", TargetRange, true,
		"Append a grid of values in the rows directly below the target range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p appendValuesPayload) error {
			dest := addr.Range{
				Sheet:  rng.Sheet,
				Anchor: addr.Cell{Col: rng.Anchor.Col, Row: rng.End().Row + 1},
				Rows:   len(p.Values),
				Cols:   len(p.Values[0]),
			}
			return store.WriteValues(ctx, dest, p.Values)
		})

	register(r, "trimWhitespace", TargetRange, true,
		"Trim leading and trailing whitespace from literal cells.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return mapLiterals(ctx, store, rng, trimCell)
		})

	register(r, "changeCase", TargetRange, true,
		"Change the case of literal cells.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p changeCasePayload) error {
			return mapLiterals(ctx, store, rng, caseMapper(p.Mode))
		})
}

// Formatting kinds. Formatting is not snapshot-captured, so none of these are
// undo-capable.
func registerFormatKinds(r *Registry) {
	styleKind := func(kind, doc string, delta func(p togglePayload) grid.StyleDelta) {
		register(r, kind, TargetRange, false, doc,
			func(ctx context.Context, store grid.Store, rng addr.Range, target string, p togglePayload) error {
				return store.SetStyle(ctx, rng, delta(p))
			})
	}
	styleKind("setFontBold", "Toggle bold on the range.", func(p togglePayload) grid.StyleDelta {
		b := p.on()
		return grid.StyleDelta{Bold: &b}
	})
	styleKind("setFontItalic", "Toggle italics on the range.", func(p togglePayload) grid.StyleDelta {
		b := p.on()
		return grid.StyleDelta{Italic: &b}
	})
	styleKind("setFontUnderline", "Toggle underline on the range.", func(p togglePayload) grid.StyleDelta {
		b := p.on()
		return grid.StyleDelta{Underline: &b}
	})
	styleKind("setFontStrikethrough", "Toggle strikethrough on the range.", func(p togglePayload) grid.StyleDelta {
		b := p.on()
		return grid.StyleDelta{Strikethrough: &b}
	})
	styleKind("setWrapText", "Toggle text wrapping on the range.", func(p togglePayload) grid.StyleDelta {
		b := p.on()
		return grid.StyleDelta{WrapText: &b}
	})

	register(r, "setNumberFormat", TargetRange, false, "Apply a number format code to the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p numberFormatPayload) error {
			return store.SetStyle(ctx, rng, grid.StyleDelta{NumberFormat: &p.Format})
		})

	register(r, "setFontSize", TargetRange, false, "Set the font size on the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p fontSizePayload) error {
			return store.SetStyle(ctx, rng, grid.StyleDelta{FontSize: &p.Size})
		})

	register(r, "setFontName", TargetRange, false, "Set the font family on the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p fontNamePayload) error {
			return store.SetStyle(ctx, rng, grid.StyleDelta{FontName: &p.Name})
		})

	register(r, "setFontColor", TargetRange, false, "Set the font color on the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p colorPayload) error {
			return store.SetStyle(ctx, rng, grid.StyleDelta{FontColor: &p.Color})
		})

	register(r, "setFillColor", TargetRange, false, "Set the background fill color on the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p colorPayload) error {
			return store.SetStyle(ctx, rng, grid.StyleDelta{FillColor: &p.Color})
		})

	register(r, "setBorders", TargetRange, false, "Apply or remove cell borders on the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p bordersPayload) error {
			style := p.Style
			if style == "" {
				style = "all"
			}
			return store.SetStyle(ctx, rng, grid.StyleDelta{Borders: &style})
		})

	register(r, "setAlignment", TargetRange, false, "Set horizontal alignment on the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p alignmentPayload) error {
			return store.SetStyle(ctx, rng, grid.StyleDelta{HAlign: &p.Horizontal})
		})

	register(r, "setVerticalAlignment", TargetRange, false, "Set vertical alignment on the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p verticalAlignmentPayload) error {
			return store.SetStyle(ctx, rng, grid.StyleDelta{VAlign: &p.Vertical})
		})

	register(r, "setTextRotation", TargetRange, false, "Set text rotation on the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p rotationPayload) error {
			return store.SetStyle(ctx, rng, grid.StyleDelta{TextRotation: &p.Degrees})
		})

	register(r, "clearFormats", TargetRange, false, "Reset the range to default formatting.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.ClearFormats(ctx, rng)
		})

	register(r, "mergeCells", TargetRange, false, "Merge the range into one cell.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.MergeCells(ctx, rng)
		})

	register(r, "unmergeCells", TargetRange, false, "Split previously merged cells.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.UnmergeCells(ctx, rng)
		})

	register(r, "addConditionalFormat", TargetRange, false, "Add a conditional formatting rule to the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p conditionalPayload) error {
			ruleType := p.Type
			if ruleType == "" {
				ruleType = "cellIs"
			}
			return store.AddConditionalFormat(ctx, rng, grid.ConditionalRule{
				Type:     ruleType,
				Criteria: p.Criteria,
				Value:    p.Value,
				Value2:   p.Value2,
				Color:    p.Color,
			})
		})

	register(r, "clearConditionalFormats", TargetRange, false, "Remove conditional formatting from the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.ClearConditionalFormats(ctx, rng)
		})

	register(r, "addDataValidation", TargetRange, false, "Add a data validation rule to the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p validationPayload) error {
			return store.AddDataValidation(ctx, rng, grid.Validation{
				Type:     p.Type,
				Operator: "between",
				Minimum:  p.Minimum,
				Maximum:  p.Maximum,
				List:     p.List,
				Prompt:   p.Prompt,
			})
		})

	register(r, "clearDataValidation", TargetRange, false, "Remove data validation from the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.ClearDataValidation(ctx, rng)
		})

	register(r, "addComment", TargetRange, false, "Attach a comment to the range's anchor cell.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p commentPayload) error {
			return store.AddComment(ctx, rng, p.Author, p.Text)
		})

	register(r, "clearComments", TargetRange, false, "Remove comments from the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.ClearComments(ctx, rng)
		})

	register(r, "setHyperlink", TargetRange, false, "Set a hyperlink on the range's anchor cell.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p hyperlinkPayload) error {
			return store.SetHyperlink(ctx, rng, p.URL, p.Display)
		})

	register(r, "clearHyperlinks", TargetRange, false, "Remove hyperlinks from the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.ClearHyperlinks(ctx, rng)
		})

	register(r, "addSparkline", TargetRange, false, "Place a sparkline at the range's anchor cell.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p sparklinePayload) error {
			return store.AddSparkline(ctx, rng, p.DataRange, p.Type)
		})

	register(r, "addCheckbox", TargetRange, false, "Place a checkbox control at the range's anchor cell.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p checkboxPayload) error {
			return store.AddCheckbox(ctx, rng, p.Label, p.Checked)
		})
}

// Structural kinds. The target range determines which rows or columns the
// operation spans; an optional count overrides the span.
func registerStructuralKinds(r *Registry) {
	register(r, "insertRows", TargetRange, false, "Insert blank rows at the range's first row.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p countPayload) error {
			return store.InsertRows(ctx, rng.Sheet, rng.Anchor.Row, spanOr(p.Count, rng.Rows))
		})

	register(r, "insertColumns", TargetRange, false, "Insert blank columns at the range's first column.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p countPayload) error {
			return store.InsertColumns(ctx, rng.Sheet, rng.Anchor.Col, spanOr(p.Count, rng.Cols))
		})

	register(r, "deleteRows", TargetRange, false, "Delete the range's rows.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p countPayload) error {
			return store.DeleteRows(ctx, rng.Sheet, rng.Anchor.Row, spanOr(p.Count, rng.Rows))
		})

	register(r, "deleteColumns", TargetRange, false, "Delete the range's columns.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p countPayload) error {
			return store.DeleteColumns(ctx, rng.Sheet, rng.Anchor.Col, spanOr(p.Count, rng.Cols))
		})

	register(r, "duplicateRow", TargetRange, false, "Duplicate the range's first row below itself.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.DuplicateRow(ctx, rng.Sheet, rng.Anchor.Row)
		})

	register(r, "hideRows", TargetRange, false, "Hide the range's rows.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.SetRowsVisible(ctx, rng.Sheet, rng.Anchor.Row, rng.Rows, false)
		})

	register(r, "showRows", TargetRange, false, "Unhide the range's rows.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.SetRowsVisible(ctx, rng.Sheet, rng.Anchor.Row, rng.Rows, true)
		})

	register(r, "hideColumns", TargetRange, false, "Hide the range's columns.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.SetColumnsVisible(ctx, rng.Sheet, rng.Anchor.Col, rng.Cols, false)
		})

	register(r, "showColumns", TargetRange, false, "Unhide the range's columns.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.SetColumnsVisible(ctx, rng.Sheet, rng.Anchor.Col, rng.Cols, true)
		})

	register(r, "groupRows", TargetRange, false, "Group the range's rows into an outline.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p levelPayload) error {
			return store.OutlineRows(ctx, rng.Sheet, rng.Anchor.Row, rng.Rows, uint8(spanOr(p.Level, 1)))
		})

	register(r, "groupColumns", TargetRange, false, "Group the range's columns into an outline.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p levelPayload) error {
			return store.OutlineColumns(ctx, rng.Sheet, rng.Anchor.Col, rng.Cols, uint8(spanOr(p.Level, 1)))
		})

	register(r, "ungroupRows", TargetRange, false, "Remove row grouping from the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.OutlineRows(ctx, rng.Sheet, rng.Anchor.Row, rng.Rows, 0)
		})

	register(r, "ungroupColumns", TargetRange, false, "Remove column grouping from the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.OutlineColumns(ctx, rng.Sheet, rng.Anchor.Col, rng.Cols, 0)
		})

	register(r, "setColumnWidth", TargetRange, false, "Set the width of the range's columns.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p widthPayload) error {
			return store.SetColumnWidth(ctx, rng.Sheet, rng.Anchor.Col, rng.Cols, p.Width)
		})

	register(r, "setRowHeight", TargetRange, false, "Set the height of the range's rows.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p heightPayload) error {
			return store.SetRowHeight(ctx, rng.Sheet, rng.Anchor.Row, rng.Rows, p.Height)
		})

	register(r, "autoFitColumns", TargetRange, false, "Size the range's columns to their content.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return autoFitColumns(ctx, store, rng)
		})

	register(r, "freezePanes", TargetRange, false, "Freeze rows above and columns left of the range's anchor.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.FreezePanes(ctx, rng.Sheet, rng.Anchor)
		})

	register(r, "setAutoFilter", TargetRange, false, "Turn on filtering for the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.SetAutoFilter(ctx, rng)
		})

	register(r, "setPrintArea", TargetRange, false, "Set the sheet's print area to the range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.SetPrintArea(ctx, rng)
		})
}

// Logical-name kinds. The target is an opaque identifier: a sheet, table,
// chart or defined name.
func registerNameKinds(r *Registry) {
	register(r, "createTable", TargetName, false, "Create a named table over a range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p tablePayload) error {
			tableRange, _ := addr.ParseRange(p.Range)
			hasHeaders := p.HasHeaders == nil || *p.HasHeaders
			return store.AddTable(ctx, tableRange, target, hasHeaders, p.Style)
		})

	register(r, "deleteTable", TargetName, false, "Delete a named table, keeping its data.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.DeleteTable(ctx, target)
		})

	register(r, "createChart", TargetName, false, "Create a chart anchored at a cell.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p chartPayload) error {
			cell, sheet, _ := addr.ParseCell(p.Anchor)
			if p.Sheet != "" {
				sheet = p.Sheet
			}
			title := p.Title
			if title == "" {
				title = target
			}
			return store.AddChart(ctx, sheet, cell, grid.ChartSpec{
				Type:      p.Type,
				DataRange: p.DataRange,
				CatRange:  p.CategoryRange,
				Title:     title,
			})
		})

	register(r, "deleteChart", TargetName, false, "Delete the chart anchored at a cell.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p anchorPayload) error {
			cell, sheet, _ := addr.ParseCell(p.Anchor)
			if p.Sheet != "" {
				sheet = p.Sheet
			}
			return store.DeleteChart(ctx, sheet, cell)
		})

	register(r, "createPivotTable", TargetName, false, "Create a pivot table from a data range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p pivotPayload) error {
			return store.AddPivotTable(ctx, grid.PivotSpec{
				DataRange:   p.DataRange,
				TargetRange: p.TargetRange,
				Rows:        p.Rows,
				Columns:     p.Columns,
				Values:      p.Values,
				Aggregate:   p.Aggregate,
			})
		})

	register(r, "addSlicer", TargetName, false, "Add a slicer for a table column; the target names the table.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p slicerPayload) error {
			cell, sheet, _ := addr.ParseCell(p.Cell)
			if p.Sheet != "" {
				sheet = p.Sheet
			}
			return store.AddSlicer(ctx, sheet, grid.SlicerSpec{
				TableSheet: sheet,
				TableName:  target,
				Column:     p.Column,
				Cell:       cell.Name(),
				Caption:    p.Caption,
			})
		})

	register(r, "addNamedRange", TargetName, false, "Define a workbook or sheet scoped name for a range.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p namedRangePayload) error {
			namedRange, _ := addr.ParseRange(p.Range)
			return store.SetDefinedName(ctx, target, absoluteRef(namedRange), p.Scope)
		})

	register(r, "deleteNamedRange", TargetName, false, "Remove a defined name.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p scopePayload) error {
			return store.DeleteDefinedName(ctx, target, p.Scope)
		})

	register(r, "addSheet", TargetName, false, "Add a new worksheet.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.AddSheet(ctx, target)
		})

	register(r, "deleteSheet", TargetName, false, "Delete a worksheet.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.DeleteSheet(ctx, target)
		})

	register(r, "renameSheet", TargetName, false, "Rename a worksheet.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p renamePayload) error {
			return store.RenameSheet(ctx, target, p.NewName)
		})

	register(r, "hideSheet", TargetName, false, "Hide a worksheet.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.SetSheetVisible(ctx, target, false)
		})

	register(r, "showSheet", TargetName, false, "Unhide a worksheet.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.SetSheetVisible(ctx, target, true)
		})

	register(r, "setTabColor", TargetName, false, "Color a worksheet's tab.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p colorPayload) error {
			return store.SetTabColor(ctx, target, p.Color)
		})

	register(r, "activateSheet", TargetName, false, "Make a worksheet the active one.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.ActivateSheet(ctx, target)
		})

	register(r, "clearSheet", TargetName, false, "Clear all cell contents on a worksheet.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.ClearSheet(ctx, target)
		})

	register(r, "protectSheet", TargetName, false, "Protect a worksheet against edits.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p passwordPayload) error {
			return store.ProtectSheet(ctx, target, p.Password)
		})

	register(r, "unprotectSheet", TargetName, false, "Remove worksheet protection.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.UnprotectSheet(ctx, target)
		})

	register(r, "protectWorkbook", TargetName, false, "Protect the workbook structure.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p passwordPayload) error {
			return store.ProtectWorkbook(ctx, p.Password)
		})

	register(r, "unprotectWorkbook", TargetName, false, "Remove workbook protection.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.UnprotectWorkbook(ctx)
		})

	register(r, "setGridlines", TargetName, false, "Show or hide a worksheet's gridlines.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p togglePayload) error {
			return store.SetGridlines(ctx, target, p.on())
		})

	register(r, "setZoom", TargetName, false, "Set a worksheet's zoom level.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p zoomPayload) error {
			return store.SetZoom(ctx, target, p.Scale)
		})

	register(r, "setHeaderFooter", TargetName, false, "Set a worksheet's print header and footer.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p headerFooterPayload) error {
			return store.SetHeaderFooter(ctx, target, p.Header, p.Footer)
		})

	register(r, "setPageOrientation", TargetName, false, "Set a worksheet's print orientation.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p orientationPayload) error {
			return store.SetPageOrientation(ctx, target, p.Orientation)
		})

	register(r, "setPageMargins", TargetName, false, "Set a worksheet's print margins.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p marginsPayload) error {
			return store.SetPageMargins(ctx, target, grid.Margins{
				Left:   p.Left,
				Right:  p.Right,
				Top:    p.Top,
				Bottom: p.Bottom,
			})
		})

	register(r, "addImage", TargetName, false, "Insert an image anchored at a cell; the target names the sheet.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p imagePayload) error {
			cell, _, _ := addr.ParseCell(p.Anchor)
			sheet := p.Sheet
			if sheet == "" {
				sheet = target
			}
			return store.AddImage(ctx, sheet, cell, p.Path)
		})

	register(r, "addShape", TargetName, false, "Insert a shape anchored at a cell; the target names the sheet.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p shapePayload) error {
			cell, _, _ := addr.ParseCell(p.Anchor)
			sheet := p.Sheet
			if sheet == "" {
				sheet = target
			}
			return store.AddShape(ctx, sheet, cell, grid.ShapeSpec{
				Type:   p.Type,
				Text:   p.Text,
				Width:  p.Width,
				Height: p.Height,
			})
		})

	register(r, "unfreezePanes", TargetName, false, "Unfreeze a worksheet's panes.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.UnfreezePanes(ctx, target)
		})

	register(r, "clearAutoFilter", TargetName, false, "Remove a worksheet's auto filter.",
		func(ctx context.Context, store grid.Store, rng addr.Range, target string, p emptyPayload) error {
			return store.ClearAutoFilter(ctx, target)
		})
}

func spanOr(value, fallback int) int {
	if value > 0 {
		return value
	}
	return fallback
}

func matchExtent(rng addr.Range, values [][]string) error {
	if len(values) != rng.Rows || len(values[0]) != rng.Cols {
		return errinfo.InvalidPayload(errinfo.PhaseApply, fmt.Sprintf(
			"grid extent %dx%d does not match target %s (%dx%d)",
			len(values), len(values[0]), rng, rng.Rows, rng.Cols))
	}
	return nil
}

// absoluteRef renders a range as an absolute reference for defined names.
func absoluteRef(rng addr.Range) string {
	start := fmt.Sprintf("$%s$%d", mustColumnName(rng.Anchor.Col), rng.Anchor.Row+1)
	end := fmt.Sprintf("$%s$%d", mustColumnName(rng.End().Col), rng.End().Row+1)
	if rng.Sheet == "" {
		return start + ":" + end
	}
	return fmt.Sprintf("'%s'!%s:%s", rng.Sheet, start, end)
}

func mustColumnName(col int) string {
	name, err := addr.ColumnName(col)
	if err != nil {
		return "A"
	}
	return name
}
