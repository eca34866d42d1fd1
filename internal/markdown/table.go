package markdown

import (
	"unicode/utf8"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/goliatone/go-docsync/blocks"
)

const (
	// maxCellsPerTable is the remote per-table cell ceiling; larger tables
	// are chunked into sibling tables on row boundaries.
	maxCellsPerTable = 20
	// maxTableWidth caps the summed column widths of one table.
	maxTableWidth = 820
	// defaultFlexColumnWidth is the floor for columns wider than six
	// characters.
	defaultFlexColumnWidth = 130
)

// tableRow is one parsed row of styled cell contents.
type tableRow [][]blocks.TextRun

// table converts a GFM table into one or more Table blocks. Chunk boundaries
// fall on row boundaries so no chunk exceeds the cell ceiling; every chunk
// keeps the full column count and shares the measured column widths.
func (r *walkRun) table(n *extast.Table) ([]string, error) {
	rows, columns := r.tableRows(n)
	if len(rows) == 0 || columns == 0 {
		return nil, nil
	}

	widths := columnWidths(rows, columns)

	rowsPerChunk := maxCellsPerTable / columns
	if rowsPerChunk < 1 {
		rowsPerChunk = 1
	}

	var ids []string
	for start := 0; start < len(rows); start += rowsPerChunk {
		end := start + rowsPerChunk
		if end > len(rows) {
			end = len(rows)
		}
		id, err := r.tableChunk(rows[start:end], columns, widths)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *walkRun) tableChunk(rows []tableRow, columns int, widths []int) (string, error) {
	table, err := r.add(&blocks.ContentBlock{
		ID:   r.nextID(blocks.KindTable),
		Kind: blocks.KindTable,
		Table: &blocks.TablePayload{
			Rows:         len(rows),
			Columns:      columns,
			ColumnWidths: widths,
		},
	})
	if err != nil {
		return "", err
	}

	for _, row := range rows {
		for col := 0; col < columns; col++ {
			var runs []blocks.TextRun
			if col < len(row) {
				runs = row[col]
			}
			cell, err := r.add(&blocks.ContentBlock{
				ID:   r.nextID(blocks.KindTableCell),
				Kind: blocks.KindTableCell,
			})
			if err != nil {
				return "", err
			}
			text, err := r.add(&blocks.ContentBlock{
				ID:   r.nextID(blocks.KindText),
				Kind: blocks.KindText,
				Runs: ensureRuns(runs),
			})
			if err != nil {
				return "", err
			}
			cell.Children = []string{text.ID}
			table.Children = append(table.Children, cell.ID)
		}
	}
	return table.ID, nil
}

// tableRows flattens header and body rows in order and reports the widest
// column count seen.
func (r *walkRun) tableRows(n *extast.Table) ([]tableRow, int) {
	var rows []tableRow
	columns := 0

	appendRow := func(rowNode ast.Node) {
		var row tableRow
		for cell := rowNode.FirstChild(); cell != nil; cell = cell.NextSibling() {
			row = append(row, resolveInline(cell, r.source, styleContext{}))
		}
		if len(row) > columns {
			columns = len(row)
		}
		rows = append(rows, row)
	}

	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch rowNode := child.(type) {
		case *extast.TableHeader:
			appendRow(rowNode)
		case *extast.TableRow:
			appendRow(rowNode)
		}
	}
	return rows, columns
}

// columnWidths buckets each column by its longest rendered text, then
// distributes leftover width (up to the table maximum) evenly across the
// flexible columns.
func columnWidths(rows []tableRow, columns int) []int {
	longest := make([]int, columns)
	for _, row := range rows {
		for col := 0; col < columns && col < len(row); col++ {
			length := 0
			for _, run := range row[col] {
				length += utf8.RuneCountInString(run.Content)
			}
			if length > longest[col] {
				longest[col] = length
			}
		}
	}

	widths := make([]int, columns)
	fixedTotal := 0
	flexible := 0
	for col, length := range longest {
		switch {
		case length <= 2:
			widths[col] = 50
		case length <= 4:
			widths[col] = 80
		case length == 5:
			widths[col] = 100
		case length == 6:
			widths[col] = 120
		default:
			widths[col] = defaultFlexColumnWidth
			flexible++
			continue
		}
		fixedTotal += widths[col]
	}

	if flexible > 0 {
		if shared := (maxTableWidth - fixedTotal) / flexible; shared > defaultFlexColumnWidth {
			for col, length := range longest {
				if length > 6 {
					widths[col] = shared
				}
			}
		}
	}
	return widths
}
