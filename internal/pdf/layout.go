package pdf

import "sort"

// Layout reconstruction constants. Row grouping tolerance follows the
// extraction tolerance that works well for CJK filing layouts; cell and
// table gaps scale with font size so dense footnote tables and large
// headline tables split at comparable visual distances.
const (
	rowTolerance      = 5.0
	minCellGap        = 8.0
	cellGapFontFactor = 1.5
	tableGapFactor    = 3.0
	defaultRowPitch   = 14.0
)

// Layout rebuilds the row/cell grid of a page from positioned text
// fragments: fragments sharing a baseline become a row, adjacent
// fragments merge into cells until a column-sized gap, and runs of rows
// split into separate tables at large vertical gaps.
type Layout struct {
	rowTolerance   float64
	minCellGap     float64
	cellGapFactor  float64
	tableGapFactor float64
}

// NewLayout creates a layout builder with default tolerances.
func NewLayout() *Layout {
	return &Layout{
		rowTolerance:   rowTolerance,
		minCellGap:     minCellGap,
		cellGapFactor:  cellGapFontFactor,
		tableGapFactor: tableGapFactor,
	}
}

// BuildTables reconstructs the tables of one page. Fragments may arrive
// in any order.
func (l *Layout) BuildTables(fragments []Fragment) []Table {
	rows := l.groupRows(fragments)
	return l.segmentTables(rows)
}

// groupRows clusters fragments by baseline. Pages read top-down, so rows
// are ordered by descending Y.
func (l *Layout) groupRows(fragments []Fragment) []Row {
	if len(fragments) == 0 {
		return nil
	}

	sorted := make([]Fragment, len(fragments))
	copy(sorted, fragments)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows []Row
	group := []Fragment{sorted[0]}
	groupY := sorted[0].Y

	for i := 1; i < len(sorted); i++ {
		if groupY-sorted[i].Y <= l.rowTolerance {
			group = append(group, sorted[i])
			continue
		}
		rows = append(rows, l.buildRow(group, groupY))
		group = []Fragment{sorted[i]}
		groupY = sorted[i].Y
	}
	rows = append(rows, l.buildRow(group, groupY))

	return rows
}

// buildRow merges a baseline group into cells, left to right. A gap
// wider than the cell threshold starts a new cell; narrower gaps are
// intra-cell spacing (wrapped labels, digit grouping, kerning).
func (l *Layout) buildRow(fragments []Fragment, y float64) Row {
	sort.Slice(fragments, func(i, j int) bool {
		return fragments[i].X < fragments[j].X
	})

	row := Row{Y: y}
	var (
		text  []byte
		x0    float64
		x1    float64
		begun bool
	)

	flush := func() {
		if begun {
			row.Cells = append(row.Cells, Cell{Text: string(text), X0: x0, X1: x1})
			text = text[:0]
		}
	}

	for _, f := range fragments {
		threshold := l.minCellGap
		if scaled := f.FontSize * l.cellGapFactor; scaled > threshold {
			threshold = scaled
		}

		if !begun {
			begun = true
			x0, x1 = f.X, f.X+f.W
			text = append(text, f.Text...)
			continue
		}

		if f.X-x1 > threshold {
			flush()
			x0 = f.X
		}
		text = append(text, f.Text...)
		if end := f.X + f.W; end > x1 {
			x1 = end
		}
	}
	flush()

	return row
}

// segmentTables splits the row sequence where the vertical gap between
// consecutive rows exceeds several times the page's typical row pitch.
// Splitting is deliberately conservative: a parent-category row must
// stay in the same table as the line items beneath it.
func (l *Layout) segmentTables(rows []Row) []Table {
	if len(rows) == 0 {
		return nil
	}

	breakGap := l.tableGapFactor * rowPitch(rows)

	var tables []Table
	current := Table{Rows: []Row{rows[0]}}
	for i := 1; i < len(rows); i++ {
		gap := rows[i-1].Y - rows[i].Y
		if gap > breakGap {
			tables = append(tables, current)
			current = Table{}
		}
		current.Rows = append(current.Rows, rows[i])
	}
	tables = append(tables, current)

	return tables
}

// rowPitch returns the median Y distance between consecutive rows.
func rowPitch(rows []Row) float64 {
	if len(rows) < 2 {
		return defaultRowPitch
	}

	gaps := make([]float64, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		if gap := rows[i-1].Y - rows[i].Y; gap > 0 {
			gaps = append(gaps, gap)
		}
	}
	if len(gaps) == 0 {
		return defaultRowPitch
	}

	sort.Float64s(gaps)
	return gaps[len(gaps)/2]
}
