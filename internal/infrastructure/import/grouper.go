package csvimport

import "strconv"

// GroupedRow is one logical order accumulated from its line-item rows.
// Non-quantity fields come from the first row seen for the order.
type GroupedRow struct {
	OrderNo    string
	First      *Row
	ItemsCount int
	LineCount  int
}

// RowGrouper folds line-item rows sharing an order number into one logical
// order, summing the line-item quantity column. Rows without a resolvable
// order number carry no identity and are counted as skipped.
type RowGrouper struct {
	columns *ColumnMap
	byNo    map[string]*GroupedRow
	order   []string
	skipped int
}

// NewRowGrouper creates a grouper over the given column map
func NewRowGrouper(columns *ColumnMap) *RowGrouper {
	return &RowGrouper{
		columns: columns,
		byNo:    make(map[string]*GroupedRow),
	}
}

// Add folds one physical row into its logical order.
// Returns false when the row was skipped for lack of an order number.
func (g *RowGrouper) Add(row *Row) bool {
	orderNo := g.columns.Get(row.RawFields, ColOrderNo)
	if orderNo == "" {
		g.skipped++
		return false
	}

	qty := 1
	if raw := g.columns.Get(row.RawFields, ColLineitemQuantity); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			qty = n
		}
	}

	group, exists := g.byNo[orderNo]
	if !exists {
		group = &GroupedRow{OrderNo: orderNo, First: row}
		g.byNo[orderNo] = group
		g.order = append(g.order, orderNo)
	}
	group.ItemsCount += qty
	group.LineCount++
	return true
}

// Groups returns the logical orders in first-seen order
func (g *RowGrouper) Groups() []*GroupedRow {
	out := make([]*GroupedRow, 0, len(g.order))
	for _, no := range g.order {
		out = append(out, g.byNo[no])
	}
	return out
}

// SkippedRows returns the number of rows dropped for lack of an identifier
func (g *RowGrouper) SkippedRows() int {
	return g.skipped
}
