package viz

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/ndcalc/internal/calculus"
)

const (
	plotHeight = 10
	plotWidth  = 80
)

// PlotColumn draws one column of table against its row index.
func PlotColumn(table *calculus.Table, column string) (string, error) {
	data, ok := table.Column(column)
	if !ok {
		return "", fmt.Errorf("unknown column: %s", column)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("column %s is empty", column)
	}

	return asciigraph.Plot(data,
		asciigraph.Height(plotHeight),
		asciigraph.Width(plotWidth),
		asciigraph.Caption(column),
	), nil
}

// PlotTable writes a chart for every column except the abscissa t.
func PlotTable(w io.Writer, table *calculus.Table) error {
	for _, col := range table.Columns {
		if col == "t" {
			continue
		}
		graph, err := PlotColumn(table, col)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n\n", graph); err != nil {
			return err
		}
	}
	return nil
}
