package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/san-kum/ndcalc/internal/calculus"
)

type ExportData struct {
	RunMetadata
	Columns []string    `json:"columns"`
	Rows    [][]float64 `json:"rows"`
}

// ExportJSON writes a stored run, metadata and samples, as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	table, err := s.LoadTable(runID)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Columns:     table.Columns,
		Rows:        table.Rows,
	}
	if data.Rows == nil {
		data.Rows = [][]float64{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV writes the samples of a stored run.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	table, err := s.LoadTable(runID)
	if err != nil {
		return err
	}
	return writeCSV(w, table)
}

func writeCSV(w io.Writer, table *calculus.Table) error {
	cw := csv.NewWriter(w)
	if table == nil || len(table.Columns) == 0 {
		cw.Flush()
		return cw.Error()
	}

	if err := cw.Write(table.Columns); err != nil {
		return err
	}
	for _, row := range table.Rows {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
