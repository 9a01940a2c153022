package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"leads-dashboard/models"
)

// CSVWriter writes export tables as comma-separated text.
type CSVWriter struct{}

func (CSVWriter) Ext() string         { return "csv" }
func (CSVWriter) ContentType() string { return "text/csv; charset=utf-8" }

// WriteTable writes the header followed by every row.
func (CSVWriter) WriteTable(w io.Writer, t *models.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile creates (or truncates) path and writes t with tw.
// Intermediate directories are created automatically.
func WriteFile(path string, tw TableWriter, t *models.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%s: create output dir: %w", tw.Ext(), err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%s: create file %q: %w", tw.Ext(), path, err)
	}

	if err := tw.WriteTable(f, t); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriterFor picks a TableWriter from a file extension.
func WriterFor(ext string) (TableWriter, error) {
	switch ext {
	case "csv", ".csv":
		return CSVWriter{}, nil
	case "xlsx", ".xlsx":
		return XLSXWriter{}, nil
	}
	return nil, fmt.Errorf("storage: unsupported export format %q", ext)
}
