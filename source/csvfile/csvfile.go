package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"leads-dashboard/models"
	"leads-dashboard/utils"
)

// Source reads lead rows from a CSV export of the sheet.
type Source struct {
	path   string
	logger *utils.Logger
}

// New creates a Source for the CSV file at path.
func New(path string, logger *utils.Logger) *Source {
	return &Source{path: path, logger: logger}
}

// Fetch reads the whole file. Rows may have any number of fields.
func (s *Source) Fetch(ctx context.Context) (*models.RawSheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("csvfile: open %q: %w", s.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvfile: read %q: %w", s.path, err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\ufeff")
	}

	name := strings.TrimSuffix(filepath.Base(s.path), filepath.Ext(s.path))
	s.logger.Info("[csvfile] Read %d rows from %s", len(rows), s.path)
	return &models.RawSheet{Worksheet: name, Values: rows}, nil
}
