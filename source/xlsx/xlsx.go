package xlsx

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"leads-dashboard/models"
	"leads-dashboard/utils"
)

// Source reads lead rows from an exported Excel workbook.
type Source struct {
	path       string
	worksheets []string
	logger     *utils.Logger
}

// New creates a Source for the workbook at path. Worksheets are tried in order.
func New(path string, worksheets []string, logger *utils.Logger) *Source {
	return &Source{path: path, worksheets: worksheets, logger: logger}
}

// Fetch opens the workbook and reads the first worksheet that exists.
func (s *Source) Fetch(ctx context.Context) (*models.RawSheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("xlsx: open %q: %w", s.path, err)
	}
	defer f.Close()

	available := make(map[string]struct{})
	for _, name := range f.GetSheetList() {
		available[name] = struct{}{}
	}

	for _, name := range s.worksheets {
		if _, ok := available[name]; !ok {
			s.logger.Debug("[xlsx] Worksheet %q not found, trying next", name)
			continue
		}
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("xlsx: read %q: %w", name, err)
		}
		s.logger.Info("[xlsx] Read %d rows from worksheet %q", len(rows), name)
		return &models.RawSheet{Worksheet: name, Values: rows}, nil
	}

	return nil, fmt.Errorf("xlsx: tried %v: %w", s.worksheets, models.ErrNoMatchingSource)
}
