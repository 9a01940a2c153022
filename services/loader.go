package services

import (
	"fmt"
	"strings"

	"leads-dashboard/models"
)

// Normalize turns raw sheet values (header first) into a rectangular table.
// Blank rows are dropped before short rows are padded and long rows truncated
// to the header width.
func Normalize(raw [][]string) (*models.Table, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("loader: %d raw rows: %w", len(raw), models.ErrEmptyDataset)
	}

	header := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		header[i] = strings.TrimSpace(h)
	}
	width := len(header)

	rows := make([][]string, 0, len(raw)-1)
	for _, r := range raw[1:] {
		if isBlankRow(r) {
			continue
		}
		row := make([]string, width)
		copy(row, r)
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("loader: no data rows: %w", models.ErrEmptyDataset)
	}

	return &models.Table{Header: header, Rows: rows}, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
