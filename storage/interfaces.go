package storage

import (
	"context"
	"io"

	"leads-dashboard/models"
)

// TableWriter serialises an export table to w.
type TableWriter interface {
	WriteTable(w io.Writer, t *models.Table) error
	Ext() string
	ContentType() string
}

// LeadArchive is the interface any lead snapshot store must satisfy.
type LeadArchive interface {
	Write(ctx context.Context, runID string, leads []*models.Lead) error
	Close() error
}
