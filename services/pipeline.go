package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"leads-dashboard/models"
	"leads-dashboard/utils"
)

// Source is anything that can produce the raw lead sheet.
type Source interface {
	Fetch(ctx context.Context) (*models.RawSheet, error)
}

// CachedSource serves a Source's result from a time-boxed snapshot cache.
type CachedSource struct {
	src   Source
	cache *utils.SnapshotCache[*models.RawSheet]
}

// NewCachedSource wraps src; a zero ttl disables caching. timeout bounds a
// shared fetch, since it outlives any single caller's context.
func NewCachedSource(src Source, ttl, timeout time.Duration) *CachedSource {
	return &CachedSource{src: src, cache: utils.NewSnapshotCache[*models.RawSheet](ttl, timeout)}
}

// Fetch returns the snapshot for the current cache epoch.
func (c *CachedSource) Fetch(ctx context.Context) (*models.RawSheet, error) {
	return c.cache.Get(ctx, c.src.Fetch)
}

// Invalidate forces the next Fetch to hit the source.
func (c *CachedSource) Invalidate() {
	c.cache.Invalidate()
}

// Pipeline runs load → clean → classify → aggregate. It keeps no state
// between runs, so concurrent runs are independent.
type Pipeline struct {
	source   Source
	cleaner  *Cleaner
	insights *InsightService
	logger   *utils.Logger
	metrics  *Metrics
	loc      *time.Location
	now      func() time.Time
}

// NewPipeline wires a pipeline around src. metrics may be nil.
func NewPipeline(src Source, logger *utils.Logger, loc *time.Location, metrics *Metrics) *Pipeline {
	if loc == nil {
		loc = time.UTC
	}
	return &Pipeline{
		source:   src,
		cleaner:  NewCleaner(logger, loc),
		insights: NewInsightService(logger, loc),
		logger:   logger,
		metrics:  metrics,
		loc:      loc,
		now:      time.Now,
	}
}

// Location is the time zone leads are parsed and bucketed in.
func (p *Pipeline) Location() *time.Location {
	return p.loc
}

// Insights exposes the aggregator used by the pipeline.
func (p *Pipeline) Insights() *InsightService {
	return p.insights
}

// Load fetches the sheet and returns the cleaned, classified dataset.
func (p *Pipeline) Load(ctx context.Context) (*models.Dataset, error) {
	sheet, err := p.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return p.Build(sheet)
}

// Build turns already fetched sheet values into a dataset.
func (p *Pipeline) Build(sheet *models.RawSheet) (*models.Dataset, error) {
	if sheet == nil {
		return nil, fmt.Errorf("loader: no sheet: %w", models.ErrEmptyDataset)
	}
	table, err := Normalize(sheet.Values)
	if err != nil {
		return nil, err
	}

	leads, stats := p.cleaner.Clean(table)
	if len(leads) == 0 {
		return nil, fmt.Errorf("cleaner: all %d rows dropped: %w", stats.RawRows, models.ErrEmptyDataset)
	}

	return &models.Dataset{
		Worksheet: sheet.Worksheet,
		Columns:   table.Header,
		Leads:     leads,
		Stats:     stats,
	}, nil
}

// Run performs one dashboard refresh. It never returns an error: a failed
// load yields an empty result whose Status explains what happened.
func (p *Pipeline) Run(ctx context.Context, filter Filter) *models.Result {
	started := p.now()
	runID := uuid.New().String()

	res := &models.Result{
		RunID:       runID,
		GeneratedAt: started.In(p.loc),
		Leads:       []*models.Lead{},
	}

	ds, err := p.Load(ctx)
	if err != nil {
		p.logger.Error("[pipeline] run %s: load failed: %v", runID, err)
		res.Err = err
		res.Status = StatusMessage(err)
		res.Report = p.insights.Generate(nil, nil)
		p.metrics.observeRun("failed", started)
		return res
	}
	p.metrics.observeDataset(ds.Stats.Kept, ds.Stats.Dropped, ds.Stats.ParseFailures)

	filtered := filter.Apply(ds.Leads)
	res.Dataset = ds
	res.Leads = filtered
	res.TotalLeads = len(ds.Leads)
	res.Report = p.insights.Generate(ds, filtered)

	if len(filtered) == 0 {
		res.Status = "Nenhum lead corresponde aos filtros selecionados"
	} else {
		res.Status = fmt.Sprintf("Dados carregados: %d de %d leads (aba %s)", len(filtered), len(ds.Leads), ds.Worksheet)
	}

	p.logger.Info("[pipeline] run %s: %d leads loaded, %d after filters", runID, len(ds.Leads), len(filtered))
	p.metrics.observeRun("ok", started)
	return res
}

// StatusMessage turns a load error into the message shown to the user.
func StatusMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, models.ErrNoMatchingSource):
		return "Nenhuma aba encontrada na planilha"
	case errors.Is(err, models.ErrEmptyDataset):
		return "Planilha encontrada, mas sem dados suficientes"
	case errors.Is(err, context.DeadlineExceeded):
		return "Tempo esgotado ao carregar dados da planilha"
	default:
		return fmt.Sprintf("Erro ao carregar dados: %v", err)
	}
}
