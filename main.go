package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"leads-dashboard/config"
	"leads-dashboard/models"
	"leads-dashboard/server"
	"leads-dashboard/services"
	"leads-dashboard/source/csvfile"
	"leads-dashboard/source/sheets"
	"leads-dashboard/source/xlsx"
	"leads-dashboard/storage"
	"leads-dashboard/utils"
)

type options struct {
	serve    bool
	kind     string
	from     string
	to       string
	interest string
	export   string
	archive  bool
}

func parseFlags() options {
	var o options
	flag.BoolVar(&o.serve, "serve", false, "run the HTTP dashboard API instead of printing a report")
	flag.StringVar(&o.kind, "type", "", "only leads of this property type (Casa, Apartamento, ...)")
	flag.StringVar(&o.from, "from", "", "first day, YYYY-MM-DD")
	flag.StringVar(&o.to, "to", "", "last day, YYYY-MM-DD")
	flag.StringVar(&o.interest, "interest", "all", "visit interest: all, yes or no")
	flag.StringVar(&o.export, "export", "", "write filtered leads to a .csv or .xlsx path, or just csv/xlsx for LEADS_EXPORT_DIR")
	flag.BoolVar(&o.archive, "archive", false, "store the cleaned leads in PostgreSQL")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := utils.NewLogger(utils.ParseLevel(cfg.LogLevel))
	loc := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Leads dashboard starting ===")
	logger.Info("Config: source=%s | worksheets=%v | tz=%s | cache=%v",
		cfg.SourceKind, cfg.WorksheetNames, cfg.Timezone, cfg.CacheTTL)

	src, err := newSource(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to create source: %v", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	pipeline := services.NewPipeline(
		services.NewCachedSource(src, cfg.CacheTTL, cfg.FetchTimeout), logger, loc, services.NewMetrics(reg))

	if opts.serve {
		srv := server.New(pipeline, logger, reg)
		if err := srv.ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
			logger.Error("Server stopped: %v", err)
			os.Exit(1)
		}
		return
	}

	filter, err := buildFilter(opts, loc)
	if err != nil {
		logger.Error("Invalid filter: %v", err)
		os.Exit(2)
	}

	var archive *storage.PostgresArchive
	if cfg.ArchiveEnabled() {
		archive, err = storage.NewPostgresArchive(ctx, cfg.DSN())
		if err != nil {
			logger.Warn("PostgreSQL archive unavailable: %v", err)
		} else {
			defer archive.Close()
		}
	} else if opts.archive {
		logger.Warn("-archive ignored: LEADS_POSTGRES_HOST is not set")
	}

	res := pipeline.Run(ctx, filter)
	if !res.OK() && archive != nil {
		res = fromArchive(ctx, pipeline, archive, filter, res, logger)
	}

	if res.OK() && opts.archive && archive != nil && res.Dataset != nil && res.Dataset.Worksheet != archiveWorksheet {
		if err := archiveRun(ctx, archive, res); err != nil {
			logger.Error("PostgreSQL archive failed: %v", err)
		} else {
			logger.Info("Archived %d leads (run %s)", len(res.Dataset.Leads), res.RunID)
		}
	}

	services.NewPrinter(os.Stdout, loc).Print(res)

	if opts.export != "" && res.OK() {
		path, err := exportLeads(opts.export, cfg.ExportDir, res, loc)
		if err != nil {
			logger.Error("Export failed: %v", err)
			os.Exit(1)
		}
		logger.Info("Exported %d leads to %s", len(res.Leads), path)
	}

	if !res.OK() {
		os.Exit(1)
	}
}

func newSource(ctx context.Context, cfg *config.Config, logger *utils.Logger) (services.Source, error) {
	switch cfg.SourceKind {
	case config.SourceSheets:
		return sheets.New(ctx, cfg, logger)
	case config.SourceXLSX:
		return xlsx.New(cfg.SourcePath, cfg.WorksheetNames, logger), nil
	case config.SourceCSV:
		return csvfile.New(cfg.SourcePath, logger), nil
	}
	return nil, fmt.Errorf("unknown source %q", cfg.SourceKind)
}

func buildFilter(o options, loc *time.Location) (services.Filter, error) {
	var f services.Filter
	if o.kind != "" {
		f.PropertyType = models.PropertyType(o.kind)
	}

	interest, err := services.ParseInterestFilter(o.interest)
	if err != nil {
		return f, err
	}
	f.Interest = interest

	if o.from != "" {
		if f.From, err = time.ParseInLocation("2006-01-02", o.from, loc); err != nil {
			return f, fmt.Errorf("-from: %w", err)
		}
	}
	if o.to != "" {
		if f.To, err = time.ParseInLocation("2006-01-02", o.to, loc); err != nil {
			return f, fmt.Errorf("-to: %w", err)
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, errors.New("-to is before -from")
	}
	return f, nil
}

// archiveWorksheet names datasets rebuilt from the PostgreSQL archive.
const archiveWorksheet = "arquivo PostgreSQL"

// latestReader is the part of the archive the fallback needs.
type latestReader interface {
	FetchLatest(ctx context.Context, loc *time.Location) ([]*models.Lead, error)
}

// fromArchive rebuilds a result from the last archived run when the live
// source failed. The original failure is returned when the archive is empty.
func fromArchive(ctx context.Context, p *services.Pipeline, archive latestReader,
	filter services.Filter, failed *models.Result, logger *utils.Logger) *models.Result {
	leads, err := archive.FetchLatest(ctx, p.Location())
	if err != nil {
		logger.Warn("No archived leads to fall back on: %v", err)
		return failed
	}
	logger.Warn("Live source failed (%s); reporting %d archived leads", failed.Status, len(leads))

	ds := &models.Dataset{
		Worksheet: archiveWorksheet,
		Columns: []string{
			models.ColTimestamp, models.ColName, models.ColPhone, models.ColReference,
			models.ColInterest, models.ColPropertyType, models.ColStatus, models.ColOrigin,
		},
		Leads: leads,
		Stats: models.CleanStats{RawRows: len(leads), Kept: len(leads)},
	}
	filtered := filter.Apply(leads)
	return &models.Result{
		RunID:       failed.RunID,
		GeneratedAt: failed.GeneratedAt,
		Status:      fmt.Sprintf("Dados do arquivo: %d de %d leads (%s)", len(filtered), len(leads), failed.Status),
		Dataset:     ds,
		Leads:       filtered,
		TotalLeads:  len(leads),
		Report:      p.Insights().Generate(ds, filtered),
	}
}

func archiveRun(ctx context.Context, archive storage.LeadArchive, res *models.Result) error {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	return archive.Write(ctx, res.RunID, res.Dataset.Leads)
}

// exportLeads writes the filtered leads. A bare format ("csv", "xlsx") goes
// to dir under the default export file name.
func exportLeads(target, dir string, res *models.Result, loc *time.Location) (string, error) {
	path := target
	if tw, err := storage.WriterFor(target); err == nil {
		path = filepath.Join(dir, services.ExportFileName(time.Now().In(loc), tw.Ext()))
	}
	tw, err := storage.WriterFor(filepath.Ext(path))
	if err != nil {
		return "", err
	}
	table := services.ExportTable(res.Dataset, res.Leads, loc)
	if err := storage.WriteFile(path, tw, table); err != nil {
		return "", err
	}
	return path, nil
}
