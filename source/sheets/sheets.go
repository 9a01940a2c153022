package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"leads-dashboard/config"
	"leads-dashboard/models"
	"leads-dashboard/utils"
)

// Source reads lead rows from a Google Sheets spreadsheet.
type Source struct {
	service       *gsheets.Service
	spreadsheetID string
	worksheets    []string
	timeout       time.Duration
	logger        *utils.Logger
	retry         *utils.RetryConfig
}

// New creates a Source from config, authenticating with the configured
// service-account credentials.
func New(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*Source, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(gsheets.SpreadsheetsReadonlyScope))
	return NewWithOptions(ctx, cfg, logger, opts...)
}

// NewWithOptions creates a Source with explicit client options.
func NewWithOptions(ctx context.Context, cfg *config.Config, logger *utils.Logger, opts ...option.ClientOption) (*Source, error) {
	svc, err := gsheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}
	return &Source{
		service:       svc,
		spreadsheetID: cfg.SpreadsheetID,
		worksheets:    cfg.WorksheetNames,
		timeout:       cfg.FetchTimeout,
		logger:        logger,
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   time.Second,
			Logger:      logger,
		},
	}, nil
}

// Fetch reads every value of the first worksheet that exists, trying the
// configured names in order.
func (s *Source) Fetch(ctx context.Context) (*models.RawSheet, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for _, name := range s.worksheets {
		var values [][]string
		err := s.retry.Do(ctx, "sheets fetch "+name, func(ctx context.Context) error {
			resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, name).
				ValueRenderOption("FORMATTED_VALUE").
				Context(ctx).
				Do()
			if err != nil {
				if isMissingRange(err) {
					return utils.Permanent(errWorksheetMissing)
				}
				return err
			}
			values = toStrings(resp.Values)
			return nil
		})
		if errors.Is(err, errWorksheetMissing) {
			s.logger.Debug("[sheets] Worksheet %q not found, trying next", name)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("sheets: read %q: %w", name, err)
		}

		s.logger.Info("[sheets] Read %d rows from worksheet %q", len(values), name)
		return &models.RawSheet{Worksheet: name, Values: values}, nil
	}

	return nil, fmt.Errorf("sheets: tried %v: %w", s.worksheets, models.ErrNoMatchingSource)
}

var errWorksheetMissing = errors.New("worksheet missing")

// isMissingRange reports whether the API rejected the range because the
// worksheet does not exist.
func isMissingRange(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.Code == http.StatusBadRequest || gerr.Code == http.StatusNotFound
}

func toStrings(values [][]interface{}) [][]string {
	out := make([][]string, len(values))
	for i, row := range values {
		out[i] = make([]string, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			if s, ok := v.(string); ok {
				out[i][j] = s
				continue
			}
			out[i][j] = fmt.Sprint(v)
		}
	}
	return out
}
