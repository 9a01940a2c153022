package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"

	"leads-dashboard/models"
	"leads-dashboard/services"
	"leads-dashboard/storage"
)

type ctxKey string

const filterKey ctxKey = "filter"

// dateLayout is the query format for from/to.
const dateLayout = "2006-01-02"

// FilterCtx parses the dashboard filters from the query string.
func (s *Server) FilterCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r, s.runner.Location())
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"status": "error", "error": err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), filterKey, f)))
	})
}

func parseFilter(r *http.Request, loc *time.Location) (services.Filter, error) {
	q := r.URL.Query()
	var f services.Filter

	if t := strings.TrimSpace(q.Get("type")); t != "" && !strings.EqualFold(t, "todos") {
		f.PropertyType = models.PropertyType(t)
	}

	interest, err := services.ParseInterestFilter(q.Get("interest"))
	if err != nil {
		return f, err
	}
	f.Interest = interest

	for _, p := range []struct {
		key string
		dst *time.Time
	}{
		{"from", &f.From},
		{"to", &f.To},
	} {
		v := strings.TrimSpace(q.Get(p.key))
		if v == "" {
			continue
		}
		d, err := time.ParseInLocation(dateLayout, v, loc)
		if err != nil {
			return f, fmt.Errorf("invalid %s date %q, want YYYY-MM-DD", p.key, v)
		}
		*p.dst = d
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, fmt.Errorf("to date is before from date")
	}
	return f, nil
}

func filterFrom(ctx context.Context) services.Filter {
	f, _ := ctx.Value(filterKey).(services.Filter)
	return f
}

type leadsResponse struct {
	OK     bool           `json:"ok"`
	Status string         `json:"status"`
	RunID  string         `json:"run_id"`
	Total  int            `json:"total"`
	Count  int            `json:"count"`
	Data   []*models.Lead `json:"data"`
}

// GetLeads handles GET /api/leads.
func (s *Server) GetLeads(w http.ResponseWriter, r *http.Request) {
	res := s.runner.Run(r.Context(), filterFrom(r.Context()))
	render.JSON(w, r, leadsResponse{
		OK:     res.OK(),
		Status: res.Status,
		RunID:  res.RunID,
		Total:  res.TotalLeads,
		Count:  len(res.Leads),
		Data:   res.Leads,
	})
}

type period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

type reportResponse struct {
	OK            bool                  `json:"ok"`
	Status        string                `json:"status"`
	RunID         string                `json:"run_id"`
	GeneratedAt   time.Time             `json:"generated_at"`
	Total         int                   `json:"total"`
	Count         int                   `json:"count"`
	DefaultPeriod *period               `json:"default_period,omitempty"`
	Stats         *models.CleanStats    `json:"stats,omitempty"`
	Report        *models.InsightReport `json:"report"`
}

// GetReport handles GET /api/report.
func (s *Server) GetReport(w http.ResponseWriter, r *http.Request) {
	res := s.runner.Run(r.Context(), filterFrom(r.Context()))
	resp := reportResponse{
		OK:          res.OK(),
		Status:      res.Status,
		RunID:       res.RunID,
		GeneratedAt: res.GeneratedAt,
		Total:       res.TotalLeads,
		Count:       len(res.Leads),
		Report:      res.Report,
	}
	if res.Dataset != nil {
		resp.Stats = &res.Dataset.Stats
		if from, to, ok := services.DefaultPeriod(res.Dataset.Leads, s.runner.Location()); ok {
			resp.DefaultPeriod = &period{From: from, To: to}
		}
	}
	render.JSON(w, r, resp)
}

// GetExport returns the download handler for one export format.
func (s *Server) GetExport(tw storage.TableWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.export(w, r, tw)
	}
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, tw storage.TableWriter) {
	res := s.runner.Run(r.Context(), filterFrom(r.Context()))
	if !res.OK() {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, map[string]string{"status": "error", "error": res.Status})
		return
	}

	table := services.ExportTable(res.Dataset, res.Leads, s.runner.Location())
	var buf bytes.Buffer
	if err := tw.WriteTable(&buf, table); err != nil {
		s.logger.Error("[server] export %s failed: %v", tw.Ext(), err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"status": "error", "error": "export failed"})
		return
	}

	name := services.ExportFileName(s.now().In(s.runner.Location()), tw.Ext())
	w.Header().Set("Content-Type", tw.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(buf.Bytes())
}
