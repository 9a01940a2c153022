package services

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"leads-dashboard/models"
)

// Printer writes the dashboard report as text. Colours are only emitted when
// the output is a terminal.
type Printer struct {
	w     io.Writer
	color bool
	loc   *time.Location
}

// NewPrinter detects whether w is a terminal and enables colours accordingly.
func NewPrinter(w io.Writer, loc *time.Location) *Printer {
	color := false
	if f, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Printer{w: w, color: color, loc: loc}
}

func (p *Printer) style(code, s string) string {
	if !p.color {
		return s
	}
	return "\033[" + code + "m" + s + "\033[0m"
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// Print renders r to the printer's writer.
func (p *Printer) Print(r *models.Result) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	p.printf("\n%s\n", p.style("1;35", sep))
	p.printf("%s\n", p.style("1;35", "  DASHBOARD LUIS IMÓVEIS"))
	p.printf("%s\n\n", p.style("1;35", sep))

	if !r.OK() {
		p.printf("  %s\n\n", p.style("1;31", r.Status))
		return
	}
	p.printf("  %s\n\n", p.style("32", r.Status))

	rep := r.Report
	s := rep.Summary

	p.printf("%s\n  %s\n", p.style("1;33", "  Resumo"), thin)
	p.printf("  Total de leads      : %s\n", p.style("1", fmt.Sprint(s.TotalLeads)))
	p.printf("  Interesse em visita : %s\n", p.style("1", fmt.Sprint(s.WithInterest)))
	p.printf("  Sem interesse       : %d\n", s.NoInterest)
	p.printf("  Taxa de interesse   : %s\n", p.style("1;32", fmt.Sprintf("%.1f%%", s.InterestRate)))
	p.printf("  Lançamentos         : %d\n", s.Launches)
	for _, key := range launchOrder {
		name := LaunchProjects[key]
		p.printf("  %-20s: %d\n", name, s.LaunchProjects[name])
	}
	p.printf("  Imóveis gerais      : %d\n\n", s.GeneralLeads)

	p.printf("%s\n  %s\n", p.style("1;33", "  Distribuição por tipo"), thin)
	if len(rep.Categories) == 0 {
		p.printf("  Nenhum dado\n")
	}
	for _, c := range rep.Categories {
		p.printf("  %-14s %s (%d)\n", c.PropertyType, strings.Repeat("█", c.Count), c.Count)
	}
	p.printf("\n")

	p.printf("%s\n  %s\n", p.style("1;33", "  Interesse por tipo"), thin)
	for _, c := range rep.InterestByCategory {
		p.printf("  %-14s %4d total %4d interesse %6.1f%%  %s\n",
			c.PropertyType, c.Total, c.WithInterest, c.InterestRate, c.Performance)
	}
	p.printf("\n")

	p.printf("%s\n  %s\n", p.style("1;33", "  Evolução diária"), thin)
	if len(rep.Daily) == 0 {
		p.printf("  Dados insuficientes para análise temporal\n")
	}
	for _, d := range rep.Daily {
		avg := "   -"
		if d.MovingAverage != nil {
			avg = fmt.Sprintf("%4.1f", *d.MovingAverage)
		}
		p.printf("  %s  %4d leads %4d interesse  média %s\n",
			d.Day.Format("02/01/2006"), d.Count, d.WithInterest, avg)
	}
	p.printf("\n")

	h := rep.Hourly
	p.printf("%s\n  %s\n", p.style("1;33", "  Análise por horário"), thin)
	if len(h.Hours) == 0 {
		p.printf("  Sem horários válidos\n")
	} else {
		peaks := make([]string, len(h.PeakHours))
		for i, hr := range h.PeakHours {
			peaks[i] = fmt.Sprint(hr)
		}
		p.printf("  Pico: %d leads às %sh\n", h.PeakCount, strings.Join(peaks, ", "))
		if h.BestConversion != nil {
			p.printf("  Melhor horário para conversão: %d:00h com %.1f%% de interesse\n",
				h.BestConversion.Hour, h.BestConversion.InterestRate)
		}
	}
	p.printf("\n")

	p.printf("%s\n  %s\n", p.style("1;33", "  Top 10 referências"), thin)
	if len(rep.TopReferences) == 0 {
		p.printf("  Nenhuma referência encontrada\n")
	}
	for i, ref := range rep.TopReferences {
		p.printf("  %2d. %-30s %4d leads %6.1f%%\n", i+1, truncate(ref.Reference, 30), ref.Total, ref.InterestRate)
	}

	for _, view := range []struct {
		title  string
		counts []models.ValueCount
	}{
		{"Distribuição por origem", rep.Origins},
		{"Distribuição por status", rep.Statuses},
	} {
		if len(view.counts) == 0 {
			continue
		}
		p.printf("\n%s\n  %s\n", p.style("1;33", "  "+view.title), thin)
		for _, vc := range view.counts {
			p.printf("  %-30s %d\n", truncate(vc.Value, 28), vc.Count)
		}
	}

	p.printf("\n  Última atualização: %s | Mostrando %d de %d leads\n",
		r.GeneratedAt.In(p.loc).Format("02/01/2006 15:04:05"), len(r.Leads), r.TotalLeads)
	p.printf("%s\n\n", p.style("1;35", sep))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
