package services

import (
	"math"
	"sort"
	"time"

	"leads-dashboard/models"
	"leads-dashboard/utils"
)

// DefaultTopN is how many references the top references table keeps.
const DefaultTopN = 10

// InsightService computes the dashboard aggregates. Every method is pure:
// it reads the leads and returns fresh values.
type InsightService struct {
	logger *utils.Logger
	loc    *time.Location
}

// NewInsightService buckets days and hours in loc.
func NewInsightService(logger *utils.Logger, loc *time.Location) *InsightService {
	if loc == nil {
		loc = time.UTC
	}
	return &InsightService{logger: logger, loc: loc}
}

// Generate builds the full report. Origin and status views are only filled
// when the dataset carried those columns.
func (s *InsightService) Generate(ds *models.Dataset, leads []*models.Lead) *models.InsightReport {
	report := &models.InsightReport{
		Summary:            s.Summary(leads),
		Categories:         s.CategoryDistribution(leads),
		InterestByCategory: s.InterestByCategory(leads),
		Daily:              s.DailySeries(leads),
		Hourly:             s.HourlyDistribution(leads),
		TopReferences:      s.TopReferences(leads, DefaultTopN),
	}
	if ds != nil && ds.HasColumn(models.ColOrigin) {
		report.Origins = countValues(leads, func(l *models.Lead) string { return l.Origin })
	}
	if ds != nil && ds.HasColumn(models.ColStatus) {
		report.Statuses = countValues(leads, func(l *models.Lead) string { return l.Status })
	}

	s.logger.Debug("[insights] %d leads → %d categories, %d days, %d hours, %d references",
		len(leads), len(report.Categories), len(report.Daily), len(report.Hourly.Hours), len(report.TopReferences))
	return report
}

// Summary computes the headline metric cards.
func (s *InsightService) Summary(leads []*models.Lead) models.Summary {
	sum := models.Summary{
		TotalLeads:     len(leads),
		LaunchProjects: make(map[string]int, len(launchOrder)),
	}
	for _, key := range launchOrder {
		sum.LaunchProjects[LaunchProjects[key]] = 0
	}

	projectLeads := 0
	for _, l := range leads {
		if l.Interest {
			sum.WithInterest++
		}
		if l.PropertyType == models.Lancamento {
			sum.Launches++
		}
		if name := launchProject(l.Reference); name != "" {
			sum.LaunchProjects[name]++
			projectLeads++
		}
	}
	sum.NoInterest = sum.TotalLeads - sum.WithInterest
	sum.InterestRate = rate(sum.WithInterest, sum.TotalLeads)
	sum.GeneralLeads = sum.TotalLeads - projectLeads
	return sum
}

// CategoryDistribution counts leads per property type, most frequent first.
// Equal counts keep the order in which the type first appeared.
func (s *InsightService) CategoryDistribution(leads []*models.Lead) []models.CategoryCount {
	index := make(map[models.PropertyType]int)
	var out []models.CategoryCount
	for _, l := range leads {
		i, ok := index[l.PropertyType]
		if !ok {
			i = len(out)
			index[l.PropertyType] = i
			out = append(out, models.CategoryCount{PropertyType: l.PropertyType})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// InterestByCategory reports total, interested and rate per property type,
// ordered by type name.
func (s *InsightService) InterestByCategory(leads []*models.Lead) []models.CategoryInterest {
	index := make(map[models.PropertyType]int)
	var out []models.CategoryInterest
	for _, l := range leads {
		i, ok := index[l.PropertyType]
		if !ok {
			i = len(out)
			index[l.PropertyType] = i
			out = append(out, models.CategoryInterest{PropertyType: l.PropertyType})
		}
		out[i].Total++
		if l.Interest {
			out[i].WithInterest++
		}
	}
	for i := range out {
		out[i].InterestRate = rate(out[i].WithInterest, out[i].Total)
		out[i].Performance = PerformanceLabel(out[i].InterestRate)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PropertyType < out[j].PropertyType
	})
	return out
}

// PerformanceLabel grades an interest rate for the category table.
func PerformanceLabel(rate float64) string {
	switch {
	case rate >= 80:
		return "Excelente"
	case rate >= 60:
		return "Boa"
	case rate >= 40:
		return "Regular"
	default:
		return "Baixa"
	}
}

// DailySeries buckets timestamped leads per calendar day. Days without leads
// are left out. With three or more days, each inner day gets the mean of
// itself and its two neighbours; the first and last day get none.
func (s *InsightService) DailySeries(leads []*models.Lead) []models.DailyPoint {
	index := make(map[time.Time]int)
	var out []models.DailyPoint
	for _, l := range leads {
		if !l.HasTimestamp() {
			continue
		}
		ts := l.Timestamp.In(s.loc)
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, s.loc)
		i, ok := index[day]
		if !ok {
			i = len(out)
			index[day] = i
			out = append(out, models.DailyPoint{Day: day})
		}
		out[i].Count++
		if l.Interest {
			out[i].WithInterest++
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Day.Before(out[j].Day)
	})

	counts := make([]int, len(out))
	for i, p := range out {
		counts[i] = p.Count
	}
	for i, avg := range centeredMovingAverage(counts, 3) {
		out[i].MovingAverage = avg
	}
	return out
}

// centeredMovingAverage returns one entry per value; entries whose window
// would run past either end are nil. Fewer values than window yields all nil.
func centeredMovingAverage(values []int, window int) []*float64 {
	out := make([]*float64, len(values))
	if len(values) < window {
		return out
	}
	half := window / 2
	for i := half; i < len(values)-half; i++ {
		total := 0
		for j := i - half; j <= i+half; j++ {
			total += values[j]
		}
		avg := float64(total) / float64(window)
		out[i] = &avg
	}
	return out
}

// HourlyDistribution buckets timestamped leads by hour of day and finds the
// busiest hours. Ties keep every hour with the maximal count.
func (s *InsightService) HourlyDistribution(leads []*models.Lead) models.HourlyDistribution {
	var buckets [24]models.HourlyPoint
	var seen [24]bool
	for _, l := range leads {
		if !l.HasTimestamp() {
			continue
		}
		h := l.Timestamp.In(s.loc).Hour()
		seen[h] = true
		buckets[h].Hour = h
		buckets[h].Count++
		if l.Interest {
			buckets[h].WithInterest++
		}
	}

	dist := models.HourlyDistribution{}
	for h := 0; h < 24; h++ {
		if !seen[h] {
			continue
		}
		p := buckets[h]
		p.InterestRate = rate(p.WithInterest, p.Count)
		dist.Hours = append(dist.Hours, p)

		switch {
		case p.Count > dist.PeakCount:
			dist.PeakCount = p.Count
			dist.PeakHours = []int{h}
		case p.Count == dist.PeakCount:
			dist.PeakHours = append(dist.PeakHours, h)
		}
	}

	for i := range dist.Hours {
		if dist.BestConversion == nil || dist.Hours[i].InterestRate > dist.BestConversion.InterestRate {
			best := dist.Hours[i]
			dist.BestConversion = &best
		}
	}
	return dist
}

// TopReferences ranks references by lead count and keeps the first n.
// Ties are resolved by first occurrence. Leads without a reference are skipped.
func (s *InsightService) TopReferences(leads []*models.Lead, n int) []models.ReferenceCount {
	index := make(map[string]int)
	var out []models.ReferenceCount
	for _, l := range leads {
		if l.Reference == "" {
			continue
		}
		i, ok := index[l.Reference]
		if !ok {
			i = len(out)
			index[l.Reference] = i
			out = append(out, models.ReferenceCount{Reference: l.Reference})
		}
		out[i].Total++
		if l.Interest {
			out[i].WithInterest++
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	for i := range out {
		out[i].InterestRate = rate(out[i].WithInterest, out[i].Total)
	}
	return out
}

// countValues counts non-empty values, most frequent first, ties by first occurrence.
func countValues(leads []*models.Lead, value func(*models.Lead) string) []models.ValueCount {
	index := make(map[string]int)
	var out []models.ValueCount
	for _, l := range leads {
		v := value(l)
		if v == "" {
			continue
		}
		i, ok := index[v]
		if !ok {
			i = len(out)
			index[v] = i
			out = append(out, models.ValueCount{Value: v})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// rate is part/total as a percentage rounded to one decimal; zero total gives 0.
func rate(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(part) / float64(total) * 100)
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
