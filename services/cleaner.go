package services

import (
	"strings"
	"time"
	"unicode"

	"leads-dashboard/models"
	"leads-dashboard/utils"
)

// TimestampLayout is the sheet's day/month/year hour:minute:second format.
// Day, month and hour may be written with or without a leading zero.
const TimestampLayout = "2/1/2006 15:04:05"

// affirmative holds the case-folded values that mean "wants a visit".
var affirmative = map[string]struct{}{
	"true": {},
	"sim":  {},
	"yes":  {},
	"1":    {},
}

// Cleaner transforms a normalised sheet table into Leads.
type Cleaner struct {
	logger *utils.Logger
	loc    *time.Location
}

// NewCleaner creates a Cleaner that parses timestamps in loc.
func NewCleaner(logger *utils.Logger, loc *time.Location) *Cleaner {
	if loc == nil {
		loc = time.UTC
	}
	return &Cleaner{logger: logger, loc: loc}
}

// columns caches header positions; -1 means the column is absent.
type columns struct {
	timestamp, name, phone, reference int
	interest, propertyType, status    int
	origin                            int
}

func indexColumns(t *models.Table) columns {
	return columns{
		timestamp:    t.ColumnIndex(models.ColTimestamp),
		name:         t.ColumnIndex(models.ColName),
		phone:        t.ColumnIndex(models.ColPhone),
		reference:    t.ColumnIndex(models.ColReference),
		interest:     t.ColumnIndex(models.ColInterest),
		propertyType: t.ColumnIndex(models.ColPropertyType),
		status:       t.ColumnIndex(models.ColStatus),
		origin:       t.ColumnIndex(models.ColOrigin),
	}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// Clean processes table rows and returns leads in the original row order,
// together with counts of what was dropped or could not be parsed.
func (c *Cleaner) Clean(t *models.Table) ([]*models.Lead, models.CleanStats) {
	stats := models.CleanStats{RawRows: len(t.Rows)}
	cols := indexColumns(t)
	useSourceType := cols.propertyType >= 0 && !columnEmpty(t.Rows, cols.propertyType)

	result := make([]*models.Lead, 0, len(t.Rows))

	for i, row := range t.Rows {
		rawTS := strings.TrimSpace(cell(row, cols.timestamp))
		name := normaliseText(cell(row, cols.name))
		phone := strings.TrimSpace(cell(row, cols.phone))

		if rawTS == "" && name == "" && phone == "" {
			c.logger.Debug("[cleaner] Dropping row %d without timestamp, name or phone", i+1)
			continue
		}

		lead := &models.Lead{
			Name:        name,
			Phone:       phone,
			Reference:   strings.TrimSpace(cell(row, cols.reference)),
			InterestRaw: cell(row, cols.interest),
			Status:      strings.TrimSpace(cell(row, cols.status)),
			Origin:      strings.TrimSpace(cell(row, cols.origin)),
		}

		ts, err := c.parseTimestamp(rawTS)
		if err != nil {
			stats.ParseFailures++
			c.logger.Debug("[cleaner] %v", &models.ParseFailure{
				Row: i + 1, Column: models.ColTimestamp, Value: rawTS, Err: err,
			})
		}
		lead.Timestamp = ts

		lead.Interest = parseInterest(lead.InterestRaw)

		if useSourceType {
			lead.PropertyType = models.PropertyType(strings.TrimSpace(cell(row, cols.propertyType)))
		}
		if lead.PropertyType == "" {
			lead.PropertyType = Classify(lead.Reference)
			stats.Classified++
		}

		if lead.Status == "" {
			lead.Status = models.DefaultStatus
		}

		result = append(result, lead)
	}

	stats.Kept = len(result)
	stats.Dropped = stats.RawRows - stats.Kept

	c.logger.Info("[cleaner] Cleaned %d → %d leads (dropped %d, unparsed timestamps %d)",
		stats.RawRows, stats.Kept, stats.Dropped, stats.ParseFailures)
	return result, stats
}

// parseTimestamp returns nil for empty or non-conforming values.
// The error is only reported for values that were present.
func (c *Cleaner) parseTimestamp(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	ts, err := time.ParseInLocation(TimestampLayout, raw, c.loc)
	if err != nil {
		return nil, err
	}
	return &ts, nil
}

func parseInterest(raw string) bool {
	_, ok := affirmative[strings.ToLower(strings.TrimSpace(raw))]
	return ok
}

func columnEmpty(rows [][]string, idx int) bool {
	for _, r := range rows {
		if strings.TrimSpace(cell(r, idx)) != "" {
			return false
		}
	}
	return true
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	s = strings.TrimSpace(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
