package services

import (
	"fmt"
	"strings"
	"time"

	"leads-dashboard/models"
)

// InterestFilter selects leads by their visit interest.
type InterestFilter string

const (
	InterestAll     InterestFilter = "all"
	InterestOnly    InterestFilter = "yes"
	InterestWithout InterestFilter = "no"
)

// ParseInterestFilter accepts all/yes/no (and empty as all).
func ParseInterestFilter(s string) (InterestFilter, error) {
	switch InterestFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", InterestAll:
		return InterestAll, nil
	case InterestOnly:
		return InterestOnly, nil
	case InterestWithout:
		return InterestWithout, nil
	}
	return "", fmt.Errorf("filter: unknown interest filter %q", s)
}

// Filter narrows the lead list the way the dashboard sidebar does.
// Zero values mean "no restriction". From and To are calendar days,
// both inclusive; when either is set, leads without a timestamp are excluded.
type Filter struct {
	PropertyType models.PropertyType
	From         time.Time
	To           time.Time
	Interest     InterestFilter
}

// Apply returns the leads matching f, keeping input order.
func (f Filter) Apply(leads []*models.Lead) []*models.Lead {
	out := make([]*models.Lead, 0, len(leads))
	for _, l := range leads {
		if f.matches(l) {
			out = append(out, l)
		}
	}
	return out
}

func (f Filter) matches(l *models.Lead) bool {
	if f.PropertyType != "" && l.PropertyType != f.PropertyType {
		return false
	}
	switch f.Interest {
	case InterestOnly:
		if !l.Interest {
			return false
		}
	case InterestWithout:
		if l.Interest {
			return false
		}
	}
	if f.From.IsZero() && f.To.IsZero() {
		return true
	}
	if !l.HasTimestamp() {
		return false
	}
	day := truncateDay(*l.Timestamp, f.location())
	if !f.From.IsZero() && day.Before(truncateDay(f.From, f.location())) {
		return false
	}
	if !f.To.IsZero() && day.After(truncateDay(f.To, f.location())) {
		return false
	}
	return true
}

func (f Filter) location() *time.Location {
	if !f.From.IsZero() {
		return f.From.Location()
	}
	return f.To.Location()
}

func truncateDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DefaultPeriodDays is the length of the default date window.
const DefaultPeriodDays = 30

// DefaultPeriod returns the dashboard's initial date window: the last 30 days
// of data, clipped to the earliest lead. ok is false when no lead has a timestamp.
func DefaultPeriod(leads []*models.Lead, loc *time.Location) (from, to time.Time, ok bool) {
	var minDay, maxDay time.Time
	for _, l := range leads {
		if !l.HasTimestamp() {
			continue
		}
		day := truncateDay(*l.Timestamp, loc)
		if !ok || day.Before(minDay) {
			minDay = day
		}
		if !ok || day.After(maxDay) {
			maxDay = day
		}
		ok = true
	}
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	from = maxDay.AddDate(0, 0, -DefaultPeriodDays)
	if from.Before(minDay) {
		from = minDay
	}
	return from, maxDay, true
}
