package models

import "time"

// CategoryCount is one slice of the property-type distribution.
type CategoryCount struct {
	PropertyType PropertyType `json:"property_type"`
	Count        int          `json:"count"`
}

// CategoryInterest is the interest breakdown for one property type.
type CategoryInterest struct {
	PropertyType PropertyType `json:"property_type"`
	Total        int          `json:"total"`
	WithInterest int          `json:"with_interest"`
	InterestRate float64      `json:"interest_rate"`
	Performance  string       `json:"performance"`
}

// DailyPoint is one non-empty calendar day of the lead time series.
// MovingAverage is nil when no centered 3-day window exists for the day.
type DailyPoint struct {
	Day           time.Time `json:"day"`
	Count         int       `json:"count"`
	WithInterest  int       `json:"with_interest"`
	MovingAverage *float64  `json:"moving_average"`
}

// HourlyPoint aggregates leads received during one hour of the day.
type HourlyPoint struct {
	Hour         int     `json:"hour"`
	Count        int     `json:"count"`
	WithInterest int     `json:"with_interest"`
	InterestRate float64 `json:"interest_rate"`
}

// HourlyDistribution holds the hour-of-day view and its peaks.
type HourlyDistribution struct {
	Hours     []HourlyPoint `json:"hours"`
	PeakHours []int         `json:"peak_hours"`
	PeakCount int           `json:"peak_count"`
	// BestConversion is the first hour with the highest interest rate.
	BestConversion *HourlyPoint `json:"best_conversion,omitempty"`
}

// ReferenceCount is one row of the most requested references table.
type ReferenceCount struct {
	Reference    string  `json:"reference"`
	Total        int     `json:"total"`
	WithInterest int     `json:"with_interest"`
	InterestRate float64 `json:"interest_rate"`
}

// ValueCount is a generic label/count pair used for origin and status views.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Summary holds the headline metric cards.
type Summary struct {
	TotalLeads     int            `json:"total_leads"`
	WithInterest   int            `json:"with_interest"`
	NoInterest     int            `json:"no_interest"`
	InterestRate   float64        `json:"interest_rate"`
	Launches       int            `json:"launches"`
	LaunchProjects map[string]int `json:"launch_projects"`
	GeneralLeads   int            `json:"general_leads"`
}

// InsightReport holds the computed analytics over the cleaned dataset.
type InsightReport struct {
	Summary            Summary            `json:"summary"`
	Categories         []CategoryCount    `json:"categories"`
	InterestByCategory []CategoryInterest `json:"interest_by_category"`
	Daily              []DailyPoint       `json:"daily"`
	Hourly             HourlyDistribution `json:"hourly"`
	TopReferences      []ReferenceCount   `json:"top_references"`
	Origins            []ValueCount       `json:"origins,omitempty"`
	Statuses           []ValueCount       `json:"statuses,omitempty"`
}

// Result is what one dashboard refresh hands to the presentation layer.
// A failed load yields an empty Result with Status describing the problem.
type Result struct {
	RunID       string         `json:"run_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Status      string         `json:"status"`
	Err         error          `json:"-"`
	Dataset     *Dataset       `json:"-"`
	Leads       []*Lead        `json:"leads"`
	TotalLeads  int            `json:"total_leads"`
	Report      *InsightReport `json:"report"`
}

// OK reports whether the run produced data.
func (r *Result) OK() bool {
	return r.Err == nil
}
