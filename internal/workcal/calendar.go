// Package workcal loads the production calendar: monthly norm hours, extra
// non-working dates, and dates overridden back to working days.
package workcal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Calendar answers norm-hours and shortening-eligibility questions for the
// scheduling engine and the reports.
type Calendar struct {
	norms            map[string]int // "YYYY-MM" -> hours
	offDates         map[string]bool
	workingOverrides map[string]bool
}

type calendarFile struct {
	Year             *int           `json:"year"`
	MonthlyNormHours map[string]int `json:"monthly_norm_hours"`
	OffDates         []string       `json:"off_dates"`
	WorkingOverrides []string       `json:"working_overrides"`
}

// New builds an empty calendar; every date falls back to plain weekends and
// no month carries a norm.
func New() *Calendar {
	return &Calendar{
		norms:            map[string]int{},
		offDates:         map[string]bool{},
		workingOverrides: map[string]bool{},
	}
}

// FromJSON parses the calendar format: monthly norms keyed "YYYY-MM" (or a
// bare month number when a default year is present), plus off-date and
// working-override lists in ISO form.
func FromJSON(r io.Reader) (*Calendar, error) {
	var payload calendarFile
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parsing production calendar: %w", err)
	}

	cal := New()
	for key, hours := range payload.MonthlyNormHours {
		var y, m int
		if _, err := fmt.Sscanf(key, "%d-%d", &y, &m); err != nil {
			if payload.Year == nil {
				return nil, fmt.Errorf("monthly norm %q needs an explicit year", key)
			}
			if _, err := fmt.Sscanf(key, "%d", &m); err != nil {
				return nil, fmt.Errorf("invalid monthly norm key %q", key)
			}
			y = *payload.Year
		}
		cal.norms[fmt.Sprintf("%04d-%02d", y, m)] = hours
	}
	for _, raw := range payload.OffDates {
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return nil, fmt.Errorf("invalid off date %q: %w", raw, err)
		}
		cal.offDates[raw] = true
	}
	for _, raw := range payload.WorkingOverrides {
		if _, err := time.Parse("2006-01-02", raw); err != nil {
			return nil, fmt.Errorf("invalid working override %q: %w", raw, err)
		}
		cal.workingOverrides[raw] = true
	}
	return cal, nil
}

// Load reads a calendar JSON file from disk.
func Load(path string) (*Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening production calendar: %w", err)
	}
	defer f.Close()
	return FromJSON(f)
}

// NormHours returns the monthly norm, or 0 when the calendar has none.
func (c *Calendar) NormHours(year int, month time.Month) int {
	return c.norms[fmt.Sprintf("%04d-%02d", year, int(month))]
}

// IsOffDate reports whether the date is a calendar-marked non-working day.
func (c *Calendar) IsOffDate(d time.Time) bool {
	return c.offDates[d.Format("2006-01-02")]
}

// IsWorkingOverride reports whether the date is forced back to a working day.
func (c *Calendar) IsWorkingOverride(d time.Time) bool {
	return c.workingOverrides[d.Format("2006-01-02")]
}

// AllowsShortening reports whether a day shift on this date may be shortened:
// weekends and marked off dates qualify unless overridden as working.
func (c *Calendar) AllowsShortening(d time.Time) bool {
	if c.IsWorkingOverride(d) {
		return false
	}
	if c.IsOffDate(d) {
		return true
	}
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
