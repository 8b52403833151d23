package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarev/rotagen/internal/engine"
)

// august2025 weekends: the 1st is a Friday, so 2,3,9,10,16,17,23,24,30,31.
func isAugustWeekend(day int) bool {
	switch day {
	case 2, 3, 9, 10, 16, 17, 23, 24, 30, 31:
		return true
	}
	return false
}

func shortenPolicy() engine.ShorteningPolicy {
	return engine.ShorteningPolicy{MonthlyAllowance: 10, YearlyCap: 120}
}

func TestEnforceHoursCaps_PrefersEveningOnWeekends(t *testing.T) {
	// E01 and E02 both work two weekend days and two weekdays, so each
	// covers the other's days. Norm 34, cap 44: each sits at 48h and needs
	// one shortening (48h -> 44h). E01 comes first in roster order.
	codes := map[string][]engine.Code{"E01": nil, "E02": nil}
	s := buildSchedule(t, codes)
	for _, day := range []int{2, 3, 4, 5} {
		s.SetCode("E01", engine.DateOf(2025, time.August, day), engine.CodeDA, engine.SourceTemplate)
		s.SetCode("E02", engine.DateOf(2025, time.August, day), engine.CodeDB, engine.SourceTemplate)
	}
	emps := []engine.Employee{{ID: "E01", Name: "Сотрудник 1"}, {ID: "E02", Name: "Сотрудник 2"}}

	res := engine.EnforceHoursCaps(emps, s, 34, "2025-08", nil, shortenPolicy())

	require.Len(t, res.Operations, 2)
	op := res.Operations[0]
	assert.Equal(t, "E01", op.EmployeeID)
	assert.True(t, isAugustWeekend(op.Date.Day()), "weekend candidates come first")
	assert.Equal(t, engine.CodeDA, op.FromCode)
	assert.Equal(t, engine.CodeE8A, op.ToCode, "weekend shortening prefers the evening variant")
	assert.Equal(t, -4, op.HoursDelta)

	a, _ := s.AssignmentOn("E01", op.Date)
	assert.Equal(t, engine.SourceShorten, a.Source)
	assert.Equal(t, 8, a.Hours)
	assert.Empty(t, res.Warnings)
}

func TestEnforceHoursCaps_PrefersMorningOnWeekdays(t *testing.T) {
	codes := map[string][]engine.Code{"E01": nil, "E02": nil}
	s := buildSchedule(t, codes)
	for _, day := range []int{4, 5, 6} {
		s.SetCode("E01", engine.DateOf(2025, time.August, day), engine.CodeDB, engine.SourceTemplate)
		s.SetCode("E02", engine.DateOf(2025, time.August, day), engine.CodeDA, engine.SourceTemplate)
	}
	emps := []engine.Employee{{ID: "E01", Name: "Сотрудник 1"}, {ID: "E02", Name: "Сотрудник 2"}}

	res := engine.EnforceHoursCaps(emps, s, 20, "2025-08", nil, shortenPolicy())

	require.NotEmpty(t, res.Operations)
	assert.Equal(t, engine.CodeM8B, res.Operations[0].ToCode, "weekday shortening prefers the morning variant")
}

func TestEnforceHoursCaps_CoverageFloorPicksOtherVariant(t *testing.T) {
	// The only other day worker on the 4th covers mornings only, so E01's
	// shift must keep the evening: M8 would leave the evening empty.
	codes := map[string][]engine.Code{"E01": nil, "E02": nil}
	s := buildSchedule(t, codes)
	s.SetCode("E01", engine.DateOf(2025, time.August, 4), engine.CodeDA, engine.SourceTemplate)
	s.SetCode("E02", engine.DateOf(2025, time.August, 4), engine.CodeM8B, engine.SourceTemplate)
	emps := []engine.Employee{{ID: "E01", Name: "Сотрудник 1"}}

	res := engine.EnforceHoursCaps(emps, s, 4, "2025-08", nil, engine.ShorteningPolicy{MonthlyAllowance: 0, YearlyCap: 0})

	require.Len(t, res.Operations, 1)
	assert.Equal(t, engine.CodeE8A, res.Operations[0].ToCode)
}

func TestEnforceHoursCaps_SoloWeekendsAreProtected(t *testing.T) {
	// Norm 160: E01 sits at 204h, but on every weekend E01 is the only day
	// worker and E01's weekday work is nights. E02 (weekday DB, 252h) is
	// likewise the only day worker on each of its days - nothing can be
	// shortened, so both end up with a warning, E01's first.
	codes := map[string][]engine.Code{"E01": nil, "E02": nil}
	s := buildSchedule(t, codes)
	weekdayNights := 0
	for _, d := range s.Days() {
		if isAugustWeekend(d.Day()) {
			s.SetCode("E01", d, engine.CodeDA, engine.SourceTemplate)
		} else if weekdayNights < 7 {
			s.SetCode("E01", d, engine.CodeNA, engine.SourceTemplate)
			weekdayNights++
		}
		if !isAugustWeekend(d.Day()) {
			s.SetCode("E02", d, engine.CodeDB, engine.SourceTemplate)
		}
	}
	emps := []engine.Employee{{ID: "E01", Name: "Сотрудник 1"}, {ID: "E02", Name: "Сотрудник 2"}}
	require.Equal(t, 10*12+7*12, s.HoursFor("E01"))

	res := engine.EnforceHoursCaps(emps, s, 160, "2025-08", nil, shortenPolicy())

	assert.Empty(t, res.Operations, "solo weekends must not be shortened")
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "E01")
	assert.Contains(t, res.Warnings[0], "перелимит 44ч")
	assert.Contains(t, res.Warnings[0], "остаток по году")
}

func TestEnforceHoursCaps_Idempotent(t *testing.T) {
	codes := map[string][]engine.Code{"E01": nil, "E02": nil}
	s := buildSchedule(t, codes)
	for _, day := range []int{2, 3, 4, 5, 6} {
		s.SetCode("E01", engine.DateOf(2025, time.August, day), engine.CodeDA, engine.SourceTemplate)
		s.SetCode("E02", engine.DateOf(2025, time.August, day), engine.CodeDB, engine.SourceTemplate)
	}
	emps := []engine.Employee{{ID: "E01", Name: "Сотрудник 1"}, {ID: "E02", Name: "Сотрудник 2"}}

	first := engine.EnforceHoursCaps(emps, s, 40, "2025-08", nil, shortenPolicy())
	require.NotEmpty(t, first.Operations)

	second := engine.EnforceHoursCaps(emps, s, 40, "2025-08", nil, shortenPolicy())
	assert.Empty(t, second.Operations, "re-running on a compliant schedule is a no-op")
	assert.Empty(t, second.Warnings)
}

func TestEnforceHoursCaps_YearlyCap(t *testing.T) {
	codes := map[string][]engine.Code{"E01": nil, "E02": nil}
	s := buildSchedule(t, codes)
	for _, day := range []int{4, 5} {
		s.SetCode("E01", engine.DateOf(2025, time.August, day), engine.CodeDA, engine.SourceTemplate)
		s.SetCode("E02", engine.DateOf(2025, time.August, day), engine.CodeDB, engine.SourceTemplate)
	}
	// Monthly cap is fine (24 <= 20+10) but the year budget is exhausted.
	emps := []engine.Employee{
		{ID: "E01", Name: "Сотрудник 1", YTDOvertime: 118},
		{ID: "E02", Name: "Сотрудник 2"},
	}

	res := engine.EnforceHoursCaps(emps, s, 20, "2025-08", nil, shortenPolicy())

	require.NotEmpty(t, res.Operations, "yearly pressure forces shortening")
	info := res.PerEmployee["E01"]
	require.NotNil(t, info.YearlyLeft)
	assert.GreaterOrEqual(t, *info.YearlyLeft, 0)
}
