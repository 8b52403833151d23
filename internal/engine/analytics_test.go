package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarev/rotagen/internal/engine"
)

func TestComputePairs_CountsOverlap(t *testing.T) {
	s := buildSchedule(t, map[string][]engine.Code{
		"E01": {engine.CodeDA, engine.CodeNA, engine.CodeOFF, engine.CodeDA},
		"E02": {engine.CodeDA, engine.CodeNB, engine.CodeOFF, engine.CodeDB},
		"E03": {engine.CodeOFF, engine.CodeOFF, engine.CodeDA, engine.CodeOFF},
	})

	pairs := engine.ComputePairs(s)
	require.Len(t, pairs, 3)

	top := pairs[0]
	assert.Equal(t, "E01", top.A)
	assert.Equal(t, "E02", top.B)
	assert.Equal(t, 2, top.Days, "days 1 and 4 overlap as D~D")
	assert.Equal(t, 1, top.Nights, "day 2 overlaps as N~N")
}

func TestComputePairs_N8OnDayOneDoesNotCount(t *testing.T) {
	s := buildSchedule(t, map[string][]engine.Code{
		"E01": {engine.CodeN8A, engine.CodeNA},
		"E02": {engine.CodeN8A, engine.CodeNA},
	})
	pairs := engine.ComputePairs(s)
	require.Len(t, pairs, 1)
	assert.Equal(t, 1, pairs[0].Nights, "only day 2: the day-1 carries project to O")
}

func TestExclusiveMatchingByDay(t *testing.T) {
	pairs := []engine.PairOverlap{
		{A: "E01", B: "E02", Days: 10, Nights: 2},
		{A: "E01", B: "E03", Days: 9, Nights: 5},
		{A: "E03", B: "E04", Days: 8, Nights: 1},
		{A: "E05", B: "E06", Days: 3, Nights: 0},
	}

	excl := engine.ExclusiveMatchingByDay(pairs, 6)
	require.Len(t, excl, 2)
	assert.Equal(t, "E01", excl[0].A)
	assert.Equal(t, "E02", excl[0].B)
	// E01~E03 is blocked by E01 already being matched; E03~E04 survives.
	assert.Equal(t, "E03", excl[1].A)
	assert.Equal(t, "E04", excl[1].B)
}

func TestPairHours_MinOfBothSides(t *testing.T) {
	s := buildSchedule(t, map[string][]engine.Code{
		"E01": {engine.CodeDA, engine.CodeM8A, engine.CodeNA},
		"E02": {engine.CodeDB, engine.CodeDA, engine.CodeNA},
	})

	info := engine.PairHours(s, "E01", "E02")
	assert.Equal(t, 12+8, info.DayHours, "12h on day 1, min(8,12) on day 2")
	assert.Equal(t, 12, info.NightHours)
	assert.Equal(t, 32, info.TotalHours)
}

func TestSoloDays(t *testing.T) {
	s := buildSchedule(t, map[string][]engine.Code{
		"E01": {engine.CodeDA, engine.CodeDA, engine.CodeOFF},
		"E02": {engine.CodeOFF, engine.CodeDB, engine.CodeNA},
	})

	solo := engine.SoloDays(s)
	assert.Equal(t, 1, solo["E01"], "day 1 is E01's solo day")
	assert.Zero(t, solo["E02"])

	win := engine.Window{From: engine.DateOf(2025, time.August, 1), To: engine.DateOf(2025, time.August, 1)}
	assert.Equal(t, 1, engine.SoloDaysInWindow(s, "E01", win))
	assert.Equal(t, 0, engine.SoloDaysInWindow(s, "E02", win))
}

func TestSameOfficeHours(t *testing.T) {
	s := buildSchedule(t, map[string][]engine.Code{
		"E01": {engine.CodeDA, engine.CodeDA, engine.CodeNA, engine.CodeN8A},
		"E02": {engine.CodeDA, engine.CodeDB, engine.CodeNA, engine.CodeN8A},
	})

	month := s.MonthWindow()
	// Day 1: same office D (12). Day 2: different offices. Day 3: same office
	// N (12). Day 4: both N8 but off day 1; N8 outside day 1 still counts as N.
	assert.Equal(t, 12+12+8, engine.SameOfficeHours(s, "E01", "E02", month))

	firstTwo := engine.Window{From: engine.DateOf(2025, time.August, 1), To: engine.DateOf(2025, time.August, 2)}
	assert.Equal(t, 12, engine.SameOfficeHours(s, "E01", "E02", firstTwo))
}

func TestPairHoursExclusive_OrdersByTotal(t *testing.T) {
	s := buildSchedule(t, map[string][]engine.Code{
		"E01": {engine.CodeDA, engine.CodeDA},
		"E02": {engine.CodeDA, engine.CodeDB},
		"E03": {engine.CodeNA, engine.CodeOFF},
		"E04": {engine.CodeNA, engine.CodeOFF},
	})
	prev := []engine.PairOverlap{
		{A: "E03", B: "E04", Days: 9, Nights: 9},
		{A: "E01", B: "E02", Days: 10, Nights: 0},
	}

	infos := engine.PairHoursExclusive(s, prev, 6)
	require.Len(t, infos, 2)
	assert.Equal(t, "E01", infos[0].A)
	assert.Equal(t, 24, infos[0].TotalHours)
	assert.Equal(t, "E03", infos[1].A)
	assert.Equal(t, 12, infos[1].TotalHours)
}
