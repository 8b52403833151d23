package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarev/rotagen/internal/engine"
)

func TestValidateBaseline_CleanSchedule(t *testing.T) {
	s, _ := generateAugust(t)
	assert.Empty(t, engine.ValidateBaseline("2025-08", rosterOf8(), s))
}

func TestValidateBaseline_ReportsBrokenCycle(t *testing.T) {
	s, _ := generateAugust(t)
	// Break E01's cycle: the 9th is a working day in his rotation.
	require.Equal(t, engine.TokenDay, s.TokenOn("E01", engine.DateOf(2025, time.August, 9)))
	s.SetCode("E01", engine.DateOf(2025, time.August, 9), engine.CodeOFF, engine.SourceOverride)

	issues := engine.ValidateBaseline("2025-08", rosterOf8(), s)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0], "E01")
	assert.Contains(t, issues[0], "2025-08-09")
}

func TestValidateBaseline_IgnoresVacations(t *testing.T) {
	s, _ := generateAugust(t)
	var days []time.Time
	for _, d := range s.Days() {
		days = append(days, d)
	}
	engine.ApplyVacations(s, map[string][]time.Time{"E05": days})

	assert.Empty(t, engine.ValidateBaseline("2025-08", rosterOf8(), s),
		"an employee on vacation the whole month triggers no pattern check")
}

func TestValidateBaseline_AmbiguousOffAnchor(t *testing.T) {
	// Starts O,O,D,N: the validator has to try both off anchors and pick the
	// one that matches.
	s := buildSchedule(t, map[string][]engine.Code{
		"E01": repeatCycle(31, 2, engine.OfficeA),
	})
	emps := []engine.Employee{{ID: "E01"}}
	assert.Empty(t, engine.ValidateBaseline("2025-08", emps, s))

	// And the other off phase: O,D,N,O.
	s2 := buildSchedule(t, map[string][]engine.Code{
		"E01": repeatCycle(31, 3, engine.OfficeA),
	})
	assert.Empty(t, engine.ValidateBaseline("2025-08", emps, s2))
}

func TestCoverageSmoke(t *testing.T) {
	s, _ := generateAugust(t)
	rows := engine.CoverageSmoke(s, 3)
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, "2025-08-01", first.Date)
	// Day 1 of the fixture: E01 DA, E05 DB, E02 NA, E06 NB, E04 N8A, E08 N8B.
	assert.Equal(t, 1, first.DayA)
	assert.Equal(t, 1, first.DayB)
	assert.Equal(t, 2, first.NightA, "N8 counts as a night in the smoke")
	assert.Equal(t, 2, first.NightB)
}

func TestPhaseTrace(t *testing.T) {
	s, _ := generateAugust(t)
	lines := engine.PhaseTrace(rosterOf8(), s, 10)
	require.Len(t, lines, 8)
	assert.Regexp(t, `^E01: exp=([DNO] ){9}[DNO] \| act=([DNO] ){9}[DNO]$`, lines[0])
}
