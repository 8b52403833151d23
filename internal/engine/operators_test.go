package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarev/rotagen/internal/engine"
)

func earlyWindow(days int) engine.Window {
	return engine.Window{
		From: engine.DateOf(2025, time.August, 1),
		To:   engine.DateOf(2025, time.August, days),
	}
}

func tokensOf(s *engine.Schedule, empID string) []engine.Token {
	out := make([]engine.Token, 0, len(s.Days()))
	for _, d := range s.Days() {
		out = append(out, s.TokenOn(empID, d))
	}
	return out
}

func TestPhaseShiftMinusOne_SkipsNightAndRestitches(t *testing.T) {
	s := buildSchedule(t, map[string][]engine.Code{
		"E01": repeatCycle(31, 0, engine.OfficeA),
	})
	before := s.Clone()

	next, res := engine.PhaseShiftMinusOne(s, "E01", earlyWindow(6), "", false)
	require.True(t, res.OK, res.Reason)
	assert.Equal(t, -12, res.HoursDelta)

	// The first D,N,O fragment is days 1..3: the night on the 2nd is skipped.
	assert.Equal(t, engine.CodeOFF, next.CodeOn("E01", engine.DateOf(2025, time.August, 2)))
	assert.Equal(t, engine.TokenOff, next.TokenOn("E01", engine.DateOf(2025, time.August, 3)))
	assert.Equal(t, engine.TokenDay, next.TokenOn("E01", engine.DateOf(2025, time.August, 4)))
	assert.Equal(t, engine.TokenNight, next.TokenOn("E01", engine.DateOf(2025, time.August, 5)))

	// Pure operator: the input schedule is untouched.
	for _, d := range before.Days() {
		assert.Equal(t, before.CodeOn("E01", d), s.CodeOn("E01", d))
	}
}

func TestPhaseShiftMinusOne_NoPatternInWindow(t *testing.T) {
	s := buildSchedule(t, map[string][]engine.Code{
		"E01": {engine.CodeOFF, engine.CodeOFF, engine.CodeOFF, engine.CodeOFF, engine.CodeOFF, engine.CodeOFF},
	})
	_, res := engine.PhaseShiftMinusOne(s, "E01", earlyWindow(6), "", false)
	assert.False(t, res.OK)
	assert.Contains(t, res.Reason, "no D,N,O pattern")
}

func TestPhaseShiftPlusOne_InsertsOffDay(t *testing.T) {
	// Phase 2 start: O,O,D,N repeating.
	s := buildSchedule(t, map[string][]engine.Code{
		"E01": repeatCycle(31, 2, engine.OfficeA),
	})

	next, res := engine.PhaseShiftPlusOne(s, "E01", earlyWindow(6), "", false)
	require.True(t, res.OK, res.Reason)
	assert.Equal(t, -12, res.HoursDelta)

	// Days 1..3 were O,O,D: the D is forced off, the cycle resumes after a
	// triple off.
	assert.Equal(t, engine.CodeOFF, next.CodeOn("E01", engine.DateOf(2025, time.August, 3)))
	assert.Equal(t, engine.TokenDay, next.TokenOn("E01", engine.DateOf(2025, time.August, 4)))
	assert.Equal(t, engine.TokenNight, next.TokenOn("E01", engine.DateOf(2025, time.August, 5)))
}

func TestPhaseShift_RoundTripRestoresTokensAfterWindow(t *testing.T) {
	s := buildSchedule(t, map[string][]engine.Code{
		"E01": repeatCycle(31, 0, engine.OfficeA),
	})
	original := tokensOf(s, "E01")

	minus, res := engine.PhaseShiftMinusOne(s, "E01", earlyWindow(6), "", false)
	require.True(t, res.OK)
	plus, res := engine.PhaseShiftPlusOne(minus, "E01", earlyWindow(6), "", false)
	require.True(t, res.OK)

	restored := tokensOf(plus, "E01")
	for i := 6; i < len(original); i++ {
		assert.Equal(t, original[i], restored[i], "token on day %d", i+1)
	}
}

func TestPhaseShiftPlusOne_ProtectsVacationAndCarry(t *testing.T) {
	codes := map[string][]engine.Code{
		"E01": {engine.CodeVAC0, engine.CodeVAC0, engine.CodeDA, engine.CodeNA, engine.CodeOFF, engine.CodeOFF, engine.CodeDB},
	}
	s := buildSchedule(t, codes)

	next, res := engine.PhaseShiftPlusOne(s, "E01", earlyWindow(7), "", false)
	require.True(t, res.OK, res.Reason)
	// The vacation pair on days 1-2 is not a usable O,O prefix; the first
	// legal fragment is days 5,6,7.
	assert.Equal(t, engine.CodeVAC0, next.CodeOn("E01", engine.DateOf(2025, time.August, 1)))
	assert.Equal(t, engine.CodeVAC0, next.CodeOn("E01", engine.DateOf(2025, time.August, 2)))
	assert.Equal(t, engine.CodeOFF, next.CodeOn("E01", engine.DateOf(2025, time.August, 7)))
}

func TestFlipABOnNextToken_SwapsOfficesOnly(t *testing.T) {
	s := buildSchedule(t, map[string][]engine.Code{
		"E01": repeatCycle(31, 0, engine.OfficeA),
		"E02": repeatCycle(31, 0, engine.OfficeA),
	})
	before := tokensOf(s, "E01")

	next, res := engine.FlipABOnNextToken(s, "E01", earlyWindow(6), engine.TokenDay, "E02", true)
	require.True(t, res.OK, res.Reason)
	assert.Zero(t, res.HoursDelta)

	assert.Equal(t, before, tokensOf(next, "E01"), "phase pattern unchanged")
	assert.Equal(t, engine.CodeDB, next.CodeOn("E01", engine.DateOf(2025, time.August, 1)),
		"first D flips opposite the partner")
	assert.Equal(t, s.HoursFor("E01"), next.HoursFor("E01"))
}

func TestFlipABOnDay(t *testing.T) {
	s := buildSchedule(t, map[string][]engine.Code{
		"E01": {engine.CodeN8A, engine.CodeOFF, engine.CodeDA},
	})

	_, ok, reason := engine.FlipABOnDay(s, "E01", engine.DateOf(2025, time.August, 1))
	assert.False(t, ok)
	assert.Contains(t, reason, "protected")

	next, ok, _ := engine.FlipABOnDay(s, "E01", engine.DateOf(2025, time.August, 3))
	require.True(t, ok)
	a, _ := next.AssignmentOn("E01", engine.DateOf(2025, time.August, 3))
	assert.Equal(t, engine.CodeDB, a.Code)
	assert.Equal(t, engine.SourcePairDesync, a.Source)
}

func TestDesyncPairMonth(t *testing.T) {
	s := buildSchedule(t, map[string][]engine.Code{
		"E01": repeatCycle(31, 0, engine.OfficeA),
		"E02": repeatCycle(31, 0, engine.OfficeA),
	})
	month := s.MonthWindow()
	require.Positive(t, engine.SameOfficeHours(s, "E01", "E02", month))

	next, flips, notes := engine.DesyncPairMonth(s, "E01", "E02")
	assert.Positive(t, flips)
	assert.Len(t, notes, flips)
	assert.Zero(t, engine.SameOfficeHours(next, "E01", "E02", month))
	assert.Equal(t, s.HoursFor("E01"), next.HoursFor("E01"), "desync preserves hours")
	assert.Equal(t, tokensOf(s, "E01"), tokensOf(next, "E01"))
}
