package engine_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarev/rotagen/internal/engine"
)

// balancerFixture generates a full August roster where E01 and E02 run the
// exact same cycle in the same office, and the other three pairs cover the
// remaining phases so every day has two day workers.
func balancerFixture(t *testing.T) (*engine.Schedule, []engine.Employee) {
	t.Helper()
	tails := map[string][]engine.Code{
		"E01": {engine.CodeOFF, engine.CodeDB, engine.CodeOFF, engine.CodeOFF},
		"E02": {engine.CodeOFF, engine.CodeDB, engine.CodeOFF, engine.CodeOFF},
		"E03": {engine.CodeOFF, engine.CodeOFF, engine.CodeOFF, engine.CodeDA},
		"E04": {engine.CodeOFF, engine.CodeOFF, engine.CodeOFF, engine.CodeDB},
		"E05": {engine.CodeDA, engine.CodeOFF, engine.CodeNA, engine.CodeOFF},
		"E06": {engine.CodeDB, engine.CodeOFF, engine.CodeNB, engine.CodeOFF},
		"E07": {engine.CodeOFF, engine.CodeOFF, engine.CodeDA, engine.CodeNA},
		"E08": {engine.CodeOFF, engine.CodeOFF, engine.CodeDB, engine.CodeNB},
	}
	emps := rosterOf8()
	s, _, err := engine.GenerateMonth(engine.MonthSpec{YearMonth: "2025-08", NormHours: 184}, emps, nil, tails)
	require.NoError(t, err)

	// The fixture's whole point: a fully synchronized same-office pair.
	require.Equal(t, engine.CodeDA, s.CodeOn("E01", engine.DateOf(2025, time.August, 1)))
	require.Equal(t, engine.CodeDA, s.CodeOn("E02", engine.DateOf(2025, time.August, 1)))
	return s, emps
}

func basePolicy(s *engine.Schedule) engine.PairBreakingPolicy {
	return engine.PairBreakingPolicy{
		Enabled:          true,
		OverlapThreshold: 6,
		WindowDays:       6,
		MaxOps:           4,
		HoursBudget:      12,
		AntiAlign:        true,
		PrevPairs:        engine.ComputePairs(s),
		NormHours:        184,
	}
}

func TestApplyPairBreaking_Disabled(t *testing.T) {
	s, emps := balancerFixture(t)
	res := engine.ApplyPairBreaking(s, emps, engine.PairBreakingPolicy{Enabled: false})
	assert.Same(t, s, res.Schedule)
	assert.Empty(t, res.OpsLog)
}

func TestApplyPairBreaking_AcceptsMinusOne(t *testing.T) {
	s, emps := balancerFixture(t)
	month := s.MonthWindow()
	sameBefore := engine.SameOfficeHours(s, "E01", "E02", month)
	require.Positive(t, sameBefore)

	res := engine.ApplyPairBreaking(s, emps, basePolicy(s))

	require.NotEmpty(t, res.OpsLog)
	first := res.OpsLog[0]
	assert.True(t, strings.HasPrefix(first, "E01: op=-1") || strings.HasPrefix(first, "E02: op=-1"), first)
	assert.True(t, strings.HasSuffix(first, "→ ACCEPT"), first)
	assert.Contains(t, first, "Δpair_excl=-")
	assert.Positive(t, res.OpsAccepted)

	sameAfter := engine.SameOfficeHours(res.Schedule, "E01", "E02", res.Schedule.MonthWindow())
	assert.Less(t, sameAfter, sameBefore)
	assert.LessOrEqual(t, res.PairScoreAfter, res.PairScoreBefore)

	require.NoError(t, res.Schedule.CheckInvariants(emps))
}

func TestApplyPairBreaking_BudgetRejectsPhaseShifts(t *testing.T) {
	s, emps := balancerFixture(t)
	pol := basePolicy(s)
	pol.HoursBudget = 0
	// Only E01~E02: both of its phase shifts cost hours. A zero-cost shift
	// (E03's minus-one) would fit a zero budget.
	pol.FixedPairs = [][2]string{{"E01", "E02"}}

	hoursBefore := s.HoursByEmployee()
	res := engine.ApplyPairBreaking(s, emps, pol)

	sawMinus := false
	for _, line := range res.OpsLog {
		if strings.Contains(line, "op=-1") && !strings.Contains(line, "SKIP") {
			sawMinus = true
			assert.True(t, strings.HasSuffix(line, "REJECT(budget)"), line)
		}
		if strings.Contains(line, "op=+1") && !strings.Contains(line, "SKIP") {
			assert.True(t, strings.HasSuffix(line, "REJECT(budget)"), line)
		}
	}
	assert.True(t, sawMinus, "minus-one must have been attempted")

	// Office flips carry no hour cost, so whatever was accepted, the hour
	// totals and the phase pattern are untouched.
	assert.Equal(t, hoursBefore, res.Schedule.HoursByEmployee())
	for _, e := range emps {
		assert.Equal(t, tokensOf(s, e.ID), tokensOf(res.Schedule, e.ID), e.ID)
	}
}

func TestApplyPairBreaking_InternsAreExcluded(t *testing.T) {
	s, emps := balancerFixture(t)
	pol := basePolicy(s)
	pol.InternIDs = []string{"E01"}

	res := engine.ApplyPairBreaking(s, emps, pol)
	for _, line := range res.OpsLog {
		assert.False(t, strings.HasPrefix(line, "E01:"), "intern must not be mutated: %s", line)
	}
	// E01~E02 was the top pair; with E01 interned the pair disappears from
	// the targets entirely.
	assert.Equal(t, engine.SameOfficeHours(s, "E01", "E02", s.MonthWindow()),
		engine.SameOfficeHours(res.Schedule, "E01", "E02", res.Schedule.MonthWindow()))
}

func TestApplyPairBreaking_FixedPairsOverrideMatching(t *testing.T) {
	s, emps := balancerFixture(t)
	pol := basePolicy(s)
	pol.FixedPairs = [][2]string{{"E03", "E04"}}
	pol.PrevPairs = nil

	res := engine.ApplyPairBreaking(s, emps, pol)
	for _, line := range res.OpsLog {
		ok := strings.HasPrefix(line, "E03:") || strings.HasPrefix(line, "E04:") ||
			strings.HasPrefix(line, "E03~E04:")
		assert.True(t, ok, "only the fixed pair may appear: %s", line)
	}
}

func TestApplyPairBreaking_Deterministic(t *testing.T) {
	s1, emps := balancerFixture(t)
	s2, _ := balancerFixture(t)

	r1 := engine.ApplyPairBreaking(s1, emps, basePolicy(s1))
	r2 := engine.ApplyPairBreaking(s2, emps, basePolicy(s2))

	assert.Equal(t, r1.OpsLog, r2.OpsLog)
	for _, d := range r1.Schedule.Days() {
		assert.Equal(t, r1.Schedule.At(d), r2.Schedule.At(d))
	}
}

func TestApplyPairBreaking_PostDesync(t *testing.T) {
	s, emps := balancerFixture(t)
	pol := basePolicy(s)
	pol.MaxOps = -1 // starve the main loop so only the post-pass runs
	pol.PostDesync = true

	res := engine.ApplyPairBreaking(s, emps, pol)
	assert.Zero(t, engine.SameOfficeHours(res.Schedule, "E01", "E02", res.Schedule.MonthWindow()))
	sawDesync := false
	for _, line := range res.OpsLog {
		if strings.Contains(line, "op=desync") {
			sawDesync = true
		}
	}
	assert.True(t, sawDesync)
}
