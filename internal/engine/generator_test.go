package engine_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vkarev/rotagen/internal/engine"
)

func rosterOf8() []engine.Employee {
	return []engine.Employee{
		{ID: "E01", Name: "Сотрудник 1"},
		{ID: "E02", Name: "Сотрудник 2"},
		{ID: "E03", Name: "Сотрудник 3"},
		{ID: "E04", Name: "Сотрудник 4"},
		{ID: "E05", Name: "Сотрудник 5"},
		{ID: "E06", Name: "Сотрудник 6"},
		{ID: "E07", Name: "Сотрудник 7"},
		{ID: "E08", Name: "Сотрудник 8"},
	}
}

// augustTails mirrors a July ending where E04 and E08 split their last night
// across the month boundary.
func augustTails() map[string][]engine.Code {
	return map[string][]engine.Code{
		"E01": {engine.CodeOFF, engine.CodeDB, engine.CodeOFF, engine.CodeOFF},
		"E02": {engine.CodeOFF, engine.CodeOFF, engine.CodeOFF, engine.CodeDA},
		"E03": {engine.CodeDA, engine.CodeOFF, engine.CodeNA, engine.CodeOFF},
		"E04": {engine.CodeDB, engine.CodeOFF, engine.CodeOFF, engine.CodeN4A},
		"E05": {engine.CodeOFF, engine.CodeDA, engine.CodeOFF, engine.CodeOFF},
		"E06": {engine.CodeOFF, engine.CodeOFF, engine.CodeOFF, engine.CodeDB},
		"E07": {engine.CodeDA, engine.CodeOFF, engine.CodeNB, engine.CodeOFF},
		"E08": {engine.CodeDA, engine.CodeOFF, engine.CodeOFF, engine.CodeN4B},
	}
}

func augustCarryIn() []engine.Assignment {
	day1 := engine.DateOf(2025, time.August, 1)
	return []engine.Assignment{
		{EmployeeID: "E04", Date: day1, Code: engine.CodeN8A, Hours: 8, Source: engine.SourceTemplate},
		{EmployeeID: "E08", Date: day1, Code: engine.CodeN8B, Hours: 8, Source: engine.SourceTemplate},
	}
}

func generateAugust(t *testing.T) (*engine.Schedule, []engine.Assignment) {
	t.Helper()
	s, carryOut, err := engine.GenerateMonth(
		engine.MonthSpec{YearMonth: "2025-08", NormHours: 184},
		rosterOf8(), augustCarryIn(), augustTails(),
	)
	require.NoError(t, err)
	return s, carryOut
}

func TestGenerateMonth_CarryInN8(t *testing.T) {
	s, _ := generateAugust(t)

	a, ok := s.AssignmentOn("E04", engine.DateOf(2025, time.August, 1))
	require.True(t, ok)
	assert.Equal(t, engine.CodeN8A, a.Code)
	assert.Equal(t, 8, a.Hours)
	assert.Equal(t, engine.SourceTemplate, a.Source)

	assert.Equal(t, engine.CodeOFF, s.CodeOn("E04", engine.DateOf(2025, time.August, 2)))
	assert.Equal(t, engine.CodeOFF, s.CodeOn("E04", engine.DateOf(2025, time.August, 3)))
	assert.Equal(t, engine.CodeDA, s.CodeOn("E04", engine.DateOf(2025, time.August, 4)))

	// E08 is the mirror image in office B.
	assert.Equal(t, engine.CodeN8B, s.CodeOn("E08", engine.DateOf(2025, time.August, 1)))
	assert.Equal(t, engine.CodeOFF, s.CodeOn("E08", engine.DateOf(2025, time.August, 2)))
	assert.Equal(t, engine.CodeDB, s.CodeOn("E08", engine.DateOf(2025, time.August, 4)))
}

func TestGenerateMonth_EndOfMonthSplit(t *testing.T) {
	s, carryOut := generateAugust(t)
	last := engine.DateOf(2025, time.August, 31)

	var splitEmps []string
	for _, a := range s.At(last) {
		if a.Code.IsSplitTail() {
			splitEmps = append(splitEmps, a.EmployeeID)
			assert.Equal(t, 4, a.Hours)
		}
	}
	require.NotEmpty(t, splitEmps, "some employee must land a night on day 31")

	// Exactly one N8 carry per split-night employee, dated September 1st.
	perEmp := make(map[string]int)
	for _, c := range carryOut {
		assert.True(t, c.Code.IsSplitCarry())
		assert.Equal(t, engine.DateOf(2025, time.September, 1), c.Date)
		perEmp[c.EmployeeID]++
	}
	assert.ElementsMatch(t, splitEmps, keysOf(perEmp))
	for emp, n := range perEmp {
		assert.Equal(t, 1, n, "one carry for %s", emp)
	}

	// The carry keeps the office of the split tail.
	for _, c := range carryOut {
		tail, ok := s.AssignmentOn(c.EmployeeID, last)
		require.True(t, ok)
		assert.Equal(t, tail.Code.Office(), c.Code.Office())
	}
}

func TestGenerateMonth_CyclePatternAndOffices(t *testing.T) {
	s, _ := generateAugust(t)
	emps := rosterOf8()

	require.NoError(t, s.CheckInvariants(emps))
	assert.Empty(t, engine.ValidateBaseline("2025-08", emps, s))

	// Day offices alternate and every night shares the office of the
	// preceding day shift within the month.
	for _, e := range emps {
		var lastDayOffice engine.Office
		for _, d := range s.Days() {
			code := s.CodeOn(e.ID, d)
			switch {
			case code.IsDay():
				if lastDayOffice != engine.OfficeNone {
					assert.Equal(t, lastDayOffice.Opposite(), code.Office(),
						"%s day offices must alternate on %s", e.ID, d.Format("2006-01-02"))
				}
				lastDayOffice = code.Office()
			case code == engine.CodeNA || code == engine.CodeNB || code.IsSplitTail():
				if lastDayOffice != engine.OfficeNone {
					assert.Equal(t, lastDayOffice, code.Office(),
						"%s night must match its cycle's day office on %s", e.ID, d.Format("2006-01-02"))
				}
			}
		}
	}
}

func TestGenerateMonth_Deterministic(t *testing.T) {
	s1, c1 := generateAugust(t)
	s2, c2 := generateAugust(t)

	assert.Equal(t, c1, c2)
	for _, d := range s1.Days() {
		assert.Equal(t, s1.At(d), s2.At(d), "day %s", d.Format("2006-01-02"))
	}
}

func TestGenerateMonth_CarryChainsIntoNextMonth(t *testing.T) {
	s, carryOut := generateAugust(t)
	emps := rosterOf8()

	tail := engine.ExtractTail(s, emps)
	next, _, err := engine.GenerateMonth(
		engine.MonthSpec{YearMonth: "2025-09", NormHours: 176},
		emps, carryOut, tail,
	)
	require.NoError(t, err)
	require.NoError(t, next.CheckInvariants(emps))

	day1 := engine.DateOf(2025, time.September, 1)
	for _, c := range carryOut {
		got := next.CodeOn(c.EmployeeID, day1)
		assert.Equal(t, c.Code, got, "carry for %s must survive on day 1", c.EmployeeID)
		// The day after the carried night is the first of the two off days.
		assert.Equal(t, engine.CodeOFF, next.CodeOn(c.EmployeeID, engine.DateOf(2025, time.September, 2)))
	}
	assert.Empty(t, engine.ValidateBaseline("2025-09", emps, next))
}

func TestGenerateMonth_BootstrapSplitsOffices(t *testing.T) {
	// No tails at all: phases fall back to the id hash, and inside every
	// phase bucket offices alternate by roster order.
	emps := rosterOf8()
	s, _, err := engine.GenerateMonth(engine.MonthSpec{YearMonth: "2025-08"}, emps, nil, nil)
	require.NoError(t, err)

	buckets := make(map[int][]string)
	for _, e := range emps {
		buckets[engine.StablePhaseSeed(e.ID)] = append(buckets[engine.StablePhaseSeed(e.ID)], e.ID)
	}
	for seed, ids := range buckets {
		for i, id := range ids {
			var firstDay engine.Code
			for _, d := range s.Days() {
				if c := s.CodeOn(id, d); c.IsDay() {
					firstDay = c
					break
				}
			}
			require.NotEqual(t, engine.Code(""), firstDay)
			want := engine.OfficeA
			if i%2 == 1 {
				want = engine.OfficeB
			}
			assert.Equal(t, want, firstDay.Office(), "bucket %d member %d (%s)", seed, i, id)
		}
	}
}

func TestGenerateMonth_SharedAnchorStillSplitsOffices(t *testing.T) {
	// Every employee comes out of a fully idle tail: all share phase 0, and
	// the bootstrap parity must still split the workforce between offices.
	emps := rosterOf8()
	tails := make(map[string][]engine.Code, len(emps))
	for _, e := range emps {
		tails[e.ID] = []engine.Code{engine.CodeOFF, engine.CodeOFF, engine.CodeOFF, engine.CodeOFF}
	}
	s, _, err := engine.GenerateMonth(engine.MonthSpec{YearMonth: "2025-08"}, emps, nil, tails)
	require.NoError(t, err)

	day1 := engine.DateOf(2025, time.August, 1)
	var da, db int
	for _, a := range s.At(day1) {
		switch a.Code {
		case engine.CodeDA:
			da++
		case engine.CodeDB:
			db++
		}
	}
	assert.Equal(t, 4, da)
	assert.Equal(t, 4, db)
}

func TestGenerateMonth_FebruaryBoundary(t *testing.T) {
	emps := []engine.Employee{{ID: "E01", Name: "Сотрудник 1"}}
	tails := map[string][]engine.Code{
		"E01": {engine.CodeOFF, engine.CodeOFF, engine.CodeDA, engine.CodeNA},
	}
	s, carryOut, err := engine.GenerateMonth(engine.MonthSpec{YearMonth: "2025-02"}, emps, nil, tails)
	require.NoError(t, err)

	last := engine.DateOf(2025, time.February, 28)
	assert.Equal(t, last, s.LastDay())
	lastCode := s.CodeOn("E01", last)
	require.True(t, lastCode.IsSplitTail(), "cycle places a night on Feb 28, got %s", lastCode)

	require.Len(t, carryOut, 1)
	assert.Equal(t, engine.DateOf(2025, time.March, 1), carryOut[0].Date)
	assert.Equal(t, lastCode.Office(), carryOut[0].Code.Office())
}

func TestGenerateMonth_InputValidation(t *testing.T) {
	emps := []engine.Employee{{ID: "E01"}, {ID: "E01"}}
	_, _, err := engine.GenerateMonth(engine.MonthSpec{YearMonth: "2025-08"}, emps, nil, nil)
	var cfgErr *engine.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)

	_, _, err = engine.GenerateMonth(engine.MonthSpec{YearMonth: "bogus"}, rosterOf8(), nil, nil)
	require.ErrorAs(t, err, &cfgErr)
}

func TestExtractTail(t *testing.T) {
	s, _ := generateAugust(t)
	tail := engine.ExtractTail(s, rosterOf8())

	require.Len(t, tail["E01"], 4)
	for _, e := range rosterOf8() {
		codes := tail[e.ID]
		require.Len(t, codes, 4)
		for i, d := range s.Days()[len(s.Days())-4:] {
			assert.Equal(t, s.CodeOn(e.ID, d), codes[i])
		}
	}
}

func keysOf(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
