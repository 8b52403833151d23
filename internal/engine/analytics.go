package engine

import "sort"

// PairOverlap counts the days two employees spent in the same phase:
// Days where both held a D token, Nights where both held an N token.
type PairOverlap struct {
	A, B         string
	Days, Nights int
}

// PairHoursInfo measures an exclusive pair's co-working hours.
type PairHoursInfo struct {
	A, B       string
	DayHours   int
	NightHours int
	TotalHours int
}

// ComputePairs counts D- and N-overlap for every unordered employee pair,
// sorted by descending day overlap, then night overlap, then ids.
func ComputePairs(s *Schedule) []PairOverlap {
	ids := s.EmployeeIDs()
	idx := make(map[string]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}
	n := len(ids)
	overDay := make([][]int, n)
	overNight := make([][]int, n)
	for i := range overDay {
		overDay[i] = make([]int, n)
		overNight[i] = make([]int, n)
	}

	for _, d := range s.Days() {
		toks := make([]Token, n)
		for i := range toks {
			toks[i] = TokenOff
		}
		for _, a := range s.At(d) {
			toks[idx[a.EmployeeID]] = a.Code.Token(d.Day())
		}
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				switch {
				case toks[i] == TokenDay && toks[j] == TokenDay:
					overDay[i][j]++
				case toks[i] == TokenNight && toks[j] == TokenNight:
					overNight[i][j]++
				}
			}
		}
	}

	out := make([]PairOverlap, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, PairOverlap{A: ids[i], B: ids[j], Days: overDay[i][j], Nights: overNight[i][j]})
		}
	}
	sortPairs(out)
	return out
}

func sortPairs(pairs []PairOverlap) {
	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].Days != pairs[j].Days {
			return pairs[i].Days > pairs[j].Days
		}
		if pairs[i].Nights != pairs[j].Nights {
			return pairs[i].Nights > pairs[j].Nights
		}
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
}

// ExclusiveMatchingByDay greedily selects non-crossing pairs by descending
// day overlap. Pairs below the threshold are skipped; each employee appears
// in at most one selected pair.
func ExclusiveMatchingByDay(pairs []PairOverlap, thresholdDays int) []PairOverlap {
	cand := make([]PairOverlap, 0, len(pairs))
	for _, p := range pairs {
		if p.Days >= thresholdDays {
			cand = append(cand, p)
		}
	}
	sortPairs(cand)
	used := make(map[string]bool)
	var out []PairOverlap
	for _, p := range cand {
		if used[p.A] || used[p.B] {
			continue
		}
		used[p.A], used[p.B] = true, true
		out = append(out, p)
	}
	return out
}

// PairHoursInWindow sums min-hours of the two employees on days where their
// tokens agree and are both working, split into day and night buckets. N8 on
// day 1 projects to O and contributes nothing.
func PairHoursInWindow(s *Schedule, a, b string, win Window) (dayHours, nightHours int) {
	for _, d := range s.Days() {
		if !win.Contains(d) {
			continue
		}
		codeA := s.CodeOn(a, d)
		codeB := s.CodeOn(b, d)
		tokA := codeA.Token(d.Day())
		tokB := codeB.Token(d.Day())
		switch {
		case tokA == TokenDay && tokB == TokenDay:
			dayHours += minInt(codeA.Hours(), codeB.Hours())
		case tokA == TokenNight && tokB == TokenNight:
			nightHours += minInt(codeA.Hours(), codeB.Hours())
		}
	}
	return dayHours, nightHours
}

// PairHours sums pair hours over the whole month.
func PairHours(s *Schedule, a, b string) PairHoursInfo {
	dh, nh := PairHoursInWindow(s, a, b, s.MonthWindow())
	return PairHoursInfo{A: a, B: b, DayHours: dh, NightHours: nh, TotalHours: dh + nh}
}

// PairHoursExclusive evaluates the previous month's exclusive pairs against
// the current schedule, sorted by descending total, day, night hours.
func PairHoursExclusive(s *Schedule, prevPairs []PairOverlap, thresholdDays int) []PairHoursInfo {
	excl := ExclusiveMatchingByDay(prevPairs, thresholdDays)
	out := make([]PairHoursInfo, 0, len(excl))
	for _, p := range excl {
		out = append(out, PairHours(s, p.A, p.B))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalHours != out[j].TotalHours {
			return out[i].TotalHours > out[j].TotalHours
		}
		if out[i].DayHours != out[j].DayHours {
			return out[i].DayHours > out[j].DayHours
		}
		return out[i].NightHours > out[j].NightHours
	})
	return out
}

// SoloDays counts, per employee, the days on which that employee is the only
// one holding a day token.
func SoloDays(s *Schedule) map[string]int {
	out := make(map[string]int)
	for _, d := range s.Days() {
		var only string
		count := 0
		for _, a := range s.At(d) {
			if a.Code.IsDay() {
				count++
				only = a.EmployeeID
			}
		}
		if count == 1 {
			out[only]++
		}
	}
	return out
}

// SoloDaysInWindow counts one employee's solo days inside a window.
func SoloDaysInWindow(s *Schedule, empID string, win Window) int {
	total := 0
	for _, d := range s.Days() {
		if !win.Contains(d) {
			continue
		}
		count := 0
		mine := false
		for _, a := range s.At(d) {
			if a.Code.IsDay() {
				count++
				if a.EmployeeID == empID {
					mine = true
				}
			}
		}
		if count == 1 && mine {
			total++
		}
	}
	return total
}

// SameOfficeHours sums min-hours on days where both employees share a working
// token and the same office suffix. This is the tightest pair-breaking
// criterion.
func SameOfficeHours(s *Schedule, a, b string, win Window) int {
	total := 0
	for _, d := range s.Days() {
		if !win.Contains(d) {
			continue
		}
		codeA := s.CodeOn(a, d)
		codeB := s.CodeOn(b, d)
		tokA := codeA.Token(d.Day())
		tokB := codeB.Token(d.Day())
		if tokA != tokB || tokA == TokenOff {
			continue
		}
		if codeA.Office() == OfficeNone || codeA.Office() != codeB.Office() {
			continue
		}
		total += minInt(codeA.Hours(), codeB.Hours())
	}
	return total
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
