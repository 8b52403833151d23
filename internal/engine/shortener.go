package engine

import (
	"fmt"
	"sort"
	"time"
)

// WorkCalendar answers whether a date may carry a shortened day shift.
// A nil calendar falls back to plain weekends.
type WorkCalendar interface {
	AllowsShortening(d time.Time) bool
}

// ShorteningPolicy holds the overtime caps.
type ShorteningPolicy struct {
	MonthlyAllowance int // added to the monthly norm to get the monthly cap
	YearlyCap        int // maximum accepted year-to-date overtime; 0 disables
}

// ShortenOp records one DA/DB -> M8/E8 recolouring.
type ShortenOp struct {
	Date       time.Time
	EmployeeID string
	FromCode   Code
	ToCode     Code
	HoursDelta int
}

// EmployeeHoursInfo summarises one employee after shortening.
type EmployeeHoursInfo struct {
	Hours         int
	OvertimeMonth int
	YearlyLeft    *int // nil when no yearly cap is configured
}

// ShortenResult reports everything the shortener did.
type ShortenResult struct {
	Month       string
	NormHours   int
	MonthlyCap  int
	YearlyCap   int
	Operations  []ShortenOp
	Warnings    []string
	PerEmployee map[string]EmployeeHoursInfo
}

// EnforceHoursCaps recolours 12h day shifts to 8h short variants until every
// employee fits the monthly and yearly overtime caps, mutating s in place.
//
// Candidate days are taken weekend/holiday first, then by ascending date. On
// an eligible day the evening short is preferred, on a working weekday the
// morning short; either way the replacement must keep at least one morning
// and one evening day worker, and the employee must not be the only day
// worker that date. Re-running on a compliant schedule is a no-op.
func EnforceHoursCaps(employees []Employee, s *Schedule, normMonth int, monthTag string, cal WorkCalendar, pol ShorteningPolicy) ShortenResult {
	monthlyCap := 0
	if normMonth > 0 {
		monthlyCap = normMonth + pol.MonthlyAllowance
	}
	res := ShortenResult{
		Month:       monthTag,
		NormHours:   normMonth,
		MonthlyCap:  monthlyCap,
		YearlyCap:   pol.YearlyCap,
		PerEmployee: make(map[string]EmployeeHoursInfo, len(employees)),
	}

	hours := s.HoursByEmployee()
	if normMonth <= 0 {
		for _, e := range employees {
			res.PerEmployee[e.ID] = EmployeeHoursInfo{Hours: hours[e.ID]}
		}
		return res
	}

	eligible := func(d time.Time) bool {
		if cal != nil {
			return cal.AllowsShortening(d)
		}
		wd := d.Weekday()
		return wd == time.Saturday || wd == time.Sunday
	}
	yearlyOK := func(e Employee, total int) bool {
		if pol.YearlyCap == 0 {
			return true
		}
		overtime := total - normMonth
		if overtime < 0 {
			overtime = 0
		}
		return e.YTDOvertime+overtime <= pol.YearlyCap
	}
	withinCaps := func(e Employee) bool {
		return hours[e.ID] <= monthlyCap && yearlyOK(e, hours[e.ID])
	}

	coverage := buildCoverage(s)

	for _, e := range employees {
		if withinCaps(e) {
			continue
		}

		var candidates []time.Time
		for _, d := range s.Days() {
			if c := s.CodeOn(e.ID, d); c == CodeDA || c == CodeDB {
				candidates = append(candidates, d)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			ei, ej := eligible(candidates[i]), eligible(candidates[j])
			if ei != ej {
				return ei
			}
			return candidates[i].Before(candidates[j])
		})

		for _, d := range candidates {
			if withinCaps(e) {
				break
			}
			from := s.CodeOn(e.ID, d)
			if from != CodeDA && from != CodeDB {
				continue
			}
			if otherDayWorkers(s, d, e.ID) < 1 {
				continue
			}
			office := from.Office()
			options := []Code{MorningShortCode(office), EveningShortCode(office)}
			if eligible(d) {
				options = []Code{EveningShortCode(office), MorningShortCode(office)}
			}

			cov := coverage[d]
			baseMorning := cov.morning - 1 // DA/DB contributes one of each
			baseEvening := cov.evening - 1
			for _, to := range options {
				m, ev := coverageContribution(to)
				if baseMorning+m < 1 || baseEvening+ev < 1 {
					continue
				}
				s.SetCode(e.ID, d, to, SourceShorten)
				coverage[d] = dayCoverage{morning: baseMorning + m, evening: baseEvening + ev}
				hours[e.ID] -= from.Hours() - to.Hours()
				res.Operations = append(res.Operations, ShortenOp{
					Date:       d,
					EmployeeID: e.ID,
					FromCode:   from,
					ToCode:     to,
					HoursDelta: to.Hours() - from.Hours(),
				})
				break
			}
		}
	}

	for _, e := range employees {
		total := hours[e.ID]
		overtime := total - normMonth
		if overtime < 0 {
			overtime = 0
		}
		info := EmployeeHoursInfo{Hours: total, OvertimeMonth: overtime}
		if pol.YearlyCap != 0 {
			left := pol.YearlyCap - (e.YTDOvertime + overtime)
			info.YearlyLeft = &left
		}
		res.PerEmployee[e.ID] = info

		exceedsMonth := total > monthlyCap
		exceedsYear := info.YearlyLeft != nil && *info.YearlyLeft < 0
		switch {
		case exceedsYear && !exceedsMonth:
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("%s — %s: превышен годовой лимит на %dч", e.ID, e.Name, -*info.YearlyLeft))
		case exceedsMonth:
			leftover := "N/A"
			if info.YearlyLeft != nil {
				leftover = fmt.Sprintf("%d", *info.YearlyLeft)
			}
			res.Warnings = append(res.Warnings,
				fmt.Sprintf("%s — %s: перелимит %dч; остаток по году %sч", e.ID, e.Name, total-normMonth, leftover))
		}
	}
	return res
}

type dayCoverage struct {
	morning, evening int
}

func buildCoverage(s *Schedule) map[time.Time]dayCoverage {
	out := make(map[time.Time]dayCoverage, len(s.Days()))
	for _, d := range s.Days() {
		var cov dayCoverage
		for _, a := range s.At(d) {
			m, ev := coverageContribution(a.Code)
			cov.morning += m
			cov.evening += ev
		}
		out[d] = cov
	}
	return out
}

// coverageContribution maps a code onto its morning/evening presence:
// a full day shift covers both halves, shorts cover one.
func coverageContribution(c Code) (morning, evening int) {
	switch c {
	case CodeDA, CodeDB:
		return 1, 1
	case CodeM8A, CodeM8B:
		return 1, 0
	case CodeE8A, CodeE8B:
		return 0, 1
	default:
		return 0, 0
	}
}

func otherDayWorkers(s *Schedule, d time.Time, empID string) int {
	n := 0
	for _, a := range s.At(d) {
		if a.EmployeeID != empID && a.Code.IsDay() {
			n++
		}
	}
	return n
}
