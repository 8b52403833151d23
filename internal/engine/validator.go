package engine

import (
	"fmt"
	"strings"
)

// expectedToken maps a phase index onto its token in the D,N,O,O cycle.
func expectedToken(phase int) Token {
	switch ((phase % 4) + 4) % 4 {
	case phaseDay:
		return TokenDay
	case phaseNite:
		return TokenNight
	default:
		return TokenOff
	}
}

// baselineToken projects a code for the cycle check. Unlike the pair-metric
// projection, N8 counts as a night here regardless of the day: the validator
// reasons about the shift pattern, not about co-presence.
func baselineToken(c Code) Token {
	switch {
	case c.IsDay():
		return TokenDay
	case c.IsNight():
		return TokenNight
	default:
		return TokenOff
	}
}

// anchorPhase infers the phase an employee holds on day 1. An N8 carry pins
// it to the night phase. Otherwise the first non-vacation day's token
// back-calculates the anchor; a leading O is ambiguous between the two off
// phases, so both anchors are tried and the one with fewer mismatches wins.
func anchorPhase(s *Schedule, empID string) int {
	days := s.Days()
	if s.CodeOn(empID, days[0]).IsSplitCarry() {
		return phaseNite
	}
	for idx, d := range days {
		code := s.CodeOn(empID, d)
		if code == CodeVAC8 || code == CodeVAC0 {
			continue
		}
		switch baselineToken(code) {
		case TokenDay:
			return ((phaseDay-idx)%4 + 4) % 4
		case TokenNight:
			return ((phaseNite-idx)%4 + 4) % 4
		default:
			a1 := ((phaseOff1-idx)%4 + 4) % 4
			a2 := ((phaseOff2-idx)%4 + 4) % 4
			if mismatches(s, empID, a2) < mismatches(s, empID, a1) {
				return a2
			}
			return a1
		}
	}
	return phaseDay
}

func mismatches(s *Schedule, empID string, anchor int) int {
	n := 0
	for idx, d := range s.Days() {
		code := s.CodeOn(empID, d)
		if code == CodeVAC8 || code == CodeVAC0 {
			continue
		}
		if baselineToken(code) != expectedToken(anchor+idx) {
			n++
		}
	}
	return n
}

// ValidateBaseline checks every employee against the expected D,N,O,O cycle
// anchored at day 1 and reports each day where the actual token disagrees.
// Vacation days are ignored.
func ValidateBaseline(monthTag string, employees []Employee, s *Schedule) []string {
	var issues []string
	for _, e := range employees {
		anchor := anchorPhase(s, e.ID)
		for idx, d := range s.Days() {
			code := s.CodeOn(e.ID, d)
			if code == CodeVAC8 || code == CodeVAC0 {
				continue
			}
			exp := expectedToken(anchor + idx)
			act := baselineToken(code)
			if act != exp {
				issues = append(issues, fmt.Sprintf(
					"%s: сотрудник %s — нарушен цикл на дате %s (ожидалось %s, есть %s)",
					monthTag, e.ID, d.Format("2006-01-02"), exp, act))
			}
		}
	}
	return issues
}

// DayCounts is one row of the coverage smoke: per-office day and night
// headcounts with the split N4/N8 halves counted as nights.
type DayCounts struct {
	Date           string
	DayA, DayB     int
	NightA, NightB int
}

// CoverageSmoke summarises the first days of the month.
func CoverageSmoke(s *Schedule, firstDays int) []DayCounts {
	days := s.Days()
	if firstDays < len(days) {
		days = days[:firstDays]
	}
	out := make([]DayCounts, 0, len(days))
	for _, d := range days {
		row := DayCounts{Date: d.Format("2006-01-02")}
		for _, a := range s.At(d) {
			switch a.Code {
			case CodeDA:
				row.DayA++
			case CodeDB:
				row.DayB++
			case CodeNA, CodeN4A, CodeN8A:
				row.NightA++
			case CodeNB, CodeN4B, CodeN8B:
				row.NightB++
			}
		}
		out = append(out, row)
	}
	return out
}

// PhaseTrace renders expected-vs-actual token lines for the first days, one
// line per employee.
func PhaseTrace(employees []Employee, s *Schedule, firstDays int) []string {
	days := s.Days()
	if firstDays < len(days) {
		days = days[:firstDays]
	}
	out := make([]string, 0, len(employees))
	for _, e := range employees {
		anchor := anchorPhase(s, e.ID)
		exp := make([]string, 0, len(days))
		act := make([]string, 0, len(days))
		for idx, d := range days {
			exp = append(exp, string(expectedToken(anchor+idx)))
			act = append(act, string(baselineToken(s.CodeOn(e.ID, d))))
		}
		out = append(out, fmt.Sprintf("%s: exp=%s | act=%s", e.ID, strings.Join(exp, " "), strings.Join(act, " ")))
	}
	return out
}
