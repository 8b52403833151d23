package engine

import (
	"fmt"
	"math"
)

// PairBreakingPolicy configures the balancer. Zero values for the numeric
// knobs mean "use the default" (threshold 8, window 6, max ops 4).
type PairBreakingPolicy struct {
	Enabled          bool
	OverlapThreshold int
	WindowDays       int
	MaxOps           int
	HoursBudget      int
	AntiAlign        bool
	PostDesync       bool
	FixedPairs       [][2]string
	InternIDs        []string
	PrevPairs        []PairOverlap
	NormByEmployee   map[string]int
	NormHours        int
}

func (p PairBreakingPolicy) withDefaults() PairBreakingPolicy {
	if p.OverlapThreshold == 0 {
		p.OverlapThreshold = 8
	}
	if p.WindowDays == 0 {
		p.WindowDays = 6
	}
	if p.MaxOps == 0 {
		p.MaxOps = 4
	}
	return p
}

func (p PairBreakingPolicy) normFor(empID string) int {
	if n, ok := p.NormByEmployee[empID]; ok {
		return n
	}
	return p.NormHours
}

// BalanceResult carries the balanced schedule and the ordered operator log.
type BalanceResult struct {
	Schedule        *Schedule
	OpsLog          []string
	PairScoreBefore int
	PairScoreAfter  int
	OpsAccepted     int
}

// ApplyPairBreaking runs the greedy pair-breaking loop over the previous
// month's exclusive pairs. Disabled policies return the schedule unchanged.
//
// For each target pair the four operators are tried in a fixed order, each
// gated by the multi-criteria acceptance predicate; the first accepted
// candidate is committed and the pair's mutated member is frozen for the rest
// of the pass. A post-pass desynchronises the offices of every target pair
// day by day. All ordering is deterministic.
func ApplyPairBreaking(s *Schedule, employees []Employee, pol PairBreakingPolicy) BalanceResult {
	if !pol.Enabled {
		return BalanceResult{Schedule: s}
	}
	pol = pol.withDefaults()

	intern := make(map[string]bool, len(pol.InternIDs))
	for _, id := range pol.InternIDs {
		intern[id] = true
	}

	var targets []PairOverlap
	if len(pol.FixedPairs) > 0 {
		for _, fp := range pol.FixedPairs {
			targets = append(targets, PairOverlap{A: fp[0], B: fp[1]})
		}
	} else {
		targets = ExclusiveMatchingByDay(pol.PrevPairs, pol.OverlapThreshold)
	}
	kept := targets[:0]
	for _, t := range targets {
		if intern[t.A] || intern[t.B] {
			continue
		}
		kept = append(kept, t)
	}
	targets = kept

	res := BalanceResult{Schedule: s}
	res.PairScoreBefore = pairScore(s, targets, s.MonthWindow())

	cur := s
	moved := make(map[string]bool)
	predCum := 0

	for _, pair := range targets {
		if res.OpsAccepted >= pol.MaxOps {
			break
		}
		if moved[pair.A] || moved[pair.B] {
			continue
		}

		baseWin := windowFromStart(cur, pol.WindowDays)
		minusEmp, plusEmp := chooseRoles(cur, pair.A, pair.B, baseWin, pol)
		win := baseWin
		if c := cur.CodeOn(minusEmp, cur.FirstDay()); c.IsSplitCarry() {
			win.From = cur.FirstDay().AddDate(0, 0, 1)
		}

		attempts := []struct {
			name    string
			mutated string
			budget  bool
			strict  bool // require strict pair-hours decrease
			run     func() (*Schedule, OpResult)
		}{
			{"-1", minusEmp, true, true, func() (*Schedule, OpResult) {
				return PhaseShiftMinusOne(cur, minusEmp, win, plusEmp, pol.AntiAlign)
			}},
			{"+1", plusEmp, true, false, func() (*Schedule, OpResult) {
				return PhaseShiftPlusOne(cur, plusEmp, win, minusEmp, pol.AntiAlign)
			}},
			{"flipD", minusEmp, false, false, func() (*Schedule, OpResult) {
				return FlipABOnNextToken(cur, minusEmp, win, TokenDay, plusEmp, pol.AntiAlign)
			}},
			{"flipN", plusEmp, false, false, func() (*Schedule, OpResult) {
				return FlipABOnNextToken(cur, plusEmp, win, TokenNight, minusEmp, pol.AntiAlign)
			}},
		}

		for _, at := range attempts {
			trial, opRes := at.run()
			if !opRes.OK {
				res.OpsLog = append(res.OpsLog, fmt.Sprintf("%s: op=%s window=[%s..%s] → SKIP(%s)",
					at.mutated, at.name, win.From.Format("2006-01-02"), win.To.Format("2006-01-02"), opRes.Reason))
				continue
			}

			dPair := pairScore(trial, targets, win) - pairScore(cur, targets, win)
			dSolo := SoloDaysInWindow(trial, at.mutated, win) - SoloDaysInWindow(cur, at.mutated, win)
			dSameWin := SameOfficeHours(trial, pair.A, pair.B, win) - SameOfficeHours(cur, pair.A, pair.B, win)
			dSameMonth := SameOfficeHours(trial, pair.A, pair.B, trial.MonthWindow()) -
				SameOfficeHours(cur, pair.A, pair.B, cur.MonthWindow())

			budgetOK := true
			if at.budget {
				budgetOK = predCum+opRes.HoursDelta >= -pol.HoursBudget
			}
			criteriaOK := dSolo <= 0 && dSameWin <= 0 && dSameMonth <= 0
			if at.strict {
				criteriaOK = criteriaOK && dPair < 0
			}

			verdict := "ACCEPT"
			switch {
			case !budgetOK:
				verdict = "REJECT(budget)"
			case !criteriaOK:
				verdict = "REJECT"
			}
			res.OpsLog = append(res.OpsLog, fmt.Sprintf(
				"%s: op=%s window=[%s..%s] Δpair_excl=%d Δsolo=%d Δsame_office=%d Δhours_pred=%d Σpred=%d → %s",
				at.mutated, at.name,
				win.From.Format("2006-01-02"), win.To.Format("2006-01-02"),
				dPair, dSolo, dSameWin, opRes.HoursDelta, predCum+opRes.HoursDelta, verdict))

			if budgetOK && criteriaOK {
				cur = trial
				moved[at.mutated] = true
				res.OpsAccepted++
				predCum += opRes.HoursDelta
				break
			}
		}
	}

	if pol.PostDesync {
		for _, pair := range targets {
			before := SameOfficeHours(cur, pair.A, pair.B, cur.MonthWindow())
			trial, flips, _ := DesyncPairMonth(cur, pair.A, pair.B)
			if flips == 0 {
				continue
			}
			after := SameOfficeHours(trial, pair.A, pair.B, trial.MonthWindow())
			verdict := "ACCEPT"
			if after > before {
				verdict = "REJECT"
			} else {
				cur = trial
			}
			res.OpsLog = append(res.OpsLog, fmt.Sprintf(
				"%s~%s: op=desync flips=%d same_office=%d→%d → %s",
				pair.A, pair.B, flips, before, after, verdict))
		}
	}

	res.Schedule = cur
	res.PairScoreAfter = pairScore(cur, targets, cur.MonthWindow())
	return res
}

// pairScore totals the pair hours of the target pairs inside a window: the
// balancer's primary objective.
func pairScore(s *Schedule, targets []PairOverlap, win Window) int {
	total := 0
	for _, t := range targets {
		dh, nh := PairHoursInWindow(s, t.A, t.B, win)
		total += dh + nh
	}
	return total
}

func windowFromStart(s *Schedule, days int) Window {
	first := s.FirstDay()
	to := first.AddDate(0, 0, days-1)
	if to.After(s.LastDay()) {
		to = s.LastDay()
	}
	return Window{From: first, To: to}
}

// chooseRoles picks which pair member takes the minus-one role. The member
// whose predicted minus-one hours delta is largest (the least costly skip)
// shifts down; ties go to the member with the smaller hours deficit against
// the norm. Interns never take the minus role.
func chooseRoles(s *Schedule, a, b string, win Window, pol PairBreakingPolicy) (minusEmp, plusEmp string) {
	deltaA, okA := predictMinusOneDelta(s, a, win)
	deltaB, okB := predictMinusOneDelta(s, b, win)

	minusEmp, plusEmp = a, b
	switch {
	case okA && !okB:
		// keep a as minus
	case okB && !okA:
		minusEmp, plusEmp = b, a
	case deltaA > deltaB:
		// keep a
	case deltaB > deltaA:
		minusEmp, plusEmp = b, a
	default:
		deficitA := pol.normFor(a) - s.HoursFor(a)
		deficitB := pol.normFor(b) - s.HoursFor(b)
		if deficitB < deficitA {
			minusEmp, plusEmp = b, a
		}
	}

	for _, id := range pol.InternIDs {
		if id == minusEmp {
			minusEmp, plusEmp = plusEmp, minusEmp
			break
		}
	}
	return minusEmp, plusEmp
}

// predictMinusOneDelta dry-runs the skip operator to price the minus role.
// Office alignment does not affect hours, so the dry run skips the partner.
func predictMinusOneDelta(s *Schedule, empID string, win Window) (int, bool) {
	_, res := PhaseShiftMinusOne(s, empID, win, "", false)
	if !res.OK {
		return math.MinInt32, false
	}
	return res.HoursDelta, true
}
