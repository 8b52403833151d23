package engine

import (
	"fmt"
	"time"
)

// OpResult reports the outcome of a shift operator. A false OK means the
// operator found no applicable pattern; Reason is a human-readable note
// either way.
type OpResult struct {
	HoursDelta int
	OK         bool
	Reason     string
}

// PhaseShiftMinusOne removes the night of the employee's first full D,N,O
// fragment inside the window and re-stitches the rest of the month along the
// stream O,O,D,N,... The skipped night guarantees a double off day without
// ever producing a triple.
//
// Day 1 N8 carries and the last-day N4 are never the removed night. The
// returned delta covers the whole tail re-emission, not just the removed
// shift.
func PhaseShiftMinusOne(s *Schedule, empID string, win Window, partnerID string, antiAlign bool) (*Schedule, OpResult) {
	days := s.Days()
	total := len(days)
	hoursBefore := s.HoursFor(empID)

	for idx, d := range days {
		if !win.Contains(d) || idx == 0 || idx >= total-1 {
			continue
		}
		cur := s.CodeOn(empID, d)
		if d.Day() == 1 && cur.IsSplitCarry() {
			continue
		}
		if d.Equal(days[total-1]) && cur.IsSplitTail() {
			continue
		}
		if s.TokenOn(empID, days[idx-1]) != TokenDay ||
			s.TokenOn(empID, d) != TokenNight ||
			s.TokenOn(empID, days[idx+1]) != TokenOff {
			continue
		}
		if cur != CodeNA && cur != CodeNB {
			return s, OpResult{Reason: "phase_shift_-1: target is not N"}
		}

		next := s.Clone()
		next.SetCode(empID, d, CodeOFF, SourcePhaseShift)
		Stitch(next, empID, d, minusOneStream(total-idx), partnerID, antiAlign)
		return next, OpResult{
			HoursDelta: next.HoursFor(empID) - hoursBefore,
			OK:         true,
			Reason:     fmt.Sprintf("phase_shift_-1[%s]", d.Format("2006-01-02")),
		}
	}
	return s, OpResult{Reason: "phase_shift_-1: no D,N,O pattern in window"}
}

// PhaseShiftPlusOne forces the working day of the employee's first O,O,work
// fragment inside the window to OFF and re-stitches the tail along
// O,O,O,D,N,... counted from the first O of the fragment. Vacation days and
// the day 1 N8 carry are never overwritten.
func PhaseShiftPlusOne(s *Schedule, empID string, win Window, partnerID string, antiAlign bool) (*Schedule, OpResult) {
	days := s.Days()
	var windowed []time.Time
	for _, d := range days {
		if win.Contains(d) {
			windowed = append(windowed, d)
		}
	}
	hoursBefore := s.HoursFor(empID)

	for i := 0; i+2 < len(windowed); i++ {
		d0, d1, d2 := windowed[i], windowed[i+1], windowed[i+2]
		c0, c1, c2 := s.CodeOn(empID, d0), s.CodeOn(empID, d1), s.CodeOn(empID, d2)
		if c0.Token(d0.Day()) != TokenOff || c1.Token(d1.Day()) != TokenOff {
			continue
		}
		t2 := c2.Token(d2.Day())
		if t2 != TokenDay && t2 != TokenNight {
			continue
		}
		if c0 == CodeVAC8 || c0 == CodeVAC0 || c1 == CodeVAC8 || c1 == CodeVAC0 {
			continue
		}
		if d2.Day() == 1 && c2.IsSplitCarry() {
			continue
		}

		next := s.Clone()
		next.SetCode(empID, d2, CodeOFF, SourcePhaseShift)
		idx2 := 0
		for j, d := range days {
			if d.Equal(d2) {
				idx2 = j
				break
			}
		}
		Stitch(next, empID, d2, plusOneStream(len(days)-idx2), partnerID, antiAlign)
		return next, OpResult{
			HoursDelta: next.HoursFor(empID) - hoursBefore,
			OK:         true,
			Reason:     fmt.Sprintf("phase_shift_+1[%s]", d2.Format("2006-01-02")),
		}
	}
	return s, OpResult{Reason: "phase_shift_+1: no place O,O,(work)"}
}

// minusOneStream is the token tape after a skipped night: the skipped day
// itself becomes the first of two off days.
func minusOneStream(n int) []Token {
	out := make([]Token, n)
	for i := range out {
		switch i % 4 {
		case 0, 1:
			out[i] = TokenOff
		case 2:
			out[i] = TokenDay
		default:
			out[i] = TokenNight
		}
	}
	return out
}

// plusOneStream is the token tape after an inserted off day: the replaced
// working day becomes a third O, then the cycle resumes.
func plusOneStream(n int) []Token {
	out := make([]Token, n)
	for i := range out {
		switch i % 4 {
		case 0, 3:
			out[i] = TokenOff
		case 1:
			out[i] = TokenDay
		default:
			out[i] = TokenNight
		}
	}
	return out
}

// FlipABOnNextToken finds the first day in the window whose token matches
// kind and re-stitches the tail with the employee's existing token sequence,
// primed for partner anti-alignment. The phase pattern is untouched; only the
// A/B subsequence swaps, so the hours delta is zero by construction.
func FlipABOnNextToken(s *Schedule, empID string, win Window, kind Token, partnerID string, antiAlign bool) (*Schedule, OpResult) {
	days := s.Days()
	var start time.Time
	startIdx := -1
	for i, d := range days {
		if !win.Contains(d) {
			continue
		}
		if s.TokenOn(empID, d) == kind {
			start = d
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return s, OpResult{Reason: fmt.Sprintf("flip_ab: no %s token in window", kind)}
	}

	tail := make([]Token, 0, len(days)-startIdx)
	for _, d := range days[startIdx:] {
		tail = append(tail, s.TokenOn(empID, d))
	}

	next := s.Clone()
	Stitch(next, empID, start, tail, partnerID, antiAlign)
	return next, OpResult{
		OK:     true,
		Reason: fmt.Sprintf("flip_ab[%s]@%s", kind, start.Format("2006-01-02")),
	}
}

// FlipABOnDay swaps the A/B office of one employee's code on a single day.
// The day 1 N8 carry is protected; N4 on the last day flips like any other
// working code.
func FlipABOnDay(s *Schedule, empID string, d time.Time) (*Schedule, bool, string) {
	before := s.CodeOn(empID, d)
	if d.Day() == 1 && before.IsSplitCarry() {
		return s, false, "flip_ab_on_day: protected code"
	}
	after := before.SwapOffice()
	if after == before {
		return s, false, "flip_ab_on_day: noop"
	}
	next := s.Clone()
	next.SetCode(empID, d, after, SourcePairDesync)
	return next, true, fmt.Sprintf("flip_ab_on_day[%s] %s->%s %s", empID, before, after, d.Format("2006-01-02"))
}

// DesyncPairMonth walks the whole month and flips a's office on every day
// where both pair members work the same phase in the same office. Hours are
// preserved; the day 1 N8 carry is skipped.
func DesyncPairMonth(s *Schedule, a, b string) (*Schedule, int, []string) {
	next := s.Clone()
	flips := 0
	var notes []string
	for _, d := range next.Days() {
		codeA := next.CodeOn(a, d)
		codeB := next.CodeOn(b, d)
		tokA := codeA.Token(d.Day())
		tokB := codeB.Token(d.Day())
		if tokA != tokB || tokA == TokenOff {
			continue
		}
		if codeA.Office() == OfficeNone || codeA.Office() != codeB.Office() {
			continue
		}
		if d.Day() == 1 && (codeA.IsSplitCarry() || codeB.IsSplitCarry()) {
			continue
		}
		flipped, ok, note := FlipABOnDay(next, a, d)
		if ok {
			next = flipped
			flips++
			notes = append(notes, note)
		}
	}
	return next, flips, notes
}
