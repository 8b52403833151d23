package engine

import "time"

// RotorState tracks the office alternation of one employee. Day and night
// offices rotate independently: each D position flips the day office, each N
// position flips the night office.
type RotorState struct {
	DayOffice   Office
	NightOffice Office
}

// NextDayCode advances the day rotor and returns the emitted code.
func (r *RotorState) NextDayCode() Code {
	if r.DayOffice == OfficeNone {
		r.DayOffice = OfficeA
	} else {
		r.DayOffice = r.DayOffice.Opposite()
	}
	return DayCode(r.DayOffice)
}

// NextNightCode advances the night rotor and returns the emitted code.
func (r *RotorState) NextNightCode() Code {
	if r.NightOffice == OfficeNone {
		r.NightOffice = OfficeA
	} else {
		r.NightOffice = r.NightOffice.Opposite()
	}
	return NightCode(r.NightOffice)
}

// InferState reconstructs the rotor state of an employee at start: the last
// day office and the last night office observed strictly before start. An N8
// carry on the first day of the month anchors the night office even when
// start is that first day.
func InferState(s *Schedule, empID string, start time.Time) RotorState {
	state := RotorState{}
	days := s.Days()
	if len(days) == 0 {
		return state
	}

	if days[0].Equal(start) {
		if first := s.CodeOn(empID, days[0]); first.IsSplitCarry() {
			state.NightOffice = first.Office()
		}
	}

	for i := len(days) - 1; i >= 0; i-- {
		if !days[i].Before(start) {
			continue
		}
		code := s.CodeOn(empID, days[i])
		if code.IsDay() && state.DayOffice == OfficeNone {
			state.DayOffice = code.Office()
		}
		if code.IsNight() && state.NightOffice == OfficeNone {
			state.NightOffice = code.Office()
		}
		if state.DayOffice != OfficeNone && state.NightOffice != OfficeNone {
			break
		}
	}
	return state
}

// Stitch re-emits the employee's tail from start following the token stream,
// mutating s in place. Protected cells survive verbatim: vacations, N8 on
// day 1, and N4 on the last day when the stream agrees it is a night.
//
// With antiAlign set and a partner given, the rotor is primed so that the
// first emitted D (and, independently, the first N) lands in the opposite
// office from the partner's shift on the same day. Without a partner the
// state is primed from the employee's own current codes so re-emission keeps
// the existing offices.
func Stitch(s *Schedule, empID string, start time.Time, tokens []Token, partnerID string, antiAlign bool) {
	days := s.Days()
	startIdx := -1
	for i, d := range days {
		if d.Equal(start) {
			startIdx = i
			break
		}
	}
	if startIdx < 0 {
		return
	}
	state := InferState(s, empID, start)

	if antiAlign && partnerID != "" {
		primedDay, primedNight := false, false
		for offset, tok := range tokens {
			if primedDay && primedNight {
				break
			}
			idx := startIdx + offset
			if idx >= len(days) {
				break
			}
			if tok != TokenDay && tok != TokenNight {
				continue
			}
			partnerCode := s.CodeOn(partnerID, days[idx])
			var kind Token
			switch {
			case partnerCode.IsDay():
				kind = TokenDay
			case partnerCode == CodeNA || partnerCode == CodeNB || partnerCode.IsSplitTail():
				kind = TokenNight
			default:
				continue
			}
			partnerOffice := partnerCode.Office()
			if partnerOffice == OfficeNone {
				continue
			}
			// Prime one step back so the next advance lands opposite the partner.
			pre := partnerOffice
			if kind == TokenDay && !primedDay {
				state.DayOffice = pre
				primedDay = true
			} else if kind == TokenNight && !primedNight {
				state.NightOffice = pre
				primedNight = true
			}
		}
	}

	primedDaySelf, primedNightSelf := false, false
	for offset, tok := range tokens {
		if primedDaySelf && primedNightSelf {
			break
		}
		idx := startIdx + offset
		if idx >= len(days) {
			break
		}
		if tok != TokenDay && tok != TokenNight {
			continue
		}
		current := s.CodeOn(empID, days[idx])
		if tok == TokenDay && !primedDaySelf && current.IsDay() {
			if off := current.Office(); off != OfficeNone && state.DayOffice == OfficeNone {
				state.DayOffice = off.Opposite()
				primedDaySelf = true
			}
		} else if tok == TokenNight && !primedNightSelf && current.IsNight() {
			if off := current.Office(); off != OfficeNone && state.NightOffice == OfficeNone {
				state.NightOffice = off.Opposite()
				primedNightSelf = true
			}
		}
	}

	lastIdx := len(days) - 1
	for offset, tok := range tokens {
		idx := startIdx + offset
		if idx >= len(days) {
			break
		}
		d := days[idx]
		current := s.CodeOn(empID, d)
		if current == CodeVAC8 || current == CodeVAC0 || current.IsSplitCarry() ||
			(current.IsSplitTail() && tok == TokenNight) {
			continue
		}
		switch tok {
		case TokenOff:
			s.SetCode(empID, d, CodeOFF, SourcePhaseShift)
		case TokenDay:
			s.SetCode(empID, d, state.NextDayCode(), SourcePhaseShift)
		case TokenNight:
			code := state.NextNightCode()
			if idx == lastIdx {
				code = SplitTailCode(code.Office())
			}
			s.SetCode(empID, d, code, SourcePhaseShift)
		}
	}
}
