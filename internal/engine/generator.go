package engine

import "fmt"

// phases of the four-day cycle
const (
	phaseDay  = 0
	phaseNite = 1
	phaseOff1 = 2
	phaseOff2 = 3
)

// GenerateMonth builds the base schedule for a month. carryIn holds
// assignments pre-placed on day 1 (the N8* halves of nights started on the
// last day of the previous month); prevTail maps employee ids to the codes of
// their last up-to-4 days of the previous month, oldest first.
//
// The returned carry-out lists the N8* assignments owed to day 1 of the next
// month, one per employee whose cycle put a night on the last day.
func GenerateMonth(spec MonthSpec, employees []Employee, carryIn []Assignment, prevTail map[string][]Code) (*Schedule, []Assignment, error) {
	year, month, err := ParseYearMonth(spec.YearMonth)
	if err != nil {
		return nil, nil, err
	}
	seen := make(map[string]bool, len(employees))
	for _, e := range employees {
		if e.ID == "" {
			return nil, nil, &ConfigurationError{Msg: "employee with empty id"}
		}
		if seen[e.ID] {
			return nil, nil, &ConfigurationError{Msg: fmt.Sprintf("duplicate employee id %s", e.ID)}
		}
		seen[e.ID] = true
	}

	days := MonthDays(year, month)
	s := NewSchedule(days)
	firstDay := days[0]
	lastDay := days[len(days)-1]

	// Anchor phase and day-office parity per employee from the tail,
	// falling back to the stable seed and index parity.
	phase := make(map[string]int, len(employees))
	dayOffice := make(map[string]Office, len(employees))
	for i, e := range employees {
		tail := prevTail[e.ID]
		bootstrapOffice := OfficeA
		if i%2 == 1 {
			bootstrapOffice = OfficeB
		}
		p, off := inferAnchor(tail, StablePhaseSeed(e.ID), bootstrapOffice)
		phase[e.ID] = p
		dayOffice[e.ID] = off
	}

	// Employees without a tail share phase buckets; alternate A/B inside each
	// bucket by stable roster order so the workforce splits evenly.
	for p := 0; p < 4; p++ {
		free := 0
		for _, e := range employees {
			if phase[e.ID] != p || len(prevTail[e.ID]) > 0 {
				continue
			}
			if free%2 == 0 {
				dayOffice[e.ID] = OfficeA
			} else {
				dayOffice[e.ID] = OfficeB
			}
			free++
		}
	}

	// Pre-place carry-in. An N8* on day 1 consumes that day as the night
	// phase: the counter then advances into O, O, D.
	for _, a := range carryIn {
		if !seen[a.EmployeeID] {
			continue
		}
		if _, ok := s.cells[a.Date]; !ok {
			continue
		}
		if _, err := ParseCode(string(a.Code)); err != nil {
			return nil, nil, err
		}
		s.RemoveFor(a.EmployeeID, a.Date)
		s.Add(Assignment{
			EmployeeID: a.EmployeeID,
			Date:       a.Date,
			Code:       a.Code,
			Hours:      a.Code.Hours(),
			Source:     SourceTemplate,
		})
		if a.Date.Equal(firstDay) && a.Code.IsSplitCarry() {
			phase[a.EmployeeID] = phaseNite
		}
	}

	var carryOut []Assignment
	for _, d := range days {
		for _, e := range employees {
			ph := phase[e.ID]
			if _, ok := s.AssignmentOn(e.ID, d); ok {
				phase[e.ID] = (ph + 1) % 4
				continue
			}
			switch ph {
			case phaseDay:
				code := DayCode(dayOffice[e.ID])
				s.Add(Assignment{EmployeeID: e.ID, Date: d, Code: code, Hours: code.Hours(), Source: SourceTemplate})
				dayOffice[e.ID] = dayOffice[e.ID].Opposite()
			case phaseNite:
				// The cycle's night shares the office of its D position. The
				// parity already flipped forward when that D was emitted (or
				// when the anchor consumed the tail's D), so flip it back.
				office := dayOffice[e.ID].Opposite()
				if d.Equal(lastDay) {
					code := SplitTailCode(office)
					s.Add(Assignment{EmployeeID: e.ID, Date: d, Code: code, Hours: code.Hours(), Source: SourceTemplate})
					carry := SplitCarryCode(office)
					carryOut = append(carryOut, Assignment{
						EmployeeID: e.ID,
						Date:       lastDay.AddDate(0, 0, 1),
						Code:       carry,
						Hours:      carry.Hours(),
						Source:     SourceTemplate,
					})
				} else {
					code := NightCode(office)
					s.Add(Assignment{EmployeeID: e.ID, Date: d, Code: code, Hours: code.Hours(), Source: SourceTemplate})
				}
			default:
				s.Add(Assignment{EmployeeID: e.ID, Date: d, Code: CodeOFF, Hours: 0, Source: SourceTemplate})
			}
			phase[e.ID] = (ph + 1) % 4
		}
	}

	if err := s.CheckInvariants(employees); err != nil {
		return nil, nil, err
	}
	return s, carryOut, nil
}

// inferAnchor derives the phase on day 1 and the office of the next D from a
// previous-month tail (oldest first, up to 4 codes).
//
//   - tail ends in a day code: day 1 is the night of that cycle
//   - tail ends in a night code (N4 included): day 1 is the first off day
//   - tail ends in off and the day before was a night: day 1 is the second off
//   - otherwise: day 1 starts a new cycle with a day shift
//
// The next day office is the opposite of the last day shift seen in the tail;
// with no day shift in the tail the bootstrap parity applies.
func inferAnchor(tail []Code, seedPhase int, bootstrapOffice Office) (int, Office) {
	p := seedPhase % 4
	if len(tail) > 0 {
		last := tail[len(tail)-1]
		switch {
		case last.IsDay():
			p = phaseNite
		case last.IsNight():
			p = phaseOff1
		default:
			prev := CodeOFF
			if len(tail) >= 2 {
				prev = tail[len(tail)-2]
			}
			if prev.IsNight() {
				p = phaseOff2
			} else {
				p = phaseDay
			}
		}
	}

	office := bootstrapOffice
	for i := len(tail) - 1; i >= 0; i-- {
		if tail[i].IsDay() {
			if off := tail[i].Office(); off != OfficeNone {
				office = off.Opposite()
			}
			break
		}
	}
	return p, office
}

// ExtractTail collects the last up-to-4 codes of every employee, oldest
// first, for chaining into the next month's generation.
func ExtractTail(s *Schedule, employees []Employee) map[string][]Code {
	days := s.Days()
	if len(days) > 4 {
		days = days[len(days)-4:]
	}
	out := make(map[string][]Code, len(employees))
	for _, e := range employees {
		codes := make([]Code, 0, len(days))
		for _, d := range days {
			if a, ok := s.AssignmentOn(e.ID, d); ok {
				codes = append(codes, a.Code)
			}
		}
		out[e.ID] = codes
	}
	return out
}

// CarryOutFromSchedule recomputes the next month's carry-in from the last
// day's N4* cells. Operators may move the split night to another employee, so
// the carry-out queued during generation is discarded and rebuilt after all
// transformations.
func CarryOutFromSchedule(s *Schedule) []Assignment {
	last := s.LastDay()
	next := last.AddDate(0, 0, 1)
	var out []Assignment
	for _, a := range s.At(last) {
		if !a.Code.IsSplitTail() {
			continue
		}
		carry := SplitCarryCode(a.Code.Office())
		out = append(out, Assignment{
			EmployeeID: a.EmployeeID,
			Date:       next,
			Code:       carry,
			Hours:      carry.Hours(),
			Source:     SourceAutofix,
		})
	}
	return out
}
