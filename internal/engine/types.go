package engine

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"sort"
	"time"
)

// Source records which stage produced or last touched an assignment.
type Source string

const (
	SourceTemplate   Source = "template"
	SourceAutofix    Source = "autofix"
	SourceOverride   Source = "override"
	SourcePhaseShift Source = "phase_shift"
	SourcePairDesync Source = "pair_desync"
	SourceShorten    Source = "shorten"
)

// Employee is a roster entry. The roster order is significant: for employees
// without a previous-month tail, the A/B office alternation inside each
// bootstrap phase bucket follows it (the phase itself comes from
// StablePhaseSeed).
type Employee struct {
	ID          string
	Name        string
	IsTrainee   bool
	MentorID    string
	YTDOvertime int
}

// StablePhaseSeed hashes an employee id into a phase 0..3. It is only a
// fallback anchor for rosters without any previous-month history.
func StablePhaseSeed(id string) int {
	sum := sha1.Sum([]byte(id))
	return int(binary.BigEndian.Uint64(sum[:8]) % 4)
}

// Assignment is one (employee, day) cell of the schedule.
type Assignment struct {
	EmployeeID         string    `json:"employee_id"`
	Date               time.Time `json:"date"`
	Code               Code      `json:"shift_code"`
	Hours              int       `json:"effective_hours"`
	Source             Source    `json:"source"`
	RecoloredFromNight bool      `json:"recolored_from_night,omitempty"`
}

// MonthSpec describes the month to generate.
type MonthSpec struct {
	YearMonth string                 // "YYYY-MM"
	NormHours int                    // 0 when the production calendar supplies it
	Vacations map[string][]time.Time // employee id -> vacation dates
}

// ParseYearMonth splits a "YYYY-MM" tag.
func ParseYearMonth(ym string) (int, time.Month, error) {
	var y, m int
	if _, err := fmt.Sscanf(ym, "%d-%d", &y, &m); err != nil || m < 1 || m > 12 || y < 1 {
		return 0, 0, &ConfigurationError{Msg: fmt.Sprintf("malformed month tag %q", ym)}
	}
	return y, time.Month(m), nil
}

// DateOf builds a normalized date (midnight UTC), the only representation
// used for schedule keys.
func DateOf(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// MonthDays lists every date of a month in ascending order.
func MonthDays(year int, month time.Month) []time.Time {
	first := DateOf(year, month, 1)
	last := first.AddDate(0, 1, -1)
	out := make([]time.Time, 0, last.Day())
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		out = append(out, d)
	}
	return out
}

// Window is an inclusive date range.
type Window struct {
	From, To time.Time
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d time.Time) bool {
	return !d.Before(w.From) && !d.After(w.To)
}

// Schedule maps each day of a month to its ordered assignments, one per
// employee. Operators treat it as copy-on-write: they Clone before mutating.
type Schedule struct {
	days  []time.Time
	cells map[time.Time][]Assignment
}

// NewSchedule creates an empty schedule over the given days.
func NewSchedule(days []time.Time) *Schedule {
	s := &Schedule{
		days:  append([]time.Time(nil), days...),
		cells: make(map[time.Time][]Assignment, len(days)),
	}
	for _, d := range s.days {
		s.cells[d] = nil
	}
	return s
}

// Days returns the schedule's dates in ascending order. The slice is shared;
// callers must not modify it.
func (s *Schedule) Days() []time.Time { return s.days }

// FirstDay returns the first date of the month.
func (s *Schedule) FirstDay() time.Time { return s.days[0] }

// LastDay returns the last date of the month.
func (s *Schedule) LastDay() time.Time { return s.days[len(s.days)-1] }

// MonthWindow covers the whole month.
func (s *Schedule) MonthWindow() Window { return Window{From: s.FirstDay(), To: s.LastDay()} }

// At returns the assignments of a day in stable order.
func (s *Schedule) At(d time.Time) []Assignment { return s.cells[d] }

// Add appends an assignment to its day.
func (s *Schedule) Add(a Assignment) {
	s.cells[a.Date] = append(s.cells[a.Date], a)
}

// RemoveFor drops the assignment of an employee on a day, if present.
func (s *Schedule) RemoveFor(empID string, d time.Time) {
	rows := s.cells[d]
	for i := range rows {
		if rows[i].EmployeeID == empID {
			s.cells[d] = append(rows[:i:i], rows[i+1:]...)
			return
		}
	}
}

// AssignmentOn returns the cell of an employee on a day.
func (s *Schedule) AssignmentOn(empID string, d time.Time) (Assignment, bool) {
	for _, a := range s.cells[d] {
		if a.EmployeeID == empID {
			return a, true
		}
	}
	return Assignment{}, false
}

// CodeOn returns the employee's code on a day, or OFF when no cell exists.
func (s *Schedule) CodeOn(empID string, d time.Time) Code {
	if a, ok := s.AssignmentOn(empID, d); ok {
		return a.Code
	}
	return CodeOFF
}

// TokenOn returns the employee's phase token on a day.
func (s *Schedule) TokenOn(empID string, d time.Time) Token {
	return s.CodeOn(empID, d).Token(d.Day())
}

// update applies fn to the employee's cell on a day.
func (s *Schedule) update(empID string, d time.Time, fn func(*Assignment)) bool {
	rows := s.cells[d]
	for i := range rows {
		if rows[i].EmployeeID == empID {
			fn(&rows[i])
			return true
		}
	}
	return false
}

// SetCode recolours the employee's cell on a day. Effective hours always
// follow the code's nominal hours.
func (s *Schedule) SetCode(empID string, d time.Time, code Code, src Source) bool {
	return s.update(empID, d, func(a *Assignment) {
		a.Code = code
		a.Hours = code.Hours()
		a.Source = src
	})
}

// Clone deep-copies the schedule.
func (s *Schedule) Clone() *Schedule {
	out := &Schedule{
		days:  s.days,
		cells: make(map[time.Time][]Assignment, len(s.cells)),
	}
	for d, rows := range s.cells {
		out.cells[d] = append([]Assignment(nil), rows...)
	}
	return out
}

// HoursFor sums the effective hours of one employee over the month.
func (s *Schedule) HoursFor(empID string) int {
	total := 0
	for _, rows := range s.cells {
		for _, a := range rows {
			if a.EmployeeID == empID {
				total += a.Hours
			}
		}
	}
	return total
}

// HoursByEmployee sums effective hours per employee.
func (s *Schedule) HoursByEmployee() map[string]int {
	out := make(map[string]int)
	for _, rows := range s.cells {
		for _, a := range rows {
			out[a.EmployeeID] += a.Hours
		}
	}
	return out
}

// EmployeeIDs lists every employee appearing in the schedule, sorted.
func (s *Schedule) EmployeeIDs() []string {
	seen := make(map[string]bool)
	for _, rows := range s.cells {
		for _, a := range rows {
			seen[a.EmployeeID] = true
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// CheckInvariants verifies the structural invariants of a generated or
// transformed schedule: exactly one cell per (day, employee), N8 only on
// day 1, N4 only on the last day, effective hours equal to nominal hours.
func (s *Schedule) CheckInvariants(employees []Employee) error {
	last := s.LastDay()
	for _, d := range s.days {
		seen := make(map[string]bool, len(s.cells[d]))
		for _, a := range s.cells[d] {
			if seen[a.EmployeeID] {
				return &InvariantViolation{Msg: fmt.Sprintf("duplicate cell for %s on %s", a.EmployeeID, d.Format("2006-01-02"))}
			}
			seen[a.EmployeeID] = true
			if _, err := ParseCode(string(a.Code)); err != nil {
				return &InvariantViolation{Msg: fmt.Sprintf("unknown code %q for %s on %s", a.Code, a.EmployeeID, d.Format("2006-01-02"))}
			}
			if a.Code.IsSplitCarry() && d.Day() != 1 {
				return &InvariantViolation{Msg: fmt.Sprintf("%s off day 1 for %s on %s", a.Code, a.EmployeeID, d.Format("2006-01-02"))}
			}
			if a.Code.IsSplitTail() && !d.Equal(last) {
				return &InvariantViolation{Msg: fmt.Sprintf("%s off the last day for %s on %s", a.Code, a.EmployeeID, d.Format("2006-01-02"))}
			}
			if a.Hours != a.Code.Hours() {
				return &InvariantViolation{Msg: fmt.Sprintf("hours %d do not match %s for %s on %s", a.Hours, a.Code, a.EmployeeID, d.Format("2006-01-02"))}
			}
		}
		for _, e := range employees {
			if !seen[e.ID] {
				return &InvariantViolation{Msg: fmt.Sprintf("missing cell for %s on %s", e.ID, d.Format("2006-01-02"))}
			}
		}
	}
	return nil
}
