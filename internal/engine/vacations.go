package engine

import "time"

// ApplyVacations recolours vacation days on top of the generated pattern:
// weekdays become VAC8 (counted as 8h), weekends VAC0. The rotation itself is
// untouched - vacations are a paint layer, not a phase change.
//
// A night shift immediately before a vacation day is removed: the employee
// would otherwise come back from a night into the vacation morning. The freed
// day is recoloured to OFF and flagged so reports can tell it apart.
func ApplyVacations(s *Schedule, vacations map[string][]time.Time) {
	if len(vacations) == 0 {
		return
	}
	vacSet := make(map[string]map[time.Time]bool, len(vacations))
	for empID, dates := range vacations {
		set := make(map[time.Time]bool, len(dates))
		for _, d := range dates {
			set[DateOf(d.Year(), d.Month(), d.Day())] = true
		}
		vacSet[empID] = set
	}

	for _, d := range s.Days() {
		for _, a := range s.At(d) {
			if !vacSet[a.EmployeeID][d] {
				continue
			}
			code := CodeVAC8
			if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
				code = CodeVAC0
			}
			src := a.Source
			if src == SourceTemplate {
				src = SourceOverride
			}
			s.SetCode(a.EmployeeID, d, code, src)
		}
	}

	// Second pass: drop the night leading into a vacation.
	for _, d := range s.Days() {
		for _, a := range s.At(d) {
			if a.Code != CodeVAC8 && a.Code != CodeVAC0 {
				continue
			}
			prev := d.AddDate(0, 0, -1)
			pa, ok := s.AssignmentOn(a.EmployeeID, prev)
			if !ok || !pa.Code.IsNight() {
				continue
			}
			s.update(a.EmployeeID, prev, func(cell *Assignment) {
				cell.Code = CodeOFF
				cell.Hours = 0
				cell.Source = SourceAutofix
				cell.RecoloredFromNight = true
			})
		}
	}
}
