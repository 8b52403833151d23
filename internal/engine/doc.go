// Package engine generates and repairs monthly rotating duty schedules for a
// small two-office team. It has no database or HTTP dependencies - it operates
// purely on input structs and produces output structs.
//
// # Data Flow
//
// Input:
//   - MonthSpec: month tag, monthly norm hours, vacation dates
//   - []Employee: the roster, in stable order
//   - carry-in assignments (N8* placed on day 1) and the previous month's
//     code tail (up to 4 days per employee)
//
// Output:
//   - Schedule: one assignment per (day, employee)
//   - carry-out assignments for day 1 of the next month
//   - operator/shortener logs and validation issues
//
// # Pipeline
//
// GenerateMonth builds the base pattern from the four-phase cycle
// Day, Night, Off, Off. ApplyPairBreaking then tries a small set of local
// phase-shift and office-flip operators to break up employee pairs that keep
// landing on the same shifts. ApplyVacations recolours vacation days, and
// EnforceHoursCaps shortens 12h day shifts to 8h variants until monthly and
// yearly overtime caps hold.
//
// Every step is deterministic: identical inputs produce identical schedules,
// carry-outs and logs.
package engine
