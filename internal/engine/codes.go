package engine

import "fmt"

// Office identifies one of the two duty offices.
type Office string

const (
	OfficeA    Office = "A"
	OfficeB    Office = "B"
	OfficeNone Office = ""
)

// Opposite returns the other office. OfficeNone maps to itself.
func (o Office) Opposite() Office {
	switch o {
	case OfficeA:
		return OfficeB
	case OfficeB:
		return OfficeA
	default:
		return OfficeNone
	}
}

// Kind classifies a shift code.
type Kind string

const (
	KindDay      Kind = "day"
	KindNight    Kind = "night"
	KindVacation Kind = "vacation"
	KindOff      Kind = "off"
)

// Token is the per-day phase projection of a code: working day, working
// night, or off.
type Token string

const (
	TokenDay   Token = "D"
	TokenNight Token = "N"
	TokenOff   Token = "O"
)

// Code is a shift code from the closed vocabulary. The spelling is externally
// visible (reports, stored matrices) and must not change.
type Code string

const (
	CodeDA   Code = "DA"  // day 12h, office A
	CodeDB   Code = "DB"  // day 12h, office B
	CodeNA   Code = "NA"  // night 12h, office A
	CodeNB   Code = "NB"  // night 12h, office B
	CodeM8A  Code = "M8A" // day short morning 8h, office A
	CodeM8B  Code = "M8B" // day short morning 8h, office B
	CodeE8A  Code = "E8A" // day short evening 8h, office A
	CodeE8B  Code = "E8B" // day short evening 8h, office B
	CodeN4A  Code = "N4A" // night split 4h, last day of month only
	CodeN4B  Code = "N4B"
	CodeN8A  Code = "N8A" // night split 8h carry, first day of month only
	CodeN8B  Code = "N8B"
	CodeVAC8 Code = "VAC8" // vacation on a weekday, counted as 8h
	CodeVAC0 Code = "VAC0" // vacation on a weekend, 0h
	CodeOFF  Code = "OFF"
)

// AllCodes lists the vocabulary in stable order.
func AllCodes() []Code {
	return []Code{
		CodeDA, CodeDB, CodeNA, CodeNB,
		CodeM8A, CodeM8B, CodeE8A, CodeE8B,
		CodeN4A, CodeN4B, CodeN8A, CodeN8B,
		CodeVAC8, CodeVAC0, CodeOFF,
	}
}

// ParseCode validates a raw string against the vocabulary.
func ParseCode(raw string) (Code, error) {
	c := Code(raw)
	switch c {
	case CodeDA, CodeDB, CodeNA, CodeNB,
		CodeM8A, CodeM8B, CodeE8A, CodeE8B,
		CodeN4A, CodeN4B, CodeN8A, CodeN8B,
		CodeVAC8, CodeVAC0, CodeOFF:
		return c, nil
	}
	return "", &ConfigurationError{Msg: fmt.Sprintf("unknown shift code %q", raw)}
}

// Hours returns the nominal scheduled hours of a code.
func (c Code) Hours() int {
	switch c {
	case CodeDA, CodeDB, CodeNA, CodeNB:
		return 12
	case CodeM8A, CodeM8B, CodeE8A, CodeE8B, CodeN8A, CodeN8B, CodeVAC8:
		return 8
	case CodeN4A, CodeN4B:
		return 4
	default:
		return 0
	}
}

// Office returns the office suffix of a code, or OfficeNone for OFF and
// vacation codes.
func (c Code) Office() Office {
	switch c {
	case CodeDA, CodeNA, CodeM8A, CodeE8A, CodeN4A, CodeN8A:
		return OfficeA
	case CodeDB, CodeNB, CodeM8B, CodeE8B, CodeN4B, CodeN8B:
		return OfficeB
	default:
		return OfficeNone
	}
}

// Kind classifies the code.
func (c Code) Kind() Kind {
	switch {
	case c.IsDay():
		return KindDay
	case c.IsNight():
		return KindNight
	case c == CodeVAC8 || c == CodeVAC0:
		return KindVacation
	default:
		return KindOff
	}
}

// IsDay reports whether the code is a day shift (12h or short 8h).
func (c Code) IsDay() bool {
	switch c {
	case CodeDA, CodeDB, CodeM8A, CodeM8B, CodeE8A, CodeE8B:
		return true
	}
	return false
}

// IsNight reports whether the code is a night shift, including the split
// N4/N8 halves.
func (c Code) IsNight() bool {
	switch c {
	case CodeNA, CodeNB, CodeN4A, CodeN4B, CodeN8A, CodeN8B:
		return true
	}
	return false
}

// IsWorking reports whether the code counts as a working shift.
func (c Code) IsWorking() bool {
	return c != CodeOFF && c != CodeVAC8 && c != CodeVAC0
}

// IsSplitCarry reports whether the code is the carried night half (N8*).
func (c Code) IsSplitCarry() bool { return c == CodeN8A || c == CodeN8B }

// IsSplitTail reports whether the code is the last-day night half (N4*).
func (c Code) IsSplitTail() bool { return c == CodeN4A || c == CodeN4B }

// Token projects the code onto D/N/O for pattern and pair metrics.
// N8* on the first day of the month counts as O: the employee finished the
// previous month's night in the morning and is off for the rest of the day.
func (c Code) Token(dayOfMonth int) Token {
	if dayOfMonth == 1 && c.IsSplitCarry() {
		return TokenOff
	}
	switch {
	case c.IsDay():
		return TokenDay
	case c.IsNight():
		return TokenNight
	default:
		return TokenOff
	}
}

// SwapOffice flips the A/B suffix of a code. Codes without an office are
// returned unchanged.
func (c Code) SwapOffice() Code {
	switch c {
	case CodeDA:
		return CodeDB
	case CodeDB:
		return CodeDA
	case CodeNA:
		return CodeNB
	case CodeNB:
		return CodeNA
	case CodeM8A:
		return CodeM8B
	case CodeM8B:
		return CodeM8A
	case CodeE8A:
		return CodeE8B
	case CodeE8B:
		return CodeE8A
	case CodeN4A:
		return CodeN4B
	case CodeN4B:
		return CodeN4A
	case CodeN8A:
		return CodeN8B
	case CodeN8B:
		return CodeN8A
	default:
		return c
	}
}

// DayCode returns the 12h day code for an office.
func DayCode(o Office) Code {
	if o == OfficeB {
		return CodeDB
	}
	return CodeDA
}

// NightCode returns the 12h night code for an office.
func NightCode(o Office) Code {
	if o == OfficeB {
		return CodeNB
	}
	return CodeNA
}

// SplitTailCode returns the last-day 4h night code for an office.
func SplitTailCode(o Office) Code {
	if o == OfficeB {
		return CodeN4B
	}
	return CodeN4A
}

// SplitCarryCode returns the day-1 8h carried night code for an office.
func SplitCarryCode(o Office) Code {
	if o == OfficeB {
		return CodeN8B
	}
	return CodeN8A
}

// MorningShortCode returns the 8h morning day code for an office.
func MorningShortCode(o Office) Code {
	if o == OfficeB {
		return CodeM8B
	}
	return CodeM8A
}

// EveningShortCode returns the 8h evening day code for an office.
func EveningShortCode(o Office) Code {
	if o == OfficeB {
		return CodeE8B
	}
	return CodeE8A
}

// ShiftTypeInfo describes a catalogue entry for a code: what the UI and
// reports need to render it.
type ShiftTypeInfo struct {
	Key       string `json:"key"`
	Code      Code   `json:"code"`
	Office    Office `json:"office"`
	Start     string `json:"start,omitempty"`
	End       string `json:"end,omitempty"`
	Hours     int    `json:"hours"`
	IsWorking bool   `json:"is_working"`
	Label     string `json:"label"`
}

// Catalogue returns the fixed shift-type catalogue in stable order.
func Catalogue() []ShiftTypeInfo {
	return []ShiftTypeInfo{
		{Key: "day_a", Code: CodeDA, Office: OfficeA, Start: "09:00", End: "21:00", Hours: 12, IsWorking: true, Label: "Дневная 12ч — Офис A"},
		{Key: "day_b", Code: CodeDB, Office: OfficeB, Start: "09:00", End: "21:00", Hours: 12, IsWorking: true, Label: "Дневная 12ч — Офис B"},
		{Key: "night_a", Code: CodeNA, Office: OfficeA, Start: "21:00", End: "09:00", Hours: 12, IsWorking: true, Label: "Ночная 12ч — Офис A"},
		{Key: "night_b", Code: CodeNB, Office: OfficeB, Start: "21:00", End: "09:00", Hours: 12, IsWorking: true, Label: "Ночная 12ч — Офис B"},
		{Key: "m8_a", Code: CodeM8A, Office: OfficeA, Start: "09:00", End: "18:00", Hours: 8, IsWorking: true, Label: "Дневная 8ч (утро) — Офис A"},
		{Key: "m8_b", Code: CodeM8B, Office: OfficeB, Start: "09:00", End: "18:00", Hours: 8, IsWorking: true, Label: "Дневная 8ч (утро) — Офис B"},
		{Key: "e8_a", Code: CodeE8A, Office: OfficeA, Start: "12:00", End: "21:00", Hours: 8, IsWorking: true, Label: "Дневная 8ч (вечер) — Офис A"},
		{Key: "e8_b", Code: CodeE8B, Office: OfficeB, Start: "12:00", End: "21:00", Hours: 8, IsWorking: true, Label: "Дневная 8ч (вечер) — Офис B"},
		{Key: "n4_a", Code: CodeN4A, Office: OfficeA, Start: "21:00", End: "00:00", Hours: 4, IsWorking: true, Label: "Ночная 4ч (последний день) — Офис A"},
		{Key: "n4_b", Code: CodeN4B, Office: OfficeB, Start: "21:00", End: "00:00", Hours: 4, IsWorking: true, Label: "Ночная 4ч (последний день) — Офис B"},
		{Key: "n8_a", Code: CodeN8A, Office: OfficeA, Start: "00:00", End: "09:00", Hours: 8, IsWorking: true, Label: "Ночная 8ч (перенос на 1-е) — Офис A"},
		{Key: "n8_b", Code: CodeN8B, Office: OfficeB, Start: "00:00", End: "09:00", Hours: 8, IsWorking: true, Label: "Ночная 8ч (перенос на 1-е) — Офис B"},
		{Key: "vac_wd8", Code: CodeVAC8, Office: OfficeNone, Start: "09:00", End: "17:00", Hours: 8, IsWorking: false, Label: "Отпуск (будний, учёт 8ч)"},
		{Key: "vac_we0", Code: CodeVAC0, Office: OfficeNone, Hours: 0, IsWorking: false, Label: "Отпуск (выходной, 0ч)"},
		{Key: "off", Code: CodeOFF, Office: OfficeNone, Hours: 0, IsWorking: false, Label: "Выходной"},
	}
}
