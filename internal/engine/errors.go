package engine

// ConfigurationError reports invalid input: unknown codes, duplicate employee
// ids, malformed month tags. Nothing is generated when one is returned.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return "configuration: " + e.Msg }

// InvariantViolation reports a schedule that breaks a structural invariant
// (N8 off day 1, N4 off the last day, duplicate cells). It indicates a bug in
// the generator or an operator, not bad input.
type InvariantViolation struct {
	Msg string
}

func (e *InvariantViolation) Error() string { return "invariant violation: " + e.Msg }
