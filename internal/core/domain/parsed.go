package domain

// ParseState tags the outcome of parsing one analysis fragment.
type ParseState int

// Parse states.
const (
	ParseAbsent ParseState = iota
	ParseOK
	ParseMalformed
)

// Parsed is the result of parsing a single fragment: a value, an explicit
// absence, or a malformed response with its cause.
type Parsed[T any] struct {
	Value T
	State ParseState
	Err   error
}

// Ok wraps a successfully parsed value.
func Ok[T any](v T) Parsed[T] {
	return Parsed[T]{Value: v, State: ParseOK}
}

// Absent marks a fragment that parsed but had no value.
func Absent[T any]() Parsed[T] {
	return Parsed[T]{State: ParseAbsent}
}

// Malformed marks a fragment whose response could not be parsed.
func Malformed[T any](err error) Parsed[T] {
	return Parsed[T]{State: ParseMalformed, Err: err}
}

// IsOK reports whether the fragment produced a value.
func (p Parsed[T]) IsOK() bool {
	return p.State == ParseOK
}

// Get returns the value and whether it is present.
func (p Parsed[T]) Get() (T, bool) {
	return p.Value, p.State == ParseOK
}

// FragmentState maps the parse outcome onto the recorded fragment state.
func (p Parsed[T]) FragmentState() FragmentState {
	switch p.State {
	case ParseOK:
		return FragmentOK
	case ParseMalformed:
		return FragmentMalformed
	default:
		return FragmentAbsent
	}
}
