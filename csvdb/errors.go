package csvdb

import "fmt"

// FormatError is returned if input does not have an expected structure:
// wrong header, unexpected number of columns, unknown reference block
// and so on. It usually means that a wrong file was given.
type FormatError struct {
	Line   int
	Value  string
	Reason string
}

func (f *FormatError) Error() string {
	if f.Line > 0 {
		return fmt.Sprintf("line %d: %s (got %q)", f.Line, f.Reason, f.Value)
	}

	return fmt.Sprintf("%s (got %q)", f.Reason, f.Value)
}

// ParseError is returned if a field cannot be coerced to its type.
type ParseError struct {
	Line  int
	Field string
	Value string
	Err   error
}

func (p *ParseError) Error() string {
	return fmt.Sprintf("line %d: cannot parse field %s=%q: %v",
		p.Line, p.Field, p.Value, p.Err)
}

func (p *ParseError) Unwrap() error {
	return p.Err
}
