package legacy

import "fmt"

// LookupError is returned if legacy record refers to an id which is
// absent in the reference table.
type LookupError struct {
	Line    int
	RefType string
	ID      int64
}

func (l *LookupError) Error() string {
	return fmt.Sprintf("line %d: unknown %s reference id %d", l.Line, l.RefType, l.ID)
}
