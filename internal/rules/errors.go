package rules

import "fmt"

// InputError reports a malformed rules document. Line and Column are 1-based
// and zero when the position is unknown.
type InputError struct {
	Path   string
	Line   int
	Column int
	Msg    string
}

func (e *InputError) Error() string {
	path := e.Path
	if path == "" {
		path = "<rules>"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", path, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("%s: %s", path, e.Msg)
}
