package scene

import (
	"errors"
	"fmt"
)

// ErrSyntax is matched by every SyntaxError.
var ErrSyntax = errors.New("scene syntax error")

// SyntaxError reports malformed scene text at a location.
type SyntaxError struct {
	File string
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// Is lets errors.Is(err, ErrSyntax) match any SyntaxError.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}
