package currency

import (
	"errors"
	"fmt"
)

// ErrParse matches every error returned by ParseAmount and ParseCurrency.
var ErrParse = errors.New("invalid input")

// ParseError describes user input that could not be parsed. Its message is
// meant to be shown to the user as is.
type ParseError struct {
	Message string
}

func newParseError(format string, args ...any) *ParseError {
	return &ParseError{Message: fmt.Sprintf(format, args...)}
}

func (e *ParseError) Error() string {
	return e.Message
}

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
