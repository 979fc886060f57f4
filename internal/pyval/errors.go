package pyval

import (
	"errors"
	"fmt"
)

// Exception type names raised by primitives.
const (
	TypeError         = "TypeError"
	ValueError        = "ValueError"
	ZeroDivisionError = "ZeroDivisionError"
	OverflowError     = "OverflowError"
	AttributeError    = "AttributeError"
	StopIteration     = "StopIteration"
	EOFError          = "EOFError"
	NameError         = "NameError"
	SyntaxError       = "SyntaxError"
	MemoryError       = "MemoryError"
	RuntimeError      = "RuntimeError"
)

// Error is an interpreter exception. It renders the way a traceback's last
// line does: "ValueError: invalid literal ...".
type Error struct {
	Type string
	Msg  string
}

func (e *Error) Error() string {
	if e.Msg == "" {
		return e.Type
	}
	return e.Type + ": " + e.Msg
}

// Errorf builds an exception of the given type.
func Errorf(typ, format string, args ...any) *Error {
	return &Error{Type: typ, Msg: fmt.Sprintf(format, args...)}
}

// TypeErrorf builds a TypeError.
func TypeErrorf(format string, args ...any) *Error {
	return Errorf(TypeError, format, args...)
}

// ValueErrorf builds a ValueError.
func ValueErrorf(format string, args ...any) *Error {
	return Errorf(ValueError, format, args...)
}

// IsException reports whether err is (or wraps) an exception of type typ.
func IsException(err error, typ string) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	return pe.Type == typ
}
