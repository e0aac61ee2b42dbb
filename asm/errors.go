package asm

import "fmt"

// Code tags the error taxonomy the two-pass driver raises (§7).
type Code uint8

const (
	SyntaxError Code = iota
	InvalidMnemonic
	InvalidInstructionFormat
	SymbolAlreadyDefined
	SymbolNotDefined
	ValueOutOfRange
)

var codeNames = map[Code]string{
	SyntaxError:              "SyntaxError",
	InvalidMnemonic:          "InvalidMnemonic",
	InvalidInstructionFormat: "InvalidInstructionFormat",
	SymbolAlreadyDefined:     "SymbolAlreadyDefined",
	SymbolNotDefined:         "SymbolNotDefined",
	ValueOutOfRange:          "ValueOutOfRange",
}

func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return "UnknownError"
}

// Error is a one-line assembly failure: a taxonomy code, the 1-based
// source line it occurred on, and a human-readable detail. Pass 1 and
// pass 2 each abort on the first Error they raise (§7).
type Error struct {
	Code    Code
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Code, e.Message)
}

func errf(code Code, line int, format string, args ...any) *Error {
	return &Error{Code: code, Line: line, Message: fmt.Sprintf(format, args...)}
}
