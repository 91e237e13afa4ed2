package config

import "fmt"

// ErrorKind classifies lexer and parser failures.
type ErrorKind int

const (
	UnterminatedString ErrorKind = iota
	UnbalancedBraces
	UnexpectedToken
	UnexpectedEOF
)

func (k ErrorKind) String() string {
	switch k {
	case UnterminatedString:
		return "unterminated string"
	case UnbalancedBraces:
		return "unbalanced braces"
	case UnexpectedToken:
		return "unexpected token"
	case UnexpectedEOF:
		return "unexpected end of input"
	default:
		return "unknown error"
	}
}

// LexError reports a tokenization failure with its position.
type LexError struct {
	Kind   ErrorKind
	Line   int
	Column int
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Kind)
}

// ParseError reports a structural failure with its position and, for
// UnexpectedToken, what was expected versus found.
type ParseError struct {
	Kind     ErrorKind
	Line     int
	Column   int
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	if e.Kind == UnexpectedToken {
		return fmt.Sprintf("%d:%d: expected %s, found %s", e.Line, e.Column, e.Expected, e.Found)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Kind)
}
