// Package config implements the BIG-IP tmsh configuration parser and data model.
package config

import (
	"fmt"
	"strings"
)

// TokenType represents the type of a lexer token.
type TokenType int

const (
	TokenLBrace     TokenType = iota // {
	TokenRBrace                      // }
	TokenNewline                     // statement terminator
	TokenIdentifier                  // unquoted word
	TokenNumber                      // unquoted word that looks numeric
	TokenString                      // "quoted string"
	TokenEOF
	TokenError
)

func (t TokenType) String() string {
	switch t {
	case TokenLBrace:
		return "'{'"
	case TokenRBrace:
		return "'}'"
	case TokenNewline:
		return "newline"
	case TokenIdentifier:
		return "identifier"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenEOF:
		return "EOF"
	case TokenError:
		return "error"
	default:
		return "unknown"
	}
}

// Token is a single lexer token.
type Token struct {
	Type   TokenType
	Value  string
	Line   int
	Column int
}

func (t Token) String() string {
	if t.Type == TokenIdentifier || t.Type == TokenString || t.Type == TokenNumber {
		return fmt.Sprintf("%s(%q)", t.Type, t.Value)
	}
	return t.Type.String()
}

// Lexer tokenizes tmsh configuration text.
type Lexer struct {
	input  string
	pos    int
	line   int
	column int
}

// NewLexer creates a new Lexer for the given input string.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		line:   1,
		column: 1,
	}
}

// Next returns the next token, advancing the position. Consecutive blank
// lines and comment lines collapse into a single newline token.
func (l *Lexer) Next() Token {
	l.skipSpaceAndComments()

	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Line: l.line, Column: l.column}
	}

	ch := l.input[l.pos]
	line, col := l.line, l.column

	switch ch {
	case '{':
		l.advance()
		return Token{Type: TokenLBrace, Value: "{", Line: line, Column: col}
	case '}':
		l.advance()
		return Token{Type: TokenRBrace, Value: "}", Line: line, Column: col}
	case '\n':
		for l.pos < len(l.input) {
			l.skipSpaceAndComments()
			if l.pos < len(l.input) && l.input[l.pos] == '\n' {
				l.advance()
				continue
			}
			break
		}
		return Token{Type: TokenNewline, Value: "\n", Line: line, Column: col}
	case '"':
		return l.readString(line, col)
	default:
		if isIdentChar(ch) {
			return l.readWord(line, col)
		}
		l.advance()
		return Token{
			Type:   TokenError,
			Value:  fmt.Sprintf("unexpected character: %c", ch),
			Line:   line,
			Column: col,
		}
	}
}

// Peek returns the next token without advancing.
func (l *Lexer) Peek() Token {
	savedPos := l.pos
	savedLine := l.line
	savedCol := l.column
	tok := l.Next()
	l.pos = savedPos
	l.line = savedLine
	l.column = savedCol
	return tok
}

func (l *Lexer) advance() {
	if l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
		l.pos++
	}
}

func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		// Horizontal whitespace; newlines are significant.
		if ch == ' ' || ch == '\t' || ch == '\r' {
			l.advance()
			continue
		}

		// Line comment: # ... \n (the newline itself is kept)
		if ch == '#' {
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.advance()
			}
			continue
		}

		break
	}
}

func (l *Lexer) readString(line, col int) Token {
	l.advance() // opening quote
	var b strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' && l.pos+1 < len(l.input) {
			l.advance()
			switch l.input[l.pos] {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			default:
				b.WriteByte('\\')
				b.WriteByte(l.input[l.pos])
			}
			l.advance()
			continue
		}
		if ch == '"' {
			l.advance()
			return Token{Type: TokenString, Value: b.String(), Line: line, Column: col}
		}
		// Quoted values may span lines (iApp tables, monitor send strings).
		b.WriteByte(ch)
		l.advance()
	}
	return Token{Type: TokenError, Value: "unterminated string", Line: line, Column: col}
}

func (l *Lexer) readWord(line, col int) Token {
	start := l.pos
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
		l.column++
	}
	word := l.input[start:l.pos]
	typ := TokenIdentifier
	if isNumeric(word) {
		typ = TokenNumber
	}
	return Token{Type: typ, Value: word, Line: line, Column: col}
}

// isIdentChar returns true if ch is valid in a tmsh word.
// tmsh words can contain letters, digits, hyphens, underscores, dots,
// slashes, colons, percent signs, and a few shell-ish extras. This covers
// partition paths (/Common/pool_http), member addresses (10.0.0.2:80),
// route-domain suffixes (10.0.0.2%3), and wildcard virtuals (*:any).
func isIdentChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '-' || ch == '_' || ch == '.' ||
		ch == '/' || ch == ':' || ch == '%' ||
		ch == '*' || ch == '+' || ch == '@' || ch == '!' ||
		ch == '[' || ch == ']'
}

// isNumeric reports whether word is a plain integer or decimal literal.
// Dotted quads (10.0.0.1) and words with unit suffixes are identifiers.
func isNumeric(word string) bool {
	if word == "" {
		return false
	}
	i := 0
	if word[0] == '-' {
		if len(word) == 1 {
			return false
		}
		i = 1
	}
	dots := 0
	digits := 0
	for ; i < len(word); i++ {
		switch {
		case word[i] >= '0' && word[i] <= '9':
			digits++
		case word[i] == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}
