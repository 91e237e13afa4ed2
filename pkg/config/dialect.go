package config

import "strings"

// The tmsh dialect embeds foreign syntax in a handful of object kinds.
// These tables are the full exception list; everything else goes through
// the regular grammar.

// tclBodyPrefixes lists type paths whose bodies are Tcl programs (iRules).
// Their braces belong to Tcl, so the body is captured verbatim as one
// multiline string instead of being parsed.
var tclBodyPrefixes = [][]string{
	{"ltm", "rule"},
	{"gtm", "rule"},
	{"pem", "irule"},
}

// opaqueBodyPrefixes lists type paths whose bodies are skipped entirely.
// cli scripts are Tcl with embedded help markup; cert-order-manager
// quotes braces inside its order-info property.
var opaqueBodyPrefixes = [][]string{
	{"cli", "script"},
	{"sys", "crypto", "cert-order-manager"},
}

// userDefinedPrefixes lists type paths whose bodies carry repeated
// "user-defined <name> <value>" lines declaring monitor variables; they
// merge into one nested block keyed by variable name.
var userDefinedPrefixes = [][]string{
	{"gtm", "monitor", "external"},
}

const userDefinedKey = "user-defined"

// foldUserDefined merges the user-defined entries of a monitor body into
// a single block at the position of the first one. Later declarations of
// the same variable win.
func foldUserDefined(b *Block) *Block {
	out := &Block{}
	var vars *Block
	for _, e := range b.Entries {
		name, value, ok := userDefinedVar(e)
		if !ok {
			out.Add(e.Key, e.Value)
			continue
		}
		if vars == nil {
			vars = &Block{}
			out.Add(userDefinedKey, vars)
		}
		vars.set(name, value)
	}
	return out
}

// userDefinedVar splits a "user-defined <name> <value...>" entry into the
// variable name and its value. Multi-word values join into one string.
func userDefinedVar(e Entry) (name string, value Value, ok bool) {
	if e.Key != userDefinedKey {
		return "", nil, false
	}
	items, isList := e.Value.(List)
	if !isList || len(items) < 2 {
		return "", nil, false
	}
	first, isScalar := items[0].(Scalar)
	if !isScalar {
		return "", nil, false
	}
	if len(items) == 2 {
		return first.Text, items[1], true
	}
	parts := make([]string, 0, len(items)-1)
	for _, item := range items[1:] {
		s, isScalar := item.(Scalar)
		if !isScalar {
			return "", nil, false
		}
		parts = append(parts, s.Text)
	}
	return first.Text, Scalar{Kind: ScalarString, Text: strings.Join(parts, " ")}, true
}

// inlineListKey reports whether an entry key run takes a braced inline
// list rather than a nested block. The only known case is the monitor
// availability requirement, "monitor min <n> of { ... }".
func inlineListKey(words []Token) bool {
	return len(words) == 4 &&
		words[0].Value == "monitor" &&
		words[1].Value == "min" &&
		words[3].Value == "of"
}

func hasTypePrefix(words []string, prefixes [][]string) bool {
	for _, p := range prefixes {
		if len(words) < len(p) {
			continue
		}
		match := true
		for i := range p {
			if words[i] != p[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// captureBalanced consumes raw input until the brace opened just before
// the current position is closed, returning the lines in between. Brace
// counting ignores quoted segments; in Tcl mode, comment lines and the
// set/STREAM lines common in iRules are not counted at all. Returns
// ok=false when the input ends before the brace closes.
func (l *Lexer) captureBalanced(tclMode bool) (body string, ok bool) {
	// The remainder of the opening line participates in brace counting:
	// a one-line object ("cli script /Common/x { }") closes there, and
	// a rule may open further braces on its header line.
	depth := 1 + braceDelta(stripQuoted(l.restOfLine()))
	l.skipRestOfLine()
	if depth <= 0 {
		return "", true
	}

	var lines []string
	for l.pos < len(l.input) {
		start := l.pos
		end := strings.IndexByte(l.input[l.pos:], '\n')
		if end < 0 {
			end = len(l.input)
		} else {
			end += l.pos
		}
		line := strings.TrimSuffix(l.input[start:end], "\r")
		trimmed := strings.TrimSpace(line)

		countable := true
		if tclMode && (strings.HasPrefix(trimmed, "#") ||
			strings.HasPrefix(trimmed, "set") ||
			strings.HasPrefix(trimmed, "STREAM")) {
			countable = false
		}
		if countable {
			depth += braceDelta(stripQuoted(trimmed))
		}

		// Reposition past this line.
		l.pos = end
		if l.pos < len(l.input) {
			l.pos++ // the newline
		}
		l.line++
		l.column = 1

		if depth <= 0 {
			return strings.Join(lines, "\n"), true
		}
		lines = append(lines, line)
	}
	return "", false
}

func braceDelta(s string) int {
	return strings.Count(s, "{") - strings.Count(s, "}")
}

func (l *Lexer) restOfLine() string {
	end := strings.IndexByte(l.input[l.pos:], '\n')
	if end < 0 {
		return l.input[l.pos:]
	}
	return l.input[l.pos : l.pos+end]
}

func (l *Lexer) skipRestOfLine() {
	for l.pos < len(l.input) && l.input[l.pos] != '\n' {
		l.advance()
	}
	if l.pos < len(l.input) {
		l.advance()
	}
}

// stripQuoted removes escaped quotes and then whole quoted segments so
// braces inside strings do not affect depth counting.
func stripQuoted(line string) string {
	line = strings.ReplaceAll(line, `\"`, "")
	var b strings.Builder
	inQuote := false
	for i := 0; i < len(line); i++ {
		if line[i] == '"' {
			inQuote = !inQuote
			continue
		}
		if !inQuote {
			b.WriteByte(line[i])
		}
	}
	return b.String()
}
