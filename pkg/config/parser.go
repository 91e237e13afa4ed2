package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser builds a Tree from tmsh configuration text.
//
// The grammar is recursive descent, one level per brace depth. Statements
// end at newlines; indentation is never consulted. The parser aborts on
// the first structural error: a malformed file must not silently produce
// a truncated tree.
type Parser struct {
	lex *Lexer
	tok Token

	// GTM topology records are declared one object per record; they are
	// aggregated into a single synthetic object at the end of the parse.
	topologyRecords []*Block
	longestMatch    bool
}

// NewParser creates a parser for the given input text.
func NewParser(input string) *Parser {
	p := &Parser{lex: NewLexer(input)}
	p.next()
	return p
}

func (p *Parser) next() {
	p.tok = p.lex.Next()
}

// Parse consumes the whole input and returns the configuration tree.
func (p *Parser) Parse() (*Tree, error) {
	tree := &Tree{}
	for {
		p.skipNewlines()
		switch p.tok.Type {
		case TokenEOF:
			p.synthesizeTopology(tree)
			return tree, nil
		case TokenRBrace:
			return nil, &ParseError{Kind: UnbalancedBraces, Line: p.tok.Line, Column: p.tok.Column}
		case TokenError:
			return nil, p.lexError()
		case TokenLBrace:
			return nil, &ParseError{
				Kind: UnexpectedToken, Line: p.tok.Line, Column: p.tok.Column,
				Expected: "identifier", Found: p.tok.String(),
			}
		default:
			obj, err := p.parseObject()
			if err != nil {
				return nil, err
			}
			if obj != nil {
				tree.Objects = append(tree.Objects, obj)
			}
		}
	}
}

func (p *Parser) skipNewlines() {
	for p.tok.Type == TokenNewline {
		p.next()
	}
}

func (p *Parser) lexError() error {
	if p.tok.Value == "unterminated string" {
		return &LexError{Kind: UnterminatedString, Line: p.tok.Line, Column: p.tok.Column}
	}
	return &ParseError{
		Kind: UnexpectedToken, Line: p.tok.Line, Column: p.tok.Column,
		Expected: "identifier", Found: strconv.Quote(p.tok.Value),
	}
}

// parseObject parses one top-level declaration: a header run of words
// followed by a braced body. Topology records return nil; they surface
// later as the synthetic topology object.
func (p *Parser) parseObject() (*Object, error) {
	line, col := p.tok.Line, p.tok.Column

	var words []string
	for isWord(p.tok.Type) {
		words = append(words, p.tok.Value)
		p.next()
	}

	switch p.tok.Type {
	case TokenLBrace:
	case TokenEOF:
		return nil, &ParseError{Kind: UnexpectedEOF, Line: p.tok.Line, Column: p.tok.Column}
	case TokenError:
		return nil, p.lexError()
	default:
		return nil, &ParseError{
			Kind: UnexpectedToken, Line: p.tok.Line, Column: p.tok.Column,
			Expected: "'{'", Found: p.tok.String(),
		}
	}

	// GTM topology record headers carry the record key inline.
	if len(words) > 3 && words[0] == "gtm" && words[1] == "topology" && words[2] == "ldns:" {
		return nil, p.parseTopologyRecord(words)
	}

	// Tcl bodies are captured verbatim, not parsed.
	if hasTypePrefix(words, tclBodyPrefixes) {
		typePath, name := splitHeader(words)
		body, ok := p.lex.captureBalanced(true)
		if !ok {
			return nil, &ParseError{Kind: UnbalancedBraces, Line: line, Column: col}
		}
		p.next()
		return &Object{TypePath: typePath, Name: name, Props: &Block{}, Raw: body, Line: line, Column: col}, nil
	}

	// Opaque bodies are skipped entirely.
	if hasTypePrefix(words, opaqueBodyPrefixes) {
		typePath, name := splitHeader(words)
		if _, ok := p.lex.captureBalanced(false); !ok {
			return nil, &ParseError{Kind: UnbalancedBraces, Line: line, Column: col}
		}
		p.next()
		return &Object{TypePath: typePath, Name: name, Props: &Block{}, Line: line, Column: col}, nil
	}

	typePath, name := splitHeader(words)
	p.next() // {
	props, err := p.parseBraceValue()
	if err != nil {
		return nil, err
	}
	if hasTypePrefix(words, userDefinedPrefixes) {
		props = foldUserDefined(props)
	}
	return &Object{TypePath: typePath, Name: name, Props: props, Line: line, Column: col}, nil
}

// splitHeader divides a header word run into the type path and the
// object name. The final word is the name when it is path-shaped or when
// the run has three or more words; a two-word run with a plain second
// word is a nameless settings object ("sys global-settings").
func splitHeader(words []string) (typePath []string, name string) {
	if len(words) < 2 {
		return words, ""
	}
	last := words[len(words)-1]
	if len(words) >= 3 || strings.Contains(last, "/") {
		return words[:len(words)-1], last
	}
	return words, ""
}

// parseTopologyRecord handles "gtm topology ldns: <src> server: <dst> { ... }".
func (p *Parser) parseTopologyRecord(words []string) error {
	serverIdx := -1
	for i, w := range words {
		if w == "server:" {
			serverIdx = i
			break
		}
	}
	if serverIdx < 0 {
		return &ParseError{
			Kind: UnexpectedToken, Line: p.tok.Line, Column: p.tok.Column,
			Expected: "'server:'", Found: "'{'",
		}
	}
	source := strings.Join(words[3:serverIdx], " ")
	destination := strings.Join(words[serverIdx+1:], " ")

	p.next() // {
	body, err := p.parseBraceValue()
	if err != nil {
		return err
	}

	rec := &Block{}
	rec.Add("source", Scalar{Kind: ScalarString, Text: source})
	rec.Add("destination", Scalar{Kind: ScalarString, Text: destination})
	rec.Entries = append(rec.Entries, body.Entries...)
	p.topologyRecords = append(p.topologyRecords, rec)
	return nil
}

// synthesizeTopology folds accumulated topology records into one object,
// the shape the rest of the toolchain expects for the topology table.
func (p *Parser) synthesizeTopology(tree *Tree) {
	if len(p.topologyRecords) == 0 {
		return
	}
	records := &Block{}
	for i, rec := range p.topologyRecords {
		records.Add(fmt.Sprintf("topology_%d", i), rec)
	}
	records.Add("longest-match-enabled", Scalar{Kind: ScalarString, Text: strconv.FormatBool(p.longestMatch)})
	props := &Block{}
	props.Add("records", records)
	tree.Objects = append(tree.Objects, &Object{
		TypePath: []string{"gtm", "topology"},
		Name:     "/Common/Shared/topology",
		Props:    props,
	})
}

// parseBraceValue parses the value following a consumed '{': an empty
// block or a body of entries. Entries may start on the opening line;
// the body runs until the matching '}'.
func (p *Parser) parseBraceValue() (*Block, error) {
	if p.tok.Type == TokenRBrace {
		p.next()
		return &Block{}, nil
	}
	return p.parseBody()
}

// parseInlineList parses "{ a b c }" as an ordered list of scalars.
// Only dialect exception keys (see inlineListKey) use this form; items
// may wrap across lines.
func (p *Parser) parseInlineList() (List, error) {
	items := List{}
	for {
		switch p.tok.Type {
		case TokenRBrace:
			p.next()
			return items, nil
		case TokenNewline:
			p.next()
		case TokenEOF:
			return nil, &ParseError{Kind: UnbalancedBraces, Line: p.tok.Line, Column: p.tok.Column}
		case TokenError:
			return nil, p.lexError()
		case TokenLBrace:
			return nil, &ParseError{
				Kind: UnexpectedToken, Line: p.tok.Line, Column: p.tok.Column,
				Expected: "'}'", Found: p.tok.String(),
			}
		default:
			items = append(items, p.scalar())
			p.next()
		}
	}
}

// parseBody parses entries until the matching '}'.
func (p *Parser) parseBody() (*Block, error) {
	b := &Block{}
	anon := 0
	for {
		p.skipNewlines()
		switch p.tok.Type {
		case TokenRBrace:
			p.next()
			return b, nil
		case TokenEOF:
			return nil, &ParseError{Kind: UnbalancedBraces, Line: p.tok.Line, Column: p.tok.Column}
		case TokenError:
			return nil, p.lexError()
		case TokenLBrace:
			// Anonymous block: a list-of-objects entry keyed by position.
			p.next()
			v, err := p.parseBraceValue()
			if err != nil {
				return nil, err
			}
			b.Add(strconv.Itoa(anon), v)
			anon++
		default:
			if err := p.parseEntry(b); err != nil {
				return nil, err
			}
		}
	}
}

// parseEntry parses one statement inside a body: a word run terminated by
// a newline, a brace, or the closing brace of the enclosing body.
func (p *Parser) parseEntry(b *Block) error {
	var words []Token
	for isWord(p.tok.Type) {
		words = append(words, p.tok)
		p.next()
	}

	switch p.tok.Type {
	case TokenLBrace:
		// The whole run keys the nested value ("members", "monitor min 1 of").
		key := joinWords(words)
		p.next()
		var v Value
		var err error
		if inlineListKey(words) {
			v, err = p.parseInlineList()
		} else {
			v, err = p.parseBraceValue()
		}
		if err != nil {
			return err
		}
		b.Add(key, v)
		return nil

	case TokenNewline, TokenRBrace, TokenEOF:
		switch len(words) {
		case 1:
			// Flag-only property.
			b.Add(words[0].Value, True)
		case 2:
			val := scalarFrom(words[1])
			if words[0].Value == "topology-longest-match" && val.Text == "yes" {
				p.longestMatch = true
			}
			b.Add(words[0].Value, val)
		default:
			items := make(List, 0, len(words)-1)
			for _, w := range words[1:] {
				items = append(items, scalarFrom(w))
			}
			b.Add(words[0].Value, items)
		}
		return nil

	case TokenError:
		return p.lexError()

	default:
		return &ParseError{
			Kind: UnexpectedToken, Line: p.tok.Line, Column: p.tok.Column,
			Expected: "value or '{'", Found: p.tok.String(),
		}
	}
}

func (p *Parser) scalar() Scalar {
	return scalarFrom(p.tok)
}

func isWord(t TokenType) bool {
	return t == TokenIdentifier || t == TokenNumber || t == TokenString
}

func scalarFrom(tok Token) Scalar {
	if tok.Type == TokenNumber {
		return Scalar{Kind: ScalarNumber, Text: tok.Value}
	}
	return Scalar{Kind: ScalarString, Text: tok.Value}
}

func joinWords(words []Token) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.Value
	}
	return strings.Join(parts, " ")
}
