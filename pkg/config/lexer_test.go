package config

import "testing"

func TestLexer(t *testing.T) {
	input := `ltm pool /Common/pool_http {
    monitor /Common/http
    load-balancing-mode round-robin
}`
	lex := NewLexer(input)
	expected := []struct {
		typ TokenType
		val string
	}{
		{TokenIdentifier, "ltm"},
		{TokenIdentifier, "pool"},
		{TokenIdentifier, "/Common/pool_http"},
		{TokenLBrace, "{"},
		{TokenNewline, ""},
		{TokenIdentifier, "monitor"},
		{TokenIdentifier, "/Common/http"},
		{TokenNewline, ""},
		{TokenIdentifier, "load-balancing-mode"},
		{TokenIdentifier, "round-robin"},
		{TokenNewline, ""},
		{TokenRBrace, "}"},
		{TokenEOF, ""},
	}

	for i, exp := range expected {
		tok := lex.Next()
		if tok.Type != exp.typ {
			t.Errorf("token %d: expected type %s, got %s (value=%q)", i, exp.typ, tok.Type, tok.Value)
		}
		if exp.val != "" && tok.Value != exp.val {
			t.Errorf("token %d: expected value %q, got %q", i, exp.val, tok.Value)
		}
	}
}

func TestLexerComments(t *testing.T) {
	input := `# leading comment
ltm pool /Common/p {
    # indented comment
    monitor /Common/http
}`
	lex := NewLexer(input)
	tok := lex.Next()
	if tok.Type != TokenNewline {
		t.Fatalf("expected newline after comment, got %s", tok)
	}
	tok = lex.Next()
	if tok.Type != TokenIdentifier || tok.Value != "ltm" {
		t.Errorf("expected 'ltm', got %s %q", tok.Type, tok.Value)
	}
}

func TestLexerNumbers(t *testing.T) {
	cases := []struct {
		word string
		typ  TokenType
	}{
		{"80", TokenNumber},
		{"-1", TokenNumber},
		{"3.5", TokenNumber},
		{"10.0.0.1", TokenIdentifier},
		{"80s", TokenIdentifier},
		{"round-robin", TokenIdentifier},
		{"-", TokenIdentifier},
	}
	for _, c := range cases {
		lex := NewLexer(c.word)
		tok := lex.Next()
		if tok.Type != c.typ {
			t.Errorf("%q: expected %s, got %s", c.word, c.typ, tok.Type)
		}
		if tok.Value != c.word {
			t.Errorf("%q: value %q", c.word, tok.Value)
		}
	}
}

func TestLexerQuotedString(t *testing.T) {
	lex := NewLexer(`description "web \"tier\" {a}"`)
	lex.Next() // description
	tok := lex.Next()
	if tok.Type != TokenString {
		t.Fatalf("expected string, got %s", tok)
	}
	if tok.Value != `web "tier" {a}` {
		t.Errorf("got %q", tok.Value)
	}
}

func TestLexerMultilineString(t *testing.T) {
	lex := NewLexer("send \"GET / HTTP/1.1\nHost: x\"")
	lex.Next()
	tok := lex.Next()
	if tok.Type != TokenString {
		t.Fatalf("expected string, got %s", tok)
	}
	if tok.Value != "GET / HTTP/1.1\nHost: x" {
		t.Errorf("got %q", tok.Value)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	lex := NewLexer(`key "never closed`)
	lex.Next()
	tok := lex.Next()
	if tok.Type != TokenError {
		t.Fatalf("expected error token, got %s", tok)
	}
	if tok.Line != 1 || tok.Column != 5 {
		t.Errorf("position %d:%d", tok.Line, tok.Column)
	}
}

func TestLexerBlankLineCollapse(t *testing.T) {
	lex := NewLexer("a\n\n\n# comment\n\nb")
	if tok := lex.Next(); tok.Value != "a" {
		t.Fatalf("got %s", tok)
	}
	if tok := lex.Next(); tok.Type != TokenNewline {
		t.Fatalf("expected one newline, got %s", tok)
	}
	if tok := lex.Next(); tok.Value != "b" {
		t.Fatalf("expected b, got %s", tok)
	}
}
