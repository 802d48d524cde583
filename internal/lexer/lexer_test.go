package lexer

import "testing"

func TestNextToken(t *testing.T) {
	input := `[let x 5 [sum x -10.5]]`

	tests := []struct {
		expectedLiteral string
		expectedType    TokenType
	}{
		{"[", LBRACKET},
		{"let", IDENT},
		{"x", IDENT},
		{"5", NUMBER},
		{"[", LBRACKET},
		{"sum", IDENT},
		{"x", IDENT},
		{"-10.5", NUMBER},
		{"]", RBRACKET},
		{"]", RBRACKET},
		{"", EOF},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (literal=%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}

	if errs := l.Errors(); len(errs) != 0 {
		t.Fatalf("unexpected lexer errors: %v", errs)
	}
}

func TestStringsAndChars(t *testing.T) {
	input := `"hello" "a\nb\t\"q\"" c"x" c"\n" ""`

	tests := []struct {
		expectedLiteral string
		expectedType    TokenType
	}{
		{"hello", STRING},
		{"a\nb\t\"q\"", STRING},
		{"x", CHAR},
		{"\n", CHAR},
		{"", STRING},
		{"", EOF},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestSeparateSymbols(t *testing.T) {
	input := "+ - * / < > , ; ( ) { } @ ~ % ` \\"
	l := New(input)

	expected := []string{"+", "-", "*", "/", "<", ">", ",", ";", "(", ")", "{", "}", "@", "~", "%", "`", "\\"}
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != SYMBOL {
			t.Fatalf("tests[%d] - expected SYMBOL, got %q (literal %q)", i, tok.Type, tok.Literal)
		}
		if tok.Literal != want {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, want, tok.Literal)
		}
	}
	if tok := l.NextToken(); tok.Type != EOF {
		t.Fatalf("expected EOF, got %q", tok.Type)
	}
}

func TestComments(t *testing.T) {
	input := `1 /* inline
comment */ 2 // to the end
3`
	l := New(input)
	for i, want := range []string{"1", "2", "3"} {
		tok := l.NextToken()
		if tok.Type != NUMBER || tok.Literal != want {
			t.Fatalf("tests[%d] - expected NUMBER %q, got %q %q", i, want, tok.Type, tok.Literal)
		}
	}
	if errs := l.Errors(); len(errs) != 0 {
		t.Fatalf("unexpected lexer errors: %v", errs)
	}
}

func TestNumberForms(t *testing.T) {
	tests := []struct {
		input       string
		literal     string
		expectError bool
	}{
		{"0", "0", false},
		{"42", "42", false},
		{"-7", "-7", false},
		{"0.5", "0.5", false},
		{"-12.25", "-12.25", false},
		{"007", "007", true}, // leading zero
	}

	for _, tt := range tests {
		l := New(tt.input)
		tok := l.NextToken()
		hasError := len(l.Errors()) > 0
		if hasError != tt.expectError {
			t.Errorf("input %q: error = %v, want %v (%v)", tt.input, hasError, tt.expectError, l.Errors())
			continue
		}
		if !tt.expectError && (tok.Type != NUMBER || tok.Literal != tt.literal) {
			t.Errorf("input %q: got %q %q, want NUMBER %q", tt.input, tok.Type, tok.Literal, tt.literal)
		}
	}
}

func TestLexerErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed string", `"abc`},
		{"unterminated block comment", `/* abc`},
		{"oversized char literal", `c"ab"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.input)
			for tok := l.NextToken(); tok.Type != EOF; tok = l.NextToken() {
			}
			if len(l.Errors()) == 0 {
				t.Errorf("expected a lexer error for %q", tt.input)
			}
		})
	}
}

func TestPositions(t *testing.T) {
	input := "[\n  foo\n]"
	l := New(input)

	tok := l.NextToken()
	if tok.Pos.Line != 1 || tok.Pos.Column != 1 {
		t.Errorf("'[' at %s, want 1:1", tok.Pos)
	}
	tok = l.NextToken()
	if tok.Pos.Line != 2 || tok.Pos.Column != 3 {
		t.Errorf("'foo' at %s, want 2:3", tok.Pos)
	}
	tok = l.NextToken()
	if tok.Pos.Line != 3 || tok.Pos.Column != 1 {
		t.Errorf("']' at %s, want 3:1", tok.Pos)
	}
}
