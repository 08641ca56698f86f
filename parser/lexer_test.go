package parser

import (
	"testing"

	"regvm/isa"
)

func allTokens(t *testing.T, src string) []Token {
	t.Helper()
	l := NewLexer(src)
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			t.Fatalf("lexer error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Type == TokenEOF {
			break
		}
	}
	return toks
}

func TestLexerFullLine(t *testing.T) {
	src := "sub $0 #1 #2\n add $2 #30 #20"
	toks := allTokens(t, src)

	want := []Token{
		{Type: TokenOp, Opcode: isa.SUB},
		{Type: TokenRegister, Register: 0},
		{Type: TokenIntOperand, IntOperand: 1},
		{Type: TokenIntOperand, IntOperand: 2},
		{Type: TokenOp, Opcode: isa.ADD},
		{Type: TokenRegister, Register: 2},
		{Type: TokenIntOperand, IntOperand: 30},
		{Type: TokenIntOperand, IntOperand: 20},
		{Type: TokenEOF},
	}

	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(want), toks)
	}

	for i := range want {
		if toks[i].Type != want[i].Type {
			t.Errorf("token %d: type = %v, want %v", i, toks[i].Type, want[i].Type)
			continue
		}
		switch want[i].Type {
		case TokenOp:
			if toks[i].Opcode != want[i].Opcode {
				t.Errorf("token %d: opcode = %v, want %v", i, toks[i].Opcode, want[i].Opcode)
			}
		case TokenRegister:
			if toks[i].Register != want[i].Register {
				t.Errorf("token %d: register = %d, want %d", i, toks[i].Register, want[i].Register)
			}
		case TokenIntOperand:
			if toks[i].IntOperand != want[i].IntOperand {
				t.Errorf("token %d: int operand = %d, want %d", i, toks[i].IntOperand, want[i].IntOperand)
			}
		}
	}
}

func TestLexerLabelDeclarationAndLabel(t *testing.T) {
	toks := allTokens(t, "loop: jmp @loop")
	if toks[0].Type != TokenLabelDeclaration || toks[0].Name != "loop" {
		t.Fatalf("token 0 = %+v, want LabelDeclaration(loop)", toks[0])
	}
	if toks[1].Type != TokenOp || toks[1].Opcode != isa.JMP {
		t.Fatalf("token 1 = %+v, want Op(JMP)", toks[1])
	}
	if toks[2].Type != TokenLabel || toks[2].Name != "loop" {
		t.Fatalf("token 2 = %+v, want Label(loop)", toks[2])
	}
}

func TestLexerDirectiveAndString(t *testing.T) {
	toks := allTokens(t, `.asciiz "Hello world"`)
	if toks[0].Type != TokenDirective || toks[0].Name != "asciiz" {
		t.Fatalf("token 0 = %+v, want Directive(asciiz)", toks[0])
	}
	if toks[1].Type != TokenStringOperand || toks[1].StringOperand != "Hello world" {
		t.Fatalf("token 1 = %+v, want StringOperand(Hello world)", toks[1])
	}
}

func TestLexerUnknownOpcode(t *testing.T) {
	l := NewLexer("bogus $0")
	if _, err := l.Next(); err == nil {
		t.Fatal("expected unknown opcode error")
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	l := NewLexer(`"unterminated`)
	if _, err := l.Next(); err == nil {
		t.Fatal("expected unterminated string error")
	}
}

func TestLexerCaseInsensitiveMnemonic(t *testing.T) {
	toks := allTokens(t, "LOAD $0 #1")
	if toks[0].Type != TokenOp || toks[0].Opcode != isa.LOAD {
		t.Fatalf("token 0 = %+v, want Op(LOAD)", toks[0])
	}
}
