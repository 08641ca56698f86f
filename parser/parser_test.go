package parser

import (
	"testing"

	"regvm/isa"
)

func TestParseInstructionStatement(t *testing.T) {
	p, err := NewParser("load $0 #10")
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}

	stmt := stmts[0]
	if stmt.Kind != StatementInstruction {
		t.Fatalf("Kind = %v, want StatementInstruction", stmt.Kind)
	}
	if stmt.Body.Opcode == nil || stmt.Body.Opcode.Opcode != isa.LOAD {
		t.Fatalf("Opcode = %+v, want LOAD", stmt.Body.Opcode)
	}
	if stmt.Body.OperandOne == nil || stmt.Body.OperandOne.Type != TokenRegister {
		t.Fatalf("OperandOne = %+v, want Register", stmt.Body.OperandOne)
	}
	if stmt.Body.OperandTwo == nil || stmt.Body.OperandTwo.Type != TokenIntOperand {
		t.Fatalf("OperandTwo = %+v, want IntOperand", stmt.Body.OperandTwo)
	}
	if stmt.Body.OperandThree != nil {
		t.Fatalf("OperandThree = %+v, want nil", stmt.Body.OperandThree)
	}
}

func TestParseLabelDeclaration(t *testing.T) {
	p, err := NewParser("my_label: add $2 $0 $1")
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	stmt := stmts[0]
	if stmt.Kind != StatementLabelDeclaration || stmt.Name != "my_label" {
		t.Fatalf("stmt = %+v, want LabelDeclaration(my_label)", stmt)
	}
	if stmt.Body.Opcode == nil || stmt.Body.Opcode.Opcode != isa.ADD {
		t.Fatalf("Opcode = %+v, want ADD", stmt.Body.Opcode)
	}
}

func TestParseDirectiveWithStringOperand(t *testing.T) {
	p, err := NewParser(`my_string: .asciiz "Hello world"`)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	stmt := stmts[0]
	if stmt.Body.Directive == nil || stmt.Body.Directive.Name != "asciiz" {
		t.Fatalf("Directive = %+v, want asciiz", stmt.Body.Directive)
	}
	if stmt.Body.OperandOne == nil || stmt.Body.OperandOne.StringOperand != "Hello world" {
		t.Fatalf("OperandOne = %+v, want StringOperand(Hello world)", stmt.Body.OperandOne)
	}
}

func TestParseBareSectionDirective(t *testing.T) {
	p, err := NewParser(".data")
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(stmts) != 1 || stmts[0].Kind != StatementInstruction {
		t.Fatalf("stmts = %+v, want one bare instruction statement", stmts)
	}
	if len(stmts[0].Body.Operands()) != 0 {
		t.Fatalf("operands = %v, want none", stmts[0].Body.Operands())
	}
}

func TestParseInvalidLeadingToken(t *testing.T) {
	p, err := NewParser("$0 #1")
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	if _, err := p.Parse(); err == nil {
		t.Fatal("expected syntax error for statement not starting with Opcode/Directive/LabelDeclaration")
	}
}

func TestParseMultipleStatements(t *testing.T) {
	src := "load $0 #10\nload $1 #10\nmy_label: add $2 $0 $1"
	p, err := NewParser(src)
	if err != nil {
		t.Fatalf("NewParser: %v", err)
	}
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(stmts) != 3 {
		t.Fatalf("got %d statements, want 3", len(stmts))
	}
}
