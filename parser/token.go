package parser

import (
	"fmt"

	"regvm/isa"
)

// TokenType is the closed set of lexical token kinds (spec.md §3).
type TokenType int

const (
	TokenOp TokenType = iota
	TokenRegister
	TokenIntOperand
	TokenStringOperand
	TokenLabelDeclaration
	TokenLabel
	TokenDirective
	TokenEOF
)

var tokenTypeNames = map[TokenType]string{
	TokenOp:               "Op",
	TokenRegister:         "Register",
	TokenIntOperand:       "IntOperand",
	TokenStringOperand:    "StringOperand",
	TokenLabelDeclaration: "LabelDeclaration",
	TokenLabel:            "Label",
	TokenDirective:        "Directive",
	TokenEOF:              "EOF",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// Token is a single lexical unit. It is a tagged union flattened into one
// struct: Type selects which of the payload fields is meaningful, mirroring
// spec.md §3's Op/Register/IntOperand/StringOperand/LabelDeclaration/Label/
// Directive/EOF variants.
type Token struct {
	Type TokenType
	Pos  Position

	Opcode        isa.Opcode // valid when Type == TokenOp
	Register      int32      // valid when Type == TokenRegister
	IntOperand    int32      // valid when Type == TokenIntOperand
	StringOperand string     // valid when Type == TokenStringOperand
	Name          string     // valid when Type is LabelDeclaration, Label, or Directive
}

// String renders the token in assembly-source syntax; EOF renders as "".
// Token has no custom equality: == also compares Pos, so two EOF tokens
// taken at different positions are not equal.
func (t Token) String() string {
	switch t.Type {
	case TokenOp:
		return t.Opcode.String()
	case TokenRegister:
		return fmt.Sprintf("$%d", t.Register)
	case TokenIntOperand:
		return fmt.Sprintf("#%d", t.IntOperand)
	case TokenStringOperand:
		return fmt.Sprintf("%q", t.StringOperand)
	case TokenLabelDeclaration:
		return t.Name + ":"
	case TokenLabel:
		return "@" + t.Name
	case TokenDirective:
		return "." + t.Name
	default:
		return ""
	}
}
