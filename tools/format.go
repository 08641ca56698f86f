package tools

import (
	"fmt"
	"strings"

	"regvm/parser"
)

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	InstructionColumn int  // column the opcode/directive starts at
	OperandColumn     int  // column the operand list starts at
	AlignOperands     bool // pad to OperandColumn instead of a single space
}

// DefaultFormatOptions returns the formatter's default column layout.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{
		InstructionColumn: 8,
		OperandColumn:     16,
		AlignOperands:     true,
	}
}

// CompactFormatOptions renders with minimal whitespace instead of column
// alignment.
func CompactFormatOptions() *FormatOptions {
	return &FormatOptions{}
}

// Formatter re-renders parsed statements into canonical column-aligned
// assembly text.
type Formatter struct {
	options *FormatOptions
}

// NewFormatter creates a Formatter with the given options, or the
// defaults if options is nil.
func NewFormatter(options *FormatOptions) *Formatter {
	if options == nil {
		options = DefaultFormatOptions()
	}
	return &Formatter{options: options}
}

// Format parses source and re-renders it in canonical form.
func (f *Formatter) Format(source string) (string, error) {
	p, err := parser.NewParser(source)
	if err != nil {
		return "", fmt.Errorf("format: %w", err)
	}
	statements, err := p.Parse()
	if err != nil {
		return "", fmt.Errorf("format: %w", err)
	}

	var out strings.Builder
	for _, stmt := range statements {
		f.formatStatement(&out, stmt)
	}
	return out.String(), nil
}

func (f *Formatter) formatStatement(out *strings.Builder, stmt parser.AssemblerStatement) {
	if stmt.Kind == parser.StatementLabelDeclaration {
		out.WriteString(stmt.Name)
		out.WriteString(":\n")
	}
	f.formatInstruction(out, stmt.Body)
}

func (f *Formatter) formatInstruction(out *strings.Builder, inst *parser.AssemblerInstruction) {
	var line strings.Builder

	if f.options.InstructionColumn > 0 {
		line.WriteString(strings.Repeat(" ", f.options.InstructionColumn))
	}

	var head string
	switch {
	case inst.Opcode != nil:
		head = strings.ToUpper(inst.Opcode.Opcode.String())
	case inst.Directive != nil:
		head = "." + inst.Directive.Name
	}
	line.WriteString(head)

	if inst.Label != nil {
		line.WriteString(" @")
		line.WriteString(inst.Label.Name)
	}

	operands := inst.Operands()
	if len(operands) > 0 {
		if f.options.AlignOperands {
			padToColumn(&line, f.options.OperandColumn)
		} else {
			line.WriteString(" ")
		}
		for i, op := range operands {
			if i > 0 {
				line.WriteString(", ")
			}
			line.WriteString(op.String())
		}
	}

	out.WriteString(line.String())
	out.WriteString("\n")
}

func padToColumn(sb *strings.Builder, column int) {
	current := sb.Len()
	if current >= column {
		sb.WriteString(" ")
		return
	}
	sb.WriteString(strings.Repeat(" ", column-current))
}

// FormatString formats source using the default options.
func FormatString(source string) (string, error) {
	return NewFormatter(DefaultFormatOptions()).Format(source)
}
