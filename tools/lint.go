package tools

import (
	"fmt"
	"sort"

	"regvm/parser"
)

// LintLevel represents the severity of a lint issue.
type LintLevel int

const (
	LintError   LintLevel = iota // definite mistake; a bare directive may still assemble
	LintWarning                  // likely mistake, assembly still succeeds
)

func (l LintLevel) String() string {
	if l == LintError {
		return "error"
	}
	return "warning"
}

// LintIssue is a single finding.
type LintIssue struct {
	Level   LintLevel
	Line    int
	Column  int
	Message string
	Code    string
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("line %d:%d: %s: %s [%s]", i.Line, i.Column, i.Level, i.Message, i.Code)
}

var knownDirectives = map[string]bool{
	"asciiz": true,
	"data":   true,
	"code":   true,
}

// Linter analyzes assembly source for common mistakes that the
// assembler itself wouldn't necessarily reject.
type Linter struct {
	issues     []*LintIssue
	declared   map[string]parser.Position
	referenced map[string]bool
}

// NewLinter creates a Linter.
func NewLinter() *Linter {
	return &Linter{
		declared:   make(map[string]parser.Position),
		referenced: make(map[string]bool),
	}
}

// Lint parses source and returns every issue found, sorted by position.
// A parse error yields a single PARSE_ERROR issue.
func (l *Linter) Lint(source string) []*LintIssue {
	p, err := parser.NewParser(source)
	if err != nil {
		return []*LintIssue{{Level: LintError, Line: 1, Column: 1, Message: err.Error(), Code: "PARSE_ERROR"}}
	}
	statements, err := p.Parse()
	if err != nil {
		return []*LintIssue{{Level: LintError, Line: 1, Column: 1, Message: err.Error(), Code: "PARSE_ERROR"}}
	}

	for _, stmt := range statements {
		l.collectLabel(stmt)
	}
	for _, stmt := range statements {
		l.checkDirective(stmt.Body)
		l.collectReference(stmt.Body)
	}
	l.checkUnreferencedLabels()

	sort.Slice(l.issues, func(i, j int) bool {
		if l.issues[i].Line == l.issues[j].Line {
			return l.issues[i].Column < l.issues[j].Column
		}
		return l.issues[i].Line < l.issues[j].Line
	})
	return l.issues
}

func (l *Linter) collectLabel(stmt parser.AssemblerStatement) {
	if stmt.Kind != parser.StatementLabelDeclaration {
		return
	}
	pos := statementPos(stmt.Body)
	if _, exists := l.declared[stmt.Name]; exists {
		l.issues = append(l.issues, &LintIssue{
			Level:   LintWarning,
			Line:    pos.Line,
			Column:  pos.Column,
			Message: fmt.Sprintf("duplicate label %q (first writer wins, this declaration is ignored)", stmt.Name),
			Code:    "DUPLICATE_LABEL",
		})
		return
	}
	l.declared[stmt.Name] = pos
}

func (l *Linter) collectReference(inst *parser.AssemblerInstruction) {
	if inst.Label != nil {
		l.referenced[inst.Label.Name] = true
	}
}

func (l *Linter) checkDirective(inst *parser.AssemblerInstruction) {
	if !inst.IsDirective() {
		return
	}
	name := inst.Directive.Name
	if !knownDirectives[name] {
		l.issues = append(l.issues, &LintIssue{
			Level:   LintError,
			Line:    inst.Directive.Pos.Line,
			Column:  inst.Directive.Pos.Column,
			Message: fmt.Sprintf("unknown directive %q", name),
			Code:    "UNKNOWN_DIRECTIVE",
		})
		return
	}
	if name == "asciiz" && inst.OperandOne == nil {
		l.issues = append(l.issues, &LintIssue{
			Level:   LintError,
			Line:    inst.Directive.Pos.Line,
			Column:  inst.Directive.Pos.Column,
			Message: ".asciiz requires a string operand",
			Code:    "MISSING_OPERAND",
		})
	}
}

// checkUnreferencedLabels warns about label declarations whose name
// never appears as an attached Label token elsewhere in the program.
func (l *Linter) checkUnreferencedLabels() {
	for name, pos := range l.declared {
		if l.referenced[name] {
			continue
		}
		l.issues = append(l.issues, &LintIssue{
			Level:   LintWarning,
			Line:    pos.Line,
			Column:  pos.Column,
			Message: fmt.Sprintf("label %q is declared but never referenced", name),
			Code:    "UNREFERENCED_LABEL",
		})
	}
}

func statementPos(inst *parser.AssemblerInstruction) parser.Position {
	switch {
	case inst.Opcode != nil:
		return inst.Opcode.Pos
	case inst.Directive != nil:
		return inst.Directive.Pos
	default:
		return parser.Position{}
	}
}

// LintString lints source using a fresh Linter.
func LintString(source string) []*LintIssue {
	return NewLinter().Lint(source)
}
