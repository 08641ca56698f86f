package assembler

import (
	"regvm/encoder"
	"regvm/parser"
)

// Phase is the assembler's two-pass state (spec.md §3).
type Phase int

const (
	PhaseOne Phase = iota
	PhaseTwo
)

// Assembler runs the two-phase traversal described in spec.md §4.6: phase
// one collects symbols, sections, and read-only data; phase two is pure
// with respect to that state and emits only the code stream.
type Assembler struct {
	Symbols      *SymbolTable
	Sections     []string
	ReadOnlyData []byte
	ConstOffset  uint32

	phase Phase
}

// NewAssembler creates an assembler with empty symbol/section/read-only
// state, ready for one source program. The assembler is one-shot: reuse
// it only if the program's later statements are meant to build on the
// earlier ones (e.g. a REPL appending new lines to a persistent table).
func NewAssembler() *Assembler {
	return &Assembler{
		Symbols: NewSymbolTable(),
		phase:   PhaseOne,
	}
}

// Assemble parses source, runs phase one then phase two, and returns the
// finished code byte stream.
func (a *Assembler) Assemble(source string) ([]byte, error) {
	p, err := parser.NewParser(source)
	if err != nil {
		return nil, err
	}
	statements, err := p.Parse()
	if err != nil {
		return nil, err
	}
	return a.AssembleStatements(statements)
}

// AssembleStatements runs the two-phase traversal over an already-parsed
// statement sequence. Exposed separately from Assemble for callers that
// already hold parsed statements; like Assemble, it keeps adding to the
// same Assembler's symbol table on every call.
func (a *Assembler) AssembleStatements(statements []parser.AssemblerStatement) ([]byte, error) {
	a.phase = PhaseOne
	if err := a.phaseOne(statements); err != nil {
		return nil, err
	}

	a.phase = PhaseTwo
	return a.phaseTwo(statements)
}

// phaseOne collects symbols, sections, and read-only data. Per spec.md
// §4.6: a labelled statement encodes its body and inserts the resulting
// bytes into the symbol table under its name (running the directive
// handler too, if the body is a directive); a bare directive statement
// with no operands is recorded as a section marker.
func (a *Assembler) phaseOne(statements []parser.AssemblerStatement) error {
	for _, stmt := range statements {
		body := stmt.Body

		if stmt.Kind == parser.StatementLabelDeclaration {
			bytes, err := a.encodeBody(body)
			if err != nil {
				return err
			}
			a.Symbols.Add(stmt.Name, bytes)

			if body.IsDirective() {
				if err := a.handleDirective(body); err != nil {
					return err
				}
			}
			continue
		}

		if body.IsDirective() && len(body.Operands()) == 0 {
			a.Sections = append(a.Sections, "."+body.Directive.Name)
		} else if body.IsDirective() {
			if err := a.handleDirective(body); err != nil {
				return err
			}
		}
	}
	return nil
}

// encodeBody produces the 4-byte form stored under a label. Directive
// bodies never carry an opcode byte (spec.md §4.4), so they encode as
// four zero bytes here; their real contribution is to read_only_data via
// handleDirective, not to the code stream.
func (a *Assembler) encodeBody(body *parser.AssemblerInstruction) ([4]byte, error) {
	if body.IsDirective() {
		return [4]byte{}, nil
	}
	return encoder.ToBytes(body)
}

// handleDirective implements the directive handler of spec.md §4.6.
// .asciiz emits read-only data, .data and .code are accepted without
// effect, and every other directive name is fatal.
func (a *Assembler) handleDirective(body *parser.AssemblerInstruction) error {
	switch body.Directive.Name {
	case "asciiz":
		operands := body.Operands()
		if len(operands) == 0 || operands[0].Type != parser.TokenStringOperand {
			return parser.NewError(body.Directive.Pos, parser.ErrorDirective,
				".asciiz requires a string operand")
		}
		text := operands[0].StringOperand
		a.ReadOnlyData = append(a.ReadOnlyData, []byte(text)...)
		a.ReadOnlyData = append(a.ReadOnlyData, 0x00)
		a.ConstOffset += uint32(len(text)) + 1
		return nil

	case "data", "code":
		// Bare section directives are handled in phaseOne before reaching
		// here; a section directive with operands has no defined meaning.
		return nil

	default:
		return parser.NewError(body.Directive.Pos, parser.ErrorDirective,
			"unknown directive: ."+body.Directive.Name)
	}
}

// phaseTwo emits the code stream. Directive-only bodies contribute
// nothing; every opcode-bearing body (bare or labelled) appends its
// encoded 4 bytes in source order.
func (a *Assembler) phaseTwo(statements []parser.AssemblerStatement) ([]byte, error) {
	var code []byte
	for _, stmt := range statements {
		body := stmt.Body
		if body.IsDirective() {
			continue
		}
		bytes, err := encoder.ToBytes(body)
		if err != nil {
			return nil, err
		}
		code = append(code, bytes[:]...)
	}
	return code, nil
}
