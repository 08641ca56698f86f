package assembler

// ParseProgram is the convenience entry of spec.md §4.8: it owns a fresh
// Assembler, feeds it source text, and returns only the finished code
// byte sequence, discarding symbols, sections, and read-only data.
func ParseProgram(source string) ([]byte, error) {
	a := NewAssembler()
	return a.Assemble(source)
}
