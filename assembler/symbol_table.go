package assembler

// SymbolTable maps a label name to the encoded bytes of the instruction
// it names. Insertion is first-writer-wins: a duplicate declaration is
// silently ignored rather than overwriting the original (spec.md §4.5).
type SymbolTable struct {
	symbols map[string][4]byte
	order   []string
}

// NewSymbolTable creates an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string][4]byte)}
}

// Add inserts name -> bytes if name is not already present. It reports
// whether the insertion happened.
func (s *SymbolTable) Add(name string, bytes [4]byte) bool {
	if _, exists := s.symbols[name]; exists {
		return false
	}
	s.symbols[name] = bytes
	s.order = append(s.order, name)
	return true
}

// Get looks up a symbol's encoded bytes.
func (s *SymbolTable) Get(name string) ([4]byte, bool) {
	bytes, ok := s.symbols[name]
	return bytes, ok
}

// Names returns symbol names in declaration order. Supplements the
// unordered map spec.md describes with a deterministic listing, useful
// for tooling (lint/format) that needs to enumerate declared labels.
func (s *SymbolTable) Names() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}
