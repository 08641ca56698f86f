package encoder

import (
	"encoding/binary"
	"fmt"

	"regvm/isa"
	"regvm/parser"
	"regvm/vm"
)

// instructionWidth is the fixed size, in bytes, of every encoded
// instruction (spec.md §4.4).
const instructionWidth = 4

// ToBytes encodes a single opcode-bearing AssemblerInstruction into its
// 4-byte wire form: opcode byte, followed by its operands in order,
// right-zero-padded out to instructionWidth. Register operands occupy
// one byte; IntOperand operands occupy two bytes, big-endian. A directive
// body is rejected with an error; the assembler's encodeBody gives a
// labelled directive its four zero bytes, and its handleDirective emits
// read-only data without walking operands the way an opcode body does.
func ToBytes(inst *parser.AssemblerInstruction) ([instructionWidth]byte, error) {
	var out [instructionWidth]byte

	if inst.Opcode == nil {
		return out, NewEncodingError(parser.Position{}, "ToBytes requires an opcode-bearing instruction")
	}

	out[0] = isa.ToByte(inst.Opcode.Opcode)
	offset := 1

	for _, operand := range inst.Operands() {
		switch operand.Type {
		case parser.TokenRegister:
			if offset+1 > instructionWidth {
				return out, NewEncodingError(operand.Pos, "instruction exceeds 4 bytes")
			}
			regIndex, err := vm.SafeInt32ToUint32(operand.Register)
			if err != nil {
				return out, NewEncodingError(operand.Pos, fmt.Sprintf("register operand: %v", err))
			}
			regByte, err := vm.SafeUint32ToUint8(regIndex)
			if err != nil {
				return out, NewEncodingError(operand.Pos, fmt.Sprintf("register operand: %v", err))
			}
			out[offset] = regByte
			offset++

		case parser.TokenIntOperand:
			if offset+2 > instructionWidth {
				return out, NewEncodingError(operand.Pos, "instruction exceeds 4 bytes")
			}
			binary.BigEndian.PutUint16(out[offset:offset+2], uint16(operand.IntOperand))
			offset += 2

		default:
			return out, NewEncodingError(operand.Pos, "operand cannot be encoded: "+operand.Type.String())
		}
	}

	return out, nil
}
