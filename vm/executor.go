package vm

import "regvm/isa"

// StepOutcome classifies how a Step call ended.
type StepOutcome int

const (
	// StepContinue means the VM executed one instruction and pc now
	// points at the next one.
	StepContinue StepOutcome = iota
	// StepHalted means execution stopped cleanly: end-of-program or HLT.
	StepHalted
	// StepIllegal means execution stopped on an IGL opcode.
	StepIllegal
)

// fetcher reads operand bytes from the program starting at pc, advancing
// pc as it goes. It mirrors spec.md §4.7's next_u8/next_u16 helpers.
type fetcher struct {
	v  *VM
	pc uint32

	// branched is set by JMP/JMPB/JMPF and by a taken JEQ/JNEQ, the only
	// opcodes that leave pc somewhere other than the next instruction
	// slot. Step uses it to decide how to finalize pc.
	branched bool
}

func (f *fetcher) nextU8() (byte, error) {
	if int(f.pc) >= len(f.v.Program) {
		return 0, newRuntimeError(f.pc, "program counter ran past end of program mid-instruction")
	}
	b := f.v.Program[f.pc]
	f.pc++
	return b, nil
}

func (f *fetcher) nextU16() (uint16, error) {
	hi, err := f.nextU8()
	if err != nil {
		return 0, err
	}
	lo, err := f.nextU8()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (v *VM) register(index byte) (int, error) {
	if int(index) >= RegisterCount {
		return 0, newRuntimeError(v.PC, "register index %d out of range", index)
	}
	return int(index), nil
}

// Step executes exactly one instruction. If pc is already at or beyond
// the end of the program, it reports StepHalted without reading any
// bytes (spec.md §4.7 step 1).
//
// Every instruction occupies a whole 4-byte slot (spec.md §4.7): an
// opcode that doesn't consume all of its operand bytes — ALOC, or a
// JEQ/JNEQ whose branch isn't taken — must still land pc on the next
// slot boundary, not wherever its own reads happened to stop. Only an
// opcode that explicitly retargets pc (JMP/JMPB/JMPF, or a taken
// JEQ/JNEQ) keeps the fetcher's cursor; HLT is the one further
// exception, advancing pc by exactly 1 rather than a full slot.
func (v *VM) Step() (StepOutcome, error) {
	if int(v.PC) >= len(v.Program) {
		return StepHalted, nil
	}

	start := v.PC
	opByte := v.Program[v.PC]
	f := &fetcher{v: v, pc: v.PC + 1}
	op := isa.FromByte(opByte)

	outcome, err := v.execute(op, f)
	switch {
	case op == isa.HLT:
		v.PC = f.pc
	case f.branched:
		v.PC = f.pc
	default:
		v.PC = start + 4
	}
	v.StepCount++
	return outcome, err
}

func (v *VM) execute(op isa.Opcode, f *fetcher) (StepOutcome, error) {
	switch op {
	case isa.LOAD:
		dstByte, err := f.nextU8()
		if err != nil {
			return StepContinue, err
		}
		imm, err := f.nextU16()
		if err != nil {
			return StepContinue, err
		}
		dst, err := v.register(dstByte)
		if err != nil {
			return StepContinue, err
		}
		v.Registers[dst] = int32(int16(imm))
		return StepContinue, nil

	case isa.ADD, isa.SUB, isa.MUL, isa.DIV,
		isa.EQ, isa.NEQ, isa.GT, isa.LT, isa.GTQ, isa.LTQ:
		return v.executeTernary(op, f)

	case isa.JMP:
		t, err := v.readTarget(f)
		if err != nil {
			return StepContinue, err
		}
		addr, err := SafeInt32ToUint32(v.Registers[t])
		if err != nil {
			return StepContinue, newRuntimeError(f.pc, "JMP target: %v", err)
		}
		f.pc = addr
		f.branched = true
		return StepContinue, nil

	case isa.JMPB:
		t, err := v.readTarget(f)
		if err != nil {
			return StepContinue, err
		}
		offset, err := SafeInt32ToUint32(v.Registers[t])
		if err != nil {
			return StepContinue, newRuntimeError(f.pc, "JMPB offset: %v", err)
		}
		f.pc -= offset
		f.branched = true
		return StepContinue, nil

	case isa.JMPF:
		t, err := v.readTarget(f)
		if err != nil {
			return StepContinue, err
		}
		offset, err := SafeInt32ToUint32(v.Registers[t])
		if err != nil {
			return StepContinue, newRuntimeError(f.pc, "JMPF offset: %v", err)
		}
		f.pc += offset
		f.branched = true
		return StepContinue, nil

	case isa.JEQ, isa.JNEQ:
		return v.executeConditionalJump(op, f)

	case isa.ALOC:
		t, err := v.readTarget(f)
		if err != nil {
			return StepContinue, err
		}
		n, err := SafeInt32ToUint32(v.Registers[t])
		if err != nil {
			return StepContinue, newRuntimeError(f.pc, "ALOC size: %v", err)
		}
		v.Heap = append(v.Heap, make([]byte, n)...)
		return StepContinue, nil

	case isa.HLT:
		return StepHalted, nil

	default: // isa.IGL and any other unassigned byte
		return StepIllegal, nil
	}
}

func (v *VM) readTarget(f *fetcher) (int, error) {
	b, err := f.nextU8()
	if err != nil {
		return 0, err
	}
	return v.register(b)
}

func (v *VM) readTernaryOperands(f *fetcher) (dst, a, b int, err error) {
	dstByte, err := f.nextU8()
	if err != nil {
		return 0, 0, 0, err
	}
	aByte, err := f.nextU8()
	if err != nil {
		return 0, 0, 0, err
	}
	bByte, err := f.nextU8()
	if err != nil {
		return 0, 0, 0, err
	}
	dst, err = v.register(dstByte)
	if err != nil {
		return 0, 0, 0, err
	}
	a, err = v.register(aByte)
	if err != nil {
		return 0, 0, 0, err
	}
	b, err = v.register(bByte)
	if err != nil {
		return 0, 0, 0, err
	}
	return dst, a, b, nil
}

func (v *VM) executeTernary(op isa.Opcode, f *fetcher) (StepOutcome, error) {
	dst, a, b, err := v.readTernaryOperands(f)
	if err != nil {
		return StepContinue, err
	}

	switch op {
	case isa.ADD:
		v.Registers[dst] = v.Registers[a] + v.Registers[b]
	case isa.SUB:
		v.Registers[dst] = v.Registers[a] - v.Registers[b]
	case isa.MUL:
		v.Registers[dst] = v.Registers[a] * v.Registers[b]
	case isa.DIV:
		if v.Registers[b] == 0 {
			return StepContinue, newRuntimeError(f.pc, "division by zero")
		}
		v.Registers[dst] = v.Registers[a] / v.Registers[b]
		v.Remainder = uint32(v.Registers[a] % v.Registers[b])
	case isa.EQ:
		v.Registers[dst] = boolToInt32(v.Registers[a] == v.Registers[b])
	case isa.NEQ:
		v.Registers[dst] = boolToInt32(v.Registers[a] != v.Registers[b])
	case isa.GT:
		v.Registers[dst] = boolToInt32(v.Registers[a] > v.Registers[b])
	case isa.LT:
		v.Registers[dst] = boolToInt32(v.Registers[a] < v.Registers[b])
	case isa.GTQ:
		v.Registers[dst] = boolToInt32(v.Registers[a] >= v.Registers[b])
	case isa.LTQ:
		v.Registers[dst] = boolToInt32(v.Registers[a] <= v.Registers[b])
	}
	return StepContinue, nil
}

func (v *VM) executeConditionalJump(op isa.Opcode, f *fetcher) (StepOutcome, error) {
	tByte, err := f.nextU8()
	if err != nil {
		return StepContinue, err
	}
	flagByte, err := f.nextU8()
	if err != nil {
		return StepContinue, err
	}
	t, err := v.register(tByte)
	if err != nil {
		return StepContinue, err
	}
	flag, err := v.register(flagByte)
	if err != nil {
		return StepContinue, err
	}

	switch op {
	case isa.JEQ:
		if v.Registers[flag] == 1 {
			addr, err := SafeInt32ToUint32(v.Registers[t])
			if err != nil {
				return StepContinue, newRuntimeError(f.pc, "JEQ target: %v", err)
			}
			f.pc = addr
			f.branched = true
		}
	case isa.JNEQ:
		if v.Registers[flag] == 0 {
			addr, err := SafeInt32ToUint32(v.Registers[t])
			if err != nil {
				return StepContinue, newRuntimeError(f.pc, "JNEQ target: %v", err)
			}
			f.pc = addr
			f.branched = true
		}
	}
	return StepContinue, nil
}

func boolToInt32(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// RunOnce executes a single step. It is the named alias spec.md §4.7
// gives to the one-step execution mode exposed to the REPL.
func (v *VM) RunOnce() (StepOutcome, error) {
	return v.Step()
}

// Run steps until a step reports StepHalted or StepIllegal, or MaxSteps
// (if non-zero) is reached.
func (v *VM) Run() (StepOutcome, error) {
	for {
		outcome, err := v.Step()
		if err != nil {
			return outcome, err
		}
		if outcome != StepContinue {
			return outcome, nil
		}
		if v.MaxSteps != 0 && v.StepCount >= v.MaxSteps {
			return StepContinue, newRuntimeError(v.PC, "exceeded maximum step count %d", v.MaxSteps)
		}
	}
}
