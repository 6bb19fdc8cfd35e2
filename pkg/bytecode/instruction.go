package bytecode

// ScopeKind indexes the VM's per-frame scope array.
type ScopeKind uint8

const (
	ScopeArguments ScopeKind = iota
	ScopeLocal
	ScopeClosure
	ScopeGlobal
	numScopeKinds
)

// NumScopeKinds is the size a VM's per-frame scope-pointer array must have.
const NumScopeKinds = int(numScopeKinds)

// OperandDescriptor is an encoded slot reference resolved against the
// current frame's scope array: "a pure function of
// (vm, descriptor) -> *value".
type OperandDescriptor struct {
	Scope ScopeKind
	Index uint32
}

// Operands reports how many operand slots (0-3) an instruction carries.
type OperandsKind uint8

const (
	Operands0 OperandsKind = iota
	Operands1
	Operands2
	Operands3
)

// Instruction is one decoded bytecode instruction. A real wire format
// would pack this as a byte stream; this core represents the already-
// decoded stream as a struct slice (Chunk.Code) instead, since the
// encoder/decoder belong to a compiler this package doesn't implement —
// only the operand-addressing convention and the two-partition dispatch
// semantics are this package's testable surface. See DESIGN.md.
type Instruction struct {
	Op       OpCode
	Operands OperandsKind

	// Operand2/Operand3 are value-slot descriptors, present for 2- and
	// 3-operand forms respectively.
	Operand2 OperandDescriptor
	Operand3 OperandDescriptor

	// Dest names the slot a result-producing opcode's handler writes
	// into. Unused for non-result opcodes.
	Dest OperandDescriptor

	// Tail fields, instruction-specific.
	Offset         int32  // jump / test-jump / try / finally
	BreakOffset    int32  // FINALLY
	ContinueOffset int32  // FINALLY
	Length         uint32 // ARRAY literal
	Ctor           bool   // ARRAY / METHOD_FRAME / frame-creation forms
	NArgs          uint32 // FUNCTION_FRAME / METHOD_FRAME
	Name           string // REFERENCE_ERROR identifier name; literal key of PROPERTY_GET/SET/INIT, DELETE and METHOD_FRAME
	File           string // REFERENCE_ERROR source file
	Line           int    // REFERENCE_ERROR source line
	Lambda         uint32 // FUNCTION: index into Chunk.Functions
	Pattern        uint32 // REGEXP: index into Chunk.Patterns
}

// FunctionProto is one entry of a Chunk's function pool: everything the
// FUNCTION opcode needs to instantiate a closure, decoupled from the
// heap representation (*vm.Lambda) a higher package builds around it.
type FunctionProto struct {
	Name         string
	Entry        uint32
	NumArguments int
	NumLocals    int
	File         string
}

// PatternProto is one entry of a Chunk's regexp pattern pool.
type PatternProto struct {
	Source string
	Flags  string
}

// Chunk is a compiled instruction stream plus the function/pattern pools
// its FUNCTION/REGEXP instructions index into. Literal numbers and
// strings reach a frame's scope slots directly (the GLOBAL scope, or a
// preloaded LOCAL slot) rather than through a side constant pool — this
// package has no encoder, so it never needs one of its own. It is the
// "validly-encoded instruction stream" the dispatch loop assumes.
type Chunk struct {
	Code      []Instruction
	Functions []FunctionProto
	Patterns  []PatternProto
}
