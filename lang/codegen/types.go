// Package codegen lowers an ast.File into a RelocatableCommandList: a flat
// byte stream of opcode commands annotated with symbolic jump targets and
// labelled anchor references, resolved later by lang/relocator (spec.md
// §3, §4.5).
//
// Code emission targets a flat []byte with a side opcode table and
// scope-tracking references, adapted into a two-pass relocatable model:
// generation never patches addresses directly, it only records where a
// later resolution pass must.
package codegen

import "github.com/pactlang/pactc/lang/decorator"

// Opcode is a 2-byte (root, sub) pair, combined MSB-first when written to
// the command stream (spec.md §4.5).
type Opcode struct {
	Root OpRoot
	Sub  byte
}

// OpRoot is the primary opcode selector.
type OpRoot byte

const (
	OpNop OpRoot = iota
	OpPushLiteral
	OpLoad
	OpStore
	OpDeclare
	OpBinary
	OpUnaryNot
	OpPop
	OpJumpIfFalse
	OpJump
	OpCall
	OpReturn
)

func (r OpRoot) String() string {
	switch r {
	case OpNop:
		return "NOP"
	case OpPushLiteral:
		return "PUSHL"
	case OpLoad:
		return "LOAD"
	case OpStore:
		return "STORE"
	case OpDeclare:
		return "DECLARE"
	case OpBinary:
		return "BINARY"
	case OpUnaryNot:
		return "NOT"
	case OpPop:
		return "POP"
	case OpJumpIfFalse:
		return "JUMPIFFALSE"
	case OpJump:
		return "JUMP"
	case OpCall:
		return "CALL"
	case OpReturn:
		return "RETURN"
	default:
		return "UNKNOWN"
	}
}

// litSub tags the payload shape of an OpPushLiteral command.
type litSub byte

const (
	litInt litSub = iota
	litFloat
	litBool
	litString
)

// slotSize is the fixed width, in bytes, of a variable-slot or
// string-pool-index payload (not a relocated jump address — those use
// addr_len, see lang/relocator).
const slotSize = 4

// AddrLen is the magnitude width, in bytes, of a relocated jump address
// placeholder (spec.md §4.6's addr_len parameter to apply_relocation,
// fixed here rather than threaded as a runtime parameter since a single
// pactc build always targets one address width). The package file's
// address_alignment metadata field (spec.md §6) is set to this value.
const AddrLen = 4

// TargetType is the RelocationTargetType sum of spec.md §3.
type TargetType int

const (
	Relative TargetType = iota
	DomainHead
	BreakDomain
	IgnoreDomain
	EnterFunction
	BreakIteration
	IterationHead
	Undefined
)

func (t TargetType) String() string {
	switch t {
	case Relative:
		return "Relative"
	case DomainHead:
		return "DomainHead"
	case BreakDomain:
		return "BreakDomain"
	case IgnoreDomain:
		return "IgnoreDomain"
	case EnterFunction:
		return "EnterFunction"
	case BreakIteration:
		return "BreakIteration"
	case IterationHead:
		return "IterationHead"
	case Undefined:
		return "Undefined"
	default:
		return "?"
	}
}

// RelocationTarget is a hole in Commands awaiting an address (spec.md §3).
type RelocationTarget struct {
	Type   TargetType
	Pos    int // command_array_position: the command this target belongs to
	Offset int // byte offset from Pos to the first placeholder byte

	// N is the payload for BreakDomain(n) / IgnoreDomain(n).
	N int
	// FuncName is the payload for EnterFunction(id).
	FuncName string
	// RelativeDelta is the payload for Relative(x).
	RelativeDelta int32

	// RelocatedAddress is written by lang/relocator's pass 1.
	RelocatedAddress int32
}

// ReferenceType is the RelocationReferenceType sum of spec.md §3.
type ReferenceType int

const (
	RefFunctionEntrance ReferenceType = iota
	RefFunctionEnd
	RefDomainCreate
	RefDomainDestroy
	RefIterationHead
	RefIterationInterrupt
	RefElseEntrance
	RefEndElse
)

func (t ReferenceType) String() string {
	switch t {
	case RefFunctionEntrance:
		return "FunctionEntrance"
	case RefFunctionEnd:
		return "FunctionEnd"
	case RefDomainCreate:
		return "DomainCreate"
	case RefDomainDestroy:
		return "DomainDestroy"
	case RefIterationHead:
		return "IterationHead"
	case RefIterationInterrupt:
		return "IterationInterrupt"
	case RefElseEntrance:
		return "ElseEntrance"
	case RefEndElse:
		return "EndElse"
	default:
		return "?"
	}
}

// RelocationReference is a labelled anchor point in Commands (spec.md §3).
type RelocationReference struct {
	Type ReferenceType
	Pos  int
}

// Credential bundles the targets and references of one command list
// (spec.md §3's RelocationCredential).
type Credential struct {
	Targets    []RelocationTarget
	References []RelocationReference
}

// FunctionEntry is one row of the function table: a function's name and the
// slot (byte offset into Commands) its code begins at. External marks a
// placeholder row recorded for a `link` statement whose body was not
// present in the compilation unit that produced this table (spec.md §4.4's
// supplemented `link` feature) — it carries no usable Slot until a later
// Combine call replaces it in place with the defining unit's real entry.
type FunctionEntry struct {
	Name     string
	Slot     uint32
	External bool
}

// CommandList is spec.md §3's RelocatableCommandList.
type CommandList struct {
	Commands       []byte
	CommandEntries []int // offsets of each emitted function's first byte
	Credential     Credential
	StringPool     *StringPool
	FunctionTable  []FunctionEntry
}

// operatorByte packs a decorator.Operator into the single sub byte an
// OpBinary command carries (OpUnaryNot is emitted with sub byte 0).
func operatorByte(op decorator.Operator) byte {
	return byte(op.Sub)
}
