package trig

import (
	"fmt"

	"github.com/jcorbin/gotrig/internal/mem"
)

// Addressable is anything given a cell address at link time: instructions,
// data variables, and forward references to either.
type Addressable interface {
	address() (uint, bool)
	String() string
}

// Address returns the linked address of a, and whether it has one yet.
func Address(a Addressable) (uint, bool) { return a.address() }

type operandKind uint8

const (
	noOperand operandKind = iota
	immOperand
	addrOperand
)

// Operand is the value of an instruction field: either an immediate word, or
// the address of something placed at link time plus a cell offset.
//
// The zero Operand is empty; used as a next-pointer it means "fall through"
// to the following instruction of the same scope.
type Operand struct {
	kind operandKind
	imm  mem.Word
	base Addressable
	off  int
}

// Imm returns an immediate operand.
func Imm(v mem.Word) Operand { return Operand{kind: immOperand, imm: v} }

// Addr returns an operand holding the address of a, offset by off cells.
func Addr(a Addressable, off int) Operand {
	return Operand{kind: addrOperand, base: a, off: off}
}

// IsZero returns true for the empty operand.
func (op Operand) IsZero() bool { return op.kind == noOperand }

// resolve returns the operand value, or the Addressable that has no address yet.
func (op Operand) resolve() (mem.Word, Addressable) {
	switch op.kind {
	case immOperand:
		return op.imm, nil
	case addrOperand:
		addr, ok := op.base.address()
		if !ok {
			return 0, op.base
		}
		return mem.Word(int(addr) + op.off), nil
	}
	return 0, nil
}

func (op Operand) assignTo(dest Operand) Action { return Set(dest, op) }

func (op Operand) String() string {
	switch op.kind {
	case immOperand:
		return fmt.Sprint(op.imm)
	case addrOperand:
		if op.off != 0 {
			return fmt.Sprintf("&%v%+d", op.base, op.off)
		}
		return fmt.Sprintf("&%v", op.base)
	}
	return "_"
}

// Forward is a reference to an instruction or cell that has not been placed
// yet. It may be used in operands right away; it must be resolved before the
// program is linked.
type Forward struct {
	name   string
	target Addressable
}

// Resolve binds f to a; resolving a forward twice is a contract violation.
func (f *Forward) Resolve(a Addressable) {
	if f.target != nil {
		panic(Contractf(f.String(), "single resolution", "already resolved to %v", f.target))
	}
	if a == Addressable(f) {
		panic(Contractf(f.String(), "single resolution", "cannot resolve to itself"))
	}
	f.target = a
}

// refersInto returns true if f is unresolved, or ends up at an instruction
// of b.
func (f *Forward) refersInto(b *block) bool {
	var a Addressable = f
	for {
		g, ok := a.(*Forward)
		if !ok {
			break
		}
		if g.target == nil {
			return true
		}
		a = g.target
	}
	in, ok := a.(*Instr)
	return ok && in.block == b
}

// Resolved returns true once Resolve has been called.
func (f *Forward) Resolved() bool { return f.target != nil }

func (f *Forward) address() (uint, bool) {
	if f.target == nil {
		return 0, false
	}
	return f.target.address()
}

func (f *Forward) String() string {
	if f.name == "" {
		return "forward"
	}
	return f.name
}
