package trig

import (
	"fmt"

	"github.com/jcorbin/gotrig/internal/mem"
)

// Var is a single data cell used as a variable.
type Var struct {
	name   string
	init   Operand
	addr   uint
	placed bool
}

func (v *Var) address() (uint, bool) { return v.addr, v.placed }

func (v *Var) String() string { return v.name }

// Ref returns the address of the variable cell.
func (v *Var) Ref() Operand { return Addr(v, 0) }

func (v *Var) assignTo(dest Operand) Action { return CopyFrom(dest, v.Ref()) }

// Assign returns an action storing src into v: a variable source is copied,
// an operand source is stored as is.
func (v *Var) Assign(src Source) Action { return src.assignTo(v.Ref()) }

// SetTo returns an action storing n into v.
func (v *Var) SetTo(n mem.Word) Action { return Set(v.Ref(), Imm(n)) }

// Add returns an action adding n to v.
func (v *Var) Add(n mem.Word) Action { return Action{ActAdd, v.Ref(), Imm(n)} }

// Subtract returns an action subtracting n from v.
func (v *Var) Subtract(n mem.Word) Action { return Action{ActSubtract, v.Ref(), Imm(n)} }

// AddVar returns an action adding the value of src to v.
func (v *Var) AddVar(src *Var) Action { return Action{ActAddFrom, v.Ref(), src.Ref()} }

// SubtractVar returns an action subtracting the value of src from v.
func (v *Var) SubtractVar(src *Var) Action { return Action{ActSubtractFrom, v.Ref(), src.Ref()} }

// Exactly returns a condition true when v holds n.
func (v *Var) Exactly(n mem.Word) Cond { return Exactly(v.Ref(), Imm(n)) }

// AtLeast returns a condition true when v holds n or more.
func (v *Var) AtLeast(n mem.Word) Cond { return AtLeast(v.Ref(), Imm(n)) }

// AtMost returns a condition true when v holds n or less.
func (v *Var) AtMost(n mem.Word) Cond { return AtMost(v.Ref(), Imm(n)) }

// Source is a value that can be assigned to a cell: a *Var, whose content is
// copied at runtime, or an Operand, which is stored as is.
type Source interface {
	assignTo(dest Operand) Action
}

// Vars converts variables to sources.
func Vars(vars ...*Var) []Source {
	srcs := make([]Source, len(vars))
	for i, v := range vars {
		srcs[i] = v
	}
	return srcs
}

// Refs returns the cell addresses of variables.
func Refs(vars ...*Var) []Operand {
	refs := make([]Operand, len(vars))
	for i, v := range vars {
		refs[i] = v.Ref()
	}
	return refs
}

// SetVariables emits one instruction assigning each source to the cell at the
// corresponding destination, in order. Nothing is emitted for no pairs.
func (as *Assembler) SetVariables(dsts []Operand, srcs []Source) *Instr {
	if len(dsts) != len(srcs) {
		panic(Contractf("SetVariables", "matching assignment",
			"%v destinations for %v sources", len(dsts), len(srcs)))
	}
	if len(dsts) == 0 {
		return nil
	}
	acts := make([]Action, len(dsts))
	for i, dst := range dsts {
		acts[i] = srcs[i].assignTo(dst)
	}
	return as.Emit(&Instr{Actions: acts})
}

// Do emits one instruction running the given actions.
func (as *Assembler) Do(acts ...Action) *Instr {
	return as.Emit(&Instr{Actions: acts})
}

func (as *Assembler) String() string {
	return fmt.Sprintf("assembler(%v scopes, %v blocks, %v data)", len(as.scopes), len(as.blocks), len(as.data))
}
