package trig

import (
	"fmt"

	"github.com/jcorbin/gotrig/internal/mem"
)

// Instruction layout, in cells from the instruction address:
//
//	+0  header: instrMagic | ncond<<8 | nact
//	+1  next-pointer
//	... ncond conditions of {op, addr, value}
//	... nact actions of {op, dest, value}
const (
	HeaderCell = 0
	NextCell   = 1

	headerSize = 2
	fieldSize  = 3

	// MaxFields limits both the conditions and the actions of one instruction.
	MaxFields = 0xff

	instrMagic mem.Word = 0x7F000000
)

// CondOp selects a condition comparison.
type CondOp mem.Word

// Conditions compare the cell at their address with their value.
const (
	CondExactly CondOp = iota + 1
	CondAtLeast
	CondAtMost
)

// ActionOp selects an action.
type ActionOp mem.Word

// Actions modify the cell at their destination. The From forms and Copy read
// their value from the cell whose address is in the value field.
const (
	ActSetTo ActionOp = iota + 1
	ActAdd
	ActSubtract
	ActCopy
	ActAddFrom
	ActSubtractFrom
)

var condNames = map[CondOp]string{
	CondExactly: "==",
	CondAtLeast: ">=",
	CondAtMost:  "<=",
}

var actionNames = map[ActionOp]string{
	ActSetTo:        "=",
	ActAdd:          "+=",
	ActSubtract:     "-=",
	ActCopy:         "=",
	ActAddFrom:      "+=",
	ActSubtractFrom: "-=",
}

func (op CondOp) String() string {
	if s, ok := condNames[op]; ok {
		return s
	}
	return fmt.Sprintf("cond(%d)", mem.Word(op))
}

func (op ActionOp) String() string {
	if s, ok := actionNames[op]; ok {
		return s
	}
	return fmt.Sprintf("action(%d)", mem.Word(op))
}

// Indirect returns true if the action value is the address of a source cell.
func (op ActionOp) Indirect() bool {
	return op == ActCopy || op == ActAddFrom || op == ActSubtractFrom
}

// Cond is one instruction condition.
type Cond struct {
	Op    CondOp
	Addr  Operand
	Value Operand
}

// Action is one instruction action.
type Action struct {
	Op    ActionOp
	Dest  Operand
	Value Operand
}

// Exactly is true when the cell at addr holds v.
func Exactly(addr Operand, v Operand) Cond { return Cond{CondExactly, addr, v} }

// AtLeast is true when the cell at addr holds v or more.
func AtLeast(addr Operand, v Operand) Cond { return Cond{CondAtLeast, addr, v} }

// AtMost is true when the cell at addr holds v or less.
func AtMost(addr Operand, v Operand) Cond { return Cond{CondAtMost, addr, v} }

// Set stores value into the cell at dest.
func Set(dest, value Operand) Action { return Action{ActSetTo, dest, value} }

// CopyFrom stores the content of the cell at src into the cell at dest.
func CopyFrom(dest, src Operand) Action { return Action{ActCopy, dest, src} }

// SetNext rewrites the next-pointer of in to target.
func SetNext(in Addressable, target Operand) Action {
	return Set(Addr(in, NextCell), target)
}

// Instr is a single instruction: when all Conds hold its Actions run in
// order, then control moves to the instruction at its next-pointer, which is
// read after the actions ran.
//
// Fields must not change once the instruction is referenced or emitted, since
// cell offsets into it are computed from its shape.
type Instr struct {
	Name    string
	Conds   []Cond
	Actions []Action
	Next    Operand

	block  *block
	addr   uint
	placed bool
}

// Size returns the number of cells the instruction occupies.
func (in *Instr) Size() int {
	return headerSize + fieldSize*(len(in.Conds)+len(in.Actions))
}

// NextCell returns the address of the instruction's next-pointer cell.
func (in *Instr) NextCell() Operand { return Addr(in, NextCell) }

// ActionDest returns the address of the destination field of action i.
func (in *Instr) ActionDest(i int) Operand {
	return Addr(in, headerSize+fieldSize*(len(in.Conds)+i)+1)
}

// ActionValue returns the address of the value field of action i.
func (in *Instr) ActionValue(i int) Operand {
	return Addr(in, headerSize+fieldSize*(len(in.Conds)+i)+2)
}

func (in *Instr) address() (uint, bool) { return in.addr, in.placed }

func (in *Instr) String() string {
	switch {
	case in.Name != "":
		return in.Name
	case in.placed:
		return fmt.Sprintf("trigger@%v", in.addr)
	}
	return "trigger"
}

// encode writes the instruction into words, recording any operand that has
// no address yet.
func (in *Instr) encode(words []mem.Word, next Operand, missing func(Addressable)) {
	val := func(op Operand) mem.Word {
		v, un := op.resolve()
		if un != nil {
			missing(un)
		}
		return v
	}
	words[HeaderCell] = instrMagic | mem.Word(len(in.Conds))<<8 | mem.Word(len(in.Actions))
	words[NextCell] = val(next)
	i := headerSize
	for _, cond := range in.Conds {
		words[i], words[i+1], words[i+2] = mem.Word(cond.Op), val(cond.Addr), val(cond.Value)
		i += fieldSize
	}
	for _, act := range in.Actions {
		words[i], words[i+1], words[i+2] = mem.Word(act.Op), val(act.Dest), val(act.Value)
		i += fieldSize
	}
}

// DecodeHeader decodes an instruction header cell, returning ok=false if the
// cell does not start an instruction.
func DecodeHeader(w mem.Word) (ncond, nact int, ok bool) {
	if w&^0xffff != instrMagic {
		return 0, 0, false
	}
	return int(w>>8) & 0xff, int(w) & 0xff, true
}

// FieldOffset returns the cell offset of condition or action field i of an
// instruction with ncond conditions; actions are numbered after conditions.
func FieldOffset(i int) int { return headerSize + fieldSize*i }
