package trig

// Jump emits an instruction transferring control to target.
func (as *Assembler) Jump(target Operand) *Instr {
	return as.Emit(&Instr{Next: target})
}

// JumpIf transfers control to target when all conds hold, and continues with
// the following instruction otherwise.
//
// The branch is an instruction whose next-pointer is first reset to the
// fall-through, then rewritten to target by a conditional instruction.
func (as *Assembler) JumpIf(conds []Cond, target Operand) {
	fall := as.NewForward("endif")
	branch := &Instr{Name: "branch", Next: Addr(fall, 0)}
	as.Emit(&Instr{Actions: []Action{SetNext(branch, Addr(fall, 0))}})
	as.Emit(&Instr{Conds: conds, Actions: []Action{SetNext(branch, target)}})
	as.Emit(branch)
	as.Place(fall)
}

// If emits the instructions produced by then so that they only run when all
// conds hold.
func (as *Assembler) If(conds []Cond, then func()) {
	run, skip := as.NewForward("then"), as.NewForward("endif")
	as.JumpIf(conds, Addr(run, 0))
	as.Jump(Addr(skip, 0))
	as.Place(run)
	then()
	as.Place(skip)
}
