package trig

import (
	"fmt"
	"strings"

	"github.com/jcorbin/gotrig/internal/mem"
)

// Base is the address of the first linked instruction; lower cells are left
// unused so that a zero next-pointer can mean "halt".
const Base = 16

// Option configures an Assembler.
type Option interface{ apply(as *Assembler) }

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(as *Assembler) { as.logfn = logfn }

// WithLogf sets a function to trace emission and linking.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

// Assembler accumulates instructions into scopes, and data cells, then links
// them into an Image.
//
// Every scope is a block of instructions that is laid out contiguously; the
// main scope first, then other scopes in the order they were opened.
// Instructions with an empty next-pointer fall through to the following
// instruction of their block, the last one to 0.
type Assembler struct {
	logfn func(mess string, args ...interface{})

	main     *block
	scopes   []*block
	blocks   []*block
	data     []*Var
	forwards []*Forward

	linked bool
}

type block struct {
	name    string
	instrs  []*Instr
	pending []*Forward

	// forwards created before the block was opened
	forwardMark int
}

// NewAssembler creates an assembler with an open main scope.
func NewAssembler(opts ...Option) *Assembler {
	as := &Assembler{}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(as)
		}
	}
	as.main = as.openBlock("main")
	return as
}

func (as *Assembler) logf(mess string, args ...interface{}) {
	if as.logfn != nil {
		as.logfn(mess, args...)
	}
}

func (as *Assembler) openBlock(name string) *block {
	b := &block{name: name, forwardMark: len(as.forwards)}
	as.blocks = append(as.blocks, b)
	as.scopes = append(as.scopes, b)
	return b
}

func (as *Assembler) current() *block {
	as.checkOpen("emit")
	return as.scopes[len(as.scopes)-1]
}

func (as *Assembler) checkOpen(what string) {
	if as.linked {
		panic(Contractf(what, "open assembler", "assembler already linked"))
	}
}

// PushScope opens a new scope; instructions emitted until the matching
// PopScope are placed contiguously, apart from the enclosing scope.
func (as *Assembler) PushScope(name string) {
	as.checkOpen("scope " + name)
	as.openBlock(name)
	as.logf("scope %v {", name)
}

// PopScope closes the innermost scope. Forwards still waiting for the next
// instruction of that scope are resolved to a final empty instruction.
func (as *Assembler) PopScope() {
	b := as.current()
	if len(as.scopes) == 1 {
		panic(Contractf(b.name, "balanced scopes", "cannot pop the main scope"))
	}
	as.flush(b)
	as.scopes = as.scopes[:len(as.scopes)-1]
	as.logf("} scope %v: %v instructions", b.name, len(b.instrs))
}

// DropScope closes the innermost scope, discarding every instruction emitted
// in it, along with every forward created since it opened that is still
// unresolved or refers into it. It undoes a scope whose building failed
// part way; data cells allocated meanwhile are kept.
func (as *Assembler) DropScope() {
	b := as.current()
	if len(as.scopes) == 1 {
		panic(Contractf(b.name, "balanced scopes", "cannot drop the main scope"))
	}
	as.scopes = as.scopes[:len(as.scopes)-1]
	for i, ob := range as.blocks {
		if ob == b {
			as.blocks = append(as.blocks[:i], as.blocks[i+1:]...)
			break
		}
	}
	kept := as.forwards[:b.forwardMark]
	for _, f := range as.forwards[b.forwardMark:] {
		if !f.refersInto(b) {
			kept = append(kept, f)
		}
	}
	as.forwards = kept
	as.logf("} scope %v dropped: %v instructions", b.name, len(b.instrs))
}

// Scope runs f inside a new scope.
func (as *Assembler) Scope(name string, f func()) {
	as.PushScope(name)
	defer as.PopScope()
	f()
}

func (as *Assembler) flush(b *block) {
	if len(b.pending) > 0 {
		as.emitIn(b, &Instr{})
	}
}

// Emit appends in to the current scope, resolving any forwards waiting for
// it. An instruction may only be emitted once.
func (as *Assembler) Emit(in *Instr) *Instr {
	return as.emitIn(as.current(), in)
}

func (as *Assembler) emitIn(b *block, in *Instr) *Instr {
	if in.block != nil {
		panic(Contractf(in.String(), "emit once", "already emitted in scope %v", in.block.name))
	}
	if len(in.Conds) > MaxFields || len(in.Actions) > MaxFields {
		panic(Contractf(in.String(), "instruction shape",
			"%v conditions and %v actions exceed %v", len(in.Conds), len(in.Actions), MaxFields))
	}
	in.block = b
	b.instrs = append(b.instrs, in)
	for _, f := range b.pending {
		f.Resolve(in)
	}
	b.pending = nil
	as.logf("emit %v/%v: %v", b.name, len(b.instrs)-1, in)
	return in
}

// NewForward creates a forward reference; it must be resolved, or placed,
// before Link.
func (as *Assembler) NewForward(name string) *Forward {
	f := &Forward{name: name}
	as.forwards = append(as.forwards, f)
	return f
}

// Place resolves f to the next instruction emitted in the current scope.
func (as *Assembler) Place(f *Forward) {
	b := as.current()
	if f.Resolved() {
		panic(Contractf(f.String(), "single resolution", "cannot place a resolved forward"))
	}
	b.pending = append(b.pending, f)
}

// Next returns a new forward to the next instruction emitted in the current
// scope.
func (as *Assembler) Next() *Forward {
	f := as.NewForward(fmt.Sprintf("%v/%v", as.current().name, len(as.current().instrs)))
	as.Place(f)
	return f
}

// NewData allocates a data cell with an initial value. Data cells are laid out
// after all code, in allocation order.
func (as *Assembler) NewData(name string, init Operand) *Var {
	as.checkOpen("data " + name)
	if init.IsZero() {
		init = Imm(0)
	}
	v := &Var{name: name, init: init}
	as.data = append(as.data, v)
	return v
}

// NewVar allocates a variable with an initial value.
func (as *Assembler) NewVar(name string, init mem.Word) *Var {
	return as.NewData(name, Imm(init))
}

// NewVars allocates n variables, named after prefix, initialized to 0.
func (as *Assembler) NewVars(prefix string, n int) []*Var {
	vars := make([]*Var, n)
	for i := range vars {
		vars[i] = as.NewVar(fmt.Sprintf("%v[%v]", prefix, i), 0)
	}
	return vars
}

// Link lays out every scope and data cell, and encodes them into an Image.
// Any forward or operand left without an address fails the whole link with
// an *UnresolvedError.
func (as *Assembler) Link() (*Image, error) {
	if as.linked {
		return nil, fmt.Errorf("assembler already linked")
	}
	if n := len(as.scopes); n > 1 {
		names := make([]string, 0, n-1)
		for _, b := range as.scopes[1:] {
			names = append(names, b.name)
		}
		return nil, fmt.Errorf("cannot link with open scopes: %v", strings.Join(names, ", "))
	}
	if len(as.main.instrs) == 0 || len(as.main.pending) > 0 {
		as.emitIn(as.main, &Instr{Name: "halt"})
	}
	as.linked = true

	addr := uint(Base)
	for _, b := range as.blocks {
		for _, in := range b.instrs {
			in.addr, in.placed = addr, true
			addr += uint(in.Size())
		}
	}
	codeEnd := addr
	for _, v := range as.data {
		v.addr, v.placed = addr, true
		addr++
	}

	img := &Image{
		Base:    Base,
		CodeEnd: codeEnd,
		Words:   make([]mem.Word, addr-Base),
		Labels:  make(map[uint]string),
	}
	img.Entry, _ = as.main.instrs[0].address()

	var unresolved UnresolvedError
	for _, f := range as.forwards {
		if _, ok := f.address(); !ok {
			unresolved.add(f)
		}
	}

	for _, b := range as.blocks {
		for i, in := range b.instrs {
			next := in.Next
			if next.IsZero() {
				if i+1 < len(b.instrs) {
					next = Addr(b.instrs[i+1], 0)
				} else {
					next = Imm(0)
				}
			}
			in.encode(img.Words[in.addr-Base:][:in.Size()], next, unresolved.add)
			img.instrs = append(img.instrs, in.addr)
			switch {
			case in.Name != "":
				img.label(in.addr, in.Name)
			case i == 0:
				img.label(in.addr, b.name)
			}
		}
	}
	for _, v := range as.data {
		val, un := v.init.resolve()
		if un != nil {
			unresolved.add(un)
		}
		img.Words[v.addr-Base] = val
		img.label(v.addr, v.name)
	}
	for _, f := range as.forwards {
		if addr, ok := f.address(); ok {
			img.label(addr, f.String())
		}
	}

	if len(unresolved.Names) > 0 {
		as.logf("link failed: %v", &unresolved)
		return nil, &unresolved
	}
	as.logf("linked %v instructions and %v data cells, entry @%v", len(img.instrs), len(as.data), img.Entry)
	return img, nil
}

// UnresolvedError lists everything referenced but never given an address.
type UnresolvedError struct {
	Names []string

	seen map[Addressable]bool
}

func (ue *UnresolvedError) add(a Addressable) {
	if ue.seen == nil {
		ue.seen = make(map[Addressable]bool)
	}
	if !ue.seen[a] {
		ue.seen[a] = true
		ue.Names = append(ue.Names, a.String())
	}
}

func (ue *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved references: %v", strings.Join(ue.Names, ", "))
}
