// Package record packs fixed-shape records of named fields into consecutive
// data cells.
package record

import (
	"fmt"

	"github.com/jcorbin/gotrig/internal/trig"
)

// Layout describes a record shape: one cell per named field, in order.
type Layout struct {
	name   string
	fields []string
	index  map[string]int
}

// NewLayout creates a layout; field names must be unique.
func NewLayout(name string, fields ...string) *Layout {
	l := &Layout{name: name, fields: fields, index: make(map[string]int, len(fields))}
	for i, field := range fields {
		if _, dup := l.index[field]; dup {
			panic(trig.Contractf(name, "unique fields", "duplicate field %q", field))
		}
		l.index[field] = i
	}
	return l
}

// Name returns the layout name.
func (l *Layout) Name() string { return l.name }

// Size returns the number of cells of a record.
func (l *Layout) Size() int { return len(l.fields) }

// Fields returns the field names in cell order.
func (l *Layout) Fields() []string { return l.fields }

// Offset returns the cell offset of field.
func (l *Layout) Offset(field string) int {
	i, ok := l.index[field]
	if !ok {
		panic(trig.Contractf(l.name, "known field", "no field %q", field))
	}
	return i
}

// New allocates a record in data cells, initialized from init which is
// either empty, leaving every cell 0, or holds one operand per field.
func (l *Layout) New(as *trig.Assembler, name string, init ...trig.Operand) *Record {
	if len(init) != 0 && len(init) != len(l.fields) {
		panic(trig.Contractf(name, "record initializer",
			"%v values for %v fields of %v", len(init), len(l.fields), l.name))
	}
	r := &Record{layout: l, name: name, cells: make([]*trig.Var, len(l.fields))}
	for i, field := range l.fields {
		var val trig.Operand
		if len(init) > 0 {
			val = init[i]
		}
		r.cells[i] = as.NewData(fmt.Sprintf("%v.%v", name, field), val)
	}
	return r
}

// Record is a layout instance; its cells are consecutive.
type Record struct {
	layout *Layout
	name   string
	cells  []*trig.Var
}

// Layout returns the record layout.
func (r *Record) Layout() *Layout { return r.layout }

func (r *Record) String() string { return r.name }

// Addr returns the address of the first cell.
func (r *Record) Addr() trig.Operand { return r.cells[0].Ref() }

// Cells returns the field cells in layout order.
func (r *Record) Cells() []*trig.Var { return r.cells }

// Field returns the cell of the named field.
func (r *Record) Field(field string) *trig.Var { return r.cells[r.layout.Offset(field)] }

// Set returns an action storing src into the named field.
func (r *Record) Set(field string, src trig.Source) trig.Action {
	return r.Field(field).Assign(src)
}

// Assign emits one instruction storing one source per field.
func (r *Record) Assign(as *trig.Assembler, srcs ...trig.Source) *trig.Instr {
	return as.SetVariables(trig.Refs(r.cells...), srcs)
}

// CopyFrom emits one instruction copying every field of other, which must
// share the layout.
func (r *Record) CopyFrom(as *trig.Assembler, other *Record) *trig.Instr {
	if other.layout != r.layout {
		panic(trig.Contractf(r.name, "same layout",
			"cannot copy a %v into a %v", other.layout.name, r.layout.name))
	}
	return r.Assign(as, trig.Vars(other.cells...)...)
}
