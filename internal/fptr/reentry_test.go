package fptr_test

import (
	"testing"

	"github.com/jcorbin/gotrig/internal/fptr"
	"github.com/jcorbin/gotrig/internal/trig"
)

// Bodies that read the shared argument storage directly see it overwritten
// by any nested call of the same arity; copying it first keeps the value.
func TestFuncPtr_nestedCallSharesStorage(t *testing.T) {
	for _, tc := range []struct {
		name string
		save bool
		want int32
	}{
		{"direct read", false, 7},
		{"saved copy", true, 5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			inner := h.s.Define("inner", 1, 1, doubleBody)
			q := h.s.NewFuncPtrTo("q", 1, 1, inner)

			var nested []*trig.Var
			outer := h.s.Define("outer", 1, 1, func(s *fptr.Session, args []*trig.Var) []trig.Source {
				as := s.Assembler()
				shared := s.ArgStorage(1).Vars[0]
				seen := as.NewVar("seen", 0)
				if tc.save {
					as.Do(seen.Assign(shared))
				}
				nested = q.Invoke(trig.Imm(7))
				if !tc.save {
					as.Do(seen.Assign(shared))
				}
				return trig.Vars(seen)
			})

			var r []*trig.Var
			h.compile(func() {
				p := h.s.NewFuncPtrTo("p", 1, 1, outer)
				r = p.Invoke(trig.Imm(5))
			})

			eng := h.run()
			expectValues(t, eng, r, tc.want)
			expectValues(t, eng, nested, 14)
			expectValues(t, eng, outer.Params(), 5)
		})
	}
}
