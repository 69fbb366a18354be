package fptr

import (
	"fmt"

	"github.com/jcorbin/gotrig/internal/trig"
)

// PoolKind distinguishes argument from return storage.
type PoolKind uint8

// Storage pool kinds.
const (
	ArgPool PoolKind = iota + 1
	RetPool
)

func (kind PoolKind) String() string {
	switch kind {
	case ArgPool:
		return "args"
	case RetPool:
		return "rets"
	}
	return fmt.Sprintf("pool(%d)", uint8(kind))
}

type poolKey struct {
	kind  PoolKind
	arity int
}

// Storage is the shared sequence of variables passing arguments into, or
// return values out of, every function of one arity.
type Storage struct {
	Kind PoolKind
	Vars []*trig.Var
}

// Arity returns the number of variables.
func (st *Storage) Arity() int { return len(st.Vars) }

// StorageFor returns the storage of kind for arity, allocating its variables
// on first use; later calls return the same *Storage.
func (s *Session) StorageFor(kind PoolKind, arity int) *Storage {
	if arity < 0 {
		panic(trig.Contractf(kind.String(), "non-negative arity", "arity %v", arity))
	}
	key := poolKey{kind, arity}
	if st, ok := s.pools[key]; ok {
		return st
	}
	st := &Storage{
		Kind: kind,
		Vars: s.as.NewVars(fmt.Sprintf("%v%v", kind, arity), arity),
	}
	s.pools[key] = st
	s.logf("storage %v%v allocated", kind, arity)
	return st
}

// ArgStorage returns the argument storage for n arguments.
func (s *Session) ArgStorage(n int) *Storage { return s.StorageFor(ArgPool, n) }

// RetStorage returns the return storage for n return values.
func (s *Session) RetStorage(n int) *Storage { return s.StorageFor(RetPool, n) }
