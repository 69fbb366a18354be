// Package fptr compiles function bodies and function pointers for a trigger
// runtime that has no call stack.
//
// Each function body is called through a single stub, its indirect caller,
// which copies arguments in from a storage pool shared by every function of
// the same arity, runs the body, and copies return values out to the
// matching return pool. A function pointer is a two-cell record holding a
// stub entry and the address of the stub's final next-pointer; invoking it
// patches a jump instruction with both, so that control enters the stub and
// comes back right after the call site.
//
// Nothing here is reentrant: the pools, each body's variables, its exit
// next-pointer and its stub's continuation are all single slots. A body that
// needs an argument slot to survive a nested call must copy it first, and a
// body must not be entered again before it returns.
package fptr

import (
	"github.com/jcorbin/gotrig/internal/trig"
)

// ContractError reports a compile-time contract violation, such as binding a
// pointer to a function of another prototype.
type ContractError = trig.ContractError

// Option configures a Session.
type Option interface{ apply(s *Session) }

type withLogfn func(mess string, args ...interface{})

func (logfn withLogfn) apply(s *Session) { s.logfn = logfn }

// WithLogf sets a function to trace storage, stub and binding decisions.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

// Session holds the state shared by one compilation: the storage pools, the
// indirect caller cache and the function id sequence. Sessions are
// independent of each other, and each must only be used by one goroutine.
type Session struct {
	as    *trig.Assembler
	logfn func(mess string, args ...interface{})

	pools   map[poolKey]*Storage
	callers map[uint64]caller
	lastID  uint64
	builds  int
}

// NewSession creates a session emitting into as.
func NewSession(as *trig.Assembler, opts ...Option) *Session {
	s := &Session{
		as:      as,
		pools:   make(map[poolKey]*Storage),
		callers: make(map[uint64]caller),
	}
	for _, opt := range opts {
		if opt != nil {
			opt.apply(s)
		}
	}
	return s
}

// Assembler returns the assembler the session emits into.
func (s *Session) Assembler() *trig.Assembler { return s.as }

// Compile runs build, returning any contract violation it panics with as an
// error.
func (s *Session) Compile(name string, build func()) error {
	return trig.Guard(name, build)
}

// Link links everything emitted so far.
func (s *Session) Link() (*trig.Image, error) { return s.as.Link() }

// CallerBuilds returns how many indirect callers have been built.
func (s *Session) CallerBuilds() int { return s.builds }

func (s *Session) logf(mess string, args ...interface{}) {
	if s.logfn != nil {
		s.logfn(mess, args...)
	}
}

// copyOut copies vars into fresh variables, so that the caller keeps them
// even if the originals are overwritten by a later call.
func (s *Session) copyOut(name string, vars []*trig.Var) []*trig.Var {
	if len(vars) == 0 {
		return nil
	}
	tmps := s.as.NewVars(name+".result", len(vars))
	s.as.SetVariables(trig.Refs(tmps...), trig.Vars(vars...))
	return tmps
}
