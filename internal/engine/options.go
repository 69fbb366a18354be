package engine

// DefaultStepLimit bounds the number of instructions a Run may execute.
const DefaultStepLimit = 1 << 20

// Option configures an Engine.
type Option interface{ apply(e *Engine) }

var defaults = []Option{
	withStepLimit(DefaultStepLimit),
}

type withLogfn func(mess string, args ...interface{})
type withStepLimit uint
type withMemLimit uint

func (logfn withLogfn) apply(e *Engine) { e.logfn = logfn }
func (lim withStepLimit) apply(e *Engine) { e.stepLimit = uint(lim) }
func (lim withMemLimit) apply(e *Engine) { e.mem.Limit = uint(lim) }

// WithLogf sets a function to trace every executed instruction.
func WithLogf(logfn func(mess string, args ...interface{})) Option { return withLogfn(logfn) }

// WithStepLimit bounds the number of executed instructions; 0 disables the
// bound, leaving a non-terminating program to run until its context ends.
func WithStepLimit(limit uint) Option { return withStepLimit(limit) }

// WithMemLimit limits addressable memory.
func WithMemLimit(limit uint) Option { return withMemLimit(limit) }
