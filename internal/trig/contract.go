package trig

import (
	"fmt"

	"github.com/jcorbin/gotrig/internal/panicerr"
)

// ContractError reports misuse of the assembler, raised by panic at the point
// of misuse.
type ContractError struct {
	Subject   string
	Invariant string
	Message   string
}

// Contractf creates a ContractError naming the subject and the invariant
// it violates.
func Contractf(subject, invariant, mess string, args ...interface{}) *ContractError {
	return &ContractError{subject, invariant, fmt.Sprintf(mess, args...)}
}

func (ce *ContractError) Error() string {
	return fmt.Sprintf("%v: %v violated: %v", ce.Subject, ce.Invariant, ce.Message)
}

// Guard runs f, returning any panic raised by it, such as a *ContractError,
// as an error.
func Guard(name string, f func()) error {
	return panicerr.Do(name, f)
}
