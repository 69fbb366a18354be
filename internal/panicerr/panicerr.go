// Package panicerr lets code that halts by panicking be driven from an
// ordinary error-returning API.
package panicerr

import (
	"errors"
	"fmt"
	"runtime/debug"
)

// Error is a recovered panic, or a goroutine exit when Exit is set.
type Error struct {
	Name  string
	Value interface{}
	Stack []byte
	Exit  bool
}

func (e *Error) Error() string { return fmt.Sprint(e) }

// Format prints the panic stack too under the %+v verb.
func (e *Error) Format(f fmt.State, c rune) {
	name := e.Name
	if name == "" {
		name = "goroutine"
	}
	if e.Exit {
		fmt.Fprintf(f, "%v exited", name)
		return
	}
	fmt.Fprintf(f, "%v panicked: %v", name, e.Value)
	if c == 'v' && f.Flag('+') {
		fmt.Fprintf(f, "\n%s", e.Stack)
	}
}

// Unwrap returns the panic value if it is an error.
func (e *Error) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// Recover runs f in a new goroutine, returning its error, or an *Error if f
// panics or calls runtime.Goexit.
func Recover(name string, f func() error) (err error) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		returned := false
		defer func() {
			if returned {
				return
			}
			if v := recover(); v != nil {
				err = &Error{Name: name, Value: v, Stack: debug.Stack()}
			} else {
				err = &Error{Name: name, Exit: true}
			}
		}()
		err = f()
		returned = true
	}()
	<-done
	return err
}

// Do runs f like Recover, for functions that only fail by panicking.
func Do(name string, f func()) error {
	return Recover(name, func() error {
		f()
		return nil
	})
}

// As returns the *Error recovered somewhere in err's chain.
func As(err error) (*Error, bool) {
	var pe *Error
	ok := errors.As(err, &pe)
	return pe, ok
}
