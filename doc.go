/*
Command gotrig compiles programs that call functions through pointers, for a
runtime made only of triggers, and runs them on a reference engine.

A trigger is an instruction of conditions, actions and one next-pointer, all
stored in memory cells. The runtime has no call stack and no indirect jump;
the only way to go somewhere decided at run time is to write an address into a
next-pointer cell before reaching it.

Calls

Every function body is compiled once, into its own block, ending with an exit
trigger. A direct call rewrites the exit trigger's next-pointer to the trigger
after the call site, then jumps to the body.

Calls through a pointer go through a stub, one per body, built the first time
a pointer refers to the body. The stub copies arguments from the storage
shared by all functions of that arity into the body's own variables, calls the
body directly, copies results out to the shared return storage, and ends with
a trigger whose next-pointer returns to the call site.

A pointer is two cells: the stub entry, and the address of the stub's last
next-pointer. An invocation is two triggers: one copies those cells into the
second one's next-pointer and action destination, and the second one runs,
writing its own return address into the stub and jumping to its entry.

Caveats

Shared storage means a body reading an argument slot after making another call
of the same arity reads that call's argument; bodies copy first. Since every
body and stub has a single return slot, recursion does not work.

Usage

	gotrig list
	gotrig run [demo...]
	gotrig dump [--after] <demo>

Flags --verbose and --trace log compilation and execution; --step-limit and
--timeout bound each run.
*/
package main
