package core

import (
	"fmt"
	"os"
)

// abortProcess terminates the process immediately, bypassing panic
// recovery. Refcount and residual overflow are unrecoverable design limits,
// not errors a caller could sensibly catch and retry from: a recovered panic
// would leave the synchronization state corrupt.
var abortProcess = func(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(2)
}
