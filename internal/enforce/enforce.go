// Package enforce provides a single assertion helper for states that must
// never occur in correct code, as distinct from the annealer's ordinary
// transient-contention and retry paths, which are never asserted on.
package enforce

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
)

func init() {
	checkCompiler()
}

// That halts the program if cond is false. Use only for programmer-invariant
// violations, never for contention, capacity races, or other expected retries.
func That(cond bool, msg string, args ...any) {
	if !cond {
		log.Error().Msg(fmt.Sprintf(msg, args...))
		panic(fmt.Sprintf(msg, args...))
	}
}

// checkCompiler enforces a 64bit machine due to assumptions about sizeof(int).
func checkCompiler() {
	myInt := int(math.MaxInt64)
	myInt64 := int64(math.MaxInt64)
	That(uint64(myInt) == uint64(myInt64), "must be on a 64 bit system")
}
