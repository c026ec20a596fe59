package lift

import (
	"io"
	"log"
	"os"
)

// PrintDebugInfo toggles per-opcode stack tracing during symbolic
// execution (component G). Off by default.
var PrintDebugInfo = false

var logger = log.New(io.Discard, "lift: ", log.Lshortfile)

// SetDebugMode turns per-opcode stack tracing on or off, reconfiguring
// logger's output target immediately (see pyc.SetDebugMode for why
// assigning PrintDebugInfo alone would not be enough).
func SetDebugMode(v bool) {
	PrintDebugInfo = v
	w := io.Discard
	if v {
		w = os.Stderr
	}
	logger.SetOutput(w)
}

func debugf(format string, args ...interface{}) {
	logger.Printf(format, args...)
}
