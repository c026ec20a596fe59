package pyc

import (
	"io"
	"log"
	"os"
)

// PrintDebugInfo toggles verbose tracing of the marshal decoder (tag-by-tag
// unmarshalling and bytecode decoding). Off by default.
var PrintDebugInfo = false

var logger = log.New(io.Discard, "pyc: ", log.Lshortfile)

// SetDebugMode turns tag-by-tag marshal tracing on or off. Unlike toggling
// PrintDebugInfo directly, it reconfigures logger's output target right
// away: logger is built once at package init, before main's flag.Parse has
// had a chance to set PrintDebugInfo, so assigning the variable alone
// would never actually change where traces go.
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
