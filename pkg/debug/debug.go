// Package debug provides conditional debug logging for the ips pipeline.
//
// Debug logging is enabled by setting the IPS_DEBUG environment variable:
//
//	IPS_DEBUG=1 ips -config ips.yaml
//
// When enabled, debug messages are written to stderr with timestamps.
// When disabled (default), all debug functions are no-ops with zero overhead.
//
// Usage:
//
//	func decideNode() {
//	    defer debug.LogEnterExit("DecideNode")()
//	    debug.Log("node %d: quota add=%d drop=%d", idx, add, drop)
//	}
package debug

import (
	"log"
	"os"
	"time"
)

var (
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv("IPS_DEBUG") != "" {
		enabled = true
		logger = log.New(os.Stderr, "[IPS_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	enabled = e
	if e && logger == nil {
		logger = log.New(os.Stderr, "[IPS_DEBUG] ", log.Ltime|log.Lmicroseconds)
	}
}

// Log writes a debug message if debug logging is enabled.
func Log(format string, args ...any) {
	if !enabled {
		return
	}
	logger.Printf(format, args...)
}

// LogIf writes a debug message only if the condition is true.
func LogIf(cond bool, format string, args ...any) {
	if !enabled || !cond {
		return
	}
	logger.Printf(format, args...)
}

// LogEnterExit logs function entry and exit with timing.
// Usage:
//
//	func phase() {
//	    defer debug.LogEnterExit("phase")()
//	    // ...
//	}
func LogEnterExit(name string) func() {
	if !enabled {
		return func() {}
	}
	logger.Printf("-> %s", name)
	start := time.Now()
	return func() {
		logger.Printf("<- %s (%v)", name, time.Since(start))
	}
}
