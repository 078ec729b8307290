package monitoring

import "log"

// Logf is the package-level diagnostic logger used by data sources and the
// server for non-fatal conditions (duplicate submissions, slow upstreams).
// It defaults to log.Printf; tests replace or mute it with SetLogger.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Tagged returns a logger that prefixes every line with "[tag] " and
// forwards to whatever Logf is at call time.
func Tagged(tag string) func(format string, v ...interface{}) {
	prefix := "[" + tag + "] "
	return func(format string, v ...interface{}) {
		Logf(prefix+format, v...)
	}
}
