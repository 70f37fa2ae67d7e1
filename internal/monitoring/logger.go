package monitoring

import "log"

// Logf is the diagnostic logger used by the evaluation pipeline. Tests swap
// it out with SetLogger to capture or silence output.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces Logf. A nil logger discards everything.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
