package common

import (
	"fmt"
	"os"

	"github.com/ternarybob/arbor"
)

// SafeRun runs fn with panic recovery and reports a panic as an error.
// Used for scheduled work where one failing cycle must not take the process down.
func SafeRun(logger arbor.ILogger, name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stackTrace := GetStackTrace()
			if logger != nil {
				logger.Error().
					Str("task", name).
					Str("panic", fmt.Sprintf("%v", r)).
					Str("stack", stackTrace).
					Msg("Recovered from panic - continuing service operation")
			} else {
				fmt.Fprintf(os.Stderr, "PANIC in %s: %v\n%s\n", name, r, stackTrace)
			}
			err = fmt.Errorf("panic in %s: %v", name, r)
		}
	}()

	return fn()
}
