package nobo

import "time"

// SetDefaultTimeout replaces defaultTimeout until the returned func is called.
func SetDefaultTimeout(d time.Duration) (restore func()) {
	old := defaultTimeout
	defaultTimeout = d
	return func() { defaultTimeout = old }
}
