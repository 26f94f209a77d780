// Package tracklevel implements the verbosity gate applied to every tracked
// event before it reaches the queue.
package tracklevel

// Track levels, from most to least important. An event is admitted when its
// required level does not exceed the level currently configured on the client.
const (
	Critical = 1
	Standard = 2
	Verbose  = 3
)

// Valid returns true if level is one of the known track levels
func Valid(level int) bool {
	return level >= Critical && level <= Verbose
}

// Admit returns true if an event requiring `required` should be accepted while
// the client operates at `current`. Unknown required levels are rejected.
func Admit(required int, current int) bool {
	if !Valid(required) || !Valid(current) {
		return false
	}
	return required <= current
}
