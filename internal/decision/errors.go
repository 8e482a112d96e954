package decision

import "fmt"

// ValidationError rejects an inbound signal before any venue call is made.
// The ingress maps it to a 4xx response.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid signal: " + e.Reason
	}
	return fmt.Sprintf("invalid signal: %s: %s", e.Field, e.Reason)
}
