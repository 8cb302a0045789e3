// Package validation checks registration payloads against the shape the
// monitoring API accepts. Findings are returned as data, never as errors, so
// a caller can report every problem at once.
package validation

import "fmt"

const (
	MsgFieldRequired = "Field required"
	MsgShouldBeArray = "Should be an array"
)

// Violation describes one field that failed validation. Field is a dotted
// path such as "media.0.hash".
type Violation struct {
	Field         string `json:"field"`
	Message       string `json:"message"`
	ObservedValue string `json:"observed_value,omitempty"`
}

func (v Violation) String() string {
	if v.ObservedValue == "" {
		return fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return fmt.Sprintf("%s: %s (got %q)", v.Field, v.Message, v.ObservedValue)
}

func patternMessage(pattern string) string {
	return "Should match pattern " + pattern
}
