package flow

import (
	"fmt"
	"strings"
)

// ValidationError names the required form fields that were left empty.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("flow: missing %s", strings.Join(e.Fields, ", "))
}

// required returns a ValidationError for every blank value, or nil.
func required(msg string, fields ...[2]string) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &ValidationError{Fields: missing, Message: msg}
}

func field(name, value string) [2]string { return [2]string{name, value} }
