package schema

import "fmt"

// SchemaError describes why a payload failed validation.
type SchemaError struct {
	// Path locates the field, e.g. "timestamp" or "[2].V". Empty means the
	// document root.
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return "schema: " + e.Reason
	}
	return fmt.Sprintf("schema: %s: %s", e.Path, e.Reason)
}

func fieldError(path, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
