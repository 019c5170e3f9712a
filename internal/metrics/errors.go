package metrics

import (
	"errors"
	"fmt"

	"github.com/five82/oneearth/internal/schema"
)

// NetworkError reports a transport failure, a non-2xx status or a body that
// is not JSON.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int // zero when no response was received
	RequestID  string
	Err        error
}

func (e *NetworkError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: api %s returned status %d", e.Op, e.URL, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": network error"
	}
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ValidationError reports a successful response whose body did not match
// the expected schema.
type ValidationError struct {
	Op        string
	RequestID string
	Err       *schema.SchemaError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid response: %v", e.Op, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsNetwork reports whether err is or wraps a *NetworkError.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var valErr *ValidationError
	return errors.As(err, &valErr)
}
