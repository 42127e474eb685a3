package broker

import (
	"errors"
	"fmt"
)

// ErrEmptyUserName indicates a login or action request with a blank user
// name. It is rejected before the mutation gate is acquired.
var ErrEmptyUserName = errors.New("broker: user name is empty")

// BatchError reports the outcome of a batch login. Logins that succeeded
// before or alongside the failures are not rolled back.
type BatchError struct {
	// Succeeded lists the user names whose logins completed, in input order.
	Succeeded []string
	// Failed maps each failing user name to its error.
	Failed map[string]error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("broker: %d of %d logins failed", len(e.Failed), len(e.Failed)+len(e.Succeeded))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		errs = append(errs, err)
	}
	return errs
}
