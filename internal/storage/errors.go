package storage

import "fmt"

// StoreError wraps every persistence failure. Callers surface the message
// verbatim to the user; the engine never retries a store operation and
// never rolls back partially completed compound flows.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error during %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
