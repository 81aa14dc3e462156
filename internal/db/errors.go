package db

import "errors"

// StoreError wraps any failure raised while reading or writing reports.
// Its message is the underlying error's message, unchanged.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return e.Op + ": unknown store error"
	}
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStoreError reports whether err is, or wraps, a *StoreError.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsStoreError(err) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
