package migration

import "fmt"

// Error describes a failure while scanning or executing a migration.
type Error struct {
	Version   string
	FileName  string
	Operation string
	Err       error
}

func (e *Error) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("migration %s: %s: %v", e.Version, e.Operation, e.Err)
	}
	return fmt.Sprintf("migration: %s: %v", e.Operation, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(version, fileName, operation string, err error) *Error {
	return &Error{Version: version, FileName: fileName, Operation: operation, Err: err}
}
