package core

import "errors"

// Predefined errors returned by Fabrica database operations.
//
// Configuration errors (caller misuse) are raised as panics carrying one of
// these values; execution failures are reported through sentinel return
// values on the adapter methods and as ordinary error returns on Query.
var (
	// ErrNoRows is returned when a query that expects rows returns no results.
	ErrNoRows = errors.New("no rows in result set")
	// ErrTxDone is returned when operating on an already committed or rolled back transaction.
	ErrTxDone = errors.New("transaction has already been committed or rolled back")
	// ErrUnsupportedDialect is returned when an unsupported database dialect is specified.
	ErrUnsupportedDialect = errors.New("unsupported database dialect")
	// ErrEmptyReturns is the panic value when Returns is called with no columns.
	ErrEmptyReturns = errors.New("empty return column list")
	// ErrNoExecutor is the panic value when execution is attempted on a
	// builder that has no database connection.
	ErrNoExecutor = errors.New("no database executor configured")
	// ErrInvalidField is the panic value when a condition or assignment
	// receives a field argument that is neither string nor []string.
	ErrInvalidField = errors.New("field must be a string or []string")
	// ErrMissingParam is wrapped into bind errors when SQL references a
	// parameter key absent from the parameter map.
	ErrMissingParam = errors.New("missing parameter")
)

// WrapError wraps an error with additional context message.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
