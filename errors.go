package tivity

import (
	"errors"
	"fmt"
)

// ErrorPrefix starts every error message produced by this package.
const ErrorPrefix = "[react-tivity]"

var (
	// ErrMethodsNotAllowed is reported when a reducer store is initialized with actions.
	ErrMethodsNotAllowed = errors.New("reduce does not accepts object methods")
	// ErrUnknownAction is reported when calling an action that was never declared.
	ErrUnknownAction = errors.New("unknown action")
	// ErrReservedKey is reported when a key collides with an action or a bookkeeping field.
	ErrReservedKey = errors.New("reserved key")
	// ErrDuplicateKey is reported when an initializer declares the same key twice.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNotObject is reported when a nested draft cell is requested on a non-map value.
	ErrNotObject = errors.New("field is not an object")
	// ErrMigrateRequired is reported when the persisted version differs and no migrate func is set.
	ErrMigrateRequired = errors.New("migrate is required when versions differ")
	// ErrMigrateResult is reported when migrate returns a nil state.
	ErrMigrateResult = errors.New("migrate returned no state")
	// ErrClosed is reported when persisting through a closed store.
	ErrClosed = errors.New("store closed")
)

// ConfigError is returned when a store is constructed or committed with an
// invalid configuration. It is always fatal to the operation that produced it.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Field == "" {
		return fmt.Sprintf("%s %v", ErrorPrefix, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", ErrorPrefix, e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ActionError wraps an error returned by an action or reducer. Nothing is
// committed by the invocation that returned it.
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s action %q: %v", ErrorPrefix, e.Action, e.Err)
}

func (e *ActionError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// MigrationError describes a failed reconciliation between a persisted payload
// and the configured version.
type MigrationError struct {
	Key  string
	From any
	To   int
	Err  error
}

func (e *MigrationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s migrate %q from version %v to %d: %v", ErrorPrefix, e.Key, e.From, e.To, e.Err)
}

func (e *MigrationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// StorageError wraps a failing storage operation.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s storage %s %q: %v", ErrorPrefix, e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapActionError(name string, err error) error {
	if err == nil {
		return nil
	}
	var actionErr *ActionError
	if errors.As(err, &actionErr) {
		return err
	}
	return &ActionError{Action: name, Err: err}
}

// SelectorError reports a selector expression that failed to compile or run.
type SelectorError struct {
	Engine string
	Expr   string
	Err    error
}

func (e *SelectorError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Expr == "" {
		return fmt.Sprintf("%s %s selector expr=<empty>: %v", ErrorPrefix, e.Engine, e.Err)
	}
	return fmt.Sprintf("%s %s selector expr=%q: %v", ErrorPrefix, e.Engine, e.Expr, e.Err)
}

func (e *SelectorError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrEmptyExpression is reported when a selector is built from an empty string.
var ErrEmptyExpression = errors.New("expression must not be empty")

func wrapSelectorError(engine, expr string, err error) error {
	if err == nil {
		return nil
	}
	var selErr *SelectorError
	if errors.As(err, &selErr) {
		return err
	}
	return &SelectorError{Engine: engine, Expr: expr, Err: err}
}
