package tivity

import "errors"

// DispatchKey names the action synthesized for reducer stores.
const DispatchKey = "dispatch"

var errNilReducer = errors.New("reducer is nil")

// Reducer derives a partial update from a deep copy of the state and an
// action value. Returning an empty Partial commits nothing.
type Reducer func(state map[string]any, action any) (Partial, error)

// Reduce builds a store whose only action is dispatch. The initializer must
// declare data fields only.
func Reduce(reducer Reducer, init Initializer, opts ...Option) (*Store, error) {
	fields, err := reducerFields(reducer, resolveFields(init))
	if err != nil {
		return nil, err
	}
	return newStore(fields, opts)
}

func reducerFields(reducer Reducer, fields Fields) (Fields, error) {
	if reducer == nil {
		return nil, &ConfigError{Field: DispatchKey, Err: errNilReducer}
	}
	for _, field := range fields {
		if field.IsAction() {
			return nil, &ConfigError{Err: ErrMethodsNotAllowed}
		}
	}
	return append(fields, Method(DispatchKey, dispatchAction(reducer))), nil
}

func dispatchAction(reducer Reducer) Action {
	return func(s *Sandbox, args ...any) (Partial, error) {
		var action any
		if len(args) > 0 {
			action = args[0]
		}
		next, err := reducer(s.All(), action)
		if err != nil {
			return nil, err
		}
		if len(next) == 0 {
			return nil, nil
		}
		return next, nil
	}
}

// Dispatch sends action to the reducer of a store built with Reduce or
// PersistReducer.
func (s *Store) Dispatch(action any) error {
	return s.Call(DispatchKey, action)
}
