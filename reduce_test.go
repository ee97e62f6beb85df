package tivity

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

type counterAction struct {
	Type string
	By   int
}

func counterReducer(state map[string]any, action any) (Partial, error) {
	act, ok := action.(counterAction)
	if !ok {
		return nil, fmt.Errorf("unexpected action %T", action)
	}
	count := state["count"].(int)
	switch act.Type {
	case "inc":
		return Partial{"count": count + act.By}, nil
	case "noop":
		return Partial{}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", act.Type)
	}
}

func TestReduceDispatch(t *testing.T) {
	store, err := Reduce(counterReducer, Fields{Data("count", 0)}, WithLogger(nil))
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if got := store.Actions(); !reflect.DeepEqual(got, []string{DispatchKey}) {
		t.Fatalf("expected only dispatch, got %v", got)
	}
	calls := 0
	store.Subscribe(func(prev, next *Snapshot) { calls++ })

	if err := store.Dispatch(counterAction{Type: "inc", By: 2}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if store.GetSnapshot().Value("count") != 2 || calls != 1 {
		t.Fatalf("expected count 2 after one notification, got %v/%d", store.GetSnapshot().Value("count"), calls)
	}

	before := store.GetSnapshot()
	if err := store.Dispatch(counterAction{Type: "noop"}); err != nil {
		t.Fatalf("dispatch noop: %v", err)
	}
	if store.GetSnapshot() != before || calls != 1 {
		t.Fatalf("expected empty partial to skip commit")
	}
}

func TestReduceErrorLeavesStateUnchanged(t *testing.T) {
	store, err := Reduce(counterReducer, Fields{Data("count", 0)}, WithLogger(nil))
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	before := store.GetSnapshot()
	err = store.Dispatch(counterAction{Type: "unknown"})
	if err == nil {
		t.Fatalf("expected reducer error")
	}
	var actionErr *ActionError
	if !errors.As(err, &actionErr) || actionErr.Action != DispatchKey {
		t.Fatalf("expected dispatch ActionError, got %v", err)
	}
	if store.GetSnapshot() != before {
		t.Fatalf("expected no commit")
	}
}

func TestReduceStateIsCopy(t *testing.T) {
	store, err := Reduce(func(state map[string]any, action any) (Partial, error) {
		state["list"].([]any)[0] = "mutated"
		return nil, nil
	}, Fields{Data("list", []any{"a"})}, WithLogger(nil))
	if err != nil {
		t.Fatalf("reduce: %v", err)
	}
	if err := store.Dispatch(nil); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if store.GetSnapshot().Value("list").([]any)[0] != "a" {
		t.Fatalf("expected reducer to receive a copy")
	}
}

func TestReduceRejectsMethods(t *testing.T) {
	_, err := Reduce(counterReducer, counterFields())
	if !errors.Is(err, ErrMethodsNotAllowed) {
		t.Fatalf("expected ErrMethodsNotAllowed, got %v", err)
	}
	want := "[react-tivity] reduce does not accepts object methods"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestReduceRejectsNilReducer(t *testing.T) {
	_, err := Reduce(nil, Fields{})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || cfgErr.Field != DispatchKey {
		t.Fatalf("expected dispatch ConfigError, got %v", err)
	}
}

func TestDispatchWithoutReducer(t *testing.T) {
	store := newTestStore(t, Fields{Data("count", 0)})
	if err := store.Dispatch(counterAction{Type: "inc"}); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("expected ErrUnknownAction, got %v", err)
	}
}
