package tivity

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorMessagesCarryPrefix(t *testing.T) {
	cause := errors.New("cause")
	cases := []error{
		&ConfigError{Err: cause},
		&ConfigError{Field: "key", Err: cause},
		&ActionError{Action: "inc", Err: cause},
		&MigrationError{Key: "@p", From: 0, To: 1, Err: cause},
		&StorageError{Op: "setItem", Key: "@p", Err: cause},
		&SelectorError{Engine: "expr", Expr: "a", Err: cause},
		&SelectorError{Engine: "cel", Err: cause},
	}
	for _, err := range cases {
		if !strings.HasPrefix(err.Error(), ErrorPrefix+" ") {
			t.Fatalf("expected prefix on %q", err.Error())
		}
		if !errors.Is(err, cause) {
			t.Fatalf("expected %T to unwrap to cause", err)
		}
	}
}

func TestNilErrorsFormat(t *testing.T) {
	var cfg *ConfigError
	var action *ActionError
	if cfg.Error() != "<nil>" || action.Error() != "<nil>" {
		t.Fatalf("expected nil receivers to format")
	}
	if cfg.Unwrap() != nil || action.Unwrap() != nil {
		t.Fatalf("expected nil receivers to unwrap to nil")
	}
}

func TestWrapActionErrorKeepsInnermost(t *testing.T) {
	inner := &ActionError{Action: "inner", Err: errors.New("x")}
	if got := wrapActionError("outer", inner); got != error(inner) {
		t.Fatalf("expected inner action error preserved, got %v", got)
	}
	if wrapActionError("outer", nil) != nil {
		t.Fatalf("expected nil passthrough")
	}
}
