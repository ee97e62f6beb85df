package clone

import (
	"math"
	"testing"
)

type profile struct {
	Name  string
	Tags  []string
	Prefs map[string]any
}

func TestValueDetachesNestedContainers(t *testing.T) {
	src := map[string]any{
		"user": map[string]any{
			"name":  "ada",
			"roles": []any{"admin", "dev"},
		},
		"profile": &profile{Name: "p", Tags: []string{"a"}, Prefs: map[string]any{"theme": "dark"}},
	}

	got := Map(src)

	got["user"].(map[string]any)["name"] = "grace"
	got["user"].(map[string]any)["roles"].([]any)[0] = "guest"
	got["profile"].(*profile).Tags[0] = "b"
	got["profile"].(*profile).Prefs["theme"] = "light"

	user := src["user"].(map[string]any)
	if user["name"] != "ada" {
		t.Fatalf("expected source name untouched, got %v", user["name"])
	}
	if user["roles"].([]any)[0] != "admin" {
		t.Fatalf("expected source roles untouched, got %v", user["roles"])
	}
	p := src["profile"].(*profile)
	if p.Tags[0] != "a" || p.Prefs["theme"] != "dark" {
		t.Fatalf("expected source profile untouched, got %+v", p)
	}
}

func TestValueSharesFunctions(t *testing.T) {
	calls := 0
	fn := func() { calls++ }
	got := Value(map[string]any{"fn": fn})
	got["fn"].(func())()
	if calls != 1 {
		t.Fatalf("expected cloned function to be callable, got %d calls", calls)
	}
}

func TestValueCopiesTypedContainers(t *testing.T) {
	src := map[string]any{
		"counts": map[string]int{"a": 1},
		"rows":   []map[string]any{{"id": 1}},
		"pair":   [2][]string{{"x"}, {"y"}},
		"none":   []any(nil),
		"ptr":    (*profile)(nil),
	}
	got := Map(src)

	got["counts"].(map[string]int)["a"] = 9
	got["rows"].([]map[string]any)[0]["id"] = 9
	pair := got["pair"].([2][]string)
	pair[0][0] = "changed"

	if src["counts"].(map[string]int)["a"] != 1 || src["rows"].([]map[string]any)[0]["id"] != 1 {
		t.Fatalf("expected typed containers detached, got %v", src)
	}
	if src["pair"].([2][]string)[0][0] != "x" {
		t.Fatalf("expected array elements detached")
	}
	if got["none"].([]any) != nil || got["ptr"].(*profile) != nil {
		t.Fatalf("expected typed nils preserved, got %#v %#v", got["none"], got["ptr"])
	}
}

func TestMapNil(t *testing.T) {
	got := Map(nil)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty map, got %#v", got)
	}
}

func TestEqual(t *testing.T) {
	cases := []struct {
		name string
		a, b any
		want bool
	}{
		{name: "same scalar", a: 1, b: 1, want: true},
		{name: "int vs float", a: 2, b: float64(2), want: true},
		{name: "different scalar", a: 1, b: 2, want: false},
		{name: "large int64 differ", a: int64(9007199254740992), b: int64(9007199254740993), want: false},
		{name: "large uint64 differ", a: uint64(1<<63 + 1), b: uint64(1<<63 + 2), want: false},
		{name: "int vs uint", a: 7, b: uint8(7), want: true},
		{name: "negative int vs uint", a: -1, b: uint64(math.MaxUint64), want: false},
		{name: "large int vs rounded float", a: int64(9007199254740993), b: float64(9007199254740992), want: false},
		{name: "fraction vs int", a: 1, b: 1.5, want: false},
		{name: "string vs number", a: "1", b: 1, want: false},
		{name: "nil vs nil", a: nil, b: nil, want: true},
		{name: "nil vs value", a: nil, b: 0, want: false},
		{name: "nested maps equal", a: map[string]any{"a": map[string]any{"b": []any{1, "x"}}}, b: map[string]any{"a": map[string]any{"b": []any{1.0, "x"}}}, want: true},
		{name: "nested maps differ", a: map[string]any{"a": map[string]any{"b": 1}}, b: map[string]any{"a": map[string]any{"b": 2}}, want: false},
		{name: "extra key", a: map[string]any{"a": 1}, b: map[string]any{"a": 1, "b": 2}, want: false},
		{name: "slice length", a: []any{1, 2}, b: []any{1}, want: false},
		{name: "struct", a: profile{Name: "x", Tags: []string{"a"}}, b: profile{Name: "x", Tags: []string{"a"}}, want: true},
		{name: "struct differ", a: profile{Name: "x"}, b: profile{Name: "y"}, want: false},
		{name: "pointer to equal", a: &profile{Name: "x"}, b: &profile{Name: "x"}, want: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := Equal(tc.a, tc.b); got != tc.want {
				t.Fatalf("Equal(%#v, %#v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
