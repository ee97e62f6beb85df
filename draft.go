package tivity

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-tivity/internal/clone"
)

// Draft is the working copy handed to a Mutation action. It is a deep copy of
// the snapshot taken when the action starts; every write applies to the copy
// and commits the whole copy.
type Draft struct {
	*Cell
	store *Store
	data  map[string]any
}

// Cell is a mutable view over one map inside a Draft, addressed by its path
// from the top level. A cell resolves its map on every access, so it stays
// valid after the draft is re-based.
type Cell struct {
	draft *Draft
	path  []string
}

func newDraft(store *Store) *Draft {
	d := &Draft{store: store, data: store.GetSnapshot().Map()}
	d.Cell = &Cell{draft: d}
	return d
}

func (d *Draft) commit() error {
	return d.store.commit(Partial(clone.Map(d.data)), true)
}

// SetIn writes value at the nested path and commits.
func (d *Draft) SetIn(path []string, value any) error {
	if len(path) == 0 {
		return &ConfigError{Field: "path", Err: fmt.Errorf("path must not be empty")}
	}
	cell := d.Cell
	for _, segment := range path[:len(path)-1] {
		next, err := cell.Child(segment)
		if err != nil {
			return err
		}
		cell = next
	}
	return cell.Set(path[len(path)-1], value)
}

// Call invokes another action of the same store, then re-bases the working
// copy on the resulting snapshot so later writes keep the sibling's commits.
func (d *Draft) Call(name string, args ...any) error {
	err := d.store.Call(name, args...)
	d.data = d.store.GetSnapshot().Map()
	return err
}

func (c *Cell) resolve() (map[string]any, error) {
	current := c.draft.data
	for i, segment := range c.path {
		nested, ok := current[segment].(map[string]any)
		if !ok {
			return nil, &ConfigError{Field: strings.Join(c.path[:i+1], "."), Err: ErrNotObject}
		}
		current = nested
	}
	return current, nil
}

// Get returns a copy of the value stored under key in the working copy.
func (c *Cell) Get(key string) any {
	data, err := c.resolve()
	if err != nil {
		return nil
	}
	return clone.Value(data[key])
}

// Keys lists the keys of the cell.
func (c *Cell) Keys() []string {
	data, err := c.resolve()
	if err != nil {
		return nil
	}
	return sortedKeys(data)
}

// Set writes value into the working copy and commits the whole copy.
func (c *Cell) Set(key string, value any) error {
	if len(c.path) == 0 && c.draft.store.isAction(key) {
		return &ConfigError{Field: key, Err: ErrReservedKey}
	}
	data, err := c.resolve()
	if err != nil {
		return err
	}
	data[key] = clone.Value(value)
	return c.draft.commit()
}

// Delete removes key from a nested cell and commits. Top-level keys cannot
// be removed since commits only merge.
func (c *Cell) Delete(key string) error {
	if len(c.path) == 0 {
		return &ConfigError{Field: key, Err: fmt.Errorf("top-level keys cannot be deleted")}
	}
	data, err := c.resolve()
	if err != nil {
		return err
	}
	delete(data, key)
	return c.draft.commit()
}

// Child returns the nested cell stored under key. The value must be a
// map[string]any.
func (c *Cell) Child(key string) (*Cell, error) {
	path := append(append([]string(nil), c.path...), key)
	child := &Cell{draft: c.draft, path: path}
	if _, err := child.resolve(); err != nil {
		return nil, err
	}
	return child, nil
}
