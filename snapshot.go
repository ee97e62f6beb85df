package tivity

import "github.com/goliatone/go-tivity/internal/clone"

// Snapshot is an immutable-by-convention view of the data fields at one
// commit. A Store hands out the same pointer until the next commit.
type Snapshot struct {
	data map[string]any
	keys []string
	seq  uint64
}

func newSnapshot(fields Fields) *Snapshot {
	snap := &Snapshot{data: make(map[string]any, len(fields))}
	for _, field := range fields {
		if field.IsAction() {
			continue
		}
		snap.data[field.Key] = clone.Value(field.Value)
		snap.keys = append(snap.keys, field.Key)
	}
	return snap
}

// merge returns a new snapshot with p shallow merged over s. Values are
// copied so callers keep no handle on committed state.
func (s *Snapshot) merge(p Partial, seq uint64) *Snapshot {
	next := &Snapshot{
		data: make(map[string]any, len(s.data)+len(p)),
		keys: append([]string(nil), s.keys...),
		seq:  seq,
	}
	for key, value := range s.data {
		next.data[key] = value
	}
	for _, key := range sortedKeys(p) {
		if _, ok := next.data[key]; !ok {
			next.keys = append(next.keys, key)
		}
		next.data[key] = clone.Value(p[key])
	}
	return next
}

// Get returns the value stored under key.
func (s *Snapshot) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	value, ok := s.data[key]
	return value, ok
}

// Value returns the value stored under key or nil.
func (s *Snapshot) Value(key string) any {
	value, _ := s.Get(key)
	return value
}

// Has reports whether key is a data field of the snapshot.
func (s *Snapshot) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Keys returns data keys in declaration order followed by keys added by
// later commits.
func (s *Snapshot) Keys() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.keys...)
}

// Len returns the number of data fields.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Seq returns the commit sequence that produced the snapshot. The initial
// snapshot has sequence zero.
func (s *Snapshot) Seq() uint64 {
	if s == nil {
		return 0
	}
	return s.seq
}

// Map returns a deep copy of the data fields.
func (s *Snapshot) Map() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return clone.Map(s.data)
}
