// Package tivity implements a small observable state container meant to drive
// re-renders from mutable application state, plus a persistence layer that
// hydrates and stores that state through a pluggable key-value backend.
//
// Responsibilities:
//   - Store owns the authoritative snapshot, commits partial updates
//     atomically (shallow merge) and notifies subscribers in registration order.
//   - Actions receive a disposable working copy. Method actions use a Sandbox
//     and either return a Partial or call Set; Mutation actions use a Draft
//     whose writes commit the whole working copy immediately.
//   - Observer records which data fields a consumer read and only reports a
//     change when one of those fields differs structurally.
//   - Persisted wraps a Store with asynchronous hydration, version migration,
//     blacklisting and a write on every commit.
//
// Data flow:
//
//	Fields -> Create/Reduce/Persist -> Store -> Snapshot -> Observer -> Accessor
//
// The schema is explicit: Data declares a data field, Method and Mutation
// declare actions. A key's classification never changes after construction.
//
// Concurrency:
//
//	Commits are serialized by the Store and listeners run synchronously on the
//	committing goroutine, outside of any store lock, so a listener may commit
//	again. There is no cycle breaker. Persisted performs hydration on its own
//	goroutine and writes payloads in commit order from a single writer.
package tivity
