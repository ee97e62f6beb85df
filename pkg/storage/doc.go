// Package storage defines the key-value contract a persisted store writes
// through, plus small in-process implementations.
//
// Responsibilities:
//   - Storage loads, saves and removes one serialized payload per key.
//   - Values are opaque strings; encoding lives in pkg/codec.
//   - Adapters for durable backends live in sub-packages (badgerstore,
//     leveldbstore, pebblestore, redisstore) so the core package stays free
//     of their dependencies.
//
// Data flow:
//
//	tivity.Persisted -> codec.Serializer -> Storage.SetItem(key, payload)
//	Storage.GetItem(key) -> codec.Serializer -> hydration merge
//
// Absent keys are reported with ok=false and a nil error. Adapters must map
// their own not-found sentinel to that shape.
package storage
