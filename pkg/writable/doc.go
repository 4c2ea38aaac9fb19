// Package writable implements the closed set of Writable record kinds exchanged
// between processing stages, together with their Hadoop-compatible wire format.
//
// Every record implements Record. Scalar kinds are plain Go values, so they can
// be compared with == and used directly:
//
//	var rec writable.Record = writable.Int32(42)
//	data, err := writable.Marshal(rec) // 00 00 00 2a
//
// Containers are Array, *Map and *SortedMap. Map keys are unique by content;
// SortedMap keys must be order-capable (Ordered) and are kept sorted by Compare.
//
// Records are decoded with a Type, because the wire format does not carry the
// class of top-level records nor of array elements:
//
//	t, _ := writable.ParseType("[int32]")
//	rec, err := writable.Unmarshal(data, t)
//
// Map and SortedMap entries are self-describing through the AbstractMapWritable
// class table, so a Map can be decoded with writable.TypeOf(writable.KindMap).
//
// Opaque stands for records outside the built-in set. Opaque records are carried
// through unchanged where possible and rejected where their layout must be known.
package writable
