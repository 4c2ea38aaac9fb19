// Package convert translates between dynamic values and Writable records.
//
// A Registry holds four ordered converter lists: dynamic to Writable, dynamic
// to order-capable Writable, Writable to dynamic and order-capable Writable to
// dynamic. A Dispatcher walks the relevant list and hands the value to the
// first converter that accepts it. Containers recurse through the dispatcher,
// so every nested element follows the same rules as a top-level value.
//
// Plain numbers are narrowed by InferNumber: integral values become Int32 or
// Int64 records, everything else Float64.
//
//	d := convert.NewDispatcher(nil)
//	rec, err := d.ToWritable(dynamic.Number(42), nil) // writable.Int32(42)
//
// Registries and dispatchers are immutable and safe for concurrent use.
package convert
