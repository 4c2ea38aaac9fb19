// Package dynamic models the values of an embedded scripting runtime: strings,
// numbers, booleans, null, undefined, arrays, objects and byte buffers, plus
// host values that the runtime carries without looking inside.
//
// Numbers are always float64, as in the script language. Objects keep their
// properties in insertion order. Containers are created through a Scope, the
// runtime context a value belongs to:
//
//	scope := dynamic.NewScope("job")
//	obj := scope.NewObject()
//	obj.Set("count", dynamic.Number(3))
//
// Go callers that need a specific record width pass the markers VarInt32,
// VarInt64 or Sorted alongside regular values.
package dynamic
