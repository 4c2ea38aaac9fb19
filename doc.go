/*
Package weft converts values between an embedded scripting runtime and the
Writable records exchanged by distributed processing stages.

Scripts see strings, numbers, booleans, arrays and objects. Stages exchange
typed records with a fixed wire format: Text, Int32, Int64, variable-length
integers, floats, byte strings, arrays and (sorted) maps. weft maps one world
onto the other deterministically and, where the types allow it, losslessly.

# Concept

Conversion is table driven. A registry holds ordered converter lists, one per
direction, and a dispatcher hands each value to the first converter that
accepts it. Containers recurse through the dispatcher, so nested values follow
the same rules as top-level ones. Plain numbers are narrowed to the smallest
fitting record: 42 becomes Int32, 2147483648 becomes Int64 and 1.1 becomes
Float64.

# Usage

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/weft"
		"github.com/aretw0/weft/pkg/dynamic"
	)

	func main() {
		eng := weft.New()

		obj := eng.Scope().NewObject()
		obj.Set("word", dynamic.String("hello"))
		obj.Set("count", dynamic.Number(3))

		// Script value -> MapWritable wire bytes
		data, typ, err := eng.Encode(obj)
		if err != nil {
			log.Fatal(err)
		}

		// And back
		v, err := eng.Decode(data, typ)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(typ, v)
	}

The packages under pkg/ expose each layer on its own: pkg/dynamic (script
values), pkg/writable (records and wire format), pkg/convert (registry and
dispatcher), pkg/ports and pkg/adapters (record queues, HTTP, MCP and Lua).
*/
package weft
