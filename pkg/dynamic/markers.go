package dynamic

// VarInt32 asks for a variable-length 32-bit integer record.
type VarInt32 int32

// VarInt64 asks for a variable-length 64-bit integer record.
type VarInt64 int64

// SortedSource asks for a sorted map record built from an associative source
// (an Object, a Go map or an ordered map).
type SortedSource struct {
	Source any
}

// Sorted marks source for sorted map conversion.
func Sorted(source any) SortedSource {
	return SortedSource{Source: source}
}
