package writable

import (
	"fmt"
	"strings"
)

// Kind identifies a Writable record kind.
type Kind uint8

const (
	// KindOpaque marks records unknown to this package.
	KindOpaque Kind = iota
	KindNull
	KindText
	KindBool
	KindByte
	KindInt32
	KindInt64
	KindVInt32
	KindVInt64
	KindFloat32
	KindFloat64
	KindBytes
	KindArray
	KindMap
	KindSortedMap

	// kindCount is the number of kinds defined, KindOpaque included.
	kindCount = int(iota)
)

const hadoopIO = "org.apache.hadoop.io."

var kindNames = [kindCount]string{
	"Opaque", "Null", "Text", "Bool", "Byte", "Int32", "Int64", "VInt32", "VInt64",
	"Float32", "Float64", "Bytes", "Array", "Map", "SortedMap",
}

var kindClasses = [kindCount]string{
	"",
	hadoopIO + "NullWritable",
	hadoopIO + "Text",
	hadoopIO + "BooleanWritable",
	hadoopIO + "ByteWritable",
	hadoopIO + "IntWritable",
	hadoopIO + "LongWritable",
	hadoopIO + "VIntWritable",
	hadoopIO + "VLongWritable",
	hadoopIO + "FloatWritable",
	hadoopIO + "DoubleWritable",
	hadoopIO + "BytesWritable",
	hadoopIO + "ArrayWritable",
	hadoopIO + "MapWritable",
	hadoopIO + "SortedMapWritable",
}

// kindAliases maps lower-cased spellings accepted by ParseKind.
var kindAliases = map[string]Kind{
	"null":    KindNull,
	"string":  KindText,
	"boolean": KindBool,
	"int":     KindInt32,
	"long":    KindInt64,
	"vint":    KindVInt32,
	"vlong":   KindVInt64,
	"float":   KindFloat32,
	"double":  KindFloat64,
	"opaque":  KindOpaque,
}

func init() {
	for k := KindNull; int(k) < kindCount; k++ {
		kindAliases[strings.ToLower(kindNames[k])] = k
		class := kindClasses[k]
		kindAliases[strings.ToLower(class)] = k
		kindAliases[strings.ToLower(strings.TrimPrefix(class, hadoopIO))] = k
	}
}

func (k Kind) String() string {
	if int(k) < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ClassName returns the fully qualified framework class of the kind.
// It is empty for KindOpaque and unknown kinds.
func (k Kind) ClassName() string {
	if int(k) < kindCount {
		return kindClasses[k]
	}
	return ""
}

// IsOrdered reports whether records of this kind support a total order
// and may therefore key a SortedMap.
func (k Kind) IsOrdered() bool {
	switch k {
	case KindNull, KindText, KindBool, KindByte, KindInt32, KindInt64,
		KindVInt32, KindVInt64, KindFloat32, KindFloat64, KindBytes:
		return true
	default:
		return false
	}
}

// IsContainer reports whether the kind nests other records.
func (k Kind) IsContainer() bool {
	return k == KindArray || k == KindMap || k == KindSortedMap
}

// Kinds returns the built-in kinds in declaration order, KindOpaque excluded.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := KindNull; int(k) < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// KindOf resolves a fully qualified class name to a built-in kind.
func KindOf(className string) (Kind, bool) {
	for k := KindNull; int(k) < kindCount; k++ {
		if kindClasses[k] == className {
			return k, true
		}
	}
	return KindOpaque, false
}

// ParseKind accepts kind names ("Int32"), common aliases ("long", "double"),
// simple class names ("IntWritable") and fully qualified class names.
// Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return KindOpaque, fmt.Errorf("unsupported kind: %s", s)
	}
	return k, nil
}
