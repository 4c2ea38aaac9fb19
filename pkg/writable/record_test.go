package writable_test

import (
	"testing"

	"github.com/aretw0/weft/pkg/writable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want writable.Kind
	}{
		{"Int32", writable.KindInt32},
		{"int", writable.KindInt32},
		{"IntWritable", writable.KindInt32},
		{"org.apache.hadoop.io.LongWritable", writable.KindInt64},
		{"double", writable.KindFloat64},
		{" text ", writable.KindText},
		{"sortedmapwritable", writable.KindSortedMap},
		{"NullWritable", writable.KindNull},
	}
	for _, tt := range tests {
		got, err := writable.ParseKind(tt.in)
		if err != nil {
			t.Errorf("ParseKind(%q) error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	_, err := writable.ParseKind("ObjectWritable")
	assert.EqualError(t, err, "unsupported kind: ObjectWritable")
}

func TestKinds(t *testing.T) {
	kinds := writable.Kinds()
	assert.Len(t, kinds, 14)
	assert.Equal(t, writable.KindNull, kinds[0])
	assert.NotContains(t, kinds, writable.KindOpaque)

	for _, k := range kinds {
		back, ok := writable.KindOf(k.ClassName())
		assert.True(t, ok, k.String())
		assert.Equal(t, k, back)
	}

	assert.True(t, writable.KindBytes.IsOrdered())
	assert.False(t, writable.KindMap.IsOrdered())
	assert.True(t, writable.KindSortedMap.IsContainer())
	assert.Equal(t, "Kind(99)", writable.Kind(99).String())
}

func TestParseType(t *testing.T) {
	typ, err := writable.ParseType("[[text]]")
	require.NoError(t, err)
	assert.Equal(t, "[[Text]]", typ.String())
	assert.Equal(t, writable.KindArray, typ.Kind)
	assert.Equal(t, writable.KindText, typ.Elem.Elem.Kind)

	typ, err = writable.ParseType("VLongWritable")
	require.NoError(t, err)
	assert.Equal(t, writable.TypeOf(writable.KindVInt64), typ)

	_, err = writable.ParseType("array")
	assert.Error(t, err)

	_, err = writable.ParseType("[nope]")
	assert.Error(t, err)
}

func TestTypeFor(t *testing.T) {
	assert.Equal(t, "Null", writable.TypeFor(nil).String())
	assert.Equal(t, "[Null]", writable.TypeFor(writable.NewArray()).String())
	assert.Equal(t, "[[Float64]]", writable.TypeFor(writable.NewArray(
		writable.NewArray(writable.Float64(1)),
	)).String())
}

func TestClassName(t *testing.T) {
	assert.Equal(t, "<nil>", writable.ClassName(nil))
	assert.Equal(t, "org.apache.hadoop.io.IntWritable", writable.ClassName(writable.Int32(1)))
	assert.Equal(t, "org.apache.hadoop.io.MapWritable", writable.ClassName(writable.NewMap()))
	assert.Equal(t, "com.example.Point", writable.ClassName(writable.Opaque{Class: "com.example.Point"}))
	assert.True(t, writable.IsBuiltin(writable.NewSortedMap()))
	assert.False(t, writable.IsBuiltin(writable.Opaque{Class: "x"}))
}

func TestCompare(t *testing.T) {
	assert.Equal(t, -1, writable.Compare(writable.Text("a"), writable.Text("b")))
	assert.Equal(t, 1, writable.Compare(writable.Int32(3), writable.Int32(-3)))
	assert.Equal(t, 0, writable.Compare(writable.Bytes{1}, writable.Bytes{1}))
	assert.Equal(t, -1, writable.Compare(writable.Bool(false), writable.Bool(true)))
	assert.Equal(t, 1, writable.Compare(writable.Bool(true), writable.Bool(false)))
	assert.Equal(t, 0, writable.Compare(writable.Bool(true), writable.Bool(true)))
	assert.Equal(t, -1, writable.Compare(writable.Bytes{0x01}, writable.Bytes{0xff}))

	// Different kinds order by kind.
	assert.Equal(t, -1, writable.Compare(writable.Text("z"), writable.Int32(0)))
	assert.Equal(t, 1, writable.Compare(writable.Int64(0), writable.Int32(100)))
}

func TestEqual(t *testing.T) {
	assert.True(t, writable.Equal(nil, nil))
	assert.False(t, writable.Equal(nil, writable.Null{}))
	assert.False(t, writable.Equal(writable.Int32(1), writable.Int64(1)))
	assert.True(t, writable.Equal(writable.Bytes(nil), writable.Bytes{}))

	a := writable.NewMap()
	a.Put(writable.Text("x"), writable.Int32(1))
	a.Put(writable.Text("y"), writable.Int32(2))
	b := writable.NewMap()
	b.Put(writable.Text("y"), writable.Int32(2))
	b.Put(writable.Text("x"), writable.Int32(1))
	assert.True(t, writable.Equal(a, b), "map equality ignores entry order")

	b.Put(writable.Text("x"), writable.Int32(9))
	assert.False(t, writable.Equal(a, b))

	assert.False(t, writable.Equal(
		writable.NewArray(writable.Int32(1)),
		writable.NewArray(writable.Int64(1)),
	))
}

func TestMap_PutReplacesEqualKey(t *testing.T) {
	m := writable.NewMap()
	m.Put(writable.Text("k"), writable.Int32(1))
	m.Put(writable.Int32(1), writable.Text("int key"))
	m.Put(writable.Text("k"), writable.Int32(2))
	m.Put(nil, nil)

	require.Equal(t, 3, m.Len())
	got, ok := m.Get(writable.Text("k"))
	require.True(t, ok)
	assert.Equal(t, writable.Int32(2), got)

	entries := m.Entries()
	assert.Equal(t, writable.Text("k"), entries[0].Key, "replacing keeps the first position")
	assert.Equal(t, writable.Null{}, entries[2].Key)
	assert.Equal(t, writable.Null{}, entries[2].Value)

	_, ok = m.Get(writable.Int64(1))
	assert.False(t, ok)
}

func TestSortedMap_Ordering(t *testing.T) {
	m := writable.NewSortedMap()
	m.Put(writable.Text("b"), writable.Int32(2))
	m.Put(writable.Text("a"), writable.Int32(1))
	m.Put(writable.Text("c"), writable.Int32(3))
	m.Put(writable.Text("a"), writable.Int32(10))

	assert.Equal(t, []writable.Ordered{writable.Text("a"), writable.Text("b"), writable.Text("c")}, m.Keys())
	got, ok := m.Get(writable.Text("a"))
	require.True(t, ok)
	assert.Equal(t, writable.Int32(10), got)

	var empty *writable.SortedMap
	assert.Equal(t, 0, empty.Len())
	assert.Empty(t, empty.Keys())
}

func TestTagged_RoundTrip(t *testing.T) {
	m := writable.NewMap()
	m.Put(writable.Text("n"), writable.Float64(2.5))
	m.Put(writable.Text("xs"), writable.Bytes{1, 2, 3})

	records := []writable.Record{
		writable.Text("hello"),
		writable.Int64(1 << 40),
		writable.NewArray(writable.NewArray(writable.Text("deep"))),
		m,
		writable.Opaque{Class: "com.example.Point", Payload: []byte{0, 1}},
	}

	for _, rec := range records {
		data, err := writable.MarshalTagged(rec)
		require.NoError(t, err)

		back, err := writable.UnmarshalTagged(data)
		require.NoError(t, err, writable.ClassName(rec))
		assert.True(t, writable.Equal(rec, back), "tagged round trip of %s", writable.ClassName(rec))
	}
}

func TestTagged_Errors(t *testing.T) {
	_, err := writable.UnmarshalTagged([]byte{0x00, 0x04, 'n', 'o', 'p', 'e'})
	assert.ErrorIs(t, err, writable.ErrUnknownClass)

	data, err := writable.MarshalTagged(writable.Bool(true))
	require.NoError(t, err)
	_, err = writable.UnmarshalTagged(append(data, 0))
	assert.Error(t, err)
}
