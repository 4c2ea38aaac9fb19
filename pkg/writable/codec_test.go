package writable_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/aretw0/weft/pkg/writable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_Scalars(t *testing.T) {
	tests := []struct {
		name string
		rec  writable.Record
		want []byte
	}{
		{"text", writable.Text("hi"), []byte{0x02, 'h', 'i'}},
		{"empty text", writable.Text(""), []byte{0x00}},
		{"bool true", writable.Bool(true), []byte{0x01}},
		{"bool false", writable.Bool(false), []byte{0x00}},
		{"byte", writable.Byte(-2), []byte{0xfe}},
		{"int32", writable.Int32(42), []byte{0, 0, 0, 0x2a}},
		{"int64", writable.Int64(-1), []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
		{"vint32", writable.VInt32(300), []byte{0x8e, 0x01, 0x2c}},
		{"vint64", writable.VInt64(-5), []byte{0xfb}},
		{"float32", writable.Float32(1.5), []byte{0x3f, 0xc0, 0, 0}},
		{"float64", writable.Float64(-2), []byte{0xc0, 0, 0, 0, 0, 0, 0, 0}},
		{"bytes", writable.Bytes{1, 2}, []byte{0, 0, 0, 2, 1, 2}},
		{"null", writable.Null{}, nil},
		{"array", writable.NewArray(writable.Int32(1), writable.Int32(2)), []byte{0, 0, 0, 2, 0, 0, 0, 1, 0, 0, 0, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := writable.Marshal(tt.rec)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), len(got))
			if len(tt.want) > 0 {
				assert.Equal(t, tt.want, got)
			}

			back, err := writable.Unmarshal(got, writable.TypeFor(tt.rec))
			require.NoError(t, err)
			assert.True(t, writable.Equal(tt.rec, back), "round trip of %v gave %v", tt.rec, back)
		})
	}
}

func TestMarshal_MapClassTable(t *testing.T) {
	m := writable.NewMap()
	m.Put(writable.Text("a"), writable.Int32(1))

	got, err := writable.Marshal(m)
	require.NoError(t, err)
	// No new classes, one entry: Text id -116, IntWritable id -123.
	assert.Equal(t, []byte{0x00, 0, 0, 0, 1, 0x8c, 0x01, 'a', 0x85, 0, 0, 0, 1}, got)
}

func TestMarshal_MapNewClasses(t *testing.T) {
	m := writable.NewMap()
	m.Put(writable.Text("b"), writable.Byte(7))
	m.Put(writable.Text("c"), writable.Float64(0.5))
	m.Put(writable.Text("d"), writable.Byte(8))

	got, err := writable.Marshal(m)
	require.NoError(t, err)

	var want bytes.Buffer
	want.WriteByte(2)
	want.WriteByte(1)
	writeUTF(&want, "org.apache.hadoop.io.ByteWritable")
	want.WriteByte(2)
	writeUTF(&want, "org.apache.hadoop.io.DoubleWritable")
	want.Write([]byte{0, 0, 0, 3})
	want.Write([]byte{0x8c, 0x01, 'b', 0x01, 0x07})
	want.Write([]byte{0x8c, 0x01, 'c', 0x02, 0x3f, 0xe0, 0, 0, 0, 0, 0, 0})
	want.Write([]byte{0x8c, 0x01, 'd', 0x01, 0x08})
	assert.Equal(t, want.Bytes(), got)

	back, err := writable.Unmarshal(got, writable.TypeOf(writable.KindMap))
	require.NoError(t, err)
	assert.True(t, writable.Equal(m, back))
}

func writeUTF(buf *bytes.Buffer, s string) {
	buf.Write([]byte{byte(len(s) >> 8), byte(len(s))})
	buf.WriteString(s)
}

func TestUnmarshal_NestedContainers(t *testing.T) {
	inner := writable.NewSortedMap()
	inner.Put(writable.Int64(2), writable.Text("two"))
	inner.Put(writable.Int64(1), writable.Bool(true))

	outer := writable.NewMap()
	outer.Put(writable.Text("inner"), inner)
	outer.Put(writable.Null{}, writable.Bytes{0xca, 0xfe})
	outer.Put(writable.VInt64(1<<40), writable.VInt32(-7))

	data, err := writable.Marshal(outer)
	require.NoError(t, err)

	back, err := writable.Unmarshal(data, writable.TypeOf(writable.KindMap))
	require.NoError(t, err)
	assert.True(t, writable.Equal(outer, back))

	got, ok := back.(*writable.Map).Get(writable.Text("inner"))
	require.True(t, ok)
	sm := got.(*writable.SortedMap)
	assert.Equal(t, []writable.Ordered{writable.Int64(1), writable.Int64(2)}, sm.Keys())
}

func TestUnmarshal_Errors(t *testing.T) {
	t.Run("Array Without Element Type", func(t *testing.T) {
		_, err := writable.Unmarshal([]byte{0, 0, 0, 0}, writable.TypeOf(writable.KindArray))
		assert.ErrorIs(t, err, writable.ErrElementType)
	})

	t.Run("Array Inside Map", func(t *testing.T) {
		m := writable.NewMap()
		m.Put(writable.Text("xs"), writable.NewArray(writable.Int32(1)))
		data, err := writable.Marshal(m)
		require.NoError(t, err)

		_, err = writable.Unmarshal(data, writable.TypeOf(writable.KindMap))
		assert.ErrorIs(t, err, writable.ErrElementType)
	})

	t.Run("Unknown Class In Table", func(t *testing.T) {
		m := writable.NewMap()
		m.Put(writable.Text("k"), writable.Opaque{Class: "com.example.Custom", Payload: []byte{1}})
		data, err := writable.Marshal(m)
		require.NoError(t, err)

		_, err = writable.Unmarshal(data, writable.TypeOf(writable.KindMap))
		assert.ErrorIs(t, err, writable.ErrUnknownClass)
	})

	t.Run("Trailing Bytes", func(t *testing.T) {
		_, err := writable.Unmarshal([]byte{1, 2}, writable.TypeOf(writable.KindBool))
		assert.Error(t, err)
	})

	t.Run("Truncated Text", func(t *testing.T) {
		_, err := writable.Unmarshal([]byte{0x05, 'a'}, writable.TypeOf(writable.KindText))
		assert.Error(t, err)
	})

	t.Run("Opaque Type", func(t *testing.T) {
		_, err := writable.Unmarshal(nil, writable.TypeOf(writable.KindOpaque))
		assert.ErrorIs(t, err, writable.ErrUnknownClass)
	})
}

func TestUnmarshal_FloatSpecials(t *testing.T) {
	data, err := writable.Marshal(writable.Float64(math.Inf(-1)))
	require.NoError(t, err)

	back, err := writable.Unmarshal(data, writable.TypeOf(writable.KindFloat64))
	require.NoError(t, err)
	assert.True(t, math.IsInf(float64(back.(writable.Float64)), -1))
}
