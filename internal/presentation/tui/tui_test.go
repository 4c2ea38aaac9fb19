package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/weft/pkg/writable"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsMarkdown(t *testing.T) {
	md := KindsMarkdown(writable.Kinds())

	assert.Contains(t, md, "| Int64 | `org.apache.hadoop.io.LongWritable` | yes | no |")
	assert.Contains(t, md, "| SortedMap | `org.apache.hadoop.io.SortedMapWritable` | no | yes |")
	assert.Equal(t, 2+len(writable.Kinds()), strings.Count(md, "|\n"))
}

func TestRenderKinds_Plain(t *testing.T) {
	render, err := NewRenderer(false)
	require.NoError(t, err)

	out, err := RenderKinds([]writable.Kind{writable.KindText}, render)
	require.NoError(t, err)
	assert.Contains(t, out, "org.apache.hadoop.io.Text")
	assert.NotContains(t, out, "\x1b[")
}

func TestTreePrinter(t *testing.T) {
	m := writable.NewMap()
	m.Put(writable.Text("word"), writable.Text("hello"))
	m.Put(writable.Text("list"), writable.NewArray(writable.Int32(1), writable.Float64(0.5)))
	m.Put(writable.Int64(7), writable.Bytes{0xca, 0xfe})

	var buf bytes.Buffer
	require.NoError(t, NewTreePrinter(termenv.Ascii).Print(&buf, m))

	want := strings.Join([]string{
		`Map{3}`,
		`  "word": Text "hello"`,
		`  "list": Array[2]`,
		`    0: Int32 1`,
		`    1: Float64 0.5`,
		`  7: Bytes 0xcafe`,
		``,
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestTreePrinter_Colors(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTreePrinter(termenv.TrueColor).Print(&buf, writable.Bool(true)))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "true")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, termenv.Ascii)
	assert.Contains(t, buf.String(), `\_/\_/`)
	assert.NotContains(t, buf.String(), "\x1b[")
}
