package tui

import (
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aretw0/weft/pkg/writable"
	"github.com/muesli/termenv"
)

// TreePrinter prints records as an indented tree, one record per line,
// coloring kinds and scalar values.
type TreePrinter struct {
	profile termenv.Profile
	indent  string
}

// NewTreePrinter creates a printer for p. termenv.Ascii disables colors.
func NewTreePrinter(p termenv.Profile) *TreePrinter {
	return &TreePrinter{profile: p, indent: "  "}
}

// Print writes the tree of r to w.
func (t *TreePrinter) Print(w io.Writer, r writable.Record) error {
	var sb strings.Builder
	t.write(&sb, "", 0, r)
	_, err := io.WriteString(w, sb.String())
	return err
}

func (t *TreePrinter) write(sb *strings.Builder, label string, depth int, r writable.Record) {
	sb.WriteString(strings.Repeat(t.indent, depth))
	if label != "" {
		sb.WriteString(label)
		sb.WriteString(": ")
	}

	switch x := r.(type) {
	case writable.Array:
		fmt.Fprintf(sb, "%s[%d]\n", t.kind(r), x.Len())
		for i, e := range x.Values {
			t.write(sb, t.key(strconv.Itoa(i)), depth+1, e)
		}
	case *writable.Map:
		fmt.Fprintf(sb, "%s{%d}\n", t.kind(r), x.Len())
		for _, e := range x.Entries() {
			t.write(sb, t.key(t.scalar(e.Key)), depth+1, e.Value)
		}
	case *writable.SortedMap:
		fmt.Fprintf(sb, "%s{%d}\n", t.kind(r), x.Len())
		for _, e := range x.Entries() {
			t.write(sb, t.key(t.scalar(e.Key)), depth+1, e.Value)
		}
	default:
		fmt.Fprintf(sb, "%s %s\n", t.kind(r), t.value(t.scalar(r)))
	}
}

func (t *TreePrinter) kind(r writable.Record) string {
	name := r.Kind().String()
	if r.Kind() == writable.KindOpaque {
		name = writable.ClassName(r)
	}
	return t.profile.String(name).Foreground(t.profile.Color("#a78bfa")).Bold().String()
}

func (t *TreePrinter) key(s string) string {
	return t.profile.String(s).Foreground(t.profile.Color("#818cf8")).String()
}

func (t *TreePrinter) value(s string) string {
	return t.profile.String(s).Foreground(t.profile.Color("#f472b6")).String()
}

// scalar formats a non-container record on one line.
func (t *TreePrinter) scalar(r writable.Record) string {
	switch x := r.(type) {
	case writable.Text:
		return strconv.Quote(string(x))
	case writable.Bytes:
		return "0x" + hex.EncodeToString(x)
	case writable.Null:
		return "null"
	case writable.Bool:
		return strconv.FormatBool(bool(x))
	case writable.Float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case writable.Float64:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case writable.Opaque:
		return "0x" + hex.EncodeToString(x.Payload)
	case writable.Array, *writable.Map, *writable.SortedMap:
		return r.Kind().String()
	default:
		return fmt.Sprint(r)
	}
}
