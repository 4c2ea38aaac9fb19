package writable

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf16"
)

var (
	// ErrVIntTooLong is returned when a variable-length value does not fit the requested width.
	ErrVIntTooLong = errors.New("value too long to fit in integer")
	// ErrUnknownClass is returned when a class name or class id has no built-in kind.
	ErrUnknownClass = errors.New("unknown writable class")
	// ErrElementType is returned when an array is decoded without an element type.
	ErrElementType = errors.New("array element type required")
)

// Java serializes every NaN with the canonical bit pattern.
const (
	canonicalNaN32 uint32 = 0x7fc00000
	canonicalNaN64 uint64 = 0x7ff8000000000000
)

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func writeInt32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return err
}

func writeInt64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return err
}

func writeFloat32(w io.Writer, f float32) error {
	bits := math.Float32bits(f)
	if math.IsNaN(float64(f)) {
		bits = canonicalNaN32
	}
	return writeInt32(w, int32(bits))
}

func writeFloat64(w io.Writer, f float64) error {
	bits := math.Float64bits(f)
	if math.IsNaN(f) {
		bits = canonicalNaN64
	}
	return writeInt64(w, int64(bits))
}

// writeVLong uses the zero-compressed encoding of WritableUtils.writeVLong:
// values in [-112, 127] take one byte, anything else a length/sign byte
// followed by the magnitude in big-endian order.
func writeVLong(w io.Writer, i int64) error {
	if i >= -112 && i <= 127 {
		return writeByte(w, byte(int8(i)))
	}

	length := -112
	if i < 0 {
		i ^= -1
		length = -120
	}
	for tmp := i; tmp != 0; tmp >>= 8 {
		length--
	}

	buf := make([]byte, 0, 9)
	buf = append(buf, byte(int8(length)))
	if length < -120 {
		length = -(length + 120)
	} else {
		length = -(length + 112)
	}
	for idx := length; idx != 0; idx-- {
		buf = append(buf, byte(i>>uint((idx-1)*8)))
	}

	_, err := w.Write(buf)
	return err
}

func writeVInt(w io.Writer, i int32) error {
	return writeVLong(w, int64(i))
}

// writeUTF matches DataOutput.writeUTF: a two byte length followed by
// modified UTF-8 (NUL as two bytes, supplementary runes as surrogate pairs).
func writeUTF(w io.Writer, s string) error {
	buf := make([]byte, 2, 2+len(s))
	appendUnit := func(r rune) {
		switch {
		case r != 0 && r < 0x80:
			buf = append(buf, byte(r))
		case r < 0x800:
			buf = append(buf, byte(0xc0|r>>6), byte(0x80|r&0x3f))
		default:
			buf = append(buf, byte(0xe0|r>>12), byte(0x80|(r>>6)&0x3f), byte(0x80|r&0x3f))
		}
	}
	for _, r := range s {
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			appendUnit(hi)
			appendUnit(lo)
			continue
		}
		appendUnit(r)
	}

	n := len(buf) - 2
	if n > math.MaxUint16 {
		return fmt.Errorf("encoded string too long: %d bytes", n)
	}
	binary.BigEndian.PutUint16(buf, uint16(n))
	_, err := w.Write(buf)
	return err
}

func readFull(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// readN reads a length-prefixed payload without trusting the length for the
// initial allocation.
func readN(r io.Reader, n int64) ([]byte, error) {
	var buf bytes.Buffer
	copied, err := io.CopyN(&buf, r, n)
	if err != nil {
		if errors.Is(err, io.EOF) && copied < n {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

func readByte(r io.Reader) (byte, error) {
	buf, err := readFull(r, 1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

func readInt32(r io.Reader) (int32, error) {
	buf, err := readFull(r, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf)), nil
}

func readInt64(r io.Reader) (int64, error) {
	buf, err := readFull(r, 8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf)), nil
}

func decodeVIntSize(first int8) int {
	switch {
	case first >= -112:
		return 1
	case first < -120:
		return int(-119 - int(first))
	default:
		return int(-111 - int(first))
	}
}

func isNegativeVInt(first int8) bool {
	return first < -120 || (first >= -112 && first < 0)
}

func readVLong(r io.Reader) (int64, error) {
	b, err := readByte(r)
	if err != nil {
		return 0, err
	}
	first := int8(b)
	size := decodeVIntSize(first)
	if size == 1 {
		return int64(first), nil
	}

	rest, err := readFull(r, size-1)
	if err != nil {
		return 0, err
	}
	var i int64
	for _, b := range rest {
		i = i<<8 | int64(b)
	}
	if isNegativeVInt(first) {
		return i ^ -1, nil
	}
	return i, nil
}

func readVInt(r io.Reader) (int32, error) {
	n, err := readVLong(r)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, ErrVIntTooLong
	}
	return int32(n), nil
}

func readUTF(r io.Reader) (string, error) {
	head, err := readFull(r, 2)
	if err != nil {
		return "", err
	}
	data, err := readFull(r, int(binary.BigEndian.Uint16(head)))
	if err != nil {
		return "", err
	}

	units := make([]uint16, 0, len(data))
	for i := 0; i < len(data); {
		b := data[i]
		switch {
		case b < 0x80:
			units = append(units, uint16(b))
			i++
		case b&0xe0 == 0xc0 && i+1 < len(data):
			units = append(units, uint16(b&0x1f)<<6|uint16(data[i+1]&0x3f))
			i += 2
		case b&0xf0 == 0xe0 && i+2 < len(data):
			units = append(units, uint16(b&0x0f)<<12|uint16(data[i+1]&0x3f)<<6|uint16(data[i+2]&0x3f))
			i += 3
		default:
			return "", fmt.Errorf("malformed modified UTF-8 at byte %d", i)
		}
	}
	return string(utf16.Decode(units)), nil
}
