package cli

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// Encoding is how record bytes are printed.
type Encoding string

const (
	EncodingHex    Encoding = "hex"
	EncodingBase64 Encoding = "base64"
	// EncodingRaw writes the wire bytes unchanged.
	EncodingRaw Encoding = "raw"
)

// ParseEncoding validates an --encoding flag value.
func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(strings.ToLower(strings.TrimSpace(s))); e {
	case EncodingHex, EncodingBase64, EncodingRaw:
		return e, nil
	default:
		return "", fmt.Errorf("unknown encoding %q (want hex, base64 or raw)", s)
	}
}

// Encode renders wire bytes in encoding e.
func (e Encoding) Encode(data []byte) []byte {
	switch e {
	case EncodingBase64:
		out := make([]byte, base64.StdEncoding.EncodedLen(len(data)))
		base64.StdEncoding.Encode(out, data)
		return out
	case EncodingRaw:
		return data
	default:
		out := make([]byte, hex.EncodedLen(len(data)))
		hex.Encode(out, data)
		return out
	}
}

// Decode reverses Encode. Surrounding whitespace is ignored for the text
// encodings.
func (e Encoding) Decode(text []byte) ([]byte, error) {
	if e == EncodingRaw {
		return text, nil
	}

	text = bytes.TrimSpace(text)
	var (
		out []byte
		n   int
		err error
	)
	switch e {
	case EncodingBase64:
		out = make([]byte, base64.StdEncoding.DecodedLen(len(text)))
		n, err = base64.StdEncoding.Decode(out, text)
	default:
		out = make([]byte, hex.DecodedLen(len(text)))
		n, err = hex.Decode(out, text)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid %s input: %w", e, err)
	}
	return out[:n], nil
}

// WriteRecord writes data to w in encoding e. Text encodings end with a
// newline.
func WriteRecord(w io.Writer, data []byte, e Encoding) error {
	if _, err := w.Write(e.Encode(data)); err != nil {
		return err
	}
	if e == EncodingRaw {
		return nil
	}
	_, err := io.WriteString(w, "\n")
	return err
}
