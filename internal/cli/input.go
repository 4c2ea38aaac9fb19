package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/weft/pkg/adapters/lua"
	"github.com/aretw0/weft/pkg/dynamic"
)

// Format is the syntax of a value given on the command line.
type Format string

const (
	// FormatAuto tries JSON first and falls back to YAML.
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	// FormatLua evaluates a Lua chunk and takes the value it returns.
	FormatLua Format = "lua"
)

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatJSON, FormatYAML, FormatLua:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown input format %q (want auto, json, yaml or lua)", s)
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".lua":
		return FormatLua
	default:
		return FormatAuto
	}
}

// ParseValue parses data in format f into a dynamic value built by scope.
func ParseValue(data []byte, f Format, scope dynamic.Scope) (dynamic.Value, error) {
	switch f {
	case FormatJSON:
		return dynamic.ParseJSON(data, scope)
	case FormatYAML:
		return dynamic.ParseYAML(data, scope)
	case FormatLua:
		return lua.Eval(string(data), scope)
	case FormatAuto, "":
		v, err := dynamic.ParseJSON(data, scope)
		if err == nil {
			return v, nil
		}
		return dynamic.ParseYAML(data, scope)
	default:
		return nil, fmt.Errorf("unknown input format %q", f)
	}
}

// ReadValue reads all of r and parses it with ParseValue.
func ReadValue(r io.Reader, f Format, scope dynamic.Scope) (dynamic.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return ParseValue(data, f, scope)
}

// maxLineSize bounds a single JSON Lines record.
const maxLineSize = 16 << 20

// ScanJSONLines parses one JSON value per non-blank line of r and passes it
// to fn. Scanning stops at the first error.
func ScanJSONLines(r io.Reader, scope dynamic.Scope, fn func(dynamic.Value) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		v, err := dynamic.ParseJSON(text, scope)
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		if err := fn(v); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return nil
}
