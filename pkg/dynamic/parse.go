package dynamic

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseJSON decodes a single JSON document into a value built by scope.
// Object property order follows the document.
func ParseJSON(data []byte, scope Scope) (Value, error) {
	if scope == nil {
		scope = Global
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := parseJSONValue(dec, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse JSON: unexpected data after document")
	}
	return v, nil
}

func parseJSONValue(dec *json.Decoder, scope Scope) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Boolean(t), nil
	case string:
		return String(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return Number(f), nil
	case json.Delim:
		switch t {
		case '[':
			arr := scope.NewArray(nil)
			for dec.More() {
				v, err := parseJSONValue(dec, scope)
				if err != nil {
					return nil, err
				}
				arr.Append(v)
			}
			_, err := dec.Token()
			return arr, err
		case '{':
			obj := scope.NewObject()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				v, err := parseJSONValue(dec, scope)
				if err != nil {
					return nil, err
				}
				obj.Set(key, v)
			}
			_, err := dec.Token()
			return obj, err
		}
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// ParseYAML decodes a single YAML document into a value built by scope.
// Mapping order follows the document and !!binary scalars become ByteBuffer.
// An empty document is Null.
func ParseYAML(data []byte, scope Scope) (Value, error) {
	if scope == nil {
		scope = Global
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return Null{}, nil
	}
	v, err := fromYAMLNode(doc.Content[0], scope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return v, nil
}

func fromYAMLNode(n *yaml.Node, scope Scope) (Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null{}, nil
		}
		return fromYAMLNode(n.Content[0], scope)

	case yaml.AliasNode:
		return fromYAMLNode(n.Alias, scope)

	case yaml.SequenceNode:
		arr := scope.NewArray(nil)
		for _, c := range n.Content {
			v, err := fromYAMLNode(c, scope)
			if err != nil {
				return nil, err
			}
			arr.Append(v)
		}
		return arr, nil

	case yaml.MappingNode:
		obj := scope.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, err := fromYAMLNode(n.Content[i], scope)
			if err != nil {
				return nil, err
			}
			if _, isContainer := k.(*Object); isContainer {
				return nil, fmt.Errorf("line %d: mapping keys must be scalars", n.Content[i].Line)
			}
			v, err := fromYAMLNode(n.Content[i+1], scope)
			if err != nil {
				return nil, err
			}
			obj.Set(PropertyKey(k), v)
		}
		return obj, nil

	case yaml.ScalarNode:
		return fromYAMLScalar(n)
	}
	return nil, fmt.Errorf("line %d: unsupported YAML node", n.Line)
}

func fromYAMLScalar(n *yaml.Node) (Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return Boolean(b), nil
	case "!!int", "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, err
		}
		return Number(f), nil
	case "!!binary":
		data, err := base64.StdEncoding.DecodeString(strings.Join(strings.Fields(n.Value), ""))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid binary scalar: %w", n.Line, err)
		}
		return ByteBuffer(data), nil
	default:
		return String(n.Value), nil
	}
}
