// Package sourcefile reads and writes the neutral source file format: a JSON
// or YAML object whose entries map a string key to its value, or to an
// object with the value under "string" and additional fields beside it.
//
//	{
//	  "greeting": "Hi",
//	  "farewell": {"string": "Bye", "Comment": "shown on logout"}
//	}
//
// Entry order in the file is the string order of the upload.
package sourcefile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/kantan/internal/store"
)

// ValueField names the entry property holding the string value.
const ValueField = "string"

// Encoding selects the output syntax of Encode.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingYAML Encoding = "yaml"
)

// EncodingForPath picks YAML for .yaml/.yml paths and JSON otherwise.
func EncodingForPath(path string) Encoding {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
		return EncodingYAML
	}
	return EncodingJSON
}

// FormatError describes a malformed source file.
type FormatError struct {
	Key     string // offending entry key, if known
	Line    int    // 1-based line, if known
	Message string
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString("sourcefile")
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d", e.Line)
	}
	if e.Key != "" {
		fmt.Fprintf(&b, ": key %q", e.Key)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Decode parses a source file into upload entries in file order.
// Additional fields keep their file order and are never UI-hidden.
func Decode(r io.Reader) ([]store.SourceStringInput, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("sourcefile: read: %w", err)
	}

	var generic any
	if err := yaml.Unmarshal(src, &generic); err != nil {
		return nil, &FormatError{Message: err.Error()}
	}
	if _, ok := generic.(map[string]any); !ok {
		return nil, &FormatError{Message: "expected the file to contain an object (not an array or scalar)"}
	}
	if err := Validate(generic); err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, &FormatError{Message: err.Error()}
	}
	root := doc.Content[0]

	entries := make([]store.SourceStringInput, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		entry, err := decodeEntry(root.Content[i], root.Content[i+1])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func decodeEntry(keyNode, valueNode *yaml.Node) (store.SourceStringInput, error) {
	entry := store.SourceStringInput{
		Key:              keyNode.Value,
		AdditionalFields: []store.AdditionalField{},
	}

	switch valueNode.Kind {
	case yaml.ScalarNode:
		entry.Value = valueNode.Value
	case yaml.MappingNode:
		for j := 0; j+1 < len(valueNode.Content); j += 2 {
			name, value := valueNode.Content[j].Value, valueNode.Content[j+1].Value
			if name == ValueField {
				entry.Value = value
				continue
			}
			entry.AdditionalFields = append(entry.AdditionalFields, store.AdditionalField{
				FieldName: name,
				Value:     value,
			})
		}
	default:
		return entry, &FormatError{Key: entry.Key, Line: valueNode.Line, Message: "expected a string or an object"}
	}
	return entry, nil
}

// Encode writes strings as a key to value object in the given encoding,
// preserving order. Additional fields are not written.
func Encode(w io.Writer, strs []store.DocumentString, enc Encoding) error {
	switch enc {
	case EncodingYAML:
		return encodeYAML(w, strs)
	case EncodingJSON, "":
		return encodeJSON(w, strs)
	}
	return fmt.Errorf("sourcefile: unknown encoding %q", enc)
}

func encodeJSON(w io.Writer, strs []store.DocumentString) error {
	if len(strs) == 0 {
		_, err := io.WriteString(w, "{}\n")
		return err
	}

	var b bytes.Buffer
	b.WriteString("{\n")
	for i, s := range strs {
		key, err := marshalJSONString(s.Key)
		if err != nil {
			return err
		}
		value, err := marshalJSONString(s.Value)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "  %s: %s", key, value)
		if i < len(strs)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}\n")

	_, err := w.Write(b.Bytes())
	return err
}

func marshalJSONString(s string) (string, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return "", fmt.Errorf("sourcefile: encode %q: %w", s, err)
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

func encodeYAML(w io.Writer, strs []store.DocumentString) error {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, s := range strs {
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s.Value},
		)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return fmt.Errorf("sourcefile: encode yaml: %w", err)
	}
	return enc.Close()
}
