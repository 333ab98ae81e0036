package selection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var errNotObject = errors.New("selection payload is not a JSON object of strings")

// Marshal writes entries as a JSON object whose keys keep insertion order.
func Marshal(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.CardID)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Interface)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Unmarshal reads a JSON object of string values, preserving key order.
// A repeated key keeps its first position and its last value.
func Unmarshal(data []byte) ([]Entry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}

	var out []Entry
	pos := map[string]int{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode selection: %w", err)
		}
		key, _ := kt.(string)
		var val string
		if err := dec.Decode(&val); err != nil {
			return nil, fmt.Errorf("decode selection %q: %w", key, err)
		}
		if i, dup := pos[key]; dup {
			out[i].Interface = val
			continue
		}
		pos[key] = len(out)
		out = append(out, Entry{CardID: key, Interface: val})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode selection: %w", err)
	}
	if dec.More() {
		return nil, errNotObject
	}
	return out, nil
}
