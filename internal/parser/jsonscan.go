package parser

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"
)

// Upper bound on brace positions tried per script block.
const maxJSONCandidates = 256

type jsonObject map[string]json.RawMessage

type jsonField struct {
	Key   string
	Value json.RawMessage
}

// firstJSONObject parses the whole block as a JSON object, and failing that
// returns the first object that decodes from any '{' in the text.
// It returns an empty object when nothing parses.
func firstJSONObject(text string) jsonObject {
	if obj, ok := parseWholeObject(strings.TrimSpace(text)); ok {
		return obj
	}

	offset := 0
	for attempt := 0; attempt < maxJSONCandidates; attempt++ {
		i := strings.IndexByte(text[offset:], '{')
		if i < 0 {
			break
		}
		start := offset + i

		var obj jsonObject
		dec := json.NewDecoder(strings.NewReader(text[start:]))
		if err := dec.Decode(&obj); err == nil && obj != nil {
			return obj
		}
		offset = start + 1
	}

	return jsonObject{}
}

func parseWholeObject(text string) (jsonObject, bool) {
	if !strings.HasPrefix(text, "{") {
		return nil, false
	}

	var obj jsonObject
	dec := json.NewDecoder(strings.NewReader(text))
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return obj, true
}

// decodeValue decodes raw keeping numbers as json.Number.
func decodeValue(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}

func (o jsonObject) array(key string) ([]json.RawMessage, bool) {
	raw, ok := o[key]
	if !ok {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}
	return items, true
}

// orderedFields lists the members of a JSON object in document order.
func orderedFields(raw json.RawMessage) []jsonField {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	var fields []jsonField
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fields
		}
		key, ok := tok.(string)
		if !ok {
			return fields
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return fields
		}
		fields = append(fields, jsonField{Key: key, Value: value})
	}
	return fields
}

// truthy treats nil, false, zero and "" as absent.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	default:
		return true
	}
}

// pick returns the first truthy value among keys.
func pick(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && truthy(v) {
			return v
		}
	}
	return nil
}

// stringify renders scalars and arrays as text. Objects and null become "".
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

func rawString(raw json.RawMessage) string {
	var v any
	if err := decodeValue(raw, &v); err != nil {
		return ""
	}
	return stringify(v)
}
