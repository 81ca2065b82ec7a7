package vm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// FormatJSON renders v as JSON. Objects emit their enumerable own fields in
// definition order, wrappers emit their primitive, and values JSON cannot
// express (undefined, functions, NaN, infinities) become null. indent, when
// not empty, is repeated once per nesting level.
func (rt *Runtime) FormatJSON(v Value, indent string) (string, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, v, make(map[*Object]bool)); err != nil {
		return "", err
	}
	if indent == "" {
		return buf.String(), nil
	}
	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", indent); err != nil {
		return "", err
	}
	return out.String(), nil
}

func writeJSON(buf *bytes.Buffer, v Value, active map[*Object]bool) error {
	switch v.Type() {
	case TypeUndefined, TypeNull:
		buf.WriteString("null")
	case TypeBoolean:
		if v.AsBoolean() {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case TypeNumber:
		f := v.AsNumber()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf.WriteString("null")
		} else {
			buf.WriteString(formatNumber(f))
		}
	case TypeString:
		return writeJSONString(buf, v.AsString())
	case TypeObject:
		return writeJSONObject(buf, v.AsObject(), active)
	default:
		buf.WriteString("null")
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	// encoding/json handles escaping; drop the HTML-safe rewriting.
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1) // Encode appends a newline
	return nil
}

func writeJSONObject(buf *bytes.Buffer, o *Object, active map[*Object]bool) error {
	if p, ok := o.primitive(); ok {
		return writeJSON(buf, p, active)
	}
	if o.IsCallable() {
		buf.WriteString("null")
		return nil
	}
	if active[o] {
		return fmt.Errorf("cannot serialize a cyclic %s", o.kind)
	}
	active[o] = true
	defer delete(active, o)

	if o.kind == KindArray {
		buf.WriteByte('[')
		for i, el := range o.elements {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, el, active); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}

	buf.WriteByte('{')
	for i, f := range o.enumerableFields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(buf, f.name); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := writeJSON(buf, f.value, active); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

func (o *Object) enumerableFields() []Field {
	var out []Field
	for _, f := range o.fields {
		if f.flags.Enumerable() {
			out = append(out, f)
		}
	}
	return out
}

// ParseJSON decodes one JSON document. Objects keep the key order of the
// text and inherit from Object.meta; arrays are Array objects.
func (rt *Runtime) ParseJSON(text string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	v, err := rt.decodeJSON(dec)
	if err != nil {
		return Undefined, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Undefined, errors.New("unexpected content after JSON value")
	}
	return v, nil
}

// decodeJSON reads a value from the token stream, preserving key order.
func (rt *Runtime) decodeJSON(dec *json.Decoder) (Value, error) {
	token, err := dec.Token()
	if err == io.EOF {
		return Undefined, errors.New("unexpected end of JSON input")
	}
	if err != nil {
		return Undefined, err
	}

	switch t := token.(type) {
	case nil:
		return Null, nil
	case bool:
		return BooleanValue(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Undefined, err
		}
		return NumberValue(f), nil
	case string:
		return NewString(t), nil
	case json.Delim:
		switch t {
		case '{':
			obj := rt.NewPlainObject()
			for dec.More() {
				key, err := dec.Token()
				if err != nil {
					return Undefined, err
				}
				name, ok := key.(string)
				if !ok {
					return Undefined, errors.New("expected string key in object")
				}
				v, err := rt.decodeJSON(dec)
				if err != nil {
					return Undefined, err
				}
				obj.SetOwn(name, v)
			}
			if _, err := dec.Token(); err != nil {
				return Undefined, err
			}
			return ObjectValue(obj), nil
		case '[':
			var elems []Value
			for dec.More() {
				v, err := rt.decodeJSON(dec)
				if err != nil {
					return Undefined, err
				}
				elems = append(elems, v)
			}
			if _, err := dec.Token(); err != nil {
				return Undefined, err
			}
			return ObjectValue(rt.NewArray(elems...)), nil
		}
	}
	return Undefined, fmt.Errorf("unexpected JSON token %v", token)
}
