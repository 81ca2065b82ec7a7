package vm

import (
	"fmt"
	"strings"
)

// ObjectKind is the closed set of heap object types. The kind decides which
// payload field of Object is meaningful.
type ObjectKind uint8

const (
	KindPlain ObjectKind = iota
	KindBoolean
	KindNumber
	KindString
	KindArray
	KindFunction       // script closure
	KindNativeFunction // host-implemented callable
	KindError
	KindRegex

	kindCount
)

var kindNames = [kindCount]string{
	KindPlain:          "Object",
	KindBoolean:        "Boolean",
	KindNumber:         "Number",
	KindString:         "String",
	KindArray:          "Array",
	KindFunction:       "Function",
	KindNativeFunction: "Function",
	KindError:          "Error",
	KindRegex:          "Regex",
}

func (k ObjectKind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// PropertyFlags are the attribute bits of a property.
type PropertyFlags uint8

const (
	ReadOnly PropertyFlags = 1 << iota
	DontEnum
	DontConf

	// Hidden is the usual attribute set for built-in methods.
	Hidden = DontEnum
	// Constant is used for fixed values such as Math.pi.
	Constant = ReadOnly | DontEnum | DontConf
)

func (f PropertyFlags) Enumerable() bool   { return f&DontEnum == 0 }
func (f PropertyFlags) Writable() bool     { return f&ReadOnly == 0 }
func (f PropertyFlags) Configurable() bool { return f&DontConf == 0 }

type Field struct {
	name  string
	value Value
	flags PropertyFlags
}

func (f Field) Name() string         { return f.name }
func (f Field) Value() Value         { return f.value }
func (f Field) Flags() PropertyFlags { return f.flags }

// Object is a heap-allocated entity: a kind, a prototype back-reference, an
// ordered property table and one kind-specific payload.
type Object struct {
	kind      ObjectKind
	prototype *Object
	fields    []Field
	index     map[string]int // name -> position in fields

	// Payload; only the field matching kind is used.
	boolean  bool
	number   float64
	str      string
	elements []Value
	native   *NativeFunction
	script   *ScriptFunction
	regex    *RegexData
}

// NewObject allocates an object of the given kind. The prototype is fixed
// here; objects never get re-parented afterwards.
func NewObject(kind ObjectKind, prototype *Object) *Object {
	return &Object{kind: kind, prototype: prototype}
}

func (o *Object) Kind() ObjectKind   { return o.kind }
func (o *Object) Prototype() *Object { return o.prototype }
func (o *Object) Len() int           { return len(o.fields) }
func (o *Object) IsCallable() bool   { return o.kind == KindFunction || o.kind == KindNativeFunction }
func (o *Object) Value() Value       { return ObjectValue(o) }

func (o *Object) lookup(name string) (int, bool) {
	if o.index == nil {
		return -1, false
	}
	i, ok := o.index[name]
	return i, ok
}

// GetOwn looks up a direct (own) property by name. Returns (value, true) if present.
func (o *Object) GetOwn(name string) (Value, bool) {
	if i, ok := o.lookup(name); ok {
		return o.fields[i].value, true
	}
	return Undefined, false
}

// GetOwnField returns the own property with its flags.
func (o *Object) GetOwnField(name string) (Field, bool) {
	if i, ok := o.lookup(name); ok {
		return o.fields[i], true
	}
	return Field{}, false
}

func (o *Object) HasOwn(name string) bool {
	_, ok := o.lookup(name)
	return ok
}

// SetOwn sets or defines an own property. New properties are appended with
// default (enumerable, writable, configurable) attributes; existing ones keep
// their flags. Returns false if the property exists and is read-only.
func (o *Object) SetOwn(name string, v Value) bool {
	if i, ok := o.lookup(name); ok {
		if !o.fields[i].flags.Writable() {
			return false
		}
		o.fields[i].value = v
		return true
	}
	o.appendField(Field{name: name, value: v})
	return true
}

// SetOwnNonEnumerable sets or defines an own property as non-enumerable (for built-in methods).
func (o *Object) SetOwnNonEnumerable(name string, v Value) {
	o.DefineOwn(name, v, DontEnum)
}

// DefineOwn defines or replaces an own property with explicit attributes,
// regardless of the previous attributes. Position in the table is kept for
// existing properties.
func (o *Object) DefineOwn(name string, v Value, flags PropertyFlags) {
	if i, ok := o.lookup(name); ok {
		o.fields[i].value = v
		o.fields[i].flags = flags
		return
	}
	o.appendField(Field{name: name, value: v, flags: flags})
}

func (o *Object) appendField(f Field) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	o.index[f.name] = len(o.fields)
	o.fields = append(o.fields, f)
}

// DeleteOwn removes an own property if present and configurable.
// Returns true if the property no longer exists.
func (o *Object) DeleteOwn(name string) bool {
	idx, ok := o.lookup(name)
	if !ok {
		return true
	}
	if !o.fields[idx].flags.Configurable() {
		return false
	}
	copy(o.fields[idx:], o.fields[idx+1:])
	o.fields[len(o.fields)-1] = Field{}
	o.fields = o.fields[:len(o.fields)-1]
	delete(o.index, name)
	for i := idx; i < len(o.fields); i++ {
		o.index[o.fields[i].name] = i
	}
	return true
}

// OwnKeys returns the enumerable own property names in insertion order.
func (o *Object) OwnKeys() []string {
	keys := make([]string, 0, len(o.fields))
	for _, f := range o.fields {
		if f.flags.Enumerable() {
			keys = append(keys, f.name)
		}
	}
	return keys
}

// AllOwnKeys returns every own property name, enumerable or not.
func (o *Object) AllOwnKeys() []string {
	keys := make([]string, len(o.fields))
	for i, f := range o.fields {
		keys[i] = f.name
	}
	return keys
}

// Fields returns a copy of the own property table.
func (o *Object) Fields() []Field {
	out := make([]Field, len(o.fields))
	copy(out, o.fields)
	return out
}

// --- Payload accessors ---

func (o *Object) BooleanData() (bool, bool) {
	return o.boolean, o.kind == KindBoolean
}

func (o *Object) NumberData() (float64, bool) {
	return o.number, o.kind == KindNumber
}

func (o *Object) StringData() (string, bool) {
	return o.str, o.kind == KindString
}

// Elements returns the backing slice of an Array object (nil for other kinds).
func (o *Object) Elements() []Value {
	if o.kind != KindArray {
		return nil
	}
	return o.elements
}

// SetElements replaces the backing slice of an Array object.
func (o *Object) SetElements(elems []Value) {
	if o.kind == KindArray {
		o.elements = elems
	}
}

func (o *Object) Native() *NativeFunction {
	if o.kind != KindNativeFunction {
		return nil
	}
	return o.native
}

func (o *Object) Script() *ScriptFunction {
	if o.kind != KindFunction {
		return nil
	}
	return o.script
}

func (o *Object) RegexData() *RegexData {
	if o.kind != KindRegex {
		return nil
	}
	return o.regex
}

// SetRegexData attaches the compiled pattern to a Regex object.
func (o *Object) SetRegexData(r *RegexData) {
	if o.kind == KindRegex {
		o.regex = r
	}
}

// primitive returns the wrapped primitive of Boolean/Number/String objects.
func (o *Object) primitive() (Value, bool) {
	switch o.kind {
	case KindBoolean:
		return BooleanValue(o.boolean), true
	case KindNumber:
		return NumberValue(o.number), true
	case KindString:
		return NewString(o.str), true
	}
	return Undefined, false
}

// PrimitiveValue is the exported form of primitive, used by to_value.
func (o *Object) PrimitiveValue() (Value, bool) { return o.primitive() }

// displayString renders an object without running script code.
func (o *Object) displayString() string {
	switch o.kind {
	case KindBoolean, KindNumber, KindString:
		p, _ := o.primitive()
		return p.ToString()
	case KindArray:
		parts := make([]string, len(o.elements))
		for i, el := range o.elements {
			if el.IsObject() && el.obj == o {
				continue
			}
			parts[i] = el.ToString()
		}
		return strings.Join(parts, ", ")
	case KindNativeFunction:
		if o.native != nil && o.native.Name != "" {
			return fmt.Sprintf("<native function %s>", o.native.Name)
		}
		return "<native function>"
	case KindFunction:
		if o.script != nil && o.script.Name != "" {
			return fmt.Sprintf("<function %s>", o.script.Name)
		}
		return "<function>"
	case KindError:
		name, message := "Error", ""
		if v, ok := o.GetOwn("name"); ok && v.IsString() {
			name = v.AsString()
		} else if o.prototype != nil {
			if v, ok := o.prototype.GetOwn("name"); ok && v.IsString() {
				name = v.AsString()
			}
		}
		if v, ok := o.GetOwn("message"); ok && v.IsString() {
			message = v.AsString()
		}
		if message == "" {
			return name
		}
		return name + ": " + message
	case KindRegex:
		if o.regex != nil {
			return o.regex.String()
		}
		return "<regex>"
	}
	return "[object Object]"
}
