package vm

import "phonscript/pkg/errors"

// Registry holds the shared meta-objects (prototypes) of a runtime: one per
// object kind, plus one per error kind. Metas are created once in
// NewRuntime and live until the runtime is dropped. Builtins fill them with
// methods but never replace them.
type Registry struct {
	metas      [kindCount]*Object
	errorMetas map[string]*Object
}

func newRegistry() *Registry {
	r := &Registry{errorMetas: make(map[string]*Object)}

	// Object.meta is the root of every prototype chain.
	root := NewObject(KindPlain, nil)
	r.metas[KindPlain] = root

	// Function.meta is a plain object so that looking up a method on it never
	// finds a half-initialised function payload.
	fnMeta := NewObject(KindPlain, root)
	r.metas[KindFunction] = fnMeta
	r.metas[KindNativeFunction] = fnMeta

	// Primitive metas carry the zero payload of their kind.
	r.metas[KindBoolean] = NewObject(KindBoolean, root)
	r.metas[KindNumber] = NewObject(KindNumber, root)
	r.metas[KindString] = NewObject(KindString, root)
	r.metas[KindArray] = NewObject(KindArray, root)
	r.metas[KindRegex] = NewObject(KindPlain, root)

	errMeta := NewObject(KindPlain, root)
	errMeta.DefineOwn("name", NewString(errors.KindError), DontEnum)
	errMeta.DefineOwn("message", NewString(""), DontEnum)
	r.metas[KindError] = errMeta
	r.errorMetas[errors.KindError] = errMeta

	return r
}

// Meta returns the prototype for objects of the given kind. It never
// returns nil for a valid kind.
func (r *Registry) Meta(kind ObjectKind) *Object {
	if kind >= kindCount {
		return r.metas[KindPlain]
	}
	return r.metas[kind]
}

// ErrorMeta returns the meta-object used for errors of the given kind,
// falling back to Error.meta for kinds without a dedicated one.
func (r *Registry) ErrorMeta(kind string) *Object {
	if m, ok := r.errorMetas[kind]; ok {
		return m
	}
	return r.metas[KindError]
}

// DefineErrorMeta creates (or returns the existing) meta-object for an
// error kind. The new meta inherits from Error.meta and carries the kind as
// its name.
func (r *Registry) DefineErrorMeta(kind string) *Object {
	if m, ok := r.errorMetas[kind]; ok {
		return m
	}
	m := NewObject(KindPlain, r.metas[KindError])
	m.DefineOwn("name", NewString(kind), DontEnum)
	r.errorMetas[kind] = m
	return m
}

// ErrorKinds returns the error kinds that have a dedicated meta-object.
func (r *Registry) ErrorKinds() []string {
	out := make([]string, 0, len(r.errorMetas))
	for k := range r.errorMetas {
		out = append(out, k)
	}
	return out
}

// IsMeta reports whether o is one of the registry's shared prototypes.
func (r *Registry) IsMeta(o *Object) bool {
	for _, m := range r.metas {
		if m == o {
			return true
		}
	}
	for _, m := range r.errorMetas {
		if m == o {
			return true
		}
	}
	return false
}
