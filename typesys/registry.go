// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package typesys

import (
	"fmt"
	"sort"
)

// MethodSignature is the signature of a built-in method on a
// primitive or collection type.
type MethodSignature struct {
	Name       string
	Parameters []ID
	ReturnType ID
}

type methodKey struct {
	owner ID
	name  string
}

// Registry is the authoritative, append-only store of every type in
// one compilation. No ID is ever recycled; a cloned Registry (the IR
// module clones the one the parser and lowering pass built) preserves
// ID identity, since Clone is a deep copy of the same ID space.
type Registry struct {
	types    map[ID]Metadata
	nextID   ID
	nameToID map[string]ID
	methods  map[methodKey]MethodSignature
}

// NewRegistry creates a Registry with the six built-in primitives and
// their built-in methods already registered.
func NewRegistry() *Registry {
	r := &Registry{
		types:    make(map[ID]Metadata),
		nextID:   UserDefinedStart,
		nameToID: make(map[string]ID),
		methods:  make(map[methodKey]MethodSignature),
	}

	r.registerBuiltin(Int, Kind{Tag: KInt}, "Int")
	r.registerBuiltin(Float, Kind{Tag: KFloat}, "Float")
	r.registerBuiltin(Text, Kind{Tag: KText}, "Text")
	r.registerBuiltin(Bool, Kind{Tag: KBool}, "Bool")
	r.registerBuiltin(Unit, Kind{Tag: KUnit}, "Unit")
	r.registerBuiltin(Null, Kind{Tag: KNull}, "Null")

	r.registerBuiltinMethods()

	return r
}

func (r *Registry) registerBuiltin(id ID, kind Kind, name string) {
	r.types[id] = primitiveMetadata(id, kind)
	r.nameToID[name] = id
}

// GenerateID reserves and returns a fresh, never-before-used ID.
func (r *Registry) GenerateID() ID {
	id := r.nextID
	r.nextID++

	return id
}

// Register stores metadata under its own ID, indexing it by name if it
// has one, and returns the ID.
func (r *Registry) Register(meta Metadata) ID {
	r.types[meta.ID] = meta

	if name := meta.Kind.DisplayName(); name != "" && meta.Kind.IsUserDefined() {
		r.nameToID[name] = meta.ID
	}

	return meta.ID
}

// Get looks up metadata by ID.
func (r *Registry) Get(id ID) (Metadata, bool) {
	m, ok := r.types[id]
	return m, ok
}

// MustGet looks up metadata by ID, panicking if it is absent. Use only
// where the ID is known by construction to have been registered (the
// Rust original's `get_type_metadata` has the same contract).
func (r *Registry) MustGet(id ID) Metadata {
	m, ok := r.types[id]
	if !ok {
		panic(fmt.Sprintf("typesys: %s not present in registry", id))
	}

	return m
}

// GetByName looks up an ID by the name it was registered under
// (primitives and user-defined struct/enum types only).
func (r *Registry) GetByName(name string) (ID, bool) {
	id, ok := r.nameToID[name]
	return id, ok
}

// AreCompatible answers the target/source compatibility rule from
// spec.md §3: identical IDs are always compatible; T widens to
// Optional<T>; Null widens to any Optional<_>; composite kinds recurse
// structurally.
func (r *Registry) AreCompatible(target, source ID) bool {
	if target == source {
		return true
	}

	t, tok := r.Get(target)
	s, sok := r.Get(source)

	if !tok || !sok {
		return false
	}

	if t.Kind.Tag == KOptional && t.Kind.Elem == source {
		return true
	}

	if s.Kind.Tag == KNull && t.Kind.Tag == KOptional {
		return true
	}

	return r.kindsCompatible(t.Kind, s.Kind)
}

func (r *Registry) kindsCompatible(target, source Kind) bool {
	if target.Tag != source.Tag {
		return false
	}

	switch target.Tag {
	case KInt, KFloat, KText, KBool, KUnit, KNull:
		return true
	case KArray:
		return target.Size == source.Size && r.AreCompatible(target.Elem, source.Elem)
	case KOptional:
		return r.AreCompatible(target.Elem, source.Elem)
	case KList:
		return r.AreCompatible(target.Elem, source.Elem)
	case KMap:
		return r.AreCompatible(target.Key, source.Key) && r.AreCompatible(target.Val, source.Val)
	case KTuple:
		if len(target.Elems) != len(source.Elems) {
			return false
		}

		for i := range target.Elems {
			if !r.AreCompatible(target.Elems[i], source.Elems[i]) {
				return false
			}
		}

		return true
	case KFunction:
		if len(target.Params) != len(source.Params) {
			return false
		}

		for i := range target.Params {
			if !r.AreCompatible(target.Params[i], source.Params[i]) {
				return false
			}
		}

		return r.AreCompatible(target.Ret, source.Ret)
	case KStruct, KEnum:
		return target.Name == source.Name
	default:
		return false
	}
}

// CreateArray registers and returns the ID for Array{elem,size}.
func (r *Registry) CreateArray(elem ID, size int) ID {
	id := r.GenerateID()
	strategy := CoW

	if m, ok := r.Get(elem); ok && m.IsCopy() {
		strategy = Copy
	}

	return r.Register(compositeMetadata(id, Kind{Tag: KArray, Elem: elem, Size: size}, strategy))
}

// CreateOptional registers and returns the ID for Optional{inner}.
func (r *Registry) CreateOptional(inner ID) ID {
	id := r.GenerateID()
	strategy := CoW

	if m, ok := r.Get(inner); ok && m.IsCopy() {
		strategy = Copy
	}

	return r.Register(compositeMetadata(id, Kind{Tag: KOptional, Elem: inner}, strategy))
}

// CreateFunction registers and returns the ID for Function{params,ret}.
// Function values are always Copy (function pointers).
func (r *Registry) CreateFunction(params []ID, ret ID) ID {
	id := r.GenerateID()
	return r.Register(compositeMetadata(id, Kind{Tag: KFunction, Params: params, Ret: ret}, Copy))
}

// CreateTuple registers and returns the ID for Tuple{elems}. Tuples are
// Copy only if every element is Copy.
func (r *Registry) CreateTuple(elems []ID) ID {
	id := r.GenerateID()
	strategy := Copy

	for _, e := range elems {
		m, ok := r.Get(e)
		if !ok || !m.IsCopy() {
			strategy = CoW
			break
		}
	}

	return r.Register(compositeMetadata(id, Kind{Tag: KTuple, Elems: elems}, strategy))
}

// CreateList registers and returns the ID for List{elem}. Lists always
// use CoW (Rc<RefCell<Vec<T>>> on the Rust side).
func (r *Registry) CreateList(elem ID) ID {
	id := r.GenerateID()
	return r.Register(compositeMetadata(id, Kind{Tag: KList, Elem: elem}, CoW))
}

// CreateMap registers and returns the ID for Map{key,val}. Maps always
// use CoW (Rc<RefCell<HashMap<K,V>>> on the Rust side).
func (r *Registry) CreateMap(key, val ID) ID {
	id := r.GenerateID()
	return r.Register(compositeMetadata(id, Kind{Tag: KMap, Key: key, Val: val}, CoW))
}

// CreateStruct registers a user struct type. Structs use CoW unless
// explicitUnique is set.
func (r *Registry) CreateStruct(name string, fields []StructField, explicitUnique bool) ID {
	id := r.GenerateID()
	strategy := CoW

	if explicitUnique {
		strategy = Unique
	}

	return r.Register(userDefinedMetadata(id, Kind{Tag: KStruct, Name: name, Fields: fields}, strategy, explicitUnique))
}

// CreateEnum registers a user enum type.
func (r *Registry) CreateEnum(name string, variants []EnumVariant) ID {
	id := r.GenerateID()
	return r.Register(userDefinedMetadata(id, Kind{Tag: KEnum, Name: name, Variants: variants}, CoW, false))
}

// ReserveStruct registers a name-only placeholder for a struct so that
// a later field (in this struct or another declared before it) can
// reference the type by name while its own field list is still being
// resolved. Call DefineStructFields once the fields are known. This is
// how self-referential and mutually-referential struct declarations
// avoid a chicken-and-egg ordering requirement (spec.md §9: "the
// registry stores metadata keyed by id, and traversal is
// id-indirected").
func (r *Registry) ReserveStruct(name string, explicitUnique bool) ID {
	return r.CreateStruct(name, nil, explicitUnique)
}

// DefineStructFields fills in the field list of a struct previously
// created by ReserveStruct, preserving its ID, strategy, and
// ExplicitUnique flag.
func (r *Registry) DefineStructFields(id ID, fields []StructField) {
	m := r.MustGet(id)
	m.Kind.Fields = fields
	r.types[id] = m
}

// ReserveEnum registers a name-only placeholder for an enum; see
// ReserveStruct.
func (r *Registry) ReserveEnum(name string) ID {
	return r.CreateEnum(name, nil)
}

// DefineEnumVariants fills in the variant list of an enum previously
// created by ReserveEnum, preserving its ID.
func (r *Registry) DefineEnumVariants(id ID, variants []EnumVariant) {
	m := r.MustGet(id)
	m.Kind.Variants = variants
	r.types[id] = m
}

// TypeName returns a human-readable name for error messages, rendering
// Optional<T> as "T?" rather than the internal "Optional" kind name.
func (r *Registry) TypeName(id ID) string {
	m, ok := r.Get(id)
	if !ok {
		return fmt.Sprintf("Unknown(%d)", id)
	}

	return r.displayName(m)
}

func (r *Registry) displayName(m Metadata) string {
	switch m.Kind.Tag {
	case KOptional:
		return r.TypeName(m.Kind.Elem) + "?"
	case KArray:
		return fmt.Sprintf("[%s; %d]", r.TypeName(m.Kind.Elem), m.Kind.Size)
	case KList:
		return fmt.Sprintf("List<%s>", r.TypeName(m.Kind.Elem))
	case KMap:
		return fmt.Sprintf("Map<%s, %s>", r.TypeName(m.Kind.Key), r.TypeName(m.Kind.Val))
	case KTuple:
		names := make([]string, len(m.Kind.Elems))
		for i, e := range m.Kind.Elems {
			names[i] = r.TypeName(e)
		}

		s := "("
		for i, n := range names {
			if i > 0 {
				s += ", "
			}
			s += n
		}

		return s + ")"
	case KFunction:
		return "Function"
	default:
		return m.Kind.DisplayName()
	}
}

// RegisterMethod registers a built-in method signature for a type.
func (r *Registry) RegisterMethod(owner ID, name string, params []ID, ret ID) {
	r.methods[methodKey{owner, name}] = MethodSignature{Name: name, Parameters: params, ReturnType: ret}
}

// GetMethod looks up a method signature for owner. Primitive methods
// come from the explicit table; List/Map/Tuple methods are synthesized
// from the owning type's element/key/value types, since the same
// method name ("get", "len", ...) has a different signature for every
// instantiation.
func (r *Registry) GetMethod(owner ID, name string) (MethodSignature, bool) {
	if sig, ok := r.methods[methodKey{owner, name}]; ok {
		return sig, true
	}

	m, ok := r.Get(owner)
	if !ok {
		return MethodSignature{}, false
	}

	switch m.Kind.Tag {
	case KList:
		return r.listMethod(m.Kind.Elem, name)
	case KMap:
		return r.mapMethod(m.Kind.Key, m.Kind.Val, name)
	case KTuple:
		if name == "len" {
			return MethodSignature{Name: "len", ReturnType: Int}, true
		}
	}

	return MethodSignature{}, false
}

func (r *Registry) listMethod(elem ID, name string) (MethodSignature, bool) {
	switch name {
	case "len":
		return MethodSignature{Name: name, ReturnType: Int}, true
	case "is_empty", "contains":
		params := []ID(nil)
		if name == "contains" {
			params = []ID{elem}
		}
		return MethodSignature{Name: name, Parameters: params, ReturnType: Bool}, true
	case "get":
		// Returns the bare element type; the caller (lowering) wraps it
		// in Optional<elem> per spec.md §4.4's special-cased dispatch.
		return MethodSignature{Name: name, Parameters: []ID{Int}, ReturnType: elem}, true
	case "append":
		return MethodSignature{Name: name, Parameters: []ID{elem}, ReturnType: Unit}, true
	case "insert":
		return MethodSignature{Name: name, Parameters: []ID{Int, elem}, ReturnType: Unit}, true
	case "remove":
		return MethodSignature{Name: name, Parameters: []ID{Int}, ReturnType: Unit}, true
	case "clear", "reverse", "sort":
		return MethodSignature{Name: name, ReturnType: Unit}, true
	default:
		return MethodSignature{}, false
	}
}

func (r *Registry) mapMethod(key, val ID, name string) (MethodSignature, bool) {
	switch name {
	case "len":
		return MethodSignature{Name: name, ReturnType: Int}, true
	case "is_empty":
		return MethodSignature{Name: name, ReturnType: Bool}, true
	case "get":
		return MethodSignature{Name: name, Parameters: []ID{key}, ReturnType: val}, true
	case "contains_key":
		return MethodSignature{Name: name, Parameters: []ID{key}, ReturnType: Bool}, true
	case "insert":
		return MethodSignature{Name: name, Parameters: []ID{key, val}, ReturnType: Unit}, true
	case "remove":
		return MethodSignature{Name: name, Parameters: []ID{key}, ReturnType: Unit}, true
	case "keys":
		return MethodSignature{Name: name, ReturnType: key}, true
	case "values":
		return MethodSignature{Name: name, ReturnType: val}, true
	default:
		return MethodSignature{}, false
	}
}

func (r *Registry) registerBuiltinMethods() {
	r.RegisterMethod(Int, "to_float", nil, Float)

	optInt := r.CreateOptional(Int)
	r.RegisterMethod(Float, "to_int", nil, optInt)
	r.RegisterMethod(Float, "is_nan", nil, Bool)
	r.RegisterMethod(Float, "is_infinite", nil, Bool)
	r.RegisterMethod(Float, "is_finite", nil, Bool)
	r.RegisterMethod(Float, "round", nil, Float)

	r.RegisterMethod(Text, "len", nil, Int)
	r.RegisterMethod(Text, "is_empty", nil, Bool)
	r.RegisterMethod(Text, "contains", []ID{Text}, Bool)
	r.RegisterMethod(Text, "to_upper", nil, Text)
	r.RegisterMethod(Text, "to_lower", nil, Text)
	r.RegisterMethod(Text, "trim", nil, Text)
	r.RegisterMethod(Text, "replace", []ID{Text, Text}, Text)
}

// UserTypes returns every registered struct and enum, ordered by ID
// (declaration order), for the emitter to generate type declarations
// from.
func (r *Registry) UserTypes() []Metadata {
	var out []Metadata

	for _, m := range r.types {
		if m.Kind.IsUserDefined() {
			out = append(out, m)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Clone returns a deep, independent copy of the registry that
// preserves every ID's identity, so that IR built against the clone
// can still be resolved against the original (and vice versa).
func (r *Registry) Clone() *Registry {
	clone := &Registry{
		types:    make(map[ID]Metadata, len(r.types)),
		nextID:   r.nextID,
		nameToID: make(map[string]ID, len(r.nameToID)),
		methods:  make(map[methodKey]MethodSignature, len(r.methods)),
	}

	for k, v := range r.types {
		clone.types[k] = v
	}

	for k, v := range r.nameToID {
		clone.nameToID[k] = v
	}

	for k, v := range r.methods {
		clone.methods[k] = v
	}

	return clone
}
