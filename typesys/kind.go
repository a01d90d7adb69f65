// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package typesys

// KindTag discriminates the variants of Kind.
type KindTag int

const (
	KInt KindTag = iota
	KFloat
	KText
	KBool
	KUnit
	KNull
	KArray
	KTuple
	KList
	KMap
	KOptional
	KFunction
	KStruct
	KEnum
	KGeneric
)

// EnumVariant is one constructor of an Enum type: a name plus its
// (possibly empty) field types.
type EnumVariant struct {
	Name   string
	Fields []ID
}

// StructField is one named field of a Struct type.
type StructField struct {
	Name string
	Type ID
}

// Kind is the structural shape of a type, independent of how it is
// stored in memory. It mirrors the sum type in spec.md §3:
//
//	Int | Float | Text | Bool | Unit | Null |
//	Array{elem,size} | Tuple{elems} | List{elem} | Map{key,val} |
//	Optional{inner} | Function{params,ret} |
//	Struct{name,fields} | Enum{name,variants} | Generic{name}
type Kind struct {
	Tag KindTag

	// Array / List element, or Optional inner.
	Elem ID
	Size int // Array only

	// Tuple
	Elems []ID

	// Map
	Key ID
	Val ID

	// Function
	Params []ID
	Ret    ID

	// Struct / Enum / Generic
	Name     string
	Fields   []StructField
	Variants []EnumVariant
}

// IsPrimitive reports whether k is one of the six built-in primitives.
func (k Kind) IsPrimitive() bool {
	switch k.Tag {
	case KInt, KFloat, KText, KBool, KUnit, KNull:
		return true
	default:
		return false
	}
}

// IsComposite reports whether k is built from other types structurally
// (as opposed to being a primitive or a user-defined nominal type).
func (k Kind) IsComposite() bool {
	switch k.Tag {
	case KArray, KTuple, KList, KMap, KOptional, KFunction:
		return true
	default:
		return false
	}
}

// IsUserDefined reports whether k is a named Struct or Enum.
func (k Kind) IsUserDefined() bool {
	return k.Tag == KStruct || k.Tag == KEnum
}

// DisplayName returns the short name of the kind, without recursing
// into element types (used for TypeKind::name() parity and as the
// name registered in the registry's name index).
func (k Kind) DisplayName() string {
	switch k.Tag {
	case KInt:
		return "Int"
	case KFloat:
		return "Float"
	case KText:
		return "Text"
	case KBool:
		return "Bool"
	case KUnit:
		return "Unit"
	case KNull:
		return "Null"
	case KArray:
		return "Array"
	case KTuple:
		return "Tuple"
	case KList:
		return "List"
	case KMap:
		return "Map"
	case KOptional:
		return "Optional"
	case KFunction:
		return "Function"
	case KStruct, KEnum, KGeneric:
		return k.Name
	default:
		return "Unknown"
	}
}
