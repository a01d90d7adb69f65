// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package typesys

// Strategy is the memory management strategy the emitter uses for
// values of a type.
type Strategy int

const (
	// Copy values are bitwise duplicated: primitives, fixed arrays
	// of Copy elements, function pointers, tuples of Copy types.
	Copy Strategy = iota

	// CoW values are shared via reference counting and cloned on the
	// first mutation after a share: Text, List, Map, arrays of
	// non-Copy elements, structs (unless marked unique).
	CoW

	// Unique values have a single owner and cannot be implicitly
	// shared or copied. Reserved for resource handles; see DESIGN.md
	// for why rivec treats Unique as CoW until a concrete unique type
	// is introduced (spec.md §9 open question).
	Unique
)

func (s Strategy) String() string {
	switch s {
	case Copy:
		return "Copy"
	case CoW:
		return "CoW"
	case Unique:
		return "Unique"
	default:
		return "Unknown"
	}
}

func (s Strategy) IsCopy() bool   { return s == Copy }
func (s Strategy) UsesRc() bool   { return s == CoW }
func (s Strategy) IsUnique() bool { return s == Unique }

// ForPrimitive returns the default strategy for one of the primitive
// DisplayName strings.
func ForPrimitive(name string) Strategy {
	switch name {
	case "Int", "Float", "Bool", "Unit":
		return Copy
	case "Text":
		return CoW
	default:
		return CoW
	}
}
