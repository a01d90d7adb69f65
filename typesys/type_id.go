// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Package typesys is the Rive type system: an append-only registry
// unifying primitives, composites, and user-defined types behind a
// lightweight TypeId handle, plus the memory-strategy metadata the
// emitter needs to choose between bitwise copy, Rc<RefCell<..>>
// sharing, and move-only ownership.
package typesys

import "strconv"

// ID is an opaque handle into a Registry. Equality of two IDs implies
// identity of types only within the Registry instance that produced
// them.
type ID uint64

// Reserved IDs for the built-in primitives.
const (
	Int ID = iota
	Float
	Text
	Bool
	Unit
	Null
)

// UserDefinedStart is the first ID a Registry hands out for composite
// or user-defined types.
const UserDefinedStart ID = 1000

func (id ID) String() string {
	return "TypeId(" + strconv.FormatUint(uint64(id), 10) + ")"
}
