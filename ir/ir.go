// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Package ir defines the typed intermediate representation produced by
// the lowering pass and consumed by the optimizer and the code
// emitter. Unlike the ast package, every expression node carries its
// resolved typesys.ID, every let binding carries a memory strategy,
// names are already resolved, and implicit T -> T? coercions are
// explicit WrapOptional nodes.
package ir

import (
	"github.com/rive-lang/rivec/token"
	"github.com/rive-lang/rivec/typesys"
)

// Module is one lowered compilation unit. It owns an independent
// clone of the type registry so the optimizer and emitter can resolve
// type metadata without the earlier pipeline stages.
type Module struct {
	Functions []*Function
	Registry  *typesys.Registry
}

// Param is one function parameter with its resolved type.
type Param struct {
	Name string
	Type typesys.ID
}

// Function is a lowered function. Instance methods of impl blocks
// appear here as free functions named TypeName_instance_methodName
// with the receiver prepended as the first parameter.
type Function struct {
	Name       string
	Params     []Param
	ReturnType typesys.ID
	Body       *Block
	Sp         token.Span
}

// Block is a statement list with an optional final expression whose
// value is the block's value. FinalExpr nil means the block's value
// is Unit.
type Block struct {
	Statements []Stmt
	FinalExpr  Expr
	Sp         token.Span
}
