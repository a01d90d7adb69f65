// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package semantic

import "github.com/rive-lang/rivec/typesys"

// symbol is one named binding in scope.
type symbol struct {
	typ     typesys.ID
	mutable bool
}

// scopeStack is the stacked symbol table: one map per lexical scope,
// growing on function, block, and match-arm entry. Shadowing across
// scopes is allowed; redefinition within one scope is not.
type scopeStack struct {
	scopes []map[string]symbol
}

func newScopeStack() *scopeStack {
	return &scopeStack{}
}

func (s *scopeStack) push() {
	s.scopes = append(s.scopes, make(map[string]symbol))
}

func (s *scopeStack) pop() {
	s.scopes = s.scopes[:len(s.scopes)-1]
}

// define binds name in the innermost scope, reporting false if the
// name is already bound there.
func (s *scopeStack) define(name string, sym symbol) bool {
	top := s.scopes[len(s.scopes)-1]
	if _, exists := top[name]; exists {
		return false
	}

	top[name] = sym

	return true
}

// lookup resolves name from the innermost scope outward.
func (s *scopeStack) lookup(name string) (symbol, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if sym, ok := s.scopes[i][name]; ok {
			return sym, true
		}
	}

	return symbol{}, false
}
