// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package lexer

import "github.com/rive-lang/rivec/token"

// Error reports an unrecognized byte or an unterminated literal at the
// offending position (spec.md §7: LexError).
type Error struct {
	*token.PosError
}

func newError(pos token.Pos, msg string) *Error {
	span := token.NewSpan(pos, pos)
	return &Error{token.NewPosError(span, msg)}
}
