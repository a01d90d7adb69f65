// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package parser

import (
	"fmt"

	"github.com/rive-lang/rivec/token"
)

// Error is a syntax error. Parsing aborts at the first one; there is
// no error recovery (the grammar is simple enough that recovery would
// mostly produce cascades, not useful diagnostics).
type Error struct {
	*token.PosError
}

func newError(sp token.Span, format string, args ...any) *Error {
	return &Error{token.NewPosError(sp, fmt.Sprintf(format, args...))}
}
