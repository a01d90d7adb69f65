// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Package rivec compiles Rive source text to Rust source text. It is
// the library facade over the stage packages (lexer, parser,
// semantic, lower, optimizer, codegen); callers that need stage
// detail or emitter options use the compiler package directly.
package rivec

import "github.com/rive-lang/rivec/compiler"

// Compile turns one Rive source text into equivalent Rust source
// text.
func Compile(source string) (string, error) {
	out, err := compiler.Compile(source)
	if err != nil {
		return "", err
	}

	return out, nil
}

// Check validates source through the whole pipeline without emitting
// code.
func Check(source string) error {
	if err := compiler.Check(source); err != nil {
		return err
	}

	return nil
}
