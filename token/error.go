// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package token

import (
	"fmt"
	"strconv"
	"strings"
)

// PosError is a diagnostic anchored at a Span, optionally wrapping a
// lower-level cause. It is the common shape of every compiler-stage
// error (lex, parse, semantic, lowering, codegen); stage packages embed
// it rather than reinvent span-carrying errors.
type PosError struct {
	Span    Span
	Message string
	Cause   error
	Hint    string
}

// NewPosError creates a PosError anchored at span.
func NewPosError(span Span, msg string) *PosError {
	return &PosError{Span: span, Message: msg}
}

func (p *PosError) SetCause(err error) *PosError {
	p.Cause = err
	return p
}

func (p *PosError) SetHint(hint string) *PosError {
	p.Hint = hint
	return p
}

func (p *PosError) Unwrap() error {
	return p.Cause
}

func (p *PosError) Error() string {
	if p.Cause == nil {
		return p.Message
	}

	return p.Message + ": " + p.Cause.Error()
}

// Explain renders a multi-line, caret-annotated diagnostic against the
// original source text, in the shape a terminal would print it. The
// shell is the intended caller (spec: "the shell pretty-prints errors
// against the original source with a caret line"); it is implemented
// here, next to PosError, because it is pure and needs nothing the
// shell has that this package doesn't.
func (p *PosError) Explain(source string) string {
	lines := strings.Split(source, "\n")
	lineNo := p.Span.Start.Line
	indent := len(strconv.Itoa(lineNo))

	var sb strings.Builder

	sb.WriteString("error: ")
	sb.WriteString(p.Message)
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%*s--> %s\n", indent, "", p.Span.Start.String()))
	sb.WriteString(fmt.Sprintf("%*s |\n", indent, ""))

	text := ""
	if idx := lineNo - 1; idx >= 0 && idx < len(lines) {
		text = lines[idx]
	}

	sb.WriteString(fmt.Sprintf("%*d | %s\n", indent, lineNo, text))
	sb.WriteString(fmt.Sprintf("%*s | ", indent, ""))

	width := p.Span.End.Col - p.Span.Start.Col
	if width < 1 {
		width = 1
	}

	sb.WriteString(strings.Repeat(" ", max0(p.Span.Start.Col-1)))
	sb.WriteString(strings.Repeat("^", width))
	sb.WriteString(" ")
	sb.WriteString(p.Message)
	sb.WriteString("\n")

	if p.Hint != "" {
		sb.WriteString(fmt.Sprintf("%*s = hint: %s\n", indent, "", p.Hint))
	}

	return sb.String()
}

func max0(n int) int {
	if n < 0 {
		return 0
	}

	return n
}
