// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Package compiler wires the pipeline together: lexing, parsing,
// semantic analysis, lowering, optimization, and emission. It is a
// pure function from source text to Rust text; all I/O lives in the
// callers.
package compiler

import (
	"github.com/rive-lang/rivec/codegen"
	"github.com/rive-lang/rivec/internal/rlog"
	"github.com/rive-lang/rivec/ir"
	"github.com/rive-lang/rivec/lexer"
	"github.com/rive-lang/rivec/lower"
	"github.com/rive-lang/rivec/optimizer"
	"github.com/rive-lang/rivec/parser"
	"github.com/rive-lang/rivec/semantic"
	"github.com/rive-lang/rivec/token"
	"github.com/rive-lang/rivec/typesys"
)

// Stage names the pipeline stage an Error escaped from.
type Stage string

const (
	StageLex      Stage = "lex"
	StageParse    Stage = "parse"
	StageSemantic Stage = "semantic"
	StageLowering Stage = "lowering"
	StageCodegen  Stage = "codegen"
)

// Error is the single failure channel of a compilation: the first
// error of whichever stage failed, with its span when the stage had
// one.
type Error struct {
	Stage Stage
	Pos   *token.PosError // nil for codegen errors
	Msg   string
}

func (e *Error) Error() string {
	if e.Pos != nil {
		return e.Pos.Error()
	}

	return e.Msg
}

// Explain renders the error against the original source with a caret
// line where a span is available.
func (e *Error) Explain(source string) string {
	if e.Pos != nil {
		return e.Pos.Explain(source)
	}

	return "error: " + e.Msg + "\n"
}

func posError(stage Stage, p *token.PosError) *Error {
	return &Error{Stage: stage, Pos: p, Msg: p.Message}
}

// Options are the compiler's knobs, threaded through to the stages
// that consume them.
type Options struct {
	// EmitInlineHints lets the emitter annotate small helper
	// functions with an inlining hint for the host compiler.
	EmitInlineHints bool
}

// Compile turns Rive source text into Rust source text, or the first
// pipeline error.
func Compile(source string) (string, *Error) {
	return CompileWithOptions(source, Options{})
}

// CompileWithOptions is Compile with explicit knobs.
func CompileWithOptions(source string, opts Options) (string, *Error) {
	mod, err := analyze(source)
	if err != nil {
		return "", err
	}

	rlog.Debugf("codegen: emitting %d functions", len(mod.Functions))

	out, cerr := codegen.Generate(mod, codegen.Options{EmitInlineHints: opts.EmitInlineHints})
	if cerr != nil {
		return "", &Error{Stage: StageCodegen, Msg: cerr.Message}
	}

	return out, nil
}

// Check runs the pipeline through optimization and discards the
// result.
func Check(source string) *Error {
	_, err := analyze(source)
	return err
}

// analyze runs every stage up to and including optimization.
func analyze(source string) (*ir.Module, *Error) {
	reg := typesys.NewRegistry()

	rlog.Debugf("lex: %d bytes of source", len(source))

	toks, lexErr := lexer.Tokenize(source)
	if lexErr != nil {
		return nil, posError(StageLex, lexErr.PosError)
	}

	rlog.Debugf("parse: %d tokens", len(toks))

	prog, perr := parser.New(toks, reg).ParseProgram()
	if perr != nil {
		return nil, posError(StageParse, perr.PosError)
	}

	rlog.Debugf("semantic: %d top-level items", len(prog.Items))

	if serr := semantic.Analyze(prog, reg); serr != nil {
		return nil, posError(StageSemantic, serr.PosError)
	}

	mod, lerr := lower.Lower(prog, reg)
	if lerr != nil {
		return nil, posError(StageLowering, lerr.PosError)
	}

	rlog.Debugf("optimize: %d functions", len(mod.Functions))

	optimizer.New().Optimize(mod)

	return mod, nil
}
