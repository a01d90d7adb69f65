// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

// Package optimizer rewrites the IR in place: constant folding and
// dead-code elimination, iterated to a fixed point. Every pass must
// preserve observable behavior; anything that could change, reorder,
// or drop a side-effecting expression declines to fire.
package optimizer

import "github.com/rive-lang/rivec/ir"

// maxIterations caps the fixed-point loop against pathological
// pass interactions.
const maxIterations = 10

// Pass is one rewrite over a module, reporting whether it changed
// anything.
type Pass interface {
	Name() string
	Run(mod *ir.Module) bool
}

// Optimizer applies its passes in order, repeating the whole sequence
// until a full round reports no change.
type Optimizer struct {
	passes []Pass
}

// New creates an Optimizer with the default pass sequence.
func New() *Optimizer {
	return &Optimizer{
		passes: []Pass{
			&ConstantFolding{},
			&DeadCodeElimination{},
		},
	}
}

// Empty creates an Optimizer with no passes (tests use it to compare
// against the unoptimized IR).
func Empty() *Optimizer {
	return &Optimizer{}
}

// AddPass appends a pass to the sequence.
func (o *Optimizer) AddPass(p Pass) *Optimizer {
	o.passes = append(o.passes, p)
	return o
}

// Optimize runs the pass sequence to a fixed point, bounded by
// maxIterations.
func (o *Optimizer) Optimize(mod *ir.Module) {
	for i := 0; i < maxIterations; i++ {
		changed := false

		for _, p := range o.passes {
			if p.Run(mod) {
				changed = true
			}
		}

		if !changed {
			return
		}
	}
}

// OptimizeOnce runs every pass exactly once.
func (o *Optimizer) OptimizeOnce(mod *ir.Module) {
	for _, p := range o.passes {
		p.Run(mod)
	}
}
