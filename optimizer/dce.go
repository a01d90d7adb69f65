// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package optimizer

import "github.com/rive-lang/rivec/ir"

// DeadCodeElimination removes code that cannot affect observable
// behavior, in two sub-passes: statements after a return within the
// same block, and let bindings whose name is never read and whose
// initializer is free of calls. Anything containing a call is
// conservatively kept.
type DeadCodeElimination struct{}

func (*DeadCodeElimination) Name() string { return "dead-code-elimination" }

func (p *DeadCodeElimination) Run(mod *ir.Module) bool {
	changed := false

	for _, fn := range mod.Functions {
		if pruneAfterReturn(fn.Body) {
			changed = true
		}

		used := make(map[string]bool)
		collectBlockUses(fn.Body, used)

		if removeDeadLets(fn.Body, used) {
			changed = true
		}
	}

	return changed
}

// pruneAfterReturn drops every statement following a return in the
// same block, recursing into nested blocks first.
func pruneAfterReturn(b *ir.Block) bool {
	changed := false

	for i, s := range b.Statements {
		if pruneStmt(s) {
			changed = true
		}

		if _, isReturn := s.(*ir.Return); !isReturn {
			continue
		}

		if i < len(b.Statements)-1 || b.FinalExpr != nil {
			b.Statements = b.Statements[:i+1]
			b.FinalExpr = nil
			changed = true
		}

		break
	}

	return changed
}

func pruneStmt(s ir.Stmt) bool {
	switch st := s.(type) {
	case *ir.If:
		changed := pruneAfterReturn(st.Then)
		if st.Else != nil && pruneAfterReturn(st.Else) {
			changed = true
		}

		return changed

	case *ir.While:
		return pruneAfterReturn(st.Body)
	case *ir.For:
		return pruneAfterReturn(st.Body)
	case *ir.Loop:
		return pruneAfterReturn(st.Body)
	default:
		return false
	}
}

// removeDeadLets deletes lets whose name is in no read position
// anywhere in the function and whose initializer has no side effects.
func removeDeadLets(b *ir.Block, used map[string]bool) bool {
	changed := false

	kept := b.Statements[:0]

	for _, s := range b.Statements {
		if let, ok := s.(*ir.Let); ok && !used[let.Name] && !hasCall(let.Value) {
			changed = true
			continue
		}

		if removeDeadLetsInStmt(s, used) {
			changed = true
		}

		kept = append(kept, s)
	}

	b.Statements = kept

	return changed
}

func removeDeadLetsInStmt(s ir.Stmt, used map[string]bool) bool {
	switch st := s.(type) {
	case *ir.If:
		changed := removeDeadLets(st.Then, used)
		if st.Else != nil && removeDeadLets(st.Else, used) {
			changed = true
		}

		return changed

	case *ir.While:
		return removeDeadLets(st.Body, used)
	case *ir.For:
		return removeDeadLets(st.Body, used)
	case *ir.Loop:
		return removeDeadLets(st.Body, used)
	default:
		return false
	}
}

// collectBlockUses records every identifier appearing in read
// position. Assignment targets count as uses too: a let whose only
// uses are assignments still cannot be deleted without orphaning
// them.
func collectBlockUses(b *ir.Block, used map[string]bool) {
	for _, s := range b.Statements {
		collectStmtUses(s, used)
	}

	if b.FinalExpr != nil {
		collectExprUses(b.FinalExpr, used)
	}
}

func collectStmtUses(s ir.Stmt, used map[string]bool) {
	switch st := s.(type) {
	case *ir.Let:
		collectExprUses(st.Value, used)
	case *ir.Assign:
		used[st.Name] = true
		collectExprUses(st.Value, used)
	case *ir.Return:
		if st.Value != nil {
			collectExprUses(st.Value, used)
		}
	case *ir.ExprStmt:
		collectExprUses(st.X, used)
	case *ir.Print:
		collectExprUses(st.Arg, used)
	case *ir.If:
		collectExprUses(st.Cond, used)
		collectBlockUses(st.Then, used)

		if st.Else != nil {
			collectBlockUses(st.Else, used)
		}
	case *ir.While:
		collectExprUses(st.Cond, used)
		collectBlockUses(st.Body, used)
	case *ir.For:
		collectExprUses(st.Lo, used)
		collectExprUses(st.Hi, used)
		collectBlockUses(st.Body, used)
	case *ir.Loop:
		collectBlockUses(st.Body, used)
	case *ir.Break:
		if st.Value != nil {
			collectExprUses(st.Value, used)
		}
	}
}

func collectExprUses(e ir.Expr, used map[string]bool) {
	switch x := e.(type) {
	case *ir.VarRef:
		used[x.Name] = true
	case *ir.Binary:
		collectExprUses(x.Left, used)
		collectExprUses(x.Right, used)
	case *ir.Unary:
		collectExprUses(x.Operand, used)
	case *ir.Elvis:
		collectExprUses(x.Value, used)
		collectExprUses(x.Fallback, used)
	case *ir.WrapOptional:
		collectExprUses(x.Value, used)
	case *ir.Call:
		for _, a := range x.Args {
			collectExprUses(a, used)
		}
	case *ir.MethodCall:
		collectExprUses(x.Receiver, used)

		for _, a := range x.Args {
			collectExprUses(a, used)
		}
	case *ir.FieldAccess:
		collectExprUses(x.Receiver, used)
	case *ir.Index:
		collectExprUses(x.Receiver, used)
		collectExprUses(x.Index, used)
	case *ir.ArrayLit:
		for _, el := range x.Elems {
			collectExprUses(el, used)
		}
	case *ir.ListLit:
		for _, el := range x.Elems {
			collectExprUses(el, used)
		}
	case *ir.TupleLit:
		for _, el := range x.Elems {
			collectExprUses(el, used)
		}
	case *ir.MapLit:
		for _, entry := range x.Entries {
			collectExprUses(entry.Key, used)
			collectExprUses(entry.Value, used)
		}
	case *ir.StructLit:
		for _, f := range x.Fields {
			collectExprUses(f.Value, used)
		}
	case *ir.EnumVariant:
		for _, a := range x.Args {
			collectExprUses(a, used)
		}
	case *ir.IfExpr:
		collectExprUses(x.Cond, used)
		collectBlockUses(x.Then, used)
		collectBlockUses(x.Else, used)
	case *ir.When:
		collectExprUses(x.Scrutinee, used)

		for _, arm := range x.Arms {
			if arm.Guard != nil {
				collectExprUses(arm.Guard, used)
			}

			collectExprUses(arm.Body, used)
		}
	case *ir.BlockExpr:
		collectBlockUses(x.Block, used)
	case *ir.LoopExpr:
		if x.Cond != nil {
			collectExprUses(x.Cond, used)
		}

		if x.Lo != nil {
			collectExprUses(x.Lo, used)
		}

		if x.Hi != nil {
			collectExprUses(x.Hi, used)
		}

		collectBlockUses(x.Body, used)
	}
}

// hasCall reports whether evaluating e could run user code or
// otherwise have an effect. Calls are the ground truth; control-flow
// expressions are conservatively treated as effectful since their
// bodies may contain anything.
func hasCall(e ir.Expr) bool {
	switch x := e.(type) {
	case *ir.Call, *ir.MethodCall, *ir.IfExpr, *ir.When, *ir.BlockExpr, *ir.LoopExpr:
		return true
	case *ir.Binary:
		return hasCall(x.Left) || hasCall(x.Right)
	case *ir.Unary:
		return hasCall(x.Operand)
	case *ir.Elvis:
		return hasCall(x.Value) || hasCall(x.Fallback)
	case *ir.WrapOptional:
		return hasCall(x.Value)
	case *ir.FieldAccess:
		return hasCall(x.Receiver)
	case *ir.Index:
		return hasCall(x.Receiver) || hasCall(x.Index)
	case *ir.ArrayLit:
		return anyCall(x.Elems)
	case *ir.ListLit:
		return anyCall(x.Elems)
	case *ir.TupleLit:
		return anyCall(x.Elems)
	case *ir.MapLit:
		for _, entry := range x.Entries {
			if hasCall(entry.Key) || hasCall(entry.Value) {
				return true
			}
		}

		return false
	case *ir.StructLit:
		for _, f := range x.Fields {
			if hasCall(f.Value) {
				return true
			}
		}

		return false
	case *ir.EnumVariant:
		return anyCall(x.Args)
	default:
		return false
	}
}

func anyCall(exprs []ir.Expr) bool {
	for _, e := range exprs {
		if hasCall(e) {
			return true
		}
	}

	return false
}
