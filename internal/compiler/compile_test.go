package compiler_test

import (
	"testing"

	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/compiler"
	"github.com/fictjs/fictc/internal/logger"
	"github.com/fictjs/fictc/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileLowersStateIntoAccessorCalls(t *testing.T) {
	b := testutil.NewProgram("app.fict")

	stateStmt, countRef := b.State("count", ast.Num(0, b.NextLoc()))
	jsx := b.JSXElement("div", b.JSXExpr(b.Read(countRef)))
	component, _ := b.Component("Counter", nil, []ast.Stmt{stateStmt}, jsx)
	b.Top(component)

	out, warnings, err := compiler.Compile(b.Prog, compiler.Options{})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.NotNil(t, out)
}

func TestCompileLowersEffectCallToUseEffect(t *testing.T) {
	b := testutil.NewProgram("app.fict")

	stateStmt, countRef := b.State("count", ast.Num(0, b.NextLoc()))
	effectStmt := b.Effect(ast.ExprStmt(b.Read(countRef)))
	jsx := b.JSXElement("div")
	component, _ := b.Component("Logger", nil, []ast.Stmt{stateStmt, effectStmt}, jsx)
	b.Top(component)

	out, warnings, err := compiler.Compile(b.Prog, compiler.Options{})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	call := findRuntimeCall(t, out, "useEffect")
	require.NotNil(t, call, "expected a lowered useEffect(...) call in the output")
	assert.GreaterOrEqual(t, len(call.Args), 2, "useEffect should be called with the context plus the effect callback")
	_, isArrow := call.Args[len(call.Args)-1].Data.(*ast.EArrow)
	assert.True(t, isArrow, "the lowered effect's last argument should stay an arrow callback")
}

// findRuntimeCall walks every top-level statement's function body looking
// for a call whose target resolves (by original symbol name, since
// runtime helper Refs are synthesized fresh on every compile) to name.
func findRuntimeCall(t *testing.T, prog *ast.Program, name string) *ast.ECall {
	t.Helper()
	var found *ast.ECall
	var walkStmts func(stmts []ast.Stmt)
	var walkExpr func(e ast.Expr)

	walkExpr = func(e ast.Expr) {
		if found != nil || e.Data == nil {
			return
		}
		if call, ok := e.Data.(*ast.ECall); ok {
			if ref, ok := ast.IsIdentifier(call.Target); ok && prog.Symbols.Get(ref).OriginalName == name {
				found = call
				return
			}
			walkExpr(call.Target)
			for _, a := range call.Args {
				walkExpr(a)
			}
			return
		}
		if arrow, ok := e.Data.(*ast.EArrow); ok {
			walkStmts(arrow.Fn.Body)
			if arrow.Fn.ExprBody != nil {
				walkExpr(*arrow.Fn.ExprBody)
			}
		}
	}

	walkStmts = func(stmts []ast.Stmt) {
		for _, s := range stmts {
			if found != nil {
				return
			}
			switch n := s.Data.(type) {
			case *ast.SExpr:
				walkExpr(n.Value)
			case *ast.SLocal:
				for _, d := range n.Decls {
					if d.ValueOrNil != nil {
						walkExpr(*d.ValueOrNil)
					}
				}
			case *ast.SReturn:
				if n.ValueOrNil != nil {
					walkExpr(*n.ValueOrNil)
				}
			case *ast.SBlock:
				walkStmts(n.Stmts)
			case *ast.SFunction:
				walkStmts(n.Fn.Body)
			}
		}
	}

	walkStmts(prog.Stmts)
	return found
}

func TestCompileRejectsStateAtModuleScope(t *testing.T) {
	b := testutil.NewProgram("app.fict")
	stateStmt, _ := b.State("count", ast.Num(0, b.NextLoc()))
	b.Top(stateStmt)

	_, _, err := compiler.Compile(b.Prog, compiler.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "module scope")
}

func TestCompileRejectsStateInsideConditional(t *testing.T) {
	b := testutil.NewProgram("app.fict")
	stateStmt, _ := b.State("count", ast.Num(0, b.NextLoc()))
	ifStmt := ast.Stmt{Loc: b.NextLoc(), Data: &ast.SIf{
		Test: ast.Expr{Loc: b.NextLoc(), Data: &ast.EBoolean{Value: true}},
		Yes:  ast.Stmt{Loc: b.NextLoc(), Data: &ast.SBlock{Stmts: []ast.Stmt{stateStmt}}},
	}}
	jsx := b.JSXElement("div")
	component, _ := b.Component("Counter", nil, []ast.Stmt{ifStmt}, jsx)
	b.Top(component)

	_, _, err := compiler.Compile(b.Prog, compiler.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loops or conditionals")
}

func TestCompileWarnsOnModuleLevelStore(t *testing.T) {
	b := testutil.NewProgram("app.fict")
	storeStmt, storeRef := b.Store("settings", ast.Str("x", b.NextLoc()))
	b.Top(storeStmt)

	jsx := b.JSXElement("div", b.JSXExpr(b.Read(storeRef)))
	component, _ := b.Component("Page", nil, nil, jsx)
	b.Top(component)

	_, warnings, err := compiler.Compile(b.Prog, compiler.Options{})
	require.NoError(t, err)

	found := false
	for _, w := range warnings {
		if w.ID == logger.MsgID_ModuleLevelState {
			found = true
		}
	}
	assert.True(t, found, "expected a module-level-state warning for a module-scoped store")
}

func TestCompileWarnsOnMemoDeclaredInsideConditional(t *testing.T) {
	b := testutil.NewProgram("app.fict")
	memoStmt, memoRef := b.Memo("label", ast.Str("hi", b.NextLoc()))
	ifStmt := ast.Stmt{Loc: b.NextLoc(), Data: &ast.SIf{
		Test: ast.Expr{Loc: b.NextLoc(), Data: &ast.EBoolean{Value: true}},
		Yes:  ast.Stmt{Loc: b.NextLoc(), Data: &ast.SBlock{Stmts: []ast.Stmt{memoStmt}}},
	}}
	jsx := b.JSXElement("div", b.JSXExpr(b.Read(memoRef)))
	component, _ := b.Component("Page", nil, []ast.Stmt{ifStmt}, jsx)
	b.Top(component)

	_, warnings, err := compiler.Compile(b.Prog, compiler.Options{})
	require.NoError(t, err)

	found := false
	for _, w := range warnings {
		if w.ID == logger.MsgID_ReactivePrimitiveInNonJSXControlFlow {
			found = true
		}
	}
	assert.True(t, found, "expected a reactive-primitive-in-non-jsx-control-flow warning for memo() inside an if")
}
