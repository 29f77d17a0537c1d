// Command fictcheck is a thin smoke-test harness for the compiler
// package: it builds a handful of fixture trees with internal/testutil
// (there is no parser in this module to read source text from, spec §1)
// and runs them through compiler.Compile, printing a one-line summary per
// fixture in the style of esbuild's own cmd/snapshot -- entry point in,
// pass/fail and a diagnostic count out, never the transformed source
// itself, since there is no printer here either.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/compiler"
	"github.com/fictjs/fictc/internal/testutil"
)

const helpText = `
Usage:
  fictcheck [options]

Options:
  --fine-grained    Compile every fixture with FineGrainedDom set
  --dev             Compile every fixture with Dev set
  -h, --help        Print this help text
`

type fixture struct {
	name  string
	build func() *ast.Program
}

func main() {
	fineGrained := false
	dev := false
	for _, arg := range os.Args[1:] {
		switch {
		case arg == "-h" || arg == "-help" || arg == "--help":
			fmt.Fprint(os.Stderr, helpText)
			os.Exit(0)
		case arg == "--fine-grained":
			fineGrained = true
		case arg == "--dev":
			dev = true
		default:
			fmt.Fprintf(os.Stderr, "unknown option %q\n%s\n", arg, helpText)
			os.Exit(1)
		}
	}

	opts := compiler.Options{FineGrainedDom: fineGrained, Dev: dev}
	exitCode := 0
	for _, fx := range fixtures() {
		out, warnings, err := compiler.Compile(fx.build(), opts)
		if err != nil {
			fmt.Printf("FAIL %-28s %s\n", fx.name, err.Error())
			exitCode = 1
			continue
		}
		fmt.Printf("ok   %-28s %d top-level statements, %s\n",
			fx.name, len(out.Stmts), warningSummary(warnings))
	}
	os.Exit(exitCode)
}

func warningSummary(warnings []compiler.Warning) string {
	if len(warnings) == 0 {
		return "0 warnings"
	}
	codes := make([]string, len(warnings))
	for i, w := range warnings {
		codes[i] = w.Code
	}
	return fmt.Sprintf("%d warning(s): %s", len(warnings), strings.Join(codes, ", "))
}

// fixtures builds the small set of hand-authored component trees this
// smoke test exercises. Each mirrors one of the concrete scenarios in
// spec §8, chosen to touch a distinct corner of the pipeline rather than
// to be exhaustive -- the real correctness coverage lives in the
// package's own _test.go files.
func fixtures() []fixture {
	return []fixture{
		{"counter-state-to-jsx", counterFixture},
		{"derived-memo-in-jsx", derivedMemoFixture},
		{"nested-mutation-warning", nestedMutationFixture},
	}
}

func counterFixture() *ast.Program {
	b := testutil.NewProgram("counter.fict")
	stateStmt, countRef := b.State("count", ast.Num(0, b.NextLoc()))
	jsx := b.JSXElement("div", b.JSXExpr(b.Read(countRef)))
	component, _ := b.Component("Counter", nil, []ast.Stmt{stateStmt}, jsx)
	b.Top(component)
	return b.Prog
}

func derivedMemoFixture() *ast.Program {
	b := testutil.NewProgram("doubled.fict")
	stateStmt, countRef := b.State("count", ast.Num(0, b.NextLoc()))
	derivedStmt, doubledRef := b.Derived("doubled", ast.Binary(ast.BinOpMul, b.Read(countRef), ast.Num(2, b.NextLoc())))
	jsx := b.JSXElement("span", b.JSXExpr(b.Read(doubledRef)))
	component, _ := b.Component("Doubled", nil, []ast.Stmt{stateStmt, derivedStmt}, jsx)
	b.Top(component)
	return b.Prog
}

func nestedMutationFixture() *ast.Program {
	b := testutil.NewProgram("settings.fict")
	emptyObject := ast.Expr{Loc: b.NextLoc(), Data: &ast.EObject{}}
	stateStmt, settingsRef := b.State("settings", emptyObject)
	mutate := ast.AssignStmt(ast.Dot(b.Read(settingsRef), "theme", b.NextLoc()), ast.Str("dark", b.NextLoc()))
	jsx := b.JSXElement("div")
	component, _ := b.Component("Settings", nil, []ast.Stmt{stateStmt, mutate}, jsx)
	b.Top(component)
	return b.Prog
}
