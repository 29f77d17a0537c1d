package ast_test

import (
	"testing"

	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestSymbolTableAllocatesDistinctRefs(t *testing.T) {
	table := ast.NewSymbolTable()
	a := table.NewSymbol("a", logger.Loc{Start: 1})
	b := table.NewSymbol("b", logger.Loc{Start: 2})

	assert.True(t, a.IsValid())
	assert.True(t, b.IsValid())
	assert.NotEqual(t, a, b)
	assert.Equal(t, "a", table.Get(a).OriginalName)
	assert.Equal(t, "b", table.Get(b).OriginalName)
	assert.Equal(t, 2, table.Len())
}

func TestInvalidRefIsNotValid(t *testing.T) {
	assert.False(t, ast.InvalidRef.IsValid())
}

func TestSourceLineAndColumn(t *testing.T) {
	src := &logger.Source{Contents: "line one\nline two\nline three"}

	line, col, text := src.LineAndColumn(logger.Loc{Start: 0})
	assert.Equal(t, 1, line)
	assert.Equal(t, 0, col)
	assert.Equal(t, "line one", text)

	// first byte of "line two", just after the first '\n'
	line, col, text = src.LineAndColumn(logger.Loc{Start: 9})
	assert.Equal(t, 2, line)
	assert.Equal(t, 0, col)
	assert.Equal(t, "line two", text)

	line, col, _ = src.LineAndColumn(logger.Loc{Start: 14})
	assert.Equal(t, 2, line)
	assert.Equal(t, 5, col)
}

func TestIdentAndCallRefBuildTheAccessorShape(t *testing.T) {
	table := ast.NewSymbolTable()
	ref := table.NewSymbol("count", logger.Loc{})

	read := ast.CallRef(ref, logger.Loc{})
	call, ok := read.Data.(*ast.ECall)
	assert.True(t, ok)
	assert.Empty(t, call.Args)
	id, ok := ast.IsIdentifier(call.Target)
	assert.True(t, ok)
	assert.Equal(t, ref, id)

	write := ast.CallRef(ref, logger.Loc{}, ast.Num(2, logger.Loc{}))
	call, ok = write.Data.(*ast.ECall)
	assert.True(t, ok)
	assert.Len(t, call.Args, 1)
}

func TestThunkWrapsExpressionInZeroArgArrow(t *testing.T) {
	body := ast.Num(1, logger.Loc{})
	thunk := ast.Thunk(body)
	arrow, ok := thunk.Data.(*ast.EArrow)
	assert.True(t, ok)
	assert.Empty(t, arrow.Fn.Args)
	assert.NotNil(t, arrow.Fn.ExprBody)
}

func TestNotCollapsesDoubleNegation(t *testing.T) {
	inner := ast.Num(1, logger.Loc{})
	once := ast.Not(inner)
	twice := ast.Not(once)
	assert.Equal(t, inner, twice)
}
