package compiler

import (
	"github.com/fictjs/fictc/internal/ast"
	"github.com/fictjs/fictc/internal/logger"
)

// lowerJSX dispatches one JSX element to whichever of the two lowering
// modes Options.FineGrainedDom selects (spec §4.6/§4.7). A component
// reference always lowers to a direct call regardless of mode: spec §4.6
// and §4.7 both describe intrinsics/fragments as the only things either
// mode treats differently, since a component's own body is lowered
// exactly once, on its own terms, wherever it happens to be declared.
func (c *compilation) lowerJSX(e ast.Expr) ast.Expr {
	elem := e.Data.(*ast.EJSXElement)
	if elem.TagKind == ast.JSXTagComponent {
		return c.lowerComponentElement(elem, e.Loc)
	}
	if c.opts.FineGrainedDom && elem.TagKind != ast.JSXTagFragment {
		return c.lowerJSXTemplate(e)
	}
	return c.lowerJSXFactory(e)
}

// lowerComponentElement lowers `<Foo a={x} b="y">{children}</Foo>` to
// `Foo({ a: () => x', b: () => "y", children: [...] })`. Every non-event,
// non-spread, non-key attribute value is wrapped in a thunk (spec §4.5:
// a prop read is an accessor call on the receiving side, `p()`), so the
// child component re-reads it live instead of getting a frozen snapshot
// at the call site.
func (c *compilation) lowerComponentElement(elem *ast.EJSXElement, loc logger.Loc) ast.Expr {
	props := c.lowerJSXAttrsToObject(elem.Attrs, loc, true)
	if len(elem.Children) > 0 {
		children := c.lowerJSXChildrenArray(elem.Children, loc)
		obj := props.Data.(*ast.EObject)
		obj.Properties = append(obj.Properties, ast.Property{
			Key:   ast.Str("children", loc),
			Value: children,
		})
	}
	return ast.CallRef(elem.ComponentRef, loc, props)
}

// lowerJSXFactory lowers an intrinsic or fragment element under
// factory-call mode (spec §4.6): each element becomes one
// createElement(tag, props, ...children) call, with ordinary (un-thunked)
// attribute and child values -- factory mode re-creates the whole
// subtree on change rather than binding surgically, so there is no
// benefit to laziness here the way there is for a child component's
// props.
func (c *compilation) lowerJSXFactory(e ast.Expr) ast.Expr {
	elem := e.Data.(*ast.EJSXElement)
	loc := e.Loc

	var tag ast.Expr
	if elem.TagKind == ast.JSXTagFragment {
		tag = c.runtimeImport(loc, rtFragment)
	} else {
		tag = ast.Str(elem.TagName, loc)
	}

	props := c.lowerJSXAttrsToObject(elem.Attrs, loc, false)
	args := make([]ast.Expr, 0, len(elem.Children)+2)
	args = append(args, tag, props)
	for _, child := range elem.Children {
		args = append(args, c.lowerJSXChild(child))
	}
	return c.callRuntime(loc, rtCreateElement, args...)
}

// lowerJSXAttrsToObject builds the props object literal shared by both
// the component-call and factory-call forms. wrapThunk controls whether
// non-event values are wrapped in a zero-arg accessor (true for a
// component's own props, false for an intrinsic's).
func (c *compilation) lowerJSXAttrsToObject(attrs []ast.JSXAttr, loc logger.Loc, wrapThunk bool) ast.Expr {
	obj := &ast.EObject{}
	for _, a := range attrs {
		if a.Name == "key" {
			continue
		}
		if a.IsSpread {
			obj.Properties = append(obj.Properties, ast.Property{
				IsSpread: true,
				Value:    c.lowerExpr(*a.ValueOrNil),
			})
			continue
		}
		var value ast.Expr
		if a.ValueOrNil == nil {
			value = ast.Expr{Loc: a.NameLoc, Data: &ast.EBoolean{Value: true}}
		} else {
			value = c.lowerExpr(*a.ValueOrNil)
			isHandler := len(a.Name) > 2 && a.Name[:2] == "on"
			if wrapThunk && !isHandler {
				value = ast.Thunk(value)
			}
		}
		obj.Properties = append(obj.Properties, ast.Property{
			Key:   ast.Str(a.Name, a.NameLoc),
			Value: value,
		})
	}
	return ast.Expr{Loc: loc, Data: obj}
}

// lowerJSXChild lowers one child node shape for factory mode.
func (c *compilation) lowerJSXChild(child ast.Expr) ast.Expr {
	switch n := child.Data.(type) {
	case *ast.EJSXText:
		return ast.Str(n.Value, child.Loc)
	case *ast.EJSXExprContainer:
		return c.lowerExpr(n.Value)
	case *ast.EJSXElement:
		return c.lowerJSX(child)
	default:
		return c.lowerExpr(child)
	}
}

func (c *compilation) lowerJSXChildrenArray(children []ast.Expr, loc logger.Loc) ast.Expr {
	items := make([]ast.Expr, 0, len(children))
	for _, child := range children {
		items = append(items, c.lowerJSXChild(child))
	}
	if len(items) == 1 {
		return items[0]
	}
	return ast.Expr{Loc: loc, Data: &ast.EArray{Items: items}}
}
