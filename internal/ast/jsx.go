package ast

import "github.com/fictjs/fictc/internal/logger"

// JSX nodes are expressions like everything else in this tree; a JSX
// element can appear anywhere an expression can (assigned to a const,
// returned, passed as a prop, held in an array). The two lowering modes
// in spec §4.6/§4.7 both consume the same JSX tree shape -- the mode only
// changes what the lowering pass emits, never what the parser/JSX-author
// wrote.

// JSXTagKind distinguishes a lower-case intrinsic element (`<div>`) from
// an upper-case component reference (`<Foo>`) and a fragment (`<>`).
// This mirrors how JSX itself draws the line, which both lowering modes
// depend on: intrinsics can be flattened into a template (§4.7) while
// components always become a call.
type JSXTagKind uint8

const (
	JSXTagIntrinsic JSXTagKind = iota
	JSXTagComponent
	JSXTagFragment
)

type JSXAttr struct {
	Name       string
	NameLoc    logger.Loc
	ValueOrNil *Expr // nil means a boolean-true shorthand attribute, e.g. `<input disabled>`
	IsSpread   bool  // `{...props}`; Name is unused, ValueOrNil holds the spread expression
}

type EJSXElement struct {
	TagKind JSXTagKind

	// TagName is the intrinsic tag text ("div", "li") when TagKind is
	// JSXTagIntrinsic. For a component it is unused; ComponentRef is used
	// instead so the identifier participates in normal scope resolution.
	TagName      string
	ComponentRef Ref

	Attrs    []JSXAttr
	Children []Expr // EJSXElement, EJSXExprContainer, EJSXText, or EJSXElement with TagKind fragment

	// KeyOrNil is the `key={...}` attribute pulled out of Attrs (it is
	// never wrapped in a reactive accessor -- see spec §4.6).
	KeyOrNil *Expr
}

func (*EJSXElement) isExpr() {}

type EJSXExprContainer struct {
	Value Expr
}

func (*EJSXExprContainer) isExpr() {}

type EJSXText struct {
	Value string
}

func (*EJSXText) isExpr() {}
