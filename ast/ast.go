// Package ast declares the types used to represent exodown documents.
//
// A document passes through two shapes. The parser emits Elements: a flat,
// tagged interchange record whose children are either nested Elements or
// Literal strings. The loader turns Elements into the closed set of Node
// variants below, and the assembler nests them by heading level.
package ast

import (
	"errors"

	"github.com/alecthomas/participle/v2/lexer"
	sq "github.com/kballard/go-shellquote"
)

// Element tags emitted by the parser. A Node reports the tag it was
// loaded from through Type.
const (
	TypeDocument        = "document"
	TypeHeading         = "heading"
	TypeParagraph       = "paragraph"
	TypeText            = "raw_text"
	TypeBlankLine       = "blank_line"
	TypeDirective       = "directive_block"
	TypeDirectiveOption = "directive_option"
	TypeInternalLink    = "internal_link"
	TypeEmphasis        = "emphasis"
	TypeStrong          = "strong"
	TypeLineBreak       = "line_break"
	TypeCode            = "code"
	TypeRawBlock        = "raw_block"
	TypeList            = "list"
	TypeListItem        = "list_item"
	TypeComment         = "comment"
	TypeLatex           = "latex"
	TypeHorizontalRule  = "horizontal_rule"
	TypeBlock           = "explicit_block"

	// TypeDefault is reported by nodes loaded from an unknown tag.
	TypeDefault = "default_node"
)

// Child is either an *Element or a Literal.
type Child interface {
	child()
}

// Literal is raw text inside an Element.
type Literal string

// Element is a flat parse node.
type Element struct {
	Tag      string
	Attrs    map[string]string
	Children []Child
	Pos      lexer.Position
}

// Attr returns the attribute stored under key, or "".
func (e *Element) Attr(key string) string {
	if e.Attrs == nil {
		return ""
	}
	return e.Attrs[key]
}

// Text concatenates the Literal children of e.
func (e *Element) Text() string {
	var s string
	for _, c := range e.Children {
		if l, ok := c.(Literal); ok {
			s += string(l)
		}
	}
	return s
}

func (*Element) child() {}
func (Literal) child()  {}

//go:generate sumgen Node = *Document | *Heading | *Paragraph | *Text | *BlankLine | *Directive | *DirectiveOption | *InternalLink | *Emphasis | *Strong | *LineBreak | *Code | *RawBlock | *List | *ListItem | *Comment | *Latex | *HorizontalRule | *Block | *Default
type Node interface {
	Type() string
	node()
}

// Document is the root of every tree. Content before the first heading is
// kept in Preamble; Children holds the top-level headings.
type Document struct {
	Meta     map[string]any
	Preamble []Node
	Children []Node
}

// Heading is a section. Label is the inline content of the heading line;
// Children holds the section body and its subsections in source order.
type Heading struct {
	Level    int
	Label    []Node
	Children []Node
}

// Title returns the text of the heading's label.
func (h *Heading) Title() string {
	var s string
	for _, n := range h.Label {
		if t, ok := n.(*Text); ok {
			s += t.Value
		}
	}
	return s
}

type Paragraph struct {
	Children []Node
}

type Text struct {
	Value string
}

type BlankLine struct{}

// Directive is a named block of out-of-band instructions for a renderer.
// Options is derived from the DirectiveOption children.
type Directive struct {
	DirectiveType string
	Directive     string
	Options       map[string]string
	Children      []Node
}

// ErrNoArgs is returned by Args when the directive carries no data.
var ErrNoArgs = errors.New("directive has no arguments")

// Args splits the directive data according to the Bourne shell's
// word-splitting rules.
func (d *Directive) Args() ([]string, error) {
	if d.Directive == "" {
		return nil, ErrNoArgs
	}
	return sq.Split(d.Directive)
}

type DirectiveOption struct {
	Option string
	Value  string
}

// InternalLink points at another document, optionally at one of its views.
type InternalLink struct {
	Predicate string
	Object    string
	View      string
}

type Emphasis struct {
	Children []Node
}

type Strong struct {
	Children []Node
}

type LineBreak struct{}

// Code is a fenced span inside a paragraph.
type Code struct {
	Content string
}

type RawBlock struct {
	Format  string
	Content string
}

// List is a run of consecutive list items. Nesting is positional:
// each item carries its own indentation depth.
type List struct {
	Items []Node
}

type ListItem struct {
	Depth    int
	Marker   string
	Ordered  bool
	Children []Node
}

type Comment struct {
	Block bool
	Text  string
}

type Latex struct {
	Display bool
	Text    string
}

type HorizontalRule struct{}

// Block is an explicitly delimited container. Headings inside it are
// nested relative to the block only.
type Block struct {
	Name     string
	Children []Node
}

// Default holds an element whose tag is not known to the loader.
type Default struct {
	Element  string
	Attrs    map[string]string
	Children []Node
}

func (*Document) Type() string        { return TypeDocument }
func (*Heading) Type() string         { return TypeHeading }
func (*Paragraph) Type() string       { return TypeParagraph }
func (*Text) Type() string            { return TypeText }
func (*BlankLine) Type() string       { return TypeBlankLine }
func (*Directive) Type() string       { return TypeDirective }
func (*DirectiveOption) Type() string { return TypeDirectiveOption }
func (*InternalLink) Type() string    { return TypeInternalLink }
func (*Emphasis) Type() string        { return TypeEmphasis }
func (*Strong) Type() string          { return TypeStrong }
func (*LineBreak) Type() string       { return TypeLineBreak }
func (*Code) Type() string            { return TypeCode }
func (*RawBlock) Type() string        { return TypeRawBlock }
func (*List) Type() string            { return TypeList }
func (*ListItem) Type() string        { return TypeListItem }
func (*Comment) Type() string         { return TypeComment }
func (*Latex) Type() string           { return TypeLatex }
func (*HorizontalRule) Type() string  { return TypeHorizontalRule }
func (*Block) Type() string           { return TypeBlock }
func (*Default) Type() string         { return TypeDefault }

func (*Document) node()        {}
func (*Heading) node()         {}
func (*Paragraph) node()       {}
func (*Text) node()            {}
func (*BlankLine) node()       {}
func (*Directive) node()       {}
func (*DirectiveOption) node() {}
func (*InternalLink) node()    {}
func (*Emphasis) node()        {}
func (*Strong) node()          {}
func (*LineBreak) node()       {}
func (*Code) node()            {}
func (*RawBlock) node()        {}
func (*List) node()            {}
func (*ListItem) node()        {}
func (*Comment) node()         {}
func (*Latex) node()           {}
func (*HorizontalRule) node()  {}
func (*Block) node()           {}
func (*Default) node()         {}

// Children returns the nodes owned by n in source order. A document's
// preamble precedes its headings; a heading's label precedes its body.
func Children(n Node) []Node {
	switch t := n.(type) {
	case *Document:
		out := make([]Node, 0, len(t.Preamble)+len(t.Children))
		out = append(out, t.Preamble...)
		return append(out, t.Children...)
	case *Heading:
		out := make([]Node, 0, len(t.Label)+len(t.Children))
		out = append(out, t.Label...)
		return append(out, t.Children...)
	case *Paragraph:
		return t.Children
	case *Directive:
		return t.Children
	case *Emphasis:
		return t.Children
	case *Strong:
		return t.Children
	case *List:
		return t.Items
	case *ListItem:
		return t.Children
	case *Block:
		return t.Children
	case *Default:
		return t.Children
	}
	return nil
}

// SkipChildren may be returned by a Walker to skip the children of the
// node it was called with.
var SkipChildren = errors.New("skip children")

// Walker is called for every node visited by Walk.
type Walker func(Node) error

// Walk traverses the tree rooted at n in depth-first, source order.
// It stops at the first error returned by f other than SkipChildren.
func Walk(n Node, f Walker) error {
	if n == nil {
		return nil
	}
	if err := f(n); err != nil {
		if err == SkipChildren {
			return nil
		}
		return err
	}
	for _, c := range Children(n) {
		if err := Walk(c, f); err != nil {
			return err
		}
	}
	return nil
}

// WalkBottomUp traverses the tree rooted at n depth-first, calling f for a
// node after all of its children. It stops at the first error returned
// by f.
func WalkBottomUp(n Node, f Walker) error {
	if n == nil {
		return nil
	}
	for _, c := range Children(n) {
		if err := WalkBottomUp(c, f); err != nil {
			return err
		}
	}
	return f(n)
}

// WalkBreadthFirst traverses the tree rooted at n level by level, each
// level in source order. SkipChildren keeps the children of the node out
// of the traversal; any other error stops it.
func WalkBreadthFirst(n Node, f Walker) error {
	if n == nil {
		return nil
	}
	queue := []Node{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if err := f(cur); err != nil {
			if err == SkipChildren {
				continue
			}
			return err
		}
		queue = append(queue, Children(cur)...)
	}
	return nil
}

// Filter returns the nodes under n, n included, for which keep reports
// true, in source order.
func Filter(n Node, keep func(Node) bool) []Node {
	var out []Node
	Walk(n, func(c Node) error {
		if keep(c) {
			out = append(out, c)
		}
		return nil
	})
	return out
}

// Collect returns the nodes of type T under n, n included, in source order.
func Collect[T Node](n Node) []T {
	var out []T
	Walk(n, func(c Node) error {
		if t, ok := c.(T); ok {
			out = append(out, t)
		}
		return nil
	})
	return out
}

// Links returns the internal links of the tree rooted at n.
func Links(n Node) []*InternalLink {
	return Collect[*InternalLink](n)
}
