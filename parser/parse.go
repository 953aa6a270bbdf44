// MIT License

// Copyright (c) 2018 Akhil Indurti

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package parser implements a parser for exodown source. It takes in an io.Reader
// as input and outputs an *ast.Document.
//
// Parsing happens in two steps. ParseFlat turns the token stream into a flat
// sequence of elements where every heading is a sibling of the content that
// follows it. Parse additionally loads the elements into typed nodes and
// nests them by heading level.
//
// It is the responsibility of the directive's consumer to interpret
// directive data and options.
//
// The parser adheres to the following grammar for exodown source files:
//
//      newline    = /* the Unicode code point U+000A */ .
//      indent     = /* two U+0020 code points */ .
//      line_text  = /* any text up to a newline, escapes applied */ .
//      raw_text   = /* any text up to the closing fence */ .
//
//      heading    = "#" { "#" } line_text newline .
//      raw        = "```" [ line_text ] newline raw_text "```" .
//      directive  = ".. " line_text "::" [ line_text ] newline
//                   { indent option | indent line_text newline } .
//      option     = key ":" line_text newline .
//      explicit   = "#_" [ name ] "_#" newline { block } "#_#" .
//      item       = { indent } ( "+" | "*" | int "." ) " " inline newline .
//      list       = item { item } .
//      rule       = "---" newline .
//      comment    = "//" line_text | "/*" raw_text "*/" .
//      latex      = "\(" raw_text "\)" | "\[" raw_text "\]" .
//      link       = "[[" [ predicate "|" ] object [ "." view ] "]]" .
//      plain      = word { word | " " | newline } .
//      emphasis   = "*" plain "*" | "_" plain "_" .
//      strong     = "**" plain "**" | "__" plain "__" .
//      inline     = { word | " " | escape | emphasis | strong | link |
//                     latex | comment | "```" raw_text "```" | "\" newline } .
//      paragraph  = inline { newline inline } .
//      block      = { newline } | heading | raw | directive | explicit |
//                   list | rule | comment | paragraph .
//      source_file = { block } .
//
// A paragraph ends at a blank line or at a line that starts another block.
// A trailing backslash forces a line break and lets the paragraph continue
// past the blank lines that follow it.
//
package parser // import "akhil.cc/exodown/parser"

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"akhil.cc/exodown/ast"
	"akhil.cc/exodown/load"
	"akhil.cc/exodown/token"
	"github.com/adrg/frontmatter"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/rs/zerolog"
)

// Error is a lexical or grammar mismatch at Pos. Parsing stops at the
// first one.
type Error struct {
	Pos lexer.Position
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// An Option configures a parse.
type Option func(*config)

type config struct {
	filename    string
	frontMatter bool
	log         zerolog.Logger
}

// WithFilename sets the file name reported in error positions.
func WithFilename(name string) Option {
	return func(c *config) { c.filename = name }
}

// WithFrontMatter makes the parser split a leading front matter block
// off the source and store it in the document's Meta.
func WithFrontMatter() Option {
	return func(c *config) { c.frontMatter = true }
}

// WithLogger sets the logger used by the parser and the loader.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.log = l }
}

// MustParse is like Parse but panics if the source cannot be parsed.
func MustParse(src io.Reader, opts ...Option) *ast.Document {
	d, err := Parse(src, opts...)
	if err != nil {
		panic("Parse error: " + err.Error())
	}
	return d
}

// Parse parses the source and if successful, returns its document tree.
func Parse(src io.Reader, opts ...Option) (*ast.Document, error) {
	return ParseContext(context.Background(), src, opts...)
}

// ParseContext is like Parse but gives up with the context's error once
// ctx is done. The context is checked between blocks.
func ParseContext(ctx context.Context, src io.Reader, opts ...Option) (*ast.Document, error) {
	cfg := newConfig(opts)
	el, meta, err := parseFlat(ctx, src, cfg)
	if err != nil {
		return nil, err
	}
	l := load.Loader{Log: cfg.log}
	d := l.Document(el)
	d.Meta = meta
	return d, nil
}

// ParseFlat parses the source into a document element whose children
// are the blocks of the source in order, headings included.
func ParseFlat(src io.Reader, opts ...Option) (*ast.Element, error) {
	return ParseFlatContext(context.Background(), src, opts...)
}

// ParseFlatContext is like ParseFlat but gives up with the context's error
// once ctx is done.
func ParseFlatContext(ctx context.Context, src io.Reader, opts ...Option) (*ast.Element, error) {
	el, _, err := parseFlat(ctx, src, newConfig(opts))
	return el, err
}

func lexError(err error) error {
	var le *lexer.Error
	if errors.As(err, &le) {
		return &Error{Pos: le.Pos, Msg: le.Msg}
	}
	return err
}

func newConfig(opts []Option) *config {
	c := &config{log: zerolog.Nop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

func parseFlat(ctx context.Context, src io.Reader, cfg *config) (*ast.Element, map[string]any, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, nil, err
	}
	var meta map[string]any
	if cfg.frontMatter {
		b, err = frontmatter.Parse(strings.NewReader(string(b)), &meta)
		if err != nil {
			return nil, nil, fmt.Errorf("front matter: %w", err)
		}
	}
	text := string(b)
	toks, err := token.Lex(cfg.filename, text)
	if err != nil {
		return nil, nil, lexError(err)
	}
	p := &parser{ctx: ctx, src: text, toks: toks}
	p.seek(0)
	// source_file = { block } .
	doc := &ast.Element{Tag: ast.TypeDocument, Pos: toks[0].Pos}
	doc.Children, err = p.blocks(nil)
	if err != nil {
		return nil, nil, err
	}
	cfg.log.Debug().
		Str("file", cfg.filename).
		Int("tokens", len(toks)).
		Int("blocks", len(doc.Children)).
		Msg("parsed source")
	return doc, meta, nil
}

type parser struct {
	ctx  context.Context
	src  string
	toks []token.Token
	i    int
	tok  token.Token
}

// relex replaces the tokens from index i on with a fresh lexing of the
// source from pos, in the root mode, and moves to index i.
func (p *parser) relex(i int, pos lexer.Position) error {
	toks, err := token.Lex(pos.Filename, p.src[pos.Offset:])
	if err != nil {
		var le *lexer.Error
		if errors.As(err, &le) {
			return &Error{Pos: shift(le.Pos, pos), Msg: le.Msg}
		}
		return err
	}
	for k := range toks {
		toks[k].Pos = shift(toks[k].Pos, pos)
	}
	p.toks = append(p.toks[:i:i], toks...)
	p.seek(i)
	return nil
}

// shift moves a position relative to the start of a re-lexed suffix so
// that it is relative to the whole source again.
func shift(rel, base lexer.Position) lexer.Position {
	if rel.Line == 1 {
		rel.Column += base.Column - 1
	}
	rel.Line += base.Line - 1
	rel.Offset += base.Offset
	return rel
}

// relexAfter re-lexes the source that follows the current token. A ".."
// marker in the middle of a line lexes as a directive and switches the
// lexer into the directive header mode; the rest of the line is markup.
func (p *parser) relexAfter() error {
	pos := p.tok.Pos
	pos.Offset += len(p.tok.Value)
	pos.Column += len(p.tok.Value)
	return p.relex(p.i+1, pos)
}

func (p *parser) seek(i int) {
	if i >= len(p.toks) {
		i = len(p.toks) - 1
	}
	p.i = i
	p.tok = p.toks[i]
}

func (p *parser) next() {
	p.seek(p.i + 1)
}

func (p *parser) kind(i int) token.Kind {
	if i >= len(p.toks) {
		return token.EOF
	}
	return p.toks[i].Kind
}

func (p *parser) errorf(pos lexer.Position, format string, args ...interface{}) error {
	return &Error{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// split drops the first n bytes of the current token and leaves the rest
// in its place as whitespace.
func (p *parser) split(n int) {
	t := p.toks[p.i]
	t.Kind = token.Whitespace
	t.Value = t.Value[n:]
	t.Pos.Offset += n
	t.Pos.Column += n
	p.toks[p.i] = t
	p.tok = t
}

func elem(tag string, pos lexer.Position, attrs map[string]string, kids ...ast.Child) *ast.Element {
	return &ast.Element{Tag: tag, Attrs: attrs, Children: kids, Pos: pos}
}

// indentAt skips the indentation of the line starting at i. It returns the
// index of the first other token and the number of indent units.
func (p *parser) indentAt(i int) (int, int) {
	depth := 0
	for {
		switch p.kind(i) {
		case token.Indent:
			depth++
		case token.Whitespace:
		default:
			return i, depth
		}
		i++
	}
}

// eolAt reports whether only blanks remain on the line at i.
func (p *parser) eolAt(i int) bool {
	for {
		switch p.kind(i) {
		case token.Indent, token.Whitespace:
			i++
		case token.Newline, token.EOF:
			return true
		default:
			return false
		}
	}
}

// blankAt reports whether the line starting at i is blank and terminated
// by a newline.
func (p *parser) blankAt(i int) bool {
	j, _ := p.indentAt(i)
	return p.kind(j) == token.Newline
}

// skipBlankAt returns the start of the first line at or after i that is
// not blank, and the number of blank lines skipped.
func (p *parser) skipBlankAt(i int) (int, int) {
	n := 0
	for p.blankAt(i) {
		j, _ := p.indentAt(i)
		i = j + 1
		n++
	}
	return i, n
}

// startsBlock reports whether the line at i opens a block other than a
// paragraph.
func (p *parser) startsBlock(i int) bool {
	j, _ := p.indentAt(i)
	switch p.kind(j) {
	case token.Heading, token.Fence, token.Directive, token.BlockOpen,
		token.BlockClose, token.Bullet, token.Ordered:
		return true
	case token.Rule:
		return p.eolAt(j + 1)
	}
	return false
}

// endLine consumes trailing blanks and the newline of the current line.
func (p *parser) endLine() {
	for p.tok.Kind == token.Whitespace || p.tok.Kind == token.Indent {
		p.next()
	}
	if p.tok.Kind == token.Newline {
		p.next()
	}
}

// blocks parses blocks until the end of input or, inside an explicit
// block opened by open, until its terminator.
func (p *parser) blocks(open *token.Token) ([]ast.Child, error) {
	var out []ast.Child
	for {
		if err := p.ctx.Err(); err != nil {
			return nil, err
		}
		j, _ := p.indentAt(p.i)
		if open != nil && p.kind(j) == token.BlockClose {
			p.seek(j)
			return out, nil
		}
		if p.tok.Kind == token.EOF {
			if open != nil {
				return nil, p.errorf(open.Pos, "explicit block is not terminated")
			}
			return out, nil
		}
		el, err := p.block()
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
}

// block = { newline } | heading | raw | directive | explicit |
//         list | rule | comment | paragraph .
func (p *parser) block() (*ast.Element, error) {
	start := p.i
	j, _ := p.indentAt(start)
	switch p.kind(j) {
	case token.Newline, token.EOF:
		return p.blank(), nil
	case token.Bullet, token.Ordered:
		return p.list()
	}
	p.seek(j)
	switch p.tok.Kind {
	case token.Heading:
		return p.heading(), nil
	case token.Fence:
		return p.raw()
	case token.Directive:
		return p.directive()
	case token.BlockOpen:
		return p.explicit()
	case token.BlockClose:
		return nil, p.errorf(p.tok.Pos, "explicit block terminator without an open block")
	case token.Reserved:
		if p.tok.Value == "#" && strings.HasPrefix(p.toks[p.i+1].Value, "_") {
			return nil, p.errorf(p.tok.Pos, "malformed explicit block opener")
		}
	case token.Rule:
		if p.eolAt(p.i + 1) {
			el := elem(ast.TypeHorizontalRule, p.tok.Pos, nil)
			p.next()
			p.endLine()
			return el, nil
		}
	case token.LineComment, token.CommentOpen:
		el, err := p.comment()
		if err != nil {
			return nil, err
		}
		p.endLine()
		return el, nil
	}
	return p.paragraph()
}

// blank consumes a run of blank lines.
func (p *parser) blank() *ast.Element {
	el := elem(ast.TypeBlankLine, p.tok.Pos, nil)
	j, _ := p.skipBlankAt(p.i)
	if k, _ := p.indentAt(j); p.kind(k) == token.EOF {
		j = k
	}
	p.seek(j)
	return el
}

// heading = "#" { "#" } line_text newline .
func (p *parser) heading() *ast.Element {
	open := p.tok
	level := strings.Count(open.Value, "#")
	p.next()
	var buf strings.Builder
	for p.tok.Kind != token.Newline && p.tok.Kind != token.EOF {
		buf.WriteString(token.Unescape(p.tok))
		p.next()
	}
	if p.tok.Kind == token.Newline {
		p.next()
	}
	el := elem(ast.TypeHeading, open.Pos, map[string]string{"level": strconv.Itoa(level)})
	if label := strings.TrimSpace(buf.String()); label != "" {
		el.Children = []ast.Child{ast.Literal(label)}
	}
	return el
}

// rawBody collects the text between an opening fence and its closing
// fence, consuming both.
func (p *parser) rawBody(open token.Token) (string, error) {
	p.next()
	var buf strings.Builder
	for p.tok.Kind != token.Fence {
		if p.tok.Kind == token.EOF {
			return "", p.errorf(open.Pos, "raw block is not terminated")
		}
		buf.WriteString(p.tok.Value)
		p.next()
	}
	p.next()
	return buf.String(), nil
}

// raw = "```" [ line_text ] newline raw_text "```" .
func (p *parser) raw() (*ast.Element, error) {
	open := p.tok
	body, err := p.rawBody(open)
	if err != nil {
		return nil, err
	}
	format, content := "", body
	if i := strings.IndexByte(body, '\n'); i >= 0 {
		format = strings.TrimSpace(body[:i])
		content = body[i+1:]
	}
	content = strings.TrimSuffix(strings.TrimSuffix(content, "\n"), "\r")
	p.endLine()
	return elem(ast.TypeRawBlock, open.Pos, map[string]string{"format": format}, ast.Literal(content)), nil
}

var optionLine = regexp.MustCompile(`^([A-Za-z0-9_-]+):[ \t]*(.*)$`)

// directive = ".. " line_text "::" [ line_text ] newline
//             { indent option | indent line_text newline } .
func (p *parser) directive() (*ast.Element, error) {
	open := p.tok
	p.next()
	var typ, data strings.Builder
	sep := false
	for p.tok.Kind != token.Newline && p.tok.Kind != token.EOF {
		switch {
		case sep:
			data.WriteString(p.tok.Value)
		case p.tok.Kind == token.Sep:
			sep = true
		default:
			typ.WriteString(p.tok.Value)
		}
		p.next()
	}
	if !sep {
		return nil, p.errorf(open.Pos, "malformed directive header: missing \"::\"")
	}
	dt := strings.TrimSpace(typ.String())
	if dt == "" {
		return nil, p.errorf(open.Pos, "malformed directive header: missing directive type")
	}
	if p.tok.Kind == token.Newline {
		p.next()
	}
	el := elem(ast.TypeDirective, open.Pos, map[string]string{
		"directive_type": dt,
		"directive":      strings.TrimSpace(data.String()),
	})
	kids, err := p.directiveBody()
	if err != nil {
		return nil, err
	}
	el.Children = kids
	return el, nil
}

// directiveBody reads the indented lines below a directive header. Leading
// "key: value" lines are options; everything from the first other line on
// is opaque content. The lines are taken from the source as they are, and
// the input after them is lexed again, so that nothing in the body opens a
// construct of the surrounding document.
func (p *parser) directiveBody() ([]ast.Child, error) {
	var (
		kids    []ast.Child
		content strings.Builder
		cpos    lexer.Position
		inBody  bool
		blanks  int
	)
	start := p.tok.Pos
	pos, line := start.Offset, start.Line
	end, endLine := pos, line
	for pos < len(p.src) {
		next := len(p.src)
		text := p.src[pos:]
		if nl := strings.IndexByte(text, '\n'); nl >= 0 {
			next = pos + nl + 1
			text = text[:nl]
		}
		text = strings.TrimSuffix(text, "\r")
		if strings.TrimLeft(text, " \t") == "" {
			blanks++
			pos, line = next, line+1
			continue
		}
		if !strings.HasPrefix(text, "  ") {
			break
		}
		lpos := lexer.Position{Filename: start.Filename, Offset: pos, Line: line, Column: 1}
		text = strings.TrimRight(text[2:], " \t")
		if inBody {
			content.WriteString(strings.Repeat("\n", blanks))
		}
		blanks = 0
		pos, line = next, line+1
		end, endLine = pos, line
		if !inBody {
			if m := optionLine.FindStringSubmatch(text); m != nil {
				kids = append(kids, elem(ast.TypeDirectiveOption, lpos, map[string]string{
					"option": m[1],
					"value":  m[2],
				}))
				continue
			}
			inBody = true
			cpos = lpos
		}
		content.WriteString(text)
		content.WriteByte('\n')
	}
	if inBody {
		body := strings.TrimRight(content.String(), "\n")
		kids = append(kids, elem(ast.TypeRawBlock, cpos, map[string]string{"format": ""}, ast.Literal(body)))
	}
	if end > start.Offset {
		next := lexer.Position{Filename: start.Filename, Offset: end, Line: endLine, Column: 1}
		if err := p.relex(p.i, next); err != nil {
			return nil, err
		}
	}
	return kids, nil
}

var blockOpen = regexp.MustCompile(`^#_[ \t]*([A-Za-z0-9_-]*)[ \t]*_#$`)

// explicit = "#_" [ name ] "_#" newline { block } "#_#" .
func (p *parser) explicit() (*ast.Element, error) {
	open := p.tok
	var name string
	if m := blockOpen.FindStringSubmatch(open.Value); m != nil {
		name = m[1]
	}
	p.next()
	p.endLine()
	kids, err := p.blocks(&open)
	if err != nil {
		return nil, err
	}
	p.next()
	p.endLine()
	el := elem(ast.TypeBlock, open.Pos, map[string]string{"name": name})
	el.Children = kids
	return el, nil
}

// list = item { item } .
// item = { indent } ( "+" | "*" | int "." ) " " inline newline .
func (p *parser) list() (*ast.Element, error) {
	el := elem(ast.TypeList, p.tok.Pos, nil)
	for {
		j, depth := p.indentAt(p.i)
		k := p.kind(j)
		if k != token.Bullet && k != token.Ordered {
			return el, nil
		}
		p.seek(j)
		item := elem(ast.TypeListItem, p.tok.Pos, map[string]string{
			"depth":   strconv.Itoa(depth),
			"marker":  strings.TrimSpace(p.tok.Value),
			"ordered": strconv.FormatBool(k == token.Ordered),
		})
		p.next()
		kids, err := p.inline(true)
		if err != nil {
			return nil, err
		}
		item.Children = kids
		el.Children = append(el.Children, item)
	}
}

// comment = "//" line_text | "/*" raw_text "*/" .
func (p *parser) comment() (*ast.Element, error) {
	open := p.tok
	if open.Kind == token.LineComment {
		p.next()
		return elem(ast.TypeComment, open.Pos, map[string]string{"style": "line"},
			ast.Literal(strings.TrimPrefix(open.Value, "//"))), nil
	}
	p.next()
	var buf strings.Builder
	for p.tok.Kind != token.CommentClose {
		if p.tok.Kind == token.EOF {
			return nil, p.errorf(open.Pos, "block comment is not terminated")
		}
		buf.WriteString(p.tok.Value)
		p.next()
	}
	p.next()
	return elem(ast.TypeComment, open.Pos, map[string]string{"style": "block"}, ast.Literal(buf.String())), nil
}

// latex = "\(" raw_text "\)" | "\[" raw_text "\]" .
func (p *parser) latex() (*ast.Element, error) {
	open := p.tok
	p.next()
	var buf strings.Builder
	for p.tok.Kind != token.MathClose {
		if p.tok.Kind == token.EOF {
			return nil, p.errorf(open.Pos, "math span is not terminated")
		}
		buf.WriteString(p.tok.Value)
		p.next()
	}
	p.next()
	display := strconv.FormatBool(open.Kind == token.DisplayMath)
	return elem(ast.TypeLatex, open.Pos, map[string]string{"display": display}, ast.Literal(buf.String())), nil
}

// link = "[[" [ predicate "|" ] object [ "." view ] "]]" .
func (p *parser) link() (*ast.Element, error) {
	t := p.tok
	inner := strings.TrimSpace(t.Value[2 : len(t.Value)-2])
	pred, obj, view := "ref", inner, ""
	if i := strings.IndexByte(inner, '|'); i >= 0 {
		pred, obj = strings.TrimSpace(inner[:i]), strings.TrimSpace(inner[i+1:])
	}
	if i := strings.IndexByte(obj, '.'); i >= 0 {
		obj, view = obj[:i], obj[i+1:]
	}
	if obj == "" || pred == "" {
		return nil, p.errorf(t.Pos, "malformed internal link %q", t.Value)
	}
	p.next()
	return elem(ast.TypeInternalLink, t.Pos, map[string]string{
		"predicate": pred,
		"object":    obj,
		"view":      view,
	}), nil
}

// emphasis = "*" plain "*" | "_" plain "_" .
// strong   = "**" plain "**" | "__" plain "__" .
func (p *parser) emphasis(line bool) (*ast.Element, error) {
	open := p.tok
	tag := ast.TypeEmphasis
	if open.Kind == token.Strong {
		tag = ast.TypeStrong
	}
	p.next()
	var buf strings.Builder
	for {
		t := p.tok
		if t.Kind == open.Kind && t.Value == open.Value {
			p.next()
			return elem(tag, open.Pos, nil, ast.Literal(buf.String())), nil
		}
		switch t.Kind {
		case token.Bullet:
			// "* " lexes as a bullet; mid-line it may close the emphasis.
			if t.Value[:1] == open.Value {
				p.split(1)
				return elem(tag, open.Pos, nil, ast.Literal(buf.String())), nil
			}
			buf.WriteString(t.Value)
		case token.Word, token.Whitespace, token.Indent:
			buf.WriteString(t.Value)
		case token.Escape:
			buf.WriteString(token.Unescape(t))
		case token.Directive:
			buf.WriteString(t.Value)
			if err := p.relexAfter(); err != nil {
				return nil, err
			}
			continue
		case token.Newline:
			if line || p.blankAt(p.i+1) || p.startsBlock(p.i+1) || p.kind(p.i+1) == token.EOF {
				return nil, p.errorf(open.Pos, "%s is not terminated", open.Value)
			}
			buf.WriteByte('\n')
		default:
			return nil, p.errorf(open.Pos, "%s is not terminated", open.Value)
		}
		p.next()
	}
}

// paragraph = inline { newline inline } .
func (p *parser) paragraph() (*ast.Element, error) {
	el := elem(ast.TypeParagraph, p.tok.Pos, nil)
	kids, err := p.inline(false)
	if err != nil {
		return nil, err
	}
	el.Children = kids
	return el, nil
}

// inline parses inline content. With line set it stops after the current
// line; otherwise it follows the paragraph across lines.
func (p *parser) inline(line bool) ([]ast.Child, error) {
	var (
		out []ast.Child
		buf strings.Builder
		pos lexer.Position
	)
	text := func(s string) {
		if buf.Len() == 0 {
			pos = p.tok.Pos
		}
		buf.WriteString(s)
	}
	flush := func() {
		if buf.Len() > 0 {
			out = append(out, elem(ast.TypeText, pos, nil, ast.Literal(buf.String())))
			buf.Reset()
		}
	}
	add := func(el *ast.Element, err error) error {
		if err != nil {
			return err
		}
		flush()
		out = append(out, el)
		return nil
	}
	skipIndent := func() {
		j, _ := p.indentAt(p.i)
		p.seek(j)
	}
	for {
		t := p.tok
		var err error
		switch t.Kind {
		case token.EOF:
			flush()
			return out, nil
		case token.Newline:
			p.next()
			if line || p.blankAt(p.i) || p.startsBlock(p.i) || p.tok.Kind == token.EOF {
				flush()
				return out, nil
			}
			text("\n")
			skipIndent()
		case token.Continue:
			err = add(elem(ast.TypeLineBreak, t.Pos, nil), nil)
			p.next()
			if !line {
				j, _ := p.skipBlankAt(p.i)
				p.seek(j)
			}
			if p.tok.Kind == token.EOF || p.startsBlock(p.i) {
				flush()
				return out, nil
			}
			skipIndent()
		case token.Word, token.UnsafeWord, token.Whitespace, token.Indent,
			token.Ordered, token.Bullet, token.Rule, token.Sep, token.Char:
			text(t.Value)
			p.next()
		case token.Directive:
			text(t.Value)
			err = p.relexAfter()
		case token.Escape:
			text(token.Unescape(t))
			p.next()
		case token.Strong, token.Emph:
			err = add(p.emphasis(line))
		case token.Link:
			err = add(p.link())
		case token.InlineMath, token.DisplayMath:
			err = add(p.latex())
		case token.LineComment, token.CommentOpen:
			err = add(p.comment())
		case token.Fence:
			body, rerr := p.rawBody(t)
			err = add(elem(ast.TypeCode, t.Pos, nil, ast.Literal(body)), rerr)
		default:
			return nil, p.errorf(t.Pos, "unescaped reserved character %q", t.Value[:1])
		}
		if err != nil {
			return nil, err
		}
	}
}
