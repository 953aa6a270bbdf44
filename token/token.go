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

// Package token classifies exodown source into terminals.
//
// Lexing is modal. Outside of any construct the Root rules apply; a raw
// fence, a heading marker, a directive marker, a block comment or a math
// delimiter switches to a mode whose content is not re-lexed as markup.
// Inside every mode the rules are tried in order, so earlier rules take
// priority, and each mode ends with a catch-all so lexing never stops on
// ordinary content.
//
// The following characters are reserved and must be escaped with a
// backtick to appear literally where they would otherwise be markup:
//
//      '#', '*', '_', '+', '\\', '`', '/'
//
package token // import "akhil.cc/exodown/token"

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2/lexer"
)

// Kind is the class of a Token.
type Kind int

const (
	EOF Kind = iota
	Fence
	BlockOpen
	BlockClose
	Heading
	Directive
	LineComment
	CommentOpen
	CommentText
	CommentClose
	Continue
	DisplayMath
	InlineMath
	MathText
	MathClose
	Link
	Rule
	Ordered
	Bullet
	Escape
	Strong
	Emph
	Word
	UnsafeWord
	Sep
	RawText
	RawTick
	Indent
	Whitespace
	Newline
	Reserved
	Char
)

var names = [...]string{
	EOF:          "EOF",
	Fence:        "Fence",
	BlockOpen:    "BlockOpen",
	BlockClose:   "BlockClose",
	Heading:      "Heading",
	Directive:    "Directive",
	LineComment:  "LineComment",
	CommentOpen:  "CommentOpen",
	CommentText:  "CommentText",
	CommentClose: "CommentClose",
	Continue:     "Continue",
	DisplayMath:  "DisplayMath",
	InlineMath:   "InlineMath",
	MathText:     "MathText",
	MathClose:    "MathClose",
	Link:         "Link",
	Rule:         "Rule",
	Ordered:      "Ordered",
	Bullet:       "Bullet",
	Escape:       "Escape",
	Strong:       "Strong",
	Emph:         "Emph",
	Word:         "Word",
	UnsafeWord:   "UnsafeWord",
	Sep:          "Sep",
	RawText:      "RawText",
	RawTick:      "RawTick",
	Indent:       "Indent",
	Whitespace:   "Whitespace",
	Newline:      "Newline",
	Reserved:     "Reserved",
	Char:         "Char",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is a classified run of source text. Value is the exact source.
type Token struct {
	Kind  Kind
	Value string
	Pos   lexer.Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Kind, t.Value)
}

// reserved punctuation, as a character class body
const rsv = "#*_+\\\\`/"

// A word is a run of safe characters. The reserved characters #, _, + and
// / may join two such runs, as in snake_case or a/b.
const (
	safe = `[^\s` + rsv + `]`
	word = safe + "+(?:[#_+/]" + safe + "+)*"
)

var def = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Fence", Pattern: "```", Action: lexer.Push("Raw")},
		{Name: "BlockOpen", Pattern: `#_[ \t]*[A-Za-z0-9_-]*[ \t]*_#`},
		{Name: "BlockClose", Pattern: `#_#`},
		{Name: "Heading", Pattern: `#+[ \t]+`, Action: lexer.Push("Line")},
		{Name: "Directive", Pattern: `\.\. `, Action: lexer.Push("Directive")},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "CommentOpen", Pattern: `/\*`, Action: lexer.Push("Comment")},
		{Name: "Continue", Pattern: `\\\r?\n`},
		{Name: "DisplayMath", Pattern: `\\\[`, Action: lexer.Push("DisplayMath")},
		{Name: "InlineMath", Pattern: `\\\(`, Action: lexer.Push("InlineMath")},
		{Name: "Link", Pattern: `\[\[[^\]\n]*\]\]`},
		{Name: "Rule", Pattern: `---`},
		{Name: "Ordered", Pattern: `[0-9]+\.[ \t]`},
		{Name: "Bullet", Pattern: `[+*][ \t]`},
		{Name: "Escape", Pattern: "`[" + rsv + "]"},
		{Name: "Strong", Pattern: `\*\*|__`},
		{Name: "Emph", Pattern: `\*|_`},
		{Name: "Word", Pattern: word},
		{Name: "Indent", Pattern: `  `},
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Newline", Pattern: `\r?\n`},
		{Name: "Reserved", Pattern: "[" + rsv + "]"},
		{Name: "Char", Pattern: `[\s\S]`},
	},
	"Line": {
		{Name: "Escape", Pattern: "`[" + rsv + "]"},
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Newline", Pattern: `\r?\n`, Action: lexer.Pop()},
		{Name: "LineWord", Pattern: "[^\\s`]+|`"},
		{Name: "Char", Pattern: `[\s\S]`},
	},
	"Directive": {
		{Name: "Sep", Pattern: `[ \t]*::`},
		{Name: "Whitespace", Pattern: `[ \t]+`},
		{Name: "Newline", Pattern: `\r?\n`, Action: lexer.Pop()},
		{Name: "DirectiveWord", Pattern: `[^\s:]+|:`},
		{Name: "Char", Pattern: `[\s\S]`},
	},
	"Raw": {
		{Name: "Fence", Pattern: "```", Action: lexer.Pop()},
		{Name: "RawText", Pattern: "(?:[^`]|`[^`]|``[^`])+"},
		{Name: "RawTick", Pattern: "`{1,2}"},
	},
	"Comment": {
		{Name: "CommentClose", Pattern: `\*/`, Action: lexer.Pop()},
		{Name: "CommentText", Pattern: `[^*]+|\*`},
	},
	"DisplayMath": {
		{Name: "DisplayMathClose", Pattern: `\\\]`, Action: lexer.Pop()},
		{Name: "MathText", Pattern: `[^\\]+|\\`},
	},
	"InlineMath": {
		{Name: "InlineMathClose", Pattern: `\\\)`, Action: lexer.Pop()},
		{Name: "MathText", Pattern: `[^\\]+|\\`},
	},
})

// perMode names rules whose pattern differs between modes. The lexer needs
// a distinct name for each; they still share one Kind.
var perMode = map[string]Kind{
	"LineWord":         UnsafeWord,
	"DirectiveWord":    UnsafeWord,
	"InlineMathClose":  MathClose,
	"DisplayMathClose": MathClose,
}

// kinds maps the lexer's symbol table onto Kind.
var kinds = func() map[lexer.TokenType]Kind {
	m := make(map[lexer.TokenType]Kind)
	for name, tt := range def.Symbols() {
		if k, ok := perMode[name]; ok {
			m[tt] = k
			continue
		}
		for k, n := range names {
			if n == name {
				m[tt] = Kind(k)
			}
		}
	}
	return m
}()

// Lex classifies src. The returned slice always ends with an EOF token.
// Positions name filename, which may be empty.
func Lex(filename, src string) ([]Token, error) {
	l, err := def.LexString(filename, src)
	if err != nil {
		return nil, err
	}
	var toks []Token
	for {
		t, err := l.Next()
		if err != nil {
			return toks, err
		}
		if t.EOF() {
			toks = append(toks, Token{Kind: EOF, Pos: t.Pos})
			return toks, nil
		}
		k, ok := kinds[t.Type]
		if !ok {
			return toks, &lexer.Error{Pos: t.Pos, Msg: fmt.Sprintf("unclassified token %q", t.Value)}
		}
		toks = append(toks, Token{Kind: k, Value: t.Value, Pos: t.Pos})
	}
}

// Unescape returns the literal text of t. An Escape token yields the
// single character following the backtick.
func Unescape(t Token) string {
	if t.Kind == Escape {
		return t.Value[1:]
	}
	return t.Value
}

// IsReserved reports whether r is reserved punctuation.
func IsReserved(r rune) bool {
	return strings.ContainsRune("#*_+\\`/", r)
}

// IsSafe reports whether r may start or end a word.
func IsSafe(r rune) bool {
	return !unicode.IsSpace(r) && !IsReserved(r)
}
