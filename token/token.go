// SPDX-FileCopyrightText: © 2021 The dyml authors <https://github.com/golangee/dyml/blob/main/AUTHORS>
// SPDX-License-Identifier: Apache-2.0

package token

//go:generate stringer -type=Kind

// Kind identifies the lexical category of a Token.
type Kind int

const (
	Invalid Kind = iota
	EOF

	// Keywords
	Let
	Const
	Mut
	Fun
	If
	Else
	While
	For
	Return
	Break
	Continue
	Loop
	When
	In
	With
	True
	False
	Null
	Print
	Type
	Impl
	Self

	// Identifiers and literals
	Identifier
	Integer
	Float
	String

	// Operators
	Plus
	Minus
	Star
	Slash
	Percent
	Equal
	EqualEqual
	BangEqual
	Less
	LessEqual
	Greater
	GreaterEqual
	AmpAmp
	PipePipe
	Pipe
	Bang
	Elvis
	DotDotEq
	DotDot
	Arrow

	// Punctuation
	Underscore
	LeftParen
	RightParen
	LeftBrace
	RightBrace
	LeftBracket
	RightBracket
	Comma
	Colon
	Semicolon
	Question
	QuestionDot
	Dot
)

var names = map[Kind]string{
	Invalid:      "invalid",
	EOF:          "EOF",
	Let:          "let",
	Const:        "const",
	Mut:          "mut",
	Fun:          "fun",
	If:           "if",
	Else:         "else",
	While:        "while",
	For:          "for",
	Return:       "return",
	Break:        "break",
	Continue:     "continue",
	Loop:         "loop",
	When:         "when",
	In:           "in",
	With:         "with",
	True:         "true",
	False:        "false",
	Null:         "null",
	Print:        "print",
	Type:         "type",
	Impl:         "impl",
	Self:         "self",
	Identifier:   "identifier",
	Integer:      "integer",
	Float:        "float",
	String:       "string",
	Plus:         "+",
	Minus:        "-",
	Star:         "*",
	Slash:        "/",
	Percent:      "%",
	Equal:        "=",
	EqualEqual:   "==",
	BangEqual:    "!=",
	Less:         "<",
	LessEqual:    "<=",
	Greater:      ">",
	GreaterEqual: ">=",
	AmpAmp:       "&&",
	PipePipe:     "||",
	Pipe:         "|",
	Bang:         "!",
	Elvis:        "?:",
	DotDotEq:     "..=",
	DotDot:       "..",
	Arrow:        "->",
	Underscore:   "_",
	LeftParen:    "(",
	RightParen:   ")",
	LeftBrace:    "{",
	RightBrace:   "}",
	LeftBracket:  "[",
	RightBracket: "]",
	Comma:        ",",
	Colon:        ":",
	Semicolon:    ";",
	Question:     "?",
	QuestionDot:  "?.",
	Dot:          ".",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}

	return "unknown"
}

// Keywords maps reserved identifiers to their Kind.
var Keywords = map[string]Kind{
	"let":      Let,
	"const":    Const,
	"mut":      Mut,
	"fun":      Fun,
	"if":       If,
	"else":     Else,
	"while":    While,
	"for":      For,
	"return":   Return,
	"break":    Break,
	"continue": Continue,
	"loop":     Loop,
	"when":     When,
	"in":       In,
	"with":     With,
	"true":     True,
	"false":    False,
	"null":     Null,
	"print":    Print,
	"type":     Type,
	"impl":     Impl,
	"self":     Self,
}

// Token is a single lexical token together with the span of source
// text it was lexed from and, for identifiers and literals, the text
// that produced it.
type Token struct {
	Kind Kind
	Text string
	Span Span
}

func (t Token) String() string {
	if t.Text != "" {
		return t.Text
	}

	return t.Kind.String()
}
