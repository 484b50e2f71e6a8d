package idl

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokPunct
)

type token struct {
	kind  tokenKind
	value string // string tokens hold the unquoted text
	pos   Position
}

func (t token) is(kind tokenKind, value string) bool {
	return t.kind == kind && t.value == value
}

func (t token) text() string {
	switch t.kind {
	case tokEOF:
		return ""
	case tokString:
		return `"` + t.value + `"`
	default:
		return t.value
	}
}

const punctuation = "{}()[]<>;,=?:.-*"

// lexer splits IDL source into tokens, dropping whitespace and comments.
type lexer struct {
	src    string
	offset int
	line   int
	column int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, column: 1}
}

func (l *lexer) position() Position {
	return Position{Line: l.line, Column: l.column, Offset: l.offset}
}

func (l *lexer) peekRune() (rune, int) {
	if l.offset >= len(l.src) {
		return utf8.RuneError, 0
	}
	return utf8.DecodeRuneInString(l.src[l.offset:])
}

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.offset < len(l.src); {
		r, size := utf8.DecodeRuneInString(l.src[l.offset:])
		if r == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
		l.offset += size
		i += size
	}
}

// skipSpace skips whitespace and comments. An unterminated block comment is an error.
func (l *lexer) skipSpace() *ParseError {
	for l.offset < len(l.src) {
		rest := l.src[l.offset:]
		r, size := l.peekRune()
		switch {
		case unicode.IsSpace(r):
			l.advance(size)
		case strings.HasPrefix(rest, "//"):
			end := strings.IndexByte(rest, '\n')
			if end < 0 {
				end = len(rest)
			}
			l.advance(end)
		case strings.HasPrefix(rest, "/*"):
			start := l.position()
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				return newParseError(start, "/*", "unterminated block comment")
			}
			l.advance(end + 4)
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) next() (token, *ParseError) {
	if err := l.skipSpace(); err != nil {
		return token{}, err
	}
	pos := l.position()
	if l.offset >= len(l.src) {
		return token{kind: tokEOF, pos: pos}, nil
	}

	r, size := l.peekRune()
	switch {
	case r == '"':
		rest := l.src[l.offset+1:]
		end := strings.IndexAny(rest, "\"\n")
		if end < 0 || rest[end] != '"' {
			return token{}, newParseError(pos, `"`, "unterminated string literal")
		}
		value := rest[:end]
		l.advance(end + 2)
		return token{kind: tokString, value: value, pos: pos}, nil
	case isIdentStart(r):
		start := l.offset
		for l.offset < len(l.src) {
			r, size := l.peekRune()
			if !isIdentPart(r) {
				break
			}
			l.advance(size)
		}
		return token{kind: tokIdent, value: l.src[start:l.offset], pos: pos}, nil
	case unicode.IsDigit(r):
		start := l.offset
		for l.offset < len(l.src) {
			r, size := l.peekRune()
			if !unicode.IsDigit(r) && r != '.' && r != 'x' && !isHexLetter(r) {
				break
			}
			l.advance(size)
		}
		return token{kind: tokNumber, value: l.src[start:l.offset], pos: pos}, nil
	case strings.ContainsRune(punctuation, r):
		l.advance(size)
		return token{kind: tokPunct, value: string(r), pos: pos}, nil
	}

	return token{}, newParseError(pos, string(r), "unexpected character %q", r)
}

// tokenize lexes the whole source, ending with a tokEOF token.
func tokenize(src string) ([]token, *ParseError) {
	l := newLexer(src)
	var tokens []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.kind == tokEOF {
			return tokens, nil
		}
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isHexLetter(r rune) bool {
	return (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
