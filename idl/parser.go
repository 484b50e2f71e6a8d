package idl

import (
	"os"

	"github.com/teranos/apidefs/errors"
)

// Parse parses IDL source into a Document.
//
// The accepted dialect is the subset of Blink Web IDL used for extension
// APIs: an optional `namespace name { ... };` wrapper, extended attributes
// (skipped), dictionaries, enums with quoted or bare values, callbacks and
// interfaces whose operations may be static and whose arguments may be
// optional. Types may be arrays (`T[]`, `sequence<T>`) and nullable (`T?`).
// Typedefs are skipped.
// A returned error is a *ParseError.
func Parse(src string) (Document, error) {
	tokens, lexErr := tokenize(src)
	if lexErr != nil {
		return nil, lexErr
	}
	p := &parser{tokens: tokens}
	doc, err := p.parseDocument()
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ParseFile reads and parses the IDL file at path.
func ParseFile(path string) (Document, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read IDL file %s", path)
	}
	doc, err := Parse(string(src))
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			perr.File = path
		}
		return nil, err
	}
	return doc, nil
}

// Primitive type keywords spanning more than one token.
var multiWordTypes = map[string][]string{
	"unsigned":     {"short", "long"},
	"unrestricted": {"float", "double"},
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) accept(kind tokenKind, value string) bool {
	if p.peek().is(kind, value) {
		p.next()
		return true
	}
	return false
}

func (p *parser) errorf(tok token, format string, args ...interface{}) *ParseError {
	return newParseError(tok.pos, tok.text(), format, args...)
}

func (p *parser) expectPunct(value string) *ParseError {
	tok := p.peek()
	if !tok.is(tokPunct, value) {
		if tok.kind == tokEOF {
			return p.errorf(tok, "expected %q, found end of input", value)
		}
		return p.errorf(tok, "expected %q", value)
	}
	p.next()
	return nil
}

func (p *parser) expectIdent(what string) (string, *ParseError) {
	tok := p.peek()
	if tok.kind != tokIdent {
		return "", p.errorf(tok, "expected %s", what)
	}
	p.next()
	return tok.value, nil
}

func (p *parser) parseDocument() (Document, *ParseError) {
	var doc Document
	for p.peek().kind != tokEOF {
		if err := p.skipExtendedAttributes(); err != nil {
			return nil, err
		}
		if p.peek().is(tokIdent, "namespace") {
			decls, err := p.parseNamespace()
			if err != nil {
				return nil, err
			}
			doc = append(doc, decls...)
			continue
		}
		decl, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		if decl != nil {
			doc = append(doc, decl)
		}
	}
	return doc, nil
}

func (p *parser) parseNamespace() ([]Declaration, *ParseError) {
	p.next() // namespace
	if _, err := p.expectIdent("namespace name"); err != nil {
		return nil, err
	}
	// Dotted names such as devtools.inspectedWindow
	for p.accept(tokPunct, ".") {
		if _, err := p.expectIdent("namespace name"); err != nil {
			return nil, err
		}
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var decls []Declaration
	for !p.peek().is(tokPunct, "}") {
		if p.peek().kind == tokEOF {
			return nil, p.errorf(p.peek(), "unterminated namespace block").WithSuggestion("add the closing '};'")
		}
		if err := p.skipExtendedAttributes(); err != nil {
			return nil, err
		}
		decl, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		if decl != nil {
			decls = append(decls, decl)
		}
	}
	p.next() // }
	p.accept(tokPunct, ";")
	return decls, nil
}

// parseDeclaration parses one declaration. A typedef is consumed and yields nil.
func (p *parser) parseDeclaration() (Declaration, *ParseError) {
	tok := p.peek()
	if tok.kind != tokIdent {
		return nil, p.errorf(tok, "expected declaration")
	}
	switch tok.value {
	case "dictionary":
		return p.parseDictionary()
	case "enum":
		return p.parseEnum()
	case "callback":
		return p.parseCallback()
	case "interface":
		return p.parseInterface()
	case "typedef":
		return nil, p.skipPast(";")
	}
	return nil, p.errorf(tok, "unknown declaration keyword").
		WithSuggestion("expected one of dictionary, enum, callback, interface")
}

func (p *parser) parseDictionary() (Declaration, *ParseError) {
	p.next() // dictionary
	name, err := p.expectIdent("dictionary name")
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	dict := &Dictionary{Name: name}
	for !p.accept(tokPunct, "}") {
		if p.peek().kind == tokEOF {
			return nil, p.errorf(p.peek(), "unterminated dictionary %s", name)
		}
		if err := p.skipExtendedAttributes(); err != nil {
			return nil, err
		}
		p.accept(tokIdent, "required")
		p.accept(tokIdent, "static")
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		field, err := p.expectIdent("field name")
		if err != nil {
			return nil, err
		}
		// Methods on dictionaries describe instance behavior and are not fields.
		if p.peek().is(tokPunct, "(") {
			if err := p.skipPast(";"); err != nil {
				return nil, err
			}
			continue
		}
		if p.accept(tokPunct, "=") {
			if err := p.skipUntil(";"); err != nil {
				return nil, err
			}
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		dict.Members = append(dict.Members, &Argument{Name: field, IDLType: typ})
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return dict, nil
}

func (p *parser) parseEnum() (Declaration, *ParseError) {
	p.next() // enum
	name, err := p.expectIdent("enum name")
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	enum := &Enum{Name: name}
	for !p.accept(tokPunct, "}") {
		if err := p.skipExtendedAttributes(); err != nil {
			return nil, err
		}
		value, err := p.parseEnumValue()
		if err != nil {
			return nil, err
		}
		enum.Values = append(enum.Values, value)
		if !p.accept(tokPunct, ",") && !p.peek().is(tokPunct, "}") {
			return nil, p.errorf(p.peek(), "expected ',' or '}' in enum %s", name)
		}
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return enum, nil
}

// parseEnumValue reads a quoted or bare value. Bare values such as 1080p lex
// as a number followed by an identifier and are joined back together.
func (p *parser) parseEnumValue() (string, *ParseError) {
	tok := p.next()
	switch tok.kind {
	case tokString, tokIdent:
		return tok.value, nil
	case tokNumber:
		value := tok.value
		if nxt := p.peek(); nxt.kind == tokIdent && nxt.pos.Offset == tok.pos.Offset+len(tok.value) {
			value += p.next().value
		}
		return value, nil
	case tokEOF:
		return "", p.errorf(tok, "unterminated enum")
	}
	return "", p.errorf(tok, "expected enum value")
}

func (p *parser) parseCallback() (Declaration, *ParseError) {
	p.next() // callback
	name, err := p.expectIdent("callback name")
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("="); err != nil {
		return nil, err
	}
	if _, err := p.parseType(); err != nil {
		return nil, err
	}
	args, err := p.parseArguments()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return &Callback{Name: name, Arguments: args}, nil
}

func (p *parser) parseInterface() (Declaration, *ParseError) {
	p.next() // interface
	name, err := p.expectIdent("interface name")
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	iface := &Interface{Name: name}
	for !p.accept(tokPunct, "}") {
		if p.peek().kind == tokEOF {
			return nil, p.errorf(p.peek(), "unterminated interface %s", name)
		}
		if err := p.skipExtendedAttributes(); err != nil {
			return nil, err
		}
		static := p.accept(tokIdent, "static")
		if _, err := p.parseType(); err != nil {
			return nil, err
		}
		opName, err := p.expectIdent("operation name")
		if err != nil {
			return nil, err
		}
		args, err := p.parseArguments()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		iface.Members = append(iface.Members, &Member{Name: opName, Arguments: args, Static: &static})
	}
	if err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return iface, nil
}

func (p *parser) parseArguments() ([]*Argument, *ParseError) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []*Argument
	if p.accept(tokPunct, ")") {
		return args, nil
	}
	for {
		if err := p.skipExtendedAttributes(); err != nil {
			return nil, err
		}
		optional := p.accept(tokIdent, "optional")
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		name, err := p.expectIdent("argument name")
		if err != nil {
			return nil, err
		}
		args = append(args, &Argument{Name: name, IDLType: typ, Optional: &optional})
		if p.accept(tokPunct, ")") {
			return args, nil
		}
		if err := p.expectPunct(","); err != nil {
			return nil, err
		}
	}
}

// parseType reads a type reference. `any` is implicitly nullable, so a
// trailing `?` on it is accepted and not recorded.
func (p *parser) parseType() (*Type, *ParseError) {
	tok := p.peek()
	if tok.kind != tokIdent {
		return nil, p.errorf(tok, "expected type")
	}
	p.next()

	typ := &Type{IDLType: tok.value}
	switch {
	case p.peek().is(tokPunct, "<"):
		p.next()
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(">"); err != nil {
			return nil, err
		}
		// sequence<T> is T[]; other generics such as Promise<T> only appear as return types.
		if tok.value == "sequence" {
			typ = &Type{IDLType: inner.IDLType, Array: true}
		}
	case tok.value == "unsigned" || tok.value == "unrestricted":
		nxt := p.peek()
		if nxt.kind == tokIdent && contains(multiWordTypes[tok.value], nxt.value) {
			p.next()
			typ.IDLType += " " + nxt.value
		}
	}
	if typ.IDLType == "long" || typ.IDLType == "unsigned long" {
		if p.accept(tokIdent, "long") {
			typ.IDLType += " long"
		}
	}

	if p.peek().is(tokPunct, "[") && p.peekAt(1).is(tokPunct, "]") {
		p.next()
		p.next()
		typ.Array = true
	}
	if p.accept(tokPunct, "?") && typ.IDLType != "any" {
		typ.Nullable = true
	}
	return typ, nil
}

// skipExtendedAttributes consumes any number of bracketed attribute lists.
func (p *parser) skipExtendedAttributes() *ParseError {
	for p.peek().is(tokPunct, "[") {
		open := p.next()
		depth := 1
		for depth > 0 {
			tok := p.next()
			switch {
			case tok.kind == tokEOF:
				return p.errorf(open, "unterminated extended attribute list")
			case tok.is(tokPunct, "["):
				depth++
			case tok.is(tokPunct, "]"):
				depth--
			}
		}
	}
	return nil
}

// skipUntil advances to the next top-level occurrence of punct without consuming it.
func (p *parser) skipUntil(punct string) *ParseError {
	start := p.peek()
	depth := 0
	for {
		tok := p.peek()
		switch {
		case tok.kind == tokEOF:
			return p.errorf(start, "expected %q before end of input", punct)
		case depth == 0 && tok.is(tokPunct, punct):
			return nil
		case tok.is(tokPunct, "(") || tok.is(tokPunct, "[") || tok.is(tokPunct, "{"):
			depth++
		case tok.is(tokPunct, ")") || tok.is(tokPunct, "]") || tok.is(tokPunct, "}"):
			depth--
		}
		p.next()
	}
}

func (p *parser) skipPast(punct string) *ParseError {
	if err := p.skipUntil(punct); err != nil {
		return err
	}
	p.next()
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
