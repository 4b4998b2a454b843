package expr

import (
	"strconv"
	"unicode/utf8"
)

// parser is a recursive-descent parser over a single expression string.
// It only ever reads ASCII; any other byte is reported as an unexpected token.
type parser struct {
	input string
	pos   int
}

// Parse compiles src into an Evaluator.
// The returned error, if any, is a *ParseError.
func Parse(src string) (*Evaluator, error) {
	p := &parser{input: src}

	root, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if !p.eof() {
		return nil, p.unexpected()
	}

	return &Evaluator{source: src, root: root}, nil
}

// MustParse is like Parse but panics on error.
func MustParse(src string) *Evaluator {
	ev, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return ev
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.input) && isSpace(p.input[p.pos]) {
		p.pos++
	}
}

// match consumes c if it is the next non-space byte.
func (p *parser) match(c byte) bool {
	p.skipSpace()
	if p.pos < len(p.input) && p.input[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *parser) fail(kind error, pos int, name string) *ParseError {
	return &ParseError{Kind: kind, Pos: pos, Name: name, Input: p.input}
}

func (p *parser) unexpected() *ParseError {
	if p.eof() {
		return p.fail(ErrUnexpectedToken, p.pos, "")
	}
	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])
	return p.fail(ErrUnexpectedToken, p.pos, string(r))
}

func (p *parser) parseExpression() (Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		var op byte
		switch {
		case p.match('+'):
			op = '+'
		case p.match('-'):
			op = '-'
		default:
			return left, nil
		}

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseTerm() (Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for {
		var op byte
		switch {
		case p.match('*'):
			op = '*'
		case p.match('/'):
			op = '/'
		default:
			return left, nil
		}

		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

// parseFactor recurses into itself for the exponent, which makes '^'
// right-associative.
func (p *parser) parseFactor() (Node, error) {
	base, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	if !p.match('^') {
		return base, nil
	}

	exponent, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	return &Binary{Op: '^', Left: base, Right: exponent}, nil
}

func (p *parser) parseUnary() (Node, error) {
	var op byte
	switch {
	case p.match('-'):
		op = '-'
	case p.match('+'):
		op = '+'
	default:
		return p.parsePrimary()
	}

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &Unary{Op: op, Operand: operand}, nil
}

func (p *parser) parsePrimary() (Node, error) {
	p.skipSpace()
	if p.eof() {
		return nil, p.unexpected()
	}

	c := p.input[p.pos]
	switch {
	case isDigit(c) || c == '.':
		return p.parseNumber()

	case isLetter(c):
		start := p.pos
		name := p.parseIdentifier()
		if name == "x" {
			return &Variable{}, nil
		}
		return p.parseCall(name, start)

	case c == '(':
		open := p.pos
		p.pos++
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if !p.match(')') {
			return nil, p.fail(ErrMissingCloseParen, open, "(")
		}
		return inner, nil
	}

	return nil, p.unexpected()
}

// parseCall parses the parenthesised argument of the function name that
// starts at start. The name is resolved only after the argument parsed, so a
// malformed call reports its syntax error first.
func (p *parser) parseCall(name string, start int) (Node, error) {
	if !p.match('(') {
		return nil, p.fail(ErrMissingOpenParen, p.pos, name)
	}
	open := p.pos - 1

	arg, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if !p.match(')') {
		return nil, p.fail(ErrMissingCloseParen, open, name)
	}

	fn, ok := builtins[name]
	if !ok {
		return nil, p.fail(ErrUnknownFunction, start, name)
	}
	return &Call{Name: name, Arg: arg, fn: fn}, nil
}

// parseNumber reads digits with at most one decimal point.
func (p *parser) parseNumber() (Node, error) {
	start := p.pos
	seenDot := false
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '.' {
			if seenDot {
				break
			}
			seenDot = true
		} else if !isDigit(c) {
			break
		}
		p.pos++
	}

	text := p.input[start:p.pos]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.fail(ErrUnexpectedToken, start, text)
	}
	return &Literal{Value: v}, nil
}

func (p *parser) parseIdentifier() string {
	start := p.pos
	for p.pos < len(p.input) && isLetter(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func isDigit(c byte) bool  { return '0' <= c && c <= '9' }
func isLetter(c byte) bool { return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' }
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}
