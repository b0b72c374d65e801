package pricing

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Evaluate computes a quantity formula against a variable map. Formulas
// are data that originates from stored configuration, so the grammar is
// deliberately tiny: decimal numbers, variable names, + - * /, unary
// minus and parentheses. Referencing a variable that is not in vars is
// an ErrUnknownVariable; any other malformed input is an
// ErrInvalidFormula.
func Evaluate(formula string, vars map[string]float64) (float64, error) {
	p := &formulaParser{src: formula, vars: vars}
	value, err := p.parseExpression()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos != len(p.src) {
		return 0, fmt.Errorf("formula %q: unexpected %q at offset %d: %w", formula, p.src[p.pos], p.pos, ErrInvalidFormula)
	}
	return value, nil
}

type formulaParser struct {
	src  string
	pos  int
	vars map[string]float64
}

func (p *formulaParser) skipSpaces() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *formulaParser) peek() (byte, bool) {
	p.skipSpaces()
	if p.pos >= len(p.src) {
		return 0, false
	}
	return p.src[p.pos], true
}

// parseExpression handles + and -.
func (p *formulaParser) parseExpression() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op != '+' && op != '-') {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

// parseTerm handles * and /.
func (p *formulaParser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op != '*' && op != '/') {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, fmt.Errorf("formula %q: %w", p.src, ErrDivisionByZero)
			}
			left /= right
		}
	}
}

func (p *formulaParser) parseUnary() (float64, error) {
	if c, ok := p.peek(); ok && c == '-' {
		p.pos++
		value, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -value, nil
	}
	return p.parsePrimary()
}

func (p *formulaParser) parsePrimary() (float64, error) {
	c, ok := p.peek()
	if !ok {
		return 0, fmt.Errorf("formula %q: unexpected end of input: %w", p.src, ErrInvalidFormula)
	}

	if c == '(' {
		p.pos++
		value, err := p.parseExpression()
		if err != nil {
			return 0, err
		}
		if c, ok := p.peek(); !ok || c != ')' {
			return 0, fmt.Errorf("formula %q: missing closing parenthesis: %w", p.src, ErrInvalidFormula)
		}
		p.pos++
		return value, nil
	}

	if c >= '0' && c <= '9' || c == '.' {
		return p.parseNumber()
	}

	if isIdentStart(rune(c)) {
		return p.parseVariable()
	}

	return 0, fmt.Errorf("formula %q: unexpected %q at offset %d: %w", p.src, c, p.pos, ErrInvalidFormula)
}

func (p *formulaParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] >= '0' && p.src[p.pos] <= '9' || p.src[p.pos] == '.') {
		p.pos++
	}
	value, err := strconv.ParseFloat(p.src[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("formula %q: bad number %q: %w", p.src, p.src[start:p.pos], ErrInvalidFormula)
	}
	return value, nil
}

func (p *formulaParser) parseVariable() (float64, error) {
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(rune(p.src[p.pos])) {
		p.pos++
	}
	name := strings.ToUpper(p.src[start:p.pos])
	value, ok := p.vars[name]
	if !ok {
		return 0, fmt.Errorf("formula %q: variable %q: %w", p.src, name, ErrUnknownVariable)
	}
	return value, nil
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
