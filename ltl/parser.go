package ltl

import (
	"fmt"
	"io"
	"strings"
	"text/scanner"
)

type parser struct {
	s     scanner.Scanner
	eof   bool   // Have we reached eof yet?
	token string // Last token read
}

// Parse parses a formula from the given input Reader.
// Formulas are written using the following operators (from lowest to highest priority):
//
// - for a biconditional, the "<->" operator,
// - for an implication, the "->" operator,
// - for a disjunction ("or"), the "|" operator,
// - for a conjunction ("and"), the "&" operator,
// - for an until, the "U" operator (right associative),
// - for a negation, the "!" unary operator,
// - for next, always and eventually, the "X", "G" and "F" unary operators.
//
// The identifiers "true" and "false" denote the boolean constants; any
// other identifier denotes an atom. Parentheses can be used to group
// subformulas. Note that the single letters U, X, G and F are reserved
// and cannot name atoms.
func Parse(r io.Reader) (*Formula, error) {
	var s scanner.Scanner
	s.Init(r)
	s.Error = func(*scanner.Scanner, string) {} // errors surface as parse errors
	p := parser{s: s}
	p.scan()
	f, err := p.parseIff()
	if err != nil {
		return nil, err
	}
	if !p.eof {
		return nil, fmt.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
	}
	return f, nil
}

// ParseString parses a formula from its textual form.
func ParseString(s string) (*Formula, error) {
	return Parse(strings.NewReader(s))
}

func (p *parser) scan() {
	if p.eof {
		return
	}
	p.eof = p.s.Scan() == scanner.EOF
	p.token = p.s.TokenText()
}

func (p *parser) parseIff() (*Formula, error) {
	f, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	if p.eof || p.token != "<" {
		return f, nil
	}
	p.scan()
	if p.eof || p.token != "-" {
		return nil, fmt.Errorf("invalid token %q at %v, expected \"<->\"", "<"+p.token, p.s.Pos())
	}
	p.scan()
	if p.eof || p.token != ">" {
		return nil, fmt.Errorf("invalid token %q at %v, expected \"<->\"", "<-"+p.token, p.s.Pos())
	}
	p.scan()
	f2, err := p.parseIff()
	if err != nil {
		return nil, err
	}
	return Iff(f, f2), nil
}

func (p *parser) parseImplies() (*Formula, error) {
	f, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.eof || p.token != "-" {
		return f, nil
	}
	p.scan()
	if p.eof || p.token != ">" {
		return nil, fmt.Errorf("invalid token %q at %v, expected \"->\"", "-"+p.token, p.s.Pos())
	}
	p.scan()
	f2, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	return Implies(f, f2), nil
}

func (p *parser) parseOr() (*Formula, error) {
	f, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	if p.eof || p.token != "|" {
		return f, nil
	}
	p.scan()
	f2, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	return Or(f, f2), nil
}

func (p *parser) parseAnd() (*Formula, error) {
	f, err := p.parseUntil()
	if err != nil {
		return nil, err
	}
	if p.eof || p.token != "&" {
		return f, nil
	}
	p.scan()
	f2, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	return And(f, f2), nil
}

func (p *parser) parseUntil() (*Formula, error) {
	f, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	if p.eof || p.token != "U" {
		return f, nil
	}
	p.scan()
	f2, err := p.parseUntil()
	if err != nil {
		return nil, err
	}
	return Until(f, f2), nil
}

func (p *parser) parseUnary() (*Formula, error) {
	if p.eof {
		return nil, fmt.Errorf("at position %v, expected formula, found EOF", p.s.Pos())
	}
	switch p.token {
	case "!":
		p.scan()
		f, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not(f), nil
	case "X":
		p.scan()
		f, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Next(f), nil
	case "G":
		p.scan()
		f, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Always(f), nil
	case "F":
		p.scan()
		f, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Eventually(f), nil
	case "(":
		p.scan()
		f, err := p.parseIff()
		if err != nil {
			return nil, err
		}
		if p.eof || p.token != ")" {
			return nil, fmt.Errorf("at position %v, expected %q, found %q", p.s.Pos(), ")", p.token)
		}
		p.scan()
		return f, nil
	case "true":
		p.scan()
		return True(), nil
	case "false":
		p.scan()
		return False(), nil
	}
	if !isIdent(p.token) || p.token == "U" {
		return nil, fmt.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
	}
	name := p.token
	p.scan()
	return Atom(name), nil
}

func isIdent(token string) bool {
	if token == "" {
		return false
	}
	for i, r := range token {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
