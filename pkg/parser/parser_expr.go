package parser

import (
	"github.com/leapstack-labs/tally/pkg/ast"
	"github.com/leapstack-labs/tally/pkg/token"
)

// parseExpr parses an assignment or an additive expression.
func (p *Parser) parseExpr() (ast.Node, error) {
	leave, err := p.enter()
	if err != nil {
		return nil, err
	}
	defer leave()

	if p.token.Is(token.KEYWORD, token.Var) {
		return p.parseAssign()
	}
	return p.parseBinary(p.parseTerm, token.PLUS, token.MINUS)
}

// parseAssign parses VAR IDENTIFIER = expr.
func (p *Parser) parseAssign() (ast.Node, error) {
	keyword := p.token
	p.nextToken()

	if !p.check(token.IDENT) {
		return nil, p.errorf(ErrExpectedIdent)
	}
	name := p.token
	p.nextToken()

	if !p.check(token.EQ) {
		return nil, p.errorf(ErrExpectedEquals)
	}
	p.nextToken()

	val, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.VariableAssign{Keyword: keyword, Name: name, Value: val}, nil
}

// parseTerm parses left-associative * and /.
func (p *Parser) parseTerm() (ast.Node, error) {
	return p.parseBinary(p.parseFactor, token.STAR, token.SLASH)
}

// parseFactor parses a chain of unary signs in front of a power.
func (p *Parser) parseFactor() (ast.Node, error) {
	leave, err := p.enter()
	if err != nil {
		return nil, err
	}
	defer leave()

	if p.checkAny(token.PLUS, token.MINUS) {
		op := p.token
		p.nextToken()
		operand, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Op: op, Operand: operand}, nil
	}
	return p.parsePower()
}

// parsePower parses atom ("^" factor)*. The right operand re-enters
// parseFactor, which makes "^" right-associative.
func (p *Parser) parsePower() (ast.Node, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.check(token.CARET) {
		op := p.token
		p.nextToken()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Op: op, Right: right}
	}
	return left, nil
}

// parseAtom parses a literal, a variable reference or a parenthesized
// expression.
func (p *Parser) parseAtom() (ast.Node, error) {
	tok := p.token
	switch tok.Kind {
	case token.IDENT:
		p.nextToken()
		return &ast.VariableRef{Name: tok}, nil

	case token.INT, token.FLOAT:
		p.nextToken()
		return &ast.NumberLiteral{Token: tok}, nil

	case token.LPAREN:
		p.nextToken()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if !p.check(token.RPAREN) {
			return nil, p.errorf(ErrExpectedRParen)
		}
		p.nextToken()
		return inner, nil
	}
	return nil, p.errorf(ErrExpectedAtom)
}

// parseBinary parses operand (op operand)* for the given operators and folds
// the result to the left.
func (p *Parser) parseBinary(operand func() (ast.Node, error), ops ...token.Kind) (ast.Node, error) {
	left, err := operand()
	if err != nil {
		return nil, err
	}
	for p.checkAny(ops...) {
		op := p.token
		p.nextToken()
		right, err := operand()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryOp{Left: left, Op: op, Right: right}
	}
	return left, nil
}
