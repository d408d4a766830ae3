// Package parser implements Sage's recursive-descent parser: tokens in,
// untyped ast.Source out.
//
// The parser is built on a two-function token stream, peek and match,
// each taking a variadic list of patterns where a pattern is either a
// lexer.TokenType or a literal string; it matches when the token at the
// given offset has that kind OR that literal text. This mirrors the
// teacher's curToken/peekToken cursor, generalized into the single
// primitive the grammar below is built from.
package parser

import (
	"math/big"
	"strings"

	"github.com/sagelang/sage/pkg/sage/ast"
	"github.com/sagelang/sage/pkg/sage/lexer"
	"github.com/sagelang/sage/pkg/sage/numeric"
	"github.com/sagelang/sage/pkg/sage/sageerr"
)

// Parser walks a fixed token slice with a cursor and no backtracking.
// There is no error recovery: the first parse error terminates parsing.
type Parser struct {
	tokens []lexer.Token
	pos    int
}

// New creates a Parser over a token sequence produced by the lexer.
func New(tokens []lexer.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses a token sequence produced by the lexer into an untyped
// AST; it does no lexing of its own.
func Parse(tokens []lexer.Token) (*ast.Source, *sageerr.Error) {
	return New(tokens).ParseSource()
}

// pattern is either a lexer.TokenType or a literal string.
type pattern any

func (p *Parser) tokenAt(offset int) lexer.Token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF
	}
	return p.tokens[i]
}

func (p *Parser) current() lexer.Token { return p.tokenAt(0) }

func matches(tok lexer.Token, pat pattern) bool {
	switch v := pat.(type) {
	case lexer.TokenType:
		return tok.Kind == v
	case string:
		return tok.Literal == v
	default:
		return false
	}
}

// peek reports whether the token `offset` positions ahead matches any of
// the given patterns. peek(0, ...) inspects the current token.
func (p *Parser) peek(offset int, patterns ...pattern) bool {
	tok := p.tokenAt(offset)
	for _, pat := range patterns {
		if matches(tok, pat) {
			return true
		}
	}
	return false
}

// match reports whether the current token matches any of the given
// patterns, consuming it if so.
func (p *Parser) match(patterns ...pattern) bool {
	if p.peek(0, patterns...) {
		p.pos++
		return true
	}
	return false
}

// expect behaves like match but raises a ParseError naming what was
// expected if the current token does not match.
func (p *Parser) expect(what string, patterns ...pattern) (lexer.Token, *sageerr.Error) {
	tok := p.current()
	if !p.match(patterns...) {
		return lexer.Token{}, sageerr.Newf(sageerr.StageParse, sageerr.CodeUnexpectedToken,
			"expected %s but found %q", what, tok.Literal).At(tok.Line, tok.Column)
	}
	return tok, nil
}

func (p *Parser) atEOF() bool { return p.peek(0, lexer.EOF) }

// ParseSource parses a whole program: { stmt }.
func (p *Parser) ParseSource() (*ast.Source, *sageerr.Error) {
	src := &ast.Source{}
	for !p.atEOF() {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		src.Statements = append(src.Statements, stmt)
	}
	return src, nil
}

func (p *Parser) parseStmt() (ast.Stmt, *sageerr.Error) {
	switch {
	case p.peek(0, "LET"):
		return p.parseLet()
	case p.peek(0, "DEF"):
		return p.parseDef()
	case p.peek(0, "IF"):
		return p.parseIf()
	case p.peek(0, "FOR"):
		return p.parseFor()
	case p.peek(0, "RETURN"):
		return p.parseReturn()
	default:
		return p.parseExprOrAssign()
	}
}

// let = 'LET' IDENT [ ':' IDENT ] [ '=' expr ] ';'
func (p *Parser) parseLet() (ast.Stmt, *sageerr.Error) {
	tok, _ := p.expect("LET", "LET")
	name, err := p.expect("an identifier", lexer.Identifier)
	if err != nil {
		return nil, err
	}

	node := &ast.Let{Token: tok, Name: name.Literal}

	if p.match(":") {
		typeTok, err := p.expect("a type name", lexer.Identifier)
		if err != nil {
			return nil, err
		}
		typeName := typeTok.Literal
		node.Type = &typeName
	}

	if p.match("=") {
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node.Value = value
	}

	if _, err := p.expect("';'", ";"); err != nil {
		return nil, err
	}
	return node, nil
}

// def   = 'DEF' IDENT '(' [ param { ',' param } ] ')' [ ':' IDENT ] 'DO' { stmt } 'END'
// param = IDENT [ ':' IDENT ]
func (p *Parser) parseDef() (ast.Stmt, *sageerr.Error) {
	tok, _ := p.expect("DEF", "DEF")
	name, err := p.expect("an identifier", lexer.Identifier)
	if err != nil {
		return nil, err
	}

	if _, err := p.expect("'('", "("); err != nil {
		return nil, err
	}

	node := &ast.Def{Token: tok, Name: name.Literal}
	if !p.peek(0, ")") {
		for {
			param, err := p.parseTypedParam()
			if err != nil {
				return nil, err
			}
			node.Parameters = append(node.Parameters, param.name)
			node.ParameterTypes = append(node.ParameterTypes, param.typ)
			if !p.match(",") {
				break
			}
		}
	}
	if _, err := p.expect("')'", ")"); err != nil {
		return nil, err
	}

	if p.match(":") {
		typeTok, err := p.expect("a type name", lexer.Identifier)
		if err != nil {
			return nil, err
		}
		rt := typeTok.Literal
		node.ReturnType = &rt
	}

	if _, err := p.expect("DO", "DO"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntil("END")
	if err != nil {
		return nil, err
	}
	node.Body = body
	if _, err := p.expect("END", "END"); err != nil {
		return nil, err
	}
	return node, nil
}

type typedParam struct {
	name string
	typ  *string
}

// parseTypedParam accepts a bare IDENT and, if immediately followed by
// ':' IDENT, an explicit parameter type annotation, matching how the
// generator and analyzer want parameter types recorded as {name, type}
// pairs.
func (p *Parser) parseTypedParam() (typedParam, *sageerr.Error) {
	nameTok, err := p.expect("a parameter name", lexer.Identifier)
	if err != nil {
		return typedParam{}, err
	}
	param := typedParam{name: nameTok.Literal}
	if p.match(":") {
		typeTok, err := p.expect("a type name", lexer.Identifier)
		if err != nil {
			return typedParam{}, err
		}
		t := typeTok.Literal
		param.typ = &t
	}
	return param, nil
}

// if = 'IF' expr 'DO' { stmt } [ 'ELSE' { stmt } ] 'END'
func (p *Parser) parseIf() (ast.Stmt, *sageerr.Error) {
	tok, _ := p.expect("IF", "IF")
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("DO", "DO"); err != nil {
		return nil, err
	}
	then, err := p.parseBlockUntil("ELSE", "END")
	if err != nil {
		return nil, err
	}

	node := &ast.If{Token: tok, Cond: cond, Then: then}
	if p.match("ELSE") {
		elseBody, err := p.parseBlockUntil("END")
		if err != nil {
			return nil, err
		}
		node.Else = elseBody
	}
	if _, err := p.expect("END", "END"); err != nil {
		return nil, err
	}
	return node, nil
}

// for = 'FOR' IDENT 'IN' expr 'DO' { stmt } 'END'
func (p *Parser) parseFor() (ast.Stmt, *sageerr.Error) {
	tok, _ := p.expect("FOR", "FOR")
	name, err := p.expect("an identifier", lexer.Identifier)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("IN", "IN"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("DO", "DO"); err != nil {
		return nil, err
	}
	body, err := p.parseBlockUntil("END")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("END", "END"); err != nil {
		return nil, err
	}
	return &ast.For{Token: tok, Name: name.Literal, Iterable: iterable, Body: body}, nil
}

// return = 'RETURN' [ expr ] ';'
func (p *Parser) parseReturn() (ast.Stmt, *sageerr.Error) {
	tok, _ := p.expect("RETURN", "RETURN")
	node := &ast.Return{Token: tok}
	if !p.peek(0, ";") {
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		node.Value = value
	}
	if _, err := p.expect("';'", ";"); err != nil {
		return nil, err
	}
	return node, nil
}

// exprOrAssign = expr ( '=' expr )? ';'
func (p *Parser) parseExprOrAssign() (ast.Stmt, *sageerr.Error) {
	leadTok := p.current()
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.peek(0, "=") {
		eqTok := p.current()
		p.pos++
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("';'", ";"); err != nil {
			return nil, err
		}
		return &ast.Assignment{Token: eqTok, Target: expr, Value: value}, nil
	}

	if _, err := p.expect("';'", ";"); err != nil {
		return nil, err
	}
	return &ast.ExpressionStmt{Token: leadTok, Expr: expr}, nil
}

func (p *Parser) parseBlockUntil(terminators ...pattern) ([]ast.Stmt, *sageerr.Error) {
	var stmts []ast.Stmt
	for !p.peek(0, terminators...) {
		if p.atEOF() {
			tok := p.current()
			return nil, sageerr.New(sageerr.StageParse, sageerr.CodeUnexpectedEOF, "unexpected end of input").At(tok.Line, tok.Column)
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return stmts, nil
}

// ---------------------------------------------------------------------
// Expressions, in ascending precedence order per the grammar.
// ---------------------------------------------------------------------

func (p *Parser) parseExpr() (ast.Expr, *sageerr.Error) { return p.parseLogical() }

func (p *Parser) parseLogical() (ast.Expr, *sageerr.Error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.peek(0, "AND", "OR") {
		opTok := p.current()
		p.pos++
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Token: opTok, Op: opTok.Literal, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseComparison() (ast.Expr, *sageerr.Error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for p.peek(0, "==", "!=", "<", "<=", ">", ">=") {
		opTok := p.current()
		p.pos++
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Token: opTok, Op: opTok.Literal, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAdditive() (ast.Expr, *sageerr.Error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.peek(0, "+", "-") {
		opTok := p.current()
		p.pos++
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Token: opTok, Op: opTok.Literal, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, *sageerr.Error) {
	left, err := p.parseSecondary()
	if err != nil {
		return nil, err
	}
	for p.peek(0, "*", "/") {
		opTok := p.current()
		p.pos++
		right, err := p.parseSecondary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Token: opTok, Op: opTok.Literal, Left: left, Right: right}
	}
	return left, nil
}

// secondary = primary { '.' IDENT ( '(' [ expr { ',' expr } ] ')' )? }
func (p *Parser) parseSecondary() (ast.Expr, *sageerr.Error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek(0, ".") {
		dotTok := p.current()
		p.pos++
		nameTok, err := p.expect("a property or method name", lexer.Identifier)
		if err != nil {
			return nil, err
		}
		if p.peek(0, "(") {
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			left = &ast.Method{Token: dotTok, Receiver: left, Name: nameTok.Literal, Args: args}
		} else {
			left = &ast.Property{Token: dotTok, Receiver: left, Name: nameTok.Literal}
		}
	}
	return left, nil
}

// parseArgList parses '(' [ expr { ',' expr } ] ')'.
func (p *Parser) parseArgList() ([]ast.Expr, *sageerr.Error) {
	if _, err := p.expect("'('", "("); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if !p.peek(0, ")") {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(",") {
				break
			}
		}
	}
	if _, err := p.expect("')'", ")"); err != nil {
		return nil, err
	}
	return args, nil
}

// primary = INT | DEC | STR | CHR
//         | 'TRUE' | 'FALSE' | 'NIL'
//         | '(' expr ')'
//         | 'OBJECT' [IDENT] 'DO' { let | def } 'END'
//         | IDENT [ '(' [ expr { ',' expr } ] ')' ]
func (p *Parser) parsePrimary() (ast.Expr, *sageerr.Error) {
	tok := p.current()

	switch {
	case p.peek(0, lexer.Integer):
		p.pos++
		n, ok := new(big.Int).SetString(tok.Literal, 10)
		if !ok {
			return nil, sageerr.Newf(sageerr.StageParse, sageerr.CodeUnexpectedToken, "invalid integer literal %q", tok.Literal).At(tok.Line, tok.Column)
		}
		return &ast.Literal{Token: tok, Kind: ast.LitInteger, Value: n}, nil

	case p.peek(0, lexer.Decimal):
		p.pos++
		d, err := numeric.NewDecimalFromString(tok.Literal)
		if err != nil {
			return nil, sageerr.Newf(sageerr.StageParse, sageerr.CodeUnexpectedToken, "invalid decimal literal %q", tok.Literal).At(tok.Line, tok.Column)
		}
		return &ast.Literal{Token: tok, Kind: ast.LitDecimal, Value: d}, nil

	case p.peek(0, lexer.String):
		p.pos++
		s, err := decodeStringLiteral(tok.Literal)
		if err != nil {
			return nil, sageerr.Newf(sageerr.StageParse, sageerr.CodeUnexpectedToken, "%s", err.Error()).At(tok.Line, tok.Column)
		}
		return &ast.Literal{Token: tok, Kind: ast.LitString, Value: s}, nil

	case p.peek(0, lexer.Character):
		p.pos++
		c, err := decodeCharacterLiteral(tok.Literal)
		if err != nil {
			return nil, sageerr.Newf(sageerr.StageParse, sageerr.CodeUnexpectedToken, "%s", err.Error()).At(tok.Line, tok.Column)
		}
		return &ast.Literal{Token: tok, Kind: ast.LitCharacter, Value: c}, nil

	case p.match("TRUE"):
		return &ast.Literal{Token: tok, Kind: ast.LitBoolean, Value: true}, nil

	case p.match("FALSE"):
		return &ast.Literal{Token: tok, Kind: ast.LitBoolean, Value: false}, nil

	case p.match("NIL"):
		return &ast.Literal{Token: tok, Kind: ast.LitNil, Value: nil}, nil

	case p.peek(0, "("):
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect("')'", ")"); err != nil {
			return nil, err
		}
		return &ast.Group{Token: tok, Expr: inner}, nil

	case p.peek(0, "OBJECT"):
		return p.parseObjectExpr()

	case p.peek(0, lexer.Identifier):
		p.pos++
		if p.peek(0, "(") {
			args, err := p.parseArgList()
			if err != nil {
				return nil, err
			}
			return &ast.Function{Token: tok, Name: tok.Literal, Args: args}, nil
		}
		return &ast.Variable{Token: tok, Name: tok.Literal}, nil

	default:
		return nil, sageerr.Newf(sageerr.StageParse, sageerr.CodeUnexpectedToken, "expected an expression but found %q", tok.Literal).At(tok.Line, tok.Column)
	}
}

// 'OBJECT' [IDENT] 'DO' { let | def } 'END'
func (p *Parser) parseObjectExpr() (ast.Expr, *sageerr.Error) {
	tok, _ := p.expect("OBJECT", "OBJECT")

	node := &ast.ObjectExpr{Token: tok}
	if p.peek(0, lexer.Identifier) && !p.peek(0, "DO") {
		nameTok := p.current()
		p.pos++
		name := nameTok.Literal
		node.Name = &name
	}

	if _, err := p.expect("DO", "DO"); err != nil {
		return nil, err
	}

	for !p.peek(0, "END") {
		if p.atEOF() {
			tok := p.current()
			return nil, sageerr.New(sageerr.StageParse, sageerr.CodeUnexpectedEOF, "unexpected end of input in OBJECT body").At(tok.Line, tok.Column)
		}
		switch {
		case p.peek(0, "LET"):
			letStmt, err := p.parseLet()
			if err != nil {
				return nil, err
			}
			node.Fields = append(node.Fields, letStmt.(*ast.Let))
		case p.peek(0, "DEF"):
			defStmt, err := p.parseDef()
			if err != nil {
				return nil, err
			}
			node.Methods = append(node.Methods, defStmt.(*ast.Def))
		default:
			tok := p.current()
			return nil, sageerr.Newf(sageerr.StageParse, sageerr.CodeUnexpectedToken, "expected LET or DEF inside OBJECT body but found %q", tok.Literal).At(tok.Line, tok.Column)
		}
	}
	if _, err := p.expect("END", "END"); err != nil {
		return nil, err
	}
	return node, nil
}

// ---------------------------------------------------------------------
// Literal decoding helpers
// ---------------------------------------------------------------------

// escapeByte maps a single escape character to the rune it decodes to,
// matching the lexer's escape set: \b \n \r \t \' \" \\.
func escapeByte(b byte) (rune, bool) {
	switch b {
	case 'b':
		return '\b', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case '\'':
		return '\'', true
	case '"':
		return '"', true
	case '\\':
		return '\\', true
	default:
		return 0, false
	}
}

// decodeStringLiteral strips surrounding quotes and decodes escapes.
func decodeStringLiteral(literal string) (string, error) {
	body := literal[1 : len(literal)-1]
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			r, ok := escapeByte(body[i+1])
			if !ok {
				return "", strconvError("invalid escape in string literal")
			}
			sb.WriteRune(r)
			i++
			continue
		}
		sb.WriteByte(body[i])
	}
	return sb.String(), nil
}

// decodeCharacterLiteral strips surrounding quotes and decodes a single
// code point, which may itself be an escape.
func decodeCharacterLiteral(literal string) (rune, error) {
	body := literal[1 : len(literal)-1]
	if len(body) == 0 {
		return 0, strconvError("empty character literal")
	}
	if body[0] == '\\' {
		r, ok := escapeByte(body[1])
		if !ok {
			return 0, strconvError("invalid escape in character literal")
		}
		return r, nil
	}
	runes := []rune(body)
	return runes[0], nil
}

type strconvErr string

func (e strconvErr) Error() string { return string(e) }
func strconvError(s string) error  { return strconvErr(s) }
