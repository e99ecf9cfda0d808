package parser

import (
	"slices"

	"scriptc/internal/ast"
	"scriptc/internal/diag"
	"scriptc/internal/lexer"
	"scriptc/internal/source"
	"scriptc/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough reports whether the error limit has been reached.
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

// Parser holds the state for one file. Tokens are buffered up front so that
// arrow functions can be recognised with unbounded lookahead.
type Parser struct {
	file     *source.File
	toks     []token.Token
	pos      int
	unit     *ast.Unit
	opts     Options
	lastSpan source.Span
}

// ParseFile parses one file into a Unit. The unit is returned even when
// errors were reported; callers check the reporter.
func ParseFile(file *source.File, opts Options) *ast.Unit {
	p := &Parser{
		file: file,
		toks: lexer.New(file, opts.Reporter).All(),
		unit: ast.NewUnit(file.ID, file.Path),
		opts: opts,
	}
	p.unit.Root = p.parseModule()
	p.unit.Finish()
	return p.unit
}

func (p *Parser) HasErrors() bool {
	return p.opts.CurrentErrors != 0
}

func (p *Parser) parseModule() ast.NodeID {
	start := p.peek().Span
	var stmts []ast.NodeID
	for !p.at(token.EOF) && !p.opts.Enough() {
		before := p.pos
		if id, ok := p.parseStmt(); ok {
			stmts = append(stmts, id)
		} else {
			p.resync(before)
		}
	}
	return p.node(ast.Node{Kind: ast.KindModule, Span: start.Cover(p.lastSpan), List: stmts})
}

func (p *Parser) node(n ast.Node) ast.NodeID {
	return p.unit.New(n)
}

func (p *Parser) peek() token.Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(n int) token.Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if tok.Kind != token.EOF {
		p.pos++
		p.lastSpan = tok.Span
	}
	return tok
}

func (p *Parser) eat(k token.Kind) bool {
	if p.at(k) {
		p.advance()
		return true
	}
	return false
}

// expect consumes a token of kind k or reports code at the current position.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) (token.Token, bool) {
	if p.at(k) {
		return p.advance(), true
	}
	p.err(code, msg)
	return token.Token{Kind: token.Invalid, Span: p.peek().Span}, false
}

func (p *Parser) err(code diag.Code, msg string) {
	p.errAt(code, p.peek().Span, msg)
}

func (p *Parser) errAt(code diag.Code, sp source.Span, msg string) {
	p.opts.CurrentErrors++
	if p.opts.Reporter != nil && !p.opts.Enough() {
		diag.ReportError(p.opts.Reporter, code, sp, msg).Emit()
	}
}

// endStatement accepts ';' or an implicit terminator: a closing brace, EOF
// or a line break before the next token.
func (p *Parser) endStatement() bool {
	if p.eat(token.Semicolon) || p.atOr(token.RBrace, token.EOF) || p.newlineBefore() {
		return true
	}
	p.err(diag.SynExpectSemicolon, "expected ';'")
	return false
}

func (p *Parser) newlineBefore() bool {
	start, end := p.lastSpan.End, p.peek().Span.Start
	if end > uint32(len(p.file.Content)) || start > end {
		return false
	}
	return slices.Contains(p.file.Content[start:end], '\n')
}

// resync skips to the next statement boundary after an error. It always
// consumes at least one token so the caller makes progress.
func (p *Parser) resync(before int) {
	if p.pos == before {
		p.advance()
	}
	for !p.at(token.EOF) {
		if p.eat(token.Semicolon) {
			return
		}
		if p.atOr(token.RBrace, token.KwFunction, token.KwConst, token.KwLet, token.KwVar,
			token.KwType, token.KwDeclare, token.KwReturn, token.KwIf, token.KwWhile) {
			return
		}
		p.advance()
	}
}
