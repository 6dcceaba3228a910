package ash

type parser struct {
	file string
	src  string
	toks []token
	pos  int
}

// parseSource parses an .ash file. Function files must open with a parameter
// list; the entry file may omit it.
func parseSource(name, src string, function bool) (*sourceFile, error) {
	toks, err := lex(name, src)
	if err != nil {
		return nil, err
	}
	p := &parser{file: name, src: src, toks: toks}
	f := &sourceFile{name: name, src: src}

	p.skipNewlines()
	if p.peek().kind == tokLParen {
		params, err := p.parseHeader()
		if err != nil {
			return nil, err
		}
		f.hasHeader = true
		f.params = params
	} else if function {
		return nil, p.errorf(p.peek().pos, "function file must begin with a parameter list, e.g. (a, b)")
	}

	for {
		p.skipNewlines()
		if p.peek().kind == tokEOF {
			break
		}
		s, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		f.body = append(f.body, s)
		if t := p.peek(); t.kind != tokNewline && t.kind != tokEOF {
			return nil, p.errorf(t.pos, "expected end of statement, found %s", t.describe())
		}
	}
	return f, nil
}

func (p *parser) peek() token {
	return p.toks[p.pos]
}

func (p *parser) peekAt(offset int) token {
	if p.pos+offset >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+offset]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, p.errorf(t.pos, "expected %s, found %s", kind, t.describe())
	}
	return t, nil
}

func (p *parser) skipNewlines() {
	for p.peek().kind == tokNewline {
		p.next()
	}
}

func (p *parser) errorf(pos Pos, format string, args ...any) error {
	return errorf(pos, p.src, format, args...)
}

func (p *parser) parseHeader() ([]param, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	var params []param
	seen := make(map[string]bool)
	for p.peek().kind != tokRParen {
		t, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		if seen[t.text] {
			return nil, p.errorf(t.pos, "duplicate parameter %s", t.text)
		}
		seen[t.text] = true
		params = append(params, param{pos: t.pos, name: t.text})
		if p.peek().kind == tokComma {
			p.next()
			continue
		}
		if p.peek().kind != tokRParen {
			t := p.peek()
			return nil, p.errorf(t.pos, "expected ',' or ')' in parameter list, found %s", t.describe())
		}
	}
	p.next()
	if t := p.peek(); t.kind != tokNewline && t.kind != tokEOF {
		return nil, p.errorf(t.pos, "expected newline after parameter list, found %s", t.describe())
	}
	return params, nil
}

func (p *parser) parseStmt() (stmt, error) {
	t := p.peek()
	switch {
	case t.kind == tokLet:
		p.next()
		name, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokAssign); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &assignStmt{pos: t.pos, name: name.text, value: value, declare: true}, nil

	case t.kind == tokReturn:
		p.next()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &returnStmt{pos: t.pos, value: value}, nil

	case t.kind == tokIdent && p.peekAt(1).kind == tokAssign:
		p.next()
		p.next()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return &assignStmt{pos: t.pos, name: t.text, value: value}, nil
	}

	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	call, ok := e.(*callExpr)
	if !ok {
		return nil, p.errorf(e.position(), "expression result is unused; only calls may stand alone")
	}
	return &callStmt{pos: call.pos, call: call}, nil
}

func (p *parser) parseExpr() (expr, error) {
	return p.parseBinary(0)
}

func precedence(kind tokenKind) int {
	switch kind {
	case tokPlus, tokMinus:
		return 1
	case tokStar, tokSlash:
		return 2
	default:
		return 0
	}
}

func (p *parser) parseBinary(minPrec int) (expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		prec := precedence(op.kind)
		if prec == 0 || prec <= minPrec {
			return left, nil
		}
		p.next()
		right, err := p.parseBinary(prec)
		if err != nil {
			return nil, err
		}
		left = &binaryExpr{pos: op.pos, op: op.kind, x: left, y: right}
	}
}

func (p *parser) parseUnary() (expr, error) {
	if t := p.peek(); t.kind == tokMinus {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &unaryExpr{pos: t.pos, op: tokMinus, x: x}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokLBrack {
		open := p.next()
		index, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRBrack); err != nil {
			return nil, err
		}
		e = &indexExpr{pos: open.pos, target: e, index: index}
	}
	return e, nil
}

func (p *parser) parsePrimary() (expr, error) {
	t := p.next()
	switch t.kind {
	case tokInt:
		return &intLit{pos: t.pos, text: t.text}, nil

	case tokIdent:
		if p.peek().kind != tokLParen {
			return &identExpr{pos: t.pos, name: t.text}, nil
		}
		p.next()
		args, err := p.parseList(tokRParen)
		if err != nil {
			return nil, err
		}
		return &callExpr{pos: t.pos, name: t.text, args: args}, nil

	case tokLBrack:
		elems, err := p.parseList(tokRBrack)
		if err != nil {
			return nil, err
		}
		if len(elems) == 0 {
			return nil, p.errorf(t.pos, "empty vector literal")
		}
		return &vecLit{pos: t.pos, elems: elems}, nil

	case tokLParen:
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, p.errorf(t.pos, "expected expression, found %s", t.describe())
}

// parseList parses comma separated expressions up to and including closer.
func (p *parser) parseList(closer tokenKind) ([]expr, error) {
	var out []expr
	for p.peek().kind != closer {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
		if p.peek().kind == tokComma {
			p.next()
			continue
		}
		if t := p.peek(); t.kind != closer {
			return nil, p.errorf(t.pos, "expected ',' or %s, found %s", closer, t.describe())
		}
	}
	p.next()
	return out, nil
}
