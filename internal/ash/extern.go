package ash

import (
	"math/big"
	"strings"
)

// lcTerm is coeff*name in a hand-written linear combination.
type lcTerm struct {
	pos   Pos
	coeff *big.Int
	name  string
}

// ar1csLine is one line of an .ar1cs function. A line with out == "" is the
// constraint `0 = (a) * (b) - (c)`; otherwise it introduces the signal out as
// a*b (op tokStar) or a/b (op tokSlash).
type ar1csLine struct {
	pos     Pos
	out     string
	op      tokenKind
	a, b, c []lcTerm
}

// externFunc is a hand-written function loaded from an .ar1cs or .tasm file.
type externFunc struct {
	name    string
	file    string
	ext     string
	src     string
	params  []string
	returns []string

	ar1cs []ar1csLine
	asm   []string
}

// parseAR1CS parses a constraint function:
//
//	(a, b) -> (c)
//	c = (1*a) * (1*b)
//	0 = (1*a) * (1*one) - (1*c)
func parseAR1CS(fn, file, src string) (*externFunc, error) {
	toks, err := lex(file, src)
	if err != nil {
		return nil, err
	}
	p := &parser{file: file, src: src, toks: toks}
	f := &externFunc{name: fn, file: file, ext: ExtAR1CS, src: src}

	p.skipNewlines()
	if f.params, f.returns, err = p.parseSignature(); err != nil {
		return nil, err
	}

	for {
		p.skipNewlines()
		if p.peek().kind == tokEOF {
			break
		}
		line, err := p.parseAR1CSLine()
		if err != nil {
			return nil, err
		}
		f.ar1cs = append(f.ar1cs, line)
		if t := p.peek(); t.kind != tokNewline && t.kind != tokEOF {
			return nil, p.errorf(t.pos, "expected end of constraint, found %s", t.describe())
		}
	}
	return f, nil
}

// parseSignature reads `(a, b) -> (c, d)`; `-> ()` declares no outputs and a
// bare name declares one.
func (p *parser) parseSignature() ([]string, []string, error) {
	params, err := p.parseNameList()
	if err != nil {
		return nil, nil, err
	}
	if _, err := p.expect(tokArrow); err != nil {
		return nil, nil, err
	}
	var returns []string
	if p.peek().kind == tokIdent {
		returns = []string{p.next().text}
	} else if returns, err = p.parseNameList(); err != nil {
		return nil, nil, err
	}
	return params, returns, nil
}

func (p *parser) parseNameList() ([]string, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	var names []string
	for p.peek().kind != tokRParen {
		t, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		names = append(names, t.text)
		if p.peek().kind == tokComma {
			p.next()
		} else if t := p.peek(); t.kind != tokRParen {
			return nil, p.errorf(t.pos, "expected ',' or ')', found %s", t.describe())
		}
	}
	p.next()
	return names, nil
}

func (p *parser) parseAR1CSLine() (ar1csLine, error) {
	start := p.peek()
	line := ar1csLine{pos: start.pos, op: tokStar}
	switch start.kind {
	case tokInt:
		if start.text != "0" {
			return line, p.errorf(start.pos, "constraints must have the form 0 = (a) * (b) - (c)")
		}
	case tokIdent:
		line.out = start.text
	default:
		return line, p.errorf(start.pos, "expected constraint, found %s", start.describe())
	}
	p.next()
	if _, err := p.expect(tokAssign); err != nil {
		return line, err
	}

	var err error
	if line.a, err = p.parseLC(); err != nil {
		return line, err
	}
	op := p.next()
	switch {
	case op.kind == tokStar:
	case op.kind == tokSlash && line.out != "":
		line.op = tokSlash
	default:
		return line, p.errorf(op.pos, "expected '*', found %s", op.describe())
	}
	if line.b, err = p.parseLC(); err != nil {
		return line, err
	}
	if line.out != "" {
		return line, nil
	}
	if _, err := p.expect(tokMinus); err != nil {
		return line, err
	}
	line.c, err = p.parseLC()
	return line, err
}

// parseLC reads a parenthesized sum of terms such as (2*a - 1*b + 3).
func (p *parser) parseLC() ([]lcTerm, error) {
	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	var terms []lcTerm
	sign := int64(1)
	for {
		if t := p.peek(); t.kind == tokMinus {
			p.next()
			sign = -sign
		}
		term, err := p.parseTerm(sign)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)

		switch t := p.next(); t.kind {
		case tokRParen:
			return terms, nil
		case tokPlus:
			sign = 1
		case tokMinus:
			sign = -1
		default:
			return nil, p.errorf(t.pos, "expected '+', '-' or ')', found %s", t.describe())
		}
	}
}

func (p *parser) parseTerm(sign int64) (lcTerm, error) {
	t := p.next()
	switch t.kind {
	case tokIdent:
		return lcTerm{pos: t.pos, coeff: big.NewInt(sign), name: t.text}, nil
	case tokInt:
		coeff, _ := new(big.Int).SetString(t.text, 10)
		coeff.Mul(coeff, big.NewInt(sign))
		if p.peek().kind != tokStar {
			return lcTerm{pos: t.pos, coeff: coeff, name: oneSignal}, nil
		}
		p.next()
		name, err := p.expect(tokIdent)
		if err != nil {
			return lcTerm{}, err
		}
		return lcTerm{pos: t.pos, coeff: coeff, name: name.text}, nil
	}
	return lcTerm{}, p.errorf(t.pos, "expected term, found %s", t.describe())
}

// parseTasm parses an assembly function:
//
//	(_, _) -> _
//	eq
//	assert
//	push 0
//	return
//
// The body is inlined at every call site; a trailing return is dropped.
func parseTasm(fn, file, src string) (*externFunc, error) {
	f := &externFunc{name: fn, file: file, ext: ExtTasm, src: src}
	lines := strings.Split(src, "\n")
	header := -1
	for i, raw := range lines {
		line := stripTasmComment(raw)
		if line == "" {
			continue
		}
		if header < 0 {
			header = i
			params, returns, ok := parseTasmSignature(line)
			if !ok {
				return nil, errorf(Pos{File: file, Line: i + 1, Col: 1}, src,
					"tasm function must begin with a signature, e.g. (_, _) -> _")
			}
			f.params, f.returns = params, returns
			continue
		}
		if line == "return" {
			continue
		}
		f.asm = append(f.asm, line)
	}
	if header < 0 {
		return nil, errorf(Pos{File: file, Line: 1, Col: 1}, src, "empty tasm function")
	}
	return f, nil
}

func stripTasmComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	if i := strings.Index(line, "#"); i >= 0 {
		line = line[:i]
	}
	return strings.TrimSpace(line)
}

func parseTasmSignature(line string) ([]string, []string, bool) {
	lhs, rhs, ok := strings.Cut(line, "->")
	if !ok {
		return nil, nil, false
	}
	params, ok := splitTuple(strings.TrimSpace(lhs))
	if !ok {
		return nil, nil, false
	}
	rhs = strings.TrimSpace(rhs)
	if !strings.HasPrefix(rhs, "(") {
		if rhs == "" {
			return nil, nil, false
		}
		return params, []string{rhs}, true
	}
	returns, ok := splitTuple(rhs)
	return params, returns, ok
}

func splitTuple(s string) ([]string, bool) {
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, false
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil, true
	}
	var out []string
	for _, part := range strings.Split(inner, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, false
		}
		out = append(out, part)
	}
	return out, true
}
