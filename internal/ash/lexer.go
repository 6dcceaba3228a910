package ash

import "unicode"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNewline
	tokInt
	tokIdent
	tokLet
	tokReturn
	tokLParen
	tokRParen
	tokLBrack
	tokRBrack
	tokComma
	tokAssign
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokArrow
)

var tokenNames = map[tokenKind]string{
	tokEOF:     "end of file",
	tokNewline: "newline",
	tokInt:     "integer",
	tokIdent:   "identifier",
	tokLet:     "'let'",
	tokReturn:  "'return'",
	tokLParen:  "'('",
	tokRParen:  "')'",
	tokLBrack:  "'['",
	tokRBrack:  "']'",
	tokComma:   "','",
	tokAssign:  "'='",
	tokPlus:    "'+'",
	tokMinus:   "'-'",
	tokStar:    "'*'",
	tokSlash:   "'/'",
	tokArrow:   "'->'",
}

func (k tokenKind) String() string {
	return tokenNames[k]
}

type token struct {
	kind tokenKind
	text string
	pos  Pos
}

func (t token) describe() string {
	switch t.kind {
	case tokInt, tokIdent:
		return t.kind.String() + " " + t.text
	default:
		return t.kind.String()
	}
}

// lex splits src into tokens. Newlines nested inside parentheses or brackets
// are dropped so expressions may span lines; consecutive newlines collapse.
func lex(file, src string) ([]token, error) {
	var (
		toks  []token
		runes = []rune(src)
		line  = 1
		col   = 1
		depth = 0
	)
	emit := func(kind tokenKind, text string, l, c int) {
		if kind == tokNewline && (len(toks) == 0 || toks[len(toks)-1].kind == tokNewline) {
			return
		}
		toks = append(toks, token{kind: kind, text: text, pos: Pos{File: file, Line: l, Col: c}})
	}

	for i := 0; i < len(runes); {
		r := runes[i]
		startLine, startCol := line, col
		switch {
		case r == '\n':
			if depth == 0 {
				emit(tokNewline, "\n", startLine, startCol)
			}
			i++
			line++
			col = 1
			continue
		case r == '#':
			for i < len(runes) && runes[i] != '\n' {
				i++
				col++
			}
			continue
		case unicode.IsSpace(r):
			i++
			col++
			continue
		case unicode.IsDigit(r):
			j := i
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			if j < len(runes) && isIdentRune(runes[j], false) {
				return nil, errorf(Pos{File: file, Line: line, Col: col + j - i}, src,
					"invalid character %q in integer literal", runes[j])
			}
			emit(tokInt, string(runes[i:j]), startLine, startCol)
			col += j - i
			i = j
			continue
		case isIdentRune(r, true):
			j := i
			for j < len(runes) && isIdentRune(runes[j], false) {
				j++
			}
			word := string(runes[i:j])
			kind := tokIdent
			switch word {
			case "let":
				kind = tokLet
			case "return":
				kind = tokReturn
			}
			emit(kind, word, startLine, startCol)
			col += j - i
			i = j
			continue
		}

		kind := tokEOF
		width := 1
		switch r {
		case '(':
			kind = tokLParen
			depth++
		case ')':
			kind = tokRParen
			depth = max(depth-1, 0)
		case '[':
			kind = tokLBrack
			depth++
		case ']':
			kind = tokRBrack
			depth = max(depth-1, 0)
		case ',':
			kind = tokComma
		case '=':
			kind = tokAssign
		case '+':
			kind = tokPlus
		case '*':
			kind = tokStar
		case '/':
			kind = tokSlash
		case '-':
			kind = tokMinus
			if i+1 < len(runes) && runes[i+1] == '>' {
				kind = tokArrow
				width = 2
			}
		default:
			return nil, errorf(Pos{File: file, Line: line, Col: col}, src, "unexpected character %q", r)
		}
		emit(kind, string(runes[i:i+width]), startLine, startCol)
		i += width
		col += width
	}
	emit(tokNewline, "\n", line, col)
	toks = append(toks, token{kind: tokEOF, pos: Pos{File: file, Line: line, Col: col}})
	return toks, nil
}

func isIdentRune(r rune, first bool) bool {
	if r == '_' || unicode.IsLetter(r) {
		return true
	}
	return !first && unicode.IsDigit(r)
}
