package ash

type expr interface {
	position() Pos
}

type intLit struct {
	pos  Pos
	text string
}

type identExpr struct {
	pos  Pos
	name string
}

type vecLit struct {
	pos   Pos
	elems []expr
}

type indexExpr struct {
	pos    Pos
	target expr
	index  expr
}

type callExpr struct {
	pos  Pos
	name string
	args []expr
}

type unaryExpr struct {
	pos Pos
	op  tokenKind
	x   expr
}

type binaryExpr struct {
	pos  Pos
	op   tokenKind
	x, y expr
}

func (e *intLit) position() Pos     { return e.pos }
func (e *identExpr) position() Pos  { return e.pos }
func (e *vecLit) position() Pos     { return e.pos }
func (e *indexExpr) position() Pos  { return e.pos }
func (e *callExpr) position() Pos   { return e.pos }
func (e *unaryExpr) position() Pos  { return e.pos }
func (e *binaryExpr) position() Pos { return e.pos }

type stmt interface {
	position() Pos
}

// assignStmt is `let name = value` when declare is set, `name = value` otherwise.
type assignStmt struct {
	pos     Pos
	name    string
	value   expr
	declare bool
}

type returnStmt struct {
	pos   Pos
	value expr
}

type callStmt struct {
	pos  Pos
	call *callExpr
}

func (s *assignStmt) position() Pos { return s.pos }
func (s *returnStmt) position() Pos { return s.pos }
func (s *callStmt) position() Pos   { return s.pos }

type param struct {
	pos  Pos
	name string
}

// sourceFile is a parsed .ash file.
type sourceFile struct {
	name      string
	src       string
	hasHeader bool
	params    []param
	body      []stmt
}
