package patch

import (
	"github.com/hashicorp/hcl/v2"
)

// Program is the parsed form of a whole patch file.
type Program struct {
	Filename   string
	Source     []byte
	Statements []*Statement
}

// Statement is either `Target = Value` or a bare `Value`.
type Statement struct {
	// Target is empty for a bare expression statement.
	Target      string
	TargetRange hcl.Range
	Value       Expr
	SrcRange    hcl.Range
}

// IsAssignment reports whether the statement binds a name.
func (s *Statement) IsAssignment() bool {
	return s.Target != ""
}

// Expr is one of *Number, *Ident or *Call.
type Expr interface {
	Range() hcl.Range
	isExpr()
}

// Number is a numeric literal. Negative literals are folded at parse time.
type Number struct {
	Value    float64
	SrcRange hcl.Range
}

// Ident is a bare identifier referring to an assignment.
type Ident struct {
	Name     string
	SrcRange hcl.Range
}

// Call is a function-style invocation, e.g. `Mix(a, b, 0.5)`.
type Call struct {
	Name      string
	NameRange hcl.Range
	Args      []Expr
	SrcRange  hcl.Range
}

func (e *Number) Range() hcl.Range { return e.SrcRange }
func (e *Ident) Range() hcl.Range  { return e.SrcRange }
func (e *Call) Range() hcl.Range   { return e.SrcRange }

func (*Number) isExpr() {}
func (*Ident) isExpr()  {}
func (*Call) isExpr()   {}
