package expr

import (
	"math"
	"strconv"
)

// Node is a node of a parsed expression tree.
type Node interface {
	eval(x float64) float64
	String() string
}

// Literal is a numeric constant.
type Literal struct {
	Value float64
}

func (n *Literal) eval(float64) float64 { return n.Value }
func (n *Literal) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// Variable is the free variable x.
type Variable struct{}

func (n *Variable) eval(x float64) float64 { return x }
func (n *Variable) String() string       { return "x" }

// Unary is a prefix sign applied to an operand.
type Unary struct {
	Op      byte // '-' or '+'
	Operand Node
}

func (n *Unary) eval(x float64) float64 {
	v := n.Operand.eval(x)
	if n.Op == '-' {
		return -v
	}
	return v
}

func (n *Unary) String() string {
	return "(" + string(n.Op) + n.Operand.String() + ")"
}

// Binary is an infix arithmetic operation.
type Binary struct {
	Op          byte // one of + - * / ^
	Left, Right Node
}

func (n *Binary) eval(x float64) float64 {
	l, r := n.Left.eval(x), n.Right.eval(x)
	switch n.Op {
	case '+':
		return l + r
	case '-':
		return l - r
	case '*':
		return l * r
	case '/':
		return l / r
	case '^':
		return math.Pow(l, r)
	}
	return math.NaN()
}

func (n *Binary) String() string {
	return "(" + n.Left.String() + " " + string(n.Op) + " " + n.Right.String() + ")"
}

// Call applies a built-in function to one argument.
type Call struct {
	Name string
	Arg  Node
	fn   func(float64) float64
}

func (n *Call) eval(x float64) float64 { return n.fn(n.Arg.eval(x)) }
func (n *Call) String() string {
	return n.Name + "(" + n.Arg.String() + ")"
}
