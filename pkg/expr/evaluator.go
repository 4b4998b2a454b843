package expr

// Evaluator is a compiled expression. It is immutable and safe for
// concurrent use.
type Evaluator struct {
	source string
	root   Node
}

// Evaluate returns the value of the expression at x.
// Non-finite results (division by zero, domain errors) are returned as is.
func (e *Evaluator) Evaluate(x float32) float32 {
	return float32(e.root.eval(float64(x)))
}

// Evaluate64 is Evaluate at full precision.
func (e *Evaluator) Evaluate64(x float64) float64 {
	return e.root.eval(x)
}

// Source returns the text the evaluator was compiled from.
func (e *Evaluator) Source() string {
	return e.source
}

// Root returns the parsed expression tree.
func (e *Evaluator) Root() Node {
	return e.root
}

// String returns the fully parenthesised form of the expression.
func (e *Evaluator) String() string {
	return e.root.String()
}

// Eval parses src and evaluates it once at x.
func Eval(src string, x float32) (float32, error) {
	ev, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return ev.Evaluate(x), nil
}
