/*
Package expr parses and evaluates single-variable mathematical expressions.

An expression is compiled once with Parse into an Evaluator, which can then be
called any number of times (and from any number of goroutines) with different
values for the variable x.

# Grammar

From lowest to highest precedence:

	expression := term (('+' | '-') term)*
	term       := factor (('*' | '/') factor)*
	factor     := unary ('^' factor)?
	unary      := ('-' | '+') unary | primary
	primary    := number | 'x' | identifier '(' expression ')' | '(' expression ')'

Exponentiation is right-associative (2^3^2 is 512). Since a factor starts with
a unary, a leading sign binds tighter than '^', so -2^2 is 4.

The built-in functions are sin, cos, tan, log (natural logarithm), exp and
sqrt. Division by zero and out-of-domain arguments are not errors; they yield
IEEE infinities or NaN.

# Usage

	ev, err := expr.Parse("sin(x) * x^2")
	if err != nil {
		var perr *expr.ParseError
		if errors.As(err, &perr) {
			log.Printf("bad expression at %d: %v", perr.Pos, perr)
		}
		return err
	}
	y := ev.Evaluate(1.5)
*/
package expr
