// Package mathexp evaluates the arithmetic expressions that users type into
// calculator boxes.
//
// The grammar is small and left-associative with the usual precedence:
//
//	Expression := Summand (("+"|"-") Summand)*
//	Summand    := Factor (("*"|"/") Factor)*
//	Factor     := Number | "(" Expression ")"
//	Number     := ["+"|"-"] Int ["." Digits]
//	Int        := "0" | NonZeroDigit Digits
//
// Blanks between tokens are ignored. Division follows IEEE 754 semantics, so
// "1/0" evaluates to +Inf and "0/0" to NaN; neither is an error.
package mathexp

import (
	"math"
	"strings"

	"src.devlab.sh/pkg/diag"
)

// SourceName is the name used in the context of parse errors.
const SourceName = "[expression]"

// Error is a parse error.
type Error = diag.Error[ErrorTag]

// ErrorTag parameterizes [diag.Error] to define [Error].
type ErrorTag struct{}

func (ErrorTag) ErrorTag() string { return "parse error" }

// Evaluate parses and evaluates text. Empty or blank text evaluates to 0.
//
// If text is malformed, it returns NaN and an *Error pointing at the
// offending position.
func Evaluate(text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	ps := &parser{src: text}
	v := ps.expression()
	ps.done()
	if ps.err != nil {
		return math.NaN(), ps.err
	}
	return v, nil
}

// EvaluateOrNaN is like Evaluate, but turns parse errors into NaN.
func EvaluateOrNaN(text string) float64 {
	v, _ := Evaluate(text)
	return v
}

// Expression := Summand (("+"|"-") Summand)*
func (ps *parser) expression() float64 {
	v := ps.summand()
	for ps.err == nil {
		ps.skipBlanks()
		op := ps.peek()
		if op != '+' && op != '-' {
			break
		}
		ps.next()
		rhs := ps.summand()
		if op == '+' {
			v += rhs
		} else {
			v -= rhs
		}
	}
	return v
}

// Summand := Factor (("*"|"/") Factor)*
func (ps *parser) summand() float64 {
	v := ps.factor()
	for ps.err == nil {
		ps.skipBlanks()
		op := ps.peek()
		if op != '*' && op != '/' {
			break
		}
		ps.next()
		rhs := ps.factor()
		if op == '*' {
			v *= rhs
		} else {
			v /= rhs
		}
	}
	return v
}

// Factor := Number | "(" Expression ")"
func (ps *parser) factor() float64 {
	ps.skipBlanks()
	switch r := ps.peek(); {
	case r == '(':
		ps.next()
		v := ps.expression()
		if ps.err != nil {
			return math.NaN()
		}
		ps.skipBlanks()
		if ps.peek() != ')' {
			ps.error(newError("", "')'", "operator"))
			return math.NaN()
		}
		ps.next()
		return v
	case r == '+' || r == '-' || isDigit(r):
		return ps.number()
	case r == eof:
		ps.error(newError("unexpected end of input", "number", "'('"))
	default:
		ps.error(newError("unexpected "+quoteRune(r), "number", "'('"))
	}
	return math.NaN()
}
