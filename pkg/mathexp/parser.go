package mathexp

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode"
	"unicode/utf8"

	"src.devlab.sh/pkg/diag"
)

// parser maintains the mutable state of parsing one expression. A new parser
// is created for every call to Evaluate, so evaluation can happen
// concurrently.
type parser struct {
	src string
	pos int
	err *Error
}

const eof rune = -1

func (ps *parser) peek() rune {
	if ps.pos == len(ps.src) {
		return eof
	}
	r, _ := utf8.DecodeRuneInString(ps.src[ps.pos:])
	return r
}

func (ps *parser) next() rune {
	if ps.pos == len(ps.src) {
		return eof
	}
	r, s := utf8.DecodeRuneInString(ps.src[ps.pos:])
	ps.pos += s
	return r
}

func (ps *parser) skipBlanks() {
	for r := ps.peek(); r != eof && unicode.IsSpace(r); r = ps.peek() {
		ps.next()
	}
}

// Tells the parser that parsing is done.
func (ps *parser) done() {
	if ps.err != nil {
		return
	}
	ps.skipBlanks()
	if r := ps.peek(); r != eof {
		ps.error(fmt.Errorf("unexpected %s", quoteRune(r)))
	}
}

// Records an error at the current position. Only the first error is kept;
// everything after it is unreliable.
func (ps *parser) error(e error) {
	if ps.err != nil {
		return
	}
	end := ps.pos
	if end < len(ps.src) {
		_, s := utf8.DecodeRuneInString(ps.src[ps.pos:])
		end += s
	}
	ps.err = &Error{
		Message: e.Error(),
		Context: *diag.NewContext(SourceName, ps.src, diag.Ranging{From: ps.pos, To: end}),
		Partial: ps.pos == len(ps.src),
	}
}

// Number := ["+"|"-"] Int ["." Digits]
func (ps *parser) number() float64 {
	var buf bytes.Buffer
	if r := ps.peek(); r == '+' || r == '-' {
		buf.WriteRune(ps.next())
	}
	// Int := "0" | NonZeroDigit Digits
	switch r := ps.peek(); {
	case r == '0':
		buf.WriteRune(ps.next())
	case isDigit(r):
		ps.digits(&buf)
	case r == eof:
		ps.error(newError("unexpected end of input", "digit"))
		return math.NaN()
	default:
		ps.error(newError("unexpected "+quoteRune(r), "digit"))
		return math.NaN()
	}
	if ps.peek() == '.' {
		ps.next()
		var frac bytes.Buffer
		ps.digits(&frac)
		if frac.Len() > 0 {
			buf.WriteByte('.')
			buf.Write(frac.Bytes())
		}
	}
	v, err := strconv.ParseFloat(buf.String(), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		// Can't happen: the buffer only ever holds a sign, digits and at most
		// one dot.
		ps.error(err)
		return math.NaN()
	}
	// On ErrRange, ParseFloat already returns ±Inf, which is what we want.
	return v
}

// Digits := Digit*
func (ps *parser) digits(buf *bytes.Buffer) {
	for isDigit(ps.peek()) {
		buf.WriteRune(ps.next())
	}
}

func isDigit(r rune) bool { return '0' <= r && r <= '9' }

func quoteRune(r rune) string {
	return strconv.QuoteRune(r)
}

func newError(text string, shouldbe ...string) error {
	if len(shouldbe) == 0 {
		return errors.New(text)
	}
	var buf bytes.Buffer
	if len(text) > 0 {
		buf.WriteString(text + ", ")
	}
	buf.WriteString("should be " + shouldbe[0])
	for i, opt := range shouldbe[1:] {
		if i == len(shouldbe)-2 {
			buf.WriteString(" or ")
		} else {
			buf.WriteString(", ")
		}
		buf.WriteString(opt)
	}
	return errors.New(buf.String())
}
