package diag

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// ErrorTag is used to parameterize [Error] into different concrete types.
type ErrorTag interface {
	ErrorTag() string
}

// Error represents an error with context that can be showed.
type Error[T ErrorTag] struct {
	Message string
	Context Context
	// Indicates whether the error may be caused by partial input. An input
	// that ends right after an operator is such a case.
	Partial bool
}

// Error returns a plain text representation of the error.
func (e *Error[T]) Error() string {
	return errorTag[T]() + ": " + e.Context.describeStart() + ": " + e.Message
}

// Range returns the range of the error.
func (e *Error[T]) Range() Ranging {
	return e.Context.Range()
}

var (
	messageStart = "\033[31;1m"
	messageEnd   = "\033[m"
)

// Show shows the error.
func (e *Error[T]) Show(indent string) string {
	header := fmt.Sprintf("%s: %s%s%s\n", capitalize(errorTag[T]()),
		messageStart, e.Message, messageEnd)
	return header + indent + "  " + e.Context.Show(indent+"  ")
}

// As returns the *Error[T] wrapped in err, or nil if there is none.
func As[T ErrorTag](err error) *Error[T] {
	var e *Error[T]
	if errors.As(err, &e) {
		return e
	}
	return nil
}

func errorTag[T ErrorTag]() string {
	var t T
	return t.ErrorTag()
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[n:]
}
