// Package tt supports table-driven tests with little boilerplate.
//
// A typical use looks like:
//
//	tt.Test(t, tt.Fn(mathexp.EvaluateOrNaN).Named("EvaluateOrNaN"),
//		tt.It("adds").Args("1+2").Rets(3.0),
//	)
//
// Return values are compared with go-cmp, treating two NaNs as equal.
package tt

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Case represents a test case. It is created by the It function, and offers
// setters that augment and return itself; those calls can be chained like
// It(...).Args(...).Rets(...).
type Case struct {
	desc        string
	args        []any
	retsMatcher []any
}

// It returns a new Case with the given text description.
func It(desc string) *Case {
	return &Case{desc: desc}
}

// Args modifies the Case to pass the given arguments. It returns the receiver.
func (c *Case) Args(args ...any) *Case {
	c.args = args
	return c
}

// Rets modifies the Case to expect the given return values. The arguments may
// implement the Matcher interface, in which case its Match method is called
// with the actual return value. Otherwise go-cmp is used to determine matches.
// It returns the receiver.
func (c *Case) Rets(matchers ...any) *Case {
	c.retsMatcher = matchers
	return c
}

// FnDescriptor describes a function to test.
type FnDescriptor struct {
	name string
	body any
}

// Fn creates a FnDescriptor for the given function.
func Fn(body any) *FnDescriptor {
	return &FnDescriptor{body: body}
}

// Named sets the name of the function, used in error messages. It returns the
// receiver.
func (fn *FnDescriptor) Named(name string) *FnDescriptor {
	fn.name = name
	return fn
}

// T is the interface for accessing testing.T.
type T interface {
	Helper()
	Errorf(format string, args ...any)
}

// Matcher wraps the Match method.
type Matcher interface {
	// Match reports whether a return value is considered a match. The argument
	// is of type RetValue so that it cannot be implemented accidentally.
	Match(RetValue) bool
}

// RetValue is an empty interface used in the Matcher interface.
type RetValue any

// Any is a Matcher that matches any value.
var Any Matcher = anyMatcher{}

type anyMatcher struct{}

func (anyMatcher) Match(RetValue) bool { return true }

// ErrorMatches returns a Matcher that matches any non-nil error whose message
// contains the given text.
func ErrorMatches(text string) Matcher { return errorMatcher{text} }

type errorMatcher struct{ text string }

func (m errorMatcher) Match(v RetValue) bool {
	err, ok := v.(error)
	return ok && err != nil && strings.Contains(err.Error(), m.text)
}

var cmpOpts = []cmp.Option{cmpopts.EquateNaNs()}

// Test tests a function against test cases.
func Test(t T, fn *FnDescriptor, tests ...*Case) {
	t.Helper()
	for _, test := range tests {
		rets := call(fn.body, test.args)
		if !match(test.retsMatcher, rets) {
			var args strings.Builder
			for i, arg := range test.args {
				if i > 0 {
					args.WriteString(", ")
				}
				fmt.Fprintf(&args, "%#v", arg)
			}
			t.Errorf("%s(%s) returns (-want +got):\n%s", fn.name, args.String(),
				cmp.Diff(test.retsMatcher, rets, cmpOpts...))
			if test.desc != "" {
				t.Errorf("  (it %s)", test.desc)
			}
		}
	}
}

func match(matchers, actual []any) bool {
	if len(matchers) != len(actual) {
		return false
	}
	for i, matcher := range matchers {
		if m, ok := matcher.(Matcher); ok {
			if !m.Match(actual[i]) {
				return false
			}
		} else if !cmp.Equal(matcher, actual[i], cmpOpts...) {
			return false
		}
	}
	return true
}

func call(fn any, args []any) []any {
	fnType := reflect.TypeOf(fn)
	argsReflect := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			// reflect.ValueOf(nil) returns a zero Value; use a zero value of
			// the parameter type instead.
			argsReflect[i] = reflect.Zero(fnType.In(i))
		} else {
			argsReflect[i] = reflect.ValueOf(arg)
		}
	}
	retsReflect := reflect.ValueOf(fn).Call(argsReflect)
	rets := make([]any, len(retsReflect))
	for i, retReflect := range retsReflect {
		rets[i] = retReflect.Interface()
	}
	return rets
}
