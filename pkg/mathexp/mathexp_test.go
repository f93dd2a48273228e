package mathexp

import (
	"errors"
	"math"
	"sync"
	"testing"

	"src.devlab.sh/pkg/diag"
	"src.devlab.sh/pkg/tt"
)

var It = tt.It

func TestEvaluate(t *testing.T) {
	tt.Test(t, tt.Fn(Evaluate).Named("Evaluate"),
		It("treats empty input as zero").Args("").Rets(0.0, nil),
		It("treats blank input as zero").Args(" \t\n").Rets(0.0, nil),
		It("reads a single integer").Args("5").Rets(5.0, nil),
		It("reads zero").Args("0").Rets(0.0, nil),
		It("reads a fraction").Args("0.25").Rets(0.25, nil),
		It("reads a negative fraction").Args("-1.5").Rets(-1.5, nil),
		It("reads an explicit plus sign").Args("+7").Rets(7.0, nil),
		It("accepts a trailing dot").Args("3.").Rets(3.0, nil),
		It("gives * precedence over +").Args("2+3*4").Rets(14.0, nil),
		It("honors parentheses").Args("(2+3)*4").Rets(20.0, nil),
		It("is left-associative for -").Args("10-4-3").Rets(3.0, nil),
		It("is left-associative for /").Args("64/4/2").Rets(8.0, nil),
		It("subtracts a negative number").Args("2--1").Rets(3.0, nil),
		It("nests parentheses").Args("((1+1)*(2+2))/4").Rets(2.0, nil),
		It("skips blanks between tokens").Args(" 2 * ( 3 + 4 ) ").Rets(14.0, nil),
		It("divides by zero into +Inf").Args("1/0").Rets(math.Inf(1), nil),
		It("divides by zero into -Inf").Args("-1/0").Rets(math.Inf(-1), nil),
		It("divides zero by zero into NaN").Args("0/0").Rets(math.NaN(), nil),

		It("rejects a dangling operator").Args("2+").
			Rets(math.NaN(), tt.ErrorMatches("unexpected end of input")),
		It("rejects an unclosed parenthesis").Args("(1+2").
			Rets(math.NaN(), tt.ErrorMatches("should be ')' or operator")),
		It("rejects an unmatched closing parenthesis").Args("1+2)").
			Rets(math.NaN(), tt.ErrorMatches("unexpected ')'")),
		It("rejects a leading zero followed by digits").Args("05").
			Rets(math.NaN(), tt.ErrorMatches("unexpected '5'")),
		It("rejects letters").Args("2x").
			Rets(math.NaN(), tt.ErrorMatches("unexpected 'x'")),
		It("rejects a leading operator").Args("*3").
			Rets(math.NaN(), tt.ErrorMatches("should be number or '('")),
		It("rejects a sign without digits").Args("-").
			Rets(math.NaN(), tt.ErrorMatches("should be digit")),
		It("rejects a fraction without integer part").Args(".5").
			Rets(math.NaN(), tt.ErrorMatches("unexpected '.'")),
		It("rejects a literal spelled out").Args("NaN").
			Rets(math.NaN(), tt.ErrorMatches("unexpected 'N'")),
	)
}

func TestEvaluate_ErrorPosition(t *testing.T) {
	for _, test := range []struct {
		src         string
		wantRange   diag.Ranging
		wantPartial bool
	}{
		{"2+", diag.Ranging{From: 2, To: 2}, true},
		{"1+2)", diag.Ranging{From: 3, To: 4}, false},
		{"12*a", diag.Ranging{From: 3, To: 4}, false},
		{"(1+2", diag.Ranging{From: 4, To: 4}, true},
	} {
		_, err := Evaluate(test.src)
		var perr *Error
		if !errors.As(err, &perr) {
			t.Errorf("Evaluate(%q) returns error %v, want *Error", test.src, err)
			continue
		}
		if perr.Range() != test.wantRange {
			t.Errorf("Evaluate(%q) error range %v, want %v", test.src, perr.Range(), test.wantRange)
		}
		if perr.Partial != test.wantPartial {
			t.Errorf("Evaluate(%q) error partial = %v, want %v", test.src, perr.Partial, test.wantPartial)
		}
		if perr.Context.Name != SourceName || perr.Context.Source != test.src {
			t.Errorf("Evaluate(%q) error context %q/%q", test.src, perr.Context.Name, perr.Context.Source)
		}
	}
}

func TestEvaluateOrNaN(t *testing.T) {
	tt.Test(t, tt.Fn(EvaluateOrNaN).Named("EvaluateOrNaN"),
		It("passes through valid results").Args("6/4").Rets(1.5),
		It("turns parse errors into NaN").Args("6/").Rets(math.NaN()),
	)
}

func TestEvaluate_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if v, err := Evaluate("(2+3)*4-1/2"); v != 19.5 || err != nil {
					t.Errorf("Evaluate -> (%v, %v), want (19.5, nil)", v, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func FuzzEvaluate(f *testing.F) {
	f.Add("2+3*4")
	f.Add("(1/0)-")
	f.Add("0.5*(-2)")
	f.Fuzz(func(t *testing.T, src string) {
		v, err := Evaluate(src)
		if err != nil && !math.IsNaN(v) {
			t.Errorf("Evaluate(%q) returns %v with error %v, want NaN", src, v, err)
		}
	})
}
