package diag

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"src.devlab.sh/pkg/testutil"
)

type testErrorTag struct{}

func (testErrorTag) ErrorTag() string { return "some error" }

func setMarkers(t *testing.T) {
	testutil.Set(t, &culpritStart, "<")
	testutil.Set(t, &culpritEnd, ">")
	testutil.Set(t, &messageStart, "{")
	testutil.Set(t, &messageEnd, "}")
}

func TestError(t *testing.T) {
	setMarkers(t)
	//                                     0123456789
	err := &Error[testErrorTag]{
		Message: "bad operand",
		Context: *NewContext("[test]", "2+(3*)+1", Ranging{From: 5, To: 6}),
	}

	if got, want := err.Error(), "some error: [test]:1:6: bad operand"; got != want {
		t.Errorf("Error() -> %q, want %q", got, want)
	}
	if got, want := err.Range(), (Ranging{From: 5, To: 6}); got != want {
		t.Errorf("Range() -> %v, want %v", got, want)
	}
	wantShow := "Some error: {bad operand}\n  [test]:1:6: 2+(3*<)>+1"
	if got := err.Show(""); got != wantShow {
		t.Errorf("Show() -> %q, want %q", got, wantShow)
	}
}

func TestContext_EmptyCulpritShowsPlaceholder(t *testing.T) {
	setMarkers(t)
	c := NewContext("[test]", "2+", PointRanging(2))
	if got, want := c.Show(""), "[test]:1:3: 2+<^>"; got != want {
		t.Errorf("Show() -> %q, want %q", got, want)
	}
}

func TestContext_InvalidPosition(t *testing.T) {
	c := NewContext("[test]", "abc", Ranging{From: 2, To: 10})
	if got := c.Show(""); !strings.Contains(got, "invalid position") {
		t.Errorf("Show() -> %q, want invalid position", got)
	}
}

func TestAs(t *testing.T) {
	inner := &Error[testErrorTag]{Message: "x", Context: *NewContext("n", "s", PointRanging(0))}
	wrapped := fmt.Errorf("wrapped: %w", inner)
	if got := As[testErrorTag](wrapped); got != inner {
		t.Errorf("As(wrapped) -> %v, want %v", got, inner)
	}
	if got := As[testErrorTag](errors.New("plain")); got != nil {
		t.Errorf("As(plain) -> %v, want nil", got)
	}
}

type showerError struct{}

func (showerError) Error() string { return "error" }

func (showerError) Show(_ string) string { return "show" }

func TestShowError(t *testing.T) {
	for _, test := range []struct {
		name    string
		err     error
		wantBuf string
	}{
		{"A Shower error", showerError{}, "show\n"},
		{"A errors.New error", errors.New("ERROR"), "\033[31;1mERROR\033[m\n"},
	} {
		t.Run(test.name, func(t *testing.T) {
			sb := &strings.Builder{}
			ShowError(sb, test.err)
			if sb.String() != test.wantBuf {
				t.Errorf("Wrote %q, want %q", sb.String(), test.wantBuf)
			}
		})
	}
}
