package shell

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"src.devlab.sh/pkg/boxes"
	"src.devlab.sh/pkg/diag"
	"src.devlab.sh/pkg/mathexp"
)

// Eval evaluates each of exprs as an arithmetic expression and writes the
// results to stdout, one per line. If exprs is empty, expressions are read
// from stdin, one per line. It returns the exit status: 0 if all expressions
// were evaluated, 2 otherwise.
func Eval(fds [3]*os.File, exprs []string, jsonOutput bool) int {
	exit := 0
	evalOne := func(text string) {
		v, err := mathexp.Evaluate(text)
		switch {
		case err != nil && jsonOutput:
			fds[1].Write(errorToJSON(err))
			fds[1].WriteString("\n")
		case err != nil:
			diag.ShowError(fds[2], err)
		case jsonOutput:
			b, _ := json.Marshal(map[string]string{"value": boxes.FormatNumber(v)})
			fmt.Fprintln(fds[1], string(b))
		default:
			fmt.Fprintln(fds[1], boxes.FormatNumber(v))
		}
		if err != nil {
			exit = 2
		}
	}

	if len(exprs) > 0 {
		for _, text := range exprs {
			evalOne(text)
		}
		return exit
	}
	scanner := bufio.NewScanner(fds[0])
	for scanner.Scan() {
		evalOne(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		diag.ShowError(fds[2], err)
		return 2
	}
	return exit
}
