package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"src.devlab.sh/pkg/boxes"
	"src.devlab.sh/pkg/calc"
	"src.devlab.sh/pkg/session"
)

const helpText = `Commands:
  <box>.<side> = <text>   set an input (side is left or right)
  set <box> <side> <text> same as above
  push <box>              copy the output of a box into its target
  bind <box>              bind or unbind the target of a box to its output
  dec <box> [amount]      decrement a box by amount (default 1)
  play <box>              start decrementing a box every <right> seconds
  stop <box>              stop the timer of a box
  sessions                list the sessions saved on the snapshot endpoint
  forget <session>        delete a saved session from the snapshot endpoint
  show                    show all boxes
  help                    show this help
  quit                    quit`

// Commands that are handled by the front end itself.
type (
	showCmd     struct{}
	helpCmd     struct{}
	sessionsCmd struct{}
	forgetCmd   struct{ ID string }
)

var errEmptyCommand = errors.New("empty command")

// parseCommand parses one line of input into a session event, or one of the
// commands handled by the front end.
func parseCommand(reg *boxes.Registry, line string) (any, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, errEmptyCommand
	}
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	switch name {
	case "show":
		return showCmd{}, nil
	case "help":
		return helpCmd{}, nil
	case "quit", "exit":
		return session.Quit{}, nil
	case "sessions":
		return sessionsCmd{}, nil
	case "forget":
		if rest == "" || strings.ContainsAny(rest, " \t") {
			return nil, errors.New("usage: forget <session>")
		}
		return forgetCmd{rest}, nil
	case "set":
		fields := strings.SplitN(rest, " ", 3)
		if len(fields) < 2 {
			return nil, errors.New("usage: set <box> <side> <text>")
		}
		ref, err := parseRef(reg, fields[0]+"."+fields[1])
		if err != nil {
			return nil, err
		}
		text := ""
		if len(fields) == 3 {
			text = strings.TrimSpace(fields[2])
		}
		return calc.Set{Box: ref.BoxID, Side: ref.Side, Text: text}, nil
	case "push", "bind":
		def, err := lookupBox(reg, rest)
		if err != nil {
			return nil, err
		}
		if def.Target == nil {
			return nil, fmt.Errorf("box %s has no target", def.ID)
		}
		if name == "push" {
			return calc.Push{Source: def.ID, Target: *def.Target}, nil
		}
		return calc.Bind{Source: def.ID, Target: *def.Target}, nil
	case "dec":
		id, amountText, _ := strings.Cut(rest, " ")
		def, err := lookupBox(reg, id)
		if err != nil {
			return nil, err
		}
		amount := 1.0
		if amountText = strings.TrimSpace(amountText); amountText != "" {
			amount, err = strconv.ParseFloat(amountText, 64)
			if err != nil {
				return nil, fmt.Errorf("bad amount %q", amountText)
			}
		}
		return calc.Decrement{Box: def.ID, Amount: amount}, nil
	case "play", "stop":
		def, err := lookupBox(reg, rest)
		if err != nil {
			return nil, err
		}
		if !def.CanPlay {
			return nil, fmt.Errorf("%s: %w", def.ID, calc.ErrCannotPlay)
		}
		if name == "play" {
			return session.Play{Box: def.ID}, nil
		}
		return session.Stop{Box: def.ID}, nil
	}
	if lhs, rhs, ok := strings.Cut(line, "="); ok {
		ref, err := parseRef(reg, strings.TrimSpace(lhs))
		if err != nil {
			return nil, err
		}
		return calc.Set{Box: ref.BoxID, Side: ref.Side, Text: strings.TrimSpace(rhs)}, nil
	}
	return nil, fmt.Errorf("unknown command %q; try help", name)
}

func lookupBox(reg *boxes.Registry, id string) (*boxes.Def, error) {
	if id == "" {
		return nil, errors.New("missing box; one of " + strings.Join(reg.IDs(), ", "))
	}
	def, ok := reg.Lookup(id)
	if !ok {
		return nil, fmt.Errorf("no box %q; one of %s", id, strings.Join(reg.IDs(), ", "))
	}
	return def, nil
}

func parseRef(reg *boxes.Registry, s string) (boxes.Ref, error) {
	ref, err := boxes.ParseRef(s)
	if err != nil {
		return boxes.Ref{}, err
	}
	if _, err := lookupBox(reg, ref.BoxID); err != nil {
		return boxes.Ref{}, err
	}
	return ref, nil
}
