package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/psdrun/pkg/domain"
)

// CommandKind tells the player what a parsed line asks for.
type CommandKind int

const (
	CmdAction CommandKind = iota
	CmdClick
	CmdOverride
	CmdState
	CmdHelp
	CmdQuit
)

// Command is one parsed player line.
type Command struct {
	Kind    CommandKind
	Action  domain.Action
	LayerID int
	Visible bool
}

// ErrUnknownCommand is returned for lines the player cannot interpret.
var ErrUnknownCommand = errors.New("unknown command")

// Usage lists the player grammar.
const Usage = `Commands:
  click <layerId>             activate the element bound to a layer
  nav <screen>                navigate to a screen
  when <screen>=<target> ...  navigate based on the current screen
  popup <name>                show a popup
  hide [screen]               hide popups, optionally navigating
  highlight <name>            select a highlight in its group
  toggle <name>               toggle a highlight
  digit <d> <targets>         push a digit into comma separated displays
  clear <targets>             reset displays
  slider <layerId> <value>    move a slider
  layer <layerId> on|off      override a layer's visibility
  state                       print the session state
  help                        print this help
  quit                        leave`

// ParseCommand turns a player line into a Command.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty line", ErrUnknownCommand)
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	need := func(n int) error {
		if len(args) < n {
			return fmt.Errorf("%s: expected %d argument(s), got %d", name, n, len(args))
		}
		return nil
	}
	action := func(t domain.ActionType, target string) Command {
		return Command{Kind: CmdAction, Action: domain.Action{Type: t, Target: target}}
	}

	switch name {
	case "quit", "exit":
		return Command{Kind: CmdQuit}, nil
	case "help", "?":
		return Command{Kind: CmdHelp}, nil
	case "state":
		return Command{Kind: CmdState}, nil
	case "click":
		if err := need(1); err != nil {
			return Command{}, err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("click: invalid layer id %q", args[0])
		}
		return Command{Kind: CmdClick, LayerID: id}, nil
	case "layer":
		if err := need(2); err != nil {
			return Command{}, err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("layer: invalid layer id %q", args[0])
		}
		switch strings.ToLower(args[1]) {
		case "on", "show", "true":
			return Command{Kind: CmdOverride, LayerID: id, Visible: true}, nil
		case "off", "hide", "false":
			return Command{Kind: CmdOverride, LayerID: id, Visible: false}, nil
		}
		return Command{}, fmt.Errorf("layer: expected on or off, got %q", args[1])
	case "nav", "navigate":
		if err := need(1); err != nil {
			return Command{}, err
		}
		return action(domain.ActionNavigate, args[0]), nil
	case "when":
		if err := need(1); err != nil {
			return Command{}, err
		}
		targets := make(map[string]string, len(args))
		for _, pair := range args {
			from, to, ok := strings.Cut(pair, "=")
			if !ok || from == "" || to == "" {
				return Command{}, fmt.Errorf("when: expected screen=target, got %q", pair)
			}
			targets[from] = to
		}
		return Command{Kind: CmdAction, Action: domain.Action{Type: domain.ActionNavigateConditional, Targets: targets}}, nil
	case "popup":
		if err := need(1); err != nil {
			return Command{}, err
		}
		return action(domain.ActionShowPopup, args[0]), nil
	case "hide":
		if len(args) > 0 {
			return action(domain.ActionNavigateFromPopup, args[0]), nil
		}
		return action(domain.ActionHidePopup, ""), nil
	case "highlight":
		if err := need(1); err != nil {
			return Command{}, err
		}
		return action(domain.ActionShowHighlight, args[0]), nil
	case "toggle":
		if err := need(1); err != nil {
			return Command{}, err
		}
		return action(domain.ActionToggleHighlight, args[0]), nil
	case "digit":
		if err := need(2); err != nil {
			return Command{}, err
		}
		c := action(domain.ActionInputDigit, strings.Join(args[1:], ""))
		c.Action.Value = args[0]
		return c, nil
	case "clear":
		if err := need(1); err != nil {
			return Command{}, err
		}
		return action(domain.ActionClearInput, strings.Join(args, "")), nil
	case "slider":
		if err := need(2); err != nil {
			return Command{}, err
		}
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return Command{}, fmt.Errorf("slider: invalid layer id %q", args[0])
		}
		v, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return Command{}, fmt.Errorf("slider: invalid value %q", args[1])
		}
		return Command{Kind: CmdAction, Action: domain.Action{Type: domain.ActionSetSlider, LayerID: id, Number: v}}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}
