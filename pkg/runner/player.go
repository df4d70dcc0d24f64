package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/psdrun/pkg/domain"
)

// Controller is the session surface the player drives.
type Controller interface {
	Click(ctx context.Context, layerID int) (bool, error)
	Dispatch(ctx context.Context, a domain.Action) (bool, error)
	SetOverride(ctx context.Context, layerID int, visible bool) (bool, error)
	Snapshot(ctx context.Context) (*domain.Snapshot, error)
}

// ContentRenderer turns markdown into terminal output.
type ContentRenderer func(string) (string, error)

// Player is an interactive REPL over a Controller.
type Player struct {
	ctrl     Controller
	reader   *bufio.Reader
	writer   io.Writer
	renderer ContentRenderer
	maxLine  int

	outMu     sync.Mutex
	lines     chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithInput sets where commands are read from. Defaults to stdin.
func WithInput(r io.Reader) PlayerOption {
	return func(p *Player) {
		p.reader = bufio.NewReader(r)
	}
}

// WithOutput sets where state and prompts are written. Defaults to stdout.
func WithOutput(w io.Writer) PlayerOption {
	return func(p *Player) {
		p.writer = w
	}
}

// WithRenderer sets the markdown renderer for state reports.
func WithRenderer(renderer ContentRenderer) PlayerOption {
	return func(p *Player) {
		p.renderer = renderer
	}
}

// WithMaxLineSize bounds accepted command lines.
func WithMaxLineSize(n int) PlayerOption {
	return func(p *Player) {
		p.maxLine = n
	}
}

// NewPlayer creates a player bound to ctrl.
func NewPlayer(ctrl Controller, opts ...PlayerOption) *Player {
	p := &Player{
		ctrl:    ctrl,
		reader:  bufio.NewReader(os.Stdin),
		writer:  os.Stdout,
		maxLine: DefaultMaxLineSize,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run prints the session state and executes commands until quit, end of
// input or cancellation of ctx. Command errors are reported and the loop
// continues.
func (p *Player) Run(ctx context.Context) error {
	if err := p.printState(ctx); err != nil {
		return err
	}
	for {
		line, err := p.readLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if line == "" {
			continue
		}
		cmd, err := ParseCommand(line)
		if err != nil {
			p.printf("error: %v\n", err)
			continue
		}
		quit, err := p.execute(ctx, cmd)
		if err != nil {
			p.printf("error: %v\n", err)
			continue
		}
		if quit {
			return nil
		}
	}
}

func (p *Player) execute(ctx context.Context, cmd Command) (bool, error) {
	var (
		applied bool
		err     error
	)
	switch cmd.Kind {
	case CmdQuit:
		return true, nil
	case CmdHelp:
		p.printf("%s\n", Usage)
		return false, nil
	case CmdState:
		return false, p.printState(ctx)
	case CmdClick:
		applied, err = p.ctrl.Click(ctx, cmd.LayerID)
	case CmdOverride:
		applied, err = p.ctrl.SetOverride(ctx, cmd.LayerID, cmd.Visible)
	case CmdAction:
		applied, err = p.ctrl.Dispatch(ctx, cmd.Action)
	}
	if err != nil {
		return false, err
	}
	if !applied {
		p.printf("(no change)\n")
		return false, nil
	}
	return false, p.printState(ctx)
}

// Announce writes an out-of-band message, such as a timer navigation,
// between prompts.
func (p *Player) Announce(msg string) {
	p.printf("\n[psdrun] %s\n> ", msg)
}

func (p *Player) printState(ctx context.Context) error {
	snap, err := p.ctrl.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to read session state: %w", err)
	}
	out := StateMarkdown(snap)
	if p.renderer != nil {
		if rendered, err := p.renderer(out); err == nil {
			out = rendered
		}
	}
	p.printf("%s\n", strings.TrimSpace(out))
	return nil
}

// StateMarkdown formats a snapshot as a short markdown report.
func StateMarkdown(s *domain.Snapshot) string {
	var b strings.Builder
	if !s.Configured {
		b.WriteString("## No interaction config loaded\n")
	} else {
		fmt.Fprintf(&b, "## Screen: %s\n\n", s.CurrentScreen)
	}
	if len(s.ActivePopups) > 0 {
		fmt.Fprintf(&b, "- **Popups:** %s\n", strings.Join(s.ActivePopups, ", "))
	}
	if len(s.SelectedHighlights) > 0 {
		var parts []string
		for _, g := range slices.Sorted(maps.Keys(s.SelectedHighlights)) {
			parts = append(parts, g+"="+s.SelectedHighlights[g])
		}
		fmt.Fprintf(&b, "- **Highlights:** %s\n", strings.Join(parts, ", "))
	}
	if len(s.DynamicTexts) > 0 {
		var parts []string
		for _, id := range slices.Sorted(maps.Keys(s.DynamicTexts)) {
			parts = append(parts, fmt.Sprintf("%d=%q", id, s.DynamicTexts[id]))
		}
		fmt.Fprintf(&b, "- **Texts:** %s\n", strings.Join(parts, ", "))
	}
	if s.PendingTimers > 0 {
		fmt.Fprintf(&b, "- **Pending timers:** %d\n", s.PendingTimers)
	}
	return b.String()
}

func (p *Player) printf(format string, args ...any) {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	fmt.Fprintf(p.writer, format, args...)
}

// readLine prompts and waits for one sanitized line. Reads happen on a
// background pump so that cancellation does not wait for the terminal.
func (p *Player) readLine(ctx context.Context) (string, error) {
	p.startOnce.Do(func() {
		p.lines = make(chan inputResult)
		go p.pump()
	})
	for {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		p.printf("> ")

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-p.lines:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := SanitizeInput(res.text, p.maxLine)
			if err != nil {
				p.printf("error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

func (p *Player) pump() {
	defer close(p.lines)
	for {
		text, err := p.reader.ReadString('\n')
		if text != "" {
			p.lines <- inputResult{text: text}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.lines <- inputResult{err: err}
			}
			return
		}
	}
}
