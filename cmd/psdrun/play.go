package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/aretw0/psdrun"
	"github.com/aretw0/psdrun/internal/presentation/tui"
	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/runner"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var playCmd = &cobra.Command{
	Use:   "play <dump>",
	Short: "Click through a prototype in the terminal",
	Long: `Opens a session on the headless bridge and reads commands from stdin:
click <id>, nav <screen>, popup <name>, digit <d> <displays>, layer <id> on|off
and more (type "help"). Screen timers and clocks keep running between prompts.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		doc, err := readDocument(ctx, args[0])
		if err != nil {
			return err
		}

		var player atomic.Pointer[runner.Player]
		announce := func(format string, a ...any) {
			if p := player.Load(); p != nil {
				p.Announce(fmt.Sprintf(format, a...))
			}
		}
		hooks := domain.LifecycleHooks{
			OnTimerFired: func(_ context.Context, e *domain.TimerEvent) {
				announce("timer on %s fired after %s, now on %s", e.Screen, e.Delay, e.Target)
			},
		}

		sess, err := psdrun.New(doc, psdrun.WithLogger(logger), psdrun.WithLifecycleHooks(hooks))
		if err != nil {
			return err
		}
		defer sess.Close()

		if path, _ := cmd.Flags().GetString("reply"); path != "" {
			data, err := readInput(path)
			if err != nil {
				return err
			}
			if err := sess.SetConfigText(ctx, string(data)); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		opts := []runner.PlayerOption{runner.WithInput(cmd.InOrStdin()), runner.WithOutput(out)}
		if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			if banner, _ := cmd.Flags().GetBool("banner"); banner {
				tui.PrintBanner(out, strings.TrimSpace(psdrun.Version))
			}
			width, _, err := term.GetSize(int(f.Fd()))
			if err != nil {
				width = 0
			}
			render, err := tui.NewRenderer(width)
			if err != nil {
				logger.Warn("markdown rendering disabled", "err", err)
			} else {
				opts = append(opts, runner.WithRenderer(render))
			}
		}

		p := runner.NewPlayer(sess, opts...)
		player.Store(p)
		logger.Debug("play session started", "session", sess.ID(), "layers", len(doc.Layers))
		if err := p.Run(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "bye")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().StringP("reply", "r", "", "Interaction config or model reply to load")
	playCmd.Flags().Bool("banner", true, "Print the banner on a terminal")
}
