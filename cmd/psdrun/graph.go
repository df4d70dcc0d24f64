package main

import (
	"fmt"

	"github.com/aretw0/psdrun/internal/presentation/graph"
	"github.com/aretw0/psdrun/internal/validator"
	"github.com/aretw0/psdrun/pkg/interaction"
	"github.com/aretw0/psdrun/pkg/layertree"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <dump> <config>",
	Short: "Print the screen flow as a Mermaid flowchart",
	Long: `Derives the screen flow of an interaction config and prints it as a
Mermaid flowchart. Each element is drawn from the screen or popup group that
encloses its layer. --current highlights a screen; unreachable screens are
greyed out.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		tree, err := layertree.FromDocument(doc)
		if err != nil {
			return err
		}
		data, err := readInput(args[1])
		if err != nil {
			return err
		}
		cfg, err := interaction.Parse(string(data))
		if err != nil {
			return err
		}

		current, _ := cmd.Flags().GetString("current")
		if current == "" {
			current = cfg.InitialScreen
		}
		overlay := &graph.GraphOverlay{
			CurrentScreen: current,
			Unreachable:   validator.Check(cfg, tree).Unreachable,
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(validator.BuildFlow(cfg, tree), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("current", "", "Screen to highlight (defaults to the initial screen)")
}
