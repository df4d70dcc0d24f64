package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/psdrun/pkg/domain"
	"github.com/aretw0/psdrun/pkg/layertree"
	"github.com/spf13/cobra"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <dump>",
	Short: "Print the nested layer tree of a layer dump",
	Long: `Parses a layer dump (JSON or YAML, "-" for stdin) and prints the nested
layer tree as JSON, annotated with export hints when a hints file is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		tree, err := layertree.FromDocument(doc)
		if err != nil {
			return err
		}

		var hints *domain.HintSet
		if path, _ := cmd.Flags().GetString("hints"); path != "" {
			data, err := readInput(path)
			if err != nil {
				return err
			}
			var in domain.HintSet
			if err := json.Unmarshal(data, &in); err != nil {
				return fmt.Errorf("failed to parse hints %s: %w", path, err)
			}
			var n int
			hints, n = tree.RestoreHints(&in)
			fmt.Fprintf(cmd.ErrOrStderr(), "restored %d of %d hints\n", n, len(in.Layers))
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		if indent, _ := cmd.Flags().GetBool("indent"); indent {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(tree.Export(hints))
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().String("hints", "", "Hints file to annotate the tree with")
	inspectCmd.Flags().Bool("indent", true, "Indent the JSON output")
}
