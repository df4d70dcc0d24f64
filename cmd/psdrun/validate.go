package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/psdrun/internal/validator"
	"github.com/aretw0/psdrun/pkg/interaction"
	"github.com/aretw0/psdrun/pkg/layertree"
	"github.com/spf13/cobra"
)

var errInvalid = errors.New("config is invalid")

var validateCmd = &cobra.Command{
	Use:   "validate <config>",
	Short: "Check an interaction config",
	Long: `Extracts the interaction config from a file ("-" for stdin), which may be
a full model reply with a fenced JSON block, and reports every issue. With
--dump, the screen flow is checked against the document as well: elements
bound to missing layers, screens that cannot be reached from the initial
screen and targets that name nothing. Those are warnings; the runtime ignores
them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		cfg, err := interaction.Parse(string(data))
		if err != nil {
			var cfgErr *interaction.ConfigError
			if !errors.As(err, &cfgErr) {
				return err
			}
			fmt.Fprintf(out, "Config rejected at %s stage:\n", cfgErr.Stage)
			for _, is := range interaction.Issues(err) {
				fmt.Fprintf(out, "  - %s\n", is)
			}
			if cfgErr.Err != nil {
				fmt.Fprintf(out, "  - %v\n", cfgErr.Err)
			}
			return errInvalid
		}

		if path, _ := cmd.Flags().GetString("dump"); path != "" {
			doc, err := readDocument(cmd.Context(), path)
			if err != nil {
				return err
			}
			tree, err := layertree.FromDocument(doc)
			if err != nil {
				return err
			}
			for _, w := range validator.Check(cfg, tree).Warnings() {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
		}

		fmt.Fprintf(out, "Config is valid: %d screens, %d elements, initial screen %q\n",
			len(cfg.Screens), len(cfg.Elements), cfg.InitialScreen)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("dump", "", "Layer dump to check element layer ids against")
}
