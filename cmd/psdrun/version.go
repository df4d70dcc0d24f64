package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/psdrun"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of psdrun",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "psdrun version %s\n", strings.TrimSpace(psdrun.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
