package main

import (
	"fmt"

	"github.com/deemkeen/statusbridge/util"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), util.GetNameAndVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
