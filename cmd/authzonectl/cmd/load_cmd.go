package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a zone file and report how many rows it produced",
	Run: func(cmd *cobra.Command, args []string) {
		z := loadZone()
		fmt.Printf("loaded zone %q: %d rows\n", z.Origin(), len(z.Dump()))
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
