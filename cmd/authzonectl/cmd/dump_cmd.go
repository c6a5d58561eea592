package cmd

import (
	"fmt"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump every RRset (and signature) in the loaded zone as a table",
	Run: func(cmd *cobra.Command, args []string) {
		z := loadZone()
		rows := z.Dump()

		out := []string{"Owner|TTL|Type|Data"}
		for _, r := range rows {
			out = append(out, fmt.Sprintf("%s|%d|%s|%s", r.Owner, r.TTL, r.Type, r.Data))
		}
		fmt.Println(columnize.SimpleFormat(out))
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}
