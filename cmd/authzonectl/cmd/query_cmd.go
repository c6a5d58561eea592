package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/miekg/dns"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <name> <type>",
	Short: "Resolve a single (name, type) query against the loaded zone",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		qtype, ok := dns.StringToType[strings.ToUpper(args[1])]
		if !ok {
			fmt.Fprintf(os.Stderr, "authzonectl: unknown RR type %q\n", args[1])
			os.Exit(1)
		}

		z := loadZone()
		msg := z.Resolve(args[0], qtype)

		fmt.Printf(";; rcode: %s, aa: %v\n", dns.RcodeToString[msg.Rcode], msg.Authoritative)
		printSection(";; ANSWER", msg.Answer)
		printSection(";; AUTHORITY", msg.Ns)
		printSection(";; ADDITIONAL", msg.Extra)
	},
}

func printSection(title string, rrs []dns.RR) {
	fmt.Println(title)
	for _, rr := range rrs {
		fmt.Println(rr.String())
	}
}

func init() {
	rootCmd.AddCommand(queryCmd)
}
