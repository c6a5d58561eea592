// Command authzonectl is the process entrypoint around the authzone
// library: it owns the zone-file path (read through authzone.FromFile),
// the optional ZSK key file, and command-line I/O that the core
// package deliberately stays out of (see SPEC_FULL.md §1). It loads a zone, answers one-off queries
// against it, and dumps its contents for inspection.
package main

import "github.com/milodns/authzone/cmd/authzonectl/cmd"

func main() {
	cmd.Execute()
}
