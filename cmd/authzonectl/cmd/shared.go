package cmd

import (
	"fmt"
	"os"

	"github.com/milodns/authzone"
	"github.com/spf13/viper"
)

// loadZone loads the zone named by the "zone-file"/"origin" config
// keys, optionally installing a zone signing key from "zsk-file", and
// terminates the process on any failure. It is shared by every
// subcommand that needs a populated zone to operate on.
func loadZone() *authzone.Zone {
	path := viper.GetString("zone-file")
	if path == "" {
		fmt.Fprintln(os.Stderr, "authzonectl: --zone-file is required")
		os.Exit(1)
	}
	origin := viper.GetString("origin")

	z, err := authzone.FromFile(origin, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authzonectl: loading %s: %v\n", path, err)
		os.Exit(1)
	}

	if keyFile := viper.GetString("zsk-file"); keyFile != "" {
		raw, err := os.ReadFile(keyFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "authzonectl: reading %s: %v\n", keyFile, err)
			os.Exit(1)
		}
		if err := z.SetZSKFromString(string(raw)); err != nil {
			fmt.Fprintf(os.Stderr, "authzonectl: loading ZSK from %s: %v\n", keyFile, err)
			os.Exit(1)
		}
	}
	return z
}
