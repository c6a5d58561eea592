package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "authzonectl",
	Short: "authzonectl loads and queries an authoritative DNS zone",
	Long: `authzonectl is a command-line harness around the authzone
zone engine: it loads a master-file zone (and, optionally, a zone
signing key), answers ad-hoc queries against it with the same
resolution algorithm an authoritative server would use, and dumps a
loaded zone's contents for inspection. It starts no listener and owns
no network transport — see SPEC_FULL.md §1.`,
}

// Execute adds all child commands to rootCmd and runs it. Called once
// from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.authzonectl.yaml)")
	rootCmd.PersistentFlags().String("zone-file", "", "master-file path to load")
	rootCmd.PersistentFlags().String("origin", ".", "zone origin (FQDN)")
	rootCmd.PersistentFlags().String("zsk-file", "", "optional zone signing key file (BIND .private format)")

	for _, name := range []string{"zone-file", "origin", "zsk-file"} {
		if err := viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			cobra.CheckErr(err)
		}
	}
}

// initConfig wires viper's layered configuration: explicit --config
// flag, then $HOME/.authzonectl.yaml, then AUTHZONECTL_* environment
// variables, mirroring johanix-tdns's tdns-cli/cmd/root.go.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".authzonectl")
	}

	viper.SetEnvPrefix("authzonectl")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
