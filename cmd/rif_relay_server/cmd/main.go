package cmd

import (
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "rif_relay_server",
	Short: "Relay server submitting transactions on behalf of users through a RelayHub",
}
