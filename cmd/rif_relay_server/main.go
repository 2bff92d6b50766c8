package main

import (
	"os"

	"github.com/rsksmart/rif-relay-server-sub000/cmd/rif_relay_server/cmd"
)

func main() {
	if err := cmd.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
