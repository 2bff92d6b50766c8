package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	relayhttp "github.com/rsksmart/rif-relay-server-sub000/internal/http"
)

const UrlFlagName = "url"

var urlRelay string

// QueryCmd represents the query command
var QueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query a running relay server",
}

// PendingTxs represents the pending-txs command
var PendingTxs = &cobra.Command{
	Use:   "pending-txs",
	Short: "Query the not yet confirmed transactions of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newRelayClient(cmd)
		if err != nil {
			return err
		}

		txs, err := client.GetPendingTxs()
		if err != nil {
			return fmt.Errorf("failed to get pending txs: %w", err)
		}
		return printJSON("Pending txs", txs)
	},
}

// ChainInfo represents the chain-info command
var ChainInfo = &cobra.Command{
	Use:   "chain-info",
	Short: "Query the addresses and readiness of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newRelayClient(cmd)
		if err != nil {
			return err
		}

		info, err := client.GetChainInfo()
		if err != nil {
			return fmt.Errorf("failed to get chain info: %w", err)
		}
		return printJSON("Chain info", info)
	},
}

func init() {
	QueryCmd.PersistentFlags().StringVarP(&urlRelay, UrlFlagName, "u", "http://localhost:8090", "server url")
	QueryCmd.AddCommand(PendingTxs, ChainInfo)
	RootCmd.AddCommand(QueryCmd)
}

func newRelayClient(cmd *cobra.Command) (*relayhttp.RelayClient, error) {
	url, err := cmd.Flags().GetString(UrlFlagName)
	if err != nil {
		return nil, err
	}

	client, err := relayhttp.NewRelayClient(url)
	if err != nil {
		return nil, fmt.Errorf("failed to get new relay client: %w", err)
	}
	return client, nil
}

func printJSON(title string, v interface{}) error {
	var response bytes.Buffer
	encoder := json.NewEncoder(&response)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}

	fmt.Printf("%s:\n%s\n", title, response.String())
	return nil
}
