package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

const getTimeout = time.Second * 5

// RelayClient reads the state of a running relay server over its http api
type RelayClient struct {
	host   *url.URL
	client http.Client
}

// NewRelayClient takes a host of format <scheme>://<host>[:<port>], e.g. http://relay.host:8090
func NewRelayClient(host string) (*RelayClient, error) {
	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("host parsing error: %w", err)
	}

	u.Path = ""
	u.RawQuery = ""
	return &RelayClient{
		host: u,
		client: http.Client{
			Timeout: getTimeout,
		},
	}, nil
}

func (c RelayClient) GetPendingTxs() ([]relay.StoredTransaction, error) {
	txs := make([]relay.StoredTransaction, 0)
	if err := c.get(PendingTxsResource, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (c RelayClient) GetChainInfo() (*relay.ChainInfo, error) {
	var info relay.ChainInfo
	if err := c.get(ChainInfoResource, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c RelayClient) get(resource string, v interface{}) error {
	u := *c.host
	u.Path = resource

	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to build http request: %w", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make http request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("got unexpected http response status code: %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}
