package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

type ClientConfig struct {
	RPCURL        string
	Timeout       time.Duration
	RetryAttempts uint
	RetryDelay    time.Duration
}

// Client is the blockchain provider backed by a JSON-RPC node. Read-only calls are retried,
// calls with side effects or deterministic failures are not.
type Client struct {
	rpc       *rpc.Client
	eth       *ethclient.Client
	retryOpts []retry.Option
	logger    *zap.Logger
}

func NewClient(ctx context.Context, cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	rpcClient, err := rpc.DialOptions(ctx, cfg.RPCURL, rpc.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.RPCURL, err)
	}
	return newClient(rpcClient, cfg, logger), nil
}

func newClient(rpcClient *rpc.Client, cfg ClientConfig, logger *zap.Logger) *Client {
	attempts := cfg.RetryAttempts
	if attempts == 0 {
		attempts = 1
	}
	c := &Client{
		rpc:    rpcClient,
		eth:    ethclient.NewClient(rpcClient),
		logger: logger,
	}
	c.retryOpts = []retry.Option{
		retry.Attempts(attempts),
		retry.Delay(cfg.RetryDelay),
		retry.LastErrorOnly(true),
	}
	return c
}

func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	return read(ctx, c, "eth_chainId", c.eth.ChainID)
}

func (c *Client) NetworkID(ctx context.Context) (*big.Int, error) {
	return read(ctx, c, "net_version", c.eth.NetworkID)
}

func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	return read(ctx, c, "eth_blockNumber", c.eth.BlockNumber)
}

func (c *Client) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	return read(ctx, c, "eth_getBalance", func(ctx context.Context) (*big.Int, error) {
		return c.eth.BalanceAt(ctx, account, nil)
	})
}

func (c *Client) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return read(ctx, c, "eth_getTransactionCount", func(ctx context.Context) (uint64, error) {
		return c.eth.PendingNonceAt(ctx, account)
	})
}

func (c *Client) NonceAt(ctx context.Context, account common.Address) (uint64, error) {
	return read(ctx, c, "eth_getTransactionCount", func(ctx context.Context) (uint64, error) {
		return c.eth.NonceAt(ctx, account, nil)
	})
}

func (c *Client) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return read(ctx, c, "eth_gasPrice", c.eth.SuggestGasPrice)
}

func (c *Client) CodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	return read(ctx, c, "eth_getCode", func(ctx context.Context) ([]byte, error) {
		return c.eth.CodeAt(ctx, account, nil)
	})
}

// SendTransaction broadcasts tx with eth_sendRawTransaction and returns the hash the node
// computed for it.
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) (common.Hash, error) {
	raw, err := tx.MarshalBinary()
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to encode tx: %w", err)
	}

	var hash common.Hash
	if err := c.rpc.CallContext(ctx, &hash, "eth_sendRawTransaction", hexutil.Encode(raw)); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return read(ctx, c, "eth_getTransactionReceipt", func(ctx context.Context) (*types.Receipt, error) {
		receipt, err := c.eth.TransactionReceipt(ctx, txHash)
		if errors.Is(err, ethereum.NotFound) {
			return nil, nil
		}
		return receipt, err
	})
}

func (c *Client) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return c.eth.EstimateGas(ctx, msg)
}

func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return c.eth.CallContract(ctx, msg, nil)
}

func (c *Client) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	return read(ctx, c, "eth_getLogs", func(ctx context.Context) ([]types.Log, error) {
		return c.eth.FilterLogs(ctx, query)
	})
}

func read[T any](ctx context.Context, c *Client, method string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := retry.Do(func() error {
		var err error
		result, err = fn(ctx)
		return err
	}, append(c.retryOpts, retry.Context(ctx), retry.OnRetry(func(n uint, err error) {
		c.logger.Debug("rpc call failed, retrying",
			zap.String("method", method),
			zap.Uint("attempt", n),
			zap.Error(err))
	}))...)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("failed to call %s: %w", method, err)
	}
	return result, nil
}
