package app

import (
	"context"
	"fmt"
	"math/big"
	"path/filepath"
	"time"

	"github.com/avast/retry-go/v4"
	nlogger "github.com/neutron-org/neutron-logger"
	"go.uber.org/zap"

	"github.com/rsksmart/rif-relay-server-sub000/internal/chain"
	"github.com/rsksmart/rif-relay-server-sub000/internal/config"
	"github.com/rsksmart/rif-relay-server-sub000/internal/keyring"
	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
	"github.com/rsksmart/rif-relay-server-sub000/internal/storage"
)

var (
	Version = ""
	Commit  = ""
)

const (
	AppContext          = "app"
	RelayerContext      = "relayer"
	TxManagerContext    = "tx_manager"
	RegistrationContext = "registration"
	ReplenishContext    = "replenish"
	ChainClientContext  = "chain_client"
	KeyringContext      = "keyring"
)

const (
	managerKeysDir = "manager"
	workerKeysDir  = "worker"
)

// retries configuration for waiting on the node at startup
var (
	rtyAtt = retry.Attempts(uint(5))
	rtyDel = retry.Delay(time.Second * 10)
	rtyErr = retry.LastErrorOnly(true)
)

func NewDefaultStorage(cfg config.RelayServerConfig, logger *zap.Logger) (relay.Storage, error) {
	if cfg.Storage.Path == "" {
		logger.Warn("storage path is not set, pending transactions will not survive a restart")
		return storage.NewMemoryStorage(), nil
	}

	st, err := storage.NewLevelDBStorage(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialize levelDB storage: %w", err)
	}
	return st, nil
}

// NewDefaultChainClient connects to the configured node and waits until it answers.
func NewDefaultChainClient(ctx context.Context, cfg config.RelayServerConfig, logRegistry *nlogger.Registry) (*chain.Client, error) {
	logger := logRegistry.Get(ChainClientContext)
	client, err := chain.NewClient(ctx, chain.ClientConfig{
		RPCURL:        cfg.Blockchain.RPCURL,
		Timeout:       cfg.Blockchain.RPCTimeout,
		RetryAttempts: cfg.Blockchain.RPCRetryAttempts,
		RetryDelay:    cfg.Blockchain.RPCRetryDelay,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("could not initialize chain client: %w", err)
	}

	var chainID *big.Int
	if err := retry.Do(func() error {
		var err error
		chainID, err = client.ChainID(ctx)
		return err
	}, retry.Context(ctx), rtyAtt, rtyDel, rtyErr, retry.OnRetry(func(n uint, err error) {
		logger.Warn("node is not reachable yet", zap.Uint("attempt", n), zap.Error(err))
	})); err != nil {
		client.Close()
		return nil, fmt.Errorf("node %s is not reachable: %w", cfg.Blockchain.RPCURL, err)
	}

	logger.Info("connected to node", zap.String("rpc_url", cfg.Blockchain.RPCURL), zap.Stringer("chain_id", chainID))
	return client, nil
}

// NewDefaultKeyManagers loads (or creates) the manager and worker keystores under the workdir.
func NewDefaultKeyManagers(cfg config.RelayServerConfig, logRegistry *nlogger.Registry) (manager, worker *keyring.KeyManager, err error) {
	logger := logRegistry.Get(KeyringContext)

	manager, err = keyring.NewKeyManager(1, filepath.Join(cfg.App.Workdir, managerKeysDir), cfg.App.ManagerMnemonic)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot initialize manager keyring: %w", err)
	}
	worker, err = keyring.NewKeyManager(1, filepath.Join(cfg.App.Workdir, workerKeysDir), cfg.App.WorkerMnemonic)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot initialize worker keyring: %w", err)
	}

	logger.Info("keyrings loaded",
		zap.Stringer("manager", manager.Address(0)),
		zap.Stringer("worker", worker.Address(0)))
	return manager, worker, nil
}
