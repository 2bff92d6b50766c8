package replenish

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/rsksmart/rif-relay-server-sub000/internal/metrics"
	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

const valueTransferGasLimit = 21000

// Policy decides whether the worker needs funds and sends them.
type Policy interface {
	Replenish(ctx context.Context, currentBlock uint64) ([]common.Hash, error)
}

// PolicyFunc lets a plain function act as a Policy.
type PolicyFunc func(ctx context.Context, currentBlock uint64) ([]common.Hash, error)

func (f PolicyFunc) Replenish(ctx context.Context, currentBlock uint64) ([]common.Hash, error) {
	return f(ctx, currentBlock)
}

// FundingListener is told when the manager can't fund the worker.
type FundingListener interface {
	FundingNeeded(message string)
}

type Config struct {
	ManagerMinBalance   *big.Int
	WorkerMinBalance    *big.Int
	WorkerTargetBalance *big.Int
}

// Default tops the worker up to its target balance from the manager, as long as the manager
// stays above its own minimum.
type Default struct {
	cfg       Config
	chain     relay.Chain
	txManager relay.TxManager
	storage   relay.Storage
	listener  FundingListener
	logger    *zap.Logger
}

func NewDefault(
	cfg Config,
	chain relay.Chain,
	txManager relay.TxManager,
	storage relay.Storage,
	listener FundingListener,
	logger *zap.Logger,
) *Default {
	return &Default{
		cfg:       cfg,
		chain:     chain,
		txManager: txManager,
		storage:   storage,
		listener:  listener,
		logger:    logger,
	}
}

func (d *Default) Replenish(ctx context.Context, currentBlock uint64) ([]common.Hash, error) {
	manager := d.txManager.ManagerAddress()
	worker := d.txManager.WorkerAddress()

	managerBalance, err := d.chain.BalanceAt(ctx, manager)
	if err != nil {
		return nil, fmt.Errorf("failed to get manager balance: %w", err)
	}
	workerBalance, err := d.chain.BalanceAt(ctx, worker)
	if err != nil {
		return nil, fmt.Errorf("failed to get worker balance: %w", err)
	}

	if workerBalance.Cmp(d.cfg.WorkerMinBalance) >= 0 {
		return nil, nil
	}

	pending, err := d.storage.IsActionPending(relay.ValueTransfer, &worker)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending value transfer: %w", err)
	}
	if pending {
		d.logger.Debug("worker refill already pending", zap.Stringer("worker", worker))
		return nil, nil
	}

	refill := new(big.Int).Sub(d.cfg.WorkerTargetBalance, workerBalance)
	available := new(big.Int).Sub(managerBalance, d.cfg.ManagerMinBalance)
	if refill.Cmp(available) >= 0 {
		message := fmt.Sprintf(
			"manager %s balance %s too low to refill worker %s with %s, keeping at least %s",
			manager, managerBalance, worker, refill, d.cfg.ManagerMinBalance)
		d.logger.Error("funding needed",
			zap.Stringer("manager", manager),
			zap.Stringer("manager_balance", managerBalance),
			zap.Stringer("worker", worker),
			zap.Stringer("worker_balance", workerBalance),
			zap.Stringer("refill", refill))
		metrics.IncFundingNeeded()
		d.listener.FundingNeeded(message)
		return nil, nil
	}

	d.logger.Info("replenishing worker balance",
		zap.Stringer("worker", worker),
		zap.Stringer("worker_balance", workerBalance),
		zap.Stringer("refill", refill))
	sent, err := d.txManager.SendTransaction(ctx, relay.TxDetails{
		Signer:        manager,
		To:            worker,
		Value:         refill,
		GasLimit:      valueTransferGasLimit,
		ServerAction:  relay.ValueTransfer,
		CreationBlock: currentBlock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to refill worker: %w", err)
	}
	return []common.Hash{sent.Hash}, nil
}
