package submit

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rsksmart/rif-relay-server-sub000/internal/metrics"
	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

type Config struct {
	// PendingTransactionTimeoutBlocks is how long a transaction may stay pending before it is boosted.
	PendingTransactionTimeoutBlocks uint64
	ConfirmationsNeeded             uint64
	RetryGasPriceFactor             decimal.Decimal
	MaxGasPrice                     *big.Int
}

// TxManager serializes nonce allocation, signing and persistence for every managed signer
// behind a single lock. Broadcasting happens outside of it.
type TxManager struct {
	lock        sync.Mutex
	nonces      map[common.Address]uint64
	chainID     *big.Int
	cfg         Config
	chain       relay.Chain
	managerKeys relay.KeyManager
	workerKeys  relay.KeyManager
	storage     relay.Storage
	logger      *zap.Logger
}

func NewTxManager(
	cfg Config,
	chain relay.Chain,
	managerKeys relay.KeyManager,
	workerKeys relay.KeyManager,
	storage relay.Storage,
	logger *zap.Logger,
) *TxManager {
	return &TxManager{
		nonces: map[common.Address]uint64{
			managerKeys.Address(0): 0,
			workerKeys.Address(0):  0,
		},
		cfg:         cfg,
		chain:       chain,
		managerKeys: managerKeys,
		workerKeys:  workerKeys,
		storage:     storage,
		logger:      logger,
	}
}

// Init caches the chain id used for replay protected signing.
func (m *TxManager) Init(ctx context.Context) error {
	chainID, err := m.chain.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain id: %w", err)
	}

	m.lock.Lock()
	m.chainID = chainID
	m.lock.Unlock()
	return nil
}

func (m *TxManager) ManagerAddress() common.Address {
	return m.managerKeys.Address(0)
}

func (m *TxManager) WorkerAddress() common.Address {
	return m.workerKeys.Address(0)
}

// PollNonce adopts the chain's pending nonce for signer if it is ahead of the local one and
// returns the next nonce to use.
func (m *TxManager) PollNonce(ctx context.Context, signer common.Address) (uint64, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	return m.pollNonce(ctx, signer)
}

// PeekNonce returns the nonce the next transaction of signer would get, without adopting it.
func (m *TxManager) PeekNonce(ctx context.Context, signer common.Address) (uint64, error) {
	pending, err := m.chain.PendingNonceAt(ctx, signer)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending nonce of %s: %w", signer, err)
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	if local := m.nonces[signer]; local > pending {
		return local, nil
	}
	return pending, nil
}

// pollNonce must be called with the lock held.
func (m *TxManager) pollNonce(ctx context.Context, signer common.Address) (uint64, error) {
	pending, err := m.chain.PendingNonceAt(ctx, signer)
	if err != nil {
		return 0, fmt.Errorf("failed to get pending nonce of %s: %w", signer, err)
	}

	if local := m.nonces[signer]; pending > local {
		m.logger.Warn("nonce fix",
			zap.Stringer("signer", signer),
			zap.Uint64("chain_nonce", pending),
			zap.Uint64("local_nonce", local))
		m.nonces[signer] = pending
	}
	return m.nonces[signer], nil
}

// SendTransaction signs and stores a new transaction with the next nonce of its signer and
// broadcasts it. A broadcast hash differing from the stored one is fatal.
func (m *TxManager) SendTransaction(ctx context.Context, details relay.TxDetails) (*relay.SentTransaction, error) {
	gasPrice := details.GasPrice
	if gasPrice == nil {
		var err error
		gasPrice, err = m.chain.SuggestGasPrice(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get gas price: %w", err)
		}
	}

	value := details.Value
	if value == nil {
		value = new(big.Int)
	}

	signedTx, stored, err := m.signAndStore(ctx, details, value, gasPrice)
	if err != nil {
		metrics.IncFailedTxSend(details.ServerAction.String())
		return nil, err
	}

	hash, err := m.broadcast(ctx, signedTx, stored)
	if err != nil {
		metrics.IncFailedTxSend(details.ServerAction.String())
		return nil, err
	}

	metrics.IncSuccessTxSend(details.ServerAction.String())
	return &relay.SentTransaction{Hash: hash, SignedTx: signedTx}, nil
}

func (m *TxManager) signAndStore(
	ctx context.Context,
	details relay.TxDetails,
	value, gasPrice *big.Int,
) (*types.Transaction, *relay.StoredTransaction, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	nonce, err := m.pollNonce(ctx, details.Signer)
	if err != nil {
		return nil, nil, err
	}

	signedTx, err := m.sign(details.Signer, &types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      details.GasLimit,
		To:       &details.To,
		Value:    value,
		Data:     details.Data,
	})
	if err != nil {
		return nil, nil, err
	}

	stored := storedFromSigned(details.Signer, signedTx, details.ServerAction, 1, details.CreationBlock)
	if err := m.storage.PutTx(stored, false); err != nil {
		return nil, nil, fmt.Errorf("failed to store tx: %w", err)
	}
	m.nonces[details.Signer] = nonce + 1

	m.logger.Info("sending transaction",
		zap.Stringer("signer", details.Signer),
		zap.Stringer("action", details.ServerAction),
		zap.Uint64("nonce", nonce),
		zap.Stringer("tx_id", stored.TxID),
		zap.Stringer("gas_price", gasPrice),
		zap.Uint64("creation_block", details.CreationBlock))
	return signedTx, stored, nil
}

// ResendTransaction re-signs tx at the same nonce with newGasPrice and updates its record in place.
func (m *TxManager) ResendTransaction(
	ctx context.Context,
	tx *relay.StoredTransaction,
	currentBlock uint64,
	newGasPrice *big.Int,
	isMaxGasPriceReached bool,
) (*types.Transaction, error) {
	signedTx, stored, err := m.resignAndUpdate(tx, currentBlock, newGasPrice)
	if err != nil {
		return nil, err
	}

	m.logger.Info("boosting transaction",
		zap.Stringer("signer", tx.Signer),
		zap.Uint64("nonce", tx.Nonce),
		zap.Stringer("old_tx_id", tx.TxID),
		zap.Stringer("new_tx_id", stored.TxID),
		zap.Stringer("gas_price", newGasPrice),
		zap.Int("attempts", stored.Attempts),
		zap.Uint64("creation_block", tx.CreationBlock),
		zap.Bool("max_gas_price_reached", isMaxGasPriceReached))

	if _, err := m.broadcast(ctx, signedTx, stored); err != nil {
		return nil, err
	}

	metrics.IncBoostedTxs()
	return signedTx, nil
}

func (m *TxManager) resignAndUpdate(
	tx *relay.StoredTransaction,
	currentBlock uint64,
	newGasPrice *big.Int,
) (*types.Transaction, *relay.StoredTransaction, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	to := tx.To
	signedTx, err := m.sign(tx.Signer, &types.LegacyTx{
		Nonce:    tx.Nonce,
		GasPrice: newGasPrice,
		Gas:      tx.GasLimit,
		To:       &to,
		Value:    tx.Value,
		Data:     tx.Data,
	})
	if err != nil {
		return nil, nil, err
	}

	stored := storedFromSigned(tx.Signer, signedTx, tx.ServerAction, tx.Attempts+1, tx.CreationBlock)
	boostBlock := currentBlock
	stored.BoostBlock = &boostBlock
	stored.MinedBlock = tx.MinedBlock
	if err := m.storage.PutTx(stored, true); err != nil {
		return nil, nil, fmt.Errorf("failed to update boosted tx: %w", err)
	}
	return signedTx, stored, nil
}

func (m *TxManager) sign(signer common.Address, legacy *types.LegacyTx) (*types.Transaction, error) {
	if m.chainID == nil {
		return nil, fmt.Errorf("tx manager is not initialized")
	}

	keys := m.workerKeys
	if m.managerKeys.IsSigner(signer) {
		keys = m.managerKeys
	} else if !m.workerKeys.IsSigner(signer) {
		return nil, fmt.Errorf("no key for signer %s", signer)
	}

	signedTx, err := keys.SignTransaction(signer, types.NewTx(legacy), m.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign tx of %s: %w", signer, err)
	}
	return signedTx, nil
}

func (m *TxManager) broadcast(ctx context.Context, signedTx *types.Transaction, stored *relay.StoredTransaction) (common.Hash, error) {
	hash, err := m.chain.SendTransaction(ctx, signedTx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to broadcast tx %s: %w", stored.TxID, err)
	}
	if hash != stored.TxID {
		return common.Hash{}, relay.NewFatalErrorf("tx hash mismatch: from node: %s, from store: %s", hash, stored.TxID)
	}
	return hash, nil
}

// EstimateGas estimates a call of the named method.
func (m *TxManager) EstimateGas(ctx context.Context, name string, msg ethereum.CallMsg) (uint64, error) {
	gas, err := m.chain.EstimateGas(ctx, msg)
	if err != nil {
		return 0, fmt.Errorf("failed to estimate gas for %s: %w", name, err)
	}
	return gas, nil
}

func storedFromSigned(
	signer common.Address,
	tx *types.Transaction,
	action relay.ServerAction,
	attempts int,
	creationBlock uint64,
) *relay.StoredTransaction {
	return &relay.StoredTransaction{
		Signer:        signer,
		Nonce:         tx.Nonce(),
		TxID:          tx.Hash(),
		To:            *tx.To(),
		Value:         tx.Value(),
		GasLimit:      tx.Gas(),
		GasPrice:      tx.GasPrice(),
		Data:          tx.Data(),
		ServerAction:  action,
		Attempts:      attempts,
		CreationBlock: creationBlock,
	}
}
