package submit

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BoostUnderpricedPendingTransactionsForSigner resends the pending transactions of signer at a
// higher gas price once its oldest pending transaction has been waiting for more than
// PendingTransactionTimeoutBlocks. Every transaction priced below the new price is resent, as the
// ones behind the oldest would stay stuck otherwise. Returns the new transactions by old tx id.
func (m *TxManager) BoostUnderpricedPendingTransactionsForSigner(
	ctx context.Context,
	signer common.Address,
	currentBlock uint64,
) (map[common.Hash]*types.Transaction, error) {
	boosted := make(map[common.Hash]*types.Transaction)

	txs, err := m.storage.GetAllBySigner(signer)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored txs of %s: %w", signer, err)
	}
	if len(txs) == 0 {
		return boosted, nil
	}

	nonce, err := m.chain.NonceAt(ctx, signer)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce of %s: %w", signer, err)
	}

	oldest := txs[0]
	if oldest.Nonce < nonce {
		m.logger.Debug("transaction is mined, awaiting confirmations",
			zap.Stringer("signer", signer),
			zap.Uint64("account_nonce", nonce),
			zap.Uint64("oldest_nonce", oldest.Nonce),
			zap.Stringer("oldest_tx_id", oldest.TxID))
		return boosted, nil
	}

	lastSent := oldest.LastSentBlock()
	if currentBlock < lastSent+m.cfg.PendingTransactionTimeoutBlocks {
		m.logger.Debug("awaiting transaction to be mined",
			zap.Stringer("signer", signer),
			zap.Stringer("tx_id", oldest.TxID),
			zap.Uint64("last_sent_block", lastSent),
			zap.Uint64("nonce", oldest.Nonce))
		return boosted, nil
	}

	newGasPrice, isMaxGasPriceReached := m.resolveNewGasPrice(oldest.GasPrice)
	for _, tx := range txs {
		if tx.GasPrice.Cmp(newGasPrice) >= 0 {
			continue
		}

		signedTx, err := m.ResendTransaction(ctx, tx, currentBlock, newGasPrice, isMaxGasPriceReached)
		if err != nil {
			return boosted, fmt.Errorf("failed to resend tx %s: %w", tx.TxID, err)
		}
		boosted[tx.TxID] = signedTx

		if tx.Attempts > 2 {
			m.logger.Debug("transaction resent several times already",
				zap.Stringer("signer", signer),
				zap.Uint64("nonce", tx.Nonce),
				zap.Int("attempts", tx.Attempts))
		}
	}

	return boosted, nil
}

// resolveNewGasPrice multiplies the price by the retry factor in decimal and truncates to wei,
// capping the result at MaxGasPrice.
func (m *TxManager) resolveNewGasPrice(oldGasPrice *big.Int) (*big.Int, bool) {
	newGasPrice := decimal.NewFromBigInt(oldGasPrice, 0).Mul(m.cfg.RetryGasPriceFactor).BigInt()
	if m.cfg.MaxGasPrice != nil && newGasPrice.Cmp(m.cfg.MaxGasPrice) > 0 {
		return new(big.Int).Set(m.cfg.MaxGasPrice), true
	}
	return newGasPrice, false
}
