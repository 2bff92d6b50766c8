package submit

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rsksmart/rif-relay-server-sub000/internal/metrics"
	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

// RemoveConfirmedTransactions removes from storage every transaction that has at least
// ConfirmationsNeeded confirmations, together with all earlier transactions of its signer.
// Mined but not yet confirmed transactions get their mined block recorded.
func (m *TxManager) RemoveConfirmedTransactions(ctx context.Context, currentBlock uint64) error {
	txs, err := m.storage.GetAll()
	if err != nil {
		return fmt.Errorf("failed to read stored txs: %w", err)
	}
	if len(txs) == 0 {
		return nil
	}
	m.logger.Debug("checking unconfirmed transactions", zap.Int("count", len(txs)))

	for _, tx := range txs {
		shouldRecheck := tx.MinedBlock == nil || currentBlock >= *tx.MinedBlock+m.cfg.ConfirmationsNeeded
		if !shouldRecheck {
			continue
		}

		receipt, err := m.chain.TransactionReceipt(ctx, tx.TxID)
		if err != nil {
			return fmt.Errorf("failed to get receipt of %s: %w", tx.TxID, err)
		}
		if receipt == nil {
			if tx.MinedBlock == nil {
				m.logger.Warn("failed to fetch receipt", zap.Stringer("tx_id", tx.TxID))
				continue
			}
			// the block it was mined in got reorged out, it is pending again
			m.logger.Warn("mined transaction has no receipt anymore",
				zap.Stringer("tx_id", tx.TxID),
				zap.Uint64("old_block", *tx.MinedBlock))
			if err := m.updateMinedBlock(tx, nil); err != nil {
				return err
			}
			continue
		}
		if receipt.BlockNumber == nil {
			m.logger.Warn("null block number in receipt", zap.Stringer("tx_id", tx.TxID))
			continue
		}

		minedBlock := receipt.BlockNumber.Uint64()
		var confirmations uint64
		if currentBlock > minedBlock {
			confirmations = currentBlock - minedBlock
		}

		if tx.MinedBlock == nil || *tx.MinedBlock != minedBlock {
			if tx.MinedBlock != nil {
				m.logger.Warn("transaction was moved between blocks",
					zap.Stringer("tx_id", tx.TxID),
					zap.Uint64("old_block", *tx.MinedBlock),
					zap.Uint64("new_block", minedBlock))
			}
			if confirmations < m.cfg.ConfirmationsNeeded {
				m.logger.Debug("transaction mined but not confirmed yet",
					zap.Stringer("tx_id", tx.TxID),
					zap.Uint64("confirmations", confirmations))
				if err := m.updateMinedBlock(tx, &minedBlock); err != nil {
					return err
				}
				continue
			}
		}

		m.logger.Debug("removing confirmed transactions",
			zap.Stringer("signer", tx.Signer),
			zap.Uint64("until_nonce", tx.Nonce),
			zap.Uint64("confirmations", confirmations))
		if err := m.storage.RemoveTxsUntilNonce(tx.Signer, tx.Nonce); err != nil {
			return fmt.Errorf("failed to remove confirmed txs of %s: %w", tx.Signer, err)
		}
		metrics.IncRemovedTxs()
	}

	return nil
}

func (m *TxManager) updateMinedBlock(tx *relay.StoredTransaction, minedBlock *uint64) error {
	updated := *tx
	updated.MinedBlock = minedBlock
	if err := m.storage.PutTx(&updated, true); err != nil {
		return fmt.Errorf("failed to update mined block of %s: %w", tx.TxID, err)
	}
	return nil
}
