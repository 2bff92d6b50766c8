package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

type nonceKey struct {
	signer common.Address
	nonce  uint64
}

// MemoryStorage is a non-durable Storage, used in dev mode and tests.
type MemoryStorage struct {
	sync.Mutex
	txs   map[nonceKey]relay.StoredTransaction
	index map[common.Hash]nonceKey
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		txs:   make(map[nonceKey]relay.StoredTransaction),
		index: make(map[common.Hash]nonceKey),
	}
}

func (s *MemoryStorage) PutTx(tx *relay.StoredTransaction, updateExisting bool) error {
	if err := validateTx(tx); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	key := nonceKey{signer: tx.Signer, nonce: tx.Nonce}
	existing, found := s.txs[key]
	if found && !updateExisting {
		return fmt.Errorf("%w: signer=%s nonce=%d", relay.ErrDuplicateNonce, tx.Signer, tx.Nonce)
	}
	if indexed, ok := s.index[tx.TxID]; ok && indexed != key {
		return fmt.Errorf("transaction %s already stored under another nonce", tx.TxID)
	}
	if found {
		delete(s.index, existing.TxID)
	}

	s.txs[key] = *tx
	s.index[tx.TxID] = key
	return nil
}

func (s *MemoryStorage) GetTxByNonce(signer common.Address, nonce uint64) (*relay.StoredTransaction, bool, error) {
	s.Lock()
	defer s.Unlock()

	tx, ok := s.txs[nonceKey{signer: signer, nonce: nonce}]
	if !ok {
		return nil, false, nil
	}
	return &tx, true, nil
}

func (s *MemoryStorage) GetTxByID(txID common.Hash) (*relay.StoredTransaction, bool, error) {
	s.Lock()
	defer s.Unlock()

	key, ok := s.index[txID]
	if !ok {
		return nil, false, nil
	}
	tx := s.txs[key]
	return &tx, true, nil
}

func (s *MemoryStorage) GetTxsUntilNonce(signer common.Address, nonce uint64) ([]*relay.StoredTransaction, error) {
	s.Lock()
	defer s.Unlock()

	return s.filter(func(tx *relay.StoredTransaction) bool {
		return tx.Signer == signer && tx.Nonce <= nonce
	}), nil
}

func (s *MemoryStorage) GetAllBySigner(signer common.Address) ([]*relay.StoredTransaction, error) {
	s.Lock()
	defer s.Unlock()

	return s.filter(func(tx *relay.StoredTransaction) bool {
		return tx.Signer == signer
	}), nil
}

func (s *MemoryStorage) GetAll() ([]*relay.StoredTransaction, error) {
	s.Lock()
	defer s.Unlock()

	return s.filter(func(*relay.StoredTransaction) bool { return true }), nil
}

func (s *MemoryStorage) RemoveTxsUntilNonce(signer common.Address, nonce uint64) error {
	s.Lock()
	defer s.Unlock()

	for key, tx := range s.txs {
		if key.signer == signer && key.nonce <= nonce {
			delete(s.index, tx.TxID)
			delete(s.txs, key)
		}
	}
	return nil
}

func (s *MemoryStorage) IsActionPending(action relay.ServerAction, destination *common.Address) (bool, error) {
	s.Lock()
	defer s.Unlock()

	return anyPending(s.filter(func(*relay.StoredTransaction) bool { return true }), action, destination), nil
}

func (s *MemoryStorage) Clear() error {
	s.Lock()
	defer s.Unlock()

	s.txs = make(map[nonceKey]relay.StoredTransaction)
	s.index = make(map[common.Hash]nonceKey)
	return nil
}

func (s *MemoryStorage) Close() error {
	return nil
}

// filter returns copies of the matching records ordered by nonce, then signer.
func (s *MemoryStorage) filter(match func(tx *relay.StoredTransaction) bool) []*relay.StoredTransaction {
	var txs []*relay.StoredTransaction
	for _, tx := range s.txs {
		tx := tx
		if match(&tx) {
			txs = append(txs, &tx)
		}
	}
	sort.Slice(txs, func(i, j int) bool {
		if txs[i].Nonce != txs[j].Nonce {
			return txs[i].Nonce < txs[j].Nonce
		}
		return txs[i].Signer.Cmp(txs[j].Signer) < 0
	})
	return txs
}

func validateTx(tx *relay.StoredTransaction) error {
	if tx == nil || tx.TxID == (common.Hash{}) || tx.Attempts < 1 {
		return fmt.Errorf("invalid tx: %+v", tx)
	}
	return nil
}

func anyPending(txs []*relay.StoredTransaction, action relay.ServerAction, destination *common.Address) bool {
	for _, tx := range txs {
		if tx.MinedBlock != nil || tx.ServerAction != action {
			continue
		}
		if destination != nil && tx.To != *destination {
			continue
		}
		return true
	}
	return false
}
