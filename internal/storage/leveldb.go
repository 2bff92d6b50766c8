package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

const (
	TxPrefix      = "tx/"
	TxIndexPrefix = "txid/"
)

// LevelDBStorage keeps two key spaces:
// first one : tx/<signer>/<nonce> -> json encoded StoredTransaction
// second one: txid/<hash> -> key of the record in the first one
// Nonces are zero padded so that iterating a signer's prefix yields ascending nonces.
type LevelDBStorage struct {
	sync.Mutex
	db *leveldb.DB
}

func NewLevelDBStorage(path string) (*LevelDBStorage, error) {
	database, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}

	return &LevelDBStorage{db: database}, nil
}

// PutTx stores tx under its (signer, nonce) key. An existing record under the same key is
// overwritten only if updateExisting is set, otherwise relay.ErrDuplicateNonce is returned.
func (s *LevelDBStorage) PutTx(tx *relay.StoredTransaction, updateExisting bool) error {
	if err := validateTx(tx); err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()

	t, err := s.db.OpenTransaction()
	if err != nil {
		return fmt.Errorf("failed to open leveldb transaction: %w", err)
	}
	defer t.Discard()

	key := constructKey(tx.Signer, tx.Nonce)
	existing, found, err := getTx(t, key)
	if err != nil {
		return err
	}
	if found && !updateExisting {
		return fmt.Errorf("%w: signer=%s nonce=%d", relay.ErrDuplicateNonce, tx.Signer, tx.Nonce)
	}

	indexed, err := t.Get(constructIndexKey(tx.TxID), nil)
	switch {
	case err == nil && string(indexed) != string(key):
		return fmt.Errorf("transaction %s already stored under another nonce", tx.TxID)
	case err != nil && !errors.Is(err, leveldb.ErrNotFound):
		return fmt.Errorf("failed to read tx index: %w", err)
	}

	if found {
		if err := t.Delete(constructIndexKey(existing.TxID), nil); err != nil {
			return fmt.Errorf("failed to remove tx index for %s: %w", existing.TxID, err)
		}
	}

	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal StoredTransaction: %w", err)
	}
	if err := t.Put(key, data, nil); err != nil {
		return fmt.Errorf("failed to put tx: %w", err)
	}
	if err := t.Put(constructIndexKey(tx.TxID), key, nil); err != nil {
		return fmt.Errorf("failed to put tx index: %w", err)
	}

	return t.Commit()
}

func (s *LevelDBStorage) GetTxByNonce(signer common.Address, nonce uint64) (*relay.StoredTransaction, bool, error) {
	s.Lock()
	defer s.Unlock()

	return getTx(s.db, constructKey(signer, nonce))
}

func (s *LevelDBStorage) GetTxByID(txID common.Hash) (*relay.StoredTransaction, bool, error) {
	s.Lock()
	defer s.Unlock()

	key, err := s.db.Get(constructIndexKey(txID), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed getting data from db: %w", err)
	}

	return getTx(s.db, key)
}

func (s *LevelDBStorage) GetTxsUntilNonce(signer common.Address, nonce uint64) ([]*relay.StoredTransaction, error) {
	s.Lock()
	defer s.Unlock()

	txs, err := s.iterate(util.BytesPrefix(signerPrefix(signer)))
	if err != nil {
		return nil, err
	}

	until := txs[:0]
	for _, tx := range txs {
		if tx.Nonce <= nonce {
			until = append(until, tx)
		}
	}
	return until, nil
}

func (s *LevelDBStorage) GetAllBySigner(signer common.Address) ([]*relay.StoredTransaction, error) {
	s.Lock()
	defer s.Unlock()

	return s.iterate(util.BytesPrefix(signerPrefix(signer)))
}

func (s *LevelDBStorage) GetAll() ([]*relay.StoredTransaction, error) {
	s.Lock()
	defer s.Unlock()

	txs, err := s.iterate(util.BytesPrefix([]byte(TxPrefix)))
	if err != nil {
		return nil, err
	}
	// keys are ordered by signer first
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Nonce < txs[j].Nonce
	})
	return txs, nil
}

func (s *LevelDBStorage) RemoveTxsUntilNonce(signer common.Address, nonce uint64) error {
	s.Lock()
	defer s.Unlock()

	txs, err := s.iterate(util.BytesPrefix(signerPrefix(signer)))
	if err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	for _, tx := range txs {
		if tx.Nonce > nonce {
			break
		}
		batch.Delete(constructKey(tx.Signer, tx.Nonce))
		batch.Delete(constructIndexKey(tx.TxID))
	}
	if batch.Len() == 0 {
		return nil
	}

	if err := s.db.Write(batch, nil); err != nil {
		return fmt.Errorf("failed to remove txs of %s until nonce %d: %w", signer, nonce, err)
	}
	return nil
}

func (s *LevelDBStorage) IsActionPending(action relay.ServerAction, destination *common.Address) (bool, error) {
	s.Lock()
	defer s.Unlock()

	txs, err := s.iterate(util.BytesPrefix([]byte(TxPrefix)))
	if err != nil {
		return false, err
	}
	return anyPending(txs, action, destination), nil
}

func (s *LevelDBStorage) Clear() error {
	s.Lock()
	defer s.Unlock()

	batch := new(leveldb.Batch)
	for _, prefix := range []string{TxPrefix, TxIndexPrefix} {
		iterator := s.db.NewIterator(util.BytesPrefix([]byte(prefix)), nil)
		for iterator.Next() {
			batch.Delete(append([]byte(nil), iterator.Key()...))
		}
		iterator.Release()
		if err := iterator.Error(); err != nil {
			return fmt.Errorf("failed to iterate over %s: %w", prefix, err)
		}
	}

	return s.db.Write(batch, nil)
}

func (s *LevelDBStorage) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("failed to close db: %w", err)
	}
	return nil
}

func (s *LevelDBStorage) iterate(slice *util.Range) ([]*relay.StoredTransaction, error) {
	iterator := s.db.NewIterator(slice, nil)
	defer iterator.Release()

	var txs []*relay.StoredTransaction
	for iterator.Next() {
		var tx relay.StoredTransaction
		if err := json.Unmarshal(iterator.Value(), &tx); err != nil {
			return nil, fmt.Errorf("failed to unmarshal data into StoredTransaction: %w", err)
		}
		txs = append(txs, &tx)
	}
	if err := iterator.Error(); err != nil {
		return nil, fmt.Errorf("failed to iterate over stored txs: %w", err)
	}
	return txs, nil
}

type getter interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
}

func getTx(db getter, key []byte) (*relay.StoredTransaction, bool, error) {
	data, err := db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed getting data from db: %w", err)
	}

	var tx relay.StoredTransaction
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal data into StoredTransaction: %w", err)
	}
	return &tx, true, nil
}

func signerPrefix(signer common.Address) []byte {
	return []byte(TxPrefix + strings.ToLower(signer.Hex()) + "/")
}

func constructKey(signer common.Address, nonce uint64) []byte {
	return append(signerPrefix(signer), fmt.Sprintf("%020d", nonce)...)
}

func constructIndexKey(txID common.Hash) []byte {
	return []byte(TxIndexPrefix + strings.ToLower(txID.Hex()))
}
