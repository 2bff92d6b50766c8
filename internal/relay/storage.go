package relay

import "github.com/ethereum/go-ethereum/common"

// Storage is the durable store of not yet confirmed outgoing transactions.
// All listing methods return records ordered by ascending nonce.
type Storage interface {
	PutTx(tx *StoredTransaction, updateExisting bool) error
	GetTxByNonce(signer common.Address, nonce uint64) (*StoredTransaction, bool, error)
	GetTxByID(txID common.Hash) (*StoredTransaction, bool, error)
	GetTxsUntilNonce(signer common.Address, nonce uint64) ([]*StoredTransaction, error)
	GetAllBySigner(signer common.Address) ([]*StoredTransaction, error)
	GetAll() ([]*StoredTransaction, error)
	RemoveTxsUntilNonce(signer common.Address, nonce uint64) error
	// IsActionPending reports whether an unmined transaction with the given action exists,
	// optionally restricted to a destination.
	IsActionPending(action ServerAction, destination *common.Address) (bool, error)
	Clear() error
	Close() error
}
