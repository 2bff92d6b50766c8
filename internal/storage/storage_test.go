package storage_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
	"github.com/rsksmart/rif-relay-server-sub000/internal/storage"
)

var (
	manager = common.HexToAddress("0x1000000000000000000000000000000000000001")
	worker  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	owner   = common.HexToAddress("0x3000000000000000000000000000000000000003")
)

func storages(t *testing.T) map[string]relay.Storage {
	leveldbStorage, err := storage.NewLevelDBStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, leveldbStorage.Close())
	})

	return map[string]relay.Storage{
		"leveldb": leveldbStorage,
		"memory":  storage.NewMemoryStorage(),
	}
}

func newTx(signer common.Address, nonce uint64, action relay.ServerAction) *relay.StoredTransaction {
	return &relay.StoredTransaction{
		Signer:        signer,
		Nonce:         nonce,
		TxID:          common.BigToHash(new(big.Int).SetUint64(nonce*1000 + uint64(signer[0]))),
		To:            owner,
		Value:         big.NewInt(0),
		GasLimit:      21000,
		GasPrice:      big.NewInt(10),
		ServerAction:  action,
		Attempts:      1,
		CreationBlock: 100,
	}
}

func TestPutTx(t *testing.T) {
	for name, s := range storages(t) {
		t.Run(name, func(t *testing.T) {
			tx := newTx(worker, 5, relay.RelayCall)
			require.NoError(t, s.PutTx(tx, false))

			err := s.PutTx(newTx(worker, 5, relay.RelayCall), false)
			require.ErrorIs(t, err, relay.ErrDuplicateNonce)

			boostBlock := uint64(131)
			boosted := *tx
			boosted.TxID = common.HexToHash("0xb00")
			boosted.GasPrice = big.NewInt(15)
			boosted.Attempts = 2
			boosted.BoostBlock = &boostBlock
			require.NoError(t, s.PutTx(&boosted, true))

			stored, found, err := s.GetTxByNonce(worker, 5)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, boosted.TxID, stored.TxID)
			assert.Equal(t, 2, stored.Attempts)
			assert.Equal(t, uint64(131), stored.LastSentBlock())
			assert.Equal(t, int64(15), stored.GasPrice.Int64())

			_, found, err = s.GetTxByID(tx.TxID)
			require.NoError(t, err)
			assert.False(t, found, "old tx id must not resolve after an in-place update")

			byID, found, err := s.GetTxByID(boosted.TxID)
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, uint64(5), byID.Nonce)

			all, err := s.GetAll()
			require.NoError(t, err)
			assert.Len(t, all, 1)
		})
	}
}

func TestPutTxInvalid(t *testing.T) {
	for name, s := range storages(t) {
		t.Run(name, func(t *testing.T) {
			tx := newTx(worker, 1, relay.RelayCall)
			tx.Attempts = 0
			require.Error(t, s.PutTx(tx, false))

			tx = newTx(worker, 1, relay.RelayCall)
			tx.TxID = common.Hash{}
			require.Error(t, s.PutTx(tx, false))

			require.NoError(t, s.PutTx(newTx(worker, 1, relay.RelayCall), false))
			reused := newTx(worker, 2, relay.RelayCall)
			reused.TxID = newTx(worker, 1, relay.RelayCall).TxID
			require.Error(t, s.PutTx(reused, false), "tx id must be unique")
		})
	}
}

func TestOrderingAndRemoval(t *testing.T) {
	for name, s := range storages(t) {
		t.Run(name, func(t *testing.T) {
			// nonces above 9 check that keys sort numerically
			for _, nonce := range []uint64{12, 3, 10, 4} {
				require.NoError(t, s.PutTx(newTx(worker, nonce, relay.RelayCall), false))
			}
			require.NoError(t, s.PutTx(newTx(manager, 7, relay.RegisterServer), false))

			bySigner, err := s.GetAllBySigner(worker)
			require.NoError(t, err)
			assert.Equal(t, []uint64{3, 4, 10, 12}, nonces(bySigner))

			all, err := s.GetAll()
			require.NoError(t, err)
			assert.Equal(t, []uint64{3, 4, 7, 10, 12}, nonces(all))

			until, err := s.GetTxsUntilNonce(worker, 10)
			require.NoError(t, err)
			assert.Equal(t, []uint64{3, 4, 10}, nonces(until))

			require.NoError(t, s.RemoveTxsUntilNonce(worker, 10))
			bySigner, err = s.GetAllBySigner(worker)
			require.NoError(t, err)
			assert.Equal(t, []uint64{12}, nonces(bySigner))

			removed := newTx(worker, 3, relay.RelayCall)
			_, found, err := s.GetTxByID(removed.TxID)
			require.NoError(t, err)
			assert.False(t, found)

			managerTxs, err := s.GetAllBySigner(manager)
			require.NoError(t, err)
			assert.Len(t, managerTxs, 1, "other signers are not touched")

			require.NoError(t, s.Clear())
			all, err = s.GetAll()
			require.NoError(t, err)
			assert.Empty(t, all)
		})
	}
}

func TestIsActionPending(t *testing.T) {
	for name, s := range storages(t) {
		t.Run(name, func(t *testing.T) {
			pending, err := s.IsActionPending(relay.RegisterServer, nil)
			require.NoError(t, err)
			assert.False(t, pending)

			transfer := newTx(manager, 1, relay.ValueTransfer)
			transfer.To = worker
			require.NoError(t, s.PutTx(transfer, false))
			require.NoError(t, s.PutTx(newTx(manager, 2, relay.RegisterServer), false))

			tests := []struct {
				name        string
				action      relay.ServerAction
				destination *common.Address
				expected    bool
			}{
				{name: "action only", action: relay.ValueTransfer, expected: true},
				{name: "matching destination", action: relay.ValueTransfer, destination: &worker, expected: true},
				{name: "other destination", action: relay.ValueTransfer, destination: &owner, expected: false},
				{name: "register", action: relay.RegisterServer, expected: true},
				{name: "not sent", action: relay.AddWorker, expected: false},
			}
			for _, tt := range tests {
				pending, err := s.IsActionPending(tt.action, tt.destination)
				require.NoError(t, err, tt.name)
				assert.Equal(t, tt.expected, pending, tt.name)
			}

			mined := uint64(150)
			transfer.MinedBlock = &mined
			require.NoError(t, s.PutTx(transfer, true))
			pending, err = s.IsActionPending(relay.ValueTransfer, &worker)
			require.NoError(t, err)
			assert.False(t, pending, "mined transactions are not pending")
		})
	}
}

func TestLevelDBStorageSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := storage.NewLevelDBStorage(dir)
	require.NoError(t, err)
	require.NoError(t, s.PutTx(newTx(worker, 1, relay.RelayCall), false))
	require.NoError(t, s.Close())

	s, err = storage.NewLevelDBStorage(dir)
	require.NoError(t, err)
	defer s.Close()

	txs, err := s.GetAllBySigner(worker)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, relay.RelayCall, txs[0].ServerAction)
	assert.Equal(t, int64(10), txs[0].GasPrice.Int64())
}

func nonces(txs []*relay.StoredTransaction) []uint64 {
	res := make([]uint64, 0, len(txs))
	for _, tx := range txs {
		res = append(res, tx.Nonce)
	}
	return res
}
