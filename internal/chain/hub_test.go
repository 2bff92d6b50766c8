package chain

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

var (
	testHub     = common.HexToAddress("0x5000000000000000000000000000000000000005")
	testManager = common.HexToAddress("0x1000000000000000000000000000000000000001")
	testWorker  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	testOwner   = common.HexToAddress("0x4000000000000000000000000000000000000004")
)

type fakeBackend struct {
	logs    []types.Log
	query   ethereum.FilterQuery
	results map[string][]byte
}

func (b *fakeBackend) FilterLogs(_ context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	b.query = query
	return b.logs, nil
}

func (b *fakeBackend) CallContract(_ context.Context, msg ethereum.CallMsg) ([]byte, error) {
	return b.results[string(msg.Data[:4])], nil
}

func addressTopic(a common.Address) common.Hash {
	return common.BytesToHash(a.Bytes())
}

func makeLog(t *testing.T, h *Hub, name string, block uint64, txIndex, logIndex uint, topics []common.Hash, args ...interface{}) types.Log {
	event := h.abi.Events[name]
	data, err := event.Inputs.NonIndexed().Pack(args...)
	require.NoError(t, err)
	return types.Log{
		Address:     testHub,
		Topics:      append([]common.Hash{event.ID}, topics...),
		Data:        data,
		BlockNumber: block,
		TxIndex:     txIndex,
		Index:       logIndex,
	}
}

func TestHubEventsDecodesAndSorts(t *testing.T) {
	backend := &fakeBackend{}
	h, err := NewHub(testHub, testManager, backend)
	require.NoError(t, err)

	backend.logs = []types.Log{
		makeLog(t, h, "RelayWorkersAdded", 10, 1, 0,
			[]common.Hash{addressTopic(testManager)}, []common.Address{testWorker}, big.NewInt(1)),
		makeLog(t, h, "RelayServerRegistered", 10, 1, 1,
			[]common.Hash{addressTopic(testManager)}, "https://relay.example.org"),
		makeLog(t, h, "TransactionRelayedButRevertedByRecipient", 11, 0, 0,
			[]common.Hash{addressTopic(testManager), addressTopic(testWorker)}, [32]byte{1}, []byte("reverted")),
	}

	events, err := h.HubEvents(context.Background(), 5, 20)
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, relay.RelayWorkersAdded, events[0].Name)
	assert.Equal(t, []common.Address{testWorker}, events[0].Workers)
	assert.Equal(t, testManager, events[0].Manager)

	assert.Equal(t, relay.RelayServerRegistered, events[1].Name)
	assert.Equal(t, "https://relay.example.org", events[1].URL)

	assert.Equal(t, relay.TransactionRelayedButRevertedByRecipient, events[2].Name)
	assert.Equal(t, testWorker, events[2].Worker)

	assert.Equal(t, uint64(5), backend.query.FromBlock.Uint64())
	assert.Equal(t, uint64(20), backend.query.ToBlock.Uint64())
	assert.Equal(t, []common.Hash{addressTopic(testManager)}, backend.query.Topics[1])
	assert.Len(t, backend.query.Topics[0], len(relay.ActiveEventNames))
	for _, name := range stakeEventNames {
		assert.NotContains(t, backend.query.Topics[0], h.abi.Events[string(name)].ID)
	}
}

func TestStakeEvents(t *testing.T) {
	backend := &fakeBackend{}
	h, err := NewHub(testHub, testManager, backend)
	require.NoError(t, err)

	backend.logs = []types.Log{
		makeLog(t, h, "StakeUnlocked", 12, 0, 1,
			[]common.Hash{addressTopic(testManager), addressTopic(testOwner)}, big.NewInt(200)),
	}

	events, err := h.StakeEvents(context.Background(), testManager, 5, 20)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, relay.StakeUnlocked, events[0].Name)
	assert.Equal(t, testOwner, events[0].Owner)
	assert.Equal(t, uint64(200), events[0].WithdrawBlock)

	assert.Equal(t, uint64(20), backend.query.ToBlock.Uint64())
	require.Len(t, backend.query.Topics[0], len(stakeEventNames))
	for _, name := range stakeEventNames {
		assert.Contains(t, backend.query.Topics[0], h.abi.Events[string(name)].ID)
	}
}

func TestLatestActiveEvent(t *testing.T) {
	backend := &fakeBackend{}
	h, err := NewHub(testHub, testManager, backend)
	require.NoError(t, err)

	backend.logs = []types.Log{
		makeLog(t, h, "RelayServerRegistered", 30, 2, 0, []common.Hash{addressTopic(testManager)}, "a"),
		makeLog(t, h, "RelayServerRegistered", 30, 3, 0, []common.Hash{addressTopic(testManager)}, "b"),
		makeLog(t, h, "RelayServerRegistered", 29, 9, 9, []common.Hash{addressTopic(testManager)}, "c"),
	}

	latest, err := h.LatestActiveEvent(context.Background(), testManager, 1)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "b", latest.URL)
	assert.Nil(t, backend.query.ToBlock)

	backend.logs = nil
	latest, err = h.LatestActiveEvent(context.Background(), testManager, 1)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestStakeAndRelayInfo(t *testing.T) {
	backend := &fakeBackend{results: map[string][]byte{}}
	h, err := NewHub(testHub, testManager, backend)
	require.NoError(t, err)

	stakeOut, err := h.abi.Methods["getStakeInfo"].Outputs.Pack(stakeInfo{
		Stake:         big.NewInt(1000),
		UnstakeDelay:  big.NewInt(50),
		WithdrawBlock: big.NewInt(0),
		Owner:         testOwner,
	})
	require.NoError(t, err)
	backend.results[string(h.abi.Methods["getStakeInfo"].ID)] = stakeOut

	info, err := h.StakeInfo(context.Background(), testManager)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), info.Stake.Int64())
	assert.Equal(t, uint64(50), info.UnstakeDelay)
	assert.Equal(t, uint64(0), info.WithdrawBlock)
	assert.Equal(t, testOwner, info.Owner)

	relayOut, err := h.abi.Methods["getRelayInfo"].Outputs.Pack(relayManagerData{
		Manager:         testManager,
		CurrentlyStaked: true,
		Registered:      true,
		Url:             "https://relay.example.org",
	})
	require.NoError(t, err)
	backend.results[string(h.abi.Methods["getRelayInfo"].ID)] = relayOut

	records, err := h.RelayInfo(context.Background(), testManager)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].Registered)
	assert.Equal(t, "https://relay.example.org", records[0].URL)

	emptyOut, err := h.abi.Methods["getRelayInfo"].Outputs.Pack(relayManagerData{})
	require.NoError(t, err)
	backend.results[string(h.abi.Methods["getRelayInfo"].ID)] = emptyOut

	records, err = h.RelayInfo(context.Background(), testManager)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRelayCallData(t *testing.T) {
	h, err := NewHub(testHub, testManager, &fakeBackend{})
	require.NoError(t, err)

	req := &relay.RelayRequest{
		Request: relay.ForwardRequest{
			RelayHub: testHub,
			From:     testOwner,
			To:       testWorker,
			Gas:      (*math.HexOrDecimal256)(big.NewInt(50000)),
			Nonce:    (*math.HexOrDecimal256)(big.NewInt(3)),
			Data:     []byte{0xde, 0xad},
		},
		RelayData: relay.RelayData{
			GasPrice:     (*math.HexOrDecimal256)(big.NewInt(60)),
			FeesReceiver: testWorker,
		},
	}
	signature := make([]byte, 65)

	data, err := h.RelayCallData(req, signature)
	require.NoError(t, err)

	method := h.abi.Methods["relayCall"]
	assert.Equal(t, method.ID, data[:4])

	args, err := method.Inputs.Unpack(data[4:])
	require.NoError(t, err)
	decoded := *abi.ConvertType(args[0], new(relayRequest)).(*relayRequest)
	assert.Equal(t, testOwner, decoded.Request.From)
	assert.Equal(t, int64(50000), decoded.Request.Gas.Int64())
	assert.Equal(t, int64(0), decoded.Request.Value.Int64())
	assert.Equal(t, []byte{0xde, 0xad}, decoded.Request.Data)
	assert.Equal(t, int64(60), decoded.RelayData.GasPrice.Int64())
	assert.Equal(t, signature, args[1])

	verify, err := h.VerifyRelayedCallData(req, signature)
	require.NoError(t, err)
	assert.Equal(t, h.abi.Methods["verifyRelayedCall"].ID, verify[:4])
}

func TestRegistrationPayloads(t *testing.T) {
	h, err := NewHub(testHub, testManager, &fakeBackend{})
	require.NoError(t, err)

	data, err := h.RegisterRelayServerData("https://relay.example.org")
	require.NoError(t, err)
	args, err := h.abi.Methods["registerRelayServer"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	assert.Equal(t, "https://relay.example.org", args[0])

	data, err = h.AddRelayWorkersData([]common.Address{testWorker})
	require.NoError(t, err)
	args, err = h.abi.Methods["addRelayWorkers"].Inputs.Unpack(data[4:])
	require.NoError(t, err)
	assert.Equal(t, []common.Address{testWorker}, args[0])
}
