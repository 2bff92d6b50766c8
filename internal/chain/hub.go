package chain

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

//go:embed relay_hub.abi.json
var relayHubABIJSON []byte

var stakeEventNames = []relay.HubEventName{relay.StakeAdded, relay.StakeUnlocked, relay.StakeWithdrawn}

// LogFilterer is the part of the chain client the hub reads logs with.
type LogFilterer interface {
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
}

type Backend interface {
	LogFilterer
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
}

type forwardRequest struct {
	RelayHub       common.Address
	From           common.Address
	To             common.Address
	TokenContract  common.Address
	Value          *big.Int
	Gas            *big.Int
	Nonce          *big.Int
	TokenAmount    *big.Int
	TokenGas       *big.Int
	ValidUntilTime *big.Int
	Data           []byte
}

type relayData struct {
	GasPrice      *big.Int
	FeesReceiver  common.Address
	CallForwarder common.Address
	CallVerifier  common.Address
}

type relayRequest struct {
	Request   forwardRequest
	RelayData relayData
}

type stakeInfo struct {
	Stake         *big.Int
	UnstakeDelay  *big.Int
	WithdrawBlock *big.Int
	Owner         common.Address
}

type relayManagerData struct {
	Manager         common.Address
	CurrentlyStaked bool
	Registered      bool
	Url             string
}

// Hub talks to a RelayHub contract on behalf of one relay manager.
type Hub struct {
	address common.Address
	manager common.Address
	backend Backend
	abi     abi.ABI
}

func NewHub(address, manager common.Address, backend Backend) (*Hub, error) {
	parsed, err := abi.JSON(bytes.NewReader(relayHubABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse relay hub abi: %w", err)
	}
	return &Hub{
		address: address,
		manager: manager,
		backend: backend,
		abi:     parsed,
	}, nil
}

func (h *Hub) Address() common.Address {
	return h.address
}

func (h *Hub) HubEvents(ctx context.Context, fromBlock, toBlock uint64) ([]relay.HubEvent, error) {
	return h.events(ctx, relay.ActiveEventNames, h.manager, fromBlock, new(big.Int).SetUint64(toBlock))
}

func (h *Hub) StakeEvents(ctx context.Context, manager common.Address, fromBlock, toBlock uint64) ([]relay.HubEvent, error) {
	return h.events(ctx, stakeEventNames, manager, fromBlock, new(big.Int).SetUint64(toBlock))
}

func (h *Hub) WorkerAddedEvents(ctx context.Context, manager common.Address, fromBlock uint64) ([]relay.HubEvent, error) {
	return h.events(ctx, []relay.HubEventName{relay.RelayWorkersAdded}, manager, fromBlock, nil)
}

func (h *Hub) LatestActiveEvent(ctx context.Context, manager common.Address, fromBlock uint64) (*relay.HubEvent, error) {
	events, err := h.events(ctx, relay.ActiveEventNames, manager, fromBlock, nil)
	if err != nil {
		return nil, err
	}
	return relay.LatestEvent(events), nil
}

func (h *Hub) StakeInfo(ctx context.Context, manager common.Address) (*relay.StakeInfo, error) {
	out, err := h.call(ctx, "getStakeInfo", manager)
	if err != nil {
		return nil, err
	}
	info := *abi.ConvertType(out[0], new(stakeInfo)).(*stakeInfo)
	return &relay.StakeInfo{
		Stake:         info.Stake,
		UnstakeDelay:  info.UnstakeDelay.Uint64(),
		WithdrawBlock: info.WithdrawBlock.Uint64(),
		Owner:         info.Owner,
	}, nil
}

// RelayInfo returns the registration record of manager, or none if the hub has never seen it.
func (h *Hub) RelayInfo(ctx context.Context, manager common.Address) ([]relay.RelayManagerData, error) {
	out, err := h.call(ctx, "getRelayInfo", manager)
	if err != nil {
		return nil, err
	}
	data := *abi.ConvertType(out[0], new(relayManagerData)).(*relayManagerData)
	if data.Manager == (common.Address{}) {
		return nil, nil
	}
	return []relay.RelayManagerData{{
		Manager:         data.Manager,
		CurrentlyStaked: data.CurrentlyStaked,
		Registered:      data.Registered,
		URL:             data.Url,
	}}, nil
}

func (h *Hub) AddRelayWorkersData(workers []common.Address) ([]byte, error) {
	return h.abi.Pack("addRelayWorkers", workers)
}

func (h *Hub) RegisterRelayServerData(url string) ([]byte, error) {
	return h.abi.Pack("registerRelayServer", url)
}

func (h *Hub) RelayCallData(req *relay.RelayRequest, signature []byte) ([]byte, error) {
	return h.abi.Pack("relayCall", toABIRequest(req), signature)
}

func (h *Hub) VerifyRelayedCallData(req *relay.RelayRequest, signature []byte) ([]byte, error) {
	return h.abi.Pack("verifyRelayedCall", toABIRequest(req), signature)
}

func (h *Hub) call(ctx context.Context, method string, args ...interface{}) ([]interface{}, error) {
	data, err := h.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}
	res, err := h.backend.CallContract(ctx, ethereum.CallMsg{To: &h.address, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", method, err)
	}
	out, err := h.abi.Unpack(method, res)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty result of %s", method)
	}
	return out, nil
}

func (h *Hub) events(
	ctx context.Context,
	names []relay.HubEventName,
	manager common.Address,
	fromBlock uint64,
	toBlock *big.Int,
) ([]relay.HubEvent, error) {
	ids := make([]common.Hash, 0, len(names))
	for _, name := range names {
		event, ok := h.abi.Events[string(name)]
		if !ok {
			return nil, fmt.Errorf("unknown hub event %s", name)
		}
		ids = append(ids, event.ID)
	}

	logs, err := h.backend.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   toBlock,
		Addresses: []common.Address{h.address},
		Topics:    [][]common.Hash{ids, {common.BytesToHash(manager.Bytes())}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to filter hub logs: %w", err)
	}

	events := make([]relay.HubEvent, 0, len(logs))
	for _, log := range logs {
		if log.Removed {
			continue
		}
		event, err := h.decodeLog(log)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	relay.SortEvents(events)
	return events, nil
}

func (h *Hub) decodeLog(log types.Log) (relay.HubEvent, error) {
	if len(log.Topics) == 0 {
		return relay.HubEvent{}, fmt.Errorf("anonymous log in tx %s", log.TxHash)
	}
	event, err := h.abi.EventByID(log.Topics[0])
	if err != nil {
		return relay.HubEvent{}, fmt.Errorf("unknown log in tx %s: %w", log.TxHash, err)
	}

	values := make(map[string]interface{})
	if err := event.Inputs.UnpackIntoMap(values, log.Data); err != nil {
		return relay.HubEvent{}, fmt.Errorf("failed to unpack %s: %w", event.Name, err)
	}
	var indexed abi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if err := abi.ParseTopicsIntoMap(values, indexed, log.Topics[1:]); err != nil {
		return relay.HubEvent{}, fmt.Errorf("failed to parse topics of %s: %w", event.Name, err)
	}

	decoded := relay.HubEvent{
		Name:        relay.HubEventName(event.Name),
		BlockNumber: log.BlockNumber,
		TxIndex:     log.TxIndex,
		LogIndex:    log.Index,
		TxHash:      log.TxHash,
	}
	if v, ok := values["relayManager"].(common.Address); ok {
		decoded.Manager = v
	}
	if v, ok := values["owner"].(common.Address); ok {
		decoded.Owner = v
	}
	if v, ok := values["relayWorker"].(common.Address); ok {
		decoded.Worker = v
	}
	if v, ok := values["newRelayWorkers"].([]common.Address); ok {
		decoded.Workers = v
	}
	if v, ok := values["stake"].(*big.Int); ok {
		decoded.Stake = v
	}
	if v, ok := values["amount"].(*big.Int); ok {
		decoded.Stake = v
	}
	if v, ok := values["withdrawBlock"].(*big.Int); ok {
		decoded.WithdrawBlock = v.Uint64()
	}
	if v, ok := values["relayUrl"].(string); ok {
		decoded.URL = v
	}
	return decoded, nil
}

func toABIRequest(req *relay.RelayRequest) relayRequest {
	return relayRequest{
		Request: forwardRequest{
			RelayHub:       req.Request.RelayHub,
			From:           req.Request.From,
			To:             req.Request.To,
			TokenContract:  req.Request.TokenContract,
			Value:          relay.BigOrZero(req.Request.Value),
			Gas:            relay.BigOrZero(req.Request.Gas),
			Nonce:          relay.BigOrZero(req.Request.Nonce),
			TokenAmount:    relay.BigOrZero(req.Request.TokenAmount),
			TokenGas:       relay.BigOrZero(req.Request.TokenGas),
			ValidUntilTime: relay.BigOrZero(req.Request.ValidUntilTime),
			Data:           req.Request.Data,
		},
		RelayData: relayData{
			GasPrice:      relay.BigOrZero(req.RelayData.GasPrice),
			FeesReceiver:  req.RelayData.FeesReceiver,
			CallForwarder: req.RelayData.CallForwarder,
			CallVerifier:  req.RelayData.CallVerifier,
		},
	}
}
