package relay

import (
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
)

type HubEventName string

const (
	StakeAdded                               HubEventName = "StakeAdded"
	StakeUnlocked                            HubEventName = "StakeUnlocked"
	StakeWithdrawn                           HubEventName = "StakeWithdrawn"
	RelayServerRegistered                    HubEventName = "RelayServerRegistered"
	RelayWorkersAdded                        HubEventName = "RelayWorkersAdded"
	TransactionRelayed                       HubEventName = "TransactionRelayed"
	TransactionRelayedButRevertedByRecipient HubEventName = "TransactionRelayedButRevertedByRecipient"
)

// ActiveEventNames are the hub events that count as activity of a relay manager.
var ActiveEventNames = []HubEventName{
	RelayServerRegistered,
	RelayWorkersAdded,
	TransactionRelayed,
	TransactionRelayedButRevertedByRecipient,
}

// HubEvent is a decoded RelayHub log. Fields not carried by the event are left zero.
type HubEvent struct {
	Name          HubEventName     `json:"name"`
	BlockNumber   uint64           `json:"blockNumber"`
	TxIndex       uint             `json:"txIndex"`
	LogIndex      uint             `json:"logIndex"`
	TxHash        common.Hash      `json:"txHash"`
	Manager       common.Address   `json:"manager"`
	Owner         common.Address   `json:"owner,omitempty"`
	Worker        common.Address   `json:"worker,omitempty"`
	Workers       []common.Address `json:"workers,omitempty"`
	Stake         *big.Int         `json:"stake,omitempty"`
	WithdrawBlock uint64           `json:"withdrawBlock,omitempty"`
	URL           string           `json:"url,omitempty"`
}

// IsLaterThan reports whether e happened after other on chain.
func (e *HubEvent) IsLaterThan(other *HubEvent) bool {
	if e.BlockNumber != other.BlockNumber {
		return e.BlockNumber > other.BlockNumber
	}
	if e.TxIndex != other.TxIndex {
		return e.TxIndex > other.TxIndex
	}
	return e.LogIndex > other.LogIndex
}

// SortEvents orders events chronologically.
func SortEvents(events []HubEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[j].IsLaterThan(&events[i])
	})
}

// LatestEvent returns the chronologically last event, or nil for an empty slice.
func LatestEvent(events []HubEvent) *HubEvent {
	var latest *HubEvent
	for i := range events {
		if latest == nil || events[i].IsLaterThan(latest) {
			latest = &events[i]
		}
	}
	return latest
}

// StakeInfo is the hub's view of a manager's stake. A zero WithdrawBlock means the stake is locked.
type StakeInfo struct {
	Stake         *big.Int
	UnstakeDelay  uint64
	WithdrawBlock uint64
	Owner         common.Address
}

// RelayManagerData is the hub's registration record for a manager.
type RelayManagerData struct {
	Manager         common.Address
	CurrentlyStaked bool
	Registered      bool
	URL             string
}

type EventKind int

const (
	EventRemoved EventKind = iota
	EventUnstaked
	EventError
	EventFundingNeeded
)

func (k EventKind) String() string {
	switch k {
	case EventRemoved:
		return "removed"
	case EventUnstaked:
		return "unstaked"
	case EventError:
		return "error"
	case EventFundingNeeded:
		return "fundingNeeded"
	default:
		return "unknown"
	}
}

// Event is a notification the relay server publishes to external listeners.
type Event struct {
	Kind    EventKind
	Message string
	Err     error
}
