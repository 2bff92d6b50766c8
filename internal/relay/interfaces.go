package relay

//go:generate mockgen -source=$GOFILE -destination=../../testutil/mocks/relay/mocks.go -package=mock_relay

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Chain is the blockchain provider the server talks to.
type Chain interface {
	ChainID(ctx context.Context) (*big.Int, error)
	NetworkID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	BalanceAt(ctx context.Context, account common.Address) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	NonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address) ([]byte, error)
	// SendTransaction broadcasts a signed transaction and returns the hash reported by the node.
	SendTransaction(ctx context.Context, tx *types.Transaction) (common.Hash, error)
	// TransactionReceipt returns nil without an error when the receipt is not known yet.
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
}

// RelayHub reads RelayHub state and events and builds RelayHub call payloads.
type RelayHub interface {
	Address() common.Address
	// HubEvents returns the activity events of the configured manager in [fromBlock, toBlock].
	// Stake events are only served by StakeEvents.
	HubEvents(ctx context.Context, fromBlock, toBlock uint64) ([]HubEvent, error)
	StakeEvents(ctx context.Context, manager common.Address, fromBlock, toBlock uint64) ([]HubEvent, error)
	WorkerAddedEvents(ctx context.Context, manager common.Address, fromBlock uint64) ([]HubEvent, error)
	LatestActiveEvent(ctx context.Context, manager common.Address, fromBlock uint64) (*HubEvent, error)
	StakeInfo(ctx context.Context, manager common.Address) (*StakeInfo, error)
	RelayInfo(ctx context.Context, manager common.Address) ([]RelayManagerData, error)
	AddRelayWorkersData(workers []common.Address) ([]byte, error)
	RegisterRelayServerData(url string) ([]byte, error)
	RelayCallData(req *RelayRequest, signature []byte) ([]byte, error)
	VerifyRelayedCallData(req *RelayRequest, signature []byte) ([]byte, error)
}

// KeyManager owns a set of signing keys.
type KeyManager interface {
	Address(index int) common.Address
	IsSigner(address common.Address) bool
	SignTransaction(address common.Address, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// PricingOracle does the gas price and fee estimation math.
type PricingOracle interface {
	GasPrice(ctx context.Context) (*big.Int, error)
	MaxPossibleGas(ctx context.Context, req *RelayTransactionRequest, worker common.Address) (uint64, error)
	EstimateDestinationGas(ctx context.Context, req *RelayTransactionRequest) (uint64, error)
	RequiredFee(ctx context.Context, req *RelayTransactionRequest, maxPossibleGas uint64) (*big.Int, error)
}

// TxManager signs, persists, broadcasts and tracks the server's own transactions.
type TxManager interface {
	Init(ctx context.Context) error
	ManagerAddress() common.Address
	WorkerAddress() common.Address
	SendTransaction(ctx context.Context, details TxDetails) (*SentTransaction, error)
	PollNonce(ctx context.Context, signer common.Address) (uint64, error)
	PeekNonce(ctx context.Context, signer common.Address) (uint64, error)
	RemoveConfirmedTransactions(ctx context.Context, currentBlock uint64) error
	BoostUnderpricedPendingTransactionsForSigner(ctx context.Context, signer common.Address, currentBlock uint64) (map[common.Hash]*types.Transaction, error)
	EstimateGas(ctx context.Context, name string, msg ethereum.CallMsg) (uint64, error)
}

// RegistrationManager drives the manager's stake and registration on the hub.
type RegistrationManager interface {
	Init(ctx context.Context) error
	HandlePastEvents(ctx context.Context, hubEvents []HubEvent, lastScannedBlock, currentBlock uint64, forceRegistration bool) ([]common.Hash, error)
	RefreshBalance(ctx context.Context) error
	IsBalanceSatisfied() bool
	IsRegistered(ctx context.Context) (bool, error)
	PrintNotRegisteredMessage(ctx context.Context)
}

// Replenisher keeps the worker funded from the manager's balance.
type Replenisher interface {
	Replenish(ctx context.Context, currentBlock uint64) ([]common.Hash, error)
}
