package relay

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
)

// ServerAction tags why a transaction was sent by the server.
type ServerAction int

const (
	RegisterServer ServerAction = iota
	AddWorker
	RelayCall
	ValueTransfer
	DepositWithdrawal
	Penalization
)

var serverActionNames = [...]string{
	RegisterServer:    "REGISTER_SERVER",
	AddWorker:         "ADD_WORKER",
	RelayCall:         "RELAY_CALL",
	ValueTransfer:     "VALUE_TRANSFER",
	DepositWithdrawal: "DEPOSIT_WITHDRAWAL",
	Penalization:      "PENALIZATION",
}

func (a ServerAction) String() string {
	if a < 0 || int(a) >= len(serverActionNames) {
		return fmt.Sprintf("ServerAction(%d)", int(a))
	}
	return serverActionNames[a]
}

func (a ServerAction) MarshalText() ([]byte, error) {
	if a < 0 || int(a) >= len(serverActionNames) {
		return nil, fmt.Errorf("unknown server action %d", int(a))
	}
	return []byte(serverActionNames[a]), nil
}

func (a *ServerAction) UnmarshalText(text []byte) error {
	for i, name := range serverActionNames {
		if name == string(text) {
			*a = ServerAction(i)
			return nil
		}
	}
	return fmt.Errorf("unknown server action %q", string(text))
}

// StoredTransaction is a record of an outgoing transaction that is not yet confirmed.
// (Signer, Nonce) and TxID are both unique across the store.
type StoredTransaction struct {
	Signer        common.Address `json:"signer"`
	Nonce         uint64         `json:"nonce"`
	TxID          common.Hash    `json:"txId"`
	To            common.Address `json:"to"`
	Value         *big.Int       `json:"value"`
	GasLimit      uint64         `json:"gasLimit"`
	GasPrice      *big.Int       `json:"gasPrice"`
	Data          hexutil.Bytes  `json:"data"`
	ServerAction  ServerAction   `json:"serverAction"`
	Attempts      int            `json:"attempts"`
	CreationBlock uint64         `json:"creationBlock"`
	BoostBlock    *uint64        `json:"boostBlock,omitempty"`
	MinedBlock    *uint64        `json:"minedBlock,omitempty"`
}

// LastSentBlock is the block the transaction was last (re)broadcast at.
func (tx *StoredTransaction) LastSentBlock() uint64 {
	if tx.BoostBlock != nil {
		return *tx.BoostBlock
	}
	return tx.CreationBlock
}

// TxDetails describes a transaction the server wants to send.
// A nil GasPrice means the chain's current suggested price.
type TxDetails struct {
	Signer        common.Address
	To            common.Address
	Value         *big.Int
	Data          []byte
	GasLimit      uint64
	GasPrice      *big.Int
	ServerAction  ServerAction
	CreationBlock uint64
}

// SentTransaction is the result of a successful broadcast.
type SentTransaction struct {
	Hash     common.Hash
	SignedTx *types.Transaction
}

// ForwardRequest is the user-signed part of a relay request.
type ForwardRequest struct {
	RelayHub       common.Address        `json:"relayHub"`
	From           common.Address        `json:"from"`
	To             common.Address        `json:"to"`
	TokenContract  common.Address        `json:"tokenContract"`
	Value          *math.HexOrDecimal256 `json:"value"`
	Gas            *math.HexOrDecimal256 `json:"gas"`
	Nonce          *math.HexOrDecimal256 `json:"nonce"`
	TokenAmount    *math.HexOrDecimal256 `json:"tokenAmount"`
	TokenGas       *math.HexOrDecimal256 `json:"tokenGas"`
	ValidUntilTime *math.HexOrDecimal256 `json:"validUntilTime"`
	Data           hexutil.Bytes         `json:"data"`
}

// RelayData carries the relay-specific fields of a relay request.
type RelayData struct {
	GasPrice      *math.HexOrDecimal256 `json:"gasPrice"`
	FeesReceiver  common.Address        `json:"feesReceiver"`
	CallForwarder common.Address        `json:"callForwarder"`
	CallVerifier  common.Address        `json:"callVerifier"`
}

type RelayRequest struct {
	Request   ForwardRequest `json:"request"`
	RelayData RelayData      `json:"relayData"`
}

type RelayMetadata struct {
	RelayHubAddress common.Address `json:"relayHubAddress"`
	RelayMaxNonce   uint64         `json:"relayMaxNonce"`
	Signature       hexutil.Bytes  `json:"signature"`
}

// RelayTransactionRequest is a relay submission as received from a client.
type RelayTransactionRequest struct {
	RelayRequest RelayRequest  `json:"relayRequest"`
	Metadata     RelayMetadata `json:"metadata"`
}

// RelayTransactionResponse is returned once the relayed call has been broadcast.
type RelayTransactionResponse struct {
	SignedTx hexutil.Bytes `json:"signedTx"`
	TxHash   common.Hash   `json:"txHash"`
}

// ChainInfo describes this relay server to clients.
type ChainInfo struct {
	RelayWorkerAddress  common.Address `json:"relayWorkerAddress"`
	RelayManagerAddress common.Address `json:"relayManagerAddress"`
	RelayHubAddress     common.Address `json:"relayHubAddress"`
	FeesReceiver        common.Address `json:"feesReceiver"`
	MinGasPrice         string         `json:"minGasPrice"`
	ChainID             string         `json:"chainId"`
	NetworkID           string         `json:"networkId"`
	Ready               bool           `json:"ready"`
	Version             string         `json:"version"`
}

// BigOrZero returns the value of a request field, treating a missing one as zero.
func BigOrZero(v *math.HexOrDecimal256) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return (*big.Int)(v)
}
