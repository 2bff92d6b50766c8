package relayer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

// Command is an operation the relayer exposes to its transports.
type Command int

const (
	CommandGetChainInfo Command = iota
	CommandCreateRelayTransaction
	CommandValidateMaxNonce
	CommandIsReady
	CommandGetMinGasPrice
	commandCount
)

var commandNames = [commandCount]string{
	CommandGetChainInfo:           "getChainInfo",
	CommandCreateRelayTransaction: "createRelayTransaction",
	CommandValidateMaxNonce:       "validateMaxNonce",
	CommandIsReady:                "isReady",
	CommandGetMinGasPrice:         "getMinGasPrice",
}

func (c Command) String() string {
	if c < 0 || c >= commandCount {
		return fmt.Sprintf("Command(%d)", int(c))
	}
	return commandNames[c]
}

type commandHandler func(ctx context.Context, params json.RawMessage) (interface{}, error)

type MaxNonceParams struct {
	RelayMaxNonce uint64 `json:"relayMaxNonce"`
}

type MaxNonceResult struct {
	Valid bool `json:"valid"`
}

// Dispatch runs cmd with its JSON encoded params.
func (r *Relayer) Dispatch(ctx context.Context, cmd Command, params json.RawMessage) (interface{}, error) {
	if cmd < 0 || cmd >= commandCount {
		return nil, fmt.Errorf("unknown command %d", int(cmd))
	}
	return r.commands[cmd](ctx, params)
}

func (r *Relayer) buildCommands() [commandCount]commandHandler {
	return [commandCount]commandHandler{
		CommandGetChainInfo: func(context.Context, json.RawMessage) (interface{}, error) {
			return r.GetChainInfo(), nil
		},
		CommandCreateRelayTransaction: func(ctx context.Context, params json.RawMessage) (interface{}, error) {
			var req relay.RelayTransactionRequest
			if err := decodeParams(params, &req); err != nil {
				return nil, err
			}
			return r.CreateRelayTransaction(ctx, &req)
		},
		CommandValidateMaxNonce: func(ctx context.Context, params json.RawMessage) (interface{}, error) {
			var p MaxNonceParams
			if err := decodeParams(params, &p); err != nil {
				return nil, err
			}
			if err := r.ValidateMaxNonce(ctx, p.RelayMaxNonce); err != nil {
				return nil, err
			}
			return MaxNonceResult{Valid: true}, nil
		},
		CommandIsReady: func(context.Context, json.RawMessage) (interface{}, error) {
			return r.IsReady(), nil
		},
		CommandGetMinGasPrice: func(context.Context, json.RawMessage) (interface{}, error) {
			return r.GetMinGasPrice().String(), nil
		},
	}
}

func decodeParams(params json.RawMessage, v interface{}) error {
	if len(params) == 0 {
		return newValidationError(StepShape, "missing request params")
	}
	if err := json.Unmarshal(params, v); err != nil {
		return newValidationError(StepShape, "invalid request params: %w", err)
	}
	return nil
}
