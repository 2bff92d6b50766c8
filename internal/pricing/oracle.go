package pricing

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

// internalCallCorrection is the part of a call estimation that only an external transaction pays.
const internalCallCorrection = 20000

type Config struct {
	GasPriceFactor   decimal.Decimal
	MinGasPrice      *big.Int
	EstimationFactor decimal.Decimal
	FeePercentage    decimal.Decimal
}

// Oracle prices relayed calls from the node's gas price and gas estimations.
type Oracle struct {
	cfg   Config
	chain relay.Chain
	hub   relay.RelayHub
}

func NewOracle(cfg Config, chain relay.Chain, hub relay.RelayHub) *Oracle {
	return &Oracle{cfg: cfg, chain: chain, hub: hub}
}

// GasPrice is the node's gas price multiplied by the gas price factor, never below MinGasPrice.
func (o *Oracle) GasPrice(ctx context.Context) (*big.Int, error) {
	nodePrice, err := o.chain.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	price := decimal.NewFromBigInt(nodePrice, 0).Mul(o.cfg.GasPriceFactor).BigInt()
	if o.cfg.MinGasPrice != nil && price.Cmp(o.cfg.MinGasPrice) < 0 {
		return new(big.Int).Set(o.cfg.MinGasPrice), nil
	}
	return price, nil
}

// MaxPossibleGas estimates the whole relayCall transaction sent by worker.
func (o *Oracle) MaxPossibleGas(ctx context.Context, req *relay.RelayTransactionRequest, worker common.Address) (uint64, error) {
	data, err := o.hub.RelayCallData(&req.RelayRequest, req.Metadata.Signature)
	if err != nil {
		return 0, fmt.Errorf("failed to build relayCall: %w", err)
	}
	hub := o.hub.Address()
	gas, err := o.chain.EstimateGas(ctx, ethereum.CallMsg{
		From:     worker,
		To:       &hub,
		GasPrice: relay.BigOrZero(req.RelayRequest.RelayData.GasPrice),
		Data:     data,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to estimate relayCall: %w", err)
	}
	return o.applyFactor(gas), nil
}

// EstimateDestinationGas estimates the call the forwarder makes to the destination contract.
func (o *Oracle) EstimateDestinationGas(ctx context.Context, req *relay.RelayTransactionRequest) (uint64, error) {
	request := req.RelayRequest.Request
	gas, err := o.chain.EstimateGas(ctx, ethereum.CallMsg{
		From:     req.RelayRequest.RelayData.CallForwarder,
		To:       &request.To,
		GasPrice: relay.BigOrZero(req.RelayRequest.RelayData.GasPrice),
		Value:    relay.BigOrZero(request.Value),
		Data:     request.Data,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to estimate destination call: %w", err)
	}
	if gas > internalCallCorrection {
		gas -= internalCallCorrection
	}
	return o.applyFactor(gas), nil
}

// RequiredFee is gas price times maxPossibleGas plus the fee percentage, in wei.
func (o *Oracle) RequiredFee(_ context.Context, req *relay.RelayTransactionRequest, maxPossibleGas uint64) (*big.Int, error) {
	gasPrice := decimal.NewFromBigInt(relay.BigOrZero(req.RelayRequest.RelayData.GasPrice), 0)
	cost := gasPrice.Mul(decimal.NewFromInt(int64(maxPossibleGas)))
	return cost.Mul(decimal.NewFromInt(1).Add(o.cfg.FeePercentage)).BigInt(), nil
}

func (o *Oracle) applyFactor(gas uint64) uint64 {
	if o.cfg.EstimationFactor.IsZero() {
		return gas
	}
	return decimal.NewFromInt(int64(gas)).Mul(o.cfg.EstimationFactor).BigInt().Uint64()
}
