package relayer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rsksmart/rif-relay-server-sub000/internal/metrics"
	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

const signatureLength = 65

// Steps of the relay request pipeline, used to label failures.
const (
	StepReady        = "ready"
	StepShape        = "shape"
	StepAlert        = "alert"
	StepFields       = "fields"
	StepMaxNonce     = "maxNonce"
	StepVerifier     = "verifier"
	StepGasDeviation = "gasDeviation"
	StepFee          = "fee"
	StepRelayCall    = "relayCall"
	StepSend         = "send"
)

// ValidationError is a relay request rejected because of its content or the relayer state.
type ValidationError struct {
	Step string
	Err  error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(step string, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Step: step, Err: fmt.Errorf(format, args...)}
}

func IsValidationError(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// CreateRelayTransaction validates req and relays it through the worker.
// Nothing is sent unless every validation step passes.
func (r *Relayer) CreateRelayTransaction(ctx context.Context, req *relay.RelayTransactionRequest) (*relay.RelayTransactionResponse, error) {
	start := time.Now()
	resp, step, err := r.createRelayTransaction(ctx, req)
	if err != nil {
		metrics.AddFailedRequest(step, time.Since(start).Seconds())
		r.logger.Info("relay request rejected", zap.String("step", step), zap.Error(err))
		return nil, err
	}
	metrics.AddSuccessRequest(time.Since(start).Seconds())

	r.logger.Info("relayed transaction sent",
		zap.Stringer("tx_hash", resp.TxHash),
		zap.Stringer("from", req.RelayRequest.Request.From),
		zap.Stringer("to", req.RelayRequest.Request.To))
	return resp, nil
}

func (r *Relayer) createRelayTransaction(
	ctx context.Context,
	req *relay.RelayTransactionRequest,
) (*relay.RelayTransactionResponse, string, error) {
	if !r.IsReady() {
		return nil, StepReady, &ValidationError{Step: StepReady, Err: relay.ErrNotReady}
	}
	if err := validateInputTypes(req); err != nil {
		return nil, StepShape, err
	}

	if r.IsAlerted() {
		delay := alertedDelay(r.cfg.MinAlertedDelay, r.cfg.MaxAlertedDelay)
		r.logger.Warn("alerted state: slowing down traffic", zap.Duration("delay", delay))
		if err := r.sleep(ctx, delay); err != nil {
			return nil, StepAlert, err
		}
	}

	if err := r.validateInput(req); err != nil {
		return nil, StepFields, err
	}
	if err := r.ValidateMaxNonce(ctx, req.Metadata.RelayMaxNonce); err != nil {
		return nil, StepMaxNonce, err
	}
	if err := r.validateVerifier(ctx, req); err != nil {
		return nil, StepVerifier, err
	}
	if err := r.validateGasDeviation(ctx, req); err != nil {
		return nil, StepGasDeviation, err
	}
	maxPossibleGas, err := r.validateFees(ctx, req)
	if err != nil {
		return nil, StepFee, err
	}
	data, err := r.simulateRelayCall(ctx, req, maxPossibleGas)
	if err != nil {
		return nil, StepRelayCall, err
	}

	block, err := r.chain.BlockNumber(ctx)
	if err != nil {
		return nil, StepSend, fmt.Errorf("failed to get block number: %w", err)
	}
	sent, err := r.txManager.SendTransaction(ctx, relay.TxDetails{
		Signer:        r.workerAddress,
		To:            r.hub.Address(),
		Data:          data,
		GasLimit:      maxPossibleGas,
		GasPrice:      relay.BigOrZero(req.RelayRequest.RelayData.GasPrice),
		ServerAction:  relay.RelayCall,
		CreationBlock: block,
	})
	if err != nil {
		return nil, StepSend, fmt.Errorf("failed to send relayed transaction: %w", err)
	}

	if _, err := r.replenisher.Replenish(ctx, block); err != nil {
		r.logger.Error("failed to replenish worker after relaying", zap.Error(err))
	}

	raw, err := sent.SignedTx.MarshalBinary()
	if err != nil {
		return nil, StepSend, fmt.Errorf("failed to encode signed transaction: %w", err)
	}
	return &relay.RelayTransactionResponse{SignedTx: raw, TxHash: sent.Hash}, "", nil
}

func validateInputTypes(req *relay.RelayTransactionRequest) error {
	request, data := req.RelayRequest.Request, req.RelayRequest.RelayData
	addresses := []struct {
		name  string
		value common.Address
	}{
		{"metadata.relayHubAddress", req.Metadata.RelayHubAddress},
		{"relayRequest.request.from", request.From},
		{"relayRequest.request.to", request.To},
		{"relayRequest.relayData.callForwarder", data.CallForwarder},
		{"relayRequest.relayData.callVerifier", data.CallVerifier},
		{"relayRequest.relayData.feesReceiver", data.FeesReceiver},
	}
	for _, address := range addresses {
		if address.value == (common.Address{}) {
			return newValidationError(StepShape, "%s is required", address.name)
		}
	}

	if data.GasPrice == nil {
		return newValidationError(StepShape, "relayRequest.relayData.gasPrice is required")
	}
	if request.Gas == nil {
		return newValidationError(StepShape, "relayRequest.request.gas is required")
	}
	if request.Nonce == nil {
		return newValidationError(StepShape, "relayRequest.request.nonce is required")
	}
	if len(req.Metadata.Signature) != signatureLength {
		return newValidationError(StepShape, "signature must be %d bytes, got %d", signatureLength, len(req.Metadata.Signature))
	}
	return nil
}

func (r *Relayer) validateInput(req *relay.RelayTransactionRequest) error {
	if hub := r.hub.Address(); req.Metadata.RelayHubAddress != hub {
		return newValidationError(StepFields, "wrong hub address: relay server's hub %s, request's hub %s",
			hub, req.Metadata.RelayHubAddress)
	}

	feesReceiver := req.RelayRequest.RelayData.FeesReceiver
	if feesReceiver != r.workerAddress && feesReceiver != r.cfg.FeesReceiver {
		return newValidationError(StepFields, "wrong fees receiver address: %s", feesReceiver)
	}

	minGasPrice := r.GetMinGasPrice()
	requestGasPrice := relay.BigOrZero(req.RelayRequest.RelayData.GasPrice)
	if requestGasPrice.Cmp(minGasPrice) < 0 {
		return newValidationError(StepFields, "unacceptable gas price: relay server's gas price %s, request's gas price %s",
			minGasPrice, requestGasPrice)
	}

	// zero means no expiration
	validUntil := relay.BigOrZero(req.RelayRequest.Request.ValidUntilTime)
	if validUntil.Sign() != 0 {
		now := r.now().Unix()
		remaining := new(big.Int).Sub(validUntil, big.NewInt(now))
		if remaining.Cmp(big.NewInt(r.cfg.RequestMinValidSeconds)) < 0 {
			return newValidationError(StepFields, "request expired (or too close): expires at %s, it must be valid until at least %s",
				time.Unix(validUntil.Int64(), 0).UTC().Format(time.RFC1123),
				time.Unix(now+r.cfg.RequestMinValidSeconds, 0).UTC().Format(time.RFC1123))
		}
	}
	return nil
}

// ValidateMaxNonce fails when the worker's next nonce is already above relayMaxNonce.
func (r *Relayer) ValidateMaxNonce(ctx context.Context, relayMaxNonce uint64) error {
	nonce, err := r.txManager.PeekNonce(ctx, r.workerAddress)
	if err != nil {
		return fmt.Errorf("failed to get worker nonce: %w", err)
	}
	if nonce > relayMaxNonce {
		return newValidationError(StepMaxNonce, "unacceptable relayMaxNonce %d, current nonce %d", relayMaxNonce, nonce)
	}
	return nil
}

func (r *Relayer) validateVerifier(ctx context.Context, req *relay.RelayTransactionRequest) error {
	verifier := req.RelayRequest.RelayData.CallVerifier
	if _, ok := r.trustedVerifiers[verifier]; !ok {
		return newValidationError(StepVerifier, "invalid verifier: %s", verifier)
	}

	data, err := r.hub.VerifyRelayedCallData(&req.RelayRequest, req.Metadata.Signature)
	if err != nil {
		return fmt.Errorf("failed to build verifyRelayedCall: %w", err)
	}
	if _, err := r.chain.CallContract(ctx, ethereum.CallMsg{
		From: r.hub.Address(),
		To:   &verifier,
		Data: data,
	}); err != nil {
		return newValidationError(StepVerifier, "verification by verifier failed: %w", err)
	}
	return nil
}

func (r *Relayer) validateGasDeviation(ctx context.Context, req *relay.RelayTransactionRequest) error {
	estimated, err := r.oracle.EstimateDestinationGas(ctx, req)
	if err != nil {
		return newValidationError(StepGasDeviation, "failed to estimate destination gas: %w", err)
	}

	requested := decimal.NewFromBigInt(relay.BigOrZero(req.RelayRequest.Request.Gas), 0)
	floor := decimal.NewFromBigInt(new(big.Int).SetUint64(estimated), 0).
		Mul(decimal.NewFromInt(1).Sub(r.cfg.MaxGasDeviation))
	if requested.LessThan(floor) {
		return newValidationError(StepGasDeviation, "request gas %s deviates too much from the estimated gas %d",
			requested, estimated)
	}
	return nil
}

func (r *Relayer) validateFees(ctx context.Context, req *relay.RelayTransactionRequest) (uint64, error) {
	maxPossibleGas, err := r.oracle.MaxPossibleGas(ctx, req, r.workerAddress)
	if err != nil {
		return 0, newValidationError(StepFee, "failed to estimate relayCall gas: %w", err)
	}
	fee, err := r.oracle.RequiredFee(ctx, req, maxPossibleGas)
	if err != nil {
		return 0, fmt.Errorf("failed to calculate fee: %w", err)
	}

	tokenAmount := relay.BigOrZero(req.RelayRequest.Request.TokenAmount)
	r.logger.Debug("relay request fee",
		zap.Uint64("max_possible_gas", maxPossibleGas),
		zap.Stringer("required_fee", fee),
		zap.Stringer("token_amount", tokenAmount))
	if r.cfg.DisableSponsoredTx && tokenAmount.Cmp(fee) < 0 {
		return 0, newValidationError(StepFee, "token amount %s is lower than the required fee %s", tokenAmount, fee)
	}
	return maxPossibleGas, nil
}

func (r *Relayer) simulateRelayCall(ctx context.Context, req *relay.RelayTransactionRequest, gas uint64) ([]byte, error) {
	data, err := r.hub.RelayCallData(&req.RelayRequest, req.Metadata.Signature)
	if err != nil {
		return nil, fmt.Errorf("failed to build relayCall: %w", err)
	}
	hub := r.hub.Address()
	if _, err := r.chain.CallContract(ctx, ethereum.CallMsg{
		From:     r.workerAddress,
		To:       &hub,
		Gas:      gas,
		GasPrice: relay.BigOrZero(req.RelayRequest.RelayData.GasPrice),
		Data:     data,
	}); err != nil {
		return nil, newValidationError(StepRelayCall, "relayCall reverted in server: %w", err)
	}
	return data, nil
}
