package relayer

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"slices"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

var testNow = time.Unix(1_700_000_000, 0)

func hexBig(v int64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(big.NewInt(v))
}

func validRequest() *relay.RelayTransactionRequest {
	return &relay.RelayTransactionRequest{
		RelayRequest: relay.RelayRequest{
			Request: relay.ForwardRequest{
				RelayHub: hubAddress,
				From:     userAddress,
				To:       targetAddress,
				Value:    hexBig(0),
				Gas:      hexBig(50000),
				Nonce:    hexBig(1),
				Data:     []byte{0x01},
			},
			RelayData: relay.RelayData{
				GasPrice:      hexBig(100),
				FeesReceiver:  workerAddress,
				CallForwarder: forwarderAddress,
				CallVerifier:  verifierAddress,
			},
		},
		Metadata: relay.RelayMetadata{
			RelayHubAddress: hubAddress,
			RelayMaxNonce:   10,
			Signature:       make([]byte, 65),
		},
	}
}

func newReadyFixture(t *testing.T, cfg Config, opts ...Option) *fixture {
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	f := newFixture(t, cfg, opts...)
	f.relayer.initialized = true
	f.relayer.ready = true
	f.relayer.successfulRounds = cfg.SuccessfulRoundsForReady
	f.relayer.gasPrice = big.NewInt(60)
	return f
}

func callTo(address common.Address) gomock.Matcher {
	return gomock.Cond(func(x any) bool {
		msg, ok := x.(ethereum.CallMsg)
		return ok && msg.To != nil && *msg.To == address
	})
}

var pipelineSteps = []string{StepMaxNonce, StepVerifier, StepGasDeviation, StepFee, StepRelayCall}

// expectPassing sets up every collaborator call of the steps before step to succeed.
// An empty step lets the whole pipeline pass.
func (f *fixture) expectPassing(step string) {
	if step != "" && !slices.Contains(pipelineSteps, step) {
		return
	}
	for _, s := range pipelineSteps {
		if s == step {
			return
		}
		switch s {
		case StepMaxNonce:
			f.txm.EXPECT().PeekNonce(gomock.Any(), workerAddress).Return(uint64(5), nil)
		case StepVerifier:
			f.hub.EXPECT().VerifyRelayedCallData(gomock.Any(), gomock.Any()).Return([]byte{0xbb}, nil)
			f.chain.EXPECT().CallContract(gomock.Any(), callTo(verifierAddress)).Return(nil, nil)
		case StepGasDeviation:
			f.oracle.EXPECT().EstimateDestinationGas(gomock.Any(), gomock.Any()).Return(uint64(50000), nil)
		case StepFee:
			f.oracle.EXPECT().MaxPossibleGas(gomock.Any(), gomock.Any(), workerAddress).Return(uint64(150000), nil)
			f.oracle.EXPECT().RequiredFee(gomock.Any(), gomock.Any(), uint64(150000)).Return(big.NewInt(1000), nil)
		case StepRelayCall:
			f.hub.EXPECT().RelayCallData(gomock.Any(), gomock.Any()).Return([]byte{0xaa}, nil)
			f.chain.EXPECT().CallContract(gomock.Any(), callTo(hubAddress)).Return([]byte{0x01}, nil)
		}
	}
}

func (f *fixture) expectSend(block uint64) *types.Transaction {
	signed := types.NewTx(&types.LegacyTx{Nonce: 5, GasPrice: big.NewInt(100), Gas: 150000, To: &hubAddress})
	f.chain.EXPECT().BlockNumber(gomock.Any()).Return(block, nil)
	f.txm.EXPECT().SendTransaction(gomock.Any(), relay.TxDetails{
		Signer:        workerAddress,
		To:            hubAddress,
		Data:          []byte{0xaa},
		GasLimit:      150000,
		GasPrice:      big.NewInt(100),
		ServerAction:  relay.RelayCall,
		CreationBlock: block,
	}).Return(&relay.SentTransaction{Hash: signed.Hash(), SignedTx: signed}, nil)
	f.repl.EXPECT().Replenish(gomock.Any(), block).Return(nil, nil)
	return signed
}

func TestCreateRelayTransaction(t *testing.T) {
	f := newReadyFixture(t, testConfig())
	f.expectPassing("")
	signed := f.expectSend(77)

	resp, err := f.relayer.CreateRelayTransaction(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, signed.Hash(), resp.TxHash)

	raw, err := signed.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, raw, []byte(resp.SignedTx))
}

func TestCreateRelayTransactionReplenishErrorIsIgnored(t *testing.T) {
	f := newReadyFixture(t, testConfig())
	f.expectPassing("")
	signed := types.NewTx(&types.LegacyTx{Nonce: 5, GasPrice: big.NewInt(100), Gas: 150000, To: &hubAddress})
	f.chain.EXPECT().BlockNumber(gomock.Any()).Return(uint64(77), nil)
	f.txm.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).
		Return(&relay.SentTransaction{Hash: signed.Hash(), SignedTx: signed}, nil)
	f.repl.EXPECT().Replenish(gomock.Any(), uint64(77)).Return(nil, errors.New("manager is broke"))

	resp, err := f.relayer.CreateRelayTransaction(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, signed.Hash(), resp.TxHash)
}

func TestCreateRelayTransactionRejections(t *testing.T) {
	tests := []struct {
		name     string
		step     string
		config   func(cfg *Config)
		modify   func(req *relay.RelayTransactionRequest)
		failStep func(f *fixture)
		contains string
	}{
		{
			name:     "missing sender",
			step:     StepShape,
			modify:   func(req *relay.RelayTransactionRequest) { req.RelayRequest.Request.From = common.Address{} },
			contains: "relayRequest.request.from is required",
		},
		{
			name:     "missing gas price",
			step:     StepShape,
			modify:   func(req *relay.RelayTransactionRequest) { req.RelayRequest.RelayData.GasPrice = nil },
			contains: "gasPrice is required",
		},
		{
			name:     "short signature",
			step:     StepShape,
			modify:   func(req *relay.RelayTransactionRequest) { req.Metadata.Signature = make([]byte, 64) },
			contains: "signature must be 65 bytes",
		},
		{
			name:     "wrong hub",
			step:     StepFields,
			modify:   func(req *relay.RelayTransactionRequest) { req.Metadata.RelayHubAddress = targetAddress },
			contains: "wrong hub address",
		},
		{
			name:     "wrong fees receiver",
			step:     StepFields,
			modify:   func(req *relay.RelayTransactionRequest) { req.RelayRequest.RelayData.FeesReceiver = userAddress },
			contains: "wrong fees receiver",
		},
		{
			name:     "gas price below minimum",
			step:     StepFields,
			modify:   func(req *relay.RelayTransactionRequest) { req.RelayRequest.RelayData.GasPrice = hexBig(59) },
			contains: "unacceptable gas price",
		},
		{
			name: "expiring too soon",
			step: StepFields,
			modify: func(req *relay.RelayTransactionRequest) {
				req.RelayRequest.Request.ValidUntilTime = hexBig(testNow.Unix() + 59)
			},
			contains: "request expired",
		},
		{
			name:     "nonce above max",
			step:     StepMaxNonce,
			modify:   func(req *relay.RelayTransactionRequest) { req.Metadata.RelayMaxNonce = 4 },
			failStep: func(f *fixture) { f.txm.EXPECT().PeekNonce(gomock.Any(), workerAddress).Return(uint64(5), nil) },
			contains: "unacceptable relayMaxNonce 4",
		},
		{
			name:     "untrusted verifier",
			step:     StepVerifier,
			modify:   func(req *relay.RelayTransactionRequest) { req.RelayRequest.RelayData.CallVerifier = userAddress },
			contains: "invalid verifier",
		},
		{
			name: "verifier rejects",
			step: StepVerifier,
			failStep: func(f *fixture) {
				f.hub.EXPECT().VerifyRelayedCallData(gomock.Any(), gomock.Any()).Return([]byte{0xbb}, nil)
				f.chain.EXPECT().CallContract(gomock.Any(), callTo(verifierAddress)).Return(nil, errors.New("execution reverted"))
			},
			contains: "verification by verifier failed",
		},
		{
			name: "gas too far below estimation",
			step: StepGasDeviation,
			failStep: func(f *fixture) {
				f.oracle.EXPECT().EstimateDestinationGas(gomock.Any(), gomock.Any()).Return(uint64(56000), nil)
			},
			contains: "deviates too much",
		},
		{
			name:   "token amount below fee",
			step:   StepFee,
			config: func(cfg *Config) { cfg.DisableSponsoredTx = true },
			modify: func(req *relay.RelayTransactionRequest) { req.RelayRequest.Request.TokenAmount = hexBig(999) },
			failStep: func(f *fixture) {
				f.oracle.EXPECT().MaxPossibleGas(gomock.Any(), gomock.Any(), workerAddress).Return(uint64(150000), nil)
				f.oracle.EXPECT().RequiredFee(gomock.Any(), gomock.Any(), uint64(150000)).Return(big.NewInt(1000), nil)
			},
			contains: "lower than the required fee",
		},
		{
			name: "relay call reverts",
			step: StepRelayCall,
			failStep: func(f *fixture) {
				f.hub.EXPECT().RelayCallData(gomock.Any(), gomock.Any()).Return([]byte{0xaa}, nil)
				f.chain.EXPECT().CallContract(gomock.Any(), callTo(hubAddress)).Return(nil, errors.New("execution reverted"))
			},
			contains: "relayCall reverted in server",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.config != nil {
				tt.config(&cfg)
			}
			f := newReadyFixture(t, cfg)
			f.expectPassing(tt.step)
			if tt.failStep != nil {
				tt.failStep(f)
			}
			req := validRequest()
			if tt.modify != nil {
				tt.modify(req)
			}

			_, err := f.relayer.CreateRelayTransaction(context.Background(), req)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.contains)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.step, validationErr.Step)
		})
	}
}

func TestCreateRelayTransactionNotReady(t *testing.T) {
	f := newFixture(t, testConfig())

	_, err := f.relayer.CreateRelayTransaction(context.Background(), validRequest())
	assert.ErrorIs(t, err, relay.ErrNotReady)
	assert.True(t, IsValidationError(err))
}

func TestUnexpiringRequestIsAccepted(t *testing.T) {
	f := newReadyFixture(t, testConfig())
	f.expectPassing("")
	f.expectSend(77)

	req := validRequest()
	req.RelayRequest.Request.ValidUntilTime = hexBig(0)
	_, err := f.relayer.CreateRelayTransaction(context.Background(), req)
	require.NoError(t, err)

	f.expectPassing("")
	f.expectSend(78)
	req.RelayRequest.Request.ValidUntilTime = hexBig(testNow.Unix() + 60)
	_, err = f.relayer.CreateRelayTransaction(context.Background(), req)
	require.NoError(t, err)
}

func TestAlertedRequestsAreDelayed(t *testing.T) {
	cfg := testConfig()
	cfg.MinAlertedDelay = time.Second
	cfg.MaxAlertedDelay = 2 * time.Second

	var delays []time.Duration
	f := newReadyFixture(t, cfg, WithSleeper(func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}))
	f.relayer.alerted = true
	f.expectPassing("")
	f.expectSend(77)

	_, err := f.relayer.CreateRelayTransaction(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, delays, 1)
	assert.GreaterOrEqual(t, delays[0], time.Second)
	assert.LessOrEqual(t, delays[0], 2*time.Second)
}

func TestDispatch(t *testing.T) {
	f := newReadyFixture(t, testConfig())
	ctx := context.Background()

	ready, err := f.relayer.Dispatch(ctx, CommandIsReady, nil)
	require.NoError(t, err)
	assert.Equal(t, true, ready)

	price, err := f.relayer.Dispatch(ctx, CommandGetMinGasPrice, nil)
	require.NoError(t, err)
	assert.Equal(t, "60", price)

	info, err := f.relayer.Dispatch(ctx, CommandGetChainInfo, nil)
	require.NoError(t, err)
	chainInfo := info.(relay.ChainInfo)
	assert.Equal(t, workerAddress, chainInfo.RelayWorkerAddress)
	assert.Equal(t, managerAddress, chainInfo.RelayManagerAddress)
	assert.Equal(t, feesAddress, chainInfo.FeesReceiver)
	assert.Equal(t, "test", chainInfo.Version)
	assert.True(t, chainInfo.Ready)

	f.txm.EXPECT().PeekNonce(gomock.Any(), workerAddress).Return(uint64(5), nil).Times(2)
	res, err := f.relayer.Dispatch(ctx, CommandValidateMaxNonce, json.RawMessage(`{"relayMaxNonce":5}`))
	require.NoError(t, err)
	assert.Equal(t, MaxNonceResult{Valid: true}, res)

	_, err = f.relayer.Dispatch(ctx, CommandValidateMaxNonce, json.RawMessage(`{"relayMaxNonce":4}`))
	assert.True(t, IsValidationError(err))

	_, err = f.relayer.Dispatch(ctx, CommandCreateRelayTransaction, json.RawMessage(`{"relayRequest":`))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, StepShape, validationErr.Step)

	_, err = f.relayer.Dispatch(ctx, commandCount, nil)
	assert.Error(t, err)
	assert.Equal(t, "createRelayTransaction", CommandCreateRelayTransaction.String())
}
