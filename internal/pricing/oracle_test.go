package pricing_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rsksmart/rif-relay-server-sub000/internal/pricing"
	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
	mock_relay "github.com/rsksmart/rif-relay-server-sub000/testutil/mocks/relay"
)

var (
	hubAddress       = common.HexToAddress("0x5000000000000000000000000000000000000005")
	workerAddress    = common.HexToAddress("0x2000000000000000000000000000000000000002")
	forwarderAddress = common.HexToAddress("0x6000000000000000000000000000000000000006")
	targetAddress    = common.HexToAddress("0x7000000000000000000000000000000000000007")
)

func testConfig() pricing.Config {
	return pricing.Config{
		GasPriceFactor:   decimal.RequireFromString("1.1"),
		MinGasPrice:      big.NewInt(60),
		EstimationFactor: decimal.RequireFromString("1.5"),
		FeePercentage:    decimal.RequireFromString("0.1"),
	}
}

func testRequest() *relay.RelayTransactionRequest {
	return &relay.RelayTransactionRequest{
		RelayRequest: relay.RelayRequest{
			Request: relay.ForwardRequest{
				RelayHub: hubAddress,
				To:       targetAddress,
				Data:     []byte{0x01},
			},
			RelayData: relay.RelayData{
				GasPrice:      (*math.HexOrDecimal256)(big.NewInt(100)),
				CallForwarder: forwarderAddress,
			},
		},
		Metadata: relay.RelayMetadata{Signature: make([]byte, 65)},
	}
}

func TestGasPrice(t *testing.T) {
	tests := []struct {
		name      string
		nodePrice int64
		expected  int64
	}{
		{name: "factor applied and truncated", nodePrice: 99, expected: 108},
		{name: "never below min", nodePrice: 10, expected: 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			chain := mock_relay.NewMockChain(ctrl)
			chain.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(tt.nodePrice), nil)

			oracle := pricing.NewOracle(testConfig(), chain, mock_relay.NewMockRelayHub(ctrl))
			price, err := oracle.GasPrice(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, price.Int64())
		})
	}
}

func TestEstimateDestinationGas(t *testing.T) {
	ctrl := gomock.NewController(t)
	chain := mock_relay.NewMockChain(ctrl)
	chain.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
			assert.Equal(t, forwarderAddress, msg.From)
			assert.Equal(t, targetAddress, *msg.To)
			return 30000, nil
		})

	oracle := pricing.NewOracle(testConfig(), chain, mock_relay.NewMockRelayHub(ctrl))
	gas, err := oracle.EstimateDestinationGas(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, uint64(15000), gas)
}

func TestMaxPossibleGasAndFee(t *testing.T) {
	ctrl := gomock.NewController(t)
	chain := mock_relay.NewMockChain(ctrl)
	hub := mock_relay.NewMockRelayHub(ctrl)

	req := testRequest()
	hub.EXPECT().Address().Return(hubAddress)
	hub.EXPECT().RelayCallData(&req.RelayRequest, req.Metadata.Signature).Return([]byte{0xaa}, nil)
	chain.EXPECT().EstimateGas(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg ethereum.CallMsg) (uint64, error) {
			assert.Equal(t, workerAddress, msg.From)
			assert.Equal(t, hubAddress, *msg.To)
			assert.Equal(t, []byte{0xaa}, msg.Data)
			return 100000, nil
		})

	oracle := pricing.NewOracle(testConfig(), chain, hub)
	gas, err := oracle.MaxPossibleGas(context.Background(), req, workerAddress)
	require.NoError(t, err)
	assert.Equal(t, uint64(150000), gas)

	fee, err := oracle.RequiredFee(context.Background(), req, gas)
	require.NoError(t, err)
	assert.Equal(t, int64(100*150000*11/10), fee.Int64())
}
