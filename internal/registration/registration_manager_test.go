package registration_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/rsksmart/rif-relay-server-sub000/internal/registration"
	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
	"github.com/rsksmart/rif-relay-server-sub000/internal/storage"
	mock_relay "github.com/rsksmart/rif-relay-server-sub000/testutil/mocks/relay"
)

const serverURL = "https://relay.example.org"

var (
	managerAddress = common.HexToAddress("0x1000000000000000000000000000000000000001")
	workerAddress  = common.HexToAddress("0x2000000000000000000000000000000000000002")
	ownerAddress   = common.HexToAddress("0x4000000000000000000000000000000000000004")
	hubAddress     = common.HexToAddress("0x5000000000000000000000000000000000000005")
)

type fakeListener struct {
	unstaked int
	removed  int
}

func (l *fakeListener) Unstaked() { l.unstaked++ }
func (l *fakeListener) Removed()  { l.removed++ }

type testEnv struct {
	manager   *registration.RegistrationManager
	chain     *mock_relay.MockChain
	hub       *mock_relay.MockRelayHub
	txManager *mock_relay.MockTxManager
	store     *storage.MemoryStorage
	listener  *fakeListener
	sent      []relay.TxDetails
}

func setupTest(t *testing.T) *testEnv {
	ctrl := gomock.NewController(t)
	env := &testEnv{
		chain:     mock_relay.NewMockChain(ctrl),
		hub:       mock_relay.NewMockRelayHub(ctrl),
		txManager: mock_relay.NewMockTxManager(ctrl),
		store:     storage.NewMemoryStorage(),
		listener:  &fakeListener{},
	}

	env.txManager.EXPECT().ManagerAddress().Return(managerAddress).AnyTimes()
	env.txManager.EXPECT().WorkerAddress().Return(workerAddress).AnyTimes()
	env.txManager.EXPECT().EstimateGas(gomock.Any(), gomock.Any(), gomock.Any()).Return(uint64(200000), nil).AnyTimes()
	env.txManager.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, details relay.TxDetails) (*relay.SentTransaction, error) {
			env.sent = append(env.sent, details)
			hash := common.BigToHash(big.NewInt(int64(len(env.sent))))
			err := env.store.PutTx(&relay.StoredTransaction{
				Signer:       details.Signer,
				Nonce:        uint64(len(env.sent)),
				TxID:         hash,
				To:           details.To,
				Value:        details.Value,
				GasLimit:     details.GasLimit,
				GasPrice:     big.NewInt(1),
				Data:         details.Data,
				ServerAction: details.ServerAction,
				Attempts:     1,
			}, false)
			return &relay.SentTransaction{Hash: hash}, err
		}).AnyTimes()

	env.hub.EXPECT().Address().Return(hubAddress).AnyTimes()
	env.hub.EXPECT().AddRelayWorkersData(gomock.Any()).Return([]byte{0x01}, nil).AnyTimes()
	env.hub.EXPECT().RegisterRelayServerData(serverURL).Return([]byte{0x02}, nil).AnyTimes()

	env.manager = registration.NewRegistrationManager(registration.Config{
		URL:               serverURL,
		ManagerMinBalance: big.NewInt(1000),
		ManagerMinStake:   big.NewInt(500),
		DefaultGasLimit:   300000,
	}, env.chain, env.hub, env.txManager, env.store, env.listener, zap.NewNop())
	return env
}

func (e *testEnv) init(t *testing.T, workerAdded []relay.HubEvent) {
	e.hub.EXPECT().WorkerAddedEvents(gomock.Any(), managerAddress, uint64(1)).Return(workerAdded, nil)
	require.NoError(t, e.manager.Init(context.Background()))
}

func (e *testEnv) makeEligible(t *testing.T) {
	e.hub.EXPECT().StakeInfo(gomock.Any(), managerAddress).Return(&relay.StakeInfo{
		Stake:        big.NewInt(500),
		UnstakeDelay: 100,
		Owner:        ownerAddress,
	}, nil)
	e.chain.EXPECT().BalanceAt(gomock.Any(), managerAddress).Return(big.NewInt(5000), nil)
	require.NoError(t, e.manager.RefreshStake(context.Background()))
	require.NoError(t, e.manager.RefreshBalance(context.Background()))
}

func (e *testEnv) actions() []relay.ServerAction {
	actions := make([]relay.ServerAction, 0, len(e.sent))
	for _, details := range e.sent {
		actions = append(actions, details.ServerAction)
	}
	return actions
}

func workersAddedEvent(block uint64) relay.HubEvent {
	return relay.HubEvent{
		Name:        relay.RelayWorkersAdded,
		BlockNumber: block,
		Manager:     managerAddress,
		Workers:     []common.Address{workerAddress},
	}
}

func registeredRecord(url string) []relay.RelayManagerData {
	return []relay.RelayManagerData{{Manager: managerAddress, CurrentlyStaked: true, Registered: true, URL: url}}
}

func TestAttemptRegistrationWhilePending(t *testing.T) {
	ctx := context.Background()
	env := setupTest(t)
	env.init(t, nil)
	env.makeEligible(t)

	hashes, err := env.manager.AttemptRegistration(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, hashes, 2)
	assert.Equal(t, []relay.ServerAction{relay.AddWorker, relay.RegisterServer}, env.actions())
	assert.Equal(t, managerAddress, env.sent[0].Signer)
	assert.Equal(t, hubAddress, env.sent[1].To)
	assert.Equal(t, uint64(10), env.sent[1].CreationBlock)

	hashes, err = env.manager.AttemptRegistration(ctx, 11)
	require.NoError(t, err)
	assert.Empty(t, hashes)
	assert.Len(t, env.sent, 2)
}

func TestAttemptRegistrationNotEligible(t *testing.T) {
	tests := []struct {
		name  string
		stake *relay.StakeInfo
	}{
		{name: "stake unlocked", stake: &relay.StakeInfo{Stake: big.NewInt(500), WithdrawBlock: 90, Owner: ownerAddress}},
		{name: "stake too low", stake: &relay.StakeInfo{Stake: big.NewInt(499), Owner: ownerAddress}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			env := setupTest(t)
			env.init(t, nil)
			env.hub.EXPECT().StakeInfo(gomock.Any(), managerAddress).Return(tt.stake, nil)
			env.chain.EXPECT().BalanceAt(gomock.Any(), managerAddress).Return(big.NewInt(5000), nil)
			require.NoError(t, env.manager.RefreshStake(ctx))
			require.NoError(t, env.manager.RefreshBalance(ctx))

			hashes, err := env.manager.AttemptRegistration(ctx, 10)
			require.NoError(t, err)
			assert.Empty(t, hashes)
			assert.Empty(t, env.sent)
		})
	}
}

func TestAttemptRegistrationSkipsValidWorker(t *testing.T) {
	env := setupTest(t)
	env.init(t, []relay.HubEvent{workersAddedEvent(3)})
	env.makeEligible(t)

	_, err := env.manager.AttemptRegistration(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []relay.ServerAction{relay.RegisterServer}, env.actions())
}

func TestHandlePastEventsRegistersWhenMissing(t *testing.T) {
	ctx := context.Background()
	env := setupTest(t)
	env.init(t, nil)
	env.makeEligible(t)

	env.hub.EXPECT().StakeEvents(gomock.Any(), managerAddress, uint64(1), uint64(20)).Return(nil, nil)
	hashes, err := env.manager.HandlePastEvents(ctx, nil, 0, 20, false)
	require.NoError(t, err)
	assert.Len(t, hashes, 2)

	// registration is pending now, and the worker addition has been mined meanwhile
	env.hub.EXPECT().StakeEvents(gomock.Any(), managerAddress, uint64(21), uint64(21)).Return(nil, nil)
	env.hub.EXPECT().RelayInfo(gomock.Any(), managerAddress).Return(nil, nil)
	hashes, err = env.manager.HandlePastEvents(ctx, []relay.HubEvent{workersAddedEvent(21)}, 20, 21, false)
	require.NoError(t, err)
	assert.Empty(t, hashes)
	assert.Len(t, env.sent, 2)
}

func TestHandlePastEventsStakeUnlockedIsDelayed(t *testing.T) {
	ctx := context.Background()
	env := setupTest(t)
	env.init(t, nil)
	env.makeEligible(t)

	unlocked := relay.HubEvent{Name: relay.StakeUnlocked, BlockNumber: 101, Manager: managerAddress, Owner: ownerAddress, WithdrawBlock: 150}
	env.hub.EXPECT().StakeEvents(gomock.Any(), managerAddress, uint64(101), uint64(120)).Return([]relay.HubEvent{unlocked}, nil)
	env.hub.EXPECT().StakeInfo(gomock.Any(), managerAddress).Return(&relay.StakeInfo{Stake: big.NewInt(500), WithdrawBlock: 150, Owner: ownerAddress}, nil)

	hashes, err := env.manager.HandlePastEvents(ctx, nil, 100, 120, false)
	require.NoError(t, err)
	assert.Empty(t, hashes)
	assert.Equal(t, 0, env.listener.unstaked)

	env.hub.EXPECT().StakeEvents(gomock.Any(), managerAddress, uint64(121), uint64(150)).Return(nil, nil)
	env.chain.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(2), nil)
	env.chain.EXPECT().BalanceAt(gomock.Any(), workerAddress).Return(big.NewInt(100000), nil)

	hashes, err = env.manager.HandlePastEvents(ctx, nil, 120, 150, false)
	require.NoError(t, err)
	require.Len(t, hashes, 1)
	require.Len(t, env.sent, 1)
	assert.Equal(t, relay.ValueTransfer, env.sent[0].ServerAction)
	assert.Equal(t, workerAddress, env.sent[0].Signer)
	assert.Equal(t, ownerAddress, env.sent[0].To)
	assert.Equal(t, int64(100000-2*21000), env.sent[0].Value.Int64())
	assert.Equal(t, 1, env.listener.unstaked)
}

func TestHandlePastEventsStakeWithdrawn(t *testing.T) {
	ctx := context.Background()
	env := setupTest(t)
	env.init(t, nil)
	env.makeEligible(t)

	withdrawn := relay.HubEvent{Name: relay.StakeWithdrawn, BlockNumber: 160, Manager: managerAddress, Owner: ownerAddress}
	env.hub.EXPECT().StakeEvents(gomock.Any(), managerAddress, uint64(151), uint64(160)).Return([]relay.HubEvent{withdrawn}, nil)
	env.hub.EXPECT().StakeInfo(gomock.Any(), managerAddress).Return(&relay.StakeInfo{Stake: big.NewInt(0)}, nil)
	env.chain.EXPECT().SuggestGasPrice(gomock.Any()).Return(big.NewInt(1), nil)
	env.chain.EXPECT().BalanceAt(gomock.Any(), workerAddress).Return(big.NewInt(10), nil)
	env.chain.EXPECT().BalanceAt(gomock.Any(), managerAddress).Return(big.NewInt(50000), nil)

	_, err := env.manager.HandlePastEvents(ctx, nil, 150, 160, false)
	require.NoError(t, err)

	// the worker can't cover the transfer, the manager can
	require.NotEmpty(t, env.sent)
	assert.Equal(t, relay.ValueTransfer, env.sent[0].ServerAction)
	assert.Equal(t, managerAddress, env.sent[0].Signer)
	assert.Equal(t, int64(50000-21000), env.sent[0].Value.Int64())
	assert.Equal(t, 1, env.listener.unstaked)
}

func TestWithdrawAllFundsOwnerUnknown(t *testing.T) {
	env := setupTest(t)
	_, err := env.manager.WithdrawAllFunds(context.Background(), true, 1)
	require.Error(t, err)
	assert.Equal(t, 0, env.listener.unstaked)
}

func TestIsRegistered(t *testing.T) {
	ctx := context.Background()
	env := setupTest(t)
	env.init(t, []relay.HubEvent{workersAddedEvent(3)})

	registered, err := env.manager.IsRegistered(ctx)
	require.NoError(t, err)
	assert.False(t, registered)

	env.makeEligible(t)
	env.hub.EXPECT().RelayInfo(gomock.Any(), managerAddress).Return(registeredRecord(serverURL+"/"), nil)
	state, err := env.manager.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, registration.StateRegistered, state)

	env.hub.EXPECT().RelayInfo(gomock.Any(), managerAddress).Return(registeredRecord(serverURL), nil)
	registered, err = env.manager.IsRegistered(ctx)
	require.NoError(t, err)
	assert.True(t, registered)

	env.hub.EXPECT().RelayInfo(gomock.Any(), managerAddress).Return(registeredRecord("https://other.example.org"), nil)
	registered, err = env.manager.IsRegistered(ctx)
	require.NoError(t, err)
	assert.False(t, registered)
	assert.Equal(t, 1, env.listener.removed)

	env.hub.EXPECT().RelayInfo(gomock.Any(), managerAddress).Return(nil, nil)
	registered, err = env.manager.IsRegistered(ctx)
	require.NoError(t, err)
	assert.False(t, registered)
	assert.Equal(t, 1, env.listener.removed)
}

func TestIsRegisteredMultipleRecordsIsFatal(t *testing.T) {
	env := setupTest(t)
	env.init(t, []relay.HubEvent{workersAddedEvent(3)})
	env.makeEligible(t)

	records := append(registeredRecord(serverURL), registeredRecord(serverURL)...)
	env.hub.EXPECT().RelayInfo(gomock.Any(), managerAddress).Return(records, nil)

	_, err := env.manager.IsRegistered(context.Background())
	require.Error(t, err)
	assert.True(t, relay.IsFatal(err))
}

func TestRefreshStakeIgnoresZeroStake(t *testing.T) {
	env := setupTest(t)
	env.hub.EXPECT().StakeInfo(gomock.Any(), managerAddress).Return(&relay.StakeInfo{Stake: big.NewInt(0), Owner: ownerAddress}, nil)
	require.NoError(t, env.manager.RefreshStake(context.Background()))

	_, known := env.manager.OwnerAddress()
	assert.False(t, known)
	assert.False(t, env.manager.StakeRequired().IsSatisfied())
}

func TestHandlePastEventsNotInitialized(t *testing.T) {
	env := setupTest(t)
	_, err := env.manager.HandlePastEvents(context.Background(), nil, 0, 1, false)
	require.Error(t, err)
}
