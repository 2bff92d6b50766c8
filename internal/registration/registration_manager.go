package registration

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

const valueTransferGasLimit = 21000

// Listener is notified about registration changes that need an operator.
type Listener interface {
	// Unstaked is called after the funds have been withdrawn to the owner.
	Unstaked()
	// Removed is called when the manager stops being registered on the hub.
	Removed()
}

type Config struct {
	URL               string
	ManagerMinBalance *big.Int
	ManagerMinStake   *big.Int
	// DefaultGasLimit is used when a registration transaction can not be estimated.
	DefaultGasLimit uint64
}

type State int

const (
	StateUnregistered State = iota
	StateEligible
	StateRegistered
)

func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateEligible:
		return "eligible"
	case StateRegistered:
		return "registered"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type delayedEvent struct {
	block uint64
	event relay.HubEvent
}

// RegistrationManager keeps the relay manager staked, funded and registered on the hub, and
// withdraws everything to the owner once the stake goes away.
type RegistrationManager struct {
	cfg       Config
	chain     relay.Chain
	hub       relay.RelayHub
	txManager relay.TxManager
	storage   relay.Storage
	listener  Listener
	logger    *zap.Logger

	managerAddress common.Address
	workerAddress  common.Address

	balanceRequired *AmountRequired
	stakeRequired   *AmountRequired

	mu              sync.Mutex
	initialized     bool
	ownerAddress    *common.Address
	isStakeLocked   bool
	lastWorkerAdded *relay.HubEvent
	delayedEvents   []delayedEvent
	wasRegistered   bool
}

func NewRegistrationManager(
	cfg Config,
	chain relay.Chain,
	hub relay.RelayHub,
	txManager relay.TxManager,
	storage relay.Storage,
	listener Listener,
	logger *zap.Logger,
) *RegistrationManager {
	m := &RegistrationManager{
		cfg:            cfg,
		chain:          chain,
		hub:            hub,
		txManager:      txManager,
		storage:        storage,
		listener:       listener,
		logger:         logger,
		managerAddress: txManager.ManagerAddress(),
		workerAddress:  txManager.WorkerAddress(),
	}
	m.balanceRequired = NewAmountRequired("Balance", cfg.ManagerMinBalance, m.printNotRegistered)
	m.stakeRequired = NewAmountRequired("Stake", cfg.ManagerMinStake, m.printNotRegistered)
	return m
}

// Init looks up the latest RelayWorkersAdded event of the manager unless it is already known.
func (m *RegistrationManager) Init(ctx context.Context) error {
	m.mu.Lock()
	known := m.lastWorkerAdded != nil
	m.mu.Unlock()

	if !known {
		events, err := m.hub.WorkerAddedEvents(ctx, m.managerAddress, 1)
		if err != nil {
			return fmt.Errorf("failed to query worker added events: %w", err)
		}
		m.updateLatestWorkerAdded(events)
	}

	m.mu.Lock()
	m.initialized = true
	m.mu.Unlock()
	return nil
}

// HandlePastEvents processes the stake events of the manager since lastScannedBlock and the given
// hub events, runs the delayed events that are due and registers the server again when its
// registration is missing or forceRegistration is set.
func (m *RegistrationManager) HandlePastEvents(
	ctx context.Context,
	hubEvents []relay.HubEvent,
	lastScannedBlock, currentBlock uint64,
	forceRegistration bool,
) ([]common.Hash, error) {
	m.mu.Lock()
	initialized := m.initialized
	m.mu.Unlock()
	if !initialized {
		return nil, fmt.Errorf("registration manager is not initialized")
	}

	stakeEvents, err := m.hub.StakeEvents(ctx, m.managerAddress, lastScannedBlock+1, currentBlock)
	if err != nil {
		return nil, fmt.Errorf("failed to query stake events: %w", err)
	}
	if len(stakeEvents) > 0 {
		m.logger.Info("handling stake events",
			zap.Int("count", len(stakeEvents)),
			zap.Uint64("from_block", lastScannedBlock+1),
			zap.Uint64("to_block", currentBlock))
	}

	var hashes []common.Hash
	for _, event := range stakeEvents {
		switch event.Name {
		case relay.StakeAdded:
			if err := m.RefreshStake(ctx); err != nil {
				return hashes, err
			}
		case relay.StakeUnlocked:
			if err := m.RefreshStake(ctx); err != nil {
				return hashes, err
			}
			m.mu.Lock()
			m.delayedEvents = append(m.delayedEvents, delayedEvent{block: event.WithdrawBlock, event: event})
			m.mu.Unlock()
		case relay.StakeWithdrawn:
			if err := m.RefreshStake(ctx); err != nil {
				return hashes, err
			}
			m.logger.Warn("stake withdrawn, withdrawing all funds",
				zap.Stringer("owner", event.Owner),
				zap.Uint64("block", event.BlockNumber))
			sent, err := m.WithdrawAllFunds(ctx, true, currentBlock)
			hashes = append(hashes, sent...)
			if err != nil {
				return hashes, err
			}
		}
	}

	var workersAdded []relay.HubEvent
	for _, event := range hubEvents {
		if event.Name == relay.RelayWorkersAdded && event.Manager == m.managerAddress {
			workersAdded = append(workersAdded, event)
		}
	}
	m.updateLatestWorkerAdded(workersAdded)

	for _, event := range m.extractDueEvents(currentBlock) {
		if event.Name != relay.StakeUnlocked {
			continue
		}
		m.logger.Warn("stake unlock delay passed, withdrawing worker funds",
			zap.Uint64("withdraw_block", event.WithdrawBlock))
		sent, err := m.WithdrawAllFunds(ctx, false, currentBlock)
		hashes = append(hashes, sent...)
		if err != nil {
			return hashes, err
		}
	}

	isRegistrationCorrect, err := m.isRegistrationCorrect(ctx)
	if err != nil {
		return hashes, err
	}
	isRegistrationPending, err := m.storage.IsActionPending(relay.RegisterServer, nil)
	if err != nil {
		return hashes, fmt.Errorf("failed to check pending registration: %w", err)
	}

	if !(isRegistrationPending || isRegistrationCorrect) || forceRegistration {
		sent, err := m.AttemptRegistration(ctx, currentBlock)
		hashes = append(hashes, sent...)
		if err != nil {
			return hashes, err
		}
	}
	return hashes, nil
}

// AttemptRegistration adds the worker and registers the URL of the server on the hub. Nothing is
// sent while stake or balance are missing, and an action already pending is not sent again.
func (m *RegistrationManager) AttemptRegistration(ctx context.Context, currentBlock uint64) ([]common.Hash, error) {
	m.mu.Lock()
	isStakeLocked := m.isStakeLocked
	m.mu.Unlock()

	if !isStakeLocked || !m.stakeRequired.IsSatisfied() || !m.balanceRequired.IsSatisfied() {
		m.logger.Debug("registration not allowed yet",
			zap.Bool("stake_locked", isStakeLocked),
			zap.String("stake", m.stakeRequired.Description()),
			zap.String("balance", m.balanceRequired.Description()))
		return nil, nil
	}

	var hashes []common.Hash
	hubAddress := m.hub.Address()

	addWorkerPending, err := m.storage.IsActionPending(relay.AddWorker, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending add worker: %w", err)
	}
	if !m.isWorkerValid() && !addWorkerPending {
		data, err := m.hub.AddRelayWorkersData([]common.Address{m.workerAddress})
		if err != nil {
			return nil, fmt.Errorf("failed to build addRelayWorkers call: %w", err)
		}
		sent, err := m.sendManagerTx(ctx, "AddRelayWorkers", hubAddress, data, relay.AddWorker, currentBlock)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, sent.Hash)
		m.logger.Info("added worker", zap.Stringer("worker", m.workerAddress), zap.Stringer("tx_id", sent.Hash))
	}

	registerPending, err := m.storage.IsActionPending(relay.RegisterServer, nil)
	if err != nil {
		return hashes, fmt.Errorf("failed to check pending registration: %w", err)
	}
	if registerPending {
		m.logger.Debug("registration already pending")
		return hashes, nil
	}

	data, err := m.hub.RegisterRelayServerData(m.cfg.URL)
	if err != nil {
		return hashes, fmt.Errorf("failed to build registerRelayServer call: %w", err)
	}
	sent, err := m.sendManagerTx(ctx, "RegisterRelay", hubAddress, data, relay.RegisterServer, currentBlock)
	if err != nil {
		return hashes, err
	}
	hashes = append(hashes, sent.Hash)

	m.logger.Info("relay server registering",
		zap.String("url", m.cfg.URL),
		zap.Stringer("manager", m.managerAddress),
		zap.Stringer("worker", m.workerAddress),
		zap.Stringer("tx_id", sent.Hash))
	return hashes, nil
}

// WithdrawAllFunds sends the worker balance, and the manager balance when withdrawManager is set,
// to the owner, leaving only what the transfer costs.
func (m *RegistrationManager) WithdrawAllFunds(ctx context.Context, withdrawManager bool, currentBlock uint64) ([]common.Hash, error) {
	m.mu.Lock()
	owner := m.ownerAddress
	m.mu.Unlock()
	if owner == nil {
		return nil, fmt.Errorf("can't withdraw funds: owner is unknown")
	}

	gasPrice, err := m.chain.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}
	reserve := new(big.Int).Mul(gasPrice, big.NewInt(valueTransferGasLimit))

	signers := []common.Address{m.workerAddress}
	if withdrawManager {
		signers = append(signers, m.managerAddress)
	}

	var hashes []common.Hash
	for _, signer := range signers {
		balance, err := m.chain.BalanceAt(ctx, signer)
		if err != nil {
			return hashes, fmt.Errorf("failed to get balance of %s: %w", signer, err)
		}
		if balance.Cmp(reserve) < 0 {
			m.logger.Info("balance too low to withdraw",
				zap.Stringer("signer", signer),
				zap.Stringer("balance", balance),
				zap.Stringer("reserve", reserve))
			continue
		}

		value := new(big.Int).Sub(balance, reserve)
		sent, err := m.txManager.SendTransaction(ctx, relay.TxDetails{
			Signer:        signer,
			To:            *owner,
			Value:         value,
			GasLimit:      valueTransferGasLimit,
			GasPrice:      gasPrice,
			ServerAction:  relay.ValueTransfer,
			CreationBlock: currentBlock,
		})
		if err != nil {
			return hashes, fmt.Errorf("failed to withdraw funds of %s: %w", signer, err)
		}
		hashes = append(hashes, sent.Hash)
		m.logger.Info("withdrew funds to owner",
			zap.Stringer("signer", signer),
			zap.Stringer("owner", *owner),
			zap.Stringer("value", value),
			zap.Stringer("tx_id", sent.Hash))
	}

	m.listener.Unstaked()
	return hashes, nil
}

func (m *RegistrationManager) RefreshBalance(ctx context.Context) error {
	balance, err := m.chain.BalanceAt(ctx, m.managerAddress)
	if err != nil {
		return fmt.Errorf("failed to get manager balance: %w", err)
	}
	m.balanceRequired.SetCurrent(balance)
	return nil
}

// RefreshStake reads the stake of the manager from the hub. A zero stake leaves the known state
// untouched.
func (m *RegistrationManager) RefreshStake(ctx context.Context) error {
	info, err := m.hub.StakeInfo(ctx, m.managerAddress)
	if err != nil {
		return fmt.Errorf("failed to get stake info: %w", err)
	}
	if info.Stake == nil || info.Stake.Sign() == 0 {
		return nil
	}

	m.mu.Lock()
	m.isStakeLocked = info.WithdrawBlock == 0
	if m.ownerAddress == nil {
		owner := info.Owner
		m.ownerAddress = &owner
		m.logger.Info("got staked for the first time",
			zap.Stringer("owner", owner),
			zap.Stringer("stake", info.Stake),
			zap.Uint64("unstake_delay", info.UnstakeDelay))
	}
	m.mu.Unlock()

	m.stakeRequired.SetCurrent(info.Stake)
	return nil
}

func (m *RegistrationManager) IsBalanceSatisfied() bool {
	return m.balanceRequired.IsSatisfied()
}

func (m *RegistrationManager) BalanceRequired() *AmountRequired {
	return m.balanceRequired
}

func (m *RegistrationManager) StakeRequired() *AmountRequired {
	return m.stakeRequired
}

func (m *RegistrationManager) OwnerAddress() (common.Address, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ownerAddress == nil {
		return common.Address{}, false
	}
	return *m.ownerAddress, true
}

// IsRegistered reports whether the manager is eligible and its hub record matches the worker and
// URL of this server. Losing a registration that was observed before notifies the listener.
func (m *RegistrationManager) IsRegistered(ctx context.Context) (bool, error) {
	state, err := m.State(ctx)
	if err != nil {
		return false, err
	}
	registered := state == StateRegistered

	m.mu.Lock()
	removed := m.wasRegistered && !registered
	m.wasRegistered = registered
	m.mu.Unlock()

	if removed {
		m.logger.Warn("relay manager is no longer registered", zap.Stringer("manager", m.managerAddress))
		m.listener.Removed()
	}
	return registered, nil
}

func (m *RegistrationManager) State(ctx context.Context) (State, error) {
	if !m.isEligible() {
		return StateUnregistered, nil
	}
	correct, err := m.isRegistrationCorrect(ctx)
	if err != nil {
		return StateUnregistered, err
	}
	if !correct {
		return StateEligible, nil
	}
	return StateRegistered, nil
}

func (m *RegistrationManager) PrintNotRegisteredMessage(ctx context.Context) {
	correct, err := m.isRegistrationCorrect(ctx)
	if err != nil {
		m.logger.Debug("failed to check registration", zap.Error(err))
	}
	if correct {
		return
	}
	m.printNotRegistered()
}

func (m *RegistrationManager) printNotRegistered() {
	m.mu.Lock()
	isStakeLocked := m.isStakeLocked
	owner := "unknown"
	if m.ownerAddress != nil {
		owner = m.ownerAddress.Hex()
	}
	m.mu.Unlock()

	m.logger.Info("not registered yet, waiting for",
		zap.String("balance", m.balanceRequired.Description()),
		zap.String("stake", m.stakeRequired.Description()),
		zap.Bool("stake_locked", isStakeLocked),
		zap.Stringer("manager", m.managerAddress),
		zap.Stringer("worker", m.workerAddress),
		zap.String("owner", owner))
}

func (m *RegistrationManager) isEligible() bool {
	m.mu.Lock()
	isStakeLocked := m.isStakeLocked
	m.mu.Unlock()
	return isStakeLocked && m.stakeRequired.IsSatisfied() && m.balanceRequired.IsSatisfied()
}

func (m *RegistrationManager) isWorkerValid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastWorkerAdded == nil {
		return false
	}
	for _, worker := range m.lastWorkerAdded.Workers {
		if worker == m.workerAddress {
			return true
		}
	}
	return false
}

func (m *RegistrationManager) isRegistrationCorrect(ctx context.Context) (bool, error) {
	if !m.isWorkerValid() {
		return false, nil
	}
	data, err := m.relayData(ctx)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	return data.Manager == m.managerAddress && data.Registered && sameURL(data.URL, m.cfg.URL), nil
}

// relayData returns the hub record of the manager, or nil if there is none.
func (m *RegistrationManager) relayData(ctx context.Context) (*relay.RelayManagerData, error) {
	records, err := m.hub.RelayInfo(ctx, m.managerAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to get relay info: %w", err)
	}
	switch len(records) {
	case 0:
		return nil, nil
	case 1:
		return &records[0], nil
	default:
		return nil, relay.NewFatalErrorf("more than one relay manager record for %s: %d", m.managerAddress, len(records))
	}
}

func (m *RegistrationManager) updateLatestWorkerAdded(events []relay.HubEvent) {
	latest := relay.LatestEvent(events)
	if latest == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastWorkerAdded == nil || latest.IsLaterThan(m.lastWorkerAdded) {
		event := *latest
		m.lastWorkerAdded = &event
	}
}

func (m *RegistrationManager) extractDueEvents(currentBlock uint64) []relay.HubEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []relay.HubEvent
	pending := m.delayedEvents[:0]
	for _, delayed := range m.delayedEvents {
		if delayed.block <= currentBlock {
			due = append(due, delayed.event)
		} else {
			pending = append(pending, delayed)
		}
	}
	m.delayedEvents = pending
	return due
}

func (m *RegistrationManager) sendManagerTx(
	ctx context.Context,
	method string,
	to common.Address,
	data []byte,
	action relay.ServerAction,
	currentBlock uint64,
) (*relay.SentTransaction, error) {
	gasLimit, err := m.txManager.EstimateGas(ctx, method, ethereum.CallMsg{
		From: m.managerAddress,
		To:   &to,
		Data: data,
	})
	if err != nil {
		m.logger.Warn("using default gas limit", zap.String("method", method), zap.Error(err))
		gasLimit = m.cfg.DefaultGasLimit
	}

	sent, err := m.txManager.SendTransaction(ctx, relay.TxDetails{
		Signer:        m.managerAddress,
		To:            to,
		Data:          data,
		GasLimit:      gasLimit,
		ServerAction:  action,
		CreationBlock: currentBlock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", method, err)
	}
	return sent, nil
}

func sameURL(a, b string) bool {
	return strings.TrimRight(a, "/") == strings.TrimRight(b, "/")
}
