package relayer

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rsksmart/rif-relay-server-sub000/internal/metrics"
	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

// devModeMinChainID is the lowest chain (and network) id accepted in dev mode.
// Public networks use smaller ids.
const devModeMinChainID = 1000

const defaultEventsBuffer = 16

type Config struct {
	RelayHubAddress  common.Address
	FeesReceiver     common.Address
	TrustedVerifiers []common.Address
	DevMode          bool
	Version          string

	CheckInterval time.Duration
	// ReadyTimeout bounds a single round. A round running longer resets the successful rounds counter.
	ReadyTimeout              time.Duration
	SuccessfulRoundsForReady  int
	RefreshStateTimeoutBlocks uint64
	// RegistrationBlockRate forces a new registration after this many blocks without activity. Zero disables it.
	RegistrationBlockRate uint64

	AlertedBlockDelay uint64
	MinAlertedDelay   time.Duration
	MaxAlertedDelay   time.Duration

	RequestMinValidSeconds int64
	DisableSponsoredTx     bool
	MaxGasDeviation        decimal.Decimal
	WorkerMinBalance       *big.Int
}

type Deps struct {
	Chain        relay.Chain
	Hub          relay.RelayHub
	TxManager    relay.TxManager
	Oracle       relay.PricingOracle
	Storage      relay.Storage
	Registration relay.RegistrationManager
	Replenisher  relay.Replenisher
	Notifier     *Notifier
}

type Option func(*Relayer)

// WithClock replaces the clock used to check request expiration.
func WithClock(now func() time.Time) Option {
	return func(r *Relayer) {
		r.now = now
	}
}

// WithSleeper replaces the delay applied to requests while alerted.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(r *Relayer) {
		r.sleep = sleep
	}
}

// Relayer is the controller of the relay server:
// 1. on every new block refreshes the server state, registration and pending transactions
// 2. keeps track of whether the server is ready to relay
// 3. validates and relays the requests of clients
type Relayer struct {
	cfg          Config
	chain        relay.Chain
	hub          relay.RelayHub
	txManager    relay.TxManager
	oracle       relay.PricingOracle
	storage      relay.Storage
	registration relay.RegistrationManager
	replenisher  relay.Replenisher
	notifier     *Notifier
	logger       *zap.Logger

	managerAddress   common.Address
	workerAddress    common.Address
	trustedVerifiers map[common.Address]struct{}
	commands         [commandCount]commandHandler

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error

	working atomic.Bool
	fatal   chan error

	mu                sync.Mutex
	started           bool
	cancel            context.CancelFunc
	done              chan struct{}
	initialized       bool
	ready             bool
	successfulRounds  int
	lastScannedBlock  uint64
	lastRefreshBlock  uint64
	lastMinedActiveTx *relay.HubEvent
	alerted           bool
	alertedBlock      uint64
	gasPrice          *big.Int
	chainID           *big.Int
	networkID         *big.Int
}

func NewRelayer(cfg Config, deps Deps, logger *zap.Logger, opts ...Option) *Relayer {
	notifier := deps.Notifier
	if notifier == nil {
		notifier = NewNotifier(defaultEventsBuffer, logger)
	}

	r := &Relayer{
		cfg:              cfg,
		chain:            deps.Chain,
		hub:              deps.Hub,
		txManager:        deps.TxManager,
		oracle:           deps.Oracle,
		storage:          deps.Storage,
		registration:     deps.Registration,
		replenisher:      deps.Replenisher,
		notifier:         notifier,
		logger:           logger,
		managerAddress:   deps.TxManager.ManagerAddress(),
		workerAddress:    deps.TxManager.WorkerAddress(),
		trustedVerifiers: make(map[common.Address]struct{}, len(cfg.TrustedVerifiers)),
		now:              time.Now,
		sleep:            sleepContext,
		fatal:            make(chan error, 1),
		gasPrice:         new(big.Int),
	}
	for _, verifier := range cfg.TrustedVerifiers {
		r.trustedVerifiers[verifier] = struct{}{}
	}
	r.commands = r.buildCommands()

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Events returns the channel relay events are published to.
func (r *Relayer) Events() <-chan relay.Event {
	return r.notifier.Events()
}

// Start runs a round on every CheckInterval tick until ctx is done or Stop is called.
func (r *Relayer) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return errors.New("relayer already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	r.started = true
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.loop(ctx, r.done)

	r.logger.Info("relayer started",
		zap.Duration("check_interval", r.cfg.CheckInterval),
		zap.Stringer("manager", r.managerAddress),
		zap.Stringer("worker", r.workerAddress))
	return nil
}

// Stop cancels the loop and waits for the running round to return.
func (r *Relayer) Stop() error {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return relay.ErrNotStarted
	}
	cancel, done := r.cancel, r.done
	r.started = false
	r.mu.Unlock()

	cancel()
	<-done
	r.logger.Info("relayer stopped")
	return nil
}

// Run starts the relayer and blocks until ctx is done or a round fails with a fatal error.
func (r *Relayer) Run(ctx context.Context) error {
	if err := r.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		_ = r.Stop()
		return nil
	case err := <-r.fatal:
		_ = r.Stop()
		return err
	}
}

func (r *Relayer) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	var wg sync.WaitGroup
	defer wg.Wait()

	ticker := time.NewTicker(r.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			wg.Add(1)
			go func() {
				defer wg.Done()
				r.intervalHandler(ctx)
			}()
		}
	}
}

func (r *Relayer) intervalHandler(ctx context.Context) {
	block, err := r.chain.BlockNumber(ctx)
	if err != nil {
		r.roundFailed(ctx, fmt.Errorf("failed to get block number: %w", err))
		return
	}
	r.handleBlock(ctx, block)
}

// handleBlock runs one round for block unless another round is in progress. The block is
// compared with the last scanned one only once the round is claimed, since a round finishing
// in between may already have scanned it.
func (r *Relayer) handleBlock(ctx context.Context, block uint64) {
	if !r.working.CompareAndSwap(false, true) {
		r.logger.Warn("previous round is not finished yet, skipping block", zap.Uint64("block", block))
		return
	}
	defer r.working.Store(false)

	if block <= r.LastScannedBlock() {
		return
	}

	if r.cfg.ReadyTimeout > 0 {
		watchdog := time.AfterFunc(r.cfg.ReadyTimeout, func() { r.roundTimedOut(block) })
		defer watchdog.Stop()
	}

	start := time.Now()
	txs, err := r.worker(ctx, block)
	if err != nil {
		metrics.AddFailedRound(time.Since(start).Seconds())
		r.roundFailed(ctx, err)
		return
	}
	metrics.AddSuccessRound(time.Since(start).Seconds())

	r.mu.Lock()
	wasReady := r.isReady()
	if r.successfulRounds < r.cfg.SuccessfulRoundsForReady {
		r.successfulRounds++
	}
	ready := r.isReady()
	r.mu.Unlock()
	metrics.SetReady(ready)
	if ready && !wasReady {
		r.logger.Warn("Relayer state: READY")
	}

	if len(txs) != 0 {
		r.logger.Debug("done handling block", zap.Uint64("block", block), zap.Int("transactions", len(txs)))
	}
}

func (r *Relayer) roundFailed(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}

	if relay.IsFatal(err) {
		r.logger.Error("fatal error in relayer round", zap.Error(err))
		select {
		case r.fatal <- err:
		default:
		}
	} else {
		r.logger.Error("error in relayer round", zap.Error(err))
	}
	r.notifier.Error(err)

	r.mu.Lock()
	r.successfulRounds = 0
	r.mu.Unlock()
	r.setReadyState(false)
}

func (r *Relayer) roundTimedOut(block uint64) {
	r.mu.Lock()
	r.successfulRounds = 0
	r.mu.Unlock()
	metrics.SetReady(false)

	r.logger.Warn("round timed out, relayer is NOT-READY until enough rounds succeed",
		zap.Uint64("block", block),
		zap.Duration("ready_timeout", r.cfg.ReadyTimeout))
}

func (r *Relayer) worker(ctx context.Context, block uint64) ([]common.Hash, error) {
	if !r.isInitialized() {
		if err := r.init(ctx); err != nil {
			return nil, err
		}
	}

	r.mu.Lock()
	lastScanned, lastRefresh, ready := r.lastScannedBlock, r.lastRefreshBlock, r.isReady()
	r.mu.Unlock()

	if block <= lastScanned {
		return nil, relay.NewFatalErrorf("attempt to scan block %d, last scanned block is %d", block, lastScanned)
	}
	if ready && block-lastRefresh < r.cfg.RefreshStateTimeoutBlocks {
		return nil, nil
	}

	gasPrice, err := r.oracle.GasPrice(ctx)
	if err != nil {
		return nil, err
	}
	if gasPrice.Sign() == 0 {
		return nil, errors.New("could not get gas price from node")
	}
	r.mu.Lock()
	r.lastRefreshBlock = block
	r.gasPrice = gasPrice
	r.mu.Unlock()

	if err := r.registration.RefreshBalance(ctx); err != nil {
		return nil, fmt.Errorf("failed to refresh manager balance: %w", err)
	}
	if !r.registration.IsBalanceSatisfied() {
		r.setReadyState(false)
		return nil, nil
	}

	return r.handleChanges(ctx, block)
}

func (r *Relayer) init(ctx context.Context) error {
	if err := r.txManager.Init(ctx); err != nil {
		return fmt.Errorf("failed to init tx manager: %w", err)
	}

	hubAddress := r.hub.Address()
	code, err := r.chain.CodeAt(ctx, hubAddress)
	if err != nil {
		return fmt.Errorf("failed to get relay hub code: %w", err)
	}
	if len(code) == 0 {
		return relay.NewFatalErrorf("no RelayHub deployed at address %s", hubAddress)
	}

	if err := r.registration.Init(ctx); err != nil {
		return fmt.Errorf("failed to init registration manager: %w", err)
	}

	chainID, err := r.chain.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain id: %w", err)
	}
	networkID, err := r.chain.NetworkID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get network id: %w", err)
	}
	if r.cfg.DevMode && (chainID.Cmp(big.NewInt(devModeMinChainID)) < 0 || networkID.Cmp(big.NewInt(devModeMinChainID)) < 0) {
		return relay.NewFatalErrorf("don't use real network's chain id %s and network id %s in dev mode", chainID, networkID)
	}

	r.mu.Lock()
	r.chainID = chainID
	r.networkID = networkID
	r.initialized = true
	r.mu.Unlock()

	r.logger.Info("relayer initialized",
		zap.Stringer("chain_id", chainID),
		zap.Stringer("network_id", networkID),
		zap.Stringer("relay_hub", hubAddress))
	return nil
}

func (r *Relayer) handleChanges(ctx context.Context, block uint64) ([]common.Hash, error) {
	lastScanned := r.LastScannedBlock()
	events, err := r.hub.HubEvents(ctx, lastScanned+1, block)
	if err != nil {
		return nil, fmt.Errorf("failed to get hub events: %w", err)
	}

	if err := r.updateLatestActiveTx(ctx, events); err != nil {
		return nil, err
	}
	shouldRegister, err := r.shouldRegisterAgain(block)
	if err != nil {
		return nil, err
	}
	txs, err := r.registration.HandlePastEvents(ctx, events, lastScanned, block, shouldRegister)
	if err != nil {
		return nil, fmt.Errorf("failed to handle past events: %w", err)
	}
	if err := r.txManager.RemoveConfirmedTransactions(ctx, block); err != nil {
		return nil, fmt.Errorf("failed to remove confirmed transactions: %w", err)
	}
	if err := r.boostStuckPendingTransactions(ctx, block); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.lastScannedBlock = block
	r.mu.Unlock()

	registered, err := r.registration.IsRegistered(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check registration: %w", err)
	}
	if !registered {
		r.registration.PrintNotRegisteredMessage(ctx)
		r.setReadyState(false)
		return txs, nil
	}

	r.handleRevertedEvents(events)

	replenished, err := r.replenisher.Replenish(ctx, block)
	if err != nil {
		return nil, fmt.Errorf("failed to replenish worker: %w", err)
	}
	txs = append(txs, replenished...)

	managerBalance, workerBalance, err := r.balances(ctx)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("relayer balances",
		zap.Uint64("block", block),
		zap.Stringer("manager_balance", managerBalance),
		zap.Stringer("worker_balance", workerBalance))
	if r.cfg.WorkerMinBalance != nil && workerBalance.Cmp(r.cfg.WorkerMinBalance) < 0 {
		r.setReadyState(false)
		return txs, nil
	}
	r.setReadyState(true)

	r.mu.Lock()
	exitAlert := r.alerted && r.alertedBlock+r.cfg.AlertedBlockDelay < block
	alertedBlock := r.alertedBlock
	if exitAlert {
		r.alerted = false
	}
	r.mu.Unlock()
	if exitAlert {
		metrics.SetAlerted(false)
		r.logger.Warn("relay exited alerted state",
			zap.Uint64("alerted_block", alertedBlock),
			zap.Uint64("block", block))
	}
	return txs, nil
}

func (r *Relayer) updateLatestActiveTx(ctx context.Context, events []relay.HubEvent) error {
	active := make([]relay.HubEvent, 0, len(events))
	for _, event := range events {
		if isActiveEvent(event.Name) {
			active = append(active, event)
		}
	}

	r.mu.Lock()
	if latest := relay.LatestEvent(active); latest != nil {
		r.lastMinedActiveTx = latest
	}
	known := r.lastMinedActiveTx != nil
	r.mu.Unlock()
	if known {
		return nil
	}

	latest, err := r.hub.LatestActiveEvent(ctx, r.managerAddress, 1)
	if err != nil {
		return fmt.Errorf("failed to query latest active event: %w", err)
	}
	r.mu.Lock()
	r.lastMinedActiveTx = latest
	r.mu.Unlock()
	return nil
}

// shouldRegisterAgain is true when the manager has been idle for RegistrationBlockRate blocks
// and nothing that would count as activity is already in flight.
func (r *Relayer) shouldRegisterAgain(block uint64) (bool, error) {
	if r.cfg.RegistrationBlockRate == 0 {
		return false, nil
	}

	r.mu.Lock()
	latest := r.lastMinedActiveTx
	r.mu.Unlock()

	var expired bool
	if latest == nil {
		expired = block+1 >= r.cfg.RegistrationBlockRate
	} else {
		expired = block >= latest.BlockNumber && block-latest.BlockNumber >= r.cfg.RegistrationBlockRate
	}
	if !expired {
		return false, nil
	}

	for _, action := range []relay.ServerAction{relay.RelayCall, relay.RegisterServer} {
		pending, err := r.storage.IsActionPending(action, nil)
		if err != nil {
			return false, fmt.Errorf("failed to check pending %s: %w", action, err)
		}
		if pending {
			return false, nil
		}
	}
	return true, nil
}

func (r *Relayer) boostStuckPendingTransactions(ctx context.Context, block uint64) error {
	for _, signer := range []common.Address{r.managerAddress, r.workerAddress} {
		boosted, err := r.txManager.BoostUnderpricedPendingTransactionsForSigner(ctx, signer, block)
		if err != nil {
			return fmt.Errorf("failed to boost pending transactions of %s: %w", signer, err)
		}
		if len(boosted) != 0 {
			r.logger.Info("boosted stuck pending transactions",
				zap.Stringer("signer", signer),
				zap.Int("count", len(boosted)),
				zap.Uint64("block", block))
		}
	}
	return nil
}

func (r *Relayer) handleRevertedEvents(events []relay.HubEvent) {
	for _, event := range events {
		if event.Name != relay.TransactionRelayedButRevertedByRecipient || event.Worker != r.workerAddress {
			continue
		}
		r.mu.Lock()
		r.alerted = true
		r.alertedBlock = event.BlockNumber
		r.mu.Unlock()
		metrics.SetAlerted(true)

		r.logger.Error("relay entered alerted state",
			zap.Uint64("block", event.BlockNumber),
			zap.Stringer("tx_hash", event.TxHash))
	}
}

func (r *Relayer) balances(ctx context.Context) (manager, worker *big.Int, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		balance, err := r.chain.BalanceAt(gctx, r.managerAddress)
		if err != nil {
			return fmt.Errorf("failed to get manager balance: %w", err)
		}
		manager = balance
		return nil
	})
	g.Go(func() error {
		balance, err := r.chain.BalanceAt(gctx, r.workerAddress)
		if err != nil {
			return fmt.Errorf("failed to get worker balance: %w", err)
		}
		worker = balance
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return manager, worker, nil
}

func (r *Relayer) setReadyState(ready bool) {
	r.mu.Lock()
	wasReady := r.isReady()
	rounds := r.successfulRounds
	r.ready = ready
	nowReady := r.isReady()
	r.mu.Unlock()
	metrics.SetReady(nowReady)

	if wasReady == ready {
		return
	}
	switch {
	case !ready:
		r.logger.Warn("Relayer state: NOT-READY")
	case rounds < r.cfg.SuccessfulRoundsForReady:
		r.logger.Warn(fmt.Sprintf("Relayer state: almost READY (in %d rounds)", r.cfg.SuccessfulRoundsForReady-rounds))
	default:
		r.logger.Warn("Relayer state: READY")
	}
}

// IsReady reports whether the relayer accepts relay requests.
func (r *Relayer) IsReady() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.isReady()
}

func (r *Relayer) isReady() bool {
	return r.ready && r.successfulRounds >= r.cfg.SuccessfulRoundsForReady
}

func (r *Relayer) IsAlerted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.alerted
}

func (r *Relayer) LastScannedBlock() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastScannedBlock
}

// GetMinGasPrice is the gas price computed at the last state refresh.
func (r *Relayer) GetMinGasPrice() *big.Int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return new(big.Int).Set(r.gasPrice)
}

func (r *Relayer) GetChainInfo() relay.ChainInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return relay.ChainInfo{
		RelayWorkerAddress:  r.workerAddress,
		RelayManagerAddress: r.managerAddress,
		RelayHubAddress:     r.hub.Address(),
		FeesReceiver:        r.cfg.FeesReceiver,
		MinGasPrice:         r.gasPrice.String(),
		ChainID:             bigString(r.chainID),
		NetworkID:           bigString(r.networkID),
		Ready:               r.isReady(),
		Version:             r.cfg.Version,
	}
}

func (r *Relayer) isInitialized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.initialized
}

func isActiveEvent(name relay.HubEventName) bool {
	for _, active := range relay.ActiveEventNames {
		if name == active {
			return true
		}
	}
	return false
}

func bigString(v *big.Int) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// alertedDelay is a random delay in [min, max].
func alertedDelay(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo+1)
}
