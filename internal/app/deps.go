package app

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	nlogger "github.com/neutron-org/neutron-logger"

	"github.com/rsksmart/rif-relay-server-sub000/internal/chain"
	"github.com/rsksmart/rif-relay-server-sub000/internal/config"
	"github.com/rsksmart/rif-relay-server-sub000/internal/keyring"
	"github.com/rsksmart/rif-relay-server-sub000/internal/pricing"
	"github.com/rsksmart/rif-relay-server-sub000/internal/registration"
	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
	"github.com/rsksmart/rif-relay-server-sub000/internal/relayer"
	"github.com/rsksmart/rif-relay-server-sub000/internal/replenish"
	"github.com/rsksmart/rif-relay-server-sub000/internal/submit"
)

type DependencyContainer struct {
	Hub          *chain.Hub
	TxManager    *submit.TxManager
	Oracle       *pricing.Oracle
	Registration *registration.RegistrationManager
	Replenisher  replenish.Policy
	Notifier     *relayer.Notifier
}

func NewDefaultDependencyContainer(
	cfg config.RelayServerConfig,
	logRegistry *nlogger.Registry,
	client *chain.Client,
	storage relay.Storage,
	managerKeys, workerKeys *keyring.KeyManager,
) (*DependencyContainer, error) {
	hub, err := chain.NewHub(cfg.App.RelayHubAddress, managerKeys.Address(0), client)
	if err != nil {
		return nil, fmt.Errorf("cannot create relay hub: %w", err)
	}

	txManager := submit.NewTxManager(submit.Config{
		PendingTransactionTimeoutBlocks: cfg.Blockchain.PendingTransactionTimeoutBlocks,
		ConfirmationsNeeded:             cfg.Blockchain.ConfirmationsNeeded,
		RetryGasPriceFactor:             cfg.Blockchain.RetryGasPriceFactor,
		MaxGasPrice:                     cfg.Blockchain.MaxGasPrice.BigInt(),
	}, client, managerKeys, workerKeys, storage, logRegistry.Get(TxManagerContext))

	oracle := pricing.NewOracle(pricing.Config{
		GasPriceFactor:   cfg.Blockchain.GasPriceFactor,
		MinGasPrice:      cfg.Blockchain.MinGasPrice.BigInt(),
		EstimationFactor: cfg.Blockchain.GasEstimationFactor,
		FeePercentage:    cfg.App.FeePercentage,
	}, client, hub)

	// registration and replenishment report to the relayer listeners through the notifier
	notifier := relayer.NewNotifier(cfg.App.EventsBuffer, logRegistry.Get(RelayerContext))

	registrationManager := registration.NewRegistrationManager(registration.Config{
		URL:               cfg.App.URL,
		ManagerMinBalance: cfg.Blockchain.ManagerMinBalance.BigInt(),
		ManagerMinStake:   cfg.Blockchain.ManagerMinStake.BigInt(),
		DefaultGasLimit:   cfg.Blockchain.DefaultGasLimit,
	}, client, hub, txManager, storage, notifier, logRegistry.Get(RegistrationContext))

	replenisher := replenish.NewDefault(replenish.Config{
		ManagerMinBalance:   cfg.Blockchain.ManagerMinBalance.BigInt(),
		WorkerMinBalance:    cfg.Blockchain.WorkerMinBalance.BigInt(),
		WorkerTargetBalance: cfg.Blockchain.WorkerTargetBalance.BigInt(),
	}, client, txManager, storage, notifier, logRegistry.Get(ReplenishContext))

	return &DependencyContainer{
		Hub:          hub,
		TxManager:    txManager,
		Oracle:       oracle,
		Registration: registrationManager,
		Replenisher:  replenisher,
		Notifier:     notifier,
	}, nil
}

func NewDefaultRelayer(
	cfg config.RelayServerConfig,
	logRegistry *nlogger.Registry,
	client *chain.Client,
	storage relay.Storage,
	deps *DependencyContainer,
) *relayer.Relayer {
	feesReceiver := cfg.App.FeesReceiver
	if feesReceiver == (common.Address{}) {
		feesReceiver = deps.TxManager.WorkerAddress()
	}

	return relayer.NewRelayer(relayer.Config{
		RelayHubAddress:           cfg.App.RelayHubAddress,
		FeesReceiver:              feesReceiver,
		TrustedVerifiers:          cfg.App.TrustedVerifiers,
		DevMode:                   cfg.App.DevMode,
		Version:                   Version,
		CheckInterval:             cfg.App.CheckInterval,
		ReadyTimeout:              cfg.App.ReadyTimeout,
		SuccessfulRoundsForReady:  cfg.App.SuccessfulRoundsForReady,
		RefreshStateTimeoutBlocks: cfg.App.RefreshStateTimeoutBlocks,
		RegistrationBlockRate:     cfg.App.RegistrationBlockRate,
		AlertedBlockDelay:         cfg.App.AlertedBlockDelay,
		MinAlertedDelay:           cfg.App.MinAlertedDelay,
		MaxAlertedDelay:           cfg.App.MaxAlertedDelay,
		RequestMinValidSeconds:    cfg.App.RequestMinValidSeconds,
		DisableSponsoredTx:        cfg.App.DisableSponsoredTx,
		MaxGasDeviation:           cfg.App.MaxGasDeviation,
		WorkerMinBalance:          cfg.Blockchain.WorkerMinBalance.BigInt(),
	}, relayer.Deps{
		Chain:        client,
		Hub:          deps.Hub,
		TxManager:    deps.TxManager,
		Oracle:       deps.Oracle,
		Storage:      storage,
		Registration: deps.Registration,
		Replenisher:  deps.Replenisher,
		Notifier:     deps.Notifier,
	}, logRegistry.Get(RelayerContext))
}
