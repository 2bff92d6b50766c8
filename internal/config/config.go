package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const ConfigPrefix = "RELAYER"

// RelayServerConfig is read from RELAYER_ prefixed env vars, e.g. RELAYER_APP_RELAY_HUB_ADDRESS.
// Amounts are in wei.
type RelayServerConfig struct {
	App        AppConfig
	Blockchain BlockchainConfig
	Storage    StorageConfig
	Webserver  WebserverConfig
}

type AppConfig struct {
	URL              string           `default:"http://localhost:8090"`
	RelayHubAddress  common.Address   `split_words:"true"`
	TrustedVerifiers []common.Address `split_words:"true"`
	// FeesReceiver defaults to the worker when empty.
	FeesReceiver    common.Address `split_words:"true"`
	DevMode         bool           `split_words:"true" default:"false"`
	Workdir         string         `default:"./environment"`
	ManagerMnemonic string         `split_words:"true"`
	WorkerMnemonic  string         `split_words:"true"`

	CheckInterval             time.Duration `split_words:"true" default:"10s"`
	ReadyTimeout              time.Duration `split_words:"true" default:"30s"`
	SuccessfulRoundsForReady  int           `split_words:"true" default:"3"`
	RefreshStateTimeoutBlocks uint64        `split_words:"true" default:"5"`
	RegistrationBlockRate     uint64        `split_words:"true" default:"0"`
	AlertedBlockDelay         uint64        `split_words:"true" default:"0"`
	MinAlertedDelay           time.Duration `split_words:"true" default:"1s"`
	MaxAlertedDelay           time.Duration `split_words:"true" default:"10s"`
	EventsBuffer              int           `split_words:"true" default:"64"`

	RequestMinValidSeconds int64           `split_words:"true" default:"43200"`
	DisableSponsoredTx     bool            `split_words:"true" default:"false"`
	FeePercentage          decimal.Decimal `split_words:"true" default:"0"`
	MaxGasDeviation        decimal.Decimal `split_words:"true" default:"0.1"`
}

type BlockchainConfig struct {
	RPCURL           string        `envconfig:"RPC_URL" default:"http://localhost:4444"`
	RPCTimeout       time.Duration `envconfig:"RPC_TIMEOUT" default:"10s"`
	RPCRetryAttempts uint          `envconfig:"RPC_RETRY_ATTEMPTS" default:"3"`
	RPCRetryDelay    time.Duration `envconfig:"RPC_RETRY_DELAY" default:"1s"`

	GasPriceFactor      decimal.Decimal `split_words:"true" default:"1"`
	MinGasPrice         decimal.Decimal `split_words:"true" default:"60000000"`
	MaxGasPrice         decimal.Decimal `split_words:"true" default:"100000000000"`
	RetryGasPriceFactor decimal.Decimal `split_words:"true" default:"1.2"`
	GasEstimationFactor decimal.Decimal `split_words:"true" default:"1"`
	DefaultGasLimit     uint64          `split_words:"true" default:"500000"`

	PendingTransactionTimeoutBlocks uint64 `split_words:"true" default:"30"`
	ConfirmationsNeeded             uint64 `split_words:"true" default:"12"`

	WorkerMinBalance    decimal.Decimal `split_words:"true" default:"1000000000000000"`
	WorkerTargetBalance decimal.Decimal `split_words:"true" default:"3000000000000000"`
	ManagerMinBalance   decimal.Decimal `split_words:"true" default:"1000000000000000"`
	ManagerMinStake     decimal.Decimal `split_words:"true" default:"1"`
}

type StorageConfig struct {
	Path string `default:"./environment/storage"`
}

type WebserverConfig struct {
	ListenAddr string `split_words:"true" default:":8090"`
}

func NewRelayServerConfig() (RelayServerConfig, error) {
	var cfg RelayServerConfig
	if err := envconfig.Process(ConfigPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to process config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate rejects the combinations the server can not run with.
func (c RelayServerConfig) Validate() error {
	var errs []error
	if c.App.RelayHubAddress == (common.Address{}) {
		errs = append(errs, errors.New("relay hub address is required"))
	}
	if c.App.MaxAlertedDelay < c.App.MinAlertedDelay {
		errs = append(errs, fmt.Errorf("max alerted delay %s is lower than min alerted delay %s",
			c.App.MaxAlertedDelay, c.App.MinAlertedDelay))
	}
	if c.App.CheckInterval <= 0 {
		errs = append(errs, fmt.Errorf("check interval must be positive, got %s", c.App.CheckInterval))
	}
	if c.App.SuccessfulRoundsForReady < 1 {
		errs = append(errs, fmt.Errorf("successful rounds for ready must be positive, got %d", c.App.SuccessfulRoundsForReady))
	}
	if c.App.MaxGasDeviation.IsNegative() || c.App.MaxGasDeviation.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, fmt.Errorf("max gas deviation must be in [0, 1], got %s", c.App.MaxGasDeviation))
	}
	if !c.Blockchain.RetryGasPriceFactor.GreaterThan(decimal.NewFromInt(1)) {
		errs = append(errs, fmt.Errorf("retry gas price factor must be greater than 1, got %s", c.Blockchain.RetryGasPriceFactor))
	}
	if c.Blockchain.WorkerTargetBalance.LessThan(c.Blockchain.WorkerMinBalance) {
		errs = append(errs, fmt.Errorf("worker target balance %s is lower than worker min balance %s",
			c.Blockchain.WorkerTargetBalance, c.Blockchain.WorkerMinBalance))
	}
	if c.Blockchain.MaxGasPrice.LessThan(c.Blockchain.MinGasPrice) {
		errs = append(errs, fmt.Errorf("max gas price %s is lower than min gas price %s",
			c.Blockchain.MaxGasPrice, c.Blockchain.MinGasPrice))
	}
	return errors.Join(errs...)
}
