package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	nlogger "github.com/neutron-org/neutron-logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rsksmart/rif-relay-server-sub000/internal/app"
	"github.com/rsksmart/rif-relay-server-sub000/internal/config"
	relayhttp "github.com/rsksmart/rif-relay-server-sub000/internal/http"
	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

const (
	mainContext = "main"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:          "start",
	Short:        "Start the relay server",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startServer()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}

func startServer() error {
	logRegistry, err := nlogger.NewRegistry(
		mainContext,
		app.AppContext,
		app.RelayerContext,
		app.TxManagerContext,
		app.RegistrationContext,
		app.ReplenishContext,
		app.ChainClientContext,
		app.KeyringContext,
		relayhttp.ServerContext,
		relayhttp.MonitoringLoggerContext,
	)
	if err != nil {
		log.Fatalf("couldn't initialize loggers registry: %s", err)
	}
	logger := logRegistry.Get(mainContext)
	logger.Info("rif-relay-server starts...", zap.String("version", app.Version), zap.String("commit", app.Commit))

	cfg, err := config.NewRelayServerConfig()
	if err != nil {
		logger.Fatal("cannot initialize relay server config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	var failed atomic.Bool

	// The storage has to be shared because of the LevelDB single process restriction.
	storage, err := app.NewDefaultStorage(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create NewDefaultStorage", zap.Error(err))
	}
	defer func(storage relay.Storage) {
		if err := storage.Close(); err != nil {
			logger.Error("failed to close storage", zap.Error(err))
		}
	}(storage)

	client, err := app.NewDefaultChainClient(ctx, cfg, logRegistry)
	if err != nil {
		logger.Fatal("failed to create NewDefaultChainClient", zap.Error(err))
	}
	defer client.Close()

	managerKeys, workerKeys, err := app.NewDefaultKeyManagers(cfg, logRegistry)
	if err != nil {
		logger.Fatal("failed to create NewDefaultKeyManagers", zap.Error(err))
	}

	deps, err := app.NewDefaultDependencyContainer(cfg, logRegistry, client, storage, managerKeys, workerKeys)
	if err != nil {
		logger.Fatal("failed to initialize dependency container", zap.Error(err))
	}
	relayer := app.NewDefaultRelayer(cfg, logRegistry, client, storage, deps)

	wg.Add(1)
	go func() {
		defer wg.Done()

		if err := relayhttp.Run(ctx, logRegistry, relayer, storage, cfg.Webserver.ListenAddr); err != nil {
			logger.Error("WebServer exited with an error", zap.Error(err))
			failed.Store(true)
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()

		if err := relayer.Run(ctx); err != nil {
			logger.Error("Relayer exited with an error", zap.Error(err))
			failed.Store(true)
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-relayer.Events():
				logger.Info("relayer event",
					zap.Stringer("kind", event.Kind),
					zap.String("message", event.Message))
			}
		}
	}()

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

		s := <-sigs
		logger.Info("Received termination signal, gracefully shutting down...",
			zap.String("signal", s.String()))
		cancel()
	}()

	wg.Wait()
	if failed.Load() {
		return errors.New("relay server stopped with an error")
	}
	return nil
}
