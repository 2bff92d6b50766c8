package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	nlogger "github.com/neutron-org/neutron-logger"
	"go.uber.org/zap"

	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
	"github.com/rsksmart/rif-relay-server-sub000/internal/relayer"
)

const (
	ServerContext = "http"

	ChainInfoResource        = "/chain-info"
	RelayResource            = "/relay"
	ValidateMaxNonceResource = "/validate-max-nonce"
	StatusResource           = "/status"
	MinGasPriceResource      = "/min-gas-price"
	PendingTxsResource       = "/pending-txs"
	PrometheusMetrics        = "/metrics"

	maxBodySize     = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Dispatcher runs relayer commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd relayer.Command, params json.RawMessage) (interface{}, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

type statusResponse struct {
	Ready bool `json:"ready"`
}

func Run(ctx context.Context, logRegistry *nlogger.Registry, dispatcher Dispatcher, storage relay.Storage, listenAddr string) error {
	server := &http.Server{
		Addr:              listenAddr,
		Handler:           Router(logRegistry, dispatcher, storage),
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger := logRegistry.Get(ServerContext)
	errch := make(chan error, 1)

	go func() {
		logger.Info("starting http server", zap.String("listen_addr", listenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to serve http", zap.Error(err))
			errch <- err
		}
	}()

	select {
	case err := <-errch:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down the http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown http server gracefully", zap.Error(err))
		return nil
	}

	logger.Info("http server shut down successfully")
	return nil
}

func Router(logRegistry *nlogger.Registry, dispatcher Dispatcher, storage relay.Storage) *mux.Router {
	logger := logRegistry.Get(ServerContext)
	promHandler := NewPromWrapper(logRegistry, storage)

	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc(ChainInfoResource, command(logger, dispatcher, relayer.CommandGetChainInfo)).Methods(http.MethodGet)
	router.HandleFunc(RelayResource, command(logger, dispatcher, relayer.CommandCreateRelayTransaction)).Methods(http.MethodPost)
	router.HandleFunc(ValidateMaxNonceResource, command(logger, dispatcher, relayer.CommandValidateMaxNonce)).Methods(http.MethodPost)
	router.HandleFunc(MinGasPriceResource, command(logger, dispatcher, relayer.CommandGetMinGasPrice)).Methods(http.MethodGet)
	router.HandleFunc(StatusResource, status(logger, dispatcher)).Methods(http.MethodGet)
	router.HandleFunc(PendingTxsResource, pendingTxs(logger, storage)).Methods(http.MethodGet)
	router.Handle(PrometheusMetrics, promHandler)
	return router
}

func command(logger *zap.Logger, dispatcher Dispatcher, cmd relayer.Command) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params json.RawMessage
		if r.Method == http.MethodPost {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
			if err != nil {
				writeJSON(logger, w, http.StatusBadRequest, errorResponse{Error: err.Error()})
				return
			}
			params = body
		}

		res, err := dispatcher.Dispatch(r.Context(), cmd, params)
		if err != nil {
			code := errorStatus(err)
			if code == http.StatusInternalServerError {
				logger.Error("failed to execute command", zap.Stringer("command", cmd), zap.Error(err))
			}
			writeJSON(logger, w, code, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(logger, w, http.StatusOK, res)
	}
}

func status(logger *zap.Logger, dispatcher Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := dispatcher.Dispatch(r.Context(), relayer.CommandIsReady, nil)
		if err != nil {
			writeJSON(logger, w, errorStatus(err), errorResponse{Error: err.Error()})
			return
		}
		ready, _ := res.(bool)
		code := http.StatusOK
		if !ready {
			code = http.StatusServiceUnavailable
		}
		writeJSON(logger, w, code, statusResponse{Ready: ready})
	}
}

func pendingTxs(logger *zap.Logger, storage relay.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := storage.GetAll()
		if err != nil {
			logger.Error("failed to execute GetAll", zap.Error(err))
			http.Error(w, "Error processing request", http.StatusInternalServerError)
			return
		}
		writeJSON(logger, w, http.StatusOK, res)
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, relay.ErrNotReady):
		return http.StatusServiceUnavailable
	case relayer.IsValidationError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
