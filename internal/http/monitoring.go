package http

import (
	"net/http"

	nlogger "github.com/neutron-org/neutron-logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rsksmart/rif-relay-server-sub000/internal/metrics"
	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

const MonitoringLoggerContext = "monitoring"

// PromWrapper refreshes the storage backed gauges before every scrape.
type PromWrapper struct {
	promHandler http.Handler
	storage     relay.Storage
	logger      *zap.Logger
}

func NewPromWrapper(logRegistry *nlogger.Registry, storage relay.Storage) PromWrapper {
	return PromWrapper{
		promHandler: promhttp.Handler(),
		storage:     storage,
		logger:      logRegistry.Get(MonitoringLoggerContext),
	}
}

func (p PromWrapper) FillPendingTxsMetric() {
	txs, err := p.storage.GetAll()
	if err != nil {
		p.logger.Error("failed to get pending txs from storage", zap.Error(err))
		return
	}
	metrics.SetPendingTxs(len(txs))
}

func (p PromWrapper) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	p.FillPendingTxsMetric()
	p.promHandler.ServeHTTP(res, req)
}
