package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	labelAction = "action"
	labelStep   = "step"
	labelType   = "type"
	typeSuccess = "success"
	typeFailed  = "failed"
)

var (
	relayRounds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_rounds",
		Help: "The total number of orchestrator rounds (counter)",
	}, []string{labelType})

	roundTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "round_time",
		Help:    "A histogram of orchestrator round duration",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 10, 30},
	}, []string{labelType})

	relayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_requests",
		Help: "The total number of relay requests (counter)",
	}, []string{labelType, labelStep})

	requestTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "request_time",
		Help:    "A histogram of relay requests duration",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 10, 30},
	}, []string{labelType})

	sentTxCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sent_txs",
		Help: "The total number of sent txs by server action (counter)",
	}, []string{labelAction, labelType})

	boostedTxCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "boosted_txs",
		Help: "The total number of resent txs with a boosted gas price (counter)",
	})

	removedTxCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "removed_txs",
		Help: "The total number of confirmed tx batches removed from storage (counter)",
	})

	pendingTxs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pending_txs",
		Help: "The total number of not yet confirmed txs in the storage",
	})

	relayerReady = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relayer_ready",
		Help: "1 if the relayer is ready to serve requests",
	})

	relayerAlerted = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relayer_alerted",
		Help: "1 if the relayer is in alerted state",
	})

	fundingNeeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "funding_needed",
		Help: "The total number of times the manager could not replenish the worker (counter)",
	})
)

func AddSuccessRound(dur float64) {
	relayRounds.With(prometheus.Labels{labelType: typeSuccess}).Inc()
	roundTime.With(prometheus.Labels{labelType: typeSuccess}).Observe(dur)
}

func AddFailedRound(dur float64) {
	relayRounds.With(prometheus.Labels{labelType: typeFailed}).Inc()
	roundTime.With(prometheus.Labels{labelType: typeFailed}).Observe(dur)
}

func AddSuccessRequest(dur float64) {
	relayRequests.With(prometheus.Labels{
		labelType: typeSuccess,
		labelStep: "",
	}).Inc()
	requestTime.With(prometheus.Labels{labelType: typeSuccess}).Observe(dur)
}

// AddFailedRequest records a relay request rejected at the given validation step.
func AddFailedRequest(step string, dur float64) {
	relayRequests.With(prometheus.Labels{
		labelType: typeFailed,
		labelStep: step,
	}).Inc()
	requestTime.With(prometheus.Labels{labelType: typeFailed}).Observe(dur)
}

func IncSuccessTxSend(action string) {
	sentTxCounter.With(prometheus.Labels{
		labelAction: action,
		labelType:   typeSuccess,
	}).Inc()
}

func IncFailedTxSend(action string) {
	sentTxCounter.With(prometheus.Labels{
		labelAction: action,
		labelType:   typeFailed,
	}).Inc()
}

func IncBoostedTxs() {
	boostedTxCounter.Inc()
}

func IncRemovedTxs() {
	removedTxCounter.Inc()
}

func IncFundingNeeded() {
	fundingNeeded.Inc()
}

func SetPendingTxs(size int) {
	pendingTxs.Set(float64(size))
}

func SetReady(ready bool) {
	relayerReady.Set(boolToFloat(ready))
}

func SetAlerted(alerted bool) {
	relayerAlerted.Set(boolToFloat(alerted))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
