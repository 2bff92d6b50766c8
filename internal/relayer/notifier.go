package relayer

import (
	"go.uber.org/zap"

	"github.com/rsksmart/rif-relay-server-sub000/internal/relay"
)

// Notifier publishes relay events to whoever reads Events. It never blocks the sender:
// an event that does not fit into the buffer is dropped and logged.
type Notifier struct {
	events chan relay.Event
	logger *zap.Logger
}

func NewNotifier(size int, logger *zap.Logger) *Notifier {
	return &Notifier{
		events: make(chan relay.Event, size),
		logger: logger,
	}
}

func (n *Notifier) Events() <-chan relay.Event {
	return n.events
}

func (n *Notifier) Unstaked() {
	n.emit(relay.Event{Kind: relay.EventUnstaked})
}

func (n *Notifier) Removed() {
	n.emit(relay.Event{Kind: relay.EventRemoved})
}

func (n *Notifier) FundingNeeded(message string) {
	n.emit(relay.Event{Kind: relay.EventFundingNeeded, Message: message})
}

func (n *Notifier) Error(err error) {
	n.emit(relay.Event{Kind: relay.EventError, Message: err.Error(), Err: err})
}

func (n *Notifier) emit(event relay.Event) {
	select {
	case n.events <- event:
	default:
		n.logger.Warn("event buffer is full, dropping event",
			zap.Stringer("kind", event.Kind),
			zap.String("message", event.Message))
	}
}
