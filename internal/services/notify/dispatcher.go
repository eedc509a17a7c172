package notify

import (
	"context"
	"encoding/json"
	"strconv"

	"go.uber.org/zap"
)

const (
	EventNewMatch            = "new-match"
	EventNewMessage          = "new-message"
	EventMessageNotification = "message-notification"
	EventMessageDeleted      = "message-deleted"
)

// Envelope is the wire shape of every real-time event. Websocket clients
// receive it verbatim.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Dispatcher fans domain events out to per-user and per-match channels.
// Delivery is best effort: failures are logged and never surfaced to the
// caller, so a broken broker cannot fail a swipe or a message send.
type Dispatcher struct {
	publisher Publisher
	logger    *zap.Logger
}

func NewDispatcher(publisher Publisher, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		publisher: publisher,
		logger:    logger,
	}
}

func (d *Dispatcher) NotifyUser(ctx context.Context, userID int64, event string, data interface{}) {
	d.publish(ctx, UserChannel(userID), event, data)
}

func (d *Dispatcher) NotifyMatch(ctx context.Context, matchID int64, event string, data interface{}) {
	d.publish(ctx, MatchChannel(matchID), event, data)
}

func (d *Dispatcher) publish(ctx context.Context, channel, event string, data interface{}) {
	if d == nil || d.publisher == nil {
		return
	}

	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		d.logger.Warn("marshal realtime event",
			zap.String("channel", channel),
			zap.String("event", event),
			zap.Error(err),
		)
		return
	}

	if err := d.publisher.Publish(ctx, channel, payload); err != nil {
		d.logger.Warn("publish realtime event",
			zap.String("channel", channel),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}

func UserChannel(userID int64) string {
	return "user-" + strconv.FormatInt(userID, 10)
}

func MatchChannel(matchID int64) string {
	return "match-" + strconv.FormatInt(matchID, 10)
}
