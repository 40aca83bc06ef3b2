package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/query-desk/internal/events"
)

// NotificationService logs lifecycle events as they happen. Actual delivery
// channels are out of scope; the hooks are where they would attach.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{dispatcher: dispatcher, logger: logger}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventQuerySubmitted, n.handleQuerySubmitted)
	n.dispatcher.Subscribe(events.EventQueryStatusChanged, n.handleQueryStatusChanged)
	n.dispatcher.Subscribe(events.EventQueryAssigned, n.handleQueryAssigned)
	n.dispatcher.Subscribe(events.EventAccountRegistered, n.handleAccountRegistered)
}

func (n *NotificationService) handleQuerySubmitted(_ context.Context, event events.Event) error {
	n.logger.Info("QuerySubmitted",
		zap.Int64("query_id", event.QueryID),
		zap.String("client", event.Actor.Username),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleQueryStatusChanged(_ context.Context, event events.Event) error {
	n.logger.Info("QueryStatusChanged",
		zap.Int64("query_id", event.QueryID),
		zap.String("actor", event.Actor.Username),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleQueryAssigned(_ context.Context, event events.Event) error {
	n.logger.Info("QueryAssigned",
		zap.Int64("query_id", event.QueryID),
		zap.String("actor", event.Actor.Username),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleAccountRegistered(_ context.Context, event events.Event) error {
	n.logger.Info("AccountRegistered", zap.Any("payload", event.Payload))
	return nil
}
