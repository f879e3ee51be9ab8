package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/opskit/absence-service/internal/config"
	"github.com/opskit/absence-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventAbsenceCreated, n.handleAbsenceCreated)
	n.dispatcher.Subscribe(events.EventAbsenceStatusChanged, n.handleAbsenceStatusChanged)
	n.dispatcher.Subscribe(events.EventAbsenceDeleted, n.handleAbsenceDeleted)
}

func (n *NotificationService) handleAbsenceCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("AbsenceCreated", zap.String("absence_id", event.AbsenceID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAbsenceStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("AbsenceStatusChanged", zap.String("absence_id", event.AbsenceID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAbsenceDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("AbsenceDeleted", zap.String("absence_id", event.AbsenceID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("absence_id", event.AbsenceID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("absence_id", event.AbsenceID),
		zap.String("event_type", string(event.Type)))
}
