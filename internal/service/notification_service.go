package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/donation-service/internal/config"
	"github.com/spec-kit/donation-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
// Delivery mechanics stay out of scope; handlers log stub deliveries.
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
	n.dispatcher.Subscribe(events.EventAlertCreated, n.handleAlertCreated)
	n.dispatcher.Subscribe(events.EventAlertStatusChanged, n.handleAlertStatusChanged)
	n.dispatcher.Subscribe(events.EventDonorNotified, n.handleDonorNotified)
	n.dispatcher.Subscribe(events.EventDonorAwarded, n.handleDonorAwarded)
}

func (n *NotificationService) handleAlertCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("AlertCreated", zap.String("alert_id", event.AlertID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleAlertStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("AlertStatusChanged", zap.String("alert_id", event.AlertID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleDonorNotified(ctx context.Context, event events.Event) error {
	n.logger.Info("DonorNotified", zap.String("alert_id", event.AlertID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleDonorAwarded(ctx context.Context, event events.Event) error {
	n.logger.Info("DonorAwarded", zap.String("alert_id", event.AlertID), zap.Any("payload", event.Payload))
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("alert_id", event.AlertID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("alert_id", event.AlertID),
		zap.String("event_type", string(event.Type)))
}
