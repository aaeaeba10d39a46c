package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/config"
	"github.com/spec-kit/helpdesk-sla/internal/domain"
	"github.com/spec-kit/helpdesk-sla/internal/events"
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
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketUpdated, n.handleTicketUpdated)
	n.dispatcher.Subscribe(events.EventTicketEscalated, n.handleTicketEscalated)
	n.dispatcher.Subscribe(events.EventSLABreached, n.handleSLABreached)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketCreated", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketUpdated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketUpdated", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleTicketEscalated(ctx context.Context, event events.Event) error {
	n.logger.Info("TicketEscalated", zap.Int64("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	payload, ok := event.Payload.(events.TicketEscalatedPayload)
	if !ok {
		return nil
	}
	return n.postSlack(ctx, event, slack.Attachment{
		Color: "warning",
		Title: fmt.Sprintf("Ticket #%d escalated to %s", event.TicketID, payload.NewPriority),
		Text:  payload.Reason,
		Fields: []slack.AttachmentField{
			{Title: "From", Value: string(payload.OldPriority), Short: true},
			{Title: "To", Value: string(payload.NewPriority), Short: true},
		},
	})
}

func (n *NotificationService) handleSLABreached(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SLABreachedPayload)
	if !ok {
		n.logger.Warn("SLABreached with unexpected payload", zap.Int64("ticket_id", event.TicketID))
		return nil
	}
	b := payload.Breach
	n.logger.Warn("SLABreached",
		zap.Int64("ticket_id", b.TicketID),
		zap.String("breach_type", string(b.BreachType)),
		zap.Duration("breach_duration", b.BreachDuration),
		zap.String("priority", string(b.Priority)),
		zap.String("customer_tier", string(b.CustomerTier)),
	)
	return n.postSlack(ctx, event, breachAttachment(b))
}

func (n *NotificationService) postSlack(ctx context.Context, event events.Event, attachment slack.Attachment) error {
	url := strings.TrimSpace(n.cfg.SlackWebhookURL)
	if url == "" {
		return nil
	}
	msg := &slack.WebhookMessage{
		Channel:     n.cfg.SlackChannel,
		Text:        attachment.Title,
		Attachments: []slack.Attachment{attachment},
	}
	if err := slack.PostWebhookContext(ctx, url, msg); err != nil {
		n.logger.Error("slack webhook failed",
			zap.Int64("ticket_id", event.TicketID),
			zap.String("event_type", string(event.Type)),
			zap.Error(err))
		return fmt.Errorf("slack webhook: %w", err)
	}
	return nil
}

func breachAttachment(b domain.BreachRecord) slack.Attachment {
	return slack.Attachment{
		Color: "danger",
		Title: fmt.Sprintf("SLA breach on ticket #%d: %s", b.TicketID, strings.ReplaceAll(string(b.BreachType), "_", " ")),
		Fields: []slack.AttachmentField{
			{Title: "Overdue by", Value: b.BreachDuration.Round(time.Second).String(), Short: true},
			{Title: "Due", Value: b.DueAt.UTC().Format("2006-01-02 15:04 MST"), Short: true},
			{Title: "Priority", Value: string(b.Priority), Short: true},
			{Title: "Customer tier", Value: string(b.CustomerTier), Short: true},
		},
	}
}
