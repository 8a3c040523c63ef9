package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/events"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/observability"
)

// AuditService turns pipeline events into the audit log and the outcome
// counters on /metrics. Demotions happen silently from the client's point
// of view, so this trail is the only place operators can see them.
type AuditService struct {
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to pipeline events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventSignatureIssued, a.handleSignatureIssued)
	a.dispatcher.Subscribe(events.EventSignatureDemoted, a.handleSignatureDemoted)
	a.dispatcher.Subscribe(events.EventSignRejected, a.handleSignRejected)
}

func (a *AuditService) handleSignatureIssued(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SignatureIssuedPayload)
	if !ok {
		return nil
	}
	a.metrics.RecordOutcome("signature_issued_" + payload.Role.String())
	if payload.Elevated {
		a.metrics.RecordOutcome("zak_attached")
	}
	a.logger.Info("SignatureIssued",
		zap.String("request_id", event.RequestID),
		zap.String("meeting_number", payload.MeetingNumber),
		zap.String("role", payload.Role.String()),
		zap.Bool("elevated", payload.Elevated),
	)
	return nil
}

func (a *AuditService) handleSignatureDemoted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SignatureDemotedPayload)
	if !ok {
		return nil
	}
	a.metrics.RecordOutcome("host_demotions")
	a.logger.Warn("SignatureDemoted",
		zap.String("request_id", event.RequestID),
		zap.String("meeting_number", payload.MeetingNumber),
		zap.String("reason", payload.Reason),
	)
	return nil
}

func (a *AuditService) handleSignRejected(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SignRejectedPayload)
	if !ok {
		return nil
	}
	a.metrics.RecordOutcome("rejected_" + payload.Code)
	a.logger.Info("SignRejected",
		zap.String("request_id", event.RequestID),
		zap.String("meeting_number", payload.MeetingNumber),
		zap.String("code", payload.Code),
		zap.Int("status", payload.Status),
	)
	return nil
}
