package service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/api/dto"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/auth"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/config"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/domain"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/events"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/observability"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/roster"
	apperrors "github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/pkg/util"
)

// ZAKProvider supplies per-user Zoom Access Keys for host elevation.
type ZAKProvider interface {
	UserZAK(ctx context.Context, email string) (string, error)
}

// SignatureService runs the join-authorization pipeline: validate the
// request, resolve the participant, sign the claims, and attempt host
// elevation. Elevation failures never fail the request; the host is
// silently re-issued an attendee signature instead.
type SignatureService struct {
	signer           *auth.Signer
	resolver         roster.Resolver
	zak              ZAKProvider
	dispatcher       events.Dispatcher
	logger           *zap.Logger
	defaultVideoMode int
	enforceAllowList bool
}

// SignatureDependencies bundles collaborators for the signature service.
type SignatureDependencies struct {
	Signer     *auth.Signer
	Resolver   roster.Resolver
	ZAK        ZAKProvider
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewSignatureService builds the service.
func NewSignatureService(cfg config.Config, deps SignatureDependencies) *SignatureService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SignatureService{
		signer:           deps.Signer,
		resolver:         deps.Resolver,
		zak:              deps.ZAK,
		dispatcher:       deps.Dispatcher,
		logger:           logger,
		defaultVideoMode: cfg.Signature.DefaultVideoMode,
		enforceAllowList: cfg.Signature.EnforceAllowedMeetings,
	}
}

// elevationState tags the outcome of a ZAK fetch. Anything but granted
// demotes the host.
type elevationState int

const (
	elevationGranted elevationState = iota
	elevationEmpty
	elevationFailed
)

type elevationResult struct {
	state elevationState
	zak   string
	err   error
}

// Sign authorizes one join request and returns the signed response.
// Errors are DomainErrors carrying the HTTP status the handler should
// answer with.
func (s *SignatureService) Sign(ctx context.Context, req dto.SignatureRequest) (*dto.SignatureResponse, error) {
	if details := req.Validate(); details != nil {
		s.publishRejected(ctx, req.MeetingNumber.String(), "VALIDATION_FAILED", http.StatusBadRequest)
		return nil, apperrors.NewValidationError("invalid signature request", details)
	}

	participantUUID := req.NormalizedUUID()
	meetingNumber := req.MeetingNumber.String()

	participant, err := s.resolver.Resolve(ctx, participantUUID)
	if err != nil {
		s.logger.Error("roster resolution failed",
			zap.String("request_id", observability.RequestIDFromContext(ctx)),
			zap.Error(err),
		)
		s.publishRejected(ctx, meetingNumber, "INTERNAL_ERROR", http.StatusInternalServerError)
		return nil, apperrors.NewInternalError(err)
	}
	if participant == nil {
		s.publishRejected(ctx, meetingNumber, "UNAUTHORIZED", http.StatusUnauthorized)
		return nil, apperrors.NewUnauthorized("unknown participant")
	}

	if s.enforceAllowList && !participant.MeetingAllowed(meetingNumber) {
		s.publishRejected(ctx, meetingNumber, "FORBIDDEN", http.StatusForbidden)
		return nil, apperrors.NewForbidden("meeting not allowed for this participant")
	}

	videoMode := s.defaultVideoMode
	if req.VideoWebRTCMode != nil {
		videoMode = *req.VideoWebRTCMode
	}

	claims := s.signer.NewClaims(meetingNumber, participant.Role, videoMode)
	signature, err := s.signer.Sign(claims)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	response := &dto.SignatureResponse{Signature: signature, SDKKey: s.signer.AppKey()}
	finalRole := participant.Role
	elevated := false

	if participant.CanElevate() {
		result := s.fetchElevation(ctx, participant.ZoomEmail)
		if result.state == elevationGranted {
			response.ZAK = result.zak
			elevated = true
		} else {
			// Silent demotion: same claims re-signed with the attendee
			// role, keeping the original iat and exp.
			finalRole = domain.RoleAttendee
			claims.Role = int(finalRole)
			signature, err = s.signer.Sign(claims)
			if err != nil {
				return nil, apperrors.NewInternalError(err)
			}
			response.Signature = signature
			response.ZAK = ""

			reason := demotionReason(result)
			s.logger.Warn("host demoted to attendee",
				zap.String("request_id", observability.RequestIDFromContext(ctx)),
				zap.String("meeting_number", meetingNumber),
				zap.String("reason", reason),
				zap.Error(result.err),
			)
			s.publishEvent(ctx, events.Event{
				Type: events.EventSignatureDemoted,
				Payload: events.SignatureDemotedPayload{
					MeetingNumber: meetingNumber,
					Reason:        reason,
				},
			})
		}
	}

	s.publishEvent(ctx, events.Event{
		Type: events.EventSignatureIssued,
		Payload: events.SignatureIssuedPayload{
			MeetingNumber: meetingNumber,
			Role:          finalRole,
			Elevated:      elevated,
		},
	})
	return response, nil
}

func (s *SignatureService) fetchElevation(ctx context.Context, email string) elevationResult {
	zak, err := s.zak.UserZAK(ctx, email)
	if err != nil {
		return elevationResult{state: elevationFailed, err: err}
	}
	if zak == "" {
		return elevationResult{state: elevationEmpty}
	}
	return elevationResult{state: elevationGranted, zak: zak}
}

func demotionReason(result elevationResult) string {
	if result.state == elevationEmpty {
		return "empty elevation token"
	}
	return "elevation fetch failed"
}

func (s *SignatureService) publishRejected(ctx context.Context, meetingNumber, code string, status int) {
	s.publishEvent(ctx, events.Event{
		Type: events.EventSignRejected,
		Payload: events.SignRejectedPayload{
			MeetingNumber: meetingNumber,
			Code:          code,
			Status:        status,
		},
	})
}

func (s *SignatureService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = observability.RequestIDFromContext(ctx)
	}
	_ = s.dispatcher.Publish(ctx, event)
}
