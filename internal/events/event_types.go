package events

import (
	"time"

	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSignatureIssued  EventType = "signature_issued"
	EventSignatureDemoted EventType = "signature_demoted"
	EventSignRejected     EventType = "sign_rejected"
)

// Event represents a pipeline outcome emitted by the signature service.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// SignatureIssuedPayload describes a successfully issued signature.
type SignatureIssuedPayload struct {
	MeetingNumber string      `json:"meeting_number"`
	Role          domain.Role `json:"role"`
	Elevated      bool        `json:"elevated"`
}

// SignatureDemotedPayload describes a host whose elevation failed and who
// was silently re-issued an attendee signature.
type SignatureDemotedPayload struct {
	MeetingNumber string `json:"meeting_number"`
	Reason        string `json:"reason"`
}

// SignRejectedPayload describes a request refused before signing.
type SignRejectedPayload struct {
	MeetingNumber string `json:"meeting_number,omitempty"`
	Code          string `json:"code"`
	Status        int    `json:"status"`
}
