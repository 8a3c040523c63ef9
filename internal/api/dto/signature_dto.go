package dto

import (
	"errors"
	"strings"
)

// minUUIDLength is the shortest identity reference the roster issues.
const minUUIDLength = 10

const maxMeetingNumberDigits = 16

// MeetingNumber accepts both JSON forms Meeting SDK clients send:
// a bare number (9876543210) or a numeric string ("9876543210").
// It always carries the canonical string form.
type MeetingNumber string

var errMeetingNumber = errors.New("meetingNumber must be a number or a numeric string")

func (m *MeetingNumber) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" {
		*m = ""
		return nil
	}
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = strings.TrimSpace(raw[1 : len(raw)-1])
	}
	if raw == "" {
		*m = ""
		return nil
	}
	if !isDigits(raw) {
		return errMeetingNumber
	}
	*m = MeetingNumber(raw)
	return nil
}

func (m MeetingNumber) String() string {
	return string(m)
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// SignatureRequest is the join-authorization payload.
type SignatureRequest struct {
	UUID            string        `json:"uuid"`
	MeetingNumber   MeetingNumber `json:"meetingNumber"`
	VideoWebRTCMode *int          `json:"videoWebRtcMode"`
}

// Validate checks field constraints and returns one detail entry per
// offending field, empty when the request is well formed.
func (r *SignatureRequest) Validate() map[string]any {
	details := map[string]any{}

	uuid := strings.TrimSpace(r.UUID)
	if uuid == "" {
		details["uuid"] = "is required"
	} else if len(uuid) < minUUIDLength {
		details["uuid"] = "must be at least 10 characters"
	}

	mn := r.MeetingNumber.String()
	switch {
	case mn == "":
		details["meetingNumber"] = "is required"
	case len(mn) > maxMeetingNumberDigits:
		details["meetingNumber"] = "exceeds maximum length"
	}

	if r.VideoWebRTCMode != nil && *r.VideoWebRTCMode != 0 && *r.VideoWebRTCMode != 1 {
		details["videoWebRtcMode"] = "must be 0 or 1"
	}

	if len(details) == 0 {
		return nil
	}
	return details
}

// NormalizedUUID returns the trimmed identity reference used for lookups.
func (r *SignatureRequest) NormalizedUUID() string {
	return strings.TrimSpace(r.UUID)
}

// SignatureResponse is the success payload consumed by Meeting SDK clients.
// ZAK is present only when the final role is host and elevation succeeded.
type SignatureResponse struct {
	Signature string `json:"signature"`
	SDKKey    string `json:"sdkKey"`
	ZAK       string `json:"zak,omitempty"`
}
