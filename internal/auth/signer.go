package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/domain"
)

// Meeting SDK bounds for signature lifetime, in seconds.
const (
	minTTLSeconds     = 1800
	maxTTLSeconds     = 172800
	defaultTTLSeconds = 3600
)

// MeetingClaims is the Meeting SDK signature payload. Field names follow
// the claim set the SDK verifies; mn is always the string form of the
// meeting number regardless of how the client sent it.
type MeetingClaims struct {
	AppKey          string `json:"appKey"`
	MeetingNumber   string `json:"mn"`
	Role            int    `json:"role"`
	TokenExp        int64  `json:"tokenExp"`
	VideoWebRTCMode int    `json:"videoWebRtcMode"`
	jwt.RegisteredClaims
}

// Signer issues HS256 Meeting SDK signatures.
type Signer struct {
	appKey string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner builds a signer. TTL values outside the range the Meeting SDK
// accepts are clamped rather than rejected.
func NewSigner(appKey, secret string, ttlSeconds int) *Signer {
	switch {
	case ttlSeconds <= 0:
		ttlSeconds = defaultTTLSeconds
	case ttlSeconds < minTTLSeconds:
		ttlSeconds = minTTLSeconds
	case ttlSeconds > maxTTLSeconds:
		ttlSeconds = maxTTLSeconds
	}
	return &Signer{
		appKey: appKey,
		secret: []byte(secret),
		ttl:    time.Duration(ttlSeconds) * time.Second,
		now:    time.Now,
	}
}

// SetClock overrides the signer's time source.
func (s *Signer) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// AppKey returns the public SDK key echoed in responses.
func (s *Signer) AppKey() string {
	return s.appKey
}

// TTL returns the configured signature lifetime after clamping.
func (s *Signer) TTL() time.Duration {
	return s.ttl
}

// NewClaims assembles the claim set for one signature. Timestamps are
// computed exactly once here; re-signing the same claims after a role
// change keeps the original iat and exp.
func (s *Signer) NewClaims(meetingNumber string, role domain.Role, videoMode int) MeetingClaims {
	issuedAt := s.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)
	return MeetingClaims{
		AppKey:          s.appKey,
		MeetingNumber:   meetingNumber,
		Role:            int(role),
		TokenExp:        expiresAt.Unix(),
		VideoWebRTCMode: videoMode,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
}

// Sign serializes and signs the claims. Signing is deterministic: the
// same claims always produce byte-identical output.
func (s *Signer) Sign(claims MeetingClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseSignature validates a signature and returns its claims.
func (s *Signer) ParseSignature(signature string) (*MeetingClaims, error) {
	parsed, err := jwt.ParseWithClaims(signature, &MeetingClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*MeetingClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid signature claims")
	}
	return claims, nil
}
