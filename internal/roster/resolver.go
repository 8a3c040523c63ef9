package roster

import (
	"context"
	"strconv"
	"strings"

	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/domain"
)

// Resolver looks up a participant by the externally issued UUID.
//
// The (nil, nil) return means unknown identity: no record matched, or the
// store answered with a non-success status. Callers turn that into a 401.
// A non-nil error means the lookup itself failed and maps to a 500.
type Resolver interface {
	Resolve(ctx context.Context, uuid string) (*domain.Participant, error)
}

// roleFromAttribute maps the trusted Role attribute to a signature role.
// Only a value reading as integer 1 grants host; everything else,
// including absence or junk, is attendee.
func roleFromAttribute(v any) domain.Role {
	switch val := v.(type) {
	case float64:
		if val == 1 {
			return domain.RoleHost
		}
	case int:
		if val == 1 {
			return domain.RoleHost
		}
	case int64:
		if val == 1 {
			return domain.RoleHost
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil && n == 1 {
			return domain.RoleHost
		}
	}
	return domain.RoleAttendee
}

// contactFromAttribute returns the trimmed contact email, or "" when the
// attribute is absent, blank or not a string.
func contactFromAttribute(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// allowedMeetingsFromAttribute normalizes the optional allow-list
// attribute. Record stores hand it back either as a multi-value array or
// as one comma separated string.
func allowedMeetingsFromAttribute(v any) []string {
	switch val := v.(type) {
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			switch entry := item.(type) {
			case string:
				if trimmed := strings.TrimSpace(entry); trimmed != "" {
					out = append(out, trimmed)
				}
			case float64:
				out = append(out, strconv.FormatInt(int64(entry), 10))
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case string:
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	}
	return nil
}
