package roster

import (
	"reflect"
	"testing"

	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/domain"
)

func TestRoleFromAttribute(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want domain.Role
	}{
		{name: "json number one", in: float64(1), want: domain.RoleHost},
		{name: "int one", in: 1, want: domain.RoleHost},
		{name: "int64 one", in: int64(1), want: domain.RoleHost},
		{name: "string one", in: "1", want: domain.RoleHost},
		{name: "padded string one", in: " 1 ", want: domain.RoleHost},
		{name: "json number zero", in: float64(0), want: domain.RoleAttendee},
		{name: "string zero", in: "0", want: domain.RoleAttendee},
		{name: "other number", in: float64(2), want: domain.RoleAttendee},
		{name: "junk string", in: "host", want: domain.RoleAttendee},
		{name: "bool", in: true, want: domain.RoleAttendee},
		{name: "absent", in: nil, want: domain.RoleAttendee},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := roleFromAttribute(tc.in); got != tc.want {
				t.Errorf("roleFromAttribute(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestContactFromAttribute(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{name: "plain", in: "host@example.com", want: "host@example.com"},
		{name: "padded", in: "  host@example.com ", want: "host@example.com"},
		{name: "blank", in: "   ", want: ""},
		{name: "absent", in: nil, want: ""},
		{name: "wrong type", in: 42, want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := contactFromAttribute(tc.in); got != tc.want {
				t.Errorf("contactFromAttribute(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestAllowedMeetingsFromAttribute(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want []string
	}{
		{name: "array of strings", in: []any{"111", " 222 ", ""}, want: []string{"111", "222"}},
		{name: "array of numbers", in: []any{float64(111), float64(222)}, want: []string{"111", "222"}},
		{name: "comma separated", in: "111, 222,333", want: []string{"111", "222", "333"}},
		{name: "blank string", in: "  ", want: nil},
		{name: "empty array", in: []any{}, want: nil},
		{name: "absent", in: nil, want: nil},
		{name: "wrong type", in: float64(111), want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := allowedMeetingsFromAttribute(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("allowedMeetingsFromAttribute(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestParticipantMeetingAllowed(t *testing.T) {
	unrestricted := &domain.Participant{UUID: "user-abc-123456"}
	if !unrestricted.MeetingAllowed("987654321") {
		t.Error("empty allow-list should permit any meeting")
	}

	restricted := &domain.Participant{
		UUID:            "user-abc-123456",
		AllowedMeetings: []string{"111", "222"},
	}
	if !restricted.MeetingAllowed("222") {
		t.Error("listed meeting should be allowed")
	}
	if restricted.MeetingAllowed("987654321") {
		t.Error("unlisted meeting should be rejected")
	}
}
