package domain

// Role is the Meeting SDK role embedded in issued signatures.
type Role int

const (
	RoleAttendee Role = 0
	RoleHost     Role = 1
)

func (r Role) String() string {
	if r == RoleHost {
		return "host"
	}
	return "attendee"
}

// RoleFromInt maps a stored role value to a Role. Only the exact host
// value grants host; everything else is an attendee.
func RoleFromInt(v int) Role {
	if v == int(RoleHost) {
		return RoleHost
	}
	return RoleAttendee
}

// Participant is the trusted identity produced by roster resolution.
// Role comes from the roster record only, never from the request.
type Participant struct {
	UUID            string
	Role            Role
	ZoomEmail       string
	AllowedMeetings []string
}

// CanElevate reports whether a host token fetch should even be attempted.
// Hosts without a linked Zoom account keep the host role but get no ZAK.
func (p *Participant) CanElevate() bool {
	return p.Role == RoleHost && p.ZoomEmail != ""
}

// MeetingAllowed reports whether the participant may join the given meeting.
// An empty allow-list means unrestricted.
func (p *Participant) MeetingAllowed(meetingNumber string) bool {
	if len(p.AllowedMeetings) == 0 {
		return true
	}
	for _, allowed := range p.AllowedMeetings {
		if allowed == meetingNumber {
			return true
		}
	}
	return false
}
