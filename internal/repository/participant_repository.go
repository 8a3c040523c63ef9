package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/domain"
)

// ParticipantRepository defines persistence access for roster participants.
type ParticipantRepository interface {
	GetByUUID(ctx context.Context, uuid string) (*domain.Participant, error)
}

type participantRepository struct {
	pool *pgxpool.Pool
}

// NewParticipantRepository returns a Postgres-backed implementation.
func NewParticipantRepository(pool *pgxpool.Pool) ParticipantRepository {
	return &participantRepository{pool: pool}
}

func (r *participantRepository) GetByUUID(ctx context.Context, uuid string) (*domain.Participant, error) {
	const query = `
        SELECT uuid, role, COALESCE(zoom_email, ''), COALESCE(allowed_meetings, '{}')
        FROM participants WHERE uuid=$1`

	var (
		participant domain.Participant
		role        int
		allowed     []string
	)
	if err := r.pool.QueryRow(ctx, query, uuid).Scan(
		&participant.UUID,
		&role,
		&participant.ZoomEmail,
		&allowed,
	); err != nil {
		return nil, err
	}

	participant.Role = domain.RoleFromInt(role)
	if len(allowed) > 0 {
		participant.AllowedMeetings = allowed
	}
	return &participant, nil
}
