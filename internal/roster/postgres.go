package roster

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/domain"
	"github.com/tether-supervision-devops/tether-meetingsdk-auth-endpoint/internal/repository"
)

// PostgresResolver resolves participants from a local participants table,
// for deployments that mirror the roster into Postgres instead of calling
// the record store on every request.
type PostgresResolver struct {
	participants repository.ParticipantRepository
}

// NewPostgresResolver returns a Postgres-backed resolver.
func NewPostgresResolver(pool *pgxpool.Pool) *PostgresResolver {
	return &PostgresResolver{participants: repository.NewParticipantRepository(pool)}
}

func (r *PostgresResolver) Resolve(ctx context.Context, uuid string) (*domain.Participant, error) {
	participant, err := r.participants.GetByUUID(ctx, uuid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	participant.ZoomEmail = strings.TrimSpace(participant.ZoomEmail)
	return participant, nil
}
