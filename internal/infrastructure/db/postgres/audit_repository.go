package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videotube/user-service/internal/core/domain"
)

// AuditRepository implements ports.AuditRepository on PostgreSQL.
type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO auth_events (type, user_id, identifier, detail, occurred_at)
		 VALUES ($1, NULLIF($2, '')::uuid, NULLIF($3, ''), NULLIF($4, ''), $5)`,
		string(event.Type), event.UserID, event.Identifier, event.Detail, event.OccurredAt.UTC())
	if err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
