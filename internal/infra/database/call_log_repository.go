package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/IsmailofficialGithub/rrasheedCRM/internal/entity"
)

type CallLogRepository struct {
	DB *sql.DB
}

func NewCallLogRepository(db *sql.DB) *CallLogRepository {
	return &CallLogRepository{DB: db}
}

const callLogSelect = `
	SELECT uuid, COALESCE(lead_id::text, ''), COALESCE(company, ''), COALESCE(phone, ''), call_status, created_at, updated_at
	FROM calls_log
`

func (r *CallLogRepository) LatestByPhone(ctx context.Context, phone string) (*entity.CallLogEntry, error) {
	return r.latest(ctx, callLogSelect+` WHERE phone = $1 ORDER BY created_at DESC LIMIT 1`, phone)
}

func (r *CallLogRepository) LatestByLeadID(ctx context.Context, leadID string) (*entity.CallLogEntry, error) {
	return r.latest(ctx, callLogSelect+` WHERE lead_id = $1 ORDER BY created_at DESC LIMIT 1`, leadID)
}

func (r *CallLogRepository) latest(ctx context.Context, query string, arg string) (*entity.CallLogEntry, error) {
	var e entity.CallLogEntry
	err := r.DB.QueryRowContext(ctx, query, arg).Scan(
		&e.UUID,
		&e.LeadID,
		&e.Company,
		&e.Phone,
		&e.CallStatus,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest call log: %w", err)
	}
	return &e, nil
}

func (r *CallLogRepository) Create(ctx context.Context, e *entity.CallLogEntry) error {
	query := `
		INSERT INTO calls_log (uuid, lead_id, company, phone, call_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.DB.ExecContext(ctx, query,
		e.UUID,
		nullString(e.LeadID),
		nullString(e.Company),
		e.Phone,
		string(e.CallStatus),
		e.CreatedAt,
		e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert call log: %w", err)
	}
	return nil
}
