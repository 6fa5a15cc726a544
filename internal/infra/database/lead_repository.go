package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/IsmailofficialGithub/rrasheedCRM/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadSelect = `
	SELECT id,
		COALESCE(company_name, ''),
		COALESCE(decision_maker_name, ''),
		COALESCE(email, ''),
		COALESCE(phone_number, ''),
		COALESCE(job_posting_url, ''),
		COALESCE(city_state, ''),
		COALESCE(salary_range, ''),
		created_at,
		updated_at
	FROM leads
`

// FindByPhone matches the phone string exactly. The oldest lead wins when several share it.
func (r *LeadRepository) FindByPhone(ctx context.Context, phone string) (*entity.Lead, error) {
	row := r.DB.QueryRowContext(ctx, leadSelect+` WHERE phone_number = $1 ORDER BY created_at ASC LIMIT 1`, phone)

	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find lead by phone: %w", err)
	}
	return lead, nil
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (id, company_name, decision_maker_name, email, phone_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.DB.ExecContext(ctx, query,
		lead.ID,
		nullString(lead.CompanyName),
		nullString(lead.DecisionMakerName),
		nullString(lead.Email),
		lead.PhoneNumber,
		lead.CreatedAt,
		lead.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// ListCallable returns leads with a decision maker and a phone number, oldest first.
func (r *LeadRepository) ListCallable(ctx context.Context) ([]*entity.Lead, error) {
	query := leadSelect + `
	WHERE COALESCE(TRIM(decision_maker_name), '') <> ''
	  AND COALESCE(TRIM(phone_number), '') <> ''
	ORDER BY created_at ASC, id ASC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list callable leads: %w", err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var l entity.Lead
	err := row.Scan(
		&l.ID,
		&l.CompanyName,
		&l.DecisionMakerName,
		&l.Email,
		&l.PhoneNumber,
		&l.JobPostingURL,
		&l.CityState,
		&l.SalaryRange,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
