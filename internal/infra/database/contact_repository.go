package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IsmailofficialGithub/rrasheedCRM/internal/entity"
)

type ContactRepository struct {
	DB *sql.DB
}

func NewContactRepository(db *sql.DB) *ContactRepository {
	return &ContactRepository{DB: db}
}

const contactInsertColumns = 7

// InsertBatch writes the whole batch in one statement, so a conflict on any row rejects the batch.
func (r *ContactRepository) InsertBatch(ctx context.Context, contacts []*entity.Contact) (int, error) {
	if len(contacts) == 0 {
		return 0, nil
	}

	var sb strings.Builder
	sb.WriteString(`INSERT INTO contacts (id, contact_list_id, name, phone, email, additional_data, created_at) VALUES `)

	args := make([]any, 0, len(contacts)*contactInsertColumns)
	for i, c := range contacts {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * contactInsertColumns
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5, base+6, base+7)

		extra, err := marshalAdditional(c.AdditionalData)
		if err != nil {
			return 0, err
		}
		args = append(args, c.ID, c.ContactListID, c.Name, c.Phone, nullString(c.Email), extra, c.CreatedAt)
	}

	res, err := r.DB.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		if pqErr, ok := uniqueViolationError(err); ok {
			return 0, fmt.Errorf("%w: %s", entity.ErrDuplicateContact, pqErr.Detail)
		}
		return 0, fmt.Errorf("failed to insert contacts: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return len(contacts), nil
	}
	return int(n), nil
}

const contactSelect = `
	SELECT id, contact_list_id, name, phone, COALESCE(email, ''), additional_data, created_at
	FROM contacts
`

func (r *ContactRepository) ListByContactList(ctx context.Context, listID string) ([]*entity.Contact, error) {
	return r.query(ctx, contactSelect+` WHERE contact_list_id = $1 ORDER BY created_at ASC, id ASC`, listID)
}

func (r *ContactRepository) ListAll(ctx context.Context) ([]*entity.Contact, error) {
	return r.query(ctx, contactSelect+` ORDER BY created_at ASC, id ASC`)
}

func (r *ContactRepository) query(ctx context.Context, query string, args ...any) ([]*entity.Contact, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*entity.Contact
	for rows.Next() {
		var (
			c     entity.Contact
			extra []byte
		)
		if err := rows.Scan(&c.ID, &c.ContactListID, &c.Name, &c.Phone, &c.Email, &extra, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		if len(extra) > 0 {
			if err := json.Unmarshal(extra, &c.AdditionalData); err != nil {
				return nil, fmt.Errorf("failed to decode additional data for contact %s: %w", c.ID, err)
			}
		}
		contacts = append(contacts, &c)
	}
	return contacts, rows.Err()
}

func marshalAdditional(m map[string]string) (string, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("failed to encode additional data: %w", err)
	}
	return string(b), nil
}
