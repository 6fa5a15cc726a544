package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/IsmailofficialGithub/rrasheedCRM/internal/entity"
)

type ContactListRepository struct {
	DB *sql.DB
}

func NewContactListRepository(db *sql.DB) *ContactListRepository {
	return &ContactListRepository{DB: db}
}

const contactListColumns = `id, name, COALESCE(source_file_name, ''), total_contacts, status, created_at`

func (r *ContactListRepository) Create(ctx context.Context, list *entity.ContactList) error {
	query := `
		INSERT INTO contact_lists (id, name, source_file_name, total_contacts, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.DB.ExecContext(ctx, query,
		list.ID,
		list.Name,
		nullString(list.SourceFileName),
		list.TotalContacts,
		list.Status,
		list.CreatedAt,
	)
	if err != nil {
		if _, ok := uniqueViolationError(err); ok {
			return entity.ErrDuplicateListName
		}
		return fmt.Errorf("failed to insert contact list: %w", err)
	}
	return nil
}

func (r *ContactListRepository) FindByID(ctx context.Context, id string) (*entity.ContactList, error) {
	query := `SELECT ` + contactListColumns + ` FROM contact_lists WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *ContactListRepository) FindByName(ctx context.Context, name string) (*entity.ContactList, error) {
	query := `SELECT ` + contactListColumns + ` FROM contact_lists WHERE name = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, name))
}

func (r *ContactListRepository) UpdateTotalContacts(ctx context.Context, id string, total int) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE contact_lists SET total_contacts = $1 WHERE id = $2`, total, id)
	if err != nil {
		return fmt.Errorf("failed to update total contacts: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return entity.ErrNotFound
	}
	return nil
}

func (r *ContactListRepository) List(ctx context.Context) ([]*entity.ContactList, error) {
	query := `SELECT ` + contactListColumns + ` FROM contact_lists ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact lists: %w", err)
	}
	defer rows.Close()

	var lists []*entity.ContactList
	for rows.Next() {
		var l entity.ContactList
		if err := rows.Scan(&l.ID, &l.Name, &l.SourceFileName, &l.TotalContacts, &l.Status, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact list: %w", err)
		}
		lists = append(lists, &l)
	}
	return lists, rows.Err()
}

func (r *ContactListRepository) scanOne(row *sql.Row) (*entity.ContactList, error) {
	var l entity.ContactList
	err := row.Scan(&l.ID, &l.Name, &l.SourceFileName, &l.TotalContacts, &l.Status, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load contact list: %w", err)
	}
	return &l, nil
}
