package entity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	ContactListActive   = "active"
	ContactListInactive = "inactive"
)

// ContactList is one uploaded batch of contacts.
type ContactList struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	SourceFileName string    `json:"source_file_name"`
	TotalContacts  int       `json:"total_contacts"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewContactList(name, sourceFileName string, total int) (*ContactList, error) {
	list := &ContactList{
		ID:             uuid.New().String(),
		Name:           strings.TrimSpace(name),
		SourceFileName: strings.TrimSpace(sourceFileName),
		TotalContacts:  total,
		Status:         ContactListActive,
		CreatedAt:      time.Now().UTC(),
	}

	if err := list.Validate(); err != nil {
		return nil, err
	}
	return list, nil
}

func (l *ContactList) Validate() error {
	if l.Name == "" {
		return errors.New("list name is required")
	}
	if l.TotalContacts < 0 {
		return errors.New("total contacts cannot be negative")
	}
	return nil
}

type ContactListRepositoryInterface interface {
	Create(ctx context.Context, list *ContactList) error
	FindByID(ctx context.Context, id string) (*ContactList, error)
	FindByName(ctx context.Context, name string) (*ContactList, error)
	UpdateTotalContacts(ctx context.Context, id string, total int) error
	List(ctx context.Context) ([]*ContactList, error)
}
