package entity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Contact is one imported row, normalized to name/phone/email plus extra columns.
type Contact struct {
	ID             string            `json:"id"`
	ContactListID  string            `json:"contact_list_id"`
	Name           string            `json:"name"`
	Phone          string            `json:"phone"`
	Email          string            `json:"email,omitempty"`
	AdditionalData map[string]string `json:"additional_data,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}

func NewContact(listID, name, phone, email string, additional map[string]string) *Contact {
	return &Contact{
		ID:             uuid.New().String(),
		ContactListID:  listID,
		Name:           name,
		Phone:          phone,
		Email:          email,
		AdditionalData: additional,
		CreatedAt:      time.Now().UTC(),
	}
}

// Company looks for a company column among the extra fields.
func (c *Contact) Company() string {
	for k, v := range c.AdditionalData {
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "company", "company name", "company_name", "business":
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		}
	}
	return ""
}

type ContactRepositoryInterface interface {
	InsertBatch(ctx context.Context, contacts []*Contact) (int, error)
	ListByContactList(ctx context.Context, listID string) ([]*Contact, error)
	ListAll(ctx context.Context) ([]*Contact, error)
}
