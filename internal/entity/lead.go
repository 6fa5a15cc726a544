package entity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Lead is the long-lived pipeline record. Contacts are joined to it by phone number.
type Lead struct {
	ID                string    `json:"id"`
	CompanyName       string    `json:"company_name"`
	DecisionMakerName string    `json:"decision_maker_name"`
	Email             string    `json:"email,omitempty"`
	PhoneNumber       string    `json:"phone_number"`
	JobPostingURL     string    `json:"job_posting_url,omitempty"`
	CityState         string    `json:"city_state,omitempty"`
	SalaryRange       string    `json:"salary_range,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewMinimalLead builds the lead created when a dispatched contact has no lead yet.
func NewMinimalLead(name, phone, email, company string) *Lead {
	now := time.Now().UTC()
	return &Lead{
		ID:                uuid.New().String(),
		CompanyName:       strings.TrimSpace(company),
		DecisionMakerName: strings.TrimSpace(name),
		Email:             strings.TrimSpace(email),
		PhoneNumber:       phone,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// Callable reports whether the lead can be dispatched on its own.
func (l *Lead) Callable() bool {
	return strings.TrimSpace(l.DecisionMakerName) != "" && strings.TrimSpace(l.PhoneNumber) != ""
}

type LeadRepositoryInterface interface {
	FindByPhone(ctx context.Context, phone string) (*Lead, error)
	Create(ctx context.Context, lead *Lead) error
	ListCallable(ctx context.Context) ([]*Lead, error)
}
