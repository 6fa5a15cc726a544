package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type CallStatus string

const (
	CallInitiated CallStatus = "initiated"
	CallOngoing   CallStatus = "ongoing"
	CallPaused    CallStatus = "paused"
	CallCompleted CallStatus = "completed"
	CallFailed    CallStatus = "failed"
)

func (s CallStatus) Valid() bool {
	switch s {
	case CallInitiated, CallOngoing, CallPaused, CallCompleted, CallFailed:
		return true
	}
	return false
}

// CallLogEntry records one dispatch attempt. Status transitions happen in the calling workflow.
type CallLogEntry struct {
	UUID       string     `json:"uuid"`
	LeadID     string     `json:"lead_id"`
	Company    string     `json:"company"`
	Phone      string     `json:"phone"`
	CallStatus CallStatus `json:"call_status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func NewInitiatedCall(leadID, company, phone string) *CallLogEntry {
	now := time.Now().UTC()
	return &CallLogEntry{
		UUID:       uuid.New().String(),
		LeadID:     leadID,
		Company:    company,
		Phone:      phone,
		CallStatus: CallInitiated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

type CallLogRepositoryInterface interface {
	LatestByPhone(ctx context.Context, phone string) (*CallLogEntry, error)
	LatestByLeadID(ctx context.Context, leadID string) (*CallLogEntry, error)
	Create(ctx context.Context, entry *CallLogEntry) error
}
