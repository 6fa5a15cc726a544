package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/IsmailofficialGithub/rrasheedCRM/internal/entity"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/integration/callflow"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/queue"
)

const (
	SourceContacts = "contacts"
	SourceLeads    = "leads"

	maxRowErrorLength = 120
)

type DispatchInput struct {
	ContactListID string `json:"contact_list_id" validate:"omitempty,max=64"`
	Source        string `json:"source" validate:"omitempty,oneof=contacts leads"`
}

type DispatchResult struct {
	Success      bool     `json:"success"`
	Total        int      `json:"total"`
	SuccessCount int      `json:"success_count"`
	FailedCount  int      `json:"failed_count"`
	SkippedCount int      `json:"skipped_count"`
	Errors       []string `json:"errors"`
}

type DispatchCallsUseCase struct {
	Contacts entity.ContactRepositoryInterface
	Lists    entity.ContactListRepositoryInterface
	Leads    entity.LeadRepositoryInterface
	CallLogs entity.CallLogRepositoryInterface
	Webhook  CallWebhook
	Phones   PhoneCanonicalizer
	Queue    QueueProducerInterface
	Reports  ReportSender
	ReportTo string
	Observer DispatchObserver
	Workers  int
	Log      *zap.Logger
}

func NewDispatchCallsUseCase(
	contacts entity.ContactRepositoryInterface,
	lists entity.ContactListRepositoryInterface,
	leads entity.LeadRepositoryInterface,
	callLogs entity.CallLogRepositoryInterface,
	webhook CallWebhook,
	phones PhoneCanonicalizer,
	workers int,
	log *zap.Logger,
) *DispatchCallsUseCase {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DispatchCallsUseCase{
		Contacts: contacts,
		Lists:    lists,
		Leads:    leads,
		CallLogs: callLogs,
		Webhook:  webhook,
		Phones:   phones,
		Workers:  workers,
		Log:      log,
	}
}

// dispatchTarget is one contact or lead to call.
type dispatchTarget struct {
	name    string
	phone   string
	company string
	email   string
	leadID  string
	payload callflow.CallPayload
}

type rowStatus int

const (
	rowSucceeded rowStatus = iota
	rowFailed
	rowSkipped
)

type rowOutcome struct {
	status rowStatus
	err    string
}

// Execute dispatches every candidate, in creation order, through at most Workers concurrent calls.
// Once iteration starts a row's failure never stops the others.
func (uc *DispatchCallsUseCase) Execute(ctx context.Context, input DispatchInput) (*DispatchResult, error) {
	if uc.Webhook == nil || !uc.Webhook.Configured() {
		return nil, domainErr(CodeWebhookNotConfigured, ErrWebhookNotConfigured)
	}

	source := normalizeSource(input.Source)
	targets, err := uc.loadTargets(ctx, source, strings.TrimSpace(input.ContactListID))
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, domainErr(CodeNoContacts, ErrNoContactsFound)
	}

	log := uc.Log.With(zap.String("source", source), zap.String("contact_list_id", input.ContactListID))
	log.Info("dispatch started", zap.Int("candidates", len(targets)), zap.Int("workers", uc.Workers))

	outcomes := make([]rowOutcome, len(targets))

	var g errgroup.Group
	g.SetLimit(uc.Workers)
	for i, t := range targets {
		g.Go(func() error {
			outcomes[i] = uc.dispatchOne(ctx, log, source, t)
			return nil
		})
	}
	_ = g.Wait()

	result := &DispatchResult{Total: len(targets), Errors: []string{}}
	for _, o := range outcomes {
		switch o.status {
		case rowSucceeded:
			result.SuccessCount++
		case rowFailed:
			result.FailedCount++
			if len(result.Errors) < maxReportedErrors {
				result.Errors = append(result.Errors, o.err)
			}
		case rowSkipped:
			result.SkippedCount++
		}
	}
	result.Success = result.FailedCount == 0 || result.SuccessCount > 0

	log.Info("dispatch finished",
		zap.Int("total", result.Total),
		zap.Int("success", result.SuccessCount),
		zap.Int("failed", result.FailedCount),
		zap.Int("skipped", result.SkippedCount),
	)
	return result, nil
}

func (uc *DispatchCallsUseCase) loadTargets(ctx context.Context, source, listID string) ([]dispatchTarget, error) {
	if source == SourceLeads {
		leads, err := uc.Leads.ListCallable(ctx)
		if err != nil {
			return nil, technicalErr(CodeDatabase, "failed to load leads", err)
		}
		targets := make([]dispatchTarget, 0, len(leads))
		for _, l := range leads {
			targets = append(targets, leadTarget(l))
		}
		return targets, nil
	}

	var (
		contacts []*entity.Contact
		err      error
	)
	if listID != "" {
		if _, err := uc.Lists.FindByID(ctx, listID); err != nil {
			if errors.Is(err, entity.ErrNotFound) {
				return nil, &DomainError{Code: CodeListNotFound, Message: "contact list not found", Err: err}
			}
			return nil, technicalErr(CodeDatabase, "failed to load contact list", err)
		}
		contacts, err = uc.Contacts.ListByContactList(ctx, listID)
	} else {
		contacts, err = uc.Contacts.ListAll(ctx)
	}
	if err != nil {
		return nil, technicalErr(CodeDatabase, "failed to load contacts", err)
	}

	targets := make([]dispatchTarget, 0, len(contacts))
	for _, c := range contacts {
		targets = append(targets, contactTarget(c))
	}
	return targets, nil
}

func contactTarget(c *entity.Contact) dispatchTarget {
	company := c.Company()
	return dispatchTarget{
		name:    c.Name,
		phone:   c.Phone,
		company: company,
		email:   c.Email,
		payload: callflow.CallPayload{
			ID:            c.ID,
			Name:          c.Name,
			Phone:         c.Phone,
			Email:         c.Email,
			Company:       company,
			CreatedAt:     formatTime(c.CreatedAt),
			ContactListID: c.ContactListID,
		},
	}
}

func leadTarget(l *entity.Lead) dispatchTarget {
	return dispatchTarget{
		name:    l.DecisionMakerName,
		phone:   l.PhoneNumber,
		company: l.CompanyName,
		email:   l.Email,
		leadID:  l.ID,
		payload: callflow.CallPayload{
			ID:                l.ID,
			Name:              l.DecisionMakerName,
			Phone:             l.PhoneNumber,
			Email:             l.Email,
			Company:           l.CompanyName,
			JobPostingURL:     l.JobPostingURL,
			CityState:         l.CityState,
			SalaryRange:       l.SalaryRange,
			DecisionMakerName: l.DecisionMakerName,
			CreatedAt:         formatTime(l.CreatedAt),
			UpdatedAt:         formatTime(l.UpdatedAt),
		},
	}
}

func (uc *DispatchCallsUseCase) dispatchOne(ctx context.Context, log *zap.Logger, source string, t dispatchTarget) rowOutcome {
	phone := uc.canonical(t.phone)
	log = log.With(zap.String("phone", phone), zap.String("name", t.name))

	// No lock spans this check and the log insert below; overlapping runs can both dispatch.
	latest, err := uc.latestCall(ctx, t.leadID, phone)
	if err != nil {
		uc.observe(source, "failed")
		log.Warn("call status lookup failed", zap.Error(err))
		return failedRow(t, fmt.Errorf("status lookup failed: %w", err))
	}
	if latest != nil && latest.CallStatus == entity.CallCompleted {
		uc.observe(source, "skipped")
		log.Debug("already completed, skipping")
		return rowOutcome{status: rowSkipped}
	}

	payload := t.payload
	payload.Phone = phone

	resp, err := uc.Webhook.Send(ctx, payload)
	if err != nil {
		uc.observe(source, "failed")
		log.Warn("webhook call failed", zap.Error(err))
		return failedRow(t, err)
	}
	log.Debug("webhook accepted", zap.Any("response", resp))

	leadID := t.leadID
	if leadID == "" {
		lead, err := uc.resolveLead(ctx, t, phone)
		if err != nil {
			uc.observe(source, "succeeded")
			log.Error("lead resolution failed, call log not written", zap.Error(err))
			return rowOutcome{status: rowSucceeded}
		}
		leadID = lead.ID
	}

	if err := uc.CallLogs.Create(ctx, entity.NewInitiatedCall(leadID, t.company, phone)); err != nil {
		log.Error("failed to write call log", zap.String("lead_id", leadID), zap.Error(err))
	}

	uc.observe(source, "succeeded")
	return rowOutcome{status: rowSucceeded}
}

func (uc *DispatchCallsUseCase) latestCall(ctx context.Context, leadID, phone string) (*entity.CallLogEntry, error) {
	var (
		entry *entity.CallLogEntry
		err   error
	)
	if leadID != "" {
		entry, err = uc.CallLogs.LatestByLeadID(ctx, leadID)
	} else {
		entry, err = uc.CallLogs.LatestByPhone(ctx, phone)
	}
	if errors.Is(err, entity.ErrNotFound) {
		return nil, nil
	}
	return entry, err
}

// resolveLead finds a lead by exact phone or creates a minimal one.
func (uc *DispatchCallsUseCase) resolveLead(ctx context.Context, t dispatchTarget, phone string) (*entity.Lead, error) {
	lead, err := uc.Leads.FindByPhone(ctx, phone)
	if err == nil && lead != nil {
		return lead, nil
	}
	if err != nil && !errors.Is(err, entity.ErrNotFound) {
		return nil, err
	}

	lead = entity.NewMinimalLead(t.name, phone, t.email, t.company)
	if err := uc.Leads.Create(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (uc *DispatchCallsUseCase) canonical(phone string) string {
	if uc.Phones == nil {
		return phone
	}
	return uc.Phones.Canonical(phone)
}

func (uc *DispatchCallsUseCase) observe(source, outcome string) {
	if uc.Observer != nil {
		uc.Observer.ObserveDispatch(source, outcome)
	}
}

// Schedule validates the request and hands it to the dispatch queue.
func (uc *DispatchCallsUseCase) Schedule(ctx context.Context, input DispatchInput) (string, error) {
	if uc.Webhook == nil || !uc.Webhook.Configured() {
		return "", domainErr(CodeWebhookNotConfigured, ErrWebhookNotConfigured)
	}
	if uc.Queue == nil {
		return "", domainErr(CodeQueueNotConfigured, ErrQueueNotConfigured)
	}

	job := queue.DispatchJob{
		JobID:         uuid.New().String(),
		ContactListID: strings.TrimSpace(input.ContactListID),
		Source:        normalizeSource(input.Source),
		ReportTo:      uc.ReportTo,
		RequestedAt:   time.Now().UTC(),
	}
	if err := uc.Queue.PublishDispatch(ctx, job); err != nil {
		return "", technicalErr(CodeQueue, "failed to enqueue dispatch", err)
	}

	uc.Log.Info("dispatch scheduled", zap.String("job_id", job.JobID), zap.String("source", job.Source))
	return job.JobID, nil
}

func normalizeSource(s string) string {
	if strings.EqualFold(strings.TrimSpace(s), SourceLeads) {
		return SourceLeads
	}
	return SourceContacts
}

func failedRow(t dispatchTarget, err error) rowOutcome {
	name := t.name
	if name == "" {
		name = t.phone
	}
	return rowOutcome{status: rowFailed, err: truncateRunes(fmt.Sprintf("%s: %s", name, err.Error()), maxRowErrorLength)}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
