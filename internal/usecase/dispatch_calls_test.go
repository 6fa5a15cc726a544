package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/IsmailofficialGithub/rrasheedCRM/internal/entity"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/integration/callflow"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/mail"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/phone"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/queue"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/usecase"
)

type dispatchMocks struct {
	contacts *MockContactRepository
	lists    *MockContactListRepository
	leads    *MockLeadRepository
	callLogs *MockCallLogRepository
	webhook  *MockWebhook
}

func newDispatchMocks() *dispatchMocks {
	m := &dispatchMocks{
		contacts: new(MockContactRepository),
		lists:    new(MockContactListRepository),
		leads:    new(MockLeadRepository),
		callLogs: new(MockCallLogRepository),
		webhook:  new(MockWebhook),
	}
	m.webhook.On("Configured").Return(true)
	return m
}

func (m *dispatchMocks) useCase(workers int) *usecase.DispatchCallsUseCase {
	return usecase.NewDispatchCallsUseCase(m.contacts, m.lists, m.leads, m.callLogs, m.webhook, phone.Exact{}, workers, nil)
}

func contactFixtures(n int) []*entity.Contact {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]*entity.Contact, n)
	for i := range out {
		c := entity.NewContact("list-1", fmt.Sprintf("Contact %d", i), fmt.Sprintf("555-%04d", i), "", map[string]string{"Company": "Acme"})
		c.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		out[i] = c
	}
	return out
}

func completed(phone string) *entity.CallLogEntry {
	e := entity.NewInitiatedCall("lead-x", "Acme", phone)
	e.CallStatus = entity.CallCompleted
	return e
}

func TestDispatchSkipsCompletedAndLogsSuccessfulCall(t *testing.T) {
	m := newDispatchMocks()
	a := entity.NewContact("list-1", "Alice", "555-0001", "", nil)
	b := entity.NewContact("list-1", "Bob", "555-0002", "bob@example.com", map[string]string{"Company": "Globex"})

	m.lists.On("FindByID", mock.Anything, "list-1").Return(&entity.ContactList{ID: "list-1"}, nil)
	m.contacts.On("ListByContactList", mock.Anything, "list-1").Return([]*entity.Contact{a, b}, nil)
	m.callLogs.On("LatestByPhone", mock.Anything, "555-0001").Return(completed("555-0001"), nil)
	m.callLogs.On("LatestByPhone", mock.Anything, "555-0002").Return(nil, entity.ErrNotFound)
	m.webhook.On("Send", mock.Anything, mock.MatchedBy(func(p callflow.CallPayload) bool {
		return p.ID == b.ID && p.Name == "Bob" && p.Company == "Globex" && p.ContactListID == "list-1"
	})).Return(callflow.CallResponse{"message": "queued"}, nil)
	m.leads.On("FindByPhone", mock.Anything, "555-0002").Return(nil, entity.ErrNotFound)
	m.leads.On("Create", mock.Anything, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.PhoneNumber == "555-0002" && l.DecisionMakerName == "Bob" && l.CompanyName == "Globex"
	})).Return(nil)
	m.callLogs.On("Create", mock.Anything, mock.MatchedBy(func(e *entity.CallLogEntry) bool {
		return e.Phone == "555-0002" && e.Company == "Globex" && e.CallStatus == entity.CallInitiated && e.LeadID != ""
	})).Return(nil)

	result, err := m.useCase(1).Execute(context.Background(), usecase.DispatchInput{ContactListID: "list-1"})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 0, result.FailedCount)
	assert.Equal(t, 1, result.SkippedCount)
	assert.Empty(t, result.Errors)

	m.webhook.AssertNumberOfCalls(t, "Send", 1)
	m.callLogs.AssertNumberOfCalls(t, "Create", 1)
	m.leads.AssertExpectations(t)
}

func TestDispatchProcessesOnlyRowsWithoutCompletedLog(t *testing.T) {
	m := newDispatchMocks()
	contacts := contactFixtures(10)

	m.contacts.On("ListAll", mock.Anything).Return(contacts, nil)
	for i, c := range contacts {
		if i < 4 {
			m.callLogs.On("LatestByPhone", mock.Anything, c.Phone).Return(completed(c.Phone), nil)
			continue
		}
		latest := entity.NewInitiatedCall("lead-x", "Acme", c.Phone)
		m.callLogs.On("LatestByPhone", mock.Anything, c.Phone).Return(latest, nil)
	}
	m.webhook.On("Send", mock.Anything, mock.MatchedBy(func(p callflow.CallPayload) bool {
		return p.Phone == "555-0005"
	})).Return(nil, &callflow.StatusError{StatusCode: 500, Body: "boom"})
	m.webhook.On("Send", mock.Anything, mock.Anything).Return(callflow.CallResponse{"message": "Success"}, nil)
	m.leads.On("FindByPhone", mock.Anything, mock.Anything).Return(&entity.Lead{ID: "lead-1"}, nil)
	m.callLogs.On("Create", mock.Anything, mock.Anything).Return(nil)

	result, err := m.useCase(1).Execute(context.Background(), usecase.DispatchInput{})

	require.NoError(t, err)
	assert.Equal(t, 10, result.Total)
	assert.Equal(t, 4, result.SkippedCount)
	assert.Equal(t, 6, result.SuccessCount+result.FailedCount)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, []string{"Contact 5: webhook returned HTTP 500: boom"}, result.Errors)

	m.webhook.AssertNumberOfCalls(t, "Send", 6)
	// no log for the failed call
	m.callLogs.AssertNumberOfCalls(t, "Create", 5)
	m.leads.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDispatchWebhookErrorRecordsNoLog(t *testing.T) {
	m := newDispatchMocks()
	c := entity.NewContact("list-1", "Carol", "555-0003", "", nil)

	m.contacts.On("ListAll", mock.Anything).Return([]*entity.Contact{c}, nil)
	m.callLogs.On("LatestByPhone", mock.Anything, "555-0003").Return(nil, entity.ErrNotFound)
	m.webhook.On("Send", mock.Anything, mock.Anything).Return(nil, &callflow.StatusError{StatusCode: 500})

	result, err := m.useCase(1).Execute(context.Background(), usecase.DispatchInput{})

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.FailedCount)
	assert.Equal(t, 0, result.SuccessCount)
	m.callLogs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.leads.AssertNotCalled(t, "FindByPhone", mock.Anything, mock.Anything)
}

func TestDispatchCapsAndTruncatesErrors(t *testing.T) {
	m := newDispatchMocks()
	contacts := contactFixtures(8)

	m.contacts.On("ListAll", mock.Anything).Return(contacts, nil)
	m.callLogs.On("LatestByPhone", mock.Anything, mock.Anything).Return(nil, entity.ErrNotFound)
	m.webhook.On("Send", mock.Anything, mock.Anything).Return(nil, errors.New(strings.Repeat("x", 300)))

	result, err := m.useCase(1).Execute(context.Background(), usecase.DispatchInput{})

	require.NoError(t, err)
	assert.Equal(t, 8, result.FailedCount)
	require.Len(t, result.Errors, 5)
	for i, e := range result.Errors {
		assert.Len(t, []rune(e), 120)
		assert.True(t, strings.HasPrefix(e, fmt.Sprintf("Contact %d: ", i)), e)
	}
}

func TestDispatchLogWriteFailureStillCountsAsSuccess(t *testing.T) {
	m := newDispatchMocks()
	c := entity.NewContact("list-1", "Dan", "555-0004", "", nil)

	m.contacts.On("ListAll", mock.Anything).Return([]*entity.Contact{c}, nil)
	m.callLogs.On("LatestByPhone", mock.Anything, "555-0004").Return(nil, entity.ErrNotFound)
	m.webhook.On("Send", mock.Anything, mock.Anything).Return(callflow.CallResponse{"message": "Success"}, nil)
	m.leads.On("FindByPhone", mock.Anything, "555-0004").Return(&entity.Lead{ID: "lead-4"}, nil)
	m.callLogs.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	result, err := m.useCase(1).Execute(context.Background(), usecase.DispatchInput{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 0, result.FailedCount)
}

func TestDispatchLeadResolutionFailureStillCountsAsSuccess(t *testing.T) {
	m := newDispatchMocks()
	c := entity.NewContact("list-1", "Eve", "555-0005", "", nil)

	m.contacts.On("ListAll", mock.Anything).Return([]*entity.Contact{c}, nil)
	m.callLogs.On("LatestByPhone", mock.Anything, "555-0005").Return(nil, entity.ErrNotFound)
	m.webhook.On("Send", mock.Anything, mock.Anything).Return(callflow.CallResponse{"message": "Success"}, nil)
	m.leads.On("FindByPhone", mock.Anything, "555-0005").Return(nil, entity.ErrNotFound)
	m.leads.On("Create", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	result, err := m.useCase(1).Execute(context.Background(), usecase.DispatchInput{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	m.callLogs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDispatchStatusLookupFailureIsRowFailure(t *testing.T) {
	m := newDispatchMocks()
	c := entity.NewContact("list-1", "Fay", "555-0006", "", nil)

	m.contacts.On("ListAll", mock.Anything).Return([]*entity.Contact{c}, nil)
	m.callLogs.On("LatestByPhone", mock.Anything, "555-0006").Return(nil, errors.New("timeout"))

	result, err := m.useCase(1).Execute(context.Background(), usecase.DispatchInput{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.FailedCount)
	assert.Contains(t, result.Errors[0], "Fay: status lookup failed")
	m.webhook.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDispatchWebhookNotConfigured(t *testing.T) {
	m := &dispatchMocks{
		contacts: new(MockContactRepository),
		lists:    new(MockContactListRepository),
		leads:    new(MockLeadRepository),
		callLogs: new(MockCallLogRepository),
		webhook:  new(MockWebhook),
	}
	m.webhook.On("Configured").Return(false)

	_, err := m.useCase(1).Execute(context.Background(), usecase.DispatchInput{})

	assert.ErrorIs(t, err, usecase.ErrWebhookNotConfigured)
	m.contacts.AssertNotCalled(t, "ListAll", mock.Anything)
}

func TestDispatchNoContacts(t *testing.T) {
	m := newDispatchMocks()
	m.contacts.On("ListAll", mock.Anything).Return([]*entity.Contact{}, nil)

	_, err := m.useCase(1).Execute(context.Background(), usecase.DispatchInput{})

	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, usecase.CodeNoContacts, de.Code)
	assert.ErrorIs(t, err, usecase.ErrNoContactsFound)
}

func TestDispatchUnknownList(t *testing.T) {
	m := newDispatchMocks()
	m.lists.On("FindByID", mock.Anything, "missing").Return(nil, entity.ErrNotFound)

	_, err := m.useCase(1).Execute(context.Background(), usecase.DispatchInput{ContactListID: "missing"})

	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, usecase.CodeListNotFound, de.Code)
}

func TestDispatchStorageErrorLoadingCandidates(t *testing.T) {
	m := newDispatchMocks()
	m.contacts.On("ListAll", mock.Anything).Return(nil, errors.New("db down"))

	_, err := m.useCase(1).Execute(context.Background(), usecase.DispatchInput{})

	assert.True(t, usecase.IsTechnicalError(err))
}

func TestDispatchWorkerCountDoesNotChangeResult(t *testing.T) {
	run := func(workers int) *usecase.DispatchResult {
		m := newDispatchMocks()
		contacts := contactFixtures(30)
		m.contacts.On("ListAll", mock.Anything).Return(contacts, nil)
		for i, c := range contacts {
			switch {
			case i%5 == 0:
				m.callLogs.On("LatestByPhone", mock.Anything, c.Phone).Return(completed(c.Phone), nil)
			default:
				m.callLogs.On("LatestByPhone", mock.Anything, c.Phone).Return(nil, entity.ErrNotFound)
			}
			if i%3 == 0 {
				m.webhook.On("Send", mock.Anything, mock.MatchedBy(func(p callflow.CallPayload) bool {
					return p.Phone == c.Phone
				})).Return(nil, errors.New("refused"))
			}
		}
		m.webhook.On("Send", mock.Anything, mock.Anything).Return(callflow.CallResponse{"message": "Success"}, nil)
		m.leads.On("FindByPhone", mock.Anything, mock.Anything).Return(&entity.Lead{ID: "lead-1"}, nil)
		m.callLogs.On("Create", mock.Anything, mock.Anything).Return(nil)

		result, err := m.useCase(workers).Execute(context.Background(), usecase.DispatchInput{})
		require.NoError(t, err)
		return result
	}

	sequential := run(1)
	concurrent := run(8)

	assert.Equal(t, sequential, concurrent)
	assert.Equal(t, 6, sequential.SkippedCount)
	assert.Equal(t, 24, sequential.SuccessCount+sequential.FailedCount)
}

func TestDispatchLeadsSource(t *testing.T) {
	m := newDispatchMocks()
	done := &entity.Lead{ID: "lead-1", DecisionMakerName: "Gail", PhoneNumber: "555-0101", CompanyName: "Acme"}
	open := &entity.Lead{ID: "lead-2", DecisionMakerName: "Hank", PhoneNumber: "555-0102", CompanyName: "Initech", SalaryRange: "100k"}

	m.leads.On("ListCallable", mock.Anything).Return([]*entity.Lead{done, open}, nil)
	m.callLogs.On("LatestByLeadID", mock.Anything, "lead-1").Return(completed("555-0101"), nil)
	m.callLogs.On("LatestByLeadID", mock.Anything, "lead-2").Return(nil, entity.ErrNotFound)
	m.webhook.On("Send", mock.Anything, mock.MatchedBy(func(p callflow.CallPayload) bool {
		return p.ID == "lead-2" && p.DecisionMakerName == "Hank" && p.SalaryRange == "100k" && p.ContactListID == ""
	})).Return(callflow.CallResponse{"message": "Success"}, nil)
	m.callLogs.On("Create", mock.Anything, mock.MatchedBy(func(e *entity.CallLogEntry) bool {
		return e.LeadID == "lead-2" && e.Company == "Initech"
	})).Return(nil)

	result, err := m.useCase(1).Execute(context.Background(), usecase.DispatchInput{Source: "leads"})

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.SkippedCount)
	m.leads.AssertNotCalled(t, "FindByPhone", mock.Anything, mock.Anything)
	m.contacts.AssertNotCalled(t, "ListAll", mock.Anything)
	m.callLogs.AssertExpectations(t)
}

func TestDispatchE164Matching(t *testing.T) {
	m := newDispatchMocks()
	c := entity.NewContact("list-1", "Ivy", "(202) 456-1111", "", nil)

	m.contacts.On("ListAll", mock.Anything).Return([]*entity.Contact{c}, nil)
	m.callLogs.On("LatestByPhone", mock.Anything, "+12024561111").Return(nil, entity.ErrNotFound)
	m.webhook.On("Send", mock.Anything, mock.MatchedBy(func(p callflow.CallPayload) bool {
		return p.Phone == "+12024561111"
	})).Return(callflow.CallResponse{"message": "Success"}, nil)
	m.leads.On("FindByPhone", mock.Anything, "+12024561111").Return(&entity.Lead{ID: "lead-9"}, nil)
	m.callLogs.On("Create", mock.Anything, mock.MatchedBy(func(e *entity.CallLogEntry) bool {
		return e.Phone == "+12024561111" && e.LeadID == "lead-9"
	})).Return(nil)

	uc := usecase.NewDispatchCallsUseCase(m.contacts, m.lists, m.leads, m.callLogs, m.webhook, phone.New(phone.ModeE164, "us"), 1, nil)
	result, err := uc.Execute(context.Background(), usecase.DispatchInput{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	m.callLogs.AssertExpectations(t)
}

func TestScheduleDispatch(t *testing.T) {
	m := newDispatchMocks()
	producer := new(MockQueueProducer)
	producer.On("PublishDispatch", mock.Anything, mock.MatchedBy(func(j queue.DispatchJob) bool {
		return j.JobID != "" && j.Source == usecase.SourceLeads && j.ReportTo == "ops@example.com"
	})).Return(nil)

	uc := m.useCase(1)
	uc.Queue = producer
	uc.ReportTo = "ops@example.com"

	jobID, err := uc.Schedule(context.Background(), usecase.DispatchInput{Source: "LEADS"})

	require.NoError(t, err)
	assert.NotEmpty(t, jobID)
	producer.AssertExpectations(t)
}

func TestScheduleDispatchWithoutQueue(t *testing.T) {
	uc := newDispatchMocks().useCase(1)

	_, err := uc.Schedule(context.Background(), usecase.DispatchInput{})

	assert.ErrorIs(t, err, usecase.ErrQueueNotConfigured)
}

func TestScheduleDispatchPublishFailure(t *testing.T) {
	producer := new(MockQueueProducer)
	producer.On("PublishDispatch", mock.Anything, mock.Anything).Return(errors.New("channel closed"))

	uc := newDispatchMocks().useCase(1)
	uc.Queue = producer

	_, err := uc.Schedule(context.Background(), usecase.DispatchInput{})

	assert.True(t, usecase.IsTechnicalError(err))
}

func TestHandleDispatchJobSendsReport(t *testing.T) {
	m := newDispatchMocks()
	c := entity.NewContact("list-1", "Jo", "555-0007", "", nil)
	reports := new(MockReportSender)

	m.lists.On("FindByID", mock.Anything, "list-1").Return(&entity.ContactList{ID: "list-1"}, nil)
	m.contacts.On("ListByContactList", mock.Anything, "list-1").Return([]*entity.Contact{c}, nil)
	m.callLogs.On("LatestByPhone", mock.Anything, "555-0007").Return(nil, entity.ErrNotFound)
	m.webhook.On("Send", mock.Anything, mock.Anything).Return(callflow.CallResponse{"message": "Success"}, nil)
	m.leads.On("FindByPhone", mock.Anything, "555-0007").Return(&entity.Lead{ID: "lead-7"}, nil)
	m.callLogs.On("Create", mock.Anything, mock.Anything).Return(nil)
	reports.On("SendDispatchReport", "ops@example.com", mock.MatchedBy(func(r mail.DispatchReport) bool {
		return r.JobID == "job-1" && r.SuccessCount == 1 && r.Total == 1 && r.FailureReason == ""
	})).Return(nil)

	uc := m.useCase(1)
	uc.Reports = reports

	err := uc.HandleDispatchJob(context.Background(), queue.DispatchJob{
		JobID:         "job-1",
		ContactListID: "list-1",
		Source:        "contacts",
		ReportTo:      "ops@example.com",
	})

	require.NoError(t, err)
	reports.AssertExpectations(t)
}

func TestHandleDispatchJobReportsFailure(t *testing.T) {
	m := newDispatchMocks()
	reports := new(MockReportSender)

	m.contacts.On("ListAll", mock.Anything).Return(nil, errors.New("db down"))
	reports.On("SendDispatchReport", "ops@example.com", mock.MatchedBy(func(r mail.DispatchReport) bool {
		return strings.Contains(r.FailureReason, "db down")
	})).Return(nil)

	uc := m.useCase(1)
	uc.Reports = reports
	uc.ReportTo = "ops@example.com"

	err := uc.HandleDispatchJob(context.Background(), queue.DispatchJob{JobID: "job-2"})

	assert.Error(t, err)
	reports.AssertExpectations(t)
}

func TestHandleDispatchJobDomainFailureIsNotRetried(t *testing.T) {
	m := newDispatchMocks()
	m.contacts.On("ListAll", mock.Anything).Return([]*entity.Contact{}, nil)

	err := m.useCase(1).HandleDispatchJob(context.Background(), queue.DispatchJob{JobID: "job-3"})

	assert.NoError(t, err)
}
