package usecase_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/IsmailofficialGithub/rrasheedCRM/internal/entity"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/integration/callflow"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/mail"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/queue"
)

// MockContactListRepository
type MockContactListRepository struct {
	mock.Mock
}

func (m *MockContactListRepository) Create(ctx context.Context, list *entity.ContactList) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *MockContactListRepository) FindByID(ctx context.Context, id string) (*entity.ContactList, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ContactList), args.Error(1)
}

func (m *MockContactListRepository) FindByName(ctx context.Context, name string) (*entity.ContactList, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ContactList), args.Error(1)
}

func (m *MockContactListRepository) UpdateTotalContacts(ctx context.Context, id string, total int) error {
	args := m.Called(ctx, id, total)
	return args.Error(0)
}

func (m *MockContactListRepository) List(ctx context.Context) ([]*entity.ContactList, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.ContactList), args.Error(1)
}

// MockContactRepository
type MockContactRepository struct {
	mock.Mock
}

func (m *MockContactRepository) InsertBatch(ctx context.Context, contacts []*entity.Contact) (int, error) {
	args := m.Called(ctx, contacts)
	return args.Int(0), args.Error(1)
}

func (m *MockContactRepository) ListByContactList(ctx context.Context, listID string) ([]*entity.Contact, error) {
	args := m.Called(ctx, listID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Contact), args.Error(1)
}

func (m *MockContactRepository) ListAll(ctx context.Context) ([]*entity.Contact, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Contact), args.Error(1)
}

// MockLeadRepository
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByPhone(ctx context.Context, phone string) (*entity.Lead, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) ListCallable(ctx context.Context) ([]*entity.Lead, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

// MockCallLogRepository
type MockCallLogRepository struct {
	mock.Mock
}

func (m *MockCallLogRepository) LatestByPhone(ctx context.Context, phone string) (*entity.CallLogEntry, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CallLogEntry), args.Error(1)
}

func (m *MockCallLogRepository) LatestByLeadID(ctx context.Context, leadID string) (*entity.CallLogEntry, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CallLogEntry), args.Error(1)
}

func (m *MockCallLogRepository) Create(ctx context.Context, entry *entity.CallLogEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockWebhook
type MockWebhook struct {
	mock.Mock
}

func (m *MockWebhook) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockWebhook) Send(ctx context.Context, payload callflow.CallPayload) (callflow.CallResponse, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(callflow.CallResponse), args.Error(1)
}

// MockQueueProducer
type MockQueueProducer struct {
	mock.Mock
}

func (m *MockQueueProducer) PublishDispatch(ctx context.Context, job queue.DispatchJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

// MockReportSender
type MockReportSender struct {
	mock.Mock
}

func (m *MockReportSender) SendDispatchReport(to string, report mail.DispatchReport) error {
	args := m.Called(to, report)
	return args.Error(0)
}
