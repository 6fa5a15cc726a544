package usecase

import (
	"context"

	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/integration/callflow"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/mail"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/queue"
)

// CallWebhook triggers the outbound-calling workflow.
type CallWebhook interface {
	Configured() bool
	Send(ctx context.Context, payload callflow.CallPayload) (callflow.CallResponse, error)
}

// PhoneCanonicalizer maps a raw phone string to the key used for dedup, lead lookup and logging.
type PhoneCanonicalizer interface {
	Canonical(raw string) string
}

type QueueProducerInterface interface {
	PublishDispatch(ctx context.Context, job queue.DispatchJob) error
}

type ReportSender interface {
	SendDispatchReport(to string, report mail.DispatchReport) error
}

type ImportObserver interface {
	ObserveImport(inserted, failed, failedBatches int)
}

type DispatchObserver interface {
	ObserveDispatch(source, outcome string)
}
