package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/mail"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/queue"
)

// HandleDispatchJob runs a queued dispatch and mails the summary when a recipient is set.
// A failed run is still reported. Technical failures are returned so the delivery is dead-lettered.
func (uc *DispatchCallsUseCase) HandleDispatchJob(ctx context.Context, job queue.DispatchJob) error {
	log := uc.Log.With(zap.String("job_id", job.JobID))

	result, runErr := uc.Execute(ctx, DispatchInput{
		ContactListID: job.ContactListID,
		Source:        job.Source,
	})

	report := mail.DispatchReport{
		JobID:         job.JobID,
		Source:        normalizeSource(job.Source),
		ContactListID: job.ContactListID,
		FinishedAt:    time.Now().UTC(),
	}
	if runErr != nil {
		report.FailureReason = runErr.Error()
		log.Error("queued dispatch failed", zap.Error(runErr))
	} else {
		report.Total = result.Total
		report.SuccessCount = result.SuccessCount
		report.FailedCount = result.FailedCount
		report.SkippedCount = result.SkippedCount
		report.Errors = result.Errors
	}

	to := job.ReportTo
	if to == "" {
		to = uc.ReportTo
	}
	if uc.Reports != nil && to != "" {
		if err := uc.Reports.SendDispatchReport(to, report); err != nil {
			log.Warn("failed to send dispatch report", zap.String("to", to), zap.Error(err))
		}
	}

	// Missing config or an empty candidate set will not change on redelivery.
	if runErr != nil && IsDomainError(runErr) {
		return nil
	}
	return runErr
}
