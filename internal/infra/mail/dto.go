package mail

import "time"

type DispatchReport struct {
	JobID         string
	Source        string
	ContactListID string
	Total         int
	SuccessCount  int
	FailedCount   int
	SkippedCount  int
	Errors        []string
	FailureReason string
	FinishedAt    time.Time
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}
