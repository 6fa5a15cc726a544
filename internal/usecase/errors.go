package usecase

import "errors"

const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeInvalidFile          = "INVALID_FILE"
	CodeNoValidRows          = "NO_VALID_ROWS"
	CodeDuplicateListName    = "DUPLICATE_LIST_NAME"
	CodeListNotFound         = "CONTACT_LIST_NOT_FOUND"
	CodeNoContacts           = "NO_CONTACTS_FOUND"
	CodeWebhookNotConfigured = "WEBHOOK_NOT_CONFIGURED"
	CodeQueueNotConfigured   = "QUEUE_NOT_CONFIGURED"
	CodeDatabase             = "DATABASE_ERROR"
	CodeQueue                = "QUEUE_ERROR"
)

var (
	ErrWebhookNotConfigured = errors.New("call webhook URL is not configured")
	ErrQueueNotConfigured   = errors.New("dispatch queue is not configured")
	ErrNoValidRows          = errors.New("no valid rows to import")
	ErrNoContactsFound      = errors.New("no contacts found to call")
)

// DomainError is an input or business-rule failure the caller can act on.
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is an infrastructure failure (database, queue).
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error { return e.Err }

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func domainErr(code string, err error) *DomainError {
	return &DomainError{Code: code, Message: err.Error(), Err: err}
}

func technicalErr(code, message string, err error) *TechnicalError {
	return &TechnicalError{Code: code, Message: message, Err: err}
}
