package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/IsmailofficialGithub/rrasheedCRM/internal/entity"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/upload"
)

const (
	DefaultImportBatchSize = 100
	maxReportedErrors      = 5
)

type ReviewRow struct {
	RowNumber     int               `json:"row_number"`
	RawRow        map[string]string `json:"raw_row"`
	NormalizedRow NormalizedRow     `json:"normalized_row"`
	IsValid       bool              `json:"is_valid"`
	Errors        []string          `json:"errors,omitempty"`
}

type ImportPreview struct {
	FileName    string      `json:"file_name"`
	Headers     []string    `json:"headers"`
	TotalRows   int         `json:"total_rows"`
	ValidRows   int         `json:"valid_rows"`
	InvalidRows int         `json:"invalid_rows"`
	Rows        []ReviewRow `json:"rows"`
}

// ValidSelection returns the normalized rows that would be persisted on confirmation.
func (p *ImportPreview) ValidSelection() []NormalizedRow {
	rows := make([]NormalizedRow, 0, p.ValidRows)
	for _, r := range p.Rows {
		if r.IsValid {
			rows = append(rows, r.NormalizedRow)
		}
	}
	return rows
}

type ConfirmImportInput struct {
	ListName       string          `json:"list_name" validate:"required,max=200"`
	SourceFileName string          `json:"source_file_name" validate:"max=255"`
	Rows           []NormalizedRow `json:"rows"`
}

type ImportOutcome struct {
	Success       bool     `json:"success"`
	ContactListID string   `json:"contact_list_id,omitempty"`
	ListName      string   `json:"list_name"`
	Selected      int      `json:"selected"`
	Inserted      int      `json:"inserted"`
	Failed        int      `json:"failed"`
	Excluded      int      `json:"excluded"`
	FailedBatches int      `json:"failed_batches"`
	Errors        []string `json:"errors,omitempty"`
}

type ImportContactsUseCase struct {
	Lists     entity.ContactListRepositoryInterface
	Contacts  entity.ContactRepositoryInterface
	BatchSize int
	Observer  ImportObserver
	Log       *zap.Logger
}

func NewImportContactsUseCase(
	lists entity.ContactListRepositoryInterface,
	contacts entity.ContactRepositoryInterface,
	batchSize int,
	observer ImportObserver,
	log *zap.Logger,
) *ImportContactsUseCase {
	if batchSize <= 0 {
		batchSize = DefaultImportBatchSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ImportContactsUseCase{
		Lists:     lists,
		Contacts:  contacts,
		BatchSize: batchSize,
		Observer:  observer,
		Log:       log,
	}
}

// Preview parses, normalizes and validates an upload without persisting anything.
func (uc *ImportContactsUseCase) Preview(filename string, r io.Reader) (*ImportPreview, error) {
	table, err := upload.Parse(filename, r)
	if err != nil {
		return nil, &DomainError{
			Code:    CodeInvalidFile,
			Message: "could not read uploaded file: " + err.Error(),
			Err:     err,
		}
	}

	preview := &ImportPreview{
		FileName:  filename,
		Headers:   table.Headers,
		TotalRows: len(table.Rows),
		Rows:      make([]ReviewRow, 0, len(table.Rows)),
	}

	for i, raw := range table.Rows {
		row := NormalizeRow(table.Headers, raw)
		errs := ValidateRow(row)

		review := ReviewRow{
			// header is row 1
			RowNumber:     i + 2,
			RawRow:        raw,
			NormalizedRow: row,
			IsValid:       len(errs) == 0,
			Errors:        validationMessages(errs),
		}
		if review.IsValid {
			preview.ValidRows++
		} else {
			preview.InvalidRows++
		}
		preview.Rows = append(preview.Rows, review)
	}

	uc.Log.Info("import preview",
		zap.String("file", filename),
		zap.Int("rows", preview.TotalRows),
		zap.Int("valid", preview.ValidRows),
		zap.Int("invalid", preview.InvalidRows),
	)
	return preview, nil
}

// Confirm creates the contact list and inserts the valid selected rows in batches. A failing
// batch is skipped whole and the remaining batches continue.
func (uc *ImportContactsUseCase) Confirm(ctx context.Context, input ConfirmImportInput) (*ImportOutcome, error) {
	listName := strings.TrimSpace(input.ListName)
	if listName == "" {
		return nil, &DomainError{Code: CodeValidation, Message: "list name is required"}
	}

	valid := make([]NormalizedRow, 0, len(input.Rows))
	for _, r := range input.Rows {
		row := sanitizeRow(r)
		if len(ValidateRow(row)) == 0 {
			valid = append(valid, row)
		}
	}
	if len(valid) == 0 {
		return nil, domainErr(CodeNoValidRows, ErrNoValidRows)
	}

	existing, err := uc.Lists.FindByName(ctx, listName)
	if err != nil && !errors.Is(err, entity.ErrNotFound) {
		return nil, technicalErr(CodeDatabase, "failed to check list name", err)
	}
	if existing != nil {
		return nil, domainErr(CodeDuplicateListName, entity.ErrDuplicateListName)
	}

	list, err := entity.NewContactList(listName, input.SourceFileName, len(valid))
	if err != nil {
		return nil, &DomainError{Code: CodeValidation, Message: err.Error(), Err: err}
	}
	if err := uc.Lists.Create(ctx, list); err != nil {
		if errors.Is(err, entity.ErrDuplicateListName) {
			return nil, domainErr(CodeDuplicateListName, entity.ErrDuplicateListName)
		}
		return nil, technicalErr(CodeDatabase, "failed to create contact list", err)
	}

	outcome := &ImportOutcome{
		ContactListID: list.ID,
		ListName:      list.Name,
		Selected:      len(valid),
		Excluded:      len(input.Rows) - len(valid),
	}

	log := uc.Log.With(zap.String("contact_list_id", list.ID), zap.String("list_name", list.Name))

	importedAt := time.Now().UTC()
	for start := 0; start < len(valid); start += uc.BatchSize {
		end := min(start+uc.BatchSize, len(valid))
		batch := make([]*entity.Contact, 0, end-start)
		for i, r := range valid[start:end] {
			c := entity.NewContact(list.ID, r.Name, r.Phone, r.Email, r.AdditionalData)
			// microsecond steps survive timestamptz precision and keep file order
			c.CreatedAt = importedAt.Add(time.Duration(start+i) * time.Microsecond)
			batch = append(batch, c)
		}

		n, err := uc.Contacts.InsertBatch(ctx, batch)
		if err != nil {
			outcome.FailedBatches++
			outcome.Failed += len(batch)

			if errors.Is(err, entity.ErrDuplicateContact) {
				log.Warn("duplicate contacts in batch, skipping", zap.Int("from", start), zap.Int("to", end), zap.Error(err))
				outcome.appendError(fmt.Sprintf("rows %d-%d skipped: duplicate contacts", start+1, end))
			} else {
				log.Error("batch insert failed, skipping", zap.Int("from", start), zap.Int("to", end), zap.Error(err))
				outcome.appendError(fmt.Sprintf("rows %d-%d skipped: %v", start+1, end, err))
			}
			continue
		}

		outcome.Inserted += n
		outcome.Failed += len(batch) - n
	}

	// The stored total may have been rewritten while batches were in flight, so the final count is always written.
	if err := uc.Lists.UpdateTotalContacts(ctx, list.ID, outcome.Inserted); err != nil {
		log.Error("failed to write final total contacts", zap.Int("inserted", outcome.Inserted), zap.Error(err))
		outcome.appendError("contact total could not be corrected")
	}

	outcome.Success = outcome.Inserted > 0
	if uc.Observer != nil {
		uc.Observer.ObserveImport(outcome.Inserted, outcome.Failed, outcome.FailedBatches)
	}

	log.Info("import finished",
		zap.Int("selected", outcome.Selected),
		zap.Int("inserted", outcome.Inserted),
		zap.Int("failed", outcome.Failed),
		zap.Int("failed_batches", outcome.FailedBatches),
	)
	return outcome, nil
}

// ImportFile previews an upload and confirms every valid row in one step.
func (uc *ImportContactsUseCase) ImportFile(ctx context.Context, listName, filename string, r io.Reader) (*ImportOutcome, error) {
	preview, err := uc.Preview(filename, r)
	if err != nil {
		return nil, err
	}

	outcome, err := uc.Confirm(ctx, ConfirmImportInput{
		ListName:       listName,
		SourceFileName: filename,
		Rows:           preview.ValidSelection(),
	})
	if err != nil {
		return nil, err
	}
	outcome.Excluded += preview.InvalidRows
	return outcome, nil
}

func (uc *ImportContactsUseCase) ListContactLists(ctx context.Context) ([]*entity.ContactList, error) {
	lists, err := uc.Lists.List(ctx)
	if err != nil {
		return nil, technicalErr(CodeDatabase, "failed to list contact lists", err)
	}
	return lists, nil
}

func (o *ImportOutcome) appendError(msg string) {
	if len(o.Errors) < maxReportedErrors {
		o.Errors = append(o.Errors, msg)
	}
}
