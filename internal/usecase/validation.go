package usecase

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// ValidateRow requires name and phone. Formats are not checked.
func ValidateRow(row NormalizedRow) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(row.Name) == "" {
		errors = append(errors, ValidationError{FieldName, "is required"})
	}
	if strings.TrimSpace(row.Phone) == "" {
		errors = append(errors, ValidationError{FieldPhone, "is required"})
	}
	return errors
}

func validationMessages(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}
