package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/IsmailofficialGithub/rrasheedCRM/internal/usecase"
)

type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

var domainStatus = map[string]int{
	usecase.CodeValidation:           http.StatusBadRequest,
	usecase.CodeInvalidFile:          http.StatusUnprocessableEntity,
	usecase.CodeNoValidRows:          http.StatusUnprocessableEntity,
	usecase.CodeDuplicateListName:    http.StatusConflict,
	usecase.CodeListNotFound:         http.StatusNotFound,
	usecase.CodeNoContacts:           http.StatusNotFound,
	usecase.CodeWebhookNotConfigured: http.StatusServiceUnavailable,
	usecase.CodeQueueNotConfigured:   http.StatusServiceUnavailable,
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: usecase.CodeValidation, Message: message})
}

// writeError maps use case errors onto the JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status, ok := domainStatus[de.Code]
		if !ok {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, ErrorResponse{Error: de.Code, Message: de.Error()})
		return
	}

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: te.Code, Message: te.Message})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "INTERNAL_ERROR", Message: "internal error"})
}

func writeValidationError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: usecase.CodeValidation, Message: "invalid request"}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Fields = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			resp.Fields[fe.Field()] = fe.Tag()
		}
	}
	writeJSON(w, http.StatusBadRequest, resp)
}
