package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/IsmailofficialGithub/rrasheedCRM/internal/usecase"
)

type DispatchService interface {
	Execute(ctx context.Context, input usecase.DispatchInput) (*usecase.DispatchResult, error)
	Schedule(ctx context.Context, input usecase.DispatchInput) (string, error)
}

type DispatchHandler struct {
	dispatcher DispatchService
	validator  *validator.Validate
	log        *zap.Logger
}

type ScheduleResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"job_id"`
}

func NewDispatchHandler(dispatcher DispatchService, log *zap.Logger) *DispatchHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &DispatchHandler{
		dispatcher: dispatcher,
		validator:  validator.New(),
		log:        log,
	}
}

// Dispatch (POST /dispatch) runs the whole candidate set before answering. The run is detached
// from the request context so a disconnecting client does not stop it halfway.
func (h *DispatchHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decode(w, r)
	if !ok {
		return
	}

	result, err := h.dispatcher.Execute(context.WithoutCancel(r.Context()), input)
	if err != nil {
		if !usecase.IsDomainError(err) {
			h.log.Error("dispatch failed", zap.Error(err))
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Schedule (POST /dispatch/async) queues the run and answers 202 with the job id.
func (h *DispatchHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	input, ok := h.decode(w, r)
	if !ok {
		return
	}

	jobID, err := h.dispatcher.Schedule(r.Context(), input)
	if err != nil {
		if !usecase.IsDomainError(err) {
			h.log.Error("dispatch schedule failed", zap.Error(err))
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, ScheduleResponse{Success: true, JobID: jobID})
}

// decode accepts an empty body as "all contacts".
func (h *DispatchHandler) decode(w http.ResponseWriter, r *http.Request) (usecase.DispatchInput, bool) {
	var input usecase.DispatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return input, false
	}
	if err := h.validator.Struct(input); err != nil {
		writeValidationError(w, err)
		return input, false
	}
	return input, true
}
