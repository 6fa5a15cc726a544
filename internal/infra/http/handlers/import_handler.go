package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/IsmailofficialGithub/rrasheedCRM/internal/entity"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/infra/upload"
	"github.com/IsmailofficialGithub/rrasheedCRM/internal/usecase"
)

const defaultMaxUploadBytes = 10 << 20

type ImportService interface {
	Preview(filename string, r io.Reader) (*usecase.ImportPreview, error)
	Confirm(ctx context.Context, input usecase.ConfirmImportInput) (*usecase.ImportOutcome, error)
	ImportFile(ctx context.Context, listName, filename string, r io.Reader) (*usecase.ImportOutcome, error)
	ListContactLists(ctx context.Context) ([]*entity.ContactList, error)
}

type ImportHandler struct {
	imports        ImportService
	validator      *validator.Validate
	maxUploadBytes int64
	log            *zap.Logger
}

func NewImportHandler(imports ImportService, maxUploadBytes int64, log *zap.Logger) *ImportHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ImportHandler{
		imports:        imports,
		validator:      validator.New(),
		maxUploadBytes: maxUploadBytes,
		log:            log,
	}
}

// Preview (POST /imports/preview) parses a multipart "file" and returns the reviewed rows.
func (h *ImportHandler) Preview(w http.ResponseWriter, r *http.Request) {
	file, filename, ok := h.uploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	preview, err := h.imports.Preview(filename, file)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// Confirm (POST /imports) persists rows the client selected from a preview.
func (h *ImportHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var input usecase.ConfirmImportInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadBytes)).Decode(&input); err != nil {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return
	}
	input.ListName = strings.TrimSpace(input.ListName)
	if err := h.validator.Struct(input); err != nil {
		writeValidationError(w, err)
		return
	}

	outcome, err := h.imports.Confirm(r.Context(), input)
	if err != nil {
		h.logFailure(r, "import confirm failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, outcome)
}

// ImportFile (POST /imports/file) previews and confirms an upload in one request.
func (h *ImportHandler) ImportFile(w http.ResponseWriter, r *http.Request) {
	file, filename, ok := h.uploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	listName := strings.TrimSpace(r.FormValue("list_name"))
	if listName == "" {
		writeBadRequest(w, "list_name is required")
		return
	}

	outcome, err := h.imports.ImportFile(r.Context(), listName, filename, file)
	if err != nil {
		h.logFailure(r, "file import failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, outcome)
}

// Template (GET /imports/template?format=csv|xlsx)
func (h *ImportHandler) Template(w http.ResponseWriter, r *http.Request) {
	format := upload.FormatCSV
	if strings.EqualFold(r.URL.Query().Get("format"), string(upload.FormatXLSX)) {
		format = upload.FormatXLSX
	}

	filename, contentType, body, err := upload.Template(format)
	if err != nil {
		h.log.Error("failed to build template", zap.String("format", string(format)), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "TEMPLATE_ERROR", Message: "could not build template"})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// ListContactLists (GET /contact-lists)
func (h *ImportHandler) ListContactLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.imports.ListContactLists(r.Context())
	if err != nil {
		h.logFailure(r, "list contact lists failed", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "contact_lists": lists})
}

func (h *ImportHandler) uploadedFile(w http.ResponseWriter, r *http.Request) (io.ReadCloser, string, bool) {
	if r.ContentLength > h.maxUploadBytes {
		writeFileTooLarge(w)
		return nil, "", false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFileTooLarge(w)
			return nil, "", false
		}
		writeBadRequest(w, "expected multipart form with a file field")
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "file is required")
		return nil, "", false
	}
	return file, header.Filename, true
}

func (h *ImportHandler) logFailure(r *http.Request, msg string, err error) {
	if usecase.IsDomainError(err) {
		h.log.Info(msg, zap.String("path", r.URL.Path), zap.Error(err))
		return
	}
	h.log.Error(msg, zap.String("path", r.URL.Path), zap.Error(err))
}

func writeFileTooLarge(w http.ResponseWriter) {
	writeJSON(w, http.StatusRequestEntityTooLarge, ErrorResponse{Error: usecase.CodeInvalidFile, Message: "file too large"})
}
