package summaries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/medbrief/internal/pipeline"
	"github.com/JaimeStill/medbrief/pkg/formatting"
	"github.com/JaimeStill/medbrief/pkg/gemini"
	"github.com/JaimeStill/medbrief/pkg/handlers"
	"github.com/JaimeStill/medbrief/pkg/openapi"
	"github.com/JaimeStill/medbrief/pkg/pagination"
	"github.com/JaimeStill/medbrief/pkg/routes"
)

// Handler provides HTTP endpoints for summary operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
	maxFiles      int
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, pagination config and upload limits.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
	maxFiles int,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "summaries"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
		maxFiles:      maxFiles,
	}
}

// Routes returns the route group definition for summary endpoints.
func (h *Handler) Routes() routes.Group {
	id := openapi.PathParam("id", "Summary UUID")

	return routes.Group{
		Prefix: "/summaries",
		Tags:   []string{"Summaries"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List, OpenAPI: &openapi.Operation{
				Summary: "List patients, newest first, with urgency",
				Parameters: []*openapi.Parameter{
					openapi.QueryParam("patient_name", "string", "Patient name contains"),
					openapi.QueryParam("page", "integer", "Page number"),
					openapi.QueryParam("page_size", "integer", "Page size"),
					openapi.QueryParam("search", "string", "Search patient name and synopsis"),
					openapi.QueryParam("sort", "string", "Sort fields, e.g. -CreatedAt"),
				},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Page of summaries", "SummaryPage"),
				},
			}},
			{Method: "POST", Pattern: "", Handler: h.Generate, OpenAPI: &openapi.Operation{
				Summary:     "Generate a clinical brief from uploaded documents",
				Description: "Multipart form with patientName and one to max_files PDF or image parts named files.",
				RequestBody: openapi.RequestBodyMultipart("GenerateForm"),
				Responses: map[int]*openapi.Response{
					201: openapi.ResponseJSON("Stored summary", "SummaryResponse"),
					400: openapi.ResponseRef("BadRequest"),
					429: openapi.ResponseRef("TooManyRequests"),
					500: openapi.ResponseRef("InternalError"),
					502: openapi.ResponseRef("BadGateway"),
					503: openapi.ResponseRef("ServiceUnavailable"),
				},
			}},
			{Method: "POST", Pattern: "/search", Handler: h.Search, OpenAPI: &openapi.Operation{
				Summary:     "Search summaries",
				RequestBody: openapi.RequestBodyJSON("SummarySearch", true),
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Page of summaries", "SummaryPage"),
					400: openapi.ResponseRef("BadRequest"),
				},
			}},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: &openapi.Operation{
				Summary:    "Find a summary with its timeline",
				Parameters: []*openapi.Parameter{id},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Summary", "ClinicalSummary"),
					400: openapi.ResponseRef("BadRequest"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "GET", Pattern: "/{id}/audio", Handler: h.Audio, OpenAPI: &openapi.Operation{
				Summary:    "Stream the audio brief",
				Parameters: []*openapi.Parameter{id},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseBinary("MPEG audio", "audio/mpeg"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: &openapi.Operation{
				Summary:    "Delete a summary, its timeline, letters and archived documents",
				Parameters: []*openapi.Parameter{id},
				Responses: map[int]*openapi.Response{
					204: {Description: "Deleted"},
					404: openapi.ResponseRef("NotFound"),
				},
			}},
		},
	}
}

// Generate accepts the multipart upload and runs the summary pipeline.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, fmt.Errorf("%w: limit is %s", ErrFileTooLarge, formatting.FormatBytes(h.maxUploadSize, 0)))
			return
		}
		h.fail(w, fmt.Errorf("%w: %w", ErrInvalidInput, err))
		return
	}

	patientName := strings.TrimSpace(r.FormValue("patientName"))
	headers := r.MultipartForm.File["files"]

	if patientName == "" || len(headers) == 0 {
		h.fail(w, ErrInvalidInput)
		return
	}
	if len(headers) > h.maxFiles {
		h.fail(w, fmt.Errorf("%w: %d received, at most %d accepted", ErrTooManyFiles, len(headers), h.maxFiles))
		return
	}

	files := make([]pipeline.File, 0, len(headers))
	for _, fh := range headers {
		f, err := h.readFile(fh)
		if err != nil {
			h.fail(w, err)
			return
		}
		files = append(files, f)
	}

	summary, err := h.sys.Generate(r.Context(), GenerateCommand{
		PatientName: patientName,
		Files:       files,
	})
	if err != nil {
		h.fail(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, Response{Success: true, Summary: summary})
}

// fail writes the error envelope, adding a retry hint for provider failures.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := MapHTTPStatus(err)
	switch status {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable:
		handlers.RespondRetry(w, h.logger, status, err, gemini.RetryAfter(err))
	default:
		handlers.RespondError(w, h.logger, status, err)
	}
}

func (h *Handler) readFile(fh *multipart.FileHeader) (pipeline.File, error) {
	src, err := fh.Open()
	if err != nil {
		return pipeline.File{}, fmt.Errorf("%w: open %s: %w", ErrInvalidInput, fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return pipeline.File{}, fmt.Errorf("%w: read %s: %w", ErrInvalidInput, fh.Filename, err)
	}
	if len(data) == 0 {
		return pipeline.File{}, fmt.Errorf("%w: %s is empty", ErrInvalidInput, fh.Filename)
	}

	contentType := detectContentType(fh.Header.Get("Content-Type"), data)
	if !acceptedType(contentType) {
		return pipeline.File{}, fmt.Errorf("%w: %s is %s", ErrUnsupportedType, fh.Filename, contentType)
	}

	return pipeline.File{
		Name:        fh.Filename,
		ContentType: contentType,
		Data:        data,
		PageCount:   h.pageCount(data, contentType),
	}, nil
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		if i := strings.IndexByte(header, ';'); i >= 0 {
			header = strings.TrimSpace(header[:i])
		}
		return header
	}
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

func acceptedType(contentType string) bool {
	return contentType == "application/pdf" || strings.HasPrefix(contentType, "image/")
}

func (h *Handler) pageCount(data []byte, contentType string) int {
	if contentType != "application/pdf" {
		return 0
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		h.logger.Warn("failed to extract PDF page count", "error", err)
		return 0
	}
	return count
}

// List returns the patient list with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts a JSON body with pagination and filter criteria.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single summary by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	summary, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, summary)
}

// Audio streams the decoded narration.
func (h *Handler) Audio(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	audio, err := h.sys.Audio(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", "brief-"+id.String()+".mp3"))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, audio); err != nil {
		h.logger.Error("audio stream interrupted", "id", id, "error", err)
	}
}

// Delete removes a summary by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathID(r, "id")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
