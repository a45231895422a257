package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"

	"github.com/JaimeStill/medbrief/pkg/handlers"
	"github.com/JaimeStill/medbrief/pkg/openapi"
	"github.com/JaimeStill/medbrief/pkg/routes"
	"github.com/JaimeStill/medbrief/pkg/storage"
)

// storageHandler browses the archived source documents of summaries.
type storageHandler struct {
	store       storage.System
	logger      *slog.Logger
	maxListSize int32
}

func newStorageHandler(store storage.System, logger *slog.Logger, maxListSize int32) *storageHandler {
	return &storageHandler{
		store:       store,
		logger:      logger.With("handler", "storage"),
		maxListSize: maxListSize,
	}
}

func (h *storageHandler) routes() routes.Group {
	keyParam := openapi.PathParam("key", "Blob key, e.g. summaries/{id}/1-report.pdf")

	return routes.Group{
		Prefix: "/storage",
		Tags:   []string{"Storage"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.list, OpenAPI: &openapi.Operation{
				Summary: "List archived documents",
				Parameters: []*openapi.Parameter{
					openapi.QueryParam("prefix", "string", "Key prefix, e.g. summaries/{id}/"),
					openapi.QueryParam("marker", "string", "Continuation marker from a previous page"),
					openapi.QueryParam("max_results", "integer", "Page size"),
				},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Blob page", "BlobList"),
					400: openapi.ResponseRef("BadRequest"),
				},
			}},
			{Method: "GET", Pattern: "/download/{key...}", Handler: h.download, OpenAPI: &openapi.Operation{
				Summary:    "Download an archived document",
				Parameters: []*openapi.Parameter{keyParam},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseBinary("Document bytes", "application/octet-stream"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
			{Method: "GET", Pattern: "/{key...}", Handler: h.find, OpenAPI: &openapi.Operation{
				Summary:    "Archived document metadata",
				Parameters: []*openapi.Parameter{keyParam},
				Responses: map[int]*openapi.Response{
					200: openapi.ResponseJSON("Blob metadata", "BlobMeta"),
					404: openapi.ResponseRef("NotFound"),
				},
			}},
		},
	}
}

func storageSchemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"BlobMeta": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"key":            {Type: "string"},
				"content_type":   {Type: "string"},
				"content_length": {Type: "integer"},
				"last_modified":  {Type: "string", Format: "date-time"},
			},
		},
		"BlobList": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"blobs":       {Type: "array", Items: openapi.SchemaRef("BlobMeta")},
				"next_marker": {Type: "string"},
			},
		},
	}
}

func (h *storageHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	maxResults, err := storage.ParseMaxResults(q.Get("max_results"), h.maxListSize)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.store.List(r.Context(), q.Get("prefix"), q.Get("marker"), maxResults)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *storageHandler) find(w http.ResponseWriter, r *http.Request) {
	meta, err := h.store.Find(r.Context(), r.PathValue("key"))
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, meta)
}

func (h *storageHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	result, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer result.Body.Close()

	w.Header().Set("Content-Type", result.ContentType)
	if result.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.ContentLength, 10))
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", path.Base(key)))
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, result.Body); err != nil {
		h.logger.WarnContext(r.Context(), "download interrupted", "key", key, "error", err)
	}
}
