package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/core/ports"
	"github.com/kirillkom/document-intake/internal/observability/metrics"
)

const (
	userIDHeader = "X-User-Id"

	defaultMaxConcurrent      = 64
	defaultBackpressureWait   = 2 * time.Second
	defaultMultipartMemoryCap = 10 << 20
)

type Router struct {
	ingest  ports.FileIngestor
	catalog ports.FileCatalog
	storage ports.ObjectStorage

	serviceName    string
	maxUploadBytes int64
	rateLimitRPS   float64
	rateLimitBurst int
	metrics        *metrics.HTTPServerMetrics
}

type RouterOptions struct {
	ServiceName    string
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int
	Metrics        *metrics.HTTPServerMetrics
}

func NewRouter(
	ingest ports.FileIngestor,
	catalog ports.FileCatalog,
	storage ports.ObjectStorage,
	options RouterOptions,
) *Router {
	serviceName := options.ServiceName
	if serviceName == "" {
		serviceName = "api"
	}
	return &Router{
		ingest:         ingest,
		catalog:        catalog,
		storage:        storage,
		serviceName:    serviceName,
		maxUploadBytes: options.MaxUploadBytes,
		rateLimitRPS:   options.RateLimitRPS,
		rateLimitBurst: options.RateLimitBurst,
		metrics:        options.Metrics,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/files", rt.filesCollection)
	mux.HandleFunc("/v1/files/", rt.fileResource)
	mux.HandleFunc("/v1/taxonomy/types", rt.taxonomyTypes)
	mux.HandleFunc("/v1/taxonomy/tags", rt.taxonomyTags)
	mux.HandleFunc("/v1/taxonomy/counterparties", rt.taxonomyCounterparties)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, defaultMaxConcurrent, defaultBackpressureWait)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(rt.serviceName, handler)
	}
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) filesCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		rt.uploadFile(w, r)
	case http.MethodGet:
		rt.listFiles(w, r)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (rt *Router) uploadFile(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		rt.recordUpload("rejected", 0)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if rt.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes)
	}
	if err := r.ParseMultipartForm(defaultMultipartMemoryCap); err != nil {
		rt.recordUpload("rejected", 0)
		status := http.StatusBadRequest
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		rt.recordUpload("rejected", 0)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "multipart field 'file' is required"})
		return
	}
	defer file.Close()

	req := domain.UploadRequest{
		OwnerID:     userID,
		Title:       r.FormValue("title"),
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
		ManualTags:  splitTags(r.FormValue("tags")),
	}
	if raw := strings.TrimSpace(r.FormValue("category_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			rt.recordUpload("rejected", 0)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category_id must be an integer"})
			return
		}
		req.CategoryID = id
	}
	if raw := strings.TrimSpace(r.FormValue("source_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			rt.recordUpload("rejected", 0)
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "source_id must be an integer"})
			return
		}
		req.SourceID = id
	}

	result, err := rt.ingest.Upload(r.Context(), req)
	if err != nil {
		rt.recordUpload("rejected", 0)
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	if result.Deduplicated {
		rt.recordUpload("duplicate", 0)
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": "duplicate file",
			"file":  result.Record,
		})
		return
	}

	rt.recordUpload("accepted", result.Record.SizeBytes)
	writeJSON(w, http.StatusAccepted, result.Record)
}

func (rt *Router) listFiles(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromRequest(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	query := r.URL.Query()
	filter := domain.Filter{
		FileType:     query.Get("file_type"),
		Tags:         splitTags(query.Get("tags")),
		Counterparty: query.Get("counterparty"),
	}

	files, err := rt.catalog.List(r.Context(), userID, filter)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if files == nil {
		files = []domain.FileRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (rt *Router) fileResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/v1/files/")
	idPart, action, _ := strings.Cut(rest, "/")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "file id must be an integer"})
		return
	}

	switch action {
	case "":
		rt.getFile(w, r, id)
	case "analysis":
		rt.getAnalysis(w, r, id)
	case "download":
		rt.downloadFile(w, r, id)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown resource"})
	}
}

func (rt *Router) getFile(w http.ResponseWriter, r *http.Request, id int64) {
	rec, err := rt.catalog.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (rt *Router) getAnalysis(w http.ResponseWriter, r *http.Request, id int64) {
	rec, err := rt.catalog.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	fields := rec.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	tags := rec.Tags
	if tags == nil {
		tags = []domain.TagLink{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"file_id": rec.ID,
		"status":  rec.Status,
		"fields":  fields,
		"tags":    tags,
		"error":   rec.Error,
	})
}

func (rt *Router) downloadFile(w http.ResponseWriter, r *http.Request, id int64) {
	rec, err := rt.catalog.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	rc, err := rt.storage.Open(r.Context(), rec.FilePath)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "stored file is unavailable"})
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+rec.Title+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}

func (rt *Router) taxonomyTypes(w http.ResponseWriter, r *http.Request) {
	rt.taxonomyList(w, r, "types", rt.catalog.FileTypes)
}

func (rt *Router) taxonomyTags(w http.ResponseWriter, r *http.Request) {
	rt.taxonomyList(w, r, "tags", rt.catalog.TagNames)
}

func (rt *Router) taxonomyCounterparties(w http.ResponseWriter, r *http.Request) {
	rt.taxonomyList(w, r, "counterparties", rt.catalog.Counterparties)
}

func (rt *Router) taxonomyList(
	w http.ResponseWriter,
	r *http.Request,
	key string,
	fetch func(ctx context.Context) ([]string, error),
) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	values, err := fetch(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if values == nil {
		values = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{key: values})
}

func (rt *Router) recordUpload(status string, sizeBytes int64) {
	if rt.metrics == nil {
		return
	}
	rt.metrics.RecordUpload(rt.serviceName, status, sizeBytes)
}

func userIDFromRequest(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(userIDHeader))
	if raw == "" {
		return 0, errors.New("header X-User-Id is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("header X-User-Id must be a positive integer")
	}
	return id, nil
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var tags []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			tags = append(tags, part)
		}
	}
	return tags
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
