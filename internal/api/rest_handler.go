package api

import (
	"context"
	"encoding/json"
	"errors"
	"fraud_screener/internal/dashboard"
	"fraud_screener/internal/domain"
	"fraud_screener/internal/ingest"
	"fraud_screener/internal/processor"
	"fraud_screener/pkg/metrics"
	"fraud_screener/pkg/validator"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	maxJSONBodyBytes = 1 << 20
	uploadFormField  = "file"
)

type HandlerConfig struct {
	RequestTimeout time.Duration
	MaxUploadBytes int64
	SamplePath     string
}

type APIHandler struct {
	evaluator *processor.Evaluator
	batch     *processor.BatchProcessor
	validator *validator.TransactionValidator
	loader    *ingest.Loader
	metrics   *metrics.MetricsCollector
	logger    *slog.Logger
	cfg       HandlerConfig
}

func NewAPIHandler(
	evaluator *processor.Evaluator,
	batch *processor.BatchProcessor,
	txValidator *validator.TransactionValidator,
	loader *ingest.Loader,
	metrics *metrics.MetricsCollector,
	logger *slog.Logger,
	cfg HandlerConfig,
) *APIHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}

	return &APIHandler{
		evaluator: evaluator,
		batch:     batch,
		validator: txValidator,
		loader:    loader,
		metrics:   metrics,
		logger:    logger,
		cfg:       cfg,
	}
}

type CheckTransactionResponse struct {
	TransactionID string          `json:"transaction_id"`
	Status        domain.Status   `json:"status"`
	Details       []domain.Detail `json:"details"`
}

type BatchResponse struct {
	Summary dashboard.Summary          `json:"summary"`
	Results []CheckTransactionResponse `json:"results"`
}

type ErrorResponse struct {
	Error   string                    `json:"error"`
	Code    string                    `json:"code,omitempty"`
	Details string                    `json:"details,omitempty"`
	Fields  []*domain.ValidationError `json:"fields,omitempty"`
}

func newCheckResponse(result domain.EvaluationResult) CheckTransactionResponse {
	return CheckTransactionResponse{
		TransactionID: result.TransactionID,
		Status:        result.Status(),
		Details:       result.Details(),
	}
}

func (h *APIHandler) CheckTransactionHandler(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	dec.UseNumber()

	var body any
	if err := dec.Decode(&body); err != nil {
		h.sendError(r.Context(), w, ErrorResponse{Error: "Invalid request body", Code: "INVALID_REQUEST", Details: err.Error()}, http.StatusBadRequest)
		return
	}
	if _, err := dec.Token(); err != io.EOF {
		h.sendError(r.Context(), w, ErrorResponse{Error: "Request body must contain a single JSON object", Code: "INVALID_REQUEST"}, http.StatusBadRequest)
		return
	}
	fields, ok := body.(map[string]any)
	if !ok {
		h.sendError(r.Context(), w, ErrorResponse{Error: "Request body must be a JSON object", Code: "INVALID_REQUEST"}, http.StatusBadRequest)
		return
	}

	tx, err := h.validator.Parse(fields)
	if err != nil {
		h.recordValidationFailure("api")
		h.sendValidationError(r.Context(), w, err)
		return
	}

	result := h.evaluator.Evaluate(r.Context(), tx)

	h.sendJSON(r.Context(), w, newCheckResponse(result), http.StatusOK)
	h.logger.InfoContext(r.Context(), "Transaction evaluated",
		slog.String("request_id", RequestIDFromContext(r.Context())),
		slog.String("transaction_id", tx.ID),
		slog.String("status", string(result.Status())),
		slog.Int("matches", len(result.Matches)))
}

func (h *APIHandler) BatchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.sendError(ctx, w, ErrorResponse{Error: "Upload too large", Code: "UPLOAD_TOO_LARGE"}, http.StatusRequestEntityTooLarge)
			return
		}
		h.sendError(ctx, w, ErrorResponse{Error: "Upload a CSV or XLSX file in the \"file\" form field", Code: "MISSING_FILE", Details: err.Error()}, http.StatusBadRequest)
		return
	}
	defer file.Close()

	txs, err := h.loader.Load(header.Filename, file)
	if err != nil {
		h.sendLoadError(ctx, w, err)
		return
	}

	h.evaluateBatch(ctx, w, txs)
}

func (h *APIHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	txs, err := h.loader.LoadFile(h.cfg.SamplePath)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load sample transactions",
			slog.String("path", h.cfg.SamplePath),
			slog.String("error", err.Error()))
		h.sendError(ctx, w, ErrorResponse{Error: "Sample transactions unavailable", Code: "SAMPLE_UNAVAILABLE"}, http.StatusInternalServerError)
		return
	}

	h.evaluateBatch(ctx, w, txs)
}

func (h *APIHandler) HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"rules":     h.evaluator.Rules().IDs(),
	}
	h.sendJSON(r.Context(), w, response, http.StatusOK)
}

func (h *APIHandler) evaluateBatch(ctx context.Context, w http.ResponseWriter, txs []domain.Transaction) {
	results, err := h.batch.EvaluateAll(ctx, txs)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, context.DeadlineExceeded) {
			status = http.StatusGatewayTimeout
		}
		h.sendError(ctx, w, ErrorResponse{Error: "Batch evaluation failed", Code: "BATCH_FAILED", Details: err.Error()}, status)
		return
	}

	response := BatchResponse{
		Summary: dashboard.Summarize(results),
		Results: make([]CheckTransactionResponse, len(results)),
	}
	for i, br := range results {
		response.Results[i] = newCheckResponse(br.Result)
	}

	h.sendJSON(ctx, w, response, http.StatusOK)
}

func (h *APIHandler) sendLoadError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		formatErr *domain.UnsupportedFormatError
		verrs     domain.ValidationErrors
	)
	switch {
	case errors.As(err, &formatErr):
		h.sendError(ctx, w, ErrorResponse{Error: formatErr.Error(), Code: "UNSUPPORTED_FORMAT"}, http.StatusUnsupportedMediaType)
	case errors.As(err, &verrs):
		h.recordValidationFailure("batch")
		h.sendValidationError(ctx, w, verrs)
	default:
		h.sendError(ctx, w, ErrorResponse{Error: "Unreadable transaction table", Code: "MALFORMED_TABLE", Details: err.Error()}, http.StatusUnprocessableEntity)
	}
}

func (h *APIHandler) sendValidationError(ctx context.Context, w http.ResponseWriter, err error) {
	var verrs domain.ValidationErrors
	if !errors.As(err, &verrs) {
		h.sendError(ctx, w, ErrorResponse{Error: "Validation failed", Code: "VALIDATION_ERROR", Details: err.Error()}, http.StatusUnprocessableEntity)
		return
	}
	h.sendError(ctx, w, ErrorResponse{Error: "Validation failed", Code: "VALIDATION_ERROR", Fields: verrs}, http.StatusUnprocessableEntity)
}

func (h *APIHandler) recordValidationFailure(source string) {
	if h.metrics != nil {
		h.metrics.RecordValidationFailure(source)
	}
}

func (h *APIHandler) sendJSON(ctx context.Context, w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.ErrorContext(ctx, "Failed to encode JSON response", slog.String("error", err.Error()))
	}
}

func (h *APIHandler) sendError(ctx context.Context, w http.ResponseWriter, resp ErrorResponse, statusCode int) {
	h.sendJSON(ctx, w, resp, statusCode)

	h.logger.WarnContext(ctx, "API error response",
		slog.String("request_id", RequestIDFromContext(ctx)),
		slog.String("message", resp.Error),
		slog.String("code", resp.Code),
		slog.Int("status", statusCode))
}

func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/check_transaction", h.instrument("check_transaction", h.CheckTransactionHandler))
	mux.HandleFunc("POST /check_transaction/", h.instrument("check_transaction", h.CheckTransactionHandler))
	mux.HandleFunc("POST /api/v1/batch", h.instrument("batch", h.BatchHandler))
	mux.HandleFunc("GET /api/v1/dashboard", h.instrument("dashboard", h.DashboardHandler))
	mux.HandleFunc("GET /api/health", h.instrument("health", h.HealthCheckHandler))
}
