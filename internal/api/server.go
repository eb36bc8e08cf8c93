package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"alera/internal/config"
	"alera/internal/models"
	"alera/internal/scout"
	"alera/internal/util"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Server struct {
	runner      scout.Runner
	catalog     *config.Catalog
	defaultMode models.Mode
	validate    *validator.Validate
	logger      *zap.Logger
}

type scoutRequest struct {
	Query      string `json:"query" validate:"required,max=2000"`
	Category   string `json:"category" validate:"omitempty,max=32"`
	DraftRange string `json:"draft_range" validate:"omitempty,max=32"`
	Mode       string `json:"mode" validate:"omitempty,max=16"`
	TopK       int    `json:"top_k" validate:"omitempty,min=1,max=100"`
}

type categoryInfo struct {
	Name         string   `json:"name"`
	Label        string   `json:"label"`
	DashboardURL string   `json:"dashboard_url"`
	DraftRanges  []string `json:"draft_ranges,omitempty"`
}

func NewServer(runner scout.Runner, catalog *config.Catalog, defaultMode models.Mode, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultMode.Name == "" {
		defaultMode = models.ModeQuick
	}
	return &Server{
		runner:      runner,
		catalog:     catalog,
		defaultMode: defaultMode,
		validate:    validator.New(),
		logger:      logger,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/categories", s.handleCategories)
	mux.HandleFunc("/scout", s.handleScout)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	out := make([]categoryInfo, 0, len(models.Categories()))
	for _, c := range models.Categories() {
		src, err := s.catalog.Source(c)
		if err != nil {
			continue
		}
		info := categoryInfo{Name: string(c), Label: c.Label(), DashboardURL: src.DashboardURL}
		if c == models.CategoryDraft {
			info.DraftRanges = models.DraftRanges()
		}
		out = append(out, info)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": out,
		"modes":      []string{models.ModeQuick.Name, models.ModeDetailed.Name},
	})
}

func (s *Server) handleScout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var body scoutRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	// Whitespace-only queries fail "required"; the raw text is what runs.
	check := body
	check.Query = strings.TrimSpace(check.Query)
	if err := s.validate.Struct(check); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	category, err := models.ParseCategory(body.Category)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	mode := s.defaultMode
	if body.Mode != "" {
		if mode, err = models.ParseMode(body.Mode); err != nil {
			writeErr(w, http.StatusBadRequest, err)
			return
		}
	}

	started := time.Now()
	res, err := s.runner.Run(r.Context(), scout.Request{
		Query:      body.Query,
		Category:   category,
		DraftRange: body.DraftRange,
		Mode:       mode,
		TopK:       body.TopK,
	})
	if err != nil {
		status := statusFor(err)
		s.logger.Warn("scout request failed",
			zap.String("category", string(category)),
			zap.String("mode", mode.Name),
			zap.Int("status", status),
			zap.Duration("took", time.Since(started)),
			zap.Error(err),
		)
		writeErr(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func statusFor(err error) int {
	var (
		retErr *util.RetrievalError
		extErr *util.ExternalServiceError
	)
	switch {
	case errors.Is(err, util.ErrEmptyQuery), errors.Is(err, util.ErrUnknownCategory):
		return http.StatusBadRequest
	case errors.As(err, &retErr):
		return http.StatusInternalServerError
	case errors.Is(err, util.ErrRateLimited), errors.Is(err, util.ErrQuotaExhausted):
		return http.StatusTooManyRequests
	case errors.As(err, &extErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "AL-API-4000"

	var retErr *util.RetrievalError
	switch {
	case errors.As(err, &retErr):
		// Retrieval failures are shown as-is so a size mismatch reads differently
		// from a missing file.
		return apiError{Code: "AL-RET-5001", Message: "Error: " + retErr.Error()}
	case status == http.StatusTooManyRequests:
		return apiError{Code: "AL-API-5020", Message: "Language model is rate limited or out of quota. Retry shortly."}
	case status == http.StatusBadGateway:
		return apiError{Code: "AL-API-5020", Message: "Upstream language model unavailable. Retry shortly."}
	case status >= 500:
		return apiError{Code: "AL-API-5000", Message: "Internal server error. Please retry or check service logs."}
	case status == http.StatusBadRequest:
		code = "AL-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusMethodNotAllowed:
		code = "AL-API-4005"
		msg = "This endpoint does not support the requested method."
	}

	// For 4xx, keep user-safe validation context only.
	if status >= 400 && status < 500 && err != nil {
		var verrs validator.ValidationErrors
		switch {
		case errors.As(err, &verrs) && len(verrs) > 0:
			msg = fmt.Sprintf("Field %s failed %s validation.", strings.ToLower(verrs[0].Field()), verrs[0].Tag())
		case errors.Is(err, util.ErrEmptyQuery):
			msg = "A scouting query is required."
		case errors.Is(err, util.ErrUnknownCategory):
			msg = "Unknown player category."
		case strings.Contains(err.Error(), "unknown recommendation mode"):
			msg = "Mode must be quick or detailed."
		case strings.Contains(err.Error(), "invalid json"):
			msg = "Malformed JSON request body."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
