// Package api exposes the import pipeline over HTTP. Request bodies are raw
// CSV except for force imports, which take the JSON transactions returned
// in a previous response's potentialDuplicates.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/LebsNeo/mrmoney-sub000/internal/ingest"
	"github.com/LebsNeo/mrmoney-sub000/internal/logger"
	"github.com/LebsNeo/mrmoney-sub000/internal/model"
)

// Options configures the router.
type Options struct {
	RateLimit    float64 // requests per second per client; 0 disables
	RateBurst    int
	MaxBodyBytes int64
}

type handler struct {
	svc     *ingest.Service
	maxBody int64
}

// NewRouter builds the HTTP handler.
func NewRouter(svc *ingest.Service, opts Options, log zerolog.Logger) http.Handler {
	h := &handler{svc: svc, maxBody: opts.MaxBodyBytes}
	if h.maxBody <= 0 {
		h.maxBody = 10 << 20
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	if opts.RateLimit > 0 {
		r.Use(newRateLimiter(opts.RateLimit, opts.RateBurst).middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/formats", h.formats)
		r.Route("/imports", func(r chi.Router) {
			r.Post("/bank", h.importBank)
			r.Post("/bank/force", h.forceImport)
			r.Post("/ota", h.previewOTA)
			r.Post("/ota/commit", h.commitOTA)
		})
	})
	return r
}

func (h *handler) formats(w http.ResponseWriter, r *http.Request) {
	dialects, platforms := h.svc.Formats()
	writeJSON(w, http.StatusOK, map[string][]string{"dialects": dialects, "platforms": platforms})
}

func (h *handler) importBank(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	dialect := r.URL.Query().Get("dialect")
	if dialect == "" {
		writeError(w, http.StatusBadRequest, "dialect is required", nil)
		return
	}
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))
	text, ok := h.readBody(w, r)
	if !ok {
		return
	}

	out, err := h.svc.ImportBank(r.Context(), ingest.BankRequest{
		Dialect: dialect, Text: text, Scope: scope, Source: "api", DryRun: dryRun,
	})
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type forceRequest struct {
	Transactions []model.ParsedTransaction `json:"transactions"`
}

func (h *handler) forceImport(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	var req forceRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid body: %v", err), nil)
		return
	}
	for i, t := range req.Transactions {
		if t.Amount.IsNegative() || (t.Flow != model.FlowIncome && t.Flow != model.FlowExpense) {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("transaction %d: amount must be non-negative and flow INCOME or EXPENSE", i), nil)
			return
		}
	}

	n, err := h.svc.ForceImport(r.Context(), scope, req.Transactions, "api")
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"persisted": n})
}

func (h *handler) previewOTA(w http.ResponseWriter, r *http.Request) {
	platform := r.URL.Query().Get("platform")
	if platform == "" {
		writeError(w, http.StatusBadRequest, "platform is required", nil)
		return
	}
	text, ok := h.readBody(w, r)
	if !ok {
		return
	}
	res, err := h.svc.ParseOTA(r.Context(), platform, text)
	if err != nil {
		h.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) commitOTA(w http.ResponseWriter, r *http.Request) {
	scope, ok := scopeFrom(w, r)
	if !ok {
		return
	}
	platform := r.URL.Query().Get("platform")
	if platform == "" {
		writeError(w, http.StatusBadRequest, "platform is required", nil)
		return
	}
	text, ok := h.readBody(w, r)
	if !ok {
		return
	}
	out, err := h.svc.CommitOTA(r.Context(), ingest.OTARequest{Platform: platform, Text: text, Scope: scope, Source: "api"})
	if err != nil {
		h.fail(w, r, err, &out.Persist)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request) (string, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit), nil)
			return "", false
		}
		writeError(w, http.StatusBadRequest, "reading body failed", nil)
		return "", false
	}
	return string(data), true
}

// fail maps an import error to a response. Partial persistence counts and
// warnings travel with the error.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error, partial *model.PersistResult) {
	status := http.StatusInternalServerError
	if ingest.IsClientError(err) {
		status = http.StatusBadRequest
	} else {
		logger.FromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("import failed")
	}
	writeError(w, status, err.Error(), partial)
}

func scopeFrom(w http.ResponseWriter, r *http.Request) (model.Scope, bool) {
	q := r.URL.Query()
	scope := model.Scope{
		PropertyID:     strings.TrimSpace(q.Get("property")),
		OrganisationID: strings.TrimSpace(q.Get("organisation")),
	}
	if scope.PropertyID == "" {
		writeError(w, http.StatusBadRequest, "property is required", nil)
		return scope, false
	}
	return scope, true
}

type errorBody struct {
	Error   string               `json:"error"`
	Persist *model.PersistResult `json:"persist,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string, partial *model.PersistResult) {
	writeJSON(w, status, errorBody{Error: msg, Persist: partial})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
