package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"costcalc/core/export"
	"costcalc/core/runner"
	"costcalc/core/types"
	"costcalc/internal/errors"
	"costcalc/internal/logging"
)

// Handler implements the API endpoints over a runner
type Handler struct {
	runner *runner.Runner
	logger *zap.Logger
}

// NewHandler creates a handler
func NewHandler(r *runner.Runner) *Handler {
	return &Handler{runner: r, logger: logging.Logger}
}

// calculatorSummary is the listing shape for one calculator
type calculatorSummary struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Fields int    `json:"fields"`
}

// ListCalculators handles GET /api/calculators
func (h *Handler) ListCalculators(w http.ResponseWriter, r *http.Request) {
	defs := h.runner.Registry().List()
	out := make([]calculatorSummary, 0, len(defs))
	for _, def := range defs {
		out = append(out, calculatorSummary{
			Key:    def.Key(),
			Title:  def.Title(),
			Fields: len(def.Schema()),
		})
	}
	writeOK(w, http.StatusOK, out)
}

// GetSchema handles GET /api/calculators/{key}/schema
func (h *Handler) GetSchema(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	def, ok := h.runner.Registry().Get(key)
	if !ok {
		writeError(w, http.StatusNotFound, errors.NotFound("calculator", key))
		return
	}
	writeOK(w, http.StatusOK, map[string]interface{}{
		"key":    def.Key(),
		"title":  def.Title(),
		"schema": def.Schema(),
	})
}

// computeRequest is the POST /compute body
type computeRequest struct {
	Inputs types.RawInputs `json:"inputs"`
	Region string          `json:"region,omitempty"`
}

// computeResponse carries a successful computation
type computeResponse struct {
	Record      *types.CalculationRecord `json:"record"`
	Explanation string                   `json:"explanation"`
}

// Compute handles POST /api/calculators/{key}/compute
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req computeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Parsing("invalid request body", err))
		return
	}

	panel, err := h.runner.NewPanel(key)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}

	for name, value := range req.Inputs {
		panel.SetField(name, value)
	}
	if req.Region != "" {
		panel.SetRegion(r.Context(), req.Region)
	}

	rec, err := panel.Calculate()
	if err != nil {
		if errors.IsType(err, errors.TypeValidation) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		// The registry shields formula panics; surface only a generic
		// failure notice.
		h.logger.Error("compute failed", zap.String("calculator", key), zap.Error(err))
		writeError(w, http.StatusInternalServerError,
			errors.New(errors.TypeCompute, "calculation failed"))
		return
	}

	writeOK(w, http.StatusOK, computeResponse{
		Record:      rec,
		Explanation: rec.Explanation,
	})
}

// GetPricing handles GET /api/pricing/{region}?calculator=concrete
func (h *Handler) GetPricing(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "region")
	calculator := r.URL.Query().Get("calculator")
	if calculator == "" {
		writeError(w, http.StatusBadRequest,
			errors.New(errors.TypeValidation, "calculator query parameter is required"))
		return
	}

	snap := h.runner.Resolver().GetPricing(r.Context(), calculator, region)
	writeOK(w, http.StatusOK, snap)
}

// LatestRecord handles GET /api/records/latest
func (h *Handler) LatestRecord(w http.ResponseWriter, r *http.Request) {
	rec := h.runner.MostRecent()
	if rec == nil {
		writeError(w, http.StatusNotFound,
			errors.New(errors.TypeNotFound, "no calculation yet"))
		return
	}
	writeOK(w, http.StatusOK, rec)
}

// History handles GET /api/records/{key}/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	writeOK(w, http.StatusOK, h.runner.Store().History(key))
}

// ExportCSV handles GET /api/export/{key}/csv
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rec := h.lastRecord(w, r)
	if rec == nil {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(rec, "csv")+`"`)
	if err := export.ToCSV(w, rec); err != nil {
		h.logger.Warn("csv export failed", zap.Error(err))
	}
}

// ExportPrint handles GET /api/export/{key}/print
func (h *Handler) ExportPrint(w http.ResponseWriter, r *http.Request) {
	rec := h.lastRecord(w, r)
	if rec == nil {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(export.PrintHTML(rec)))
}

// ExportSummary handles GET /api/export/{key}/summary
func (h *Handler) ExportSummary(w http.ResponseWriter, r *http.Request) {
	rec := h.lastRecord(w, r)
	if rec == nil {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(export.SummaryText(rec)))
}

// lastRecord fetches the last calculation for a key, writing the 404 itself
// when there is none
func (h *Handler) lastRecord(w http.ResponseWriter, r *http.Request) *types.CalculationRecord {
	key := chi.URLParam(r, "key")
	rec := h.runner.LastCalculation(key)
	if rec == nil {
		writeError(w, http.StatusNotFound,
			errors.New(errors.TypeNotFound, "no calculation to export for "+key))
	}
	return rec
}
