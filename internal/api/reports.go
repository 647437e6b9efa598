package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/asterview/asterview/internal/export"
	"github.com/asterview/asterview/internal/mailer"
	"github.com/asterview/asterview/internal/notify"
	"github.com/asterview/asterview/internal/report"
	"github.com/asterview/asterview/internal/store"
	"github.com/asterview/asterview/internal/types"
)

// ReportHandler serves the report endpoints
type ReportHandler struct {
	svc      *report.Service
	notifier *notify.Notifier
	mailer   mailer.Mailer
	logger   zerolog.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(svc *report.Service, notifier *notify.Notifier, m mailer.Mailer, logger zerolog.Logger) *ReportHandler {
	return &ReportHandler{
		svc:      svc,
		notifier: notifier,
		mailer:   m,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

type callsResponse struct {
	ReportID string             `json:"reportId"`
	Calls    []types.Call       `json:"calls"`
	Summary  types.StatsSummary `json:"summary"`
}

// HandleCalls handles GET /api/calls
func (h *ReportHandler) HandleCalls(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	calls, err := h.svc.Calls(r.Context(), sel)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	summary := h.svc.Summarize(calls)
	reportID := h.notifier.ReportDone(r.Context(), sel.Queues, sel.Start, sel.End, summary)

	writeJSON(w, callsResponse{ReportID: reportID, Calls: calls, Summary: summary})
}

// HandleStats handles GET /api/stats
func (h *ReportHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	calls, err := h.svc.Calls(r.Context(), sel)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}

	writeJSON(w, h.svc.Summarize(calls))
}

// HandleExport handles GET /api/export.csv
func (h *ReportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	sel, err := parseSelection(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	calls, err := h.svc.Calls(r.Context(), sel)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}

	filename := fmt.Sprintf("queue-report-%s-%s.csv",
		sel.Start.Format("20060102"), sel.End.Format("20060102"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	if err := export.WriteCallsCSV(w, calls); err != nil {
		h.logger.Error().Err(err).Msg("csv export failed mid-stream")
	}
}

type emailRequest struct {
	To     []string `json:"to"`
	Queues []string `json:"queues"`
	Start  string   `json:"start"`
	End    string   `json:"end"`
}

// HandleEmailReport handles POST /api/reports/email
func (h *ReportHandler) HandleEmailReport(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if len(req.To) == 0 {
		http.Error(w, "no recipients", http.StatusBadRequest)
		return
	}

	start, err := parseTimeParam(req.Start)
	if err != nil {
		http.Error(w, "invalid start: "+err.Error(), http.StatusBadRequest)
		return
	}
	end, err := parseTimeParam(req.End)
	if err != nil {
		http.Error(w, "invalid end: "+err.Error(), http.StatusBadRequest)
		return
	}

	sel := report.Selection{Queues: req.Queues, Start: start, End: end}
	calls, err := h.svc.Calls(r.Context(), sel)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}
	summary := h.svc.Summarize(calls)

	subject := fmt.Sprintf("Queue report %s - %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err := h.mailer.Send(r.Context(), req.To, subject, summaryText(sel, summary)); err != nil {
		h.logger.Error().Err(err).Strs("to", req.To).Msg("report mail failed")
		http.Error(w, "mail delivery failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]int{"sent": len(req.To)})
}

// respondPipelineError maps pipeline failures to responses that let the
// UI show a degraded-data warning instead of silently wrong numbers.
func (h *ReportHandler) respondPipelineError(w http.ResponseWriter, err error) {
	var pbe *report.PartialBatchError
	if errors.As(err, &pbe) {
		h.logger.Warn().Ints("failed_chunks", pbe.FailedChunks).Err(err).Msg("partial batch failure")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":        "partial batch failure",
			"failedChunks": pbe.FailedChunks,
			"totalChunks":  pbe.TotalChunks,
		})
		return
	}
	if errors.Is(err, store.ErrUnavailable) {
		h.logger.Error().Err(err).Msg("event store unavailable")
		http.Error(w, "event store unavailable", http.StatusServiceUnavailable)
		return
	}
	h.logger.Error().Err(err).Msg("report pipeline failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func parseSelection(r *http.Request) (report.Selection, error) {
	q := r.URL.Query()

	start, err := parseTimeParam(q.Get("start"))
	if err != nil {
		return report.Selection{}, fmt.Errorf("invalid start: %w", err)
	}
	end, err := parseTimeParam(q.Get("end"))
	if err != nil {
		return report.Selection{}, fmt.Errorf("invalid end: %w", err)
	}
	if !end.After(start) {
		return report.Selection{}, fmt.Errorf("end must be after start")
	}

	sel := report.Selection{
		Start:           start,
		End:             end,
		IncludeInternal: q.Get("includeInternal") == "true",
	}
	if queues := q.Get("queues"); queues != "" {
		for _, name := range strings.Split(queues, ",") {
			if name = strings.TrimSpace(name); name != "" {
				sel.Queues = append(sel.Queues, name)
			}
		}
	}
	return sel, nil
}

func parseTimeParam(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("missing")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("want RFC3339 or YYYY-MM-DD, got %q", value)
}

func summaryText(sel report.Selection, s types.StatsSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Queue report %s - %s\n", sel.Start.Format("2006-01-02 15:04"), sel.End.Format("2006-01-02 15:04"))
	if len(sel.Queues) > 0 {
		fmt.Fprintf(&b, "Queues: %s\n", strings.Join(sel.Queues, ", "))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total calls:     %d\n", s.Total)
	fmt.Fprintf(&b, "Answered:        %d (%d%%)\n", s.Answered, s.AnswerRate)
	fmt.Fprintf(&b, "Abandoned:       %d (%.1f%%)\n", s.Abandoned, s.AbandonRate)
	fmt.Fprintf(&b, "Avg wait:        %.1fs\n", s.AvgWaitSeconds)
	fmt.Fprintf(&b, "SLA:             %d%%\n", s.SLARate)
	fmt.Fprintf(&b, "ASA:             %.1fs\n", s.ASASeconds)
	fmt.Fprintf(&b, "Client callbacks: %d\n", s.ClientCallbacks)
	fmt.Fprintf(&b, "Agent callbacks:  %d\n", s.AgentCallbacks)
	fmt.Fprintf(&b, "Unhandled:        %d\n", s.UnhandledAbandoned)
	return b.String()
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}
