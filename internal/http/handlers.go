package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"tally/internal/core"
	"tally/internal/csvio"
	"tally/internal/log"
)

type summaryResponse struct {
	Month string `json:"month"`
	core.Summary
	Budget core.BudgetProgress `json:"budget"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		txns := s.svc.List(r.URL.Query().Get("month"))
		if txns == nil {
			txns = []core.Transaction{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"transactions": txns})

	case http.MethodPost:
		var req txnRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed JSON body")
			return
		}
		t := req.transaction()
		// POST always creates; replacing goes through PUT with an id.
		t.ID = ""
		saved, err := s.svc.CreateOrUpdate(r.Context(), t)
		if err != nil {
			if isShapeError(err) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			slog.ErrorContext(r.Context(), "Create transaction failed", log.FieldError, err)
			writeError(w, http.StatusInternalServerError, "could not save transaction")
			return
		}
		atomic.AddInt64(&s.metrics.txnsWritten, 1)
		s.purgeCaches()
		writeJSON(w, http.StatusCreated, saved)

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var req txnRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed JSON body")
			return
		}
		t := req.transaction()
		t.ID = id
		// An unknown id leaves the store untouched and echoes the
		// input back; the response is the same either way.
		saved, err := s.svc.CreateOrUpdate(r.Context(), t)
		if err != nil {
			if isShapeError(err) {
				writeError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			slog.ErrorContext(r.Context(), "Update transaction failed", log.FieldError, err, log.FieldTxnID, id)
			writeError(w, http.StatusInternalServerError, "could not save transaction")
			return
		}
		atomic.AddInt64(&s.metrics.txnsWritten, 1)
		s.purgeCaches()
		writeJSON(w, http.StatusOK, saved)

	case http.MethodDelete:
		if err := s.svc.Delete(r.Context(), id); err != nil {
			slog.ErrorContext(r.Context(), "Delete transaction failed", log.FieldError, err, log.FieldTxnID, id)
			writeError(w, http.StatusInternalServerError, "could not delete transaction")
			return
		}
		atomic.AddInt64(&s.metrics.txnsDeleted, 1)
		s.purgeCaches()
		w.WriteHeader(http.StatusNoContent)

	default:
		methodNotAllowed(w, "PUT, DELETE")
	}
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		month := monthParam(r)
		writeJSON(w, http.StatusOK, map[string]any{
			"month":  month,
			"budget": s.svc.Budget(month),
		})

	case http.MethodPut:
		var req budgetRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed JSON body")
			return
		}
		if req.Month == "" {
			writeError(w, http.StatusBadRequest, "month is required")
			return
		}
		stored, err := s.svc.SetBudget(r.Context(), req.Month, float64(req.Amount))
		if err != nil {
			slog.ErrorContext(r.Context(), "Set budget failed", log.FieldError, err, log.FieldMonth, req.Month)
			writeError(w, http.StatusInternalServerError, "could not save budget")
			return
		}
		s.purgeCaches()
		writeJSON(w, http.StatusOK, map[string]any{
			"month":  req.Month,
			"budget": stored,
		})

	default:
		methodNotAllowed(w, "GET, PUT")
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	month := monthParam(r)

	if cached, ok := s.summaryCache.Get(month); ok {
		s.cacheHit()
		writeJSON(w, http.StatusOK, cached)
		return
	}
	s.cacheMiss()

	summary, progress := s.svc.MonthSummary(month)
	resp := summaryResponse{Month: month, Summary: summary, Budget: progress}
	s.summaryCache.Set(month, resp)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	month := monthParam(r)

	if cached, ok := s.trendCache.Get(month); ok {
		s.cacheHit()
		writeJSON(w, http.StatusOK, cached)
		return
	}
	s.cacheMiss()

	trend, err := s.svc.Trend(month)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid month %q", month))
		return
	}
	s.trendCache.Set(month, trend)
	writeJSON(w, http.StatusOK, trend)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	data := s.svc.ExportCSV()
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", csvio.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "import too large")
		return
	}

	added, updated, err := s.svc.ImportCSV(r.Context(), string(body))
	if err != nil {
		slog.ErrorContext(r.Context(), "CSV import failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not import transactions")
		return
	}
	atomic.AddInt64(&s.metrics.importedRows, int64(added+updated))
	s.purgeCaches()
	writeJSON(w, http.StatusOK, map[string]int{
		"added":   added,
		"updated": updated,
	})
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]string{"theme": s.svc.Theme()})

	case http.MethodPut:
		var req themeRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed JSON body")
			return
		}
		if req.Theme == "" {
			writeError(w, http.StatusBadRequest, "theme is required")
			return
		}
		if err := s.svc.SetTheme(r.Context(), req.Theme); err != nil {
			slog.ErrorContext(r.Context(), "Set theme failed", log.FieldError, err)
			writeError(w, http.StatusInternalServerError, "could not save theme")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"theme": req.Theme})

	default:
		methodNotAllowed(w, "GET, PUT")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.metrics.startedAt).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	checks := map[string]any{
		"cache": map[string]any{
			"summary_entries": s.summaryCache.Size(),
			"trend_entries":   s.trendCache.Size(),
			"status":          "ok",
		},
		"rate_limiter": map[string]any{
			"active_clients": s.limiter.ActiveClients(),
			"status":         "ok",
		},
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.tracer.GetMetrics()
	fmt.Fprintf(w, "tally_uptime_seconds %d\n", int64(time.Since(s.metrics.startedAt).Seconds()))
	fmt.Fprintf(w, "tally_requests_total %d\n", traceMetrics.TotalRequests)
	fmt.Fprintf(w, "tally_rate_limit_hits_total %d\n", s.limiter.LimitHits())
	fmt.Fprintf(w, "tally_transactions_written_total %d\n", atomic.LoadInt64(&s.metrics.txnsWritten))
	fmt.Fprintf(w, "tally_transactions_deleted_total %d\n", atomic.LoadInt64(&s.metrics.txnsDeleted))
	fmt.Fprintf(w, "tally_rows_imported_total %d\n", atomic.LoadInt64(&s.metrics.importedRows))
	fmt.Fprintf(w, "tally_cache_hits_total %d\n", atomic.LoadInt64(&s.metrics.cacheHits))
	fmt.Fprintf(w, "tally_cache_misses_total %d\n", atomic.LoadInt64(&s.metrics.cacheMisses))
	fmt.Fprintf(w, "tally_summary_cache_entries %d\n", s.summaryCache.Size())
	fmt.Fprintf(w, "tally_trend_cache_entries %d\n", s.trendCache.Size())
}
