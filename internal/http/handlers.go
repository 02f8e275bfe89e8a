package http

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"penjualan/internal/core"
	"penjualan/internal/export"
	"penjualan/internal/ledger"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Settings())
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch ledger.SettingsPatch
	if err := decodeBody(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.StoreName != nil {
		*patch.StoreName = sanitizeInput(*patch.StoreName)
	}
	if patch.OwnerName != nil {
		*patch.OwnerName = sanitizeInput(*patch.OwnerName)
	}
	if patch.ProductName != nil {
		*patch.ProductName = sanitizeInput(*patch.ProductName)
	}

	settings, err := s.store.UpdateSettings(r.Context(), patch)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Transactions())
}

type transactionRequest struct {
	Quantity *int64     `json:"quantity"`
	Buyer    *string    `json:"buyer"`
	Date     *core.Date `json:"date"`
	Note     *string    `json:"note"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := ledger.AddInput{}
	if req.Quantity != nil {
		in.Quantity = *req.Quantity
	}
	if req.Buyer != nil {
		in.Buyer = sanitizeInput(*req.Buyer)
	}
	if req.Date != nil {
		in.Date = *req.Date
	}
	if req.Note != nil {
		in.Note = sanitizeInput(*req.Note)
	}

	tx, err := s.store.AddTransaction(r.Context(), in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req transactionRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	in := ledger.EditInput{
		Quantity: req.Quantity,
		Date:     req.Date,
	}
	if req.Buyer != nil {
		buyer := sanitizeInput(*req.Buyer)
		in.Buyer = &buyer
	}
	if req.Note != nil {
		note := sanitizeInput(*req.Note)
		in.Note = &note
	}

	tx, err := s.store.EditTransaction(r.Context(), id, in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	const key = "stats"
	if stats, found := s.statsCache.Get(key); found {
		slog.DebugContext(r.Context(), "Stats cache hit")
		writeJSON(w, http.StatusOK, stats)
		return
	}
	stats := s.store.Stats()
	s.statsCache.Set(key, stats)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	const key = "summary"
	if summaries, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit")
		writeJSON(w, http.StatusOK, summaries)
		return
	}
	summaries := s.store.MonthlySummaries()
	s.summaryCache.Set(key, summaries)
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleSummaryDetail(w http.ResponseWriter, r *http.Request) {
	period := r.PathValue("period")
	if _, err := time.Parse("2006-01", period); err != nil {
		writeError(w, http.StatusBadRequest, "period must be formatted as YYYY-MM")
		return
	}

	if transactions, found := s.monthCache.Get(period); found {
		slog.DebugContext(r.Context(), "Month cache hit", "period", period)
		writeJSON(w, http.StatusOK, transactions)
		return
	}
	transactions := s.store.TransactionsInMonth(period)
	s.monthCache.Set(period, transactions)
	writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := export.CSV(s.store.Transactions())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.CSVFilename(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleExportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := export.EncodeBackup(s.store.Settings(), s.store.Transactions())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.BackupFilename(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := export.XLSX(s.store.Settings(), s.store.Transactions())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.XLSXFilename(time.Now())+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type restoreResponse struct {
	Restored int `json:"restored"`
}

func (s *Server) handleRestore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed reading request body")
		return
	}

	backup, err := export.DecodeBackup(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid backup file")
		return
	}

	if err := s.store.RestoreBackup(r.Context(), backup.Settings, backup.Transactions); err != nil {
		writeDomainError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "Backup restored", "transactions", len(backup.Transactions))
	writeJSON(w, http.StatusOK, restoreResponse{Restored: len(backup.Transactions)})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ResetAll(r.Context()); err != nil {
		writeDomainError(w, r, err)
		return
	}
	slog.InfoContext(r.Context(), "Ledger reset to defaults")
	w.WriteHeader(http.StatusNoContent)
}
