package web

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/JonMunkholm/regioncompare/internal/core"
	"github.com/JonMunkholm/regioncompare/internal/logging"
)

// utf8BOM lets spreadsheet applications detect UTF-8 in CSV downloads.
const utf8BOM = "\ufeff"

// handleExportTable downloads the workspace's last comparison as CSV.
func (s *Server) handleExportTable(w http.ResponseWriter, r *http.Request) {
	var table *core.TableModel
	err := s.withWorkspace(w, r, func(ws *core.Workspace) error {
		table = ws.LastTable()
		return nil
	})
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if table == nil {
		s.respondError(w, r, errNoTable, http.StatusNotFound)
		return
	}

	filename := fmt.Sprintf("comparison_%s.csv", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := w.Write([]byte(utf8BOM)); err != nil {
		return
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(table.Records()); err != nil {
		logging.FromContext(r.Context()).Error("csv export failed", "error", err)
	}
}

// handleDownloadMerged serves the merged dataset CSV when it exists.
func (s *Server) handleDownloadMerged(w http.ResponseWriter, r *http.Request) {
	path := s.cfg.Data.CSVPath
	fi, err := os.Stat(path)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("csv download: %w", err), http.StatusNotFound)
		return
	}
	if !fi.Mode().IsRegular() {
		s.respondError(w, r, fmt.Errorf("csv download %s: no such file", path), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="merged_country_data.csv"`)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	http.ServeFile(w, r, path)
}

// handleHealth reports liveness and what was loaded.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	regions, records := s.store.Stats()
	writeJSON(w, r, map[string]any{
		"status":   "ok",
		"regions":  regions,
		"records":  records,
		"sessions": s.sessions.Len(),
	})
}
