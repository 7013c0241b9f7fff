package server

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/linkpeek/linkpeek/batch"
	"github.com/linkpeek/linkpeek/export"
	"github.com/linkpeek/linkpeek/types"
)

type errorBody struct {
	Error string `json:"error"`
}

// handlePreview - POST /api/preview. Validates the request shape and size
// before any network I/O, gates free-tier callers on the daily quota, then
// runs the batch in whole or paged mode.
func (s *Server) handlePreview(w http.ResponseWriter, req *http.Request) {
	var body types.BatchRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid URL list"})
		return
	}
	if body.Urls == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid URL list"})
		return
	}
	if len(body.Urls) > s.cfg.Batch.MaxURLs {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error: fmt.Sprintf("Too many URLs. Maximum %d allowed.", s.cfg.Batch.MaxURLs),
		})
		return
	}

	urls := make([]string, 0, len(body.Urls))
	for _, u := range body.Urls {
		if trimmed := strings.TrimSpace(u); trimmed != "" {
			urls = append(urls, trimmed)
		}
	}
	if len(urls) == 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid URL list"})
		return
	}

	caller := callerID(req)

	if body.Batch {
		// charge quota for exactly the slice the processor will work on
		start, end := batch.PageBounds(len(urls), body.BatchIndex, s.cfg.Batch.PageSize)
		if !s.spendQuota(w, caller, end-start) {
			return
		}
		writeJSON(w, http.StatusOK, s.processor.ProcessPage(req.Context(), urls, body.BatchIndex))
		return
	}

	if !s.spendQuota(w, caller, len(urls)) {
		return
	}
	writeJSON(w, http.StatusOK, s.processor.ProcessAll(req.Context(), urls))
}

// spendQuota charges the caller for n previews unless they are Pro.
// Writes the 429 response itself when the daily cap is exhausted.
func (s *Server) spendQuota(w http.ResponseWriter, caller string, n int) bool {
	if s.entitlements.IsPro(caller) || n == 0 {
		return true
	}
	if !s.limiter.Spend(caller, n) {
		zap.S().Infow("daily preview limit reached", "caller", caller, "requested", n,
			"remaining", s.limiter.Remaining(caller))
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "Daily preview limit reached"})
		return false
	}
	return true
}

// exportRequest - POST /api/export body
type exportRequest struct {
	Results []types.MetadataRecord `json:"results"`
}

// handleExport streams a CSV rendering of previously returned records.
func (s *Server) handleExport(w http.ResponseWriter, req *http.Request) {
	var body exportRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Results == nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid results list"})
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="linkpeek-export.csv"`)
	if err := export.WriteCSV(w, body.Results); err != nil {
		zap.S().Errorw("failed to stream CSV export", "error", err)
	}
}

func (s *Server) handlePing(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// callerID identifies the caller for quota accounting: an explicit client
// header when present, the remote address otherwise.
func callerID(req *http.Request) string {
	if id := req.Header.Get("X-Client-ID"); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("failed to encode response", "error", err)
	}
}
