package web

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/flockwatch/internal/outbreak"
	"github.com/JonMunkholm/flockwatch/internal/service"
)

// processDataResponse is the body returned after a scrape.
type processDataResponse struct {
	RunID             string                   `json:"run_id"`
	FlockCasesByState []outbreak.StateCases    `json:"flock_cases_by_state"`
	PeriodSummaries   []outbreak.PeriodSummary `json:"period_summaries"`
}

type statusResponse struct {
	Status        string                `json:"status"`
	UptimeSeconds int64                 `json:"uptime_seconds"`
	Runs          service.LimiterStatus `json:"runs"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"message": "Nothing here but us Robots"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, statusResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Runs:          s.scraper.Status(),
	})
}

// handleProcessData runs a full scrape and returns what was stored.
func (s *Server) handleProcessData(w http.ResponseWriter, r *http.Request) {
	res, err := s.scraper.Run(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, processDataResponse{
		RunID:             res.RunID,
		FlockCasesByState: res.StateCases,
		PeriodSummaries:   res.PeriodSummaries,
	})
}
