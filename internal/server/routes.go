package server

import (
	"net/http"
	"strings"

	"github.com/bobmcallan/dojo/internal/common"
	"github.com/bobmcallan/dojo/internal/interfaces"
	"github.com/bobmcallan/dojo/internal/models"
	"github.com/bobmcallan/dojo/internal/services/frames"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)

	// Pipeline
	mux.HandleFunc("/api/resolve/", s.handleResolve)
	mux.HandleFunc("/api/valuations/", s.routeValuations)
	mux.HandleFunc("/api/check/", s.handleCheck)
	mux.HandleFunc("/api/compare", s.handleCompare)
	mux.HandleFunc("/api/rank", s.handleRank)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleResolve handles GET /api/resolve/{ticker}
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ticker := PathParam(r, "/api/resolve/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	entity, err := s.svc.Resolver.Lookup(r.Context(), ticker)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, entity)
}

// routeValuations dispatches /api/valuations/{ticker} and /api/valuations/{ticker}/history
func (s *Server) routeValuations(w http.ResponseWriter, r *http.Request) {
	ticker := PathParam(r, "/api/valuations/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/valuations/"+ticker)
	switch rest {
	case "", "/":
		s.handleValuation(w, r, ticker)
	case "/history":
		s.handleHistory(w, r, ticker)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// handleValuation handles GET /api/valuations/{ticker} and POST to persist a new record
func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodPost) {
		return
	}

	if r.Method == http.MethodPost {
		rec, err := s.svc.Valuations.Save(r.Context(), ticker)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, rec)
		return
	}

	report, err := s.svc.Valuations.Valuate(r.Context(), ticker)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}

// handleHistory handles GET /api/valuations/{ticker}/history
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, ticker string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.svc.Store == nil {
		WriteErrorWithCode(w, http.StatusServiceUnavailable, "Valuation store not configured", "not_configured")
		return
	}

	records, err := s.svc.Store.ListValuations(r.Context(), models.NormalizeTicker(ticker))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if records == nil {
		records = []models.ValuationRecord{}
	}
	WriteJSON(w, http.StatusOK, records)
}

// handleCheck handles GET /api/check/{ticker}
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	ticker := PathParam(r, "/api/check/", "")
	if ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	verdict, err := s.svc.Valuations.CheckOpportunity(r.Context(), ticker)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, verdict)
}

// handleCompare handles GET /api/compare?account=A&tickers=X,Y[&as=NAME][&min_year=Y]
func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	account := strings.TrimSpace(q.Get("account"))
	tickers := splitList(q.Get("tickers"))
	if account == "" || len(tickers) == 0 {
		WriteError(w, http.StatusBadRequest, "account and tickers are required")
		return
	}
	minYear, ok := QueryInt(w, r, "min_year", 0)
	if !ok {
		return
	}

	cmp, err := s.svc.Valuations.Compare(r.Context(), tickers, account, interfaces.CompareOptions{
		Label:   q.Get("as"),
		MinYear: minYear,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, cmp)
}

// handleRank handles GET /api/rank?num=A&num_period=P&den=B&den_period=Q[&limit=N]
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	req := frames.Request{
		NumeratorAccount:   q.Get("num"),
		NumeratorPeriod:    q.Get("num_period"),
		DenominatorAccount: q.Get("den"),
		DenominatorPeriod:  q.Get("den_period"),
	}
	if req.NumeratorAccount == "" || req.NumeratorPeriod == "" || req.DenominatorAccount == "" || req.DenominatorPeriod == "" {
		WriteError(w, http.StatusBadRequest, "num, num_period, den and den_period are required")
		return
	}
	limit, ok := QueryInt(w, r, "limit", 20)
	if !ok {
		return
	}
	req.Limit = limit

	rows, err := s.svc.Ranker.Rank(r.Context(), req)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if rows == nil {
		rows = []models.RatioRow{}
	}
	WriteJSON(w, http.StatusOK, rows)
}
