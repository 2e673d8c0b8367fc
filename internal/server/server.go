// Package server exposes the dashboard's HTTP surface: the composite
// summoner and live-intel reads, the poller's announcements, and the
// auth-gated CRUD endpoints for the team-curated collections. Responses are
// JSON; failures use an {"error": string} envelope.
package server

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"league-dashboard/internal/config"
	"league-dashboard/internal/middleware"
	"league-dashboard/internal/repository"
	"league-dashboard/internal/roster"
	"league-dashboard/internal/service"
)

type Server struct {
	summoners *service.SummonerService
	liveIntel *service.LiveIntelService
	poller    *roster.Poller
	records   *repository.RecordStore
	cfg       *config.Config
	logger    zerolog.Logger
}

func New(
	summoners *service.SummonerService,
	liveIntel *service.LiveIntelService,
	poller *roster.Poller,
	records *repository.RecordStore,
	cfg *config.Config,
	logger zerolog.Logger,
) *Server {
	return &Server{
		summoners: summoners,
		liveIntel: liveIntel,
		poller:    poller,
		records:   records,
		cfg:       cfg,
		logger:    logger,
	}
}

// Register wires every route onto mux. The dashboard collections and chat
// sit behind bearer auth; the read-only riot surface does not.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/summoner", s.handleSummoner)
	mux.HandleFunc("GET /api/live-intel", s.handleLiveIntel)
	mux.HandleFunc("GET /api/announcements", s.handleAnnouncements)

	auth := middleware.Auth(s.cfg.AuthSecret, s.cfg.AllowedUsers, s.logger)
	for _, col := range dashboardCollections {
		mux.Handle("/api/dashboard/"+col.slug, auth(s.collectionHandler(col)))
	}
	mux.Handle("/api/chat/messages", auth(http.HandlerFunc(s.handleChat)))
}

func (s *Server) handleSummoner(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	gameName := q.Get("gameName")
	tagLine := q.Get("tagLine")
	if gameName == "" || tagLine == "" {
		writeError(w, http.StatusBadRequest, "Missing game name or tagline.")
		return
	}

	payload, err := s.summoners.Fetch(r.Context(), service.Query{
		GameName: gameName,
		TagLine:  tagLine,
		Region:   q.Get("region"),
		Lite:     q.Get("lite") == "1",
		Summary:  q.Get("summary") == "1",
		Status:   q.Get("status") == "1",
	})
	if err != nil {
		s.writeServiceError(w, r, err, "Failed to load summoner.")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleLiveIntel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	gameName := q.Get("gameName")
	tagLine := q.Get("tagLine")
	if gameName == "" || tagLine == "" {
		writeError(w, http.StatusBadRequest, "Missing gameName or tagLine.")
		return
	}

	payload, err := s.liveIntel.Fetch(r.Context(), gameName, tagLine, q.Get("region"))
	if err != nil {
		s.writeServiceError(w, r, err, "Failed to load live intel.")
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements := s.poller.Announcements()
	if announcements == nil {
		announcements = []roster.Announcement{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"announcements": announcements})
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var reqErr *service.RequestError
	if errors.As(err, &reqErr) {
		writeError(w, reqErr.Status, reqErr.Message)
		return
	}
	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, fallback)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	if status < 400 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]string{"error": message})
}
