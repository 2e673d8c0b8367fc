package server

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"league-dashboard/internal/constants"
	"league-dashboard/internal/repository"
)

// collection describes one dashboard CRUD surface: its URL slug, the backing
// records collection, the fields an insert or update must carry, and the
// noun used in validation messages.
type collection struct {
	slug       string
	name       string
	required   []string
	label      string
	listOldest bool
}

var dashboardCollections = []collection{
	{slug: "comps", name: repository.CollectionComps, required: []string{"label"}, label: "comp"},
	{slug: "logs", name: repository.CollectionLogs, required: []string{"opponent", "result"}, label: "log"},
	{slug: "notes", name: repository.CollectionNotes, required: []string{"opponent", "notes"}, label: "note"},
	{slug: "tournaments", name: repository.CollectionTournaments, required: []string{"name", "status"}, label: "tournament"},
	{slug: "schedule", name: repository.CollectionSchedule, required: []string{"title", "type"}, label: "schedule event"},
	{slug: "draft-boards", name: repository.CollectionDraftBoards, required: []string{"label"}, label: "draft board"},
	{slug: "opponents", name: repository.CollectionOpponents, required: []string{"opponent"}, label: "opponent"},
	{slug: "skin-goals", name: repository.CollectionSkinGoals, required: []string{"player_name", "tagline", "target_rank", "skin"}, label: "skin goal"},
	{slug: "practice-goals", name: repository.CollectionPracticeGoals, required: []string{"player_name", "tagline", "goal"}, label: "practice goal"},
	{slug: "meta-watchlist", name: repository.CollectionMetaWatchlist, required: []string{"champion"}, label: "meta watchlist entry"},
	{slug: "roster", name: repository.CollectionRoster, required: []string{"role", "name", "tagline"}, label: "roster entry", listOldest: true},
}

func (s *Server) collectionHandler(col collection) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			s.listRecords(w, r, col)
		case http.MethodPost:
			s.insertRecord(w, r, col)
		case http.MethodPatch:
			s.updateRecord(w, r, col)
		case http.MethodDelete:
			s.deleteRecord(w, r, col)
		default:
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		}
	})
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request, col collection) {
	records, err := s.records.List(r.Context(), col.name, repository.ListOptions{Ascending: col.listOldest})
	if err != nil {
		s.logger.Error().Err(err).Str("collection", col.name).Msg("failed to list records")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to load %ss.", col.label))
		return
	}
	if records == nil {
		records = []repository.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": records})
}

func (s *Server) insertRecord(w http.ResponseWriter, r *http.Request, col collection) {
	doc, errMsg := decodeDocument(r, col, false)
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}

	data, err := json.Marshal(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	record, err := s.records.Insert(r.Context(), col.name, data)
	if err != nil {
		s.logger.Error().Err(err).Str("collection", col.name).Msg("failed to insert record")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to add %s.", col.label))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": record})
}

func (s *Server) updateRecord(w http.ResponseWriter, r *http.Request, col collection) {
	doc, errMsg := decodeDocument(r, col, true)
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}
	id, _ := doc["id"].(string)
	delete(doc, "id")

	data, err := json.Marshal(doc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	record, err := s.records.Update(r.Context(), col.name, id, data)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No such %s.", col.label))
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("collection", col.name).Str("id", id).Msg("failed to update record")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to update %s.", col.label))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": record})
}

func (s *Server) deleteRecord(w http.ResponseWriter, r *http.Request, col collection) {
	var body struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.ID == "" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Missing %s id.", col.label))
		return
	}

	err := s.records.Delete(r.Context(), col.name, body.ID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("No such %s.", col.label))
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("collection", col.name).Str("id", body.ID).Msg("failed to delete record")
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to delete %s.", col.label))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// decodeDocument reads the request body and validates the collection's
// required fields (plus id when needsID). It returns the document with
// server-managed fields stripped, or a 400 message.
func decodeDocument(r *http.Request, col collection, needsID bool) (map[string]any, string) {
	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil || doc == nil {
		return nil, "Invalid request body."
	}

	if needsID {
		if id, _ := doc["id"].(string); id == "" {
			return nil, fmt.Sprintf("Missing %s id.", col.label)
		}
	}

	var missing []string
	for _, field := range col.required {
		if value, _ := doc[field].(string); strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Sprintf("Missing required %s fields: %s.", col.label, strings.Join(missing, ", "))
	}

	delete(doc, "created_at")
	delete(doc, "updated_at")
	if !needsID {
		delete(doc, "id")
	}
	return doc, ""
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records, err := s.records.List(r.Context(), repository.CollectionChat, repository.ListOptions{
			Ascending: true,
			Limit:     constants.ChatMessageLimit,
		})
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to list chat messages")
			writeError(w, http.StatusInternalServerError, "Failed to load messages.")
			return
		}
		if records == nil {
			records = []repository.Record{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": records})

	case http.MethodPost:
		var body struct {
			Name    string `json:"name"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil ||
			strings.TrimSpace(body.Name) == "" || strings.TrimSpace(body.Message) == "" {
			writeError(w, http.StatusBadRequest, "Missing name or message.")
			return
		}

		data, err := json.Marshal(map[string]string{"name": body.Name, "message": body.Message})
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body.")
			return
		}
		record, err := s.records.Insert(r.Context(), repository.CollectionChat, data)
		if err != nil {
			s.logger.Error().Err(err).Msg("failed to insert chat message")
			writeError(w, http.StatusInternalServerError, "Failed to send message.")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"data": record})

	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}
