package stubserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/ma-crm/crm-go/pkg/httpext"
)

const (
	accessTokenTTL  = 30 * time.Minute
	refreshTokenTTL = 24 * time.Hour
)

type pageEnvelope struct {
	Count    int              `json:"count"`
	Next     any              `json:"next"`
	Previous any              `json:"previous"`
	Results  []map[string]any `json:"results"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		httpext.JsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if creds.Email != s.email || creds.Password != s.password {
		httpext.JsonError(w, "No active account found with the given credentials", http.StatusUnauthorized)
		return
	}

	access, err := s.issueToken(s.user.ID, grantAccess, accessTokenTTL)
	if err != nil {
		httpext.JsonError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}
	refresh, err := s.issueToken(s.user.ID, grantRefresh, refreshTokenTTL)
	if err != nil {
		httpext.JsonError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	log.Info().Str("email", creds.Email).Msg("Stub login")
	writeJSON(w, http.StatusOK, map[string]string{"access": access, "refresh": refresh})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Refresh string `json:"refresh"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Refresh == "" {
		httpext.JsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	claims, err := s.validateToken(body.Refresh, grantRefresh)
	if err != nil {
		httpext.JsonError(w, "Token is invalid or expired", http.StatusUnauthorized)
		return
	}

	access, err := s.issueToken(claims.UserID, grantAccess, accessTokenTTL)
	if err != nil {
		httpext.JsonError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}
	// The stub rotates refresh tokens the way the backend does.
	refresh, err := s.issueToken(claims.UserID, grantRefresh, refreshTokenTTL)
	if err != nil {
		httpext.JsonError(w, "Failed to issue token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"access": access, "refresh": refresh})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	user := s.user
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleList(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		items := append([]map[string]any(nil), s.resources[resource]...)
		s.mu.RUnlock()

		writeJSON(w, http.StatusOK, pageEnvelope{Count: len(items), Results: items})
	}
}

func (s *Server) handleCreate(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var item map[string]any
		if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
			httpext.JsonError(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		item["id"] = s.allocateID()
		s.resources[resource] = append(s.resources[resource], item)
		s.mu.Unlock()

		writeJSON(w, http.StatusCreated, item)
	}
}

func (s *Server) handleDetail(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.RLock()
		item := s.find(resource, pathID(r))
		s.mu.RUnlock()

		if item == nil {
			httpext.JsonError(w, "Not found.", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (s *Server) handleUpdate(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			httpext.JsonError(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		item := s.find(resource, pathID(r))
		if item != nil {
			for key, value := range patch {
				if key == "id" {
					continue
				}
				item[key] = value
			}
		}
		s.mu.Unlock()

		if item == nil {
			httpext.JsonError(w, "Not found.", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func (s *Server) handleDelete(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := pathID(r)

		s.mu.Lock()
		items := s.resources[resource]
		found := false
		for i, item := range items {
			if itemID(item) == id {
				s.resources[resource] = append(items[:i], items[i+1:]...)
				found = true
				break
			}
		}
		s.mu.Unlock()

		if !found {
			httpext.JsonError(w, "Not found.", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleKanban groups deals by pipeline stage, stages in board order.
func (s *Server) handleKanban(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type column struct {
		Stage map[string]any   `json:"stage"`
		Deals []map[string]any `json:"deals"`
		Count int              `json:"count"`
	}

	columns := make([]column, 0, len(s.resources["stages"]))
	for _, stage := range s.resources["stages"] {
		deals := []map[string]any{}
		for _, deal := range s.resources["deals"] {
			if itemID(deal) != 0 && toInt(deal["stage"]) == itemID(stage) {
				deals = append(deals, deal)
			}
		}
		columns = append(columns, column{Stage: stage, Deals: deals, Count: len(deals)})
	}

	writeJSON(w, http.StatusOK, columns)
}

func (s *Server) handleMoveStage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StageID           int  `json:"stage_id"`
		UpdateProbability bool `json:"update_probability"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.StageID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "stage_id is required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stage := s.find("stages", body.StageID)
	if stage == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Stage not found"})
		return
	}

	deal := s.find("deals", pathID(r))
	if deal == nil {
		httpext.JsonError(w, "Not found.", http.StatusNotFound)
		return
	}

	deal["stage"] = body.StageID
	deal["stage_name"] = stage["name"]
	if body.UpdateProbability {
		deal["probability"] = stage["default_probability"]
	}

	writeJSON(w, http.StatusOK, deal)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httpext.JsonError(w, "Invalid multipart payload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httpext.JsonError(w, "file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	doc := map[string]any{
		"filename":     header.Filename,
		"file":         "/media/documents/" + header.Filename,
		"size":         header.Size,
		"content_type": header.Header.Get("Content-Type"),
		"uploaded_by":  userIDFrom(r.Context()),
	}
	if dealField := r.FormValue("deal"); dealField != "" {
		dealID, err := strconv.Atoi(dealField)
		if err != nil {
			httpext.JsonError(w, "deal must be an id", http.StatusBadRequest)
			return
		}
		doc["deal"] = dealID
	}

	s.mu.Lock()
	doc["id"] = s.allocateID()
	s.resources["documents"] = append(s.resources["documents"], doc)
	s.mu.Unlock()

	log.Info().Str("filename", header.Filename).Int64("size", header.Size).Msg("Stub document upload")
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleMyTasks(w http.ResponseWriter, r *http.Request) {
	userID := userIDFrom(r.Context())

	s.mu.RLock()
	mine := []map[string]any{}
	for _, task := range s.resources["tasks"] {
		if toInt(task["assignee"]) == userID {
			mine = append(mine, task)
		}
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, pageEnvelope{Count: len(mine), Results: mine})
}

// find returns the live item, so callers mutating it must hold the write
// lock.
func (s *Server) find(resource string, id int) map[string]any {
	for _, item := range s.resources[resource] {
		if itemID(item) == id {
			return item
		}
	}
	return nil
}

func pathID(r *http.Request) int {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	return id
}

func itemID(item map[string]any) int {
	return toInt(item["id"])
}

// toInt copes with ids that arrive as float64 after a JSON round trip.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	default:
		return 0
	}
}
