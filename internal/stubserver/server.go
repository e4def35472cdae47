// Package stubserver emulates the CRM backend's REST contract for local
// development and tests: JWT login/refresh, bearer-protected resource
// routes with the paginated list envelope, the kanban snapshot, deal stage
// transitions, document upload and the my-tasks filter. Data lives in
// memory and resets on restart.
package stubserver

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/ma-crm/crm-go/internal/domain"
)

// Config tunes the stub. Zero values fall back to the demo defaults.
type Config struct {
	JWTSecret []byte
	// Email/Password are the accepted demo credentials.
	Email    string
	Password string
}

type Server struct {
	mu     sync.RWMutex
	secret []byte

	email    string
	password string
	user     domain.User

	stages    []domain.Stage
	resources map[string][]map[string]any
	nextID    int

	router *mux.Router
}

func New(cfg Config) *Server {
	if len(cfg.JWTSecret) == 0 {
		cfg.JWTSecret = []byte("stub-secret")
	}
	if cfg.Email == "" {
		cfg.Email = "demo@ma-crm.local"
	}
	if cfg.Password == "" {
		cfg.Password = "demo1234"
	}

	s := &Server{
		secret:   cfg.JWTSecret,
		email:    cfg.Email,
		password: cfg.Password,
		nextID:   1,
	}
	s.seed()
	s.router = s.buildRouter()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/auth/login/", s.handleLogin).Methods("POST")
	r.HandleFunc("/auth/refresh/", s.handleRefresh).Methods("POST")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.requireAuth)

	api.HandleFunc("/users/me/", s.handleMe).Methods("GET")

	api.HandleFunc("/deals/kanban/", s.handleKanban).Methods("GET")
	api.HandleFunc("/deals/{id:[0-9]+}/move_stage/", s.handleMoveStage).Methods("PATCH")
	api.HandleFunc("/documents/upload/", s.handleUpload).Methods("POST")
	api.HandleFunc("/tasks/my_tasks/", s.handleMyTasks).Methods("GET")

	for _, resource := range []string{"companies", "contacts", "stages", "deals", "tasks", "interactions", "documents", "ndas"} {
		resource := resource
		api.HandleFunc("/"+resource+"/", s.handleList(resource)).Methods("GET")
		api.HandleFunc("/"+resource+"/", s.handleCreate(resource)).Methods("POST")
		api.HandleFunc("/"+resource+"/{id:[0-9]+}/", s.handleDetail(resource)).Methods("GET")
		api.HandleFunc("/"+resource+"/{id:[0-9]+}/", s.handleUpdate(resource)).Methods("PATCH")
		api.HandleFunc("/"+resource+"/{id:[0-9]+}/", s.handleDelete(resource)).Methods("DELETE")
	}

	return r
}

func (s *Server) allocateID() int {
	id := s.nextID
	s.nextID++
	return id
}

// seed loads the demo fixture: one user, a four stage pipeline and a couple
// of companies and deals to move around.
func (s *Server) seed() {
	s.user = domain.User{
		ID:        s.allocateID(),
		Email:     s.email,
		Username:  "demo",
		FirstName: "Demo",
		LastName:  "Associate",
		FullName:  "Demo Associate",
		Role:      domain.RoleAssociate,
		IsActive:  true,
	}

	s.stages = nil
	for i, def := range []struct {
		name        string
		probability int
		closed, won bool
	}{
		{"Sourcing", 10, false, false},
		{"Due Diligence", 40, false, false},
		{"Negotiation", 70, false, false},
		{"Closed Won", 100, true, true},
	} {
		s.stages = append(s.stages, domain.Stage{
			ID:                 s.allocateID(),
			Name:               def.name,
			Order:              i + 1,
			IsClosed:           def.closed,
			IsWon:              def.won,
			DefaultProbability: def.probability,
		})
	}

	s.resources = map[string][]map[string]any{
		"companies": {}, "contacts": {}, "stages": {}, "deals": {},
		"tasks": {}, "interactions": {}, "documents": {}, "ndas": {},
	}

	for _, stage := range s.stages {
		s.resources["stages"] = append(s.resources["stages"], map[string]any{
			"id": stage.ID, "name": stage.Name, "order": stage.Order,
			"is_closed": stage.IsClosed, "is_won": stage.IsWon,
			"default_probability": stage.DefaultProbability,
		})
	}

	companyID := s.allocateID()
	s.resources["companies"] = append(s.resources["companies"], map[string]any{
		"id": companyID, "name": "Northwind Industrials", "legal_id": "NW-4471",
		"country": "DE", "sector": "manufacturing", "size": "medium",
	})

	dealID := s.allocateID()
	s.resources["deals"] = append(s.resources["deals"], map[string]any{
		"id": dealID, "title": "Project Anvil", "company": companyID,
		"company_name": "Northwind Industrials",
		"owner":        s.user.ID, "owner_name": s.user.FullName,
		"stage": s.stages[0].ID, "stage_name": s.stages[0].Name,
		"probability": s.stages[0].DefaultProbability,
	})

	s.resources["tasks"] = append(s.resources["tasks"], map[string]any{
		"id": s.allocateID(), "deal": dealID, "title": "Prepare teaser",
		"status": domain.TaskStatusTodo, "assignee": s.user.ID,
		"assignee_name": s.user.FullName, "created_by": s.user.ID,
	})
}
