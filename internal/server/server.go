package server

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/bensuskins/chore-helper/internal/config"
	"github.com/bensuskins/chore-helper/internal/handlers"
	"github.com/bensuskins/chore-helper/internal/middleware"
	"github.com/bensuskins/chore-helper/internal/repository"
	"github.com/bensuskins/chore-helper/internal/services"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	router *chi.Mux
	config config.Config
}

func New(database *sql.DB, cfg config.Config) *Server {
	personRepo := repository.NewPersonRepository(database)
	choreRepo := repository.NewChoreRepository(database)
	assignmentRepo := repository.NewChoreAssignmentRepository(database)
	tokenRepo := repository.NewAPITokenRepository(database)

	choreService := services.NewChoreService(choreRepo, assignmentRepo)

	choreHandler := handlers.NewChoreHandler(choreService, personRepo)
	wizardHandler := handlers.NewWizardHandler(choreService, wizardHashKey(cfg), wizardBlockKey(cfg))
	apiHandler := handlers.NewAPIHandler(personRepo, tokenRepo)

	router := chi.NewRouter()

	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Compress(5))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	router.Group(func(r chi.Router) {
		r.Use(middleware.APITokenAuth(tokenRepo))

		r.Post("/api/chores/fields", choreHandler.Fields)
		r.Post("/api/chores/validate", choreHandler.Validate)
		r.Get("/api/chores", choreHandler.List)
		r.Post("/api/chores", choreHandler.Create)
		r.Get("/api/chores/{id}", choreHandler.Get)
		r.Get("/api/chores/{id}/fields", choreHandler.EditFields)
		r.Post("/api/chores/{id}", choreHandler.Update)
		r.Delete("/api/chores/{id}", choreHandler.Delete)
		r.Post("/api/chores/{id}/complete", choreHandler.Complete)

		r.Get("/api/people", apiHandler.ListPeople)
		r.Post("/api/people", apiHandler.CreatePerson)
		r.Delete("/api/people/{id}", apiHandler.DeletePerson)
		r.Get("/api/people/{id}/chores", choreHandler.PersonChores)

		r.Get("/api/wizard", wizardHandler.Show)
		r.Post("/api/wizard", wizardHandler.Submit)
		r.Delete("/api/wizard", wizardHandler.Reset)

		r.Post("/api/tokens", apiHandler.CreateToken)
		r.Delete("/api/tokens/{id}", apiHandler.DeleteToken)
	})

	server := &Server{
		router: router,
		config: cfg,
	}

	return server
}

func (server *Server) Handler() http.Handler {
	return server.router
}

func (server *Server) Start() error {
	address := ":" + server.config.Port
	slog.Info("starting server", "address", address)
	return http.ListenAndServe(address, server.router)
}

// wizardHashKey falls back to a random key, which invalidates wizard cookies
// on restart.
func wizardHashKey(cfg config.Config) []byte {
	if cfg.WizardHashKey != "" {
		return []byte(cfg.WizardHashKey)
	}
	slog.Warn("WIZARD_HASH_KEY not set, wizard sessions will not survive a restart")
	return securecookie.GenerateRandomKey(32)
}

func wizardBlockKey(cfg config.Config) []byte {
	if cfg.WizardBlockKey == "" {
		return nil
	}
	return []byte(cfg.WizardBlockKey)
}
