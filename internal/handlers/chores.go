package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/bensuskins/chore-helper/internal/models"
	"github.com/bensuskins/chore-helper/internal/repository"
	"github.com/bensuskins/chore-helper/internal/services"
	"github.com/go-chi/chi/v5"
)

type ChoreHandler struct {
	choreService *services.ChoreService
	personRepo   repository.PersonRepository
}

func NewChoreHandler(choreService *services.ChoreService, personRepo repository.PersonRepository) *ChoreHandler {
	return &ChoreHandler{
		choreService: choreService,
		personRepo:   personRepo,
	}
}

type choreResponse struct {
	models.Chore
	Options        map[string]any `json:"options"`
	AssignedToName *string        `json:"assigned_to_name"`
	Finished       bool           `json:"finished"`
}

func (handler *ChoreHandler) response(r *http.Request, chore models.Chore) choreResponse {
	response := choreResponse{
		Chore:    chore,
		Options:  chore.Config.Options(),
		Finished: chore.Finished(),
	}
	if chore.AssignedTo != nil {
		name := *chore.AssignedTo
		if person, err := handler.personRepo.FindByID(r.Context(), name); err == nil {
			name = person.Name
		}
		response.AssignedToName = &name
	}
	return response
}

func (handler *ChoreHandler) responses(r *http.Request, chores []models.Chore) []choreResponse {
	responses := make([]choreResponse, 0, len(chores))
	for _, chore := range chores {
		responses = append(responses, handler.response(r, chore))
	}
	return responses
}

// Fields lists the fields that apply to the posted draft, each with its
// section, requirement and suggested value.
func (handler *ChoreHandler) Fields(w http.ResponseWriter, r *http.Request) {
	draft, err := readValues(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, services.Fields(draft))
}

func (handler *ChoreHandler) Validate(w http.ResponseWriter, r *http.Request) {
	draft, err := readValues(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	config, err := handler.choreService.Validate(draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"config":  config,
		"options": config.Options(),
	})
}

func (handler *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	draft, err := readValues(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	chore, err := handler.choreService.Create(r.Context(), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, handler.response(r, chore))
}

func (handler *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.ChoreFilter{}

	query := r.URL.Query()
	if person := query.Get("person"); person != "" {
		filter.PersonID = &person
	}
	for _, mode := range query["allocation_mode"] {
		filter.AllocationModes = append(filter.AllocationModes, models.AllocationMode(mode))
	}
	if query.Get("order") == "updated" {
		filter.OrderBy = repository.OrderByUpdatedAtDesc
	}

	chores, err := handler.choreService.FindAll(r.Context(), filter)
	if err != nil {
		slog.Error("finding chores", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load chores"})
		return
	}
	if query.Get("in_season") == "true" {
		chores = services.InSeason(chores, time.Now().Month())
	}
	writeJSON(w, http.StatusOK, handler.responses(r, chores))
}

func (handler *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	chore, err := handler.choreService.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, handler.response(r, chore))
}

// EditFields returns the stored chore as an editable draft together with the
// fields that apply to it.
func (handler *ChoreHandler) EditFields(w http.ResponseWriter, r *http.Request) {
	chore, err := handler.choreService.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	draft := services.EditDraft(chore.Config)
	writeJSON(w, http.StatusOK, map[string]any{
		"draft":  draft,
		"fields": services.Fields(draft),
	})
}

// Update applies an options change. The stored options are the starting
// point, so only changed fields need to be posted. A chore that already has
// two or more people keeps its multiple_people_mode when people changes
// without one; the mode is only demanded when the chore grows from a single
// person.
func (handler *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	draft, err := readValues(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	chore, err := handler.choreService.Update(r.Context(), chi.URLParam(r, "id"), draft)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, handler.response(r, chore))
}

func (handler *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := handler.choreService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (handler *ChoreHandler) Complete(w http.ResponseWriter, r *http.Request) {
	values, err := readValues(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	chore, err := handler.choreService.CompleteChore(r.Context(), chi.URLParam(r, "id"), values.String("person_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, handler.response(r, chore))
}

func (handler *ChoreHandler) PersonChores(w http.ResponseWriter, r *http.Request) {
	chores, err := handler.choreService.ChoresForPerson(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("finding chores for person", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load chores"})
		return
	}
	writeJSON(w, http.StatusOK, handler.responses(r, chores))
}
