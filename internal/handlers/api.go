package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/bensuskins/chore-helper/internal/models"
	"github.com/bensuskins/chore-helper/internal/repository"
	"github.com/bensuskins/chore-helper/internal/services"
	"github.com/go-chi/chi/v5"
)

type APIHandler struct {
	personRepo repository.PersonRepository
	tokenRepo  repository.APITokenRepository
}

func NewAPIHandler(personRepo repository.PersonRepository, tokenRepo repository.APITokenRepository) *APIHandler {
	return &APIHandler{
		personRepo: personRepo,
		tokenRepo:  tokenRepo,
	}
}

func (handler *APIHandler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := handler.personRepo.FindAll(r.Context())
	if err != nil {
		slog.Error("finding people", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load people"})
		return
	}
	if people == nil {
		people = []models.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

func (handler *APIHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	values, err := readValues(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	person := models.Person{ID: values.String("id"), Name: values.String("name")}
	if person.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	created, err := handler.personRepo.Create(r.Context(), person)
	if err != nil {
		slog.Error("creating person", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create person"})
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (handler *APIHandler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	if err := handler.personRepo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		slog.Error("deleting person", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete person"})
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (handler *APIHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	values, err := readValues(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	name := values.String("name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	rawToken := GenerateToken()
	created, err := handler.tokenRepo.Create(ctx, models.APIToken{
		Name:      name,
		TokenHash: repository.HashToken(rawToken),
	})
	if err != nil {
		slog.Error("creating token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create token"})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    created.ID,
		"name":  created.Name,
		"token": rawToken,
	})
}

func (handler *APIHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	if err := handler.tokenRepo.Delete(ctx, id); err != nil {
		slog.Error("deleting token", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete token"})
		return
	}

	w.WriteHeader(http.StatusOK)
}

func GenerateToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// readValues decodes a request body into field values. JSON bodies are taken
// as they are. In form bodies a blank value clears the field, a checkbox "on"
// sets a boolean field and repeated keys become lists.
func readValues(r *http.Request) (services.Draft, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		values := services.Draft{}
		if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
			return nil, fmt.Errorf("decoding request body: %w", err)
		}
		return values, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parsing form: %w", err)
	}
	values := services.Draft{}
	for key, formValues := range r.PostForm {
		var kept []string
		for _, value := range formValues {
			if strings.TrimSpace(value) != "" {
				kept = append(kept, value)
			}
		}
		switch {
		case len(kept) == 0:
			values[key] = nil
		case len(kept) > 1:
			values[key] = kept
		case kept[0] == "on" && services.IsBoolField(key):
			values[key] = true
		default:
			values[key] = kept[0]
		}
	}
	return values, nil
}

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Key   string `json:"key,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	if configErr, ok := services.AsConfigError(err); ok {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: configErr.Reason.Error(),
			Field: configErr.Field,
			Key:   configErr.Key,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrChoreNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "chore not found"})
	case errors.Is(err, services.ErrChoreFinished):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, services.ErrWizardFinished):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		slog.Error("handling request", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
