package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bensuskins/chore-helper/internal/models"
	"github.com/bensuskins/chore-helper/internal/repository"
	"github.com/bensuskins/chore-helper/internal/services"
	"github.com/bensuskins/chore-helper/internal/testutil"
	"github.com/go-chi/chi/v5"
)

func setupChoreRouter(t *testing.T) (*chi.Mux, *repository.SQLitePersonRepository) {
	t.Helper()
	database := testutil.NewTestDatabase(t)
	personRepo := repository.NewPersonRepository(database)
	choreService := services.NewChoreService(
		repository.NewChoreRepository(database),
		repository.NewChoreAssignmentRepository(database),
	)
	handler := NewChoreHandler(choreService, personRepo)

	router := chi.NewRouter()
	router.Post("/api/chores/fields", handler.Fields)
	router.Post("/api/chores/validate", handler.Validate)
	router.Get("/api/chores", handler.List)
	router.Post("/api/chores", handler.Create)
	router.Get("/api/chores/{id}", handler.Get)
	router.Get("/api/chores/{id}/fields", handler.EditFields)
	router.Post("/api/chores/{id}", handler.Update)
	router.Delete("/api/chores/{id}", handler.Delete)
	router.Post("/api/chores/{id}/complete", handler.Complete)
	router.Get("/api/people/{id}/chores", handler.PersonChores)
	return router, personRepo
}

func postJSON(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encoding body: %v", err)
	}
	request := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func decodeChore(t *testing.T, recorder *httptest.ResponseRecorder) choreResponse {
	t.Helper()
	var response choreResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("decoding chore: %v", err)
	}
	return response
}

func createChore(t *testing.T, router http.Handler, body map[string]any) choreResponse {
	t.Helper()
	recorder := postJSON(t, router, "/api/chores", body)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	return decodeChore(t, recorder)
}

func TestChoreHandler_CreateJSON(t *testing.T) {
	router, personRepo := setupChoreRouter(t)
	if _, err := personRepo.Create(context.Background(), models.Person{ID: "alex", Name: "Alex"}); err != nil {
		t.Fatalf("creating person: %v", err)
	}

	chore := createChore(t, router, map[string]any{
		"name":                 "Dishes",
		"recurrence_type":      "daily",
		"people":               []string{"alex", "sam"},
		"multiple_people_mode": "alternating",
	})

	if chore.AssignedTo == nil || *chore.AssignedTo != "alex" {
		t.Errorf("expected alex assigned, got %v", chore.AssignedTo)
	}
	if chore.AssignedToName == nil || *chore.AssignedToName != "Alex" {
		t.Errorf("expected friendly name Alex, got %v", chore.AssignedToName)
	}
	if chore.Options["allocation_mode"] != "alternating" {
		t.Errorf("expected alternating in options, got %v", chore.Options["allocation_mode"])
	}
}

func TestChoreHandler_CreateForm(t *testing.T) {
	router, _ := setupChoreRouter(t)

	recorder := postForm(router, "/api/chores", url.Values{
		"name":            {"Bins"},
		"recurrence_type": {"weekly"},
		"weekly_days":     {"mon", "thu"},
		"period":          {"2"},
		"people":          {"kim"},
		"hidden":          {"on"},
		"start_date":      {""},
	})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", recorder.Code, recorder.Body.String())
	}

	chore := decodeChore(t, recorder)
	recurrence := chore.Config.Recurrence
	if recurrence.Frequency != models.FrequencyEveryNWeeks || recurrence.Period != 2 {
		t.Errorf("expected every 2 weeks, got %s/%d", recurrence.Frequency, recurrence.Period)
	}
	if len(recurrence.WeeklyDays) != 2 {
		t.Errorf("expected two weekly days, got %v", recurrence.WeeklyDays)
	}
	if recurrence.StartDate != nil {
		t.Errorf("expected empty start date to be dropped, got %s", *recurrence.StartDate)
	}
	if !chore.Config.Hidden {
		t.Error("expected checkbox to set hidden")
	}
	if chore.AssignedToName == nil || *chore.AssignedToName != "kim" {
		t.Errorf("expected unknown person to fall back to the id, got %v", chore.AssignedToName)
	}
}

func TestChoreHandler_CreateRejected(t *testing.T) {
	router, _ := setupChoreRouter(t)

	tests := []struct {
		name  string
		body  map[string]any
		field string
		key   string
	}{
		{"missing name", map[string]any{"recurrence_type": "daily"}, "name", services.ErrorKeyRequired},
		{"bad date", map[string]any{"name": "Tax", "recurrence_type": "yearly", "date": "02/30"}, "date", services.ErrorKeyMonthDay},
		{"end date missing", map[string]any{"name": "Tax", "end_type": "end_by_date"}, "end_date", services.ErrorKeyEndDateRequired},
		{"mode missing", map[string]any{"name": "Tax", "people": []string{"a", "b"}}, "multiple_people_mode", services.ErrorKeyMultiplePeopleModeRequired},
		{"period too large", map[string]any{"name": "Tax", "period": 1001}, "period", services.ErrorKeyOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := postJSON(t, router, "/api/chores", tt.body)
			if recorder.Code != http.StatusUnprocessableEntity {
				t.Fatalf("expected status 422, got %d", recorder.Code)
			}
			var response errorResponse
			if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
				t.Fatalf("decoding error: %v", err)
			}
			if response.Field != tt.field || response.Key != tt.key {
				t.Errorf("expected %s/%s, got %s/%s", tt.field, tt.key, response.Field, response.Key)
			}
		})
	}
}

func TestChoreHandler_Fields(t *testing.T) {
	router, _ := setupChoreRouter(t)

	recorder := postJSON(t, router, "/api/chores/fields", map[string]any{"recurrence_type": "weekly"})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var fields []services.FieldSpec
	if err := json.NewDecoder(recorder.Body).Decode(&fields); err != nil {
		t.Fatalf("decoding fields: %v", err)
	}
	found := false
	for _, field := range fields {
		if field.Key == "weekly_days" {
			found = true
			if field.Section != services.SectionRecurrence {
				t.Errorf("expected weekly_days in recurrence, got %s", field.Section)
			}
		}
	}
	if !found {
		t.Error("expected weekly_days for a weekly draft")
	}
}

func TestChoreHandler_Validate(t *testing.T) {
	router, _ := setupChoreRouter(t)

	recorder := postJSON(t, router, "/api/chores/validate", map[string]any{
		"name":            "Tax return",
		"recurrence_type": "yearly",
		"date":            "04/15",
	})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	var response struct {
		Config  models.ChoreConfig `json:"config"`
		Options map[string]any     `json:"options"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if response.Config.Recurrence.Frequency != models.FrequencyEveryNYears {
		t.Errorf("expected every-n-years, got %s", response.Config.Recurrence.Frequency)
	}
	if response.Options["date"] != "04/15" {
		t.Errorf("expected date option 04/15, got %v", response.Options["date"])
	}

	recorder = postJSON(t, router, "/api/chores", map[string]any{})
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected empty draft to be rejected, got %d", recorder.Code)
	}
}

func TestChoreHandler_GetUpdateDelete(t *testing.T) {
	router, _ := setupChoreRouter(t)
	chore := createChore(t, router, map[string]any{"name": "Dust", "period": 3})

	request := httptest.NewRequest(http.MethodGet, "/api/chores/"+chore.ID, nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	recorder = postForm(router, "/api/chores/"+chore.ID, url.Values{"name": {"Dust shelves"}})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	updated := decodeChore(t, recorder)
	if updated.Config.Name != "Dust shelves" || updated.Config.Recurrence.Period != 3 {
		t.Errorf("expected renamed chore keeping period 3, got %s/%d", updated.Config.Name, updated.Config.Recurrence.Period)
	}

	request = httptest.NewRequest(http.MethodDelete, "/api/chores/"+chore.ID, nil)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	request = httptest.NewRequest(http.MethodGet, "/api/chores/"+chore.ID, nil)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected status 404 after delete, got %d", recorder.Code)
	}
}

func TestChoreHandler_Complete(t *testing.T) {
	router, _ := setupChoreRouter(t)
	chore := createChore(t, router, map[string]any{
		"name":                  "Paint fence",
		"people":                []string{"alex", "sam"},
		"multiple_people_mode":  "alternating",
		"end_type":              "end_after_occurrences",
		"end_after_occurrences": 1,
	})

	recorder := postForm(router, "/api/chores/"+chore.ID+"/complete", url.Values{})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	completed := decodeChore(t, recorder)
	if !completed.Finished || completed.OccurrenceCount != 1 {
		t.Errorf("expected finished after one occurrence, got %+v", completed)
	}

	recorder = postForm(router, "/api/chores/"+chore.ID+"/complete", url.Values{})
	if recorder.Code != http.StatusConflict {
		t.Errorf("expected status 409 for a finished chore, got %d", recorder.Code)
	}

	recorder = postForm(router, "/api/chores/missing/complete", url.Values{})
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", recorder.Code)
	}
}

func TestChoreHandler_ListAndPersonChores(t *testing.T) {
	router, _ := setupChoreRouter(t)
	createChore(t, router, map[string]any{"name": "Dishes", "people": []string{"alex"}})
	createChore(t, router, map[string]any{"name": "Groceries", "people": []string{"alex", "sam"}, "multiple_people_mode": "shared"})
	createChore(t, router, map[string]any{"name": "Dust"})

	tests := []struct {
		name string
		path string
		want int
	}{
		{"all", "/api/chores", 3},
		{"by person", "/api/chores?person=sam", 1},
		{"by mode", "/api/chores?allocation_mode=none&allocation_mode=single", 2},
		{"person chores", "/api/people/alex/chores", 2},
		{"nobody", "/api/people/kim/chores", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, tt.path, nil)
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)
			if recorder.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", recorder.Code)
			}

			var chores []choreResponse
			if err := json.NewDecoder(recorder.Body).Decode(&chores); err != nil {
				t.Fatalf("decoding chores: %v", err)
			}
			if len(chores) != tt.want {
				t.Errorf("expected %d chores, got %d", tt.want, len(chores))
			}
		})
	}
}

func TestChoreHandler_UpdateFormClearsField(t *testing.T) {
	router, _ := setupChoreRouter(t)
	created := createChore(t, router, map[string]any{"name": "Bins", "start_date": "2025-01-06"})

	recorder := postForm(router, "/api/chores/"+created.ID, url.Values{"start_date": {""}})
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if updated := decodeChore(t, recorder); updated.Config.Recurrence.StartDate != nil {
		t.Errorf("expected start date to be cleared, got %s", *updated.Config.Recurrence.StartDate)
	}
}

func TestChoreHandler_CreateFormNamedOn(t *testing.T) {
	router, _ := setupChoreRouter(t)

	recorder := postForm(router, "/api/chores", url.Values{"name": {"on"}, "hidden": {"on"}})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	chore := decodeChore(t, recorder)
	if chore.Config.Name != "on" {
		t.Errorf("expected name on, got %q", chore.Config.Name)
	}
	if !chore.Config.Hidden {
		t.Error("expected checkbox to set hidden")
	}
}

func TestChoreHandler_EditFieldsInfersPattern(t *testing.T) {
	router, _ := setupChoreRouter(t)
	created := createChore(t, router, map[string]any{"name": "Mow", "frequency": "every-n-weeks"})

	request := httptest.NewRequest(http.MethodGet, "/api/chores/"+created.ID+"/fields", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	var response struct {
		Draft  map[string]any       `json:"draft"`
		Fields []services.FieldSpec `json:"fields"`
	}
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if response.Draft["recurrence_type"] != "weekly" {
		t.Errorf("expected weekly to be pre-selected, got %v", response.Draft["recurrence_type"])
	}
	keys := services.FieldKeys(response.Fields)
	if !slices.Contains(keys, "recurrence_type") || slices.Contains(keys, "frequency") {
		t.Errorf("expected structured recurrence fields, got %v", keys)
	}

	request = httptest.NewRequest(http.MethodGet, "/api/chores/missing/fields", nil)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", recorder.Code)
	}
}

func TestChoreHandler_ListInSeason(t *testing.T) {
	router, _ := setupChoreRouter(t)
	nextMonth := string(models.Months[int(time.Now().Month())%12])
	createChore(t, router, map[string]any{"name": "Dishes"})
	createChore(t, router, map[string]any{"name": "Mow", "first_month": nextMonth, "last_month": nextMonth})

	request := httptest.NewRequest(http.MethodGet, "/api/chores?in_season=true", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	var chores []choreResponse
	if err := json.NewDecoder(recorder.Body).Decode(&chores); err != nil {
		t.Fatalf("decoding chores: %v", err)
	}
	if len(chores) != 1 || chores[0].Config.Name != "Dishes" {
		t.Errorf("expected only Dishes in season, got %d chores", len(chores))
	}
}
