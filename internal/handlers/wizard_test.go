package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bensuskins/chore-helper/internal/models"
	"github.com/bensuskins/chore-helper/internal/repository"
	"github.com/bensuskins/chore-helper/internal/services"
	"github.com/bensuskins/chore-helper/internal/testutil"
	"github.com/go-chi/chi/v5"
)

type wizardClient struct {
	t       *testing.T
	router  http.Handler
	cookies []*http.Cookie
}

func newWizardClient(t *testing.T) *wizardClient {
	t.Helper()
	database := testutil.NewTestDatabase(t)
	choreService := services.NewChoreService(
		repository.NewChoreRepository(database),
		repository.NewChoreAssignmentRepository(database),
	)
	handler := NewWizardHandler(choreService, []byte("wizard-test-hash-key"), nil)

	router := chi.NewRouter()
	router.Get("/api/wizard", handler.Show)
	router.Post("/api/wizard", handler.Submit)
	router.Delete("/api/wizard", handler.Reset)
	return &wizardClient{t: t, router: router}
}

func (client *wizardClient) do(method string, body map[string]any) *httptest.ResponseRecorder {
	client.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			client.t.Fatalf("encoding body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, "/api/wizard", reader)
	request.Header.Set("Content-Type", "application/json")
	for _, cookie := range client.cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	client.router.ServeHTTP(recorder, request)

	for _, cookie := range recorder.Result().Cookies() {
		if cookie.Name != wizardCookieName {
			continue
		}
		client.cookies = nil
		if cookie.MaxAge >= 0 {
			client.cookies = []*http.Cookie{cookie}
		}
	}
	return recorder
}

func (client *wizardClient) submit(values map[string]any, wantStep services.Step) {
	client.t.Helper()
	recorder := client.do(http.MethodPost, values)
	if recorder.Code != http.StatusOK {
		client.t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var response wizardResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		client.t.Fatalf("decoding wizard: %v", err)
	}
	if response.Step != wantStep {
		client.t.Fatalf("expected step %s, got %s", wantStep, response.Step)
	}
}

func TestWizardHandler_CompleteFlow(t *testing.T) {
	client := newWizardClient(t)

	recorder := client.do(http.MethodGet, nil)
	var start wizardResponse
	if err := json.NewDecoder(recorder.Body).Decode(&start); err != nil {
		t.Fatalf("decoding wizard: %v", err)
	}
	if start.Step != services.StepDetails || len(start.Fields) == 0 {
		t.Fatalf("expected details step with fields, got %+v", start)
	}

	client.submit(map[string]any{"name": "Bins"}, services.StepRecurrence)
	client.submit(map[string]any{"recurrence_type": "weekly"}, services.StepRecurrence)
	client.submit(map[string]any{"weekly_days": []string{"tue"}}, services.StepRange)
	client.submit(map[string]any{}, services.StepAllocation)
	client.submit(map[string]any{"people": []string{"alex", "sam"}}, services.StepAllocation)
	client.submit(map[string]any{"multiple_people_mode": "alternating"}, services.StepAdvanced)

	recorder = client.do(http.MethodPost, map[string]any{})
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var chore models.Chore
	if err := json.NewDecoder(recorder.Body).Decode(&chore); err != nil {
		t.Fatalf("decoding chore: %v", err)
	}
	if chore.Config.Name != "Bins" || chore.Config.Recurrence.Frequency != models.FrequencyEveryNWeeks {
		t.Errorf("expected weekly Bins, got %+v", chore.Config)
	}
	if chore.Config.Allocation.Mode != models.AllocationAlternating {
		t.Errorf("expected alternating, got %s", chore.Config.Allocation.Mode)
	}
	if len(client.cookies) != 0 {
		t.Error("expected the wizard cookie to be cleared")
	}
}

func TestWizardHandler_ReturnsToFailingStep(t *testing.T) {
	client := newWizardClient(t)

	client.submit(map[string]any{}, services.StepRecurrence)
	client.submit(map[string]any{}, services.StepRange)
	client.submit(map[string]any{}, services.StepAllocation)
	client.submit(map[string]any{}, services.StepAdvanced)

	recorder := client.do(http.MethodPost, map[string]any{})
	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", recorder.Code)
	}
	var response wizardResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("decoding wizard: %v", err)
	}
	if response.Step != services.StepDetails {
		t.Errorf("expected return to details, got %s", response.Step)
	}
	if response.Error == nil || response.Error.Field != "name" {
		t.Errorf("expected name error, got %+v", response.Error)
	}

	client.submit(map[string]any{"name": "Dust"}, services.StepRecurrence)
}

func TestWizardHandler_Reset(t *testing.T) {
	client := newWizardClient(t)
	client.submit(map[string]any{"name": "Dust"}, services.StepRecurrence)

	recorder := client.do(http.MethodDelete, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}

	recorder = client.do(http.MethodGet, nil)
	var response wizardResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("decoding wizard: %v", err)
	}
	if response.Step != services.StepDetails || len(response.Draft) != 0 {
		t.Errorf("expected a fresh wizard, got %+v", response)
	}
}

func TestWizardHandler_IgnoresForgedCookie(t *testing.T) {
	client := newWizardClient(t)
	client.cookies = []*http.Cookie{{Name: wizardCookieName, Value: "forged"}}

	recorder := client.do(http.MethodGet, nil)
	var response wizardResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("decoding wizard: %v", err)
	}
	if response.Step != services.StepDetails {
		t.Errorf("expected a fresh wizard, got %s", response.Step)
	}
}
