package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bensuskins/chore-helper/internal/services"
	"github.com/gorilla/securecookie"
)

const wizardCookieName = "chore_wizard"

// WizardHandler serves the step-by-step entry surface. The wizard state
// lives in a signed cookie, so every request carries its own draft.
type WizardHandler struct {
	choreService *services.ChoreService
	secureCookie *securecookie.SecureCookie
}

func NewWizardHandler(choreService *services.ChoreService, hashKey, blockKey []byte) *WizardHandler {
	return &WizardHandler{
		choreService: choreService,
		secureCookie: securecookie.New(hashKey, blockKey),
	}
}

type wizardResponse struct {
	Step   services.Step        `json:"step"`
	Fields []services.FieldSpec `json:"fields"`
	Draft  services.Draft       `json:"draft"`
	Error  *errorResponse       `json:"error,omitempty"`
}

func newWizardResponse(wizard services.Wizard) wizardResponse {
	fields := wizard.Fields()
	if fields == nil {
		fields = []services.FieldSpec{}
	}
	return wizardResponse{Step: wizard.Step, Fields: fields, Draft: wizard.Draft}
}

func (handler *WizardHandler) Show(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newWizardResponse(handler.load(r)))
}

// Submit answers the current step. Finishing the last step creates the chore
// and clears the wizard.
func (handler *WizardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	values, err := readValues(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	next, config, err := handler.load(r).Submit(values)
	if err != nil {
		configErr, ok := services.AsConfigError(err)
		if !ok {
			writeError(w, err)
			return
		}
		if err := handler.save(w, next); err != nil {
			writeError(w, err)
			return
		}
		response := newWizardResponse(next)
		response.Error = &errorResponse{Error: configErr.Reason.Error(), Field: configErr.Field, Key: configErr.Key}
		writeJSON(w, http.StatusUnprocessableEntity, response)
		return
	}

	if config == nil {
		if err := handler.save(w, next); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, newWizardResponse(next))
		return
	}

	chore, err := handler.choreService.Create(r.Context(), next.Draft)
	if err != nil {
		writeError(w, err)
		return
	}
	handler.clear(w)
	writeJSON(w, http.StatusCreated, chore)
}

func (handler *WizardHandler) Reset(w http.ResponseWriter, r *http.Request) {
	handler.clear(w)
	writeJSON(w, http.StatusOK, newWizardResponse(services.NewWizard()))
}

func (handler *WizardHandler) load(r *http.Request) services.Wizard {
	cookie, err := r.Cookie(wizardCookieName)
	if err != nil {
		return services.NewWizard()
	}

	var decoded string
	if err := handler.secureCookie.Decode(wizardCookieName, cookie.Value, &decoded); err != nil {
		slog.Debug("decoding wizard cookie", "error", err)
		return services.NewWizard()
	}

	var wizard services.Wizard
	if err := json.Unmarshal([]byte(decoded), &wizard); err != nil || wizard.Step == "" {
		return services.NewWizard()
	}
	if wizard.Draft == nil {
		wizard.Draft = services.Draft{}
	}
	return wizard
}

func (handler *WizardHandler) save(w http.ResponseWriter, wizard services.Wizard) error {
	encoded, err := json.Marshal(wizard)
	if err != nil {
		return fmt.Errorf("marshaling wizard: %w", err)
	}

	value, err := handler.secureCookie.Encode(wizardCookieName, string(encoded))
	if err != nil {
		return fmt.Errorf("encoding wizard cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     wizardCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400,
	})
	return nil
}

func (handler *WizardHandler) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     wizardCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}
