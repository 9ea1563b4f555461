package services_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/bensuskins/chore-helper/internal/models"
	"github.com/bensuskins/chore-helper/internal/services"
)

func submitStep(t *testing.T, wizard services.Wizard, values map[string]any, want services.Step) services.Wizard {
	t.Helper()
	next, config, err := wizard.Submit(values)
	if err != nil {
		t.Fatalf("submitting %s: %v", wizard.Step, err)
	}
	if config != nil && want != services.StepDone {
		t.Fatalf("expected no config before the last step, got %+v", config)
	}
	if next.Step != want {
		t.Fatalf("expected step %s after %s, got %s", want, wizard.Step, next.Step)
	}
	return next
}

func TestWizard_FullFlow(t *testing.T) {
	wizard := services.NewWizard()
	if wizard.Step != services.StepDetails {
		t.Fatalf("expected details step, got %s", wizard.Step)
	}

	wizard = submitStep(t, wizard, map[string]any{"name": "Clean gutters"}, services.StepRecurrence)

	// Choosing monthly reveals the monthly fields, so the step is asked again.
	wizard = submitStep(t, wizard, map[string]any{"recurrence_type": "monthly", "daily_pattern": "every_n_days", "period": 1}, services.StepRecurrence)
	keys := services.FieldKeys(wizard.Fields())
	if !slices.Contains(keys, "monthly_pattern") || !slices.Contains(keys, "day_of_month") {
		t.Fatalf("expected monthly fields, got %v", keys)
	}

	wizard = submitStep(t, wizard, map[string]any{"monthly_pattern": "nth_day_type"}, services.StepRecurrence)
	wizard = submitStep(t, wizard, map[string]any{"day_type": "monday"}, services.StepRange)

	wizard = submitStep(t, wizard, map[string]any{"end_type": "end_after_occurrences"}, services.StepRange)
	wizard = submitStep(t, wizard, map[string]any{"end_after_occurrences": 5}, services.StepAllocation)

	wizard = submitStep(t, wizard, map[string]any{"people": []string{"person.alex", "person.sam"}}, services.StepAllocation)
	wizard = submitStep(t, wizard, map[string]any{"multiple_people_mode": "alternating"}, services.StepAdvanced)

	next, config, err := wizard.Submit(map[string]any{"forecast_dates": 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Step != services.StepDone {
		t.Fatalf("expected done, got %s", next.Step)
	}
	if config == nil {
		t.Fatal("expected a resolved config")
	}
	if config.Recurrence.Frequency != models.FrequencyEveryNMonths || config.Recurrence.DayType != models.DayTypeMonday {
		t.Errorf("expected monthly on mondays, got %+v", config.Recurrence)
	}
	if config.Allocation.Mode != models.AllocationAlternating {
		t.Errorf("expected alternating, got %s", config.Allocation.Mode)
	}
	if config.End.AfterOccurrences == nil || *config.End.AfterOccurrences != 5 {
		t.Errorf("expected end after 5, got %+v", config.End)
	}
	if config.ForecastDates != 3 {
		t.Errorf("expected forecast dates 3, got %d", config.ForecastDates)
	}

	if _, _, err := next.Submit(nil); !errors.Is(err, services.ErrWizardFinished) {
		t.Errorf("expected ErrWizardFinished, got %v", err)
	}
}

func TestWizard_EarlierStepsNeverValidate(t *testing.T) {
	wizard := services.NewWizard()

	// A missing name only surfaces at the last step.
	wizard = submitStep(t, wizard, map[string]any{}, services.StepRecurrence)
	wizard = submitStep(t, wizard, map[string]any{"period": 0}, services.StepRange)
	wizard = submitStep(t, wizard, map[string]any{}, services.StepAllocation)
	wizard = submitStep(t, wizard, map[string]any{}, services.StepAdvanced)

	next, config, err := wizard.Submit(map[string]any{})
	if config != nil {
		t.Fatalf("expected no config, got %+v", config)
	}
	configErr, ok := services.AsConfigError(err)
	if !ok {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if configErr.Field != models.KeyName {
		t.Errorf("expected name error, got %s", configErr.Field)
	}
	if next.Step != services.StepDetails {
		t.Errorf("expected to return to the details step, got %s", next.Step)
	}
}

func TestWizard_ReturnsToStepOfFailingField(t *testing.T) {
	wizard := services.NewWizard()
	wizard = submitStep(t, wizard, map[string]any{"name": "Bins"}, services.StepRecurrence)
	wizard = submitStep(t, wizard, map[string]any{}, services.StepRange)
	wizard = submitStep(t, wizard, map[string]any{"end_type": "end_by_date"}, services.StepRange)
	wizard = submitStep(t, wizard, map[string]any{}, services.StepAllocation)
	wizard = submitStep(t, wizard, map[string]any{}, services.StepAdvanced)

	next, _, err := wizard.Submit(map[string]any{})
	if !errors.Is(err, services.ErrMissingRequiredField) {
		t.Fatalf("expected ErrMissingRequiredField, got %v", err)
	}
	if next.Step != services.StepRange {
		t.Fatalf("expected to return to range, got %s", next.Step)
	}

	wizard = submitStep(t, next, map[string]any{"end_date": "2030-12-31"}, services.StepAllocation)
	wizard = submitStep(t, wizard, map[string]any{}, services.StepAdvanced)
	_, config, err := wizard.Submit(map[string]any{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.End.Date == nil || *config.End.Date != "2030-12-31" {
		t.Errorf("expected end date 2030-12-31, got %+v", config.End)
	}
}

func TestWizard_SubmitDoesNotMutateReceiver(t *testing.T) {
	wizard := services.NewWizard()
	next := submitStep(t, wizard, map[string]any{"name": "Sweep"}, services.StepRecurrence)

	if len(wizard.Draft) != 0 || wizard.Step != services.StepDetails {
		t.Errorf("expected original wizard to be unchanged, got %+v", wizard)
	}
	if next.Draft["name"] != "Sweep" {
		t.Errorf("expected name in draft, got %v", next.Draft)
	}
}

func TestWizard_MatchesCombinedForm(t *testing.T) {
	values := map[string]any{
		"name":                 "Vacuum",
		"recurrence_type":      "weekly",
		"weekly_days":          []string{"sat"},
		"people":               []string{"person.alex", "person.sam"},
		"multiple_people_mode": "shared",
	}

	combined, err := services.Resolve(services.Draft(values))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wizard := services.NewWizard()
	var config *models.ChoreConfig
	for wizard.Step != services.StepDone {
		answers := map[string]any{}
		for _, key := range services.FieldKeys(wizard.Fields()) {
			if value, ok := values[key]; ok {
				answers[key] = value
			}
		}
		wizard, config, err = wizard.Submit(answers)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if config == nil {
		t.Fatal("expected a resolved config")
	}
	if config.Recurrence.Frequency != combined.Recurrence.Frequency ||
		config.Allocation.Mode != combined.Allocation.Mode ||
		!slices.Equal(config.Recurrence.WeeklyDays, combined.Recurrence.WeeklyDays) {
		t.Errorf("expected wizard and combined form to agree\nwizard:   %+v\ncombined: %+v", config, combined)
	}
}
