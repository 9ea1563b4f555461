package services

import (
	"errors"
	"slices"

	"github.com/bensuskins/chore-helper/internal/models"
)

var ErrWizardFinished = errors.New("wizard already finished")

type Step string

const (
	StepDetails    Step = "details"
	StepRecurrence Step = "recurrence"
	StepRange      Step = "range"
	StepAllocation Step = "allocation"
	StepAdvanced   Step = "advanced"
	StepDone       Step = "done"
)

var steps = []Step{StepDetails, StepRecurrence, StepRange, StepAllocation, StepAdvanced, StepDone}

func (step Step) next() Step {
	index := slices.Index(steps, step)
	if index < 0 || index == len(steps)-1 {
		return StepDone
	}
	return steps[index+1]
}

// Wizard is the guided entry surface. Each step asks one section of fields
// and only the last one runs validation, over everything collected so far.
type Wizard struct {
	Step  Step     `json:"step"`
	Draft Draft    `json:"draft"`
	Asked []string `json:"asked"`
}

func NewWizard() Wizard {
	return Wizard{Step: StepDetails, Draft: Draft{}}
}

// Fields returns the fields the current step asks for.
func (wizard Wizard) Fields() []FieldSpec {
	if wizard.Step == StepDone {
		return nil
	}
	return SectionFields(Section(wizard.Step), wizard.Draft)
}

// Submit merges the answers of the current step into the draft. The wizard
// stays on the step while the answers revealed fields it has not asked yet;
// otherwise it advances. Submitting the last step resolves the draft; on
// failure the wizard returns to the step holding the offending field.
func (wizard Wizard) Submit(values map[string]any) (Wizard, *models.ChoreConfig, error) {
	if wizard.Step == StepDone {
		return wizard, nil, ErrWizardFinished
	}

	asked := slices.Clone(wizard.Asked)
	for _, key := range FieldKeys(wizard.Fields()) {
		asked = appendMissing(asked, key)
	}
	for key := range values {
		asked = appendMissing(asked, key)
	}

	next := Wizard{Step: wizard.Step, Draft: wizard.Draft.Merge(values), Asked: asked}
	for _, key := range FieldKeys(next.Fields()) {
		if !slices.Contains(asked, key) {
			return next, nil, nil
		}
	}

	next.Step = wizard.Step.next()
	if next.Step != StepDone {
		return next, nil, nil
	}

	config, err := Resolve(next.Draft)
	if err != nil {
		next.Step = StepAdvanced
		if configErr, ok := AsConfigError(err); ok {
			for _, field := range Fields(next.Draft) {
				if field.Key == configErr.Field {
					next.Step = Step(field.Section)
					break
				}
			}
		}
		return next, nil, err
	}
	return next, &config, nil
}

func appendMissing(keys []string, key string) []string {
	if slices.Contains(keys, key) {
		return keys
	}
	return append(keys, key)
}
