package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bensuskins/chore-helper/internal/models"
	"github.com/bensuskins/chore-helper/internal/services"
	"github.com/charmbracelet/huh"
	"github.com/go-viper/mapstructure/v2"
)

// Prompter asks the fields of one wizard step and returns the answers keyed
// by field name. Unanswered optional fields are left out.
type Prompter interface {
	Ask(ctx context.Context, step services.Step, fields []services.FieldSpec) (map[string]any, error)
}

// Run walks a new wizard to the end. A rejected configuration is reported on
// output and the wizard resumes at the step holding the offending field.
func Run(ctx context.Context, prompter Prompter, output io.Writer) (services.Draft, models.ChoreConfig, error) {
	wizard := services.NewWizard()
	for {
		if err := ctx.Err(); err != nil {
			return nil, models.ChoreConfig{}, err
		}

		values, err := prompter.Ask(ctx, wizard.Step, wizard.Fields())
		if err != nil {
			return nil, models.ChoreConfig{}, fmt.Errorf("asking %s: %w", wizard.Step, err)
		}

		next, config, err := wizard.Submit(values)
		if err != nil {
			configErr, ok := services.AsConfigError(err)
			if !ok {
				return nil, models.ChoreConfig{}, err
			}
			fmt.Fprintf(output, "%s: %v\n", label(configErr.Field), configErr.Reason)
		}
		wizard = next

		if config != nil {
			return next.Draft, *config, nil
		}
	}
}

// HuhPrompter asks each step as one form group.
type HuhPrompter struct {
	Input      io.Reader
	Output     io.Writer
	Accessible bool
}

func (prompter HuhPrompter) Ask(ctx context.Context, step services.Step, fields []services.FieldSpec) (map[string]any, error) {
	if len(fields) == 0 {
		return map[string]any{}, nil
	}

	answers := make([]*answer, len(fields))
	inputs := make([]huh.Field, len(fields))
	for i, field := range fields {
		answers[i] = newAnswer(field)
		inputs[i] = answers[i].input()
	}

	form := huh.NewForm(huh.NewGroup(inputs...).Title(label(string(step)))).
		WithAccessible(prompter.Accessible)
	if prompter.Input != nil {
		form = form.WithInput(prompter.Input)
	}
	if prompter.Output != nil {
		form = form.WithOutput(prompter.Output)
	}
	if err := form.RunWithContext(ctx); err != nil {
		return nil, err
	}

	values := map[string]any{}
	for _, answer := range answers {
		if value, ok := answer.value(); ok {
			values[answer.field.Key] = value
		}
	}
	return values, nil
}

// answer holds the form binding of one field.
type answer struct {
	field   services.FieldSpec
	text    string
	choice  string
	choices []string
	flag    bool
}

func newAnswer(field services.FieldSpec) *answer {
	answer := &answer{field: field}
	suggested := field.Suggested

	switch {
	case field.Kind == services.KindBool:
		answer.flag, _ = suggested.(bool)
	case field.Kind == services.KindSelect && field.Multiple:
		answer.choices = toStrings(suggested)
	case field.Kind == services.KindSelect:
		if suggested != nil {
			answer.choice = fmt.Sprint(suggested)
		}
	case field.Kind == services.KindPeople:
		answer.text = strings.Join(toStrings(suggested), ", ")
	case suggested != nil:
		answer.text = fmt.Sprint(suggested)
	}
	return answer
}

func (answer *answer) input() huh.Field {
	field := answer.field
	title := label(field.Key)
	if field.Unit != "" {
		title += " (" + field.Unit + ")"
	}

	switch {
	case field.Kind == services.KindBool:
		return huh.NewConfirm().Title(title).Value(&answer.flag)
	case field.Kind == services.KindSelect && field.Multiple:
		return huh.NewMultiSelect[string]().Title(title).
			Options(huh.NewOptions(field.Options...)...).
			Value(&answer.choices)
	case field.Kind == services.KindSelect:
		var options []huh.Option[string]
		if !field.Required {
			options = append(options, huh.NewOption("(not set)", ""))
		}
		options = append(options, huh.NewOptions(field.Options...)...)
		return huh.NewSelect[string]().Title(title).Options(options...).Value(&answer.choice)
	}

	input := huh.NewInput().Title(title).Value(&answer.text).Validate(answer.validate)
	switch field.Kind {
	case services.KindPeople:
		input.Description("comma separated person ids")
	case services.KindDate:
		input.Description("YYYY-MM-DD")
	}
	if field.Key == models.KeyDate {
		input.Description("MM/DD")
	}
	return input
}

func (answer *answer) validate(text string) error {
	text = strings.TrimSpace(text)
	field := answer.field
	if text == "" {
		if field.Required {
			return errors.New("required")
		}
		return nil
	}
	if field.Kind != services.KindNumber {
		return nil
	}

	number, err := strconv.Atoi(text)
	if err != nil {
		return errors.New("enter a whole number")
	}
	if field.Min != nil && number < *field.Min {
		return fmt.Errorf("must be at least %d", *field.Min)
	}
	if field.Max != nil && number > *field.Max {
		return fmt.Errorf("must be at most %d", *field.Max)
	}
	return nil
}

func (answer *answer) value() (any, bool) {
	field := answer.field
	switch {
	case field.Kind == services.KindBool:
		return answer.flag, true
	case field.Kind == services.KindSelect && field.Multiple:
		return append([]string{}, answer.choices...), true
	case field.Kind == services.KindSelect:
		return answer.choice, answer.choice != ""
	case field.Kind == services.KindPeople:
		people := []string{}
		for _, person := range strings.Split(answer.text, ",") {
			if person = strings.TrimSpace(person); person != "" {
				people = append(people, person)
			}
		}
		return people, true
	}

	text := strings.TrimSpace(answer.text)
	if text == "" {
		return nil, false
	}
	if field.Kind == services.KindNumber {
		if number, err := strconv.Atoi(text); err == nil {
			return number, true
		}
	}
	return text, true
}

func toStrings(value any) []string {
	var values []string
	if err := mapstructure.WeakDecode(value, &values); err != nil {
		return nil
	}
	return values
}

func label(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}
