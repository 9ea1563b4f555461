package services

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"

	"github.com/bensuskins/chore-helper/internal/models"
)

// Draft is the accumulated field map collected by an entry surface, keyed by
// the field names of the vocabulary.
type Draft map[string]any

// Clone returns a shallow copy; slices are copied so merging never aliases
// the caller's values.
func (draft Draft) Clone() Draft {
	clone := make(Draft, len(draft))
	for key, value := range draft {
		switch typed := value.(type) {
		case []string:
			clone[key] = append([]string(nil), typed...)
		case []any:
			clone[key] = append([]any(nil), typed...)
		default:
			clone[key] = value
		}
	}
	return clone
}

// Merge returns a new draft with values laid over draft.
func (draft Draft) Merge(values map[string]any) Draft {
	merged := draft.Clone()
	for key, value := range Draft(values).Clone() {
		merged[key] = value
	}
	return merged
}

// Has reports whether the draft carries a non-nil value for key.
func (draft Draft) Has(key string) bool {
	value, ok := draft[key]
	return ok && value != nil
}

func (draft Draft) String(key string) string {
	value, ok := draft[key]
	if !ok || value == nil {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(fmt.Sprint(value))
}

// Strings returns the list value of key, accepting a single string as a one
// element list.
func (draft Draft) Strings(key string) []string {
	var values []string
	if err := mapstructure.WeakDecode(draft[key], &values); err != nil {
		return nil
	}
	return values
}

// choreInput is the typed view of a draft. Pointers distinguish an absent
// field from its zero value.
type choreInput struct {
	Name         string  `mapstructure:"name" validate:"required"`
	IconNormal   *string `mapstructure:"icon_normal"`
	IconToday    *string `mapstructure:"icon_today"`
	IconTomorrow *string `mapstructure:"icon_tomorrow"`
	IconOverdue  *string `mapstructure:"icon_overdue"`

	Frequency      *string  `mapstructure:"frequency"`
	RecurrenceType *string  `mapstructure:"recurrence_type"`
	DailyPattern   *string  `mapstructure:"daily_pattern"`
	WeeklyPattern  *string  `mapstructure:"weekly_pattern"`
	MonthlyPattern *string  `mapstructure:"monthly_pattern"`
	YearlyPattern  *string  `mapstructure:"yearly_pattern"`
	WeeklyDays     []string `mapstructure:"weekly_days" validate:"dive,oneof=mon tue wed thu fri sat sun"`
	DayType        *string  `mapstructure:"day_type" validate:"omitnil,oneof=day weekday weekend_day monday tuesday wednesday thursday friday saturday sunday"`
	Period         *int     `mapstructure:"period" validate:"omitnil,min=1,max=1000"`
	StartDate      *string  `mapstructure:"start_date" validate:"omitnil,datetime=2006-01-02"`
	FirstMonth     *string  `mapstructure:"first_month" validate:"omitnil,oneof=jan feb mar apr may jun jul aug sep oct nov dec"`
	LastMonth      *string  `mapstructure:"last_month" validate:"omitnil,oneof=jan feb mar apr may jun jul aug sep oct nov dec"`

	ChoreDay           *string `mapstructure:"chore_day" validate:"omitnil,oneof=mon tue wed thu fri sat sun"`
	FirstWeek          *int    `mapstructure:"first_week" validate:"omitnil,min=1,max=52"`
	DayOfMonth         *int    `mapstructure:"day_of_month" validate:"omitnil,max=31"`
	WeekdayOrderNumber *int    `mapstructure:"weekday_order_number" validate:"omitnil,min=-4,max=5"`
	ForceWeekNumbers   *bool   `mapstructure:"force_week_order_numbers"`
	DueDateOffset      *int    `mapstructure:"due_date_offset" validate:"omitnil,min=-7,max=7"`
	Date               *string `mapstructure:"date"`

	EndType             *string `mapstructure:"end_type"`
	EndDate             *string `mapstructure:"end_date"`
	EndAfterOccurrences *int    `mapstructure:"end_after_occurrences"`

	People             []string `mapstructure:"people"`
	MultiplePeopleMode *string  `mapstructure:"multiple_people_mode"`

	ForecastDates    *int  `mapstructure:"forecast_dates" validate:"omitnil,min=0,max=100"`
	Hidden           *bool `mapstructure:"hidden"`
	ManualUpdate     *bool `mapstructure:"manual_update"`
	ShowOverdueToday *bool `mapstructure:"show_overdue_today"`
}

// inputKeys is the order decode failures are attributed in.
var inputKeys = []string{
	models.KeyName, models.KeyIconNormal, models.KeyIconToday, models.KeyIconTomorrow, models.KeyIconOverdue,
	models.KeyFrequency, models.KeyRecurrenceType,
	models.KeyDailyPattern, models.KeyWeeklyPattern, models.KeyMonthlyPattern, models.KeyYearlyPattern,
	models.KeyWeeklyDays, models.KeyDayType, models.KeyPeriod, models.KeyStartDate,
	models.KeyFirstMonth, models.KeyLastMonth, models.KeyChoreDay, models.KeyFirstWeek,
	models.KeyDayOfMonth, models.KeyWeekdayOrderNumber, models.KeyForceWeekNumbers, models.KeyDueDateOffset,
	models.KeyDate, models.KeyEndType, models.KeyEndDate, models.KeyEndAfterOccurrences,
	models.KeyPeople, models.KeyMultiplePeopleMode,
	models.KeyForecastDates, models.KeyHidden, models.KeyManualUpdate, models.KeyShowOverdueToday,
}

var vocabularyValidator = newVocabularyValidator()

func newVocabularyValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return validate
}

func decodeDraft(draft Draft) (choreInput, error) {
	var input choreInput
	if err := weakDecode(map[string]any(draft), &input); err == nil {
		return input, nil
	}

	for _, key := range inputKeys {
		value, ok := draft[key]
		if !ok {
			continue
		}
		var single choreInput
		if err := weakDecode(map[string]any{key: value}, &single); err != nil {
			return choreInput{}, newConfigError(key, ErrInvalidValue, ErrorKeyInvalid)
		}
	}
	return choreInput{}, newConfigError("base", ErrInvalidValue, ErrorKeyInvalid)
}

func weakDecode(source map[string]any, target *choreInput) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(rejectFractionalHook),
		WeaklyTypedInput: true,
		Result:           target,
		TagName:          "mapstructure",
	})
	if err != nil {
		return fmt.Errorf("creating draft decoder: %w", err)
	}
	return decoder.Decode(source)
}

// rejectFractionalHook refuses floats with a fractional part for integer
// fields. Weak decoding would otherwise truncate them.
func rejectFractionalHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() == reflect.Pointer {
		to = to.Elem()
	}
	switch to.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
	default:
		return data, nil
	}
	if from.Kind() != reflect.Float32 && from.Kind() != reflect.Float64 {
		return data, nil
	}

	number := reflect.ValueOf(data).Float()
	if number != math.Trunc(number) {
		return nil, fmt.Errorf("%v is not a whole number", data)
	}
	return data, nil
}

// checkVocabulary enforces the declared bounds and enumerations of the field
// vocabulary.
func checkVocabulary(input choreInput) error {
	input.Name = strings.TrimSpace(input.Name)
	err := vocabularyValidator.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return fmt.Errorf("validating chore input: %w", err)
	}

	first := validationErrors[0]
	field := first.Field()
	if index := strings.IndexByte(field, '['); index >= 0 {
		field = field[:index]
	}

	switch first.Tag() {
	case "required":
		return newConfigError(field, ErrMissingRequiredField, ErrorKeyRequired)
	case "min", "max":
		return newConfigError(field, ErrOutOfRangeValue, ErrorKeyOutOfRange)
	default:
		return newConfigError(field, ErrInvalidValue, ErrorKeyInvalid)
	}
}

// Resolve runs the validation pipeline over a draft: pattern
// canonicalisation, legacy field normalisation, vocabulary checks, the end
// condition and the allocation. The first violation is returned and the
// draft is never modified.
func Resolve(draft Draft) (models.ChoreConfig, error) {
	input, err := decodeDraft(draft.Clone())
	if err != nil {
		return models.ChoreConfig{}, err
	}

	recurrence, err := resolveRecurrence(draft, input)
	if err != nil {
		return models.ChoreConfig{}, err
	}
	input.Period = &recurrence.Period

	if err := normalizeLegacyFields(&input); err != nil {
		return models.ChoreConfig{}, err
	}
	if input.StartDate != nil && strings.TrimSpace(*input.StartDate) == "" {
		input.StartDate = nil
	}

	if err := checkVocabulary(input); err != nil {
		return models.ChoreConfig{}, err
	}

	end, err := ResolveEndCondition(models.EndType(valueOr(input.EndType, string(models.DefaultEndType))), input.EndDate, input.EndAfterOccurrences)
	if err != nil {
		return models.ChoreConfig{}, err
	}

	allocation, err := ResolveAllocation(input.People, models.AllocationMode(valueOr(input.MultiplePeopleMode, "")))
	if err != nil {
		return models.ChoreConfig{}, err
	}

	applyRecurrenceDetails(&recurrence, input)

	return models.ChoreConfig{
		Name: strings.TrimSpace(input.Name),
		Icons: models.IconSet{
			Normal:   valueOr(input.IconNormal, models.DefaultIconNormal),
			Today:    valueOr(input.IconToday, models.DefaultIconToday),
			Tomorrow: valueOr(input.IconTomorrow, models.DefaultIconTomorrow),
			Overdue:  valueOr(input.IconOverdue, models.DefaultIconOverdue),
		},
		Recurrence:       recurrence,
		End:              end,
		Allocation:       allocation,
		ForecastDates:    valueOr(input.ForecastDates, models.DefaultForecastDates),
		Hidden:           valueOr(input.Hidden, false),
		ManualUpdate:     valueOr(input.ManualUpdate, false),
		ShowOverdueToday: valueOr(input.ShowOverdueToday, models.DefaultShowOverdueToday),
	}, nil
}

// resolveRecurrence derives the frequency from the structured fields when a
// recurrence type is present and falls back to the authored legacy
// frequency otherwise.
func resolveRecurrence(draft Draft, input choreInput) (models.RecurrenceSpec, error) {
	period := valueOr(input.Period, models.DefaultPeriod)

	if input.RecurrenceType == nil || strings.TrimSpace(*input.RecurrenceType) == "" {
		frequency := models.Frequency(strings.TrimSpace(valueOr(input.Frequency, "")))
		if frequency == "" {
			frequency = models.DefaultFrequency
		}
		if !frequency.Valid() {
			return models.RecurrenceSpec{}, newConfigError(models.KeyFrequency, ErrInvalidValue, ErrorKeyInvalid)
		}
		return models.RecurrenceSpec{Frequency: frequency, Period: period}, nil
	}

	recurrenceType := models.RecurrenceType(strings.TrimSpace(*input.RecurrenceType))
	pattern := models.Pattern(draft.String(models.PatternKey(recurrenceType)))
	return CanonicalizePattern(recurrenceType, pattern, period)
}

func applyRecurrenceDetails(recurrence *models.RecurrenceSpec, input choreInput) {
	if recurrence.Type == models.RecurrenceWeekly && recurrence.Pattern == models.PatternRecurWeekly {
		for _, day := range uniquePeople(input.WeeklyDays) {
			recurrence.WeeklyDays = append(recurrence.WeeklyDays, models.Weekday(day))
		}
	}
	if recurrence.Pattern.IsNthPattern() {
		recurrence.DayType = models.DayType(valueOr(input.DayType, string(models.DefaultDayType)))
	}

	if input.StartDate != nil {
		startDate := *input.StartDate
		recurrence.StartDate = &startDate
	}
	recurrence.DayOfMonth = input.DayOfMonth
	recurrence.WeekdayOrderNumber = input.WeekdayOrderNumber
	if input.ChoreDay != nil {
		choreDay := models.Weekday(*input.ChoreDay)
		recurrence.ChoreDay = &choreDay
	}
	recurrence.FirstWeek = valueOr(input.FirstWeek, models.DefaultFirstWeek)
	recurrence.ForceWeekNumbers = valueOr(input.ForceWeekNumbers, false)
	recurrence.DueDateOffset = valueOr(input.DueDateOffset, models.DefaultDueDateOffset)
	recurrence.Date = input.Date
	recurrence.FirstMonth = models.Month(valueOr(input.FirstMonth, string(models.DefaultFirstMonth)))
	recurrence.LastMonth = models.Month(valueOr(input.LastMonth, string(models.DefaultLastMonth)))
}

func valueOr[T any](value *T, fallback T) T {
	if value == nil {
		return fallback
	}
	return *value
}

// Today formats a time as a start_date value.
func Today(now time.Time) string {
	return now.Format(endDateLayout)
}
