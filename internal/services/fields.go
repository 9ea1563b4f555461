package services

import "github.com/bensuskins/chore-helper/internal/models"

// Section groups fields the way both entry surfaces present them. The wizard
// asks one section per step.
type Section string

const (
	SectionDetails    Section = "details"
	SectionRecurrence Section = "recurrence"
	SectionRange      Section = "range"
	SectionAllocation Section = "allocation"
	SectionAdvanced   Section = "advanced"
)

var Sections = []Section{SectionDetails, SectionRecurrence, SectionRange, SectionAllocation, SectionAdvanced}

type Kind string

const (
	KindText   Kind = "text"
	KindIcon   Kind = "icon"
	KindSelect Kind = "select"
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
	KindDate   Kind = "date"
	KindPeople Kind = "people"
)

// FieldSpec declares one applicable field: what it is, whether it must be
// answered, its bounds and the value to pre-fill.
type FieldSpec struct {
	Key       string   `json:"key"`
	Section   Section  `json:"section"`
	Kind      Kind     `json:"kind"`
	Required  bool     `json:"required"`
	Options   []string `json:"options,omitempty"`
	Multiple  bool     `json:"multiple,omitempty"`
	Min       *int     `json:"min,omitempty"`
	Max       *int     `json:"max,omitempty"`
	Unit      string   `json:"unit,omitempty"`
	Default   any      `json:"default,omitempty"`
	Suggested any      `json:"suggested,omitempty"`
}

var boolFields = map[string]bool{
	models.KeyForceWeekNumbers: true,
	models.KeyHidden:           true,
	models.KeyManualUpdate:     true,
	models.KeyShowOverdueToday: true,
}

// IsBoolField reports whether key holds a yes/no answer.
func IsBoolField(key string) bool {
	return boolFields[key]
}

func bounds(low, high int) (*int, *int) {
	return &low, &high
}

// draftFrequency is the frequency the draft currently implies. A structured
// recurrence wins over the legacy field; an unresolvable one falls back to it.
func draftFrequency(draft Draft) models.Frequency {
	if recurrenceType := models.RecurrenceType(draft.String(models.KeyRecurrenceType)); recurrenceType != "" {
		pattern := models.Pattern(draft.String(models.PatternKey(recurrenceType)))
		if spec, err := CanonicalizePattern(recurrenceType, pattern, models.DefaultPeriod); err == nil {
			return spec.Frequency
		}
	}
	if frequency := models.Frequency(draft.String(models.KeyFrequency)); frequency.Valid() {
		return frequency
	}
	return models.DefaultFrequency
}

func draftPattern(draft Draft) (models.RecurrenceType, models.Pattern) {
	recurrenceType := models.RecurrenceType(draft.String(models.KeyRecurrenceType))
	patterns, ok := models.Patterns[recurrenceType]
	if !ok {
		return "", ""
	}
	pattern := models.Pattern(draft.String(models.PatternKey(recurrenceType)))
	if pattern == "" {
		pattern = patterns[0]
	}
	return recurrenceType, pattern
}

// EditDraft is the draft an edit surface starts from. A chore stored with
// only a legacy frequency gets the structured recurrence fields that map to
// it pre-selected.
func EditDraft(config models.ChoreConfig) Draft {
	draft := Draft(config.Options())
	if draft.Has(models.KeyRecurrenceType) {
		return draft
	}
	if recurrenceType, pattern, ok := InferPattern(config.Recurrence.Frequency); ok {
		draft[models.KeyRecurrenceType] = string(recurrenceType)
		draft[models.PatternKey(recurrenceType)] = string(pattern)
	}
	return draft
}

// Fields returns every field applicable to the draft, in presentation order.
// It is recomputed from scratch on each call since the visibility of one
// field depends on the current values of others.
func Fields(draft Draft) []FieldSpec {
	frequency := draftFrequency(draft)
	recurrenceType, pattern := draftPattern(draft)

	var fields []FieldSpec
	add := func(field FieldSpec) {
		field.Options = models.Options(field.Key)
		if value, ok := draft[field.Key]; ok && value != nil {
			field.Suggested = value
		} else {
			field.Suggested = field.Default
		}
		fields = append(fields, field)
	}

	add(FieldSpec{Key: models.KeyName, Section: SectionDetails, Kind: KindText, Required: true})
	add(FieldSpec{Key: models.KeyIconNormal, Section: SectionDetails, Kind: KindIcon, Default: models.DefaultIconNormal})
	add(FieldSpec{Key: models.KeyIconTomorrow, Section: SectionDetails, Kind: KindIcon, Default: models.DefaultIconTomorrow})
	add(FieldSpec{Key: models.KeyIconToday, Section: SectionDetails, Kind: KindIcon, Default: models.DefaultIconToday})
	add(FieldSpec{Key: models.KeyIconOverdue, Section: SectionDetails, Kind: KindIcon, Default: models.DefaultIconOverdue})

	if recurrenceType == "" && draft.Has(models.KeyFrequency) {
		add(FieldSpec{Key: models.KeyFrequency, Section: SectionRecurrence, Kind: KindSelect, Default: string(models.DefaultFrequency)})
	} else {
		add(FieldSpec{Key: models.KeyRecurrenceType, Section: SectionRecurrence, Kind: KindSelect, Default: string(models.DefaultRecurrenceType)})
		if recurrenceType == "" {
			recurrenceType, pattern = models.DefaultRecurrenceType, models.Patterns[models.DefaultRecurrenceType][0]
		}
		add(FieldSpec{Key: models.PatternKey(recurrenceType), Section: SectionRecurrence, Kind: KindSelect, Default: string(models.Patterns[recurrenceType][0])})
	}

	if recurrenceType == models.RecurrenceWeekly && pattern == models.PatternRecurWeekly {
		add(FieldSpec{Key: models.KeyWeeklyDays, Section: SectionRecurrence, Kind: KindSelect, Multiple: true, Default: []string{}})
	}
	if pattern.IsNthPattern() {
		add(FieldSpec{Key: models.KeyDayType, Section: SectionRecurrence, Kind: KindSelect, Default: string(models.DefaultDayType)})
	}

	if !frequency.IsBlank() {
		low, high := bounds(models.MinPeriod, models.MaxPeriod)
		add(FieldSpec{Key: models.KeyPeriod, Section: SectionRecurrence, Kind: KindNumber, Required: true,
			Min: low, Max: high, Unit: frequency.Unit(), Default: models.DefaultPeriod})
	}
	if frequency.IsWeekly() || frequency.IsMonthly() {
		add(FieldSpec{Key: models.KeyChoreDay, Section: SectionRecurrence, Kind: KindSelect})
	}
	if frequency.IsWeekly() {
		low, high := bounds(models.MinFirstWeek, models.MaxFirstWeek)
		add(FieldSpec{Key: models.KeyFirstWeek, Section: SectionRecurrence, Kind: KindNumber, Required: true,
			Min: low, Max: high, Unit: "weeks", Default: models.DefaultFirstWeek})
	}
	if frequency.IsMonthly() {
		low, high := bounds(models.MinDayOfMonth, models.MaxDayOfMonth)
		add(FieldSpec{Key: models.KeyDayOfMonth, Section: SectionRecurrence, Kind: KindNumber, Min: low, Max: high})
		add(FieldSpec{Key: models.KeyWeekdayOrderNumber, Section: SectionRecurrence, Kind: KindSelect})
		add(FieldSpec{Key: models.KeyForceWeekNumbers, Section: SectionRecurrence, Kind: KindBool, Default: false})
		low, high = bounds(models.MinDueDateOffset, models.MaxDueDateOffset)
		add(FieldSpec{Key: models.KeyDueDateOffset, Section: SectionRecurrence, Kind: KindNumber,
			Min: low, Max: high, Unit: "day(s)", Default: models.DefaultDueDateOffset})
	}
	if frequency.IsYearly() {
		add(FieldSpec{Key: models.KeyDate, Section: SectionRecurrence, Kind: KindText})
	} else {
		add(FieldSpec{Key: models.KeyFirstMonth, Section: SectionRecurrence, Kind: KindSelect, Default: string(models.DefaultFirstMonth)})
		add(FieldSpec{Key: models.KeyLastMonth, Section: SectionRecurrence, Kind: KindSelect, Default: string(models.DefaultLastMonth)})
	}

	if !frequency.IsBlank() {
		add(FieldSpec{Key: models.KeyStartDate, Section: SectionRange, Kind: KindDate})
	}
	add(FieldSpec{Key: models.KeyEndType, Section: SectionRange, Kind: KindSelect, Default: string(models.DefaultEndType)})
	switch models.EndType(draft.String(models.KeyEndType)) {
	case models.EndTypeEndByDate:
		add(FieldSpec{Key: models.KeyEndDate, Section: SectionRange, Kind: KindDate, Required: true})
	case models.EndTypeEndAfterOccurrences:
		low := 1
		add(FieldSpec{Key: models.KeyEndAfterOccurrences, Section: SectionRange, Kind: KindNumber, Required: true, Min: &low})
	}

	add(FieldSpec{Key: models.KeyPeople, Section: SectionAllocation, Kind: KindPeople, Multiple: true, Default: []string{}})
	if len(uniquePeople(draft.Strings(models.KeyPeople))) > 1 {
		field := FieldSpec{Key: models.KeyMultiplePeopleMode, Section: SectionAllocation, Kind: KindSelect, Required: true}
		switch mode := models.AllocationMode(draft.String(models.KeyAllocationMode)); mode {
		case models.AllocationAlternating, models.AllocationShared:
			field.Default = string(mode)
		}
		add(field)
	}

	low, high := bounds(models.MinForecastDates, models.MaxForecastDates)
	add(FieldSpec{Key: models.KeyForecastDates, Section: SectionAdvanced, Kind: KindNumber, Min: low, Max: high, Default: models.DefaultForecastDates})
	add(FieldSpec{Key: models.KeyHidden, Section: SectionAdvanced, Kind: KindBool, Default: false})
	add(FieldSpec{Key: models.KeyManualUpdate, Section: SectionAdvanced, Kind: KindBool, Default: false})
	add(FieldSpec{Key: models.KeyShowOverdueToday, Section: SectionAdvanced, Kind: KindBool, Default: models.DefaultShowOverdueToday})

	return fields
}

// SectionFields returns the applicable fields of one section.
func SectionFields(section Section, draft Draft) []FieldSpec {
	var fields []FieldSpec
	for _, field := range Fields(draft) {
		if field.Section == section {
			fields = append(fields, field)
		}
	}
	return fields
}

// FieldKeys returns the keys of fields in order.
func FieldKeys(fields []FieldSpec) []string {
	keys := make([]string, len(fields))
	for i, field := range fields {
		keys[i] = field.Key
	}
	return keys
}
