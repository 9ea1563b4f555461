package services

import (
	"strings"

	"github.com/bensuskins/chore-helper/internal/models"
)

var patternFrequencies = map[models.RecurrenceType]map[models.Pattern]models.Frequency{
	models.RecurrenceDaily: {
		models.PatternEveryNDays:     models.FrequencyEveryNDays,
		models.PatternEveryWeekday:   models.FrequencyEveryNDays,
		models.PatternRegenerateDays: models.FrequencyAfterNDays,
	},
	models.RecurrenceWeekly: {
		models.PatternRecurWeekly:     models.FrequencyEveryNWeeks,
		models.PatternRegenerateWeeks: models.FrequencyAfterNWeeks,
	},
	models.RecurrenceMonthly: {
		models.PatternDayOfMonth:       models.FrequencyEveryNMonths,
		models.PatternNthDayType:       models.FrequencyEveryNMonths,
		models.PatternRegenerateMonths: models.FrequencyAfterNMonths,
	},
	models.RecurrenceYearly: {
		models.PatternMonthDay:          models.FrequencyEveryNYears,
		models.PatternNthDayTypeOfMonth: models.FrequencyEveryNYears,
		models.PatternRegenerateYears:   models.FrequencyAfterNYears,
	},
}

// CanonicalizePattern maps a recurrence type and sub-pattern onto the legacy
// frequency code consumed by the date engine. An empty pattern selects the
// first pattern of the type.
//
// every_weekday recurs every single day; skipping weekend days is left to the
// date engine, which does not filter them today.
func CanonicalizePattern(recurrenceType models.RecurrenceType, pattern models.Pattern, period int) (models.RecurrenceSpec, error) {
	frequencies, ok := patternFrequencies[recurrenceType]
	if !ok {
		return models.RecurrenceSpec{}, newConfigError(models.KeyRecurrenceType, ErrInvalidValue, ErrorKeyInvalid)
	}

	if pattern == "" {
		pattern = models.Patterns[recurrenceType][0]
	}
	frequency, ok := frequencies[pattern]
	if !ok {
		return models.RecurrenceSpec{}, newConfigError(models.PatternKey(recurrenceType), ErrInvalidValue, ErrorKeyUnknownPattern)
	}

	if pattern == models.PatternEveryWeekday {
		period = 1
	}

	return models.RecurrenceSpec{
		Type:      recurrenceType,
		Pattern:   pattern,
		Frequency: frequency,
		Period:    period,
	}, nil
}

// InferPattern maps a legacy frequency back onto the structured recurrence
// fields. It reports false for blank or unknown frequencies.
func InferPattern(frequency models.Frequency) (models.RecurrenceType, models.Pattern, bool) {
	for _, recurrenceType := range models.RecurrenceTypes {
		for _, pattern := range models.Patterns[recurrenceType] {
			if pattern == models.PatternEveryWeekday {
				continue
			}
			if patternFrequencies[recurrenceType][pattern] == frequency {
				return recurrenceType, pattern, true
			}
		}
	}
	return "", "", false
}

// normalizeLegacyFields clears legacy values that mean "unset" and rejects a
// date token that cannot be parsed.
func normalizeLegacyFields(input *choreInput) error {
	if input.DayOfMonth != nil && *input.DayOfMonth < 1 {
		input.DayOfMonth = nil
	}

	if input.WeekdayOrderNumber != nil && *input.WeekdayOrderNumber == 0 {
		input.WeekdayOrderNumber = nil
	}

	if input.ChoreDay != nil && *input.ChoreDay == "0" {
		input.ChoreDay = nil
	}

	if input.Date != nil {
		date := strings.TrimSpace(*input.Date)
		if date == "0" || date == "0/0" || date == "" {
			input.Date = nil
		} else {
			if _, err := ParseMonthDay(date); err != nil {
				return newConfigError(models.KeyDate, ErrInvalidDateToken, ErrorKeyMonthDay)
			}
			input.Date = &date
		}
	}

	return nil
}
