package services

import (
	"strings"
	"time"

	"github.com/bensuskins/chore-helper/internal/models"
)

const endDateLayout = "2006-01-02"

// ResolveEndCondition normalises the three ways a recurrence can end. The
// fields the chosen end type does not use are cleared; an unrecognised end
// type is treated as no_end.
func ResolveEndCondition(endType models.EndType, endDate *string, occurrences *int) (models.EndCondition, error) {
	switch endType {
	case models.EndTypeEndByDate:
		if endDate == nil || strings.TrimSpace(*endDate) == "" {
			return models.EndCondition{}, newConfigError(models.KeyEndDate, ErrMissingRequiredField, ErrorKeyEndDateRequired)
		}
		date := strings.TrimSpace(*endDate)
		if _, err := time.Parse(endDateLayout, date); err != nil {
			return models.EndCondition{}, newConfigError(models.KeyEndDate, ErrInvalidValue, ErrorKeyInvalid)
		}
		return models.EndCondition{Type: models.EndTypeEndByDate, Date: &date}, nil

	case models.EndTypeEndAfterOccurrences:
		if occurrences == nil || *occurrences < 1 {
			return models.EndCondition{}, newConfigError(models.KeyEndAfterOccurrences, ErrMissingRequiredField, ErrorKeyEndAfterOccurrencesRequired)
		}
		count := *occurrences
		return models.EndCondition{Type: models.EndTypeEndAfterOccurrences, AfterOccurrences: &count}, nil

	default:
		return models.EndCondition{Type: models.EndTypeNoEnd}, nil
	}
}
