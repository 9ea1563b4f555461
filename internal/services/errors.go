package services

import (
	"errors"
	"fmt"
)

// Reasons a configuration field can be rejected. A ConfigError unwraps to
// exactly one of them.
var (
	ErrInvalidDateToken     = errors.New("invalid month/day token")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrOutOfRangeValue      = errors.New("value out of range")
	ErrInvalidValue         = errors.New("invalid value")
)

// Form error keys reported alongside a ConfigError.
const (
	ErrorKeyMonthDay                    = "month_day"
	ErrorKeyEndDateRequired             = "end_date_required"
	ErrorKeyEndAfterOccurrencesRequired = "end_after_occurrences_required"
	ErrorKeyMultiplePeopleModeRequired  = "multiple_people_mode_required"
	ErrorKeyRequired                    = "required"
	ErrorKeyOutOfRange                  = "out_of_range"
	ErrorKeyInvalid                     = "invalid"
	ErrorKeyUnknownPattern              = "unknown_pattern"
)

// ConfigError ties a rejected configuration to the field that caused it.
type ConfigError struct {
	Field  string
	Reason error
	Key    string
}

func (err *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v (%s)", err.Field, err.Reason, err.Key)
}

func (err *ConfigError) Unwrap() error {
	return err.Reason
}

func newConfigError(field string, reason error, key string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason, Key: key}
}

// AsConfigError extracts the ConfigError from err, if any.
func AsConfigError(err error) (*ConfigError, bool) {
	var configErr *ConfigError
	if errors.As(err, &configErr) {
		return configErr, true
	}
	return nil, false
}
