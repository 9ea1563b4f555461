package models

import "time"

type AssignmentStatus string

const (
	AssignmentStatusAssigned   AssignmentStatus = "assigned"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
	AssignmentStatusReassigned AssignmentStatus = "reassigned"
)

type IconSet struct {
	Normal   string `json:"icon_normal"`
	Today    string `json:"icon_today"`
	Tomorrow string `json:"icon_tomorrow"`
	Overdue  string `json:"icon_overdue"`
}

// RecurrenceSpec is the canonical description of when a chore recurs.
// Frequency is always derived from Type and Pattern when Type is set; legacy
// configurations carry only Frequency.
type RecurrenceSpec struct {
	Type      RecurrenceType `json:"recurrence_type,omitempty"`
	Pattern   Pattern        `json:"pattern,omitempty"`
	Frequency Frequency      `json:"frequency"`
	Period    int            `json:"period"`

	WeeklyDays []Weekday `json:"weekly_days,omitempty"`
	DayType    DayType   `json:"day_type,omitempty"`
	StartDate  *string   `json:"start_date"`

	DayOfMonth         *int     `json:"day_of_month"`
	WeekdayOrderNumber *int     `json:"weekday_order_number"`
	ChoreDay           *Weekday `json:"chore_day"`
	FirstWeek          int      `json:"first_week"`
	ForceWeekNumbers   bool     `json:"force_week_order_numbers"`
	DueDateOffset      int      `json:"due_date_offset"`
	Date               *string  `json:"date"`
	FirstMonth         Month    `json:"first_month"`
	LastMonth          Month    `json:"last_month"`
}

// InSeason reports whether a calendar month falls inside the first/last
// month window. A window with FirstMonth after LastMonth wraps the new year.
func (spec RecurrenceSpec) InSeason(month time.Month) bool {
	first := spec.FirstMonth.Number()
	if first == 0 {
		first = 1
	}
	last := spec.LastMonth.Number()
	if last == 0 {
		last = 12
	}
	current := int(month)
	if first <= last {
		return first <= current && current <= last
	}
	return first <= current || current <= last
}

// EndCondition holds exactly one way a recurrence terminates. Fields not used
// by Type are always nil.
type EndCondition struct {
	Type             EndType `json:"end_type"`
	Date             *string `json:"end_date"`
	AfterOccurrences *int    `json:"end_after_occurrences"`
}

type AllocationSpec struct {
	People []string       `json:"people"`
	Mode   AllocationMode `json:"allocation_mode"`
}

// ChoreConfig is the fully resolved configuration of one chore. It is only
// ever produced whole by the validation pipeline.
type ChoreConfig struct {
	Name             string         `json:"name"`
	Icons            IconSet        `json:"icons"`
	Recurrence       RecurrenceSpec `json:"recurrence"`
	End              EndCondition   `json:"end"`
	Allocation       AllocationSpec `json:"allocation"`
	ForecastDates    int            `json:"forecast_dates"`
	Hidden           bool           `json:"hidden"`
	ManualUpdate     bool           `json:"manual_update"`
	ShowOverdueToday bool           `json:"show_overdue_today"`
}

// Options flattens the configuration into the field name to value mapping
// stored by the host. Unset legacy fields are present with a nil value.
func (config ChoreConfig) Options() map[string]any {
	recurrence := config.Recurrence
	options := map[string]any{
		KeyName:                config.Name,
		KeyIconNormal:          config.Icons.Normal,
		KeyIconToday:           config.Icons.Today,
		KeyIconTomorrow:        config.Icons.Tomorrow,
		KeyIconOverdue:         config.Icons.Overdue,
		KeyFrequency:           string(recurrence.Frequency),
		KeyPeriod:              recurrence.Period,
		KeyStartDate:           stringOrNil(recurrence.StartDate),
		KeyFirstWeek:           recurrence.FirstWeek,
		KeyForceWeekNumbers:    recurrence.ForceWeekNumbers,
		KeyDueDateOffset:       recurrence.DueDateOffset,
		KeyFirstMonth:          string(recurrence.FirstMonth),
		KeyLastMonth:           string(recurrence.LastMonth),
		KeyDayOfMonth:          intOrNil(recurrence.DayOfMonth),
		KeyWeekdayOrderNumber:  intOrNil(recurrence.WeekdayOrderNumber),
		KeyDate:                stringOrNil(recurrence.Date),
		KeyChoreDay:            nil,
		KeyEndType:             string(config.End.Type),
		KeyEndDate:             stringOrNil(config.End.Date),
		KeyEndAfterOccurrences: intOrNil(config.End.AfterOccurrences),
		KeyPeople:              append([]string{}, config.Allocation.People...),
		KeyAllocationMode:      string(config.Allocation.Mode),
		KeyForecastDates:       config.ForecastDates,
		KeyHidden:              config.Hidden,
		KeyManualUpdate:        config.ManualUpdate,
		KeyShowOverdueToday:    config.ShowOverdueToday,
	}
	if recurrence.ChoreDay != nil {
		options[KeyChoreDay] = string(*recurrence.ChoreDay)
	}
	if recurrence.Type != "" {
		options[KeyRecurrenceType] = string(recurrence.Type)
		options[PatternKey(recurrence.Type)] = string(recurrence.Pattern)
		if recurrence.DayType != "" {
			options[KeyDayType] = string(recurrence.DayType)
		}
		if len(recurrence.WeeklyDays) > 0 {
			days := make([]string, len(recurrence.WeeklyDays))
			for i, day := range recurrence.WeeklyDays {
				days[i] = string(day)
			}
			options[KeyWeeklyDays] = days
		}
	}
	if config.Allocation.Mode == AllocationAlternating || config.Allocation.Mode == AllocationShared {
		options[KeyMultiplePeopleMode] = string(config.Allocation.Mode)
	}
	return options
}

func stringOrNil(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func intOrNil(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

// Chore is a stored chore configuration together with the runtime state that
// survives edits of its options.
type Chore struct {
	ID     string      `json:"id"`
	Config ChoreConfig `json:"config"`

	AssignedTo      *string    `json:"assigned_to"`
	OccurrenceCount int        `json:"occurrence_count"`
	LastCompleted   *time.Time `json:"last_completed"`

	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Finished reports whether an end-after-occurrences limit has been reached.
func (chore Chore) Finished() bool {
	end := chore.Config.End
	if end.Type != EndTypeEndAfterOccurrences || end.AfterOccurrences == nil {
		return false
	}
	return chore.OccurrenceCount >= *end.AfterOccurrences
}

type ChoreAssignment struct {
	ID          string           `json:"id"`
	ChoreID     string           `json:"chore_id"`
	PersonID    string           `json:"person_id"`
	AssignedAt  time.Time        `json:"assigned_at"`
	CompletedAt *time.Time       `json:"completed_at"`
	Status      AssignmentStatus `json:"status"`
}

// Person is an entry of the external person directory. IDs are trusted as
// supplied; the name is only used for display.
type Person struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type APIToken struct {
	ID        string
	Name      string
	TokenHash string
	ExpiresAt *time.Time
	CreatedAt time.Time
}
