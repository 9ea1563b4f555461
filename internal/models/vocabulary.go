package models

// ConfigVersion is the schema version written alongside every stored chore
// configuration.
const ConfigVersion = 6

// Field keys recognised in a chore configuration draft. The flat mapping
// handed to the host store uses the same names.
const (
	KeyName                = "name"
	KeyIconNormal          = "icon_normal"
	KeyIconToday           = "icon_today"
	KeyIconTomorrow        = "icon_tomorrow"
	KeyIconOverdue         = "icon_overdue"
	KeyFrequency           = "frequency"
	KeyRecurrenceType      = "recurrence_type"
	KeyDailyPattern        = "daily_pattern"
	KeyWeeklyPattern       = "weekly_pattern"
	KeyMonthlyPattern      = "monthly_pattern"
	KeyYearlyPattern       = "yearly_pattern"
	KeyWeeklyDays          = "weekly_days"
	KeyDayType             = "day_type"
	KeyPeriod              = "period"
	KeyStartDate           = "start_date"
	KeyFirstMonth          = "first_month"
	KeyLastMonth           = "last_month"
	KeyChoreDay            = "chore_day"
	KeyFirstWeek           = "first_week"
	KeyDayOfMonth          = "day_of_month"
	KeyWeekdayOrderNumber  = "weekday_order_number"
	KeyForceWeekNumbers    = "force_week_order_numbers"
	KeyDueDateOffset       = "due_date_offset"
	KeyDate                = "date"
	KeyEndType             = "end_type"
	KeyEndDate             = "end_date"
	KeyEndAfterOccurrences = "end_after_occurrences"
	KeyPeople              = "people"
	KeyMultiplePeopleMode  = "multiple_people_mode"
	KeyAllocationMode      = "allocation_mode"
	KeyForecastDates       = "forecast_dates"
	KeyHidden              = "hidden"
	KeyManualUpdate        = "manual_update"
	KeyShowOverdueToday    = "show_overdue_today"
)

type RecurrenceType string

const (
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
)

type Pattern string

const (
	PatternEveryNDays        Pattern = "every_n_days"
	PatternEveryWeekday      Pattern = "every_weekday"
	PatternRegenerateDays    Pattern = "regenerate_days"
	PatternRecurWeekly       Pattern = "recur_weekly"
	PatternRegenerateWeeks   Pattern = "regenerate_weeks"
	PatternDayOfMonth        Pattern = "day_of_month"
	PatternNthDayType        Pattern = "nth_day_type"
	PatternRegenerateMonths  Pattern = "regenerate_months"
	PatternMonthDay          Pattern = "month_day"
	PatternNthDayTypeOfMonth Pattern = "nth_day_type_of_month"
	PatternRegenerateYears   Pattern = "regenerate_years"
)

type Frequency string

const (
	FrequencyEveryNDays   Frequency = "every-n-days"
	FrequencyEveryNWeeks  Frequency = "every-n-weeks"
	FrequencyEveryNMonths Frequency = "every-n-months"
	FrequencyEveryNYears  Frequency = "every-n-years"
	FrequencyAfterNDays   Frequency = "after-n-days"
	FrequencyAfterNWeeks  Frequency = "after-n-weeks"
	FrequencyAfterNMonths Frequency = "after-n-months"
	FrequencyAfterNYears  Frequency = "after-n-years"
	FrequencyBlank        Frequency = "blank"
)

type Weekday string

const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
	Sunday    Weekday = "sun"
)

type DayType string

const (
	DayTypeDay        DayType = "day"
	DayTypeWeekday    DayType = "weekday"
	DayTypeWeekendDay DayType = "weekend_day"
	DayTypeMonday     DayType = "monday"
	DayTypeTuesday    DayType = "tuesday"
	DayTypeWednesday  DayType = "wednesday"
	DayTypeThursday   DayType = "thursday"
	DayTypeFriday     DayType = "friday"
	DayTypeSaturday   DayType = "saturday"
	DayTypeSunday     DayType = "sunday"
)

type Month string

const (
	January   Month = "jan"
	February  Month = "feb"
	March     Month = "mar"
	April     Month = "apr"
	May       Month = "may"
	June      Month = "jun"
	July      Month = "jul"
	August    Month = "aug"
	September Month = "sep"
	October   Month = "oct"
	November  Month = "nov"
	December  Month = "dec"
)

type EndType string

const (
	EndTypeNoEnd               EndType = "no_end"
	EndTypeEndByDate           EndType = "end_by_date"
	EndTypeEndAfterOccurrences EndType = "end_after_occurrences"
)

type AllocationMode string

const (
	AllocationNone        AllocationMode = "none"
	AllocationSingle      AllocationMode = "single"
	AllocationAlternating AllocationMode = "alternating"
	AllocationShared      AllocationMode = "shared"
)

// Defaults applied when a field is absent from a draft.
const (
	DefaultIconNormal       = "mdi:broom"
	DefaultIconToday        = "mdi:bell"
	DefaultIconTomorrow     = "mdi:bell-outline"
	DefaultIconOverdue      = "mdi:bell-alert"
	DefaultFrequency        = FrequencyEveryNDays
	DefaultRecurrenceType   = RecurrenceDaily
	DefaultPeriod           = 1
	DefaultFirstWeek        = 1
	DefaultFirstMonth       = January
	DefaultLastMonth        = December
	DefaultDayType          = DayTypeDay
	DefaultForecastDates    = 10
	DefaultShowOverdueToday = false
	DefaultEndType          = EndTypeNoEnd
	DefaultAllocationMode   = AllocationNone
	DefaultDueDateOffset    = 0
)

// Bounds declared for numeric fields. Values outside them are rejected as
// out of range, except day_of_month below 1 which is normalised to unset.
const (
	MinPeriod             = 1
	MaxPeriod             = 1000
	MinFirstWeek          = 1
	MaxFirstWeek          = 52
	MinDayOfMonth         = 0
	MaxDayOfMonth         = 31
	MinWeekdayOrderNumber = -4
	MaxWeekdayOrderNumber = 5
	MinDueDateOffset      = -7
	MaxDueDateOffset      = 7
	MinForecastDates      = 0
	MaxForecastDates      = 100
)

var RecurrenceTypes = []RecurrenceType{
	RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly,
}

// Patterns lists the sub-patterns of each recurrence type. The first entry
// is the default when a draft names a type without a pattern.
var Patterns = map[RecurrenceType][]Pattern{
	RecurrenceDaily:   {PatternEveryNDays, PatternEveryWeekday, PatternRegenerateDays},
	RecurrenceWeekly:  {PatternRecurWeekly, PatternRegenerateWeeks},
	RecurrenceMonthly: {PatternDayOfMonth, PatternNthDayType, PatternRegenerateMonths},
	RecurrenceYearly:  {PatternMonthDay, PatternNthDayTypeOfMonth, PatternRegenerateYears},
}

var patternKeys = map[RecurrenceType]string{
	RecurrenceDaily:   KeyDailyPattern,
	RecurrenceWeekly:  KeyWeeklyPattern,
	RecurrenceMonthly: KeyMonthlyPattern,
	RecurrenceYearly:  KeyYearlyPattern,
}

// PatternKey returns the draft key holding the sub-pattern for a recurrence
// type, or "" for an unknown type.
func PatternKey(recurrenceType RecurrenceType) string {
	return patternKeys[recurrenceType]
}

var Frequencies = []Frequency{
	FrequencyEveryNDays, FrequencyEveryNWeeks, FrequencyEveryNMonths, FrequencyEveryNYears,
	FrequencyAfterNDays, FrequencyAfterNWeeks, FrequencyAfterNMonths, FrequencyAfterNYears,
	FrequencyBlank,
}

var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var DayTypes = []DayType{
	DayTypeDay, DayTypeWeekday, DayTypeWeekendDay,
	DayTypeMonday, DayTypeTuesday, DayTypeWednesday, DayTypeThursday,
	DayTypeFriday, DayTypeSaturday, DayTypeSunday,
}

var Months = []Month{
	January, February, March, April, May, June,
	July, August, September, October, November, December,
}

var EndTypes = []EndType{EndTypeNoEnd, EndTypeEndByDate, EndTypeEndAfterOccurrences}

var MultiplePeopleModes = []AllocationMode{AllocationAlternating, AllocationShared}

var frequencyUnits = map[Frequency]string{
	FrequencyEveryNDays:   "day(s)",
	FrequencyEveryNWeeks:  "week(s)",
	FrequencyEveryNMonths: "month(s)",
	FrequencyEveryNYears:  "year(s)",
	FrequencyAfterNDays:   "day(s)",
	FrequencyAfterNWeeks:  "week(s)",
	FrequencyAfterNMonths: "month(s)",
	FrequencyAfterNYears:  "year(s)",
}

// Unit is the unit of measurement of the period for this frequency.
func (frequency Frequency) Unit() string {
	return frequencyUnits[frequency]
}

func (frequency Frequency) Valid() bool {
	for _, known := range Frequencies {
		if frequency == known {
			return true
		}
	}
	return false
}

func (frequency Frequency) IsBlank() bool { return frequency == FrequencyBlank }

func (frequency Frequency) IsWeekly() bool {
	return frequency == FrequencyEveryNWeeks || frequency == FrequencyAfterNWeeks
}

func (frequency Frequency) IsMonthly() bool {
	return frequency == FrequencyEveryNMonths || frequency == FrequencyAfterNMonths
}

func (frequency Frequency) IsYearly() bool {
	return frequency == FrequencyEveryNYears || frequency == FrequencyAfterNYears
}

// Number returns the 1-based month number, or 0 for an unknown month.
func (month Month) Number() int {
	for index, known := range Months {
		if month == known {
			return index + 1
		}
	}
	return 0
}

// IsNthPattern reports whether the pattern selects "the nth <day type>".
func (pattern Pattern) IsNthPattern() bool {
	return pattern == PatternNthDayType || pattern == PatternNthDayTypeOfMonth
}

func weekdayStrings() []string {
	values := make([]string, len(Weekdays))
	for i, day := range Weekdays {
		values[i] = string(day)
	}
	return values
}

// Options returns the allowed values of an enumerated field, or nil when the
// field is free-form.
func Options(key string) []string {
	switch key {
	case KeyRecurrenceType:
		return stringsOf(RecurrenceTypes)
	case KeyDailyPattern:
		return stringsOf(Patterns[RecurrenceDaily])
	case KeyWeeklyPattern:
		return stringsOf(Patterns[RecurrenceWeekly])
	case KeyMonthlyPattern:
		return stringsOf(Patterns[RecurrenceMonthly])
	case KeyYearlyPattern:
		return stringsOf(Patterns[RecurrenceYearly])
	case KeyFrequency:
		return stringsOf(Frequencies)
	case KeyWeeklyDays:
		return weekdayStrings()
	case KeyChoreDay:
		return append([]string{"0"}, weekdayStrings()...)
	case KeyDayType:
		return stringsOf(DayTypes)
	case KeyFirstMonth, KeyLastMonth:
		return stringsOf(Months)
	case KeyWeekdayOrderNumber:
		return []string{"0", "1", "2", "3", "4", "5", "-1", "-2", "-3", "-4"}
	case KeyEndType:
		return stringsOf(EndTypes)
	case KeyMultiplePeopleMode:
		return stringsOf(MultiplePeopleModes)
	}
	return nil
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, value := range values {
		out[i] = string(value)
	}
	return out
}
