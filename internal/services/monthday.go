package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type MonthDay struct {
	Month time.Month
	Day   int
}

func (monthDay MonthDay) String() string {
	return fmt.Sprintf("%02d/%02d", int(monthDay.Month), monthDay.Day)
}

// ParseMonthDay parses a "MM/DD" token. February accepts the 29th so the
// token stays valid in leap years.
func ParseMonthDay(text string) (MonthDay, error) {
	parts := strings.Split(strings.TrimSpace(text), "/")
	if len(parts) != 2 {
		return MonthDay{}, fmt.Errorf("parsing month/day %q: expected MM/DD", text)
	}

	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return MonthDay{}, fmt.Errorf("parsing month of %q: %w", text, err)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return MonthDay{}, fmt.Errorf("parsing day of %q: %w", text, err)
	}

	if month < 1 || month > 12 {
		return MonthDay{}, fmt.Errorf("month %d of %q out of range", month, text)
	}
	// 2024 is a leap year, so the last day of its month is the maximum for any year.
	lastDay := time.Date(2024, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day < 1 || day > lastDay {
		return MonthDay{}, fmt.Errorf("day %d of %q out of range", day, text)
	}

	return MonthDay{Month: time.Month(month), Day: day}, nil
}
