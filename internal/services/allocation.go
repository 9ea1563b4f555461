package services

import (
	"strings"

	"github.com/bensuskins/chore-helper/internal/models"
)

// ResolveAllocation derives the allocation mode from how many people are
// assigned. With two or more people the caller must choose between
// alternating and shared; the freshly supplied mode always wins.
func ResolveAllocation(people []string, multiplePeopleMode models.AllocationMode) (models.AllocationSpec, error) {
	unique := uniquePeople(people)

	switch len(unique) {
	case 0:
		return models.AllocationSpec{People: unique, Mode: models.AllocationNone}, nil
	case 1:
		return models.AllocationSpec{People: unique, Mode: models.AllocationSingle}, nil
	}

	switch multiplePeopleMode {
	case models.AllocationAlternating, models.AllocationShared:
		return models.AllocationSpec{People: unique, Mode: multiplePeopleMode}, nil
	case "":
		return models.AllocationSpec{}, newConfigError(models.KeyMultiplePeopleMode, ErrMissingRequiredField, ErrorKeyMultiplePeopleModeRequired)
	default:
		return models.AllocationSpec{}, newConfigError(models.KeyMultiplePeopleMode, ErrInvalidValue, ErrorKeyInvalid)
	}
}

func uniquePeople(people []string) []string {
	seen := make(map[string]bool, len(people))
	unique := make([]string, 0, len(people))
	for _, person := range people {
		person = strings.TrimSpace(person)
		if person == "" || seen[person] {
			continue
		}
		seen[person] = true
		unique = append(unique, person)
	}
	return unique
}

// InitialAssignee returns who a newly configured chore is assigned to.
// Shared chores and chores without people have no single assignee.
func InitialAssignee(allocation models.AllocationSpec) *string {
	if len(allocation.People) == 0 {
		return nil
	}
	if allocation.Mode != models.AllocationSingle && allocation.Mode != models.AllocationAlternating {
		return nil
	}
	first := allocation.People[0]
	return &first
}

// NextAssignee rotates an alternating chore to the person after current,
// wrapping around. Other modes keep the current assignee.
func NextAssignee(allocation models.AllocationSpec, current *string) *string {
	if allocation.Mode != models.AllocationAlternating || len(allocation.People) == 0 {
		return current
	}
	if current == nil {
		return InitialAssignee(allocation)
	}

	for index, person := range allocation.People {
		if person == *current {
			next := allocation.People[(index+1)%len(allocation.People)]
			return &next
		}
	}
	return InitialAssignee(allocation)
}
