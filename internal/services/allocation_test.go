package services_test

import (
	"errors"
	"testing"

	"github.com/bensuskins/chore-helper/internal/models"
	"github.com/bensuskins/chore-helper/internal/services"
)

func TestResolveAllocation(t *testing.T) {
	tests := []struct {
		name       string
		people     []string
		mode       models.AllocationMode
		wantMode   models.AllocationMode
		wantPeople int
	}{
		{"no people", nil, "", models.AllocationNone, 0},
		{"no people ignores mode", []string{}, models.AllocationShared, models.AllocationNone, 0},
		{"one person", []string{"person.alex"}, "", models.AllocationSingle, 1},
		{"one person ignores mode", []string{"person.alex"}, models.AllocationAlternating, models.AllocationSingle, 1},
		{"duplicates collapse to one", []string{"person.alex", "person.alex", " "}, "", models.AllocationSingle, 1},
		{"two people alternating", []string{"person.alex", "person.sam"}, models.AllocationAlternating, models.AllocationAlternating, 2},
		{"two people shared", []string{"person.alex", "person.sam"}, models.AllocationShared, models.AllocationShared, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allocation, err := services.ResolveAllocation(tt.people, tt.mode)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if allocation.Mode != tt.wantMode {
				t.Errorf("expected mode %s, got %s", tt.wantMode, allocation.Mode)
			}
			if len(allocation.People) != tt.wantPeople {
				t.Errorf("expected %d people, got %d", tt.wantPeople, len(allocation.People))
			}
		})
	}
}

func TestResolveAllocation_MultiplePeopleModeRequired(t *testing.T) {
	_, err := services.ResolveAllocation([]string{"person.alex", "person.sam"}, "")
	if !errors.Is(err, services.ErrMissingRequiredField) {
		t.Fatalf("expected ErrMissingRequiredField, got %v", err)
	}
	configErr, _ := services.AsConfigError(err)
	if configErr.Field != models.KeyMultiplePeopleMode || configErr.Key != services.ErrorKeyMultiplePeopleModeRequired {
		t.Errorf("expected multiple_people_mode_required, got %s/%s", configErr.Field, configErr.Key)
	}
}

func TestResolveAllocation_InvalidMode(t *testing.T) {
	_, err := services.ResolveAllocation([]string{"person.alex", "person.sam"}, models.AllocationSingle)
	if !errors.Is(err, services.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}

func TestResolveAllocation_KeepsOrder(t *testing.T) {
	allocation, err := services.ResolveAllocation([]string{"person.sam", "person.alex", "person.sam"}, models.AllocationAlternating)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(allocation.People) != 2 || allocation.People[0] != "person.sam" || allocation.People[1] != "person.alex" {
		t.Errorf("expected [person.sam person.alex], got %v", allocation.People)
	}
}

func TestInitialAssignee(t *testing.T) {
	tests := []struct {
		name       string
		allocation models.AllocationSpec
		want       string
	}{
		{"none", models.AllocationSpec{Mode: models.AllocationNone}, ""},
		{"single", models.AllocationSpec{People: []string{"a"}, Mode: models.AllocationSingle}, "a"},
		{"alternating", models.AllocationSpec{People: []string{"a", "b"}, Mode: models.AllocationAlternating}, "a"},
		{"shared", models.AllocationSpec{People: []string{"a", "b"}, Mode: models.AllocationShared}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.InitialAssignee(tt.allocation)
			if tt.want == "" {
				if got != nil {
					t.Errorf("expected no assignee, got %s", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("expected %s, got %v", tt.want, got)
			}
		})
	}
}

func TestNextAssignee_Rotates(t *testing.T) {
	allocation := models.AllocationSpec{People: []string{"a", "b", "c"}, Mode: models.AllocationAlternating}

	current := services.InitialAssignee(allocation)
	var order []string
	for i := 0; i < 4; i++ {
		current = services.NextAssignee(allocation, current)
		order = append(order, *current)
	}

	want := []string{"b", "c", "a", "b"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected rotation %v, got %v", want, order)
		}
	}
}

func TestNextAssignee_UnknownCurrentRestarts(t *testing.T) {
	allocation := models.AllocationSpec{People: []string{"a", "b"}, Mode: models.AllocationAlternating}

	next := services.NextAssignee(allocation, stringPtr("gone"))
	if next == nil || *next != "a" {
		t.Errorf("expected a, got %v", next)
	}
}

func TestNextAssignee_SingleKeepsAssignee(t *testing.T) {
	allocation := models.AllocationSpec{People: []string{"a"}, Mode: models.AllocationSingle}

	next := services.NextAssignee(allocation, stringPtr("a"))
	if next == nil || *next != "a" {
		t.Errorf("expected a, got %v", next)
	}
}
