package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/bensuskins/chore-helper/internal/metrics"
	"github.com/bensuskins/chore-helper/internal/models"
	"github.com/bensuskins/chore-helper/internal/repository"
)

var (
	ErrChoreNotFound = errors.New("chore not found")
	ErrChoreFinished = errors.New("chore has reached its occurrence limit")
)

type ChoreService struct {
	choreRepo      repository.ChoreRepository
	assignmentRepo repository.ChoreAssignmentRepository
	now            func() time.Time
}

func NewChoreService(
	choreRepo repository.ChoreRepository,
	assignmentRepo repository.ChoreAssignmentRepository,
) *ChoreService {
	return &ChoreService{
		choreRepo:      choreRepo,
		assignmentRepo: assignmentRepo,
		now:            time.Now,
	}
}

// Validate resolves a draft and records the outcome.
func (service *ChoreService) Validate(draft Draft) (models.ChoreConfig, error) {
	config, err := Resolve(draft)
	if err != nil {
		field := "base"
		if configErr, ok := AsConfigError(err); ok {
			field = configErr.Field
		}
		metrics.RecordValidation(field)
		return models.ChoreConfig{}, err
	}
	metrics.RecordValidation("")
	return config, nil
}

func (service *ChoreService) Create(ctx context.Context, draft Draft) (models.Chore, error) {
	config, err := service.Validate(draft)
	if err != nil {
		return models.Chore{}, err
	}

	chore, err := service.choreRepo.Create(ctx, models.Chore{
		Config:     config,
		AssignedTo: InitialAssignee(config.Allocation),
	})
	if err != nil {
		return models.Chore{}, fmt.Errorf("creating chore: %w", err)
	}

	if err := service.recordAssignment(ctx, chore); err != nil {
		return models.Chore{}, err
	}

	slog.Info("created chore", "id", chore.ID, "frequency", config.Recurrence.Frequency, "allocation_mode", config.Allocation.Mode)
	return chore, nil
}

// Update re-resolves a stored chore with the draft laid over its current
// options and replaces the configuration whole. Runtime state survives; the
// assignee is re-initialised when it no longer fits the new allocation.
func (service *ChoreService) Update(ctx context.Context, id string, draft Draft) (models.Chore, error) {
	chore, err := service.FindByID(ctx, id)
	if err != nil {
		return models.Chore{}, err
	}

	config, err := service.Validate(Draft(chore.Config.Options()).Merge(draft))
	if err != nil {
		return models.Chore{}, err
	}
	chore.Config = config

	previous := chore.AssignedTo
	reassign := !assigneeFits(config.Allocation, chore.AssignedTo)
	if reassign {
		chore.AssignedTo = InitialAssignee(config.Allocation)
	}

	// The chore row is written before the history so a failed update leaves
	// no assignment rows behind.
	if err := service.choreRepo.Update(ctx, chore); err != nil {
		return models.Chore{}, fmt.Errorf("updating chore: %w", err)
	}

	if reassign {
		if previous != nil {
			if err := service.assignmentRepo.MarkReassigned(ctx, chore.ID); err != nil {
				return models.Chore{}, fmt.Errorf("marking old assignment: %w", err)
			}
		}
		if err := service.recordAssignment(ctx, chore); err != nil {
			return models.Chore{}, err
		}
	}
	return service.FindByID(ctx, chore.ID)
}

func assigneeFits(allocation models.AllocationSpec, assignedTo *string) bool {
	switch allocation.Mode {
	case models.AllocationSingle, models.AllocationAlternating:
		return assignedTo != nil && slices.Contains(allocation.People, *assignedTo)
	default:
		return assignedTo == nil
	}
}

// CompleteChore records one completion. personID names who completed it and
// defaults to the current assignee. Alternating chores rotate to the next
// person.
func (service *ChoreService) CompleteChore(ctx context.Context, id string, personID string) (models.Chore, error) {
	chore, err := service.FindByID(ctx, id)
	if err != nil {
		return models.Chore{}, err
	}
	if chore.Finished() {
		return chore, ErrChoreFinished
	}

	completer := personID
	if completer == "" && chore.AssignedTo != nil {
		completer = *chore.AssignedTo
	}

	now := service.now()
	chore.OccurrenceCount++
	chore.LastCompleted = &now

	// When someone other than the assignee stepped in, the assignee keeps
	// their turn.
	rotate := !chore.Finished() && chore.AssignedTo != nil && completer == *chore.AssignedTo
	if rotate {
		chore.AssignedTo = NextAssignee(chore.Config.Allocation, chore.AssignedTo)
	}

	if err := service.choreRepo.Update(ctx, chore); err != nil {
		return models.Chore{}, fmt.Errorf("updating chore: %w", err)
	}

	if completer != "" {
		if err := service.assignmentRepo.MarkCompleted(ctx, chore.ID, completer); err != nil {
			return models.Chore{}, fmt.Errorf("marking assignment completed: %w", err)
		}
	}
	if rotate {
		if err := service.recordAssignment(ctx, chore); err != nil {
			return models.Chore{}, err
		}
	}

	metrics.RecordCompletion(string(chore.Config.Allocation.Mode))
	slog.Info("completed chore", "id", chore.ID, "occurrences", chore.OccurrenceCount, "finished", chore.Finished())
	return chore, nil
}

func (service *ChoreService) recordAssignment(ctx context.Context, chore models.Chore) error {
	if chore.AssignedTo == nil {
		return nil
	}
	_, err := service.assignmentRepo.Create(ctx, models.ChoreAssignment{
		ChoreID:  chore.ID,
		PersonID: *chore.AssignedTo,
		Status:   models.AssignmentStatusAssigned,
	})
	if err != nil {
		return fmt.Errorf("creating assignment: %w", err)
	}
	return nil
}

// ChoresForPerson returns the chores a person is responsible for: shared
// chores they take part in and chores currently assigned to them.
func (service *ChoreService) ChoresForPerson(ctx context.Context, personID string) ([]models.Chore, error) {
	chores, err := service.choreRepo.FindAll(ctx, repository.ChoreFilter{PersonID: &personID})
	if err != nil {
		return nil, fmt.Errorf("finding chores for person: %w", err)
	}

	var assigned []models.Chore
	for _, chore := range chores {
		if chore.Config.Allocation.Mode == models.AllocationShared ||
			(chore.AssignedTo != nil && *chore.AssignedTo == personID) {
			assigned = append(assigned, chore)
		}
	}
	return assigned, nil
}

// InSeason keeps the chores whose first/last month window contains month.
func InSeason(chores []models.Chore, month time.Month) []models.Chore {
	var inSeason []models.Chore
	for _, chore := range chores {
		if chore.Config.Recurrence.InSeason(month) {
			inSeason = append(inSeason, chore)
		}
	}
	return inSeason
}

func (service *ChoreService) FindByID(ctx context.Context, id string) (models.Chore, error) {
	chore, err := service.choreRepo.FindByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Chore{}, ErrChoreNotFound
	}
	if err != nil {
		return models.Chore{}, fmt.Errorf("finding chore: %w", err)
	}
	return chore, nil
}

func (service *ChoreService) FindAll(ctx context.Context, filter repository.ChoreFilter) ([]models.Chore, error) {
	chores, err := service.choreRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("finding chores: %w", err)
	}
	return chores, nil
}

func (service *ChoreService) Delete(ctx context.Context, id string) error {
	if _, err := service.FindByID(ctx, id); err != nil {
		return err
	}
	if err := service.choreRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting chore: %w", err)
	}
	return nil
}
