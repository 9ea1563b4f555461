package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bensuskins/chore-helper/internal/models"
	"github.com/google/uuid"
)

const (
	OrderByNameAsc       = "name ASC"
	OrderByUpdatedAtDesc = "updated_at DESC, name ASC"
)

type ChoreFilter struct {
	PersonID        *string
	AllocationModes []models.AllocationMode
	OrderBy         string
}

type ChoreRepository interface {
	FindByID(ctx context.Context, id string) (models.Chore, error)
	FindAll(ctx context.Context, filter ChoreFilter) ([]models.Chore, error)
	Create(ctx context.Context, chore models.Chore) (models.Chore, error)
	Update(ctx context.Context, chore models.Chore) error
	Delete(ctx context.Context, id string) error
}

type SQLiteChoreRepository struct {
	database *sql.DB
}

func NewChoreRepository(database *sql.DB) *SQLiteChoreRepository {
	return &SQLiteChoreRepository{database: database}
}

const choreColumns = `id, name, config, assigned_to, occurrence_count, last_completed, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (repository *SQLiteChoreRepository) FindByID(ctx context.Context, id string) (models.Chore, error) {
	row := repository.database.QueryRowContext(ctx,
		`SELECT `+choreColumns+` FROM chores WHERE id = ?`, id,
	)
	chore, err := scanChore(row)
	if err != nil {
		return models.Chore{}, fmt.Errorf("finding chore by id: %w", err)
	}
	return chore, nil
}

func (repository *SQLiteChoreRepository) FindAll(ctx context.Context, filter ChoreFilter) ([]models.Chore, error) {
	query := `SELECT ` + choreColumns + ` FROM chores WHERE 1=1`

	var args []interface{}

	if filter.PersonID != nil {
		query += " AND id IN (SELECT chore_id FROM chore_people WHERE person_id = ?)"
		args = append(args, *filter.PersonID)
	}
	if len(filter.AllocationModes) > 0 {
		placeholders := make([]string, len(filter.AllocationModes))
		for i, mode := range filter.AllocationModes {
			placeholders[i] = "?"
			args = append(args, string(mode))
		}
		query += " AND allocation_mode IN (" + strings.Join(placeholders, ",") + ")"
	}

	orderBy := filter.OrderBy
	if orderBy == "" {
		orderBy = OrderByNameAsc
	}
	query += " ORDER BY " + orderBy

	rows, err := repository.database.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("finding chores: %w", err)
	}
	defer rows.Close()

	return scanChores(rows)
}

func (repository *SQLiteChoreRepository) Create(ctx context.Context, chore models.Chore) (models.Chore, error) {
	if chore.ID == "" {
		chore.ID = uuid.New().String()
	}
	now := time.Now()
	chore.CreatedAt = now
	chore.UpdatedAt = now
	chore.Version = models.ConfigVersion

	config, err := json.Marshal(chore.Config)
	if err != nil {
		return models.Chore{}, fmt.Errorf("encoding chore config: %w", err)
	}

	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return models.Chore{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	_, err = transaction.ExecContext(ctx,
		`INSERT INTO chores (id, name, config, frequency, allocation_mode,
			assigned_to, occurrence_count, last_completed, version,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		chore.ID, chore.Config.Name, string(config),
		chore.Config.Recurrence.Frequency, chore.Config.Allocation.Mode,
		chore.AssignedTo, chore.OccurrenceCount, chore.LastCompleted, chore.Version,
		chore.CreatedAt, chore.UpdatedAt,
	)
	if err != nil {
		return models.Chore{}, fmt.Errorf("creating chore: %w", err)
	}

	if err := setChorePeople(ctx, transaction, chore.ID, chore.Config.Allocation.People); err != nil {
		return models.Chore{}, err
	}

	if err := transaction.Commit(); err != nil {
		return models.Chore{}, fmt.Errorf("committing chore: %w", err)
	}
	return chore, nil
}

// Update replaces the stored configuration and runtime state of a chore.
func (repository *SQLiteChoreRepository) Update(ctx context.Context, chore models.Chore) error {
	chore.UpdatedAt = time.Now()
	chore.Version = models.ConfigVersion

	config, err := json.Marshal(chore.Config)
	if err != nil {
		return fmt.Errorf("encoding chore config: %w", err)
	}

	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	result, err := transaction.ExecContext(ctx,
		`UPDATE chores SET name = ?, config = ?, frequency = ?, allocation_mode = ?,
			assigned_to = ?, occurrence_count = ?, last_completed = ?, version = ?,
			updated_at = ?
		WHERE id = ?`,
		chore.Config.Name, string(config),
		chore.Config.Recurrence.Frequency, chore.Config.Allocation.Mode,
		chore.AssignedTo, chore.OccurrenceCount, chore.LastCompleted, chore.Version,
		chore.UpdatedAt, chore.ID,
	)
	if err != nil {
		return fmt.Errorf("updating chore: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("updating chore: %w", sql.ErrNoRows)
	}

	if err := setChorePeople(ctx, transaction, chore.ID, chore.Config.Allocation.People); err != nil {
		return err
	}

	return transaction.Commit()
}

func (repository *SQLiteChoreRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM chores WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting chore: %w", err)
	}
	return nil
}

func setChorePeople(ctx context.Context, transaction *sql.Tx, choreID string, people []string) error {
	if _, err := transaction.ExecContext(ctx, "DELETE FROM chore_people WHERE chore_id = ?", choreID); err != nil {
		return fmt.Errorf("clearing chore people: %w", err)
	}

	for position, personID := range people {
		if _, err := transaction.ExecContext(ctx,
			"INSERT INTO chore_people (chore_id, person_id, position) VALUES (?, ?, ?)",
			choreID, personID, position,
		); err != nil {
			return fmt.Errorf("inserting chore person: %w", err)
		}
	}
	return nil
}

func scanChore(row rowScanner) (models.Chore, error) {
	var chore models.Chore
	var config string
	if err := row.Scan(
		&chore.ID, &chore.Config.Name, &config,
		&chore.AssignedTo, &chore.OccurrenceCount, &chore.LastCompleted, &chore.Version,
		&chore.CreatedAt, &chore.UpdatedAt,
	); err != nil {
		return models.Chore{}, err
	}
	if err := json.Unmarshal([]byte(config), &chore.Config); err != nil {
		return models.Chore{}, fmt.Errorf("decoding chore config: %w", err)
	}
	return chore, nil
}

func scanChores(rows *sql.Rows) ([]models.Chore, error) {
	var chores []models.Chore
	for rows.Next() {
		chore, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning chore: %w", err)
		}
		chores = append(chores, chore)
	}
	return chores, rows.Err()
}
