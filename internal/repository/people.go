package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bensuskins/chore-helper/internal/models"
	"github.com/google/uuid"
)

type PersonRepository interface {
	FindByID(ctx context.Context, id string) (models.Person, error)
	FindAll(ctx context.Context) ([]models.Person, error)
	Create(ctx context.Context, person models.Person) (models.Person, error)
	Delete(ctx context.Context, id string) error
}

type SQLitePersonRepository struct {
	database *sql.DB
}

func NewPersonRepository(database *sql.DB) *SQLitePersonRepository {
	return &SQLitePersonRepository{database: database}
}

func (repository *SQLitePersonRepository) FindByID(ctx context.Context, id string) (models.Person, error) {
	var person models.Person
	err := repository.database.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM people WHERE id = ?", id,
	).Scan(&person.ID, &person.Name, &person.CreatedAt)
	if err != nil {
		return models.Person{}, fmt.Errorf("finding person by id: %w", err)
	}
	return person, nil
}

func (repository *SQLitePersonRepository) FindAll(ctx context.Context) ([]models.Person, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT id, name, created_at FROM people ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("finding all people: %w", err)
	}
	defer rows.Close()

	var people []models.Person
	for rows.Next() {
		var person models.Person
		if err := rows.Scan(&person.ID, &person.Name, &person.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		people = append(people, person)
	}
	return people, rows.Err()
}

func (repository *SQLitePersonRepository) Create(ctx context.Context, person models.Person) (models.Person, error) {
	if person.ID == "" {
		person.ID = uuid.New().String()
	}
	person.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO people (id, name, created_at) VALUES (?, ?, ?)",
		person.ID, person.Name, person.CreatedAt,
	)
	if err != nil {
		return models.Person{}, fmt.Errorf("creating person: %w", err)
	}
	return person, nil
}

func (repository *SQLitePersonRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM people WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting person: %w", err)
	}
	return nil
}
