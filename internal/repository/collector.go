package repository

import (
	"context"
	"database/sql"
	"errors"

	"collectbook/internal/domain"
)

type CollectorRepository struct {
	db *sql.DB
}

func NewCollectorRepository(db *sql.DB) *CollectorRepository {
	return &CollectorRepository{db: db}
}

func (r *CollectorRepository) GetByID(ctx context.Context, id string) (*domain.Collector, error) {
	query := `SELECT id, first_name, last_name, role, area FROM collectors WHERE id = $1`

	var (
		c    domain.Collector
		role string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.FirstName, &c.LastName, &role, &c.Area)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Role = domain.CollectorRole(role)
	return &c, nil
}
