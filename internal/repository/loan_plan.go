package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"collectbook/internal/domain"

	"github.com/shopspring/decimal"
)

type LoanPlanRepository struct {
	db *sql.DB
}

func NewLoanPlanRepository(db *sql.DB) *LoanPlanRepository {
	return &LoanPlanRepository{db: db}
}

func (r *LoanPlanRepository) GetByName(ctx context.Context, name string) (*domain.LoanPlan, error) {
	query := `SELECT id, name, daily_amount, total_amount FROM loan_plans WHERE name = $1`

	var (
		p           domain.LoanPlan
		daily, tot  string
	)
	err := r.db.QueryRowContext(ctx, query, name).Scan(&p.ID, &p.Name, &daily, &tot)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if p.DailyAmount, err = decimal.NewFromString(daily); err != nil {
		return nil, fmt.Errorf("parse daily amount %q: %w", daily, err)
	}
	if p.TotalAmount, err = decimal.NewFromString(tot); err != nil {
		return nil, fmt.Errorf("parse total amount %q: %w", tot, err)
	}
	return &p, nil
}

func (r *LoanPlanRepository) List(ctx context.Context) ([]domain.LoanPlan, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, daily_amount, total_amount FROM loan_plans ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LoanPlan
	for rows.Next() {
		var (
			p          domain.LoanPlan
			daily, tot string
		)
		if err := rows.Scan(&p.ID, &p.Name, &daily, &tot); err != nil {
			return nil, err
		}
		if p.DailyAmount, err = decimal.NewFromString(daily); err != nil {
			return nil, fmt.Errorf("parse daily amount %q: %w", daily, err)
		}
		if p.TotalAmount, err = decimal.NewFromString(tot); err != nil {
			return nil, fmt.Errorf("parse total amount %q: %w", tot, err)
		}
		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
