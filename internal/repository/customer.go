package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"collectbook/internal/domain"

	"github.com/google/uuid"
)

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) Create(ctx context.Context, c *domain.Customer) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Status == "" {
		c.Status = domain.CustomerPending
	}

	query := `
		INSERT INTO customers (id, name, nic, contact, address, area, loan_type, status, customer_picture, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Name, c.NIC, c.Contact, c.Address, c.Area, c.LoanType, string(c.Status), c.CustomerPicture)
	return err
}

const customerColumns = `id, name, nic, contact, address, area, loan_type, status, customer_picture, created_at`

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return scanCustomer(r.db.QueryRowContext(ctx, query, id))
}

func (r *CustomerRepository) GetByNIC(ctx context.Context, nic string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE nic = $1`
	return scanCustomer(r.db.QueryRowContext(ctx, query, nic))
}

func scanCustomer(row *sql.Row) (*domain.Customer, error) {
	var (
		c      domain.Customer
		status string
	)
	err := row.Scan(&c.ID, &c.Name, &c.NIC, &c.Contact, &c.Address, &c.Area, &c.LoanType, &status, &c.CustomerPicture, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	c.Status = domain.CustomerStatus(status)
	return &c, nil
}

type CustomersFilter struct {
	Area   *string
	Status *string
	Query  *string // matches name or NIC, case-insensitive
}

func (r *CustomerRepository) List(ctx context.Context, f CustomersFilter) ([]domain.Customer, error) {
	base := `SELECT ` + customerColumns + ` FROM customers`

	where := []string{"1=1"}
	args := []any{}
	i := 1

	if f.Area != nil && *f.Area != "" {
		where = append(where, fmt.Sprintf("area = $%d", i))
		args = append(args, *f.Area)
		i++
	}
	if f.Status != nil && *f.Status != "" {
		where = append(where, fmt.Sprintf("status = $%d", i))
		args = append(args, *f.Status)
		i++
	}
	if f.Query != nil && *f.Query != "" {
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR nic ILIKE $%d)", i, i))
		args = append(args, "%"+*f.Query+"%")
		i++
	}

	query := base + " WHERE " + strings.Join(where, " AND ") + " ORDER BY name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Customer
	for rows.Next() {
		var (
			c      domain.Customer
			status string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.NIC, &c.Contact, &c.Address, &c.Area, &c.LoanType, &status, &c.CustomerPicture, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.Status = domain.CustomerStatus(status)
		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CustomerRepository) UpdateStatus(ctx context.Context, id string, status domain.CustomerStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE customers SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
