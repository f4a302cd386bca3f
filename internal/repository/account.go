package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"collectbook/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.DailyCollections == nil {
		a.DailyCollections = map[string]domain.CollectionEntry{}
	}

	collections, err := json.Marshal(a.DailyCollections)
	if err != nil {
		return fmt.Errorf("marshal daily collections: %w", err)
	}

	query := `
		INSERT INTO accounts (id, customer_id, balance, status, daily_collections, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, now(), now())
	`
	_, err = r.db.ExecContext(ctx, query, a.ID, a.CustomerID, a.Balance.String(), string(a.Status), collections)
	return err
}

func (r *AccountRepository) GetByCustomerID(ctx context.Context, customerID string) (*domain.Account, error) {
	query := `
		SELECT id, customer_id, balance, status, daily_collections, version, created_at, updated_at
		FROM accounts
		WHERE customer_id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, customerID))
}

func (r *AccountRepository) scanOne(row *sql.Row) (*domain.Account, error) {
	var (
		a           domain.Account
		balance     string
		status      string
		collections []byte
	)

	err := row.Scan(&a.ID, &a.CustomerID, &balance, &status, &collections, &a.Version, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	a.Balance, err = decimal.NewFromString(balance)
	if err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", balance, err)
	}
	a.Status = domain.AccountStatus(status)

	a.DailyCollections = map[string]domain.CollectionEntry{}
	if len(collections) > 0 {
		if err := json.Unmarshal(collections, &a.DailyCollections); err != nil {
			return nil, fmt.Errorf("parse daily collections: %w", err)
		}
	}

	return &a, nil
}

// CommitCollection persists one ledger transition: the new balance, the
// account status and the dated entry go out in a single UPDATE so an
// interrupted process can never leave a torn state. The version guard
// rejects the write if another submission committed in between.
func (r *AccountRepository) CommitCollection(
	ctx context.Context,
	accountID string,
	version int64,
	newBalance decimal.Decimal,
	status domain.AccountStatus,
	date string,
	entry domain.CollectionEntry,
) error {
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal collection entry: %w", err)
	}

	query := `
		UPDATE accounts
		SET balance = $1,
		    status = $2,
		    daily_collections = jsonb_set(coalesce(daily_collections, '{}'::jsonb), ARRAY[$3], $4::jsonb, true),
		    version = version + 1,
		    updated_at = now()
		WHERE id = $5 AND version = $6
	`

	res, err := r.db.ExecContext(ctx, query, newBalance.String(), string(status), date, string(entryJSON), accountID, version)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	return nil
}

type AccountsFilter struct {
	Area   *string
	Status *string
}

// AccountRow joins an account with its customer's profile fields for
// reporting and summaries.
type AccountRow struct {
	Account  domain.Account
	Customer domain.Customer
}

func (r *AccountRepository) ListWithCustomers(ctx context.Context, f AccountsFilter) ([]AccountRow, error) {
	base := `
		SELECT a.id, a.customer_id, a.balance, a.status, a.daily_collections, a.version, a.created_at, a.updated_at,
		       c.name, c.nic, c.contact, c.address, c.area, c.loan_type, c.status
		FROM accounts a
		JOIN customers c ON c.id = a.customer_id
	`

	where := []string{"1=1"}
	args := []any{}
	i := 1

	if f.Area != nil && *f.Area != "" {
		where = append(where, fmt.Sprintf("c.area = $%d", i))
		args = append(args, *f.Area)
		i++
	}
	if f.Status != nil && *f.Status != "" {
		where = append(where, fmt.Sprintf("a.status = $%d", i))
		args = append(args, *f.Status)
		i++
	}

	query := base + " WHERE " + strings.Join(where, " AND ") + " ORDER BY c.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AccountRow
	for rows.Next() {
		var (
			row         AccountRow
			balance     string
			status      string
			collections []byte
			custStatus  string
		)
		if err := rows.Scan(
			&row.Account.ID,
			&row.Account.CustomerID,
			&balance,
			&status,
			&collections,
			&row.Account.Version,
			&row.Account.CreatedAt,
			&row.Account.UpdatedAt,
			&row.Customer.Name,
			&row.Customer.NIC,
			&row.Customer.Contact,
			&row.Customer.Address,
			&row.Customer.Area,
			&row.Customer.LoanType,
			&custStatus,
		); err != nil {
			return nil, err
		}

		row.Customer.ID = row.Account.CustomerID
		row.Customer.Status = domain.CustomerStatus(custStatus)
		row.Account.Status = domain.AccountStatus(status)

		row.Account.Balance, err = decimal.NewFromString(balance)
		if err != nil {
			return nil, fmt.Errorf("parse balance %q: %w", balance, err)
		}

		row.Account.DailyCollections = map[string]domain.CollectionEntry{}
		if len(collections) > 0 {
			if err := json.Unmarshal(collections, &row.Account.DailyCollections); err != nil {
				return nil, fmt.Errorf("parse daily collections: %w", err)
			}
		}

		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AccountRepository) HasMoreThan(ctx context.Context, limit int64, f AccountsFilter) (bool, error) {
	base := `SELECT COUNT(*) > $1 FROM accounts a JOIN customers c ON c.id = a.customer_id`

	where := []string{"1=1"}
	args := []any{limit}
	i := 2

	if f.Area != nil && *f.Area != "" {
		where = append(where, fmt.Sprintf("c.area = $%d", i))
		args = append(args, *f.Area)
		i++
	}
	if f.Status != nil && *f.Status != "" {
		where = append(where, fmt.Sprintf("a.status = $%d", i))
		args = append(args, *f.Status)
		i++
	}

	query := base + " WHERE " + strings.Join(where, " AND ")

	var tooMany bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&tooMany); err != nil {
		return false, err
	}
	return tooMany, nil
}
