package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/leadiq/internal/domain"
)

// Compile-time check: CustomerRepository implements domain.CustomerRepository.
var _ domain.CustomerRepository = (*CustomerRepository)(nil)

// CustomerRepository implements domain.CustomerRepository on SQLite.
type CustomerRepository struct {
	q     querier
	flush eventFlusher
}

// NewCustomerRepository creates a standalone repository with immediate
// event publication.
func NewCustomerRepository(store *Store, pub domain.EventPublisher) *CustomerRepository {
	return &CustomerRepository{q: store.db, flush: &immediateFlusher{pub: pub}}
}

const customerColumns = `id, tenant_id, email, name, company, phone, tier,
	lifetime_value_cents, version, created_at, updated_at`

func (r *CustomerRepository) GetByID(ctx context.Context, id, tenantID string) (*domain.Customer, error) {
	return scanCustomer(r.q.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = ? AND tenant_id = ?`,
		id, tenantID,
	))
}

func (r *CustomerRepository) List(ctx context.Context, tenantID string, filter domain.CustomerFilter) ([]*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE tenant_id = ?`
	args := []any{tenantID}

	if filter.Tier != nil {
		query += ` AND tier = ?`
		args = append(args, string(*filter.Tier))
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Save(ctx context.Context, tenantID string, customer *domain.Customer) error {
	if err := guardTenant(ctx, customer, tenantID); err != nil {
		return err
	}

	s := customer.Snapshot()

	if !customer.IsPersisted() {
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO customers (`+customerColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.TenantID,
			s.Profile.Email, s.Profile.Name, s.Profile.Company, s.Profile.Phone,
			string(s.Tier), s.LifetimeValueCents, s.Version,
			s.CreatedAt.UTC().Format(timeFormat), s.UpdatedAt.UTC().Format(timeFormat),
		)
		if err != nil {
			return fmt.Errorf("inserting customer: %w", err)
		}
	} else {
		expected := customer.ExpectedVersion()
		res, err := r.q.ExecContext(ctx,
			`UPDATE customers SET email = ?, name = ?, company = ?, phone = ?,
			 tier = ?, lifetime_value_cents = ?, version = ?, updated_at = ?
			 WHERE id = ? AND tenant_id = ? AND version = ?`,
			s.Profile.Email, s.Profile.Name, s.Profile.Company, s.Profile.Phone,
			string(s.Tier), s.LifetimeValueCents, s.Version,
			s.UpdatedAt.UTC().Format(timeFormat),
			s.ID, s.TenantID, expected,
		)
		if err != nil {
			return fmt.Errorf("updating customer: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if rows == 0 {
			return &domain.ConcurrencyError{
				AggregateType:   domain.AggregateTypeCustomer,
				AggregateID:     s.ID,
				ExpectedVersion: expected,
			}
		}
	}

	customer.MarkPersisted()
	r.flush.afterWrite(ctx, customer, customer.DomainEvents())
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id, tenantID string) (bool, error) {
	return deleteRow(ctx, r.q, r.flush, "customers", domain.AggregateTypeCustomer, id, tenantID)
}

func (r *CustomerRepository) Exists(ctx context.Context, id, tenantID string) (bool, error) {
	return existsRow(ctx, r.q, "customers", id, tenantID)
}

func scanCustomer(row rowScanner) (*domain.Customer, error) {
	var s domain.CustomerSnapshot
	var tier, createdAt, updatedAt string

	err := row.Scan(&s.ID, &s.TenantID,
		&s.Profile.Email, &s.Profile.Name, &s.Profile.Company, &s.Profile.Phone,
		&tier, &s.LifetimeValueCents, &s.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning customer: %w", err)
	}

	s.Tier = domain.CustomerTier(tier)
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("scanning customer: %w", err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("scanning customer: %w", err)
	}

	return domain.CustomerFromSnapshot(s), nil
}
