package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/leadiq/internal/domain"
)

// Compile-time check: LeadRepository implements domain.LeadRepository.
var _ domain.LeadRepository = (*LeadRepository)(nil)

// LeadRepository implements domain.LeadRepository on SQLite.
type LeadRepository struct {
	q     querier
	flush eventFlusher
}

// NewLeadRepository creates a standalone repository: writes go straight to
// the store and events publish immediately after each successful write.
func NewLeadRepository(store *Store, pub domain.EventPublisher) *LeadRepository {
	return &LeadRepository{q: store.db, flush: &immediateFlusher{pub: pub}}
}

const leadColumns = `id, tenant_id, email, name, company, title, source,
	utm_source, utm_medium, utm_campaign, status, score, version, created_at, updated_at`

func (r *LeadRepository) GetByID(ctx context.Context, id, tenantID string) (*domain.Lead, error) {
	return scanLead(r.q.QueryRowContext(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = ? AND tenant_id = ?`,
		id, tenantID,
	))
}

func (r *LeadRepository) List(ctx context.Context, tenantID string, filter domain.LeadFilter) ([]*domain.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE tenant_id = ?`
	args := []any{tenantID}

	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
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
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	defer rows.Close()

	var leads []*domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) Save(ctx context.Context, tenantID string, lead *domain.Lead) error {
	if err := guardTenant(ctx, lead, tenantID); err != nil {
		return err
	}

	s := lead.Snapshot()

	if !lead.IsPersisted() {
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO leads (`+leadColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.TenantID,
			s.Contact.Email, s.Contact.Name, s.Contact.Company, s.Contact.Title,
			s.Source, s.UTM.Source, s.UTM.Medium, s.UTM.Campaign,
			string(s.Status), s.Score, s.Version,
			s.CreatedAt.UTC().Format(timeFormat), s.UpdatedAt.UTC().Format(timeFormat),
		)
		if err != nil {
			return fmt.Errorf("inserting lead: %w", err)
		}
	} else {
		expected := lead.ExpectedVersion()
		res, err := r.q.ExecContext(ctx,
			`UPDATE leads SET email = ?, name = ?, company = ?, title = ?,
			 source = ?, utm_source = ?, utm_medium = ?, utm_campaign = ?,
			 status = ?, score = ?, version = ?, updated_at = ?
			 WHERE id = ? AND tenant_id = ? AND version = ?`,
			s.Contact.Email, s.Contact.Name, s.Contact.Company, s.Contact.Title,
			s.Source, s.UTM.Source, s.UTM.Medium, s.UTM.Campaign,
			string(s.Status), s.Score, s.Version,
			s.UpdatedAt.UTC().Format(timeFormat),
			s.ID, s.TenantID, expected,
		)
		if err != nil {
			return fmt.Errorf("updating lead: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if rows == 0 {
			return &domain.ConcurrencyError{
				AggregateType:   domain.AggregateTypeLead,
				AggregateID:     s.ID,
				ExpectedVersion: expected,
			}
		}
	}

	lead.MarkPersisted()
	r.flush.afterWrite(ctx, lead, lead.DomainEvents())
	return nil
}

func (r *LeadRepository) Delete(ctx context.Context, id, tenantID string) (bool, error) {
	return deleteRow(ctx, r.q, r.flush, "leads", domain.AggregateTypeLead, id, tenantID)
}

func (r *LeadRepository) Exists(ctx context.Context, id, tenantID string) (bool, error) {
	return existsRow(ctx, r.q, "leads", id, tenantID)
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*domain.Lead, error) {
	var s domain.LeadSnapshot
	var status, createdAt, updatedAt string

	err := row.Scan(&s.ID, &s.TenantID,
		&s.Contact.Email, &s.Contact.Name, &s.Contact.Company, &s.Contact.Title,
		&s.Source, &s.UTM.Source, &s.UTM.Medium, &s.UTM.Campaign,
		&status, &s.Score, &s.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning lead: %w", err)
	}

	s.Status = domain.LeadStatus(status)
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("scanning lead: %w", err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("scanning lead: %w", err)
	}

	return domain.LeadFromSnapshot(s), nil
}
