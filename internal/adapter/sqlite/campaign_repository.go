package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/neomorfeo/leadiq/internal/domain"
)

// Compile-time check: CampaignRepository implements domain.CampaignRepository.
var _ domain.CampaignRepository = (*CampaignRepository)(nil)

// CampaignRepository implements domain.CampaignRepository on SQLite.
type CampaignRepository struct {
	q     querier
	flush eventFlusher
}

// NewCampaignRepository creates a standalone repository with immediate
// event publication.
func NewCampaignRepository(store *Store, pub domain.EventPublisher) *CampaignRepository {
	return &CampaignRepository{q: store.db, flush: &immediateFlusher{pub: pub}}
}

const campaignColumns = `id, tenant_id, name, type, objective,
	budget_total_cents, budget_daily_cents, spend_cents,
	starts_at, ends_at, status, version, created_at, updated_at`

func (r *CampaignRepository) GetByID(ctx context.Context, id, tenantID string) (*domain.Campaign, error) {
	return scanCampaign(r.q.QueryRowContext(ctx,
		`SELECT `+campaignColumns+` FROM campaigns WHERE id = ? AND tenant_id = ?`,
		id, tenantID,
	))
}

func (r *CampaignRepository) List(ctx context.Context, tenantID string, filter domain.CampaignFilter) ([]*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE tenant_id = ?`
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
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}
	return campaigns, rows.Err()
}

func (r *CampaignRepository) Save(ctx context.Context, tenantID string, campaign *domain.Campaign) error {
	if err := guardTenant(ctx, campaign, tenantID); err != nil {
		return err
	}

	s := campaign.Snapshot()

	if !campaign.IsPersisted() {
		_, err := r.q.ExecContext(ctx,
			`INSERT INTO campaigns (`+campaignColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.TenantID, s.Name, string(s.Type), s.Objective,
			s.Budget.TotalCents, s.Budget.DailyCents, s.SpendCents,
			s.Schedule.StartsAt.UTC().Format(timeFormat), s.Schedule.EndsAt.UTC().Format(timeFormat),
			string(s.Status), s.Version,
			s.CreatedAt.UTC().Format(timeFormat), s.UpdatedAt.UTC().Format(timeFormat),
		)
		if err != nil {
			return fmt.Errorf("inserting campaign: %w", err)
		}
	} else {
		expected := campaign.ExpectedVersion()
		res, err := r.q.ExecContext(ctx,
			`UPDATE campaigns SET name = ?, type = ?, objective = ?,
			 budget_total_cents = ?, budget_daily_cents = ?, spend_cents = ?,
			 starts_at = ?, ends_at = ?, status = ?, version = ?, updated_at = ?
			 WHERE id = ? AND tenant_id = ? AND version = ?`,
			s.Name, string(s.Type), s.Objective,
			s.Budget.TotalCents, s.Budget.DailyCents, s.SpendCents,
			s.Schedule.StartsAt.UTC().Format(timeFormat), s.Schedule.EndsAt.UTC().Format(timeFormat),
			string(s.Status), s.Version,
			s.UpdatedAt.UTC().Format(timeFormat),
			s.ID, s.TenantID, expected,
		)
		if err != nil {
			return fmt.Errorf("updating campaign: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if rows == 0 {
			return &domain.ConcurrencyError{
				AggregateType:   domain.AggregateTypeCampaign,
				AggregateID:     s.ID,
				ExpectedVersion: expected,
			}
		}
	}

	campaign.MarkPersisted()
	r.flush.afterWrite(ctx, campaign, campaign.DomainEvents())
	return nil
}

func (r *CampaignRepository) Delete(ctx context.Context, id, tenantID string) (bool, error) {
	return deleteRow(ctx, r.q, r.flush, "campaigns", domain.AggregateTypeCampaign, id, tenantID)
}

func (r *CampaignRepository) Exists(ctx context.Context, id, tenantID string) (bool, error) {
	return existsRow(ctx, r.q, "campaigns", id, tenantID)
}

func scanCampaign(row rowScanner) (*domain.Campaign, error) {
	var s domain.CampaignSnapshot
	var ctype, status, startsAt, endsAt, createdAt, updatedAt string

	err := row.Scan(&s.ID, &s.TenantID, &s.Name, &ctype, &s.Objective,
		&s.Budget.TotalCents, &s.Budget.DailyCents, &s.SpendCents,
		&startsAt, &endsAt, &status, &s.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning campaign: %w", err)
	}

	s.Type = domain.CampaignType(ctype)
	s.Status = domain.CampaignStatus(status)
	if s.Schedule.StartsAt, err = parseTime(startsAt); err != nil {
		return nil, fmt.Errorf("scanning campaign: %w", err)
	}
	if s.Schedule.EndsAt, err = parseTime(endsAt); err != nil {
		return nil, fmt.Errorf("scanning campaign: %w", err)
	}
	if s.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("scanning campaign: %w", err)
	}
	if s.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("scanning campaign: %w", err)
	}

	return domain.CampaignFromSnapshot(s), nil
}
