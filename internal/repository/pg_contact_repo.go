package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dialhub/callqueue/internal/domain"
)

type pgContactRepository struct {
	pool *pgxpool.Pool
}

// NewPgContactRepository returns a ContactRepository backed by PostgreSQL.
func NewPgContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &pgContactRepository{pool: pool}
}

func (r *pgContactRepository) GetCampaign(ctx context.Context, campaignID string) (*domain.Campaign, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, dial_mode FROM campaigns WHERE id = $1`, campaignID)

	var c domain.Campaign
	err := row.Scan(&c.ID, &c.Name, &c.DialMode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get campaign: %w", err)
	}
	return &c, nil
}

func (r *pgContactRepository) FindCandidates(ctx context.Context, filter domain.ContactFilter, limit int) ([]*domain.Contact, error) {
	where, args := buildCandidateWhere(filter)

	args = append(args, limit)
	query := fmt.Sprintf(`
		SELECT c.id, c.account_id,
		       COALESCE(c.email, ''), COALESCE(c.country, ''), COALESCE(c.region, ''),
		       COALESCE(c.direct_phone, ''), COALESCE(c.direct_phone_e164, ''),
		       COALESCE(c.mobile_phone, ''), COALESCE(c.mobile_phone_e164, ''),
		       a.name, COALESCE(a.domain, ''),
		       COALESCE(a.hq_phone, ''), COALESCE(a.country, '')
		FROM contacts c
		JOIN accounts a ON a.id = c.account_id%s
		ORDER BY c.created_at ASC
		LIMIT $%d`, where, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	defer rows.Close()

	var contacts []*domain.Contact
	for rows.Next() {
		var c domain.Contact
		err := rows.Scan(
			&c.ID, &c.AccountID,
			&c.Email, &c.Country, &c.Region,
			&c.DirectPhone, &c.DirectPhoneE164,
			&c.MobilePhone, &c.MobilePhoneE164,
			&c.AccountName, &c.AccountDomain,
			&c.AccountPhone, &c.AccountCountry,
		)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, &c)
	}
	return contacts, rows.Err()
}

func (r *pgContactRepository) SaveNormalizedPhone(ctx context.Context, contactID, source, e164 string) error {
	var column string
	switch source {
	case "direct":
		column = "direct_phone_e164"
	case "mobile":
		column = "mobile_phone_e164"
	default:
		return fmt.Errorf("phone source %q is not writable", source)
	}

	_, err := r.pool.Exec(ctx, fmt.Sprintf(`
		UPDATE contacts SET %s = $1, updated_at = now() WHERE id = $2`, column),
		e164, contactID)
	if err != nil {
		return fmt.Errorf("save normalized phone: %w", err)
	}
	return nil
}

// buildCandidateWhere builds a parameterised WHERE clause from a ContactFilter.
func buildCandidateWhere(f domain.ContactFilter) (string, []any) {
	var conditions []string
	var args []any

	add := func(condition string, val any) {
		args = append(args, val)
		conditions = append(conditions, fmt.Sprintf(condition, len(args)))
	}

	if len(f.AccountIDs) > 0 {
		add("c.account_id = ANY($%d)", f.AccountIDs)
	}
	if f.Industry != "" {
		add("a.industry = $%d", f.Industry)
	}
	if f.Region != "" {
		add("c.region = $%d", f.Region)
	}
	if f.HasEmail {
		conditions = append(conditions, "c.email IS NOT NULL AND c.email <> ''")
	}
	if f.HasPhone {
		conditions = append(conditions, `(
			COALESCE(c.direct_phone, '') <> '' OR COALESCE(c.direct_phone_e164, '') <> '' OR
			COALESCE(c.mobile_phone, '') <> '' OR COALESCE(c.mobile_phone_e164, '') <> '' OR
			COALESCE(a.hq_phone, '') <> '')`)
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
