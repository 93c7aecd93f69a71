package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type pgSuppressionRepository struct {
	pool *pgxpool.Pool
}

// NewPgSuppressionRepository returns a SuppressionRepository backed by
// PostgreSQL. Every method is one bulk query scoped to the batch values, so
// a populate of N contacts costs a fixed number of round trips.
func NewPgSuppressionRepository(pool *pgxpool.Pool) SuppressionRepository {
	return &pgSuppressionRepository{pool: pool}
}

func (r *pgSuppressionRepository) SuppressedContactIDs(ctx context.Context, campaignID string, contactIDs []string) ([]string, error) {
	return r.campaignSet(ctx, "contact_id", campaignID, contactIDs)
}

func (r *pgSuppressionRepository) SuppressedAccountIDs(ctx context.Context, campaignID string, accountIDs []string) ([]string, error) {
	return r.campaignSet(ctx, "account_id", campaignID, accountIDs)
}

func (r *pgSuppressionRepository) SuppressedEmails(ctx context.Context, campaignID string, emails []string) ([]string, error) {
	return r.campaignSet(ctx, "email", campaignID, emails)
}

func (r *pgSuppressionRepository) SuppressedDomains(ctx context.Context, campaignID string, domains []string) ([]string, error) {
	return r.campaignSet(ctx, "domain", campaignID, domains)
}

func (r *pgSuppressionRepository) campaignSet(ctx context.Context, column, campaignID string, values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM campaign_suppressions
		WHERE campaign_id = $1 AND %s = ANY($2)`, column, column),
		campaignID, values)
	if err != nil {
		return nil, fmt.Errorf("campaign %s suppressions: %w", column, err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

func (r *pgSuppressionRepository) GlobalSuppressedEmails(ctx context.Context, emails []string) ([]string, error) {
	if len(emails) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT email FROM global_suppressions WHERE email = ANY($1)`, emails)
	if err != nil {
		return nil, fmt.Errorf("global email suppressions: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

func (r *pgSuppressionRepository) GlobalSuppressedPhones(ctx context.Context, phones []string) ([]string, error) {
	if len(phones) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT phone_e164 FROM global_suppressions WHERE phone_e164 = ANY($1)`, phones)
	if err != nil {
		return nil, fmt.Errorf("global phone suppressions: %w", err)
	}
	defer rows.Close()
	return scanStrings(rows)
}
