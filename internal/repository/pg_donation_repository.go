package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/masjidnetwork/backend/internal/model"
)

type pgDonationRepository struct {
	pool *pgxpool.Pool
}

// NewPgDonationRepository returns a PostgreSQL-backed DonationRepository.
func NewPgDonationRepository(pool *pgxpool.Pool) DonationRepository {
	return &pgDonationRepository{pool: pool}
}

const donationSelectCols = `id, campaign_id, user_id, amount, payment_method, status,
	transaction_id, is_anonymous, message, created_at, updated_at`

func scanDonation(scan func(...any) error) (*model.Donation, error) {
	d := &model.Donation{}
	var status string
	if err := scan(
		&d.ID, &d.CampaignID, &d.UserID, (*int64)(&d.Amount), &d.PaymentMethod, &status,
		&d.TransactionID, &d.IsAnonymous, &d.Message, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.Status = model.DonationStatus(status)
	return d, nil
}

func (r *pgDonationRepository) Create(ctx context.Context, d *model.Donation) error {
	if d.Status == "" {
		d.Status = model.DonationPending
	}
	return conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO donations
		 (campaign_id, user_id, amount, payment_method, status, transaction_id, is_anonymous, message)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		d.CampaignID, d.UserID, int64(d.Amount), d.PaymentMethod, string(d.Status),
		d.TransactionID, d.IsAnonymous, d.Message,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

func (r *pgDonationRepository) GetByID(ctx context.Context, id string) (*model.Donation, error) {
	row := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+donationSelectCols+` FROM donations WHERE id = $1`, id)
	d, err := scanDonation(row.Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

func (r *pgDonationRepository) GetForUpdate(ctx context.Context, id string) (*model.Donation, error) {
	row := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+donationSelectCols+` FROM donations WHERE id = $1 FOR UPDATE`, id)
	d, err := scanDonation(row.Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

func (r *pgDonationRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*model.Donation, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+donationSelectCols+`
		 FROM donations
		 WHERE campaign_id = $1
		 ORDER BY created_at DESC`,
		campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.Donation
	for rows.Next() {
		d, err := scanDonation(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *pgDonationRepository) CountByCampaign(ctx context.Context, campaignID string) (int, error) {
	var n int
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM donations WHERE campaign_id = $1`, campaignID).Scan(&n)
	return n, err
}

func (r *pgDonationRepository) UpdateStatus(ctx context.Context, id string, status model.DonationStatus, transactionID *string) (*model.Donation, error) {
	row := conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE donations
		 SET status = $2, transaction_id = COALESCE($3, transaction_id), updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+donationSelectCols,
		id, string(status), transactionID)
	d, err := scanDonation(row.Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}
