package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/masjidnetwork/backend/internal/model"
)

type pgPaymentDetailRepository struct {
	pool *pgxpool.Pool
}

// NewPgPaymentDetailRepository returns a PostgreSQL-backed PaymentDetailRepository.
func NewPgPaymentDetailRepository(pool *pgxpool.Pool) PaymentDetailRepository {
	return &pgPaymentDetailRepository{pool: pool}
}

const paymentDetailSelectCols = `id, donation_id, provider, payment_method_id, receipt_url,
	COALESCE(metadata, '{}'::jsonb), created_at, updated_at`

func scanPaymentDetail(scan func(...any) error) (*model.PaymentDetail, error) {
	p := &model.PaymentDetail{}
	if err := scan(
		&p.ID, &p.DonationID, &p.Provider, &p.PaymentMethodID, &p.ReceiptURL,
		&p.Metadata, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgPaymentDetailRepository) List(ctx context.Context) ([]*model.PaymentDetail, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+paymentDetailSelectCols+` FROM payment_details ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.PaymentDetail
	for rows.Next() {
		p, err := scanPaymentDetail(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *pgPaymentDetailRepository) GetByID(ctx context.Context, id string) (*model.PaymentDetail, error) {
	row := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+paymentDetailSelectCols+` FROM payment_details WHERE id = $1`, id)
	p, err := scanPaymentDetail(row.Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *pgPaymentDetailRepository) GetByDonationID(ctx context.Context, donationID string) (*model.PaymentDetail, error) {
	row := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+paymentDetailSelectCols+` FROM payment_details WHERE donation_id = $1`, donationID)
	p, err := scanPaymentDetail(row.Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (r *pgPaymentDetailRepository) Create(ctx context.Context, p *model.PaymentDetail) error {
	err := conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO payment_details (donation_id, provider, payment_method_id, receipt_url, metadata)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		p.DonationID, p.Provider, p.PaymentMethodID, p.ReceiptURL, p.Metadata,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isDuplicate(err) {
		return ErrDuplicate
	}
	return err
}

func (r *pgPaymentDetailRepository) Patch(ctx context.Context, id string, patch model.PaymentDetailPatch) (*model.PaymentDetail, error) {
	setClauses := []string{}
	args := []any{}
	argIdx := 1

	if patch.Provider != nil {
		setClauses = append(setClauses, fmt.Sprintf("provider = $%d", argIdx))
		args = append(args, *patch.Provider)
		argIdx++
	}
	if patch.PaymentMethodID != nil {
		setClauses = append(setClauses, fmt.Sprintf("payment_method_id = NULLIF($%d, '')", argIdx))
		args = append(args, *patch.PaymentMethodID)
		argIdx++
	}
	if patch.ReceiptURL != nil {
		setClauses = append(setClauses, fmt.Sprintf("receipt_url = NULLIF($%d, '')", argIdx))
		args = append(args, *patch.ReceiptURL)
		argIdx++
	}
	if patch.Metadata != nil {
		setClauses = append(setClauses, fmt.Sprintf("metadata = $%d", argIdx))
		args = append(args, patch.Metadata)
		argIdx++
	}

	if len(setClauses) > 0 {
		setClauses = append(setClauses, "updated_at = NOW()")
		args = append(args, id)
		query := fmt.Sprintf("UPDATE payment_details SET %s WHERE id = $%d",
			strings.Join(setClauses, ", "), argIdx)
		tag, err := conn(ctx, r.pool).Exec(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetByID(ctx, id)
}
