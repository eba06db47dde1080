package repository

import (
	"context"

	"github.com/masjidnetwork/backend/internal/model"
)

// PaymentDetailRepository handles persistence for payment details.
type PaymentDetailRepository interface {
	List(ctx context.Context) ([]*model.PaymentDetail, error)
	GetByID(ctx context.Context, id string) (*model.PaymentDetail, error)
	GetByDonationID(ctx context.Context, donationID string) (*model.PaymentDetail, error)
	// Create returns ErrDuplicate if the donation already has a detail.
	Create(ctx context.Context, p *model.PaymentDetail) error
	Patch(ctx context.Context, id string, patch model.PaymentDetailPatch) (*model.PaymentDetail, error)
}
