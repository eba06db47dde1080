package repository

import (
	"context"

	"github.com/masjidnetwork/backend/internal/model"
)

// DonationRepository handles persistence for donations.
type DonationRepository interface {
	// Create inserts d and fills ID, CreatedAt and UpdatedAt.
	Create(ctx context.Context, d *model.Donation) error
	GetByID(ctx context.Context, id string) (*model.Donation, error)
	// GetForUpdate reads a donation and locks its row until the surrounding
	// transaction ends. Outside a transaction it behaves like GetByID.
	GetForUpdate(ctx context.Context, id string) (*model.Donation, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]*model.Donation, error)
	CountByCampaign(ctx context.Context, campaignID string) (int, error)
	// UpdateStatus writes status and, when transactionID is non-nil, transaction_id.
	UpdateStatus(ctx context.Context, id string, status model.DonationStatus, transactionID *string) (*model.Donation, error)
}
