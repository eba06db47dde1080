package repository

import (
	"context"

	"github.com/masjidnetwork/backend/internal/model"
)

// CampaignRepository handles persistence for campaigns.
type CampaignRepository interface {
	List(ctx context.Context, activeOnly bool) ([]*model.Campaign, error)
	ListByMasjid(ctx context.Context, masjidID string) ([]*model.Campaign, error)
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	Create(ctx context.Context, c *model.Campaign) error
	Patch(ctx context.Context, id string, patch model.CampaignPatch) (*model.Campaign, error)
	// Delete removes a campaign. Returns ErrNotFound if it does not exist.
	Delete(ctx context.Context, id string) error
	// ApplyRaisedDelta sets raised = max(0, raised + delta) in one statement and
	// returns the stored total together with the unclamped sum.
	ApplyRaisedDelta(ctx context.Context, id string, delta model.Amount) (raised, unclamped model.Amount, err error)
}
