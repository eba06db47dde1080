package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/masjidnetwork/backend/internal/model"
	"github.com/masjidnetwork/backend/internal/repository"
)

// MaxCampaignTitleLength is the longest campaign title accepted.
const MaxCampaignTitleLength = 100

// CampaignDonationCounter は削除可否の判定に使う寄付件数のミニマムインターフェース
type CampaignDonationCounter interface {
	CountByCampaign(ctx context.Context, campaignID string) (int, error)
}

// CampaignService provides business logic for campaigns.
// Mutations require the caller to administer the owning masjid.
type CampaignService interface {
	List(ctx context.Context, activeOnly bool) ([]*model.Campaign, error)
	ListByMasjid(ctx context.Context, masjidID string) ([]*model.Campaign, error)
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	Create(ctx context.Context, userID string, c *model.Campaign) error
	Update(ctx context.Context, userID, id string, patch model.CampaignPatch) (*model.Campaign, error)
	// Delete fails with ErrForbidden while the campaign has any donation.
	Delete(ctx context.Context, userID, id string) error
}

type campaignService struct {
	campaigns repository.CampaignRepository
	donations CampaignDonationCounter
	masjids   repository.MasjidRepository
	logger    *slog.Logger
}

// NewCampaignService creates a CampaignService.
func NewCampaignService(campaigns repository.CampaignRepository, donations CampaignDonationCounter, masjids repository.MasjidRepository, logger *slog.Logger) CampaignService {
	return &campaignService{campaigns: campaigns, donations: donations, masjids: masjids, logger: logger}
}

func (s *campaignService) List(ctx context.Context, activeOnly bool) ([]*model.Campaign, error) {
	return s.campaigns.List(ctx, activeOnly)
}

func (s *campaignService) ListByMasjid(ctx context.Context, masjidID string) ([]*model.Campaign, error) {
	if _, err := s.masjids.GetByID(ctx, masjidID); err != nil {
		return nil, err
	}
	return s.campaigns.ListByMasjid(ctx, masjidID)
}

func (s *campaignService) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	return s.campaigns.GetByID(ctx, id)
}

func (s *campaignService) requireMasjidAdmin(ctx context.Context, userID, masjidID string) error {
	ok, err := s.masjids.IsMasjidAdmin(ctx, userID, masjidID)
	if err != nil {
		return fmt.Errorf("check masjid admin: %w", err)
	}
	if !ok {
		s.logger.Warn("campaign: caller is not a masjid admin", "user_id", userID, "masjid_id", masjidID)
		return fmt.Errorf("%w: you must be a masjid admin to manage campaigns", ErrForbidden)
	}
	return nil
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len([]rune(title)) > MaxCampaignTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", ErrInvalidInput, MaxCampaignTitleLength)
	}
	return nil
}

func (s *campaignService) Create(ctx context.Context, userID string, c *model.Campaign) error {
	if c.MasjidID == "" {
		return fmt.Errorf("%w: masjid_id is required", ErrInvalidInput)
	}
	if err := validateTitle(c.Title); err != nil {
		return err
	}
	if c.Goal <= 0 {
		return fmt.Errorf("%w: goal must be greater than 0", ErrInvalidInput)
	}
	if c.EndDate != nil && c.EndDate.Before(c.StartDate) {
		return fmt.Errorf("%w: end_date is before start_date", ErrInvalidInput)
	}
	if err := s.requireMasjidAdmin(ctx, userID, c.MasjidID); err != nil {
		return err
	}
	c.Raised = 0
	if err := s.campaigns.Create(ctx, c); err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	s.logger.Info("campaign created", "campaign_id", c.ID, "masjid_id", c.MasjidID, "user_id", userID)
	return nil
}

func (s *campaignService) Update(ctx context.Context, userID, id string, patch model.CampaignPatch) (*model.Campaign, error) {
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if patch.Goal != nil && *patch.Goal <= 0 {
		return nil, fmt.Errorf("%w: goal must be greater than 0", ErrInvalidInput)
	}
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireMasjidAdmin(ctx, userID, c.MasjidID); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return c, nil
	}
	// 片方だけの patch も現在値と合わせて検証する
	start, end := c.StartDate, c.EndDate
	if patch.StartDate != nil {
		start = *patch.StartDate
	}
	if patch.EndDate != nil {
		end = patch.EndDate
	}
	if end != nil && end.Before(start) {
		return nil, fmt.Errorf("%w: end_date is before start_date", ErrInvalidInput)
	}
	return s.campaigns.Patch(ctx, id, patch)
}

func (s *campaignService) Delete(ctx context.Context, userID, id string) error {
	c, err := s.campaigns.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireMasjidAdmin(ctx, userID, c.MasjidID); err != nil {
		return err
	}
	n, err := s.donations.CountByCampaign(ctx, id)
	if err != nil {
		return fmt.Errorf("count donations: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: cannot delete campaign with %d donations", ErrForbidden, n)
	}
	if err := s.campaigns.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("campaign deleted", "campaign_id", id, "user_id", userID)
	return nil
}
