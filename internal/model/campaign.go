package model

import "time"

// Campaign is a fundraising effort owned by one masjid.
// Raised is only ever changed by the ledger.
type Campaign struct {
	ID            string         `json:"id"`
	MasjidID      string         `json:"masjid_id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Goal          Amount         `json:"goal"`
	Raised        Amount         `json:"raised"`
	StartDate     time.Time      `json:"start_date"`
	EndDate       *time.Time     `json:"end_date,omitempty"`
	IsActive      bool           `json:"is_active"`
	CoverImageURL string         `json:"cover_image_url,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	Masjid        *MasjidSummary `json:"masjid,omitempty"`
}

// CampaignPatch holds fields that can be updated on a campaign.
type CampaignPatch struct {
	Title         *string
	Description   *string
	Goal          *Amount
	StartDate     *time.Time
	EndDate       *time.Time
	IsActive      *bool
	CoverImageURL *string
}

// Empty reports whether the patch changes nothing.
func (p CampaignPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Goal == nil &&
		p.StartDate == nil && p.EndDate == nil && p.IsActive == nil && p.CoverImageURL == nil
}
