package model

import "time"

// Masjid is a mosque profile. Administrators are linked through masjid_admins.
type Masjid struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LogoURL   string    `json:"logo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MasjidSummary is the slice of a masjid embedded in campaign listings.
type MasjidSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
}
