package model

import "time"

// Payment providers recorded on PaymentDetail.
const (
	ProviderStripe = "STRIPE"
	ProviderDirect = "DIRECT"
)

// PaymentDetail is the receipt of a donation that reached COMPLETED or FAILED.
// There is at most one per donation.
type PaymentDetail struct {
	ID              string         `json:"id"`
	DonationID      string         `json:"donation_id"`
	Provider        string         `json:"provider"`
	PaymentMethodID *string        `json:"payment_method_id,omitempty"`
	ReceiptURL      *string        `json:"receipt_url,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// PaymentDetailPatch holds fields that can be updated on a payment detail.
type PaymentDetailPatch struct {
	Provider        *string
	PaymentMethodID *string
	ReceiptURL      *string
	Metadata        map[string]any
}

// PaymentIntent is the simulated gateway handshake token. It is never stored;
// the PENDING donation is the source of truth until confirmation.
type PaymentIntent struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
	DonationID      string `json:"donation_id"`
}
