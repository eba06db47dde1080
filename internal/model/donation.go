package model

import "time"

// DonationStatus is the lifecycle state of a donation.
type DonationStatus string

const (
	DonationPending   DonationStatus = "PENDING"
	DonationCompleted DonationStatus = "COMPLETED"
	DonationFailed    DonationStatus = "FAILED"
	DonationRefunded  DonationStatus = "REFUNDED"
)

// Valid reports whether s is one of the four known statuses.
func (s DonationStatus) Valid() bool {
	switch s {
	case DonationPending, DonationCompleted, DonationFailed, DonationRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is permitted.
// Same-status requests are allowed and treated as no-ops by the caller.
func (s DonationStatus) CanTransitionTo(next DonationStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case DonationPending:
		return next == DonationCompleted || next == DonationFailed
	case DonationCompleted:
		return next == DonationRefunded
	}
	return false
}

// RaisedDelta returns the change a transition from -> to applies to the
// campaign's raised total for a donation of the given amount.
func RaisedDelta(from, to DonationStatus, amount Amount) Amount {
	switch {
	case to == DonationCompleted && from != DonationCompleted:
		return amount
	case to == DonationRefunded && from == DonationCompleted:
		return -amount
	}
	return 0
}

// EntersPaymentRecord reports whether a transition reaches a state that
// carries a PaymentDetail (COMPLETED or FAILED) for the first time.
func EntersPaymentRecord(from, to DonationStatus) bool {
	if from == to {
		return false
	}
	return to == DonationCompleted || to == DonationFailed
}

// Donation is a single contribution to one campaign.
type Donation struct {
	ID            string         `json:"id"`
	CampaignID    string         `json:"campaign_id"`
	UserID        *string        `json:"user_id,omitempty"`
	Amount        Amount         `json:"amount"`
	PaymentMethod string         `json:"payment_method"`
	Status        DonationStatus `json:"status"`
	TransactionID *string        `json:"transaction_id,omitempty"`
	IsAnonymous   bool           `json:"is_anonymous"`
	Message       *string        `json:"message,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// DonationInput carries the caller-supplied fields for a new donation.
type DonationInput struct {
	CampaignID    string
	Amount        Amount
	PaymentMethod string
	DonorID       *string
	IsAnonymous   bool
	Message       *string
}
