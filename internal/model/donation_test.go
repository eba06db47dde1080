package model

import "testing"

var allStatuses = []DonationStatus{DonationPending, DonationCompleted, DonationFailed, DonationRefunded}

func TestDonationStatus_CanTransitionTo(t *testing.T) {
	allowed := map[[2]DonationStatus]bool{
		{DonationPending, DonationCompleted}:  true,
		{DonationPending, DonationFailed}:     true,
		{DonationCompleted, DonationRefunded}: true,
	}
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := from == to || allowed[[2]DonationStatus{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestDonationStatus_Valid(t *testing.T) {
	for _, s := range allStatuses {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if DonationStatus("pending").Valid() {
		t.Error("lower-case status should be invalid")
	}
}

func TestRaisedDelta(t *testing.T) {
	const amount Amount = 10000
	tests := []struct {
		from, to DonationStatus
		want     Amount
	}{
		{DonationPending, DonationCompleted, amount},
		{DonationCompleted, DonationRefunded, -amount},
		{DonationPending, DonationFailed, 0},
		{DonationCompleted, DonationCompleted, 0},
		{DonationRefunded, DonationRefunded, 0},
		{DonationPending, DonationPending, 0},
	}
	for _, tt := range tests {
		if got := RaisedDelta(tt.from, tt.to, amount); got != tt.want {
			t.Errorf("RaisedDelta(%s, %s) = %s, want %s", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestEntersPaymentRecord(t *testing.T) {
	if !EntersPaymentRecord(DonationPending, DonationCompleted) || !EntersPaymentRecord(DonationPending, DonationFailed) {
		t.Error("PENDING -> COMPLETED/FAILED should record a payment")
	}
	if EntersPaymentRecord(DonationCompleted, DonationCompleted) {
		t.Error("same-status transition must not record a payment")
	}
	if EntersPaymentRecord(DonationCompleted, DonationRefunded) {
		t.Error("refund must not record a payment")
	}
}
