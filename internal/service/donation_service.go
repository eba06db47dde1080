package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/masjidnetwork/backend/internal/model"
	"github.com/masjidnetwork/backend/internal/repository"
)

// MaxMessageLength is the longest donor message accepted.
const MaxMessageLength = 500

// DonationCampaignRepo は寄付処理が必要とするキャンペーン参照のミニマムインターフェース
type DonationCampaignRepo interface {
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
}

// PaymentDetailCreator は状態遷移時に PaymentDetail を作成するためのミニマムインターフェース
type PaymentDetailCreator interface {
	Create(ctx context.Context, p *model.PaymentDetail) error
}

// DonationService drives the donation state machine.
type DonationService interface {
	// CreateDonation records a direct donation and completes it immediately.
	CreateDonation(ctx context.Context, in model.DonationInput) (*model.Donation, error)
	// CreatePending inserts a PENDING donation. It does not check the campaign;
	// callers decide how an inactive campaign is reported.
	CreatePending(ctx context.Context, in model.DonationInput) (*model.Donation, error)
	// UpdateDonationStatus applies a manual status change. Details created
	// here carry the DIRECT provider.
	UpdateDonationStatus(ctx context.Context, id string, status model.DonationStatus, transactionID *string) (*model.Donation, error)
	// Transition applies a status change in one transaction. detail is the
	// PaymentDetail to record when the donation enters COMPLETED or FAILED;
	// nil records a DIRECT one.
	Transition(ctx context.Context, id string, status model.DonationStatus, transactionID *string, detail *model.PaymentDetail) (*model.Donation, error)
	GetByID(ctx context.Context, id string) (*model.Donation, error)
	ListByCampaign(ctx context.Context, campaignID string) ([]*model.Donation, error)
}

type donationService struct {
	donations repository.DonationRepository
	campaigns DonationCampaignRepo
	details   PaymentDetailCreator
	ledger    Ledger
	tx        repository.Transactor
	logger    *slog.Logger
}

// NewDonationService creates a DonationService.
func NewDonationService(
	donations repository.DonationRepository,
	campaigns DonationCampaignRepo,
	details PaymentDetailCreator,
	ledger Ledger,
	tx repository.Transactor,
	logger *slog.Logger,
) DonationService {
	return &donationService{
		donations: donations,
		campaigns: campaigns,
		details:   details,
		ledger:    ledger,
		tx:        tx,
		logger:    logger,
	}
}

func validateDonationInput(in model.DonationInput) error {
	if in.CampaignID == "" {
		return fmt.Errorf("%w: campaign_id is required", ErrInvalidInput)
	}
	if in.Amount <= 0 {
		return fmt.Errorf("%w: amount must be greater than 0", ErrInvalidInput)
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return fmt.Errorf("%w: payment_method is required", ErrInvalidInput)
	}
	if in.Message != nil && len([]rune(*in.Message)) > MaxMessageLength {
		return fmt.Errorf("%w: message must be at most %d characters", ErrInvalidInput, MaxMessageLength)
	}
	return nil
}

func newPendingDonation(in model.DonationInput) *model.Donation {
	return &model.Donation{
		CampaignID:    in.CampaignID,
		UserID:        in.DonorID,
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		Status:        model.DonationPending,
		IsAnonymous:   in.IsAnonymous,
		Message:       in.Message,
	}
}

func (s *donationService) CreateDonation(ctx context.Context, in model.DonationInput) (*model.Donation, error) {
	if err := validateDonationInput(in); err != nil {
		return nil, err
	}
	c, err := s.campaigns.GetByID(ctx, in.CampaignID)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, fmt.Errorf("%w: campaign %s is not active", ErrForbidden, c.ID)
	}

	var out *model.Donation
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		d := newPendingDonation(in)
		if err := s.donations.Create(ctx, d); err != nil {
			return fmt.Errorf("create donation: %w", err)
		}
		// 直接寄付はゲートウェイを経由せずその場で完了させる
		txnID := "direct_" + d.ID
		out, err = s.transition(ctx, d.ID, model.DonationCompleted, &txnID, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *donationService) CreatePending(ctx context.Context, in model.DonationInput) (*model.Donation, error) {
	if err := validateDonationInput(in); err != nil {
		return nil, err
	}
	d := newPendingDonation(in)
	if err := s.donations.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create donation: %w", err)
	}
	return d, nil
}

func (s *donationService) UpdateDonationStatus(ctx context.Context, id string, status model.DonationStatus, transactionID *string) (*model.Donation, error) {
	return s.Transition(ctx, id, status, transactionID, nil)
}

func (s *donationService) Transition(ctx context.Context, id string, status model.DonationStatus, transactionID *string, detail *model.PaymentDetail) (*model.Donation, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	var out *model.Donation
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		out, err = s.transition(ctx, id, status, transactionID, detail)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// transition must run inside a transaction so the row lock covers the
// status write, the ledger delta and the payment detail.
func (s *donationService) transition(ctx context.Context, id string, next model.DonationStatus, transactionID *string, detail *model.PaymentDetail) (*model.Donation, error) {
	if transactionID != nil && *transactionID == "" {
		transactionID = nil
	}

	d, err := s.donations.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := d.Status
	if !prev.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, next)
	}

	if prev == next {
		// 同一ステータスは台帳にも PaymentDetail にも影響しない。
		// transaction_id は未設定のときだけ埋め、既存の値は上書きしない
		if transactionID == nil || d.TransactionID != nil {
			return d, nil
		}
		return s.donations.UpdateStatus(ctx, id, next, transactionID)
	}

	updated, err := s.donations.UpdateStatus(ctx, id, next, transactionID)
	if err != nil {
		return nil, fmt.Errorf("update donation status: %w", err)
	}

	if delta := model.RaisedDelta(prev, next, d.Amount); delta != 0 {
		if _, err := s.ledger.ApplyRaisedDelta(ctx, d.CampaignID, delta); err != nil {
			return nil, err
		}
	}

	if model.EntersPaymentRecord(prev, next) {
		if detail == nil {
			detail = directPaymentDetail(next, transactionID)
		}
		detail.DonationID = id
		if err := s.details.Create(ctx, detail); err != nil {
			return nil, fmt.Errorf("create payment detail: %w", err)
		}
	}

	s.logger.Info("donation status changed",
		"donation_id", id,
		"campaign_id", d.CampaignID,
		"from", string(prev),
		"to", string(next))
	return updated, nil
}

func directPaymentDetail(status model.DonationStatus, transactionID *string) *model.PaymentDetail {
	meta := map[string]any{"status": strings.ToLower(string(status))}
	if transactionID != nil {
		meta["transactionId"] = *transactionID
	}
	return &model.PaymentDetail{Provider: model.ProviderDirect, Metadata: meta}
}

func (s *donationService) GetByID(ctx context.Context, id string) (*model.Donation, error) {
	return s.donations.GetByID(ctx, id)
}

func (s *donationService) ListByCampaign(ctx context.Context, campaignID string) ([]*model.Donation, error) {
	if _, err := s.campaigns.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.donations.ListByCampaign(ctx, campaignID)
}
