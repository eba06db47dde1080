package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/masjidnetwork/backend/internal/model"
	"github.com/masjidnetwork/backend/internal/repository"
	"github.com/masjidnetwork/backend/pkg/gateway"
)

// Simulated payment method ids recorded on STRIPE payment details.
const (
	simulatedPaymentMethodID = "pm_simulated"
	failedPaymentMethodID    = "pm_failed"
)

// PaymentDonationLifecycle は PaymentService が寄付の状態遷移に使うミニマムインターフェース
type PaymentDonationLifecycle interface {
	CreatePending(ctx context.Context, in model.DonationInput) (*model.Donation, error)
	Transition(ctx context.Context, id string, status model.DonationStatus, transactionID *string, detail *model.PaymentDetail) (*model.Donation, error)
}

// PaymentService runs the simulated payment-intent handshake and serves payment details.
type PaymentService interface {
	// CreatePaymentIntent opens an intent and its PENDING donation. No ledger effect.
	CreatePaymentIntent(ctx context.Context, in model.DonationInput) (*model.PaymentIntent, error)
	// ConfirmPaymentIntent completes the donation with transaction id = intentID.
	ConfirmPaymentIntent(ctx context.Context, intentID, donationID string) (*model.Donation, error)
	// FailPaymentIntent marks the donation FAILED with transaction id = intentID.
	FailPaymentIntent(ctx context.Context, intentID, donationID string) (*model.Donation, error)
	// HandleWebhook verifies the signature and dispatches on the event type.
	HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error

	ListDetails(ctx context.Context) ([]*model.PaymentDetail, error)
	GetDetail(ctx context.Context, id string) (*model.PaymentDetail, error)
	GetDetailByDonation(ctx context.Context, donationID string) (*model.PaymentDetail, error)
	PatchDetail(ctx context.Context, id string, patch model.PaymentDetailPatch) (*model.PaymentDetail, error)
}

type paymentService struct {
	gateway   gateway.Client
	donations PaymentDonationLifecycle
	campaigns DonationCampaignRepo
	details   repository.PaymentDetailRepository
	events    repository.WebhookEventStore // optional, nil = no dedupe
	logger    *slog.Logger
}

// NewPaymentService creates a PaymentService. events can be nil to dispatch every webhook delivery.
func NewPaymentService(
	client gateway.Client,
	donations PaymentDonationLifecycle,
	campaigns DonationCampaignRepo,
	details repository.PaymentDetailRepository,
	events repository.WebhookEventStore,
	logger *slog.Logger,
) PaymentService {
	return &paymentService{
		gateway:   client,
		donations: donations,
		campaigns: campaigns,
		details:   details,
		events:    events,
		logger:    logger,
	}
}

func (s *paymentService) CreatePaymentIntent(ctx context.Context, in model.DonationInput) (*model.PaymentIntent, error) {
	if err := validateDonationInput(in); err != nil {
		return nil, err
	}
	c, err := s.campaigns.GetByID(ctx, in.CampaignID)
	if err != nil {
		return nil, err
	}
	if !c.IsActive {
		return nil, fmt.Errorf("%w: campaign %s is not active", ErrBadRequest, c.ID)
	}

	// webhook が寄付を特定できるよう、先に PENDING を作って ID を metadata に載せる
	d, err := s.donations.CreatePending(ctx, in)
	if err != nil {
		return nil, err
	}
	intent, err := s.gateway.CreatePaymentIntent(ctx, int64(in.Amount), map[string]string{
		gateway.MetadataDonationID: d.ID,
		gateway.MetadataCampaignID: c.ID,
	})
	if err != nil {
		s.abandonPending(ctx, d.ID, err)
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	s.logger.Info("payment intent created", "payment_intent_id", intent.ID, "donation_id", d.ID, "campaign_id", c.ID)
	return &model.PaymentIntent{
		ClientSecret:    intent.ClientSecret,
		PaymentIntentID: intent.ID,
		DonationID:      d.ID,
	}, nil
}

// abandonPending marks a donation FAILED when its intent could not be opened.
func (s *paymentService) abandonPending(ctx context.Context, donationID string, cause error) {
	detail := &model.PaymentDetail{
		Provider: model.ProviderStripe,
		Metadata: map[string]any{"status": "failed", "error": cause.Error()},
	}
	if _, err := s.donations.Transition(ctx, donationID, model.DonationFailed, nil, detail); err != nil {
		s.logger.Error("payment intent: could not fail pending donation", "donation_id", donationID, "error", err)
	}
}

func (s *paymentService) ConfirmPaymentIntent(ctx context.Context, intentID, donationID string) (*model.Donation, error) {
	if intentID == "" || donationID == "" {
		return nil, fmt.Errorf("%w: payment intent id and donation id are required", ErrInvalidInput)
	}
	pm := simulatedPaymentMethodID
	receipt := s.gateway.ReceiptURL(intentID)
	detail := &model.PaymentDetail{
		Provider:        model.ProviderStripe,
		PaymentMethodID: &pm,
		ReceiptURL:      &receipt,
		Metadata:        map[string]any{"paymentIntent": intentID},
	}
	return s.donations.Transition(ctx, donationID, model.DonationCompleted, &intentID, detail)
}

func (s *paymentService) FailPaymentIntent(ctx context.Context, intentID, donationID string) (*model.Donation, error) {
	if intentID == "" || donationID == "" {
		return nil, fmt.Errorf("%w: payment intent id and donation id are required", ErrInvalidInput)
	}
	pm := failedPaymentMethodID
	detail := &model.PaymentDetail{
		Provider:        model.ProviderStripe,
		PaymentMethodID: &pm,
		Metadata:        map[string]any{"paymentIntent": intentID, "status": "failed"},
	}
	return s.donations.Transition(ctx, donationID, model.DonationFailed, &intentID, detail)
}

func (s *paymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	if sigHeader == "" {
		return fmt.Errorf("%w: missing signature header", ErrBadRequest)
	}
	if err := s.gateway.VerifyWebhookSignature(payload, sigHeader); err != nil {
		if errors.Is(err, gateway.ErrNotConfigured) {
			s.logger.Warn("webhook: secret not configured, event acknowledged without dispatch")
			return nil
		}
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	event, err := s.gateway.ParseWebhookEvent(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}

	if s.events != nil && event.ID != "" {
		first, err := s.events.MarkProcessed(ctx, event.ID)
		if err != nil {
			// ストア障害時も処理は続ける
			s.logger.Warn("webhook: dedupe store unavailable", "event_id", event.ID, "error", err)
		} else if !first {
			s.logger.Info("webhook: duplicate event skipped", "event_id", event.ID, "type", event.Type)
			return nil
		}
	}

	if err := s.dispatch(ctx, event); err != nil {
		if s.events != nil && event.ID != "" {
			if ferr := s.events.Forget(ctx, event.ID); ferr != nil {
				s.logger.Warn("webhook: forget event failed", "event_id", event.ID, "error", ferr)
			}
		}
		return err
	}
	return nil
}

func (s *paymentService) dispatch(ctx context.Context, event gateway.WebhookEvent) error {
	obj := event.Data.Object
	donationID := obj.Metadata[gateway.MetadataDonationID]

	var transition func(ctx context.Context, intentID, donationID string) (*model.Donation, error)
	switch event.Type {
	case gateway.EventPaymentIntentSucceeded:
		transition = s.ConfirmPaymentIntent
	case gateway.EventPaymentIntentFailed:
		transition = s.FailPaymentIntent
	default:
		s.logger.Debug("webhook: unhandled event type", "type", event.Type)
		return nil
	}

	if obj.ID == "" || donationID == "" {
		s.logger.Warn("webhook: event without payment intent or donation id", "event_id", event.ID, "type", event.Type)
		return nil
	}

	_, err := transition(ctx, obj.ID, donationID)
	switch {
	case err == nil:
		s.logger.Info("webhook: event processed", "event_id", event.ID, "type", event.Type, "donation_id", donationID)
		return nil
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, ErrInvalidTransition):
		// NotFound と不正遷移は受理扱い
		s.logger.Warn("webhook: event not applicable", "event_id", event.ID, "donation_id", donationID, "error", err)
		return nil
	default:
		return fmt.Errorf("webhook %s: %w", event.Type, err)
	}
}

func (s *paymentService) ListDetails(ctx context.Context) ([]*model.PaymentDetail, error) {
	return s.details.List(ctx)
}

func (s *paymentService) GetDetail(ctx context.Context, id string) (*model.PaymentDetail, error) {
	return s.details.GetByID(ctx, id)
}

func (s *paymentService) GetDetailByDonation(ctx context.Context, donationID string) (*model.PaymentDetail, error) {
	return s.details.GetByDonationID(ctx, donationID)
}

func (s *paymentService) PatchDetail(ctx context.Context, id string, patch model.PaymentDetailPatch) (*model.PaymentDetail, error) {
	if patch.Provider != nil && strings.TrimSpace(*patch.Provider) == "" {
		return nil, fmt.Errorf("%w: provider must not be empty", ErrInvalidInput)
	}
	return s.details.Patch(ctx, id, patch)
}
