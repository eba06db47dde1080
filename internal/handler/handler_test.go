package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/masjidnetwork/backend/internal/model"
	"github.com/masjidnetwork/backend/internal/service"
	"github.com/masjidnetwork/backend/pkg/auth"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// helper: request carrying an authenticated user
func userAuthRequest(method, url, body string) *http.Request {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, url, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, url, nil)
	}
	r.Header.Set("Content-Type", "application/json")
	return r.WithContext(auth.WithUserID(r.Context(), "user-1"))
}

// ---------------------------------------------------------------------------
// Mock CampaignService
// ---------------------------------------------------------------------------

type mockCampaignService struct {
	listFunc         func(ctx context.Context, activeOnly bool) ([]*model.Campaign, error)
	listByMasjidFunc func(ctx context.Context, masjidID string) ([]*model.Campaign, error)
	getByIDFunc      func(ctx context.Context, id string) (*model.Campaign, error)
	createFunc       func(ctx context.Context, userID string, c *model.Campaign) error
	updateFunc       func(ctx context.Context, userID, id string, patch model.CampaignPatch) (*model.Campaign, error)
	deleteFunc       func(ctx context.Context, userID, id string) error
}

func (m *mockCampaignService) List(ctx context.Context, activeOnly bool) ([]*model.Campaign, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, activeOnly)
	}
	return nil, nil
}
func (m *mockCampaignService) ListByMasjid(ctx context.Context, masjidID string) ([]*model.Campaign, error) {
	if m.listByMasjidFunc != nil {
		return m.listByMasjidFunc(ctx, masjidID)
	}
	return nil, nil
}
func (m *mockCampaignService) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Campaign{ID: id}, nil
}
func (m *mockCampaignService) Create(ctx context.Context, userID string, c *model.Campaign) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, c)
	}
	return nil
}
func (m *mockCampaignService) Update(ctx context.Context, userID, id string, patch model.CampaignPatch) (*model.Campaign, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, userID, id, patch)
	}
	return &model.Campaign{ID: id}, nil
}
func (m *mockCampaignService) Delete(ctx context.Context, userID, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, userID, id)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mock DonationService
// ---------------------------------------------------------------------------

type mockDonationService struct {
	createDonationFunc func(ctx context.Context, in model.DonationInput) (*model.Donation, error)
	updateStatusFunc   func(ctx context.Context, id string, status model.DonationStatus, transactionID *string) (*model.Donation, error)
	getByIDFunc        func(ctx context.Context, id string) (*model.Donation, error)
	listByCampaignFunc func(ctx context.Context, campaignID string) ([]*model.Donation, error)
}

func (m *mockDonationService) CreateDonation(ctx context.Context, in model.DonationInput) (*model.Donation, error) {
	if m.createDonationFunc != nil {
		return m.createDonationFunc(ctx, in)
	}
	return &model.Donation{ID: "d1", CampaignID: in.CampaignID, Amount: in.Amount, Status: model.DonationCompleted}, nil
}
func (m *mockDonationService) CreatePending(_ context.Context, in model.DonationInput) (*model.Donation, error) {
	return &model.Donation{ID: "d1", CampaignID: in.CampaignID, Amount: in.Amount, Status: model.DonationPending}, nil
}
func (m *mockDonationService) UpdateDonationStatus(ctx context.Context, id string, status model.DonationStatus, transactionID *string) (*model.Donation, error) {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, transactionID)
	}
	return &model.Donation{ID: id, Status: status}, nil
}
func (m *mockDonationService) Transition(ctx context.Context, id string, status model.DonationStatus, transactionID *string, _ *model.PaymentDetail) (*model.Donation, error) {
	return m.UpdateDonationStatus(ctx, id, status, transactionID)
}
func (m *mockDonationService) GetByID(ctx context.Context, id string) (*model.Donation, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &model.Donation{ID: id}, nil
}
func (m *mockDonationService) ListByCampaign(ctx context.Context, campaignID string) ([]*model.Donation, error) {
	if m.listByCampaignFunc != nil {
		return m.listByCampaignFunc(ctx, campaignID)
	}
	return nil, nil
}

// ---------------------------------------------------------------------------
// Mock PaymentService
// ---------------------------------------------------------------------------

type mockPaymentService struct {
	createIntentFunc  func(ctx context.Context, in model.DonationInput) (*model.PaymentIntent, error)
	confirmIntentFunc func(ctx context.Context, intentID, donationID string) (*model.Donation, error)
	handleWebhookFunc func(ctx context.Context, payload []byte, sigHeader string) error
	listDetailsFunc   func(ctx context.Context) ([]*model.PaymentDetail, error)
	getDetailFunc     func(ctx context.Context, id string) (*model.PaymentDetail, error)
	patchDetailFunc   func(ctx context.Context, id string, patch model.PaymentDetailPatch) (*model.PaymentDetail, error)
}

func (m *mockPaymentService) CreatePaymentIntent(ctx context.Context, in model.DonationInput) (*model.PaymentIntent, error) {
	if m.createIntentFunc != nil {
		return m.createIntentFunc(ctx, in)
	}
	return &model.PaymentIntent{PaymentIntentID: "pi_1", ClientSecret: "pi_1_secret_x", DonationID: "d1"}, nil
}
func (m *mockPaymentService) ConfirmPaymentIntent(ctx context.Context, intentID, donationID string) (*model.Donation, error) {
	if m.confirmIntentFunc != nil {
		return m.confirmIntentFunc(ctx, intentID, donationID)
	}
	return &model.Donation{ID: donationID, Status: model.DonationCompleted, TransactionID: &intentID}, nil
}
func (m *mockPaymentService) FailPaymentIntent(_ context.Context, intentID, donationID string) (*model.Donation, error) {
	return &model.Donation{ID: donationID, Status: model.DonationFailed, TransactionID: &intentID}, nil
}
func (m *mockPaymentService) HandleWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	if m.handleWebhookFunc != nil {
		return m.handleWebhookFunc(ctx, payload, sigHeader)
	}
	return nil
}
func (m *mockPaymentService) ListDetails(ctx context.Context) ([]*model.PaymentDetail, error) {
	if m.listDetailsFunc != nil {
		return m.listDetailsFunc(ctx)
	}
	return nil, nil
}
func (m *mockPaymentService) GetDetail(ctx context.Context, id string) (*model.PaymentDetail, error) {
	if m.getDetailFunc != nil {
		return m.getDetailFunc(ctx, id)
	}
	return &model.PaymentDetail{ID: id}, nil
}
func (m *mockPaymentService) GetDetailByDonation(_ context.Context, donationID string) (*model.PaymentDetail, error) {
	return &model.PaymentDetail{ID: "pd1", DonationID: donationID}, nil
}
func (m *mockPaymentService) PatchDetail(ctx context.Context, id string, patch model.PaymentDetailPatch) (*model.PaymentDetail, error) {
	if m.patchDetailFunc != nil {
		return m.patchDetailFunc(ctx, id, patch)
	}
	return &model.PaymentDetail{ID: id}, nil
}

var (
	_ service.CampaignService = (*mockCampaignService)(nil)
	_ service.DonationService = (*mockDonationService)(nil)
	_ service.PaymentService  = (*mockPaymentService)(nil)
)
