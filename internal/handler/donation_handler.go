package handler

import (
	"log/slog"
	"net/http"

	"github.com/masjidnetwork/backend/internal/model"
	"github.com/masjidnetwork/backend/internal/service"
	"github.com/masjidnetwork/backend/pkg/auth"
)

// DonationHandler handles donation endpoints.
type DonationHandler struct {
	svc    service.DonationService
	logger *slog.Logger
}

// NewDonationHandler creates a DonationHandler.
func NewDonationHandler(svc service.DonationService, logger *slog.Logger) *DonationHandler {
	return &DonationHandler{svc: svc, logger: logger}
}

type donationCreateRequest struct {
	Amount        model.Amount `json:"amount"`
	PaymentMethod string       `json:"payment_method"`
	IsAnonymous   bool         `json:"is_anonymous"`
	Message       *string      `json:"message"`
}

type donationStatusRequest struct {
	Status        model.DonationStatus `json:"status"`
	TransactionID *string              `json:"transaction_id"`
}

// donorID returns the authenticated caller, or nil for guests.
func donorID(r *http.Request) *string {
	if userID, ok := auth.UserIDFromContext(r.Context()); ok && userID != "" {
		return &userID
	}
	return nil
}

// publicDonation hides the donor of anonymous donations.
func publicDonation(d *model.Donation) *model.Donation {
	if !d.IsAnonymous || d.UserID == nil {
		return d
	}
	cp := *d
	cp.UserID = nil
	return &cp
}

// ListByCampaign handles GET /api/campaigns/{id}/donations.
func (h *DonationHandler) ListByCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("id")
	list, err := h.svc.ListByCampaign(r.Context(), campaignID)
	if err != nil {
		writeServiceError(w, h.logger, err, "list_failed", "campaign_id", campaignID)
		return
	}
	out := make([]*model.Donation, 0, len(list))
	for _, d := range list {
		out = append(out, publicDonation(d))
	}
	writeJSON(w, http.StatusOK, map[string]any{"donations": out})
}

// Create handles POST /api/campaigns/{id}/donations (auth optional).
// The donation is completed immediately.
func (h *DonationHandler) Create(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("id")

	var req donationCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := h.svc.CreateDonation(r.Context(), model.DonationInput{
		CampaignID:    campaignID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		DonorID:       donorID(r),
		IsAnonymous:   req.IsAnonymous,
		Message:       req.Message,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "create_failed", "campaign_id", campaignID)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// Get handles GET /api/donations/{id}.
func (h *DonationHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	d, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "get_failed", "donation_id", id)
		return
	}
	writeJSON(w, http.StatusOK, publicDonation(d))
}

// UpdateStatus handles PATCH /api/donations/{id}/status (admin only).
func (h *DonationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req donationStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	d, err := h.svc.UpdateDonationStatus(r.Context(), id, req.Status, req.TransactionID)
	if err != nil {
		writeServiceError(w, h.logger, err, "update_failed", "donation_id", id)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
