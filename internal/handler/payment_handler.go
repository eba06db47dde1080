package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/masjidnetwork/backend/internal/model"
	"github.com/masjidnetwork/backend/internal/service"
)

// SignatureHeader is the webhook signature header set by the gateway.
const SignatureHeader = "Stripe-Signature"

// PaymentHandler handles the payment-intent flow, the gateway webhook and payment details.
type PaymentHandler struct {
	svc    service.PaymentService
	logger *slog.Logger
}

// NewPaymentHandler creates a PaymentHandler.
func NewPaymentHandler(svc service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, logger: logger}
}

type createIntentRequest struct {
	CampaignID    string       `json:"campaign_id"`
	Amount        model.Amount `json:"amount"`
	PaymentMethod string       `json:"payment_method"`
	IsAnonymous   bool         `json:"is_anonymous"`
	Message       *string      `json:"message"`
}

type paymentDetailPatchRequest struct {
	Provider        *string        `json:"provider"`
	PaymentMethodID *string        `json:"payment_method_id"`
	ReceiptURL      *string        `json:"receipt_url"`
	Metadata        map[string]any `json:"metadata"`
}

// CreateIntent handles POST /api/payments/create-intent (auth optional).
func (h *PaymentHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req createIntentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "card"
	}

	intent, err := h.svc.CreatePaymentIntent(r.Context(), model.DonationInput{
		CampaignID:    req.CampaignID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		DonorID:       donorID(r),
		IsAnonymous:   req.IsAnonymous,
		Message:       req.Message,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "create_intent_failed", "campaign_id", req.CampaignID)
		return
	}
	writeJSON(w, http.StatusCreated, intent)
}

// ConfirmIntent handles POST /api/payments/confirm-intent/{paymentIntentId}/{donationId}.
func (h *PaymentHandler) ConfirmIntent(w http.ResponseWriter, r *http.Request) {
	intentID := r.PathValue("paymentIntentId")
	donationID := r.PathValue("donationId")

	d, err := h.svc.ConfirmPaymentIntent(r.Context(), intentID, donationID)
	if err != nil {
		writeServiceError(w, h.logger, err, "confirm_failed", "payment_intent_id", intentID, "donation_id", donationID)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Webhook handles POST /api/payments/webhook.
// 署名検証後にイベント種別ごとに確定・失敗処理へ振り分ける。
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	sigHeader := r.Header.Get(SignatureHeader)
	if sigHeader == "" {
		writeError(w, http.StatusBadRequest, "missing_signature", "")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read_body_failed", "")
		return
	}

	if err := h.svc.HandleWebhook(r.Context(), payload, sigHeader); err != nil {
		if errors.Is(err, service.ErrBadRequest) {
			h.logger.Warn("webhook rejected", "error", err)
			writeError(w, http.StatusBadRequest, "signature_verification_failed", "")
			return
		}
		h.logger.Error("webhook processing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "webhook_processing_failed", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// ListDetails handles GET /api/payments/details (admin only).
func (h *PaymentHandler) ListDetails(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ListDetails(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err, "list_failed")
		return
	}
	if list == nil {
		list = []*model.PaymentDetail{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"payment_details": list})
}

// GetDetail handles GET /api/payments/details/{id} (admin only).
func (h *PaymentHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, err := h.svc.GetDetail(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "get_failed", "payment_detail_id", id)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// GetDetailByDonation handles GET /api/payments/details/donation/{donationId}.
func (h *PaymentHandler) GetDetailByDonation(w http.ResponseWriter, r *http.Request) {
	donationID := r.PathValue("donationId")
	p, err := h.svc.GetDetailByDonation(r.Context(), donationID)
	if err != nil {
		writeServiceError(w, h.logger, err, "get_failed", "donation_id", donationID)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PatchDetail handles PATCH /api/payments/details/{id} (admin only).
func (h *PaymentHandler) PatchDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req paymentDetailPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.svc.PatchDetail(r.Context(), id, model.PaymentDetailPatch{
		Provider:        req.Provider,
		PaymentMethodID: req.PaymentMethodID,
		ReceiptURL:      req.ReceiptURL,
		Metadata:        req.Metadata,
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "patch_failed", "payment_detail_id", id)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
