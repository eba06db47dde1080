package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/masjidnetwork/backend/internal/model"
	"github.com/masjidnetwork/backend/internal/service"
	"github.com/masjidnetwork/backend/pkg/auth"
)

// CampaignHandler handles campaign endpoints.
type CampaignHandler struct {
	svc    service.CampaignService
	logger *slog.Logger
}

// NewCampaignHandler creates a CampaignHandler.
func NewCampaignHandler(svc service.CampaignService, logger *slog.Logger) *CampaignHandler {
	return &CampaignHandler{svc: svc, logger: logger}
}

type campaignCreateRequest struct {
	MasjidID      string       `json:"masjid_id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	Goal          model.Amount `json:"goal"`
	StartDate     *time.Time   `json:"start_date"`
	EndDate       *time.Time   `json:"end_date"`
	IsActive      *bool        `json:"is_active"`
	CoverImageURL string       `json:"cover_image_url"`
}

type campaignPatchRequest struct {
	Title         *string       `json:"title"`
	Description   *string       `json:"description"`
	Goal          *model.Amount `json:"goal"`
	StartDate     *time.Time    `json:"start_date"`
	EndDate       *time.Time    `json:"end_date"`
	IsActive      *bool         `json:"is_active"`
	CoverImageURL *string       `json:"cover_image_url"`
}

func campaignList(list []*model.Campaign) map[string]any {
	if list == nil {
		list = []*model.Campaign{}
	}
	return map[string]any{"campaigns": list}
}

// List handles GET /api/campaigns[?active=true].
func (h *CampaignHandler) List(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	list, err := h.svc.List(r.Context(), activeOnly)
	if err != nil {
		writeServiceError(w, h.logger, err, "list_failed")
		return
	}
	writeJSON(w, http.StatusOK, campaignList(list))
}

// ListByMasjid handles GET /api/masjids/{masjidId}/campaigns.
func (h *CampaignHandler) ListByMasjid(w http.ResponseWriter, r *http.Request) {
	masjidID := r.PathValue("masjidId")
	list, err := h.svc.ListByMasjid(r.Context(), masjidID)
	if err != nil {
		writeServiceError(w, h.logger, err, "list_failed", "masjid_id", masjidID)
		return
	}
	writeJSON(w, http.StatusOK, campaignList(list))
}

// Get handles GET /api/campaigns/{id}.
func (h *CampaignHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	c, err := h.svc.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, h.logger, err, "get_failed", "campaign_id", id)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Create handles POST /api/campaigns (auth required).
func (h *CampaignHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var req campaignCreateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c := &model.Campaign{
		MasjidID:      req.MasjidID,
		Title:         req.Title,
		Description:   req.Description,
		Goal:          req.Goal,
		StartDate:     time.Now().UTC(),
		EndDate:       req.EndDate,
		IsActive:      true,
		CoverImageURL: req.CoverImageURL,
	}
	if req.StartDate != nil {
		c.StartDate = *req.StartDate
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}

	if err := h.svc.Create(r.Context(), userID, c); err != nil {
		writeServiceError(w, h.logger, err, "create_failed", "user_id", userID)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// Update handles PATCH /api/campaigns/{id} (auth required).
func (h *CampaignHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	id := r.PathValue("id")

	var req campaignPatchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	patch := model.CampaignPatch{
		Title:         req.Title,
		Description:   req.Description,
		Goal:          req.Goal,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		IsActive:      req.IsActive,
		CoverImageURL: req.CoverImageURL,
	}
	c, err := h.svc.Update(r.Context(), userID, id, patch)
	if err != nil {
		writeServiceError(w, h.logger, err, "update_failed", "campaign_id", id)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /api/campaigns/{id} (auth required).
func (h *CampaignHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}
	id := r.PathValue("id")

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, h.logger, err, "delete_failed", "campaign_id", id)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
