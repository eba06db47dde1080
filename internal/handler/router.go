package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/justinas/alice"

	"github.com/masjidnetwork/backend/internal/model"
	"github.com/masjidnetwork/backend/internal/repository"
	"github.com/masjidnetwork/backend/pkg/auth"
)

// RouterConfig holds the auth and CORS settings of the router.
type RouterConfig struct {
	FrontendURL   string
	SessionSecret []byte
	// AuthRequired=false では DevAuth を使い、管理者ロールも付与する
	AuthRequired bool
	RoleLookup   auth.RoleLookup
}

// Handlers groups the endpoint handlers mounted by NewRouter.
type Handlers struct {
	Base      *Handler
	Campaigns *CampaignHandler
	Donations *DonationHandler
	Payments  *PaymentHandler
}

// UserRoleLookup resolves a caller's role from the users table.
func UserRoleLookup(users repository.UserRepository) auth.RoleLookup {
	return func(ctx context.Context, userID string) (string, error) {
		u, err := users.FindByID(ctx, userID)
		if err != nil {
			return "", err
		}
		if !u.IsActive {
			return "", nil
		}
		return string(u.Role), nil
	}
}

// NewRouter registers every route and wraps the mux in the common middleware.
func NewRouter(cfg RouterConfig, hs Handlers, rl *RateLimiter, logger *slog.Logger) http.Handler {
	requireAuth := auth.DevAuth
	optionalAuth := auth.DevAuth
	lookup := cfg.RoleLookup
	if cfg.AuthRequired {
		requireAuth = auth.RequireAuth(cfg.SessionSecret)
		optionalAuth = auth.OptionalAuth(cfg.SessionSecret)
	} else {
		lookup = func(context.Context, string) (string, error) {
			return string(model.RoleSuperAdmin), nil
		}
	}

	authed := alice.New(requireAuth)
	optional := alice.New(optionalAuth)
	admin := alice.New(
		requireAuth,
		auth.RoleMiddleware(lookup),
		auth.RequireRole(string(model.RoleAdmin), string(model.RoleSuperAdmin)),
	)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", hs.Base.Health)

	// キャンペーン API（参照は認証不要）
	mux.HandleFunc("GET /api/campaigns", hs.Campaigns.List)
	mux.HandleFunc("GET /api/campaigns/{id}", hs.Campaigns.Get)
	mux.HandleFunc("GET /api/masjids/{masjidId}/campaigns", hs.Campaigns.ListByMasjid)
	mux.Handle("POST /api/campaigns", authed.ThenFunc(hs.Campaigns.Create))
	mux.Handle("PATCH /api/campaigns/{id}", authed.ThenFunc(hs.Campaigns.Update))
	mux.Handle("DELETE /api/campaigns/{id}", authed.ThenFunc(hs.Campaigns.Delete))

	// 寄付 API（一覧は寄付者情報を含むため認証必須）
	mux.Handle("GET /api/campaigns/{id}/donations", authed.ThenFunc(hs.Donations.ListByCampaign))
	mux.Handle("POST /api/campaigns/{id}/donations", optional.ThenFunc(hs.Donations.Create))
	mux.HandleFunc("GET /api/donations/{id}", hs.Donations.Get)
	mux.Handle("PATCH /api/donations/{id}/status", admin.ThenFunc(hs.Donations.UpdateStatus))

	// 決済 API（webhook は署名で保護）
	mux.Handle("POST /api/payments/create-intent", optional.ThenFunc(hs.Payments.CreateIntent))
	mux.HandleFunc("POST /api/payments/confirm-intent/{paymentIntentId}/{donationId}", hs.Payments.ConfirmIntent)
	mux.HandleFunc("POST /api/payments/webhook", hs.Payments.Webhook)
	mux.Handle("GET /api/payments/details", admin.ThenFunc(hs.Payments.ListDetails))
	mux.Handle("GET /api/payments/details/{id}", admin.ThenFunc(hs.Payments.GetDetail))
	mux.Handle("GET /api/payments/details/donation/{donationId}", authed.ThenFunc(hs.Payments.GetDetailByDonation))
	mux.Handle("PATCH /api/payments/details/{id}", admin.ThenFunc(hs.Payments.PatchDetail))

	return alice.New(
		RequestLogger(logger),
		SecurityHeaders,
		CORS(cfg.FrontendURL),
		rl.Middleware,
	).Then(mux)
}
