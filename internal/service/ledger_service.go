package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/masjidnetwork/backend/internal/model"
)

// LedgerCampaignRepo は Ledger が必要とするキャンペーン操作のミニマムインターフェース
type LedgerCampaignRepo interface {
	ApplyRaisedDelta(ctx context.Context, id string, delta model.Amount) (raised, unclamped model.Amount, err error)
}

// Ledger keeps a campaign's raised total equal to the sum of its completed donations.
type Ledger interface {
	// ApplyRaisedDelta sets raised = max(0, raised + delta) atomically and returns
	// the stored total. A missing campaign yields repository.ErrNotFound.
	ApplyRaisedDelta(ctx context.Context, campaignID string, delta model.Amount) (model.Amount, error)
}

type ledgerService struct {
	repo   LedgerCampaignRepo
	logger *slog.Logger
}

// NewLedger creates a Ledger.
func NewLedger(repo LedgerCampaignRepo, logger *slog.Logger) Ledger {
	return &ledgerService{repo: repo, logger: logger}
}

func (l *ledgerService) ApplyRaisedDelta(ctx context.Context, campaignID string, delta model.Amount) (model.Amount, error) {
	raised, unclamped, err := l.repo.ApplyRaisedDelta(ctx, campaignID, delta)
	if err != nil {
		return 0, fmt.Errorf("apply raised delta: %w", err)
	}
	if unclamped < 0 {
		// 履歴が不整合でも表示用の合計は 0 で止める
		l.logger.Warn("ledger: raised clamped at zero",
			"campaign_id", campaignID,
			"delta", delta.String(),
			"unclamped", unclamped.String())
	}
	l.logger.Debug("ledger: raised updated", "campaign_id", campaignID, "delta", delta.String(), "raised", raised.String())
	return raised, nil
}
