package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/masjidnetwork/backend/internal/model"
)

// PgCampaignRepository は CampaignRepository の PostgreSQL 実装
type PgCampaignRepository struct {
	pool *pgxpool.Pool
}

// NewPgCampaignRepository は PgCampaignRepository を生成する
func NewPgCampaignRepository(pool *pgxpool.Pool) *PgCampaignRepository {
	return &PgCampaignRepository{pool: pool}
}

const campaignSelect = `SELECT c.id, c.masjid_id, c.title, c.description, c.goal, c.raised,
	c.start_date, c.end_date, c.is_active, COALESCE(c.cover_image_url, ''),
	c.created_at, c.updated_at, m.id, m.name, COALESCE(m.logo_url, '')
	FROM campaigns c
	JOIN masjids m ON m.id = c.masjid_id`

func scanCampaign(scan func(...any) error) (*model.Campaign, error) {
	c := &model.Campaign{}
	m := &model.MasjidSummary{}
	if err := scan(
		&c.ID, &c.MasjidID, &c.Title, &c.Description,
		(*int64)(&c.Goal), (*int64)(&c.Raised),
		&c.StartDate, &c.EndDate, &c.IsActive, &c.CoverImageURL,
		&c.CreatedAt, &c.UpdatedAt, &m.ID, &m.Name, &m.LogoURL,
	); err != nil {
		return nil, err
	}
	c.Masjid = m
	return c, nil
}

func collectCampaigns(rows pgx.Rows) ([]*model.Campaign, error) {
	defer rows.Close()
	var list []*model.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows.Scan)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// List は キャンペーン一覧を取得する。activeOnly の場合は is_active のみ
func (r *PgCampaignRepository) List(ctx context.Context, activeOnly bool) ([]*model.Campaign, error) {
	query := campaignSelect
	if activeOnly {
		query += ` WHERE c.is_active`
	}
	rows, err := conn(ctx, r.pool).Query(ctx, query+` ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, err
	}
	return collectCampaigns(rows)
}

// ListByMasjid はマスジド ID でキャンペーン一覧を取得する
func (r *PgCampaignRepository) ListByMasjid(ctx context.Context, masjidID string) ([]*model.Campaign, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		campaignSelect+` WHERE c.masjid_id = $1 ORDER BY c.created_at DESC`, masjidID)
	if err != nil {
		return nil, err
	}
	return collectCampaigns(rows)
}

// GetByID は ID でキャンペーンを取得する
func (r *PgCampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, campaignSelect+` WHERE c.id = $1`, id)
	c, err := scanCampaign(row.Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// Create はキャンペーンを作成する。raised は常に 0 から始まる
func (r *PgCampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	c.Raised = 0
	return conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO campaigns
		 (masjid_id, title, description, goal, raised, start_date, end_date, is_active, cover_image_url)
		 VALUES ($1, $2, $3, $4, 0, $5, $6, $7, NULLIF($8, ''))
		 RETURNING id, created_at, updated_at`,
		c.MasjidID, c.Title, c.Description, int64(c.Goal),
		c.StartDate, c.EndDate, c.IsActive, c.CoverImageURL,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// Patch applies partial updates. raised is deliberately not patchable.
func (r *PgCampaignRepository) Patch(ctx context.Context, id string, patch model.CampaignPatch) (*model.Campaign, error) {
	setClauses := []string{}
	args := []any{}
	argIdx := 1
	set := func(col string, v any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", col, argIdx))
		args = append(args, v)
		argIdx++
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Goal != nil {
		set("goal", int64(*patch.Goal))
	}
	if patch.StartDate != nil {
		set("start_date", *patch.StartDate)
	}
	if patch.EndDate != nil {
		set("end_date", *patch.EndDate)
	}
	if patch.IsActive != nil {
		set("is_active", *patch.IsActive)
	}
	if patch.CoverImageURL != nil {
		setClauses = append(setClauses, fmt.Sprintf("cover_image_url = NULLIF($%d, '')", argIdx))
		args = append(args, *patch.CoverImageURL)
		argIdx++
	}

	if len(setClauses) > 0 {
		setClauses = append(setClauses, "updated_at = NOW()")
		args = append(args, id)
		query := fmt.Sprintf("UPDATE campaigns SET %s WHERE id = $%d",
			strings.Join(setClauses, ", "), argIdx)
		tag, err := conn(ctx, r.pool).Exec(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		if tag.RowsAffected() == 0 {
			return nil, ErrNotFound
		}
	}
	return r.GetByID(ctx, id)
}

// Delete はキャンペーンを物理削除する
func (r *PgCampaignRepository) Delete(ctx context.Context, id string) error {
	tag, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ApplyRaisedDelta locks the campaign row, then writes GREATEST(0, raised + delta)
// in the same statement so concurrent completions cannot lose an update.
func (r *PgCampaignRepository) ApplyRaisedDelta(ctx context.Context, id string, delta model.Amount) (model.Amount, model.Amount, error) {
	var raised, unclamped int64
	err := conn(ctx, r.pool).QueryRow(ctx,
		`WITH prev AS (
		   SELECT raised FROM campaigns WHERE id = $1 FOR UPDATE
		 )
		 UPDATE campaigns c
		 SET raised = GREATEST(0, prev.raised + $2), updated_at = NOW()
		 FROM prev
		 WHERE c.id = $1
		 RETURNING c.raised, prev.raised + $2`,
		id, int64(delta),
	).Scan(&raised, &unclamped)
	if err != nil {
		return 0, 0, notFound(err)
	}
	return model.Amount(raised), model.Amount(unclamped), nil
}
