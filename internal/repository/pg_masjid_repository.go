package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/masjidnetwork/backend/internal/model"
)

// PgMasjidRepository は MasjidRepository の PostgreSQL 実装
type PgMasjidRepository struct {
	pool *pgxpool.Pool
}

// NewPgMasjidRepository は PgMasjidRepository を生成する
func NewPgMasjidRepository(pool *pgxpool.Pool) *PgMasjidRepository {
	return &PgMasjidRepository{pool: pool}
}

// GetByID は ID でマスジドを取得する
func (r *PgMasjidRepository) GetByID(ctx context.Context, id string) (*model.Masjid, error) {
	var m model.Masjid
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, COALESCE(logo_url, ''), created_at, updated_at FROM masjids WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.LogoURL, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// IsMasjidAdmin は userID が masjidID の管理者かどうかを返す
func (r *PgMasjidRepository) IsMasjidAdmin(ctx context.Context, userID, masjidID string) (bool, error) {
	var exists bool
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM masjid_admins WHERE user_id = $1 AND masjid_id = $2)`,
		userID, masjidID,
	).Scan(&exists)
	return exists, err
}
