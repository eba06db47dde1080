package repository

import (
	"context"

	"github.com/masjidnetwork/backend/internal/model"
)

// DB は DB 接続の生存確認を行うインターフェース
type DB interface {
	Ping(ctx context.Context) error
}

// UserRepository はユーザー参照のインターフェース
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// MasjidRepository provides masjid lookups and the admin permission check.
type MasjidRepository interface {
	GetByID(ctx context.Context, id string) (*model.Masjid, error)
	// IsMasjidAdmin reports whether userID is an administrator of masjidID.
	IsMasjidAdmin(ctx context.Context, userID, masjidID string) (bool, error)
}
