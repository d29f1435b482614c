package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/supplesafe-backend/internal/domain"
	"github.com/yungbote/supplesafe-backend/internal/pkg/dbctx"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
)

type UserTokenRepo interface {
	Create(dbc dbctx.Context, userTokens []*domain.UserToken) ([]*domain.UserToken, error)
	GetByAccessTokens(dbc dbctx.Context, accessTokens []string) ([]*domain.UserToken, error)
	RevokeByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID, at time.Time) error
	DeleteExpired(dbc dbctx.Context, before time.Time) (int64, error)
}

type userTokenRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	repoLog := baseLog.With("repo", "UserTokenRepo")
	return &userTokenRepo{db: db, log: repoLog}
}

func (utr *userTokenRepo) Create(dbc dbctx.Context, userTokens []*domain.UserToken) ([]*domain.UserToken, error) {
	if len(userTokens) == 0 {
		return []*domain.UserToken{}, nil
	}
	if err := dbc.Conn(utr.db).Create(&userTokens).Error; err != nil {
		return nil, err
	}
	return userTokens, nil
}

func (utr *userTokenRepo) GetByAccessTokens(dbc dbctx.Context, accessTokens []string) ([]*domain.UserToken, error) {
	var results []*domain.UserToken
	if len(accessTokens) == 0 {
		return results, nil
	}
	if err := dbc.Conn(utr.db).
		Where("access_token IN ?", accessTokens).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (utr *userTokenRepo) RevokeByIDs(dbc dbctx.Context, tokenIDs []uuid.UUID, at time.Time) error {
	if len(tokenIDs) == 0 {
		return nil
	}
	return dbc.Conn(utr.db).
		Model(&domain.UserToken{}).
		Where("id IN ? AND revoked_at IS NULL", tokenIDs).
		Update("revoked_at", at).Error
}

func (utr *userTokenRepo) DeleteExpired(dbc dbctx.Context, before time.Time) (int64, error) {
	res := dbc.Conn(utr.db).
		Where("expires_at < ?", before).
		Delete(&domain.UserToken{})
	return res.RowsAffected, res.Error
}
