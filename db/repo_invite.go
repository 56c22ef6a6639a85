package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MPfria02/Library-Management-System-sub001/models"

	"gorm.io/gorm"
)

func (r *Repo) CreateInvite(ctx context.Context, inv *models.Invite) error {
	return r.DB.WithContext(ctx).Create(inv).Error
}

func (r *Repo) FindInviteByToken(ctx context.Context, token string) (*models.Invite, error) {
	var inv models.Invite
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// ConsumeInvite 核销邀请：未用且未过期才核得动，条件写在 UPDATE 里，
// 同一 token 并发注册只有一个成功。
func (r *Repo) ConsumeInvite(ctx context.Context, token string, now time.Time) (*models.Invite, error) {
	res := r.DB.WithContext(ctx).Model(&models.Invite{}).
		Where("token = ? AND used_at IS NULL AND expires_at > ?", token, now).
		Update("used_at", &now)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.FindInviteByToken(ctx, token); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrInviteNotUsable, token)
	}
	return r.FindInviteByToken(ctx, token)
}

func (r *Repo) ListInvites(ctx context.Context) ([]models.Invite, error) {
	var invs []models.Invite
	err := r.DB.WithContext(ctx).Order("created_at DESC").Limit(200).Find(&invs).Error
	return invs, err
}
