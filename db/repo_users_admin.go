// db/repo_users_admin.go
package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/MPfria02/Library-Management-System-sub001/models"

	"gorm.io/gorm"
)

// SetUserRole 改角色。把最后一个管理员降级会让系统没人能管，
// 整个判定放进事务里做。
func (r *Repo) SetUserRole(ctx context.Context, userID string, role models.Role) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
			}
			return err
		}
		if u.Role == models.RoleAdmin && role != models.RoleAdmin {
			var n int64
			if err := tx.Model(&models.User{}).
				Where("role = ?", models.RoleAdmin).
				Count(&n).Error; err != nil {
				return err
			}
			if n <= 1 {
				return ErrLastAdmin
			}
		}
		if err := tx.Model(&models.User{}).
			Where("id = ?", userID).
			Update("role", role).Error; err != nil {
			return err
		}
		u.Role = role
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", models.RoleAdmin).
		Count(&n).Error
	return n, err
}
