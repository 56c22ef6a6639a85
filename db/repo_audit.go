package db

import (
	"context"
	"fmt"

	"github.com/MPfria02/Library-Management-System-sub001/models"
)

func (r *Repo) AppendAudit(ctx context.Context, e *models.AuditLog) error {
	if err := r.DB.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

func (r *Repo) ListAudit(ctx context.Context, page, size int) ([]models.AuditLog, int64, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 200 {
		size = 50
	}

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []models.AuditLog
	err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * size).
		Limit(size).
		Find(&logs).Error
	return logs, total, err
}
