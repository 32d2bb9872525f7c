package services

import (
	"context"

	"github.com/ycmovement/membership-api/internal/models"
	"github.com/ycmovement/membership-api/pkg/logger"
	"gorm.io/gorm"
)

// AuditService appends immutable audit entries. Entries are never updated or
// deleted; a failed write is logged but never fails the calling operation.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// Log records an audit entry
func (s *AuditService) Log(ctx context.Context, actor, actorType, action, details, ip, userAgent string) {
	entry := &models.AuditLog{
		Actor:     actor,
		ActorType: actorType,
		Action:    action,
		Details:   details,
		IPAddress: ip,
		UserAgent: userAgent,
	}
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		logger.Error("Failed to write audit log", "action", action, "actor", actor, "error", err)
	}
}

// List retrieves audit logs, newest first
func (s *AuditService) List(ctx context.Context, limit, offset int) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	if err := s.db.WithContext(ctx).Model(&models.AuditLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	result := s.db.WithContext(ctx).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&logs)
	return logs, total, result.Error
}
