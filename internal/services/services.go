package services

import (
	"github.com/ycmovement/membership-api/internal/config"
	"github.com/ycmovement/membership-api/internal/jobs"
	"github.com/ycmovement/membership-api/internal/repository"
	"github.com/ycmovement/membership-api/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Registration *RegistrationService
	Reference    *ReferenceService
	Review       *ReviewService
	Auth         *AuthService
	Audit        *AuditService
	Email        *EmailService
	Export       *ExportService
	Card         *CardService
	Image        *ImageService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, store *storage.LocalStorage, cfg *config.Config, db *gorm.DB) *Services {
	auditSvc := NewAuditService(db)
	emailSvc := NewEmailService(cfg)
	imageSvc := NewImageService()

	return &Services{
		Registration: NewRegistrationService(repos.Member, repos.Reference, store, auditSvc, emailSvc, imageSvc, worker),
		Reference:    NewReferenceService(repos.Reference),
		Review:       NewReviewService(repos.Member, auditSvc, emailSvc, worker),
		Auth:         NewAuthService(repos.Admin, repos.RefreshToken, auditSvc, cfg),
		Audit:        auditSvc,
		Email:        emailSvc,
		Export:       NewExportService(repos.Member, repos.Reference),
		Card:         NewCardService(repos.Member, repos.Reference, store),
		Image:        imageSvc,
	}
}
