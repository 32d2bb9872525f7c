package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ycmovement/membership-api/internal/jobs"
	"github.com/ycmovement/membership-api/internal/models"
	"github.com/ycmovement/membership-api/internal/repository"
	"github.com/ycmovement/membership-api/internal/statemachine"
)

// ReviewService handles administrative review of member applications
type ReviewService struct {
	memberRepo repository.MemberRepository
	auditSvc   *AuditService
	emailSvc   *EmailService
	worker     *jobs.Worker
}

func NewReviewService(memberRepo repository.MemberRepository, auditSvc *AuditService, emailSvc *EmailService, worker *jobs.Worker) *ReviewService {
	return &ReviewService{
		memberRepo: memberRepo,
		auditSvc:   auditSvc,
		emailSvc:   emailSvc,
		worker:     worker,
	}
}

func (s *ReviewService) FindByID(ctx context.Context, id uint) (*models.Member, error) {
	return s.memberRepo.FindByID(ctx, id)
}

func (s *ReviewService) List(ctx context.Context, query *repository.ListQuery) ([]models.Member, int64, error) {
	return s.memberRepo.List(ctx, query)
}

// Approve transitions a pending (or previously rejected) application to
// approved, records the reviewer and notifies the member.
func (s *ReviewService) Approve(ctx context.Context, memberID uint, reviewer *models.AdminUser) (*models.Member, error) {
	return s.review(ctx, memberID, reviewer, "approve")
}

// Reject transitions a pending application to rejected
func (s *ReviewService) Reject(ctx context.Context, memberID uint, reviewer *models.AdminUser) (*models.Member, error) {
	return s.review(ctx, memberID, reviewer, "reject")
}

func (s *ReviewService) review(ctx context.Context, memberID uint, reviewer *models.AdminUser, action string) (*models.Member, error) {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, ErrNotFound
	}

	fsm := statemachine.NewMemberFSM(member)
	switch action {
	case "approve":
		err = fsm.Approve(ctx)
	case "reject":
		err = fsm.Reject(ctx)
	default:
		return nil, fmt.Errorf("unknown review action: %s", action)
	}
	if err != nil {
		return nil, ErrInvalidTransition
	}

	now := time.Now()
	member.ReviewedBy = &reviewer.ID
	member.ReviewedAt = &now
	if err := s.memberRepo.Update(ctx, member); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, reviewer.Email, models.ActorTypeAdmin, action,
		fmt.Sprintf("Application %s: %s (%s)", member.Status, member.MembershipID, member.Email), "", "")

	if s.worker != nil && s.emailSvc != nil {
		m := *member
		s.worker.Enqueue(func(jobCtx context.Context) error {
			return s.emailSvc.SendDecision(jobCtx, &m)
		})
	}

	return member, nil
}
