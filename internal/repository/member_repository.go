package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ycmovement/membership-api/internal/models"
	"gorm.io/gorm"
)

// Duplicate-key sentinels surfaced to services
var (
	ErrDuplicateEmail        = errors.New("email address already registered")
	ErrDuplicateMembershipID = errors.New("membership identifier already taken")
)

// MemberRepository defines the interface for member data access
type MemberRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Member, error)
	FindByMembershipID(ctx context.Context, membershipID string) (*models.Member, error)
	FindByVerificationToken(ctx context.Context, token string) (*models.Member, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	CountByMembershipPrefix(ctx context.Context, prefix string) (int64, error)
	Create(ctx context.Context, member *models.Member) error
	Update(ctx context.Context, member *models.Member) error
	Delete(ctx context.Context, id uint) error
	UpdateDocumentPaths(ctx context.Context, id uint, passport, passportThumb, cardFront, cardBack string) error
	MarkVerified(ctx context.Context, id uint, at time.Time) error
	List(ctx context.Context, query *ListQuery) ([]models.Member, int64, error)
	FindAll(ctx context.Context) ([]models.Member, error)
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) FindByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) FindByMembershipID(ctx context.Context, membershipID string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("membership_id = ?", membershipID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) FindByVerificationToken(ctx context.Context, token string) (*models.Member, error) {
	var member models.Member
	err := r.db.WithContext(ctx).
		Where("verification_token = ?", token).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("LOWER(email) = LOWER(?)", email).
		Count(&count).Error
	return count > 0, err
}

func (r *memberRepository) CountByMembershipPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("membership_id LIKE ?", prefix+"%").
		Count(&count).Error
	return count, err
}

func (r *memberRepository) Create(ctx context.Context, member *models.Member) error {
	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		if isDuplicateKeyError(err, "email") {
			return ErrDuplicateEmail
		}
		if isDuplicateKeyError(err, "membership_id") {
			return ErrDuplicateMembershipID
		}
		return err
	}
	return nil
}

// isDuplicateKeyError matches a unique-constraint violation on the column or
// constraint containing name. Postgres reports SQLSTATE 23505 with a
// constraint name; the SQLite driver used in tests reports a message like
// "UNIQUE constraint failed: members.email".
func isDuplicateKeyError(err error, name string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, name)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") && strings.Contains(msg, name)
}

func (r *memberRepository) Update(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *memberRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Member{}, id).Error
}

func (r *memberRepository) UpdateDocumentPaths(ctx context.Context, id uint, passport, passportThumb, cardFront, cardBack string) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"passport_photo":       passport,
			"passport_photo_thumb": passportThumb,
			"voters_card_front":    cardFront,
			"voters_card_back":     cardBack,
		}).Error
}

func (r *memberRepository) MarkVerified(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ? AND verified_at IS NULL", id).
		Update("verified_at", at.UTC()).Error
}

func (r *memberRepository) List(ctx context.Context, query *ListQuery) ([]models.Member, int64, error) {
	var members []models.Member
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Member{})

	// Apply search
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("full_name LIKE ? OR email LIKE ? OR phone LIKE ? OR membership_id LIKE ?",
			search, search, search, search)
	}

	// Apply status filter
	if query.Filters["status"] != "" {
		db = db.Where("status = ?", query.Filters["status"])
	}

	// Apply state filter
	if query.Filters["state_id"] != "" {
		db = db.Where("state_id = ?", query.Filters["state_id"])
	}

	// Count total
	db.Count(&total)

	// Apply sorting
	if query.SortBy != "" {
		order := query.SortBy
		if query.SortDir == "desc" {
			order += " DESC"
		}
		db = db.Order(order)
	} else {
		db = db.Order("created_at DESC")
	}

	// Apply pagination
	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&members).Error
	return members, total, err
}

func (r *memberRepository) FindAll(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	err := r.db.WithContext(ctx).
		Order("membership_id ASC").
		Find(&members).Error
	return members, err
}

// ListQuery represents common query parameters
type ListQuery struct {
	Page    int
	PerPage int
	Search  string
	SortBy  string
	SortDir string
	Filters map[string]string
}

// NewListQuery creates a ListQuery with defaults
func NewListQuery() *ListQuery {
	return &ListQuery{
		Page:    1,
		PerPage: 20,
		Filters: make(map[string]string),
	}
}
