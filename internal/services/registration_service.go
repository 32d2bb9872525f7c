package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"mime/multipart"
	"net/mail"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ycmovement/membership-api/internal/jobs"
	"github.com/ycmovement/membership-api/internal/models"
	"github.com/ycmovement/membership-api/internal/repository"
	"github.com/ycmovement/membership-api/internal/storage"
	"github.com/ycmovement/membership-api/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

const (
	// MaxUploadSize is the per-document size ceiling (2.5 MiB)
	MaxUploadSize = int64(2.5 * 1024 * 1024)

	minAge            = 16
	minPasswordLength = 8

	membershipPrefix = "YCM"

	// attempts at minting a membership id before giving up; a retry only
	// happens when a concurrent registration won the same sequence number
	maxMintAttempts = 3
)

var (
	phoneIntl  = regexp.MustCompile(`^\+234[0-9]{10}$`)
	phoneLocal = regexp.MustCompile(`^0[0-9]{10}$`)
)

// requiredFields lists the form fields whose presence is checked first, in
// order. The first missing field is the one reported.
var requiredFields = []string{
	"full_name", "phone", "email", "dob", "gender",
	"state_id", "lga_id", "residential_address", "occupation", "password",
}

// documentFields lists the three required uploads, in reporting order
var documentFields = []string{"passport_photo", "voters_card_front", "voters_card_back"}

// RegistrationInput carries one registration submission
type RegistrationInput struct {
	Fields map[string]string                // form fields keyed by name
	Files  map[string]*multipart.FileHeader // uploads keyed by field name

	IPAddress string
	UserAgent string
}

// RegistrationResult is returned on a successful registration
type RegistrationResult struct {
	MembershipID string
	MemberID     uint
}

// RegistrationService runs the member registration workflow: validation,
// document staging, identifier minting, persistence and promotion of the
// staged documents into the member's permanent directory.
type RegistrationService struct {
	memberRepo repository.MemberRepository
	refRepo    repository.ReferenceRepository
	store      *storage.LocalStorage
	auditSvc   *AuditService
	emailSvc   *EmailService
	imageSvc   *ImageService
	worker     *jobs.Worker
}

func NewRegistrationService(
	memberRepo repository.MemberRepository,
	refRepo repository.ReferenceRepository,
	store *storage.LocalStorage,
	auditSvc *AuditService,
	emailSvc *EmailService,
	imageSvc *ImageService,
	worker *jobs.Worker,
) *RegistrationService {
	return &RegistrationService{
		memberRepo: memberRepo,
		refRepo:    refRepo,
		store:      store,
		auditSvc:   auditSvc,
		emailSvc:   emailSvc,
		imageSvc:   imageSvc,
		worker:     worker,
	}
}

// Register validates the submission and creates the member record. Validation
// is fail-fast: the first failing check decides the error the caller sees.
// Any documents staged on disk are purged on every failure path.
func (s *RegistrationService) Register(ctx context.Context, in *RegistrationInput) (*RegistrationResult, error) {
	// 1. Presence check over the required-field set
	for _, field := range requiredFields {
		if strings.TrimSpace(in.Fields[field]) == "" {
			return nil, validationError(fmt.Sprintf("Missing required field: %s", field))
		}
	}

	// 2. Email: syntax, then uniqueness
	email := strings.ToLower(strings.TrimSpace(in.Fields["email"]))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationError("Invalid email address")
	}
	exists, err := s.memberRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, persistenceError(err)
	}
	if exists {
		return nil, conflictError("Email address already registered")
	}

	// 3. Phone: Nigerian format, local form normalized to international
	phone, ok := NormalizePhone(in.Fields["phone"])
	if !ok {
		return nil, validationError("Phone number must be in Nigerian format (+234...) or (0...)")
	}

	// 4. Age floor
	dob, err := time.Parse("2006-01-02", in.Fields["dob"])
	if err != nil {
		return nil, validationError("Invalid date of birth")
	}
	if AgeAt(dob, time.Now()) < minAge {
		return nil, validationError(fmt.Sprintf("You must be at least %d years old to register", minAge))
	}

	// 5. Password floor
	if len(in.Fields["password"]) < minPasswordLength {
		return nil, validationError(fmt.Sprintf("Password must be at least %d characters long", minPasswordLength))
	}

	stateID, err := strconv.Atoi(in.Fields["state_id"])
	if err != nil || stateID <= 0 {
		return nil, validationError("Invalid state ID")
	}
	lgaID, err := strconv.Atoi(in.Fields["lga_id"])
	if err != nil || lgaID <= 0 {
		return nil, validationError("Invalid LGA ID")
	}
	belongs, err := s.refRepo.LGABelongsToState(ctx, uint(lgaID), uint(stateID))
	if err != nil {
		return nil, persistenceError(err)
	}
	if !belongs {
		return nil, validationError("Selected LGA does not belong to the selected state")
	}

	// 6. Three document uploads, failures reported together
	var uploadErrors []string
	for _, field := range documentFields {
		if msg := validateUpload(field, in.Files[field]); msg != "" {
			uploadErrors = append(uploadErrors, msg)
		}
	}
	if len(uploadErrors) > 0 {
		return nil, uploadError(uploadErrors)
	}

	// Stage documents under a throwaway directory; from here on every
	// failure path must purge it.
	tempDir, err := s.store.NewTempDir()
	if err != nil {
		return nil, persistenceError(err)
	}

	paths := make(map[string]string, len(documentFields))
	for _, field := range documentFields {
		relPath, err := s.saveDocument(in.Files[field], tempDir, field)
		if err != nil {
			s.purge(tempDir)
			return nil, uploadError([]string{fmt.Sprintf("Failed to upload %s", field)})
		}
		paths[field] = relPath
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Fields["password"]), bcrypt.DefaultCost)
	if err != nil {
		s.purge(tempDir)
		return nil, persistenceError(err)
	}

	member := &models.Member{
		FullName:           strings.TrimSpace(in.Fields["full_name"]),
		Phone:              phone,
		Email:              email,
		DOB:                in.Fields["dob"],
		Gender:             in.Fields["gender"],
		StateID:            uint(stateID),
		LGAID:              uint(lgaID),
		ResidentialAddress: strings.TrimSpace(in.Fields["residential_address"]),
		Occupation:         strings.TrimSpace(in.Fields["occupation"]),
		PassportPhoto:      paths["passport_photo"],
		VotersCardFront:    paths["voters_card_front"],
		VotersCardBack:     paths["voters_card_back"],
		PasswordHash:       string(passwordHash),
		VerificationToken:  generateToken(32),
		Status:             models.MemberStatusPending,
	}

	if err := s.insertWithFreshID(ctx, member); err != nil {
		s.purge(tempDir)
		if err == repository.ErrDuplicateEmail {
			return nil, conflictError("Email address already registered")
		}
		return nil, persistenceError(err)
	}

	// Relocate the staged documents into the permanent member directory and
	// rewrite the stored paths to match.
	memberDir, err := s.store.Promote(tempDir, member.ID)
	if err != nil {
		// The row exists but its documents could not be placed; undo both.
		logger.Error("Failed to promote upload directory", "member_id", member.ID, "error", err)
		s.rollbackInsert(ctx, member.ID)
		s.purge(tempDir)
		return nil, persistenceError(err)
	}

	passport := storage.Rebase(paths["passport_photo"], tempDir, memberDir)
	cardFront := storage.Rebase(paths["voters_card_front"], tempDir, memberDir)
	cardBack := storage.Rebase(paths["voters_card_back"], tempDir, memberDir)

	// Passport thumbnail is best-effort; the card renderer falls back to the
	// full-size photo when absent.
	thumb := ""
	if s.imageSvc != nil {
		thumb, err = s.imageSvc.CreateThumbnail(s.store, passport, memberDir)
		if err != nil {
			logger.Warn("Failed to create passport thumbnail", "member_id", member.ID, "error", err)
		}
	}

	if err := s.memberRepo.UpdateDocumentPaths(ctx, member.ID, passport, thumb, cardFront, cardBack); err != nil {
		logger.Error("Failed to update document paths", "member_id", member.ID, "error", err)
		return nil, persistenceError(err)
	}
	member.PassportPhoto = passport
	member.PassportPhotoThumb = thumb
	member.VotersCardFront = cardFront
	member.VotersCardBack = cardBack

	s.auditSvc.Log(ctx, email, models.ActorTypeMember, "registration",
		fmt.Sprintf("New member registered: %s", member.MembershipID), in.IPAddress, in.UserAgent)

	if s.worker != nil && s.emailSvc != nil {
		m := *member
		s.worker.Enqueue(func(jobCtx context.Context) error {
			return s.emailSvc.SendVerification(jobCtx, &m)
		})
	}

	return &RegistrationResult{MembershipID: member.MembershipID, MemberID: member.ID}, nil
}

// insertWithFreshID mints a membership identifier and inserts the row,
// regenerating the identifier when a concurrent registration claimed the
// same sequence number.
func (s *RegistrationService) insertWithFreshID(ctx context.Context, member *models.Member) error {
	var err error
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		member.MembershipID, err = s.mintMembershipID(ctx)
		if err != nil {
			return err
		}
		err = s.memberRepo.Create(ctx, member)
		if err != repository.ErrDuplicateMembershipID {
			return err
		}
		logger.Warn("Membership ID collision, retrying", "membership_id", member.MembershipID)
	}
	return err
}

// mintMembershipID produces the next identifier for the current calendar
// year: YCM-<year>-<6-digit sequence>. The count-then-use pattern is not
// atomic; the unique index on membership_id catches the loser of a race and
// insertWithFreshID retries.
func (s *RegistrationService) mintMembershipID(ctx context.Context) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("%s-%d", membershipPrefix, year)
	count, err := s.memberRepo.CountByMembershipPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", prefix, count+1), nil
}

// VerifyEmail confirms a member's email address from the token sent at
// registration. The token is single-use: a verified member's token no longer
// matches anything.
func (s *RegistrationService) VerifyEmail(ctx context.Context, token string) (*models.Member, error) {
	if len(token) != 64 {
		return nil, ErrInvalidToken
	}
	member, err := s.memberRepo.FindByVerificationToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if member.IsVerified() {
		return nil, ErrInvalidToken
	}

	now := time.Now()
	if err := s.memberRepo.MarkVerified(ctx, member.ID, now); err != nil {
		return nil, err
	}
	member.VerifiedAt = &now

	s.auditSvc.Log(ctx, member.Email, models.ActorTypeMember, "email_verified",
		fmt.Sprintf("Email verified for %s", member.MembershipID), "", "")
	return member, nil
}

func (s *RegistrationService) saveDocument(header *multipart.FileHeader, tempDir, field string) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", err
	}
	defer file.Close()
	return s.store.SaveUpload(file, header, tempDir, field)
}

func (s *RegistrationService) purge(tempDir string) {
	if err := s.store.Purge(tempDir); err != nil {
		logger.Error("Failed to purge temp upload directory", "dir", tempDir, "error", err)
	}
}

// rollbackInsert removes a member row whose documents could not be placed,
// so no record ever points at files that do not exist.
func (s *RegistrationService) rollbackInsert(ctx context.Context, memberID uint) {
	if err := s.memberRepo.Delete(ctx, memberID); err != nil {
		logger.Error("Failed to roll back member record", "member_id", memberID, "error", err)
	}
}

// validateUpload checks one document upload: presence, sniffed MIME type,
// extension and size. Returns a user-safe message, or "" when valid.
func validateUpload(field string, header *multipart.FileHeader) string {
	if header == nil || header.Size == 0 {
		return fmt.Sprintf("Please upload a valid %s", field)
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if ext != "jpg" && ext != "jpeg" && ext != "png" {
		return fmt.Sprintf("Invalid file type for %s. Only JPG and PNG files are allowed", field)
	}

	file, err := header.Open()
	if err != nil {
		return fmt.Sprintf("Please upload a valid %s", field)
	}
	defer file.Close()

	// The declared Content-Type header is client-controlled; sniff the
	// actual bytes instead.
	mtype, err := mimetype.DetectReader(file)
	if err != nil || !(mtype.Is("image/jpeg") || mtype.Is("image/png")) {
		return fmt.Sprintf("Invalid file type for %s. Only JPG and PNG files are allowed", field)
	}

	if header.Size > MaxUploadSize {
		return fmt.Sprintf("File too large for %s. Maximum size is %.1fMB", field, float64(MaxUploadSize)/1024/1024)
	}

	return ""
}

// NormalizePhone validates a Nigerian phone number and returns it in
// international form. The local 0-prefixed form is rewritten to +234.
func NormalizePhone(phone string) (string, bool) {
	phone = strings.TrimSpace(phone)
	if phoneIntl.MatchString(phone) {
		return phone, true
	}
	if phoneLocal.MatchString(phone) {
		return "+234" + phone[1:], true
	}
	return "", false
}

// AgeAt returns full years elapsed between dob and the reference date,
// counting a year only once its anniversary has passed.
func AgeAt(dob, at time.Time) int {
	age := at.Year() - dob.Year()
	anniversary := dob.AddDate(age, 0, 0)
	if anniversary.After(at) {
		age--
	}
	return age
}

// generateToken returns n random bytes hex-encoded
func generateToken(n int) string {
	bytes := make([]byte, n)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
