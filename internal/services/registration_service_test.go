package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ycmovement/membership-api/internal/models"
	"github.com/ycmovement/membership-api/internal/repository"
	"github.com/ycmovement/membership-api/internal/storage"
	"gorm.io/gorm"
)

func newRegistrationService(t *testing.T, db *gorm.DB, store *storage.LocalStorage) *RegistrationService {
	t.Helper()
	repos := repository.NewRepositories(db)
	return NewRegistrationService(
		repos.Member,
		repos.Reference,
		store,
		NewAuditService(db),
		nil, // no email delivery in tests
		NewImageService(),
		nil, // no background worker in tests
	)
}

func memberCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Member{}).Count(&count).Error)
	return count
}

// stagedDirs lists what remains under the members directory of the storage root
func stagedDirs(t *testing.T, root string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(root, "members"))
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRegisterSuccess(t *testing.T) {
	db := setupTestDB(t)
	store, root := setupTestStorage(t)
	svc := newRegistrationService(t, db, store)

	result, err := svc.Register(context.Background(), validInput(t, "adaeze@example.com"))
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("YCM-%d-000001", year), result.MembershipID)
	assert.NotZero(t, result.MemberID)

	var member models.Member
	require.NoError(t, db.First(&member, result.MemberID).Error)
	assert.Equal(t, "+2348012345678", member.Phone)
	assert.Equal(t, "adaeze@example.com", member.Email)
	assert.Equal(t, models.MemberStatusPending, member.Status)
	assert.Len(t, member.VerificationToken, 64)
	assert.Nil(t, member.VerifiedAt)
	assert.True(t, VerifyPassword("correct-horse", member.PasswordHash))

	// Documents were promoted out of staging into the member's directory
	// and the stored paths follow.
	expectedDir := filepath.Join("members", fmt.Sprintf("%d", member.ID))
	for _, path := range []string{member.PassportPhoto, member.VotersCardFront, member.VotersCardBack} {
		assert.Equal(t, expectedDir, filepath.Dir(path))
		assert.True(t, store.Exists(path), "expected %s on disk", path)
	}
	assert.NotEmpty(t, member.PassportPhotoThumb)
	assert.True(t, store.Exists(member.PassportPhotoThumb))
	assert.Equal(t, []string{fmt.Sprintf("%d", member.ID)}, stagedDirs(t, root))

	// Registration is audited
	var audit models.AuditLog
	require.NoError(t, db.Where("action = ?", "registration").First(&audit).Error)
	assert.Equal(t, "adaeze@example.com", audit.Actor)
	assert.Equal(t, "203.0.113.10", audit.IPAddress)
}

func TestRegisterSequencesMembershipIDs(t *testing.T) {
	db := setupTestDB(t)
	store, _ := setupTestStorage(t)
	svc := newRegistrationService(t, db, store)

	first, err := svc.Register(context.Background(), validInput(t, "first@example.com"))
	require.NoError(t, err)
	second, err := svc.Register(context.Background(), validInput(t, "second@example.com"))
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("YCM-%d-000001", year), first.MembershipID)
	assert.Equal(t, fmt.Sprintf("YCM-%d-000002", year), second.MembershipID)
}

func TestRegisterMissingField(t *testing.T) {
	db := setupTestDB(t)
	store, _ := setupTestStorage(t)
	svc := newRegistrationService(t, db, store)

	in := validInput(t, "missing@example.com")
	in.Fields["full_name"] = "   "

	_, err := svc.Register(context.Background(), in)
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, KindValidation, regErr.Kind)
	assert.Equal(t, "Missing required field: full_name", regErr.Message)
	assert.Zero(t, memberCount(t, db))
}

func TestRegisterInvalidEmail(t *testing.T) {
	db := setupTestDB(t)
	store, _ := setupTestStorage(t)
	svc := newRegistrationService(t, db, store)

	in := validInput(t, "not-an-email")
	_, err := svc.Register(context.Background(), in)
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, KindValidation, regErr.Kind)
	assert.Equal(t, "Invalid email address", regErr.Message)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	store, _ := setupTestStorage(t)
	svc := newRegistrationService(t, db, store)

	_, err := svc.Register(context.Background(), validInput(t, "dup@example.com"))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), validInput(t, "dup@example.com"))
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, KindConflict, regErr.Kind)
	assert.Equal(t, "Email address already registered", regErr.Message)
	assert.Equal(t, int64(1), memberCount(t, db))
}

func TestRegisterInvalidPhone(t *testing.T) {
	db := setupTestDB(t)
	store, _ := setupTestStorage(t)
	svc := newRegistrationService(t, db, store)

	for _, phone := range []string{"12345", "+1555123456", "0801234567", "+23480123456789"} {
		in := validInput(t, "phone@example.com")
		in.Fields["phone"] = phone

		_, err := svc.Register(context.Background(), in)
		var regErr *RegistrationError
		require.ErrorAs(t, err, &regErr, "phone %q should be rejected", phone)
		assert.Equal(t, KindValidation, regErr.Kind)
	}
}

func TestRegisterUnderage(t *testing.T) {
	db := setupTestDB(t)
	store, _ := setupTestStorage(t)
	svc := newRegistrationService(t, db, store)

	// 16th birthday is tomorrow
	in := validInput(t, "young@example.com")
	in.Fields["dob"] = time.Now().AddDate(-16, 0, 1).Format("2006-01-02")

	_, err := svc.Register(context.Background(), in)
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "You must be at least 16 years old to register", regErr.Message)
}

func TestRegisterExactlySixteenToday(t *testing.T) {
	db := setupTestDB(t)
	store, _ := setupTestStorage(t)
	svc := newRegistrationService(t, db, store)

	in := validInput(t, "sixteen@example.com")
	in.Fields["dob"] = time.Now().AddDate(-16, 0, 0).Format("2006-01-02")

	_, err := svc.Register(context.Background(), in)
	require.NoError(t, err)
}

func TestRegisterShortPassword(t *testing.T) {
	db := setupTestDB(t)
	store, _ := setupTestStorage(t)
	svc := newRegistrationService(t, db, store)

	in := validInput(t, "shortpw@example.com")
	in.Fields["password"] = "1234567"

	_, err := svc.Register(context.Background(), in)
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "Password must be at least 8 characters long", regErr.Message)
}

func TestRegisterLGAFromWrongState(t *testing.T) {
	db := setupTestDB(t)
	store, _ := setupTestStorage(t)
	svc := newRegistrationService(t, db, store)

	// Nassarawa (LGA 4) belongs to Kano, not Lagos
	in := validInput(t, "wronglga@example.com")
	in.Fields["lga_id"] = "4"

	_, err := svc.Register(context.Background(), in)
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, "Selected LGA does not belong to the selected state", regErr.Message)
}

func TestRegisterRejectsBadUploads(t *testing.T) {
	db := setupTestDB(t)
	store, root := setupTestStorage(t)
	svc := newRegistrationService(t, db, store)

	// Oversized image: valid PNG header padded past the ceiling
	oversized := append(pngBytes(t), bytes.Repeat([]byte{0}, int(MaxUploadSize))...)

	in := validInput(t, "uploads@example.com")
	in.Files["passport_photo"] = makeFileHeader(t, "passport_photo", "photo.png", oversized)
	in.Files["voters_card_front"] = makeFileHeader(t, "voters_card_front", "front.jpg", []byte("%PDF-1.4 not an image"))
	delete(in.Files, "voters_card_back")

	_, err := svc.Register(context.Background(), in)
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, KindUpload, regErr.Kind)

	// All three failures are reported together, in field order
	require.Len(t, regErr.Details, 3)
	assert.Contains(t, regErr.Details[0], "File too large for passport_photo")
	assert.Contains(t, regErr.Details[1], "Invalid file type for voters_card_front")
	assert.Contains(t, regErr.Details[2], "Please upload a valid voters_card_back")

	// Nothing persisted, nothing staged
	assert.Zero(t, memberCount(t, db))
	assert.Empty(t, stagedDirs(t, root))
}

func TestRegisterRejectsWrongExtension(t *testing.T) {
	db := setupTestDB(t)
	store, _ := setupTestStorage(t)
	svc := newRegistrationService(t, db, store)

	in := validInput(t, "ext@example.com")
	in.Files["passport_photo"] = makeFileHeader(t, "passport_photo", "photo.gif", pngBytes(t))

	_, err := svc.Register(context.Background(), in)
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, KindUpload, regErr.Kind)
	require.Len(t, regErr.Details, 1)
	assert.Contains(t, regErr.Details[0], "Invalid file type for passport_photo")
}

// flakyMemberRepo wraps a real repository and fails a fixed number of Create
// calls before delegating.
type flakyMemberRepo struct {
	repository.MemberRepository
	failures int
	failWith error
	creates  int
}

func (r *flakyMemberRepo) Create(ctx context.Context, member *models.Member) error {
	r.creates++
	if r.creates <= r.failures {
		return r.failWith
	}
	return r.MemberRepository.Create(ctx, member)
}

func TestRegisterRetriesOnMembershipIDCollision(t *testing.T) {
	db := setupTestDB(t)
	store, _ := setupTestStorage(t)
	repos := repository.NewRepositories(db)
	flaky := &flakyMemberRepo{
		MemberRepository: repos.Member,
		failures:         1,
		failWith:         repository.ErrDuplicateMembershipID,
	}
	svc := NewRegistrationService(flaky, repos.Reference, store, NewAuditService(db), nil, nil, nil)

	result, err := svc.Register(context.Background(), validInput(t, "retry@example.com"))
	require.NoError(t, err)
	assert.Equal(t, 2, flaky.creates)
	assert.Equal(t, fmt.Sprintf("YCM-%d-000001", time.Now().Year()), result.MembershipID)
}

func TestRegisterGivesUpAfterRepeatedCollisions(t *testing.T) {
	db := setupTestDB(t)
	store, root := setupTestStorage(t)
	repos := repository.NewRepositories(db)
	flaky := &flakyMemberRepo{
		MemberRepository: repos.Member,
		failures:         10,
		failWith:         repository.ErrDuplicateMembershipID,
	}
	svc := NewRegistrationService(flaky, repos.Reference, store, NewAuditService(db), nil, nil, nil)

	_, err := svc.Register(context.Background(), validInput(t, "giveup@example.com"))
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, KindPersistence, regErr.Kind)
	assert.Equal(t, 3, flaky.creates)
	assert.Empty(t, stagedDirs(t, root), "staged documents must be purged on failure")
}

func TestRegisterPurgesStagingOnInsertFailure(t *testing.T) {
	db := setupTestDB(t)
	store, root := setupTestStorage(t)
	repos := repository.NewRepositories(db)
	flaky := &flakyMemberRepo{
		MemberRepository: repos.Member,
		failures:         10,
		failWith:         errors.New("connection reset"),
	}
	svc := NewRegistrationService(flaky, repos.Reference, store, NewAuditService(db), nil, nil, nil)

	_, err := svc.Register(context.Background(), validInput(t, "dbdown@example.com"))
	var regErr *RegistrationError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, KindPersistence, regErr.Kind)
	assert.Zero(t, memberCount(t, db))
	assert.Empty(t, stagedDirs(t, root))
}

func TestVerifyEmail(t *testing.T) {
	db := setupTestDB(t)
	store, _ := setupTestStorage(t)
	svc := newRegistrationService(t, db, store)

	result, err := svc.Register(context.Background(), validInput(t, "verify@example.com"))
	require.NoError(t, err)

	var member models.Member
	require.NoError(t, db.First(&member, result.MemberID).Error)

	verified, err := svc.VerifyEmail(context.Background(), member.VerificationToken)
	require.NoError(t, err)
	assert.NotNil(t, verified.VerifiedAt)

	// The token is single-use
	_, err = svc.VerifyEmail(context.Background(), member.VerificationToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyEmailRejectsBadTokens(t *testing.T) {
	db := setupTestDB(t)
	store, _ := setupTestStorage(t)
	svc := newRegistrationService(t, db, store)

	_, err := svc.VerifyEmail(context.Background(), "short")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyEmail(context.Background(), generateToken(32))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{"+2348012345678", "+2348012345678", true},
		{"08012345678", "+2348012345678", true},
		{"  08012345678  ", "+2348012345678", true},
		{"07098765432", "+2347098765432", true},
		{"8012345678", "", false},
		{"+234801234567", "", false},
		{"+23480123456789", "", false},
		{"080123456781", "", false},
		{"+15551234567", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizePhone(tt.input)
		assert.Equal(t, tt.ok, ok, "input %q", tt.input)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
	}
}

func TestAgeAt(t *testing.T) {
	at := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		dob  time.Time
		want int
	}{
		{time.Date(2009, 6, 15, 0, 0, 0, 0, time.UTC), 16}, // birthday today
		{time.Date(2009, 6, 16, 0, 0, 0, 0, time.UTC), 15}, // birthday tomorrow
		{time.Date(2009, 6, 14, 0, 0, 0, 0, time.UTC), 16},
		{time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), 25},
		{time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeAt(tt.dob, at), "dob %s", tt.dob.Format("2006-01-02"))
	}
}
