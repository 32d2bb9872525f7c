package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ycmovement/membership-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.State{}, &models.LGA{}, &models.Member{}))
	return db
}

func makeMember(seq int, status string) *models.Member {
	return &models.Member{
		MembershipID:      fmt.Sprintf("YCM-2025-%06d", seq),
		FullName:          fmt.Sprintf("Member %d", seq),
		Phone:             fmt.Sprintf("+23480123456%02d", seq),
		Email:             fmt.Sprintf("member%d@example.com", seq),
		DOB:               "1999-01-01",
		StateID:           1,
		LGAID:             1,
		PasswordHash:      "x",
		VerificationToken: fmt.Sprintf("%064d", seq),
		Status:            status,
	}
}

func TestCreateMapsDuplicateEmail(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, makeMember(1, models.MemberStatusPending)))

	dup := makeMember(2, models.MemberStatusPending)
	dup.Email = "member1@example.com"
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicateEmail)
}

func TestCreateMapsDuplicateMembershipID(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, makeMember(1, models.MemberStatusPending)))

	dup := makeMember(2, models.MemberStatusPending)
	dup.MembershipID = "YCM-2025-000001"
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicateMembershipID)
}

func TestEmailExistsIsCaseInsensitive(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, makeMember(1, models.MemberStatusPending)))

	exists, err := repo.EmailExists(ctx, "MEMBER1@Example.COM")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.EmailExists(ctx, "other@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCountByMembershipPrefix(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, repo.Create(ctx, makeMember(i, models.MemberStatusPending)))
	}
	old := makeMember(9, models.MemberStatusApproved)
	old.MembershipID = "YCM-2024-000001"
	require.NoError(t, repo.Create(ctx, old))

	count, err := repo.CountByMembershipPrefix(ctx, "YCM-2025")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = repo.CountByMembershipPrefix(ctx, "YCM-2024")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestListFiltersAndPaginates(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		status := models.MemberStatusPending
		if i%2 == 0 {
			status = models.MemberStatusApproved
		}
		require.NoError(t, repo.Create(ctx, makeMember(i, status)))
	}

	query := NewListQuery()
	query.Filters["status"] = models.MemberStatusApproved
	members, total, err := repo.List(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, members, 2)

	query = NewListQuery()
	query.PerPage = 2
	query.Page = 3
	members, total, err = repo.List(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, members, 1)

	query = NewListQuery()
	query.Search = "member3"
	members, total, err = repo.List(ctx, query)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, "member3@example.com", members[0].Email)
}

func TestMarkVerifiedIsSingleUse(t *testing.T) {
	db := setupRepoDB(t)
	repo := NewMemberRepository(db)
	ctx := context.Background()

	member := makeMember(1, models.MemberStatusPending)
	require.NoError(t, repo.Create(ctx, member))

	found, err := repo.FindByVerificationToken(ctx, member.VerificationToken)
	require.NoError(t, err)
	require.NoError(t, repo.MarkVerified(ctx, found.ID, found.CreatedAt))

	refreshed, err := repo.FindByID(ctx, found.ID)
	require.NoError(t, err)
	assert.NotNil(t, refreshed.VerifiedAt)
}
