package services

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/ycmovement/membership-api/internal/models"
	"github.com/ycmovement/membership-api/internal/repository"
	"gorm.io/gorm"
)

func seedExportMember(t *testing.T, db *gorm.DB, seq int, status string) {
	t.Helper()
	member := &models.Member{
		MembershipID:      fmt.Sprintf("YCM-2025-%06d", seq),
		FullName:          fmt.Sprintf("Member %d", seq),
		Phone:             fmt.Sprintf("+23480123456%02d", seq),
		Email:             fmt.Sprintf("export%d@example.com", seq),
		DOB:               "1999-01-01",
		StateID:           1,
		LGAID:             1,
		PasswordHash:      "x",
		VerificationToken: fmt.Sprintf("%064d", seq),
		Status:            status,
	}
	require.NoError(t, db.Create(member).Error)
}

func TestExportMembersXLSX(t *testing.T) {
	db := setupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewExportService(repos.Member, repos.Reference)

	seedExportMember(t, db, 1, models.MemberStatusApproved)
	seedExportMember(t, db, 2, models.MemberStatusPending)

	data, filename, err := svc.ExportMembersXLSX(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("members_%s.xlsx", time.Now().Format("2006-01-02")), filename)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Members")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + two members

	assert.Equal(t, "Membership ID", rows[0][0])
	assert.Equal(t, "YCM-2025-000001", rows[1][0])
	assert.Equal(t, "Lagos", rows[1][4])
	assert.Equal(t, models.MemberStatusApproved, rows[1][5])
	assert.Equal(t, "YCM-2025-000002", rows[2][0])
}

func TestExportEmptyRoster(t *testing.T) {
	db := setupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewExportService(repos.Member, repos.Reference)

	data, _, err := svc.ExportMembersXLSX(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Members")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
