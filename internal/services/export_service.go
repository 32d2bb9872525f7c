package services

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"github.com/ycmovement/membership-api/internal/repository"
)

// ExportService builds the member roster spreadsheet for administrators
type ExportService struct {
	memberRepo repository.MemberRepository
	refRepo    repository.ReferenceRepository
}

func NewExportService(memberRepo repository.MemberRepository, refRepo repository.ReferenceRepository) *ExportService {
	return &ExportService{memberRepo: memberRepo, refRepo: refRepo}
}

// ExportMembersXLSX writes all members into a spreadsheet, one row per
// member, and returns the file contents and a dated filename.
func (s *ExportService) ExportMembersXLSX(ctx context.Context) ([]byte, string, error) {
	members, err := s.memberRepo.FindAll(ctx)
	if err != nil {
		return nil, "", err
	}

	states, err := s.refRepo.ListStates(ctx)
	if err != nil {
		return nil, "", err
	}
	stateNames := make(map[uint]string, len(states))
	for _, st := range states {
		stateNames[st.ID] = st.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Members"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	headers := []string{"Membership ID", "Full Name", "Email", "Phone", "State", "Status", "Verified", "Registered"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, m := range members {
		values := []interface{}{
			m.MembershipID,
			m.FullName,
			m.Email,
			m.Phone,
			stateNames[m.StateID],
			m.Status,
			m.IsVerified(),
			m.CreatedAt.Format("2006-01-02"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("members_%s.xlsx", time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}
