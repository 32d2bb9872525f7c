package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/ycmovement/membership-api/internal/models"
	"github.com/ycmovement/membership-api/internal/repository"
	"github.com/ycmovement/membership-api/internal/storage"
)

// CardService renders the printable membership ID card
type CardService struct {
	memberRepo repository.MemberRepository
	refRepo    repository.ReferenceRepository
	store      *storage.LocalStorage
}

func NewCardService(memberRepo repository.MemberRepository, refRepo repository.ReferenceRepository, store *storage.LocalStorage) *CardService {
	return &CardService{memberRepo: memberRepo, refRepo: refRepo, store: store}
}

// MembershipCardPDF renders a card for an approved member. Pending or
// rejected members have no card.
func (s *CardService) MembershipCardPDF(ctx context.Context, memberID uint) ([]byte, string, error) {
	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, "", ErrNotFound
	}
	if member.Status != models.MemberStatusApproved {
		return nil, "", fmt.Errorf("membership card is only available for approved members")
	}

	states, err := s.refRepo.ListStates(ctx)
	if err != nil {
		return nil, "", err
	}
	stateName := ""
	for _, st := range states {
		if st.ID == member.StateID {
			stateName = st.Name
			break
		}
	}

	// Credit-card sized landscape card (85.6 x 54 mm)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: 85.6, Ht: 54},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()

	// Header band
	pdf.SetFillColor(4, 120, 87)
	pdf.Rect(0, 0, 85.6, 12, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetXY(4, 3)
	pdf.CellFormat(0, 6, "YOUTH CHANGE MOVEMENT", "", 0, "L", false, 0, "")

	// Passport photo, thumbnail preferred
	photo := member.PassportPhotoThumb
	if photo == "" {
		photo = member.PassportPhoto
	}
	if photo != "" && s.store.Exists(photo) {
		imgType := strings.TrimPrefix(strings.ToUpper(filepath.Ext(photo)), ".")
		if imgType == "JPEG" {
			imgType = "JPG"
		}
		pdf.ImageOptions(s.store.GetFullPath(photo), 62, 16, 20, 20, false,
			gofpdf.ImageOptions{ImageType: imgType}, 0, "")
	}

	pdf.SetTextColor(31, 41, 55)
	pdf.SetXY(4, 15)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(55, 5, member.FullName, "", 2, "L", false, 0, "")
	pdf.SetFont("Arial", "", 8)
	pdf.CellFormat(55, 4, member.MembershipID, "", 2, "L", false, 0, "")
	pdf.CellFormat(55, 4, stateName, "", 2, "L", false, 0, "")
	pdf.CellFormat(55, 4, member.Phone, "", 2, "L", false, 0, "")

	pdf.SetY(46)
	pdf.SetFont("Arial", "I", 6)
	pdf.SetTextColor(107, 114, 128)
	pdf.CellFormat(0, 4, fmt.Sprintf("Member since %s", member.CreatedAt.Format("January 2006")), "", 0, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("card_%s.pdf", member.MembershipID)
	return buf.Bytes(), filename, nil
}
