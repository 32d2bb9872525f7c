package services

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"testing"

	"github.com/ycmovement/membership-api/internal/models"
	"github.com/ycmovement/membership-api/internal/storage"
	"github.com/ycmovement/membership-api/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with the full schema and
// the reference data used across service tests.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger.Setup("test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open SQLite test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.State{},
		&models.LGA{},
		&models.Member{},
		&models.AuditLog{},
		&models.AdminUser{},
		&models.RefreshToken{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test schema: %v", err)
	}

	seedReferenceData(t, db)
	return db
}

func seedReferenceData(t *testing.T, db *gorm.DB) {
	t.Helper()
	states := []models.State{
		{ID: 1, Name: "Lagos", Code: "LA"},
		{ID: 2, Name: "Kano", Code: "KN"},
		{ID: 3, Name: "Abia", Code: "AB"},
	}
	if err := db.Create(&states).Error; err != nil {
		t.Fatalf("Failed to seed states: %v", err)
	}

	lgas := []models.LGA{
		{ID: 1, Name: "Ikeja", StateID: 1},
		{ID: 2, Name: "Epe", StateID: 1},
		{ID: 3, Name: "Agege", StateID: 1},
		{ID: 4, Name: "Nassarawa", StateID: 2},
	}
	if err := db.Create(&lgas).Error; err != nil {
		t.Fatalf("Failed to seed LGAs: %v", err)
	}
}

// setupTestStorage creates a LocalStorage rooted in a per-test temp directory
// and returns the root path alongside it so tests can inspect what was left
// on disk.
func setupTestStorage(t *testing.T) (*storage.LocalStorage, string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewLocalStorage(root)
	if err != nil {
		t.Fatalf("Failed to create test storage: %v", err)
	}
	return store, root
}

// pngBytes returns a small valid PNG image
func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test PNG: %v", err)
	}
	return buf.Bytes()
}

// jpegBytes returns a small valid JPEG image
func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("Failed to encode test JPEG: %v", err)
	}
	return buf.Bytes()
}

// makeFileHeader builds a real multipart.FileHeader by round-tripping a form
func makeFileHeader(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	writer.Close()

	reader := multipart.NewReader(&body, writer.Boundary())
	form, err := reader.ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("Failed to parse form: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File[field][0]
}

// validInput returns a fully valid registration submission. Tests mutate the
// returned input to trigger individual failures.
func validInput(t *testing.T, email string) *RegistrationInput {
	t.Helper()
	return &RegistrationInput{
		Fields: map[string]string{
			"full_name":           "Adaeze Okafor",
			"phone":               "08012345678",
			"email":               email,
			"dob":                 "2000-05-14",
			"gender":              "female",
			"state_id":            "1",
			"lga_id":              "1",
			"residential_address": "12 Allen Avenue, Ikeja",
			"occupation":          "Teacher",
			"password":            "correct-horse",
		},
		Files: map[string]*multipart.FileHeader{
			"passport_photo":    makeFileHeader(t, "passport_photo", "photo.png", pngBytes(t)),
			"voters_card_front": makeFileHeader(t, "voters_card_front", "front.jpg", jpegBytes(t)),
			"voters_card_back":  makeFileHeader(t, "voters_card_back", "back.jpg", jpegBytes(t)),
		},
		IPAddress: "203.0.113.10",
		UserAgent: "test-agent",
	}
}
