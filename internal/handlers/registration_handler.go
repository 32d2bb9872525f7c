package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ycmovement/membership-api/internal/services"
	"github.com/ycmovement/membership-api/pkg/logger"
)

// formFields are the registration form's text fields
var formFields = []string{
	"full_name", "phone", "email", "dob", "gender",
	"state_id", "lga_id", "residential_address", "occupation", "password",
}

// fileFields are the registration form's document uploads
var fileFields = []string{"passport_photo", "voters_card_front", "voters_card_back"}

type RegistrationHandler struct {
	registrationService *services.RegistrationService
}

func NewRegistrationHandler(registrationService *services.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// @Summary Register Member
// @Description Submits a membership application with three document uploads
// @Tags Registration
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /register [post]
func (h *RegistrationHandler) Register(c *gin.Context) {
	input := &services.RegistrationInput{
		Fields:    make(map[string]string, len(formFields)),
		Files:     make(map[string]*multipart.FileHeader, len(fileFields)),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}

	for _, field := range formFields {
		input.Fields[field] = c.PostForm(field)
	}
	for _, field := range fileFields {
		// A missing file is reported by the service, not the transport
		if header, err := c.FormFile(field); err == nil {
			input.Files[field] = header
		}
	}

	result, err := h.registrationService.Register(c.Request.Context(), input)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Registration successful! Your application is under review.",
		"membership_id": result.MembershipID,
	})
}

// @Summary Verify Email
// @Description Confirms a member's email address from the emailed token
// @Tags Registration
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]string
// @Router /verify [get]
func (h *RegistrationHandler) Verify(c *gin.Context) {
	member, err := h.registrationService.VerifyEmail(c.Request.Context(), c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid or expired verification token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"message":       "Email address verified.",
		"membership_id": member.MembershipID,
	})
}

// renderError maps a registration failure onto the wire. Internal detail is
// logged, never returned.
func (h *RegistrationHandler) renderError(c *gin.Context, err error) {
	var regErr *services.RegistrationError
	if !errors.As(err, &regErr) {
		logger.Error("Unexpected registration error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error during registration"})
		return
	}

	switch regErr.Kind {
	case services.KindUpload:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": regErr.Message, "details": regErr.Details})
	case services.KindValidation, services.KindConflict:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": regErr.Message})
	default:
		logger.Error("Registration persistence error", "error", regErr.Unwrap())
		c.JSON(http.StatusInternalServerError, gin.H{"error": regErr.Message})
	}
}
