package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ycmovement/membership-api/internal/middleware"
	"github.com/ycmovement/membership-api/internal/models"
	"github.com/ycmovement/membership-api/internal/repository"
	"github.com/ycmovement/membership-api/internal/services"
)

type MemberHandler struct {
	reviewService *services.ReviewService
	exportService *services.ExportService
	cardService   *services.CardService
}

func NewMemberHandler(reviewService *services.ReviewService, exportService *services.ExportService, cardService *services.CardService) *MemberHandler {
	return &MemberHandler{
		reviewService: reviewService,
		exportService: exportService,
		cardService:   cardService,
	}
}

// @Summary List Members
// @Description Get a paginated list of member applications
// @Tags Members
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Items per page" default(20)
// @Param search_term query string false "Search by name, email, phone or membership ID"
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /admin/members [get]
func (h *MemberHandler) Index(c *gin.Context) {
	query := repository.NewListQuery()
	query.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	query.PerPage, _ = strconv.Atoi(c.DefaultQuery("per_page", "20"))
	query.Search = c.Query("search_term")
	query.Filters["status"] = c.Query("status")
	query.Filters["state_id"] = c.Query("state_id")

	members, total, err := h.reviewService.List(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch members"})
		return
	}

	responses := make([]models.MemberResponse, 0, len(members))
	for _, m := range members {
		responses = append(responses, m.ToResponse())
	}

	c.JSON(http.StatusOK, gin.H{
		"members": responses,
		"pagination": gin.H{
			"page":        query.Page,
			"per_page":    query.PerPage,
			"total":       total,
			"total_pages": (total + int64(query.PerPage) - 1) / int64(query.PerPage),
		},
	})
}

// @Summary Get Member
// @Description Get a member application by ID
// @Tags Members
// @Produce json
// @Param member_id path int true "Member ID"
// @Success 200 {object} models.MemberResponse
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /admin/members/{member_id} [get]
func (h *MemberHandler) Show(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("member_id"), 10, 32)
	member, err := h.reviewService.FindByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": member.ToResponse()})
}

// @Summary Approve Member
// @Description Approves a pending member application
// @Tags Members
// @Produce json
// @Param member_id path int true "Member ID"
// @Success 200 {object} models.MemberResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /admin/members/{member_id}/approve [post]
func (h *MemberHandler) Approve(c *gin.Context) {
	h.decide(c, h.reviewService.Approve)
}

// @Summary Reject Member
// @Description Rejects a pending member application
// @Tags Members
// @Produce json
// @Param member_id path int true "Member ID"
// @Success 200 {object} models.MemberResponse
// @Failure 422 {object} map[string]string
// @Security BearerAuth
// @Router /admin/members/{member_id}/reject [post]
func (h *MemberHandler) Reject(c *gin.Context) {
	h.decide(c, h.reviewService.Reject)
}

func (h *MemberHandler) decide(c *gin.Context, action func(ctx context.Context, memberID uint, reviewer *models.AdminUser) (*models.Member, error)) {
	id, _ := strconv.ParseUint(c.Param("member_id"), 10, 32)

	reviewer := &models.AdminUser{
		ID:    middleware.GetAdminID(c),
		Email: middleware.GetAdminEmail(c),
		Role:  middleware.GetAdminRole(c),
	}

	member, err := action(c.Request.Context(), uint(id), reviewer)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		case errors.Is(err, services.ErrInvalidTransition):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Application cannot be moved to that status"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to update application"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"member": member.ToResponse()})
}

// @Summary Export Members
// @Description Downloads the member roster as a spreadsheet
// @Tags Members
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Security BearerAuth
// @Router /admin/members/export [get]
func (h *MemberHandler) Export(c *gin.Context) {
	data, filename, err := h.exportService.ExportMembersXLSX(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to export members"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// @Summary Membership Card
// @Description Downloads an approved member's ID card as PDF
// @Tags Members
// @Produce application/pdf
// @Param member_id path int true "Member ID"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /admin/members/{member_id}/card_pdf [get]
func (h *MemberHandler) CardPDF(c *gin.Context) {
	id, _ := strconv.ParseUint(c.Param("member_id"), 10, 32)
	data, filename, err := h.cardService.MembershipCardPDF(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}
