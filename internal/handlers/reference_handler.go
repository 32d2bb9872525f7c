package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ycmovement/membership-api/internal/services"
)

type ReferenceHandler struct {
	referenceService *services.ReferenceService
}

func NewReferenceHandler(referenceService *services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{referenceService: referenceService}
}

// stateItem and lgaItem keep the wire format stable regardless of model shape
type stateItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type lgaItem struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// @Summary List States
// @Description Get all states sorted by name
// @Tags Reference
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /states [get]
func (h *ReferenceHandler) States(c *gin.Context) {
	states, err := h.referenceService.ListStates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Unable to fetch states"})
		return
	}

	data := make([]stateItem, 0, len(states))
	for _, s := range states {
		data = append(data, stateItem{ID: s.ID, Name: s.Name, Code: s.Code})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

// @Summary List LGAs
// @Description Get the LGAs of a state sorted by name
// @Tags Reference
// @Produce json
// @Param state_id query int true "State ID"
// @Success 200 {object} map[string]interface{}
// @Router /lgas [get]
func (h *ReferenceHandler) LGAs(c *gin.Context) {
	stateID, _ := strconv.Atoi(c.Query("state_id"))

	lgas, err := h.referenceService.ListLGAs(c.Request.Context(), stateID)
	if err != nil {
		if err == services.ErrInvalidStateID {
			c.JSON(http.StatusOK, gin.H{"success": false, "error": "Invalid state ID"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": false, "error": "Unable to fetch LGAs"})
		return
	}

	data := make([]lgaItem, 0, len(lgas))
	for _, l := range lgas {
		data = append(data, lgaItem{ID: l.ID, Name: l.Name})
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}
