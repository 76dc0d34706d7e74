package handler

import (
	"net/http"
	"strconv"

	"github.com/fieldworks/workorder-service/internal/service"
	"github.com/gin-gonic/gin"
)

type MaterialHandler struct {
	svc *service.MaterialService
}

func NewMaterialHandler(svc *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{svc: svc}
}

type addMaterialRequest struct {
	Name     string   `json:"name" binding:"required"`
	Quantity float64  `json:"quantity" binding:"required"`
	Unit     string   `json:"unit"`
	UnitCost *float64 `json:"unit_cost,omitempty"`
	Notes    string   `json:"notes"`
}

func (h *MaterialHandler) Add(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	workOrderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req addMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	m, err := h.svc.Add(c.Request.Context(), actor, workOrderID, service.AddMaterialInput{
		Name:     req.Name,
		Quantity: req.Quantity,
		Unit:     req.Unit,
		UnitCost: req.UnitCost,
		Notes:    req.Notes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

// List returns the ledger plus the derived total, so the caller does not need
// a second round trip.
func (h *MaterialHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	workOrderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	items, err := h.svc.List(c.Request.Context(), actor, workOrderID)
	if err != nil {
		writeError(c, err)
		return
	}
	total, err := h.svc.TotalCost(c.Request.Context(), actor, workOrderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"materials":  items,
		"total_cost": total,
	})
}

func (h *MaterialHandler) Remove(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	materialID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.svc.Remove(c.Request.Context(), actor, materialID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
