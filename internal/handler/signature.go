package handler

import (
	"net/http"
	"strconv"

	"github.com/fieldworks/workorder-service/internal/model"
	"github.com/fieldworks/workorder-service/internal/service"
	"github.com/gin-gonic/gin"
)

type SignatureHandler struct {
	svc *service.SignatureService
}

func NewSignatureHandler(svc *service.SignatureService) *SignatureHandler {
	return &SignatureHandler{svc: svc}
}

type recordSignatureRequest struct {
	SignerType     string `json:"signer_type" binding:"required"`
	SignerName     string `json:"signer_name" binding:"required"`
	SignerTitle    string `json:"signer_title"`
	SignatureImage string `json:"signature_image"`
}

func (h *SignatureHandler) Record(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	workOrderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req recordSignatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	sig, err := h.svc.Record(c.Request.Context(), actor, workOrderID, service.RecordSignatureInput{
		SignerType:     model.SignerType(req.SignerType),
		SignerName:     req.SignerName,
		SignerTitle:    req.SignerTitle,
		SignatureImage: req.SignatureImage,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sig)
}

// List returns the recorded signatures and whether both signer roles have
// signed. fully_signed is advisory; completion does not require it.
func (h *SignatureHandler) List(c *gin.Context) {
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
	fullySigned, err := h.svc.IsFullySigned(c.Request.Context(), workOrderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"signatures":   items,
		"fully_signed": fullySigned,
	})
}
