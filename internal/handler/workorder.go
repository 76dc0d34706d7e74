package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/fieldworks/workorder-service/internal/kafka"
	"github.com/fieldworks/workorder-service/internal/model"
	"github.com/fieldworks/workorder-service/internal/notify"
	"github.com/fieldworks/workorder-service/internal/service"
	"github.com/gin-gonic/gin"
)

type WorkOrderHandler struct {
	svc      *service.WorkOrderService
	producer kafka.WorkOrderEventProducer
	notify   *notify.Client
}

func NewWorkOrderHandler(svc *service.WorkOrderService, producer kafka.WorkOrderEventProducer, notify *notify.Client) *WorkOrderHandler {
	return &WorkOrderHandler{svc: svc, producer: producer, notify: notify}
}

func workOrderEventPayload(wo *model.WorkOrder) map[string]interface{} {
	if wo == nil {
		return nil
	}
	return map[string]interface{}{
		"work_order_id":     wo.ID,
		"work_order_number": wo.WorkOrderNumber,
		"status":            string(wo.Status),
		"priority":          string(wo.Priority),
		"service_type":      string(wo.ServiceType),
		"assigned_to":       wo.AssignedTo,
		"project_id":        wo.ProjectID,
	}
}

// produce fires an event without holding up the response; the event should go
// out even if the request context is already cancelled.
func (h *WorkOrderHandler) produce(event string, wo *model.WorkOrder) {
	if h.producer == nil || wo == nil {
		return
	}
	payload := workOrderEventPayload(wo)
	eventCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	go func() {
		defer cancel()
		h.producer.ProduceWorkOrderEvent(eventCtx, event, payload)
	}()
}

type createWorkOrderRequest struct {
	Description  string `json:"description" binding:"required"`
	ReceivedDate string `json:"received_date"`
	TimeReceived string `json:"time_received"`

	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
	ContactEmail string `json:"contact_email"`
	Company      string `json:"company"`
	Department   string `json:"department"`

	Location           string `json:"location"`
	Unit               string `json:"unit"`
	Area               string `json:"area"`
	AccessInstructions string `json:"access_instructions"`
	PreferredEntry     string `json:"preferred_entry_window"`

	Priority    string `json:"priority" binding:"required"`
	ServiceType string `json:"service_type" binding:"required"`

	AssignedTo string `json:"assigned_to"`
	ProjectID  string `json:"project_id"`

	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
}

func (h *WorkOrderHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req createWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	wo, err := h.svc.Create(c.Request.Context(), actor, service.CreateWorkOrderInput{
		Description:        req.Description,
		ReceivedDate:       req.ReceivedDate,
		TimeReceived:       req.TimeReceived,
		ContactName:        req.ContactName,
		ContactPhone:       req.ContactPhone,
		ContactEmail:       req.ContactEmail,
		Company:            req.Company,
		Department:         req.Department,
		Location:           req.Location,
		Unit:               req.Unit,
		Area:               req.Area,
		AccessInstructions: req.AccessInstructions,
		PreferredEntry:     req.PreferredEntry,
		Priority:           model.Priority(req.Priority),
		ServiceType:        model.ServiceType(req.ServiceType),
		AssignedTo:         req.AssignedTo,
		ProjectID:          req.ProjectID,
		ScheduledDate:      req.ScheduledDate,
		ScheduledTime:      req.ScheduledTime,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.produce("workorder.created", wo)
	c.JSON(http.StatusCreated, wo)
}

func (h *WorkOrderHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	wo, err := h.svc.Get(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, wo)
}

func (h *WorkOrderHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	filter := make(map[string]interface{})
	if v := c.Query("status"); v != "" {
		filter["work_completed = ?"] = v
	}
	if v := c.Query("priority"); v != "" {
		filter["priority = ?"] = v
	}
	if v := c.Query("service_type"); v != "" {
		filter["service_type = ?"] = v
	}
	if v := c.Query("assigned_to"); v != "" {
		filter["assigned_to = ?"] = v
	}
	if v := c.Query("project_id"); v != "" {
		filter["project_id = ?"] = v
	}

	limit := 0
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	items, total, err := h.svc.List(c.Request.Context(), actor, filter, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"work_orders": items,
		"total":       total,
	})
}

type updateExecutionRequest struct {
	TimeIn        *string `json:"time_in,omitempty"`
	TimeOut       *string `json:"time_out,omitempty"`
	WorkSummary   *string `json:"work_summary,omitempty"`
	AssignedTo    *string `json:"assigned_to,omitempty"`
	ScheduledDate *string `json:"scheduled_date,omitempty"`
	ScheduledTime *string `json:"scheduled_time,omitempty"`
}

func (h *WorkOrderHandler) UpdateExecution(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateExecutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	wo, err := h.svc.UpdateExecution(c.Request.Context(), actor, id, service.ExecutionUpdate{
		TimeIn:        req.TimeIn,
		TimeOut:       req.TimeOut,
		WorkSummary:   req.WorkSummary,
		AssignedTo:    req.AssignedTo,
		ScheduledDate: req.ScheduledDate,
		ScheduledTime: req.ScheduledTime,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.produce("workorder.updated", wo)
	c.JSON(http.StatusOK, wo)
}

type setStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *WorkOrderHandler) SetStatus(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	wo, err := h.svc.SetStatus(c.Request.Context(), actor, id, model.WorkOrderStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	h.produce("workorder.status_changed", wo)
	if wo.Status == model.StatusCompleted && h.notify != nil {
		h.notify.NotifyCompletedAsync(wo)
	}
	c.JSON(http.StatusOK, wo)
}

func (h *WorkOrderHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.svc.Delete(c.Request.Context(), actor, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
