package notify

import (
	"context"
	"time"

	"github.com/fieldworks/workorder-service/internal/model"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client pushes completed work orders to the back-office collaborator
// (best-effort, never blocks the API path).
type Client struct {
	baseURL string
	http    *resty.Client
	log     *zap.Logger
}

// NewClient returns a client. With an empty baseURL every call is a no-op.
func NewClient(baseURL string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: baseURL,
		http:    resty.New().SetTimeout(5 * time.Second),
		log:     log,
	}
}

// CompletedPayload is the body of POST /backoffice/workorders/completed.
type CompletedPayload struct {
	WorkOrderID     uint64   `json:"work_order_id"`
	WorkOrderNumber string   `json:"work_order_number"`
	ProjectID       string   `json:"project_id,omitempty"`
	AssignedTo      string   `json:"assigned_to,omitempty"`
	CompletedDate   string   `json:"completed_date"`
	CompletedTime   string   `json:"completed_time"`
	TotalLaborHours *float64 `json:"total_labor_hours,omitempty"`
	WorkSummary     string   `json:"work_summary,omitempty"`
}

// NotifyCompleted reports a completed work order to the back office.
func (c *Client) NotifyCompleted(ctx context.Context, wo *model.WorkOrder) {
	if c.baseURL == "" || wo == nil {
		return
	}
	payload := CompletedPayload{
		WorkOrderID:     wo.ID,
		WorkOrderNumber: wo.WorkOrderNumber,
		ProjectID:       wo.ProjectID,
		AssignedTo:      wo.AssignedTo,
		CompletedDate:   wo.CompletedDate,
		CompletedTime:   wo.CompletedTime,
		TotalLaborHours: wo.TotalLaborHours,
		WorkSummary:     wo.WorkSummary,
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(c.baseURL + "/backoffice/workorders/completed")
	if err != nil {
		c.log.Warn("notify: completed work order", zap.Uint64("id", wo.ID), zap.Error(err))
		return
	}
	if resp.IsError() {
		c.log.Warn("notify: back office rejected completion",
			zap.Uint64("id", wo.ID), zap.Int("status", resp.StatusCode()))
	}
}

// NotifyCompletedAsync runs NotifyCompleted in its own goroutine so the API
// response is not held up.
func (c *Client) NotifyCompletedAsync(wo *model.WorkOrder) {
	if c.baseURL == "" || wo == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.NotifyCompleted(ctx, wo)
	}()
}
