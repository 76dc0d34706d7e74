package cmd

import (
	"fmt"
	"log"

	"github.com/fieldworks/workorder-service/internal/config"
	"github.com/fieldworks/workorder-service/internal/database"
	"github.com/fieldworks/workorder-service/internal/model"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all work orders with labor hours and materials cost to an .xlsx report",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "workorders.xlsx", "output file path")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	conn, err := database.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}

	var orders []model.WorkOrder
	if err := conn.Order("work_order_number ASC").Find(&orders).Error; err != nil {
		return fmt.Errorf("list work orders: %w", err)
	}

	// Materials totals per work order, one query.
	type costRow struct {
		WorkOrderID uint64
		Total       float64
	}
	var costs []costRow
	err = conn.Model(&model.Material{}).
		Select("work_order_id, COALESCE(SUM(total_cost), 0) AS total").
		Group("work_order_id").
		Scan(&costs).Error
	if err != nil {
		return fmt.Errorf("materials totals: %w", err)
	}
	totals := make(map[uint64]float64, len(costs))
	for _, c := range costs {
		totals[c.WorkOrderID] = c.Total
	}

	f := excelize.NewFile()
	defer f.Close()
	const sheet = "Work Orders"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Number", "Status", "Priority", "Service Type", "Description",
		"Assigned To", "Scheduled", "Labor Hours", "Materials Cost", "Completed"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, wo := range orders {
		values := []interface{}{
			wo.WorkOrderNumber,
			string(wo.Status),
			string(wo.Priority),
			string(wo.ServiceType),
			wo.Description,
			wo.AssignedTo,
			wo.ScheduledDate,
			nil,
			totals[wo.ID],
			wo.CompletedDate,
		}
		if wo.TotalLaborHours != nil {
			values[7] = *wo.TotalLaborHours
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	if err := f.SaveAs(exportOut); err != nil {
		return fmt.Errorf("save %s: %w", exportOut, err)
	}
	log.Printf("export: wrote %d work orders to %s", len(orders), exportOut)
	return nil
}
