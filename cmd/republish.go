package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/fieldworks/workorder-service/internal/config"
	"github.com/fieldworks/workorder-service/internal/database"
	"github.com/fieldworks/workorder-service/internal/kafka"
	"github.com/fieldworks/workorder-service/internal/model"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var republishCmd = &cobra.Command{
	Use:   "republish",
	Short: "Re-emit all stored work orders to Kafka so downstream consumers can rebuild",
	RunE:  runRepublish,
}

func init() {
	rootCmd.AddCommand(republishCmd)
}

func runRepublish(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if len(cfg.KafkaBrokers) == 0 || cfg.KafkaTopicWorkOrder == "" {
		return fmt.Errorf("republish: KAFKA_BROKERS and KAFKA_TOPIC_WORKORDER must be set")
	}
	conn, err := database.Open(cfg.DSN())
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}

	var orders []model.WorkOrder
	if err := conn.Find(&orders).Error; err != nil {
		return fmt.Errorf("list work orders: %w", err)
	}
	log.Printf("republish: found %d work orders", len(orders))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicWorkOrder)
	defer producer.Close()
	for i := range orders {
		wo := &orders[i]
		producer.ProduceWorkOrderEvent(ctx, "workorder.updated", map[string]interface{}{
			"work_order_id":     wo.ID,
			"work_order_number": wo.WorkOrderNumber,
			"status":            string(wo.Status),
			"priority":          string(wo.Priority),
			"service_type":      string(wo.ServiceType),
			"assigned_to":       wo.AssignedTo,
			"project_id":        wo.ProjectID,
		})
		if (i+1)%50 == 0 || i == len(orders)-1 {
			log.Printf("republish: sent %d/%d events", i+1, len(orders))
		}
	}
	log.Printf("republish: done, sent %d events", len(orders))
	return nil
}
