package application

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fieldworks/workorder-service/internal/config"
	"github.com/fieldworks/workorder-service/internal/database"
	"github.com/fieldworks/workorder-service/internal/handler"
	"github.com/fieldworks/workorder-service/internal/kafka"
	"github.com/fieldworks/workorder-service/internal/logger"
	"github.com/fieldworks/workorder-service/internal/notify"
	"github.com/fieldworks/workorder-service/internal/router"
	"github.com/fieldworks/workorder-service/internal/service"
	"go.uber.org/zap"
)

// API wires the HTTP server and its dependencies (mode: api).
type API struct {
	cfg      *config.Config
	log      *zap.Logger
	httpSrv  *http.Server
	producer *kafka.Producer
}

func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}

	workOrderSvc := service.NewWorkOrderService(db, time.Now, log)
	materialSvc := service.NewMaterialService(db, time.Now)
	signatureSvc := service.NewSignatureService(db, time.Now)

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicWorkOrder)
	notifier := notify.NewClient(cfg.BackofficeURL, log)

	h := router.New(log,
		handler.NewWorkOrderHandler(workOrderSvc, producer, notifier),
		handler.NewMaterialHandler(materialSvc),
		handler.NewSignatureHandler(signatureSvc),
	)

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{
		cfg:      cfg,
		log:      log,
		httpSrv:  httpSrv,
		producer: producer,
	}, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *API) Run(ctx context.Context) error {
	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	base := "http://" + host + ":" + a.cfg.HTTPPort
	a.log.Info("http server listening",
		zap.String("addr", a.httpSrv.Addr),
		zap.String("swagger", base+"/swagger"),
		zap.String("api", base+"/api/v1/"),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := a.producer.Close(); err != nil {
		a.log.Warn("kafka close", zap.Error(err))
	}
	_ = a.log.Sync()
	return nil
}
