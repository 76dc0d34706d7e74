package service

import (
	"testing"
	"time"

	"github.com/fieldworks/workorder-service/internal/model"
	"github.com/fieldworks/workorder-service/internal/policy"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	admin      = policy.Actor{ID: "admin-1", Role: policy.RoleAdmin}
	staffSeven = policy.Actor{ID: "staff-7", Role: policy.RoleStaff}
	staffNine  = policy.Actor{ID: "staff-9", Role: policy.RoleStaff}
	client     = policy.Actor{ID: "client-3", Role: policy.RoleClient}
)

// newTestDB opens an in-memory SQLite database with the schema automigrated.
// MaxOpenConns(1) keeps the pool on the single in-memory connection.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.WorkOrder{}, &model.Material{}, &model.Signature{}))
	return db
}

// mutableClock lets a test move "now" between calls.
type mutableClock struct {
	t time.Time
}

func clockAt(t *testing.T, stamp string) *mutableClock {
	t.Helper()
	parsed, err := time.Parse("2006-01-02T15:04", stamp)
	require.NoError(t, err)
	return &mutableClock{t: parsed}
}

func (c *mutableClock) Now() time.Time { return c.t }

func (c *mutableClock) Set(t *testing.T, stamp string) {
	t.Helper()
	parsed, err := time.Parse("2006-01-02T15:04", stamp)
	require.NoError(t, err)
	c.t = parsed
}

func newTestServices(t *testing.T, clock *mutableClock) (*WorkOrderService, *MaterialService, *SignatureService) {
	t.Helper()
	db := newTestDB(t)
	return NewWorkOrderService(db, clock.Now, nil),
		NewMaterialService(db, clock.Now),
		NewSignatureService(db, clock.Now)
}

func validCreateInput() CreateWorkOrderInput {
	return CreateWorkOrderInput{
		Description: "Replace lobby light fixture",
		Priority:    model.PriorityNormal,
		ServiceType: model.ServiceRepair,
	}
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }
