package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fieldworks/workorder-service/internal/handler"
	"github.com/fieldworks/workorder-service/internal/model"
	"github.com/fieldworks/workorder-service/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.WorkOrder{}, &model.Material{}, &model.Signature{}))

	workOrders := service.NewWorkOrderService(db, nil, zap.NewNop())
	materials := service.NewMaterialService(db, nil)
	signatures := service.NewSignatureService(db, nil)

	return New(zap.NewNop(),
		handler.NewWorkOrderHandler(workOrders, nil, nil),
		handler.NewMaterialHandler(materials),
		handler.NewSignatureHandler(signatures),
	)
}

func doJSON(t *testing.T, r http.Handler, method, path, body, callerID, callerRole string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if callerID != "" {
		req.Header.Set("X-Caller-Id", callerID)
		req.Header.Set("X-Caller-Role", callerRole)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const createBody = `{"description":"Replace lobby light fixture","priority":"normal","service_type":"repair"}`

func TestMissingCallerIdentity(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/workorders", createBody, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/workorders", createBody, "x-1", "superuser")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateAndGetWorkOrder(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/workorders", createBody, "admin-1", "admin")
	require.Equal(t, http.StatusCreated, w.Code)

	var created model.WorkOrder
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.WorkOrderNumber)
	assert.Equal(t, model.StatusPending, created.Status)

	w = doJSON(t, r, http.MethodGet, "/api/v1/workorders/1", "", "staff-7", "staff")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/workorders/999", "", "admin-1", "admin")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClientForbidden(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/workorders", createBody, "client-3", "client")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/v1/workorders", "", "client-3", "client")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDuplicateSignatureConflict(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/workorders", createBody, "admin-1", "admin")
	require.Equal(t, http.StatusCreated, w.Code)

	sigBody := `{"signer_type":"tl_corp_rep","signer_name":"J. Ruiz"}`
	w = doJSON(t, r, http.MethodPost, "/api/v1/workorders/1/signatures", sigBody, "admin-1", "admin")
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/v1/workorders/1/signatures", sigBody, "admin-1", "admin")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestValidationMapsToBadRequest(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/workorders",
		`{"description":"x","priority":"extreme","service_type":"repair"}`, "admin-1", "admin")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", "", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodGet, "/ready", "", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", "", "", "")
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "req-abc", rec.Header().Get("X-Request-Id"))
}
