package router

import (
	"net/http"
	"strings"

	"github.com/fieldworks/workorder-service/api"
	"github.com/fieldworks/workorder-service/internal/handler"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

const pathSwagger = "/swagger"

func New(log *zap.Logger, workOrders *handler.WorkOrderHandler, materials *handler.MaterialHandler, signatures *handler.SignatureHandler) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(log))

	r.GET("/health", handler.Health)
	r.GET("/ready", handler.Ready)
	r.GET(pathSwagger, func(c *gin.Context) { c.Redirect(http.StatusFound, pathSwagger+"/") })
	r.GET(pathSwagger+"/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = pathSwagger + "/index.html"
			c.Request.RequestURI = pathSwagger + "/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))(c)
	})

	v1 := r.Group("/api/v1")
	{
		v1.POST("/workorders", workOrders.Create)
		v1.GET("/workorders", workOrders.List)
		v1.GET("/workorders/:id", workOrders.Get)
		v1.PATCH("/workorders/:id", workOrders.UpdateExecution)
		v1.PUT("/workorders/:id/status", workOrders.SetStatus)
		v1.DELETE("/workorders/:id", workOrders.Delete)

		v1.POST("/workorders/:id/materials", materials.Add)
		v1.GET("/workorders/:id/materials", materials.List)
		v1.DELETE("/materials/:id", materials.Remove)

		v1.POST("/workorders/:id/signatures", signatures.Record)
		v1.GET("/workorders/:id/signatures", signatures.List)
	}

	return r
}
