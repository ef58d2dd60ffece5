package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/argus/internal/api/handlers"
	"github.com/your-org/argus/internal/api/ws"
	"github.com/your-org/argus/internal/auth"
	"github.com/your-org/argus/internal/detect"
	"github.com/your-org/argus/internal/queue"
	"github.com/your-org/argus/internal/storage"
)

type RouterConfig struct {
	APIKey   string
	DB       *storage.PostgresStore
	MinIO    *storage.MinIOStore
	Producer *queue.Producer
	Hub      *ws.Hub
	Engine   *detect.Engine
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.MinIO, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (with auth)
	v1 := r.Group("/v1")
	v1.Use(auth.APIKeyMiddleware(cfg.APIKey))

	// WebSocket alert feed
	v1.GET("/ws", cfg.Hub.HandleWS)

	// Detection
	detH := handlers.NewDetectionHandler(cfg.DB, cfg.MinIO, cfg.Engine)
	v1.POST("/detect/realtime", detH.DetectRealtime)
	v1.POST("/detect/media", detH.DetectMedia)
	v1.GET("/detections", detH.List)
	v1.GET("/detections/:id", detH.Get)
	v1.GET("/detections/:id/snapshot", detH.Snapshot)
	v1.PATCH("/detections/:id/review", detH.Review)

	// Criminals
	crimH := handlers.NewCriminalHandler(cfg.DB)
	v1.POST("/criminals", crimH.Create)
	v1.GET("/criminals", crimH.List)
	v1.GET("/criminals/:id", crimH.Get)
	v1.PUT("/criminals/:id", crimH.Update)
	v1.DELETE("/criminals/:id", crimH.Delete)

	// Cases, suspects, evidence
	caseH := handlers.NewCaseHandler(cfg.DB, cfg.MinIO, cfg.Engine)
	v1.POST("/cases", caseH.Create)
	v1.GET("/cases", caseH.List)
	v1.GET("/cases/:id", caseH.Get)
	v1.PATCH("/cases/:id/status", caseH.UpdateStatus)
	v1.POST("/cases/:id/suspects", caseH.CreateSuspect)
	v1.GET("/cases/:id/suspects", caseH.ListSuspects)
	v1.POST("/cases/:id/evidence", caseH.AddEvidence)
	v1.GET("/cases/:id/evidence", caseH.ListEvidence)
	v1.DELETE("/cases/:id/evidence/:evidenceId", caseH.DeleteEvidence)
	v1.POST("/cases/:id/evidence/:evidenceId/match", caseH.MatchEvidence)

	// Cameras
	camH := handlers.NewCameraHandler(cfg.DB, cfg.Producer)
	v1.POST("/cameras", camH.Create)
	v1.GET("/cameras", camH.List)
	v1.GET("/cameras/:id", camH.Get)
	v1.POST("/cameras/:id/start", camH.Start)
	v1.POST("/cameras/:id/stop", camH.Stop)
	v1.DELETE("/cameras/:id", camH.Delete)

	return r
}
