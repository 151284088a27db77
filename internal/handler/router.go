package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"bettracker/internal/auth"
	"bettracker/internal/repository"
	"bettracker/internal/service"
)

// Deps is everything the HTTP surface is wired from.
type Deps struct {
	Logger   *zap.Logger
	Ping     func(ctx context.Context) error
	Lookups  repository.LookupRepository
	Location *time.Location

	Tickets     *service.TicketService
	Stats       *service.StatsService
	MarketTypes *service.MarketTypeService
	Settings    *service.SystemSettingsService
	AI          *service.AIService
	OCR         *service.OCRService

	// JWT enables bearer auth on every /api route except the token endpoint.
	JWT         *auth.JWT
	Password    string
	CORSOrigins []string

	MaxUploadBytes int64
	Swagger        bool
}

func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))
	engine.Use(corsMiddleware(d.CORSOrigins))

	(&HealthHandler{Ping: d.Ping}).Register(engine)
	if d.Swagger {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := engine.Group("")
	if d.JWT != nil {
		(&AuthHandler{JWT: *d.JWT, Password: d.Password}).Register(engine)
		api.Use(auth.Middleware(*d.JWT, "/api/auth/token"))
	}

	(&TicketHandler{Tickets: d.Tickets, Location: d.Location}).Register(api)
	(&StatsHandler{Stats: d.Stats, Location: d.Location}).Register(api)
	(&MetaHandler{Repo: d.Lookups}).Register(api)
	(&MarketTypeHandler{MarketTypes: d.MarketTypes}).Register(api)
	(&SettingsHandler{Settings: d.Settings}).Register(api)
	(&AIHandler{AI: d.AI}).Register(api)
	(&OCRHandler{OCR: d.OCR, MaxUploadBytes: d.MaxUploadBytes}).Register(api)
	return engine
}
