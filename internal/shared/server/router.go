package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobassist-backend/internal/applications"
	googleauth "jobassist-backend/internal/auth"
	"jobassist-backend/internal/cvs"
	"jobassist-backend/internal/profiles"
	"jobassist-backend/internal/shared/config"
	"jobassist-backend/internal/shared/metrics"
	"jobassist-backend/internal/shared/server/middleware"
	"jobassist-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config             config.Config
	GoogleAuth         *googleauth.GoogleService
	ProfileHandler     *profiles.Handler
	CVHandler          *cvs.Handler
	ApplicationHandler *applications.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
		middleware.RateLimit(sendAndUploadLimits()),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	registerMeRoutes(api)
	if deps.ProfileHandler != nil {
		deps.ProfileHandler.RegisterRoutes(api)
	}
	if deps.CVHandler != nil {
		deps.CVHandler.RegisterRoutes(api)
	}
	if deps.ApplicationHandler != nil {
		deps.ApplicationHandler.RegisterRoutes(api)
	}

	return r
}

// sendAndUploadLimits throttles the two endpoints that fan out to third
// parties: email sends and blob uploads. Everything else passes through.
func sendAndUploadLimits() middleware.RateLimitConfig {
	return middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"SEND":   {Rate: 0.2, Burst: 3},
			"UPLOAD": {Rate: 0.5, Burst: 5},
		},
		GroupFor: func(c *gin.Context) string {
			switch {
			case c.FullPath() == "/api/v1/job-applications/send":
				return "SEND"
			case c.FullPath() == "/api/v1/cv/upload":
				return "UPLOAD"
			case c.FullPath() == "/api/v1/cv/:id" && c.Request.Method == http.MethodPut:
				return "UPLOAD"
			default:
				return ""
			}
		},
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
