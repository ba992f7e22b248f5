package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"anniversary-api/internal/metrics"
	"anniversary-api/internal/service"
)

// Pinger verifica la conectividad con el almacenamiento.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	collector *metrics.Collector,
	gatherer prometheus.Gatherer,
	db Pinger,
	jwtSvc *service.JWTService,
	userH *UserHandler,
	categoryH *CategoryHandler,
	anniversaryH *AnniversaryHandler,
) *gin.Engine {
	useJSONFieldNames()

	r := gin.New()

	// Middlewares basicos: logging, recovery y metricas.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery())

	var recorder metrics.AuthRecorder = metrics.Nop{}
	if collector != nil {
		recorder = collector
		r.Use(metricsMiddleware(collector))
	}
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))
	}
	r.GET("/healthz", healthHandler(db))

	auth := r.Group("/auth")
	auth.POST("/signup", userH.Signup)
	auth.POST("/signin", userH.Signin)
	auth.POST("/signout", userH.Signout)

	protected := r.Group("", JWTAuthMiddleware(jwtSvc, recorder))

	users := protected.Group("/users")
	users.GET("/me", userH.Me)

	categories := protected.Group("/categories")
	categories.GET("", categoryH.List)
	categories.POST("", categoryH.Create)
	categories.GET("/:id", categoryH.Get)
	categories.PUT("/:id", categoryH.Update)
	categories.DELETE("/:id", categoryH.Delete)

	anniversaries := protected.Group("/anniversaries")
	anniversaries.GET("", anniversaryH.List)
	anniversaries.POST("", anniversaryH.Create)
	anniversaries.GET("/:id", anniversaryH.Get)
	anniversaries.PUT("/:id", anniversaryH.Update)
	anniversaries.DELETE("/:id", anniversaryH.Delete)

	return r
}

// zapLoggerMiddleware registra cada request con su request id y latencia.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		requestID := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if userID, ok := IdentityFrom(c); ok {
			fields = append(fields, zap.Int64("user_id", userID))
		}

		switch {
		case status >= 500:
			logger.Error("request", fields...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

func metricsMiddleware(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		collector.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

func healthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
