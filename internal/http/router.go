// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// CORS, security headers, the double-submission guard, and rate limiting.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/jalud/go-leads-backend/internal/ai"
	"github.com/jalud/go-leads-backend/internal/config"
	"github.com/jalud/go-leads-backend/internal/http/handlers"
	"github.com/jalud/go-leads-backend/internal/http/middleware"
	"github.com/jalud/go-leads-backend/internal/mail"
	"github.com/jalud/go-leads-backend/internal/media"
	"github.com/jalud/go-leads-backend/internal/repo"
	"github.com/jalud/go-leads-backend/internal/services"
)

// uploadBodyHeadroom is added on top of the configured image cap when sizing
// the global body limit, leaving room for multipart framing and form fields.
const uploadBodyHeadroom = 1 << 20

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine, constructing the service graph from the injected database and
// collaborators.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing (leads carry
//     names, emails, phone numbers)
//  4. Recovery: capture panics after logger
//  5. Body size limiter (sized for image uploads)
//  6. Gzip compression for listing payloads
//  7. Metrics
//  8. SubmitOnce guard (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per IP, bypass on replay)
//  10. CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-Api-Key"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit, sized so image uploads fit
	maxBody := int64(cfg.MaxUploadMB)<<20 + uploadBodyHeadroom
	r.Use(limitBody(maxBody))

	// 6) Compress responses (listing payloads shrink well)
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Double-submission guard (before rate limiting)
	r.Use(middleware.SubmitOnce(
		middleware.SubmitOnceOptions{MaxLen: 200},
		func(ctx context.Context, key string, now time.Time) (bool, error) {
			rec, err := repo.GetReceipt(ctx, db, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderSubmissionKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist.
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderSubmissionKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Server läuft"})
	})

	// Swagger UI (opt-in, for non-production environments)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db/mail/ai/media
	store := media.NewStore(cfg.UploadsDir, cfg.UploadBaseURL, int64(cfg.MaxUploadMB)<<20)

	var notifier services.Notifier
	if cfg.SMTP.Configured() {
		notifier = mail.NewSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User,
			cfg.SMTP.Password, cfg.SMTP.From, cfg.SMTP.AdminEmail)
	}

	leadSvc := &services.LeadService{DB: db, Mailer: notifier, ReceiptTTL: cfg.ReceiptTTL}
	postSvc := &services.PostService{DB: db, Media: store}
	contentSvc := &services.ContentService{
		Gen: ai.New(cfg.OpenAI.Endpoint, cfg.OpenAI.APIKey, cfg.OpenAI.Deployment, cfg.OpenAI.APIVersion),
	}

	h := handlers.New(leadSvc, postSvc, contentSvc, store)

	// Stored images are served back under their public prefix.
	r.Static(cfg.UploadBaseURL, cfg.UploadsDir)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath) // e.g. "/api"
	{
		// Leads
		api.POST("/leads", h.CreateLead)
		api.GET("/leads", h.ListLeads)
		api.GET("/leads/:id", h.GetLead)
		api.PUT("/leads/:id", h.UpdateLead)
		api.DELETE("/leads/:id", h.DeleteLead)
		api.GET("/stats", h.GetStats)

		// Blog
		api.POST("/blog/generate", h.GenerateDraft)
		api.POST("/blog/upload-image", h.UploadImage)
		api.POST("/blog/posts", h.CreatePost)
		api.GET("/blog/posts", h.ListPosts)
		api.GET("/blog/posts/published", h.ListPublishedPosts)
		api.GET("/blog/posts/slug/:slug", h.GetPostBySlug)
		api.GET("/blog/posts/:id", h.GetPost)
		api.PUT("/blog/posts/:id", h.UpdatePost)
		api.DELETE("/blog/posts/:id", h.DeletePost)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
