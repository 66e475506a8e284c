package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tallersur/presupuestos_backend/config"
	"github.com/tallersur/presupuestos_backend/handlers"
	"github.com/tallersur/presupuestos_backend/middlewares"
	"github.com/tallersur/presupuestos_backend/models"
	"github.com/tallersur/presupuestos_backend/utils"
	"go.opentelemetry.io/otel"
)

const defaultPort = "8080"

var tracer = otel.Tracer("presupuestos-backend")

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
			logger.WithFields(logrus.Fields{
				"path":          c.Request.URL.Path,
				"status":        c.Writer.Status(),
				"correlationId": cid,
			}).Error(c.Errors.String())
		}
	}
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Handle SIGTERM for graceful drain on revision shutdown.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	// Start the HTTP server ASAP; until DB/Redis are ready, app endpoints
	// answer 503.
	r := gin.New()

	// Correlation IDs: generate once per request and attach to context.
	r.Use(func(c *gin.Context) {
		cid := c.GetHeader("x-correlation-id")
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Request = c.Request.WithContext(utils.SetCorrelationIdInContext(c.Request.Context(), cid))
		c.Next()
	})
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil || config.GetRedisDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production, require an explicit allowlist via CORS_ALLOWED_ORIGINS.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("token", "Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(middlewares.SessionMiddleware())
	r.Use(requestLogger(logger))
	r.Use(gin.Recovery())

	r.POST("/login", handlers.Login)

	authed := r.Group("/", middlewares.RequireUser())
	{
		authed.POST("/logout", handlers.Logout)

		authed.GET("/dashboard", handlers.GetDashboard)
		authed.GET("/price-lookup", handlers.PriceLookup)

		authed.GET("/clients", handlers.ListClients)
		authed.POST("/clients", handlers.CreateClient)
		authed.GET("/clients/:id", handlers.GetClient)
		authed.PUT("/clients/:id", handlers.UpdateClient)
		authed.DELETE("/clients/:id", handlers.DeleteClient)
		authed.GET("/clients/:id/ledger", handlers.GetClientLedger)
		authed.GET("/clients/:id/ledger/export", handlers.ExportClientLedger)

		authed.GET("/clients/:id/custom-prices", handlers.ListCustomPrices)
		authed.POST("/clients/:id/custom-prices", handlers.CreateCustomPrice)
		authed.PUT("/clients/:id/custom-prices/:customPriceId", handlers.UpdateCustomPrice)
		authed.DELETE("/clients/:id/custom-prices/:customPriceId", handlers.DeleteCustomPrice)

		authed.GET("/products", handlers.ListProducts)
		authed.POST("/products", handlers.CreateProduct)
		authed.GET("/products/:id", handlers.GetProduct)
		authed.PUT("/products/:id", handlers.UpdateProduct)
		authed.DELETE("/products/:id", handlers.DeleteProduct)

		authed.GET("/quotes", handlers.ListQuotes)
		authed.POST("/quotes", handlers.CreateQuote)
		authed.GET("/quotes/:id", handlers.GetQuote)
		authed.PUT("/quotes/:id", handlers.UpdateQuote)
		authed.DELETE("/quotes/:id", handlers.DeleteQuote)
		authed.POST("/quotes/:id/send", handlers.SendQuote)
		authed.POST("/quotes/:id/cancel", handlers.CancelQuote)

		authed.GET("/payments", handlers.ListPayments)
		authed.POST("/payments", handlers.CreatePayment)
		authed.GET("/payments/:id", handlers.GetPayment)
		authed.PUT("/payments/:id", handlers.UpdatePayment)
		authed.DELETE("/payments/:id", handlers.DeletePayment)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	if config.SkipMigrations() {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS set; skipping AutoMigrate on startup")
	} else {
		models.MigrateTable()
	}

	select {
	case err := <-serverErrCh:
		if err != nil && err != http.ErrServerClosed {
			logger.WithFields(logrus.Fields{"field": "server"}).Fatal(err.Error())
		}
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithFields(logrus.Fields{"field": "shutdown"}).Error(err.Error())
		}
	}
}
