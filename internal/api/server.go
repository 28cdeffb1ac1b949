package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/storage"
)

// Server wraps the REST API server
type Server struct {
	handler *Handler
	router  *gin.Engine
}

// NewServer creates a new API server
func NewServer(db *gorm.DB, store *storage.Storage, issuer *auth.Issuer, cfg *config.Config, log *logrus.Logger) *Server {
	handler := NewHandler(db, store, issuer, cfg, log)

	router := gin.New()
	router.Use(requestLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	api := router.Group("/api")
	{
		// Liveness probe
		api.GET("/ping", handler.Ping)

		// Public user endpoints
		api.POST("/users/register", handler.Register)
		api.POST("/users/login", handler.Login)
		api.POST("/users/refresh", handler.Refresh)

		// Public post endpoints
		api.GET("/posts", handler.ListPosts)
		api.GET("/posts/:id", handler.GetPost)
		api.GET("/posts/:id/like-status", handler.GetLikeStatus)
		api.POST("/posts/like", handler.ToggleLike)
		api.GET("/assets/:id/:filename", handler.GetAsset)

		// Protected endpoints (require a valid access token)
		protected := api.Group("")
		protected.Use(RequireAuth(issuer))
		{
			protected.PATCH("/users/update", handler.UpdateUser)
			protected.DELETE("/users/delete", handler.DeleteUser)
			protected.POST("/posts/publish", handler.PublishPost)
		}
	}

	return &Server{
		handler: handler,
		router:  router,
	}
}

// requestLogger logs each request with structured fields.
func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"client":  c.ClientIP(),
		}).Info("request")
	}
}

// GetRouter returns the router
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
