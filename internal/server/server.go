package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/dj-collection-server/config"
	"github.com/jaki95/dj-collection-server/internal/instance"
)

// Server handles HTTP requests for the collection engine. It is thin glue:
// identity comes from an upstream auth layer via header, and everything else
// is delegated to the instance manager.
type Server struct {
	cfg     *config.Config
	router  *gin.Engine
	manager *instance.Manager
}

// New creates a new HTTP server instance.
func New(cfg *config.Config, manager *instance.Manager) *Server {
	router := gin.Default()

	server := &Server{
		cfg:     cfg,
		router:  router,
		manager: manager,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes() {
	// Add CORS middleware
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-User-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	s.router.GET("/health", s.healthCheck)

	// API endpoints; everything under /api/v1 requires a user identity
	api := s.router.Group("/api/v1")
	api.Use(requireUser())
	{
		api.GET("/collection", s.getCollectionStatus)
		api.POST("/collection", s.uploadCollection)
		api.DELETE("/collection", s.deleteCollection)
		api.GET("/collection/raw", s.getRawDocument)

		api.GET("/sidebar", s.getSidebar)
		api.GET("/playlists/tracks", s.getPlaylistTracks)

		api.POST("/playlists", s.createPlaylist)
		api.POST("/folders", s.createFolder)
		api.POST("/playlists/reorder", s.reorderPlaylist)
		api.POST("/playlists/tracks", s.appendTrack)
		api.POST("/nodes/rename", s.renameNode)
		api.POST("/nodes/move", s.moveNode)
		api.DELETE("/nodes", s.removeNode)
	}
}

// Start starts the HTTP server
func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "dj-collection-server",
	})
}

// requireUser extracts the caller identity supplied by the upstream auth
// layer. There is no session handling here; a missing identity is a 401.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "missing user identity"})
			return
		}
		c.Set(contextUserKey, userID)
		c.Next()
	}
}

const contextUserKey = "userID"

func userID(c *gin.Context) string {
	return c.GetString(contextUserKey)
}
