package ui

import (
	"net/http"
	"time"

	"data4viz/app"
	"data4viz/internal"
	"data4viz/internal/errors"
	"data4viz/ports"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server is the JSON API surface: workspace CRUD, dataset management,
// decision-EDA statistics, and insight generation
type Server struct {
	router     *gin.Engine
	insights   *app.InsightService
	workspaces ports.WorkspaceRepository
	datasets   ports.DatasetStore
	log        *internal.Logger
}

// NewServer wires the API routes
func NewServer(
	insights *app.InsightService,
	workspaces ports.WorkspaceRepository,
	datasets ports.DatasetStore,
	log *internal.Logger,
) *Server {
	if log == nil {
		log = internal.DefaultLogger
	}

	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	s := &Server{
		router:     router,
		insights:   insights,
		workspaces: workspaces,
		datasets:   datasets,
		log:        log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")

	api.POST("/workspaces", s.handleCreateWorkspace)
	api.GET("/workspaces", s.handleListWorkspaces)
	api.GET("/workspaces/:id", s.handleGetWorkspace)
	api.DELETE("/workspaces/:id", s.handleDeleteWorkspace)

	api.POST("/workspaces/:id/datasets", s.handleUploadDataset)
	api.GET("/workspaces/:id/datasets", s.handleListDatasets)
	api.DELETE("/workspaces/:id/datasets/:name", s.handleDeleteDataset)

	api.POST("/decision-eda", s.handleDecisionEDA)
	api.POST("/insights/generate", s.handleGenerateInsights)
	api.GET("/insights", s.handleGetInsights)
	api.DELETE("/insights", s.handleDeleteInsights)
}

// Router exposes the handler for serving and for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Run starts the API listener
func (s *Server) Run(addr string) error {
	s.log.Info("[API] listening on %s", addr)
	return s.router.Run(addr)
}

// respondError maps AppError codes onto HTTP statuses
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeInvalidInput, errors.CodeValidationError:
		status = http.StatusBadRequest
	case errors.CodeExternalService:
		status = http.StatusBadGateway
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
