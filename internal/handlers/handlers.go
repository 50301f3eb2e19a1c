package handlers

import (
	"context"
	"net/http"
	"strconv"

	"surya-backend/internal/apperr"
	"surya-backend/internal/models"
	"surya-backend/internal/report"
	"surya-backend/internal/storage"
	"surya-backend/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Entities is the part of the entity store the HTTP layer uses.
type Entities interface {
	CreatePatient(ctx context.Context, in store.PatientInput) (*models.Patient, error)
	GetPatient(ctx context.Context, id uint) (*models.Patient, error)
	CreateOrder(ctx context.Context, patientID uint) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	GetOrderByToken(ctx context.Context, token string) (*models.Order, error)
	AppendTestResults(ctx context.Context, orderID uint, items []store.TestResultInput) error
	ListTestResults(ctx context.Context, orderID uint) ([]models.TestResult, error)
}

// ReportGenerator renders and stores an order's report.
type ReportGenerator interface {
	Generate(ctx context.Context, orderID uint) (*report.Result, error)
}

// CredentialChecker is the admin credential gate.
type CredentialChecker interface {
	Check(username, password string) bool
}

// Handlers contains the HTTP handlers of the service.
type Handlers struct {
	entities    Entities
	reports     ReportGenerator
	docs        storage.Store
	gate        CredentialChecker
	requireAuth bool
	log         *zap.Logger
}

// NewHandlers creates the HTTP handlers. When requireAuth is set every /api
// route except /api/login needs admin credentials via HTTP Basic auth.
func NewHandlers(entities Entities, reports ReportGenerator, docs storage.Store, gate CredentialChecker, requireAuth bool, log *zap.Logger) *Handlers {
	return &Handlers{
		entities:    entities,
		reports:     reports,
		docs:        docs,
		gate:        gate,
		requireAuth: requireAuth,
		log:         log,
	}
}

// RegisterRoutes registers all routes with the router.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.Health)
	router.GET("/r/:token", h.PublicReport)

	api := router.Group("/api")
	api.POST("/login", h.Login)

	admin := api.Group("")
	if h.requireAuth {
		admin.Use(h.RequireAdmin())
	}
	{
		admin.POST("/patient", h.CreatePatient)
		admin.GET("/patient/:id", h.GetPatientByID)
		admin.POST("/order", h.CreateOrder)
		admin.GET("/order/:id", h.GetOrderByID)
		admin.POST("/order/:id/tests", h.AddTestResults)
		admin.POST("/order/:id/generate", h.GenerateReport)
	}
}

// Health reports that the process is serving requests.
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// respondError maps an error kind to a status code and a minimal JSON body.
func (h *Handlers) respondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"message": apperr.MessageOf(err, "Invalid request")})
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"message": apperr.MessageOf(err, "Not found")})
	case apperr.KindUnauthorized:
		c.JSON(http.StatusUnauthorized, gin.H{"message": apperr.MessageOf(err, "Unauthorized")})
	case apperr.KindIntegrity:
		h.log.Error("integrity error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Report could not be generated"})
	default:
		h.log.Error("internal error", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

func parseID(c *gin.Context, what string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + what + " ID format"})
		return 0, false
	}
	return uint(id), true
}
