package availability

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agendly/scheduler-api/internal/model"
	"github.com/agendly/scheduler-api/internal/service/availability"
	apperrors "github.com/agendly/scheduler-api/pkg/errors"
	"github.com/agendly/scheduler-api/pkg/httputil"
)

type Handler struct {
	service  *availability.Service
	validate *validator.Validate
}

func NewHandler(service *availability.Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	windows := rg.Group("/availability")
	{
		windows.POST("", h.CreateWindow)
		windows.GET("/professionals/:professionalID", h.ListForProfessional)
		windows.DELETE("/:id", h.DeleteWindow)
	}
}

func (h *Handler) CreateWindow(c *gin.Context) {
	var req model.CreateWindowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	window, err := h.service.CreateWindow(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, window)
}

func (h *Handler) ListForProfessional(c *gin.Context) {
	professionalID, err := uuid.Parse(c.Param("professionalID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid professional ID"))
		return
	}

	windows, err := h.service.ListForProfessional(c.Request.Context(), professionalID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, windows)
}

func (h *Handler) DeleteWindow(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid window ID"))
		return
	}

	if err := h.service.DeleteWindow(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}
