package location

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agendly/scheduler-api/internal/model"
	"github.com/agendly/scheduler-api/internal/repository"
	apperrors "github.com/agendly/scheduler-api/pkg/errors"
	"github.com/agendly/scheduler-api/pkg/httputil"
)

type Handler struct {
	locations repository.LocationRepository
	validate  *validator.Validate
}

func NewHandler(locations repository.LocationRepository) *Handler {
	return &Handler{
		locations: locations,
		validate:  validator.New(),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	locations := rg.Group("/locations")
	{
		locations.POST("", h.Create)
		locations.GET("", h.List)
		locations.GET("/:id", h.Get)
		locations.PUT("/:id", h.Update)
		locations.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	var req model.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	now := time.Now()
	location := &model.Location{
		Base:     model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:     req.Name,
		Capacity: req.Capacity,
	}
	if err := h.locations.Create(c.Request.Context(), location); err != nil {
		httputil.RespondWithError(c, apperrors.FromStore(err))
		return
	}
	httputil.RespondWithCreated(c, location)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid location ID"))
		return
	}

	location, err := h.locations.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewNotFound("location", err))
		return
	}
	httputil.RespondWithSuccess(c, location)
}

func (h *Handler) List(c *gin.Context) {
	locations, err := h.locations.List(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, apperrors.FromStore(err))
		return
	}
	httputil.RespondWithSuccess(c, locations)
}

func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid location ID"))
		return
	}

	var req model.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	location, err := h.locations.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewNotFound("location", err))
		return
	}

	location.Name = req.Name
	location.Capacity = req.Capacity
	location.UpdatedAt = time.Now()
	if err := h.locations.Update(c.Request.Context(), location); err != nil {
		httputil.RespondWithError(c, apperrors.FromStore(err))
		return
	}
	httputil.RespondWithSuccess(c, location)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid location ID"))
		return
	}

	if err := h.locations.Delete(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, apperrors.NewNotFound("location", err))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}
