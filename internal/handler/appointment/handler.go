package appointment

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agendly/scheduler-api/internal/middleware"
	"github.com/agendly/scheduler-api/internal/model"
	"github.com/agendly/scheduler-api/internal/service/scheduling"
	apperrors "github.com/agendly/scheduler-api/pkg/errors"
	"github.com/agendly/scheduler-api/pkg/httputil"
)

type Handler struct {
	service  *scheduling.Service
	validate *validator.Validate
}

func NewHandler(service *scheduling.Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	appointments := rg.Group("/appointments")
	{
		appointments.POST("", h.Book)
		appointments.GET("", h.List)
		appointments.GET("/slots", h.FreeSlots)
		appointments.GET("/:id", h.Get)
		appointments.PUT("/:id", h.Reschedule)
		appointments.PATCH("/:id/status", h.UpdateStatus)
		appointments.DELETE("/:id", h.Delete)
		appointments.DELETE("/groups/:groupID", h.DeleteGroup)
	}
}

// Book creates a single or recurring booking. A 409 with
// confirmation_required means nothing was written and the caller should
// resubmit with the matching override flag.
func (h *Handler) Book(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	requesterID, ok := middleware.RequesterID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	result, confirm, err := h.service.Book(c.Request.Context(), requesterID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if confirm != nil {
		httputil.RespondWithConfirmation(c, confirm.Message, confirm.Context)
		return
	}

	httputil.RespondWithCreated(c, result)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid appointment ID"))
		return
	}

	appt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) List(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	appointments, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointments)
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid appointment ID"))
		return
	}

	var req model.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	requesterID, ok := middleware.RequesterID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	appt, batch, confirm, err := h.service.Reschedule(c.Request.Context(), requesterID, id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	if confirm != nil {
		httputil.RespondWithConfirmation(c, confirm.Message, confirm.Context)
		return
	}

	httputil.RespondWithSuccess(c, gin.H{
		"appointment": appt,
		"regenerated": batch,
	})
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid appointment ID"))
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	requesterID, ok := middleware.RequesterID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	appt, err := h.service.UpdateStatus(c.Request.Context(), requesterID, id, req.Status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appt)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid appointment ID"))
		return
	}

	requesterID, ok := middleware.RequesterID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	if err := h.service.Delete(c.Request.Context(), requesterID, id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}

func (h *Handler) DeleteGroup(c *gin.Context) {
	groupID, err := uuid.Parse(c.Param("groupID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid group ID"))
		return
	}

	requesterID, ok := middleware.RequesterID(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}

	count, err := h.service.DeleteGroup(c.Request.Context(), requesterID, groupID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": count})
}

// FreeSlots lists open start times for a professional, date and duration.
func (h *Handler) FreeSlots(c *gin.Context) {
	var req model.FreeSlotsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	slots, err := h.service.FreeSlots(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"slots": slots})
}

func parseFilters(c *gin.Context) (*model.AppointmentFilters, error) {
	filters := &model.AppointmentFilters{}

	if v := c.Query("professional_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, apperrors.NewValidation("invalid professional ID")
		}
		filters.ProfessionalID = &id
	}
	if v := c.Query("patient_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, apperrors.NewValidation("invalid patient ID")
		}
		filters.PatientID = &id
	}
	if v := c.Query("location_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, apperrors.NewValidation("invalid location ID")
		}
		filters.LocationID = &id
	}
	if v := c.Query("status"); v != "" {
		filters.Status = model.AppointmentStatus(v)
	}
	if v := c.Query("from"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return nil, apperrors.NewValidation("invalid from date, expected YYYY-MM-DD")
		}
		filters.From = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			return nil, apperrors.NewValidation("invalid to date, expected YYYY-MM-DD")
		}
		filters.To = t
	}

	return filters, nil
}
