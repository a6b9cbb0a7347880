package commission

import (
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/agendly/scheduler-api/internal/model"
	"github.com/agendly/scheduler-api/internal/service/commission"
	apperrors "github.com/agendly/scheduler-api/pkg/errors"
	"github.com/agendly/scheduler-api/pkg/httputil"
)

type Handler struct {
	service  *commission.Service
	validate *validator.Validate
}

func NewHandler(service *commission.Service) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	commissions := rg.Group("/commissions")
	{
		commissions.POST("/rules", h.CreateRule)
		commissions.GET("/rules/professionals/:professionalID", h.ListRules)
		commissions.DELETE("/rules/:id", h.DeleteRule)
		commissions.GET("/entries/professionals/:professionalID", h.ListEntries)
		commissions.GET("/fees", h.ListFees)
	}
}

func (h *Handler) CreateRule(c *gin.Context) {
	var req model.CreateCommissionRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error()))
		return
	}

	rule := &model.CommissionRule{
		ProfessionalID: req.ProfessionalID,
		ServiceID:      req.ServiceID,
		Type:           req.Type,
		Value:          req.Value,
		Basis:          req.Basis,
	}
	if err := h.service.CreateRule(c.Request.Context(), rule); err != nil {
		httputil.RespondWithError(c, apperrors.FromStore(err))
		return
	}
	httputil.RespondWithCreated(c, rule)
}

func (h *Handler) ListRules(c *gin.Context) {
	professionalID, err := uuid.Parse(c.Param("professionalID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid professional ID"))
		return
	}

	rules, err := h.service.RulesFor(c.Request.Context(), professionalID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rules)
}

func (h *Handler) DeleteRule(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid rule ID"))
		return
	}

	if err := h.service.DeleteRule(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, apperrors.NewNotFound("commission rule", err))
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"deleted": id})
}

func (h *Handler) ListEntries(c *gin.Context) {
	professionalID, err := uuid.Parse(c.Param("professionalID"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid professional ID"))
		return
	}

	status := model.CommissionEntryStatus(c.Query("status"))
	entries, err := h.service.ListEntries(c.Request.Context(), professionalID, status)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, entries)
}

func (h *Handler) ListFees(c *gin.Context) {
	fees, err := h.service.ListFees(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, fees)
}
