package authorization

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meditrack/authorization-api/internal/middleware"
	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/internal/service/authorization"
	"github.com/meditrack/authorization-api/internal/service/evaluation"
	"github.com/meditrack/authorization-api/pkg/errors"
	"github.com/meditrack/authorization-api/pkg/httputil"
)

type Handler struct {
	authorizations authorization.AuthorizationService
	evaluations    evaluation.EvaluationService
}

func NewHandler(authorizations authorization.AuthorizationService, evaluations evaluation.EvaluationService) *Handler {
	return &Handler{authorizations: authorizations, evaluations: evaluations}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auths := r.Group("/authorizations")
	{
		auths.POST("", h.CreateAuthorization)
		auths.GET("", h.ListPending)
		auths.GET("/:id", h.GetAuthorization)
		auths.GET("/patient/:patientId", h.ListByPatient)
		auths.PUT("/:id", h.UpdateDescription)
		auths.PATCH("/:id/status", h.UpdateStatus)
		auths.DELETE("/:id", h.DeleteAuthorization)

		auths.POST("/:id/evaluate", h.EvaluateAuthorization)
		auths.GET("/:id/evaluation", h.GetEvaluation)
	}
}

func (h *Handler) CreateAuthorization(c *gin.Context) {
	var req model.CreateAuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request: %v", err))
		return
	}

	a, err := h.authorizations.Create(c.Request.Context(), middleware.ActorID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, a)
}

// ListPending returns the review queue of pending authorizations.
func (h *Handler) ListPending(c *gin.Context) {
	list, err := h.authorizations.ListPending(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, list)
}

func (h *Handler) GetAuthorization(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	a, err := h.authorizations.Get(c.Request.Context(), middleware.ActorID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, a)
}

func (h *Handler) ListByPatient(c *gin.Context) {
	patientID, err := httputil.ParseUUIDParam(c, "patientId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	list, err := h.authorizations.ListByPatient(c.Request.Context(), middleware.ActorID(c), patientID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, list)
}

func (h *Handler) UpdateDescription(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req struct {
		Description string `json:"description" binding:"required,min=10,max=500"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request: %v", err))
		return
	}

	a, err := h.authorizations.UpdateDescription(c.Request.Context(), middleware.ActorID(c), id, req.Description)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, a)
}

// UpdateStatus forces a manual transition. Admin only.
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdateAuthorizationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request: %v", err))
		return
	}

	a, err := h.authorizations.UpdateStatus(c.Request.Context(), middleware.ActorID(c), id,
		model.AuthorizationStatus(req.Status))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, a)
}

func (h *Handler) DeleteAuthorization(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.authorizations.Delete(c.Request.Context(), middleware.ActorID(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

// EvaluateAuthorization runs the coverage evaluation against the external
// insurer and applies the verdict.
func (h *Handler) EvaluateAuthorization(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.EvaluateAuthorizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request: %v", err))
		return
	}

	ev, err := h.evaluations.Evaluate(c.Request.Context(), middleware.ActorID(c), id, req.EstimatedCost)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, ev)
}

func (h *Handler) GetEvaluation(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	ev, err := h.evaluations.GetByAuthorization(c.Request.Context(), middleware.ActorID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, ev)
}
