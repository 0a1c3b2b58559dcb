package patient

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meditrack/authorization-api/internal/middleware"
	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/internal/service/patient"
	"github.com/meditrack/authorization-api/pkg/errors"
	"github.com/meditrack/authorization-api/pkg/httputil"
)

type Handler struct {
	service patient.PatientService
}

func NewHandler(service patient.PatientService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	patients := r.Group("/patients")
	{
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.GET("/document/:documentNumber", h.GetPatientByDocument)
		patients.PUT("/:id", h.UpdatePatient)
		patients.DELETE("/:id", h.DeactivatePatient)
	}
}

// ListPatients returns active patients, or all patients in a given
// affiliation status when ?status= is supplied (staff only).
func (h *Handler) ListPatients(c *gin.Context) {
	var (
		patients []*model.Patient
		err      error
	)
	if status := c.Query("status"); status != "" {
		patients, err = h.service.ListByStatus(c.Request.Context(), middleware.ActorID(c),
			model.AffiliationStatus(status))
	} else {
		patients, err = h.service.List(c.Request.Context(), middleware.ActorID(c))
	}
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, patients)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	p, err := h.service.Get(c.Request.Context(), middleware.ActorID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, p)
}

func (h *Handler) GetPatientByDocument(c *gin.Context) {
	p, err := h.service.GetByDocument(c.Request.Context(), middleware.ActorID(c), c.Param("documentNumber"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, p)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	var req model.UpdatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request: %v", err))
		return
	}

	p, err := h.service.Update(c.Request.Context(), middleware.ActorID(c), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, p)
}

func (h *Handler) DeactivatePatient(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), middleware.ActorID(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"deactivated": true})
}
