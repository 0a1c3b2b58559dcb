package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meditrack/authorization-api/internal/middleware"
	"github.com/meditrack/authorization-api/internal/model"
	"github.com/meditrack/authorization-api/internal/service/patient"
	"github.com/meditrack/authorization-api/internal/service/user"
	"github.com/meditrack/authorization-api/pkg/errors"
	"github.com/meditrack/authorization-api/pkg/httputil"
)

type Handler struct {
	users    user.UserService
	patients patient.PatientService
}

func NewHandler(users user.UserService, patients patient.PatientService) *Handler {
	return &Handler{users: users, patients: patients}
}

// RegisterPublicRoutes mounts the unauthenticated endpoints.
func (h *Handler) RegisterPublicRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.RegisterPatient)
		auth.POST("/login", h.Login)
	}
}

// RegisterProtectedRoutes mounts the endpoints that need a valid token.
func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.POST("", h.RegisterStaff)
		users.GET("/:id", h.GetUser)
		users.POST("/:id/activate", h.ActivateUser)
		users.POST("/:id/deactivate", h.DeactivateUser)
	}
}

// RegisterPatient creates a patient together with its login credentials.
func (h *Handler) RegisterPatient(c *gin.Context) {
	var req model.RegisterPatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request: %v", err))
		return
	}

	p, err := h.patients.Register(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, p)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request: %v", err))
		return
	}

	resp, err := h.users.Login(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, resp)
}

// RegisterStaff creates a doctor or administrator account. Admin only.
func (h *Handler) RegisterStaff(c *gin.Context) {
	var req model.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid request: %v", err))
		return
	}

	u, err := h.users.RegisterStaff(c.Request.Context(), middleware.ActorID(c), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, u)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	u, err := h.users.Get(c.Request.Context(), middleware.ActorID(c), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, u)
}

func (h *Handler) ActivateUser(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.users.Activate(c.Request.Context(), middleware.ActorID(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"activated": true})
}

func (h *Handler) DeactivateUser(c *gin.Context) {
	id, err := httputil.ParseUUIDParam(c, "id")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	if err := h.users.Deactivate(c.Request.Context(), middleware.ActorID(c), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, gin.H{"deactivated": true})
}
