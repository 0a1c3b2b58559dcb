package report

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meditrack/authorization-api/internal/middleware"
	"github.com/meditrack/authorization-api/internal/service/report"
	"github.com/meditrack/authorization-api/pkg/errors"
	"github.com/meditrack/authorization-api/pkg/httputil"
)

type Handler struct {
	service report.ReportService
}

func NewHandler(service report.ReportService) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	reports := r.Group("/reports")
	{
		reports.GET("/summary", h.Summary)
		reports.GET("/authorizations", h.AuthorizationsInRange)
		reports.GET("/requesters/:userId/authorizations", h.AuthorizationsByRequester)
	}
}

func (h *Handler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), middleware.ActorID(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, summary)
}

// AuthorizationsInRange expects ?from= and ?to= as RFC 3339 timestamps.
func (h *Handler) AuthorizationsInRange(c *gin.Context) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid from: %s", c.Query("from")))
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		httputil.RespondWithError(c, errors.Validation("invalid to: %s", c.Query("to")))
		return
	}

	list, err := h.service.AuthorizationsInRange(c.Request.Context(), middleware.ActorID(c), from, to)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, list)
}

func (h *Handler) AuthorizationsByRequester(c *gin.Context) {
	requesterID, err := httputil.ParseUUIDParam(c, "userId")
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	list, err := h.service.AuthorizationsByRequester(c.Request.Context(), middleware.ActorID(c), requesterID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, list)
}
