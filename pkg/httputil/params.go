package httputil

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/meditrack/authorization-api/pkg/errors"
)

// ParseUUIDParam reads a path parameter as a UUID.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errors.Validation("invalid %s: %s", name, c.Param(name))
	}
	return id, nil
}
