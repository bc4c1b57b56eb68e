package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"assistant-chat/internal/transport/httpdto"
	assistant_errors "assistant-chat/pkg/errors"
)

// respondError maps the service error taxonomy onto status codes and the
// success:false envelope. Wording stays with the boundary; services only
// expose typed errors.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL_ERROR"

	switch {
	case errors.Is(err, assistant_errors.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, assistant_errors.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, assistant_errors.ErrAlreadyExists):
		status, code = http.StatusConflict, "ALREADY_EXISTS"
	case errors.Is(err, assistant_errors.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, assistant_errors.ErrStorageUnavailable):
		status, code = http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE"
	}

	c.JSON(status, httpdto.NewErrorResponse(err.Error(), code))
}
