// README: Base handler utilities (JSON helpers, error mapping, caller checks).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"fria/internal/http/middleware"
	"fria/internal/modules/form"
	"fria/internal/modules/intake"
	"fria/internal/modules/towrequest"
	"fria/internal/speech"
)

// RoleDispatcher may read and move any tow request.
const RoleDispatcher = "dispatcher"

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts the uuid strings produced by types.NewID.
func isValidID(v string) bool {
	return len(v) == 36 && uuid.Validate(v) == nil
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeServiceError maps module sentinel errors onto status codes.
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, form.ErrInvalidField), errors.Is(err, towrequest.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, intake.ErrNotFound), errors.Is(err, towrequest.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, intake.ErrInvalidState), errors.Is(err, towrequest.ErrInvalidState), errors.Is(err, towrequest.ErrConflict):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, speech.ErrEmptyAudio):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, speech.ErrAudioTooLarge):
		writeError(c, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, speech.ErrNoSpeech):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, speech.ErrNotConfigured):
		writeError(c, http.StatusServiceUnavailable, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// canAccess reports whether the caller may act on a resource owned by owner.
// With auth disabled every caller is allowed.
func canAccess(c *gin.Context, owner string) bool {
	uid := middleware.CallerUID(c)
	return uid == "" || uid == owner || middleware.CallerRole(c) == RoleDispatcher
}
