// README: Tow request handlers for read and dispatch status changes.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fria/internal/http/middleware"
	"fria/internal/modules/towrequest"
	"fria/internal/types"
)

type TowRequestHandler struct {
	tows *towrequest.Service
}

func NewTowRequestHandler(svc *towrequest.Service) *TowRequestHandler {
	return &TowRequestHandler{tows: svc}
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *TowRequestHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid tow request id")
		return
	}
	t, err := h.tows.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if !canAccess(c, t.UserID) {
		writeError(c, http.StatusForbidden, "forbidden: tow request belongs to another user")
		return
	}
	writeJSON(c, http.StatusOK, t)
}

// UpdateStatus moves a tow request through its lifecycle. Only dispatchers
// may do so; the motorist may cancel their own request.
func (h *TowRequestHandler) UpdateStatus(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid tow request id")
		return
	}
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		writeError(c, http.StatusBadRequest, "status is required")
		return
	}
	to := towrequest.Status(req.Status)
	if !to.Valid() {
		writeError(c, http.StatusBadRequest, "unknown status")
		return
	}

	actor := "system"
	if uid := middleware.CallerUID(c); uid != "" {
		actor = middleware.CallerRole(c)
		if actor != RoleDispatcher {
			t, err := h.tows.Get(c.Request.Context(), types.ID(id))
			if err != nil {
				writeServiceError(c, err)
				return
			}
			if t.UserID != uid || to != towrequest.StatusCancelled {
				writeError(c, http.StatusForbidden, "forbidden: dispatcher role required")
				return
			}
			actor = "motorist"
		}
	}

	t, err := h.tows.Transition(c.Request.Context(), towrequest.TransitionCommand{
		ID:        types.ID(id),
		To:        to,
		ActorType: actor,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, t)
}
