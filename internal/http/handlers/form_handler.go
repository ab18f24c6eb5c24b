// README: Form handlers for read/update/reset and the required-field list.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fria/internal/modules/form"
	"fria/internal/modules/intake"
)

type FormHandler struct {
	intake *intake.Service
	forms  *form.Service
}

func NewFormHandler(svc *intake.Service, forms *form.Service) *FormHandler {
	return &FormHandler{intake: svc, forms: forms}
}

type setFieldReq struct {
	Value *string `json:"value"`
}

// Get returns every field of the session form, unset fields as null. The
// session checkpoint is read, never the mirror.
func (h *FormHandler) Get(c *gin.Context) {
	sess, ok := h.owned(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"session_id": sess.ID, "form": sess.Form.Wire()})
}

// SetField stores one value; a null value clears the field.
func (h *FormHandler) SetField(c *gin.Context) {
	var req setFieldReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	sess, ok := h.owned(c)
	if !ok {
		return
	}
	values, err := h.intake.SetField(c.Request.Context(), sess.ID, c.Param("field"), req.Value)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"session_id": sess.ID, "form": values})
}

func (h *FormHandler) Reset(c *gin.Context) {
	sess, ok := h.owned(c)
	if !ok {
		return
	}
	values, err := h.intake.ResetForm(c.Request.Context(), sess.ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"session_id": sess.ID, "form": values})
}

func (h *FormHandler) Required(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{"required_fields": h.forms.ListRequired()})
}

func (h *FormHandler) owned(c *gin.Context) (*intake.Session, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return nil, false
	}
	sess, err := h.intake.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return nil, false
	}
	if !canAccess(c, sess.UserID) {
		writeError(c, http.StatusForbidden, "forbidden: session belongs to another user")
		return nil, false
	}
	return sess, true
}
